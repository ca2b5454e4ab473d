package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
)

func TestCategorySelection_UnsetAndEmptyStayDistinct(t *testing.T) {
	s := New("42", models.English)
	s.UserID = "u1"

	b, err := json.Marshal(s)
	require.NoError(t, err)
	require.Contains(t, string(b), `"selectedCategoryIds":null`)

	var back Session
	require.NoError(t, json.Unmarshal(b, &back))
	require.False(t, back.SelectedCategories.IsSet())

	s.SelectedCategories = Selected()
	b, err = json.Marshal(s)
	require.NoError(t, err)
	require.Contains(t, string(b), `"selectedCategoryIds":[]`)

	back = Session{}
	require.NoError(t, json.Unmarshal(b, &back))
	require.True(t, back.SelectedCategories.IsSet())
	require.Zero(t, back.SelectedCategories.Len())
}

func TestCategorySelection_MissingFieldIsUnset(t *testing.T) {
	var s Session
	require.NoError(t, json.Unmarshal([]byte(`{"chatId":"1","language":"fr"}`), &s))
	require.False(t, s.SelectedCategories.IsSet())
}

func TestCategorySelection_Toggle(t *testing.T) {
	c := Unset().Toggle("a").Toggle("b").Toggle("a")
	require.True(t, c.IsSet())
	require.Equal(t, []string{"b"}, c.IDs())

	c = c.Toggle("b")
	require.True(t, c.IsSet())
	require.Zero(t, c.Len())
}

func TestNew_FallsBackToEnglish(t *testing.T) {
	require.Equal(t, models.English, New("1", "de").Language)
	require.Equal(t, models.Italian, New("1", models.Italian).Language)
}

func TestRestoreState_KeepsTracking(t *testing.T) {
	s := New("1", models.English)
	s.Step = StepCardRetrieval
	s.SelectedCategories = Selected("c1")
	before := s.Clone()

	s.Step = StepProfileSelection
	s.SelectedCategories = s.SelectedCategories.Toggle("c2")
	s.Track(77, "oops", "")

	s.RestoreState(before)
	require.Equal(t, StepCardRetrieval, s.Step)
	require.Equal(t, []string{"c1"}, s.SelectedCategories.IDs())
	require.Equal(t, []int{77}, s.BotMessageIDs)
	require.Equal(t, "oops", s.LastMessageText)
}

func TestShowCardAndUndo(t *testing.T) {
	s := New("1", models.English)
	require.False(t, s.Undo())

	a := &CardSnapshot{ID: "a", Questions: map[models.Language]string{models.English: "A?"}}
	b := &CardSnapshot{ID: "b", Questions: map[models.Language]string{models.English: "B?"}}
	s.ShowCard(a)
	s.ShowCard(b)
	require.Equal(t, "b", s.Card.ID)
	require.Equal(t, "a", s.PreviousCard.ID)

	require.True(t, s.Undo())
	require.Equal(t, "a", s.Card.ID)
	require.Equal(t, "b", s.PreviousCard.ID)
}

func TestShowCard_DoesNotKeepBannedCard(t *testing.T) {
	s := New("1", models.English)
	s.ShowCard(&CardSnapshot{ID: "a"})
	s.ShowCard(&CardSnapshot{ID: "b", Status: models.StatusBanned})
	s.ShowCard(&CardSnapshot{ID: "c"})

	require.Equal(t, "c", s.Card.ID)
	require.Equal(t, "a", s.PreviousCard.ID)
}

func TestSnapshotOf_LanguageFallback(t *testing.T) {
	card := models.Card{
		ID:         "c",
		QuestionEN: "Hello?",
		QuestionRU: "Привет?",
		Category:   models.Category{ID: "cat", NameEN: "Fun"},
	}
	snap := SnapshotOf(card, "")
	require.Equal(t, models.StatusActive, snap.Status)
	require.Equal(t, "Привет?", snap.Question(models.Russian))
	require.Equal(t, "Hello?", snap.Question(models.French))
	require.Equal(t, "Fun", snap.CategoryName(models.Italian))
}

func TestLogout_KeepsLanguageAndTracking(t *testing.T) {
	s := New("1", models.French)
	s.UserID = "u"
	s.Credits = 3
	s.Track(5, "hi", "")
	s.Logout()
	require.Empty(t, s.UserID)
	require.Zero(t, s.Credits)
	require.Equal(t, models.French, s.Language)
	require.Equal(t, []int{5}, s.BotMessageIDs)
}
