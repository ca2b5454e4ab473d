package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/icebreaker-bot/internal/ai"
	"github.com/suPer8Hu/icebreaker-bot/internal/cards"
	"github.com/suPer8Hu/icebreaker-bot/internal/chat"
	"github.com/suPer8Hu/icebreaker-bot/internal/chat/chattest"
	"github.com/suPer8Hu/icebreaker-bot/internal/db"
	"github.com/suPer8Hu/icebreaker-bot/internal/delivery"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"github.com/suPer8Hu/icebreaker-bot/internal/repo"
	"github.com/suPer8Hu/icebreaker-bot/internal/session"
	"github.com/suPer8Hu/icebreaker-bot/internal/session/sessiontest"
	"gorm.io/gorm"
)

const testChat = "42"

func ptr(s string) *string { return &s }

type memOutbox struct {
	mu   sync.Mutex
	jobs []delivery.Job
}

func (o *memOutbox) Enqueue(ctx context.Context, job delivery.Job) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.jobs = append(o.jobs, job)
	return nil
}

type fakeGenerator struct {
	calls []string
	err   error
}

func (g *fakeGenerator) Generate(ctx context.Context, userID, chatID, description string) (*ai.TaskHandle, error) {
	g.calls = append(g.calls, userID+"|"+chatID+"|"+description)
	if g.err != nil {
		return nil, g.err
	}
	return &ai.TaskHandle{RequestID: "req-1"}, nil
}

// countingEngine counts content queries on top of the real engine.
type countingEngine struct {
	CardEngine
	next    int
	neutral int
	nextErr error
}

func (c *countingEngine) NextCard(ctx context.Context, q cards.Query, currentID string) (cards.Pick, error) {
	c.next++
	if c.nextErr != nil {
		return cards.Pick{}, c.nextErr
	}
	return c.CardEngine.NextCard(ctx, q, currentID)
}

func (c *countingEngine) HasOnlyNeutralCardsLeft(ctx context.Context, q cards.Query) (bool, error) {
	c.neutral++
	return c.CardEngine.HasOnlyNeutralCardsLeft(ctx, q)
}

type harness struct {
	t        *testing.T
	gdb      *gorm.DB
	m        *Machine
	store    *sessiontest.Store
	tr       *chattest.Transport
	engine   *countingEngine
	outbox   *memOutbox
	gen      *fakeGenerator
	users    *repo.UserRepo
	profiles *repo.ProfileRepo
	content  *cards.Repo
	user     *models.User
	cat      *models.Category
	cards    []models.Card
	msgID    int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	gdb := db.OpenTest(t)

	h := &harness{
		t:        t,
		gdb:      gdb,
		store:    sessiontest.New(),
		tr:       chattest.New(),
		outbox:   &memOutbox{},
		gen:      &fakeGenerator{},
		users:    repo.NewUserRepo(gdb),
		profiles: repo.NewProfileRepo(gdb),
		content:  cards.NewRepo(gdb),
	}
	categories := repo.NewCategoryRepo(gdb)

	h.user = &models.User{Email: "ann@example.com", Name: "Ann", PasswordHash: "x", SecretPhrase: ptr("amber river cedar maple")}
	require.NoError(t, h.users.Create(ctx, h.user))
	h.cat = &models.Category{NameEN: "Friends", IsPublic: true}
	require.NoError(t, categories.Create(ctx, h.cat))
	for _, q := range []string{"Best trip?", "Favourite meal?", "First job?"} {
		c := models.Card{QuestionEN: q, CategoryID: h.cat.ID}
		require.NoError(t, h.content.Create(ctx, &c))
		h.cards = append(h.cards, c)
	}

	h.engine = &countingEngine{CardEngine: cards.NewEngine(h.content, categories)}
	h.m = NewMachine(Deps{
		Sessions:    h.store,
		Transport:   h.tr,
		Commands:    h.tr,
		Users:       h.users,
		Profiles:    h.profiles,
		Categories:  categories,
		Cards:       h.engine,
		Suggestions: repo.NewSuggestionRepo(gdb),
		Generator:   h.gen,
		Outbox:      h.outbox,
	})
	return h
}

func (h *harness) text(s string) {
	h.msgID++
	h.m.HandleUpdate(context.Background(), chat.ParseText(testChat, h.msgID, s))
}

func (h *harness) press(data string) {
	h.m.HandleUpdate(context.Background(), chat.Action(testChat, 0, data, "cb"))
}

func (h *harness) session() *session.Session {
	s := h.store.Peek(testChat)
	require.NotNil(h.t, s)
	return s
}

func (h *harness) screen() string {
	c, ok := h.tr.Last()
	require.True(h.t, ok, "nothing rendered")
	return c.Text
}

// loggedIn stores an authenticated session and returns the profile it selected.
func (h *harness) loggedIn(mut func(s *session.Session, p *models.Profile)) *models.Profile {
	p, err := h.profiles.Create(context.Background(), h.user.ID, "Home")
	require.NoError(h.t, err)
	s := session.New(testChat, models.English)
	s.UserID = h.user.ID
	s.SelectedProfileID = p.ID
	if mut != nil {
		mut(s, p)
	}
	h.store.Put(context.Background(), testChat, s)
	return p
}

func (h *harness) playing(s *session.Session) {
	s.SelectedCategories = session.Selected(h.cat.ID)
	s.Step = session.StepCardRetrieval
	s.Card = session.SnapshotOf(h.cards[0], models.StatusActive)
}

func TestLogin_BySecretPhrase(t *testing.T) {
	h := newHarness(t)

	h.text("/start")
	require.Equal(t, T(en, "auth.welcome"), h.screen())

	h.text("  amber river cedar maple ")
	s := h.session()
	require.Equal(t, h.user.ID, s.UserID)
	require.Equal(t, session.StepProfileSelection, Resolve(s))
	require.Contains(t, h.screen(), T(en, "login.done", "Ann"))
	require.Contains(t, h.screen(), T(en, "profile.select_prompt"))
	require.Contains(t, h.tr.Deleted(), 2)
	require.NotEmpty(t, h.tr.Commands(testChat))

	u, err := h.users.FindByChatID(context.Background(), testChat)
	require.NoError(t, err)
	require.Equal(t, h.user.ID, u.ID)
	require.Nil(t, u.SecretPhrase)

	// the phrase is spent: another chat cannot reuse it
	h.m.HandleUpdate(context.Background(), chat.ParseText("43", 1, "amber river cedar maple"))
	other := h.store.Peek("43")
	require.NotNil(t, other)
	require.Empty(t, other.UserID)
	require.Contains(t, h.screen(), T(en, "auth.invalid"))
}

func TestNewChatFollowsClientLanguage(t *testing.T) {
	h := newHarness(t)

	u := chat.ParseText(testChat, 1, "/start")
	u.LanguageCode = "fr-FR"
	h.m.HandleUpdate(context.Background(), u)
	require.Equal(t, models.French, h.session().Language)
	require.Equal(t, T(models.French, "auth.welcome"), h.screen())

	// once the chat has a screen, the stored choice wins
	u = chat.ParseText(testChat, 2, "/start")
	u.LanguageCode = "ru"
	h.m.HandleUpdate(context.Background(), u)
	require.Equal(t, models.French, h.session().Language)
}

func TestLogin_WrongPhraseStays(t *testing.T) {
	h := newHarness(t)

	h.text("nope")
	require.Empty(t, h.session().UserID)
	require.Contains(t, h.screen(), T(en, "auth.invalid"))
	require.Equal(t, 1, h.tr.Count("send"))
}

func TestStart_LogsInByChatID(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.users.AttachChat(context.Background(), h.user.ID, testChat))

	h.text("/start")
	require.Equal(t, h.user.ID, h.session().UserID)
	require.Contains(t, h.screen(), T(en, "profile.select_prompt"))
}

func TestSignup(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.press(actSignup)
	require.Equal(t, session.StepSignupEmail, h.session().Step)

	h.text("not-an-email")
	require.Equal(t, T(en, "signup.invalid_email", "not-an-email"), h.screen())

	h.text("ann@example.com")
	require.Equal(t, T(en, "signup.user_exists"), h.screen())

	h.text("New@Example.com")
	s := h.session()
	require.Equal(t, session.StepSignupName, s.Step)
	require.Equal(t, "new@example.com", s.Email)

	h.text("Bob")
	u, err := h.users.FindByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	require.NotNil(t, u.SecretPhrase)
	require.NotNil(t, u.ChatID)
	require.Equal(t, testChat, *u.ChatID)

	s = h.session()
	require.Equal(t, u.ID, s.UserID)
	require.Empty(t, s.Email)
	require.Contains(t, h.screen(), *u.SecretPhrase)
}

func TestSignup_CancelReturnsToAuth(t *testing.T) {
	h := newHarness(t)

	h.press(actSignup)
	h.text("someone@example.com")
	h.press(actCancel)

	s := h.session()
	require.Empty(t, s.Email)
	require.Equal(t, session.StepAuthentication, s.Step)
}

func TestProfileCategoryAndCardFlow(t *testing.T) {
	h := newHarness(t)
	p := h.loggedIn(func(s *session.Session, _ *models.Profile) { s.SelectedProfileID = "" })

	h.press(actProfilePrefix + p.ID)
	s := h.session()
	require.Equal(t, p.ID, s.SelectedProfileID)
	require.Equal(t, session.StepCategorySelection, s.Step)
	require.False(t, s.SelectedCategories.IsSet())

	h.press(actCategoryPrefix + h.cat.ID)
	s = h.session()
	require.True(t, s.SelectedCategories.Contains(h.cat.ID))
	require.Contains(t, h.screen(), T(en, "category.selected_count", 1))

	// typing while picking keeps the picker on screen
	h.text("hello")
	s = h.session()
	require.Equal(t, session.StepCategorySelection, s.Step)
	require.Nil(t, s.Card)
	require.Zero(t, h.engine.next)

	h.press(actCategoriesDone)
	s = h.session()
	require.NotNil(t, s.Card)
	require.Equal(t, session.StepCardRetrieval, s.Step)
	require.Equal(t, 1, h.engine.next)
	require.Contains(t, h.screen(), "<blockquote><b>")
	require.Contains(t, h.screen(), "Friends")

	first := s.Card.ID
	h.press(actCardAnother)
	s = h.session()
	require.Equal(t, 2, h.engine.next)
	require.NotEqual(t, first, s.Card.ID)
	require.Equal(t, first, s.PreviousCard.ID)

	h.press(actCardUndo)
	require.Equal(t, first, h.session().Card.ID)
	require.Equal(t, 2, h.engine.next)
}

func TestCategoriesDone_RequiresOne(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(nil)

	h.press(actCategoriesDone)
	require.Contains(t, h.screen(), T(en, "category.select_at_least_one"))
	require.Zero(t, h.engine.next)
}

func TestReentryReusesCard(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(func(s *session.Session, _ *models.Profile) { h.playing(s) })

	h.press(actCardChangeLang)
	require.Equal(t, T(en, "language.prompt"), h.screen())

	h.press(actLanguagePrefix + "fr")
	s := h.session()
	require.Equal(t, models.French, s.Language)
	require.Contains(t, h.screen(), "Best trip?")
	require.Equal(t, T(models.French, "cmd.start"), h.tr.Commands(testChat)[0].Description)

	h.press(actCardToggleLoved)
	require.True(t, h.session().IncludeLoved)

	h.text("/start")
	require.Equal(t, h.cards[0].ID, h.session().Card.ID)

	require.Zero(t, h.engine.next)
	require.Zero(t, h.engine.neutral)
}

func TestLoveAndArchive(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.loggedIn(func(s *session.Session, _ *models.Profile) { h.playing(s) })
	cardID := h.cards[0].ID

	prefs := func() map[string]models.CardPreference {
		m, err := h.content.Preferences(ctx, p.ID, []string{cardID})
		require.NoError(t, err)
		return m
	}

	h.press(actCardLove)
	require.Equal(t, models.StatusLoved, h.session().Card.Status)
	require.Equal(t, models.StatusLoved, prefs()[cardID].Status)
	require.Contains(t, h.screen(), T(en, "card.status.loved"))

	h.press(actCardLove)
	require.Equal(t, models.StatusActive, h.session().Card.Status)
	require.Empty(t, prefs())

	h.press(actCardArchive)
	s := h.session()
	require.Equal(t, models.StatusArchived, prefs()[cardID].Status)
	require.NotEqual(t, cardID, s.Card.ID)
	require.Nil(t, s.PreviousCard)
}

func TestBanThenUndoNeverShowsBannedCard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.loggedIn(func(s *session.Session, _ *models.Profile) { h.playing(s) })
	first := h.cards[0].ID

	h.press(actCardAnother)
	banned := h.session().Card.ID
	require.NotEqual(t, first, banned)

	h.press(actCardBan)
	prefs, err := h.content.Preferences(ctx, p.ID, []string{banned})
	require.NoError(t, err)
	require.Equal(t, models.StatusBanned, prefs[banned].Status)

	h.press(actCardUndo)
	s := h.session()
	require.NotNil(t, s.Card)
	require.NotEqual(t, banned, s.Card.ID)
	require.NotEqual(t, models.StatusBanned, s.Card.Status)
	if s.PreviousCard != nil {
		require.NotEqual(t, banned, s.PreviousCard.ID)
	}
}

func TestCollaboratorErrorRestoresSession(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(func(s *session.Session, _ *models.Profile) {
		s.SelectedCategories = session.Selected(h.cat.ID)
		s.Step = session.StepCategorySelection
	})
	h.engine.nextErr = errors.New("db down")
	puts := h.store.Puts

	h.press(actCategoriesDone)

	s := h.session()
	require.Equal(t, T(en, "error.generic"), h.screen())
	require.Equal(t, session.StepCategorySelection, s.Step)
	require.Nil(t, s.Card)
	require.True(t, s.SelectedCategories.Contains(h.cat.ID))
	require.Len(t, s.BotMessageIDs, 1)
	require.Equal(t, puts+1, h.store.Puts)
}

func TestMissingCategoriesFallBackToPicker(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(func(s *session.Session, _ *models.Profile) {
		h.playing(s)
		s.SelectedCategories = session.Selected("gone")
	})

	h.press(actCardAnother)
	s := h.session()
	require.False(t, s.SelectedCategories.IsSet())
	require.Equal(t, session.StepCategorySelection, s.Step)
	require.Contains(t, h.screen(), T(en, "category.unavailable"))
}

func TestForeignProfileIsRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	other := &models.User{Email: "eve@example.com", Name: "Eve", PasswordHash: "x"}
	require.NoError(t, h.users.Create(ctx, other))
	theirs, err := h.profiles.Create(ctx, other.ID, "Secret")
	require.NoError(t, err)
	h.loggedIn(nil)

	h.press(actProfilePrefix + theirs.ID)
	s := h.session()
	require.Empty(t, s.SelectedProfileID)
	require.Equal(t, session.StepProfileSelection, s.Step)
	require.Contains(t, h.screen(), T(en, "profile.unavailable"))
}

func TestProfileCreateAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.loggedIn(func(s *session.Session, _ *models.Profile) { s.SelectedProfileID = "" })

	h.press(actProfileNew)
	require.Equal(t, session.StepProfileCreation, h.session().Step)

	h.text("   ")
	require.Equal(t, T(en, "profile.length_error"), h.screen())

	h.text("Family")
	s := h.session()
	require.NotEmpty(t, s.SelectedProfileID)
	require.Equal(t, session.StepCategorySelection, s.Step)
	require.Contains(t, h.screen(), T(en, "profile.created", "Family"))
	id := s.SelectedProfileID

	h.press(actProfileDelete)
	require.Equal(t, session.StepProfileDeletion, h.session().Step)
	h.press(actProfileDelPrefix + id)
	require.Equal(t, T(en, "profile.delete_confirm", "Family"), h.screen())
	h.press(actProfileConfirm + id)

	s = h.session()
	require.Empty(t, s.SelectedProfileID)
	require.Contains(t, h.screen(), T(en, "profile.deleted", "Family"))
	_, err := h.profiles.FindOne(ctx, id, h.user.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestSuggest(t *testing.T) {
	h := newHarness(t)

	h.text("/suggest")
	require.Contains(t, h.screen(), T(en, "auth.required"))

	h.loggedIn(nil)
	h.text("/suggest")
	require.Equal(t, session.StepSuggestionCreation, h.session().Step)

	h.text("What would you never give up?")
	require.Equal(t, session.StepNone, h.session().Step)
	require.Equal(t, T(en, "suggestion.success"), h.screen())

	var n int64
	require.NoError(t, h.gdb.Model(&models.Suggestion{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestBroadcast_AdminOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	other := &models.User{Email: "eve@example.com", Name: "Eve", PasswordHash: "x"}
	require.NoError(t, h.users.Create(ctx, other))
	require.NoError(t, h.users.AttachChat(ctx, other.ID, "77"))
	h.loggedIn(nil)

	h.text("/broadcast")
	require.NotEqual(t, session.StepBroadcast, h.session().Step)

	require.NoError(t, h.gdb.Model(&models.User{}).Where("id = ?", h.user.ID).Update("is_admin", true).Error)
	h.text("/broadcast")
	require.Equal(t, session.StepBroadcast, h.session().Step)

	h.text("Maintenance tonight")
	require.Len(t, h.outbox.jobs, 1)
	require.Equal(t, "77", h.outbox.jobs[0].ChatID)
	require.Equal(t, "Maintenance tonight", h.outbox.jobs[0].Text)
	require.Equal(t, T(en, "broadcast.sent", 1), h.screen())
}

func TestGenerate(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(nil)

	h.text("/generate")
	require.Contains(t, h.screen(), T(en, "generate.no_credits"))
	require.NotEqual(t, session.StepGameGeneration, h.session().Step)

	s := h.session()
	s.Credits = 2
	h.store.Put(context.Background(), testChat, s)

	h.text("/generate")
	require.Equal(t, session.StepGameGeneration, h.session().Step)

	h.text("ab")
	require.Contains(t, h.screen(), T(en, "generate.invalid"))
	require.Empty(t, h.gen.calls)

	h.text("a trivia night for coworkers")
	require.Equal(t, []string{h.user.ID + "|" + testChat + "|a trivia night for coworkers"}, h.gen.calls)
	require.Equal(t, session.StepNone, h.session().Step)
	require.Equal(t, 1, h.session().Credits)
	require.Equal(t, T(en, "generate.started"), h.screen())
}

func TestGenerate_StaleCreditsAreRejected(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(func(s *session.Session, _ *models.Profile) { s.Credits = 1 })
	h.gen.err = fmt.Errorf("reserve credit: %w", models.ErrNoCredits)

	h.text("/generate")
	require.Equal(t, session.StepGameGeneration, h.session().Step)

	h.text("a trivia night for coworkers")
	s := h.session()
	require.Len(t, h.gen.calls, 1)
	require.Equal(t, 0, s.Credits)
	require.NotEqual(t, session.StepGameGeneration, s.Step)
	require.Contains(t, h.screen(), T(en, "generate.no_credits"))
}

func TestPlayJumpsIntoCategory(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(nil)

	h.press(actPlayPrefix + h.cat.ID)
	s := h.session()
	require.NotNil(t, s.Card)
	require.Equal(t, []string{h.cat.ID}, s.SelectedCategories.IDs())
}

func TestPlayRejectsHiddenCategory(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(nil)

	other := &models.User{Email: "bob@example.com", Name: "Bob", PasswordHash: "x"}
	require.NoError(t, h.users.Create(context.Background(), other))
	private := &models.Category{NameEN: "Bob only", UserID: &other.ID}
	require.NoError(t, repo.NewCategoryRepo(h.gdb).Create(context.Background(), private))

	for _, id := range []string{private.ID, "missing"} {
		h.press(actPlayPrefix + id)
		s := h.session()
		require.Nil(t, s.Card)
		require.Equal(t, 0, s.SelectedCategories.Len())
		require.Equal(t, session.StepCategorySelection, s.Step)
		require.Contains(t, h.screen(), T(en, "category.unavailable"))
		require.NotContains(t, h.screen(), "Bob only")
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(func(s *session.Session, _ *models.Profile) { s.Language = models.Italian })

	h.text("/logout")
	s := h.session()
	require.Empty(t, s.UserID)
	require.Equal(t, models.Italian, s.Language)
	require.Equal(t, session.StepAuthentication, s.Step)
	require.Equal(t, T(models.Italian, "auth.welcome"), h.screen())
}

func TestSameChatUpdatesAreSerialized(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(func(s *session.Session, _ *models.Profile) { h.playing(s) })

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.m.HandleUpdate(context.Background(), chat.Action(testChat, 0, actCardToggleLoved, "cb"))
		}()
	}
	wg.Wait()

	require.False(t, h.session().IncludeLoved)
	require.Zero(t, h.engine.next)
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	var k keyedMutex
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.lock("a")
			counter++
			unlock()
		}()
	}
	wg.Wait()
	require.Equal(t, 50, counter)
	require.Empty(t, k.locks)
}
