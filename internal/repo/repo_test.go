package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/icebreaker-bot/internal/db"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
)

func strPtr(s string) *string { return &s }

func TestUserRepo_CreateLookupAndCredits(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(db.OpenTest(t))

	u := &models.User{Email: " Alice@Example.com ", Name: "Alice", PasswordHash: "x", SecretPhrase: strPtr("blue-otter")}
	require.NoError(t, users.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	dup := &models.User{Email: "alice@example.com", Name: "Other", PasswordHash: "x"}
	require.ErrorIs(t, users.Create(ctx, dup), models.ErrConflict)

	got, err := users.FindByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = users.ConnectChat(ctx, "  ", "100")
	require.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, users.AttachChat(ctx, u.ID, "100"))
	got, err = users.FindByChatID(ctx, "100")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	got, err = users.AddCredits(ctx, u.ID, 3)
	require.NoError(t, err)
	require.Equal(t, 3, got.Credits)
	got, err = users.AddCredits(ctx, u.ID, -1)
	require.NoError(t, err)
	require.Equal(t, 2, got.Credits)

	_, err = users.AddCredits(ctx, u.ID, -3)
	require.ErrorIs(t, err, models.ErrNoCredits)
	got, err = users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Credits)

	_, err = users.AddCredits(ctx, "missing", 1)
	require.ErrorIs(t, err, models.ErrNotFound)

	withChat, err := users.ListWithChat(ctx)
	require.NoError(t, err)
	require.Len(t, withChat, 1)
}

func TestUserRepo_AttachChatMovesOwnership(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(db.OpenTest(t))

	a := &models.User{Email: "a@example.com", Name: "A", PasswordHash: "x"}
	b := &models.User{Email: "b@example.com", Name: "B", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, a))
	require.NoError(t, users.Create(ctx, b))

	require.NoError(t, users.AttachChat(ctx, a.ID, "42"))
	require.NoError(t, users.AttachChat(ctx, b.ID, "42"))

	got, err := users.FindByChatID(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, b.ID, got.ID)
}

func TestProfileRepo_OwnershipAndCascade(t *testing.T) {
	ctx := context.Background()
	gdb := db.OpenTest(t)
	profiles := NewProfileRepo(gdb)

	p, err := profiles.Create(ctx, "u1", "Evening")
	require.NoError(t, err)

	_, err = profiles.FindOne(ctx, p.ID, "u2")
	require.ErrorIs(t, err, models.ErrForbidden)
	_, err = profiles.FindOne(ctx, "nope", "u1")
	require.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, gdb.Create(&models.CardPreference{ProfileID: p.ID, CardID: "c1", Status: models.StatusLoved}).Error)

	require.ErrorIs(t, profiles.Delete(ctx, p.ID, "u2"), models.ErrForbidden)
	require.NoError(t, profiles.Delete(ctx, p.ID, "u1"))

	var cnt int64
	require.NoError(t, gdb.Model(&models.CardPreference{}).Where("profile_id = ?", p.ID).Count(&cnt).Error)
	require.Zero(t, cnt)

	list, err := profiles.FindAllForUser(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestCategoryRepo_PrivateVisibility(t *testing.T) {
	ctx := context.Background()
	cats := NewCategoryRepo(db.OpenTest(t))

	pub := &models.Category{NameEN: "Public", IsPublic: true}
	mine := &models.Category{NameEN: "Mine", IsPublic: false, UserID: strPtr("u1")}
	theirs := &models.Category{NameEN: "Theirs", IsPublic: false, UserID: strPtr("u2")}
	for _, c := range []*models.Category{pub, mine, theirs} {
		require.NoError(t, cats.Create(ctx, c))
	}

	all, err := cats.FindAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 2)

	anon, err := cats.FindAll(ctx, "")
	require.NoError(t, err)
	require.Len(t, anon, 1)
	require.Equal(t, pub.ID, anon[0].ID)

	_, err = cats.FindOne(ctx, theirs.ID, "u1")
	require.ErrorIs(t, err, models.ErrNotFound)
	got, err := cats.FindOne(ctx, mine.ID, "u1")
	require.NoError(t, err)
	require.Equal(t, "Mine", got.NameEN)
}

func TestUserRepo_ConnectChatConsumesPhrase(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(db.OpenTest(t))

	old := &models.User{Email: "old@example.com", Name: "Old", PasswordHash: "x", ChatID: strPtr("7")}
	require.NoError(t, users.Create(ctx, old))
	u := &models.User{Email: "bob@example.com", Name: "Bob", PasswordHash: "x", SecretPhrase: strPtr("amber river cedar maple otter quill")}
	require.NoError(t, users.Create(ctx, u))

	got, err := users.ConnectChat(ctx, "  Amber river  cedar maple otter quill ", "7")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "7", *got.ChatID)
	require.Nil(t, got.SecretPhrase)

	stored, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, stored.SecretPhrase)
	owner, err := users.FindByChatID(ctx, "7")
	require.NoError(t, err)
	require.Equal(t, u.ID, owner.ID)

	_, err = users.ConnectChat(ctx, "amber river cedar maple otter quill", "8")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserRepo_CreateReportsPhraseCollision(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(db.OpenTest(t))

	require.NoError(t, users.Create(ctx, &models.User{Email: "a@example.com", Name: "A", PasswordHash: "x", SecretPhrase: strPtr("same words")}))
	err := users.Create(ctx, &models.User{Email: "b@example.com", Name: "B", PasswordHash: "x", SecretPhrase: strPtr("same words")})
	require.ErrorIs(t, err, models.ErrPhraseTaken)
}
