// Package bot is the conversational engine: it resolves the chat's state from
// its session, runs the matching handler and keeps one live message in sync.
package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/suPer8Hu/icebreaker-bot/internal/ai"
	"github.com/suPer8Hu/icebreaker-bot/internal/cards"
	"github.com/suPer8Hu/icebreaker-bot/internal/chat"
	"github.com/suPer8Hu/icebreaker-bot/internal/delivery"
	"github.com/suPer8Hu/icebreaker-bot/internal/metrics"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"github.com/suPer8Hu/icebreaker-bot/internal/session"
	"go.uber.org/zap"
)

type SessionStore interface {
	Get(ctx context.Context, chatID string) *session.Session
	Put(ctx context.Context, chatID string, s *session.Session)
	Clear(ctx context.Context, chatID string)
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByChatID(ctx context.Context, chatID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ConnectChat(ctx context.Context, phrase, chatID string) (*models.User, error)
	AttachChat(ctx context.Context, userID, chatID string) error
	ListWithChat(ctx context.Context) ([]models.User, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, userID, name string) (*models.Profile, error)
	FindAllForUser(ctx context.Context, userID string) ([]models.Profile, error)
	FindOne(ctx context.Context, id, requesterID string) (*models.Profile, error)
	Delete(ctx context.Context, id, requesterID string) error
}

type CategoryRepository interface {
	FindAll(ctx context.Context, requesterID string) ([]models.Category, error)
	FindOne(ctx context.Context, id, requesterID string) (*models.Category, error)
}

type SuggestionRepository interface {
	Create(ctx context.Context, userID, question string) (*models.Suggestion, error)
}

type CardEngine interface {
	NextCard(ctx context.Context, q cards.Query, currentID string) (cards.Pick, error)
	HasOnlyNeutralCardsLeft(ctx context.Context, q cards.Query) (bool, error)
	SetStatus(ctx context.Context, cardID, profileID string, status models.CardStatus) (*models.CardPreference, error)
}

type Generator interface {
	Generate(ctx context.Context, userID, chatID, description string) (*ai.TaskHandle, error)
}

type Outbox interface {
	Enqueue(ctx context.Context, job delivery.Job) error
}

// Deps are the machine's collaborators. Commands, Generator and Outbox may be nil.
type Deps struct {
	Sessions    SessionStore
	Transport   chat.Transport
	Commands    chat.CommandPublisher
	Users       UserRepository
	Profiles    ProfileRepository
	Categories  CategoryRepository
	Cards       CardEngine
	Suggestions SuggestionRepository
	Generator   Generator
	Outbox      Outbox
	Log         *zap.Logger
}

type State interface {
	Enter(ctx context.Context, t *turn) error
	OnInput(ctx context.Context, t *turn) error
}

type Machine struct {
	Deps
	reconciler *Reconciler
	validate   *validator.Validate
	locks      keyedMutex
	states     map[session.Step]State

	cards      *cardRetrievalState
	categories *categorySelectionState
	profiles   *profileSelectionState
}

func NewMachine(d Deps) *Machine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	m := &Machine{
		Deps:       d,
		reconciler: NewReconciler(d.Transport, d.Log),
		validate:   validator.New(),
	}
	m.cards = &cardRetrievalState{m: m}
	m.categories = &categorySelectionState{m: m}
	m.profiles = &profileSelectionState{m: m}
	m.states = map[session.Step]State{
		session.StepHelp:               &helpState{m: m},
		session.StepSignupEmail:        &signupEmailState{m: m},
		session.StepSignupName:         &signupNameState{m: m},
		session.StepGameGeneration:     &gameGenerationState{m: m},
		session.StepAuthentication:     &authenticationState{m: m},
		session.StepProfileCreation:    &profileCreationState{m: m},
		session.StepProfileDeletion:    &profileDeletionState{m: m},
		session.StepSuggestionCreation: &suggestionState{m: m},
		session.StepBroadcast:          &broadcastState{m: m},
		session.StepProfileSelection:   m.profiles,
		session.StepCategorySelection:  m.categories,
		session.StepCardRetrieval:      m.cards,
	}
	return m
}

// turn is the per-update context handed to states.
type turn struct {
	s   *session.Session
	u   chat.Update
	log *zap.Logger
	// reuse lets card retrieval re-render the stored card instead of querying.
	reuse bool
	// notice is prepended to the next render.
	notice string
	m      *Machine
}

func (t *turn) flash(text string) {
	t.notice = text
}

func (t *turn) render(ctx context.Context, text string, extras chat.Extras) {
	if t.notice != "" {
		notice := t.notice
		if extras.HTML {
			notice = html.EscapeString(notice)
		}
		text = notice + "\n\n" + text
		t.notice = ""
	}
	t.m.reconciler.Render(ctx, t.s, text, extras)
}

// dropInput removes the user's own message so the chat keeps one screen.
func (t *turn) dropInput(ctx context.Context) {
	if t.u.Kind == chat.KindAction || t.u.MessageID == 0 {
		return
	}
	t.m.reconciler.DeleteMessages(ctx, t.s.ChatID, t.u.MessageID)
}

// HandleUpdate runs one inbound update to completion. Updates for the same
// chat are serialized; errors never escape.
func (m *Machine) HandleUpdate(ctx context.Context, u chat.Update) {
	if strings.TrimSpace(u.ChatID) == "" {
		m.Log.Warn("update without chat id dropped")
		return
	}
	unlock := m.locks.lock(u.ChatID)
	defer unlock()

	s := m.Sessions.Get(ctx, u.ChatID)
	if len(s.BotMessageIDs) == 0 && !s.Authenticated() {
		// a chat that has never seen a screen follows the client's language
		code, _, _ := strings.Cut(u.LanguageCode, "-")
		if l, ok := models.ParseLanguage(code); ok {
			s.Language = l
		}
	}
	before := s.Clone()
	t := &turn{
		m:   m,
		s:   s,
		u:   u,
		log: m.Log.With(zap.String("chat_id", u.ChatID)),
	}

	err := m.safeDispatch(ctx, t)
	state := string(Resolve(s))
	metrics.UpdatesTotal.WithLabelValues(state).Inc()

	if err != nil {
		metrics.UpdateFailuresTotal.WithLabelValues(state).Inc()
		t.log.Error("update failed",
			zap.String("state", state),
			zap.String("step", string(before.Step)),
			zap.String("action", u.Action),
			zap.String("command", u.Command),
			zap.Error(err),
		)
		s.RestoreState(before)
		t.notice = ""
		t.render(ctx, T(s.Language, "error.generic"), chat.Extras{})
	}

	m.Sessions.Put(ctx, u.ChatID, s)
}

func (m *Machine) safeDispatch(ctx context.Context, t *turn) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return m.dispatch(ctx, t)
}

func (m *Machine) dispatch(ctx context.Context, t *turn) error {
	switch t.u.Kind {
	case chat.KindCommand:
		return m.command(ctx, t)
	case chat.KindAction:
		return m.action(ctx, t)
	default:
		return m.states[Resolve(t.s)].OnInput(ctx, t)
	}
}

func (m *Machine) enterResolved(ctx context.Context, t *turn) error {
	return m.states[Resolve(t.s)].Enter(ctx, t)
}

func (m *Machine) command(ctx context.Context, t *turn) error {
	t.dropInput(ctx)

	switch t.u.Command {
	case "start":
		return m.start(ctx, t)
	case "help":
		t.s.Step = session.StepHelp
		return m.states[session.StepHelp].Enter(ctx, t)
	case "language":
		return m.showLanguages(ctx, t)
	case "suggest":
		if !t.s.Authenticated() {
			t.flash(T(t.s.Language, "auth.required"))
			return m.enterResolved(ctx, t)
		}
		return m.states[session.StepSuggestionCreation].Enter(ctx, t)
	case "generate":
		return m.generate(ctx, t)
	case "broadcast":
		return m.broadcast(ctx, t)
	case "logout":
		m.Sessions.Clear(ctx, t.s.ChatID)
		t.s.Logout()
		m.publishCommands(ctx, t.s)
		return m.states[session.StepAuthentication].Enter(ctx, t)
	default:
		t.reuse = true
		return m.enterResolved(ctx, t)
	}
}

func (m *Machine) action(ctx context.Context, t *turn) error {
	a := t.u.Action
	s := t.s

	switch {
	case strings.HasPrefix(a, actLanguagePrefix):
		return m.changeLanguage(ctx, t, strings.TrimPrefix(a, actLanguagePrefix))
	case a == actCardChangeLang:
		return m.showLanguages(ctx, t)
	case a == actCardStartOver:
		return m.start(ctx, t)
	case a == actBack, a == actCancel:
		s.Step = session.StepNone
		s.Email = ""
		t.reuse = true
		return m.enterResolved(ctx, t)
	case a == actSignup:
		if s.Authenticated() {
			t.reuse = true
			return m.enterResolved(ctx, t)
		}
		return m.states[session.StepSignupEmail].Enter(ctx, t)
	case a == actGenerate:
		return m.generate(ctx, t)
	}

	if !s.Authenticated() {
		s.Step = session.StepNone
		return m.states[session.StepAuthentication].Enter(ctx, t)
	}

	switch {
	case strings.HasPrefix(a, actProfileDelPrefix):
		return m.states[session.StepProfileDeletion].OnInput(ctx, t)
	case strings.HasPrefix(a, actProfilePrefix):
		return m.profiles.OnInput(ctx, t)
	case s.SelectedProfileID == "":
		return m.profiles.Enter(ctx, t)
	case a == actCategoriesDone, strings.HasPrefix(a, actCategoryPrefix):
		return m.categories.OnInput(ctx, t)
	case strings.HasPrefix(a, "card:"), strings.HasPrefix(a, actPlayPrefix):
		return m.cards.OnInput(ctx, t)
	}

	t.log.Warn("unknown action", zap.String("action", a))
	t.reuse = true
	return m.enterResolved(ctx, t)
}

func (m *Machine) start(ctx context.Context, t *turn) error {
	s := t.s
	s.Step = session.StepNone
	s.Email = ""
	// force the next render to go through even if the screen looks the same
	s.LastMessageText = ""

	if !s.Authenticated() {
		u, err := m.Users.FindByChatID(ctx, s.ChatID)
		switch {
		case err == nil:
			if err := m.login(ctx, t, u); err != nil {
				return err
			}
		case !errors.Is(err, models.ErrNotFound):
			return err
		}
	}
	m.publishCommands(ctx, s)

	t.reuse = true
	return m.enterResolved(ctx, t)
}

// login binds the chat to u, dropping whatever the previous user had selected.
func (m *Machine) login(ctx context.Context, t *turn, u *models.User) error {
	if u.ChatID == nil || *u.ChatID != t.s.ChatID {
		if err := m.Users.AttachChat(ctx, u.ID, t.s.ChatID); err != nil {
			return fmt.Errorf("attach chat: %w", err)
		}
	}
	if t.s.UserID != u.ID {
		t.s.Logout()
	}
	t.s.UserID = u.ID
	t.s.Credits = u.Credits
	t.s.Email = ""
	t.s.Step = session.StepNone
	m.publishCommands(ctx, t.s)
	t.log.Info("chat logged in", zap.String("user_id", u.ID))
	return nil
}

func (m *Machine) publishCommands(ctx context.Context, s *session.Session) {
	if m.Commands == nil {
		return
	}
	if err := m.Commands.SetCommands(ctx, s.ChatID, ComputeCommandSet(s)); err != nil {
		m.Log.Warn("set commands failed", zap.String("chat_id", s.ChatID), zap.Error(err))
	}
}

func (m *Machine) showLanguages(ctx context.Context, t *turn) error {
	t.render(ctx, T(t.s.Language, "language.prompt"), languageKeyboard())
	return nil
}

func (m *Machine) changeLanguage(ctx context.Context, t *turn, code string) error {
	if l, ok := models.ParseLanguage(code); ok {
		t.s.Language = l
		m.publishCommands(ctx, t.s)
	}
	t.reuse = true
	return m.enterResolved(ctx, t)
}

func (m *Machine) generate(ctx context.Context, t *turn) error {
	s := t.s
	if !s.Authenticated() {
		t.flash(T(s.Language, "auth.required"))
		return m.enterResolved(ctx, t)
	}
	if s.Credits <= 0 {
		t.flash(T(s.Language, "generate.no_credits"))
		t.reuse = true
		return m.enterResolved(ctx, t)
	}
	return m.states[session.StepGameGeneration].Enter(ctx, t)
}

func (m *Machine) broadcast(ctx context.Context, t *turn) error {
	t.reuse = true
	if !t.s.Authenticated() {
		return m.enterResolved(ctx, t)
	}
	u, err := m.Users.FindByID(ctx, t.s.UserID)
	if err != nil {
		return err
	}
	if !u.IsAdmin {
		return m.enterResolved(ctx, t)
	}
	return m.states[session.StepBroadcast].Enter(ctx, t)
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// lock serializes work per key and frees the entry once nobody waits on it.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
