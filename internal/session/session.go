// Package session defines the per-chat conversation record kept in the session store.
package session

import (
	"slices"

	"github.com/suPer8Hu/icebreaker-bot/internal/models"
)

type Step string

const (
	StepNone               Step = ""
	StepAuthentication     Step = "authentication"
	StepHelp               Step = "help"
	StepSignupEmail        Step = "signup-email"
	StepSignupName         Step = "signup-name"
	StepGameGeneration     Step = "game-generation"
	StepProfileSelection   Step = "profile-selection"
	StepProfileCreation    Step = "profile-creation"
	StepProfileDeletion    Step = "profile-deletion"
	StepSuggestionCreation Step = "suggestion-creation"
	StepBroadcast          Step = "broadcast"
	StepCategorySelection  Step = "category-selection"
	StepCardRetrieval      Step = "card-retrieval"
)

// Session is one chat's conversation state. Optional fields use their zero
// value for "unset"; SelectedCategoryIDs carries its own tri-state.
type Session struct {
	ChatID   string          `json:"chatId"`
	Language models.Language `json:"language"`
	Step     Step            `json:"step,omitempty"`

	UserID             string            `json:"userId,omitempty"`
	SelectedProfileID  string            `json:"selectedProfileId,omitempty"`
	SelectedCategories CategorySelection `json:"selectedCategoryIds"`

	Card         *CardSnapshot `json:"card,omitempty"`
	PreviousCard *CardSnapshot `json:"previousCard,omitempty"`

	IncludeArchived bool `json:"includeArchived,omitempty"`
	IncludeLoved    bool `json:"includeLoved,omitempty"`
	Credits         int  `json:"credits,omitempty"`

	// message tracking, most recent id last
	BotMessageIDs   []int  `json:"botMessageIds,omitempty"`
	LastMessageText string `json:"lastMessageText,omitempty"`
	LastMarkup      string `json:"lastMarkup,omitempty"`

	// only set between the signup-email and signup-name steps
	Email string `json:"email,omitempty"`
}

// New is the single construction path for a fresh session.
func New(chatID string, lang models.Language) *Session {
	if _, ok := models.ParseLanguage(string(lang)); !ok {
		lang = models.English
	}
	return &Session{ChatID: chatID, Language: lang}
}

func (s *Session) Authenticated() bool {
	return s.UserID != ""
}

func (s *Session) LatestMessageID() (int, bool) {
	if len(s.BotMessageIDs) == 0 {
		return 0, false
	}
	return s.BotMessageIDs[len(s.BotMessageIDs)-1], true
}

func (s *Session) ResetTracking() {
	s.BotMessageIDs = nil
	s.LastMessageText = ""
	s.LastMarkup = ""
}

// Track records a freshly sent message as the newest one.
func (s *Session) Track(messageID int, text, markup string) {
	s.BotMessageIDs = append(s.BotMessageIDs, messageID)
	s.LastMessageText = text
	s.LastMarkup = markup
}

// Logout drops everything tied to the signed-in user but keeps the language
// and message tracking so the next render can still edit in place.
func (s *Session) Logout() {
	fresh := New(s.ChatID, s.Language)
	fresh.BotMessageIDs = s.BotMessageIDs
	fresh.LastMessageText = s.LastMessageText
	fresh.LastMarkup = s.LastMarkup
	*s = *fresh
}

func (s *Session) Clone() *Session {
	c := *s
	c.SelectedCategories = s.SelectedCategories.clone()
	c.Card = s.Card.clone()
	c.PreviousCard = s.PreviousCard.clone()
	c.BotMessageIDs = slices.Clone(s.BotMessageIDs)
	return &c
}

// RestoreState copies every conversation field from snap, leaving the
// message tracking fields as they are.
func (s *Session) RestoreState(snap *Session) {
	ids, text, markup := s.BotMessageIDs, s.LastMessageText, s.LastMarkup
	*s = *snap.Clone()
	s.BotMessageIDs, s.LastMessageText, s.LastMarkup = ids, text, markup
}

// ShowCard makes next the current card and keeps the old one for undo.
// Banned cards are never kept.
func (s *Session) ShowCard(next *CardSnapshot) {
	if s.Card != nil && s.Card.Status != models.StatusBanned && (next == nil || s.Card.ID != next.ID) {
		s.PreviousCard = s.Card
	}
	s.Card = next
}

// Undo swaps the current and previous cards. It reports false when there is
// nothing to go back to.
func (s *Session) Undo() bool {
	if s.PreviousCard == nil {
		return false
	}
	s.Card, s.PreviousCard = s.PreviousCard, s.Card
	return true
}
