// Package chattest provides an in-memory chat transport for tests.
package chattest

import (
	"context"
	"errors"
	"sync"

	"github.com/suPer8Hu/icebreaker-bot/internal/chat"
)

var ErrInjected = errors.New("chattest: injected failure")

type Call struct {
	Method    string
	ChatID    string
	MessageID int
	Text      string
	Extras    chat.Extras
}

// Transport records every call. Failures are injected through the exported fields.
type Transport struct {
	mu     sync.Mutex
	nextID int
	calls  []Call

	FailEdit   bool
	FailDelete bool
	// FailSends makes the next n sends fail.
	FailSends int

	commands map[string][]chat.Command
}

func New() *Transport {
	return &Transport{nextID: 100, commands: map[string][]chat.Command{}}
}

func (t *Transport) Send(ctx context.Context, chatID, text string, extras chat.Extras) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailSends > 0 {
		t.FailSends--
		t.calls = append(t.calls, Call{Method: "send-failed", ChatID: chatID, Text: text})
		return 0, ErrInjected
	}
	t.nextID++
	t.calls = append(t.calls, Call{Method: "send", ChatID: chatID, MessageID: t.nextID, Text: text, Extras: extras})
	return t.nextID, nil
}

func (t *Transport) Edit(ctx context.Context, chatID string, messageID int, text string, extras chat.Extras) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailEdit {
		t.calls = append(t.calls, Call{Method: "edit-failed", ChatID: chatID, MessageID: messageID, Text: text})
		return ErrInjected
	}
	t.calls = append(t.calls, Call{Method: "edit", ChatID: chatID, MessageID: messageID, Text: text, Extras: extras})
	return nil
}

func (t *Transport) Delete(ctx context.Context, chatID string, messageID int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, Call{Method: "delete", ChatID: chatID, MessageID: messageID})
	if t.FailDelete {
		return ErrInjected
	}
	return nil
}

func (t *Transport) SetCommands(ctx context.Context, chatID string, cmds []chat.Command) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.commands[chatID] = append([]chat.Command(nil), cmds...)
	return nil
}

func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Call(nil), t.calls...)
}

func (t *Transport) Count(method string) int {
	n := 0
	for _, c := range t.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Last returns the most recent successful send or edit.
func (t *Transport) Last() (Call, bool) {
	calls := t.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == "send" || calls[i].Method == "edit" {
			return calls[i], true
		}
	}
	return Call{}, false
}

func (t *Transport) Deleted() []int {
	var out []int
	for _, c := range t.Calls() {
		if c.Method == "delete" {
			out = append(out, c.MessageID)
		}
	}
	return out
}

func (t *Transport) Commands(chatID string) []chat.Command {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]chat.Command(nil), t.commands[chatID]...)
}

func (t *Transport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = nil
}
