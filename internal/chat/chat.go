// Package chat holds the transport-neutral types shared by the bot, the
// delivery worker and the Telegram client.
package chat

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

type Button struct {
	Text string `json:"text"`
	// Data is the callback payload sent back when the button is pressed.
	Data string `json:"data,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Extras carries everything besides the text of an outbound message.
type Extras struct {
	Keyboard [][]Button `json:"keyboard,omitempty"`
	HTML     bool       `json:"html,omitempty"`
}

func (e Extras) Empty() bool {
	return len(e.Keyboard) == 0 && !e.HTML
}

// Fingerprint is a short stable digest of the extras, empty when there are none.
func (e Extras) Fingerprint() string {
	if e.Empty() {
		return ""
	}
	b, err := json.Marshal(e)
	if err != nil {
		return ""
	}
	return strconv.FormatUint(xxhash.Sum64(b), 16)
}

// Transport is the outbound side of a chat platform.
type Transport interface {
	Send(ctx context.Context, chatID, text string, extras Extras) (int, error)
	Edit(ctx context.Context, chatID string, messageID int, text string, extras Extras) error
	Delete(ctx context.Context, chatID string, messageID int) error
}

type Command struct {
	Name        string `json:"command"`
	Description string `json:"description"`
}

// CommandPublisher sets the command menu shown to one chat.
type CommandPublisher interface {
	SetCommands(ctx context.Context, chatID string, cmds []Command) error
}
