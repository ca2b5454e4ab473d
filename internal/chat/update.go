package chat

import "strings"

type UpdateKind int

const (
	KindText UpdateKind = iota
	KindCommand
	KindAction
)

// Update is one inbound event from a chat.
type Update struct {
	ChatID string
	// MessageID is the user's message, or the message holding the pressed button.
	MessageID int
	Kind      UpdateKind
	Text      string
	Command   string
	Action    string
	// CallbackID must be acknowledged for button presses.
	CallbackID   string
	LanguageCode string
}

// ParseText classifies free text, splitting "/cmd@bot args" commands.
func ParseText(chatID string, messageID int, text string) Update {
	u := Update{ChatID: chatID, MessageID: messageID, Kind: KindText, Text: text}
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return u
	}
	head, _, _ := strings.Cut(trimmed[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return u
	}
	u.Kind = KindCommand
	u.Command = strings.ToLower(head)
	return u
}

func Action(chatID string, messageID int, data, callbackID string) Update {
	return Update{
		ChatID:     chatID,
		MessageID:  messageID,
		Kind:       KindAction,
		Action:     data,
		CallbackID: callbackID,
	}
}
