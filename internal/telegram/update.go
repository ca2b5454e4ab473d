package telegram

import (
	"encoding/json"
	"strconv"

	"github.com/suPer8Hu/icebreaker-bot/internal/chat"
)

type rawUpdate struct {
	UpdateID      int64        `json:"update_id"`
	Message       *rawMessage  `json:"message"`
	CallbackQuery *rawCallback `json:"callback_query"`
}

type rawMessage struct {
	MessageID int      `json:"message_id"`
	Chat      rawChat  `json:"chat"`
	From      *rawUser `json:"from"`
	Text      string   `json:"text"`
}

type rawChat struct {
	ID int64 `json:"id"`
}

type rawUser struct {
	LanguageCode string `json:"language_code"`
}

type rawCallback struct {
	ID      string      `json:"id"`
	From    rawUser     `json:"from"`
	Message *rawMessage `json:"message"`
	Data    string      `json:"data"`
}

// DecodeUpdate turns a webhook body into a chat.Update. ok is false for
// updates the bot does not react to (edits, stickers, channel posts).
func DecodeUpdate(body []byte) (chat.Update, bool, error) {
	var raw rawUpdate
	if err := json.Unmarshal(body, &raw); err != nil {
		return chat.Update{}, false, err
	}

	switch {
	case raw.CallbackQuery != nil && raw.CallbackQuery.Message != nil:
		cb := raw.CallbackQuery
		u := chat.Action(chatID(cb.Message.Chat), cb.Message.MessageID, cb.Data, cb.ID)
		u.LanguageCode = cb.From.LanguageCode
		return u, true, nil

	case raw.Message != nil && raw.Message.Text != "":
		m := raw.Message
		u := chat.ParseText(chatID(m.Chat), m.MessageID, m.Text)
		if m.From != nil {
			u.LanguageCode = m.From.LanguageCode
		}
		return u, true, nil
	}
	return chat.Update{}, false, nil
}

func chatID(c rawChat) string {
	return strconv.FormatInt(c.ID, 10)
}
