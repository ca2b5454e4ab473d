package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/icebreaker-bot/internal/chat"
)

type recorded struct {
	method string
	body   map[string]any
}

func newServer(t *testing.T, reply func(method string) string) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, recorded{method: method, body: body})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply(method)))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "T0KEN"), &calls
}

func TestClient_SendWithKeyboard(t *testing.T) {
	c, calls := newServer(t, func(string) string {
		return `{"ok":true,"result":{"message_id":321}}`
	})

	id, err := c.Send(context.Background(), "42", "<b>hi</b>", chat.Extras{
		HTML:     true,
		Keyboard: [][]chat.Button{{{Text: "Next", Data: "card:another"}}},
	})
	require.NoError(t, err)
	require.Equal(t, 321, id)

	require.Len(t, *calls, 1)
	got := (*calls)[0]
	require.Equal(t, "sendMessage", got.method)
	require.Equal(t, "42", got.body["chat_id"])
	require.Equal(t, "HTML", got.body["parse_mode"])
	markup := got.body["reply_markup"].(map[string]any)
	rows := markup["inline_keyboard"].([]any)
	btn := rows[0].([]any)[0].(map[string]any)
	require.Equal(t, "card:another", btn["callback_data"])
}

func TestClient_EditNotModifiedIsSuccess(t *testing.T) {
	c, _ := newServer(t, func(string) string {
		return `{"ok":false,"error_code":400,"description":"Bad Request: message is not modified"}`
	})
	require.NoError(t, c.Edit(context.Background(), "42", 7, "same", chat.Extras{}))
}

func TestClient_APIError(t *testing.T) {
	c, _ := newServer(t, func(string) string {
		return `{"ok":false,"error_code":400,"description":"Bad Request: message to delete not found"}`
	})
	err := c.Delete(context.Background(), "42", 7)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 400, apiErr.Code)
	require.False(t, apiErr.NotModified())
}

func TestClient_SetCommandsScopedToChat(t *testing.T) {
	c, calls := newServer(t, func(string) string { return `{"ok":true,"result":true}` })
	err := c.SetCommands(context.Background(), "42", []chat.Command{{Name: "start", Description: "Start"}})
	require.NoError(t, err)

	body := (*calls)[0].body
	require.Equal(t, "chat", body["scope"].(map[string]any)["type"])
	cmds := body["commands"].([]any)
	require.Equal(t, "start", cmds[0].(map[string]any)["command"])
}

func TestDecodeUpdate(t *testing.T) {
	u, ok, err := DecodeUpdate([]byte(`{"update_id":1,"message":{"message_id":9,"chat":{"id":-100},"from":{"language_code":"ru"},"text":"/help"}}`))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "-100", u.ChatID)
	require.Equal(t, chat.KindCommand, u.Kind)
	require.Equal(t, "help", u.Command)
	require.Equal(t, "ru", u.LanguageCode)

	u, ok, err = DecodeUpdate([]byte(`{"update_id":2,"callback_query":{"id":"cb1","from":{},"data":"card:love","message":{"message_id":11,"chat":{"id":5}}}}`))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, chat.KindAction, u.Kind)
	require.Equal(t, "card:love", u.Action)
	require.Equal(t, "cb1", u.CallbackID)
	require.Equal(t, 11, u.MessageID)

	_, ok, err = DecodeUpdate([]byte(`{"update_id":3,"edited_message":{"message_id":1,"chat":{"id":5},"text":"x"}}`))
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = DecodeUpdate([]byte(`{`))
	require.Error(t, err)
}
