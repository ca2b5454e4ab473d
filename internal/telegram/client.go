// Package telegram talks to the Telegram Bot API over plain HTTP.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/suPer8Hu/icebreaker-bot/internal/chat"
)

type Client struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// APIError is a Bot API response with ok=false.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %d %s", e.Code, e.Description)
}

// NotModified reports an edit that would not change the message.
func (e *APIError) NotModified() bool {
	return strings.Contains(e.Description, "message is not modified")
}

type apiResp struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

type inlineMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type sendMessageReq struct {
	ChatID      string        `json:"chat_id"`
	MessageID   int           `json:"message_id,omitempty"`
	Text        string        `json:"text"`
	ParseMode   string        `json:"parse_mode,omitempty"`
	ReplyMarkup *inlineMarkup `json:"reply_markup,omitempty"`
}

type sentMessage struct {
	MessageID int `json:"message_id"`
}

func (c *Client) Send(ctx context.Context, chatID, text string, extras chat.Extras) (int, error) {
	req := messageReq(chatID, 0, text, extras)
	var out sentMessage
	if err := c.call(ctx, "sendMessage", req, &out); err != nil {
		return 0, err
	}
	return out.MessageID, nil
}

func (c *Client) Edit(ctx context.Context, chatID string, messageID int, text string, extras chat.Extras) error {
	req := messageReq(chatID, messageID, text, extras)
	err := c.call(ctx, "editMessageText", req, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.NotModified() {
		return nil
	}
	return err
}

func (c *Client) Delete(ctx context.Context, chatID string, messageID int) error {
	return c.call(ctx, "deleteMessage", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}, nil)
}

func (c *Client) SetCommands(ctx context.Context, chatID string, cmds []chat.Command) error {
	return c.call(ctx, "setMyCommands", map[string]any{
		"commands": cmds,
		"scope":    map[string]any{"type": "chat", "chat_id": chatID},
	}, nil)
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	if callbackID == "" {
		return nil
	}
	return c.call(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": callbackID}, nil)
}

func messageReq(chatID string, messageID int, text string, extras chat.Extras) sendMessageReq {
	req := sendMessageReq{ChatID: chatID, MessageID: messageID, Text: text}
	if extras.HTML {
		req.ParseMode = "HTML"
	}
	if len(extras.Keyboard) > 0 {
		rows := make([][]inlineButton, 0, len(extras.Keyboard))
		for _, row := range extras.Keyboard {
			r := make([]inlineButton, 0, len(row))
			for _, b := range row {
				r = append(r, inlineButton{Text: b.Text, CallbackData: b.Data, URL: b.URL})
			}
			rows = append(rows, r)
		}
		req.ReplyMarkup = &inlineMarkup{InlineKeyboard: rows}
	}
	return req
}

func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	if c.Client == nil {
		return errors.New("telegram: http client is nil")
	}
	if strings.TrimSpace(c.Token) == "" {
		return errors.New("telegram: bot token is required")
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.BaseURL, c.Token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	var decoded apiResp
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("telegram: %s: status %d", method, resp.StatusCode)
	}
	if !decoded.OK {
		code := decoded.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		return &APIError{Code: code, Description: decoded.Description}
	}
	if out != nil && len(decoded.Result) > 0 {
		return json.Unmarshal(decoded.Result, out)
	}
	return nil
}
