package ai

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
)

type OpenRouterProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	SiteURL string
	AppName string
	Client  *http.Client
}

type openRouterChatReq struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat openRouterRespFmt `json:"response_format"`
}

type openRouterRespFmt struct {
	Type string `json:"type"`
}

type openRouterChatResp struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenRouterProvider(baseURL, apiKey, model, siteURL, appName string) *OpenRouterProvider {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	return &OpenRouterProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		SiteURL: siteURL,
		AppName: appName,
		Client:  &http.Client{Timeout: 3 * time.Minute},
	}
}

func (p *OpenRouterProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if p.Client == nil {
		return "", errors.New("openrouter: http client is nil")
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return "", errors.New("openrouter: api key is required")
	}
	model := strings.TrimSpace(p.Model)
	if model == "" {
		return "", errors.New("openrouter: model is required")
	}

	b, err := json.Marshal(openRouterChatReq{
		Model:          model,
		Messages:       messages,
		Temperature:    generationTemperature,
		ResponseFormat: openRouterRespFmt{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(p.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	if p.SiteURL != "" {
		req.Header.Set("HTTP-Referer", p.SiteURL)
	}
	if p.AppName != "" {
		req.Header.Set("X-Title", p.AppName)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("openrouter: %s", msg)
	}

	var decoded openRouterChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", errors.New(decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("openrouter: empty response")
	}
	return decoded.Choices[0].Message.Content, nil
}
