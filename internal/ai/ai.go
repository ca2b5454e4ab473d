// Package ai turns a short description into a playable card game through an
// LLM provider.
package ai

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider completes a chat. Implementations are asked for a JSON object reply.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
