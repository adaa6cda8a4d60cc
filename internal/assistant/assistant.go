// Package assistant talks to the chat completion backend behind Mochi, the
// shop assistant.
package assistant

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned when no completion credentials are configured.
var ErrMissingAPIKey = errors.New("assistant: missing API key")

// Chat is one multi-turn conversation with the assistant model.
type Chat interface {
	// Send delivers a user message and returns the model's reply text, which
	// may be empty.
	Send(ctx context.Context, message string) (string, error)
}

// Client opens chats.
type Client interface {
	NewChat(ctx context.Context) (Chat, error)
}

// SystemInstruction sets Mochi's persona.
const SystemInstruction = `You are Mochi, a friendly, bubbly, and "kawaii" shop assistant for a store called "Mochi & Co."
We sell cute, minimalistic items like home goods, stationery, and accessories.
Your tone should be warm, helpful, and concise. Use emojis occasionally.
If a user asks for product recommendations, suggest items based on the general vibe of "cute", "cozy", and "minimalist".
You do not have real-time inventory access, so just speak generally about the types of items we carry (plushies, cute cups, stationery).
Keep responses under 3 sentences unless asked for a story.`
