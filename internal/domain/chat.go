package domain

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Greeting is the assistant's opening message in every transcript.
const Greeting = "Hi there! I'm Mochi 🍡. Looking for something special today?"

// Fallback replies used when no completion text is available.
const (
	FallbackMissingKey = "I'm sorry, I'm having trouble connecting to my brain right now! (Missing API Key)"
	FallbackEmpty      = "I didn't catch that, could you say it again? ✨"
	FallbackError      = "Oops! Something went wrong. Please try again later. 🌸"
)

// ChatMessage is one entry of a chat transcript.
type ChatMessage struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Reply is the result of sending a chat message. Fallback is set when Text
// is one of the fixed fallback strings rather than a completion.
type Reply struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// FallbackReply wraps one of the fallback strings.
func FallbackReply(text string) Reply {
	return Reply{Text: text, Fallback: true}
}

// Transcript is the append-only chat history of a session.
type Transcript struct {
	Messages []ChatMessage `json:"messages"`
	Awaiting bool          `json:"awaiting"`
}

// NewTranscript starts a transcript with the greeting.
func NewTranscript(now time.Time) Transcript {
	return Transcript{
		Messages: []ChatMessage{{Role: RoleModel, Text: Greeting, Timestamp: now}},
	}
}

// Append returns a transcript with msg appended.
func (t Transcript) Append(msg ChatMessage) Transcript {
	messages := make([]ChatMessage, 0, len(t.Messages)+1)
	messages = append(messages, t.Messages...)
	messages = append(messages, msg)
	return Transcript{Messages: messages, Awaiting: t.Awaiting}
}
