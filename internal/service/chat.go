package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mochico/storefront/internal/assistant"
	"github.com/mochico/storefront/internal/domain"
	apperrors "github.com/mochico/storefront/pkg/errors"
	"github.com/mochico/storefront/pkg/logger"
)

// MaxChatMessageLength caps the size of a single user message.
const MaxChatMessageLength = 2000

// SendMessageInput is the body of a chat message.
type SendMessageInput struct {
	Text string `json:"text" validate:"max=2000"`
}

// chatSession is one visitor's conversation with Mochi. The awaiting flag
// on the transcript guarantees at most one outstanding completion, so chat
// is only touched by the sender that set it.
type chatSession struct {
	mu         sync.Mutex
	transcript domain.Transcript
	chat       assistant.Chat
	lastActive time.Time
}

// ChatService runs per-session conversations with the shop assistant.
// Conversations idle for longer than idleTTL are dropped by EvictIdle.
type ChatService struct {
	client  assistant.Client
	logger  *slog.Logger
	now     func() time.Time
	idleTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*chatSession
}

// NewChatService creates a new chat service. A zero idleTTL keeps
// conversations until Forget is called.
func NewChatService(client assistant.Client, idleTTL time.Duration, logger *slog.Logger) *ChatService {
	return &ChatService{
		client:   client,
		logger:   logger,
		now:      time.Now,
		idleTTL:  idleTTL,
		sessions: make(map[string]*chatSession),
	}
}

func (s *ChatService) session(id string) *chatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.sessions[id]
	if !ok {
		now := s.now().UTC()
		cs = &chatSession{transcript: domain.NewTranscript(now), lastActive: now}
		s.sessions[id] = cs
	}
	return cs
}

// Transcript returns the session's chat history, starting with the greeting.
// Reading a conversation that was never started does not store anything.
func (s *ChatService) Transcript(_ context.Context, id string) domain.Transcript {
	s.mu.Lock()
	cs, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return domain.NewTranscript(s.now().UTC())
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.transcript
}

// Send appends the user's message, asks the assistant for a reply and
// appends that reply (or a fallback) to the transcript.
func (s *ChatService) Send(ctx context.Context, id, text string) (domain.Reply, domain.Transcript, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Reply{}, domain.Transcript{}, apperrors.InvalidInput("message must not be empty")
	}
	if utf8.RuneCountInString(text) > MaxChatMessageLength {
		return domain.Reply{}, domain.Transcript{}, apperrors.InvalidInput("message is too long")
	}

	cs := s.session(id)

	cs.mu.Lock()
	if cs.transcript.Awaiting {
		cs.mu.Unlock()
		return domain.Reply{}, domain.Transcript{}, apperrors.Conflict("a reply is still pending")
	}
	cs.transcript = cs.transcript.Append(domain.ChatMessage{Role: domain.RoleUser, Text: text, Timestamp: s.now().UTC()})
	cs.transcript.Awaiting = true
	cs.lastActive = s.now().UTC()
	cs.mu.Unlock()

	reply := s.complete(ctx, cs, text)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.transcript = cs.transcript.Append(domain.ChatMessage{Role: domain.RoleModel, Text: reply.Text, Timestamp: s.now().UTC()})
	cs.transcript.Awaiting = false
	cs.lastActive = s.now().UTC()
	return reply, cs.transcript, nil
}

func (s *ChatService) complete(ctx context.Context, cs *chatSession, text string) domain.Reply {
	log := logger.WithContext(ctx, s.logger)

	if cs.chat == nil {
		chat, err := s.client.NewChat(ctx)
		if err != nil {
			if errors.Is(err, assistant.ErrMissingAPIKey) {
				log.WarnContext(ctx, "assistant API key is missing")
				ChatRepliesTotal.WithLabelValues("missing_key").Inc()
				return domain.FallbackReply(domain.FallbackMissingKey)
			}
			log.ErrorContext(ctx, "failed to start assistant chat", slog.String("error", err.Error()))
			ChatRepliesTotal.WithLabelValues("error").Inc()
			return domain.FallbackReply(domain.FallbackError)
		}
		cs.chat = chat
	}

	answer, err := cs.chat.Send(ctx, text)
	if err != nil {
		log.ErrorContext(ctx, "assistant completion failed", slog.String("error", err.Error()))
		ChatRepliesTotal.WithLabelValues("error").Inc()
		return domain.FallbackReply(domain.FallbackError)
	}
	if strings.TrimSpace(answer) == "" {
		ChatRepliesTotal.WithLabelValues("empty").Inc()
		return domain.FallbackReply(domain.FallbackEmpty)
	}

	ChatRepliesTotal.WithLabelValues("completion").Inc()
	return domain.Reply{Text: answer}
}

// Forget drops a session's conversation.
func (s *ChatService) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// EvictIdle drops conversations whose last message is older than the idle
// TTL and returns how many were removed. Conversations waiting on a reply
// are kept.
func (s *ChatService) EvictIdle() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().UTC().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, cs := range s.sessions {
		cs.mu.Lock()
		idle := !cs.transcript.Awaiting && cs.lastActive.Before(cutoff)
		cs.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of retained conversations.
func (s *ChatService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
