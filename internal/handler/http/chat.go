package http

import (
	"log/slog"
	"net/http"

	"github.com/mochico/storefront/internal/domain"
	"github.com/mochico/storefront/internal/service"
	"github.com/mochico/storefront/pkg/httputil"
	"github.com/mochico/storefront/pkg/middleware"
	"github.com/mochico/storefront/pkg/validator"
)

// ChatResponse carries the reply to one message and the updated transcript.
type ChatResponse struct {
	Reply      domain.Reply      `json:"reply"`
	Transcript domain.Transcript `json:"transcript"`
}

// ChatHandler handles HTTP requests for the shop assistant.
type ChatHandler struct {
	service *service.ChatService
	logger  *slog.Logger
}

// NewChatHandler creates a new chat HTTP handler.
func NewChatHandler(svc *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  logger,
	}
}

// GetTranscript handles GET /api/v1/session/chat
func (h *ChatHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, h.service.Transcript(r.Context(), middleware.SessionIDFromContext(r.Context())))
}

// SendMessage handles POST /api/v1/session/chat
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req service.SendMessageInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	reply, transcript, err := h.service.Send(r.Context(), middleware.SessionIDFromContext(r.Context()), req.Text)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, ChatResponse{Reply: reply, Transcript: transcript})
}
