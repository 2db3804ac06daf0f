// internal/app/features/chat/handler.go
package chat

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/collabify/internal/app/system/aichat"
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/authz"
	"github.com/dalemusser/collabify/internal/app/system/jsonbody"
	"github.com/dalemusser/collabify/internal/app/system/limits"
	"github.com/dalemusser/collabify/internal/app/system/ratelimit"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Assistant answers chat requests. *aichat.Client implements it.
type Assistant interface {
	Chat(ctx context.Context, req aichat.Request) (aichat.Reply, error)
}

type Handler struct {
	AI      Assistant
	Limiter *ratelimit.Limiter
	Log     *zap.Logger
}

// NewHandler builds the chat handler. A nil limiter disables rate limiting.
func NewHandler(ai Assistant, limiter *ratelimit.Limiter, logger *zap.Logger) *Handler {
	return &Handler{AI: ai, Limiter: limiter, Log: logger}
}

type chatRequest struct {
	Message     string           `json:"message"`
	History     []aichat.Message `json:"history"`
	UserContext string           `json:"userContext"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /chat                                                                    |
| Body: {"message": "...", "history": [{"role","text"}], "userContext": "..."}  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	u, err := authz.RequireUser(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if h.Limiter != nil && !h.Limiter.Allow(u.Sub) {
		apierr.Write(w, h.Log, apierr.TooManyRequests("Too many chat requests; try again shortly"))
		return
	}

	var req chatRequest
	if err := jsonbody.DecodeMax(w, r, &req, limits.MaxChatBody); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		apierr.Write(w, h.Log, apierr.Validation("Message is required"))
		return
	}
	if len(req.History) > limits.MaxChatHistory {
		apierr.Write(w, h.Log, apierr.Validation("Chat history is too long"))
		return
	}
	for _, m := range req.History {
		if m.Role != "user" && m.Role != "model" {
			apierr.Write(w, h.Log, apierr.Validation("History roles must be user or model"))
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Remote(), h.Log, "chat")
	defer cancel()

	reply, err := h.AI.Chat(ctx, aichat.Request{
		History:     req.History,
		Message:     msg,
		UserContext: strings.TrimSpace(req.UserContext),
	})
	if errors.Is(err, aichat.ErrNotConfigured) {
		apierr.Write(w, h.Log, apierr.Upstream("The assistant is not configured", err))
		return
	}
	if err != nil {
		apierr.Write(w, h.Log, apierr.Upstream("The assistant could not answer right now", err))
		return
	}
	apierr.WriteJSON(w, http.StatusOK, reply)
}
