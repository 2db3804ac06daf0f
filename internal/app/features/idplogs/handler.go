// internal/app/features/idplogs/handler.go
package idplogs

import (
	"context"
	"net/http"

	idplogstore "github.com/dalemusser/collabify/internal/app/store/idplogs"
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/auth"
	"github.com/dalemusser/collabify/internal/app/system/authz"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"github.com/dalemusser/collabify/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the local mirror of identity-provider log events.
type Handler struct {
	Logs *idplogstore.Store
	Log  *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Logs: idplogstore.New(db), Log: logger}
}

type listResponse struct {
	Logs []models.IdPLog `json:"logs"`
}

// ServeList returns the newest mirrored events.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if _, err := authz.RequireAdmin(r); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	logs, err := h.Logs.Recent(ctx, idplogstore.RecentLimit)
	if err != nil {
		h.Log.Error("read mirrored logs", zap.Error(err))
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, listResponse{Logs: logs})
}

// Routes is mounted at /logs.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.MethodNotAllowed(apierr.MethodNotAllowedHandler)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireAdmin)
		pr.Get("/", h.ServeList)
	})

	return r
}
