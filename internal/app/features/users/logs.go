// internal/app/features/users/logs.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/authz"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"github.com/dalemusser/collabify/internal/domain/models"
	"go.uber.org/zap"
)

type logsResponse struct {
	Logs []models.IdPLog `json:"logs"`
}

// ServeLogs fetches the newest provider log events for admins and mirrors
// them into the local store. A failed mirror write does not fail the read.
func (h *Handler) ServeLogs(w http.ResponseWriter, r *http.Request) {
	if _, err := authz.RequireAdmin(r); err != nil {
		h.fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Remote())
	defer cancel()

	logs, err := h.IdP.RecentLogs(ctx)
	if err != nil {
		h.fail(w, apierr.Upstream("Failed to fetch logs", err))
		return
	}
	if n, err := h.Logs.UpsertMany(ctx, logs); err != nil {
		h.Log.Warn("mirror provider logs", zap.Error(err))
	} else if n > 0 {
		h.Log.Debug("mirrored provider logs", zap.Int64("new", n))
	}
	if logs == nil {
		logs = []models.IdPLog{}
	}
	apierr.WriteJSON(w, http.StatusOK, logsResponse{Logs: logs})
}
