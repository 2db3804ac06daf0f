// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	projectstore "github.com/dalemusser/collabify/internal/app/store/projects"
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/authz"
	"github.com/dalemusser/collabify/internal/app/system/dashstats"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"github.com/dalemusser/collabify/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Projects *projectstore.Store
	Log      *zap.Logger

	now func() time.Time
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Projects: projectstore.New(db),
		Log:      logger,
		now:      time.Now,
	}
}

// ServeDashboard returns the aggregate over the projects the caller can
// see: every project for admins, otherwise the caller's memberships.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	u, err := authz.RequireUser(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	isAdmin := u.IsAdmin()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var projects []models.Project
	if isAdmin {
		projects, err = h.Projects.ListAll(ctx)
	} else {
		projects, err = h.Projects.ListForMember(ctx, u.Sub)
	}
	if err != nil {
		h.Log.Error("dashboard: load projects", zap.String("sub", u.Sub), zap.Error(err))
		apierr.Write(w, h.Log, err)
		return
	}

	apierr.WriteJSON(w, http.StatusOK, dashstats.Compute(projects, u.Sub, isAdmin, h.now()))
}
