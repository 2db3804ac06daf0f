// internal/app/features/projects/handler.go
package projects

import (
	"net/http"
	"net/url"

	projectstore "github.com/dalemusser/collabify/internal/app/store/projects"
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/auditlog"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the project and membership endpoints. Task endpoints
// live in the tasks feature and share the same store.
type Handler struct {
	Projects *projectstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs a projects Handler. It is called from
// bootstrap.BuildHandler once the database and logger exist.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Projects: projectstore.New(db),
		Audit:    audit,
		Log:      logger,
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	apierr.Write(w, h.Log, err)
}

// successBody is the acknowledgement returned by membership mutations.
type successBody struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// urlParam returns a path parameter with any percent-encoding removed.
// Subs such as "auth0|abc" arrive encoded.
func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
