// internal/app/features/tasks/handler.go
package tasks

import (
	"net/http"
	"strings"
	"time"

	projectstore "github.com/dalemusser/collabify/internal/app/store/projects"
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the task endpoints nested under a project.
type Handler struct {
	Projects *projectstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger

	now func() time.Time
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Projects: projectstore.New(db),
		Audit:    audit,
		Log:      logger,
		now:      time.Now,
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	apierr.Write(w, h.Log, err)
}

// dueDateLayouts are accepted for dueDate: a full timestamp or the
// calendar date a date picker sends.
var dueDateLayouts = []string{time.RFC3339Nano, "2006-01-02"}

// parseDueDate returns nil for an empty value.
func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apierr.Validation("Invalid due date")
}
