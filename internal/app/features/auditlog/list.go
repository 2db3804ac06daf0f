// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/collabify/internal/app/store/audit"
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/authz"
	"github.com/dalemusser/collabify/internal/app/system/paging"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type listResponse struct {
	Events     []audit.Event `json:"events"`
	Total      int64         `json:"total"`
	Limit      int           `json:"limit"`
	Offset     int           `json:"offset"`
	HasNext    bool          `json:"hasNext"`
	NextOffset int           `json:"nextOffset,omitempty"`
}

// ServeList handles GET /audit: recorded events, newest first.
//
// Filters: category, event_type, project_id, actor_sub, start_date and
// end_date (YYYY-MM-DD, inclusive). Paging: limit, offset.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if _, err := authz.RequireAdmin(r); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	page := paging.Parse(r)
	filter := audit.QueryFilter{
		Category:  strings.TrimSpace(query.Get(r, "category")),
		EventType: strings.TrimSpace(query.Get(r, "event_type")),
		ProjectID: strings.TrimSpace(query.Get(r, "project_id")),
		ActorSub:  strings.TrimSpace(query.Get(r, "actor_sub")),
	}

	if s := strings.TrimSpace(query.Get(r, "start_date")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			apierr.Write(w, h.Log, apierr.Validation("Invalid start_date"))
			return
		}
		filter.StartTime = &t
	}
	if s := strings.TrimSpace(query.Get(r, "end_date")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			apierr.Write(w, h.Log, apierr.Validation("Invalid end_date"))
			return
		}
		// End of day
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err))
		apierr.Write(w, h.Log, err)
		return
	}

	filter.Limit = page.LimitPlusOne()
	filter.Offset = int64(page.Offset)
	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		apierr.Write(w, h.Log, err)
		return
	}
	hasNext := paging.TrimPage(&events, page)
	if events == nil {
		events = []audit.Event{}
	}

	resp := listResponse{
		Events:  events,
		Total:   total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasNext: hasNext,
	}
	if hasNext {
		resp.NextOffset = page.NextOffset()
	}
	apierr.WriteJSON(w, http.StatusOK, resp)
}
