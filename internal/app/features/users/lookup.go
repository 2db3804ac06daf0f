// internal/app/features/users/lookup.go
package users

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/limits"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// batchConcurrency bounds parallel provider calls for one info-batch request.
const batchConcurrency = 8

type rolesResponse struct {
	Roles []string `json:"roles"`
}

type infoResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// batchEntry is empty ({}) for a user whose lookup failed.
type batchEntry struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /users/roles?sub=                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoles(w http.ResponseWriter, r *http.Request) {
	sub := strings.TrimSpace(query.Get(r, "sub"))
	if sub == "" {
		h.fail(w, apierr.Validation("Missing user sub"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Remote())
	defer cancel()

	roles, err := h.IdP.RoleNames(ctx, sub)
	if err != nil {
		h.fail(w, apierr.Upstream("Failed to fetch roles", err))
		return
	}
	apierr.WriteJSON(w, http.StatusOK, rolesResponse{Roles: roles})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /users/info?user=                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeInfo(w http.ResponseWriter, r *http.Request) {
	sub := strings.TrimSpace(query.Get(r, "user"))
	if sub == "" {
		h.fail(w, apierr.Validation("Missing user"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Remote())
	defer cancel()

	u, err := h.IdP.GetUser(ctx, sub)
	if err != nil {
		h.fail(w, apierr.Upstream("Failed to fetch user info", err))
		return
	}
	apierr.WriteJSON(w, http.StatusOK, infoResponse{Name: u.Name, Email: u.Email})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /users/info-batch?users=a,b,c                                             |
| Looks users up in parallel. A failed lookup yields {} for that user.          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeInfoBatch(w http.ResponseWriter, r *http.Request) {
	subs := splitSubs(query.Get(r, "users"))
	if len(subs) == 0 {
		h.fail(w, apierr.Validation("Missing users"))
		return
	}
	if len(subs) > limits.MaxInfoBatch {
		h.fail(w, apierr.Validation("Too many users requested"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Remote())
	defer cancel()

	var mu sync.Mutex
	out := make(map[string]batchEntry, len(subs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for _, sub := range subs {
		g.Go(func() error {
			entry := batchEntry{}
			u, err := h.IdP.GetUser(gctx, sub)
			if err != nil {
				h.Log.Warn("info-batch lookup failed", zap.String("sub", sub), zap.Error(err))
			} else {
				entry = batchEntry{Name: u.Name, Email: u.Email}
			}
			mu.Lock()
			out[sub] = entry
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	apierr.WriteJSON(w, http.StatusOK, out)
}

// splitSubs parses a comma separated list, dropping blanks and repeats.
func splitSubs(s string) []string {
	seen := map[string]bool{}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}
