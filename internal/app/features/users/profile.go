// internal/app/features/users/profile.go
package users

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/authz"
	"github.com/dalemusser/collabify/internal/app/system/htmlsanitize"
	"github.com/dalemusser/collabify/internal/app/system/jsonbody"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"github.com/dalemusser/collabify/internal/domain/models"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /users/me                                                                 |
| Reads the caller from the provider and refreshes the profile cache. When the  |
| provider is unreachable the cached copy is served.                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, err := authz.RequireUser(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Remote())
	defer cancel()

	remote, err := h.IdP.GetUser(ctx, u.Sub)
	if err != nil {
		cached, cerr := h.Profiles.GetBySub(ctx, u.Sub)
		if cerr == nil {
			h.Log.Warn("profile: provider unavailable, serving cache", zap.String("sub", u.Sub), zap.Error(err))
			apierr.WriteJSON(w, http.StatusOK, cached)
			return
		}
		h.fail(w, apierr.Upstream("Failed to fetch profile", err))
		return
	}

	p, err := h.Profiles.Upsert(ctx, profileFromIdP(remote))
	if err != nil {
		h.fail(w, err)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, p)
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
}

type updateProfileResponse struct {
	Success bool               `json:"success"`
	Profile models.UserProfile `json:"profile"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| PATCH /users/profile                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	u, err := authz.RequireUser(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	var req updateProfileRequest
	if err := jsonbody.Decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}
	name := strings.TrimSpace(htmlsanitize.PlainText(req.Name))
	nickname := strings.TrimSpace(htmlsanitize.PlainText(req.Nickname))
	if name == "" {
		h.fail(w, apierr.Validation("Name is required"))
		return
	}
	if nickname == "" {
		nickname = name
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Remote())
	defer cancel()

	remote, err := h.IdP.UpdateNames(ctx, u.Sub, name, nickname)
	if err != nil {
		h.fail(w, apierr.Upstream("Failed to update profile", err))
		return
	}

	p, err := h.Profiles.Upsert(ctx, profileFromIdP(remote))
	if err != nil {
		h.fail(w, err)
		return
	}

	h.Audit.ProfileUpdated(ctx, r, u.Sub, u.Sub)
	apierr.WriteJSON(w, http.StatusOK, updateProfileResponse{Success: true, Profile: p})
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /users/resend-verification                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	u, err := authz.RequireUser(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Remote())
	defer cancel()

	if err := h.IdP.ResendVerification(ctx, u.Sub); err != nil {
		h.fail(w, apierr.Upstream("Failed to send verification email", err))
		return
	}

	h.Audit.VerificationResent(ctx, r, u.Sub, u.Sub)
	apierr.WriteJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Verification email sent"})
}
