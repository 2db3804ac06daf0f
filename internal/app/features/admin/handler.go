// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/auditlog"
	"github.com/dalemusser/collabify/internal/app/system/authz"
	"github.com/dalemusser/collabify/internal/app/system/idp"
	"github.com/dalemusser/collabify/internal/app/system/jsonbody"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// RoleManager changes global roles in the identity provider.
// *idp.Client implements it.
type RoleManager interface {
	FindRole(ctx context.Context, name string) (idp.Role, error)
	AssignRole(ctx context.Context, sub, roleID string) error
	RemoveRole(ctx context.Context, sub, roleID string) error
}

type Handler struct {
	Roles RoleManager
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func NewHandler(roles RoleManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Roles: roles, Audit: audit, Log: logger}
}

const (
	actionAdd    = "add"
	actionRemove = "remove"
)

type rolesRequest struct {
	Action   string `json:"action"`
	UserSub  string `json:"userSub"`
	RoleName string `json:"roleName"`
}

type rolesResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin/roles                                                             |
| Body: {"action": "add|remove", "userSub": "...", "roleName": "..."}           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRoles(w http.ResponseWriter, r *http.Request) {
	admin, err := authz.RequireAdmin(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	var req rolesRequest
	if err := jsonbody.Decode(w, r, &req); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	req.Action = strings.ToLower(strings.TrimSpace(req.Action))
	req.UserSub = strings.TrimSpace(req.UserSub)
	req.RoleName = strings.TrimSpace(req.RoleName)
	if req.UserSub == "" || req.RoleName == "" {
		apierr.Write(w, h.Log, apierr.Validation("userSub and roleName are required"))
		return
	}
	if req.Action != actionAdd && req.Action != actionRemove {
		apierr.Write(w, h.Log, apierr.Validation("Invalid action"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Remote())
	defer cancel()

	role, err := h.Roles.FindRole(ctx, req.RoleName)
	if errors.Is(err, idp.ErrNotFound) {
		apierr.Write(w, h.Log, apierr.NotFound(fmt.Sprintf("Role %q not found", req.RoleName)))
		return
	}
	if err != nil {
		apierr.Write(w, h.Log, apierr.Upstream("Failed to look up role", err))
		return
	}

	var msg string
	if req.Action == actionAdd {
		err = h.Roles.AssignRole(ctx, req.UserSub, role.ID)
		msg = fmt.Sprintf("Role %s added to user %s", role.Name, req.UserSub)
	} else {
		err = h.Roles.RemoveRole(ctx, req.UserSub, role.ID)
		msg = fmt.Sprintf("Role %s removed from user %s", role.Name, req.UserSub)
	}
	if errors.Is(err, idp.ErrNotFound) {
		apierr.Write(w, h.Log, apierr.NotFound("User not found"))
		return
	}
	if err != nil {
		apierr.Write(w, h.Log, apierr.Upstream("Failed to update roles", err))
		return
	}

	h.Audit.IdPRoleChanged(ctx, r, admin.Sub, req.UserSub, req.Action, role.Name)
	apierr.WriteJSON(w, http.StatusOK, rolesResponse{Success: true, Message: msg})
}
