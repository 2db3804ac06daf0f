// internal/app/features/authidp/handler.go
package authidp

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/collabify/internal/app/store/oauthstate"
	userprofilestore "github.com/dalemusser/collabify/internal/app/store/userprofiles"
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/auditlog"
	"github.com/dalemusser/collabify/internal/app/system/auth"
	"github.com/dalemusser/collabify/internal/app/system/idp"
	"github.com/dalemusser/collabify/internal/app/system/navigation"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"github.com/dalemusser/collabify/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// stateTTL bounds how long a login may sit on the consent screen.
const stateTTL = 10 * time.Minute

// LoginProvider is the interactive half of the identity provider.
// *idp.Client implements it.
type LoginProvider interface {
	LoginConfigured() bool
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (idp.Profile, error)
	LogoutURL(returnTo string) string
}

// Handler handles the provider login, callback and logout.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	StateStore *oauthstate.Store
	Profiles   *userprofilestore.Store
	IdP        LoginProvider

	// BaseURL is where the provider sends the browser after logout.
	BaseURL string
}

func NewHandler(
	sessionMgr *auth.SessionManager,
	audit *auditlog.Logger,
	stateStore *oauthstate.Store,
	profiles *userprofilestore.Store,
	provider LoginProvider,
	baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		StateStore: stateStore,
		Profiles:   profiles,
		IdP:        provider,
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/login                                                              |
| Redirects to the provider consent screen. ?return= is honored on success.    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IdP.LoginConfigured() {
		h.Log.Warn("identity provider login not configured")
		apierr.Write(w, h.Log, apierr.Upstream("Login is not configured", nil))
		return
	}

	state := generateState()
	returnURL := navigation.ReturnURL(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.StateStore.Save(ctx, state, returnURL, time.Now().UTC().Add(stateTTL)); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		apierr.Write(w, h.Log, err)
		return
	}

	url := h.IdP.AuthCodeURL(state)
	h.Log.Debug("initiating provider login", zap.String("return_url", returnURL))
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/callback                                                           |
| Validates state, exchanges the code, signs the caller in.                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := query.Get(r, "error"); errParam != "" {
		h.Log.Warn("provider login error",
			zap.String("error", errParam),
			zap.String("description", query.Get(r, "error_description")))
		h.AuditLog.LoginFailed(r.Context(), r, "provider_denied")
		apierr.Write(w, h.Log, apierr.Unauthenticated("Login was denied"))
		return
	}

	state := query.Get(r, "state")
	code := query.Get(r, "code")
	if state == "" || code == "" {
		h.AuditLog.LoginFailed(r.Context(), r, "missing_state_or_code")
		apierr.Write(w, h.Log, apierr.Validation("Missing state or code"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Remote())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctx, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		apierr.Write(w, h.Log, err)
		return
	}
	if !valid {
		h.AuditLog.LoginFailed(ctx, r, "invalid_state")
		apierr.Write(w, h.Log, apierr.Unauthenticated("Invalid or expired login state"))
		return
	}

	profile, err := h.IdP.Exchange(ctx, code)
	if err != nil {
		h.Log.Warn("code exchange failed", zap.Error(err))
		h.AuditLog.LoginFailed(ctx, r, "token_exchange")
		apierr.Write(w, h.Log, apierr.Unauthenticated("Login failed"))
		return
	}

	user := &auth.SessionUser{
		Sub:   profile.Sub,
		Name:  profile.Name,
		Email: profile.Email,
		Roles: profile.Roles,
	}
	if err := h.SessionMgr.SignIn(w, r, user); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("sub", profile.Sub))
		apierr.Write(w, h.Log, err)
		return
	}

	if h.Profiles != nil {
		if _, err := h.Profiles.Upsert(ctx, models.UserProfile{
			UserSub:       profile.Sub,
			Name:          profile.Name,
			Nickname:      profile.Nickname,
			Email:         profile.Email,
			EmailVerified: profile.EmailVerified,
			Picture:       profile.Picture,
		}); err != nil {
			h.Log.Warn("profile cache refresh on login failed", zap.Error(err))
		}
	}

	h.AuditLog.LoginSuccess(ctx, r, profile.Sub)
	h.Log.Info("user logged in", zap.String("sub", profile.Sub))

	http.Redirect(w, r, navigation.Sanitize(returnURL), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/logout                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	sub := ""
	if u, ok := auth.CurrentUser(r); ok {
		sub = u.Sub
	}
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("clear session failed", zap.Error(err))
	}
	if sub != "" {
		h.AuditLog.Logout(r.Context(), r, sub)
	}

	if h.IdP.LoginConfigured() && h.BaseURL != "" {
		http.Redirect(w, r, h.IdP.LogoutURL(h.BaseURL+"/"), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// generateState returns 32 random bytes, URL-safe encoded.
func generateState() string {
	return base64.RawURLEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
}
