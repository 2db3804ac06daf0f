package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	DefaultSessionName = "collabify-session"

	isAuthKey   = "is_authenticated"
	userSubKey  = "user_sub"
	userNameKey = "user_name"
	userEmail   = "user_email"
	userRoles   = "user_roles"
)

// RoleAdmin is the global identity-provider role for administrators.
const RoleAdmin = "admin"

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the authenticated caller: the identity-provider subject
// plus the global roles carried in the session or bearer token.
type SessionUser struct {
	Sub   string
	Name  string
	Email string
	Roles []string
}

// HasRole reports whether u carries role, ignoring case.
func (u *SessionUser) HasRole(role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(strings.TrimSpace(r), role) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether u carries the admin role.
func (u *SessionUser) IsAdmin() bool { return u.HasRole(RoleAdmin) }

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user and a "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil && u.Sub != ""
}

// WithTestUser injects u into the request context, bypassing the session.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and the optional bearer-token
// verifier. Handlers receive it through their Routes function.
type SessionManager struct {
	store  *sessions.CookieStore
	name   string
	log    *zap.Logger
	bearer *BearerVerifier
}

// NewSessionManager builds the cookie store. In production (secure=true)
// cookies are Secure + SameSite=None; for local http use secure=false.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	hashKey, blockKey, err := cookieKeys(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("derive session keys: %w", err)
	}
	store := sessions.NewCookieStore(hashKey, blockKey)
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetBearerVerifier enables Authorization: Bearer tokens as an alternative
// to the session cookie.
func (sm *SessionManager) SetBearerVerifier(v *BearerVerifier) {
	sm.bearer = v
}

// SignIn writes u into the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[isAuthKey] = true
	sess.Values[userSubKey] = u.Sub
	sess.Values[userNameKey] = u.Name
	sess.Values[userEmail] = u.Email
	sess.Values[userRoles] = strings.Join(u.Roles, ",")
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the caller into the context when a valid session
// cookie or bearer token is present. A bearer token takes precedence.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := bearerToken(r); tok != "" && sm.bearer != nil {
			u, err := sm.bearer.Verify(tok)
			if err != nil {
				sm.log.Debug("bearer token rejected", zap.Error(err))
			} else {
				next.ServeHTTP(w, withUser(r, u))
				return
			}
		}

		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			// Tampered or stale cookie: treat as signed out.
			next.ServeHTTP(w, r)
			return
		}
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			u := &SessionUser{
				Sub:   getString(sess, userSubKey),
				Name:  getString(sess, userNameKey),
				Email: getString(sess, userEmail),
				Roles: splitRoles(getString(sess, userRoles)),
			}
			if u.Sub != "" {
				r = withUser(r, u)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn answers 401 JSON when no caller is in context.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			apierr.Write(w, sm.log, apierr.Unauthenticated(""))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole answers 401 without a caller and 403 when the caller has none
// of the allowed global roles.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				apierr.Write(w, sm.log, apierr.Unauthenticated(""))
				return
			}
			for _, role := range allowed {
				if u.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			apierr.Write(w, sm.log, apierr.Forbidden("Forbidden: Admins only"))
		})
	}
}

// RequireAdmin is RequireRole(RoleAdmin).
func (sm *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return sm.RequireRole(RoleAdmin)(next)
}

// helpers

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func splitRoles(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
