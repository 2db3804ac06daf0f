// Package idp talks to the identity provider: the OAuth2 authorization-code
// login flow for browser sessions, and the Auth0 Management API (through the
// go-auth0 SDK with a client-credentials token) for roles, profiles and logs.
package idp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/auth0/go-auth0/management"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ErrNotFound is returned when the provider answers 404 or a lookup
// (such as a role by name) matches nothing.
var ErrNotFound = errors.New("idp: not found")

// StatusError is a non-2xx provider response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("idp: %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Config describes the provider tenant and the two applications used.
type Config struct {
	// Domain is the tenant host, e.g. "collabify.us.auth0.com".
	Domain string
	// BaseURL overrides "https://"+Domain. Tests point it at httptest servers.
	BaseURL string

	// Regular web application, used for login.
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Machine-to-machine application, used for the Management API.
	M2MClientID     string
	M2MClientSecret string

	// RolesClaim is the namespaced claim that carries global roles in
	// userinfo and access tokens.
	RolesClaim string
}

// Client is safe for concurrent use. The Management API token is cached
// and refreshed by the SDK's client-credentials token source.
type Client struct {
	base       string
	rolesClaim string
	login      *oauth2.Config
	mgmt       *management.Management
	mgmtErr    error
	log        *zap.Logger
}

// New builds a Client. The management token is fetched lazily on first use.
// A management client that cannot be built is reported by every Management
// API call rather than here, so login keeps working.
func New(cfg Config, logger *zap.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://" + strings.TrimRight(cfg.Domain, "/")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []management.Option
	if strings.HasPrefix(base, "http://") {
		// Must precede the credentials option, which derives its token URL
		// from the scheme.
		opts = append(opts, management.WithInsecure())
	}
	opts = append(opts, management.WithClientCredentials(context.Background(), cfg.M2MClientID, cfg.M2MClientSecret))
	mgmt, err := management.New(base, opts...)
	if err != nil {
		logger.Error("idp management client init failed", zap.Error(err))
		err = fmt.Errorf("idp: management client: %w", err)
	}

	return &Client{
		base:       base,
		rolesClaim: cfg.RolesClaim,
		login: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   base + "/authorize",
				TokenURL:  base + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		mgmt:    mgmt,
		mgmtErr: err,
		log:     logger,
	}
}

// LoginConfigured reports whether the login application is set up.
func (c *Client) LoginConfigured() bool {
	return c.login.ClientID != "" && c.login.ClientSecret != ""
}

// AuthCodeURL returns the provider consent URL for state.
func (c *Client) AuthCodeURL(state string) string {
	return c.login.AuthCodeURL(state)
}

// LogoutURL returns the provider logout URL that lands on returnTo.
func (c *Client) LogoutURL(returnTo string) string {
	q := url.Values{}
	q.Set("client_id", c.login.ClientID)
	q.Set("returnTo", returnTo)
	return c.base + "/v2/logout?" + q.Encode()
}

// Profile is the userinfo payload of a signed-in user.
type Profile struct {
	Sub           string   `json:"sub"`
	Name          string   `json:"name"`
	Nickname      string   `json:"nickname"`
	Email         string   `json:"email"`
	EmailVerified bool     `json:"email_verified"`
	Picture       string   `json:"picture"`
	Roles         []string `json:"-"`
}

// Exchange trades an authorization code for a token and loads the
// caller's userinfo.
func (c *Client) Exchange(ctx context.Context, code string) (Profile, error) {
	tok, err := c.login.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/userinfo", nil)
	if err != nil {
		return Profile{}, err
	}
	resp, err := c.login.Client(ctx, tok).Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("userinfo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Profile{}, fmt.Errorf("read userinfo: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Profile{}, &StatusError{Method: http.MethodGet, Path: "/userinfo", Code: resp.StatusCode, Body: string(body)}
	}

	var p Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return Profile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if c.rolesClaim != "" {
		var raw map[string]any
		if err := json.Unmarshal(body, &raw); err == nil {
			p.Roles = stringList(raw[c.rolesClaim])
		}
	}
	if p.Sub == "" {
		return Profile{}, errors.New("userinfo: missing sub")
	}
	return p, nil
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
