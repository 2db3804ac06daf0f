package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultRolesClaim is the namespaced claim the identity provider uses to
// carry global roles.
const DefaultRolesClaim = "http://myapp.example.com/roles"

var ErrInvalidToken = errors.New("invalid bearer token")

// BearerVerifier validates HS256-signed tokens and maps their claims onto a
// SessionUser.
type BearerVerifier struct {
	secret     []byte
	rolesClaim string
}

// NewBearerVerifier returns a verifier for tokens signed with secret.
func NewBearerVerifier(secret, rolesClaim string) *BearerVerifier {
	if rolesClaim == "" {
		rolesClaim = DefaultRolesClaim
	}
	return &BearerVerifier{secret: []byte(secret), rolesClaim: rolesClaim}
}

// Verify parses tok and returns the caller it identifies. Expired tokens,
// tokens signed with another method, and tokens without a subject fail.
func (v *BearerVerifier) Verify(tok string) (*SessionUser, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, _ := claims.GetSubject()
	if strings.TrimSpace(sub) == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}

	u := &SessionUser{Sub: sub}
	u.Name, _ = claims["name"].(string)
	u.Email, _ = claims["email"].(string)
	u.Roles = rolesFromClaim(claims[v.rolesClaim])
	return u, nil
}

// Sign issues a token for u. It is used by tests and local tooling.
func (v *BearerVerifier) Sign(u *SessionUser, claims jwt.MapClaims) (string, error) {
	mc := jwt.MapClaims{"sub": u.Sub}
	if u.Name != "" {
		mc["name"] = u.Name
	}
	if u.Email != "" {
		mc["email"] = u.Email
	}
	if len(u.Roles) > 0 {
		mc[v.rolesClaim] = u.Roles
	}
	for k, val := range claims {
		mc[k] = val
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(v.secret)
}

func rolesFromClaim(v any) []string {
	switch rs := v.(type) {
	case []any:
		out := make([]string, 0, len(rs))
		for _, r := range rs {
			if s, ok := r.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return rs
	case string:
		if rs == "" {
			return nil
		}
		return []string{rs}
	}
	return nil
}
