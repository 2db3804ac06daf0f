// internal/domain/models/membership.go
package models

// Project roles.
const (
	RoleManager = "manager"
	RoleEditor  = "editor"
	RoleViewer  = "viewer"
)

// IsValidRole reports whether role is one of manager, editor or viewer.
func IsValidRole(role string) bool {
	switch role {
	case RoleManager, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Member is one entry of a project's membership.
type Member struct {
	UserSub string `bson:"userSub" json:"userSub"`
	Role    string `bson:"role" json:"role"`
}

// Membership is an ordered map from userSub to role. Entries keep their
// insertion order and a userSub appears at most once. Callers must use the
// methods below to change it; they return the updated value the way append
// does.
type Membership []Member

// Role returns the role held by sub and whether sub has an entry.
func (m Membership) Role(sub string) (string, bool) {
	for _, e := range m {
		if e.UserSub == sub {
			return e.Role, true
		}
	}
	return "", false
}

// Has reports whether sub has an entry.
func (m Membership) Has(sub string) bool {
	_, ok := m.Role(sub)
	return ok
}

// Set assigns role to sub, appending a new entry when sub is absent.
func (m Membership) Set(sub, role string) Membership {
	for i := range m {
		if m[i].UserSub == sub {
			m[i].Role = role
			return m
		}
	}
	return append(m, Member{UserSub: sub, Role: role})
}

// Remove deletes the entry for sub, preserving the order of the rest.
// The second result reports whether an entry was removed.
func (m Membership) Remove(sub string) (Membership, bool) {
	for i := range m {
		if m[i].UserSub == sub {
			out := make(Membership, 0, len(m)-1)
			out = append(out, m[:i]...)
			out = append(out, m[i+1:]...)
			return out, true
		}
	}
	return m, false
}

// Subs is the read-only legacy view: the member subs in order.
func (m Membership) Subs() []string {
	out := make([]string, 0, len(m))
	for _, e := range m {
		out = append(out, e.UserSub)
	}
	return out
}

// CountRole returns how many entries hold role.
func (m Membership) CountRole(role string) int {
	n := 0
	for _, e := range m {
		if e.Role == role {
			n++
		}
	}
	return n
}

// dedupe keeps the first entry per userSub and drops empty subs.
func (m Membership) dedupe() Membership {
	if len(m) == 0 {
		return m
	}
	seen := make(map[string]struct{}, len(m))
	out := make(Membership, 0, len(m))
	for _, e := range m {
		if e.UserSub == "" {
			continue
		}
		if _, dup := seen[e.UserSub]; dup {
			continue
		}
		seen[e.UserSub] = struct{}{}
		if !IsValidRole(e.Role) {
			e.Role = RoleEditor
		}
		out = append(out, e)
	}
	return out
}
