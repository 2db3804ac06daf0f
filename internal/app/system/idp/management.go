package idp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/auth0/go-auth0/management"
	"go.uber.org/zap"

	"github.com/dalemusser/collabify/internal/domain/models"
)

// Role is a global role defined in the provider tenant.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// User is the subset of a provider user record the service reads.
type User struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Nickname      string `json:"nickname"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Picture       string `json:"picture"`
}

// LogPageSize is the number of newest log events fetched per call.
const LogPageSize = 50

// wrap maps an SDK error onto ErrNotFound or *StatusError.
func (c *Client) wrap(method, path string, err error) error {
	if err == nil {
		return nil
	}
	var mErr management.Error
	if errors.As(err, &mErr) {
		if mErr.Status() == http.StatusNotFound {
			return ErrNotFound
		}
		c.log.Warn("idp management call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", mErr.Status()))
		return &StatusError{Method: method, Path: path, Code: mErr.Status(), Body: mErr.Error()}
	}
	return fmt.Errorf("idp: %s %s: %w", method, path, err)
}

func (c *Client) api() (*management.Management, error) {
	if c.mgmtErr != nil {
		return nil, c.mgmtErr
	}
	return c.mgmt, nil
}

func toRoles(list *management.RoleList) []Role {
	roles := []Role{}
	if list == nil {
		return roles
	}
	for _, r := range list.Roles {
		roles = append(roles, Role{ID: r.GetID(), Name: r.GetName(), Description: r.GetDescription()})
	}
	return roles
}

func toUser(u *management.User) User {
	return User{
		UserID:        u.GetID(),
		Name:          u.GetName(),
		Nickname:      u.GetNickname(),
		Email:         u.GetEmail(),
		EmailVerified: u.GetEmailVerified(),
		Picture:       u.GetPicture(),
	}
}

// UserRoles lists the global roles assigned to sub.
func (c *Client) UserRoles(ctx context.Context, sub string) ([]Role, error) {
	m, err := c.api()
	if err != nil {
		return nil, err
	}
	list, err := m.User.Roles(ctx, sub)
	if err != nil {
		return nil, c.wrap("GET", "/users/"+sub+"/roles", err)
	}
	return toRoles(list), nil
}

// RoleNames returns just the names of sub's roles.
func (c *Client) RoleNames(ctx context.Context, sub string) ([]string, error) {
	roles, err := c.UserRoles(ctx, sub)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names, nil
}

// FindRole looks a role up by exact name. ErrNotFound when absent.
func (c *Client) FindRole(ctx context.Context, name string) (Role, error) {
	m, err := c.api()
	if err != nil {
		return Role{}, err
	}
	list, err := m.Role.List(ctx, management.Parameter("name_filter", name))
	if err != nil {
		return Role{}, c.wrap("GET", "/roles", err)
	}
	roles := toRoles(list)
	for _, r := range roles {
		if r.Name == name {
			return r, nil
		}
	}
	// name_filter is a substring match on some tenants; fall back to the first hit.
	if len(roles) > 0 {
		return roles[0], nil
	}
	return Role{}, ErrNotFound
}

// AssignRole adds the role to sub.
func (c *Client) AssignRole(ctx context.Context, sub, roleID string) error {
	m, err := c.api()
	if err != nil {
		return err
	}
	err = m.User.AssignRoles(ctx, sub, []*management.Role{{ID: &roleID}})
	return c.wrap("POST", "/users/"+sub+"/roles", err)
}

// RemoveRole removes the role from sub.
func (c *Client) RemoveRole(ctx context.Context, sub, roleID string) error {
	m, err := c.api()
	if err != nil {
		return err
	}
	err = m.User.RemoveRoles(ctx, sub, []*management.Role{{ID: &roleID}})
	return c.wrap("DELETE", "/users/"+sub+"/roles", err)
}

// GetUser loads a provider user record.
func (c *Client) GetUser(ctx context.Context, sub string) (User, error) {
	m, err := c.api()
	if err != nil {
		return User{}, err
	}
	u, err := m.User.Read(ctx, sub)
	if err != nil {
		return User{}, c.wrap("GET", "/users/"+sub, err)
	}
	return toUser(u), nil
}

// UpdateNames patches the display name and nickname of sub.
func (c *Client) UpdateNames(ctx context.Context, sub, name, nickname string) (User, error) {
	m, err := c.api()
	if err != nil {
		return User{}, err
	}
	u := &management.User{Name: &name, Nickname: &nickname}
	if err := m.User.Update(ctx, sub, u); err != nil {
		return User{}, c.wrap("PATCH", "/users/"+sub, err)
	}
	return toUser(u), nil
}

// ResendVerification queues a verification email job for sub.
func (c *Client) ResendVerification(ctx context.Context, sub string) error {
	m, err := c.api()
	if err != nil {
		return err
	}
	err = m.Job.VerifyEmail(ctx, &management.Job{UserID: &sub})
	return c.wrap("POST", "/jobs/verification-email", err)
}

// RecentLogs fetches the newest tenant log events, newest first.
func (c *Client) RecentLogs(ctx context.Context) ([]models.IdPLog, error) {
	m, err := c.api()
	if err != nil {
		return nil, err
	}
	list, err := m.Log.List(ctx,
		management.PerPage(LogPageSize),
		management.IncludeTotals(false),
		management.Parameter("sort", "date:-1"))
	if err != nil {
		return nil, c.wrap("GET", "/logs", err)
	}

	logs := make([]models.IdPLog, 0, len(list))
	for _, l := range list {
		logs = append(logs, models.IdPLog{
			LogID:       l.GetLogID(),
			Date:        l.GetDate(),
			Type:        l.GetType(),
			Description: l.GetDescription(),
			ClientID:    l.GetClientID(),
			ClientName:  l.GetClientName(),
			IP:          l.GetIP(),
			Hostname:    l.GetHostname(),
			UserID:      l.GetUserID(),
			UserName:    l.GetUserName(),
			Details:     l.Details,
		})
	}
	return logs, nil
}
