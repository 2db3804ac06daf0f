// internal/app/system/auditlog/logger.go
package auditlog

// Terminology: User Identifiers
//   - sub / userSub: the identity provider subject, e.g. "auth0|abc123"
//   - actor: the signed-in caller performing the action
//   - target: the user the action is applied to (membership, role changes)

import (
	"context"
	"net/http"

	"github.com/dalemusser/collabify/internal/app/store/audit"
	"github.com/dalemusser/collabify/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Project controls logging for project, membership and task changes.
	Project string
	// Admin controls logging for identity provider management actions.
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.ActorSub != "" {
		fields = append(fields, zap.String("actor_sub", event.ActorSub))
	}
	if event.TargetSub != "" {
		fields = append(fields, zap.String("target_sub", event.TargetSub))
	}
	if event.ProjectID != "" {
		fields = append(fields, zap.String("project_id", event.ProjectID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryProject:
		setting = l.config.Project
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if (setting == "all" || setting == "log") && l.zapLog != nil {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil && l.zapLog != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, e audit.Event) audit.Event {
	if r != nil {
		e.IP = ratelimit.ClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	return e
}

// --- Authentication Events ---

// LoginSuccess logs a completed identity provider sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, sub string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		ActorSub:  sub,
		Success:   true,
	}))
}

// LoginFailed logs a failed sign-in callback.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, reason string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		Success:       false,
		FailureReason: reason,
	}))
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, sub string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		ActorSub:  sub,
		Success:   true,
	}))
}

// --- Project Events ---

func (l *Logger) project(ctx context.Context, r *http.Request, eventType, actorSub, projectID, targetSub string, details map[string]string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryProject,
		EventType: eventType,
		ActorSub:  actorSub,
		TargetSub: targetSub,
		ProjectID: projectID,
		Success:   true,
		Details:   details,
	}))
}

// ProjectCreated logs a new project.
func (l *Logger) ProjectCreated(ctx context.Context, r *http.Request, actorSub, projectID, name string) {
	l.project(ctx, r, audit.EventProjectCreated, actorSub, projectID, "", map[string]string{"name": name})
}

// ProjectDeleted logs a project removal.
func (l *Logger) ProjectDeleted(ctx context.Context, r *http.Request, actorSub, projectID string) {
	l.project(ctx, r, audit.EventProjectDeleted, actorSub, projectID, "", nil)
}

// MemberJoined logs a self-join.
func (l *Logger) MemberJoined(ctx context.Context, r *http.Request, actorSub, projectID, role string) {
	l.project(ctx, r, audit.EventMemberJoined, actorSub, projectID, actorSub, map[string]string{"role": role})
}

// MemberLeft logs a self-leave.
func (l *Logger) MemberLeft(ctx context.Context, r *http.Request, actorSub, projectID string) {
	l.project(ctx, r, audit.EventMemberLeft, actorSub, projectID, actorSub, nil)
}

// MemberRemoved logs a manager removing another member.
func (l *Logger) MemberRemoved(ctx context.Context, r *http.Request, actorSub, projectID, targetSub string) {
	l.project(ctx, r, audit.EventMemberRemoved, actorSub, projectID, targetSub, nil)
}

// RoleAssigned logs a project role change.
func (l *Logger) RoleAssigned(ctx context.Context, r *http.Request, actorSub, projectID, targetSub, role string) {
	l.project(ctx, r, audit.EventRoleAssigned, actorSub, projectID, targetSub, map[string]string{"role": role})
}

// TaskCreated logs a new task.
func (l *Logger) TaskCreated(ctx context.Context, r *http.Request, actorSub, projectID, taskID string) {
	l.project(ctx, r, audit.EventTaskCreated, actorSub, projectID, "", map[string]string{"task_id": taskID})
}

// TaskUpdated logs a task edit.
func (l *Logger) TaskUpdated(ctx context.Context, r *http.Request, actorSub, projectID, taskID string) {
	l.project(ctx, r, audit.EventTaskUpdated, actorSub, projectID, "", map[string]string{"task_id": taskID})
}

// TaskDeleted logs a task removal.
func (l *Logger) TaskDeleted(ctx context.Context, r *http.Request, actorSub, projectID, taskID string) {
	l.project(ctx, r, audit.EventTaskDeleted, actorSub, projectID, "", map[string]string{"task_id": taskID})
}

// TaskToggled logs a status step.
func (l *Logger) TaskToggled(ctx context.Context, r *http.Request, actorSub, projectID, taskID, status string) {
	l.project(ctx, r, audit.EventTaskToggled, actorSub, projectID, "", map[string]string{
		"task_id": taskID,
		"status":  status,
	})
}

// --- Admin Events ---

// IdPRoleChanged logs a global role being added to or removed from a user.
// action is "add" or "remove".
func (l *Logger) IdPRoleChanged(ctx context.Context, r *http.Request, actorSub, targetSub, action, roleName string) {
	eventType := audit.EventIdPRoleAdded
	if action == "remove" {
		eventType = audit.EventIdPRoleRemoved
	}
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorSub:  actorSub,
		TargetSub: targetSub,
		Success:   true,
		Details:   map[string]string{"role": roleName},
	}))
}

// ProfileUpdated logs an identity provider profile edit.
func (l *Logger) ProfileUpdated(ctx context.Context, r *http.Request, actorSub, targetSub string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventProfileUpdated,
		ActorSub:  actorSub,
		TargetSub: targetSub,
		Success:   true,
	}))
}

// VerificationResent logs a verification email job.
func (l *Logger) VerificationResent(ctx context.Context, r *http.Request, actorSub, targetSub string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventVerificationResent,
		ActorSub:  actorSub,
		TargetSub: targetSub,
		Success:   true,
	}))
}
