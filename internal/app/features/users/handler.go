// internal/app/features/users/handler.go
package users

import (
	"context"
	"net/http"

	idplogstore "github.com/dalemusser/collabify/internal/app/store/idplogs"
	userprofilestore "github.com/dalemusser/collabify/internal/app/store/userprofiles"
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/auditlog"
	"github.com/dalemusser/collabify/internal/app/system/idp"
	"github.com/dalemusser/collabify/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Directory is the part of the identity provider the users feature reads
// and writes. *idp.Client implements it.
type Directory interface {
	RoleNames(ctx context.Context, sub string) ([]string, error)
	GetUser(ctx context.Context, sub string) (idp.User, error)
	UpdateNames(ctx context.Context, sub, name, nickname string) (idp.User, error)
	ResendVerification(ctx context.Context, sub string) error
	RecentLogs(ctx context.Context) ([]models.IdPLog, error)
}

type Handler struct {
	IdP      Directory
	Profiles *userprofilestore.Store
	Logs     *idplogstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, dir Directory, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		IdP:      dir,
		Profiles: userprofilestore.New(db),
		Logs:     idplogstore.New(db),
		Audit:    audit,
		Log:      logger,
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	apierr.Write(w, h.Log, err)
}

func profileFromIdP(u idp.User) models.UserProfile {
	return models.UserProfile{
		UserSub:       u.UserID,
		Name:          u.Name,
		Nickname:      u.Nickname,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Picture:       u.Picture,
	}
}
