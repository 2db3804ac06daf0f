// internal/domain/models/userprofile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserProfile caches identity-provider profile data keyed by userSub.
// It is refreshed lazily and never deleted by this service.
type UserProfile struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserSub       string             `bson:"userSub" json:"userSub"`
	Name          string             `bson:"name" json:"name"`
	NameCI        string             `bson:"name_ci" json:"-"`
	Nickname      string             `bson:"nickname" json:"nickname"`
	NicknameCI    string             `bson:"nickname_ci" json:"-"`
	Email         string             `bson:"email" json:"email"`
	EmailVerified bool               `bson:"email_verified" json:"email_verified"`
	Picture       string             `bson:"picture" json:"picture"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
