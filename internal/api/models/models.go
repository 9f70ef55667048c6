package models

import (
	"time"

	"github.com/homielab/homie/internal/database"
	"github.com/homielab/homie/internal/features"
	"github.com/samber/lo"
)

// User is the request-scoped view of the authenticated user.
type User struct {
	ID          uint
	Username    string
	Email       string
	Name        string
	IsAdmin     bool
	AuthMode    database.AuthMode
	GravatarURL string
}

// FeatureSubject converts the user into the subject the visibility
// service decides on.
func (u *User) FeatureSubject() features.Subject {
	return features.Subject{
		UserID: u.ID,
		Local:  u.AuthMode == database.AuthModeLocal,
	}
}

// FromDatabaseUser maps a stored user onto the request view model.
func FromDatabaseUser(u *database.User) *User {
	return &User{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.FullName,
		IsAdmin:  u.IsAdmin,
		AuthMode: u.AuthMode,
	}
}

// AdminUser is one row of the admin panel listing: identity fields plus
// the effective visibility of every registry feature.
type AdminUser struct {
	ID        uint                      `json:"id"`
	Username  string                    `json:"username"`
	Email     string                    `json:"email"`
	Name      string                    `json:"name"`
	IsAdmin   bool                      `json:"isAdmin"`
	AuthMode  database.AuthMode         `json:"authMode"`
	LastLogin *time.Time                `json:"lastLogin,omitempty"`
	Features  map[features.Feature]bool `json:"features"`
}

// ToAdminUsers maps the store listing onto the admin view models.
func ToAdminUsers(list []database.UserWithFeatures) []AdminUser {
	return lo.Map(list, func(u database.UserWithFeatures, _ int) AdminUser {
		return AdminUser{
			ID:        u.User.ID,
			Username:  u.User.Username,
			Email:     u.User.Email,
			Name:      u.User.FullName,
			IsAdmin:   u.User.IsAdmin,
			AuthMode:  u.User.AuthMode,
			LastLogin: u.User.LastLogin,
			Features:  u.Features,
		}
	})
}
