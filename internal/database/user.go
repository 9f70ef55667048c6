package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// AuthMode describes how a user authenticates.
type AuthMode string

const (
	// AuthModeLocal is the trusted single-operator login form.
	AuthModeLocal AuthMode = "local"
	// AuthModeOIDC is a federated identity from the OIDC provider.
	AuthModeOIDC AuthMode = "oidc"
)

// User represents a household member.
// The admin flag is recomputed from the admin email allowlist on every
// login, it is never sticky.
type User struct {
	gorm.Model
	Username     string   `gorm:"not null"`
	Email        string   `gorm:"uniqueIndex;not null"`
	FullName     string
	IsAdmin      bool     `gorm:"default:false"`
	AuthMode     AuthMode `gorm:"not null;default:oidc"`
	Subject      string   `gorm:"index"` // OIDC subject, empty for local users
	LastLogin    *time.Time
	LastActivity *time.Time

	FeatureOverrides []FeatureVisibility `gorm:"constraint:OnDelete:CASCADE;"`
}

// SyncUserParams carries the identity attributes resolved at login time.
type SyncUserParams struct {
	Subject  string
	Email    string
	Username string
	FullName string
	AuthMode AuthMode
	// IsAdmin is computed by the caller from the admin email allowlist.
	IsAdmin bool
}

// SyncUser gets or creates the local row for an authenticated identity and
// refreshes the mutable attributes (name, admin flag, last login).
// OIDC identities match by subject first and fall back to email so accounts
// that predate the provider keep their ids.
func (c *Client) SyncUser(ctx context.Context, p SyncUserParams) (*User, error) {
	var user User
	query := c.db.WithContext(ctx)
	if p.AuthMode == AuthModeOIDC && p.Subject != "" {
		query = query.Where("subject = ?", p.Subject).Or("email = ?", p.Email)
	} else {
		query = query.Where("auth_mode = ? AND username = ?", AuthModeLocal, p.Username)
	}

	now := time.Now()
	err := query.First(&user).Error
	switch {
	case err == nil:
		user.Username = p.Username
		user.FullName = p.FullName
		user.IsAdmin = p.IsAdmin
		user.Subject = p.Subject
		user.LastLogin = &now
		if err := c.db.WithContext(ctx).Save(&user).Error; err != nil {
			log.Error("failed to update user on login", "error", err)
			return nil, err
		}
		return &user, nil
	case err == gorm.ErrRecordNotFound:
		user = User{
			Username:  p.Username,
			Email:     p.Email,
			FullName:  p.FullName,
			IsAdmin:   p.IsAdmin,
			AuthMode:  p.AuthMode,
			Subject:   p.Subject,
			LastLogin: &now,
		}
		if err := c.db.WithContext(ctx).Create(&user).Error; err != nil {
			log.Error("failed to create user", "error", err)
			return nil, err
		}
		return &user, nil
	default:
		log.Error("failed to look up user", "error", err)
		return nil, err
	}
}

func (c *Client) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		log.Error("failed to get user by ID", "error", err)
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		log.Error("failed to get all users", "error", err)
		return nil, err
	}
	return users, nil
}

// UpdateLastActivity stamps the user's last activity time.
func (c *Client) UpdateLastActivity(ctx context.Context, userID uint) error {
	return c.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).
		Update("last_activity", time.Now()).Error
}

// DeleteUser removes a user and the visibility overrides the user owns.
// Overrides where the user only appears as the acting admin are kept, the
// audit reference just goes dangling.
func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().Delete(&User{}, id)
		if res.Error != nil {
			log.Error("failed to delete user", "error", res.Error)
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		// sqlite foreign keys may be off, enforce the cascade explicitly
		if err := tx.Unscoped().Where("user_id = ?", id).Delete(&FeatureVisibility{}).Error; err != nil {
			log.Error("failed to cascade feature overrides", "error", err)
			return err
		}
		return nil
	})
}
