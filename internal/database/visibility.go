package database

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/homielab/homie/internal/features"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeatureVisibility is one persisted override for a (user, feature) pair.
// Absence of a row means the feature is visible; only exceptions are
// stored. UpdatedBy records the last acting admin and is informational,
// deleting that admin must not delete the override.
type FeatureVisibility struct {
	gorm.Model
	UserID      uint   `gorm:"uniqueIndex:idx_user_feature;not null"`
	Feature     string `gorm:"uniqueIndex:idx_user_feature;not null"`
	Visible     bool   `gorm:"not null"`
	UpdatedByID *uint
	UpdatedBy   *User `gorm:"foreignKey:UpdatedByID;constraint:OnDelete:SET NULL;"`
}

// UserWithFeatures pairs a user with the effective visibility of every
// registry feature.
type UserWithFeatures struct {
	User     User
	Features map[features.Feature]bool
}

// SetFeatureVisibility inserts or overwrites the single override row for
// the pair. The upsert is atomic on the (user_id, feature) unique index so
// concurrent writes serialize to a single last-writer row.
func (c *Client) SetFeatureVisibility(ctx context.Context, userID uint, feature features.Feature, visible bool, actingAdminID *uint) error {
	if !features.Valid(feature) {
		return features.ErrInvalidFeature
	}

	var count int64
	if err := c.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		log.Error("failed to check user existence", "error", err)
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}

	row := FeatureVisibility{
		UserID:      userID,
		Feature:     string(feature),
		Visible:     visible,
		UpdatedByID: actingAdminID,
	}
	if err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "feature"}},
		DoUpdates: clause.AssignmentColumns([]string{"visible", "updated_by_id", "updated_at"}),
	}).Create(&row).Error; err != nil {
		log.Error("failed to upsert feature visibility", "error", err)
		return err
	}
	return nil
}

// GetFeatureVisibility returns the effective visibility for one pair,
// applying the default-allow rule when no override row exists.
func (c *Client) GetFeatureVisibility(ctx context.Context, userID uint, feature features.Feature) (bool, error) {
	if !features.Valid(feature) {
		return false, features.ErrInvalidFeature
	}

	var row FeatureVisibility
	err := c.db.WithContext(ctx).
		Where("user_id = ? AND feature = ?", userID, string(feature)).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return true, nil
	}
	if err != nil {
		log.Error("failed to get feature visibility", "error", err)
		return false, err
	}
	return row.Visible, nil
}

// GetAllFeatureVisibility returns the effective visibility of every
// registry feature for one user. The map always contains exactly the
// registry keys, so callers never have to reason about missing rows.
func (c *Client) GetAllFeatureVisibility(ctx context.Context, userID uint) (map[features.Feature]bool, error) {
	var rows []FeatureVisibility
	if err := c.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		log.Error("failed to get feature visibility rows", "error", err)
		return nil, err
	}
	return effectiveMap(rows), nil
}

// GetAllUsersWithFeatures returns every user with their effective feature
// map, for the admin listing.
func (c *Client) GetAllUsersWithFeatures(ctx context.Context) ([]UserWithFeatures, error) {
	users, err := c.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	var rows []FeatureVisibility
	if err := c.db.WithContext(ctx).Find(&rows).Error; err != nil {
		log.Error("failed to get feature visibility rows", "error", err)
		return nil, err
	}

	byUser := make(map[uint][]FeatureVisibility)
	for _, row := range rows {
		byUser[row.UserID] = append(byUser[row.UserID], row)
	}

	out := make([]UserWithFeatures, 0, len(users))
	for _, user := range users {
		out = append(out, UserWithFeatures{
			User:     user,
			Features: effectiveMap(byUser[user.ID]),
		})
	}
	return out, nil
}

// effectiveMap resolves override rows into a full registry map with
// default-allow for missing pairs.
func effectiveMap(rows []FeatureVisibility) map[features.Feature]bool {
	m := make(map[features.Feature]bool, len(features.All()))
	for _, f := range features.All() {
		m[f] = true
	}
	for _, row := range rows {
		f := features.Feature(row.Feature)
		if _, ok := m[f]; ok {
			m[f] = row.Visible
		}
	}
	return m
}
