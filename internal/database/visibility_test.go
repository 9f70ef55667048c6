package database

import (
	"context"
	"testing"

	"github.com/homielab/homie/internal/features"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

type VisibilityTestSuite struct {
	suite.Suite
	client *Client
	ctx    context.Context

	admin  *User
	member *User
}

func (s *VisibilityTestSuite) SetupTest() {
	client, err := New(":memory:")
	s.Require().NoError(err)
	s.client = client
	s.ctx = context.Background()

	s.admin, err = client.SyncUser(s.ctx, SyncUserParams{
		Subject:  "oidc-admin",
		Email:    "admin@example.com",
		Username: "admin",
		FullName: "Admin",
		AuthMode: AuthModeOIDC,
		IsAdmin:  true,
	})
	s.Require().NoError(err)

	s.member, err = client.SyncUser(s.ctx, SyncUserParams{
		Subject:  "oidc-member",
		Email:    "member@example.com",
		Username: "member",
		FullName: "Member",
		AuthMode: AuthModeOIDC,
	})
	s.Require().NoError(err)
}

func (s *VisibilityTestSuite) TearDownTest() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func TestVisibilityTestSuite(t *testing.T) {
	suite.Run(t, new(VisibilityTestSuite))
}

func (s *VisibilityTestSuite) TestDefaultAllowWithoutRow() {
	visible, err := s.client.GetFeatureVisibility(s.ctx, s.member.ID, features.FeatureShopping)
	s.Require().NoError(err)
	s.True(visible)
}

func (s *VisibilityTestSuite) TestDefaultAllowForUnknownUser() {
	// Reads don't validate user existence; a missing row means visible.
	visible, err := s.client.GetFeatureVisibility(s.ctx, 9999, features.FeatureBills)
	s.Require().NoError(err)
	s.True(visible)
}

func (s *VisibilityTestSuite) TestSetAndGet() {
	err := s.client.SetFeatureVisibility(s.ctx, s.member.ID, features.FeatureBills, false, &s.admin.ID)
	s.Require().NoError(err)

	visible, err := s.client.GetFeatureVisibility(s.ctx, s.member.ID, features.FeatureBills)
	s.Require().NoError(err)
	s.False(visible)

	// Other features of the same user stay visible.
	visible, err = s.client.GetFeatureVisibility(s.ctx, s.member.ID, features.FeatureShopping)
	s.Require().NoError(err)
	s.True(visible)

	// The same feature of another user stays visible.
	visible, err = s.client.GetFeatureVisibility(s.ctx, s.admin.ID, features.FeatureBills)
	s.Require().NoError(err)
	s.True(visible)
}

func (s *VisibilityTestSuite) TestUpsertKeepsSingleRow() {
	for _, v := range []bool{false, true, false} {
		err := s.client.SetFeatureVisibility(s.ctx, s.member.ID, features.FeatureChores, v, &s.admin.ID)
		s.Require().NoError(err)
	}

	var count int64
	err := s.client.db.Model(&FeatureVisibility{}).
		Where("user_id = ? AND feature = ?", s.member.ID, "chores").
		Count(&count).Error
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	// Last writer wins.
	visible, err := s.client.GetFeatureVisibility(s.ctx, s.member.ID, features.FeatureChores)
	s.Require().NoError(err)
	s.False(visible)
}

func (s *VisibilityTestSuite) TestConcurrentUpsertsKeepSingleRow() {
	// Concurrent writers racing on the same pair must serialize on the
	// unique index: every write succeeds and exactly one row remains.
	var g errgroup.Group
	for i := 0; i < 20; i++ {
		visible := i%2 == 0
		g.Go(func() error {
			return s.client.SetFeatureVisibility(s.ctx, s.member.ID, features.FeatureBills, visible, &s.admin.ID)
		})
	}
	s.Require().NoError(g.Wait())

	var count int64
	err := s.client.db.Model(&FeatureVisibility{}).
		Where("user_id = ? AND feature = ?", s.member.ID, "bills").
		Count(&count).Error
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	// A write after the race is the well-defined last writer.
	err = s.client.SetFeatureVisibility(s.ctx, s.member.ID, features.FeatureBills, false, &s.admin.ID)
	s.Require().NoError(err)

	visible, err := s.client.GetFeatureVisibility(s.ctx, s.member.ID, features.FeatureBills)
	s.Require().NoError(err)
	s.False(visible)
}

func (s *VisibilityTestSuite) TestUpsertUpdatesAuditRef() {
	err := s.client.SetFeatureVisibility(s.ctx, s.member.ID, features.FeatureBudget, false, &s.admin.ID)
	s.Require().NoError(err)

	other, err := s.client.SyncUser(s.ctx, SyncUserParams{
		Subject:  "oidc-other",
		Email:    "other@example.com",
		Username: "other",
		AuthMode: AuthModeOIDC,
		IsAdmin:  true,
	})
	s.Require().NoError(err)

	err = s.client.SetFeatureVisibility(s.ctx, s.member.ID, features.FeatureBudget, true, &other.ID)
	s.Require().NoError(err)

	var row FeatureVisibility
	err = s.client.db.Where("user_id = ? AND feature = ?", s.member.ID, "budget").First(&row).Error
	s.Require().NoError(err)
	s.Require().NotNil(row.UpdatedByID)
	s.Equal(other.ID, *row.UpdatedByID)
	s.True(row.Visible)
}

func (s *VisibilityTestSuite) TestSetUnknownUser() {
	err := s.client.SetFeatureVisibility(s.ctx, 9999, features.FeatureShopping, false, &s.admin.ID)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *VisibilityTestSuite) TestSetInvalidFeature() {
	err := s.client.SetFeatureVisibility(s.ctx, s.member.ID, features.Feature("garage"), false, &s.admin.ID)
	s.ErrorIs(err, features.ErrInvalidFeature)
}

func (s *VisibilityTestSuite) TestGetInvalidFeature() {
	_, err := s.client.GetFeatureVisibility(s.ctx, s.member.ID, features.Feature("garage"))
	s.ErrorIs(err, features.ErrInvalidFeature)
}

func (s *VisibilityTestSuite) TestGetAllFeatureVisibility() {
	err := s.client.SetFeatureVisibility(s.ctx, s.member.ID, features.FeatureTracker, false, &s.admin.ID)
	s.Require().NoError(err)

	m, err := s.client.GetAllFeatureVisibility(s.ctx, s.member.ID)
	s.Require().NoError(err)
	s.Len(m, len(features.All()))
	s.False(m[features.FeatureTracker])
	s.True(m[features.FeatureShopping])
	s.True(m[features.FeatureChores])
	s.True(m[features.FeatureBills])
	s.True(m[features.FeatureBudget])
}

func (s *VisibilityTestSuite) TestGetAllFeatureVisibilityFreshUser() {
	m, err := s.client.GetAllFeatureVisibility(s.ctx, s.member.ID)
	s.Require().NoError(err)
	s.Len(m, len(features.All()))
	for f, v := range m {
		s.True(v, "feature %q should default to visible", f)
	}

	// No rows are materialized by reading defaults.
	var count int64
	err = s.client.db.Model(&FeatureVisibility{}).Count(&count).Error
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *VisibilityTestSuite) TestGetAllUsersWithFeatures() {
	err := s.client.SetFeatureVisibility(s.ctx, s.member.ID, features.FeatureBills, false, &s.admin.ID)
	s.Require().NoError(err)

	list, err := s.client.GetAllUsersWithFeatures(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)

	byID := make(map[uint]UserWithFeatures)
	for _, u := range list {
		s.Len(u.Features, len(features.All()))
		byID[u.User.ID] = u
	}
	s.True(byID[s.admin.ID].Features[features.FeatureBills])
	s.False(byID[s.member.ID].Features[features.FeatureBills])
}

func (s *VisibilityTestSuite) TestDeleteUserCascadesOwnedOverrides() {
	err := s.client.SetFeatureVisibility(s.ctx, s.member.ID, features.FeatureShopping, false, &s.admin.ID)
	s.Require().NoError(err)

	err = s.client.DeleteUser(s.ctx, s.member.ID)
	s.Require().NoError(err)

	_, err = s.client.GetUserByID(s.ctx, s.member.ID)
	s.ErrorIs(err, ErrUserNotFound)

	var count int64
	err = s.client.db.Unscoped().Model(&FeatureVisibility{}).
		Where("user_id = ?", s.member.ID).Count(&count).Error
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *VisibilityTestSuite) TestDeleteAdminKeepsAuditedOverrides() {
	// Overrides where the deleted user only acted as the admin survive.
	err := s.client.SetFeatureVisibility(s.ctx, s.member.ID, features.FeatureBudget, false, &s.admin.ID)
	s.Require().NoError(err)

	err = s.client.DeleteUser(s.ctx, s.admin.ID)
	s.Require().NoError(err)

	visible, err := s.client.GetFeatureVisibility(s.ctx, s.member.ID, features.FeatureBudget)
	s.Require().NoError(err)
	s.False(visible)
}

func (s *VisibilityTestSuite) TestDeleteUnknownUser() {
	err := s.client.DeleteUser(s.ctx, 9999)
	s.ErrorIs(err, ErrUserNotFound)
}
