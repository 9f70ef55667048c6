package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type HouseholdTestSuite struct {
	suite.Suite
	client *Client
	ctx    context.Context
	user   *User
}

func (s *HouseholdTestSuite) SetupTest() {
	client, err := New(":memory:")
	s.Require().NoError(err)
	s.client = client
	s.ctx = context.Background()

	s.user, err = client.SyncUser(s.ctx, SyncUserParams{
		Subject:  "sub-1",
		Email:    "jamie@example.com",
		Username: "jamie",
		AuthMode: AuthModeOIDC,
	})
	s.Require().NoError(err)
}

func (s *HouseholdTestSuite) TearDownTest() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func TestHouseholdTestSuite(t *testing.T) {
	suite.Run(t, new(HouseholdTestSuite))
}

func (s *HouseholdTestSuite) TestShoppingItemLifecycle() {
	item, err := s.client.CreateShoppingItem(s.ctx, "milk", s.user.ID)
	s.Require().NoError(err)
	s.False(item.Completed)

	toggled, err := s.client.ToggleShoppingItem(s.ctx, item.ID, s.user.ID)
	s.Require().NoError(err)
	s.True(toggled.Completed)
	s.Require().NotNil(toggled.CompletedByID)
	s.Equal(s.user.ID, *toggled.CompletedByID)
	s.NotNil(toggled.CompletedAt)

	// Toggling again clears the completion stamp.
	toggled, err = s.client.ToggleShoppingItem(s.ctx, item.ID, s.user.ID)
	s.Require().NoError(err)
	s.False(toggled.Completed)
	s.Nil(toggled.CompletedByID)
	s.Nil(toggled.CompletedAt)

	s.Require().NoError(s.client.DeleteShoppingItem(s.ctx, item.ID))
	items, err := s.client.ListShoppingItems(s.ctx)
	s.Require().NoError(err)
	s.Empty(items)
}

func (s *HouseholdTestSuite) TestChoreLifecycle() {
	chore, err := s.client.CreateChore(s.ctx, "take out bins", &s.user.ID, s.user.ID)
	s.Require().NoError(err)
	s.Require().NotNil(chore.AssignedToID)

	done, err := s.client.CompleteChore(s.ctx, chore.ID, s.user.ID)
	s.Require().NoError(err)
	s.True(done.Completed)
	s.NotNil(done.CompletedAt)

	chores, err := s.client.ListChores(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(chores, 1)
	s.Require().NotNil(chores[0].AssignedTo)
	s.Equal("jamie", chores[0].AssignedTo.Username)
}

func (s *HouseholdTestSuite) TestListExpiringTrackerItems() {
	_, err := s.client.CreateTrackerItem(s.ctx, "passport", time.Now().AddDate(1, 0, 0), s.user.ID)
	s.Require().NoError(err)
	_, err = s.client.CreateTrackerItem(s.ctx, "yogurt", time.Now().AddDate(0, 0, 2), s.user.ID)
	s.Require().NoError(err)

	expiring, err := s.client.ListExpiringTrackerItems(s.ctx, 7*24*time.Hour)
	s.Require().NoError(err)
	s.Require().Len(expiring, 1)
	s.Equal("yogurt", expiring[0].Name)
}

func (s *HouseholdTestSuite) TestBillsOrderedByDueDay() {
	_, err := s.client.CreateBill(s.ctx, "internet", 35, 20, s.user.ID)
	s.Require().NoError(err)
	_, err = s.client.CreateBill(s.ctx, "rent", 1200, 1, s.user.ID)
	s.Require().NoError(err)

	bills, err := s.client.ListBills(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(bills, 2)
	s.Equal("rent", bills[0].Name)
	s.Equal("internet", bills[1].Name)
}

func (s *HouseholdTestSuite) TestBudgetEntriesScopedToMonth() {
	_, err := s.client.CreateBudgetEntry(s.ctx, "groceries", 250, "2026-08", s.user.ID)
	s.Require().NoError(err)
	_, err = s.client.CreateBudgetEntry(s.ctx, "groceries", 300, "2026-09", s.user.ID)
	s.Require().NoError(err)

	entries, err := s.client.ListBudgetEntries(s.ctx, "2026-08")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(float64(250), entries[0].Amount)
}

func (s *HouseholdTestSuite) TestDashboardStats() {
	_, err := s.client.CreateShoppingItem(s.ctx, "milk", s.user.ID)
	s.Require().NoError(err)
	_, err = s.client.CreateChore(s.ctx, "hoover", nil, s.user.ID)
	s.Require().NoError(err)
	_, err = s.client.CreateTrackerItem(s.ctx, "yogurt", time.Now().AddDate(0, 0, 2), s.user.ID)
	s.Require().NoError(err)
	_, err = s.client.CreateBill(s.ctx, "rent", 1200, 1, s.user.ID)
	s.Require().NoError(err)

	stats, err := s.client.GetDashboardStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), stats.ShoppingCount)
	s.Equal(int64(1), stats.ChoresCount)
	s.Equal(int64(1), stats.ExpiringCount)
	s.Equal(float64(1200), stats.BillsTotal)
}

func (s *HouseholdTestSuite) TestRecentActivityMergedNewestFirst() {
	_, err := s.client.CreateShoppingItem(s.ctx, "milk", s.user.ID)
	s.Require().NoError(err)
	_, err = s.client.CreateChore(s.ctx, "hoover", nil, s.user.ID)
	s.Require().NoError(err)

	activities, err := s.client.GetRecentActivity(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(activities, 2)
	for i := 1; i < len(activities); i++ {
		s.False(activities[i].CreatedAt.After(activities[i-1].CreatedAt))
	}
}
