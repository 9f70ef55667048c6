package database

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// DashboardStats holds the headline counts for the dashboard page.
type DashboardStats struct {
	ShoppingCount int64
	ChoresCount   int64
	ExpiringCount int64
	BillsTotal    float64
}

// Activity is one entry in the recent activity feed.
type Activity struct {
	Kind        string // "shopping" or "chore"
	Description string
	CreatedAt   time.Time
}

// GetDashboardStats returns the open item counts and the monthly bills total.
func (c *Client) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	db := c.db.WithContext(ctx)

	if err := db.Model(&ShoppingItem{}).Where("completed = ?", false).Count(&stats.ShoppingCount).Error; err != nil {
		log.Error("failed to count shopping items", "error", err)
		return nil, err
	}
	if err := db.Model(&Chore{}).Where("completed = ?", false).Count(&stats.ChoresCount).Error; err != nil {
		log.Error("failed to count chores", "error", err)
		return nil, err
	}
	now := time.Now()
	if err := db.Model(&TrackerItem{}).
		Where("expiry_date BETWEEN ? AND ?", now, now.AddDate(0, 0, 30)).
		Count(&stats.ExpiringCount).Error; err != nil {
		log.Error("failed to count expiring items", "error", err)
		return nil, err
	}
	if err := db.Model(&Bill{}).Select("COALESCE(SUM(amount), 0)").Scan(&stats.BillsTotal).Error; err != nil {
		log.Error("failed to sum bills", "error", err)
		return nil, err
	}
	return &stats, nil
}

// GetRecentActivity merges the latest shopping items and chores into a
// single feed, newest first.
func (c *Client) GetRecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	var items []ShoppingItem
	if err := c.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&items).Error; err != nil {
		log.Error("failed to get recent shopping items", "error", err)
		return nil, err
	}
	var chores []Chore
	if err := c.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&chores).Error; err != nil {
		log.Error("failed to get recent chores", "error", err)
		return nil, err
	}

	activities := make([]Activity, 0, len(items)+len(chores))
	for _, item := range items {
		activities = append(activities, Activity{Kind: "shopping", Description: item.Name, CreatedAt: item.CreatedAt})
	}
	for _, chore := range chores {
		activities = append(activities, Activity{Kind: "chore", Description: chore.Name, CreatedAt: chore.CreatedAt})
	}
	sort.Slice(activities, func(i, j int) bool {
		return activities[i].CreatedAt.After(activities[j].CreatedAt)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}
