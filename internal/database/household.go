package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// ShoppingItem is one entry on the shared shopping list.
type ShoppingItem struct {
	gorm.Model
	Name          string `gorm:"not null"`
	Completed     bool   `gorm:"default:false"`
	AddedByID     uint   `gorm:"not null"`
	AddedBy       User   `gorm:"foreignKey:AddedByID"`
	CompletedByID *uint
	CompletedAt   *time.Time
}

// Chore is a household task, optionally assigned to a member.
type Chore struct {
	gorm.Model
	Name          string `gorm:"not null"`
	AssignedToID  *uint
	AssignedTo    *User `gorm:"foreignKey:AssignedToID"`
	Completed     bool  `gorm:"default:false"`
	AddedByID     uint  `gorm:"not null"`
	CompletedByID *uint
	CompletedAt   *time.Time
}

// TrackerItem tracks a perishable with its expiry date.
type TrackerItem struct {
	gorm.Model
	Name       string    `gorm:"not null"`
	ExpiryDate time.Time `gorm:"not null"`
	AddedByID  uint      `gorm:"not null"`
	AddedBy    User      `gorm:"foreignKey:AddedByID"`
}

// Bill is a recurring monthly bill due on a fixed day of the month.
type Bill struct {
	gorm.Model
	Name      string  `gorm:"not null"`
	Amount    float64 `gorm:"not null"`
	DueDay    int     `gorm:"not null"`
	AddedByID uint    `gorm:"not null"`
}

// BudgetEntry is one spending category amount for a month ("2026-08").
type BudgetEntry struct {
	gorm.Model
	Category  string  `gorm:"not null"`
	Amount    float64 `gorm:"not null"`
	Month     string  `gorm:"index;not null"`
	AddedByID uint    `gorm:"not null"`
}

func (c *Client) CreateShoppingItem(ctx context.Context, name string, addedBy uint) (*ShoppingItem, error) {
	item := ShoppingItem{Name: name, AddedByID: addedBy}
	if err := c.db.WithContext(ctx).Create(&item).Error; err != nil {
		log.Error("failed to create shopping item", "error", err)
		return nil, err
	}
	return &item, nil
}

func (c *Client) ListShoppingItems(ctx context.Context) ([]ShoppingItem, error) {
	var items []ShoppingItem
	if err := c.db.WithContext(ctx).Preload("AddedBy").
		Order("completed asc, created_at desc").Find(&items).Error; err != nil {
		log.Error("failed to list shopping items", "error", err)
		return nil, err
	}
	return items, nil
}

// ToggleShoppingItem flips the completed state, stamping who completed it.
func (c *Client) ToggleShoppingItem(ctx context.Context, id, userID uint) (*ShoppingItem, error) {
	var item ShoppingItem
	if err := c.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	if item.Completed {
		item.Completed = false
		item.CompletedByID = nil
		item.CompletedAt = nil
	} else {
		now := time.Now()
		item.Completed = true
		item.CompletedByID = &userID
		item.CompletedAt = &now
	}
	if err := c.db.WithContext(ctx).Save(&item).Error; err != nil {
		log.Error("failed to toggle shopping item", "error", err)
		return nil, err
	}
	return &item, nil
}

func (c *Client) DeleteShoppingItem(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Delete(&ShoppingItem{}, id).Error
}

func (c *Client) CreateChore(ctx context.Context, name string, assignedTo *uint, addedBy uint) (*Chore, error) {
	chore := Chore{Name: name, AssignedToID: assignedTo, AddedByID: addedBy}
	if err := c.db.WithContext(ctx).Create(&chore).Error; err != nil {
		log.Error("failed to create chore", "error", err)
		return nil, err
	}
	return &chore, nil
}

func (c *Client) ListChores(ctx context.Context) ([]Chore, error) {
	var chores []Chore
	if err := c.db.WithContext(ctx).Preload("AssignedTo").
		Order("completed asc, created_at desc").Find(&chores).Error; err != nil {
		log.Error("failed to list chores", "error", err)
		return nil, err
	}
	return chores, nil
}

func (c *Client) CompleteChore(ctx context.Context, id, userID uint) (*Chore, error) {
	var chore Chore
	if err := c.db.WithContext(ctx).First(&chore, id).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	chore.Completed = true
	chore.CompletedByID = &userID
	chore.CompletedAt = &now
	if err := c.db.WithContext(ctx).Save(&chore).Error; err != nil {
		log.Error("failed to complete chore", "error", err)
		return nil, err
	}
	return &chore, nil
}

func (c *Client) DeleteChore(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Delete(&Chore{}, id).Error
}

func (c *Client) CreateTrackerItem(ctx context.Context, name string, expiry time.Time, addedBy uint) (*TrackerItem, error) {
	item := TrackerItem{Name: name, ExpiryDate: expiry, AddedByID: addedBy}
	if err := c.db.WithContext(ctx).Create(&item).Error; err != nil {
		log.Error("failed to create tracker item", "error", err)
		return nil, err
	}
	return &item, nil
}

func (c *Client) ListTrackerItems(ctx context.Context) ([]TrackerItem, error) {
	var items []TrackerItem
	if err := c.db.WithContext(ctx).Preload("AddedBy").
		Order("expiry_date asc").Find(&items).Error; err != nil {
		log.Error("failed to list tracker items", "error", err)
		return nil, err
	}
	return items, nil
}

// ListExpiringTrackerItems returns items expiring within the given window.
func (c *Client) ListExpiringTrackerItems(ctx context.Context, within time.Duration) ([]TrackerItem, error) {
	var items []TrackerItem
	now := time.Now()
	if err := c.db.WithContext(ctx).
		Where("expiry_date BETWEEN ? AND ?", now, now.Add(within)).
		Order("expiry_date asc").Find(&items).Error; err != nil {
		log.Error("failed to list expiring tracker items", "error", err)
		return nil, err
	}
	return items, nil
}

func (c *Client) DeleteTrackerItem(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Delete(&TrackerItem{}, id).Error
}

func (c *Client) CreateBill(ctx context.Context, name string, amount float64, dueDay int, addedBy uint) (*Bill, error) {
	bill := Bill{Name: name, Amount: amount, DueDay: dueDay, AddedByID: addedBy}
	if err := c.db.WithContext(ctx).Create(&bill).Error; err != nil {
		log.Error("failed to create bill", "error", err)
		return nil, err
	}
	return &bill, nil
}

func (c *Client) ListBills(ctx context.Context) ([]Bill, error) {
	var bills []Bill
	if err := c.db.WithContext(ctx).Order("due_day asc").Find(&bills).Error; err != nil {
		log.Error("failed to list bills", "error", err)
		return nil, err
	}
	return bills, nil
}

func (c *Client) DeleteBill(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Delete(&Bill{}, id).Error
}

func (c *Client) CreateBudgetEntry(ctx context.Context, category string, amount float64, month string, addedBy uint) (*BudgetEntry, error) {
	entry := BudgetEntry{Category: category, Amount: amount, Month: month, AddedByID: addedBy}
	if err := c.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Error("failed to create budget entry", "error", err)
		return nil, err
	}
	return &entry, nil
}

func (c *Client) ListBudgetEntries(ctx context.Context, month string) ([]BudgetEntry, error) {
	var entries []BudgetEntry
	if err := c.db.WithContext(ctx).Where("month = ?", month).
		Order("category asc").Find(&entries).Error; err != nil {
		log.Error("failed to list budget entries", "error", err)
		return nil, err
	}
	return entries, nil
}

func (c *Client) DeleteBudgetEntry(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Delete(&BudgetEntry{}, id).Error
}
