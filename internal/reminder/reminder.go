package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/homielab/homie/internal/config"
	"github.com/homielab/homie/internal/database"
	"github.com/homielab/homie/internal/notify/email"
	"github.com/homielab/homie/internal/scheduler"
)

// Service runs the daily reminder job: it collects tracked items that are
// about to expire and bills coming due, and mails a digest to every
// household member with an email address.
type Service struct {
	cfg    *config.Config
	db     *database.Client
	sched  *scheduler.Scheduler
	mailer *email.NotificationService
}

// New creates the reminder service.
func New(cfg *config.Config, db *database.Client) (*Service, error) {
	sched, err := scheduler.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Service{
		cfg:    cfg,
		db:     db,
		sched:  sched,
		mailer: email.New(cfg.Email),
	}, nil
}

// Run schedules the reminder job and blocks until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.sched.AddCronJob("daily-reminders", s.cfg.Reminders.Schedule, s.sendReminders); err != nil {
		return err
	}
	s.sched.Start()

	<-ctx.Done()
	return s.sched.Stop()
}

func (s *Service) sendReminders(ctx context.Context) error {
	expiring, err := s.collectExpiringItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect expiring items: %w", err)
	}
	bills, err := s.collectUpcomingBills(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect upcoming bills: %w", err)
	}

	if len(expiring) == 0 && len(bills) == 0 {
		log.Debug("Nothing to remind about today")
		return nil
	}

	users, err := s.db.GetAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	for _, user := range users {
		if user.Email == "" {
			continue
		}
		digest := email.ReminderDigest{
			UserEmail:     user.Email,
			UserName:      user.FullName,
			ExpiringItems: expiring,
			UpcomingBills: bills,
			Currency:      s.cfg.Currency,
			ServerURL:     s.cfg.ServerURL,
		}
		if err := s.mailer.SendReminderDigest(digest); err != nil {
			log.Error("Failed to send reminder", "user", user.Email, "error", err)
		}
	}

	return nil
}

func (s *Service) collectExpiringItems(ctx context.Context) ([]email.ExpiringItem, error) {
	window := time.Duration(s.cfg.Reminders.TrackerWindowDays) * 24 * time.Hour
	items, err := s.db.ListExpiringTrackerItems(ctx, window)
	if err != nil {
		return nil, err
	}

	expiring := make([]email.ExpiringItem, 0, len(items))
	for _, item := range items {
		expiring = append(expiring, email.ExpiringItem{
			Name:       item.Name,
			ExpiryDate: item.ExpiryDate,
		})
	}
	return expiring, nil
}

func (s *Service) collectUpcomingBills(ctx context.Context) ([]email.UpcomingBill, error) {
	bills, err := s.db.ListBills(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cutoff := now.AddDate(0, 0, s.cfg.Reminders.BillWindowDays)

	upcoming := make([]email.UpcomingBill, 0)
	for _, bill := range bills {
		due := nextDueDate(bill.DueDay, now)
		if due.After(cutoff) {
			continue
		}
		upcoming = append(upcoming, email.UpcomingBill{
			Name:    bill.Name,
			Amount:  bill.Amount,
			DueDate: due,
		})
	}
	return upcoming, nil
}

// nextDueDate resolves a monthly due day into the next concrete date on or
// after now. Days past the end of a short month roll to the month's last
// day.
func nextDueDate(dueDay int, now time.Time) time.Time {
	year, month, day := now.Date()
	due := clampToMonth(year, month, dueDay, now.Location())
	if day > due.Day() {
		due = clampToMonth(year, month+1, dueDay, now.Location())
	}
	return due
}

func clampToMonth(year int, month time.Month, day int, loc *time.Location) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
