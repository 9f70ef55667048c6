package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/charmbracelet/log"
	"github.com/homielab/homie/internal/config"
	mail "github.com/xhit/go-simple-mail/v2"
)

// NotificationService sends household reminder emails.
type NotificationService struct {
	config *config.EmailConfig
}

// ExpiringItem is a tracked item that is about to expire.
type ExpiringItem struct {
	Name       string
	ExpiryDate time.Time
}

// UpcomingBill is a recurring bill coming due soon.
type UpcomingBill struct {
	Name    string
	Amount  float64
	DueDate time.Time
}

// ReminderDigest contains the data for one user's reminder email.
type ReminderDigest struct {
	UserEmail     string
	UserName      string
	ExpiringItems []ExpiringItem
	UpcomingBills []UpcomingBill
	Currency      string
	ServerURL     string
}

// New creates a new email notification service.
func New(cfg *config.EmailConfig) *NotificationService {
	return &NotificationService{
		config: cfg,
	}
}

// SendReminderDigest sends the daily reminder email to one user.
func (n *NotificationService) SendReminderDigest(digest ReminderDigest) error {
	if !n.config.Enabled {
		log.Debug("Email notifications are disabled, skipping reminder")
		return nil
	}

	if digest.UserEmail == "" {
		log.Warn("User email is empty, skipping reminder", "user", digest.UserName)
		return nil
	}

	subject := fmt.Sprintf("[Homie] Daily Reminders - %d expiring, %d bills due",
		len(digest.ExpiringItems), len(digest.UpcomingBills))

	body, err := n.generateEmailBody(digest)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return n.sendEmail(digest.UserEmail, subject, body)
}

//go:embed templates/*.html
var templatesFS embed.FS

// generateEmailBody creates the HTML email body.
func (n *NotificationService) generateEmailBody(digest ReminderDigest) (string, error) {
	t, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "reminder.html", digest); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// sendEmail sends an email using the go-simple-mail library.
func (n *NotificationService) sendEmail(to, subject, body string) error {
	server := mail.NewSMTPClient()
	server.Host = n.config.SMTPHost
	server.Port = n.config.SMTPPort
	server.Username = n.config.Username
	server.Password = n.config.Password

	if n.config.UseSSL {
		server.Encryption = mail.EncryptionSSLTLS
	} else if n.config.UseTLS {
		server.Encryption = mail.EncryptionSTARTTLS
	} else {
		server.Encryption = mail.EncryptionNone
	}

	if n.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := smtpClient.Close(); closeErr != nil {
			log.Warn("Failed to close SMTP client", "error", closeErr)
		}
	}()

	email := mail.NewMSG()

	fromName := n.config.FromName
	if fromName == "" {
		fromName = "Homie"
	}
	email.SetFrom(fmt.Sprintf("%s <%s>", fromName, n.config.FromEmail))
	email.AddTo(to)
	email.SetSubject(subject)
	email.SetBody(mail.TextHTML, body)

	if err := email.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("Reminder email sent", "to", to, "subject", subject)
	return nil
}
