package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config holds the configuration for the Homie server and its dependencies.
type Config struct {
	// Listen is the address the Homie server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL is the base URL of the Homie server, used in emails and the OIDC redirect.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// SessionKey is the key used to encrypt session data.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// Currency is the currency symbol shown on the bills and budget pages.
	Currency string `yaml:"currency" mapstructure:"currency"`
	// Auth holds the authentication configuration.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`
	// AccessControl holds the email allowlists used at login time.
	AccessControl *AccessControlConfig `yaml:"access_control" mapstructure:"access_control"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Email holds the email notification configuration.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
	// Reminders holds the reminder job configuration.
	Reminders *ReminderConfig `yaml:"reminders" mapstructure:"reminders"`
	// Gravatar holds the configuration for Gravatar profile pictures.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
}

// AuthConfig holds the authentication configuration for the Homie server.
type AuthConfig struct {
	// OIDC holds the OpenID Connect configuration.
	OIDC *OIDCConfig `yaml:"oidc" mapstructure:"oidc"`
	// Local holds the local operator account configuration.
	Local *LocalAuthConfig `yaml:"local" mapstructure:"local"`
}

// OIDCConfig holds the OpenID Connect configuration for the Homie server.
type OIDCConfig struct {
	// Enabled indicates whether OIDC authentication is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Name is the display name for the OIDC provider on the login page.
	Name string `yaml:"name" mapstructure:"name"`
	// Issuer is the OIDC issuer URL.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
	// ClientID is the OIDC client ID.
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	// ClientSecret is the OIDC client secret.
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	// RedirectURL is the redirect URL for the oidc flow.
	RedirectURL string `yaml:"redirect_url" mapstructure:"redirect_url"`
}

// LocalAuthConfig holds the local operator account.
// Local mode is meant for a single trusted operator; local users are
// exempt from the per-user feature visibility rules.
type LocalAuthConfig struct {
	// Enabled indicates whether the local login form is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Username is the local operator username.
	Username string `yaml:"username" mapstructure:"username"`
	// PasswordHash is the bcrypt hash of the local operator password.
	PasswordHash string `yaml:"password_hash" mapstructure:"password_hash"`
}

// AccessControlConfig holds the email allowlists loaded once at startup.
// The admin flag of every account is recomputed against AdminEmails on
// each login, so removing an address here takes effect at the next login.
type AccessControlConfig struct {
	// AdminEmails is the list of email addresses with admin privileges.
	AdminEmails []string `yaml:"admin_emails" mapstructure:"admin_emails"`
	// AllowedEmails restricts who may log in. Empty means everyone the
	// identity provider accepts. Admins are always allowed.
	AllowedEmails []string `yaml:"allowed_emails" mapstructure:"allowed_emails"`
}

// IsAdmin reports whether the given email is on the admin allowlist.
func (a *AccessControlConfig) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range a.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

// IsAllowed reports whether the given email may log in.
func (a *AccessControlConfig) IsAllowed(email string) bool {
	if len(a.AllowedEmails) == 0 {
		return true
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range a.AllowedEmails {
		if e == email {
			return true
		}
	}
	return a.IsAdmin(email)
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Path is the path to the sqlite database file.
	Path string `yaml:"path" mapstructure:"path"`
}

// EmailConfig holds the email notification configuration.
type EmailConfig struct {
	// Enabled indicates whether email notifications are enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SMTPHost is the SMTP server hostname.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the SMTP server port.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username is the SMTP username.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the SMTP password.
	Password string `yaml:"password" mapstructure:"password"`
	// FromEmail is the sender email address.
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	// FromName is the sender display name.
	FromName string `yaml:"from_name" mapstructure:"from_name"`
	// UseTLS enables STARTTLS.
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls"`
	// UseSSL enables SSL/TLS.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// ReminderConfig holds the reminder job configuration.
type ReminderConfig struct {
	// Enabled indicates whether the daily reminder job runs.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Schedule is the cron schedule for the reminder job.
	Schedule string `yaml:"schedule" mapstructure:"schedule"`
	// TrackerWindowDays is how many days ahead to warn about expiring items.
	TrackerWindowDays int `yaml:"tracker_window_days" mapstructure:"tracker_window_days"`
	// BillWindowDays is how many days ahead to warn about bills coming due.
	BillWindowDays int `yaml:"bill_window_days" mapstructure:"bill_window_days"`
}

// GravatarConfig holds the configuration for Gravatar profile pictures.
type GravatarConfig struct {
	// Enabled indicates whether Gravatar profile pictures are enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the Gravatar default image type (e.g. "mp", "robohash").
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum Gravatar image rating (g, pg, r, x).
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the size of the Gravatar image in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("HOMIE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		// Use specific config file
		v.SetConfigFile(path)
	} else {
		// Search for config in common locations
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.homie")
		v.AddConfigPath("/etc/homie")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Some environment variables can be set with the HOMIE_ prefix to override config file values")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:3003")
	v.SetDefault("server_url", "http://localhost:3003")
	v.SetDefault("session_key", "")
	v.SetDefault("session_max_age", 604800) // 7 days
	v.SetDefault("currency", "£")

	// Auth defaults
	v.SetDefault("auth.oidc.enabled", false)
	v.SetDefault("auth.oidc.name", "OIDC")
	v.SetDefault("auth.oidc.issuer", "")
	v.SetDefault("auth.oidc.client_id", "")
	v.SetDefault("auth.oidc.client_secret", "")
	v.SetDefault("auth.oidc.redirect_url", "")
	v.SetDefault("auth.local.enabled", false)
	v.SetDefault("auth.local.username", "")
	v.SetDefault("auth.local.password_hash", "")

	// Access control defaults
	v.SetDefault("access_control.admin_emails", []string{})
	v.SetDefault("access_control.allowed_emails", []string{})

	// Database defaults
	v.SetDefault("database.path", "./data/homie.db")

	// Email defaults
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from_name", "Homie")
	v.SetDefault("email.from_email", "")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.use_ssl", false)
	v.SetDefault("email.insecure_skip_verify", false)

	// Reminder defaults
	v.SetDefault("reminders.enabled", false)
	v.SetDefault("reminders.schedule", "0 8 * * *") // every day at 8am
	v.SetDefault("reminders.tracker_window_days", 30)
	v.SetDefault("reminders.bill_window_days", 3)

	// Gravatar defaults
	v.SetDefault("gravatar.enabled", false)
	v.SetDefault("gravatar.default_image", "robohash")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 80)
}

// sanitizeConfig normalizes values that can arrive in different shapes,
// mostly lists supplied as comma separated env var strings.
func sanitizeConfig(c *Config) {
	if c.AccessControl == nil {
		c.AccessControl = &AccessControlConfig{}
	}
	c.AccessControl.AdminEmails = normalizeEmailList(c.AccessControl.AdminEmails)
	c.AccessControl.AllowedEmails = normalizeEmailList(c.AccessControl.AllowedEmails)

	if c.Auth == nil {
		c.Auth = &AuthConfig{}
	}
	if c.Auth.OIDC == nil {
		c.Auth.OIDC = &OIDCConfig{}
	}
	if c.Auth.Local == nil {
		c.Auth.Local = &LocalAuthConfig{}
	}
	if c.Database == nil {
		c.Database = &DatabaseConfig{Path: "./data/homie.db"}
	}
	if c.Reminders == nil {
		c.Reminders = &ReminderConfig{}
	}
}

// normalizeEmailList lowercases and trims entries and splits single
// comma separated strings (HOMIE_ACCESS_CONTROL_ADMIN_EMAILS="a@x,b@y").
func normalizeEmailList(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, email := range strings.Split(entry, ",") {
			email = strings.ToLower(strings.TrimSpace(email))
			if email != "" {
				out = append(out, email)
			}
		}
	}
	return out
}

// validateConfig validates the required configuration values.
func validateConfig(c *Config) error {
	if c.SessionKey == "" {
		return fmt.Errorf("session_key is required")
	}
	oidcEnabled := c.Auth.OIDC != nil && c.Auth.OIDC.Enabled
	localEnabled := c.Auth.Local != nil && c.Auth.Local.Enabled
	if !oidcEnabled && !localEnabled {
		return fmt.Errorf("no authentication provider is enabled")
	}
	if oidcEnabled {
		if c.Auth.OIDC.Issuer == "" || c.Auth.OIDC.ClientID == "" || c.Auth.OIDC.ClientSecret == "" {
			return fmt.Errorf("auth.oidc requires issuer, client_id and client_secret")
		}
		if c.Auth.OIDC.RedirectURL == "" {
			c.Auth.OIDC.RedirectURL = strings.TrimSuffix(c.ServerURL, "/") + "/auth/oidc/callback"
		}
	}
	if localEnabled {
		if c.Auth.Local.Username == "" || c.Auth.Local.PasswordHash == "" {
			return fmt.Errorf("auth.local requires username and password_hash")
		}
	}
	if c.Reminders.Enabled && (c.Email == nil || !c.Email.Enabled) {
		return fmt.Errorf("reminders require email notifications to be enabled")
	}
	return nil
}
