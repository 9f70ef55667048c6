package gravatar

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"strings"

	"github.com/homielab/homie/internal/config"
)

// URL builds the Gravatar URL for an email address. It returns an empty
// string when Gravatar is disabled or no email is available.
func URL(email string, cfg *config.GravatarConfig) string {
	if cfg == nil || !cfg.Enabled || email == "" {
		return ""
	}
	email = strings.TrimSpace(strings.ToLower(email))

	hash := sha256.Sum256([]byte(email))

	base := fmt.Sprintf("https://www.gravatar.com/avatar/%x", hash)

	params := url.Values{}
	if cfg.DefaultImage != "" {
		params.Add("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		params.Add("r", cfg.Rating)
	}
	if cfg.Size > 0 {
		params.Add("s", fmt.Sprintf("%d", cfg.Size))
	}
	if len(params) > 0 {
		base = base + "?" + params.Encode()
	}
	return base
}
