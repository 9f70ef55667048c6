package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const (
	// appRate bounds every request, matching the app-wide default.
	appRate = "1000-H"
	// loginRate is the stricter bound on the password form.
	loginRate = "10-M"
)

// RateLimit returns a per-client-IP rate limiting middleware for the
// given "limit-period" rate (e.g. "10-M" for ten per minute). The rate
// is static configuration, so a malformed one panics at registration.
func RateLimit(formatted string) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		panic(fmt.Sprintf("api: invalid rate %q: %v", formatted, err))
	}
	return mgin.NewMiddleware(limiter.New(memory.NewStore(), rate))
}
