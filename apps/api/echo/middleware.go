package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/trezcool/studyroom/core"
)

// multipart overhead allowed on top of the file size ceiling
const formOverhead = 1 << 20

// uploadMiddleware bounds upload bodies and rate limits uploads per namespace.
func uploadMiddleware(conf core.ServerConfig, notesConf core.NotesConfig) echo.MiddlewareFunc {
	bodyLimit := middleware.BodyLimit(fmt.Sprintf("%dK", (notesConf.MaxFileSize+formOverhead)/1024))
	if conf.UploadRate <= 0 {
		return bodyLimit
	}

	limiter := middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(conf.UploadRate),
			Burst:     conf.UploadBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return getContextSession(ctx).Namespace(), nil
		},
		DenyHandler: func(ctx echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many uploads, please wait a moment")
		},
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return limiter(bodyLimit(next))
	}
}
