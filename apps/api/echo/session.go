package echoapi

import (
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/studyroom/core"
)

const (
	headerUserName    = "X-User-Name"
	headerUserEmail   = "X-User-Email"
	contextSessionKey = "session"
)

// identityClaims are the claims read from the identity provider's token.
type identityClaims struct {
	jwt.StandardClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// sessionMiddleware reads the caller's identity and stores it as a core.Session in the context.
// The bearer token is an opaque credential issued and verified upstream by the identity provider:
// its claims are read, never verified. Without a token, the X-User-* headers are used.
// Without any email, the session falls back to the guest namespace.
func sessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Set(contextSessionKey, readSession(ctx))
			return next(ctx)
		}
	}
}

func readSession(ctx echo.Context) core.Session {
	req := ctx.Request()
	if auth := req.Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		claims := new(identityClaims)
		if _, _, err := new(jwt.Parser).ParseUnverified(strings.TrimPrefix(auth, "Bearer "), claims); err == nil {
			return core.NewSession(claims.Name, claims.Email)
		}
	}
	return core.NewSession(req.Header.Get(headerUserName), req.Header.Get(headerUserEmail))
}

func getContextSession(ctx echo.Context) core.Session {
	if sess, ok := ctx.Get(contextSessionKey).(core.Session); ok {
		return sess
	}
	return readSession(ctx)
}
