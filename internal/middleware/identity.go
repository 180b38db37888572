package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/tokens"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"

	accessCookie = "accessToken"
)

// Identity reads an access token from the Authorization header or the accessToken
// cookie. A valid token puts the user id and role on the echo context and on the
// request logger. Requests without a valid token go through unchanged.
func Identity(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return next(c)
			}

			claims, err := tokens.AccessClaimsFromToken(raw, secret)
			if err != nil {
				logging.FromContext(c.Request().Context()).Debug("access token ignored", "error", err)
				return next(c)
			}
			uid, err := claims.UserID()
			if err != nil {
				return next(c)
			}

			c.Set(ContextUserID, uid)
			c.Set(ContextRole, claims.Role)

			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("user_id", uid, "role", claims.Role)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	if ck, err := c.Cookie(accessCookie); err == nil {
		return ck.Value
	}
	return ""
}

// UserID returns the id set by Identity.
func UserID(c echo.Context) (int, bool) {
	id, ok := c.Get(ContextUserID).(int)
	return id, ok
}
