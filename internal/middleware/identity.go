package middleware

// identity.go defines helper functions shared across middleware files. They
// read the identity that JWTAuth stored in the Echo context; on public
// routes, where no token was presented, the helpers return placeholder
// identities so rate-limit keys stay well formed.

import (
	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated uid from the context, or
// "anon" when the request carries no identity.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}
