package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the user_id the JWT middleware stored on the
// context. An empty or missing value means the middleware did not run.
func getUserID(c echo.Context) (string, error) {
	uid, _ := c.Get("user_id").(string)
	if uid == "" {
		return "", errors.New("invalid user_id in context")
	}
	return uid, nil
}

// getEmail extracts the e-mail claim the JWT middleware stored on the
// context. Tokens issued by this service always carry one.
func getEmail(c echo.Context) (string, error) {
	email, _ := c.Get("email").(string)
	if email == "" {
		return "", errors.New("invalid email in context")
	}
	return email, nil
}
