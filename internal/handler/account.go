package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/iliyamo/shop-lottery/internal/repository"
	"github.com/iliyamo/shop-lottery/internal/store"
)

// AccountHandler serves the account bootstrap and profile endpoints.
type AccountHandler struct {
	Users *repository.UserRepo
}

func NewAccountHandler(u *repository.UserRepo) *AccountHandler {
	return &AccountHandler{Users: u}
}

type accountResp struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ShopTag   string    `json:"shop_tag"`
	CreatedAt time.Time `json:"created_at"`
}

// Ensure handles POST /v1/account/ensure. The first call for a uid
// writes the account document and derives the shop tag from the token's
// e-mail claim; every later call is a cheap no-op. The result string
// tells the client which of the two happened.
func (h *AccountHandler) Ensure(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	email, err := getEmail(c)
	if err != nil {
		// Tokens minted by this service always carry the claim; its
		// absence means a foreign or hand-rolled token.
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token has no email claim"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, err := h.Users.EnsureAccount(ctx, uid, email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ensure account failed"})
	}
	result := "success"
	if created {
		result = "created"
	}
	return c.JSON(http.StatusOK, echo.Map{"result": result})
}

// Get handles GET /v1/account and returns the stored account document.
func (h *AccountHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "account not initialized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load account failed"})
	}
	return c.JSON(http.StatusOK, accountResp{
		UserID:    uid,
		Email:     u.Email,
		ShopTag:   u.ShopTag,
		CreatedAt: u.CreatedAt,
	})
}
