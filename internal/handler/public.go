// This file defines handlers for the public redemption API. These routes
// allow unauthenticated customers to inspect a ticket, redeem it against a
// prize and view prize details without an account. Sensitive fields
// (recipient e-mail, creator IDs) are filtered from responses.

package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/iliyamo/shop-lottery/internal/model"
	"github.com/iliyamo/shop-lottery/internal/repository"
	"github.com/iliyamo/shop-lottery/internal/store"
)

// PublicHandler aggregates repositories needed for unauthenticated
// redemption. It produces sanitized responses suitable for public
// consumption.
type PublicHandler struct {
	Tickets *repository.TicketRepo // provides access to ticket data
	Prizes  *repository.PrizeRepo  // provides access to prize data
}

func NewPublicHandler(t *repository.TicketRepo, p *repository.PrizeRepo) *PublicHandler {
	return &PublicHandler{Tickets: t, Prizes: p}
}

// PublicPrize represents a prize exposed via the public API. It contains
// only safe fields.
type PublicPrize struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// PublicTicket represents a ticket on the redemption page. The
// recipient's e-mail stays private; anyone holding the code sees only
// the lifecycle state and the shop's memo.
type PublicTicket struct {
	Code     string       `json:"code"`
	Memo     string       `json:"memo,omitempty"`
	Redeemed bool         `json:"redeemed"`
	Shipped  bool         `json:"shipped"`
	OrderID  string       `json:"order_id,omitempty"`
	Prize    *PublicPrize `json:"prize,omitempty"`
}

type redeemReq struct {
	PrizeID string `json:"prize_id"`
}

// publicTicket builds the sanitized view, joining the chosen prize's
// public half when one has been selected. The join is best-effort; a
// missing info document leaves the prize field empty rather than
// failing the page.
func (h *PublicHandler) publicTicket(c echo.Context, code string, t model.Ticket) PublicTicket {
	out := PublicTicket{
		Code:     code,
		Memo:     t.Memo,
		Redeemed: t.Redeemed,
		Shipped:  t.Shipped,
		OrderID:  t.OrderID,
	}
	if t.PrizeID != "" {
		if info, err := h.Prizes.GetInfo(c.Request().Context(), t.PrizeID); err == nil {
			out.Prize = &PublicPrize{
				ID:          t.PrizeID,
				Name:        info.Name,
				Description: info.Description,
				Image:       info.Image,
			}
		}
	}
	return out
}

// GetTicket returns the redemption page data for a single code.
func (h *PublicHandler) GetTicket(c echo.Context) error {
	ctx := c.Request().Context()
	code := strings.TrimSpace(c.Param("code"))
	t, err := h.Tickets.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ticket failed"})
	}
	return c.JSON(http.StatusOK, h.publicTicket(c, code, t))
}

// Redeem lets the holder of a code pick a prize. A ticket can be
// redeemed exactly once; later attempts report the conflict instead of
// silently overwriting the first choice.
func (h *PublicHandler) Redeem(c echo.Context) error {
	ctx := c.Request().Context()
	code := strings.TrimSpace(c.Param("code"))
	var req redeemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	prizeID := strings.TrimSpace(req.PrizeID)
	if prizeID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "prize_id required"})
	}

	t, err := h.Tickets.Redeem(ctx, code, prizeID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		case errors.Is(err, repository.ErrUnknownPrize):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown prize"})
		case errors.Is(err, repository.ErrAlreadyRedeemed):
			return c.JSON(http.StatusConflict, echo.Map{"error": "ticket already redeemed"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "redeem failed"})
		}
	}
	return c.JSON(http.StatusOK, h.publicTicket(c, code, t))
}

// GetPrizeInfo returns the public half of a prize record, e.g. for a
// shop embedding prize details in a campaign page.
func (h *PublicHandler) GetPrizeInfo(c echo.Context) error {
	ctx := c.Request().Context()
	id := strings.TrimSpace(c.Param("id"))
	info, err := h.Prizes.GetInfo(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "prize not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load prize failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":            id,
		"name":          info.Name,
		"description":   info.Description,
		"image":         info.Image,
		"last_modified": info.LastModified.Format(time.RFC3339),
	})
}
