package handler

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/iliyamo/shop-lottery/internal/cache"
	"github.com/iliyamo/shop-lottery/internal/keycode"
	"github.com/iliyamo/shop-lottery/internal/queue"
	"github.com/iliyamo/shop-lottery/internal/repository"
	queue_publisher "github.com/iliyamo/shop-lottery/internal/service"
	"github.com/iliyamo/shop-lottery/internal/store"
)

// TicketHandler serves code issuance and the owner-side ticket views.
type TicketHandler struct {
	Tickets  *repository.TicketRepo
	Sessions *cache.Manager
}

func NewTicketHandler(t *repository.TicketRepo, s *cache.Manager) *TicketHandler {
	return &TicketHandler{Tickets: t, Sessions: s}
}

type issueReq struct {
	Email  string `json:"email"`
	Memo   string `json:"memo"`
	Amount int    `json:"amount"`
}

type shipReq struct {
	OrderID string `json:"order_id"`
}

// Issue handles POST /v1/codes/issue. It claims a batch of fresh codes
// under the caller's shop tag, warms the session cache with them and
// fires a codes.issued event for the audit consumer. The event is
// best-effort; issuance has already committed when it is published.
func (h *TicketHandler) Issue(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req issueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess := h.Sessions.Session(uid)
	tag, err := sess.ShopTag(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoShopTag) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "account not initialized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load shop tag failed"})
	}

	issued, err := h.Tickets.Issue(ctx, tag, req.Amount, req.Email, req.Memo)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAmountRange):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be between 1 and 10"})
		case errors.Is(err, repository.ErrCodeSpaceExhausted):
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "code space exhausted for shop"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue failed"})
		}
	}
	sess.AppendTickets(issued)

	codes := make([]string, 0, len(issued))
	for code := range issued {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	event := queue.CodesIssuedEvent{
		ShopTag:  tag,
		Codes:    codes,
		Email:    req.Email,
		Memo:     req.Memo,
		IssuedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		// Detached from the request context on purpose; the response
		// must not wait for the broker.
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishCodesIssued(pubCtx, event)
	}()

	return c.JSON(http.StatusCreated, echo.Map{"tickets": issued})
}

// List handles GET /v1/tickets and returns every ticket of the caller's
// shop, served from the session cache when warm.
func (h *TicketHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Sessions.Session(uid).Tickets(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoShopTag) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "account not initialized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tickets failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": entries, "count": len(entries)})
}

// Ship handles POST /v1/tickets/:code/ship. Only the shop that issued
// the code may mark it shipped, and only after a customer redeemed it.
func (h *TicketHandler) Ship(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	code := strings.TrimSpace(c.Param("code"))
	var req shipReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess := h.Sessions.Session(uid)
	tag, err := sess.ShopTag(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoShopTag) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "account not initialized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load shop tag failed"})
	}
	codeTag, _, ok := keycode.SplitCode(code)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	}
	if codeTag != tag {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "ticket belongs to another shop"})
	}

	t, err := h.Tickets.Ship(ctx, code, strings.TrimSpace(req.OrderID))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		case errors.Is(err, repository.ErrOrderIDRequired):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id required"})
		case errors.Is(err, repository.ErrNotRedeemed):
			return c.JSON(http.StatusConflict, echo.Map{"error": "ticket not redeemed yet"})
		case errors.Is(err, repository.ErrAlreadyShipped):
			return c.JSON(http.StatusConflict, echo.Map{"error": "ticket already shipped"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ship failed"})
		}
	}
	// The cached listing is stale after the transition; drop it and
	// let the next read repopulate from the store.
	sess.Clear()

	return c.JSON(http.StatusOK, echo.Map{"code": code, "ticket": t})
}
