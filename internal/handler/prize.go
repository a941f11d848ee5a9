package handler // handler package contains owner-specific prize handlers

import (
	"context"  // provides context with cancellation for store calls
	"net/http" // http provides status code constants
	"strings"  // strings offers trimming utilities
	"time"     // time bounds request-scoped store calls

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers
	"github.com/pkg/errors"       // errors matches sentinel values from the repositories

	"github.com/iliyamo/shop-lottery/internal/cache"      // cache holds the per-user session state
	"github.com/iliyamo/shop-lottery/internal/repository" // repository holds store models
	"github.com/iliyamo/shop-lottery/internal/store"      // store supplies the not-found sentinel
)

// PrizeHandler bundles dependencies for owners to manage their prize catalog.
type PrizeHandler struct {
	Prizes   *repository.PrizeRepo // Prizes provides prize persistence
	Sessions *cache.Manager        // Sessions caches per-user listings
}

// NewPrizeHandler constructs a new PrizeHandler and panics if any dependency is nil.
func NewPrizeHandler(prizes *repository.PrizeRepo, sessions *cache.Manager) *PrizeHandler { // create a new handler with its dependencies
	if prizes == nil || sessions == nil { // check for nil dependencies
		panic("nil dependency passed to NewPrizeHandler") // panic when a dependency is missing
	}
	return &PrizeHandler{Prizes: prizes, Sessions: sessions} // return a pointer to the new handler
}

// Create handles POST /v1/prizes and registers a new prize for the authenticated owner.
func (h *PrizeHandler) Create(c echo.Context) error { // begin Create handler
	uid, err := getUserID(c) // extract the owner ID from context
	if err != nil {          // check if the user ID was not available or invalid
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"}) // respond with unauthorized when user ID cannot be obtained
	}
	var body struct { // anonymous struct to bind incoming JSON
		Name        string `json:"name"`        // Name is the only required field for a prize
		Description string `json:"description"` // Description is shown on the public redemption page
		Quantity    int    `json:"quantity"`    // Quantity is the stock count, 0 to 999
		Image       string `json:"image"`       // Image is an optional URL for the public page
	}
	if err := c.Bind(&body); err != nil { // attempt to bind the request body into the struct
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"}) // return bad request when binding fails
	}
	name := strings.TrimSpace(body.Name) // trim spaces around the prize name
	if name == "" {                      // ensure the name is not empty after trimming
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"}) // respond with error when name is empty
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second) // bound the store calls
	defer cancel()

	sess := h.Sessions.Session(uid) // fetch or create the caller's session
	tag, err := sess.ShopTag(ctx)   // resolve the shop tag the prize id will carry
	if err != nil {                 // the account document may not exist yet
		if errors.Is(err, repository.ErrNoShopTag) { // account was never bootstrapped
			return c.JSON(http.StatusNotFound, map[string]string{"error": "account not initialized"}) // respond with not found
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "load shop tag failed"}) // respond with store error
	}

	entry, err := h.Prizes.Create(ctx, uid, tag, name, strings.TrimSpace(body.Description), strings.TrimSpace(body.Image), body.Quantity) // delegate creation to the repository
	if err != nil {                                                                                                                      // handle creation failures
		if errors.Is(err, repository.ErrQuantityRange) { // quantity outside 0..999
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "quantity must be between 0 and 999"}) // respond with bad request
		}
		if errors.Is(err, repository.ErrCodeSpaceExhausted) { // id space for this shop tag is used up
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "prize id space exhausted"}) // respond with internal error
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create prize"}) // respond with internal error for other failures
	}
	sess.AppendPrizes(entry) // warm the cached listing with the new prize

	return c.JSON(http.StatusCreated, entry) // return 201 and the created prize on success
}

// List handles GET /v1/prizes and returns all prizes created by the authenticated owner.
func (h *PrizeHandler) List(c echo.Context) error { // begin List handler
	uid, err := getUserID(c) // extract the user ID from context
	if err != nil {          // invalid user means unauthorized
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"}) // respond unauthorized
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second) // bound the store calls
	defer cancel()

	entries, err := h.Sessions.Session(uid).Prizes(ctx) // fetch prizes for this owner, cached per session
	if err != nil {                                     // handle repository errors
		if errors.Is(err, repository.ErrNoShopTag) { // account was never bootstrapped
			return c.JSON(http.StatusNotFound, map[string]string{"error": "account not initialized"}) // respond with not found
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "list prizes failed"}) // respond with internal server error
	}
	return c.JSON(http.StatusOK, map[string]any{"prizes": entries, "count": len(entries)}) // return the list wrapped in a JSON object
}

// Delete handles DELETE /v1/prizes/:id and removes both halves of a prize record.
func (h *PrizeHandler) Delete(c echo.Context) error { // begin Delete handler
	uid, err := getUserID(c) // extract the user ID from context
	if err != nil {          // invalid user means unauthorized
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"}) // respond unauthorized
	}
	id := strings.TrimSpace(c.Param("id")) // the prize id from the URL
	if id == "" {                          // reject empty ids outright
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"}) // respond with bad request
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second) // bound the store calls
	defer cancel()

	if err := h.Prizes.Delete(ctx, uid, id); err != nil { // delegate deletion to the repository
		if errors.Is(err, store.ErrNotFound) { // the prize does not exist
			return c.JSON(http.StatusNotFound, map[string]string{"error": "prize not found"}) // respond with not found
		}
		if errors.Is(err, repository.ErrForbidden) { // the prize belongs to another owner
			return c.JSON(http.StatusForbidden, map[string]string{"error": "prize belongs to another owner"}) // respond with forbidden
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"}) // respond with generic delete failure
	}
	h.Sessions.Session(uid).Clear() // drop the cached listing so the next read repopulates

	return c.JSON(http.StatusOK, map[string]any{"deleted": true}) // confirm the deletion
}
