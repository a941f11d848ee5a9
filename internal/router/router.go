package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/shop-lottery/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/shop-lottery/internal/middleware" // import middleware for JWT authentication and rate limiting
)

// RegisterRoutes registers operational endpoints on the provided Echo
// instance: the health check used by load balancers and the Prometheus
// scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware. Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session (register,
	// login, refresh). Each of these handlers is responsible for
	// generating or exchanging tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access reuses it and
	// only mints a new access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication. The handler accepts a
	// JSON body containing a `refresh_token` or a Bearer header and
	// ends that session; 204 on success.
	g.POST("/logout", a.Logout)

	// Routes that require a valid access token.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)

	// Alias kept for clients that log out at the top level with a
	// refresh token in the body.
	e.POST("/v1/logout", a.Logout)
}

// RegisterShop registers the authenticated shop-owner endpoints under
// /v1. All routes require a valid JWT; the rate limiter runs after
// authentication so buckets are keyed by user rather than by IP
// whenever possible.
func RegisterShop(e *echo.Echo, acct *handler.AccountHandler, tickets *handler.TicketHandler, prizes *handler.PrizeHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		limiter,
	)
	// Account bootstrap and profile.
	g.POST("/account/ensure", acct.Ensure)
	g.GET("/account", acct.Get)
	// Code issuance and the owner-side ticket views.
	g.POST("/codes/issue", tickets.Issue)
	g.GET("/tickets", tickets.List)
	g.POST("/tickets/:code/ship", tickets.Ship)
	// Prize catalog management.
	g.POST("/prizes", prizes.Create)
	g.GET("/prizes", prizes.List)
	g.DELETE("/prizes/:id", prizes.Delete)
}

// RegisterPublic registers unauthenticated redemption endpoints on the
// provided Echo instance. The response cache only wraps the two GETs;
// redemption is a state transition and must always reach the store.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cacheMW echo.MiddlewareFunc) {
	// Redemption page data for a single code.
	e.GET("/v1/tickets/:code", p.GetTicket, cacheMW)
	// Redeem a code against a prize.
	e.POST("/v1/tickets/:code/redeem", p.Redeem)
	// Public half of a prize record.
	e.GET("/v1/prize-info/:id", p.GetPrizeInfo, cacheMW)
}
