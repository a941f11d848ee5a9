package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/shop-lottery/internal/cache"
	"github.com/iliyamo/shop-lottery/internal/config"
	"github.com/iliyamo/shop-lottery/internal/database"
	"github.com/iliyamo/shop-lottery/internal/handler"
	"github.com/iliyamo/shop-lottery/internal/middleware"
	"github.com/iliyamo/shop-lottery/internal/queue"
	"github.com/iliyamo/shop-lottery/internal/repository"
	"github.com/iliyamo/shop-lottery/internal/router"
	"github.com/iliyamo/shop-lottery/internal/store"
)

func main() {
	// 1. Environment and configuration. A .env file is optional; real
	// deployments set the variables directly.
	_ = godotenv.Load()
	cfg := config.Load()
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Env == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// 2. Pick the document store backend.
	var st store.Store
	switch cfg.StoreDriver {
	case "memory":
		st = store.NewMemoryStore()
		log.Info().Msg("using in-memory document store")
	default:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		defer db.Close()
		schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := database.EnsureSchema(schemaCtx, db); err != nil {
			cancel()
			log.Fatal().Err(err).Msg("schema migration failed")
		}
		cancel()
		st = store.NewMySQLStore(db)
		log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("using mysql document store")
	}

	// 3. Repositories over the store.
	users := repository.NewUserRepo(st)
	tokens := repository.NewTokenRepo(st)
	tickets := repository.NewTicketRepo(st)
	prizes := repository.NewPrizeRepo(st)

	// 4. Per-user session cache.
	sessions := cache.NewManager(users, tickets, prizes)

	// 5. Redis backs the public response cache and the rate limiter;
	// both degrade to pass-throughs when it is unreachable.
	rdb := config.NewRedisClient()
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// 6. Handlers and routes.
	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, sessions), cfg.JWTSecret)
	router.RegisterShop(e,
		handler.NewAccountHandler(users),
		handler.NewTicketHandler(tickets, sessions),
		handler.NewPrizeHandler(prizes, sessions),
		cfg.JWTSecret,
		limiter,
	)
	router.RegisterPublic(e, handler.NewPublicHandler(tickets, prizes), cacheMW)

	// 7. Background audit consumer. Fire-and-forget: it reconnects on
	// its own and dies with the process.
	go func() {
		if err := queue.StartCodesConsumer(st); err != nil {
			log.Warn().Err(err).Msg("codes consumer stopped")
		}
	}()

	// 8. Run the server and the session janitor until a signal arrives.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	addr := ":" + cfg.Port
	g.Go(func() error {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := sessions.Janitor(gctx, cfg.SessionSweep, cfg.SessionTTL)
		if err == context.Canceled {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("gracefully shut down")
}
