package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/federicogioffre/finance-tracker/internal/accounts"
	"github.com/federicogioffre/finance-tracker/internal/admin"
	"github.com/federicogioffre/finance-tracker/internal/auth"
	"github.com/federicogioffre/finance-tracker/internal/budgets"
	"github.com/federicogioffre/finance-tracker/internal/categories"
	"github.com/federicogioffre/finance-tracker/internal/config"
	"github.com/federicogioffre/finance-tracker/internal/db"
	"github.com/federicogioffre/finance-tracker/internal/imports"
	"github.com/federicogioffre/finance-tracker/internal/logger"
	"github.com/federicogioffre/finance-tracker/internal/reports"
	"github.com/federicogioffre/finance-tracker/internal/router"
	"github.com/federicogioffre/finance-tracker/internal/statement"
	"github.com/federicogioffre/finance-tracker/internal/summary"
	"github.com/federicogioffre/finance-tracker/internal/transactions"
	"github.com/federicogioffre/finance-tracker/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(os.Getenv("ENV"), "")
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	profiles, err := statement.LoadProfiles(cfg.BankProfilesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("loading bank profiles failed")
	}
	parser, err := statement.NewParser(profiles, cfg.BankProfile)
	if err != nil {
		log.Fatal().Err(err).Msg("bank profile")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: router.NewErrorHandler(cfg.ImportMaxBytes),
		// multipart overhead on top of the largest accepted file
		BodyLimit: cfg.ImportMaxBytes + 1<<20,
	})

	app.Use(router.CorsMiddleware(cfg.CORSOrigin))
	app.Use(router.RequestContext(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"ok": true,
		})
	})

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	importSvc := imports.NewService(parser, imports.NewPgStore(pool), cfg.ImportMaxBytes, log.With().Str("component", "imports").Logger())

	r := &router.Router{
		UsersHandler:        users.NewHandler(users.NewRepo(pool), tokens),
		AccountsHandler:     accounts.NewHandler(accounts.NewRepo(pool)),
		TransactionsHandler: transactions.NewHandler(transactions.NewRepo(pool)),
		SummaryHandler:      &summary.Handler{Repo: summary.Repo{DB: pool}},
		CategoriesHandler:   &categories.Handler{Repo: &categories.Repo{Pool: pool}},
		BudgetsHandler:      &budgets.Handler{Repo: &budgets.Repo{Pool: pool}},
		ImportHandler:       imports.NewHandler(importSvc),
		ReportsHandler:      reports.NewHandler(reports.NewRepo(pool), cfg.Locale),
		AdminHandler:        admin.NewHandler(pool),
		AuthMW:              tokens.Middleware(),
		WriteMW:             router.RateLimitWrite(cfg.RateLimitWriteMax),
		AdminMW:             admin.RequireAdminAPIKey(cfg.AdminAPIKey),
	}
	r.RegisterRoutes(app)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Info().Msg("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.Info().Str("port", cfg.Port).Str("profile", cfg.BankProfile).Msg("listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
