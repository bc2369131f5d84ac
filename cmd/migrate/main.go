package main

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/federicogioffre/finance-tracker/internal/logger"
)

const defaultMigrationsFile = "migrations/migrations.sql"

func main() {
	log := logger.New(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))

	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("error opening database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("error pinging database")
	}

	path := defaultMigrationsFile
	if v := strings.TrimSpace(os.Getenv("MIGRATIONS_FILE")); v != "" {
		path = v
	}
	sqlBytes, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("error reading migrations file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Info().Str("file", path).Msg("applying migrations")
	if _, err := db.ExecContext(ctx, string(sqlBytes)); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	log.Info().Msg("migrations applied")
}
