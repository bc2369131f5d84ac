package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	defaultPort           = "8080"
	defaultTokenTTL       = 60 * time.Minute
	defaultWriteRateLimit = 60
	// DefaultImportMaxBytes is the upload ceiling for statement files.
	DefaultImportMaxBytes = 10 << 20
	defaultBankProfile    = "fineco"
	defaultLocale         = "it-IT"
)

type Config struct {
	DatabaseURL       string
	JWTSecret         []byte
	Port              string
	Env               string
	CORSOrigin        string
	TokenTTL          time.Duration
	RateLimitWriteMax int
	ImportMaxBytes    int
	BankProfilesFile  string
	BankProfile       string
	Locale            language.Tag // amounts in generated documents
	LogLevel          string
	AdminAPIKey       string
}

// Load reads the process configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:         []byte(strings.TrimSpace(os.Getenv("JWT_SECRET"))),
		Port:              envOr("PORT", defaultPort),
		Env:               strings.ToLower(strings.TrimSpace(os.Getenv("ENV"))),
		CORSOrigin:        envOr("CORS_ORIGIN", "*"),
		TokenTTL:          time.Duration(positiveInt("TOKEN_TTL_MINUTES", int(defaultTokenTTL/time.Minute))) * time.Minute,
		RateLimitWriteMax: positiveInt("RATE_LIMIT_WRITE_MAX", defaultWriteRateLimit),
		ImportMaxBytes:    positiveInt("IMPORT_MAX_BYTES", DefaultImportMaxBytes),
		BankProfilesFile:  strings.TrimSpace(os.Getenv("BANK_PROFILES_FILE")),
		BankProfile:       envOr("BANK_PROFILE", defaultBankProfile),
		Locale:            locale(envOr("LOCALE", defaultLocale)),
		LogLevel:          strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		AdminAPIKey:       strings.TrimSpace(os.Getenv("ADMIN_API_KEY")),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is not set")
	}
	if len(cfg.JWTSecret) == 0 {
		return Config{}, errors.New("JWT_SECRET is not set")
	}
	return cfg, nil
}

func (c Config) IsDev() bool {
	return c.Env == "dev"
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func positiveInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

// locale falls back to the default tag when s does not parse.
func locale(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.MustParse(defaultLocale)
	}
	return tag
}
