package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

type Config struct {
	Addr         string
	TLSCert      string
	TLSKey       string
	DatabaseURL  string
	TokenKey     string
	DefaultsFile string
	PDFFontPath  string
	HistoryLimit int
	RateLimit    rate.Limit
	RateBurst    int
}

// Load reads the environment, after merging in any of the given .env files
// that exist.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		Addr:         getenv("ADDR", ":443"),
		TLSCert:      getenv("TLS_CERT", "server.crt"),
		TLSKey:       getenv("TLS_KEY", "server.key"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		TokenKey:     os.Getenv("TOKEN_KEY"),
		DefaultsFile: os.Getenv("DEFAULTS_FILE"),
		PDFFontPath:  os.Getenv("PDF_FONT_PATH"),
	}
	if cfg.TokenKey == "" {
		return Config{}, errors.New("TOKEN_KEY environment variable is not set")
	}

	var err error
	if cfg.HistoryLimit, err = getInt("HISTORY_LIMIT", 30); err != nil {
		return Config{}, err
	}
	if cfg.RateBurst, err = getInt("RATE_BURST", 3); err != nil {
		return Config{}, err
	}
	limit, err := strconv.ParseFloat(getenv("RATE_LIMIT", "1"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("RATE_LIMIT: %w", err)
	}
	cfg.RateLimit = rate.Limit(limit)
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}
