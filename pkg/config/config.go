package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envLanguage  = "MANGADEX_DL_LANG"
	envOutput    = "MANGADEX_DL_OUTPUT"
	envProxy     = "MANGADEX_DL_PROXY"
	envUserAgent = "MANGADEX_DL_USER_AGENT"
	envHistory   = "MANGADEX_DL_HISTORY"
	envAPIBase   = "MANGADEX_DL_API_BASE"
	envTimeout   = "MANGADEX_DL_TIMEOUT"
)

// Config holds the defaults for a run. Command line flags override them.
type Config struct {
	Language    string
	OutputDir   string
	Proxy       string // SOCKS5 host:port
	UserAgent   string
	HistoryPath string
	APIBase     string // overrides the host taken from the manga URL
	Timeout     time.Duration
}

// Load reads an optional .env file from the working directory and then
// the environment.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file. A missing file is not an
// error; variables already set in the environment win over the file.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	timeout, err := parseTimeout(os.Getenv(envTimeout))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", envTimeout, err)
	}

	return &Config{
		Language:    withDefault(os.Getenv(envLanguage), "gb"),
		OutputDir:   withDefault(os.Getenv(envOutput), "download"),
		Proxy:       strings.TrimSpace(os.Getenv(envProxy)),
		UserAgent:   strings.TrimSpace(os.Getenv(envUserAgent)),
		HistoryPath: withDefault(os.Getenv(envHistory), defaultHistoryPath()),
		APIBase:     strings.TrimRight(strings.TrimSpace(os.Getenv(envAPIBase)), "/"),
		Timeout:     timeout,
	}, nil
}

func withDefault(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

// parseTimeout accepts a Go duration ("45s") or a number of seconds.
func parseTimeout(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 30 * time.Second, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("timeout must be positive, got %d", secs)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", d)
	}
	return d, nil
}

func defaultHistoryPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".mangadex-dl", "history.db")
	}
	return filepath.Join(".mangadex-dl", "history.db")
}
