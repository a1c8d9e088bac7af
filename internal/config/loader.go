package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/example/studio-scheduler/internal/persistence/sqlstore"
)

// DefaultSQLiteDSN is used when STUDIO_DB_DSN is unset and the driver is sqlite.
const DefaultSQLiteDSN = "file:studio.db?_pragma=foreign_keys(1)"

// Config captures environment driven configuration values for the studio scheduler.
type Config struct {
	DBDriver       sqlstore.Driver
	DBDSN          string
	Serializable   bool
	TxMaxRetries   int
	LogLevel       slog.Level
	LogFormat      string
	MetricsAddr    string
	ParallelChecks bool
}

// Load reads optional dotenv files and then parses the process environment.
//
// Files that do not exist are skipped. Variables already present in the
// environment win over values from the files. Missing and invalid entries are
// reported together in a single error.
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := Config{
		DBDriver:       sqlstore.DriverSQLite,
		TxMaxRetries:   sqlstore.DefaultRetryConfig().MaxRetries,
		LogLevel:       slog.LevelInfo,
		LogFormat:      "json",
		ParallelChecks: true,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if value := env("STUDIO_DB_DRIVER"); value != "" {
		driver, err := sqlstore.ParseDriver(value)
		if err != nil {
			invalid = append(invalid, "STUDIO_DB_DRIVER")
		} else {
			cfg.DBDriver = driver
		}
	}

	cfg.DBDSN = env("STUDIO_DB_DSN")
	if cfg.DBDSN == "" {
		if cfg.DBDriver == sqlstore.DriverSQLite {
			cfg.DBDSN = DefaultSQLiteDSN
		} else {
			missing = append(missing, "STUDIO_DB_DSN")
		}
	}

	if value := env("STUDIO_DB_SERIALIZABLE"); value != "" {
		serializable, err := strconv.ParseBool(value)
		if err != nil {
			invalid = append(invalid, "STUDIO_DB_SERIALIZABLE")
		} else {
			cfg.Serializable = serializable
		}
	}

	if value := env("STUDIO_TX_MAX_RETRIES"); value != "" {
		retries, err := strconv.Atoi(value)
		if err != nil || retries < 0 {
			invalid = append(invalid, "STUDIO_TX_MAX_RETRIES")
		} else {
			cfg.TxMaxRetries = retries
		}
	}

	if value := env("STUDIO_LOG_LEVEL"); value != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(value)); err != nil {
			invalid = append(invalid, "STUDIO_LOG_LEVEL")
		}
	}

	if value := strings.ToLower(env("STUDIO_LOG_FORMAT")); value != "" {
		if value != "json" && value != "text" {
			invalid = append(invalid, "STUDIO_LOG_FORMAT")
		} else {
			cfg.LogFormat = value
		}
	}

	cfg.MetricsAddr = env("STUDIO_METRICS_ADDR")

	if value := env("STUDIO_PARALLEL_CHECKS"); value != "" {
		parallel, err := strconv.ParseBool(value)
		if err != nil {
			invalid = append(invalid, "STUDIO_PARALLEL_CHECKS")
		} else {
			cfg.ParallelChecks = parallel
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// StoreOptions converts the database settings into sqlstore options.
func (c Config) StoreOptions(logger *slog.Logger) sqlstore.Options {
	retry := sqlstore.DefaultRetryConfig()
	retry.MaxRetries = c.TxMaxRetries
	return sqlstore.Options{
		Driver:       c.DBDriver,
		DSN:          c.DBDSN,
		Serializable: c.Serializable,
		Retry:        retry,
		Logger:       logger,
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
