package cliparse

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/goose-ws/PartyPlanner/auth"
)

type Config struct {
	Port           int
	DatabaseURL    string
	DatabaseType   string
	AdminPassword  string
	AdminKeySalt   string
	SessionTimeout time.Duration
	AppURL         string
	TickSchedule   string
	NotifyTimeout  time.Duration
	CampaignsFile  string
}

// LoadEnv reads .env style files into the environment without overriding
// variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var sessionTimeout string

	fs := pflag.NewFlagSet("partyplanner", pflag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVarP(&cfg.Port, "port", "p", 0, "Server port")
	fs.StringVarP(&cfg.DatabaseURL, "database-url", "d", "", "Database URL")
	fs.StringVarP(&cfg.DatabaseType, "database-type", "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.AppURL, "app-url", "", "Public base URL used in notification links")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminPassword, "admin-password", "", "Shared admin password (prefer env)")
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin token and slug salt (prefer env)")
	fs.StringVar(&sessionTimeout, "session-timeout", "", "Admin session lifetime, e.g. 12h or 180d")

	// Scheduling
	fs.StringVar(&cfg.TickSchedule, "tick-schedule", "", "Cron spec for the scheduler tick")
	fs.DurationVar(&cfg.NotifyTimeout, "notify-timeout", 0, "Timeout for one notification delivery")
	fs.StringVar(&cfg.CampaignsFile, "campaigns", "", "YAML file of campaigns to load at startup")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 5000 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}

	if cfg.AppURL == "" {
		cfg.AppURL = os.Getenv("APP_URL")
		if cfg.AppURL == "" {
			cfg.AppURL = "http://localhost:5000"
		}
	}

	// Secrets - MUST be provided
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	}
	if cfg.AdminPassword == "" {
		return Config{}, errors.New("ADMIN_PASSWORD required")
	}

	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if sessionTimeout == "" {
		sessionTimeout = os.Getenv("SESSION_TIMEOUT")
	}
	timeout, err := auth.ParseSessionTimeout(sessionTimeout)
	if err != nil {
		slog.Warn("invalid SESSION_TIMEOUT, using default", "value", sessionTimeout, "default", timeout)
	}
	cfg.SessionTimeout = timeout

	if cfg.TickSchedule == "" {
		cfg.TickSchedule = os.Getenv("TICK_SCHEDULE")
		if cfg.TickSchedule == "" {
			cfg.TickSchedule = "0 */6 * * *"
		}
	}

	if cfg.NotifyTimeout == 0 {
		cfg.NotifyTimeout = 10 * time.Second
		if s := os.Getenv("NOTIFY_TIMEOUT"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil || d <= 0 {
				return Config{}, errors.New("invalid NOTIFY_TIMEOUT env variable")
			}
			cfg.NotifyTimeout = d
		}
	}

	if cfg.CampaignsFile == "" {
		cfg.CampaignsFile = os.Getenv("CAMPAIGNS_FILE")
	}

	return cfg, nil
}
