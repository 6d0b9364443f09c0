// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

LoadEnv reads .env files, then ParseFlags returns a Config struct:

	if err := cliparse.LoadEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p, --port            Server port (default 5000)
	-d, --database-url    Database URL or SQLite path
	-t, --database-type   sqlite (default) or postgres
	--app-url             Base URL for poll links in notifications
	--admin-password      Shared admin password
	--admin-salt          Admin token and slug salt
	--session-timeout     Admin session lifetime, 12h or 180d style
	--tick-schedule       Cron spec for the scheduler tick
	--notify-timeout      Timeout for one notification delivery
	--campaigns           YAML campaigns file loaded at startup

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	APP_URL         → --app-url
	ADMIN_PASSWORD  → --admin-password
	ADMIN_KEY_SALT  → --admin-salt
	SESSION_TIMEOUT → --session-timeout
	TICK_SCHEDULE   → --tick-schedule
	NOTIFY_TIMEOUT  → --notify-timeout
	CAMPAIGNS_FILE  → --campaigns

CLI flags take precedence over environment variables, and the environment
over .env files.

# Validation

ParseFlags returns an error if DATABASE_URL, ADMIN_PASSWORD or
ADMIN_KEY_SALT is missing. A malformed SESSION_TIMEOUT is logged and replaced
by the 24h default.
*/
package cliparse
