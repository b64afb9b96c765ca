package cli

//
// main.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//
import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"gitlab.com/kabes/go-pgfairing/internal/aerr"
	"gitlab.com/kabes/go-pgfairing/internal/config"
)

//nolint:forbidigo
func Main() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "print-version",
		Aliases: []string{"V"},
		Usage:   "Print version.",
	}

	cli := &cli.Command{
		Name:    "go-pgfairing",
		Usage:   "PostgreSQL connection pool attached to http server lifecycle",
		Version: config.VersionString(),
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "log.level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("PGFAIRING_LOGLEVEL"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:    "log.format",
				Value:   "console",
				Usage:   "Log format (console, logfmt, json, journald, syslog)",
				Sources: cli.EnvVars("PGFAIRING_LOGFORMAT"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:    "debug",
				Usage:   "Debug flags (logbody, do, go, router, pool, all)",
				Sources: cli.EnvVars("PGFAIRING_DEBUG"),
			},
		}, dbFlags()...),
		Commands: []*cli.Command{
			newStartServerCmd(),
			newCheckCmd(),
		},
	}

	if err := cli.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("Error: %s\n", aerr.GetUserMessageOr(err, err.Error()))

		if cli.String("log.level") == "debug" {
			fmt.Printf("Error: %#+v\n", err)
		}

		os.Exit(1)
	}
}

func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db.name",
			Usage:   "Database name",
			Sources: cli.EnvVars("PGFAIRING_DB_NAME", "PGDATABASE"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.StringFlag{
			Name:    "db.user",
			Usage:   "Database user name",
			Sources: cli.EnvVars("PGFAIRING_DB_USER", "PGUSER"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.StringFlag{
			Name:    "db.password",
			Usage:   "Database user password",
			Sources: cli.EnvVars("PGFAIRING_DB_PASSWORD", "PGPASSWORD"),
		},
		&cli.BoolFlag{
			Name:  "db.password-prompt",
			Usage: "Ask for database password on start",
		},
		&cli.StringFlag{
			Name:    "db.host",
			Value:   "localhost",
			Usage:   "Database server host",
			Sources: cli.EnvVars("PGFAIRING_DB_HOST", "PGHOST"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.IntFlag{
			Name:    "db.port",
			Value:   5432, //nolint:mnd
			Usage:   "Database server port",
			Sources: cli.EnvVars("PGFAIRING_DB_PORT", "PGPORT"),
		},
		&cli.IntFlag{
			Name:    "db.max-conns",
			Value:   5, //nolint:mnd
			Usage:   "Maximal number of connections in pool (min 1)",
			Sources: cli.EnvVars("PGFAIRING_DB_MAX_CONNS"),
		},
		&cli.StringFlag{
			Name:    "db.log-level",
			Value:   "debug",
			Usage:   "Log queries with level (trace, debug, info, warn, error, none)",
			Sources: cli.EnvVars("PGFAIRING_DB_LOG_LEVEL"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.StringFlag{
			Name:    "db.url",
			Usage:   "Database connection url; when set pool is build from it and other db options are ignored",
			Sources: cli.EnvVars("PGFAIRING_DB_URL", "DATABASE_URL"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.StringFlag{
			Name:    "db.on-failure",
			Value:   string(config.FailureAbort),
			Usage:   "What to do when database is not available on start (abort, degrade)",
			Sources: cli.EnvVars("PGFAIRING_DB_ON_FAILURE"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
	}
}
