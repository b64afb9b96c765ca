package cli

//
// common.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"fmt"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
	"gitlab.com/kabes/go-pgfairing/internal/aerr"
	"gitlab.com/kabes/go-pgfairing/internal/config"
	"gitlab.com/kabes/go-pgfairing/pgfairing"
	"golang.org/x/term"
)

func wrap(
	cmdfunc func(ctx context.Context, clicmd *cli.Command, i do.Injector) error,
) func(ctx context.Context, clicmd *cli.Command) error {
	return func(ctx context.Context, clicmd *cli.Command) error {
		if err := initializeLogger(clicmd.String("log.level"), clicmd.String("log.format")); err != nil {
			return err
		}

		ctx = log.Logger.WithContext(ctx)

		dbconf, err := dbConfFromCli(clicmd)
		if err != nil {
			return err
		}

		if err := dbconf.Validate(); err != nil {
			return aerr.Wrapf(err, "invalid database configuration")
		}

		debugFlags := config.NewDebugFLags(clicmd.String("debug"))

		injector, err := createInjector(ctx, dbconf, debugFlags)
		if err != nil {
			return err
		}

		defer shutdownInjector(ctx, injector)

		return cmdfunc(ctx, clicmd, injector)
	}
}

func dbConfFromCli(clicmd *cli.Command) (*config.DBConf, error) {
	dbconf := config.DBConf{
		Name:      clicmd.String("db.name"),
		User:      clicmd.String("db.user"),
		Password:  clicmd.String("db.password"),
		Host:      clicmd.String("db.host"),
		Port:      clicmd.Int("db.port"),
		MaxConns:  clicmd.Int("db.max-conns"),
		LogLevel:  clicmd.String("db.log-level"),
		URL:       clicmd.String("db.url"),
		OnFailure: config.FailurePolicy(clicmd.String("db.on-failure")),
	}

	if clicmd.Bool("db.password-prompt") && dbconf.URL == "" {
		pass, err := readPassword()
		if err != nil {
			return nil, err
		}

		dbconf.Password = pass
	}

	return &dbconf, nil
}

func readPassword() (string, error) {
	//nolint:forbidigo
	fmt.Print("Database password: ")

	bytepw, err := term.ReadPassword(syscall.Stdin)

	//nolint:forbidigo
	fmt.Println()

	if err != nil {
		return "", aerr.Wrapf(err, "read password failed")
	}

	return strings.TrimSpace(string(bytepw)), nil
}

//-------------------------------------------------------------

func createInjector(ctx context.Context, dbconf *config.DBConf, debugFlags config.DebugFlags) (do.Injector, error) {
	logger := log.Ctx(ctx)

	opts := &do.InjectorOpts{} //nolint:exhaustruct
	if debugFlags.HasFlag(config.DebugDo) {
		opts.Logf = func(format string, args ...any) {
			logger.Debug().Msgf("do: "+format, args...)
		}
	}

	injector := do.NewWithOpts(opts, pgfairing.Package)

	do.ProvideValue(injector, dbconf)
	do.ProvideValue(injector, debugFlags)
	do.ProvideValue(injector, dbconf.FairingConfig())
	do.Provide(injector, newRegistryI)

	if dbconf.UseInjectedPool() {
		pool, err := newPoolFromURL(ctx, dbconf)
		if err != nil {
			return nil, err
		}

		do.ProvideNamedValue(injector, pgfairing.InjectedPoolName, pool)
	}

	logger.Debug().Object("db", dbconf).Msgf("Available services: %v", injector.ListProvidedServices())

	return injector, nil
}

func shutdownInjector(ctx context.Context, injector do.Injector) {
	logger := log.Ctx(ctx)

	if debugFlags, err := do.Invoke[config.DebugFlags](injector); err == nil && debugFlags.HasFlag(config.DebugPool) {
		logPoolStats(ctx, injector)
	}

	// injected pool belongs to application, not fairing
	pool, _ := do.InvokeNamed[*pgxpool.Pool](injector, pgfairing.InjectedPoolName)

	if report := injector.ShutdownWithContext(ctx); !report.Succeed {
		logger.Error().Msgf("shutdown services failed: %s", report.Error())
	}

	if pool != nil {
		pool.Close()
	}

	logger.Debug().Msg("services stopped")
}

func logPoolStats(ctx context.Context, injector do.Injector) {
	fairing, err := do.Invoke[*pgfairing.Fairing](injector)
	if err != nil {
		return
	}

	event := log.Ctx(ctx).Info().Str("state", fairing.State().String())

	if stat := fairing.Stat(); stat != nil {
		event = event.
			Int32("acquired_conns", stat.AcquiredConns()).
			Int32("idle_conns", stat.IdleConns()).
			Int32("total_conns", stat.TotalConns()).
			Int32("max_conns", stat.MaxConns()).
			Int64("acquire_count", stat.AcquireCount()).
			Dur("acquire_duration", stat.AcquireDuration()).
			Int64("empty_acquire_count", stat.EmptyAcquireCount()).
			Int64("canceled_acquire_count", stat.CanceledAcquireCount())
	}

	event.Msg("pgfairing: pool statistics")
}

// newPoolFromURL create pool outside fairing. Pool connects lazily so
// this not fail when database is down.
func newPoolFromURL(ctx context.Context, dbconf *config.DBConf) (*pgxpool.Pool, error) {
	pconf, err := pgxpool.ParseConfig(dbconf.URL)
	if err != nil {
		return nil, aerr.ApplyFor(aerr.ErrInvalidConf, err, "invalid db.url")
	}

	if lvl, err := pgfairing.ParseLogLevel(dbconf.LogLevel); err == nil && lvl != tracelog.LogLevelNone {
		pconf.ConnConfig.Tracer = &tracelog.TraceLog{Logger: pgfairing.NewTraceLogger(), LogLevel: lvl}
	}

	pool, err := pgxpool.NewWithConfig(ctx, pconf)
	if err != nil {
		return nil, aerr.ApplyFor(aerr.ErrDatabase, err, "create pool failed")
	}

	return pool, nil
}

// newRegistryI create prometheus registry with runtime and pool collectors.
func newRegistryI(i do.Injector) (*prometheus.Registry, error) {
	fairing, err := do.Invoke[*pgfairing.Fairing](i)
	if err != nil {
		return nil, aerr.Wrapf(err, "get fairing failed")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct
		pgfairing.NewCollector(fairing, fairing.Config().Database()),
	)

	return registry, nil
}

// igniteFairing start fairing and apply failure policy.
func igniteFairing(ctx context.Context, injector do.Injector) (*pgfairing.Fairing, error) {
	logger := log.Ctx(ctx)
	dbconf := do.MustInvoke[*config.DBConf](injector)
	fairing := do.MustInvoke[*pgfairing.Fairing](injector)

	err := fairing.Ignite(ctx)
	if err == nil {
		return fairing, nil
	}

	if dbconf.OnFailure == config.FailureDegrade {
		logger.Warn().Err(err).Msg("database not available; continue without database")

		return fairing, nil
	}

	return nil, aerr.Wrapf(err, "start database failed")
}
