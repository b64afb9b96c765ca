package cli

//
// serve.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//
import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Merovius/systemd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
	"gitlab.com/kabes/go-pgfairing/internal/aerr"
	"gitlab.com/kabes/go-pgfairing/internal/config"
	"gitlab.com/kabes/go-pgfairing/internal/server"
)

func newStartServerCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "address",
				Value:   ":8080",
				Usage:   "listen address",
				Aliases: []string{"a"},
				Sources: cli.EnvVars("PGFAIRING_SERVER_ADDRESS"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:    "web-root",
				Value:   "/",
				Usage:   "path root",
				Sources: cli.EnvVars("PGFAIRING_SERVER_WEBROOT"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.BoolFlag{
				Name:    "enable-metrics",
				Usage:   "enable prometheus metrics (/metrics endpoint)",
				Sources: cli.EnvVars("PGFAIRING_SERVER_METRICS"),
			},
			&cli.StringFlag{
				Name:      "cert",
				Usage:     "tls certificate file",
				Sources:   cli.EnvVars("PGFAIRING_SERVER_CERT"),
				Config:    cli.StringConfig{TrimSpace: true},
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:      "key",
				Usage:     "tls key file",
				Sources:   cli.EnvVars("PGFAIRING_SERVER_KEY"),
				Config:    cli.StringConfig{TrimSpace: true},
				TakesFile: true,
			},
		},
		Action: wrap(startServerCmd),
	}
}

func startServerCmd(ctx context.Context, clicmd *cli.Command, rootInjector do.Injector) error {
	serverConf := config.ServerConf{
		Address:       clicmd.String("address"),
		WebRoot:       clicmd.String("web-root"),
		TLSKey:        clicmd.String("key"),
		TLSCert:       clicmd.String("cert"),
		DebugFlags:    do.MustInvoke[config.DebugFlags](rootInjector),
		EnableMetrics: clicmd.Bool("enable-metrics"),
	}

	if err := serverConf.Validate(); err != nil {
		return aerr.Wrapf(err, "server config validation failed")
	}

	injector := rootInjector.Scope("server", server.Package)
	do.ProvideValue(injector, &serverConf)

	logger := log.Ctx(ctx)
	logger.Log().Msgf("Starting go-pgfairing (%s)...", config.VersionString())
	logger.Debug().Msgf("Server: debug_flags=%q", serverConf.DebugFlags)

	// attach database before server accept first request
	if _, err := igniteFairing(ctx, rootInjector); err != nil {
		return err
	}

	startSystemdWatchdog(logger)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	srv := do.MustInvoke[*server.Server](injector)
	if err := srv.Start(ctx); err != nil {
		return aerr.Wrapf(err, "start server failed").WithUserMsg("failed start server")
	}

	systemd.NotifyReady()           //nolint:errcheck
	systemd.NotifyStatus("running") //nolint:errcheck

	<-ctx.Done()

	logger.Info().Msg("Server: stopping...")
	systemd.NotifyStatus("stopping") //nolint:errcheck

	return nil
}

func startSystemdWatchdog(logger *zerolog.Logger) {
	if ok, dur, err := systemd.AutoWatchdog(); ok {
		logger.Info().Msgf("Systemd: autowatchdog started; duration=%s", dur)
	} else if err != nil {
		logger.Warn().Err(err).Msgf("Systemd: autowatchdog start error=%q", err)
	}
}
