package cli

//
// check.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
	"gitlab.com/kabes/go-pgfairing/internal/aerr"
	"gitlab.com/kabes/go-pgfairing/pgfairing"
)

func newCheckCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "connect to database and show pool status",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 10 * time.Second, //nolint:mnd
				Usage: "connection timeout",
			},
		},
		Action: wrap(checkCmd),
	}
}

//nolint:forbidigo
func checkCmd(ctx context.Context, clicmd *cli.Command, injector do.Injector) error {
	ctx, cancel := context.WithTimeout(ctx, clicmd.Duration("timeout"))
	defer cancel()

	fairing, err := igniteFairing(ctx, injector)
	if err != nil {
		return err
	}

	cfg := fairing.Config()

	fmt.Printf("Database: %s\n", cfg.Redacted())
	fmt.Printf("State:    %s\n", fairing.State())

	handle, err := fairing.Handle()
	if err != nil {
		return aerr.ApplyFor(aerr.ErrUnavailable, err, "check database failed")
	}

	var version string
	if err := handle.SQLX().GetContext(ctx, &version, "SELECT version()"); err != nil {
		return aerr.ApplyFor(aerr.ErrDatabase, err, "query server version failed")
	}

	fmt.Printf("Server:   %s\n", version)

	if stat := fairing.Stat(); stat != nil {
		fmt.Printf("Pool:     total=%d idle=%d acquired=%d max=%d\n",
			stat.TotalConns(), stat.IdleConns(), stat.AcquiredConns(), stat.MaxConns())
	}

	printHandle(handle)

	return nil
}

//nolint:forbidigo
func printHandle(handle *pgfairing.Handle) {
	fmt.Printf("Handle:   %s (created %s)\n", handle.ID(), handle.ID().Time().Format(time.RFC3339))
}
