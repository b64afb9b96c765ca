package pgfairing

//
// package.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-pgfairing/internal/aerr"
)

// InjectedPoolName is name of optional *pgxpool.Pool service; when provided
// fairing adopt it instead of connecting with Config.
const InjectedPoolName = "pgfairing.pool"

var Package = do.Package(
	do.Lazy(NewFairingI),
)

// NewFairingI create fairing from Config provided in injector. Config may be
// omitted only when pool is injected.
func NewFairingI(i do.Injector) (*Fairing, error) {
	cfg, cfgErr := do.Invoke[Config](i)

	pool, err := do.InvokeNamed[*pgxpool.Pool](i, InjectedPoolName)
	if err == nil && pool != nil {
		if cfgErr != nil {
			cfg = NewConfig()
		}

		return New(cfg).WithPool(pool), nil
	}

	if cfgErr != nil {
		return nil, aerr.ApplyFor(aerr.ErrInvalidConf, cfgErr, "missing database configuration")
	}

	return New(cfg), nil
}
