// Package pgfairing attach PostgreSQL connection pool to application lifecycle
// and hand it to http handlers.
//
// Fairing is configured once (Config or injected *pgxpool.Pool), ignited on
// application start and then serve the same pool for every request, either
// by Guard middleware (per-request Handle in context) or by With adapter
// that pass Handle directly to handler.
package pgfairing

//
// fairing.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-pgfairing/internal/aerr"
)

var (
	// ErrNoPool is returned when pool is requested but fairing is not Ready.
	ErrNoPool = errors.New("database pool not available")
	// ErrConnect is returned by Ignite when pool can't be created or connected.
	ErrConnect = errors.New("connect to database failed")
	// ErrInvalidConfig is returned by Ignite when configuration can't be used to build pool.
	ErrInvalidConfig = errors.New("invalid database configuration")
	// ErrAlreadyIgnited is returned on second call to Ignite.
	ErrAlreadyIgnited = errors.New("fairing already ignited")
)

//-------------------------------------------------------------

type State int32

const (
	StateUnconfigured State = iota
	StateAttaching
	StateReady
	StateDegraded
	// StateClosed is set by Shutdown; pool is not available anymore.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateAttaching:
		return "attaching"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

//-------------------------------------------------------------

// Fairing own database pool for whole process lifetime.
type Fairing struct {
	cfg      Config
	injected *pgxpool.Pool

	// igniteMu serialize Ignite and Shutdown; readers use atomics only.
	igniteMu sync.Mutex
	state    atomic.Int32
	pool     atomic.Pointer[pgxpool.Pool]
	sqldb    atomic.Pointer[sqlx.DB]
	// owned is true when pool was created by fairing and should be closed on shutdown.
	owned bool
}

// New create fairing that build pool from cfg on Ignite.
func New(cfg Config) *Fairing {
	return &Fairing{cfg: cfg}
}

// WithPool set pre-built pool. Ignite adopt this pool as-is and do not
// connect to database. Must be called before Ignite.
func (f *Fairing) WithPool(pool *pgxpool.Pool) *Fairing {
	f.igniteMu.Lock()
	defer f.igniteMu.Unlock()

	f.injected = pool

	return f
}

func (f *Fairing) Config() Config {
	return f.cfg
}

func (f *Fairing) State() State {
	return State(f.state.Load())
}

// Ignite create (or adopt injected) pool. On failure fairing goes to
// Degraded state and error (ErrInvalidConfig or ErrConnect) is returned;
// caller decide whether abort startup or continue without database.
func (f *Fairing) Ignite(ctx context.Context) error {
	f.igniteMu.Lock()
	defer f.igniteMu.Unlock()

	if !f.state.CompareAndSwap(int32(StateUnconfigured), int32(StateAttaching)) {
		return aerr.Wrapf(ErrAlreadyIgnited, "ignite fairing failed").WithMeta("state", f.State().String())
	}

	logger := log.Ctx(ctx).With().Str("mod", "pgfairing").Logger()

	if f.injected != nil {
		logger.Info().Msg("pgfairing: using injected pool")
		f.setReady(f.injected)

		return nil
	}

	logger.Info().Msgf("pgfairing: connecting to %q max_conns=%d", f.cfg.Redacted(), f.cfg.MaxConnections())

	pool, err := f.connect(ctx)
	if err != nil {
		f.state.Store(int32(StateDegraded))
		logger.Error().Err(err).Msg("pgfairing: connect to database failed; pool not available")

		return err
	}

	f.owned = true
	f.setReady(pool)

	logger.Info().Msg("pgfairing: pool ready")

	return nil
}

func (f *Fairing) setReady(pool *pgxpool.Pool) {
	f.pool.Store(pool)
	f.sqldb.Store(sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"))
	f.state.Store(int32(StateReady))
}

func (f *Fairing) connect(ctx context.Context) (*pgxpool.Pool, error) {
	pconf, err := f.cfg.PoolConfig()
	if err != nil {
		return nil, aerr.Wrapf(errors.Join(ErrInvalidConfig, err), "prepare pool configuration failed")
	}

	pool, err := pgxpool.NewWithConfig(ctx, pconf)
	if err != nil {
		return nil, aerr.ApplyFor(aerr.ErrDatabase, errors.Join(ErrConnect, err), "create pool failed").
			WithMeta("connstr", f.cfg.Redacted())
	}

	// pgxpool connects lazily; ping force first connection.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, aerr.ApplyFor(aerr.ErrDatabase, errors.Join(ErrConnect, err), "ping database failed").
			WithMeta("connstr", f.cfg.Redacted())
	}

	return pool, nil
}

// Pool return shared pool; ErrNoPool when fairing is not Ready.
func (f *Fairing) Pool() (*pgxpool.Pool, error) {
	if State(f.state.Load()) != StateReady {
		return nil, ErrNoPool
	}

	pool := f.pool.Load()
	if pool == nil {
		return nil, ErrNoPool
	}

	return pool, nil
}

// Handle create new per-request token for shared pool.
func (f *Fairing) Handle() (*Handle, error) {
	pool, err := f.Pool()
	if err != nil {
		return nil, err
	}

	sqldb := f.sqldb.Load()
	if sqldb == nil {
		return nil, ErrNoPool
	}

	return newHandle(pool, sqldb), nil
}

// Stat return pool statistics or nil when pool is not available.
func (f *Fairing) Stat() *pgxpool.Stat {
	pool, err := f.Pool()
	if err != nil {
		return nil
	}

	return pool.Stat()
}

// HealthCheck ping database. Called by samber/do.
func (f *Fairing) HealthCheck(ctx context.Context) error {
	pool, err := f.Pool()
	if err != nil {
		return aerr.ApplyFor(aerr.ErrUnavailable, err, "health check failed").
			WithMeta("state", f.State().String())
	}

	if err := pool.Ping(ctx); err != nil {
		return aerr.ApplyFor(aerr.ErrDatabase, err, "ping database failed")
	}

	return nil
}

// Shutdown close pool created by fairing. Injected pools are left open -
// they belong to caller. After shutdown fairing is Closed and every
// extraction fails with ErrNoPool. Called by samber/do.
func (f *Fairing) Shutdown(ctx context.Context) error {
	f.igniteMu.Lock()
	defer f.igniteMu.Unlock()

	logger := log.Ctx(ctx).With().Str("mod", "pgfairing").Logger()

	f.state.Store(int32(StateClosed))
	pool := f.pool.Swap(nil)

	if sqldb := f.sqldb.Swap(nil); sqldb != nil {
		if err := sqldb.Close(); err != nil {
			logger.Warn().Err(err).Msg("pgfairing: close sql.DB wrapper failed")
		}
	}

	if pool == nil || !f.owned {
		return nil
	}

	logger.Debug().Msg("pgfairing: closing pool...")

	pool.Close()
	f.owned = false

	logger.Debug().Msg("pgfairing: pool closed")

	return nil
}
