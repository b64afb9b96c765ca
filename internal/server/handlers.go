package server

//
// handlers.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-pgfairing/internal/aerr"
	"gitlab.com/kabes/go-pgfairing/internal/server/srvsupport"
	"gitlab.com/kabes/go-pgfairing/pgfairing"
)

const pingTimeout = 5 * time.Second

type dbHandlers struct {
	fairing *pgfairing.Fairing
}

func newDBHandlers(fairing *pgfairing.Fairing) dbHandlers {
	return dbHandlers{fairing: fairing}
}

func (d dbHandlers) Routes() *chi.Mux {
	router := chi.NewRouter()
	router.Get("/status", srvsupport.WrapNamed(d.status, "db_status"))
	router.Method(http.MethodGet, "/stats", d.fairing.With(d.stats))
	router.With(d.fairing.Guard).Get("/ping", srvsupport.WrapNamed(d.ping, "db_ping"))

	return router
}

type poolStats struct {
	AcquiredConns        int32   `json:"acquired_conns"`
	IdleConns            int32   `json:"idle_conns"`
	TotalConns           int32   `json:"total_conns"`
	MaxConns             int32   `json:"max_conns"`
	AcquireCount         int64   `json:"acquire_count"`
	AcquireDurationSec   float64 `json:"acquire_duration_sec"`
	EmptyAcquireCount    int64   `json:"empty_acquire_count"`
	CanceledAcquireCount int64   `json:"canceled_acquire_count"`
}

func newPoolStats(stat *pgxpool.Stat) *poolStats {
	if stat == nil {
		return nil
	}

	return &poolStats{
		AcquiredConns:        stat.AcquiredConns(),
		IdleConns:            stat.IdleConns(),
		TotalConns:           stat.TotalConns(),
		MaxConns:             stat.MaxConns(),
		AcquireCount:         stat.AcquireCount(),
		AcquireDurationSec:   stat.AcquireDuration().Seconds(),
		EmptyAcquireCount:    stat.EmptyAcquireCount(),
		CanceledAcquireCount: stat.CanceledAcquireCount(),
	}
}

type statusResponse struct {
	State string     `json:"state"`
	Stats *poolStats `json:"stats,omitempty"`
}

// status report fairing state; works also when pool is not available.
func (d dbHandlers) status(_ context.Context, w http.ResponseWriter, r *http.Request, _ *zerolog.Logger) {
	state := d.fairing.State()

	if state != pgfairing.StateReady {
		render.Status(r, http.StatusServiceUnavailable)
	}

	srvsupport.RenderJSON(w, r, &statusResponse{
		State: state.String(),
		Stats: newPoolStats(d.fairing.Stat()),
	})
}

// stats render statistics of the pool; handle is passed by fairing.
func (d dbHandlers) stats(w http.ResponseWriter, r *http.Request, handle *pgfairing.Handle) {
	logger := zerolog.Ctx(r.Context())
	logger.Debug().Str("db_handle", handle.ID().String()).Msg("render pool stats")

	srvsupport.RenderJSON(w, r, newPoolStats(handle.Pool().Stat()))
}

// ping check database connection using handle from request context.
func (d dbHandlers) ping(ctx context.Context, w http.ResponseWriter, r *http.Request, logger *zerolog.Logger) {
	handle := pgfairing.MustFromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()

	if err := handle.Pool().Ping(ctx); err != nil {
		logger.Error().Err(err).Str("db_handle", handle.ID().String()).Msg("ping database failed")
		srvsupport.CheckAndWriteError(w, r, aerr.ApplyFor(aerr.ErrUnavailable, err, "ping failed"))

		return
	}

	render.PlainText(w, r, "pong "+time.Since(start).String())
}

//-------------------------------------------------------------

// newHealthChecker create new handler for /health endpoint. Check all
// services in injector (i.e. database).
func newHealthChecker(injector do.Injector) http.HandlerFunc {
	rootscope := injector.RootScope()

	return func(w http.ResponseWriter, r *http.Request) {
		response := "ok"

		for service, err := range rootscope.HealthCheckWithContext(r.Context()) {
			if err != nil {
				log.Logger.Error().Err(err).Str("service", service).
					Msgf("HealthChecker: service=%q failed on healthcheck: %s", service, err)

				response = "error"
			}
		}

		if response != "ok" {
			render.Status(r, http.StatusServiceUnavailable)
		}

		render.PlainText(w, r, response)
	}
}
