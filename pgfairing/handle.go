package pgfairing

//
// handle.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"net/http"

	"github.com/go-chi/render"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"
	"github.com/rs/zerolog/hlog"
)

// Handle is per-request token that give access to shared pool. It has no
// own state; all handles created by one fairing point to the same pool.
type Handle struct {
	id   xid.ID
	pool *pgxpool.Pool
	db   *sqlx.DB
}

func newHandle(pool *pgxpool.Pool, db *sqlx.DB) *Handle {
	return &Handle{
		id:   xid.New(),
		pool: pool,
		db:   db,
	}
}

// ID identify handle in logs.
func (h *Handle) ID() xid.ID {
	return h.id
}

// Pool return shared pool.
func (h *Handle) Pool() *pgxpool.Pool {
	return h.pool
}

// SQLX return database/sql view of the same pool.
func (h *Handle) SQLX() *sqlx.DB {
	return h.db
}

//-------------------------------------------------------------

type ctxHandleKey struct{}

// ContextWithHandle create new context with handle.
func ContextWithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, ctxHandleKey{}, h)
}

// FromContext return handle put into context by Guard.
func FromContext(ctx context.Context) (*Handle, bool) {
	h, ok := ctx.Value(ctxHandleKey{}).(*Handle)
	if !ok || h == nil {
		return nil, false
	}

	return h, true
}

// MustFromContext return handle from context. Panic when not exists.
func MustFromContext(ctx context.Context) *Handle {
	h, ok := FromContext(ctx)
	if !ok {
		panic("no pgfairing handle in context")
	}

	return h
}

//-------------------------------------------------------------

// Guard is middleware that put new Handle into request context. When pool
// is not available request fails with 503 and next handler is not called.
func (f *Fairing) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle, ok := f.acquire(w, r)
		if !ok {
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithHandle(r.Context(), handle)))
	})
}

// HandlerFunc is http handler that require database handle.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, handle *Handle)

// With adapt HandlerFunc to http.Handler. Handle is created for each request;
// when pool is not available request fails with 503.
func (f *Fairing) With(handler HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle, ok := f.acquire(w, r)
		if !ok {
			return
		}

		handler(w, r, handle)
	})
}

func (f *Fairing) acquire(w http.ResponseWriter, r *http.Request) (*Handle, bool) {
	logger := hlog.FromRequest(r)

	handle, err := f.Handle()
	if err != nil {
		logger.Warn().Err(err).Str("state", f.State().String()).Msg("pgfairing: request rejected - no pool")

		render.Status(r, http.StatusServiceUnavailable)
		render.PlainText(w, r, http.StatusText(http.StatusServiceUnavailable))

		return nil, false
	}

	logger.Debug().Str("db_handle", handle.id.String()).Msg("pgfairing: handle acquired")

	return handle, true
}
