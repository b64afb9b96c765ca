package server

//
// server.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	dochi "github.com/samber/do/http/chi/v2"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-pgfairing/internal/aerr"
	"gitlab.com/kabes/go-pgfairing/internal/config"
	"gitlab.com/kabes/go-pgfairing/pgfairing"
)

const (
	defaultReadTimeout    = 60 * time.Second
	defaultWriteTimeout   = 60 * time.Second
	defaultMaxHeaderBytes = 1 << 20
)

var Package = do.Package(
	do.Lazy(New),
)

type Server struct {
	router chi.Router

	cfg *config.ServerConf
	s   *http.Server
}

func New(injector do.Injector) (*Server, error) {
	cfg := do.MustInvoke[*config.ServerConf](injector)
	fairing := do.MustInvoke[*pgfairing.Fairing](injector)
	registry := do.MustInvoke[*prometheus.Registry](injector)

	dbh := newDBHandlers(fairing)
	webroot := cfg.WebRoot

	// routes
	router := chi.NewRouter()
	router.Use(middleware.Heartbeat(webroot + "/ping"))
	router.Use(middleware.RealIP)

	router.Get(webroot+"/health", newHealthChecker(injector))

	if cfg.EnableMetrics {
		router.Method(http.MethodGet, webroot+"/metrics", newMetricsHandler(registry))
	}

	router.Group(func(group chi.Router) {
		group.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
		group.Use(newLogMiddleware(cfg))
		group.Use(newRecoverMiddleware)
		group.Use(middleware.CleanPath)

		group.
			With(newPromMiddleware(registry, "api", nil)).
			With(middleware.NoCache).
			Mount(webroot+"/api/db", dbh.Routes())

		if cfg.DebugFlags.HasFlag(config.DebugDo) {
			dochi.Use(router, webroot+"/debug/do", injector)
		}

		if cfg.DebugFlags.HasFlag(config.DebugGo) {
			group.Mount(webroot+"/debug", middleware.Profiler())
		}
	})

	return &Server{
		router: router,
		cfg:    cfg,
		s: &http.Server{
			Addr:           cfg.Address,
			Handler:        router,
			ReadTimeout:    defaultReadTimeout,
			WriteTimeout:   defaultWriteTimeout,
			MaxHeaderBytes: defaultMaxHeaderBytes,
		},
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	logger := log.Ctx(ctx)

	if s.cfg.DebugFlags.HasFlag(config.DebugRouter) {
		logRoutes(ctx, "Server", s.router)
	}

	listener, err := newListener(ctx, s.cfg)
	if err != nil {
		return aerr.Wrapf(err, "start listen error")
	}

	logger.Log().Msgf("Server: listen on address=%s https=%v webroot=%q",
		s.cfg.Address, s.cfg.TLSEnabled(), s.cfg.WebRoot)

	go func() {
		if err := s.s.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msgf("Server: serve error: %s", err)
		}
	}()

	return nil
}

// Shutdown stop server. Called by samber/do.
func (s *Server) Shutdown(ctx context.Context) error {
	logger := log.Ctx(ctx)
	logger.Debug().Msg("Server: stopping...")

	if err := s.s.Shutdown(ctx); err != nil {
		return aerr.Wrapf(err, "shutdown server failed")
	}

	logger.Debug().Msg("Server: stopped")

	return nil
}

//-------------------------------------------------------------

func logRoutes(ctx context.Context, name string, r chi.Routes) {
	logger := log.Ctx(ctx)

	walkFunc := func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		route = strings.ReplaceAll(route, "/*/", "/")
		logger.Debug().Msgf("%s: ROUTE: %s %s", name, method, route)

		return nil
	}

	if err := chi.Walk(r, walkFunc); err != nil {
		logger.Error().Err(err).Msgf("Server: routers walk error: %s", err)
	}
}

func newListener(ctx context.Context, cfg *config.ServerConf) (net.Listener, error) {
	lc := net.ListenConfig{}

	listener, err := lc.Listen(ctx, "tcp", cfg.Address)
	if err != nil {
		return nil, aerr.Wrapf(err, "listen failed").WithMeta("address", cfg.Address)
	}

	if !cfg.TLSEnabled() {
		return listener, nil
	}

	cert, err := tls.LoadX509KeyPair(cfg.TLSCert, cfg.TLSKey)
	if err != nil {
		listener.Close()

		return nil, aerr.Wrapf(err, "load certificates failed").
			WithMeta("cert", cfg.TLSCert, "key", cfg.TLSKey)
	}

	tlscfg := tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	return tls.NewListener(listener, &tlscfg), nil
}
