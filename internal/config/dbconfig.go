package config

//
// dbconfig.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"math"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/kabes/go-pgfairing/internal/aerr"
	"gitlab.com/kabes/go-pgfairing/pgfairing"
)

// FailurePolicy define what to do when database is not available on startup.
type FailurePolicy string

const (
	// FailureAbort stop application when pool can't be created.
	FailureAbort = FailurePolicy("abort")
	// FailureDegrade start application without database; handlers that
	// require pool respond 503.
	FailureDegrade = FailurePolicy("degrade")
)

// DBConf hold database options from command line.
type DBConf struct {
	Name     string
	User     string
	Password string
	Host     string
	Port     int
	MaxConns int
	LogLevel string

	// URL, when set, is used to build pool outside fairing that is then
	// injected (other connection options are ignored).
	URL string

	OnFailure FailurePolicy
}

func (d *DBConf) Validate() error {
	if d.URL == "" && d.Port != 0 && (d.Port < 1 || d.Port > math.MaxUint16) {
		return aerr.ErrValidation.WithUserMsg("invalid db.port %d", d.Port)
	}

	if _, err := pgfairing.ParseLogLevel(d.LogLevel); err != nil {
		return aerr.Wrapf(err, "validate db.log-level failed")
	}

	switch FailurePolicy(strings.ToLower(string(d.OnFailure))) {
	case "":
		d.OnFailure = FailureAbort
	case FailureAbort, FailureDegrade:
		d.OnFailure = FailurePolicy(strings.ToLower(string(d.OnFailure)))
	default:
		return aerr.ErrValidation.WithUserMsg("invalid db.on-failure %q; expected abort or degrade", d.OnFailure)
	}

	return nil
}

// UseInjectedPool return true when pool should be created from URL and
// injected into fairing.
func (d *DBConf) UseInjectedPool() bool {
	return d.URL != ""
}

// FairingConfig build pgfairing configuration. Empty host, port and log
// level keep defaults; max connections is always applied (min 1).
func (d *DBConf) FairingConfig() pgfairing.Config {
	cfg := pgfairing.NewConfig().
		WithDatabase(d.Name).
		WithUsername(d.User).
		WithPassword(d.Password)

	if d.Host != "" {
		cfg = cfg.WithHost(d.Host)
	}

	if d.Port > 0 && d.Port <= math.MaxUint16 {
		cfg = cfg.WithPort(uint16(d.Port))
	}

	cfg = cfg.WithMaxConnections(d.MaxConns)

	if lvl, err := pgfairing.ParseLogLevel(d.LogLevel); err == nil {
		cfg = cfg.WithLogLevel(lvl)
	}

	return cfg
}

func (d *DBConf) MarshalZerologObject(event *zerolog.Event) {
	if d.URL != "" {
		event.Str("mode", "injected")

		return
	}

	event.Str("mode", "config").
		Str("name", d.Name).
		Str("user", d.User).
		Str("host", d.Host).
		Int("port", d.Port).
		Int("max_conns", d.MaxConns).
		Str("log_level", d.LogLevel).
		Str("on_failure", string(d.OnFailure))
}
