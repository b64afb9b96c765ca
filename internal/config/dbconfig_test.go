package config

//
// dbconfig_test.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"testing"

	"github.com/jackc/pgx/v5/tracelog"
	"gitlab.com/kabes/go-pgfairing/internal/aerr"
	"gitlab.com/kabes/go-pgfairing/internal/assert"
)

func TestDBConfValidate(t *testing.T) {
	tests := []struct {
		name   string
		conf   DBConf
		err    bool
		policy FailurePolicy
	}{
		{"empty", DBConf{}, false, FailureAbort},
		{"degrade", DBConf{OnFailure: "Degrade"}, false, FailureDegrade},
		{"abort", DBConf{OnFailure: "abort"}, false, FailureAbort},
		{"invalid policy", DBConf{OnFailure: "retry"}, true, "retry"},
		{"invalid port", DBConf{Port: 70000}, true, ""},
		{"negative port", DBConf{Port: -1}, true, ""},
		{"port ignored for url", DBConf{Port: 70000, URL: "postgres://x"}, false, FailureAbort},
		{"invalid log level", DBConf{LogLevel: "loud"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conf.Validate()
			if tt.err {
				assert.Err(t, err)
				assert.True(t, aerr.HasTag(err, aerr.ValidationError) || aerr.HasTag(err, aerr.ConfigurationError))

				return
			}

			assert.NoErr(t, err)
			assert.Equal(t, tt.conf.OnFailure, tt.policy)
		})
	}
}

func TestDBConfFairingConfig(t *testing.T) {
	conf := DBConf{
		Name:     "app",
		User:     "user",
		Password: "secret",
		Host:     "db.local",
		Port:     6432,
		MaxConns: -3,
		LogLevel: "warn",
	}

	cfg := conf.FairingConfig()
	assert.Equal(t, cfg.Database(), "app")
	assert.Equal(t, cfg.Username(), "user")
	assert.Equal(t, cfg.Password(), "secret")
	assert.Equal(t, cfg.Host(), "db.local")
	assert.Equal(t, cfg.Port(), uint16(6432))
	assert.Equal(t, cfg.MaxConnections(), 1)
	assert.Equal(t, cfg.LogLevel(), tracelog.LogLevelWarn)

	// defaults; zero max connections is raised to 1
	cfg = (&DBConf{}).FairingConfig()
	assert.Equal(t, cfg.Host(), "localhost")
	assert.Equal(t, cfg.Port(), uint16(5432))
	assert.Equal(t, cfg.MaxConnections(), 1)
	assert.Equal(t, cfg.LogLevel(), tracelog.LogLevelDebug)
}

func TestDBConfMaxConns(t *testing.T) {
	tests := []struct {
		maxConns int
		expected int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{5, 5},
		{20, 20},
	}

	for _, tt := range tests {
		conf := DBConf{Host: "localhost", Port: 5432, MaxConns: tt.maxConns}
		assert.NoErr(t, conf.Validate())
		assert.Equal(t, conf.FairingConfig().MaxConnections(), tt.expected)
	}
}
