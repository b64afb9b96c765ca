package pgfairing

//
// config.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"gitlab.com/kabes/go-pgfairing/internal/aerr"
)

const (
	DefaultHost           = "localhost"
	DefaultPort           = uint16(5432)
	DefaultMaxConnections = 5
	DefaultLogLevel       = tracelog.LogLevelDebug
)

// Config describe how to connect to database when pool is not injected.
// All With* methods return updated copy; Config value is never modified
// in place.
type Config struct {
	database       string
	username       string
	password       string
	host           string
	port           uint16
	maxConnections int32
	logLevel       tracelog.LogLevel
}

// NewConfig return configuration with default values.
func NewConfig() Config {
	return Config{
		host:           DefaultHost,
		port:           DefaultPort,
		maxConnections: DefaultMaxConnections,
		logLevel:       DefaultLogLevel,
	}
}

// WithDatabase set database name.
func (c Config) WithDatabase(database string) Config {
	c.database = database

	return c
}

// WithUsername set user used to login.
func (c Config) WithUsername(username string) Config {
	c.username = username

	return c
}

// WithPassword set user password.
func (c Config) WithPassword(password string) Config {
	c.password = password

	return c
}

// WithHost set database host name or address.
func (c Config) WithHost(host string) Config {
	c.host = host

	return c
}

// WithPort set database port.
func (c Config) WithPort(port uint16) Config {
	c.port = port

	return c
}

// WithMaxConnections set maximal number of connections in pool; values
// lower than 1 are replaced by 1.
func (c Config) WithMaxConnections(maxConns int) Config {
	c.maxConnections = int32(max(1, min(maxConns, maxPoolSize)))

	return c
}

// WithLogLevel set level of pgx logs (statements, connections).
func (c Config) WithLogLevel(level tracelog.LogLevel) Config {
	c.logLevel = level

	return c
}

func (c Config) Database() string            { return c.database }
func (c Config) Username() string            { return c.username }
func (c Config) Password() string            { return c.password }
func (c Config) Host() string                { return c.host }
func (c Config) Port() uint16                { return c.port }
func (c Config) MaxConnections() int         { return int(c.maxConnections) }
func (c Config) LogLevel() tracelog.LogLevel { return c.logLevel }

// maxPoolSize keep value in range of pgxpool MaxConns (int32).
const maxPoolSize = 1<<31 - 1

//-------------------------------------------------------------

// ConnString build postgres url from configuration.
func (c Config) ConnString() string {
	return c.connURL().String()
}

// Redacted return connection url without password; for logging.
func (c Config) Redacted() string {
	return c.connURL().Redacted()
}

func (c Config) connURL() *url.URL {
	connurl := &url.URL{
		Scheme: "postgres",
		Host:   c.hostPort(),
		Path:   "/" + c.database,
	}

	switch {
	case c.username != "" && c.password != "":
		connurl.User = url.UserPassword(c.username, c.password)
	case c.username != "":
		connurl.User = url.User(c.username)
	case c.password != "":
		connurl.User = url.UserPassword("", c.password)
	}

	return connurl
}

func (c Config) hostPort() string {
	host := strings.TrimSpace(c.host)
	if host == "" {
		host = DefaultHost
	}

	return net.JoinHostPort(host, strconv.Itoa(int(c.port)))
}

// PoolConfig create pgxpool configuration with pool size and logging set
// according to Config.
func (c Config) PoolConfig() (*pgxpool.Config, error) {
	pconf, err := pgxpool.ParseConfig(c.ConnString())
	if err != nil {
		return nil, aerr.ApplyFor(aerr.ErrInvalidConf, err, "parse database configuration failed").
			WithMeta("connstr", c.Redacted())
	}

	pconf.MaxConns = c.maxConnections
	pconf.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   NewTraceLogger(),
		LogLevel: c.logLevel,
	}

	return pconf, nil
}

//-------------------------------------------------------------

// ParseLogLevel convert level name (trace, debug, info, warn, error, none)
// into pgx log level.
func ParseLogLevel(level string) (tracelog.LogLevel, error) {
	level = strings.ToLower(strings.TrimSpace(level))

	switch level {
	case "":
		return DefaultLogLevel, nil
	case "warning":
		level = "warn"
	case "off", "disabled":
		level = "none"
	}

	lvl, err := tracelog.LogLevelFromString(level)
	if err != nil {
		return DefaultLogLevel, aerr.ApplyFor(aerr.ErrInvalidConf, err, "", "invalid database log level").
			WithMeta("level", level)
	}

	return lvl, nil
}
