package pgfairing

//
// tracer.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TraceLogger pass pgx trace logs to zerolog. Logger from context is used
// when available (i.e. request logger with req_id), otherwise global one.
type TraceLogger struct{}

func NewTraceLogger() TraceLogger {
	return TraceLogger{}
}

func (TraceLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	logger := zerolog.Ctx(ctx)
	if logger == zerolog.DefaultContextLogger || logger.GetLevel() == zerolog.Disabled {
		logger = &log.Logger
	}

	event := logger.WithLevel(mapLogLevel(level))
	if event == nil {
		return
	}

	event.Str("mod", "pgx").Fields(data).Msg(msg)
}

func mapLogLevel(level tracelog.LogLevel) zerolog.Level {
	switch level {
	case tracelog.LogLevelTrace:
		return zerolog.TraceLevel
	case tracelog.LogLevelDebug:
		return zerolog.DebugLevel
	case tracelog.LogLevelInfo:
		return zerolog.InfoLevel
	case tracelog.LogLevelWarn:
		return zerolog.WarnLevel
	case tracelog.LogLevelError:
		return zerolog.ErrorLevel
	case tracelog.LogLevelNone:
		return zerolog.Disabled
	default:
		return zerolog.NoLevel
	}
}
