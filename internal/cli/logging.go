// logging.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
package cli

import (
	"fmt"
	"io"
	stdlog "log"
	"log/syslog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/journald"
	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-pgfairing/internal/aerr"
)

var logFormats = []string{"json", "syslog", "journald", "logfmt", "console"}

// initializeLogger set global logger output format and level.
func initializeLogger(level, format string) error {
	zerolog.ErrorMarshalFunc = aerr.ErrorMarshalFunc //nolint:reassign

	writer, err := logWriter(checkFormat(format))
	if err != nil {
		return err
	}

	log.Logger = log.Output(writer).With().Timestamp().Caller().Logger()

	if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && level != "" {
		zerolog.SetGlobalLevel(l)
	} else {
		log.Error().Msgf("logger: unknown log level %q; using debug", level)
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)

	return nil
}

func logWriter(format string) (io.Writer, error) {
	switch format {
	case "json":
		return os.Stderr, nil

	case "syslog":
		syslogwriter, err := syslog.New(syslog.LOG_USER, "pgfairing")
		if err != nil {
			return nil, aerr.Wrapf(err, "init syslog failed")
		}

		return zerolog.SyslogLevelWriter(syslogwriter), nil

	case "journald":
		return journald.NewJournalDWriter(), nil

	case "logfmt":
		return setupLogfmtConsoleWriter(), nil
	}

	return setupConsoleWriter(), nil
}

// checkFormat check log format name. When format is unknown or empty use
// console on terminal and logfmt otherwise.
func checkFormat(format string) string {
	if slices.Contains(logFormats, format) {
		return format
	}

	if format != "" {
		log.Error().Msgf("logger: unknown log format %q; using default", format)
	}

	if outputIsConsole() {
		return "console"
	}

	return "logfmt"
}

func setupConsoleWriter() io.Writer {
	console := outputIsConsole()

	// skip date on console
	tformat := time.RFC3339
	if console {
		tformat = time.TimeOnly
	}

	return zerolog.ConsoleWriter{ //nolint:exhaustruct
		Out:        os.Stderr,
		NoColor:    !console,
		TimeFormat: tformat,
	}
}

func outputIsConsole() bool {
	fileInfo, _ := os.Stderr.Stat()

	return fileInfo != nil && (fileInfo.Mode()&os.ModeCharDevice) != 0
}

// setupLogfmtConsoleWriter configure logger to logfmt format (all fields in form key=val).
func setupLogfmtConsoleWriter() io.Writer {
	quoted := func(i any) string {
		return strconv.Quote(fmt.Sprintf("%s", i))
	}

	return zerolog.ConsoleWriter{ //nolint:exhaustruct
		Out:        os.Stderr,
		NoColor:    true,
		TimeFormat: time.RFC3339,
		FormatLevel: func(i any) string {
			if i == nil {
				return ""
			}

			return fmt.Sprintf("level=%s", i)
		},
		FormatTimestamp: func(i any) string { return fmt.Sprintf("ts=%s", i) },
		FormatMessage: func(i any) string {
			if i == nil {
				return "msg=<nil>"
			}

			return "msg=" + quoted(i)
		},
		FormatCaller: func(i any) string {
			if i == nil {
				return "caller=UNKNOWN"
			}

			c := fmt.Sprintf("%s", i)
			if strings.ContainsAny(c, " \"") {
				c = strconv.Quote(c)
			}

			return "caller=" + c
		},
		FormatErrFieldValue: func(i any) string {
			if i == nil {
				return "<nil>"
			}

			return quoted(i)
		},
	}
}
