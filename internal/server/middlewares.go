package server

//
// middlewares.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-pgfairing/internal/config"
)

func newLogMiddleware(cfg *config.ServerConf) func(http.Handler) http.Handler {
	logbody := cfg.DebugFlags.HasFlag(config.DebugMsgBody)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if shouldSkipLogRequest(request) {
				next.ServeHTTP(writer, request)

				return
			}

			start := time.Now()
			ctx := request.Context()
			requestID, _ := hlog.IDFromCtx(ctx)
			llog := log.With().Str("req_id", requestID.String()).Logger()
			request = request.WithContext(llog.WithContext(ctx))

			event := llog.Info().
				Str("url", request.URL.Redacted()).
				Str("remote", request.RemoteAddr).
				Str("method", request.Method)
			if logbody {
				event = event.Interface("headers", request.Header)
			}

			event.Msg("webhandler: request start")

			var reqBody, respBody bytes.Buffer

			lrw := middleware.NewWrapResponseWriter(writer, request.ProtoMajor)

			if logbody {
				request.Body = io.NopCloser(io.TeeReader(request.Body, &reqBody))
				lrw.Tee(&respBody)
			}

			defer func() {
				if logbody {
					llog.Debug().
						Str("request_body", reqBody.String()).
						Str("response_body", respBody.String()).
						Interface("resp_headers", lrw.Header()).
						Msg("webhandler: request data")
				}

				loglevel := zerolog.InfoLevel
				if lrw.Status() >= http.StatusInternalServerError {
					loglevel = zerolog.WarnLevel
				}

				llog.WithLevel(loglevel).
					Str("uri", request.RequestURI).
					Int("status", lrw.Status()).
					Int("size", lrw.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("webhandler: request finished")
			}()

			next.ServeHTTP(lrw, request)
		})
	}
}

// shouldSkipLogRequest determine which request should not be logged.
func shouldSkipLogRequest(request *http.Request) bool {
	path := request.URL.Path

	return strings.HasSuffix(path, "/metrics") || strings.Contains(path, "/debug/")
}

//-------------------------------------------------------------

func newRecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func(ctx context.Context) {
			rec := recover()
			if rec == nil {
				return
			}

			logger := log.Ctx(ctx)

			switch t := rec.(type) {
			case error:
				if errors.Is(t, http.ErrAbortHandler) {
					panic(t)
				}

				logger.Error().Err(t).Msg("panic when handling request")
			case string:
				logger.Error().Str("err", t).Msg("panic when handling request")
			default:
				logger.Error().Str("err", "unknown error").Msg("panic when handling request")
			}

			if req.Header.Get("Connection") != "Upgrade" {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}(req.Context())

		next.ServeHTTP(w, req)
	})
}
