// Package host serves an application handler over HTTP/1.1 and cleartext
// HTTP/2, wrapped in the host-level middleware.
package host

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/vitalvas/webapi/internal/config"
	"github.com/vitalvas/webapi/internal/logger"
	"github.com/vitalvas/webapi/mux"
	"github.com/vitalvas/webapi/muxhandlers"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Stage names, outermost first.
const (
	StageForwardedHeaders = "forwarded-headers"
	StageRequestID        = "request-id"
	StageAccessLog        = "access-log"
	StageRecovery         = "recovery"
	StageRequestSizeLimit = "request-size-limit"
	StageServerHeader     = "server-header"
)

const maxConcurrentStreams = 250

// Option configures a Host.
type Option func(*Host)

// WithForwardedHeaders applies forwarded headers processing before every
// other stage.
func WithForwardedHeaders(cfg muxhandlers.ForwardedHeadersConfig) Option {
	return func(h *Host) {
		h.forwarded = &cfg
	}
}

// WithListener serves on l instead of listening on the configured address.
func WithListener(l net.Listener) Option {
	return func(h *Host) {
		h.listener = l
	}
}

// Host owns the HTTP server.
type Host struct {
	cfg       config.HTTPConfig
	log       *logger.Logger
	forwarded *muxhandlers.ForwardedHeadersConfig
	listener  net.Listener
	handler   http.Handler
	stages    []string
}

type stage struct {
	name string
	mw   mux.MiddlewareFunc
}

// New wraps app with the host-level stages. A nil log discards output.
func New(cfg config.HTTPConfig, app http.Handler, log *logger.Logger, opts ...Option) (*Host, error) {
	if log == nil {
		log = logger.Nop()
	}

	h := &Host{
		cfg: cfg,
		log: log.WithComponent("host"),
	}
	for _, opt := range opts {
		opt(h)
	}

	var stages []stage

	if h.forwarded != nil {
		mw, err := muxhandlers.ForwardedHeadersMiddleware(*h.forwarded)
		if err != nil {
			return nil, fmt.Errorf("host: %w", err)
		}
		stages = append(stages, stage{StageForwardedHeaders, mw})
	}

	stages = append(stages,
		stage{StageRequestID, muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{})},
		stage{StageAccessLog, muxhandlers.AccessLogMiddleware(muxhandlers.AccessLogConfig{LogFunc: h.logAccess})},
		stage{StageRecovery, muxhandlers.RecoveryMiddleware(muxhandlers.RecoveryConfig{LogFunc: h.logPanic})},
	)

	sizeLimit, err := muxhandlers.RequestSizeLimitMiddleware(muxhandlers.RequestSizeLimitConfig{MaxBytes: cfg.MaxBodyBytes})
	if err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}
	stages = append(stages, stage{StageRequestSizeLimit, sizeLimit})

	if cfg.ServerName != "" {
		stages = append(stages, stage{StageServerHeader, muxhandlers.ServerMiddleware(muxhandlers.ServerConfig{
			Name:        cfg.ServerName,
			HostnameEnv: []string{"POD_NAME", "HOSTNAME"},
		})})
	}

	handler := app
	for i := len(stages) - 1; i >= 0; i-- {
		handler = stages[i].mw(handler)
	}
	for _, s := range stages {
		h.stages = append(h.stages, s.name)
	}
	h.handler = handler

	return h, nil
}

// Handler returns the wrapped application handler.
func (h *Host) Handler() http.Handler {
	return h.handler
}

// Stages returns the host-level stage names, outermost first.
func (h *Host) Stages() []string {
	out := make([]string, len(h.stages))
	copy(out, h.stages)
	return out
}

// Addr returns the configured listen address.
func (h *Host) Addr() string {
	return net.JoinHostPort(h.cfg.Host, strconv.Itoa(h.cfg.Port))
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured shutdown timeout. It returns when the server has stopped.
func (h *Host) Run(ctx context.Context) error {
	ln := h.listener
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", h.Addr())
		if err != nil {
			return fmt.Errorf("host: listen on %s: %w", h.Addr(), err)
		}
	}

	errorLog := h.log.WithComponent("http").GetLogger()

	srv := &http.Server{
		Handler: h2c.NewHandler(h.handler, &http2.Server{
			MaxConcurrentStreams: maxConcurrentStreams,
			IdleTimeout:          h.cfg.IdleTimeout,
		}),
		ReadTimeout:       h.cfg.ReadTimeout,
		ReadHeaderTimeout: h.cfg.ReadTimeout,
		WriteTimeout:      h.cfg.WriteTimeout,
		IdleTimeout:       h.cfg.IdleTimeout,
		ErrorLog:          stdlog.New(&errorLog, "", 0),
	}

	errCh := make(chan error, 1)
	go func() {
		h.log.Info("listening", logger.Fields("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("host: serve: %w", err)
	case <-ctx.Done():
	}

	h.log.Info("shutting down")

	timeout := h.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("host: shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("host: serve: %w", err)
	}

	h.log.Info("stopped")
	return nil
}

func (h *Host) logAccess(_ *http.Request, entry muxhandlers.AccessLogEntry) {
	fields := logger.Fields(
		"method", entry.Method,
		"path", entry.Path,
		"status", entry.Status,
		"size", entry.Size,
		"remote", entry.RemoteAddr,
		"scheme", entry.Scheme,
		logger.FieldRequestID, entry.RequestID,
		logger.FieldDuration, entry.Duration.Milliseconds(),
	)

	switch {
	case entry.Status >= http.StatusInternalServerError:
		h.log.Error("request", fields)
	case entry.Status >= http.StatusBadRequest:
		h.log.Warn("request", fields)
	default:
		h.log.Info("request", fields)
	}
}

func (h *Host) logPanic(r *http.Request, err any, stack []byte) {
	h.log.Error("unhandled panic", logger.Fields(
		"method", r.Method,
		"path", r.URL.Path,
		logger.FieldRequestID, muxhandlers.RequestIDFromContext(r.Context()),
		"panic", fmt.Sprint(err),
		"stack", string(stack),
	))
}
