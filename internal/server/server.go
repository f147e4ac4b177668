// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jeranaias/heartmind/internal/payment"
)

// CallbackPath is the route the provider redirects to.
const CallbackPath = "/payment-success"

var (
	// ErrNotLoopback is returned for a listen address off the local host.
	ErrNotLoopback = errors.New("server: listen address must be loopback")
	// ErrClosed is returned by Wait after Shutdown.
	ErrClosed = errors.New("server: closed")
)

// Config holds listener settings.
type Config struct {
	// Addr is host:port. Port 0 picks a free port.
	Addr string

	// ReadTimeout bounds reading a request. Defaults to 10s.
	ReadTimeout time.Duration
}

// Callback is one provider redirect.
type Callback struct {
	Reference string
	UserID    string
	Received  time.Time
}

// Complete reports whether both parameters are present.
func (c Callback) Complete() bool {
	return c.Reference != "" && c.UserID != ""
}

// Server is the loopback callback listener.
type Server struct {
	cfg      Config
	logger   zerolog.Logger
	router   chi.Router
	listener net.Listener
	srv      *http.Server

	callbacks chan Callback
	done      chan struct{}
	closeOnce sync.Once
}

// New binds the listener. It does not serve until Start.
func New(cfg Config, logger zerolog.Logger) (*Server, error) {
	if err := CheckLoopback(cfg.Addr); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger.With().Str("component", "callback-server").Logger(),
		listener:  ln,
		callbacks: make(chan Callback, 1),
		done:      make(chan struct{}),
	}
	s.setupRoutes()
	s.srv = &http.Server{
		Handler:           s.router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.ReadTimeout,
		IdleTimeout:       30 * time.Second,
	}
	return s, nil
}

// CheckLoopback rejects addresses that are not on the local host.
func CheckLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("%w: %q", ErrNotLoopback, addr)
	}
	return nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(Recoverer(s.logger))
	r.Use(RequestID)
	r.Use(Logger(s.logger))
	r.Use(SecurityHeaders)

	r.Get(CallbackPath, s.handleCallback)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	s.router = r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// CallbackURL is the return URL to hand to the payment provider.
func (s *Server) CallbackURL() string {
	return "http://" + s.Addr() + CallbackPath
}

// Callbacks delivers received redirects.
func (s *Server) Callbacks() <-chan Callback {
	return s.callbacks
}

// ============================================================================
// HANDLERS
// ============================================================================

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>HeartMind</title>
<style>body{font-family:sans-serif;max-width:32em;margin:4em auto;text-align:center;color:#333}</style>
</head><body><h2>{{.Title}}</h2><p>{{.Body}}</p></body></html>
`))

type page struct {
	Title string
	Body  string
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ref, userID := payment.ParseCallback(r.URL.Query())
	cb := Callback{Reference: ref, UserID: userID, Received: time.Now()}

	status := http.StatusOK
	p := page{Title: "Payment received", Body: "You can return to HeartMind in your terminal."}
	if !cb.Complete() {
		status = http.StatusBadRequest
		p = page{Title: "Payment", Body: payment.MsgMissingReference}
	}

	// Incomplete callbacks are still delivered so the caller can show the error.
	select {
	case s.callbacks <- cb:
	default:
		s.logger.Warn().Str("reference", ref).Msg("callback dropped, one already pending")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTmpl.Execute(w, p); err != nil {
		s.logger.Debug().Err(err).Msg("write callback page")
	}
}

// ============================================================================
// LIFECYCLE
// ============================================================================

// Start serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.Addr()).Msg("callback listener started")
	err := s.srv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Wait blocks for the next callback.
func (s *Server) Wait(ctx context.Context) (Callback, error) {
	select {
	case cb := <-s.callbacks:
		return cb, nil
	case <-s.done:
		return Callback{}, ErrClosed
	case <-ctx.Done():
		return Callback{}, ctx.Err()
	}
}

// Shutdown stops the listener and releases any Wait.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.srv.Shutdown(ctx)
		// Shutdown only closes listeners that Serve has adopted.
		_ = s.listener.Close()
		s.logger.Info().Msg("callback listener stopped")
	})
	return err
}
