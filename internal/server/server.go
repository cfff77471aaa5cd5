// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

// Package server runs the vecserve connection loop: accept one connection,
// read one request frame, dispatch it, write one response frame, close the
// connection. Accepts use a bounded deadline so cancellation is observed
// between connections even when no traffic arrives; an in-flight connection
// always finishes before shutdown.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	vecerr "github.com/vecserve-dev/vecserve/pkg/errors"
	"github.com/vecserve-dev/vecserve/pkg/protocol"
)

// Config holds connection loop configuration.
type Config struct {
	Addr         string
	PollInterval time.Duration
}

// Server owns the listening socket and serves connections one at a time.
type Server struct {
	cfg        Config
	dispatcher *Dispatcher
	listener   *net.TCPListener
}

// New creates a Server. Listen must be called before Serve.
func New(cfg Config, dispatcher *Dispatcher) (*Server, error) {
	if cfg.Addr == "" {
		return nil, vecerr.New(vecerr.CodeServerStartFailure, "listen address is required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}

	return &Server{cfg: cfg, dispatcher: dispatcher}, nil
}

// Listen binds the listening socket. A bind failure is fatal to the caller;
// it is never retried.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return vecerr.Wrap(err, vecerr.CodeServerStartFailure, "listening", vecerr.FieldAddr(s.cfg.Addr))
	}

	s.listener = ln.(*net.TCPListener)
	slog.Info("listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address. Valid only after Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts and serves connections until ctx is cancelled, then closes
// the listener and returns nil. Cancellation is checked once per poll
// interval and between connections, never mid-request. Transient accept
// errors are logged and the loop continues.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.listener.Close() }()

	for {
		select {
		case <-ctx.Done():
			slog.Info("shutting down")
			return nil
		default:
		}

		if err := s.listener.SetDeadline(time.Now().Add(s.cfg.PollInterval)); err != nil {
			return vecerr.Wrap(err, vecerr.CodeServerAcceptFailure, "setting accept deadline")
		}

		conn, err := s.listener.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue // poll expired; re-check cancellation
			}
			slog.Warn("accept error", "error", err)
			continue
		}

		s.serveConn(conn)
	}
}

// Run binds the listener and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// serveConn handles exactly one request/response exchange, then closes the
// connection regardless of outcome.
func (s *Server) serveConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	payload, err := protocol.ReadFrame(conn)
	if err != nil {
		slog.Warn("reading request failed", "remote", conn.RemoteAddr().String(), "error", err)
		// Best effort: the client may already be gone, or may still be
		// waiting for a reply after sending a malformed frame.
		s.writeResponse(conn, []byte(`{"status":"error","message":"invalid request frame"}`))
		return
	}

	s.writeResponse(conn, s.dispatcher.Dispatch(payload))
}

func (s *Server) writeResponse(conn net.Conn, payload []byte) {
	if err := protocol.WriteFrame(conn, payload); err != nil {
		// The client has likely disconnected; nothing more can be done.
		slog.Warn("writing response failed", "remote", conn.RemoteAddr().String(), "error", err)
	}
}
