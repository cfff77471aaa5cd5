// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

// Package client provides Go access to a running vecserve server. The server
// handles one request per connection, so no persistent socket is kept: each
// call dials, exchanges one frame pair, and closes.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	vecerr "github.com/vecserve-dev/vecserve/pkg/errors"
	"github.com/vecserve-dev/vecserve/pkg/protocol"
)

// Config holds client connection settings.
type Config struct {
	Addr           string
	DialTimeout    time.Duration
	RequestTimeout time.Duration
}

// Client talks the vecserve wire protocol to a single server address.
type Client struct {
	addr           string
	dialTimeout    time.Duration
	requestTimeout time.Duration
}

// New creates a Client targeting cfg.Addr. Zero timeouts fall back to
// 2 seconds for dialing and 30 seconds per request.
func New(cfg Config) *Client {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	return &Client{
		addr:           cfg.Addr,
		dialTimeout:    cfg.DialTimeout,
		requestTimeout: cfg.RequestTimeout,
	}
}

// Ping reports whether the server is reachable by opening and closing a
// fresh connection.
func (c *Client) Ping(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	return conn.Close()
}

// Store sends one chunk to the server. A nil metadata map is sent as an
// empty object.
func (c *Client) Store(ctx context.Context, chunkID, docID, text string, metadata map[string]any) error {
	if metadata == nil {
		metadata = map[string]any{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return vecerr.Wrap(err, vecerr.CodeClientRequestFailure, "marshalling metadata")
	}

	_, err = c.do(ctx, protocol.StoreRequest{
		Action:   protocol.ActionStore,
		ChunkID:  chunkID,
		DocID:    docID,
		Text:     text,
		Metadata: metaJSON,
	})
	return err
}

// Search queries the server and returns ranked results. topK <= 0 lets the
// server apply its default; an empty docID searches across all documents.
func (c *Client) Search(ctx context.Context, query string, topK int, docID string) ([]protocol.SearchResult, error) {
	req := protocol.SearchRequest{
		Action: protocol.ActionSearch,
		Query:  query,
		DocID:  docID,
	}
	if topK > 0 {
		req.TopK = topK
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// do opens a connection, sends one request, reads the response, and closes.
// A response with error status is surfaced as an error carrying the server
// message.
func (c *Client) do(ctx context.Context, request any) (*protocol.Response, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, vecerr.Wrap(err, vecerr.CodeClientRequestFailure, "marshalling request")
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(time.Now().Add(c.requestTimeout)); err != nil {
		return nil, vecerr.Wrap(err, vecerr.CodeClientRequestFailure, "setting request deadline")
	}

	if err := protocol.WriteFrame(conn, payload); err != nil {
		return nil, vecerr.Wrap(err, vecerr.CodeClientRequestFailure, "sending request")
	}

	raw, err := protocol.ReadFrame(conn)
	if err != nil {
		return nil, vecerr.Wrap(err, vecerr.CodeClientRequestFailure, "reading response")
	}

	var resp protocol.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, vecerr.Wrap(err, vecerr.CodeClientRequestFailure, "decoding response")
	}

	if resp.Status == protocol.StatusError {
		return nil, vecerr.New(vecerr.CodeClientServerError, resp.Message)
	}

	return &resp, nil
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		if isDialError(err) {
			return nil, vecerr.Wrap(err, vecerr.CodeClientNotRunning,
				"server is not reachable", vecerr.FieldAddr(c.addr))
		}
		return nil, vecerr.Wrap(err, vecerr.CodeClientRequestFailure, "dialing", vecerr.FieldAddr(c.addr))
	}
	return conn, nil
}

// isDialError returns true if err is a net dial error (connection refused, etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
