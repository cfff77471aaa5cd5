// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

package client_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vecserve-dev/vecserve/internal/server"
	"github.com/vecserve-dev/vecserve/internal/store"
	"github.com/vecserve-dev/vecserve/pkg/client"
	vecerr "github.com/vecserve-dev/vecserve/pkg/errors"
	"github.com/vecserve-dev/vecserve/pkg/protocol"
)

func startServer(t *testing.T) string {
	t.Helper()

	d := server.NewDispatcher(store.NewVectorStore(), protocol.DefaultTopK)
	srv, err := server.New(server.Config{
		Addr:         "127.0.0.1:0",
		PollInterval: 50 * time.Millisecond,
	}, d)
	require.NoError(t, err)
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server did not shut down")
		}
	})

	return srv.Addr().String()
}

func TestClientStoreAndSearch(t *testing.T) {
	ctx := context.Background()
	c := client.New(client.Config{Addr: startServer(t)})

	err := c.Store(ctx, "c1", "d1", "hello world", map[string]any{"page": 1})
	require.NoError(t, err)

	results, err := c.Search(ctx, "hello", 1, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ChunkID)
	assert.Equal(t, "hello world", results[0].Text)
	assert.JSONEq(t, `{"page":1}`, string(results[0].Metadata))
}

func TestClientSearchEmptyStore(t *testing.T) {
	ctx := context.Background()
	c := client.New(client.Config{Addr: startServer(t)})

	results, err := c.Search(ctx, "anything", 5, "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClientSearchDocFilter(t *testing.T) {
	ctx := context.Background()
	c := client.New(client.Config{Addr: startServer(t)})

	require.NoError(t, c.Store(ctx, "c1", "docA", "same words", nil))
	require.NoError(t, c.Store(ctx, "c2", "docB", "same words", nil))

	results, err := c.Search(ctx, "same", 10, "docB")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c2", results[0].ChunkID)
}

func TestClientServerErrorSurfaces(t *testing.T) {
	ctx := context.Background()

	// A stub server that rejects every request with an error response.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		if _, err := protocol.ReadFrame(conn); err != nil {
			return
		}
		_ = protocol.WriteFrame(conn, []byte(`{"status":"error","message":"boom"}`))
	}()

	c := client.New(client.Config{Addr: ln.Addr().String()})
	_, err = c.Search(ctx, "hello", 5, "")
	require.Error(t, err)
	assert.True(t, vecerr.HasCode(err, vecerr.CodeClientServerError))
	assert.Contains(t, err.Error(), "boom")
}

func TestClientPing(t *testing.T) {
	ctx := context.Background()

	c := client.New(client.Config{Addr: startServer(t)})
	assert.NoError(t, c.Ping(ctx))

	down := client.New(client.Config{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	err := down.Ping(ctx)
	require.Error(t, err)
	assert.True(t, vecerr.HasCode(err, vecerr.CodeClientNotRunning))
}

func TestClientStoreAgainstDownServer(t *testing.T) {
	ctx := context.Background()
	c := client.New(client.Config{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})

	err := c.Store(ctx, "c1", "d1", "hello", nil)
	require.Error(t, err)
	assert.True(t, vecerr.HasCode(err, vecerr.CodeClientNotRunning))
}
