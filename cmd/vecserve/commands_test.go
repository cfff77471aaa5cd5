// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vecserve-dev/vecserve/internal/server"
	"github.com/vecserve-dev/vecserve/internal/store"
	"github.com/vecserve-dev/vecserve/pkg/protocol"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// startTestServer runs a server on an ephemeral port and returns host and port.
func startTestServer(t *testing.T) (string, int) {
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

	addr := srv.Addr().String()
	idx := strings.LastIndex(addr, ":")
	port, err := strconv.Atoi(addr[idx+1:])
	require.NoError(t, err)
	return "127.0.0.1", port
}

func TestRootCommand_Help(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "vecserve")
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "store")
	assert.Contains(t, out, "search")
	assert.Contains(t, out, "status")
	assert.Contains(t, out, "version")
}

func TestRootCommand_UnknownCommand(t *testing.T) {
	_, err := execute(t, "frobnicate")
	assert.Error(t, err)
}

func TestRootCommand_UnknownFlag(t *testing.T) {
	_, err := execute(t, "serve", "--no-such-flag")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "vecserve")
}

func TestServeCommand_BadConfigPath(t *testing.T) {
	_, err := execute(t, "serve", "--config", "/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestStoreCommand_RequiresDocID(t *testing.T) {
	_, err := execute(t, "store", "some text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doc-id")
}

func TestSearchCommand_RejectsUnknownOutputFormat(t *testing.T) {
	_, err := execute(t, "search", "query", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestStatusCommand_ServerDown(t *testing.T) {
	_, err := execute(t, "status", "--host", "127.0.0.1", "--port", "1")
	assert.Error(t, err)
}

func TestStoreAndSearchAgainstServer(t *testing.T) {
	host, port := startTestServer(t)
	hostArgs := []string{"--host", host, "--port", strconv.Itoa(port)}

	out, err := execute(t, append([]string{
		"store", "hello world", "--doc-id", "d1", "--chunk-id", "c1",
		"--metadata", `{"page":1}`,
	}, hostArgs...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "stored chunk c1 in doc d1")

	out, err = execute(t, append([]string{"search", "hello", "--output", "json"}, hostArgs...)...)
	require.NoError(t, err)

	var results []printedResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ChunkID)
	assert.Equal(t, "hello world", results[0].Text)
	assert.Equal(t, float64(1), results[0].Metadata["page"])
}

func TestStatusCommand_ServerUp(t *testing.T) {
	host, port := startTestServer(t)

	out, err := execute(t, "status", "--host", host, "--port", strconv.Itoa(port))
	require.NoError(t, err)
	assert.Contains(t, out, "vecserve is running")
}

func TestSearchCommand_TextOutputEmpty(t *testing.T) {
	host, port := startTestServer(t)

	out, err := execute(t, "search", "nothing stored", "--host", host, "--port", strconv.Itoa(port))
	require.NoError(t, err)
	assert.Contains(t, out, "no results")
}

func TestPrintResultsYAML(t *testing.T) {
	results := []protocol.SearchResult{
		{ChunkID: "c1", Score: 0.75, Text: "hello", Metadata: json.RawMessage(`{"page":2}`)},
	}

	var buf bytes.Buffer
	require.NoError(t, printResults(&buf, results, "yaml"))
	assert.Contains(t, buf.String(), "chunk_id: c1")
	assert.Contains(t, buf.String(), "page: 2")
}

func TestStoreCommand_ReadsStdin(t *testing.T) {
	host, port := startTestServer(t)

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader("text from stdin\n"))
	root.SetArgs([]string{"store", "--doc-id", "d9", "--host", host, "--port", strconv.Itoa(port)})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "in doc d9")
}
