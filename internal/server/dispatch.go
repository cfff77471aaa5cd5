// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

package server

import (
	"encoding/json"
	"log/slog"

	"github.com/vecserve-dev/vecserve/internal/embed"
	"github.com/vecserve-dev/vecserve/internal/store"
	"github.com/vecserve-dev/vecserve/pkg/protocol"
)

// emptyMetadata is stored when a request carries no metadata.
var emptyMetadata = json.RawMessage("{}")

// Dispatcher decodes request payloads, validates them, runs them against the
// store, and encodes response payloads. It never fails: every problem with a
// request becomes an error response.
type Dispatcher struct {
	store       *store.VectorStore
	defaultTopK int
}

// NewDispatcher creates a Dispatcher serving requests against vs.
func NewDispatcher(vs *store.VectorStore, defaultTopK int) *Dispatcher {
	if defaultTopK <= 0 {
		defaultTopK = protocol.DefaultTopK
	}
	return &Dispatcher{store: vs, defaultTopK: defaultTopK}
}

// Dispatch handles one request payload and returns the response payload.
func (d *Dispatcher) Dispatch(payload []byte) []byte {
	var envelope struct {
		Action json.RawMessage `json:"action"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return errorPayload("JSON parse error: " + err.Error())
	}

	// Decoding into *string leaves it nil on JSON null, which must be
	// rejected the same way as a missing or mistyped action.
	var action *string
	if envelope.Action == nil || json.Unmarshal(envelope.Action, &action) != nil || action == nil {
		return errorPayload("Missing or invalid 'action' field")
	}

	switch *action {
	case protocol.ActionStore:
		return d.handleStore(payload)
	case protocol.ActionSearch:
		return d.handleSearch(payload)
	default:
		return errorPayload("Unknown action: " + *action)
	}
}

// storeRequest uses pointer fields so a missing field is distinguishable
// from an explicitly empty one.
type storeRequest struct {
	ChunkID  *string         `json:"chunk_id"`
	DocID    *string         `json:"doc_id"`
	Text     *string         `json:"text"`
	Metadata json.RawMessage `json:"metadata"`
}

func (d *Dispatcher) handleStore(payload []byte) []byte {
	var req storeRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return errorPayload("invalid store request: " + err.Error())
	}

	if req.ChunkID == nil || req.DocID == nil || req.Text == nil {
		return errorPayload("store requires chunk_id, doc_id, and text")
	}

	metadata := req.Metadata
	if len(metadata) == 0 {
		metadata = emptyMetadata
	}

	d.store.Store(*req.ChunkID, *req.DocID, *req.Text, metadata, embed.Text(*req.Text))
	slog.Debug("stored chunk", "chunk_id", *req.ChunkID, "doc_id", *req.DocID)

	return okPayload()
}

type searchRequest struct {
	Query *string `json:"query"`
	TopK  *int    `json:"top_k"`
	DocID string  `json:"doc_id"`
}

func (d *Dispatcher) handleSearch(payload []byte) []byte {
	var req searchRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return errorPayload("invalid search request: " + err.Error())
	}

	if req.Query == nil {
		return errorPayload("search requires query")
	}

	topK := d.defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	hits := d.store.Search(embed.Text(*req.Query), topK, req.DocID)

	results := make([]protocol.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, protocol.SearchResult{
			ChunkID:  hit.ChunkID,
			Score:    hit.Score,
			Text:     hit.Text,
			Metadata: hit.Metadata,
		})
	}
	slog.Debug("search served", "doc_id", req.DocID, "top_k", topK, "results", len(results))

	return marshalPayload(protocol.SearchResponse{Status: protocol.StatusOK, Results: results})
}

func okPayload() []byte {
	return marshalPayload(protocol.OKResponse{Status: protocol.StatusOK})
}

func errorPayload(message string) []byte {
	return marshalPayload(protocol.ErrorResponse{Status: protocol.StatusError, Message: message})
}

// marshalPayload encodes a response value. Encoding these response types
// cannot fail under normal operation; if it ever does, a generic error
// response is returned so the client still gets a frame.
func marshalPayload(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding response failed", "error", err)
		return []byte(`{"status":"error","message":"internal error encoding response"}`)
	}
	return data
}
