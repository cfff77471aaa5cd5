// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

package protocol

import "encoding/json"

// Known request actions.
const (
	ActionStore  = "store"
	ActionSearch = "search"
)

// Response status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// DefaultTopK is the result count used when a search request omits top_k.
const DefaultTopK = 5

// StoreRequest is the client-side shape of a store request.
// Metadata is carried as raw JSON so key order and value shapes reach the
// server untouched.
type StoreRequest struct {
	Action   string          `json:"action"`
	ChunkID  string          `json:"chunk_id"`
	DocID    string          `json:"doc_id"`
	Text     string          `json:"text"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// SearchRequest is the client-side shape of a search request.
type SearchRequest struct {
	Action string `json:"action"`
	Query  string `json:"query"`
	TopK   int    `json:"top_k,omitempty"`
	DocID  string `json:"doc_id,omitempty"`
}

// SearchResult is one ranked hit in a search response.
type SearchResult struct {
	ChunkID  string          `json:"chunk_id"`
	Score    float64         `json:"score"`
	Text     string          `json:"text"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// OKResponse acknowledges a successful store.
type OKResponse struct {
	Status string `json:"status"`
}

// SearchResponse carries ranked results. Results must be non-nil so an empty
// result set serializes as [] rather than null.
type SearchResponse struct {
	Status  string         `json:"status"`
	Results []SearchResult `json:"results"`
}

// ErrorResponse reports a per-request failure to the client.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Response is the decoded server reply as seen by clients; fields not
// present in the particular response kind are left at their zero values.
type Response struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Results []SearchResult `json:"results"`
}
