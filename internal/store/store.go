// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

// Package store holds the in-memory vector store: every entry lives in a map
// keyed by chunk id, with a secondary index from doc id to the chunk ids
// carrying it. Search is a brute-force scan ranked by dot product.
//
// The store is not safe for concurrent use. The connection loop serves one
// connection at a time, so store and search calls are strictly serialized;
// any caller that introduces concurrency must add its own mutual exclusion.
package store

import (
	"encoding/json"
	"sort"

	"github.com/viant/vec/search"
)

// Entry is one stored chunk with its embedding.
type Entry struct {
	ChunkID   string
	DocID     string
	Text      string
	Metadata  json.RawMessage
	Embedding []float32

	// magnitude is precomputed at store time so search never recomputes it.
	magnitude float32
}

// Result is one ranked hit from Search.
type Result struct {
	ChunkID  string
	Score    float64
	Text     string
	Metadata json.RawMessage
}

// VectorStore owns all entries and the doc id index.
type VectorStore struct {
	entries  map[string]*Entry
	docIndex map[string]map[string]struct{}
}

// NewVectorStore creates an empty store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		entries:  make(map[string]*Entry),
		docIndex: make(map[string]map[string]struct{}),
	}
}

// Store inserts or replaces the entry for chunkID. Replacing an entry whose
// doc id changed removes it from the old doc's index bucket first; a bucket
// left empty is deleted rather than kept around.
func (s *VectorStore) Store(chunkID, docID, text string, metadata json.RawMessage, embedding []float32) {
	if old, ok := s.entries[chunkID]; ok {
		bucket := s.docIndex[old.DocID]
		delete(bucket, chunkID)
		if len(bucket) == 0 {
			delete(s.docIndex, old.DocID)
		}
	}

	s.entries[chunkID] = &Entry{
		ChunkID:   chunkID,
		DocID:     docID,
		Text:      text,
		Metadata:  metadata,
		Embedding: embedding,
		magnitude: search.Float32s(embedding).Magnitude(),
	}

	bucket, ok := s.docIndex[docID]
	if !ok {
		bucket = make(map[string]struct{})
		s.docIndex[docID] = bucket
	}
	bucket[chunkID] = struct{}{}
}

// Search scores candidates against queryEmbedding by dot product and returns
// up to topK results in descending score order, ties broken by ascending
// chunk id. A non-empty docIDFilter restricts candidates to that doc via the
// index; an unknown doc id simply yields no results. topK <= 0 yields none.
func (s *VectorStore) Search(queryEmbedding []float32, topK int, docIDFilter string) []Result {
	if topK <= 0 {
		return []Result{}
	}

	qv := search.Float32s(queryEmbedding)
	qm := qv.Magnitude()

	var candidates []*Entry
	if docIDFilter != "" {
		bucket := s.docIndex[docIDFilter]
		candidates = make([]*Entry, 0, len(bucket))
		for chunkID := range bucket {
			candidates = append(candidates, s.entries[chunkID])
		}
	} else {
		candidates = make([]*Entry, 0, len(s.entries))
		for _, entry := range s.entries {
			candidates = append(candidates, entry)
		}
	}

	scored := make([]Result, 0, len(candidates))
	for _, entry := range candidates {
		scored = append(scored, Result{
			ChunkID:  entry.ChunkID,
			Score:    dotScore(qv, qm, entry),
			Text:     entry.Text,
			Metadata: entry.Metadata,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ChunkID < scored[j].ChunkID
	})

	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored
}

// Len returns the number of stored entries.
func (s *VectorStore) Len() int {
	return len(s.entries)
}

// dotScore computes the dot product of the query and the entry's embedding.
// Embeddings are L2-normalized, so this equals cosine similarity; either
// side having a zero magnitude scores 0 rather than dividing by zero.
func dotScore(qv search.Float32s, qm float32, entry *Entry) float64 {
	if qm == 0 || entry.magnitude == 0 {
		return 0
	}
	similarity := 1 - cosineDistanceWithMagnitudes(qv, entry.Embedding, qm, entry.magnitude)
	return float64(similarity * qm * entry.magnitude)
}
