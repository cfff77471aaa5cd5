// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

// Package embed turns text into fixed-length vectors using the hashing
// trick: tokens are hashed straight into a fixed number of buckets, so no
// vocabulary is kept and memory stays constant. Collisions are accepted as
// the cost of that trade. It is not a semantic embedding, but store and
// search both go through it, so similar texts land on similar vectors.
package embed

import (
	"hash/fnv"
	"math"
)

// Dimensions is the length of every vector produced by Text.
const Dimensions = 4096

// Text embeds the input into an L2-normalized vector of Dimensions floats.
// Tokens are maximal runs of lowercased ASCII letters and digits; every
// other byte ends the current token. The same text always maps to the same
// vector. Input with no tokens yields the all-zero vector.
func Text(text string) []float32 {
	vec := make([]float32, Dimensions)

	start := -1
	lowered := []byte(text)
	for i := 0; i < len(lowered); i++ {
		c := lowered[i]
		switch {
		case c >= 'A' && c <= 'Z':
			lowered[i] = c + ('a' - 'A')
			if start < 0 {
				start = i
			}
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			if start < 0 {
				start = i
			}
		default:
			if start >= 0 {
				vec[bucket(lowered[start:i])]++
				start = -1
			}
		}
	}
	if start >= 0 {
		vec[bucket(lowered[start:])]++
	}

	return normalize(vec)
}

// bucket hashes a token into a vector index.
func bucket(token []byte) int {
	h := fnv.New64a()
	_, _ = h.Write(token)
	return int(h.Sum64() % Dimensions)
}

// normalize divides vec by its Euclidean norm in place. A zero vector is
// returned unchanged rather than dividing by zero.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}

	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
