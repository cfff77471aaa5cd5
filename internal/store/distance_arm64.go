// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

package store

import "github.com/viant/vec/search"

// cosineDistanceWithMagnitudes dispatches to the spelling viant/vec exports
// on this architecture; see distance_noasm.go for the portable fallback.
func cosineDistanceWithMagnitudes(a search.Float32s, b []float32, ma, mb float32) float32 {
	return a.CosineDistanceWithMagnitude(b, ma, mb)
}
