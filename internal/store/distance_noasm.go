// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

//go:build !arm64

package store

import "github.com/viant/vec/search"

// cosineDistanceWithMagnitudes dispatches to the spelling viant/vec exports
// on architectures without the NEON assembly implementation.
func cosineDistanceWithMagnitudes(a search.Float32s, b []float32, ma, mb float32) float32 {
	return a.CosineDistanceWithMagnitudesNeon(b, ma, mb)
}
