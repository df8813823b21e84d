// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package persona

import (
	"math/rand"
	"sync"
	"time"
)

// =============================================================================
// Struct Definition
// =============================================================================

// Picker is the service's only source of randomness.
//
// # Description
//
// Every random choice (pool selection, temperature jitter) flows through a
// Picker so tests can seed it and assert exact outputs. The zero value is
// not usable; construct with NewPicker or NewSeededPicker.
//
// # Thread Safety
//
// Safe for concurrent use. math/rand sources are not goroutine-safe, so a
// mutex guards every draw.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// =============================================================================
// Constructors
// =============================================================================

// NewPicker creates a time-seeded Picker for production use.
func NewPicker() *Picker {
	return NewSeededPicker(time.Now().UnixNano())
}

// NewSeededPicker creates a Picker with a fixed seed. Tests use this to
// make pool selection deterministic.
func NewSeededPicker(seed int64) *Picker {
	return &Picker{rng: rand.New(rand.NewSource(seed))}
}

// =============================================================================
// Methods
// =============================================================================

// Pick returns a uniformly random element of pool. Empty pools return "".
func (p *Picker) Pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return pool[p.rng.Intn(len(pool))]
}

// Intn returns a uniform int in [0, n).
func (p *Picker) Intn(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}

// Float64 returns a uniform float64 in [0.0, 1.0).
func (p *Picker) Float64() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64()
}

// Float64Between returns a uniform float64 in [lo, hi).
func (p *Picker) Float64Between(lo, hi float64) float64 {
	return lo + p.Float64()*(hi-lo)
}
