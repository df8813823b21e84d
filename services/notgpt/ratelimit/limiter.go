// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ratelimit implements a per-client sliding-window request limiter.
package ratelimit

import (
	"sync"
	"time"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// DefaultMaxRequests is the number of requests allowed per window.
	DefaultMaxRequests = 30

	// DefaultWindow is the sliding window size.
	DefaultWindow = 60 * time.Second
)

// =============================================================================
// Struct Definition
// =============================================================================

// Limiter tracks request timestamps per client over a sliding window.
//
// # Description
//
// Each client identity maps to the timestamps of its admitted requests
// within the last window. A call is admitted when fewer than maxRequests
// timestamps survive pruning; admitted calls are recorded, blocked calls
// are NOT, so a blocked client's window keeps draining and does not extend
// itself. Entries are created lazily and never destroyed; memory grows
// with the number of distinct clients for the process lifetime.
//
// # Thread Safety
//
// Safe for concurrent use; one mutex guards the whole map. Each check is a
// short critical section, so a single lock is fine at this scale.
type Limiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	now         func() time.Time
	requests    map[string][]time.Time
}

// =============================================================================
// Constructor
// =============================================================================

// NewLimiter creates a sliding-window limiter.
//
// # Description
//
// Non-positive maxRequests or window fall back to the defaults. The clock
// defaults to time.Now; tests override it via SetClock to step time
// explicitly.
//
// # Inputs
//
//   - maxRequests: Admitted requests per client per window.
//   - window: Sliding window size.
//
// # Outputs
//
//   - *Limiter: Ready-to-use limiter.
func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		requests:    make(map[string][]time.Time),
	}
}

// =============================================================================
// Methods
// =============================================================================

// SetClock replaces the limiter's time source. Test hook; call before use.
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}

// CheckAndRecord reports whether clientID may proceed, recording the
// request timestamp only when admitted.
//
// # Description
//
// Prunes timestamps older than the window, then admits iff fewer than
// maxRequests remain. Blocked calls leave the stored slice pruned but
// otherwise untouched, preserving the drain of the existing window.
//
// # Inputs
//
//   - clientID: Stable client identity (IP or forwarded-for value).
//
// # Outputs
//
//   - bool: true when the request is admitted.
func (l *Limiter) CheckAndRecord(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	kept := l.requests[clientID][:0]
	for _, t := range l.requests[clientID] {
		if now.Sub(t) < l.window {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.maxRequests {
		l.requests[clientID] = kept
		return false
	}

	l.requests[clientID] = append(kept, now)
	return true
}
