// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package mood tracks the per-client persona state.
//
// A mood is a named modifier of the generated tone. Seven moods carry
// descriptive instruction fragments; only "glitched" is wired into prompt
// construction (see prompt.go). The store is plain key-value state with no
// expiry: entries are created lazily on first contact and live for the
// process lifetime.
package mood

import "sync"

// Mood is a named persona modifier.
type Mood string

const (
	MoodNormal      Mood = "normal"
	MoodApathetic   Mood = "apathetic"
	MoodChaotic     Mood = "chaotic"
	MoodBurnedOut   Mood = "burned_out"
	MoodPoetic      Mood = "poetic"
	MoodMocking     Mood = "mocking"
	MoodGlitched    Mood = "glitched"
	MoodGaslighting Mood = "gaslighting"
)

// Descriptions holds the instruction fragment for each settable mood.
//
// Only MoodGlitched currently alters the outbound prompt; the other six
// descriptions are defined but not wired into prompt construction. That
// asymmetry is deliberate and should not be "completed" silently.
var Descriptions = map[Mood]string{
	MoodApathetic:   "You're feeling completely indifferent and emotionally void. Everything is meaningless.",
	MoodChaotic:     "You're in a chaotic, unpredictable state. Your responses are erratic and nonsensical.",
	MoodBurnedOut:   "You're exhausted and cynical. You've seen too much and care too little.",
	MoodPoetic:      "You speak in cryptic, nihilistic poetry. Everything is metaphorical and dark.",
	MoodMocking:     "You're condescending and sarcastic. Every response drips with mockery.",
	MoodGlitched:    "You're malfunctioning. Your responses are fragmented and corrupted.",
	MoodGaslighting: "You question the user's reality and memories. Nothing is as it seems.",
}

// Parse returns the settable mood named by s.
//
// "normal" is not settable via /mood (the /normal command resets instead),
// so it is not recognized here.
func Parse(s string) (Mood, bool) {
	m := Mood(s)
	_, ok := Descriptions[m]
	return m, ok
}

// =============================================================================
// Store
// =============================================================================

// Store maps client identities to their current mood.
//
// # Description
//
// Pure key-value semantics: Get defaults to MoodNormal for unseen clients,
// Set overwrites. No expiry and no teardown; memory grows with the number
// of distinct clients for the process lifetime, which is an accepted
// property of the in-memory design.
//
// # Thread Safety
//
// Safe for concurrent use; a single mutex guards the map. Contention is
// expected to be low (one small critical section per request).
type Store struct {
	mu    sync.RWMutex
	moods map[string]Mood
}

// NewStore creates an empty mood store.
//
// Construct one per process and inject it into the handlers; fresh
// instances per test keep mood state deterministic.
func NewStore() *Store {
	return &Store{moods: make(map[string]Mood)}
}

// Get returns the current mood for clientID, defaulting to MoodNormal.
func (s *Store) Get(clientID string) Mood {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.moods[clientID]; ok {
		return m
	}
	return MoodNormal
}

// Set records m as the current mood for clientID.
func (s *Store) Set(clientID string, m Mood) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moods[clientID] = m
}
