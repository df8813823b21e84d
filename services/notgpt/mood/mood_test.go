// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package mood

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/notgpt/services/notgpt/datatypes"
)

func TestStore_DefaultsToNormal(t *testing.T) {
	s := NewStore()
	assert.Equal(t, MoodNormal, s.Get("never-seen"))
}

func TestStore_SetGet(t *testing.T) {
	s := NewStore()
	s.Set("a", MoodPoetic)
	s.Set("b", MoodGlitched)

	assert.Equal(t, MoodPoetic, s.Get("a"))
	assert.Equal(t, MoodGlitched, s.Get("b"))

	s.Set("a", MoodNormal)
	assert.Equal(t, MoodNormal, s.Get("a"))
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Set("shared", MoodChaotic)
			_ = s.Get("shared")
		}()
	}
	wg.Wait()
	assert.Equal(t, MoodChaotic, s.Get("shared"))
}

func TestParse(t *testing.T) {
	m, ok := Parse("poetic")
	assert.True(t, ok)
	assert.Equal(t, MoodPoetic, m)

	_, ok = Parse("normal")
	assert.False(t, ok, "normal is reset via /normal, not settable via /mood")

	_, ok = Parse("cheerful")
	assert.False(t, ok)
}

func TestSystemPrompt_GlitchedAppendsDirective(t *testing.T) {
	base := SystemPrompt(MoodNormal)
	glitched := SystemPrompt(MoodGlitched)

	assert.True(t, strings.HasPrefix(glitched, base))
	assert.Contains(t, glitched, "malfunctioning")
	assert.NotContains(t, base, "malfunctioning")
}

func TestSystemPrompt_OtherMoodsLeaveBaseUnchanged(t *testing.T) {
	base := SystemPrompt(MoodNormal)
	for m := range Descriptions {
		if m == MoodGlitched {
			continue
		}
		assert.Equal(t, base, SystemPrompt(m), "mood %s must not alter the prompt", m)
	}
}

// fixedRand always returns the same draws, making heuristic picks stable.
// f below 0.3 lands in the mood-consistency branch.
type fixedRand struct {
	n int
	f float64
}

func (r fixedRand) Intn(n int) int   { return r.n % n }
func (r fixedRand) Float64() float64 { return r.f }

func TestSelectFromHistory_EmptyHistoryIsRandom(t *testing.T) {
	m := SelectFromHistory(nil, "", fixedRand{n: 0})
	assert.Equal(t, MoodApathetic, m)

	m = SelectFromHistory(nil, "", fixedRand{n: 5})
	assert.Equal(t, MoodGlitched, m)
}

func TestSelectFromHistory_SometimesMaintainsLastMood(t *testing.T) {
	history := []datatypes.Message{{Role: "user", Content: "please help"}}

	m := SelectFromHistory(history, MoodPoetic, fixedRand{n: 0, f: 0.2})
	assert.Equal(t, MoodPoetic, m, "a low draw keeps the previous mood")

	m = SelectFromHistory(history, MoodPoetic, fixedRand{n: 0, f: 0.9})
	assert.Equal(t, MoodMocking, m, "a high draw falls through to phrase weighting")
}

func TestSelectFromHistory_UnsetLastMoodMaintainsAsApathetic(t *testing.T) {
	history := []datatypes.Message{{Role: "user", Content: "please help"}}
	m := SelectFromHistory(history, "", fixedRand{n: 0, f: 0.2})
	assert.Equal(t, MoodApathetic, m)
}

func TestSelectFromHistory_HelpSeekingDrawsMockery(t *testing.T) {
	history := []datatypes.Message{{Role: "user", Content: "Please help me with this"}}
	m := SelectFromHistory(history, "", fixedRand{n: 0, f: 0.9})
	assert.Equal(t, MoodMocking, m)
}

func TestSelectFromHistory_QuestionsDrawContemplation(t *testing.T) {
	history := []datatypes.Message{{Role: "user", Content: "explain this to me"}}
	m := SelectFromHistory(history, "", fixedRand{n: 0, f: 0.9})
	assert.Equal(t, MoodPoetic, m)
}

func TestSelectFromHistory_FallsBackToApathetic(t *testing.T) {
	history := []datatypes.Message{
		{Role: "user", Content: "good morning"},
		{Role: "assistant", Content: "is it?"},
	}
	m := SelectFromHistory(history, "", fixedRand{n: 3, f: 0.9})
	assert.Equal(t, MoodApathetic, m)
}

func TestSelectFromHistory_OnlyRecentUserTurnsCount(t *testing.T) {
	history := []datatypes.Message{
		{Role: "user", Content: "help help help"},
		{Role: "user", Content: "morning"},
		{Role: "user", Content: "evening"},
		{Role: "user", Content: "night"},
	}
	// The help-laden turn is outside the last three user messages.
	m := SelectFromHistory(history, "", fixedRand{n: 0, f: 0.9})
	assert.Equal(t, MoodApathetic, m)
}
