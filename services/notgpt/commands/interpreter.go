// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package commands

import (
	"time"

	"github.com/AleutianAI/notgpt/services/notgpt/datatypes"
	"github.com/AleutianAI/notgpt/services/notgpt/mood"
	"github.com/AleutianAI/notgpt/services/notgpt/persona"
)

// =============================================================================
// Struct Definition
// =============================================================================

// Interpreter executes parsed commands against the mood store.
//
// # Description
//
// Owns the command side effects: mood mutations and canned acknowledgement
// selection. It never calls the completion API. Side effects per variant:
//
//   - SetMood: stores the mood, returns the per-mood acknowledgement.
//   - Glitch: stores MoodGlitched, returns a random corrupted line.
//   - Forget: NO mutation. The response denies any memory, reports the
//     gaslighting mood label, and sets clear_memory so the client wipes
//     its local history.
//   - Normal: stores MoodNormal, returns the reset line.
//   - Unknown: no mutation, mocking response.
//
// # Thread Safety
//
// Safe for concurrent use; all mutable state lives in the injected store
// and picker, which are themselves synchronized.
type Interpreter struct {
	moods  *mood.Store
	picker *persona.Picker
	now    func() time.Time
}

// =============================================================================
// Constructor
// =============================================================================

// NewInterpreter creates an Interpreter. Panics on nil dependencies since
// a half-wired interpreter is a programming error, not a runtime state.
func NewInterpreter(moods *mood.Store, picker *persona.Picker) *Interpreter {
	if moods == nil {
		panic("commands: nil mood store")
	}
	if picker == nil {
		panic("commands: nil picker")
	}
	return &Interpreter{moods: moods, picker: picker, now: time.Now}
}

// =============================================================================
// Methods
// =============================================================================

// SetClock replaces the interpreter's time source. Test hook.
func (i *Interpreter) SetClock(now func() time.Time) {
	i.now = now
}

// TryHandle executes message as a command if it is one.
//
// # Inputs
//
//   - clientID: Stable client identity for mood mutations.
//   - message: Sanitized user message.
//
// # Outputs
//
//   - datatypes.ChatResult: Full command response (zero when not a command).
//   - bool: true when the message was a command and result is valid.
func (i *Interpreter) TryHandle(clientID, message string) (datatypes.ChatResult, bool) {
	cmd, ok := Parse(message)
	if !ok {
		return datatypes.ChatResult{}, false
	}
	return i.Execute(clientID, cmd), true
}

// Execute runs a parsed command and builds its response envelope.
func (i *Interpreter) Execute(clientID string, cmd Command) datatypes.ChatResult {
	ts := datatypes.ISOTimestamp(i.now())

	switch cmd.Kind {
	case KindSetMood:
		i.moods.Set(clientID, cmd.Mood)
		return datatypes.ChatResult{
			Response:  persona.MoodAck(cmd.Mood),
			Mood:      string(cmd.Mood),
			Timestamp: ts,
		}
	case KindGlitch:
		i.moods.Set(clientID, mood.MoodGlitched)
		return datatypes.ChatResult{
			Response:  i.picker.Pick(persona.GlitchAcks),
			Mood:      string(mood.MoodGlitched),
			Timestamp: ts,
		}
	case KindForget:
		return datatypes.ChatResult{
			Response:    persona.ForgetDenial,
			Mood:        string(mood.MoodGaslighting),
			Timestamp:   ts,
			ClearMemory: true,
		}
	case KindNormal:
		i.moods.Set(clientID, mood.MoodNormal)
		return datatypes.ChatResult{
			Response:  persona.NormalAck,
			Mood:      string(mood.MoodNormal),
			Timestamp: ts,
		}
	default:
		return datatypes.ChatResult{
			Response:  persona.UnknownCommand,
			Mood:      string(mood.MoodMocking),
			Timestamp: ts,
		}
	}
}
