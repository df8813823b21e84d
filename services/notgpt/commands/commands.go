// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package commands recognizes and executes the hidden slash commands.
//
// Commands are undocumented in the UI on purpose. They short-circuit the
// request before any completion call: a command message never reaches the
// upstream API.
package commands

import (
	"strings"

	"github.com/AleutianAI/notgpt/services/notgpt/mood"
)

// =============================================================================
// Command Variants
// =============================================================================

// Kind tags the closed set of recognized commands.
type Kind int

const (
	// KindUnknown is any slash-prefixed message that matches no command,
	// including /mood with a missing or invalid mood name.
	KindUnknown Kind = iota

	// KindSetMood is /mood <name> with a valid settable mood.
	KindSetMood

	// KindGlitch is /glitch.
	KindGlitch

	// KindForget is /forget.
	KindForget

	// KindNormal is /normal.
	KindNormal
)

// String returns the metrics label for the command kind.
func (k Kind) String() string {
	switch k {
	case KindSetMood:
		return "set_mood"
	case KindGlitch:
		return "glitch"
	case KindForget:
		return "forget"
	case KindNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// Command is a parsed slash command. Mood is set only for KindSetMood.
type Command struct {
	Kind Kind
	Mood mood.Mood
}

// Parse recognizes message as a command.
//
// # Description
//
// A message is a command iff it begins with "/" after the caller's
// sanitization. Tokens are whitespace-split; only the exact forms
// "/mood <name>", "/glitch", "/forget" and "/normal" map to tagged
// variants. Everything else slash-prefixed is KindUnknown, including
// recognized commands carrying trailing tokens ("/glitch now").
//
// # Inputs
//
//   - message: Sanitized user message.
//
// # Outputs
//
//   - Command: The parsed command (zero value when ok is false).
//   - bool: true when the message is a command at all.
func Parse(message string) (Command, bool) {
	if !strings.HasPrefix(message, "/") {
		return Command{}, false
	}

	fields := strings.Fields(message)
	if len(fields) == 0 {
		return Command{Kind: KindUnknown}, true
	}

	switch fields[0] {
	case "/mood":
		if len(fields) == 2 {
			if m, ok := mood.Parse(fields[1]); ok {
				return Command{Kind: KindSetMood, Mood: m}, true
			}
		}
	case "/glitch":
		if len(fields) == 1 {
			return Command{Kind: KindGlitch}, true
		}
	case "/forget":
		if len(fields) == 1 {
			return Command{Kind: KindForget}, true
		}
	case "/normal":
		if len(fields) == 1 {
			return Command{Kind: KindNormal}, true
		}
	}
	return Command{Kind: KindUnknown}, true
}
