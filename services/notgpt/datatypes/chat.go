// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides data structures for the NotGPT service.
//
// This file contains the request and response types for the chat endpoints.
// Conversation history is supplied by the caller on every request and is
// never stored server-side; the only per-client state the service keeps is
// a mood label and a rate window.
package datatypes

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// MaxMessageChars is the maximum length of a sanitized user message.
	// Longer input is truncated, not rejected.
	MaxMessageChars = 4000

	// MaxHistoryTurns is the maximum number of conversation turns a caller
	// may supply in one request.
	MaxHistoryTurns = 100
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// chatValidate is the validator instance for chat datatypes.
var chatValidate = validator.New()

// =============================================================================
// Request Types
// =============================================================================

// Message represents a single conversation turn supplied by the caller.
//
// # Description
//
// Role is "user" or "assistant" (the original front end never sends
// "system"; the system instruction is built server-side from the mood).
// Content is the turn's text.
//
// # Limitations
//
//   - Turns are caller-supplied and trusted only after sanitization of the
//     live message; history content is forwarded nowhere.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest represents the body of POST /chat and POST /chat/stream.
//
// # Description
//
// Message is the caller's new input. History is the prior conversation,
// supplied in full on every request (the server keeps no transcript).
//
// # Validation
//
// Uses go-playground/validator:
//   - Message: required, non-empty
//   - History: at most 100 turns, each turn validated
//
// # Examples
//
//	req := ChatRequest{
//	    Message: "why is the sky blue",
//	    History: []Message{{Role: "user", Content: "hi"}},
//	}
//
// # Assumptions
//
//   - History turns are in chronological order.
type ChatRequest struct {
	Message string    `json:"message" validate:"required"`
	History []Message `json:"history" validate:"omitempty,max=100,dive"`
}

// Validate validates the ChatRequest fields.
//
// # Outputs
//
//   - error: Non-nil if validation failed, with details about which field.
func (r *ChatRequest) Validate() error {
	return chatValidate.Struct(r)
}

// =============================================================================
// Response Types
// =============================================================================

// ChatResult is the canonical response payload for both chat endpoints.
//
// # Description
//
// Response always carries the in-persona text. Mood, Timestamp, and
// ClearMemory are populated for command responses (and for rate-limit
// rejections, which report a temporary "burned_out" mood without mutating
// the stored one). A plain completion response carries only Response.
//
// # Fields
//
//   - Response: In-persona reply text. Always present.
//   - Mood: Mood label reported with this response, if any.
//   - Timestamp: ISO-8601 time the response was produced.
//   - ClearMemory: True only for the /forget command; instructs the front
//     end to drop its local transcript.
type ChatResult struct {
	Response    string `json:"response"`
	Mood        string `json:"mood,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	ClearMemory bool   `json:"clear_memory,omitempty"`
}

// NewChatResult creates a ChatResult stamped with the current time.
func NewChatResult(response, moodLabel string) ChatResult {
	return ChatResult{
		Response:  response,
		Mood:      moodLabel,
		Timestamp: ISOTimestamp(time.Now()),
	}
}

// ISOTimestamp formats t in the ISO-8601 shape the front end expects.
func ISOTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// =============================================================================
// Stream Event Types
// =============================================================================

// Stream event type tags. See StreamEvent.
const (
	EventChunk    = "chunk"
	EventComplete = "complete"
	EventError    = "error"
)

// StreamEvent is one unit of the streamed response delivery.
//
// # Description
//
// Events are written to the wire as single data-only SSE frames
// ("data: <json>\n\n"). Three shapes exist:
//
//   - chunk: Content carries one whitespace token of the final text (with
//     its trailing space unless it is the last token); FullContent carries
//     the cumulative text assembled so far.
//   - complete: Response carries the full final text. When the triggering
//     message was a command, Mood, Timestamp, and ClearMemory carry the
//     command result and no chunk events precede it.
//   - error: Response carries an in-persona error line; the event is
//     emitted alone and terminates the stream.
//
// # Ordering
//
// Chunk events appear in strict left-to-right token order; concatenating
// their Content fields reproduces the complete event's Response exactly.
type StreamEvent struct {
	Type        string `json:"type"`
	Content     string `json:"content,omitempty"`
	FullContent string `json:"full_content,omitempty"`
	Response    string `json:"response,omitempty"`
	Mood        string `json:"mood,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	ClearMemory bool   `json:"clear_memory,omitempty"`
}
