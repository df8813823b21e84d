// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/AleutianAI/notgpt/services/notgpt/datatypes"
)

// =============================================================================
// Interface Definition
// =============================================================================

// StreamWriter defines the contract for writing chat stream events to HTTP
// responses.
//
// # Description
//
// StreamWriter abstracts event serialization and writing, separating the
// streaming handlers from HTTP response mechanics. The wire format is
// data-only SSE: each event is one "data: <json>\n\n" line with no event
// name or id fields, which is what the browser client's EventSource-less
// fetch reader parses.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use by multiple goroutines.
//
// # Limitations
//
//   - Must be used with an http.Flusher-compatible ResponseWriter.
//   - Response headers must be set before the first write.
type StreamWriter interface {
	// WriteChunk writes one incremental token of the reply.
	//
	// # Inputs
	//
	//   - content: The token text, including any trailing space.
	//   - fullContent: The cumulative reply text so far.
	//
	// # Outputs
	//
	//   - error: Non-nil if serialization or writing failed.
	WriteChunk(content, fullContent string) error

	// WriteComplete writes the final event of a successful stream.
	// The caller populates Response and, for command replies, the Mood,
	// Timestamp and ClearMemory fields.
	WriteComplete(event datatypes.StreamEvent) error

	// WriteError writes a terminal in-character error event. moodLabel may
	// be empty; when set it is reported to the client without implying any
	// stored-state change.
	WriteError(response, moodLabel string) error
}

// =============================================================================
// Struct Definition
// =============================================================================

// streamWriter implements StreamWriter over an http.ResponseWriter.
type streamWriter struct {
	mu      sync.Mutex
	writer  http.ResponseWriter
	flusher http.Flusher
}

// Compile-time interface check
var _ StreamWriter = (*streamWriter)(nil)

// =============================================================================
// Constructor
// =============================================================================

// NewStreamWriter creates a StreamWriter for the given ResponseWriter.
//
// # Description
//
// Verifies the writer supports flushing; streaming is useless behind a
// buffered writer, so a missing http.Flusher is an error, not a silent
// degradation.
//
// # Inputs
//
//   - w: The response writer for an in-flight request.
//
// # Outputs
//
//   - StreamWriter: Ready to write events.
//   - error: Non-nil if w does not implement http.Flusher.
func NewStreamWriter(w http.ResponseWriter) (StreamWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}
	return &streamWriter{writer: w, flusher: flusher}, nil
}

// =============================================================================
// Methods
// =============================================================================

// writeEvent serializes event and writes one data-only SSE frame.
func (w *streamWriter) writeEvent(event datatypes.StreamEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	w.flusher.Flush()
	return nil
}

// WriteChunk writes one incremental token of the reply.
func (w *streamWriter) WriteChunk(content, fullContent string) error {
	return w.writeEvent(datatypes.StreamEvent{
		Type:        datatypes.EventChunk,
		Content:     content,
		FullContent: fullContent,
	})
}

// WriteComplete writes the final event of a successful stream.
func (w *streamWriter) WriteComplete(event datatypes.StreamEvent) error {
	event.Type = datatypes.EventComplete
	return w.writeEvent(event)
}

// WriteError writes a terminal in-character error event.
func (w *streamWriter) WriteError(response, moodLabel string) error {
	return w.writeEvent(datatypes.StreamEvent{
		Type:      datatypes.EventError,
		Response:  response,
		Mood:      moodLabel,
		Timestamp: datatypes.ISOTimestamp(time.Now()),
	})
}

// =============================================================================
// Helper Functions
// =============================================================================

// SetSSEHeaders configures the response headers for SSE streaming.
//
// # Description
//
// Must be called before any event is written. Disables proxy buffering
// (X-Accel-Buffering) so events reach the client as they are flushed, and
// allows cross-origin readers since the stream carries no credentials.
func SetSSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set("Access-Control-Allow-Origin", "*")
}
