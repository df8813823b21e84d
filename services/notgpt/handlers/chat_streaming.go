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
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/notgpt/services/notgpt/commands"
	"github.com/AleutianAI/notgpt/services/notgpt/datatypes"
	"github.com/AleutianAI/notgpt/services/notgpt/middleware"
	"github.com/AleutianAI/notgpt/services/notgpt/mood"
	"github.com/AleutianAI/notgpt/services/notgpt/observability"
	"github.com/AleutianAI/notgpt/services/notgpt/persona"
)

// HandleChatStream serves POST /chat/stream.
//
// # Description
//
// Simulated streaming: the full reply is computed first (command
// short-circuit or completion call), then re-chunked word by word over
// SSE with a pacing delay between chunks. The protocol is data-only
// frames; see StreamWriter. Event sequencing:
//
//   - terminal failures (rate limit, bad payload, panic) emit exactly one
//     error event and nothing else, on HTTP 200 since EventSource-style
//     readers treat non-2xx as transport failure,
//   - command replies emit exactly one complete event, no chunks,
//   - completion replies emit one chunk per whitespace token, each with
//     the cumulative text so far, then exactly one complete event whose
//     response equals the concatenation of the chunk contents.
//
// A closed client context stops emission between chunks; the remaining
// events are dropped, not buffered.
func (h *ChatHandler) HandleChatStream(c *gin.Context) {
	ctx, span := chatTracer.Start(c.Request.Context(), "HandleChatStream")
	defer span.End()

	requestID := uuid.New().String()
	clientID := middleware.ClientIdentity(c)
	span.SetAttributes(attribute.String("request.id", requestID))

	start := time.Now()
	success := false
	if m := observability.DefaultMetrics; m != nil {
		m.StreamStarted(observability.EndpointChatStream)
		defer func() {
			m.StreamEnded(observability.EndpointChatStream)
			m.RecordStreamDuration(observability.EndpointChatStream, time.Since(start).Seconds(), success)
			m.RecordRequest(observability.EndpointChatStream, success)
		}()
	}

	SetSSEHeaders(c.Writer)
	writer, err := NewStreamWriter(c.Writer)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("Streaming unsupported by response writer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"response": h.picker.Pick(persona.ErrorResponses)})
		return
	}

	// The stream is already open; a panic past this point can only be
	// reported in-band.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Recovered from streaming panic", "panic", r, "request_id", requestID)
			_ = writer.WriteError(h.picker.Pick(persona.ErrorResponses), "")
		}
	}()

	if !h.limiter.CheckAndRecord(clientID) {
		slog.Info("Rate limited", "request_id", requestID, "client", clientID)
		if m := observability.DefaultMetrics; m != nil {
			m.RecordRateLimited(observability.EndpointChatStream)
		}
		_ = writer.WriteError(persona.RateLimited, string(mood.MoodBurnedOut))
		return
	}

	req, ok := h.bindRequest(c)
	message := ""
	if ok {
		message = datatypes.SanitizeInput(req.Message)
	}
	if !ok || message == "" {
		_ = writer.WriteError(persona.InvalidRequest, string(mood.MoodGlitched))
		return
	}

	if cmd, isCmd := commands.Parse(message); isCmd {
		result := h.interp.Execute(clientID, cmd)
		slog.Info("Handled command", "request_id", requestID, "command", cmd.Kind.String())
		if m := observability.DefaultMetrics; m != nil {
			m.RecordCommand(cmd.Kind.String())
		}
		success = writer.WriteComplete(datatypes.StreamEvent{
			Response:    result.Response,
			Mood:        result.Mood,
			Timestamp:   result.Timestamp,
			ClearMemory: result.ClearMemory,
		}) == nil
		return
	}

	current := h.moods.Get(clientID)
	span.SetAttributes(attribute.String("chat.mood", string(current)))

	answer := h.completion.Complete(ctx, mood.SystemPrompt(current), message)
	if strings.TrimSpace(answer) == "" {
		answer = persona.EmptyReply
	}

	words := strings.Fields(answer)
	full := ""
	for i, w := range words {
		content := w
		if i < len(words)-1 {
			content += " "
		}
		full += content
		if err := writer.WriteChunk(content, full); err != nil {
			slog.Debug("Chunk write failed, client likely gone", "request_id", requestID, "error", err)
			return
		}
		if m := observability.DefaultMetrics; m != nil {
			m.RecordChunks(observability.EndpointChatStream, 1)
		}
		if h.chunkDelay > 0 {
			select {
			case <-ctx.Done():
				slog.Debug("Client disconnected mid-stream", "request_id", requestID)
				if m := observability.DefaultMetrics; m != nil {
					m.RecordClientDisconnect(observability.EndpointChatStream)
				}
				return
			case <-time.After(h.chunkDelay):
			}
		} else if ctx.Err() != nil {
			if m := observability.DefaultMetrics; m != nil {
				m.RecordClientDisconnect(observability.EndpointChatStream)
			}
			return
		}
	}

	span.SetStatus(codes.Ok, "")
	success = writer.WriteComplete(datatypes.StreamEvent{Response: full}) == nil
}
