// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the chat HTTP surface.
//
// All three endpoints (plain, SSE stream, WebSocket) share one pipeline:
// rate-limit check, payload validation, sanitization, command
// short-circuit, completion. Failures never surface as errors to the
// client; every failure path resolves to an in-character string.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/notgpt/services/notgpt/commands"
	"github.com/AleutianAI/notgpt/services/notgpt/datatypes"
	"github.com/AleutianAI/notgpt/services/notgpt/middleware"
	"github.com/AleutianAI/notgpt/services/notgpt/mood"
	"github.com/AleutianAI/notgpt/services/notgpt/observability"
	"github.com/AleutianAI/notgpt/services/notgpt/persona"
	"github.com/AleutianAI/notgpt/services/notgpt/ratelimit"
)

var chatTracer = otel.Tracer("notgpt.handlers")

// DefaultChunkDelay paces stream chunk emission. Tests set 0.
const DefaultChunkDelay = 30 * time.Millisecond

// Completer generates a reply for a sanitized user message. Implemented
// by services.CompletionService; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) string
}

// =============================================================================
// Struct Definition
// =============================================================================

// ChatHandler serves /chat, /chat/stream and /chat/ws.
//
// # Thread Safety
//
// Safe for concurrent use; all state lives in the injected synchronized
// collaborators.
type ChatHandler struct {
	limiter    *ratelimit.Limiter
	moods      *mood.Store
	interp     *commands.Interpreter
	completion Completer
	picker     *persona.Picker
	chunkDelay time.Duration
}

// =============================================================================
// Constructor
// =============================================================================

// NewChatHandler creates a ChatHandler. Panics on nil dependencies; a
// partially wired handler is a programming error.
//
// chunkDelay < 0 selects the default pacing; 0 disables pacing (tests).
func NewChatHandler(
	limiter *ratelimit.Limiter,
	moods *mood.Store,
	interp *commands.Interpreter,
	completion Completer,
	picker *persona.Picker,
	chunkDelay time.Duration,
) *ChatHandler {
	if limiter == nil {
		panic("handlers: nil limiter")
	}
	if moods == nil {
		panic("handlers: nil mood store")
	}
	if interp == nil {
		panic("handlers: nil interpreter")
	}
	if completion == nil {
		panic("handlers: nil completion service")
	}
	if picker == nil {
		panic("handlers: nil picker")
	}
	if chunkDelay < 0 {
		chunkDelay = DefaultChunkDelay
	}
	return &ChatHandler{
		limiter:    limiter,
		moods:      moods,
		interp:     interp,
		completion: completion,
		picker:     picker,
		chunkDelay: chunkDelay,
	}
}

// =============================================================================
// Methods
// =============================================================================

// HandleChat serves POST /chat.
//
// # Description
//
// The plain request/response endpoint. Rate-limited clients get 429 with
// an in-character envelope (stored mood untouched). Malformed payloads
// get 200 with an in-character rejection rather than a 4xx, matching the
// never-break-character contract. Command messages short-circuit with the
// full command envelope; everything else goes through the completion
// pipeline and returns {"response": ...}.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	ctx, span := chatTracer.Start(c.Request.Context(), "HandleChat")
	defer span.End()

	requestID := uuid.New().String()
	clientID := middleware.ClientIdentity(c)
	span.SetAttributes(attribute.String("request.id", requestID))

	if !h.limiter.CheckAndRecord(clientID) {
		slog.Info("Rate limited", "request_id", requestID, "client", clientID)
		if m := observability.DefaultMetrics; m != nil {
			m.RecordRateLimited(observability.EndpointChat)
			m.RecordRequest(observability.EndpointChat, false)
		}
		c.JSON(http.StatusTooManyRequests, datatypes.ChatResult{
			Response:  persona.RateLimited,
			Mood:      string(mood.MoodBurnedOut),
			Timestamp: datatypes.ISOTimestamp(time.Now()),
		})
		return
	}

	req, ok := h.bindRequest(c)
	message := ""
	if ok {
		message = datatypes.SanitizeInput(req.Message)
	}
	if !ok || message == "" {
		if m := observability.DefaultMetrics; m != nil {
			m.RecordRequest(observability.EndpointChat, false)
		}
		c.JSON(http.StatusOK, datatypes.ChatResult{
			Response:  persona.InvalidRequest,
			Mood:      string(mood.MoodGlitched),
			Timestamp: datatypes.ISOTimestamp(time.Now()),
		})
		return
	}

	if cmd, isCmd := commands.Parse(message); isCmd {
		result := h.interp.Execute(clientID, cmd)
		slog.Info("Handled command", "request_id", requestID, "command", cmd.Kind.String())
		if m := observability.DefaultMetrics; m != nil {
			m.RecordCommand(cmd.Kind.String())
			m.RecordRequest(observability.EndpointChat, true)
		}
		c.JSON(http.StatusOK, result)
		return
	}

	current := h.moods.Get(clientID)
	span.SetAttributes(attribute.String("chat.mood", string(current)))

	answer := h.completion.Complete(ctx, mood.SystemPrompt(current), message)
	if strings.TrimSpace(answer) == "" {
		answer = persona.EmptyReply
	}
	span.SetStatus(codes.Ok, "")
	if m := observability.DefaultMetrics; m != nil {
		m.RecordRequest(observability.EndpointChat, true)
	}
	c.JSON(http.StatusOK, gin.H{"response": answer})
}

// bindRequest parses and validates the chat payload. Returns false on any
// bind or validation failure; the caller owns the in-character rejection.
func (h *ChatHandler) bindRequest(c *gin.Context) (datatypes.ChatRequest, bool) {
	var req datatypes.ChatRequest
	if err := c.BindJSON(&req); err != nil {
		slog.Warn("Failed to parse chat request", "error", err)
		return req, false
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Chat request failed validation", "error", err)
		return req, false
	}
	return req, true
}
