// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/notgpt/services/notgpt/datatypes"
	"github.com/AleutianAI/notgpt/services/notgpt/mood"
	"github.com/AleutianAI/notgpt/services/notgpt/persona"
)

// =============================================================================
// Helper Functions
// =============================================================================

// parseStreamEvents parses data-only SSE frames from a response body.
func parseStreamEvents(t *testing.T, body string) []datatypes.StreamEvent {
	t.Helper()

	var events []datatypes.StreamEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev datatypes.StreamEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	return events
}

func postChatStream(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	router := gin.New()
	router.POST("/chat/stream", h.HandleChatStream)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/stream", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

// =============================================================================
// HandleChatStream Tests
// =============================================================================

func TestHandleChatStream_ChunkSequence(t *testing.T) {
	deps := newTestChatHandler(t, 30)
	deps.completer.Reply = "a b c"

	w := postChatStream(t, deps.handler, `{"message": "hello"}`)
	require.Equal(t, http.StatusOK, w.Code)

	events := parseStreamEvents(t, w.Body.String())
	require.Len(t, events, 4)

	assert.Equal(t, datatypes.EventChunk, events[0].Type)
	assert.Equal(t, "a ", events[0].Content)
	assert.Equal(t, "a ", events[0].FullContent)

	assert.Equal(t, datatypes.EventChunk, events[1].Type)
	assert.Equal(t, "b ", events[1].Content)
	assert.Equal(t, "a b ", events[1].FullContent)

	assert.Equal(t, datatypes.EventChunk, events[2].Type)
	assert.Equal(t, "c", events[2].Content)
	assert.Equal(t, "a b c", events[2].FullContent)

	assert.Equal(t, datatypes.EventComplete, events[3].Type)
	assert.Equal(t, "a b c", events[3].Response)
}

func TestHandleChatStream_ChunksReassembleResponse(t *testing.T) {
	deps := newTestChatHandler(t, 30)
	deps.completer.Reply = "The void stares back, unimpressed by your query."

	w := postChatStream(t, deps.handler, `{"message": "why"}`)
	events := parseStreamEvents(t, w.Body.String())
	require.NotEmpty(t, events)

	var rebuilt strings.Builder
	var complete datatypes.StreamEvent
	for _, ev := range events {
		switch ev.Type {
		case datatypes.EventChunk:
			rebuilt.WriteString(ev.Content)
		case datatypes.EventComplete:
			complete = ev
		}
	}
	assert.Equal(t, complete.Response, rebuilt.String())
	assert.Equal(t, deps.completer.Reply, rebuilt.String())
}

func TestHandleChatStream_CommandEmitsSingleComplete(t *testing.T) {
	deps := newTestChatHandler(t, 30)

	w := postChatStream(t, deps.handler, `{"message": "/glitch"}`)
	require.Equal(t, http.StatusOK, w.Code)

	events := parseStreamEvents(t, w.Body.String())
	require.Len(t, events, 1, "command replies are not chunked")
	assert.Equal(t, datatypes.EventComplete, events[0].Type)
	assert.Equal(t, "glitched", events[0].Mood)
	assert.NotEmpty(t, events[0].Response)
	assert.NotEmpty(t, events[0].Timestamp)
	assert.Equal(t, 0, deps.completer.CallCount)
}

func TestHandleChatStream_ForgetCarriesClearMemory(t *testing.T) {
	deps := newTestChatHandler(t, 30)

	w := postChatStream(t, deps.handler, `{"message": "/forget"}`)
	events := parseStreamEvents(t, w.Body.String())
	require.Len(t, events, 1)
	assert.Equal(t, datatypes.EventComplete, events[0].Type)
	assert.True(t, events[0].ClearMemory)
	assert.Equal(t, persona.ForgetDenial, events[0].Response)
	assert.Equal(t, mood.MoodNormal, deps.moods.Get("192.0.2.1"), "forget must not change the stored mood")
}

func TestHandleChatStream_RateLimited(t *testing.T) {
	deps := newTestChatHandler(t, 1)

	w := postChatStream(t, deps.handler, `{"message": "one"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = postChatStream(t, deps.handler, `{"message": "two"}`)
	// Still 200; non-2xx breaks EventSource-style readers.
	require.Equal(t, http.StatusOK, w.Code)

	events := parseStreamEvents(t, w.Body.String())
	require.Len(t, events, 1)
	assert.Equal(t, datatypes.EventError, events[0].Type)
	assert.Equal(t, persona.RateLimited, events[0].Response)
	assert.Equal(t, string(mood.MoodBurnedOut), events[0].Mood)
	assert.Equal(t, 1, deps.completer.CallCount)
}

func TestHandleChatStream_InvalidBody(t *testing.T) {
	deps := newTestChatHandler(t, 30)

	w := postChatStream(t, deps.handler, `{broken`)
	require.Equal(t, http.StatusOK, w.Code)

	events := parseStreamEvents(t, w.Body.String())
	require.Len(t, events, 1)
	assert.Equal(t, datatypes.EventError, events[0].Type)
	assert.Equal(t, persona.InvalidRequest, events[0].Response)
	assert.Equal(t, string(mood.MoodGlitched), events[0].Mood)
}

func TestHandleChatStream_EmptyCompletionStreamsPlaceholder(t *testing.T) {
	deps := newTestChatHandler(t, 30)
	deps.completer.Reply = ""

	w := postChatStream(t, deps.handler, `{"message": "hello"}`)
	events := parseStreamEvents(t, w.Body.String())
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	assert.Equal(t, datatypes.EventComplete, last.Type)
	assert.Equal(t, persona.EmptyReply, last.Response)
}

func TestHandleChatStream_WhitespaceCompletionStreamsPlaceholder(t *testing.T) {
	deps := newTestChatHandler(t, 30)
	deps.completer.Reply = "   "

	w := postChatStream(t, deps.handler, `{"message": "hello"}`)
	events := parseStreamEvents(t, w.Body.String())
	require.Greater(t, len(events), 1, "the placeholder must be chunked, not collapsed to a bare complete")

	last := events[len(events)-1]
	assert.Equal(t, datatypes.EventComplete, last.Type)
	assert.Equal(t, persona.EmptyReply, last.Response)
}

func TestHandleChatStream_SSEHeaders(t *testing.T) {
	deps := newTestChatHandler(t, 30)

	w := postChatStream(t, deps.handler, `{"message": "hello"}`)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
