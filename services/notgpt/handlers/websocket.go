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
	"github.com/gorilla/websocket"

	"github.com/AleutianAI/notgpt/services/notgpt/commands"
	"github.com/AleutianAI/notgpt/services/notgpt/datatypes"
	"github.com/AleutianAI/notgpt/services/notgpt/middleware"
	"github.com/AleutianAI/notgpt/services/notgpt/mood"
	"github.com/AleutianAI/notgpt/services/notgpt/observability"
	"github.com/AleutianAI/notgpt/services/notgpt/persona"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Same trust posture as the SSE endpoint's CORS wildcard.
		return true
	},
}

// HandleChatWS serves GET /chat/ws.
//
// # Description
//
// WebSocket variant of the streaming endpoint. Each inbound JSON frame is
// one ChatRequest and produces the same event sequence as /chat/stream
// (error, or complete-only for commands, or chunks then complete), as
// JSON frames instead of SSE lines. The connection stays open across
// messages; rate limiting applies per message.
func (h *ChatHandler) HandleChatWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	clientID := middleware.ClientIdentity(c)
	ctx := c.Request.Context()

	for {
		var req datatypes.ChatRequest
		if err := ws.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("WebSocket read failed", "error", err)
				if m := observability.DefaultMetrics; m != nil {
					m.RecordClientDisconnect(observability.EndpointChatWS)
				}
			}
			return
		}

		if !h.limiter.CheckAndRecord(clientID) {
			if m := observability.DefaultMetrics; m != nil {
				m.RecordRateLimited(observability.EndpointChatWS)
			}
			if err := ws.WriteJSON(datatypes.StreamEvent{
				Type:      datatypes.EventError,
				Response:  persona.RateLimited,
				Mood:      string(mood.MoodBurnedOut),
				Timestamp: datatypes.ISOTimestamp(time.Now()),
			}); err != nil {
				return
			}
			continue
		}

		message := datatypes.SanitizeInput(req.Message)
		if err := req.Validate(); err != nil || message == "" {
			if err := ws.WriteJSON(datatypes.StreamEvent{
				Type:      datatypes.EventError,
				Response:  persona.InvalidRequest,
				Mood:      string(mood.MoodGlitched),
				Timestamp: datatypes.ISOTimestamp(time.Now()),
			}); err != nil {
				return
			}
			continue
		}

		if cmd, isCmd := commands.Parse(message); isCmd {
			result := h.interp.Execute(clientID, cmd)
			if m := observability.DefaultMetrics; m != nil {
				m.RecordCommand(cmd.Kind.String())
				m.RecordRequest(observability.EndpointChatWS, true)
			}
			if err := ws.WriteJSON(datatypes.StreamEvent{
				Type:        datatypes.EventComplete,
				Response:    result.Response,
				Mood:        result.Mood,
				Timestamp:   result.Timestamp,
				ClearMemory: result.ClearMemory,
			}); err != nil {
				return
			}
			continue
		}

		answer := h.completion.Complete(ctx, mood.SystemPrompt(h.moods.Get(clientID)), message)
		if strings.TrimSpace(answer) == "" {
			answer = persona.EmptyReply
		}

		words := strings.Fields(answer)
		full := ""
		aborted := false
		for i, w := range words {
			content := w
			if i < len(words)-1 {
				content += " "
			}
			full += content
			if err := ws.WriteJSON(datatypes.StreamEvent{
				Type:        datatypes.EventChunk,
				Content:     content,
				FullContent: full,
			}); err != nil {
				return
			}
			if m := observability.DefaultMetrics; m != nil {
				m.RecordChunks(observability.EndpointChatWS, 1)
			}
			if h.chunkDelay > 0 {
				select {
				case <-ctx.Done():
					aborted = true
				case <-time.After(h.chunkDelay):
				}
				if aborted {
					return
				}
			}
		}

		if m := observability.DefaultMetrics; m != nil {
			m.RecordRequest(observability.EndpointChatWS, true)
		}
		if err := ws.WriteJSON(datatypes.StreamEvent{Type: datatypes.EventComplete, Response: full}); err != nil {
			return
		}
	}
}
