// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package services holds the completion pipeline between the HTTP handlers
// and the upstream LLM client.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/AleutianAI/notgpt/services/llm"
	"github.com/AleutianAI/notgpt/services/notgpt/observability"
	"github.com/AleutianAI/notgpt/services/notgpt/persona"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// completionTimeout bounds a single upstream call.
	completionTimeout = 30 * time.Second

	// maxCompletionTokens keeps replies short; the persona is one-liners.
	maxCompletionTokens = 80

	// Temperature is drawn uniformly from [tempLow, tempHigh) per request.
	tempLow  = 1.2
	tempHigh = 1.5
)

// =============================================================================
// Struct Definition
// =============================================================================

// CompletionService wraps an LLMClient with the persona's failure contract.
//
// # Description
//
// Complete never returns an error. Timeouts, transport failures, non-2xx
// statuses and empty-choice responses all collapse into a random
// in-character fallback string, so callers can hand the result to the
// client verbatim without a failure branch.
//
// # Thread Safety
//
// Safe for concurrent use; the client and picker are synchronized.
type CompletionService struct {
	client llm.LLMClient
	picker *persona.Picker
}

// =============================================================================
// Constructor
// =============================================================================

// NewCompletionService creates a CompletionService. Panics on nil deps.
func NewCompletionService(client llm.LLMClient, picker *persona.Picker) *CompletionService {
	if client == nil {
		panic("services: nil llm client")
	}
	if picker == nil {
		panic("services: nil picker")
	}
	return &CompletionService{client: client, picker: picker}
}

// =============================================================================
// Methods
// =============================================================================

// Complete generates a reply for userMessage under systemPrompt.
//
// # Description
//
// Applies the persona's generation parameters (jittered high temperature,
// short token budget) and a 30s deadline. Any upstream failure is logged
// and absorbed into a fallback line.
//
// # Inputs
//
//   - ctx: Request context; cancellation aborts the upstream call.
//   - systemPrompt: Mood-composed system instruction.
//   - userMessage: Sanitized user text.
//
// # Outputs
//
//   - string: Reply text, always usable, possibly a fallback. May be empty
//     if the upstream legitimately returned an empty completion; callers
//     substitute their own placeholder for that case.
func (s *CompletionService) Complete(ctx context.Context, systemPrompt, userMessage string) string {
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	temp := float32(s.picker.Float64Between(tempLow, tempHigh))
	maxTokens := maxCompletionTokens
	params := llm.GenerationParams{
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}

	text, err := s.client.Complete(ctx, systemPrompt, userMessage, params)
	if err != nil {
		slog.Warn("Upstream completion failed, using fallback", "error", err)
		if m := observability.DefaultMetrics; m != nil {
			m.RecordUpstreamFallback()
		}
		return s.picker.Pick(persona.UpstreamFallbacks)
	}
	return text
}
