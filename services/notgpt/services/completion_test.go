// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/notgpt/services/llm"
	"github.com/AleutianAI/notgpt/services/notgpt/persona"
)

// mockLLMClient implements llm.LLMClient for completion pipeline testing.
type mockLLMClient struct {
	// Reply is returned when Err is nil.
	Reply string
	// Err simulates an upstream failure.
	Err error
	// LastParams stores the generation params of the last call.
	LastParams llm.GenerationParams
	// HadDeadline records whether the call context carried a deadline.
	HadDeadline bool
}

func (m *mockLLMClient) Complete(ctx context.Context, _, _ string, params llm.GenerationParams) (string, error) {
	m.LastParams = params
	_, m.HadDeadline = ctx.Deadline()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

func TestNewCompletionService_PanicsOnNilDeps(t *testing.T) {
	assert.Panics(t, func() { NewCompletionService(nil, persona.NewSeededPicker(1)) })
	assert.Panics(t, func() { NewCompletionService(&mockLLMClient{}, nil) })
}

func TestComplete_Success(t *testing.T) {
	client := &mockLLMClient{Reply: "No."}
	svc := NewCompletionService(client, persona.NewSeededPicker(1))

	got := svc.Complete(context.Background(), "prompt", "message")
	assert.Equal(t, "No.", got)
}

func TestComplete_FailureIsAbsorbedIntoFallback(t *testing.T) {
	client := &mockLLMClient{Err: errors.New("connection refused")}
	svc := NewCompletionService(client, persona.NewSeededPicker(1))

	got := svc.Complete(context.Background(), "prompt", "message")
	assert.Contains(t, persona.UpstreamFallbacks, got, "failures surface as in-character lines, never errors")
}

func TestComplete_GenerationParams(t *testing.T) {
	client := &mockLLMClient{Reply: "meh"}
	svc := NewCompletionService(client, persona.NewSeededPicker(1))

	svc.Complete(context.Background(), "prompt", "message")

	require.NotNil(t, client.LastParams.Temperature)
	assert.GreaterOrEqual(t, *client.LastParams.Temperature, float32(1.2))
	assert.Less(t, *client.LastParams.Temperature, float32(1.5))

	require.NotNil(t, client.LastParams.MaxTokens)
	assert.Equal(t, maxCompletionTokens, *client.LastParams.MaxTokens)
}

func TestComplete_AppliesDeadline(t *testing.T) {
	client := &mockLLMClient{Reply: "meh"}
	svc := NewCompletionService(client, persona.NewSeededPicker(1))

	svc.Complete(context.Background(), "prompt", "message")
	assert.True(t, client.HadDeadline, "upstream calls must be bounded")
}

func TestComplete_RespectsCallerCancellation(t *testing.T) {
	client := &mockLLMClient{Err: context.Canceled}
	svc := NewCompletionService(client, persona.NewSeededPicker(1))

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	got := svc.Complete(ctx, "prompt", "message")
	assert.Contains(t, persona.UpstreamFallbacks, got)
}
