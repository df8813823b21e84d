// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the chat service.
//
// # Description
//
// Metrics cover the chat request flow:
//   - Request counters (by endpoint and status)
//   - Rate-limit rejections and command executions
//   - Emitted chunk counters and stream duration histograms
//   - Active stream gauges and client disconnect counters
//   - Upstream fallback counter (completion API failures absorbed in persona)
//
// # Integration
//
// Exposed via the /metrics endpoint for Prometheus scraping.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "notgpt"

// Subsystem for chat metrics
const chatSubsystem = "chat"

// ChatMetrics holds all Prometheus metrics for chat operations.
//
// # Description
//
// Provides counters, histograms, and gauges for monitoring the chat
// pipeline. Initialize once at startup via InitMetrics().
//
// # Thread Safety
//
// All operations are thread-safe.
type ChatMetrics struct {
	// RequestsTotal counts chat requests by endpoint and status.
	// Labels: endpoint (chat, chat_stream, chat_ws), status (success, error)
	RequestsTotal *prometheus.CounterVec

	// RateLimitedTotal counts requests rejected by the sliding window.
	// Labels: endpoint
	RateLimitedTotal *prometheus.CounterVec

	// CommandsTotal counts executed slash commands.
	// Labels: command (set_mood, glitch, forget, normal, unknown)
	CommandsTotal *prometheus.CounterVec

	// ChunksTotal counts emitted stream chunks.
	// Labels: endpoint
	ChunksTotal *prometheus.CounterVec

	// StreamDurationSeconds measures total stream duration.
	// Labels: endpoint, status (success, error)
	StreamDurationSeconds *prometheus.HistogramVec

	// ActiveStreams tracks currently active streaming connections.
	// Labels: endpoint
	ActiveStreams *prometheus.GaugeVec

	// UpstreamFallbacksTotal counts completion failures absorbed into
	// persona fallback strings.
	UpstreamFallbacksTotal prometheus.Counter

	// ClientDisconnectsTotal counts client disconnections during streaming.
	// Labels: endpoint
	ClientDisconnectsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance of ChatMetrics.
// Initialized by InitMetrics(); nil until then, so callers nil-guard.
var DefaultMetrics *ChatMetrics

var initOnce sync.Once

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics on the default registry.
// Guarded by sync.Once so repeated service construction (tests build many
// instances in one process) cannot trigger duplicate registration.
//
// # Outputs
//
//   - *ChatMetrics: The initialized metrics instance.
func InitMetrics() *ChatMetrics {
	initOnce.Do(func() {
		DefaultMetrics = &ChatMetrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: chatSubsystem,
					Name:      "requests_total",
					Help:      "Total number of chat requests by endpoint and status",
				},
				[]string{"endpoint", "status"},
			),

			RateLimitedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: chatSubsystem,
					Name:      "rate_limited_total",
					Help:      "Total requests rejected by the rate limiter",
				},
				[]string{"endpoint"},
			),

			CommandsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: chatSubsystem,
					Name:      "commands_total",
					Help:      "Total slash commands executed by command kind",
				},
				[]string{"command"},
			),

			ChunksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: chatSubsystem,
					Name:      "chunks_total",
					Help:      "Total stream chunks emitted",
				},
				[]string{"endpoint"},
			),

			StreamDurationSeconds: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: metricsNamespace,
					Subsystem: chatSubsystem,
					Name:      "stream_duration_seconds",
					Help:      "Total stream duration in seconds",
					Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
				},
				[]string{"endpoint", "status"},
			),

			ActiveStreams: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: metricsNamespace,
					Subsystem: chatSubsystem,
					Name:      "active_streams",
					Help:      "Number of currently active streaming connections",
				},
				[]string{"endpoint"},
			),

			UpstreamFallbacksTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: chatSubsystem,
					Name:      "upstream_fallbacks_total",
					Help:      "Total completion failures absorbed into fallback responses",
				},
			),

			ClientDisconnectsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: chatSubsystem,
					Name:      "client_disconnects_total",
					Help:      "Total client disconnections during streaming",
				},
				[]string{"endpoint"},
			),
		}
	})

	return DefaultMetrics
}

// =============================================================================
// Endpoint Names
// =============================================================================

// Endpoint represents a chat endpoint for metrics labeling.
type Endpoint string

const (
	// EndpointChat is the plain request/response endpoint.
	EndpointChat Endpoint = "chat"

	// EndpointChatStream is the SSE streaming endpoint.
	EndpointChatStream Endpoint = "chat_stream"

	// EndpointChatWS is the WebSocket streaming endpoint.
	EndpointChatWS Endpoint = "chat_ws"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordRequest records a completed chat request.
func (m *ChatMetrics) RecordRequest(endpoint Endpoint, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(string(endpoint), status).Inc()
}

// RecordRateLimited records a rate-limiter rejection.
func (m *ChatMetrics) RecordRateLimited(endpoint Endpoint) {
	m.RateLimitedTotal.WithLabelValues(string(endpoint)).Inc()
}

// RecordCommand records an executed slash command.
func (m *ChatMetrics) RecordCommand(command string) {
	m.CommandsTotal.WithLabelValues(command).Inc()
}

// RecordChunks adds n to the emitted chunk counter.
func (m *ChatMetrics) RecordChunks(endpoint Endpoint, n int) {
	m.ChunksTotal.WithLabelValues(string(endpoint)).Add(float64(n))
}

// StreamStarted increments the active streams gauge.
func (m *ChatMetrics) StreamStarted(endpoint Endpoint) {
	m.ActiveStreams.WithLabelValues(string(endpoint)).Inc()
}

// StreamEnded decrements the active streams gauge.
func (m *ChatMetrics) StreamEnded(endpoint Endpoint) {
	m.ActiveStreams.WithLabelValues(string(endpoint)).Dec()
}

// RecordStreamDuration records the total stream duration.
func (m *ChatMetrics) RecordStreamDuration(endpoint Endpoint, seconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.StreamDurationSeconds.WithLabelValues(string(endpoint), status).Observe(seconds)
}

// RecordUpstreamFallback increments the absorbed-failure counter.
func (m *ChatMetrics) RecordUpstreamFallback() {
	m.UpstreamFallbacksTotal.Inc()
}

// RecordClientDisconnect increments the client disconnect counter.
func (m *ChatMetrics) RecordClientDisconnect(endpoint Endpoint) {
	m.ClientDisconnectsTotal.WithLabelValues(string(endpoint)).Inc()
}
