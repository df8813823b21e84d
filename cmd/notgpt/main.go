// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command notgpt starts the NotGPT chat HTTP server.
//
// It reads configuration from environment variables and starts the server.
//
// # Environment Variables
//
//   - NOTGPT_PORT: HTTP server port (default: 5000)
//   - GROQ_API_KEY: Completion API key (or set in ./.env)
//   - GROQ_BASE_URL: Completion API base URL (default: Groq's endpoint)
//   - GROQ_MODEL: Completion model (default: llama-3.1-8b-instant)
//   - NOTGPT_STATIC_DIR: Browser front-end directory (default: static)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (default: notgpt-otel-collector:4317)
//
// # Usage
//
//	# Build
//	go build -o notgpt ./cmd/notgpt
//
//	# Run
//	GROQ_API_KEY=... ./notgpt
package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/AleutianAI/notgpt/services/notgpt"
	"github.com/AleutianAI/notgpt/services/notgpt/config"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	settings := config.Load()

	// Build configuration from environment variables
	cfg := notgpt.Config{
		Port:           getEnvInt("NOTGPT_PORT", 5000),
		GroqAPIKey:     settings.GroqAPIKey,
		GroqBaseURL:    os.Getenv("GROQ_BASE_URL"),
		Model:          os.Getenv("GROQ_MODEL"),
		OTelEndpoint:   getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "notgpt-otel-collector:4317"),
		ChunkDelay:     -1,
		StaticDir:      getEnvString("NOTGPT_STATIC_DIR", "static"),
		UploadDir:      settings.UploadDir,
		MaxUploadBytes: settings.MaxUploadBytes,
	}

	slog.Info("Starting NotGPT",
		"port", cfg.Port,
		"model", cfg.Model,
		"static_dir", cfg.StaticDir,
	)

	svc, err := notgpt.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create NotGPT service: %v", err)
	}

	// Run the server (blocks until shutdown)
	if err := svc.Run(); err != nil {
		log.Fatalf("NotGPT server error: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
