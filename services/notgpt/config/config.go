// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads secrets and app settings from the environment,
// falling back to a local .env file for development setups.
package config

import (
	"bufio"
	"log/slog"
	"os"
	"strings"
)

// defaultSecretKey is a development placeholder, never suitable for
// production. Load warns loudly when it is in effect.
const defaultSecretKey = "your-secret-key-change-in-production"

// Settings holds the environment-derived configuration.
type Settings struct {
	// GroqAPIKey authenticates against the completion API. May be empty;
	// the service refuses to start without it unless a client is injected.
	GroqAPIKey string

	// SecretKey signs session material for the front end.
	SecretKey string

	// UploadDir receives client asset uploads.
	UploadDir string

	// MaxUploadBytes caps accepted upload bodies.
	MaxUploadBytes int64
}

// Load reads settings from the environment, with .env fallback for the
// API key.
//
// # Description
//
// GROQ_API_KEY comes from the environment or, when unset, from a
// key=value scan of ./.env (development convenience; containers set the
// variable directly). SECRET_KEY falls back to a placeholder with a
// warning. Never errors; missing values surface when the dependent
// component starts.
func Load() Settings {
	s := Settings{
		GroqAPIKey:     os.Getenv("GROQ_API_KEY"),
		SecretKey:      os.Getenv("SECRET_KEY"),
		UploadDir:      os.Getenv("UPLOAD_FOLDER"),
		MaxUploadBytes: 5 << 20,
	}

	if s.GroqAPIKey == "" {
		s.GroqAPIKey = readDotEnv(".env", "GROQ_API_KEY")
		if s.GroqAPIKey != "" {
			slog.Info("Read GROQ_API_KEY from .env file")
		}
	}
	if s.SecretKey == "" {
		s.SecretKey = defaultSecretKey
		slog.Warn("SECRET_KEY not set, using development placeholder")
	}
	if s.UploadDir == "" {
		s.UploadDir = "static/uploads"
	}

	return s
}

// readDotEnv scans a key=value file for key. Comment lines and malformed
// lines are skipped; surrounding quotes on the value are stripped.
func readDotEnv(path, key string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, found := strings.Cut(line, "=")
		if !found || strings.TrimSpace(k) != key {
			continue
		}
		return strings.Trim(strings.TrimSpace(v), `"'`)
	}
	return ""
}
