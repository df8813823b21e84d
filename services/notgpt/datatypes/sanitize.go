// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"html"
	"regexp"
	"strings"
)

// tagPattern matches raw markup tags in user input.
var tagPattern = regexp.MustCompile(`<[^>]+>`)

// SanitizeInput strips markup from user text and bounds its length.
//
// # Description
//
// Removes anything shaped like an HTML tag, escapes the remaining special
// characters, trims surrounding whitespace, and truncates to
// MaxMessageChars. The result is safe to echo into JSON responses and to
// forward to the completion service. A whitespace-only or tag-only input
// sanitizes to the empty string, which callers treat as invalid.
//
// # Inputs
//
//   - text: Raw caller-supplied message text.
//
// # Outputs
//
//   - string: Sanitized text, length <= MaxMessageChars, no raw markup.
func SanitizeInput(text string) string {
	if text == "" {
		return ""
	}
	text = tagPattern.ReplaceAllString(text, "")
	text = html.EscapeString(text)
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) > MaxMessageChars {
		return string(runes[:MaxMessageChars])
	}
	return text
}
