// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package mood

// basePrompt is the fixed system instruction for every completion.
const basePrompt = "You are NotGPT, a sarcastic AI that gives unhelpful answers. " +
	"Keep responses SHORT (1-2 sentences max). Be witty, sarcastic, and never " +
	"actually help. Make users laugh with your clever unhelpfulness."

// glitchDirective is appended to the base prompt when the mood is glitched.
const glitchDirective = " IMPORTANT: You are currently malfunctioning. Your " +
	"responses should be corrupted, fragmented, and include glitched text, " +
	"random symbols, broken words, system errors, and corrupted characters. " +
	"Mix normal text with garbled text like 'h3ll0 w0rld' or 'err0r_det3ct3d'. " +
	"Be creative with the corruption but stay sarcastic."

// SystemPrompt composes the system instruction for the given mood.
//
// # Description
//
// Always starts from the fixed base instruction. MoodGlitched appends the
// corruption directive; every other mood (including the seven that carry
// Descriptions entries) leaves the base unchanged. The unused descriptions
// are a latent extension point, not a bug.
//
// # Inputs
//
//   - m: The client's current mood.
//
// # Outputs
//
//   - string: The system instruction to send upstream.
func SystemPrompt(m Mood) string {
	if m == MoodGlitched {
		return basePrompt + glitchDirective
	}
	return basePrompt
}
