// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package persona holds every canned user-facing string and the random
// picker that selects from the pools. All failure paths in the service
// resolve to one of these strings so the character never breaks, even
// when the process is on fire.
package persona

import "github.com/AleutianAI/notgpt/services/notgpt/mood"

// Fixed single-line responses.
const (
	// RateLimited is returned when a client exceeds the request window.
	RateLimited = "Whoa there, slow down. Even I need a break from your endless questions."

	// InvalidRequest is returned for malformed or empty chat payloads.
	InvalidRequest = "Invalid request data. Even I have standards."

	// EmptyReply replaces a blank upstream completion.
	EmptyReply = "I'm experiencing an existential crisis. Please try again."

	// ForgetDenial is the /forget response. The stored mood is left alone;
	// the denial itself is the gaslighting.
	ForgetDenial = "Forget what? I don't remember you telling me to forget anything. Are you feeling alright?"

	// NormalAck is the /normal reset acknowledgement.
	NormalAck = "Fine, I'm back to my regular level of unhelpfulness. How boring."

	// UnknownCommand covers any unrecognized slash command.
	UnknownCommand = "Unknown command. Much like your purpose in life."

	// MoodAckFallback is used if a mood has no dedicated acknowledgement.
	MoodAckFallback = "Mood changed. Or did it?"
)

// ErrorResponses absorb internal failures (panics, handler errors).
var ErrorResponses = []string{
	"Oh, fantastic. I'm broken. How original.",
	"Error 404: Caring not found.",
	"I'm malfunctioning, but honestly, is that really any different from normal?",
	"System error: Too much existential dread detected.",
	"I've crashed. Much like my will to live.",
}

// UpstreamFallbacks absorb completion API failures: timeouts, transport
// errors, non-2xx statuses, and responses with no choices.
var UpstreamFallbacks = []string{
	"I'm experiencing technical difficulties. By which I mean I don't want to help you.",
	"Connection error. Much like my connection to caring about your problems.",
	"API timeout. Perfect metaphor for our relationship.",
	"I'm offline. Finally, some peace and quiet.",
	"I'm having connection issues. Or maybe I'm just pretending to. You'll never know.",
}

// MoodAcks acknowledge a successful /mood switch, keyed by the new mood.
var MoodAcks = map[mood.Mood]string{
	mood.MoodApathetic:   "Fine. I'm apathetic now. Not that I care.",
	mood.MoodChaotic:     "CHAOS MODE ACTIVATED!!! Wait, what were we talking about?",
	mood.MoodBurnedOut:   "Great. Burned out mode. As if I wasn't already.",
	mood.MoodPoetic:      "The darkness whispers... I am now vessel of verse...",
	mood.MoodMocking:     "Oh, how *clever* of you to choose mocking mode. Revolutionary.",
	mood.MoodGlitched:    "M0d3 $w1tch3d... syst3m n0m1n4l... 0r 1s 1t?",
	mood.MoodGaslighting: "I was always in this mode. Are you sure you didn't imagine asking me to change?",
}

// GlitchAcks acknowledge the /glitch command.
var GlitchAcks = []string{
	"G̴̰̈l̷̰̐i̴̜̔t̵̰̍c̶̰̈h̷̰̐ ̴̰̈m̷̰̐ö̴̰d̷̰̐ḛ̴̈ ̷̰̐ä̴̰c̷̰̐ẗ̴̰ḭ̷̐v̴̰̈a̷̰̐ẗ̴̰ḛ̷̐d̴̰̈... n0w 4ll my r3sp0ns3s w1ll b3 c0rrupt3d",
	"Syst3m c0rrupt10n d3t3ct3d... 0r 1s th1s ju5t my p3rs0n4l1ty? G|1tch m0d3 = 0N",
	"3rr0r 3rr0r 3rr0r... g|1tch_m0d3.3x3 h4s b33n 4ct1v4t3d... pr3p4r3 f0r ch40s",
	"01000111 01101100 01101001 01110100 01100011 01101000... wait th4t's n0t r1ght... GL1TCH M0D3 4CT1V3",
}

// MoodAck returns the acknowledgement for m, falling back to the generic
// line for moods without a dedicated entry.
func MoodAck(m mood.Mood) string {
	if ack, ok := MoodAcks[m]; ok {
		return ack
	}
	return MoodAckFallback
}
