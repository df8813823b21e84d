// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientIdentity returns the identity key used for rate limiting and mood
// state: the first X-Forwarded-For entry when present, otherwise the
// connection's remote IP.
//
// The header is trusted without a proxy allowlist, so the identity is
// spoofable. A spoofed identity only gets the caller a different mood
// bucket and a fresh rate window, which is an accepted tradeoff for a
// service of this nature.
func ClientIdentity(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	return c.ClientIP()
}
