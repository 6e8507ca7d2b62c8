// Package utils provides small pure helpers shared across the service.
package utils

import (
	"net/http"
	"strings"
)

// UnknownIdentity is returned when no proxy header yields a usable address.
const UnknownIdentity = "unknown"

// clientIPHeaders in priority order: load balancer, reverse proxy, CDN,
// platform-specific. The first non-empty value wins.
var clientIPHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"CF-Connecting-IP",
	"X-Vercel-Forwarded-For",
}

// ClientIP extracts a best-effort caller identity from proxy headers.
// Multi-hop proxies send comma-separated lists; the first entry is the
// original client. The result is a rate-limiting and logging dimension
// only, never an authorization credential.
func ClientIP(h http.Header) string {
	var candidate string
	for _, name := range clientIPHeaders {
		if v := h.Get(name); v != "" {
			candidate = v
			break
		}
	}
	if candidate == "" {
		return UnknownIdentity
	}

	first := strings.TrimSpace(strings.SplitN(candidate, ",", 2)[0])
	if first == "" {
		return UnknownIdentity
	}
	return first
}
