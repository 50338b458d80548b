package redact

import (
	"regexp"
	"strings"
)

var (
	// Matches "Bearer <token>" (Tavily keys travel this way).
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)

	// Tavily keys are prefixed and show up verbatim in some upstream error bodies.
	tavilyKeyRe = regexp.MustCompile(`\btvly-[A-Za-z0-9_-]+`)

	// Common key=value formats that sometimes leak in error strings.
	apiKeyKVRe = regexp.MustCompile(`(?i)\b(api[_-]?key|gemini[_-]?api[_-]?key|tavily[_-]?api[_-]?key|email[_-]?password|password)\b\s*[:=]\s*[^\s"']+`)
)

// Secrets removes obvious secret-bearing substrings from error/log strings.
//
// It is safe to call on any message, including upstream error strings that
// echo request bodies.
func Secrets(s string) string {
	if s == "" {
		return ""
	}
	out := s
	out = bearerTokenRe.ReplaceAllString(out, "Bearer <redacted>")
	out = tavilyKeyRe.ReplaceAllString(out, "<redacted_key>")
	out = apiKeyKVRe.ReplaceAllString(out, "<redacted_kv>")
	return strings.TrimSpace(out)
}
