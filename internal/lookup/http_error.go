package lookup

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shpitdev/contact-outreach/pkg/redact"
)

// errorEnvelope covers the JSON error shapes returned by the search APIs we talk to:
// {"detail":{"error":"..."}} and {"error":"..."}.
type errorEnvelope struct {
	Error  string `json:"error"`
	Detail struct {
		Error string `json:"error"`
	} `json:"detail"`
}

// HTTPError is a sanitized summary of a non-2xx response from a search backend
// or a scraped page.
//
// Raw response bodies are never included; they can echo keys back.
type HTTPError struct {
	Op         string
	URL        string
	StatusCode int
	Status     string
	Message    string

	// Snippet is a redacted, truncated hint for non-JSON responses.
	Snippet string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "lookup http error"
	}
	parts := []string{
		fmt.Sprintf("lookup http error: op=%s status=%s", strings.TrimSpace(e.Op), strings.TrimSpace(e.Status)),
	}
	if strings.TrimSpace(e.URL) != "" {
		parts = append(parts, "url="+strings.TrimSpace(e.URL))
	}
	if strings.TrimSpace(e.Message) != "" {
		parts = append(parts, "message="+strings.TrimSpace(e.Message))
	}
	if strings.TrimSpace(e.Snippet) != "" {
		parts = append(parts, "body="+strings.TrimSpace(e.Snippet))
	}
	return strings.Join(parts, " ")
}

// NewHTTPError builds an HTTPError and marks it transient for 429 and 5xx.
func NewHTTPError(op, url string, statusCode int, status string, body []byte) error {
	h := &HTTPError{
		Op:         op,
		URL:        url,
		StatusCode: statusCode,
		Status:     status,
	}
	if h.Status == "" {
		h.Status = fmt.Sprintf("%d", statusCode)
	}

	var env errorEnvelope
	if len(body) > 0 && json.Unmarshal(body, &env) == nil {
		msg := strings.TrimSpace(env.Detail.Error)
		if msg == "" {
			msg = strings.TrimSpace(env.Error)
		}
		h.Message = redact.Secrets(msg)
	}
	if h.Message == "" {
		h.Snippet = redactAndTruncate(body)
	}

	if statusCode == 429 || statusCode/100 == 5 {
		return &TransientError{Err: h}
	}
	return h
}

func redactAndTruncate(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	const max = 256
	b := body
	if len(b) > max {
		b = b[:max]
	}
	s := redact.Secrets(string(b))
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(body) > max {
		return s + "..."
	}
	return s
}
