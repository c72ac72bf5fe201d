package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	RequestIDSize = 21

	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	// longest inbound X-Request-Id that is echoed back
	maxRequestIDLen = 64
)

// RequestID returns a random id for correlating a request's log lines.
func RequestID() string {
	return gonanoid.MustGenerate(idAlphabet, RequestIDSize)
}

// ValidRequestID reports whether an id supplied by a proxy is safe to log
// and echo in a response header.
func ValidRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
