package utils

import (
	"strings"
	"testing"
)

func TestRequestID(t *testing.T) {
	id := RequestID()
	if len(id) != RequestIDSize {
		t.Fatalf("len(RequestID()) = %d, want %d", len(id), RequestIDSize)
	}
	for _, r := range id {
		if !strings.ContainsRune(idAlphabet, r) {
			t.Fatalf("RequestID() = %q contains %q outside the alphabet", id, r)
		}
	}
	if !ValidRequestID(id) {
		t.Errorf("ValidRequestID(%q) = false", id)
	}
	if RequestID() == id {
		t.Error("RequestID() repeated a value")
	}
}

func TestValidRequestID(t *testing.T) {
	tests := map[string]bool{
		"":                           false,
		"abc-123_XYZ":                true,
		"5f0c7a2e-9d41-4b0e-8c1a-3e": true,
		"has space":                  false,
		"line\nbreak":                false,
		strings.Repeat("a", 64):      true,
		strings.Repeat("a", 65):      false,
	}
	for id, want := range tests {
		if got := ValidRequestID(id); got != want {
			t.Errorf("ValidRequestID(%q) = %v, want %v", id, got, want)
		}
	}
}
