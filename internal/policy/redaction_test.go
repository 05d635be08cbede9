package policy

import (
	"strings"
	"testing"
)

func TestRedactPII(t *testing.T) {
	input := "Name: Jane Doe, email: jane@example.com, phone: +91 98765-43210, card 4242 4242 4242 4242."
	out, changed := RedactPII(input)
	if !changed {
		t.Fatalf("changed = false, want true")
	}
	for _, marker := range []string{"[REDACTED_EMAIL]", "[REDACTED_PHONE]", "[REDACTED_CARD]"} {
		if !strings.Contains(out, marker) {
			t.Fatalf("output missing marker %q: %q", marker, out)
		}
	}
	if strings.Contains(out, "jane@example.com") {
		t.Fatalf("email survived redaction: %q", out)
	}
}

func TestRedactPIILeavesOfferIDs(t *testing.T) {
	input := "I selected OFFER_3FA2C9D1 for 2 adults"
	out, changed := RedactPII(input)
	if changed {
		t.Fatalf("changed = true, want false (out=%q)", out)
	}
}

func TestForLogTruncates(t *testing.T) {
	got := ForLog("line one\nline two jane@example.com", 20)
	if strings.Contains(got, "\n") {
		t.Fatalf("ForLog() kept newline: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("ForLog() = %q, want truncated suffix", got)
	}
}
