package policy

import (
	"strings"
	"testing"
)

func TestRedactPII(t *testing.T) {
	input := "Email me at sam@example.com or +1 (555) 123-9876 and use 4242 4242 4242 4242."
	out, changed := RedactPII(input)
	if !changed {
		t.Fatalf("changed = false, want true")
	}
	for _, marker := range []string{"[REDACTED_EMAIL]", "[REDACTED_PHONE]", "[REDACTED_CARD]"} {
		if !strings.Contains(out, marker) {
			t.Fatalf("output missing marker %q: %q", marker, out)
		}
	}
}

func TestRedactPIIMasksAPIKeys(t *testing.T) {
	out, changed := RedactPII("meri key sk-abcdefghijklmnopqrstuvwx hai")
	if !changed || !strings.Contains(out, "[REDACTED_SECRET]") {
		t.Fatalf("RedactPII() = %q, %v; want secret masked", out, changed)
	}
}

func TestRedactPIILeavesPlainChat(t *testing.T) {
	in := "baby aaj mausam kitna acha hai"
	out, changed := RedactPII(in)
	if changed || out != in {
		t.Fatalf("RedactPII(%q) = %q, %v; want unchanged", in, out, changed)
	}
}

func TestRedactPIIKeepsMentions(t *testing.T) {
	in := "<@123456789012345678> ka number 4242 4242 4242 4242 hai"
	out, changed := RedactPII(in)
	if !changed {
		t.Fatalf("changed = false, want true")
	}
	if !strings.HasPrefix(out, "<@123456789012345678> ") {
		t.Fatalf("mention was altered: %q", out)
	}
	if !strings.Contains(out, "[REDACTED_CARD]") {
		t.Fatalf("card not masked: %q", out)
	}
}
