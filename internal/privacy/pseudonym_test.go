package privacy

import "testing"

func TestDigestStableWithinProcess(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a := p.Digest("user-123")
	b := p.Digest("user-123")
	if a != b {
		t.Fatalf("same input, different digests: %q vs %q", a, b)
	}
	if a == "user-123" {
		t.Fatal("digest must not be the raw identifier")
	}
	if len(a) != 16 {
		t.Fatalf("digest length = %d, want 16 hex chars", len(a))
	}
}

func TestDigestDiffersAcrossSalts(t *testing.T) {
	p1, _ := New()
	p2, _ := New()
	if p1.Digest("user-123") == p2.Digest("user-123") {
		t.Fatal("different salts must give different digests")
	}
}

func TestDigestDiffersAcrossInputs(t *testing.T) {
	p, _ := New()
	if p.Digest("user-1") == p.Digest("user-2") {
		t.Fatal("different inputs must give different digests")
	}
}
