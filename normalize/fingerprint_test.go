package normalize

import "testing"

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("Makita XFD131", "https://example.com/p/1")
	b := Fingerprint("Makita XFD131", "https://example.com/p/1")
	if a != b {
		t.Errorf("same inputs produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}

func TestFingerprint_OrderSensitive(t *testing.T) {
	a := Fingerprint("x", "y")
	b := Fingerprint("y", "x")
	if a == b {
		t.Error("value order should change the fingerprint")
	}
}

func TestFingerprint_NoBoundaryCollision(t *testing.T) {
	a := Fingerprint("ab", "c")
	b := Fingerprint("a", "bc")
	if a == b {
		t.Error(`("ab","c") and ("a","bc") must not collide`)
	}
}

func TestFingerprint_EmbeddedNULDistinct(t *testing.T) {
	a := Fingerprint("a\x00", "b")
	b := Fingerprint("a", "\x00b")
	if a == b {
		t.Error("values containing NUL bytes must not shift boundaries")
	}
}

func TestFingerprint_EmptyValuesDistinct(t *testing.T) {
	a := Fingerprint("")
	b := Fingerprint("", "")
	if a == b {
		t.Error("different value counts must not collide")
	}
}
