package similarity

import "testing"

func TestNormalizeTitle(t *testing.T) {
	got := NormalizeTitle("The NEW Makita XFD131 Drill-Kit, with FREE Shipping!")
	want := []string{"makita", "xfd131", "drill", "kit"}

	if len(got) != len(want) {
		t.Fatalf("NormalizeTitle = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFingerprintTitle_PunctuationInvariant(t *testing.T) {
	a := FingerprintTitle("Makita XFD131 Drill Kit")
	b := FingerprintTitle("makita xfd131 drill kit!!!")
	if a != b {
		t.Error("case and punctuation should not change the fingerprint")
	}
}

func TestFingerprintTitle_Empty(t *testing.T) {
	if fp := FingerprintTitle(""); fp != 0 {
		t.Errorf("empty title fingerprint = %064b, want 0", fp)
	}
	if fp := FingerprintTitle("the a an"); fp != 0 {
		t.Errorf("stopword-only title fingerprint = %064b, want 0", fp)
	}
}

func TestSameProduct(t *testing.T) {
	if !SameProduct("Makita XFD131 Drill Kit", "The MAKITA XFD131 Drill-Kit with FREE Shipping") {
		t.Error("same product with cosmetic differences should match")
	}
	if SameProduct("Makita XFD131 Drill Kit", "Breville Espresso Machine Stainless") {
		t.Error("unrelated products should not match")
	}
	if SameProduct("", "Makita XFD131 Drill Kit") {
		t.Error("empty title should never match")
	}
}
