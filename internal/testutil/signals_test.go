package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}

	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}

	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v outside [-1, 1]", i, v)
		}
	}
}

func TestImpulse(t *testing.T) {
	s := Impulse(8, 3)
	for i, v := range s {
		want := 0.0
		if i == 3 {
			want = 1.0
		}
		if v != want {
			t.Fatalf("s[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestDC(t *testing.T) {
	for _, v := range DC(0.25, 16) {
		if v != 0.25 {
			t.Fatalf("value = %v, want 0.25", v)
		}
	}
}
