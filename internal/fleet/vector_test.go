package fleet

import (
	"errors"
	"math"
	"testing"
)

func TestVec2_Arithmetic(t *testing.T) {
	a := Vec2{X: 3, Y: 4}
	b := Vec2{X: 1, Y: -2}

	if got := a.Add(b); !got.Equal(Vec2{X: 4, Y: 2}) {
		t.Fatalf("expected (4,2), got %v", got)
	}
	if got := a.Sub(b); !got.Equal(Vec2{X: 2, Y: 6}) {
		t.Fatalf("expected (2,6), got %v", got)
	}
	if got := a.Neg(); !got.Equal(Vec2{X: -3, Y: -4}) {
		t.Fatalf("expected (-3,-4), got %v", got)
	}
	if got := a.Scale(0.5); !got.Equal(Vec2{X: 1.5, Y: 2}) {
		t.Fatalf("expected (1.5,2), got %v", got)
	}
	if got := a.Dot(b); got != -5 {
		t.Fatalf("expected dot -5, got %v", got)
	}
	if got := a.Cross(b); got != -10 {
		t.Fatalf("expected cross -10, got %v", got)
	}
	if got := a.Length(); got != 5 {
		t.Fatalf("expected length 5, got %v", got)
	}
}

func TestVec2_NormalizeAndOrtho(t *testing.T) {
	n, err := Vec2{X: 3, Y: 4}.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(n.Length()-1) > 1e-6 {
		t.Fatalf("expected unit length, got %v", n.Length())
	}

	o, err := Vec2{X: 0, Y: 2}.OrthoNormed()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.Equal(Vec2{X: 1, Y: 0}) {
		t.Fatalf("expected (1,0), got %v", o)
	}
}

func TestVec2_ZeroLengthIsRejected(t *testing.T) {
	if _, err := (Vec2{}).Normalize(); !errors.Is(err, ErrZeroVector) {
		t.Fatalf("expected ErrZeroVector from Normalize, got %v", err)
	}
	if _, err := (Vec2{}).OrthoNormed(); !errors.Is(err, ErrZeroVector) {
		t.Fatalf("expected ErrZeroVector from OrthoNormed, got %v", err)
	}
}

func TestVec2_EqualIsExact(t *testing.T) {
	a := Vec2{X: 0.1, Y: 0.2}
	if !a.Equal(Vec2{X: 0.1, Y: 0.2}) {
		t.Fatal("expected identical vectors to be equal")
	}
	if a.Equal(Vec2{X: 0.1, Y: 0.2000001}) {
		t.Fatal("expected no epsilon in equality")
	}
}
