package fleet

import (
	"errors"
	"fmt"
	"math"
)

// ErrZeroVector is returned when a zero-length vector would be divided by its length.
var ErrZeroVector = errors.New("zero-length vector")

// Vec2 is a point or direction on the simulation plane (pixels).
type Vec2 struct {
	X float32
	Y float32
}

// V2 is shorthand for building a Vec2 from float64 coordinates.
func V2(x, y float64) Vec2 {
	return Vec2{X: float32(x), Y: float32(y)}
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Neg() Vec2       { return Vec2{-v.X, -v.Y} }

// Scale multiplies both components by k. The product is taken in float64
// and stored back as float32.
func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{float32(float64(v.X) * k), float32(float64(v.Y) * k)}
}

func (v Vec2) Dot(o Vec2) float64 {
	return float64(v.X)*float64(o.X) + float64(v.Y)*float64(o.Y)
}

// Cross returns the signed area u.X*v.Y - u.Y*v.X.
func (v Vec2) Cross(o Vec2) float64 {
	return float64(v.X)*float64(o.Y) - float64(v.Y)*float64(o.X)
}

func (v Vec2) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns v divided by its length.
func (v Vec2) Normalize() (Vec2, error) {
	l := v.Length()
	if l == 0 {
		return Vec2{}, ErrZeroVector
	}
	return v.Scale(1 / l), nil
}

// OrthoNormed returns the unit vector (y/l, -x/l).
func (v Vec2) OrthoNormed() (Vec2, error) {
	l := v.Length()
	if l == 0 {
		return Vec2{}, ErrZeroVector
	}
	return V2(float64(v.Y)/l, -float64(v.X)/l), nil
}

// Equal compares components exactly.
func (v Vec2) Equal(o Vec2) bool {
	return v.X == o.X && v.Y == o.Y
}

// String formats the vector the way scenario files write positions.
func (v Vec2) String() string {
	return fmt.Sprintf("%g,%g", v.X, v.Y)
}
