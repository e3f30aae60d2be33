package scenario

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Garsondee/Drone-Fleet/internal/fleet"
)

// ErrInvalidPosition is returned for positions that are not "x,y".
var ErrInvalidPosition = errors.New("invalid position")

// ParsePosition parses an "x,y" pair into a plane vector. Whitespace around
// either component is ignored.
func ParsePosition(s string) (fleet.Vec2, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return fleet.Vec2{}, ErrInvalidPosition
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 32)
	if err != nil {
		return fleet.Vec2{}, ErrInvalidPosition
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 32)
	if err != nil {
		return fleet.Vec2{}, ErrInvalidPosition
	}
	return fleet.V2(x, y), nil
}
