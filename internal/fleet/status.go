package fleet

import "fmt"

// Status is a drone flight phase. Order matters: every status from
// Hovering on counts as airborne cruising.
type Status int

const (
	Landed Status = iota
	Takeoff
	Landing
	Hovering
	Turning // reserved; flies like Hovering
	Flying  // reserved; flies like Hovering
)

var statusNames = [...]string{
	Landed:   "landed",
	Takeoff:  "takeoff",
	Landing:  "landing",
	Hovering: "hovering",
	Turning:  "turning",
	Flying:   "flying",
}

// Airborne reports whether the drone is cruising under the velocity law.
func (s Status) Airborne() bool { return s >= Hovering }

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return Landed, fmt.Errorf("unknown drone status %q", name)
}
