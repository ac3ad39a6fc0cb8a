package models

import "fmt"

// Role is a logical chart line such as the product probe or the room probe.
type Role string

const (
	RoleProduct Role = "product"
	RoleAmbient Role = "ambient"
)

// Roles lists the known roles in precedence order. When two roles share a
// sensor, the earlier role receives its readings.
var Roles = []Role{RoleProduct, RoleAmbient}

// Known reports whether r is one of Roles.
func (r Role) Known() bool {
	for _, k := range Roles {
		if k == r {
			return true
		}
	}
	return false
}

// RoleAssignment maps a role to the sensor feeding it.
type RoleAssignment map[Role]string

// RoleFor returns the role fed by sensorID, in Roles precedence order.
func (a RoleAssignment) RoleFor(sensorID string) (Role, bool) {
	if sensorID == "" {
		return "", false
	}
	for _, r := range Roles {
		if a[r] == sensorID {
			return r, true
		}
	}
	return "", false
}

// Clone returns an independent copy.
func (a RoleAssignment) Clone() RoleAssignment {
	out := make(RoleAssignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Point is one chart sample. X is elapsed time in the active frequency unit.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series is an append-only, time-ordered list of points for one role.
type Series []Point

// Last returns the most recent point.
func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

const (
	emptyRangeText = "Range: --.- - --.-"
	emptyValueText = "--.-"
)

// RangeTracker holds the running min/max of a role. Min and Max are nil
// exactly when nothing has been observed.
type RangeTracker struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// Observe widens the range to include v.
func (t *RangeTracker) Observe(v float64) {
	if t.Min == nil || v < *t.Min {
		t.Min = ptr(v)
	}
	if t.Max == nil || v > *t.Max {
		t.Max = ptr(v)
	}
}

// IsSet reports whether any value was observed.
func (t RangeTracker) IsSet() bool {
	return t.Min != nil && t.Max != nil
}

// Text renders the range for display.
func (t RangeTracker) Text() string {
	if !t.IsSet() {
		return emptyRangeText
	}
	return fmt.Sprintf("Range: %.1f - %.1f", *t.Min, *t.Max)
}

// ValueText renders a single display value, or a placeholder when v is nil.
func ValueText(v *float64) string {
	if v == nil {
		return emptyValueText
	}
	return fmt.Sprintf("%.1f", *v)
}

func ptr(v float64) *float64 { return &v }
