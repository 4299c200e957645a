package model

import (
	"fmt"
	"strings"
)

// Location identifies a body component of a chassis. Locations double as
// indexes into the per-loadout component arena.
type Location int

const (
	Head Location = iota
	LeftArm
	LeftTorso
	CenterTorso
	RightTorso
	RightArm
	LeftLeg
	RightLeg

	// LocationCount is the number of locations on every chassis.
	LocationCount = 8
)

// Locations lists every location in stable iteration order.
var Locations = []Location{Head, LeftArm, LeftTorso, CenterTorso, RightTorso, RightArm, LeftLeg, RightLeg}

var locationShort = [LocationCount]string{"HD", "LA", "LT", "CT", "RT", "RA", "LL", "RL"}

var locationLong = [LocationCount]string{
	"head", "left_arm", "left_torso", "center_torso", "right_torso", "right_arm", "left_leg", "right_leg",
}

// String returns the short name (HD, LA, ...).
func (l Location) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Location(%d)", int(l))
	}
	return locationShort[l]
}

// LongName returns the snake_case long name of the location.
func (l Location) LongName() string {
	if !l.Valid() {
		return l.String()
	}
	return locationLong[l]
}

// Valid reports whether l is one of the eight known locations.
func (l Location) Valid() bool {
	return l >= Head && l <= RightLeg
}

// TwoSided reports whether the location carries separate front and back armor.
func (l Location) TwoSided() bool {
	return l == LeftTorso || l == CenterTorso || l == RightTorso
}

// Sides returns the armor sides applicable to the location.
func (l Location) Sides() []ArmorSide {
	if l.TwoSided() {
		return []ArmorSide{SideFront, SideBack}
	}
	return []ArmorSide{SideOnly}
}

// HasSide reports whether side is applicable to the location.
func (l Location) HasSide(side ArmorSide) bool {
	for _, s := range l.Sides() {
		if s == side {
			return true
		}
	}
	return false
}

// IsArm reports whether the location is an arm.
func (l Location) IsArm() bool {
	return l == LeftArm || l == RightArm
}

// Neighbour returns the side torso an arm attaches to, or the arm attached
// to a side torso. ok is false for other locations.
func (l Location) Neighbour() (Location, bool) {
	switch l {
	case LeftArm:
		return LeftTorso, true
	case LeftTorso:
		return LeftArm, true
	case RightArm:
		return RightTorso, true
	case RightTorso:
		return RightArm, true
	default:
		return 0, false
	}
}

// ParseLocation accepts either the short or the long name, case-insensitive.
func ParseLocation(s string) (Location, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for i := 0; i < LocationCount; i++ {
		if strings.ToLower(locationShort[i]) == v || locationLong[i] == v {
			return Location(i), nil
		}
	}
	return 0, fmt.Errorf("unknown location: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Location) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid location: %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Location) UnmarshalText(text []byte) error {
	v, err := ParseLocation(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ArmorSide selects which armor value of a component is addressed.
type ArmorSide int

const (
	// SideOnly is the single armor value of one-sided components.
	SideOnly ArmorSide = iota
	SideFront
	SideBack

	sideCount = 3
)

// String returns the side name.
func (s ArmorSide) String() string {
	switch s {
	case SideOnly:
		return "only"
	case SideFront:
		return "front"
	case SideBack:
		return "back"
	default:
		return fmt.Sprintf("ArmorSide(%d)", int(s))
	}
}

// ParseArmorSide parses "only", "front" or "back".
func ParseArmorSide(s string) (ArmorSide, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "only", "":
		return SideOnly, nil
	case "front":
		return SideFront, nil
	case "back", "rear":
		return SideBack, nil
	default:
		return 0, fmt.Errorf("unknown armor side: %q", s)
	}
}

// HardpointType is the weapon category a hardpoint accepts.
type HardpointType string

const (
	HardpointNone      HardpointType = "none"
	HardpointEnergy    HardpointType = "energy"
	HardpointBallistic HardpointType = "ballistic"
	HardpointMissile   HardpointType = "missile"
	HardpointAMS       HardpointType = "ams"
	HardpointECM       HardpointType = "ecm"
)

// Validate checks if the hardpoint type is valid.
func (h HardpointType) Validate() error {
	switch h {
	case HardpointNone, HardpointEnergy, HardpointBallistic, HardpointMissile, HardpointAMS, HardpointECM:
		return nil
	default:
		return fmt.Errorf("invalid hardpoint type: %s", h)
	}
}

// Occupies reports whether items of this type consume a hardpoint.
func (h HardpointType) Occupies() bool {
	return h != HardpointNone && h != ""
}
