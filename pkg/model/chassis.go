package model

import "fmt"

// MassClass is the weight class of a chassis.
type MassClass string

const (
	MassClassLight   MassClass = "light"
	MassClassMedium  MassClass = "medium"
	MassClassHeavy   MassClass = "heavy"
	MassClassAssault MassClass = "assault"
)

// ClassForMass derives the mass class from the chassis tonnage.
func ClassForMass(tons float64) MassClass {
	switch {
	case tons < 40:
		return MassClassLight
	case tons < 60:
		return MassClassMedium
	case tons < 80:
		return MassClassHeavy
	default:
		return MassClassAssault
	}
}

// Hardpoint is a count of mounting points of one weapon category.
type Hardpoint struct {
	Type  HardpointType
	Count int
}

// Component is the immutable chassis definition of one location.
type Component struct {
	Location   Location
	Slots      int
	MaxArmor   int
	Hardpoints []Hardpoint

	// Internals are fixed structural items that always occupy slots.
	Internals []*Item

	// Toggleables are actuators an omni chassis may switch on and off.
	Toggleables []*Item
}

// TwoSided reports whether the component has front and back armor.
func (c *Component) TwoSided() bool {
	return c.Location.TwoSided()
}

// HardpointCount returns the number of hardpoints of type t.
func (c *Component) HardpointCount(t HardpointType) int {
	n := 0
	for _, hp := range c.Hardpoints {
		if hp.Type == t {
			n += hp.Count
		}
	}
	return n
}

// Toggleable returns the toggleable actuator of the given type, if any.
func (c *Component) Toggleable(a ActuatorType) *Item {
	for _, it := range c.Toggleables {
		if it.Actuator == a {
			return it
		}
	}
	return nil
}

// IsToggleable reports whether item is one of the component's toggleables.
func (c *Component) IsToggleable(item *Item) bool {
	for _, it := range c.Toggleables {
		if it.ID == item.ID {
			return true
		}
	}
	return false
}

// InternalSlots is the number of slots taken by fixed internals.
func (c *Component) InternalSlots() int {
	n := 0
	for _, it := range c.Internals {
		n += it.Slots
	}
	return n
}

// Chassis is immutable reference data for a vehicle frame.
type Chassis struct {
	ID          string
	Name        string
	Series      string
	MassMax     float64
	Omni        bool
	EngineMin   int
	EngineMax   int
	JumpJetsMax int
	Components  [LocationCount]*Component
}

// Class returns the mass class of the chassis.
func (c *Chassis) Class() MassClass {
	return ClassForMass(c.MassMax)
}

// Component returns the component definition at loc.
func (c *Chassis) Component(loc Location) *Component {
	return c.Components[loc]
}

// HardpointCount returns the number of hardpoints of type t across all components.
func (c *Chassis) HardpointCount(t HardpointType) int {
	n := 0
	for _, comp := range c.Components {
		n += comp.HardpointCount(t)
	}
	return n
}

func (c *Chassis) String() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Validate checks that every location is defined exactly once.
func (c *Chassis) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("chassis id is required")
	}
	if c.MassMax <= 0 {
		return fmt.Errorf("chassis %s: mass must be positive", c.ID)
	}
	for _, loc := range Locations {
		comp := c.Components[loc]
		if comp == nil {
			return fmt.Errorf("chassis %s: missing component %s", c.ID, loc)
		}
		if comp.Location != loc {
			return fmt.Errorf("chassis %s: component at %s declares location %s", c.ID, loc, comp.Location)
		}
		if comp.InternalSlots() > comp.Slots {
			return fmt.Errorf("chassis %s: internals exceed %s slots", c.ID, loc)
		}
		if len(comp.Toggleables) > 0 && !c.Omni {
			return fmt.Errorf("chassis %s: toggleable actuators on non-omni component %s", c.ID, loc)
		}
		if len(comp.Toggleables) > 0 && comp.Toggleable(ActuatorHand) != nil && comp.Toggleable(ActuatorLowerArm) == nil {
			return fmt.Errorf("chassis %s: hand actuator without lower arm actuator in %s", c.ID, loc)
		}
	}
	if c.EngineMin > c.EngineMax {
		return fmt.Errorf("chassis %s: engine range %d-%d is empty", c.ID, c.EngineMin, c.EngineMax)
	}
	return nil
}
