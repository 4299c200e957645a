package model

import (
	"fmt"
	"strings"
)

// ItemKind is the variant tag of an Item.
type ItemKind string

const (
	KindWeapon     ItemKind = "weapon"
	KindAmmunition ItemKind = "ammunition"
	KindEngine     ItemKind = "engine"
	KindHeatSink   ItemKind = "heat_sink"
	KindActuator   ItemKind = "actuator"
	KindModule     ItemKind = "module"
	KindInternal   ItemKind = "internal"
)

// Validate checks if the item kind is valid.
func (k ItemKind) Validate() error {
	switch k {
	case KindWeapon, KindAmmunition, KindEngine, KindHeatSink, KindActuator, KindModule, KindInternal:
		return nil
	default:
		return fmt.Errorf("invalid item kind: %s", k)
	}
}

// Trait is a capability flag carried by an item.
type Trait uint16

const (
	// TraitLargeBore marks weapons that cannot coexist with a lower arm actuator.
	TraitLargeBore Trait = 1 << iota
	TraitGauss
	TraitArtemisCapable
	TraitECM
	TraitCASE
	TraitJumpJet
)

var traitNames = []struct {
	t    Trait
	name string
}{
	{TraitLargeBore, "large_bore"},
	{TraitGauss, "gauss"},
	{TraitArtemisCapable, "artemis"},
	{TraitECM, "ecm"},
	{TraitCASE, "case"},
	{TraitJumpJet, "jump_jet"},
}

// Traits is a set of Trait flags.
type Traits uint16

// Has reports whether t is in the set.
func (ts Traits) Has(t Trait) bool {
	return uint16(ts)&uint16(t) != 0
}

// With returns the set with t added.
func (ts Traits) With(t Trait) Traits {
	return Traits(uint16(ts) | uint16(t))
}

// String lists the trait names joined by "|".
func (ts Traits) String() string {
	var names []string
	for _, tn := range traitNames {
		if ts.Has(tn.t) {
			names = append(names, tn.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseTrait maps a trait name to its flag.
func ParseTrait(name string) (Trait, error) {
	for _, tn := range traitNames {
		if tn.name == name {
			return tn.t, nil
		}
	}
	return 0, fmt.Errorf("unknown trait: %q", name)
}

// EngineType is the engine construction class.
type EngineType string

const (
	EngineSTD   EngineType = "STD"
	EngineXL    EngineType = "XL"
	EngineLight EngineType = "LIGHT"
)

// Validate checks if the engine type is valid.
func (e EngineType) Validate() error {
	switch e {
	case EngineSTD, EngineXL, EngineLight:
		return nil
	default:
		return fmt.Errorf("invalid engine type: %s", e)
	}
}

// EngineSpec describes the engine variant of an Item.
type EngineSpec struct {
	Rating int
	Type   EngineType

	// Side is the internal item placed in both side torsos for XL and LIGHT
	// engines. It is nil for STD engines.
	Side *Item
}

// InternalHeatSinks is the number of heat sinks built into the engine.
func (e *EngineSpec) InternalHeatSinks() int {
	return min(10, e.Rating/25)
}

// HeatSinkSlots is the number of additional heat sinks the engine can
// absorb without consuming component slots.
func (e *EngineSpec) HeatSinkSlots() int {
	return max(0, e.Rating/25-10)
}

// HeatSinkType distinguishes single from double heat sinks.
type HeatSinkType string

const (
	HeatSinkSingle HeatSinkType = "single"
	HeatSinkDouble HeatSinkType = "double"
)

// Validate checks if the heat sink type is valid.
func (h HeatSinkType) Validate() error {
	switch h {
	case HeatSinkSingle, HeatSinkDouble:
		return nil
	default:
		return fmt.Errorf("invalid heat sink type: %s", h)
	}
}

// HeatSinkSpec describes the heat sink variant of an Item.
type HeatSinkSpec struct {
	Type        HeatSinkType
	Dissipation float64
}

// ActuatorType names the toggleable arm actuators.
type ActuatorType string

const (
	ActuatorNone     ActuatorType = ""
	ActuatorLowerArm ActuatorType = "LAA"
	ActuatorHand     ActuatorType = "HA"
)

// Item is immutable reference data for anything that can occupy slots.
// Variant specific data lives in the Engine, HeatSink and Actuator fields
// selected by Kind.
type Item struct {
	ID        string
	Name      string
	Kind      ItemKind
	Hardpoint HardpointType
	Slots     int
	Mass      float64
	Traits    Traits

	// Locations restricts where the item may be placed. Empty means anywhere.
	Locations []Location

	// MaxPerLoadout caps how many of this item a loadout may carry. Zero means
	// no cap.
	MaxPerLoadout int

	AmmoType string
	Engine   *EngineSpec
	HeatSink *HeatSinkSpec
	Actuator ActuatorType
}

func (i *Item) String() string {
	if i == nil {
		return "<nil item>"
	}
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}

// Is reports whether the item carries trait t.
func (i *Item) Is(t Trait) bool {
	return i.Traits.Has(t)
}

// IsInternal reports whether the item is structural and never user editable.
func (i *Item) IsInternal() bool {
	return i.Kind == KindInternal
}

// IsWeapon reports whether the item is a weapon.
func (i *Item) IsWeapon() bool {
	return i.Kind == KindWeapon
}

// SlotsWith returns the slots the item occupies under the given upgrades.
func (i *Item) SlotsWith(up Upgrades) int {
	if i.Is(TraitArtemisCapable) && up.Guidance != nil {
		return i.Slots + up.Guidance.ExtraSlots
	}
	return i.Slots
}

// MassWith returns the item mass under the given upgrades.
func (i *Item) MassWith(up Upgrades) float64 {
	if i.Is(TraitArtemisCapable) && up.Guidance != nil {
		return i.Mass + up.Guidance.ExtraMass
	}
	return i.Mass
}

// AllowedAt reports whether the item's location restriction admits loc.
func (i *Item) AllowedAt(loc Location) bool {
	if i.Kind == KindEngine {
		return loc == CenterTorso
	}
	if len(i.Locations) == 0 {
		return true
	}
	for _, l := range i.Locations {
		if l == loc {
			return true
		}
	}
	return false
}

// Validate checks the variant invariants of the item.
func (i *Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("item id is required")
	}
	if err := i.Kind.Validate(); err != nil {
		return fmt.Errorf("item %s: %w", i.ID, err)
	}
	if i.Hardpoint != "" {
		if err := i.Hardpoint.Validate(); err != nil {
			return fmt.Errorf("item %s: %w", i.ID, err)
		}
	}
	if i.Slots < 0 || i.Mass < 0 {
		return fmt.Errorf("item %s: slots and mass must not be negative", i.ID)
	}
	switch i.Kind {
	case KindEngine:
		if i.Engine == nil {
			return fmt.Errorf("engine %s has no engine spec", i.ID)
		}
		if err := i.Engine.Type.Validate(); err != nil {
			return fmt.Errorf("item %s: %w", i.ID, err)
		}
		if i.Engine.Type != EngineSTD && i.Engine.Side == nil {
			return fmt.Errorf("%s engine %s has no side item", i.Engine.Type, i.ID)
		}
		if i.Engine.Side != nil && !i.Engine.Side.IsInternal() {
			return fmt.Errorf("engine %s side item %s must be internal", i.ID, i.Engine.Side.ID)
		}
	case KindHeatSink:
		if i.HeatSink == nil {
			return fmt.Errorf("heat sink %s has no heat sink spec", i.ID)
		}
		if err := i.HeatSink.Type.Validate(); err != nil {
			return fmt.Errorf("item %s: %w", i.ID, err)
		}
	case KindActuator:
		if i.Actuator != ActuatorLowerArm && i.Actuator != ActuatorHand {
			return fmt.Errorf("actuator %s has invalid actuator type %q", i.ID, i.Actuator)
		}
	}
	return nil
}
