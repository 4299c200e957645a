package model

import (
	"fmt"

	"github.com/google/uuid"
)

// massEpsilon absorbs floating point noise in tonnage comparisons.
const massEpsilon = 1e-9

// Loadout is the aggregate being configured: a chassis, one
// ConfiguredComponent per location stored by Location index, and the
// upgrade selection. The engine is derived from the center torso.
type Loadout struct {
	ID       uuid.UUID
	Name     string
	Chassis  *Chassis
	Upgrades Upgrades

	components [LocationCount]*ConfiguredComponent
}

// NewLoadout creates an empty loadout for chassis with the given upgrades.
// Toggleable actuators start switched on.
func NewLoadout(chassis *Chassis, up Upgrades) (*Loadout, error) {
	if chassis == nil {
		return nil, NewProgrammerError("chassis is required")
	}
	if err := chassis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chassis: %w", err)
	}
	if err := up.Validate(); err != nil {
		return nil, fmt.Errorf("invalid upgrades: %w", err)
	}
	l := &Loadout{
		ID:       uuid.New(),
		Name:     chassis.Name,
		Chassis:  chassis,
		Upgrades: up,
	}
	for _, loc := range Locations {
		l.components[loc] = newConfiguredComponent(chassis.Components[loc])
	}
	return l, nil
}

// Component returns the configured component at loc.
func (l *Loadout) Component(loc Location) *ConfiguredComponent {
	return l.components[loc]
}

// Components returns all configured components in location order.
func (l *Loadout) Components() []*ConfiguredComponent {
	out := make([]*ConfiguredComponent, LocationCount)
	copy(out, l.components[:])
	return out
}

// Engine returns the equipped engine, if any.
func (l *Loadout) Engine() *Item {
	return l.components[CenterTorso].Engine()
}

// MassStructure is the mass of the internal structure.
func (l *Loadout) MassStructure() float64 {
	return l.Chassis.MassMax * l.Upgrades.Structure.StructureFactor
}

// ArmorTotal is the sum of armor points over all components.
func (l *Loadout) ArmorTotal() int {
	n := 0
	for _, c := range l.components {
		n += c.ArmorTotal()
	}
	return n
}

// MassArmor is the mass of all armor.
func (l *Loadout) MassArmor() float64 {
	return l.Upgrades.ArmorMass(l.ArmorTotal())
}

// MassItems is the mass of all items, internals and active toggleables.
func (l *Loadout) MassItems() float64 {
	m := 0.0
	for _, c := range l.components {
		m += c.ItemMass(l.Upgrades)
	}
	return m
}

// Mass is the total mass of the loadout.
func (l *Loadout) Mass() float64 {
	return l.MassStructure() + l.MassArmor() + l.MassItems()
}

// FreeMass is the tonnage left before reaching the chassis maximum.
func (l *Loadout) FreeMass() float64 {
	return l.Chassis.MassMax - l.Mass()
}

// Fits reports whether extra tons can be added without exceeding the chassis
// maximum.
func (l *Loadout) Fits(extra float64) bool {
	return extra <= l.FreeMass()+massEpsilon
}

// Count returns the number of items matching pred across all components.
func (l *Loadout) Count(pred func(*Item) bool) int {
	n := 0
	for _, c := range l.components {
		for _, it := range c.items {
			if pred(it) {
				n++
			}
		}
	}
	return n
}

// CountItem returns how many times item is equipped.
func (l *Loadout) CountItem(item *Item) int {
	return l.Count(func(it *Item) bool { return it.ID == item.ID })
}

// CountTrait returns how many equipped items carry t.
func (l *Loadout) CountTrait(t Trait) int {
	return l.Count(func(it *Item) bool { return it.Is(t) })
}

// HeatSinkCount returns the number of heat sinks including those built into
// the engine.
func (l *Loadout) HeatSinkCount() int {
	n := l.Count(func(it *Item) bool { return it.Kind == KindHeatSink })
	if e := l.Engine(); e != nil {
		n += e.Engine.InternalHeatSinks()
	}
	return n
}

// SlotsUsed returns the total slots used across components.
func (l *Loadout) SlotsUsed() int {
	n := 0
	for _, c := range l.components {
		n += c.SlotsUsed(l.Upgrades)
	}
	return n
}

// SlotsTotal returns the total slot capacity of the chassis.
func (l *Loadout) SlotsTotal() int {
	n := 0
	for _, c := range l.components {
		n += c.def.Slots
	}
	return n
}

// ArmorMaxTotal returns the sum of component maximum armor.
func (l *Loadout) ArmorMaxTotal() int {
	n := 0
	for _, c := range l.components {
		n += c.def.MaxArmor
	}
	return n
}

// Validate checks the loadout invariants and returns an equip-class error
// describing the first violation.
func (l *Loadout) Validate() error {
	for _, c := range l.components {
		if c.SlotsUsed(l.Upgrades) > c.def.Slots {
			return FailureAt(ResultNotEnoughSlots, c.Location()).Err()
		}
		for _, s := range c.Location().Sides() {
			if c.armor[s] < 0 || c.armor[s] > c.ArmorMax(s) {
				return FailureAt(ResultExceededMaxArmor, c.Location()).Err()
			}
		}
		for _, hp := range []HardpointType{HardpointEnergy, HardpointBallistic, HardpointMissile, HardpointAMS, HardpointECM} {
			if c.HardpointsUsed(hp) > c.def.HardpointCount(hp) {
				return FailureAt(ResultNoFreeHardPoints, c.Location()).Err()
			}
		}
	}
	if l.Upgrades.Armor.RequiresECM && l.CountTrait(TraitECM) == 0 {
		return Failure(ResultIncompatibleUpgrades).Err()
	}
	if !l.Fits(0) {
		return Failure(ResultNotEnoughTonnage).Err()
	}
	if e := l.Engine(); e != nil && e.Engine.Side != nil {
		lt := l.components[LeftTorso].Count(e.Engine.Side)
		rt := l.components[RightTorso].Count(e.Engine.Side)
		if lt != 1 || rt != 1 {
			return NewInternalError(fmt.Sprintf("engine side items out of sync: LT=%d RT=%d", lt, rt), nil)
		}
	}
	return nil
}

// LoadoutState is a comparable value copy of a Loadout.
type LoadoutState struct {
	Name       string
	Upgrades   [4]string
	Components [LocationCount]ComponentState
}

// Snapshot copies the mutable state for equality checks.
func (l *Loadout) Snapshot() LoadoutState {
	s := LoadoutState{Name: l.Name}
	for i, t := range []UpgradeType{UpgradeArmor, UpgradeStructure, UpgradeHeatSink, UpgradeGuidance} {
		if u := l.Upgrades.Get(t); u != nil {
			s.Upgrades[i] = u.ID
		}
	}
	for _, loc := range Locations {
		s.Components[loc] = l.components[loc].Snapshot()
	}
	return s
}
