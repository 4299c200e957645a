package model

import "fmt"

// ConfiguredComponent is the mutable per-loadout state of one location.
// It is owned by a Loadout and only mutated by commands.
type ConfiguredComponent struct {
	def     *Component
	items   []*Item
	armor   [sideCount]int
	manual  [sideCount]bool
	toggles map[string]bool
}

func newConfiguredComponent(def *Component) *ConfiguredComponent {
	c := &ConfiguredComponent{
		def:     def,
		toggles: make(map[string]bool, len(def.Toggleables)),
	}
	for _, it := range def.Toggleables {
		c.toggles[it.ID] = true
	}
	return c
}

// Def returns the immutable chassis component.
func (c *ConfiguredComponent) Def() *Component {
	return c.def
}

// Location returns the component's location.
func (c *ConfiguredComponent) Location() Location {
	return c.def.Location
}

// Items returns a copy of the equipped items in display order. Fixed
// internals and toggleables are not included.
func (c *ConfiguredComponent) Items() []*Item {
	out := make([]*Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of equipped items.
func (c *ConfiguredComponent) Len() int {
	return len(c.items)
}

// ItemAt returns the item at index i.
func (c *ConfiguredComponent) ItemAt(i int) *Item {
	return c.items[i]
}

// AddItem appends item and returns its index.
func (c *ConfiguredComponent) AddItem(item *Item) int {
	c.items = append(c.items, item)
	return len(c.items) - 1
}

// InsertItem places item at idx, shifting later items.
func (c *ConfiguredComponent) InsertItem(idx int, item *Item) {
	if idx < 0 || idx > len(c.items) {
		panic(fmt.Sprintf("insert index %d out of range [0,%d] in %s", idx, len(c.items), c.Location()))
	}
	c.items = append(c.items, nil)
	copy(c.items[idx+1:], c.items[idx:])
	c.items[idx] = item
}

// RemoveItemAt removes and returns the item at idx.
func (c *ConfiguredComponent) RemoveItemAt(idx int) *Item {
	item := c.items[idx]
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return item
}

// RemoveItem removes the last occurrence of item and returns its former
// index, or -1 if it is not equipped here.
func (c *ConfiguredComponent) RemoveItem(item *Item) int {
	idx := c.LastIndexOf(item)
	if idx >= 0 {
		c.RemoveItemAt(idx)
	}
	return idx
}

// LastIndexOf returns the index of the last occurrence of item, or -1.
func (c *ConfiguredComponent) LastIndexOf(item *Item) int {
	for i := len(c.items) - 1; i >= 0; i-- {
		if c.items[i].ID == item.ID {
			return i
		}
	}
	return -1
}

// Count returns how many times item is equipped here.
func (c *ConfiguredComponent) Count(item *Item) int {
	n := 0
	for _, it := range c.items {
		if it.ID == item.ID {
			n++
		}
	}
	return n
}

// Armor returns the armor value of side.
func (c *ConfiguredComponent) Armor(side ArmorSide) int {
	return c.armor[side]
}

// ArmorTotal returns the sum of all armor sides.
func (c *ConfiguredComponent) ArmorTotal() int {
	return c.armor[SideOnly] + c.armor[SideFront] + c.armor[SideBack]
}

// SetArmor stores an armor value and its manual flag.
func (c *ConfiguredComponent) SetArmor(side ArmorSide, value int, manual bool) {
	c.armor[side] = value
	c.manual[side] = manual
}

// HasManualArmor reports whether side was set explicitly by the user.
func (c *ConfiguredComponent) HasManualArmor(side ArmorSide) bool {
	return c.manual[side]
}

// ManualArmor returns the armor held by manually locked sides.
func (c *ConfiguredComponent) ManualArmor() int {
	n := 0
	for _, s := range c.Location().Sides() {
		if c.manual[s] {
			n += c.armor[s]
		}
	}
	return n
}

// ArmorMax returns the largest value side may take given the other side.
func (c *ConfiguredComponent) ArmorMax(side ArmorSide) int {
	switch side {
	case SideFront:
		return c.def.MaxArmor - c.armor[SideBack]
	case SideBack:
		return c.def.MaxArmor - c.armor[SideFront]
	default:
		return c.def.MaxArmor
	}
}

// ToggleState reports whether the toggleable item is switched on.
func (c *ConfiguredComponent) ToggleState(item *Item) bool {
	return c.toggles[item.ID]
}

// SetToggleState switches a toggleable item.
func (c *ConfiguredComponent) SetToggleState(item *Item, on bool) {
	c.toggles[item.ID] = on
}

// ActuatorOn reports whether the toggleable actuator of type a is present and on.
func (c *ConfiguredComponent) ActuatorOn(a ActuatorType) bool {
	it := c.def.Toggleable(a)
	return it != nil && c.toggles[it.ID]
}

// HasTrait reports whether any equipped item carries t.
func (c *ConfiguredComponent) HasTrait(t Trait) bool {
	for _, it := range c.items {
		if it.Is(t) {
			return true
		}
	}
	return false
}

// HasWeapons reports whether any weapon is equipped here.
func (c *ConfiguredComponent) HasWeapons() bool {
	for _, it := range c.items {
		if it.IsWeapon() {
			return true
		}
	}
	return false
}

// HasEngineSide reports whether an engine side item sits in this component.
func (c *ConfiguredComponent) HasEngineSide() bool {
	for _, it := range c.items {
		if it.IsInternal() {
			return true
		}
	}
	return false
}

// Engine returns the equipped engine, if any.
func (c *ConfiguredComponent) Engine() *Item {
	for _, it := range c.items {
		if it.Kind == KindEngine {
			return it
		}
	}
	return nil
}

// HeatSinks returns the number of heat sinks equipped here.
func (c *ConfiguredComponent) HeatSinks() int {
	n := 0
	for _, it := range c.items {
		if it.Kind == KindHeatSink {
			n++
		}
	}
	return n
}

// EngineHeatSinks is the number of heat sinks absorbed by an engine in this
// component. Absorbed heat sinks keep their mass but take no slots.
func (c *ConfiguredComponent) EngineHeatSinks() int {
	e := c.Engine()
	if e == nil {
		return 0
	}
	return min(c.HeatSinks(), e.Engine.HeatSinkSlots())
}

// HeatSinkCapacityFree reports the number of further heat sinks the engine
// here can absorb.
func (c *ConfiguredComponent) HeatSinkCapacityFree() int {
	e := c.Engine()
	if e == nil {
		return 0
	}
	return e.Engine.HeatSinkSlots() - c.EngineHeatSinks()
}

// HardpointsUsed counts equipped items that occupy a hardpoint of type t.
func (c *ConfiguredComponent) HardpointsUsed(t HardpointType) int {
	n := 0
	for _, it := range c.items {
		if it.Hardpoint == t {
			n++
		}
	}
	return n
}

// SlotsUsed returns the slots taken by internals, active toggleables and
// equipped items, minus heat sinks absorbed by the engine.
func (c *ConfiguredComponent) SlotsUsed(up Upgrades) int {
	n := c.def.InternalSlots()
	for _, it := range c.def.Toggleables {
		if c.toggles[it.ID] {
			n += it.Slots
		}
	}
	absorbed := c.EngineHeatSinks()
	for _, it := range c.items {
		if it.Kind == KindHeatSink && absorbed > 0 {
			absorbed--
			continue
		}
		n += it.SlotsWith(up)
	}
	return n
}

// SlotsFree returns the remaining slot capacity.
func (c *ConfiguredComponent) SlotsFree(up Upgrades) int {
	return c.def.Slots - c.SlotsUsed(up)
}

// ItemMass returns the mass of everything in the component except armor.
func (c *ConfiguredComponent) ItemMass(up Upgrades) float64 {
	m := 0.0
	for _, it := range c.def.Internals {
		m += it.Mass
	}
	for _, it := range c.def.Toggleables {
		if c.toggles[it.ID] {
			m += it.Mass
		}
	}
	for _, it := range c.items {
		m += it.MassWith(up)
	}
	return m
}

// ComponentState is a comparable value copy of a ConfiguredComponent.
type ComponentState struct {
	Items   []string
	Armor   [sideCount]int
	Manual  [sideCount]bool
	Toggles map[string]bool
}

// Snapshot copies the mutable state.
func (c *ConfiguredComponent) Snapshot() ComponentState {
	s := ComponentState{
		Items:   make([]string, len(c.items)),
		Armor:   c.armor,
		Manual:  c.manual,
		Toggles: make(map[string]bool, len(c.toggles)),
	}
	for i, it := range c.items {
		s.Items[i] = it.ID
	}
	for k, v := range c.toggles {
		s.Toggles[k] = v
	}
	return s
}
