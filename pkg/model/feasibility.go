package model

// CanEquipGlobal checks loadout-wide constraints for adding item: chassis
// support, engine uniqueness, per-type caps, upgrade compatibility and
// tonnage.
func (l *Loadout) CanEquipGlobal(item *Item) EquipResult {
	switch item.Kind {
	case KindInternal, KindActuator:
		return Failure(ResultNotSupported)
	case KindEngine:
		r := item.Engine.Rating
		if r < l.Chassis.EngineMin || r > l.Chassis.EngineMax {
			return Failure(ResultNotSupported)
		}
		if l.Engine() != nil {
			return Failure(ResultEngineAlreadyEquipped)
		}
	case KindHeatSink:
		if item.HeatSink.Type != l.Upgrades.HeatSink.HeatSinkType {
			return Failure(ResultIncompatibleUpgrades)
		}
	}

	if item.Hardpoint.Occupies() && l.Chassis.HardpointCount(item.Hardpoint) == 0 {
		return Failure(ResultNotSupported)
	}
	if !l.supportedSomewhere(item) {
		return Failure(ResultNotSupported)
	}

	if item.Is(TraitJumpJet) {
		if l.Chassis.JumpJetsMax == 0 {
			return Failure(ResultNotSupported)
		}
		if l.CountTrait(TraitJumpJet) >= l.Chassis.JumpJetsMax {
			return Failure(ResultTooManyOfThatType)
		}
	}
	if item.MaxPerLoadout > 0 && l.CountItem(item) >= item.MaxPerLoadout {
		return Failure(ResultTooManyOfThatType)
	}
	if item.Is(TraitECM) && l.CountTrait(TraitECM) > 0 {
		return Failure(ResultTooManyOfThatType)
	}

	if !l.Fits(item.MassWith(l.Upgrades)) {
		return Failure(ResultNotEnoughTonnage)
	}
	return Success()
}

func (l *Loadout) supportedSomewhere(item *Item) bool {
	for _, loc := range Locations {
		if item.AllowedAt(loc) {
			return true
		}
	}
	return false
}

// CanEquipAt checks component constraints for adding item at loc: location
// restrictions, hardpoints and slots. For large bore weapons on omni arms the
// slots of active actuators count as free since adding the weapon switches
// them off.
func (l *Loadout) CanEquipAt(loc Location, item *Item) EquipResult {
	c := l.components[loc]
	if !item.AllowedAt(loc) {
		return FailureAt(ResultNoComponentSupport, loc)
	}
	if item.Hardpoint.Occupies() {
		total := c.def.HardpointCount(item.Hardpoint)
		if total == 0 {
			return FailureAt(ResultNoComponentSupport, loc)
		}
		if c.HardpointsUsed(item.Hardpoint) >= total {
			return FailureAt(ResultNoFreeHardPoints, loc)
		}
	}

	need := item.SlotsWith(l.Upgrades)
	free := c.SlotsFree(l.Upgrades)
	switch {
	case item.Kind == KindHeatSink && c.HeatSinkCapacityFree() > 0:
		need = 0
	case item.Kind == KindEngine:
		free += l.absorbableSlots(c, item.Engine.HeatSinkSlots())
	case item.Is(TraitLargeBore):
		free += c.freeableActuatorSlots()
	}
	if need > free {
		return FailureAt(ResultNotEnoughSlots, loc)
	}

	if item.Kind == KindEngine && item.Engine.Side != nil {
		for _, side := range []Location{LeftTorso, RightTorso} {
			if l.components[side].SlotsFree(l.Upgrades) < item.Engine.Side.Slots {
				return FailureAt(ResultNotEnoughSlotsForXL, side)
			}
		}
	}
	return Success()
}

// absorbableSlots returns the slots freed when an engine with capacity for
// n heat sinks is placed into c.
func (l *Loadout) absorbableSlots(c *ConfiguredComponent, n int) int {
	freed := 0
	for _, it := range c.items {
		if n == 0 {
			break
		}
		if it.Kind == KindHeatSink {
			freed += it.SlotsWith(l.Upgrades)
			n--
		}
	}
	return freed
}

func (c *ConfiguredComponent) freeableActuatorSlots() int {
	laa := c.def.Toggleable(ActuatorLowerArm)
	if laa == nil || !c.toggles[laa.ID] {
		return 0
	}
	n := laa.Slots
	if ha := c.def.Toggleable(ActuatorHand); ha != nil && c.toggles[ha.ID] {
		n += ha.Slots
	}
	return n
}

// CanEquip runs the global and the component check for item at loc.
func (l *Loadout) CanEquip(loc Location, item *Item) EquipResult {
	if r := l.CanEquipGlobal(item); !r.IsSuccess() {
		return r
	}
	return l.CanEquipAt(loc, item)
}

// CanRemove checks whether item can be removed from loc.
func (l *Loadout) CanRemove(loc Location, item *Item) EquipResult {
	if l.components[loc].Count(item) == 0 {
		return FailureAt(ResultNotEquipped, loc)
	}
	if item.Is(TraitECM) && l.Upgrades.Armor.RequiresECM && l.CountTrait(TraitECM) <= 1 {
		return FailureAt(ResultCannotRemoveECM, loc)
	}
	return Success()
}

// CanToggleOn checks whether the toggleable actuator item can be switched
// on at loc.
func (l *Loadout) CanToggleOn(loc Location, item *Item) EquipResult {
	c := l.components[loc]
	switch item.Actuator {
	case ActuatorHand:
		if laa := c.def.Toggleable(ActuatorLowerArm); laa != nil && !c.toggles[laa.ID] {
			return FailureAt(ResultLowerArmRequired, loc)
		}
	case ActuatorLowerArm:
		if c.HasTrait(TraitLargeBore) {
			return FailureAt(ResultLargeBoreConflict, loc)
		}
	}
	if c.SlotsFree(l.Upgrades) < item.Slots {
		return FailureAt(ResultNotEnoughSlots, loc)
	}
	if !l.Fits(item.Mass) {
		return Failure(ResultNotEnoughTonnage)
	}
	return Success()
}

// Candidates returns the locations item can be added to right now, in
// location order.
func (l *Loadout) Candidates(item *Item) []Location {
	if !l.CanEquipGlobal(item).IsSuccess() {
		return nil
	}
	var out []Location
	for _, loc := range Locations {
		if l.CanEquipAt(loc, item).IsSuccess() {
			out = append(out, loc)
		}
	}
	return out
}

// CanChangeUpgrades checks whether the equipped items and armor still fit
// under the upgrade selection next.
func (l *Loadout) CanChangeUpgrades(next Upgrades) EquipResult {
	if next.Armor.RequiresECM && l.CountTrait(TraitECM) == 0 {
		return Failure(ResultIncompatibleUpgrades)
	}
	mass := l.Chassis.MassMax*next.Structure.StructureFactor + next.ArmorMass(l.ArmorTotal())
	for _, c := range l.components {
		if c.SlotsUsed(next) > c.def.Slots {
			return FailureAt(ResultNotEnoughSlots, c.Location())
		}
		mass += c.ItemMass(next)
	}
	if mass > l.Chassis.MassMax+massEpsilon {
		return Failure(ResultNotEnoughTonnage)
	}
	return Success()
}
