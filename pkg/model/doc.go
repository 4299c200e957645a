// Package model defines the loadout domain: immutable chassis, item and
// upgrade reference data, the mutable per-loadout component state, and the
// feasibility checks that decide whether an item may be equipped.
//
// Components are stored in a fixed arena indexed by Location, so a
// ConfiguredComponent never points back at its Loadout.
//
// Feasibility is split in two checks that every mutation runs before
// touching state:
//
//	l.CanEquipGlobal(item)   // tonnage, caps, chassis support, upgrades
//	l.CanEquipAt(loc, item)  // hardpoints, slots, engine side slots
//
// Failures are reported as EquipResult values. EquipResult.Err converts a
// failure into an *Error of class ErrorClassEquip, which callers are
// expected to present to the user rather than treat as a defect.
package model
