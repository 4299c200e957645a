// Package catalog loads the reference data loadouts are built from: items,
// chassis and upgrades. Catalogs are YAML documents validated with struct
// tags and cross referenced into immutable model values.
//
// A catalog file looks like:
//
//	defaults:
//	  armor: armor_std
//	  structure: structure_std
//	  heat_sink: hs_single
//	upgrades:
//	  - {id: armor_std, type: armor, armor_per_ton: 32}
//	items:
//	  - {id: ml, name: Medium Laser, kind: weapon, hardpoint: energy, slots: 1, mass: 1}
//	chassis:
//	  - id: std50
//	    mass: 50
//	    components:
//	      HD: {slots: 6, armor: 18, hardpoints: {energy: 1}}
//
// Builtin returns the catalog embedded in the binary. SaveToStore and
// LoadFromStore mirror a catalog into a stores.Store so tooling can share
// it without the source file.
package catalog
