// Package engine implements the transactional command layer of the loadout
// editor.
//
// # Overview
//
// Every change to a model.Loadout is a Command. A command validates before it
// mutates, so a failed Apply leaves the loadout untouched, and Undo restores
// the exact prior state (item order, armor, manual flags and toggles).
//
//   - AddItem / RemoveItem: single equip operations with their cascades
//     (engine side items, absorbed heat sinks, actuator toggles, warnings)
//   - ToggleItem: omni arm actuators, OFF -> LAA -> LAA+HA
//   - SetArmor, MaxArmor, DistributeArmor: armor allocation
//   - ChangeUpgrade, Rename, Strip: loadout level edits
//   - AutoAddItem: search based placement built on the Resolver
//   - Composite: any of the above grouped into one undo step
//
// # Stack
//
// Stack owns the history. Push applies a command and records it only on
// success; consecutive commands with equal non-zero CoalesceKey values
// collapse into one undo step:
//
//	stack := engine.NewStack(64)
//	cmd, err := engine.NewSetArmor(l, model.CenterTorso, model.SideFront, 40, true, sink)
//	if err != nil {
//		return err // caller defect
//	}
//	if err := stack.Push(cmd); err != nil {
//		r, _ := model.ResultOf(err) // expected failure, show r to the user
//	}
//
// # Notifications
//
// Commands report what they changed to a Sink after each mutation, in
// mutation order. Sinks are passed explicitly; Discard drops everything and
// Recorder collects events for inspection.
//
// # Errors
//
// Constructors return programmer errors (model.IsProgrammer) for requests
// that can never be valid, such as editing an internal item. Apply returns
// equip errors (model.IsEquip) carrying a model.EquipResult.
package engine
