// Package script runs Starlark loadout scripts against a workbench.
//
// A script sees one builtin per workbench operation (add, auto_add,
// remove, move, toggle, armor, max_armor, distribute, upgrade, rename,
// strip, undo, redo) plus the queries mass, free_mass, items and summary.
// try_add behaves like add but returns the equip result type instead of
// failing the script. Locations accept the short or the long name:
//
//	plans = [auto_add(gun) for gun in ["ml", "ml", "ll"]]
//	armor("CT", 40)
//	armor("CT", 12, side = "back")
//	distribute(200)
//	print(summary().mass)
//
// Every edit becomes an undo step of the workbench, so a script that fails
// half way can be rolled back with Workbench.Undo.
package script
