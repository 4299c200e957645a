// Package policy checks loadouts against Rego rules using Open Policy Agent.
//
// A policy is a Rego module with a "deny" set. Every element of the set is a
// finding: either a plain message string or an object with a message and
// optional location, severity and remediation fields. The engine evaluates
// every enabled policy against the loadout summary built by NewInput and
// reports a Result whose Allowed field is false when any finding has error
// severity.
//
// Builtin policies cover the basic sanity checks (engine present, heat sink
// minimum, armor coverage, rear armor, orphaned ammunition and unused
// tonnage). Custom policies are loaded from .rego or .json files:
//
//	# Head armor must be maxed in league play.
//	# severity: error
//	package league.head
//
//	import rego.v1
//
//	deny contains "head armor is not maxed" if {
//		some c in input.loadout.components
//		c.location == "HD"
//		c.armor < c.armor_max
//	}
//
// The leading comment block becomes the description and the file name the
// policy name. Loader.Watch reloads the files on change; pass
// Engine.ReplacePolicies as the reload callback to swap the custom set
// without touching the builtins.
package policy
