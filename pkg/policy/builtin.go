package policy

// BuiltinPolicies returns the policies every engine starts with.
func BuiltinPolicies() []Policy {
	return []Policy{
		engineRequiredPolicy(),
		heatSinkPolicy(),
		armorCoveragePolicy(),
		rearArmorPolicy(),
		ammoPolicy(),
		unusedTonnagePolicy(),
	}
}

func engineRequiredPolicy() Policy {
	return Policy{
		Name:        "engine-required",
		Description: "A loadout cannot move without an engine",
		Severity:    SeverityError,
		Enabled:     true,
		Tags:        []string{"engine"},
		Rego: `package mechforge.policies.engine

import rego.v1

deny contains violation if {
	input.loadout.engine == null
	violation := {
		"message": "no engine equipped",
		"location": "CT",
		"remediation": "equip an engine in the center torso",
	}
}
`,
	}
}

func heatSinkPolicy() Policy {
	return Policy{
		Name:        "heat-sinks",
		Description: "Engines need at least ten heat sinks including the built in ones",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"engine", "heat"},
		Rego: `package mechforge.policies.heat

import rego.v1

min_heat_sinks := 10

deny contains violation if {
	input.loadout.engine != null
	input.loadout.heat_sinks < min_heat_sinks
	violation := {
		"message": sprintf("%d heat sinks, at least %d are required", [input.loadout.heat_sinks, min_heat_sinks]),
		"remediation": sprintf("add %d heat sinks", [min_heat_sinks - input.loadout.heat_sinks]),
	}
}
`,
	}
}

func armorCoveragePolicy() Policy {
	return Policy{
		Name:        "armor-coverage",
		Description: "Flags components carrying less than half of their maximum armor",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"armor"},
		Rego: `package mechforge.policies.armor

import rego.v1

deny contains violation if {
	some c in input.loadout.components
	c.armor_max > 0
	total := c.armor + c.armor_back
	total * 2 < c.armor_max
	violation := {
		"message": sprintf("%s carries %d of %d armor", [c.location, total, c.armor_max]),
		"location": c.location,
		"remediation": "distribute more armor",
	}
}
`,
	}
}

func rearArmorPolicy() Policy {
	return Policy{
		Name:        "rear-armor",
		Description: "Notes torso components armored only at the front",
		Severity:    SeverityInfo,
		Enabled:     true,
		Tags:        []string{"armor"},
		Rego: `package mechforge.policies.rear

import rego.v1

deny contains violation if {
	some c in input.loadout.components
	c.two_sided
	c.armor > 0
	c.armor_back == 0
	violation := {
		"message": sprintf("%s has no rear armor", [c.location]),
		"location": c.location,
	}
}
`,
	}
}

func ammoPolicy() Policy {
	return Policy{
		Name:        "ammo-without-weapon",
		Description: "Ammunition is dead weight without a weapon that fires it",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"weapons"},
		Rego: `package mechforge.policies.ammo

import rego.v1

deny contains violation if {
	some ammo in input.loadout.items
	ammo.kind == "ammunition"
	not has_weapon(ammo.ammo_type)
	violation := {
		"message": sprintf("%s carried without a matching weapon", [ammo.id]),
		"location": ammo.location,
		"remediation": sprintf("remove %s or equip a %s weapon", [ammo.id, ammo.ammo_type]),
	}
}

has_weapon(ammo_type) if {
	some w in input.loadout.items
	w.kind == "weapon"
	startswith(w.id, ammo_type)
}
`,
	}
}

func unusedTonnagePolicy() Policy {
	return Policy{
		Name:        "unused-tonnage",
		Description: "Reports a full ton or more of unused mass",
		Severity:    SeverityInfo,
		Enabled:     true,
		Tags:        []string{"mass"},
		Rego: `package mechforge.policies.tonnage

import rego.v1

deny contains msg if {
	input.loadout.free_mass >= 1
	msg := sprintf("%v tons unused", [input.loadout.free_mass])
}
`,
	}
}
