package catalog

// Document is the YAML layout of a catalog file.
type Document struct {
	Defaults DefaultsDef  `yaml:"defaults"`
	Items    []ItemDef    `yaml:"items" validate:"dive"`
	Upgrades []UpgradeDef `yaml:"upgrades" validate:"dive"`
	Chassis  []ChassisDef `yaml:"chassis" validate:"dive"`
}

// DefaultsDef names the upgrades new loadouts start with.
type DefaultsDef struct {
	Armor     string `yaml:"armor" validate:"required"`
	Structure string `yaml:"structure" validate:"required"`
	HeatSink  string `yaml:"heat_sink" validate:"required"`
	Guidance  string `yaml:"guidance,omitempty"`
}

// ItemDef defines an item. Engine, HeatSink and Actuator are only read for
// items of the matching kind.
type ItemDef struct {
	ID            string       `yaml:"id" validate:"required"`
	Name          string       `yaml:"name,omitempty"`
	Kind          string       `yaml:"kind" validate:"required,oneof=weapon ammunition engine heat_sink actuator module internal"`
	Hardpoint     string       `yaml:"hardpoint,omitempty" validate:"omitempty,oneof=none energy ballistic missile ams ecm"`
	Slots         int          `yaml:"slots" validate:"min=0"`
	Mass          float64      `yaml:"mass" validate:"min=0"`
	Traits        []string     `yaml:"traits,omitempty" validate:"unique,dive,oneof=large_bore gauss artemis ecm case jump_jet"`
	Locations     []string     `yaml:"locations,omitempty" validate:"unique,dive,location"`
	MaxPerLoadout int          `yaml:"max_per_loadout,omitempty" validate:"min=0"`
	AmmoType      string       `yaml:"ammo_type,omitempty"`
	Engine        *EngineDef   `yaml:"engine,omitempty"`
	HeatSink      *HeatSinkDef `yaml:"heat_sink,omitempty"`
	Actuator      string       `yaml:"actuator,omitempty" validate:"omitempty,oneof=LAA HA"`
}

// EngineDef is the engine block of an engine item.
type EngineDef struct {
	Rating int    `yaml:"rating" validate:"min=25"`
	Type   string `yaml:"type" validate:"required,oneof=STD XL LIGHT"`

	// Side is the id of the internal item placed in both side torsos.
	Side string `yaml:"side,omitempty" validate:"required_unless=Type STD"`
}

// HeatSinkDef is the heat sink block of a heat sink item.
type HeatSinkDef struct {
	Type        string  `yaml:"type" validate:"required,oneof=single double"`
	Dissipation float64 `yaml:"dissipation" validate:"min=0"`
}

// UpgradeDef defines an upgrade. Only the fields of its type are read.
type UpgradeDef struct {
	ID              string  `yaml:"id" validate:"required"`
	Name            string  `yaml:"name,omitempty"`
	Type            string  `yaml:"type" validate:"required,oneof=armor structure heat_sink guidance"`
	ArmorPerTon     float64 `yaml:"armor_per_ton,omitempty" validate:"min=0"`
	RequiresECM     bool    `yaml:"requires_ecm,omitempty"`
	StructureFactor float64 `yaml:"structure_factor,omitempty" validate:"min=0,max=1"`
	HeatSinkType    string  `yaml:"heat_sink_type,omitempty" validate:"omitempty,oneof=single double"`
	HeatSinkItem    string  `yaml:"heat_sink_item,omitempty"`
	ExtraSlots      int     `yaml:"extra_slots,omitempty" validate:"min=0"`
	ExtraMass       float64 `yaml:"extra_mass,omitempty" validate:"min=0"`
}

// ChassisDef defines a chassis. Components are keyed by location name.
type ChassisDef struct {
	ID          string                  `yaml:"id" validate:"required"`
	Name        string                  `yaml:"name,omitempty"`
	Series      string                  `yaml:"series,omitempty"`
	Mass        float64                 `yaml:"mass" validate:"gt=0"`
	Omni        bool                    `yaml:"omni,omitempty"`
	EngineMin   int                     `yaml:"engine_min" validate:"min=0"`
	EngineMax   int                     `yaml:"engine_max" validate:"gtefield=EngineMin"`
	JumpJetsMax int                     `yaml:"jump_jets_max,omitempty" validate:"min=0"`
	Components  map[string]ComponentDef `yaml:"components" validate:"len=8,dive,keys,location,endkeys"`
}

// ComponentDef defines one location of a chassis.
type ComponentDef struct {
	Slots       int            `yaml:"slots" validate:"min=1"`
	Armor       int            `yaml:"armor" validate:"min=0"`
	Hardpoints  map[string]int `yaml:"hardpoints,omitempty" validate:"dive,keys,oneof=energy ballistic missile ams ecm,endkeys,min=1"`
	Internals   []string       `yaml:"internals,omitempty"`
	Toggleables []string       `yaml:"toggleables,omitempty"`
}
