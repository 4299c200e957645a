package model

import (
	"fmt"
	"math"
)

// UpgradeType is the slot of the upgrade selection an upgrade fills.
type UpgradeType string

const (
	UpgradeArmor     UpgradeType = "armor"
	UpgradeStructure UpgradeType = "structure"
	UpgradeHeatSink  UpgradeType = "heat_sink"
	UpgradeGuidance  UpgradeType = "guidance"
)

// Validate checks if the upgrade type is valid.
func (u UpgradeType) Validate() error {
	switch u {
	case UpgradeArmor, UpgradeStructure, UpgradeHeatSink, UpgradeGuidance:
		return nil
	default:
		return fmt.Errorf("invalid upgrade type: %s", u)
	}
}

// Upgrade is immutable reference data for an armor, structure, heat sink or
// guidance upgrade. Only the fields matching Type are meaningful.
type Upgrade struct {
	ID   string
	Name string
	Type UpgradeType

	// Armor
	ArmorPerTon float64
	RequiresECM bool

	// Structure: fraction of chassis mass taken by internal structure.
	StructureFactor float64

	// Heat sink
	HeatSinkType HeatSinkType
	HeatSinkItem *Item

	// Guidance: added to every artemis capable launcher.
	ExtraSlots int
	ExtraMass  float64
}

func (u *Upgrade) String() string {
	if u == nil {
		return "<none>"
	}
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}

// Validate checks the fields required by the upgrade type.
func (u *Upgrade) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("upgrade id is required")
	}
	if err := u.Type.Validate(); err != nil {
		return fmt.Errorf("upgrade %s: %w", u.ID, err)
	}
	switch u.Type {
	case UpgradeArmor:
		if u.ArmorPerTon <= 0 {
			return fmt.Errorf("armor upgrade %s: armor per ton must be positive", u.ID)
		}
	case UpgradeStructure:
		if u.StructureFactor <= 0 || u.StructureFactor >= 1 {
			return fmt.Errorf("structure upgrade %s: factor must be in (0,1)", u.ID)
		}
	case UpgradeHeatSink:
		if err := u.HeatSinkType.Validate(); err != nil {
			return fmt.Errorf("upgrade %s: %w", u.ID, err)
		}
		if u.HeatSinkItem == nil {
			return fmt.Errorf("heat sink upgrade %s has no heat sink item", u.ID)
		}
	}
	return nil
}

// Upgrades is the upgrade selection of a loadout.
type Upgrades struct {
	Armor     *Upgrade
	Structure *Upgrade
	HeatSink  *Upgrade
	Guidance  *Upgrade
}

// Get returns the selected upgrade of type t.
func (u Upgrades) Get(t UpgradeType) *Upgrade {
	switch t {
	case UpgradeArmor:
		return u.Armor
	case UpgradeStructure:
		return u.Structure
	case UpgradeHeatSink:
		return u.HeatSink
	case UpgradeGuidance:
		return u.Guidance
	default:
		return nil
	}
}

// With returns a copy of the selection with up in its type's slot.
func (u Upgrades) With(up *Upgrade) Upgrades {
	switch up.Type {
	case UpgradeArmor:
		u.Armor = up
	case UpgradeStructure:
		u.Structure = up
	case UpgradeHeatSink:
		u.HeatSink = up
	case UpgradeGuidance:
		u.Guidance = up
	}
	return u
}

// Validate checks that armor, structure and heat sink upgrades are selected.
// Guidance is optional.
func (u Upgrades) Validate() error {
	if u.Armor == nil || u.Armor.Type != UpgradeArmor {
		return fmt.Errorf("an armor upgrade is required")
	}
	if u.Structure == nil || u.Structure.Type != UpgradeStructure {
		return fmt.Errorf("a structure upgrade is required")
	}
	if u.HeatSink == nil || u.HeatSink.Type != UpgradeHeatSink {
		return fmt.Errorf("a heat sink upgrade is required")
	}
	if u.Guidance != nil && u.Guidance.Type != UpgradeGuidance {
		return fmt.Errorf("guidance slot holds %s upgrade %s", u.Guidance.Type, u.Guidance.ID)
	}
	return nil
}

// ArmorMass converts armor points to tons.
func (u Upgrades) ArmorMass(points int) float64 {
	return float64(points) / u.Armor.ArmorPerTon
}

// ArmorPoints converts tons to whole armor points, rounding down.
func (u Upgrades) ArmorPoints(tons float64) int {
	if tons <= 0 {
		return 0
	}
	return int(math.Floor(tons*u.Armor.ArmorPerTon + massEpsilon))
}
