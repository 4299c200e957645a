package model

import "fmt"

// EquipResultType is the closed set of outcomes of a feasibility check.
type EquipResultType string

const (
	ResultSuccess               EquipResultType = "success"
	ResultNotEnoughSlots        EquipResultType = "not_enough_slots"
	ResultNotEnoughSlotsForXL   EquipResultType = "not_enough_slots_for_xl_side"
	ResultNotEnoughTonnage      EquipResultType = "not_enough_tonnage"
	ResultNoFreeHardPoints      EquipResultType = "no_free_hardpoints"
	ResultNoComponentSupport    EquipResultType = "no_component_support"
	ResultNotSupported          EquipResultType = "not_supported"
	ResultEngineAlreadyEquipped EquipResultType = "engine_already_equipped"
	ResultTooManyOfThatType     EquipResultType = "too_many_of_that_type"
	ResultIncompatibleUpgrades  EquipResultType = "incompatible_upgrades"
	ResultCannotRemoveECM       EquipResultType = "cannot_remove_ecm"
	ResultNotEquipped           EquipResultType = "not_equipped"
	ResultLowerArmRequired      EquipResultType = "lower_arm_required"
	ResultLargeBoreConflict     EquipResultType = "large_bore_conflict"
	ResultExceededMaxArmor      EquipResultType = "exceeded_max_armor"
)

var resultMessages = map[EquipResultType]string{
	ResultSuccess:               "success",
	ResultNotEnoughSlots:        "not enough free slots",
	ResultNotEnoughSlotsForXL:   "not enough free slots for engine side",
	ResultNotEnoughTonnage:      "not enough free tonnage",
	ResultNoFreeHardPoints:      "no free hardpoints",
	ResultNoComponentSupport:    "component does not support the item",
	ResultNotSupported:          "item is not supported by the chassis",
	ResultEngineAlreadyEquipped: "an engine is already equipped",
	ResultTooManyOfThatType:     "too many items of that type",
	ResultIncompatibleUpgrades:  "incompatible with the selected upgrades",
	ResultCannotRemoveECM:       "stealth armor requires an ECM",
	ResultNotEquipped:           "item is not equipped",
	ResultLowerArmRequired:      "hand actuator requires the lower arm actuator",
	ResultLargeBoreConflict:     "a large bore weapon blocks the lower arm actuator",
	ResultExceededMaxArmor:      "exceeds the maximum armor",
}

// Validate checks if the result type is one of the known outcomes.
func (t EquipResultType) Validate() error {
	if _, ok := resultMessages[t]; !ok {
		return fmt.Errorf("invalid equip result type: %s", t)
	}
	return nil
}

// Message returns a human readable description of the outcome.
func (t EquipResultType) Message() string {
	if m, ok := resultMessages[t]; ok {
		return m
	}
	return string(t)
}

// EquipResult is the outcome of a feasibility check, optionally tied to the
// location that caused a failure.
type EquipResult struct {
	Type        EquipResultType
	Location    Location
	HasLocation bool
}

// Success is the successful EquipResult.
func Success() EquipResult {
	return EquipResult{Type: ResultSuccess}
}

// Failure returns a failed result without a location.
func Failure(t EquipResultType) EquipResult {
	return EquipResult{Type: t}
}

// FailureAt returns a failed result for loc.
func FailureAt(t EquipResultType, loc Location) EquipResult {
	return EquipResult{Type: t, Location: loc, HasLocation: true}
}

// IsSuccess reports whether the check passed.
func (r EquipResult) IsSuccess() bool {
	return r.Type == ResultSuccess || r.Type == ""
}

// Err converts a failed result into an equip-class *Error. It returns nil on
// success.
func (r EquipResult) Err() error {
	if r.IsSuccess() {
		return nil
	}
	return NewEquipError(r)
}

func (r EquipResult) String() string {
	if r.HasLocation {
		return fmt.Sprintf("%s (%s)", r.Type.Message(), r.Location)
	}
	return r.Type.Message()
}
