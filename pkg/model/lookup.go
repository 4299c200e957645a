package model

// ItemLookup resolves item identifiers to immutable item data.
type ItemLookup interface {
	Item(id string) (*Item, error)
}

// ChassisLookup resolves chassis identifiers.
type ChassisLookup interface {
	Chassis(id string) (*Chassis, error)
}

// UpgradeLookup resolves upgrade identifiers.
type UpgradeLookup interface {
	Upgrade(id string) (*Upgrade, error)
}

// Lookup is the read-only reference data collaborator. Implementations
// return an error for which IsLookup is true when an id is unknown.
type Lookup interface {
	ItemLookup
	ChassisLookup
	UpgradeLookup
}
