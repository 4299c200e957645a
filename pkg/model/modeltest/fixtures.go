// Package modeltest provides chassis, item and upgrade fixtures for tests of
// packages built on the loadout model.
package modeltest

import (
	"fmt"
	"sort"

	"github.com/mechforge/mechforge/pkg/model"
)

// Item fixtures.
var (
	MediumLaser = &model.Item{ID: "ml", Name: "Medium Laser", Kind: model.KindWeapon, Hardpoint: model.HardpointEnergy, Slots: 1, Mass: 1}
	LargeLaser  = &model.Item{ID: "ll", Name: "Large Laser", Kind: model.KindWeapon, Hardpoint: model.HardpointEnergy, Slots: 2, Mass: 5}
	PPC         = &model.Item{ID: "ppc", Name: "PPC", Kind: model.KindWeapon, Hardpoint: model.HardpointEnergy, Slots: 3, Mass: 7, Traits: model.Traits(model.TraitLargeBore)}
	AC20        = &model.Item{ID: "ac20", Name: "AC/20", Kind: model.KindWeapon, Hardpoint: model.HardpointBallistic, Slots: 10, Mass: 14, Traits: model.Traits(model.TraitLargeBore)}
	AC5         = &model.Item{ID: "ac5", Name: "AC/5", Kind: model.KindWeapon, Hardpoint: model.HardpointBallistic, Slots: 4, Mass: 8, Traits: model.Traits(model.TraitLargeBore)}
	MachineGun  = &model.Item{ID: "mg", Name: "Machine Gun", Kind: model.KindWeapon, Hardpoint: model.HardpointBallistic, Slots: 1, Mass: 0.5}
	Gauss       = &model.Item{ID: "gauss", Name: "Gauss Rifle", Kind: model.KindWeapon, Hardpoint: model.HardpointBallistic, Slots: 7, Mass: 15, Traits: model.Traits(model.TraitLargeBore).With(model.TraitGauss)}
	LRM10       = &model.Item{ID: "lrm10", Name: "LRM 10", Kind: model.KindWeapon, Hardpoint: model.HardpointMissile, Slots: 2, Mass: 5, Traits: model.Traits(model.TraitArtemisCapable)}
	SRM6        = &model.Item{ID: "srm6", Name: "SRM 6", Kind: model.KindWeapon, Hardpoint: model.HardpointMissile, Slots: 2, Mass: 1.5, Traits: model.Traits(model.TraitArtemisCapable)}
	AMS         = &model.Item{ID: "ams", Name: "Anti-Missile System", Kind: model.KindWeapon, Hardpoint: model.HardpointAMS, Slots: 1, Mass: 0.5}
	ECM         = &model.Item{ID: "ecm", Name: "Guardian ECM", Kind: model.KindModule, Hardpoint: model.HardpointECM, Slots: 2, Mass: 1.5, Traits: model.Traits(model.TraitECM)}
	CASE        = &model.Item{ID: "case", Name: "C.A.S.E.", Kind: model.KindModule, Slots: 1, Mass: 0.5, Traits: model.Traits(model.TraitCASE), Locations: []model.Location{model.LeftTorso, model.RightTorso}}
	JumpJet     = &model.Item{ID: "jj", Name: "Jump Jet", Kind: model.KindModule, Slots: 1, Mass: 0.5, Traits: model.Traits(model.TraitJumpJet), Locations: []model.Location{model.LeftTorso, model.CenterTorso, model.RightTorso, model.LeftLeg, model.RightLeg}}
	AC20Ammo    = &model.Item{ID: "ac20_ammo", Name: "AC/20 Ammo", Kind: model.KindAmmunition, Slots: 1, Mass: 1, AmmoType: "ac20"}
	HalfAC5Ammo = &model.Item{ID: "ac5_ammo_half", Name: "AC/5 Ammo (1/2)", Kind: model.KindAmmunition, Slots: 1, Mass: 0.5, AmmoType: "ac5"}

	SingleHeatSink = &model.Item{ID: "shs", Name: "Heat Sink", Kind: model.KindHeatSink, Slots: 1, Mass: 1, HeatSink: &model.HeatSinkSpec{Type: model.HeatSinkSingle, Dissipation: 0.1}}
	DoubleHeatSink = &model.Item{ID: "dhs", Name: "Double Heat Sink", Kind: model.KindHeatSink, Slots: 3, Mass: 1, HeatSink: &model.HeatSinkSpec{Type: model.HeatSinkDouble, Dissipation: 0.14}}

	XLSide    = &model.Item{ID: "xl_side", Name: "Engine XL (side)", Kind: model.KindInternal, Slots: 3}
	LightSide = &model.Item{ID: "light_side", Name: "Engine Light (side)", Kind: model.KindInternal, Slots: 2}

	STD200   = engine("std200", "STD Engine 200", model.EngineSTD, 200, 8.5, nil)
	STD300   = engine("std300", "STD Engine 300", model.EngineSTD, 300, 19, nil)
	XL300    = engine("xl300", "XL Engine 300", model.EngineXL, 300, 9.5, XLSide)
	Light250 = engine("light250", "Light Engine 250", model.EngineLight, 250, 10, LightSide)
	XL400    = engine("xl400", "XL Engine 400", model.EngineXL, 400, 33.5, XLSide)

	LowerArm = &model.Item{ID: "laa", Name: "Lower Arm Actuator", Kind: model.KindActuator, Slots: 1, Actuator: model.ActuatorLowerArm}
	Hand     = &model.Item{ID: "ha", Name: "Hand Actuator", Kind: model.KindActuator, Slots: 1, Actuator: model.ActuatorHand}

	cockpit  = &model.Item{ID: "cockpit", Name: "Cockpit", Kind: model.KindInternal, Slots: 3}
	gyro     = &model.Item{ID: "gyro", Name: "Gyro", Kind: model.KindInternal, Slots: 4}
	shoulder = &model.Item{ID: "shoulder", Name: "Shoulder", Kind: model.KindInternal, Slots: 2}
	armFixed = &model.Item{ID: "arm_actuators", Name: "Lower Arm and Hand", Kind: model.KindInternal, Slots: 2}
	legFixed = &model.Item{ID: "leg_actuators", Name: "Leg Actuators", Kind: model.KindInternal, Slots: 4}
)

func engine(id, name string, t model.EngineType, rating int, mass float64, side *model.Item) *model.Item {
	return &model.Item{
		ID: id, Name: name, Kind: model.KindEngine, Slots: 6, Mass: mass,
		Engine: &model.EngineSpec{Rating: rating, Type: t, Side: side},
	}
}

// Upgrade fixtures.
var (
	StandardArmor     = &model.Upgrade{ID: "armor_std", Name: "Standard Armor", Type: model.UpgradeArmor, ArmorPerTon: 32}
	FerroArmor        = &model.Upgrade{ID: "armor_ferro", Name: "Ferro-Fibrous Armor", Type: model.UpgradeArmor, ArmorPerTon: 35.84}
	StealthArmor      = &model.Upgrade{ID: "armor_stealth", Name: "Stealth Armor", Type: model.UpgradeArmor, ArmorPerTon: 32, RequiresECM: true}
	StandardStructure = &model.Upgrade{ID: "structure_std", Name: "Standard Structure", Type: model.UpgradeStructure, StructureFactor: 0.1}
	EndoStructure     = &model.Upgrade{ID: "structure_endo", Name: "Endo-Steel Structure", Type: model.UpgradeStructure, StructureFactor: 0.05}
	SingleHeatSinks   = &model.Upgrade{ID: "hs_single", Name: "Single Heat Sinks", Type: model.UpgradeHeatSink, HeatSinkType: model.HeatSinkSingle, HeatSinkItem: SingleHeatSink}
	DoubleHeatSinks   = &model.Upgrade{ID: "hs_double", Name: "Double Heat Sinks", Type: model.UpgradeHeatSink, HeatSinkType: model.HeatSinkDouble, HeatSinkItem: DoubleHeatSink}
	StandardGuidance  = &model.Upgrade{ID: "guidance_std", Name: "Standard Guidance", Type: model.UpgradeGuidance}
	Artemis           = &model.Upgrade{ID: "guidance_artemis", Name: "Artemis IV", Type: model.UpgradeGuidance, ExtraSlots: 1, ExtraMass: 1}
)

// DefaultUpgrades is the stock upgrade selection.
func DefaultUpgrades() model.Upgrades {
	return model.Upgrades{
		Armor:     StandardArmor,
		Structure: StandardStructure,
		HeatSink:  SingleHeatSinks,
		Guidance:  StandardGuidance,
	}
}

func component(loc model.Location, slots, maxArmor int, hps []model.Hardpoint, internals ...*model.Item) *model.Component {
	return &model.Component{Location: loc, Slots: slots, MaxArmor: maxArmor, Hardpoints: hps, Internals: internals}
}

func hp(t model.HardpointType, n int) model.Hardpoint {
	return model.Hardpoint{Type: t, Count: n}
}

// Standard returns a 50 ton standard chassis.
//
//	HD  6 slots (3 internal), 1 energy
//	LA 12 slots (4 internal), 2 energy
//	LT 12 slots, 2 missile, 1 ams
//	CT 12 slots (4 internal), 1 energy
//	RT 12 slots, 1 ballistic, 1 ecm
//	RA 12 slots (4 internal), 2 energy
//	LL/RL 6 slots (4 internal)
func Standard() *model.Chassis {
	return &model.Chassis{
		ID: "std50", Name: "Standard 50", Series: "Fixture", MassMax: 50,
		EngineMin: 150, EngineMax: 300, JumpJetsMax: 0,
		Components: [model.LocationCount]*model.Component{
			model.Head:        component(model.Head, 6, 18, []model.Hardpoint{hp(model.HardpointEnergy, 1)}, cockpit),
			model.LeftArm:     component(model.LeftArm, 12, 32, []model.Hardpoint{hp(model.HardpointEnergy, 2)}, shoulder, armFixed),
			model.LeftTorso:   component(model.LeftTorso, 12, 48, []model.Hardpoint{hp(model.HardpointMissile, 2), hp(model.HardpointAMS, 1)}),
			model.CenterTorso: component(model.CenterTorso, 12, 64, []model.Hardpoint{hp(model.HardpointEnergy, 1)}, gyro),
			model.RightTorso:  component(model.RightTorso, 12, 48, []model.Hardpoint{hp(model.HardpointBallistic, 1), hp(model.HardpointECM, 1)}),
			model.RightArm:    component(model.RightArm, 12, 32, []model.Hardpoint{hp(model.HardpointEnergy, 2)}, shoulder, armFixed),
			model.LeftLeg:     component(model.LeftLeg, 6, 48, nil, legFixed),
			model.RightLeg:    component(model.RightLeg, 6, 48, nil, legFixed),
		},
	}
}

// Omni returns a 55 ton omni chassis whose arms carry toggleable lower arm
// and hand actuators.
//
//	LA 12 slots (2 internal + LAA + HA), 1 ballistic, 1 energy
//	RA 12 slots (2 internal + LAA + HA), 1 ballistic
//	LT 12 slots, 1 missile, 1 ecm
//	RT 12 slots, 2 energy
//	CT 12 slots (4 internal), 1 energy
func Omni() *model.Chassis {
	arm := func(loc model.Location, hps ...model.Hardpoint) *model.Component {
		c := component(loc, 12, 34, hps, shoulder)
		c.Toggleables = []*model.Item{LowerArm, Hand}
		return c
	}
	return &model.Chassis{
		ID: "omni55", Name: "Omni 55", Series: "Fixture", MassMax: 55, Omni: true,
		EngineMin: 200, EngineMax: 400, JumpJetsMax: 4,
		Components: [model.LocationCount]*model.Component{
			model.Head:        component(model.Head, 6, 18, nil, cockpit),
			model.LeftArm:     arm(model.LeftArm, hp(model.HardpointBallistic, 1), hp(model.HardpointEnergy, 1)),
			model.LeftTorso:   component(model.LeftTorso, 12, 52, []model.Hardpoint{hp(model.HardpointMissile, 1), hp(model.HardpointECM, 1)}),
			model.CenterTorso: component(model.CenterTorso, 12, 70, []model.Hardpoint{hp(model.HardpointEnergy, 1)}, gyro),
			model.RightTorso:  component(model.RightTorso, 12, 52, []model.Hardpoint{hp(model.HardpointEnergy, 2)}),
			model.RightArm:    arm(model.RightArm, hp(model.HardpointBallistic, 1)),
			model.LeftLeg:     component(model.LeftLeg, 6, 52, nil, legFixed),
			model.RightLeg:    component(model.RightLeg, 6, 52, nil, legFixed),
		},
	}
}

// NewLoadout builds an empty loadout or fails the test.
func NewLoadout(t interface {
	Helper()
	Fatalf(string, ...interface{})
}, chassis *model.Chassis) *model.Loadout {
	t.Helper()
	l, err := model.NewLoadout(chassis, DefaultUpgrades())
	if err != nil {
		t.Fatalf("failed to create loadout: %v", err)
	}
	return l
}

// Lookup is an in-memory model.Lookup over the fixtures.
type Lookup struct {
	items    map[string]*model.Item
	chassis  map[string]*model.Chassis
	upgrades map[string]*model.Upgrade
}

// NewLookup returns a Lookup holding every fixture.
func NewLookup() *Lookup {
	l := &Lookup{
		items:    make(map[string]*model.Item),
		chassis:  make(map[string]*model.Chassis),
		upgrades: make(map[string]*model.Upgrade),
	}
	for _, it := range []*model.Item{
		MediumLaser, LargeLaser, PPC, AC20, AC5, MachineGun, Gauss, LRM10, SRM6, AMS, ECM, CASE, JumpJet,
		AC20Ammo, HalfAC5Ammo, SingleHeatSink, DoubleHeatSink, XLSide, LightSide,
		STD200, STD300, XL300, Light250, XL400, LowerArm, Hand,
	} {
		l.items[it.ID] = it
	}
	for _, c := range []*model.Chassis{Standard(), Omni()} {
		l.chassis[c.ID] = c
	}
	for _, u := range []*model.Upgrade{
		StandardArmor, FerroArmor, StealthArmor, StandardStructure, EndoStructure,
		SingleHeatSinks, DoubleHeatSinks, StandardGuidance, Artemis,
	} {
		l.upgrades[u.ID] = u
	}
	return l
}

// Item implements model.ItemLookup.
func (l *Lookup) Item(id string) (*model.Item, error) {
	if it, ok := l.items[id]; ok {
		return it, nil
	}
	return nil, model.NewLookupError("item", id)
}

// Chassis implements model.ChassisLookup.
func (l *Lookup) Chassis(id string) (*model.Chassis, error) {
	if c, ok := l.chassis[id]; ok {
		return c, nil
	}
	return nil, model.NewLookupError("chassis", id)
}

// Upgrade implements model.UpgradeLookup.
func (l *Lookup) Upgrade(id string) (*model.Upgrade, error) {
	if u, ok := l.upgrades[id]; ok {
		return u, nil
	}
	return nil, model.NewLookupError("upgrade", id)
}

// DefaultUpgrades returns the stock upgrade selection.
func (l *Lookup) DefaultUpgrades() model.Upgrades {
	return DefaultUpgrades()
}

// ItemIDs lists the known item ids in sorted order.
func (l *Lookup) ItemIDs() []string {
	ids := make([]string, 0, len(l.items))
	for id := range l.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MustItem returns the fixture item with id or panics.
func (l *Lookup) MustItem(id string) *model.Item {
	it, err := l.Item(id)
	if err != nil {
		panic(fmt.Sprintf("modeltest: %v", err))
	}
	return it
}
