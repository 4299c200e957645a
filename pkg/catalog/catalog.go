package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mechforge/mechforge/pkg/model"
)

//go:embed builtin.yaml
var builtinYAML []byte

// BuiltinSource is the source name of the embedded catalog.
const BuiltinSource = "builtin"

// Catalog is the reference data: items, chassis and upgrades by id. It
// implements model.Lookup and is safe for concurrent readers. Reload swaps
// the contents atomically; loadouts built before a reload keep pointing at
// the definitions they were built from.
type Catalog struct {
	mu       sync.RWMutex
	source   string
	doc      *Document
	items    map[string]*model.Item
	chassis  map[string]*model.Chassis
	upgrades map[string]*model.Upgrade
	defaults model.Upgrades
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	c, err := Parse(data, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Builtin returns the catalog compiled into the binary.
func Builtin() *Catalog {
	c, err := Parse(builtinYAML, BuiltinSource)
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid builtin catalog: %v", err))
	}
	return c
}

// Parse decodes, validates and cross references a catalog document.
func Parse(data []byte, source string) (*Catalog, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	return Build(&doc, source)
}

// Build validates doc and resolves every cross reference.
func Build(doc *Document, source string) (*Catalog, error) {
	c := &Catalog{}
	if err := c.build(doc, source); err != nil {
		return nil, err
	}
	return c, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("location", func(fl validator.FieldLevel) bool {
		_, err := model.ParseLocation(fl.Field().String())
		return err == nil
	})
	return v
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation failed: %w", err)
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		errs = append(errs, fmt.Errorf("%s: failed %s validation", path, fe.Tag()))
	}
	return errors.Join(errs...)
}

func (c *Catalog) build(doc *Document, source string) error {
	if err := validate.Struct(doc); err != nil {
		return validationError(err)
	}

	items, err := buildItems(doc.Items)
	if err != nil {
		return err
	}
	upgrades, err := buildUpgrades(doc.Upgrades, items)
	if err != nil {
		return err
	}
	chassis, err := buildChassis(doc.Chassis, items)
	if err != nil {
		return err
	}
	defaults, err := buildDefaults(doc.Defaults, upgrades)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = source
	c.doc = doc
	c.items = items
	c.upgrades = upgrades
	c.chassis = chassis
	c.defaults = defaults
	return nil
}

func buildItems(defs []ItemDef) (map[string]*model.Item, error) {
	items := make(map[string]*model.Item, len(defs))
	for _, d := range defs {
		if _, dup := items[d.ID]; dup {
			return nil, fmt.Errorf("duplicate item %s", d.ID)
		}
		it := &model.Item{
			ID:            d.ID,
			Name:          d.Name,
			Kind:          model.ItemKind(d.Kind),
			Hardpoint:     model.HardpointType(d.Hardpoint),
			Slots:         d.Slots,
			Mass:          d.Mass,
			MaxPerLoadout: d.MaxPerLoadout,
			AmmoType:      d.AmmoType,
		}
		for _, name := range d.Traits {
			t, err := model.ParseTrait(name)
			if err != nil {
				return nil, fmt.Errorf("item %s: %w", d.ID, err)
			}
			it.Traits = it.Traits.With(t)
		}
		for _, name := range d.Locations {
			loc, err := model.ParseLocation(name)
			if err != nil {
				return nil, fmt.Errorf("item %s: %w", d.ID, err)
			}
			it.Locations = append(it.Locations, loc)
		}
		switch it.Kind {
		case model.KindEngine:
			if d.Engine != nil {
				it.Engine = &model.EngineSpec{Rating: d.Engine.Rating, Type: model.EngineType(d.Engine.Type)}
			}
		case model.KindHeatSink:
			if d.HeatSink != nil {
				it.HeatSink = &model.HeatSinkSpec{Type: model.HeatSinkType(d.HeatSink.Type), Dissipation: d.HeatSink.Dissipation}
			}
		case model.KindActuator:
			it.Actuator = model.ActuatorType(d.Actuator)
		}
		items[d.ID] = it
	}

	// engine side items refer to other items
	for _, d := range defs {
		it := items[d.ID]
		if it.Engine == nil || d.Engine.Side == "" {
			continue
		}
		side, ok := items[d.Engine.Side]
		if !ok {
			return nil, fmt.Errorf("engine %s: unknown side item %s", d.ID, d.Engine.Side)
		}
		it.Engine.Side = side
	}
	for _, d := range defs {
		if err := items[d.ID].Validate(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func buildUpgrades(defs []UpgradeDef, items map[string]*model.Item) (map[string]*model.Upgrade, error) {
	upgrades := make(map[string]*model.Upgrade, len(defs))
	for _, d := range defs {
		if _, dup := upgrades[d.ID]; dup {
			return nil, fmt.Errorf("duplicate upgrade %s", d.ID)
		}
		u := &model.Upgrade{
			ID:   d.ID,
			Name: d.Name,
			Type: model.UpgradeType(d.Type),
		}
		switch u.Type {
		case model.UpgradeArmor:
			u.ArmorPerTon = d.ArmorPerTon
			u.RequiresECM = d.RequiresECM
		case model.UpgradeStructure:
			u.StructureFactor = d.StructureFactor
		case model.UpgradeHeatSink:
			u.HeatSinkType = model.HeatSinkType(d.HeatSinkType)
			if d.HeatSinkItem != "" {
				it, ok := items[d.HeatSinkItem]
				if !ok {
					return nil, fmt.Errorf("upgrade %s: unknown heat sink item %s", d.ID, d.HeatSinkItem)
				}
				if it.HeatSink == nil || it.HeatSink.Type != u.HeatSinkType {
					return nil, fmt.Errorf("upgrade %s: item %s is not a %s heat sink", d.ID, it.ID, u.HeatSinkType)
				}
				u.HeatSinkItem = it
			}
		case model.UpgradeGuidance:
			u.ExtraSlots = d.ExtraSlots
			u.ExtraMass = d.ExtraMass
		}
		if err := u.Validate(); err != nil {
			return nil, err
		}
		upgrades[d.ID] = u
	}
	return upgrades, nil
}

func buildChassis(defs []ChassisDef, items map[string]*model.Item) (map[string]*model.Chassis, error) {
	out := make(map[string]*model.Chassis, len(defs))
	for _, d := range defs {
		if _, dup := out[d.ID]; dup {
			return nil, fmt.Errorf("duplicate chassis %s", d.ID)
		}
		ch := &model.Chassis{
			ID:          d.ID,
			Name:        d.Name,
			Series:      d.Series,
			MassMax:     d.Mass,
			Omni:        d.Omni,
			EngineMin:   d.EngineMin,
			EngineMax:   d.EngineMax,
			JumpJetsMax: d.JumpJetsMax,
		}
		for name, cd := range d.Components {
			loc, err := model.ParseLocation(name)
			if err != nil {
				return nil, fmt.Errorf("chassis %s: %w", d.ID, err)
			}
			if ch.Components[loc] != nil {
				return nil, fmt.Errorf("chassis %s: component %s defined twice", d.ID, loc)
			}
			comp, err := buildComponent(loc, cd, items)
			if err != nil {
				return nil, fmt.Errorf("chassis %s: %w", d.ID, err)
			}
			ch.Components[loc] = comp
		}
		if err := ch.Validate(); err != nil {
			return nil, err
		}
		out[d.ID] = ch
	}
	return out, nil
}

func buildComponent(loc model.Location, d ComponentDef, items map[string]*model.Item) (*model.Component, error) {
	comp := &model.Component{Location: loc, Slots: d.Slots, MaxArmor: d.Armor}

	types := make([]string, 0, len(d.Hardpoints))
	for t := range d.Hardpoints {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		comp.Hardpoints = append(comp.Hardpoints, model.Hardpoint{Type: model.HardpointType(t), Count: d.Hardpoints[t]})
	}

	for _, id := range d.Internals {
		it, ok := items[id]
		if !ok {
			return nil, fmt.Errorf("%s: unknown internal item %s", loc, id)
		}
		if !it.IsInternal() {
			return nil, fmt.Errorf("%s: item %s is not internal", loc, id)
		}
		comp.Internals = append(comp.Internals, it)
	}
	for _, id := range d.Toggleables {
		it, ok := items[id]
		if !ok {
			return nil, fmt.Errorf("%s: unknown toggleable item %s", loc, id)
		}
		if it.Kind != model.KindActuator {
			return nil, fmt.Errorf("%s: item %s is not an actuator", loc, id)
		}
		if !loc.IsArm() {
			return nil, fmt.Errorf("%s: actuators can only be toggled on arms", loc)
		}
		comp.Toggleables = append(comp.Toggleables, it)
	}
	return comp, nil
}

func buildDefaults(d DefaultsDef, upgrades map[string]*model.Upgrade) (model.Upgrades, error) {
	var up model.Upgrades
	for _, ref := range []struct {
		id  string
		typ model.UpgradeType
	}{
		{d.Armor, model.UpgradeArmor},
		{d.Structure, model.UpgradeStructure},
		{d.HeatSink, model.UpgradeHeatSink},
		{d.Guidance, model.UpgradeGuidance},
	} {
		if ref.id == "" {
			continue
		}
		u, ok := upgrades[ref.id]
		if !ok {
			return up, fmt.Errorf("defaults: unknown upgrade %s", ref.id)
		}
		if u.Type != ref.typ {
			return up, fmt.Errorf("defaults: %s is a %s upgrade, expected %s", u.ID, u.Type, ref.typ)
		}
		up = up.With(u)
	}
	if err := up.Validate(); err != nil {
		return up, fmt.Errorf("defaults: %w", err)
	}
	return up, nil
}

// Reload replaces the contents with the catalog at path. On error the
// current contents are kept.
func (c *Catalog) Reload(path string) error {
	next, err := Load(path)
	if err != nil {
		return err
	}
	next.mu.RLock()
	defer next.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = next.source
	c.doc = next.doc
	c.items = next.items
	c.upgrades = next.upgrades
	c.chassis = next.chassis
	c.defaults = next.defaults
	return nil
}

// Source names where the catalog was loaded from.
func (c *Catalog) Source() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

// Item implements model.ItemLookup.
func (c *Catalog) Item(id string) (*model.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if it, ok := c.items[id]; ok {
		return it, nil
	}
	return nil, model.NewLookupError("item", id)
}

// Chassis implements model.ChassisLookup.
func (c *Catalog) Chassis(id string) (*model.Chassis, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if ch, ok := c.chassis[id]; ok {
		return ch, nil
	}
	return nil, model.NewLookupError("chassis", id)
}

// Upgrade implements model.UpgradeLookup.
func (c *Catalog) Upgrade(id string) (*model.Upgrade, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if u, ok := c.upgrades[id]; ok {
		return u, nil
	}
	return nil, model.NewLookupError("upgrade", id)
}

// DefaultUpgrades returns the upgrade selection new loadouts start with.
func (c *Catalog) DefaultUpgrades() model.Upgrades {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaults
}

// Items lists the items sorted by id.
func (c *Catalog) Items() []*model.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*model.Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ChassisList lists the chassis sorted by id.
func (c *Catalog) ChassisList() []*model.Chassis {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*model.Chassis, 0, len(c.chassis))
	for _, ch := range c.chassis {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Upgrades lists the upgrades sorted by id.
func (c *Catalog) Upgrades() []*model.Upgrade {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*model.Upgrade, 0, len(c.upgrades))
	for _, u := range c.upgrades {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Counts returns the number of items, chassis and upgrades.
func (c *Catalog) Counts() (items, chassis, upgrades int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items), len(c.chassis), len(c.upgrades)
}

// NewLoadout creates an empty loadout for the chassis with the default
// upgrades.
func (c *Catalog) NewLoadout(chassisID string) (*model.Loadout, error) {
	ch, err := c.Chassis(chassisID)
	if err != nil {
		return nil, err
	}
	return model.NewLoadout(ch, c.DefaultUpgrades())
}
