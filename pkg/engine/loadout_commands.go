package engine

import (
	"fmt"
	"strings"

	"github.com/mechforge/mechforge/pkg/model"
)

// Rename changes the display name of a loadout.
type Rename struct {
	loadout *model.Loadout
	name    string
	sink    Sink
	old     string
	applied bool
}

// NewRename builds a rename command. Blank names are rejected.
func NewRename(l *model.Loadout, name string, sink Sink) (*Rename, error) {
	if l == nil {
		return nil, model.NewProgrammerError("loadout is required").WithOperation("rename")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewProgrammerError("name must not be blank").WithOperation("rename")
	}
	return &Rename{loadout: l, name: name, sink: sinkOrDiscard(sink)}, nil
}

// Apply implements Command.
func (c *Rename) Apply() error {
	if c.applied {
		return model.NewProgrammerError("command already applied").WithOperation("rename")
	}
	c.old = c.loadout.Name
	c.loadout.Name = c.name
	c.applied = true
	c.sink.Emit(Event{Type: EventRenamed, Loadout: c.loadout.ID, Name: c.name, Level: LevelInfo})
	return nil
}

// Undo implements Command.
func (c *Rename) Undo() {
	c.loadout.Name = c.old
	c.applied = false
	c.sink.Emit(Event{Type: EventRenamed, Loadout: c.loadout.ID, Name: c.old, Level: LevelInfo})
}

// Describe implements Command.
func (c *Rename) Describe() string {
	return fmt.Sprintf("rename loadout to %q", c.name)
}

// Key implements Command. Renames of one loadout coalesce so typing a name
// is a single undo step.
func (c *Rename) Key() CoalesceKey {
	return CoalesceKey{Kind: KindRename, Loadout: c.loadout.ID}
}

// Kind implements Kinded.
func (c *Rename) Kind() CommandKind { return KindRename }

// ChangeUpgrade selects an armor, structure, heat sink or guidance upgrade.
// A heat sink change replaces every equipped heat sink with the new type's
// heat sink in the same component; replacements that no longer fit are
// dropped with a warning.
type ChangeUpgrade struct {
	loadout *model.Loadout
	upgrade *model.Upgrade
	sink    Sink

	old     *model.Upgrade
	removed []Command
	added   []Command
	changed bool
	applied bool
}

// NewChangeUpgrade builds an upgrade command. It fails immediately for an
// invalid upgrade definition.
func NewChangeUpgrade(l *model.Loadout, up *model.Upgrade, sink Sink) (*ChangeUpgrade, error) {
	if l == nil || up == nil {
		return nil, model.NewProgrammerError("loadout and upgrade are required").WithOperation("change_upgrade")
	}
	if err := up.Validate(); err != nil {
		return nil, model.NewProgrammerError(err.Error()).WithOperation("change_upgrade").WithResource(up.ID)
	}
	return &ChangeUpgrade{loadout: l, upgrade: up, sink: sinkOrDiscard(sink)}, nil
}

// Apply implements Command.
func (c *ChangeUpgrade) Apply() error {
	if c.applied {
		return model.NewProgrammerError("command already applied").WithOperation("change_upgrade")
	}
	l := c.loadout
	c.old = l.Upgrades.Get(c.upgrade.Type)
	c.removed, c.added, c.changed = nil, nil, false
	if c.old != nil && c.old.ID == c.upgrade.ID {
		c.applied = true
		return nil
	}

	if c.upgrade.Type != model.UpgradeHeatSink {
		if r := l.CanChangeUpgrades(l.Upgrades.With(c.upgrade)); !r.IsSuccess() {
			return r.Err()
		}
		l.Upgrades = l.Upgrades.With(c.upgrade)
		c.changed, c.applied = true, true
		c.sink.Emit(c.event(c.upgrade))
		return nil
	}

	var homes []model.Location
	for _, comp := range l.Components() {
		for _, it := range comp.Items() {
			if it.Kind != model.KindHeatSink {
				continue
			}
			rm, err := NewRemoveItem(l, comp.Location(), it, c.sink)
			if err != nil {
				return err
			}
			if err := rm.Apply(); err != nil {
				undoAll(c.removed)
				c.removed = nil
				return err
			}
			c.removed = append(c.removed, rm)
			homes = append(homes, comp.Location())
		}
	}

	l.Upgrades = l.Upgrades.With(c.upgrade)
	c.changed = true
	c.sink.Emit(c.event(c.upgrade))

	dropped := 0
	for _, loc := range homes {
		add, err := NewAddItem(l, loc, c.upgrade.HeatSinkItem, c.sink)
		if err == nil && add.Apply() == nil {
			c.added = append(c.added, add)
			continue
		}
		dropped++
	}
	if dropped > 0 {
		c.sink.Emit(warning(l, model.CenterTorso, c.upgrade.HeatSinkItem,
			fmt.Sprintf("%d heat sinks did not fit and were removed", dropped)))
	}
	c.applied = true
	return nil
}

// Undo implements Command.
func (c *ChangeUpgrade) Undo() {
	undoAll(c.added)
	if c.changed {
		c.loadout.Upgrades = c.loadout.Upgrades.With(c.old)
		c.sink.Emit(c.event(c.old))
	}
	undoAll(c.removed)
	c.added, c.removed = nil, nil
	c.changed, c.applied = false, false
}

func (c *ChangeUpgrade) event(up *model.Upgrade) Event {
	return Event{Type: EventUpgradeChanged, Loadout: c.loadout.ID, Upgrade: up, Level: LevelInfo}
}

// Describe implements Command.
func (c *ChangeUpgrade) Describe() string {
	return fmt.Sprintf("change %s upgrade to %s", strings.ReplaceAll(string(c.upgrade.Type), "_", " "), c.upgrade)
}

// Key implements Command.
func (c *ChangeUpgrade) Key() CoalesceKey { return CoalesceKey{} }

// Kind implements Kinded.
func (c *ChangeUpgrade) Kind() CommandKind { return KindChangeUpgrade }

// NewStripEquipment removes every equipped item. The engine goes last so
// its absorbed heat sinks are removed individually first. The last ECM is
// kept while the armor upgrade depends on it.
func NewStripEquipment(l *model.Loadout, sink Sink) (Command, error) {
	if l == nil {
		return nil, model.NewProgrammerError("loadout is required").WithOperation("strip")
	}
	g := newGate(sink)
	sink = g
	b := &batch{kind: KindStrip, description: "remove all equipment", gate: g}
	b.build = func() ([]Command, error) {
		var cmds []Command
		var engine *model.Item
		keepECM := l.Upgrades.Armor.RequiresECM
		for _, comp := range l.Components() {
			items := comp.Items()
			for i := len(items) - 1; i >= 0; i-- {
				it := items[i]
				switch {
				case it.IsInternal():
					continue
				case it.Kind == model.KindEngine:
					engine = it
					continue
				case it.Is(model.TraitECM) && keepECM:
					keepECM = false
					continue
				}
				rm, err := NewRemoveItem(l, comp.Location(), it, sink)
				if err != nil {
					return nil, err
				}
				cmds = append(cmds, rm)
			}
		}
		if engine != nil {
			rm, err := NewRemoveItem(l, model.CenterTorso, engine, sink)
			if err != nil {
				return nil, err
			}
			cmds = append(cmds, rm)
		}
		return cmds, nil
	}
	return b, nil
}

// NewStripArmor sets every armor side to zero and clears manual flags.
func NewStripArmor(l *model.Loadout, sink Sink) (Command, error) {
	if l == nil {
		return nil, model.NewProgrammerError("loadout is required").WithOperation("strip")
	}
	g := newGate(sink)
	sink = g
	b := &batch{kind: KindStrip, description: "remove all armor", gate: g}
	b.build = func() ([]Command, error) {
		var targets []armorTarget
		for _, loc := range model.Locations {
			for _, side := range loc.Sides() {
				targets = append(targets, armorTarget{loc, side, 0})
			}
		}
		return armorCommands(l, targets, false, sink)
	}
	return b, nil
}

// NewStrip removes all equipment and armor as one undoable step.
func NewStrip(l *model.Loadout, sink Sink) (Command, error) {
	g := newGate(sink)
	eq, err := NewStripEquipment(l, g)
	if err != nil {
		return nil, err
	}
	ar, err := NewStripArmor(l, g)
	if err != nil {
		return nil, err
	}
	c := NewComposite("remove all equipment and armor", eq, ar)
	c.kind = KindStrip
	c.gate = g
	return c, nil
}
