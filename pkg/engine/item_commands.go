package engine

import (
	"fmt"

	"github.com/mechforge/mechforge/pkg/model"
)

// placement records where an item was inserted or removed so the inverse
// operation restores the exact order.
type placement struct {
	loc   model.Location
	item  *model.Item
	index int
}

// AddItem equips an item into a component. Engines bring their side items
// into both side torsos, and large bore weapons on omni arms switch the
// lower arm actuator (and with it the hand actuator) off first.
type AddItem struct {
	loadout *model.Loadout
	loc     model.Location
	item    *model.Item
	sink    Sink

	toggles []Command
	added   []placement
}

// NewAddItem builds an add command. It fails immediately for internal items.
func NewAddItem(l *model.Loadout, loc model.Location, item *model.Item, sink Sink) (*AddItem, error) {
	if err := checkItemArgs(l, loc, item, "add"); err != nil {
		return nil, err
	}
	return &AddItem{loadout: l, loc: loc, item: item, sink: sinkOrDiscard(sink)}, nil
}

func checkItemArgs(l *model.Loadout, loc model.Location, item *model.Item, op string) error {
	if l == nil || item == nil {
		return model.NewProgrammerError("loadout and item are required").WithOperation(op)
	}
	if !loc.Valid() {
		return model.NewProgrammerError(fmt.Sprintf("invalid location %d", int(loc))).WithOperation(op)
	}
	if item.IsInternal() {
		return model.NewProgrammerError("internal items cannot be edited").WithOperation(op).WithResource(item.ID)
	}
	return nil
}

// Apply implements Command.
func (c *AddItem) Apply() error {
	if c.added != nil {
		return model.NewProgrammerError("command already applied").WithOperation("add")
	}
	l := c.loadout
	if r := l.CanEquip(c.loc, c.item); !r.IsSuccess() {
		return r.Err()
	}

	c.toggles = nil
	comp := l.Component(c.loc)
	if c.item.Is(model.TraitLargeBore) && comp.ActuatorOn(model.ActuatorLowerArm) {
		tog, err := NewToggleItem(l, c.loc, comp.Def().Toggleable(model.ActuatorLowerArm), false, c.sink)
		if err != nil {
			return err
		}
		if err := tog.Apply(); err != nil {
			return err
		}
		c.toggles = append(c.toggles, tog)
	}

	added := []placement{{c.loc, c.item, comp.AddItem(c.item)}}
	if c.item.Kind == model.KindEngine && c.item.Engine.Side != nil {
		side := c.item.Engine.Side
		for _, loc := range []model.Location{model.LeftTorso, model.RightTorso} {
			added = append(added, placement{loc, side, l.Component(loc).AddItem(side)})
		}
	}
	c.added = added

	for _, p := range added {
		c.sink.Emit(itemEvent(EventItemAdded, l, p.loc, p.item, p.index))
	}
	for _, w := range addWarnings(l, c.loc, c.item) {
		c.sink.Emit(w)
	}
	return nil
}

// Undo implements Command.
func (c *AddItem) Undo() {
	l := c.loadout
	for i := len(c.added) - 1; i >= 0; i-- {
		p := c.added[i]
		l.Component(p.loc).RemoveItemAt(p.index)
		c.sink.Emit(itemEvent(EventItemRemoved, l, p.loc, p.item, p.index))
	}
	c.added = nil
	undoAll(c.toggles)
	c.toggles = nil
}

// Describe implements Command.
func (c *AddItem) Describe() string {
	return fmt.Sprintf("add %s to %s", c.item, c.loc.LongName())
}

// Key implements Command. Item edits never coalesce.
func (c *AddItem) Key() CoalesceKey { return CoalesceKey{} }

// Kind implements Kinded.
func (c *AddItem) Kind() CommandKind { return KindAdd }

// Index returns the position the item took in its component.
func (c *AddItem) Index() int {
	if len(c.added) == 0 {
		return -1
	}
	return c.added[0].index
}

// addWarnings returns advisories raised by adding item. They never block.
func addWarnings(l *model.Loadout, loc model.Location, item *model.Item) []Event {
	var out []Event
	engine := l.Engine()
	xl := engine != nil && engine.Engine.Type == model.EngineXL
	switch {
	case item.Is(model.TraitCASE) && xl:
		out = append(out, warning(l, loc, item, "C.A.S.E. does not protect side torsos holding an XL engine"))
	case item.Kind == model.KindEngine && xl && l.CountTrait(model.TraitCASE) > 0:
		out = append(out, warning(l, loc, item, "C.A.S.E. does not protect side torsos holding an XL engine"))
	}
	if item.Is(model.TraitGauss) {
		if n := l.CountTrait(model.TraitGauss); n > 2 {
			out = append(out, warning(l, loc, item, fmt.Sprintf("only two gauss rifles can charge at once, %d equipped", n)))
		}
	}
	return out
}

// RemoveItem unequips an item from a component. Removing an engine also
// removes its side items and the heat sinks it absorbed.
type RemoveItem struct {
	loadout *model.Loadout
	loc     model.Location
	item    *model.Item
	sink    Sink

	removed []placement
}

// NewRemoveItem builds a remove command. It fails immediately for internal
// items.
func NewRemoveItem(l *model.Loadout, loc model.Location, item *model.Item, sink Sink) (*RemoveItem, error) {
	if err := checkItemArgs(l, loc, item, "remove"); err != nil {
		return nil, err
	}
	return &RemoveItem{loadout: l, loc: loc, item: item, sink: sinkOrDiscard(sink)}, nil
}

// Apply implements Command.
func (c *RemoveItem) Apply() error {
	if c.removed != nil {
		return model.NewProgrammerError("command already applied").WithOperation("remove")
	}
	l := c.loadout
	if r := l.CanRemove(c.loc, c.item); !r.IsSuccess() {
		return r.Err()
	}

	comp := l.Component(c.loc)
	var removed []placement
	if c.item.Kind == model.KindEngine {
		for n := comp.EngineHeatSinks(); n > 0; n-- {
			idx := lastHeatSink(comp)
			removed = append(removed, placement{c.loc, comp.RemoveItemAt(idx), idx})
		}
	}
	idx := comp.LastIndexOf(c.item)
	removed = append(removed, placement{c.loc, comp.RemoveItemAt(idx), idx})
	if c.item.Kind == model.KindEngine && c.item.Engine.Side != nil {
		side := c.item.Engine.Side
		for _, loc := range []model.Location{model.LeftTorso, model.RightTorso} {
			sc := l.Component(loc)
			sidx := sc.LastIndexOf(side)
			if sidx < 0 {
				c.restore(removed)
				return model.NewInternalError(fmt.Sprintf("engine side missing from %s", loc), nil)
			}
			removed = append(removed, placement{loc, sc.RemoveItemAt(sidx), sidx})
		}
	}
	c.removed = removed

	for _, p := range removed {
		c.sink.Emit(itemEvent(EventItemRemoved, l, p.loc, p.item, p.index))
	}
	return nil
}

func lastHeatSink(c *model.ConfiguredComponent) int {
	for i := c.Len() - 1; i >= 0; i-- {
		if c.ItemAt(i).Kind == model.KindHeatSink {
			return i
		}
	}
	return -1
}

func (c *RemoveItem) restore(removed []placement) {
	for i := len(removed) - 1; i >= 0; i-- {
		p := removed[i]
		c.loadout.Component(p.loc).InsertItem(p.index, p.item)
	}
}

// Undo implements Command.
func (c *RemoveItem) Undo() {
	c.restore(c.removed)
	for i := len(c.removed) - 1; i >= 0; i-- {
		p := c.removed[i]
		c.sink.Emit(itemEvent(EventItemAdded, c.loadout, p.loc, p.item, p.index))
	}
	c.removed = nil
}

// Describe implements Command.
func (c *RemoveItem) Describe() string {
	return fmt.Sprintf("remove %s from %s", c.item, c.loc.LongName())
}

// Key implements Command.
func (c *RemoveItem) Key() CoalesceKey { return CoalesceKey{} }

// Kind implements Kinded.
func (c *RemoveItem) Kind() CommandKind { return KindRemove }

// Index returns the position the item had before removal.
func (c *RemoveItem) Index() int {
	for _, p := range c.removed {
		if p.item.ID == c.item.ID {
			return p.index
		}
	}
	return -1
}

// NewMoveItem moves an item between components as one undoable step.
func NewMoveItem(l *model.Loadout, from, to model.Location, item *model.Item, sink Sink) (*Composite, error) {
	g := newGate(sink)
	rm, err := NewRemoveItem(l, from, item, g)
	if err != nil {
		return nil, err
	}
	add, err := NewAddItem(l, to, item, g)
	if err != nil {
		return nil, err
	}
	c := NewComposite(fmt.Sprintf("move %s from %s to %s", item, from.LongName(), to.LongName()), rm, add)
	c.kind = KindMove
	c.gate = g
	return c, nil
}
