package engine

import (
	"fmt"

	"github.com/mechforge/mechforge/pkg/model"
)

// ToggleItem switches a toggleable actuator of an omni component. The
// actuators follow OFF -> LAA -> LAA+HA: switching the lower arm actuator
// off first switches the hand actuator off as a nested step.
type ToggleItem struct {
	loadout *model.Loadout
	loc     model.Location
	item    *model.Item
	on      bool
	sink    Sink

	nested  []Command
	changed bool
	applied bool
}

// NewToggleItem builds a toggle command. It fails immediately if item is not
// a toggleable of the component at loc.
func NewToggleItem(l *model.Loadout, loc model.Location, item *model.Item, on bool, sink Sink) (*ToggleItem, error) {
	if l == nil || item == nil {
		return nil, model.NewProgrammerError("loadout and item are required").WithOperation("toggle")
	}
	if !loc.Valid() || !l.Component(loc).Def().IsToggleable(item) {
		return nil, model.NewProgrammerError(fmt.Sprintf("%s is not toggleable in %s", item.ID, loc)).
			WithOperation("toggle").WithResource(item.ID)
	}
	return &ToggleItem{loadout: l, loc: loc, item: item, on: on, sink: sinkOrDiscard(sink)}, nil
}

// Apply implements Command. Toggling to the current state succeeds without
// mutating anything or emitting notifications.
func (c *ToggleItem) Apply() error {
	if c.applied {
		return model.NewProgrammerError("command already applied").WithOperation("toggle")
	}
	comp := c.loadout.Component(c.loc)
	c.nested = nil
	c.changed = false

	if comp.ToggleState(c.item) == c.on {
		c.applied = true
		return nil
	}

	if c.on {
		if r := c.loadout.CanToggleOn(c.loc, c.item); !r.IsSuccess() {
			return r.Err()
		}
	} else if c.item.Actuator == model.ActuatorLowerArm && comp.ActuatorOn(model.ActuatorHand) {
		hand, err := NewToggleItem(c.loadout, c.loc, comp.Def().Toggleable(model.ActuatorHand), false, c.sink)
		if err != nil {
			return err
		}
		if err := hand.Apply(); err != nil {
			return err
		}
		c.nested = append(c.nested, hand)
	}

	comp.SetToggleState(c.item, c.on)
	c.changed = true
	c.applied = true
	c.sink.Emit(c.event(c.on))
	return nil
}

// Undo implements Command.
func (c *ToggleItem) Undo() {
	if c.changed {
		c.loadout.Component(c.loc).SetToggleState(c.item, !c.on)
		c.sink.Emit(c.event(!c.on))
	}
	undoAll(c.nested)
	c.nested = nil
	c.changed = false
	c.applied = false
}

func (c *ToggleItem) event(on bool) Event {
	return Event{
		Type: EventToggleChanged, Loadout: c.loadout.ID, Location: c.loc,
		Item: c.item, On: on, Level: LevelInfo,
	}
}

// Describe implements Command.
func (c *ToggleItem) Describe() string {
	state := "off"
	if c.on {
		state = "on"
	}
	return fmt.Sprintf("change %s in %s to %s", c.item, c.loc.LongName(), state)
}

// Key implements Command.
func (c *ToggleItem) Key() CoalesceKey { return CoalesceKey{} }

// Kind implements Kinded.
func (c *ToggleItem) Kind() CommandKind { return KindToggle }

// Changed reports whether the last Apply mutated state.
func (c *ToggleItem) Changed() bool { return c.changed }
