package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mechforge/mechforge/pkg/model"
	"github.com/mechforge/mechforge/pkg/telemetry"
)

// EventType identifies a change notification.
type EventType string

const (
	EventItemAdded      EventType = "item.added"
	EventItemRemoved    EventType = "item.removed"
	EventArmorChanged   EventType = "armor.changed"
	EventToggleChanged  EventType = "toggle.changed"
	EventUpgradeChanged EventType = "upgrade.changed"
	EventRenamed        EventType = "loadout.renamed"
	EventWarning        EventType = "warning"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Event is a change notification emitted by a command after it mutated the
// loadout. Only the fields relevant to Type are set.
type Event struct {
	Type     EventType
	Loadout  uuid.UUID
	Location model.Location
	Item     *model.Item

	// Index is the position of the item in its component after an add, or
	// before a remove.
	Index int

	Side   model.ArmorSide
	Armor  int
	Manual bool
	On     bool

	Upgrade *model.Upgrade
	Name    string

	Level   Level
	Message string
}

func (e Event) String() string {
	switch e.Type {
	case EventItemAdded, EventItemRemoved:
		return fmt.Sprintf("%s %s@%s[%d]", e.Type, e.Item.ID, e.Location, e.Index)
	case EventArmorChanged:
		return fmt.Sprintf("%s %s/%s=%d manual=%t", e.Type, e.Location, e.Side, e.Armor, e.Manual)
	case EventToggleChanged:
		return fmt.Sprintf("%s %s@%s on=%t", e.Type, e.Item.ID, e.Location, e.On)
	case EventUpgradeChanged:
		return fmt.Sprintf("%s %s", e.Type, e.Upgrade.ID)
	case EventRenamed:
		return fmt.Sprintf("%s %q", e.Type, e.Name)
	default:
		return fmt.Sprintf("%s %s: %s", e.Type, e.Level, e.Message)
	}
}

// Sink receives change notifications in mutation order.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

// Emit implements Sink.
func (f SinkFunc) Emit(e Event) {
	f(e)
}

type discard struct{}

func (discard) Emit(Event) {}

// Discard drops every notification. The resolver uses it for tentative
// steps.
var Discard Sink = discard{}

func sinkOrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// gate holds the notifications of a grouped command while it applies. They
// reach the sink only when every step succeeded; the steps and rollback of
// a failed apply are dropped. Holds nest: an inner group's notifications
// wait for the outermost group.
type gate struct {
	sink    Sink
	holds   int
	pending []Event
}

func newGate(s Sink) *gate {
	return &gate{sink: sinkOrDiscard(s)}
}

// Emit implements Sink.
func (g *gate) Emit(e Event) {
	if g.holds > 0 {
		g.pending = append(g.pending, e)
		return
	}
	g.sink.Emit(e)
}

// hold starts buffering and returns the mark to release.
func (g *gate) hold() int {
	g.holds++
	return len(g.pending)
}

// release ends a hold. Without commit the notifications buffered since mark
// are dropped.
func (g *gate) release(mark int, commit bool) {
	if !commit {
		clear(g.pending[mark:])
		g.pending = g.pending[:mark]
	}
	g.holds--
	if g.holds > 0 {
		return
	}
	pending := g.pending
	g.pending = nil
	for _, e := range pending {
		g.sink.Emit(e)
	}
}

// Multi fans notifications out to several sinks in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(e Event) {
		for _, s := range sinks {
			if s != nil {
				s.Emit(e)
			}
		}
	})
}

// Recorder collects notifications.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements Sink.
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded notifications.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Strings renders the recorded notifications with Event.String.
func (r *Recorder) Strings() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.String()
	}
	return out
}

// Reset drops the recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// PublisherSink forwards notifications to a telemetry event publisher.
func PublisherSink(p *telemetry.EventPublisher) Sink {
	return SinkFunc(func(e Event) {
		level := telemetry.EventLevelInfo
		if e.Level == LevelWarning {
			level = telemetry.EventLevelWarning
		}
		data := map[string]interface{}{
			"location": e.Location.String(),
		}
		if e.Item != nil {
			data["item"] = e.Item.ID
			data["index"] = e.Index
		}
		switch e.Type {
		case EventArmorChanged:
			data["side"] = e.Side.String()
			data["armor"] = e.Armor
			data["manual"] = e.Manual
		case EventToggleChanged:
			data["on"] = e.On
		case EventUpgradeChanged:
			data["upgrade"] = e.Upgrade.ID
		case EventRenamed:
			data["name"] = e.Name
		}
		_ = p.Publish(telemetry.Event{
			Type:      string(e.Type),
			Source:    "engine",
			LoadoutID: e.Loadout.String(),
			Message:   e.String(),
			Level:     level,
			Data:      data,
		})
	})
}

func itemEvent(t EventType, l *model.Loadout, loc model.Location, item *model.Item, idx int) Event {
	return Event{Type: t, Loadout: l.ID, Location: loc, Item: item, Index: idx, Level: LevelInfo}
}

func warning(l *model.Loadout, loc model.Location, item *model.Item, msg string) Event {
	return Event{Type: EventWarning, Loadout: l.ID, Location: loc, Item: item, Level: LevelWarning, Message: msg}
}
