package engine

import (
	"fmt"
	"strings"

	"github.com/mechforge/mechforge/pkg/model"
)

// DefaultOrder is the location preference of the resolver.
var DefaultOrder = []model.Location{
	model.RightArm, model.RightTorso, model.RightLeg, model.Head,
	model.CenterTorso, model.LeftTorso, model.LeftLeg, model.LeftArm,
}

// DefaultMaxAttempts bounds the number of tentative arrangements tried.
const DefaultMaxAttempts = 20000

// StepOp is the operation of a plan step.
type StepOp string

const (
	StepAdd    StepOp = "add"
	StepRemove StepOp = "remove"
)

// Step is one item operation of a placement plan.
type Step struct {
	Op       StepOp
	Location model.Location
	Item     *model.Item
}

func (s Step) String() string {
	return fmt.Sprintf("%s %s@%s", s.Op, s.Item.ID, s.Location)
}

// Plan is an ordered sequence of steps that places an item.
type Plan struct {
	Steps []Step

	// Attempts is the number of tentative arrangements evaluated.
	Attempts int
}

func (p Plan) String() string {
	parts := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

// Relocations counts the items the plan moves besides the requested one.
func (p Plan) Relocations() int {
	n := 0
	for _, s := range p.Steps {
		if s.Op == StepRemove {
			n++
		}
	}
	return n
}

// Resolver searches for an arrangement that accommodates an item: a direct
// add, then moving one equipped item elsewhere, then moving two items from
// two different components. Every tentative arrangement is applied with the
// ordinary item commands and rolled back before the next one is tried.
type Resolver struct {
	// Order is the location preference. Empty means DefaultOrder.
	Order []model.Location

	// MaxAttempts bounds the search. Zero means DefaultMaxAttempts.
	MaxAttempts int
}

// NewResolver returns a resolver with the default order and bound.
func NewResolver() *Resolver {
	return &Resolver{}
}

func (r *Resolver) order() []model.Location {
	if len(r.Order) == 0 {
		return DefaultOrder
	}
	return r.Order
}

// orderFor returns the preference order for item. Heat sinks go to the
// center torso first while the engine can still absorb them.
func (r *Resolver) orderFor(l *model.Loadout, item *model.Item) []model.Location {
	base := r.order()
	if item.Kind != model.KindHeatSink || l.Component(model.CenterTorso).HeatSinkCapacityFree() == 0 {
		return base
	}
	out := make([]model.Location, 0, len(base))
	out = append(out, model.CenterTorso)
	for _, loc := range base {
		if loc != model.CenterTorso {
			out = append(out, loc)
		}
	}
	return out
}

type search struct {
	l        *model.Loadout
	attempts int
	limit    int
}

// try applies steps tentatively and always rolls them back. It reports
// whether every step succeeded.
func (s *search) try(steps []Step) bool {
	s.attempts++
	var applied []Command
	defer func() { undoAll(applied) }()
	for _, st := range steps {
		var (
			cmd Command
			err error
		)
		switch st.Op {
		case StepAdd:
			cmd, err = NewAddItem(s.l, st.Location, st.Item, Discard)
		case StepRemove:
			cmd, err = NewRemoveItem(s.l, st.Location, st.Item, Discard)
		}
		if err != nil || cmd.Apply() != nil {
			return false
		}
		applied = append(applied, cmd)
	}
	return true
}

func (s *search) exhausted() bool {
	return s.attempts >= s.limit
}

type candidate struct {
	loc  model.Location
	item *model.Item
}

// Resolve finds a plan placing item into l. l is left unchanged. On failure
// the result explains why the direct placement was rejected at the most
// preferred location; loadout-wide failures short-circuit the search.
func (r *Resolver) Resolve(l *model.Loadout, item *model.Item) (Plan, model.EquipResult) {
	if g := l.CanEquipGlobal(item); !g.IsSuccess() {
		return Plan{}, g
	}
	limit := r.MaxAttempts
	if limit <= 0 {
		limit = DefaultMaxAttempts
	}
	s := &search{l: l, limit: limit}
	order := r.orderFor(l, item)

	for _, loc := range order {
		steps := []Step{{StepAdd, loc, item}}
		if s.try(steps) {
			return Plan{Steps: steps, Attempts: s.attempts}, model.Success()
		}
	}

	cands := r.candidates(l)

	for _, c := range cands {
		for _, loc := range order {
			if s.exhausted() {
				return Plan{Attempts: s.attempts}, r.primaryFailure(l, item, order)
			}
			prefix := []Step{{StepRemove, c.loc, c.item}, {StepAdd, loc, item}}
			if !s.try(prefix) {
				continue
			}
			if steps, ok := r.rehome(s, prefix, []candidate{c}); ok {
				return Plan{Steps: steps, Attempts: s.attempts}, model.Success()
			}
		}
	}

	for i, a := range cands {
		for _, b := range cands[i+1:] {
			if a.loc == b.loc {
				continue
			}
			for _, loc := range order {
				if s.exhausted() {
					return Plan{Attempts: s.attempts}, r.primaryFailure(l, item, order)
				}
				prefix := []Step{{StepRemove, a.loc, a.item}, {StepRemove, b.loc, b.item}, {StepAdd, loc, item}}
				if !s.try(prefix) {
					continue
				}
				if steps, ok := r.rehome(s, prefix, []candidate{a, b}); ok {
					return Plan{Steps: steps, Attempts: s.attempts}, model.Success()
				}
				if steps, ok := r.rehome(s, prefix, []candidate{b, a}); ok {
					return Plan{Steps: steps, Attempts: s.attempts}, model.Success()
				}
			}
		}
	}

	return Plan{Attempts: s.attempts}, r.primaryFailure(l, item, order)
}

// rehome re-adds displaced items one after the other at the first location
// that accepts each, never back into the component it came from.
func (r *Resolver) rehome(s *search, prefix []Step, displaced []candidate) ([]Step, bool) {
	steps := append([]Step(nil), prefix...)
	for _, d := range displaced {
		placed := false
		for _, loc := range r.orderFor(s.l, d.item) {
			if loc == d.loc {
				continue
			}
			next := append(append([]Step(nil), steps...), Step{StepAdd, loc, d.item})
			if s.try(next) {
				steps = next
				placed = true
				break
			}
		}
		if !placed {
			return nil, false
		}
	}
	return steps, true
}

// candidates lists equipped items that may be relocated, one per distinct
// item and component, in resolver order. Engines stay put.
func (r *Resolver) candidates(l *model.Loadout) []candidate {
	var out []candidate
	for _, loc := range r.order() {
		seen := make(map[string]bool)
		for _, it := range l.Component(loc).Items() {
			if it.IsInternal() || it.Kind == model.KindEngine || seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			out = append(out, candidate{loc, it})
		}
	}
	return out
}

func (r *Resolver) primaryFailure(l *model.Loadout, item *model.Item, order []model.Location) model.EquipResult {
	var first model.EquipResult
	for i, loc := range order {
		res := l.CanEquipAt(loc, item)
		if i == 0 {
			first = res
		}
		if res.Type != model.ResultNoComponentSupport {
			if res.IsSuccess() {
				// Direct check passes but a cascade failed; report slots.
				return model.FailureAt(model.ResultNotEnoughSlots, loc)
			}
			return res
		}
	}
	return first
}

// AutoAddItem places an item wherever the resolver finds room, relocating
// up to two equipped items when needed. The search runs silently; the
// chosen plan is then applied with the real sink as one undoable step.
type AutoAddItem struct {
	*batch
	plan Plan
}

// NewAutoAddItem builds an auto placement command. It fails immediately for
// internal items.
func NewAutoAddItem(l *model.Loadout, item *model.Item, resolver *Resolver, sink Sink) (*AutoAddItem, error) {
	if err := checkItemArgs(l, model.CenterTorso, item, "auto_add"); err != nil {
		return nil, err
	}
	if resolver == nil {
		resolver = NewResolver()
	}
	g := newGate(sink)
	sink = g
	c := &AutoAddItem{}
	c.batch = &batch{
		gate:        g,
		kind:        KindAutoAdd,
		description: fmt.Sprintf("add %s", item),
	}
	c.batch.build = func() ([]Command, error) {
		plan, res := resolver.Resolve(l, item)
		c.plan = plan
		if !res.IsSuccess() {
			return nil, res.Err()
		}
		cmds := make([]Command, 0, len(plan.Steps))
		for _, st := range plan.Steps {
			var (
				cmd Command
				err error
			)
			if st.Op == StepAdd {
				cmd, err = NewAddItem(l, st.Location, st.Item, sink)
			} else {
				cmd, err = NewRemoveItem(l, st.Location, st.Item, sink)
			}
			if err != nil {
				return nil, err
			}
			cmds = append(cmds, cmd)
		}
		return cmds, nil
	}
	return c, nil
}

// Plan returns the plan found by the last Apply.
func (c *AutoAddItem) Plan() Plan {
	return c.plan
}
