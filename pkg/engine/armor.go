package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/mechforge/mechforge/pkg/model"
)

// SetArmor sets the armor of one component side. Consecutive SetArmor
// commands on the same side with the same manual flag coalesce.
type SetArmor struct {
	loadout *model.Loadout
	loc     model.Location
	side    model.ArmorSide
	amount  int
	manual  bool
	sink    Sink

	oldAmount int
	oldManual bool
	changed   bool
	applied   bool
}

// NewSetArmor builds an armor command. It fails immediately for a side the
// location does not have or a negative amount.
func NewSetArmor(l *model.Loadout, loc model.Location, side model.ArmorSide, amount int, manual bool, sink Sink) (*SetArmor, error) {
	if l == nil {
		return nil, model.NewProgrammerError("loadout is required").WithOperation("set_armor")
	}
	if !loc.Valid() || !loc.HasSide(side) {
		return nil, model.NewProgrammerError(fmt.Sprintf("%s has no %s armor", loc, side)).WithOperation("set_armor")
	}
	if amount < 0 {
		return nil, model.NewProgrammerError(fmt.Sprintf("negative armor %d", amount)).WithOperation("set_armor")
	}
	return &SetArmor{loadout: l, loc: loc, side: side, amount: amount, manual: manual, sink: sinkOrDiscard(sink)}, nil
}

// Apply implements Command.
func (c *SetArmor) Apply() error {
	if c.applied {
		return model.NewProgrammerError("command already applied").WithOperation("set_armor")
	}
	l := c.loadout
	comp := l.Component(c.loc)
	c.oldAmount = comp.Armor(c.side)
	c.oldManual = comp.HasManualArmor(c.side)
	c.changed = false

	if c.amount > comp.ArmorMax(c.side) {
		return model.FailureAt(model.ResultExceededMaxArmor, c.loc).Err()
	}
	if c.amount > c.oldAmount {
		delta := l.Upgrades.ArmorMass(c.amount) - l.Upgrades.ArmorMass(c.oldAmount)
		if !l.Fits(delta) {
			return model.FailureAt(model.ResultNotEnoughTonnage, c.loc).Err()
		}
	}

	c.applied = true
	if c.amount == c.oldAmount && c.manual == c.oldManual {
		return nil
	}
	comp.SetArmor(c.side, c.amount, c.manual)
	c.changed = true
	c.sink.Emit(c.event(c.amount, c.manual))
	return nil
}

// Undo implements Command.
func (c *SetArmor) Undo() {
	if c.changed {
		c.loadout.Component(c.loc).SetArmor(c.side, c.oldAmount, c.oldManual)
		c.sink.Emit(c.event(c.oldAmount, c.oldManual))
	}
	c.changed = false
	c.applied = false
}

func (c *SetArmor) event(amount int, manual bool) Event {
	return Event{
		Type: EventArmorChanged, Loadout: c.loadout.ID, Location: c.loc,
		Side: c.side, Armor: amount, Manual: manual, Level: LevelInfo,
	}
}

// Describe implements Command.
func (c *SetArmor) Describe() string {
	if c.loc.TwoSided() {
		return fmt.Sprintf("change %s armor of %s to %d", c.side, c.loc.LongName(), c.amount)
	}
	return fmt.Sprintf("change armor of %s to %d", c.loc.LongName(), c.amount)
}

// Key implements Command.
func (c *SetArmor) Key() CoalesceKey {
	return CoalesceKey{Kind: KindSetArmor, Loadout: c.loadout.ID, Location: c.loc, Side: c.side, Manual: c.manual}
}

// Kind implements Kinded.
func (c *SetArmor) Kind() CommandKind { return KindSetArmor }

type armorTarget struct {
	loc   model.Location
	side  model.ArmorSide
	value int
}

// armorCommands turns targets into SetArmor commands, decreases first so
// that the front plus back limit holds after every step.
func armorCommands(l *model.Loadout, targets []armorTarget, manual bool, sink Sink) ([]Command, error) {
	var down, up []Command
	for _, t := range targets {
		comp := l.Component(t.loc)
		cur := comp.Armor(t.side)
		if cur == t.value && comp.HasManualArmor(t.side) == manual {
			continue
		}
		cmd, err := NewSetArmor(l, t.loc, t.side, t.value, manual, sink)
		if err != nil {
			return nil, err
		}
		if t.value < cur {
			down = append(down, cmd)
		} else {
			up = append(up, cmd)
		}
	}
	return append(down, up...), nil
}

// splitFrontBack divides total points between front and back so that
// front/back approaches ratio and the sides sum to total exactly.
func splitFrontBack(total int, ratio float64) (front, back int) {
	front = int(math.Round(float64(total) * ratio / (ratio + 1)))
	front = min(max(front, 0), total)
	return front, total - front
}

// NewMaxArmor sets every side that is not manually locked to the most armor
// its component supports. Two-sided components are split by ratio
// (front/back); when one side is locked the other takes the remainder. The
// whole allocation fails with NotEnoughTonnage if it does not fit.
func NewMaxArmor(l *model.Loadout, ratio float64, manual bool, sink Sink) (Command, error) {
	if l == nil {
		return nil, model.NewProgrammerError("loadout is required").WithOperation("max_armor")
	}
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return nil, model.NewProgrammerError(fmt.Sprintf("invalid front/back ratio %v", ratio)).WithOperation("max_armor")
	}
	g := newGate(sink)
	sink = g
	b := &batch{
		gate:        g,
		kind:        KindMaxArmor,
		description: fmt.Sprintf("change armor to maximum (ratio %.2g)", ratio),
	}
	b.build = func() ([]Command, error) {
		var targets []armorTarget
		for _, comp := range l.Components() {
			loc := comp.Location()
			limit := comp.Def().MaxArmor
			if !loc.TwoSided() {
				if !comp.HasManualArmor(model.SideOnly) {
					targets = append(targets, armorTarget{loc, model.SideOnly, limit})
				}
				continue
			}
			fm, bm := comp.HasManualArmor(model.SideFront), comp.HasManualArmor(model.SideBack)
			switch {
			case fm && bm:
			case fm:
				targets = append(targets, armorTarget{loc, model.SideBack, limit - comp.Armor(model.SideFront)})
			case bm:
				targets = append(targets, armorTarget{loc, model.SideFront, limit - comp.Armor(model.SideBack)})
			default:
				front, back := splitFrontBack(limit, ratio)
				targets = append(targets, armorTarget{loc, model.SideFront, front}, armorTarget{loc, model.SideBack, back})
			}
		}
		if r := checkArmorTonnage(l, targets); !r.IsSuccess() {
			return nil, r.Err()
		}
		return armorCommands(l, targets, manual, sink)
	}
	return b, nil
}

// checkArmorTonnage walks targets in the order armorCommands applies them
// and reports where the free tonnage runs out.
func checkArmorTonnage(l *model.Loadout, targets []armorTarget) model.EquipResult {
	var up []armorTarget
	need := 0.0
	for _, t := range targets {
		cur := l.Component(t.loc).Armor(t.side)
		if t.value < cur {
			need -= l.Upgrades.ArmorMass(cur - t.value)
		} else if t.value > cur {
			up = append(up, t)
		}
	}
	for _, t := range up {
		need += l.Upgrades.ArmorMass(t.value - l.Component(t.loc).Armor(t.side))
		if !l.Fits(need) {
			return model.FailureAt(model.ResultNotEnoughTonnage, t.loc)
		}
	}
	return model.Success()
}

// ArmorPolicy orders locations into priority tiers for armor distribution.
// Every location must appear in exactly one tier.
type ArmorPolicy interface {
	Tiers(l *model.Loadout) [][]model.Location
}

// ArmorPolicyFunc adapts a function to an ArmorPolicy.
type ArmorPolicyFunc func(l *model.Loadout) [][]model.Location

// Tiers implements ArmorPolicy.
func (f ArmorPolicyFunc) Tiers(l *model.Loadout) [][]model.Location {
	return f(l)
}

// DefaultArmorPolicy protects the center torso first, then side torsos that
// link to a weapon arm or hold an engine side, then the remaining torsos and
// weapon arms, then head and legs, and arms without weapons last.
type DefaultArmorPolicy struct{}

// Tiers implements ArmorPolicy.
func (DefaultArmorPolicy) Tiers(l *model.Loadout) [][]model.Location {
	weaponArm := func(loc model.Location) bool {
		return loc.IsArm() && l.Component(loc).HasWeapons()
	}
	var links, rest, shields []model.Location
	for _, torso := range []model.Location{model.LeftTorso, model.RightTorso} {
		arm, _ := torso.Neighbour()
		if weaponArm(arm) || l.Component(torso).HasEngineSide() {
			links = append(links, torso)
		} else {
			rest = append(rest, torso)
		}
	}
	for _, arm := range []model.Location{model.LeftArm, model.RightArm} {
		if weaponArm(arm) {
			rest = append(rest, arm)
		} else {
			shields = append(shields, arm)
		}
	}
	return [][]model.Location{
		{model.CenterTorso},
		links,
		rest,
		{model.Head, model.LeftLeg, model.RightLeg},
		shields,
	}
}

// StaticArmorPolicy uses a fixed location order, one location per tier.
type StaticArmorPolicy []model.Location

// Tiers implements ArmorPolicy.
func (p StaticArmorPolicy) Tiers(*model.Loadout) [][]model.Location {
	tiers := make([][]model.Location, 0, model.LocationCount)
	seen := make(map[model.Location]bool, model.LocationCount)
	for _, loc := range p {
		if !seen[loc] {
			tiers = append(tiers, []model.Location{loc})
			seen[loc] = true
		}
	}
	for _, loc := range model.Locations {
		if !seen[loc] {
			tiers = append(tiers, []model.Location{loc})
		}
	}
	return tiers
}

// NewDistributeArmor spreads points of armor over the sides that are not
// manually locked. Existing automatic armor is cleared first; manual armor
// stays and counts against points. The budget is capped by the free
// tonnage, rounded down to whole armor points, so an oversized request
// assigns what fits. Consecutive distributions on one loadout coalesce.
func NewDistributeArmor(l *model.Loadout, points int, ratio float64, policy ArmorPolicy, sink Sink) (Command, error) {
	if l == nil {
		return nil, model.NewProgrammerError("loadout is required").WithOperation("distribute_armor")
	}
	if points < 0 {
		return nil, model.NewProgrammerError(fmt.Sprintf("negative armor budget %d", points)).WithOperation("distribute_armor")
	}
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return nil, model.NewProgrammerError(fmt.Sprintf("invalid front/back ratio %v", ratio)).WithOperation("distribute_armor")
	}
	if policy == nil {
		policy = DefaultArmorPolicy{}
	}
	g := newGate(sink)
	sink = g
	b := &batch{
		gate:        g,
		kind:        KindDistributeArmor,
		description: fmt.Sprintf("change armor distribution to %d points", points),
		key:         CoalesceKey{Kind: KindDistributeArmor, Loadout: l.ID},
	}
	b.build = func() ([]Command, error) {
		return armorCommands(l, distribute(l, points, ratio, policy), false, sink)
	}
	return b, nil
}

// distribute computes the automatic armor targets.
func distribute(l *model.Loadout, points int, ratio float64, policy ArmorPolicy) []armorTarget {
	manualTotal, autoTotal := 0, 0
	capacity := make(map[model.Location]int, model.LocationCount)
	for _, comp := range l.Components() {
		m := comp.ManualArmor()
		manualTotal += m
		autoTotal += comp.ArmorTotal() - m
		if hasAutoSide(comp) {
			capacity[comp.Location()] = comp.Def().MaxArmor - m
		}
	}

	free := l.FreeMass() + l.Upgrades.ArmorMass(autoTotal)
	budget := min(points-manualTotal, l.Upgrades.ArmorPoints(free))
	budget = max(budget, 0)

	alloc := make(map[model.Location]int, model.LocationCount)
	for _, tier := range policy.Tiers(l) {
		if budget == 0 {
			break
		}
		caps := make([]int, len(tier))
		for i, loc := range tier {
			caps[i] = capacity[loc]
		}
		shares := share(budget, caps)
		for i, loc := range tier {
			alloc[loc] += shares[i]
			capacity[loc] -= shares[i]
			budget -= shares[i]
		}
	}

	var targets []armorTarget
	for _, comp := range l.Components() {
		if !hasAutoSide(comp) {
			continue
		}
		loc := comp.Location()
		total := alloc[loc]
		if !loc.TwoSided() {
			targets = append(targets, armorTarget{loc, model.SideOnly, total})
			continue
		}
		switch {
		case comp.HasManualArmor(model.SideFront):
			targets = append(targets, armorTarget{loc, model.SideBack, total})
		case comp.HasManualArmor(model.SideBack):
			targets = append(targets, armorTarget{loc, model.SideFront, total})
		default:
			front, back := splitFrontBack(total, ratio)
			targets = append(targets, armorTarget{loc, model.SideFront, front}, armorTarget{loc, model.SideBack, back})
		}
	}
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].loc < targets[j].loc })
	return targets
}

func hasAutoSide(comp *model.ConfiguredComponent) bool {
	for _, s := range comp.Location().Sides() {
		if !comp.HasManualArmor(s) {
			return true
		}
	}
	return false
}

// share divides budget over caps proportionally, never exceeding a cap.
// Remainders go one point at a time in order.
func share(budget int, caps []int) []int {
	out := make([]int, len(caps))
	total := 0
	for _, c := range caps {
		total += c
	}
	if total <= budget {
		copy(out, caps)
		return out
	}
	given := 0
	for i, c := range caps {
		out[i] = budget * c / total
		given += out[i]
	}
	for rest := budget - given; rest > 0; {
		for i := range out {
			if rest > 0 && out[i] < caps[i] {
				out[i]++
				rest--
			}
		}
	}
	return out
}
