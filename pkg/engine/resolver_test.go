package engine

import (
	"testing"

	"github.com/mechforge/mechforge/pkg/model"
	mt "github.com/mechforge/mechforge/pkg/model/modeltest"
)

func TestResolveDirect(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	before := l.Snapshot()

	plan, res := NewResolver().Resolve(l, mt.MediumLaser)
	if !res.IsSuccess() {
		t.Fatalf("Expected success, got %s", res)
	}
	if got := plan.String(); got != "add ml@RA" {
		t.Errorf("Expected direct add to RA, got %q", got)
	}
	if plan.Relocations() != 0 {
		t.Errorf("Expected no relocations, got %d", plan.Relocations())
	}
	expectSnapshot(t, l, before)
}

func TestResolvePrefersEngineForHeatSinks(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	plan, _ := NewResolver().Resolve(l, mt.SingleHeatSink)
	if got := plan.String(); got != "add shs@RA" {
		t.Errorf("Expected RA without an engine, got %q", got)
	}

	mustAdd(t, l, model.CenterTorso, mt.STD300)
	plan, _ = NewResolver().Resolve(l, mt.SingleHeatSink)
	if got := plan.String(); got != "add shs@CT" {
		t.Errorf("Expected CT while the engine has capacity, got %q", got)
	}
}

func TestResolveCustomOrder(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	r := &Resolver{Order: []model.Location{model.LeftLeg, model.RightArm}}
	plan, res := r.Resolve(l, mt.AC20Ammo)
	if !res.IsSuccess() || plan.String() != "add ac20_ammo@LL" {
		t.Errorf("Expected LL first, got %q (%s)", plan.String(), res)
	}
}

func TestResolveSingleRelocation(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	mustAddN(t, l, model.RightTorso, mt.AC20Ammo, 11)
	before := l.Snapshot()

	plan, res := NewResolver().Resolve(l, mt.ECM)
	if !res.IsSuccess() {
		t.Fatalf("Expected success, got %s", res)
	}
	if got, want := plan.String(), "remove ac20_ammo@RT, add ecm@RT, add ac20_ammo@RA"; got != want {
		t.Errorf("Expected plan %q, got %q", want, got)
	}
	if plan.Attempts != 11 {
		t.Errorf("Expected 11 attempts, got %d", plan.Attempts)
	}
	expectSnapshot(t, l, before)
}

func TestResolvePairRelocation(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	// RT has one free slot and only LT can take C.A.S.E.; LT is full.
	mustAddN(t, l, model.RightTorso, mt.CASE, 11)
	mustAddN(t, l, model.LeftTorso, mt.AC20Ammo, 12)
	before := l.Snapshot()

	plan, res := NewResolver().Resolve(l, mt.ECM)
	if !res.IsSuccess() {
		t.Fatalf("Expected success, got %s", res)
	}
	want := "remove case@RT, remove ac20_ammo@LT, add ecm@RT, add case@LT, add ac20_ammo@RA"
	if got := plan.String(); got != want {
		t.Errorf("Expected plan %q, got %q", want, got)
	}
	if plan.Relocations() != 2 {
		t.Errorf("Expected 2 relocations, got %d", plan.Relocations())
	}
	expectSnapshot(t, l, before)
}

// crampedLoadout fills every energy hardpoint except the CT one, and leaves
// the CT a single free slot.
func crampedLoadout(t *testing.T) *model.Loadout {
	t.Helper()
	l := mt.NewLoadout(t, mt.Standard())
	mustAdd(t, l, model.Head, mt.MediumLaser)
	mustAddN(t, l, model.RightArm, mt.MediumLaser, 2)
	mustAddN(t, l, model.LeftArm, mt.MediumLaser, 2)
	mustAddN(t, l, model.CenterTorso, mt.AC20Ammo, 7)
	return l
}

func TestResolveSwapsArmItemIntoCenterTorso(t *testing.T) {
	l := crampedLoadout(t)
	if got := l.Candidates(mt.LargeLaser); len(got) != 0 {
		t.Fatalf("Expected no direct placement, got %v", got)
	}
	before := l.Snapshot()

	plan, res := NewResolver().Resolve(l, mt.LargeLaser)
	if !res.IsSuccess() {
		t.Fatalf("Expected success, got %s", res)
	}
	if got, want := plan.String(), "remove ml@RA, add ll@RA, add ml@CT"; got != want {
		t.Errorf("Expected plan %q, got %q", want, got)
	}
	// 8 direct tries, the RA prefix, then RT, RL, HD and CT for the laser
	if plan.Attempts != 13 {
		t.Errorf("Expected 13 attempts, got %d", plan.Attempts)
	}
	expectSnapshot(t, l, before)
}

func TestAutoAddItemSwapNotifications(t *testing.T) {
	l := crampedLoadout(t)
	before := l.Snapshot()
	rec := &Recorder{}

	cmd, err := NewAutoAddItem(l, mt.LargeLaser, nil, rec)
	if err != nil {
		t.Fatalf("NewAutoAddItem failed: %v", err)
	}
	if err := cmd.Apply(); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	expectEvents(t, rec,
		"item.removed ml@RA[1]",
		"item.added ll@RA[1]",
		"item.added ml@CT[7]",
	)
	if l.Component(model.CenterTorso).SlotsFree(l.Upgrades) != 0 {
		t.Error("Expected the CT to be full")
	}

	rec.Reset()
	cmd.Undo()
	expectSnapshot(t, l, before)
	expectEvents(t, rec,
		"item.removed ml@CT[7]",
		"item.removed ll@RA[1]",
		"item.added ml@RA[1]",
	)
}

func TestResolveGlobalFailureShortCircuits(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	mustAdd(t, l, model.RightTorso, mt.ECM)

	plan, res := NewResolver().Resolve(l, mt.ECM)
	if res.Type != model.ResultTooManyOfThatType {
		t.Errorf("Expected too_many_of_that_type, got %s", res)
	}
	if plan.Attempts != 0 {
		t.Errorf("Expected no attempts, got %d", plan.Attempts)
	}
}

func TestResolveBoundedSearch(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	mustAddN(t, l, model.RightTorso, mt.AC20Ammo, 11)
	before := l.Snapshot()

	r := &Resolver{MaxAttempts: 1}
	_, res := r.Resolve(l, mt.ECM)
	if res.Type != model.ResultNotEnoughSlots || res.Location != model.RightTorso {
		t.Errorf("Expected not_enough_slots at RT, got %s", res)
	}
	expectSnapshot(t, l, before)
}

func TestAutoAddItem(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	mustAddN(t, l, model.RightTorso, mt.AC20Ammo, 11)
	before := l.Snapshot()
	rec := &Recorder{}

	cmd, err := NewAutoAddItem(l, mt.ECM, nil, rec)
	if err != nil {
		t.Fatalf("NewAutoAddItem failed: %v", err)
	}
	if err := cmd.Apply(); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if cmd.Plan().Relocations() != 1 {
		t.Errorf("Expected one relocation, got %d", cmd.Plan().Relocations())
	}
	if l.Component(model.RightTorso).Count(mt.ECM) != 1 {
		t.Error("Expected ECM in RT")
	}

	cmd.Undo()
	expectSnapshot(t, l, before)
	expectEvents(t, rec,
		"item.removed ac20_ammo@RT[10]",
		"item.added ecm@RT[10]",
		"item.added ac20_ammo@RA[0]",
		"item.removed ac20_ammo@RA[0]",
		"item.removed ecm@RT[10]",
		"item.added ac20_ammo@RT[10]",
	)
}

func TestAutoAddItemFailure(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	before := l.Snapshot()
	rec := &Recorder{}

	cmd, _ := NewAutoAddItem(l, mt.JumpJet, nil, rec)
	expectResult(t, cmd.Apply(), model.ResultNotSupported)
	expectSnapshot(t, l, before)
	expectEvents(t, rec)
}
