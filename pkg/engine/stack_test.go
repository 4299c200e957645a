package engine

import (
	"testing"

	"github.com/mechforge/mechforge/pkg/model"
	mt "github.com/mechforge/mechforge/pkg/model/modeltest"
	"github.com/mechforge/mechforge/pkg/telemetry"
)

func push(t *testing.T, s *Stack) func(Command, error) {
	return func(cmd Command, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("failed to build command: %v", err)
		}
		if err := s.Push(cmd); err != nil {
			t.Fatalf("push %s failed: %v", cmd.Describe(), err)
		}
	}
}

func TestStackUndoRedo(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	s := NewStack(0, WithLogger(telemetry.NewNopLogger()))
	if s.Depth() != DefaultDepth {
		t.Errorf("Expected default depth %d, got %d", DefaultDepth, s.Depth())
	}

	empty := l.Snapshot()
	push(t, s)(NewAddItem(l, model.RightArm, mt.MediumLaser, nil))
	one := l.Snapshot()
	push(t, s)(NewAddItem(l, model.RightTorso, mt.AC5, nil))
	two := l.Snapshot()

	if s.Undo() == nil {
		t.Fatal("Expected a command to undo")
	}
	expectSnapshot(t, l, one)
	s.Undo()
	expectSnapshot(t, l, empty)
	if s.Undo() != nil {
		t.Error("Expected nothing left to undo")
	}

	if _, err := s.Redo(); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if _, err := s.Redo(); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	expectSnapshot(t, l, two)
	if cmd, err := s.Redo(); cmd != nil || err != nil {
		t.Errorf("Expected nothing to redo, got %v, %v", cmd, err)
	}
}

func TestStackUndoReturnsRevertedCommand(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	s := NewStack(8)
	add, _ := NewAddItem(l, model.RightArm, mt.MediumLaser, nil)
	push(t, s)(add, nil)

	if got := s.Undo(); got != Command(add) {
		t.Errorf("Expected %s to be undone, got %v", add.Describe(), got)
	}
	if s.NextRedo() != Command(add) {
		t.Error("Expected the undone command on the redo stack")
	}

	// fill the hardpoints behind the stack so the redo cannot apply
	mustAddN(t, l, model.RightArm, mt.MediumLaser, 2)
	cmd, err := s.Redo()
	expectResult(t, err, model.ResultNoFreeHardPoints)
	if cmd != Command(add) || s.NextRedo() != Command(add) || s.Len() != 0 {
		t.Errorf("Expected the failed redo to stay on the redo stack, got %v (len %d)", s.NextRedo(), s.Len())
	}
}

func TestStackFailedPushChangesNothing(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	s := NewStack(8)
	push(t, s)(NewAddItem(l, model.RightArm, mt.MediumLaser, nil))
	s.Undo()
	before := l.Snapshot()

	cmd, _ := NewAddItem(l, model.Head, mt.AC20, nil)
	expectResult(t, s.Push(cmd), model.ResultNoComponentSupport)
	expectSnapshot(t, l, before)
	if s.Len() != 0 || !s.CanRedo() {
		t.Errorf("Expected history untouched, got len=%d canRedo=%t", s.Len(), s.CanRedo())
	}
}

func TestStackPushClearsRedo(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	s := NewStack(8)
	push(t, s)(NewAddItem(l, model.RightArm, mt.MediumLaser, nil))
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("Expected redo after undo")
	}
	push(t, s)(NewAddItem(l, model.LeftArm, mt.MediumLaser, nil))
	if s.CanRedo() {
		t.Error("Expected push to clear redo")
	}
}

func TestStackDepthEvictsOldest(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	s := NewStack(2)
	push(t, s)(NewAddItem(l, model.RightArm, mt.MediumLaser, nil))
	push(t, s)(NewAddItem(l, model.RightArm, mt.MediumLaser, nil))
	push(t, s)(NewAddItem(l, model.LeftArm, mt.MediumLaser, nil))

	if s.Len() != 2 {
		t.Fatalf("Expected 2 undo steps, got %d", s.Len())
	}
	s.Undo()
	s.Undo()
	if s.CanUndo() {
		t.Error("Expected the oldest step to be evicted")
	}
	if got := l.Component(model.RightArm).Count(mt.MediumLaser); got != 1 {
		t.Errorf("Expected the evicted add to stay applied, got %d lasers", got)
	}
}

func TestStackCoalescesArmor(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	s := NewStack(8)
	before := l.Snapshot()

	for _, v := range []int{10, 20, 30} {
		push(t, s)(NewSetArmor(l, model.CenterTorso, model.SideFront, v, true, nil))
	}
	if s.Len() != 1 {
		t.Fatalf("Expected one coalesced step, got %d", s.Len())
	}
	if got := l.Component(model.CenterTorso).Armor(model.SideFront); got != 30 {
		t.Errorf("Expected 30 armor, got %d", got)
	}

	s.Undo()
	expectSnapshot(t, l, before)
}

func TestStackDoesNotCoalesceDifferentKeys(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	s := NewStack(8)

	push(t, s)(NewSetArmor(l, model.CenterTorso, model.SideFront, 10, true, nil))
	push(t, s)(NewSetArmor(l, model.CenterTorso, model.SideFront, 20, false, nil))
	push(t, s)(NewSetArmor(l, model.CenterTorso, model.SideBack, 5, false, nil))
	if s.Len() != 3 {
		t.Errorf("Expected 3 steps, got %d", s.Len())
	}
}

func TestStackCoalesceFailureRestoresTop(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	s := NewStack(8)
	push(t, s)(NewSetArmor(l, model.CenterTorso, model.SideFront, 20, true, nil))

	cmd, _ := NewSetArmor(l, model.CenterTorso, model.SideFront, 100, true, nil)
	expectResult(t, s.Push(cmd), model.ResultExceededMaxArmor)

	if got := l.Component(model.CenterTorso).Armor(model.SideFront); got != 20 {
		t.Errorf("Expected armor restored to 20, got %d", got)
	}
	if s.Len() != 1 {
		t.Errorf("Expected the previous step kept, got %d", s.Len())
	}
	s.Undo()
	if got := l.Component(model.CenterTorso).Armor(model.SideFront); got != 0 {
		t.Errorf("Expected 0 after undo, got %d", got)
	}
}

func TestStackRedoRebuildsBatches(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	s := NewStack(8)
	push(t, s)(NewMaxArmor(l, 3, false, nil))
	full := l.Snapshot()

	s.Undo()
	if l.ArmorTotal() != 0 {
		t.Fatalf("Expected no armor after undo, got %d", l.ArmorTotal())
	}
	if _, err := s.Redo(); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	expectSnapshot(t, l, full)
}

func TestStackClear(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	s := NewStack(8)
	push(t, s)(NewAddItem(l, model.RightArm, mt.MediumLaser, nil))
	s.Clear()
	if s.CanUndo() || s.CanRedo() || s.NextUndo() != nil || s.NextRedo() != nil {
		t.Error("Expected empty history after Clear")
	}
	if l.Component(model.RightArm).Count(mt.MediumLaser) != 1 {
		t.Error("Expected Clear to leave the loadout alone")
	}
}
