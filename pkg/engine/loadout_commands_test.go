package engine

import (
	"testing"

	"github.com/mechforge/mechforge/pkg/model"
	mt "github.com/mechforge/mechforge/pkg/model/modeltest"
)

func TestRename(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	orig := l.Name
	s := NewStack(8)
	rec := &Recorder{}

	push(t, s)(NewRename(l, "  Brawler ", rec))
	push(t, s)(NewRename(l, "Brawler 2", rec))
	if l.Name != "Brawler 2" {
		t.Errorf("Expected name Brawler 2, got %q", l.Name)
	}
	if s.Len() != 1 {
		t.Errorf("Expected renames to coalesce, got %d steps", s.Len())
	}

	s.Undo()
	if l.Name != orig {
		t.Errorf("Expected %q after undo, got %q", orig, l.Name)
	}

	if _, err := NewRename(l, "   ", nil); !model.IsProgrammer(err) {
		t.Errorf("Expected programmer error for blank name, got %v", err)
	}
}

func TestChangeHeatSinkUpgrade(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	mustAddN(t, l, model.RightArm, mt.SingleHeatSink, 3)
	mustAdd(t, l, model.LeftLeg, mt.SingleHeatSink)
	before := l.Snapshot()
	rec := &Recorder{}

	cmd := mustApply(t)(NewChangeUpgrade(l, mt.DoubleHeatSinks, rec))
	if l.Upgrades.HeatSink != mt.DoubleHeatSinks {
		t.Fatalf("Expected double heat sinks, got %s", l.Upgrades.HeatSink.ID)
	}
	// RA has 8 free slots: two doubles fit, the third is dropped. LL has 2.
	if got := l.Component(model.RightArm).Count(mt.DoubleHeatSink); got != 2 {
		t.Errorf("Expected 2 double heat sinks in RA, got %d", got)
	}
	if got := l.Component(model.LeftLeg).Count(mt.DoubleHeatSink); got != 0 {
		t.Errorf("Expected no double heat sink in LL, got %d", got)
	}
	if got := l.HeatSinkCount(); got != 2 {
		t.Errorf("Expected 2 heat sinks, got %d", got)
	}

	var warnings, upgrades int
	for _, e := range rec.Events() {
		switch e.Type {
		case EventWarning:
			warnings++
		case EventUpgradeChanged:
			upgrades++
		}
	}
	if warnings != 1 || upgrades != 1 {
		t.Errorf("Expected one upgrade event and one warning, got %v", rec.Strings())
	}

	cmd.Undo()
	expectSnapshot(t, l, before)
}

func TestChangeUpgradeRequiresECM(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	cmd, _ := NewChangeUpgrade(l, mt.StealthArmor, nil)
	expectResult(t, cmd.Apply(), model.ResultIncompatibleUpgrades)
	if l.Upgrades.Armor != mt.StandardArmor {
		t.Error("Expected armor upgrade unchanged")
	}
}

func TestChangeGuidanceUpgrade(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	mustAdd(t, l, model.LeftTorso, mt.LRM10)
	mass := l.Mass()

	cmd := mustApply(t)(NewChangeUpgrade(l, mt.Artemis, nil))
	if got := l.Mass(); got != mass+1 {
		t.Errorf("Expected artemis to add a ton, got %.2f -> %.2f", mass, got)
	}
	if got := l.Component(model.LeftTorso).SlotsUsed(l.Upgrades); got != 3 {
		t.Errorf("Expected 3 slots used in LT, got %d", got)
	}
	cmd.Undo()
	if l.Upgrades.Guidance != mt.StandardGuidance {
		t.Error("Expected standard guidance after undo")
	}
}

func TestChangeUpgradeToSameIsNoOp(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	rec := &Recorder{}
	cmd := mustApply(t)(NewChangeUpgrade(l, mt.StandardArmor, rec))
	cmd.Undo()
	expectEvents(t, rec)
}

func TestStrip(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	mustAdd(t, l, model.RightTorso, mt.ECM)
	mustApply(t)(NewChangeUpgrade(l, mt.StealthArmor, nil))
	mustAdd(t, l, model.CenterTorso, mt.XL300)
	mustAdd(t, l, model.CenterTorso, mt.SingleHeatSink)
	mustAdd(t, l, model.RightArm, mt.MediumLaser)
	mustAdd(t, l, model.LeftTorso, mt.SRM6)
	mustApply(t)(NewSetArmor(l, model.CenterTorso, model.SideFront, 30, true, nil))
	mustApply(t)(NewMaxArmor(l, 3, false, nil))
	before := l.Snapshot()

	cmd := mustApply(t)(NewStrip(l, nil))
	if KindOf(cmd) != KindStrip {
		t.Errorf("Expected kind strip, got %s", KindOf(cmd))
	}
	if l.Engine() != nil {
		t.Error("Expected the engine removed")
	}
	if l.CountTrait(model.TraitECM) != 1 {
		t.Error("Expected the ECM kept for stealth armor")
	}
	if got := l.Count(func(it *model.Item) bool { return !it.IsInternal() }); got != 1 {
		t.Errorf("Expected only the ECM left, got %d items", got)
	}
	if l.ArmorTotal() != 0 {
		t.Errorf("Expected no armor, got %d", l.ArmorTotal())
	}
	for _, comp := range l.Components() {
		if comp.ManualArmor() != 0 {
			t.Errorf("%s: expected manual flags cleared", comp.Location())
		}
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Expected a valid loadout after strip, got %v", err)
	}

	cmd.Undo()
	expectSnapshot(t, l, before)
}
