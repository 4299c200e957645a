package engine

import (
	"testing"

	"github.com/mechforge/mechforge/pkg/model"
	mt "github.com/mechforge/mechforge/pkg/model/modeltest"
)

// heavyLoadout leaves 7 tons, 224 standard armor points, free.
func heavyLoadout(t *testing.T) *model.Loadout {
	t.Helper()
	l := mt.NewLoadout(t, mt.Standard())
	mustAdd(t, l, model.CenterTorso, mt.STD300)
	mustAdd(t, l, model.RightTorso, mt.AC20)
	mustAdd(t, l, model.LeftArm, mt.LargeLaser)
	return l
}

func TestSetArmor(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	before := l.Snapshot()
	rec := &Recorder{}

	front := mustApply(t)(NewSetArmor(l, model.CenterTorso, model.SideFront, 40, true, rec))
	ct := l.Component(model.CenterTorso)
	if ct.Armor(model.SideFront) != 40 || !ct.HasManualArmor(model.SideFront) {
		t.Errorf("Expected 40 manual front armor, got %d", ct.Armor(model.SideFront))
	}

	back, _ := NewSetArmor(l, model.CenterTorso, model.SideBack, 30, true, rec)
	expectResult(t, back.Apply(), model.ResultExceededMaxArmor)

	front.Undo()
	expectSnapshot(t, l, before)
	expectEvents(t, rec,
		"armor.changed CT/front=40 manual=true",
		"armor.changed CT/front=0 manual=false",
	)
}

func TestSetArmorUnchangedEmitsNothing(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	rec := &Recorder{}
	cmd := mustApply(t)(NewSetArmor(l, model.Head, model.SideOnly, 0, false, rec))
	cmd.Undo()
	expectEvents(t, rec)
}

func TestSetArmorInvalidArguments(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	if _, err := NewSetArmor(l, model.Head, model.SideBack, 1, true, nil); !model.IsProgrammer(err) {
		t.Errorf("Expected programmer error for head back armor, got %v", err)
	}
	if _, err := NewSetArmor(l, model.Head, model.SideOnly, -1, true, nil); !model.IsProgrammer(err) {
		t.Errorf("Expected programmer error for negative armor, got %v", err)
	}
}

func TestSetArmorTonnage(t *testing.T) {
	l := heavyLoadout(t)
	mustApply(t)(NewSetArmor(l, model.CenterTorso, model.SideFront, 64, true, nil))
	mustApply(t)(NewSetArmor(l, model.LeftTorso, model.SideFront, 48, true, nil))
	mustApply(t)(NewSetArmor(l, model.RightTorso, model.SideFront, 48, true, nil))
	mustApply(t)(NewSetArmor(l, model.LeftLeg, model.SideOnly, 48, true, nil))
	// 208 points used, 16 left
	cmd, _ := NewSetArmor(l, model.RightLeg, model.SideOnly, 17, true, nil)
	expectResult(t, cmd.Apply(), model.ResultNotEnoughTonnage)
	mustApply(t)(NewSetArmor(l, model.RightLeg, model.SideOnly, 16, true, nil))
}

func TestMaxArmor(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	before := l.Snapshot()

	cmd := mustApply(t)(NewMaxArmor(l, 3, false, nil))
	if got := l.ArmorTotal(); got != l.ArmorMaxTotal() {
		t.Errorf("Expected %d armor, got %d", l.ArmorMaxTotal(), got)
	}
	ct := l.Component(model.CenterTorso)
	if ct.Armor(model.SideFront) != 48 || ct.Armor(model.SideBack) != 16 {
		t.Errorf("Expected CT 48/16, got %d/%d", ct.Armor(model.SideFront), ct.Armor(model.SideBack))
	}
	if lt := l.Component(model.LeftTorso); lt.Armor(model.SideFront) != 36 || lt.Armor(model.SideBack) != 12 {
		t.Errorf("Expected LT 36/12, got %d/%d", lt.Armor(model.SideFront), lt.Armor(model.SideBack))
	}
	if hd := l.Component(model.Head); hd.Armor(model.SideOnly) != 18 {
		t.Errorf("Expected HD 18, got %d", hd.Armor(model.SideOnly))
	}

	cmd.Undo()
	expectSnapshot(t, l, before)
}

func TestMaxArmorKeepsManualSides(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	mustApply(t)(NewSetArmor(l, model.CenterTorso, model.SideFront, 50, true, nil))
	mustApply(t)(NewSetArmor(l, model.Head, model.SideOnly, 5, true, nil))

	mustApply(t)(NewMaxArmor(l, 3, false, nil))
	ct := l.Component(model.CenterTorso)
	if ct.Armor(model.SideFront) != 50 || ct.Armor(model.SideBack) != 14 {
		t.Errorf("Expected CT 50/14, got %d/%d", ct.Armor(model.SideFront), ct.Armor(model.SideBack))
	}
	if ct.HasManualArmor(model.SideBack) {
		t.Error("Expected automatic back armor")
	}
	if hd := l.Component(model.Head); hd.Armor(model.SideOnly) != 5 {
		t.Errorf("Expected manual head armor to stay at 5, got %d", hd.Armor(model.SideOnly))
	}
}

func TestMaxArmorIsAtomic(t *testing.T) {
	l := heavyLoadout(t)
	before := l.Snapshot()
	rec := &Recorder{}

	cmd, _ := NewMaxArmor(l, 3, false, rec)
	expectResult(t, cmd.Apply(), model.ResultNotEnoughTonnage)
	expectSnapshot(t, l, before)

	expectEvents(t, rec)
}

func TestMaxArmorFailureSpotsLocation(t *testing.T) {
	l := heavyLoadout(t)
	cmd, _ := NewMaxArmor(l, 3, false, nil)
	r, ok := model.ResultOf(cmd.Apply())
	if !ok || r.Type != model.ResultNotEnoughTonnage || !r.HasLocation {
		t.Fatalf("Expected not enough tonnage at a location, got %+v", r)
	}

	// the same allocation side by side runs out at the same place
	var targets []armorTarget
	for _, comp := range l.Components() {
		for _, side := range comp.Location().Sides() {
			targets = append(targets, armorTarget{comp.Location(), side, comp.ArmorMax(side)})
		}
	}
	if got := checkArmorTonnage(l, targets); got.IsSuccess() {
		t.Error("Expected the full allocation not to fit")
	}
	if got := checkArmorTonnage(l, nil); !got.IsSuccess() {
		t.Errorf("Expected no targets to fit, got %s", got.Type)
	}
}

func TestMaxArmorInvalidRatio(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	for _, r := range []float64{0, -1} {
		if _, err := NewMaxArmor(l, r, false, nil); !model.IsProgrammer(err) {
			t.Errorf("Expected programmer error for ratio %v, got %v", r, err)
		}
	}
}

func TestDistributeArmor(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	before := l.Snapshot()

	cmd := mustApply(t)(NewDistributeArmor(l, 100, 3, nil, nil))
	if got := l.ArmorTotal(); got != 100 {
		t.Errorf("Expected 100 armor, got %d", got)
	}
	want := map[model.Location][2]int{
		model.CenterTorso: {48, 16},
		model.LeftTorso:   {14, 4},
		model.RightTorso:  {14, 4},
	}
	for loc, fb := range want {
		c := l.Component(loc)
		if c.Armor(model.SideFront) != fb[0] || c.Armor(model.SideBack) != fb[1] {
			t.Errorf("%s: expected %d/%d, got %d/%d", loc, fb[0], fb[1], c.Armor(model.SideFront), c.Armor(model.SideBack))
		}
	}
	for _, loc := range []model.Location{model.Head, model.LeftArm, model.RightArm, model.LeftLeg, model.RightLeg} {
		if a := l.Component(loc).ArmorTotal(); a != 0 {
			t.Errorf("%s: expected no armor, got %d", loc, a)
		}
	}

	cmd.Undo()
	expectSnapshot(t, l, before)
}

func TestDistributeArmorCountsManualArmor(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	mustApply(t)(NewSetArmor(l, model.Head, model.SideOnly, 10, true, nil))

	mustApply(t)(NewDistributeArmor(l, 100, 3, nil, nil))
	if got := l.ArmorTotal(); got != 100 {
		t.Errorf("Expected 100 armor including manual, got %d", got)
	}
	hd := l.Component(model.Head)
	if hd.Armor(model.SideOnly) != 10 || !hd.HasManualArmor(model.SideOnly) {
		t.Errorf("Expected manual head armor untouched, got %d", hd.Armor(model.SideOnly))
	}
	if got := l.Component(model.LeftTorso).ArmorTotal(); got != 13 {
		t.Errorf("Expected 13 armor on LT, got %d", got)
	}
}

func TestDistributeArmorCappedByTonnage(t *testing.T) {
	l := heavyLoadout(t)
	mustApply(t)(NewDistributeArmor(l, 400, 3, nil, nil))

	if got := l.ArmorTotal(); got != 224 {
		t.Errorf("Expected 224 armor, got %d", got)
	}
	if l.FreeMass() < 0 {
		t.Errorf("Expected loadout within tonnage, free %.3f", l.FreeMass())
	}
	// LT links to the weapon arm and fills before the head and legs
	if got := l.Component(model.LeftTorso).ArmorTotal(); got != 48 {
		t.Errorf("Expected LT full at 48, got %d", got)
	}
	if got := l.Component(model.RightArm).ArmorTotal(); got != 0 {
		t.Errorf("Expected the empty right arm last, got %d", got)
	}
}

func TestDistributeArmorReplacesAutomaticArmor(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	mustApply(t)(NewMaxArmor(l, 3, false, nil))
	mustApply(t)(NewDistributeArmor(l, 64, 1, nil, nil))

	if got := l.ArmorTotal(); got != 64 {
		t.Errorf("Expected 64 armor, got %d", got)
	}
	ct := l.Component(model.CenterTorso)
	if ct.Armor(model.SideFront) != 32 || ct.Armor(model.SideBack) != 32 {
		t.Errorf("Expected CT 32/32 at ratio 1, got %d/%d", ct.Armor(model.SideFront), ct.Armor(model.SideBack))
	}
}

func TestStaticArmorPolicy(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	policy := StaticArmorPolicy{model.Head, model.RightArm}
	mustApply(t)(NewDistributeArmor(l, 40, 3, policy, nil))

	if got := l.Component(model.Head).ArmorTotal(); got != 18 {
		t.Errorf("Expected head full at 18, got %d", got)
	}
	if got := l.Component(model.RightArm).ArmorTotal(); got != 22 {
		t.Errorf("Expected 22 on the right arm, got %d", got)
	}
}

func TestShare(t *testing.T) {
	tests := []struct {
		budget int
		caps   []int
		want   []int
	}{
		{10, []int{48, 48}, []int{5, 5}},
		{11, []int{48, 48}, []int{6, 5}},
		{100, []int{48, 48}, []int{48, 48}},
		{32, []int{18, 48, 48}, []int{6, 13, 13}},
		{0, []int{10}, []int{0}},
	}
	for _, tt := range tests {
		got := share(tt.budget, tt.caps)
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("share(%d, %v): expected %v, got %v", tt.budget, tt.caps, tt.want, got)
				break
			}
		}
	}
}

func TestSplitFrontBack(t *testing.T) {
	tests := []struct {
		total       int
		ratio       float64
		front, back int
	}{
		{64, 3, 48, 16},
		{18, 3, 14, 4},
		{10, 1, 5, 5},
		{0, 3, 0, 0},
	}
	for _, tt := range tests {
		f, b := splitFrontBack(tt.total, tt.ratio)
		if f != tt.front || b != tt.back {
			t.Errorf("splitFrontBack(%d, %v): expected %d/%d, got %d/%d", tt.total, tt.ratio, tt.front, tt.back, f, b)
		}
	}
}
