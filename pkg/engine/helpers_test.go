package engine

import (
	"reflect"
	"testing"

	"github.com/mechforge/mechforge/pkg/model"
)

func mustAdd(t *testing.T, l *model.Loadout, loc model.Location, item *model.Item) {
	t.Helper()
	cmd, err := NewAddItem(l, loc, item, nil)
	if err != nil {
		t.Fatalf("NewAddItem(%s, %s) failed: %v", loc, item.ID, err)
	}
	if err := cmd.Apply(); err != nil {
		t.Fatalf("add %s to %s failed: %v", item.ID, loc, err)
	}
}

func mustAddN(t *testing.T, l *model.Loadout, loc model.Location, item *model.Item, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		mustAdd(t, l, loc, item)
	}
}

// mustApply applies the command returned by a constructor:
//
//	cmd := mustApply(t)(NewAddItem(l, loc, item, sink))
func mustApply(t *testing.T) func(Command, error) Command {
	return func(cmd Command, err error) Command {
		t.Helper()
		if err != nil {
			t.Fatalf("failed to build command: %v", err)
		}
		if err := cmd.Apply(); err != nil {
			t.Fatalf("%s failed: %v", cmd.Describe(), err)
		}
		return cmd
	}
}

func expectResult(t *testing.T, err error, want model.EquipResultType) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected %s, got success", want)
	}
	r, ok := model.ResultOf(err)
	if !ok {
		t.Fatalf("Expected equip error %s, got %v", want, err)
	}
	if r.Type != want {
		t.Errorf("Expected %s, got %s", want, r.Type)
	}
}

func expectSnapshot(t *testing.T, l *model.Loadout, want model.LoadoutState) {
	t.Helper()
	if got := l.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("Loadout state differs\nexpected: %+v\ngot:      %+v", want, got)
	}
}

func expectEvents(t *testing.T, rec *Recorder, want ...string) {
	t.Helper()
	got := rec.Strings()
	if len(got) != len(want) {
		t.Fatalf("Expected %d events %v, got %d: %v", len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Event %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
