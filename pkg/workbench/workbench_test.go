package workbench

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mechforge/mechforge/pkg/config"
	"github.com/mechforge/mechforge/pkg/engine"
	"github.com/mechforge/mechforge/pkg/model"
	"github.com/mechforge/mechforge/pkg/model/modeltest"
	"github.com/mechforge/mechforge/pkg/stores"
	"github.com/mechforge/mechforge/pkg/telemetry"
)

// memJournal collects journal entries in memory.
type memJournal struct {
	mu      sync.Mutex
	entries []*stores.JournalEntry
	err     error
}

func (j *memJournal) AppendJournal(_ context.Context, e *stores.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.entries = append(j.entries, e)
	return nil
}

func (j *memJournal) actions() []stores.JournalAction {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]stores.JournalAction, len(j.entries))
	for i, e := range j.entries {
		out[i] = e.Action
	}
	return out
}

func newWorkbench(t *testing.T, chassisID string, opts ...Option) *Workbench {
	t.Helper()
	w, err := New(modeltest.NewLookup(), chassisID, opts...)
	if err != nil {
		t.Fatalf("New(%s) failed: %v", chassisID, err)
	}
	return w
}

func items(w *Workbench, loc model.Location) []string {
	return Summarize(w.Loadout()).Components[loc].Items
}

func TestNew(t *testing.T) {
	if _, err := New(nil, "std50"); !model.IsProgrammer(err) {
		t.Errorf("Expected programmer error for nil lookup, got %v", err)
	}
	if _, err := New(modeltest.NewLookup(), "nope"); !model.IsLookup(err) {
		t.Errorf("Expected lookup error for unknown chassis, got %v", err)
	}

	// a bare Lookup has no default upgrades
	bare := struct{ model.Lookup }{modeltest.NewLookup()}
	if _, err := New(bare, "std50"); !model.IsProgrammer(err) {
		t.Errorf("Expected programmer error without defaults, got %v", err)
	}
	w, err := New(bare, "std50", WithUpgrades(modeltest.DefaultUpgrades()))
	if err != nil {
		t.Fatalf("New with upgrades failed: %v", err)
	}
	if w.Loadout().Chassis.ID != "std50" {
		t.Errorf("Expected std50, got %s", w.Loadout().Chassis.ID)
	}
	if w.SessionID() == uuid.Nil {
		t.Error("Expected a session id")
	}

	cfg := config.Default().Engine
	cfg.AutoAddOrder = []string{"bogus"}
	if _, err := New(modeltest.NewLookup(), "std50", WithEngineConfig(cfg)); err == nil {
		t.Error("Expected an error for an invalid auto add order")
	}
}

func TestAddUndoRedo(t *testing.T) {
	ctx := context.Background()
	w := newWorkbench(t, "std50")

	if cmd, err := w.Undo(ctx); cmd != nil || err != nil {
		t.Fatalf("Expected no-op undo, got %v, %v", cmd, err)
	}

	if err := w.Add(ctx, model.RightArm, "ml"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if got := items(w, model.RightArm); len(got) != 1 || got[0] != "ml" {
		t.Fatalf("Expected [ml] in RA, got %v", got)
	}
	if !w.CanUndo() || w.CanRedo() {
		t.Error("Expected undo to be possible and redo not")
	}

	cmd, err := w.Undo(ctx)
	if err != nil || cmd == nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if engine.KindOf(cmd) != engine.KindAdd {
		t.Errorf("Expected add command, got %s", engine.KindOf(cmd))
	}
	if got := items(w, model.RightArm); len(got) != 0 {
		t.Errorf("Expected RA to be empty after undo, got %v", got)
	}

	if _, err := w.Redo(ctx); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if got := items(w, model.RightArm); len(got) != 1 {
		t.Errorf("Expected ml back after redo, got %v", got)
	}
	if cmd, err := w.Redo(ctx); cmd != nil || err != nil {
		t.Errorf("Expected no-op redo, got %v, %v", cmd, err)
	}
}

func TestLookupErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	w := newWorkbench(t, "std50")

	if err := w.Add(ctx, model.RightArm, "nope"); !model.IsLookup(err) {
		t.Errorf("Expected lookup error from Add, got %v", err)
	}
	if err := w.SetUpgrade(ctx, "nope"); !model.IsLookup(err) {
		t.Errorf("Expected lookup error from SetUpgrade, got %v", err)
	}
	if _, err := w.AutoAdd(ctx, "nope"); !model.IsLookup(err) {
		t.Errorf("Expected lookup error from AutoAdd, got %v", err)
	}
	if w.History() != 0 {
		t.Errorf("Expected empty history, got %d", w.History())
	}
}

func TestJournal(t *testing.T) {
	ctx := context.Background()
	j := &memJournal{}
	w := newWorkbench(t, "std50", WithJournal(j))

	if err := w.Add(ctx, model.RightArm, "ml"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	err := w.Add(ctx, model.LeftLeg, "ml")
	if !model.IsEquip(err) {
		t.Fatalf("Expected equip failure, got %v", err)
	}
	if _, err := w.Undo(ctx); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if _, err := w.Redo(ctx); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}

	want := []stores.JournalAction{stores.JournalApplied, stores.JournalRejected, stores.JournalUndone, stores.JournalRedone}
	got := j.actions()
	if len(got) != len(want) {
		t.Fatalf("Expected %d entries, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	rejected := j.entries[1]
	res, _ := model.ResultOf(err)
	if rejected.Result == nil || *rejected.Result != string(res.Type) {
		t.Errorf("Expected rejected result %s, got %v", res.Type, rejected.Result)
	}
	for _, e := range j.entries {
		if e.SessionID != w.SessionID().String() || e.LoadoutID != w.Loadout().ID.String() {
			t.Errorf("Unexpected identity on entry %+v", e)
		}
		if e.Kind != string(engine.KindAdd) {
			t.Errorf("Expected kind add, got %s", e.Kind)
		}
	}
	if j.entries[0].Mass != 6 {
		t.Errorf("Expected mass 6 after the add, got %v", j.entries[0].Mass)
	}
}

func TestJournalFailureKeepsEdit(t *testing.T) {
	ctx := context.Background()
	j := &memJournal{err: errors.New("disk full")}
	w := newWorkbench(t, "std50", WithJournal(j))

	if err := w.Add(ctx, model.RightArm, "ml"); err != nil {
		t.Fatalf("Expected journal failures not to fail the edit, got %v", err)
	}
	if w.History() != 1 {
		t.Errorf("Expected 1 undo step, got %d", w.History())
	}
}

func TestSQLiteJournal(t *testing.T) {
	ctx := context.Background()
	store, err := stores.NewSQLiteStore(stores.Config{Path: filepath.Join(t.TempDir(), "journal.db")})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	w := newWorkbench(t, "std50", WithJournal(store))
	if err := w.Add(ctx, model.RightArm, "ml"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := w.Rename(ctx, "Brawler"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	id := w.Loadout().ID.String()
	entries, err := store.ListJournal(ctx, &id, 10, 0)
	if err != nil {
		t.Fatalf("ListJournal failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[1].Kind != string(engine.KindRename) {
		t.Errorf("Expected rename second, got %s", entries[1].Kind)
	}
}

func TestAutoAdd(t *testing.T) {
	ctx := context.Background()
	w := newWorkbench(t, "std50")

	plan, err := w.AutoAdd(ctx, "ml")
	if err != nil {
		t.Fatalf("AutoAdd failed: %v", err)
	}
	if len(plan.Steps) != 1 || plan.Steps[0].Location != model.RightArm {
		t.Errorf("Expected a single add to RA, got %s", plan)
	}
	if plan.Attempts < 1 {
		t.Errorf("Expected at least one attempt, got %d", plan.Attempts)
	}

	// one ballistic hardpoint on the chassis
	if _, err := w.AutoAdd(ctx, "ac5"); err != nil {
		t.Fatalf("AutoAdd(ac5) failed: %v", err)
	}
	_, err = w.AutoAdd(ctx, "mg")
	if !model.IsEquip(err) {
		t.Fatalf("Expected equip failure for a second ballistic, got %v", err)
	}
	if w.History() != 2 {
		t.Errorf("Expected 2 undo steps, got %d", w.History())
	}
}

func TestAutoAddUsesConfiguredOrder(t *testing.T) {
	cfg := config.Default().Engine
	cfg.AutoAddOrder = []string{"LA", "RA", "HD", "CT"}
	w := newWorkbench(t, "std50", WithEngineConfig(cfg))

	plan, err := w.AutoAdd(context.Background(), "ml")
	if err != nil {
		t.Fatalf("AutoAdd failed: %v", err)
	}
	if plan.Steps[0].Location != model.LeftArm {
		t.Errorf("Expected LA first, got %s", plan)
	}
}

func TestArmor(t *testing.T) {
	ctx := context.Background()
	w := newWorkbench(t, "std50")

	if err := w.SetArmor(ctx, model.Head, model.SideOnly, 10, true); err != nil {
		t.Fatalf("SetArmor failed: %v", err)
	}
	if err := w.SetArmor(ctx, model.Head, model.SideOnly, 12, true); err != nil {
		t.Fatalf("SetArmor failed: %v", err)
	}
	if w.History() != 1 {
		t.Errorf("Expected armor edits to coalesce, got %d steps", w.History())
	}
	if got := w.Loadout().Component(model.Head).Armor(model.SideOnly); got != 12 {
		t.Errorf("Expected 12 head armor, got %d", got)
	}

	err := w.SetArmor(ctx, model.Head, model.SideOnly, 1000, true)
	if r, ok := model.ResultOf(err); !ok || r.Type != model.ResultExceededMaxArmor {
		t.Errorf("Expected exceeded max armor, got %v", err)
	}

	if err := w.DistributeArmor(ctx, 100); err != nil {
		t.Fatalf("DistributeArmor failed: %v", err)
	}
	if got := w.Loadout().ArmorTotal(); got != 100 {
		t.Errorf("Expected 100 armor points, got %d", got)
	}
	if got := w.Loadout().Component(model.Head).Armor(model.SideOnly); got != 12 {
		t.Errorf("Expected manual head armor to stay at 12, got %d", got)
	}

	if err := w.MaxArmor(ctx, false); err != nil {
		t.Fatalf("MaxArmor failed: %v", err)
	}
	// the manual head side keeps its 12 points
	headMax := w.Loadout().Component(model.Head).Def().MaxArmor
	want := w.Loadout().ArmorMaxTotal() - (headMax - 12)
	if got := w.Loadout().ArmorTotal(); got != want {
		t.Errorf("Expected %d armor points, got %d", want, got)
	}
}

func TestUpgradeRenameStrip(t *testing.T) {
	ctx := context.Background()
	w := newWorkbench(t, "std50")

	if err := w.SetUpgrade(ctx, "structure_endo"); err != nil {
		t.Fatalf("SetUpgrade failed: %v", err)
	}
	if err := w.Rename(ctx, "Endo"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if err := w.Add(ctx, model.RightTorso, "ac5"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := w.MaxArmor(ctx, false); err != nil {
		t.Fatalf("MaxArmor failed: %v", err)
	}

	s := w.Summary()
	if s.Name != "Endo" || s.Upgrades[1] != "structure_endo" {
		t.Errorf("Unexpected summary: %+v", s)
	}
	before := w.Loadout().Snapshot()

	if err := w.Strip(ctx); err != nil {
		t.Fatalf("Strip failed: %v", err)
	}
	s = w.Summary()
	if s.Armor != 0 || len(s.Components[model.RightTorso].Items) != 0 {
		t.Errorf("Expected a stripped loadout, got %+v", s)
	}

	if _, err := w.Undo(ctx); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if after := w.Loadout().Snapshot(); after.Name != before.Name || after.Components[model.RightTorso].Items[0] != "ac5" {
		t.Errorf("Expected strip to be undone, got %+v", after)
	}
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	w := newWorkbench(t, "omni55")

	changed, err := w.Toggle(ctx, model.LeftArm, "ha", false)
	if err != nil || !changed {
		t.Fatalf("Expected hand actuator to switch off, got %v, %v", changed, err)
	}
	changed, err = w.Toggle(ctx, model.LeftArm, "ha", false)
	if err != nil || changed {
		t.Errorf("Expected second toggle to be a no-op, got %v, %v", changed, err)
	}
	if _, err := w.Toggle(ctx, model.LeftArm, "ml", false); !model.IsProgrammer(err) {
		t.Errorf("Expected programmer error for a non-toggleable item, got %v", err)
	}
}

func TestMove(t *testing.T) {
	ctx := context.Background()
	w := newWorkbench(t, "std50")

	if err := w.Add(ctx, model.RightArm, "ml"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := w.Move(ctx, model.RightArm, model.LeftArm, "ml"); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if len(items(w, model.RightArm)) != 0 || len(items(w, model.LeftArm)) != 1 {
		t.Errorf("Expected ml in LA only")
	}
	if _, err := w.Undo(ctx); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if len(items(w, model.RightArm)) != 1 {
		t.Errorf("Expected move to be undone in one step")
	}
}

func TestTelemetry(t *testing.T) {
	cfg := telemetry.DefaultConfig()
	cfg.Logging.Level = "error"
	cfg.Logging.Output = "stderr"
	cfg.Tracing.Exporter = "none"
	cfg.Events.EnableAsync = false
	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		t.Fatalf("NewTelemetry failed: %v", err)
	}
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	var (
		mu    sync.Mutex
		types []string
	)
	tel.Events.Subscribe(func(e telemetry.Event) {
		mu.Lock()
		defer mu.Unlock()
		types = append(types, e.Type)
	}, nil)

	rec := &engine.Recorder{}
	w := newWorkbench(t, "std50", WithTelemetry(tel), WithSink(rec))
	ctx := context.Background()

	if err := w.Add(ctx, model.RightArm, "ml"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	_ = w.Add(ctx, model.LeftLeg, "ml")
	if _, err := w.AutoAdd(ctx, "ll"); err != nil {
		t.Fatalf("AutoAdd failed: %v", err)
	}

	if got := rec.Strings(); len(got) != 2 {
		t.Errorf("Expected 2 notifications, got %v", got)
	}

	mu.Lock()
	want := []string{
		"item.added", telemetry.EventTypeCommandApplied,
		telemetry.EventTypeCommandRejected,
		"item.added", telemetry.EventTypeCommandApplied, telemetry.EventTypeResolveCompleted,
	}
	if len(types) != len(want) {
		t.Fatalf("Expected events %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], types[i])
		}
	}
	mu.Unlock()

	reg := tel.Metrics.Registry()
	// one rejected edit counts once
	failures := `
# HELP mechforge_equip_failures_total Total number of rejected edits by reason
# TYPE mechforge_equip_failures_total counter
mechforge_equip_failures_total{reason="no_component_support"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(failures), "mechforge_equip_failures_total"); err != nil {
		t.Errorf("Unexpected equip failure count: %v", err)
	}
	if n, err := testutil.GatherAndCount(reg, "mechforge_resolver_duration_seconds"); err != nil || n != 1 {
		t.Errorf("Expected 1 resolver series, got %d (%v)", n, err)
	}
}

func TestAutoAddTracesSearch(t *testing.T) {
	cfg := telemetry.DefaultConfig()
	cfg.Logging.Level = "error"
	cfg.Events.EnableAsync = false
	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		t.Fatalf("NewTelemetry failed: %v", err)
	}
	sr := tracetest.NewSpanRecorder()
	tel.Tracer = telemetry.NewTracerFromProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)), "test")
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	w := newWorkbench(t, "std50", WithTelemetry(tel))
	plan, err := w.AutoAdd(context.Background(), "ll")
	if err != nil {
		t.Fatalf("AutoAdd failed: %v", err)
	}

	spans := make(map[string]sdktrace.ReadOnlySpan)
	for _, s := range sr.Ended() {
		spans[s.Name()] = s
	}
	op, search := spans["workbench.auto_add"], spans["resolver.search"]
	if op == nil || search == nil {
		t.Fatalf("Expected operation and search spans, got %v", spans)
	}
	if search.Parent().SpanID() != op.SpanContext().SpanID() {
		t.Error("Expected the search span to be a child of the operation")
	}

	attrs := make(map[string]int64)
	for _, kv := range search.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInt64()
	}
	if got := attrs[string(telemetry.AttrResolverAttempts)]; got != int64(plan.Attempts) || got < 1 {
		t.Errorf("Expected %d attempts, got %d", plan.Attempts, got)
	}
	if got := attrs[string(telemetry.AttrResolverSteps)]; got != int64(len(plan.Steps)) {
		t.Errorf("Expected %d steps, got %d", len(plan.Steps), got)
	}
}
