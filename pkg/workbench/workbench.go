package workbench

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mechforge/mechforge/pkg/config"
	"github.com/mechforge/mechforge/pkg/engine"
	"github.com/mechforge/mechforge/pkg/model"
	"github.com/mechforge/mechforge/pkg/stores"
	"github.com/mechforge/mechforge/pkg/telemetry"
)

// DefaultArmorRatio is the front to back armor ratio used when none is
// configured.
const DefaultArmorRatio = 3.0

// Journal records what happened to the commands of a session.
type Journal interface {
	AppendJournal(ctx context.Context, entry *stores.JournalEntry) error
}

// Workbench edits one loadout. It resolves catalog ids, builds commands,
// pushes them on its undo stack and reports every transition to the
// configured telemetry and journal. Operations are serialized.
type Workbench struct {
	mu sync.Mutex

	lookup   model.Lookup
	loadout  *model.Loadout
	stack    *engine.Stack
	resolver *engine.Resolver
	policy   engine.ArmorPolicy
	ratio    float64
	sink     engine.Sink

	tel     *telemetry.Telemetry
	logger  *telemetry.Logger
	journal Journal
	session uuid.UUID
}

type options struct {
	engine    *config.EngineConfig
	tel       *telemetry.Telemetry
	journal   Journal
	sink      engine.Sink
	upgrades  *model.Upgrades
	sessionID uuid.UUID
}

// Option configures a Workbench.
type Option func(*options)

// WithEngineConfig sets the undo depth, armor ratio, auto placement order
// and armor priority.
func WithEngineConfig(cfg config.EngineConfig) Option {
	return func(o *options) { o.engine = &cfg }
}

// WithTelemetry routes logs, spans, metrics and events through t.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(o *options) { o.tel = t }
}

// WithJournal records every applied, undone, redone and rejected command.
func WithJournal(j Journal) Option {
	return func(o *options) { o.journal = j }
}

// WithSink receives the change notifications of every command.
func WithSink(s engine.Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithUpgrades starts the loadout with up instead of the catalog defaults.
func WithUpgrades(up model.Upgrades) Option {
	return func(o *options) { o.upgrades = &up }
}

// WithSessionID sets the session id written to the journal.
func WithSessionID(id uuid.UUID) Option {
	return func(o *options) { o.sessionID = id }
}

// DefaultsLookup is a Lookup that also knows the upgrades new loadouts
// start with.
type DefaultsLookup interface {
	model.Lookup
	DefaultUpgrades() model.Upgrades
}

// New creates a workbench holding an empty loadout of chassisID. Unless
// WithUpgrades is given, lookup must implement DefaultsLookup.
func New(lookup model.Lookup, chassisID string, opts ...Option) (*Workbench, error) {
	if lookup == nil {
		return nil, model.NewProgrammerError("lookup is required").WithOperation("new")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	ch, err := lookup.Chassis(chassisID)
	if err != nil {
		return nil, err
	}
	var up model.Upgrades
	switch {
	case o.upgrades != nil:
		up = *o.upgrades
	default:
		dl, ok := lookup.(DefaultsLookup)
		if !ok {
			return nil, model.NewProgrammerError("lookup has no default upgrades, use WithUpgrades").WithOperation("new")
		}
		up = dl.DefaultUpgrades()
	}
	l, err := model.NewLoadout(ch, up)
	if err != nil {
		return nil, err
	}

	w := &Workbench{
		lookup:   lookup,
		loadout:  l,
		resolver: engine.NewResolver(),
		policy:   engine.DefaultArmorPolicy{},
		ratio:    DefaultArmorRatio,
		tel:      o.tel,
		journal:  o.journal,
		session:  o.sessionID,
	}
	if w.session == uuid.Nil {
		w.session = uuid.New()
	}

	depth := engine.DefaultDepth
	if o.engine != nil {
		if w.resolver, err = o.engine.Resolver(); err != nil {
			return nil, fmt.Errorf("invalid engine config: %w", err)
		}
		if w.policy, err = o.engine.ArmorPolicy(); err != nil {
			return nil, fmt.Errorf("invalid engine config: %w", err)
		}
		if o.engine.ArmorRatio > 0 {
			w.ratio = o.engine.ArmorRatio
		}
		depth = o.engine.UndoDepth
	}

	var stackOpts []engine.StackOption
	sinks := []engine.Sink{o.sink}
	if w.tel != nil {
		w.logger = w.tel.Logger.NewComponentLogger("workbench").WithLoadout(l.ID.String(), l.Name)
		stackOpts = append(stackOpts,
			engine.WithLogger(w.tel.Logger.NewComponentLogger("stack")),
			engine.WithMetrics(w.tel.Metrics),
		)
		sinks = append(sinks, engine.PublisherSink(w.tel.Events))
	} else {
		w.logger = telemetry.NewNopLogger()
	}
	w.sink = engine.Multi(sinks...)
	w.stack = engine.NewStack(depth, stackOpts...)

	w.logger.Debugf("Workbench ready for %s (session %s)", ch, w.session)
	return w, nil
}

// Loadout returns the loadout being edited. Callers must not mutate it.
func (w *Workbench) Loadout() *model.Loadout {
	return w.loadout
}

// Lookup returns the reference data collaborator.
func (w *Workbench) Lookup() model.Lookup {
	return w.lookup
}

// SessionID identifies this workbench in the journal.
func (w *Workbench) SessionID() uuid.UUID {
	return w.session
}

// CanUndo reports whether Undo would revert a command.
func (w *Workbench) CanUndo() bool {
	return w.stack.CanUndo()
}

// CanRedo reports whether Redo would re-apply a command.
func (w *Workbench) CanRedo() bool {
	return w.stack.CanRedo()
}

// History returns the number of undo steps.
func (w *Workbench) History() int {
	return w.stack.Len()
}

// Undo reverts the last command. It returns nil when there is nothing to
// undo.
func (w *Workbench) Undo(ctx context.Context) (engine.Command, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ic := w.start(ctx, "undo")
	cmd := w.stack.Undo()
	if cmd == nil {
		ic.Logger.Debug("Nothing to undo")
		ic.End(nil)
		return nil, nil
	}
	w.record(ic.Ctx, stores.JournalUndone, telemetry.EventTypeCommandUndone, cmd, nil)
	ic.End(nil)
	return cmd, nil
}

// Redo re-applies the last undone command. It returns a nil command when
// there is nothing to redo.
func (w *Workbench) Redo(ctx context.Context) (engine.Command, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ic := w.start(ctx, "redo")
	cmd, err := w.stack.Redo()
	if err != nil {
		w.reject(ic, cmd, err)
		ic.End(err)
		return nil, err
	}
	if cmd == nil {
		ic.Logger.Debug("Nothing to redo")
		ic.End(nil)
		return nil, nil
	}
	w.record(ic.Ctx, stores.JournalRedone, telemetry.EventTypeCommandRedone, cmd, nil)
	ic.End(nil)
	return cmd, nil
}

// start opens the span and logger of an operation.
func (w *Workbench) start(ctx context.Context, op string, attrs ...attribute.KeyValue) *telemetry.InstrumentedContext {
	if w.tel != nil && telemetry.FromTelemetryContext(ctx) == nil {
		ctx = w.tel.WithContext(ctx)
	}
	ctx = w.logger.WithContext(ctx)
	attrs = append(attrs,
		telemetry.AttrLoadoutID.String(w.loadout.ID.String()),
		telemetry.AttrChassisID.String(w.loadout.Chassis.ID),
	)
	return telemetry.StartOperation(ctx, "workbench."+op, attrs...)
}

// push builds and applies a command inside an operation span.
func (w *Workbench) push(ctx context.Context, op string, attrs []attribute.KeyValue, build func() (engine.Command, error)) (engine.Command, error) {
	return w.pushObserved(ctx, op, attrs, build, nil)
}

// pushObserved is push with a hook that runs inside the operation span once
// the outcome is known, including build failures.
func (w *Workbench) pushObserved(ctx context.Context, op string, attrs []attribute.KeyValue, build func() (engine.Command, error), done func(ctx context.Context, err error)) (engine.Command, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ic := w.start(ctx, op, attrs...)
	finish := func(err error) {
		if done != nil {
			done(ic.Ctx, err)
		}
		ic.End(err)
	}
	cmd, err := build()
	if err != nil {
		w.reject(ic, nil, err)
		finish(err)
		return nil, err
	}
	annotate(ic, telemetry.AttrCommandKind.String(string(engine.KindOf(cmd))))
	if err := w.stack.Push(cmd); err != nil {
		w.reject(ic, cmd, err)
		finish(err)
		return nil, err
	}
	w.record(ic.Ctx, stores.JournalApplied, telemetry.EventTypeCommandApplied, cmd, nil)
	finish(nil)
	return cmd, nil
}

// annotate adds attributes to the operation span, if one is recording.
func annotate(ic *telemetry.InstrumentedContext, attrs ...attribute.KeyValue) {
	if ic.Span != nil {
		telemetry.SetAttributes(ic.Span, attrs...)
	}
}

func (w *Workbench) metrics() *telemetry.Metrics {
	if w.tel == nil {
		return nil
	}
	return w.tel.Metrics
}

func (w *Workbench) events() *telemetry.EventPublisher {
	if w.tel == nil {
		return nil
	}
	return w.tel.Events
}

// reject reports a failed operation. Equip failures are expected outcomes
// and are logged at info; everything else is an error. Failures of a
// command the stack applied are counted and logged by the stack.
func (w *Workbench) reject(ic *telemetry.InstrumentedContext, cmd engine.Command, err error) {
	res, ok := model.ResultOf(err)
	if !ok {
		class := "internal"
		switch {
		case model.IsLookup(err):
			class = "lookup"
		case model.IsProgrammer(err):
			class = "programmer"
		}
		w.metrics().RecordError(class)
		annotate(ic, telemetry.AttrErrorClass.String(class))
		ic.Logger.WithError(err).Errorf("Operation failed (%s)", class)
		return
	}

	annotate(ic, telemetry.AttrResult.String(string(res.Type)))
	if cmd != nil {
		// the stack already counted and logged it
		result := string(res.Type)
		w.record(ic.Ctx, stores.JournalRejected, telemetry.EventTypeCommandRejected, cmd, &result)
		return
	}

	w.metrics().RecordEquipFailure(string(res.Type))
	l := ic.Logger.WithField("reason", string(res.Type))
	if res.HasLocation {
		l = l.WithField("location", res.Location.String())
	}
	l.Info("Edit rejected")
}

// record publishes a stack transition and appends it to the journal. A
// journal write failure is logged and does not undo the transition.
func (w *Workbench) record(ctx context.Context, action stores.JournalAction, eventType string, cmd engine.Command, result *string) {
	kind := string(engine.KindOf(cmd))
	id := w.loadout.ID.String()
	_ = w.events().PublishCommand(eventType, id, kind, cmd.Describe())

	if w.journal == nil {
		return
	}
	entry := &stores.JournalEntry{
		SessionID:   w.session.String(),
		LoadoutID:   id,
		Chassis:     w.loadout.Chassis.ID,
		Action:      action,
		Kind:        kind,
		Description: cmd.Describe(),
		Result:      result,
		Mass:        w.loadout.Mass(),
	}
	if err := w.journal.AppendJournal(ctx, entry); err != nil {
		w.metrics().RecordError("journal")
		telemetry.FromContext(ctx).WithError(err).Warn("Failed to append journal entry")
	}
}
