package workbench

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mechforge/mechforge/pkg/engine"
	"github.com/mechforge/mechforge/pkg/model"
	"github.com/mechforge/mechforge/pkg/telemetry"
)

func itemAttrs(itemID string, locs ...model.Location) []attribute.KeyValue {
	attrs := []attribute.KeyValue{telemetry.AttrItemID.String(itemID)}
	for _, loc := range locs {
		attrs = append(attrs, telemetry.AttrLocation.String(loc.String()))
	}
	return attrs
}

// Add equips itemID at loc.
func (w *Workbench) Add(ctx context.Context, loc model.Location, itemID string) error {
	_, err := w.push(ctx, "add", itemAttrs(itemID, loc), func() (engine.Command, error) {
		item, err := w.lookup.Item(itemID)
		if err != nil {
			return nil, err
		}
		return engine.NewAddItem(w.loadout, loc, item, w.sink)
	})
	return err
}

// Remove unequips one itemID from loc.
func (w *Workbench) Remove(ctx context.Context, loc model.Location, itemID string) error {
	_, err := w.push(ctx, "remove", itemAttrs(itemID, loc), func() (engine.Command, error) {
		item, err := w.lookup.Item(itemID)
		if err != nil {
			return nil, err
		}
		return engine.NewRemoveItem(w.loadout, loc, item, w.sink)
	})
	return err
}

// Move relocates one itemID from one location to another as a single undo
// step.
func (w *Workbench) Move(ctx context.Context, from, to model.Location, itemID string) error {
	_, err := w.push(ctx, "move", itemAttrs(itemID, from, to), func() (engine.Command, error) {
		item, err := w.lookup.Item(itemID)
		if err != nil {
			return nil, err
		}
		return engine.NewMoveItem(w.loadout, from, to, item, w.sink)
	})
	return err
}

// Toggle switches a toggleable actuator on or off. It reports whether the
// state changed; switching to the current state is a no-op that still
// takes an undo step.
func (w *Workbench) Toggle(ctx context.Context, loc model.Location, itemID string, on bool) (bool, error) {
	cmd, err := w.push(ctx, "toggle", itemAttrs(itemID, loc), func() (engine.Command, error) {
		item, err := w.lookup.Item(itemID)
		if err != nil {
			return nil, err
		}
		return engine.NewToggleItem(w.loadout, loc, item, on, w.sink)
	})
	if err != nil {
		return false, err
	}
	return cmd.(*engine.ToggleItem).Changed(), nil
}

// SetArmor sets the armor of one side. Repeated edits of the same side
// collapse into one undo step.
func (w *Workbench) SetArmor(ctx context.Context, loc model.Location, side model.ArmorSide, amount int, manual bool) error {
	attrs := []attribute.KeyValue{
		telemetry.AttrLocation.String(loc.String()),
		attribute.String("armor.side", side.String()),
		attribute.Int("armor.amount", amount),
	}
	_, err := w.push(ctx, "set_armor", attrs, func() (engine.Command, error) {
		return engine.NewSetArmor(w.loadout, loc, side, amount, manual, w.sink)
	})
	return err
}

// MaxArmor raises every unlocked side to its maximum using the configured
// front to back ratio.
func (w *Workbench) MaxArmor(ctx context.Context, manual bool) error {
	_, err := w.push(ctx, "max_armor", nil, func() (engine.Command, error) {
		return engine.NewMaxArmor(w.loadout, w.ratio, manual, w.sink)
	})
	return err
}

// DistributeArmor spreads points of armor over the unlocked sides following
// the configured priority policy.
func (w *Workbench) DistributeArmor(ctx context.Context, points int) error {
	attrs := []attribute.KeyValue{attribute.Int("armor.points", points)}
	_, err := w.push(ctx, "distribute_armor", attrs, func() (engine.Command, error) {
		return engine.NewDistributeArmor(w.loadout, points, w.ratio, w.policy, w.sink)
	})
	return err
}

// SetUpgrade replaces the upgrade of the same type with upgradeID.
func (w *Workbench) SetUpgrade(ctx context.Context, upgradeID string) error {
	attrs := []attribute.KeyValue{attribute.String("upgrade.id", upgradeID)}
	_, err := w.push(ctx, "set_upgrade", attrs, func() (engine.Command, error) {
		up, err := w.lookup.Upgrade(upgradeID)
		if err != nil {
			return nil, err
		}
		return engine.NewChangeUpgrade(w.loadout, up, w.sink)
	})
	return err
}

// Rename changes the loadout name. Consecutive renames collapse into one
// undo step.
func (w *Workbench) Rename(ctx context.Context, name string) error {
	attrs := []attribute.KeyValue{telemetry.AttrLoadoutName.String(name)}
	_, err := w.push(ctx, "rename", attrs, func() (engine.Command, error) {
		return engine.NewRename(w.loadout, name, w.sink)
	})
	return err
}

// Strip removes all equipment and armor as one undo step.
func (w *Workbench) Strip(ctx context.Context) error {
	_, err := w.push(ctx, "strip", nil, func() (engine.Command, error) {
		return engine.NewStrip(w.loadout, w.sink)
	})
	return err
}

// AutoAdd equips itemID wherever it fits, relocating up to two equipped
// items when needed. It returns the plan that was applied.
func (w *Workbench) AutoAdd(ctx context.Context, itemID string) (engine.Plan, error) {
	var (
		auto  *engine.AutoAddItem
		plan  engine.Plan
		timer = telemetry.NewTimer()
	)
	build := func() (engine.Command, error) {
		item, err := w.lookup.Item(itemID)
		if err != nil {
			return nil, err
		}
		auto, err = engine.NewAutoAddItem(w.loadout, item, w.resolver, w.sink)
		if err != nil {
			return nil, err
		}
		return auto, nil
	}
	done := func(ctx context.Context, err error) {
		if auto == nil {
			return
		}
		plan = auto.Plan()
		w.observeResolve(ctx, itemID, plan, err, timer)
	}
	_, err := w.pushObserved(ctx, "auto_add", itemAttrs(itemID), build, done)
	return plan, err
}

func resolveOutcome(err error) string {
	if err == nil {
		return "success"
	}
	if res, ok := model.ResultOf(err); ok {
		return string(res.Type)
	}
	return "failure"
}

// observeResolve reports a finished search as a child span of the auto_add
// operation, a metric sample, an event and a debug log entry.
func (w *Workbench) observeResolve(ctx context.Context, itemID string, plan engine.Plan, err error, timer *telemetry.Timer) {
	outcome := resolveOutcome(err)
	d := timer.Duration()

	if w.tel != nil {
		_, span := w.tel.Tracer.StartResolveSpan(ctx, w.loadout.ID.String(), itemID, timer.Started())
		telemetry.SetAttributes(span,
			telemetry.AttrResolverAttempts.Int(plan.Attempts),
			telemetry.AttrResolverSteps.Int(len(plan.Steps)),
			telemetry.AttrResult.String(outcome),
		)
		if err != nil {
			telemetry.RecordError(span, err)
		} else {
			telemetry.RecordSuccess(span)
		}
		span.End()
	}

	w.metrics().RecordResolve(outcome, plan.Attempts, d)
	_ = w.events().PublishResolveCompleted(w.loadout.ID.String(), itemID, outcome, plan.Attempts, d)
	telemetry.FromContext(ctx).WithItem(itemID).
		WithFields(map[string]interface{}{
			"outcome":     outcome,
			"attempts":    plan.Attempts,
			"relocations": plan.Relocations(),
		}).
		Debugf("Auto placement finished: %s", plan)
}
