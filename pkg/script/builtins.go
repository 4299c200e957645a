package script

import (
	"context"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/mechforge/mechforge/pkg/model"
	"github.com/mechforge/mechforge/pkg/workbench"
)

type builtinFunc func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error)

// builtins binds the loadout functions of a script to wb.
func builtins(ctx context.Context, wb *workbench.Workbench) starlark.StringDict {
	fns := map[string]builtinFunc{
		"add": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var loc, item string
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "location", &loc, "item", &item); err != nil {
				return nil, err
			}
			l, err := model.ParseLocation(loc)
			if err != nil {
				return nil, err
			}
			return starlark.None, wb.Add(ctx, l, item)
		},

		"try_add": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var loc, item string
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "location", &loc, "item", &item); err != nil {
				return nil, err
			}
			l, err := model.ParseLocation(loc)
			if err != nil {
				return nil, err
			}
			err = wb.Add(ctx, l, item)
			if res, ok := model.ResultOf(err); ok {
				return starlark.String(res.Type), nil
			}
			if err != nil {
				return nil, err
			}
			return starlark.String(model.ResultSuccess), nil
		},

		"auto_add": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var item string
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "item", &item); err != nil {
				return nil, err
			}
			plan, err := wb.AutoAdd(ctx, item)
			if err != nil {
				return nil, err
			}
			steps := make([]starlark.Value, len(plan.Steps))
			for i, st := range plan.Steps {
				steps[i] = starlark.String(st.String())
			}
			return starlark.NewList(steps), nil
		},

		"remove": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var loc, item string
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "location", &loc, "item", &item); err != nil {
				return nil, err
			}
			l, err := model.ParseLocation(loc)
			if err != nil {
				return nil, err
			}
			return starlark.None, wb.Remove(ctx, l, item)
		},

		"move": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var from, to, item string
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "from", &from, "to", &to, "item", &item); err != nil {
				return nil, err
			}
			src, err := model.ParseLocation(from)
			if err != nil {
				return nil, err
			}
			dst, err := model.ParseLocation(to)
			if err != nil {
				return nil, err
			}
			return starlark.None, wb.Move(ctx, src, dst, item)
		},

		"toggle": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var loc, item string
			on := true
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "location", &loc, "item", &item, "on?", &on); err != nil {
				return nil, err
			}
			l, err := model.ParseLocation(loc)
			if err != nil {
				return nil, err
			}
			changed, err := wb.Toggle(ctx, l, item, on)
			if err != nil {
				return nil, err
			}
			return starlark.Bool(changed), nil
		},

		"armor": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var loc string
			var amount int
			side := ""
			manual := true
			if err := starlark.UnpackArgs(b.Name(), args, kwargs,
				"location", &loc, "amount", &amount, "side?", &side, "manual?", &manual); err != nil {
				return nil, err
			}
			l, err := model.ParseLocation(loc)
			if err != nil {
				return nil, err
			}
			s := model.SideOnly
			switch {
			case side != "":
				if s, err = model.ParseArmorSide(side); err != nil {
					return nil, err
				}
			case l.TwoSided():
				s = model.SideFront
			}
			return starlark.None, wb.SetArmor(ctx, l, s, amount, manual)
		},

		"max_armor": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			manual := false
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "manual?", &manual); err != nil {
				return nil, err
			}
			return starlark.None, wb.MaxArmor(ctx, manual)
		},

		"distribute": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var points int
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "points", &points); err != nil {
				return nil, err
			}
			return starlark.None, wb.DistributeArmor(ctx, points)
		},

		"upgrade": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var id string
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "upgrade", &id); err != nil {
				return nil, err
			}
			return starlark.None, wb.SetUpgrade(ctx, id)
		},

		"rename": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var name string
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
				return nil, err
			}
			return starlark.None, wb.Rename(ctx, name)
		},

		"strip": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
				return nil, err
			}
			return starlark.None, wb.Strip(ctx)
		},

		"undo": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
				return nil, err
			}
			cmd, err := wb.Undo(ctx)
			if err != nil {
				return nil, err
			}
			return starlark.Bool(cmd != nil), nil
		},

		"redo": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
				return nil, err
			}
			cmd, err := wb.Redo(ctx)
			if err != nil {
				return nil, err
			}
			return starlark.Bool(cmd != nil), nil
		},

		"mass": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
				return nil, err
			}
			return starlark.Float(wb.Summary().Mass), nil
		},

		"free_mass": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
				return nil, err
			}
			return starlark.Float(wb.Summary().FreeMass), nil
		},

		"items": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			loc := ""
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "location?", &loc); err != nil {
				return nil, err
			}
			var out []starlark.Value
			for _, c := range wb.Summary().Components {
				if loc != "" {
					l, err := model.ParseLocation(loc)
					if err != nil {
						return nil, err
					}
					if c.Location != l.String() {
						continue
					}
				}
				for _, id := range c.Items {
					out = append(out, starlark.String(id))
				}
			}
			return starlark.NewList(out), nil
		},

		"summary": func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
				return nil, err
			}
			s := wb.Summary()
			upgrades := make([]starlark.Value, len(s.Upgrades))
			for i, u := range s.Upgrades {
				upgrades[i] = starlark.String(u)
			}
			return starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
				"name":        starlark.String(s.Name),
				"chassis":     starlark.String(s.Chassis),
				"mass":        starlark.Float(s.Mass),
				"free_mass":   starlark.Float(s.FreeMass),
				"slots_used":  starlark.MakeInt(s.SlotsUsed),
				"slots_total": starlark.MakeInt(s.SlotsTotal),
				"armor":       starlark.MakeInt(s.Armor),
				"armor_max":   starlark.MakeInt(s.ArmorMax),
				"heat_sinks":  starlark.MakeInt(s.HeatSinks),
				"engine":      starlark.String(s.Engine),
				"upgrades":    starlark.NewList(upgrades),
			}), nil
		},
	}

	out := make(starlark.StringDict, len(fns))
	for name, fn := range fns {
		out[name] = starlark.NewBuiltin(name, fn)
	}
	return out
}
