package engine_test

import (
	"fmt"

	"github.com/mechforge/mechforge/pkg/engine"
	"github.com/mechforge/mechforge/pkg/model"
	mt "github.com/mechforge/mechforge/pkg/model/modeltest"
)

// ExampleStack shows editing a loadout through the undo stack.
func ExampleStack() {
	l, err := model.NewLoadout(mt.Standard(), mt.DefaultUpgrades())
	if err != nil {
		panic(err)
	}
	stack := engine.NewStack(32)
	rec := &engine.Recorder{}

	add, _ := engine.NewAddItem(l, model.RightArm, mt.MediumLaser, rec)
	if err := stack.Push(add); err != nil {
		panic(err)
	}

	bad, _ := engine.NewAddItem(l, model.Head, mt.AC20, rec)
	if err := stack.Push(bad); err != nil {
		r, _ := model.ResultOf(err)
		fmt.Println("rejected:", r.Type)
	}

	stack.Undo()
	for _, s := range rec.Strings() {
		fmt.Println(s)
	}

	// Output:
	// rejected: no_component_support
	// item.added ml@RA[0]
	// item.removed ml@RA[0]
}

// ExampleResolver shows planning an auto placement without mutating.
func ExampleResolver() {
	l, _ := model.NewLoadout(mt.Standard(), mt.DefaultUpgrades())
	for i := 0; i < 11; i++ {
		add, _ := engine.NewAddItem(l, model.RightTorso, mt.AC20Ammo, nil)
		_ = add.Apply()
	}

	plan, res := engine.NewResolver().Resolve(l, mt.ECM)
	fmt.Println(res.Type)
	fmt.Println(plan)

	// Output:
	// success
	// remove ac20_ammo@RT, add ecm@RT, add ac20_ammo@RA
}
