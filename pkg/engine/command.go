package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mechforge/mechforge/pkg/model"
)

// CommandKind names the operation a command performs.
type CommandKind string

const (
	KindAdd             CommandKind = "add"
	KindRemove          CommandKind = "remove"
	KindToggle          CommandKind = "toggle"
	KindMove            CommandKind = "move"
	KindSetArmor        CommandKind = "set_armor"
	KindMaxArmor        CommandKind = "max_armor"
	KindDistributeArmor CommandKind = "distribute_armor"
	KindRename          CommandKind = "rename"
	KindChangeUpgrade   CommandKind = "change_upgrade"
	KindAutoAdd         CommandKind = "auto_add"
	KindStrip           CommandKind = "strip"
	KindComposite       CommandKind = "composite"
)

// Validate checks if the command kind is valid.
func (k CommandKind) Validate() error {
	switch k {
	case KindAdd, KindRemove, KindToggle, KindMove, KindSetArmor, KindMaxArmor,
		KindDistributeArmor, KindRename, KindChangeUpgrade, KindAutoAdd, KindStrip, KindComposite:
		return nil
	default:
		return fmt.Errorf("invalid command kind: %s", k)
	}
}

// CoalesceKey identifies the logical edit a command performs. Two commands
// with equal non-zero keys describe the same edit and collapse into one undo
// step on the stack.
type CoalesceKey struct {
	Kind     CommandKind
	Loadout  uuid.UUID
	Location model.Location
	Side     model.ArmorSide
	Manual   bool
}

// IsZero reports whether the key disables coalescing.
func (k CoalesceKey) IsZero() bool {
	return k == CoalesceKey{}
}

// Command is an atomic, reversible operation on a loadout. Apply either
// succeeds or leaves the loadout unchanged. Undo restores the state from
// before the last successful Apply and must only be called after one.
type Command interface {
	Apply() error
	Undo()
	Describe() string
	Key() CoalesceKey
}

// Kinded is implemented by commands that report their kind.
type Kinded interface {
	Kind() CommandKind
}

// KindOf returns the kind of cmd, or KindComposite when it does not say.
func KindOf(cmd Command) CommandKind {
	if k, ok := cmd.(Kinded); ok {
		return k.Kind()
	}
	return KindComposite
}

// Composite applies children in order and undoes them in reverse. If a
// child fails, the children applied before it are undone and the error is
// returned. Composites built by this package emit their notifications only
// when every child applied.
type Composite struct {
	kind        CommandKind
	description string
	key         CoalesceKey
	children    []Command
	gate        *gate
}

// NewComposite groups commands into one undoable unit.
func NewComposite(description string, children ...Command) *Composite {
	return &Composite{kind: KindComposite, description: description, children: children}
}

// Apply implements Command.
func (c *Composite) Apply() error {
	if c.gate == nil {
		return applyAll(c.children)
	}
	mark := c.gate.hold()
	err := applyAll(c.children)
	c.gate.release(mark, err == nil)
	return err
}

// Undo implements Command.
func (c *Composite) Undo() {
	undoAll(c.children)
}

// Describe implements Command.
func (c *Composite) Describe() string {
	return c.description
}

// Key implements Command.
func (c *Composite) Key() CoalesceKey {
	return c.key
}

// Kind implements Kinded.
func (c *Composite) Kind() CommandKind {
	return c.kind
}

// Children returns the grouped commands.
func (c *Composite) Children() []Command {
	return c.children
}

func applyAll(cmds []Command) error {
	for i, cmd := range cmds {
		if err := cmd.Apply(); err != nil {
			undoAll(cmds[:i])
			return err
		}
	}
	return nil
}

func undoAll(cmds []Command) {
	for i := len(cmds) - 1; i >= 0; i-- {
		cmds[i].Undo()
	}
}

// batch builds its children from the loadout state at Apply time. Armor
// algorithms and auto placement use it since their steps depend on the
// state they start from.
type batch struct {
	kind        CommandKind
	description string
	key         CoalesceKey
	build       func() ([]Command, error)
	applied     []Command
	gate        *gate
}

func (b *batch) Apply() error {
	if b.applied != nil {
		return model.NewProgrammerError("command already applied").WithOperation(string(b.kind))
	}
	if b.gate != nil {
		mark := b.gate.hold()
		err := b.apply()
		b.gate.release(mark, err == nil)
		return err
	}
	return b.apply()
}

func (b *batch) apply() error {
	cmds, err := b.build()
	if err != nil {
		return err
	}
	if err := applyAll(cmds); err != nil {
		return err
	}
	b.applied = cmds
	return nil
}

func (b *batch) Undo() {
	undoAll(b.applied)
	b.applied = nil
}

func (b *batch) Describe() string { return b.description }

func (b *batch) Key() CoalesceKey { return b.key }

func (b *batch) Kind() CommandKind { return b.kind }

// Steps returns the commands applied by the last Apply.
func (b *batch) Steps() []Command {
	return b.applied
}
