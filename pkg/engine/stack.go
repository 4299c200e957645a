package engine

import (
	"sync"

	"github.com/mechforge/mechforge/pkg/model"
	"github.com/mechforge/mechforge/pkg/telemetry"
)

// DefaultDepth is the undo depth used when none is configured.
const DefaultDepth = 128

// Stack is a bounded undo/redo history. It is the only mutator of the
// loadouts its commands target: every apply and undo runs under its lock.
type Stack struct {
	mu      sync.Mutex
	depth   int
	undo    []Command
	redo    []Command
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
}

// StackOption configures a Stack.
type StackOption func(*Stack)

// WithLogger sets the logger used for command tracing.
func WithLogger(l *telemetry.Logger) StackOption {
	return func(s *Stack) { s.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *telemetry.Metrics) StackOption {
	return func(s *Stack) { s.metrics = m }
}

// NewStack creates a stack holding at most depth undo steps. Pushing past
// the bound evicts the oldest step.
func NewStack(depth int, opts ...StackOption) *Stack {
	if depth <= 0 {
		depth = DefaultDepth
	}
	s := &Stack{depth: depth}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Push applies cmd and records it. If cmd has the same non-zero coalesce key
// as the top of the undo stack, the top is undone and replaced by cmd. On
// failure nothing changes and the error is returned. A successful push
// clears the redo stack.
func (s *Stack) Push(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cmd.Key()
	if n := len(s.undo); n > 0 && !key.IsZero() && s.undo[n-1].Key() == key {
		top := s.undo[n-1]
		top.Undo()
		if err := cmd.Apply(); err != nil {
			if rerr := top.Apply(); rerr != nil {
				s.undo = s.undo[:n-1]
				return model.NewInternalError("failed to restore coalesced command", rerr)
			}
			s.recordFailure(cmd, err)
			return err
		}
		s.undo[n-1] = cmd
		s.redo = nil
		s.debug(cmd, "coalesced")
		s.metrics.RecordCommandApplied(string(KindOf(cmd)), true)
		s.metrics.SetUndoDepth(float64(len(s.undo)))
		return nil
	}

	if err := cmd.Apply(); err != nil {
		s.recordFailure(cmd, err)
		return err
	}
	s.undo = append(s.undo, cmd)
	if len(s.undo) > s.depth {
		evicted := len(s.undo) - s.depth
		clear(s.undo[:evicted])
		s.undo = s.undo[evicted:]
	}
	s.redo = nil
	s.debug(cmd, "applied")
	s.metrics.RecordCommandApplied(string(KindOf(cmd)), false)
	s.metrics.SetUndoDepth(float64(len(s.undo)))
	return nil
}

// Undo reverts the most recent command and moves it to the redo stack. It
// returns nil when there is nothing to undo.
func (s *Stack) Undo() Command {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.undo)
	if n == 0 {
		return nil
	}
	cmd := s.undo[n-1]
	s.undo = s.undo[:n-1]
	cmd.Undo()
	s.redo = append(s.redo, cmd)
	s.debug(cmd, "undone")
	s.metrics.RecordCommandUndone(string(KindOf(cmd)))
	s.metrics.SetUndoDepth(float64(len(s.undo)))
	return cmd
}

// Redo re-applies the most recently undone command. It returns a nil
// command when there is nothing to redo.
func (s *Stack) Redo() (Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.redo)
	if n == 0 {
		return nil, nil
	}
	cmd := s.redo[n-1]
	if err := cmd.Apply(); err != nil {
		s.recordFailure(cmd, err)
		return cmd, err
	}
	s.redo = s.redo[:n-1]
	s.undo = append(s.undo, cmd)
	s.debug(cmd, "redone")
	s.metrics.RecordCommandRedone(string(KindOf(cmd)))
	s.metrics.SetUndoDepth(float64(len(s.undo)))
	return cmd, nil
}

// CanUndo reports whether there is a command to undo.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether there is a command to redo.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// NextUndo returns the command Undo would revert, or nil.
func (s *Stack) NextUndo() Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undo) == 0 {
		return nil
	}
	return s.undo[len(s.undo)-1]
}

// NextRedo returns the command Redo would apply, or nil.
func (s *Stack) NextRedo() Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.redo) == 0 {
		return nil
	}
	return s.redo[len(s.redo)-1]
}

// Len returns the number of undo steps.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo)
}

// Depth returns the configured bound.
func (s *Stack) Depth() int {
	return s.depth
}

// Clear drops all history without touching the loadout.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undo, s.redo = nil, nil
	s.metrics.SetUndoDepth(0)
}

func (s *Stack) debug(cmd Command, action string) {
	if s.logger == nil {
		return
	}
	s.logger.WithFields(map[string]interface{}{
		"kind":  string(KindOf(cmd)),
		"depth": len(s.undo),
	}).Debugf("%s: %s", action, cmd.Describe())
}

func (s *Stack) recordFailure(cmd Command, err error) {
	reason := "error"
	if r, ok := model.ResultOf(err); ok {
		reason = string(r.Type)
		s.metrics.RecordEquipFailure(reason)
	}
	if s.logger == nil {
		return
	}
	fields := map[string]interface{}{
		"kind":   string(KindOf(cmd)),
		"reason": reason,
	}
	if r, ok := model.ResultOf(err); ok && r.HasLocation {
		fields["location"] = r.Location.String()
	}
	if model.IsEquip(err) {
		s.logger.WithFields(fields).Infof("rejected: %s", cmd.Describe())
		return
	}
	s.logger.WithFields(fields).WithError(err).Errorf("failed: %s", cmd.Describe())
}
