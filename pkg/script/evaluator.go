package script

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/mechforge/mechforge/pkg/telemetry"
	"github.com/mechforge/mechforge/pkg/workbench"
)

// DefaultTimeout bounds a script run when no timeout is given.
const DefaultTimeout = 30 * time.Second

// Result is the outcome of a script run.
type Result struct {
	// Globals holds the top level variables of the script converted to Go
	// values. Names starting with an underscore are skipped.
	Globals map[string]interface{}

	// Printed collects the output of print() calls in order.
	Printed []string

	ExecutionTime time.Duration
	Error         string
}

// Evaluator runs loadout scripts against a workbench.
type Evaluator struct {
	timeout time.Duration
}

// NewEvaluator creates an evaluator whose runs are cancelled after timeout.
func NewEvaluator(timeout time.Duration) *Evaluator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Evaluator{timeout: timeout}
}

// Timeout returns the run time limit.
func (e *Evaluator) Timeout() time.Duration {
	return e.timeout
}

// Run executes source against wb. vars are predeclared as globals. Every
// edit the script makes goes through wb, so a failed run leaves the edits
// made before the failure on the undo stack. The returned error wraps the
// error of the failing builtin: model.IsEquip and model.ResultOf see
// through it.
func (e *Evaluator) Run(ctx context.Context, wb *workbench.Workbench, filename, source string, vars map[string]interface{}) (*Result, error) {
	ic := telemetry.StartOperation(ctx, "script.run", attribute.String("script.file", filename))
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ic.Ctx, e.timeout)
	defer cancel()

	res := &Result{}
	thread := &starlark.Thread{
		Name: "forge",
		Print: func(_ *starlark.Thread, msg string) {
			res.Printed = append(res.Printed, msg)
		},
	}

	predeclared := starlark.StringDict{
		"struct": starlarkstruct.Default,
	}
	for name, fn := range builtins(runCtx, wb) {
		predeclared[name] = fn
	}
	for name, v := range vars {
		sv, err := toStarlark(v)
		if err != nil {
			err = fmt.Errorf("failed to convert variable %s: %w", name, err)
			ic.End(err)
			return nil, err
		}
		predeclared[name] = sv
	}

	type outcome struct {
		globals starlark.StringDict
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		globals, err := starlark.ExecFile(thread, filename, source, predeclared)
		done <- outcome{globals, err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-runCtx.Done():
		thread.Cancel(runCtx.Err().Error())
		<-done
		out.err = fmt.Errorf("script execution timeout after %v", e.timeout)
	}
	res.ExecutionTime = time.Since(start)

	if out.err != nil {
		res.Error = out.err.Error()
		ic.Logger.WithError(out.err).Debugf("Script %s failed after %v", filename, res.ExecutionTime)
		ic.End(out.err)
		return res, fmt.Errorf("script %s: %w", filename, out.err)
	}

	res.Globals = make(map[string]interface{}, len(out.globals))
	for _, name := range out.globals.Keys() {
		if name[0] == '_' {
			continue
		}
		v, err := fromStarlark(out.globals[name])
		if err != nil {
			// functions and other values without a Go form are left out
			continue
		}
		res.Globals[name] = v
	}
	ic.Logger.Debugf("Script %s finished in %v", filename, res.ExecutionTime)
	ic.End(nil)
	return res, nil
}
