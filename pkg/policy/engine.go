package policy

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/rs/zerolog"

	"github.com/mechforge/mechforge/pkg/model"
)

// Engine compiles Rego policies and evaluates them against loadouts.
type Engine struct {
	mu       sync.RWMutex
	policies map[string]*compiledPolicy
	logger   zerolog.Logger
}

type compiledPolicy struct {
	policy   *Policy
	query    rego.PreparedEvalQuery
	compiled time.Time
}

// NewEngine creates an engine holding the builtin policies.
func NewEngine(logger zerolog.Logger) (*Engine, error) {
	e := &Engine{
		policies: make(map[string]*compiledPolicy),
		logger:   logger.With().Str("component", "policy-engine").Logger(),
	}

	ctx := context.Background()
	builtins := BuiltinPolicies()
	for i := range builtins {
		if err := e.compile(ctx, &builtins[i]); err != nil {
			return nil, fmt.Errorf("failed to compile built-in policy %s: %w", builtins[i].Name, err)
		}
	}
	e.logger.Debug().Int("count", len(builtins)).Msg("Built-in policies loaded")
	return e, nil
}

// Evaluate checks l against every enabled policy.
func (e *Engine) Evaluate(ctx context.Context, l *model.Loadout) (*Result, error) {
	return e.EvaluateInput(ctx, NewInput(l, "check"))
}

// EvaluateInput checks a prepared input document. A policy that fails to
// evaluate is reported in Warnings and does not stop the others.
func (e *Engine) EvaluateInput(ctx context.Context, input *Input) (*Result, error) {
	start := time.Now()
	e.mu.RLock()
	defer e.mu.RUnlock()

	res := &Result{Allowed: true, EvaluatedAt: start}
	for _, name := range e.sortedNames() {
		cp := e.policies[name]
		if !cp.policy.Enabled {
			continue
		}
		res.EvaluatedPolicies = append(res.EvaluatedPolicies, name)

		violations, err := e.evaluate(ctx, cp, input)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.logger.Error().Err(err).Str("policy", name).Msg("Policy evaluation failed")
			res.Warnings = append(res.Warnings, fmt.Sprintf("policy %s evaluation failed: %v", name, err))
			continue
		}
		res.Violations = append(res.Violations, violations...)
	}

	sort.SliceStable(res.Violations, func(i, j int) bool {
		a, b := res.Violations[i], res.Violations[j]
		if a.Severity.rank() != b.Severity.rank() {
			return a.Severity.rank() > b.Severity.rank()
		}
		if a.Policy != b.Policy {
			return a.Policy < b.Policy
		}
		if a.Location != b.Location {
			return a.Location < b.Location
		}
		return a.Message < b.Message
	})
	for _, v := range res.Violations {
		if v.Severity == SeverityError {
			res.Allowed = false
			break
		}
	}
	res.Duration = time.Since(start)

	e.logger.Debug().
		Str("loadout", input.Loadout.ID).
		Int("violations", len(res.Violations)).
		Dur("duration", res.Duration).
		Msg("Loadout policy evaluation completed")
	return res, nil
}

func (e *Engine) evaluate(ctx context.Context, cp *compiledPolicy, input *Input) ([]Violation, error) {
	rs, err := cp.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, err
	}
	var out []Violation
	for _, r := range rs {
		if len(r.Expressions) == 0 {
			continue
		}
		deny, ok := r.Expressions[0].Value.([]interface{})
		if !ok {
			continue
		}
		for _, d := range deny {
			out = append(out, newViolation(cp.policy, d))
		}
	}
	return out, nil
}

func newViolation(p *Policy, result interface{}) Violation {
	v := Violation{Policy: p.Name, Severity: p.Severity}
	switch r := result.(type) {
	case string:
		v.Message = r
	case map[string]interface{}:
		v.Message, _ = r["message"].(string)
		v.Location, _ = r["location"].(string)
		v.Remediation, _ = r["remediation"].(string)
		if sev, ok := r["severity"].(string); ok {
			v.Severity = Severity(sev)
		}
	default:
		v.Message = fmt.Sprintf("%v", result)
	}
	return v
}

// compile parses the module and prepares a query for its deny rule.
// Callers hold the write lock or own e exclusively.
func (e *Engine) compile(ctx context.Context, p *Policy) error {
	module, err := ast.ParseModule(p.Name, p.Rego)
	if err != nil {
		return fmt.Errorf("failed to parse policy: %w", err)
	}
	query := module.Package.Path.String() + ".deny"

	prepared, err := rego.New(
		rego.Module(p.Name, p.Rego),
		rego.Query(query),
	).PrepareForEval(ctx)
	if err != nil {
		return fmt.Errorf("failed to prepare query: %w", err)
	}
	if p.Severity == "" {
		p.Severity = SeverityWarning
	}

	e.policies[p.Name] = &compiledPolicy{policy: p, query: prepared, compiled: time.Now()}
	e.logger.Debug().Str("policy", p.Name).Str("query", query).Msg("Policy compiled successfully")
	return nil
}

// AddPolicy compiles p and adds it, replacing a policy of the same name.
func (e *Engine) AddPolicy(ctx context.Context, p Policy) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.compile(ctx, &p); err != nil {
		return fmt.Errorf("policy %s: %w", p.Name, err)
	}
	return nil
}

// LoadPolicies loads .rego and .json policy files from paths.
func (e *Engine) LoadPolicies(ctx context.Context, paths []string) error {
	policies, err := NewLoader(e.logger).LoadFromPaths(ctx, paths)
	if err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}
	return e.ReplacePolicies(ctx, policies)
}

// ReplacePolicies swaps the loaded policies for policies. Builtin policies
// are kept unless a loaded policy has the same name. Nothing changes when
// a policy fails to compile.
func (e *Engine) ReplacePolicies(ctx context.Context, policies []Policy) error {
	next := &Engine{policies: make(map[string]*compiledPolicy), logger: e.logger}

	e.mu.RLock()
	for name, cp := range e.policies {
		if cp.policy.Source == "" {
			next.policies[name] = cp
		}
	}
	e.mu.RUnlock()

	for i := range policies {
		if err := next.compile(ctx, &policies[i]); err != nil {
			return fmt.Errorf("failed to compile policy %s: %w", policies[i].Name, err)
		}
	}

	e.mu.Lock()
	e.policies = next.policies
	e.mu.Unlock()

	e.logger.Info().Int("count", len(policies)).Msg("Policies loaded successfully")
	return nil
}

// GetPolicy returns a policy by name.
func (e *Engine) GetPolicy(name string) (*Policy, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cp, ok := e.policies[name]
	if !ok {
		return nil, fmt.Errorf("policy not found: %s", name)
	}
	p := *cp.policy
	return &p, nil
}

// ListPolicies returns all policies sorted by name.
func (e *Engine) ListPolicies() []Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Policy, 0, len(e.policies))
	for _, name := range e.sortedNames() {
		out = append(out, *e.policies[name].policy)
	}
	return out
}

// EnablePolicy enables a policy by name.
func (e *Engine) EnablePolicy(name string) error {
	return e.setEnabled(name, true)
}

// DisablePolicy disables a policy by name.
func (e *Engine) DisablePolicy(name string) error {
	return e.setEnabled(name, false)
}

func (e *Engine) setEnabled(name string, on bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp, ok := e.policies[name]
	if !ok {
		return fmt.Errorf("policy not found: %s", name)
	}
	cp.policy.Enabled = on
	e.logger.Debug().Str("policy", name).Bool("enabled", on).Msg("Policy toggled")
	return nil
}

func (e *Engine) sortedNames() []string {
	names := make([]string, 0, len(e.policies))
	for name := range e.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
