package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mechforge/mechforge/pkg/config"
	"github.com/mechforge/mechforge/pkg/policy"
	"github.com/mechforge/mechforge/pkg/workbench"
)

// newPolicyEngine compiles the builtin policies plus the configured and
// --policy paths, then disables the configured names.
func newPolicyEngine(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*policy.Engine, error) {
	eng, err := policy.NewEngine(logger)
	if err != nil {
		return nil, err
	}
	paths := append(append([]string(nil), cfg.Policy.Paths...), policyPaths...)
	if len(paths) > 0 {
		if err := eng.LoadPolicies(ctx, paths); err != nil {
			return nil, err
		}
	}
	for _, name := range cfg.Policy.Disabled {
		if err := eng.DisablePolicy(name); err != nil {
			return nil, fmt.Errorf("policy.disabled: %w", err)
		}
	}
	return eng, nil
}

// finish evaluates the policies against the workbench loadout and prints
// the report. With strict set, error findings fail the command.
func (s *session) finish(ctx context.Context, wb *workbench.Workbench, operation string, strict bool) error {
	input := policy.NewInput(wb.Loadout(), operation)
	res, err := s.policies.EvaluateInput(ctx, input)
	if err != nil {
		return fmt.Errorf("policy evaluation failed: %w", err)
	}
	if err := printReport(wb.Summary(), res); err != nil {
		return err
	}
	if strict && !res.Allowed {
		return fmt.Errorf("loadout rejected by %d policy errors", res.Count(policy.SeverityError))
	}
	return nil
}
