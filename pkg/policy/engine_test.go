package policy

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mechforge/mechforge/pkg/model"
	mt "github.com/mechforge/mechforge/pkg/model/modeltest"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := NewEngine(zerolog.New(nil).Level(zerolog.Disabled))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return eng
}

func findings(res *Result, policy string) []Violation {
	var out []Violation
	for _, v := range res.Violations {
		if v.Policy == policy {
			out = append(out, v)
		}
	}
	return out
}

func TestNewEngine(t *testing.T) {
	eng := newTestEngine(t)

	expected := []string{
		"ammo-without-weapon",
		"armor-coverage",
		"engine-required",
		"heat-sinks",
		"rear-armor",
		"unused-tonnage",
	}
	policies := eng.ListPolicies()
	if len(policies) != len(expected) {
		t.Fatalf("Expected %d built-in policies, got %d", len(expected), len(policies))
	}
	for i, name := range expected {
		if policies[i].Name != name {
			t.Errorf("Expected policy %d to be %s, got %s", i, name, policies[i].Name)
		}
	}
}

func TestEvaluate_EmptyLoadout(t *testing.T) {
	eng := newTestEngine(t)
	l := mt.NewLoadout(t, mt.Standard())

	res, err := eng.Evaluate(context.Background(), l)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Allowed {
		t.Error("Expected a loadout without engine to be rejected")
	}
	if len(res.Violations) == 0 || res.Violations[0].Policy != "engine-required" {
		t.Fatalf("Expected engine-required first, got %+v", res.Violations)
	}
	if res.Violations[0].Severity != SeverityError || res.Violations[0].Location != "CT" {
		t.Errorf("Unexpected engine violation: %+v", res.Violations[0])
	}
	if got := res.Count(SeverityWarning); got != model.LocationCount {
		t.Errorf("Expected %d armor warnings, got %d", model.LocationCount, got)
	}
	tonnage := findings(res, "unused-tonnage")
	if len(tonnage) != 1 || tonnage[0].Message != "45 tons unused" {
		t.Errorf("Expected 45 tons unused, got %+v", tonnage)
	}
	if len(res.EvaluatedPolicies) != 6 {
		t.Errorf("Expected 6 evaluated policies, got %v", res.EvaluatedPolicies)
	}
}

func TestEvaluate_Findings(t *testing.T) {
	eng := newTestEngine(t)

	tests := []struct {
		name    string
		setup   func(l *model.Loadout)
		policy  string
		want    []string
		wantLoc string
	}{
		{
			name:   "engine with too few heat sinks",
			setup:  func(l *model.Loadout) { l.Component(model.CenterTorso).AddItem(mt.STD200) },
			policy: "heat-sinks",
			want:   []string{"8 heat sinks, at least 10 are required"},
		},
		{
			name:   "engine with enough heat sinks",
			setup:  func(l *model.Loadout) { l.Component(model.CenterTorso).AddItem(mt.STD300) },
			policy: "heat-sinks",
		},
		{
			name:    "ammo without weapon",
			setup:   func(l *model.Loadout) { l.Component(model.RightTorso).AddItem(mt.AC20Ammo) },
			policy:  "ammo-without-weapon",
			want:    []string{"ac20_ammo carried without a matching weapon"},
			wantLoc: "RT",
		},
		{
			name: "ammo with weapon",
			setup: func(l *model.Loadout) {
				l.Component(model.RightTorso).AddItem(mt.AC20)
				l.Component(model.LeftTorso).AddItem(mt.AC20Ammo)
			},
			policy: "ammo-without-weapon",
		},
		{
			name: "front only torso armor",
			setup: func(l *model.Loadout) {
				l.Component(model.CenterTorso).SetArmor(model.SideFront, 40, true)
			},
			policy:  "rear-armor",
			want:    []string{"CT has no rear armor"},
			wantLoc: "CT",
		},
		{
			name: "half armor is enough",
			setup: func(l *model.Loadout) {
				for _, c := range l.Components() {
					side := model.SideOnly
					if c.Location().TwoSided() {
						side = model.SideFront
					}
					c.SetArmor(side, c.Def().MaxArmor/2, false)
				}
			},
			policy: "armor-coverage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := mt.NewLoadout(t, mt.Standard())
			tt.setup(l)

			res, err := eng.Evaluate(context.Background(), l)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			got := findings(res, tt.policy)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d %s findings, got %+v", len(tt.want), tt.policy, got)
			}
			for i, msg := range tt.want {
				if got[i].Message != msg {
					t.Errorf("Expected message %q, got %q", msg, got[i].Message)
				}
				if tt.wantLoc != "" && got[i].Location != tt.wantLoc {
					t.Errorf("Expected location %s, got %s", tt.wantLoc, got[i].Location)
				}
			}
		})
	}
}

func TestEnableDisablePolicy(t *testing.T) {
	eng := newTestEngine(t)
	l := mt.NewLoadout(t, mt.Standard())
	ctx := context.Background()

	if err := eng.DisablePolicy("engine-required"); err != nil {
		t.Fatalf("DisablePolicy failed: %v", err)
	}
	res, err := eng.Evaluate(ctx, l)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !res.Allowed {
		t.Error("Expected loadout to be allowed with engine-required disabled")
	}

	if err := eng.EnablePolicy("engine-required"); err != nil {
		t.Fatalf("EnablePolicy failed: %v", err)
	}
	if res, _ = eng.Evaluate(ctx, l); res.Allowed {
		t.Error("Expected loadout to be rejected again")
	}

	if err := eng.DisablePolicy("nope"); err == nil {
		t.Error("Expected error for unknown policy")
	}
}

func TestAddPolicy(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	err := eng.AddPolicy(ctx, Policy{
		Name:    "no-gauss",
		Enabled: true,
		Rego: `package league.rules

import rego.v1

deny contains "gauss rifles are banned" if {
	some it in input.loadout.items
	"gauss" in it.traits
}

deny contains v if {
	input.loadout.mass > 35
	v := {"message": "over the league limit", "severity": "error"}
}
`,
	})
	if err != nil {
		t.Fatalf("AddPolicy failed: %v", err)
	}
	p, err := eng.GetPolicy("no-gauss")
	if err != nil {
		t.Fatalf("GetPolicy failed: %v", err)
	}
	if p.Severity != SeverityWarning {
		t.Errorf("Expected default severity warning, got %s", p.Severity)
	}

	l := mt.NewLoadout(t, mt.Standard())
	l.Component(model.RightTorso).AddItem(mt.Gauss)
	l.Component(model.CenterTorso).AddItem(mt.STD300)
	res, err := eng.Evaluate(ctx, l)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	got := findings(res, "no-gauss")
	if len(got) != 2 {
		t.Fatalf("Expected 2 findings, got %+v", got)
	}
	// error severity sorts first
	if got[0].Message != "over the league limit" || got[0].Severity != SeverityError {
		t.Errorf("Unexpected first finding: %+v", got[0])
	}
	if got[1].Message != "gauss rifles are banned" || got[1].Severity != SeverityWarning {
		t.Errorf("Unexpected second finding: %+v", got[1])
	}
	if res.Allowed {
		t.Error("Expected the error finding to reject the loadout")
	}

	if err := eng.AddPolicy(ctx, Policy{Name: "broken", Rego: "package x\ndeny contains"}); err == nil {
		t.Error("Expected parse error")
	}
}

func TestReplacePolicies(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	custom := Policy{
		Name:    "custom",
		Source:  "custom.rego",
		Enabled: true,
		Rego:    "package custom\n\nimport rego.v1\n\ndeny contains \"always\" if { true }\n",
	}
	if err := eng.ReplacePolicies(ctx, []Policy{custom}); err != nil {
		t.Fatalf("ReplacePolicies failed: %v", err)
	}
	if len(eng.ListPolicies()) != 7 {
		t.Errorf("Expected builtins plus custom, got %d policies", len(eng.ListPolicies()))
	}

	bad := Policy{Name: "bad", Source: "bad.rego", Rego: "package bad\ndeny contains"}
	err := eng.ReplacePolicies(ctx, []Policy{bad})
	if err == nil || !strings.Contains(err.Error(), "bad") {
		t.Fatalf("Expected compile error for bad policy, got %v", err)
	}
	if _, err := eng.GetPolicy("custom"); err != nil {
		t.Error("Expected a failed replace to keep the previous policies")
	}

	if err := eng.ReplacePolicies(ctx, nil); err != nil {
		t.Fatalf("ReplacePolicies failed: %v", err)
	}
	if _, err := eng.GetPolicy("custom"); err == nil {
		t.Error("Expected loaded policies to be dropped")
	}
	if _, err := eng.GetPolicy("engine-required"); err != nil {
		t.Error("Expected builtins to survive a replace")
	}
}

func TestNewInput(t *testing.T) {
	l := mt.NewLoadout(t, mt.Standard())
	l.Component(model.CenterTorso).AddItem(mt.XL300)
	l.Component(model.RightTorso).AddItem(mt.Gauss)

	in := NewInput(l, "test")
	if in.Loadout.Engine == nil || in.Loadout.Engine.Type != "XL" || in.Loadout.Engine.Rating != 300 {
		t.Errorf("Unexpected engine input: %+v", in.Loadout.Engine)
	}
	if in.Loadout.Upgrades["armor"] != "armor_std" {
		t.Errorf("Expected armor_std, got %v", in.Loadout.Upgrades)
	}
	if len(in.Loadout.Items) != 2 {
		t.Fatalf("Expected 2 items, got %+v", in.Loadout.Items)
	}
	gauss := in.Loadout.Items[1]
	if gauss.Location != "RT" || len(gauss.Traits) != 2 {
		t.Errorf("Unexpected gauss input: %+v", gauss)
	}
	if len(in.Loadout.Components) != model.LocationCount {
		t.Errorf("Expected %d components, got %d", model.LocationCount, len(in.Loadout.Components))
	}
}
