package policy

import (
	"strings"
	"time"

	"github.com/mechforge/mechforge/pkg/model"
)

// Severity represents the severity level of a policy violation.
type Severity string

const (
	// SeverityInfo is for informational messages.
	SeverityInfo Severity = "info"

	// SeverityWarning is for findings that should be reviewed.
	SeverityWarning Severity = "warning"

	// SeverityError marks a loadout that is not fit to field.
	SeverityError Severity = "error"
)

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Policy is a Rego module whose deny set lists the findings for a loadout.
type Policy struct {
	// Name is the unique name of the policy.
	Name string `json:"name"`

	Description string `json:"description"`

	// Rego contains the module source. Its deny rule yields strings or
	// objects with message, severity, location and remediation keys.
	Rego string `json:"rego"`

	// Severity is the default severity for findings that do not set one.
	Severity Severity `json:"severity"`

	Enabled bool     `json:"enabled"`
	Tags    []string `json:"tags,omitempty"`

	// Source is the file the policy was loaded from, empty for builtins.
	Source string `json:"source,omitempty"`
}

// Violation is one finding of a policy.
type Violation struct {
	Policy      string   `json:"policy"`
	Location    string   `json:"location,omitempty"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	Remediation string   `json:"remediation,omitempty"`
}

// Result is the outcome of evaluating every enabled policy.
type Result struct {
	// Allowed is false when any violation has error severity.
	Allowed bool `json:"allowed"`

	// Violations are sorted by descending severity, then policy name.
	Violations []Violation `json:"violations,omitempty"`

	// Warnings lists policies that failed to evaluate.
	Warnings []string `json:"warnings,omitempty"`

	EvaluatedPolicies []string      `json:"evaluated_policies"`
	EvaluatedAt       time.Time     `json:"evaluated_at"`
	Duration          time.Duration `json:"duration"`
}

// Count returns the number of violations with severity s.
func (r *Result) Count(s Severity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == s {
			n++
		}
	}
	return n
}

// Input is the document policies see as input.
type Input struct {
	Loadout LoadoutInput `json:"loadout"`
	Context Context      `json:"context"`
}

// Context describes why the loadout is being checked.
type Context struct {
	Operation string    `json:"operation,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LoadoutInput is a flat JSON friendly view of a loadout.
type LoadoutInput struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Chassis   string            `json:"chassis"`
	Omni      bool              `json:"omni"`
	Mass      float64           `json:"mass"`
	MassMax   float64           `json:"mass_max"`
	FreeMass  float64           `json:"free_mass"`
	Armor     int               `json:"armor"`
	ArmorMax  int               `json:"armor_max"`
	HeatSinks int               `json:"heat_sinks"`
	Engine    *EngineInput      `json:"engine"`
	Upgrades  map[string]string `json:"upgrades"`

	Items      []ItemInput      `json:"items"`
	Components []ComponentInput `json:"components"`
}

// EngineInput describes the equipped engine.
type EngineInput struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Rating int    `json:"rating"`
}

// ItemInput is one equipped item.
type ItemInput struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Location  string   `json:"location"`
	Hardpoint string   `json:"hardpoint,omitempty"`
	Traits    []string `json:"traits"`
	AmmoType  string   `json:"ammo_type,omitempty"`
}

// ComponentInput is one location of the loadout.
type ComponentInput struct {
	Location  string `json:"location"`
	TwoSided  bool   `json:"two_sided"`
	Slots     int    `json:"slots"`
	SlotsUsed int    `json:"slots_used"`
	Armor     int    `json:"armor"`
	ArmorBack int    `json:"armor_back"`
	ArmorMax  int    `json:"armor_max"`
}

// NewInput captures l for evaluation.
func NewInput(l *model.Loadout, operation string) *Input {
	in := &Input{
		Loadout: LoadoutInput{
			ID:         l.ID.String(),
			Name:       l.Name,
			Chassis:    l.Chassis.ID,
			Omni:       l.Chassis.Omni,
			Mass:       l.Mass(),
			MassMax:    l.Chassis.MassMax,
			FreeMass:   l.FreeMass(),
			Armor:      l.ArmorTotal(),
			ArmorMax:   l.ArmorMaxTotal(),
			HeatSinks:  l.HeatSinkCount(),
			Upgrades:   make(map[string]string),
			Items:      []ItemInput{},
			Components: []ComponentInput{},
		},
		Context: Context{Operation: operation, Timestamp: time.Now()},
	}
	if e := l.Engine(); e != nil {
		in.Loadout.Engine = &EngineInput{ID: e.ID, Type: string(e.Engine.Type), Rating: e.Engine.Rating}
	}
	for _, t := range []model.UpgradeType{model.UpgradeArmor, model.UpgradeStructure, model.UpgradeHeatSink, model.UpgradeGuidance} {
		if u := l.Upgrades.Get(t); u != nil {
			in.Loadout.Upgrades[string(t)] = u.ID
		}
	}

	for _, c := range l.Components() {
		loc := c.Location()
		ci := ComponentInput{
			Location:  loc.String(),
			TwoSided:  loc.TwoSided(),
			Slots:     c.Def().Slots,
			SlotsUsed: c.SlotsUsed(l.Upgrades),
			ArmorMax:  c.Def().MaxArmor,
		}
		if ci.TwoSided {
			ci.Armor = c.Armor(model.SideFront)
			ci.ArmorBack = c.Armor(model.SideBack)
		} else {
			ci.Armor = c.Armor(model.SideOnly)
		}
		in.Loadout.Components = append(in.Loadout.Components, ci)

		for _, it := range c.Items() {
			traits := []string{}
			if s := it.Traits.String(); s != "" {
				traits = strings.Split(s, "|")
			}
			in.Loadout.Items = append(in.Loadout.Items, ItemInput{
				ID:        it.ID,
				Kind:      string(it.Kind),
				Location:  loc.String(),
				Hardpoint: string(it.Hardpoint),
				Traits:    traits,
				AmmoType:  it.AmmoType,
			})
		}
	}
	return in
}
