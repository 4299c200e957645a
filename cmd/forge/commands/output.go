package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mechforge/mechforge/pkg/policy"
	"github.com/mechforge/mechforge/pkg/workbench"
)

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// report is the JSON form of a finished loadout.
type report struct {
	Summary workbench.Summary `json:"summary"`
	Policy  *policy.Result    `json:"policy,omitempty"`
}

// printReport writes the loadout summary followed by the policy findings.
func printReport(s workbench.Summary, res *policy.Result) error {
	if jsonOutput {
		return printJSON(report{Summary: s, Policy: res})
	}
	fmt.Print(s)
	if res != nil {
		fmt.Print(formatFindings(res))
	}
	return nil
}

func formatFindings(res *policy.Result) string {
	var b strings.Builder
	if len(res.Violations) == 0 {
		fmt.Fprintf(&b, "✓ %d policies passed\n", len(res.EvaluatedPolicies))
	}
	for _, v := range res.Violations {
		mark := "•"
		switch v.Severity {
		case policy.SeverityError:
			mark = "✗"
		case policy.SeverityWarning:
			mark = "!"
		}
		fmt.Fprintf(&b, "%s [%s] %s", mark, v.Policy, v.Message)
		if v.Location != "" {
			fmt.Fprintf(&b, " (%s)", v.Location)
		}
		b.WriteByte('\n')
		if v.Remediation != "" {
			fmt.Fprintf(&b, "    %s\n", v.Remediation)
		}
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "? %s\n", w)
	}
	return b.String()
}
