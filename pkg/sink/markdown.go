package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/edgewire-io/adinconf/pkg/conformance"
)

// WriteMarkdown writes a human-readable markdown summary of the report.
func WriteMarkdown(report *conformance.Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "# %s — %s\n\n", report.Suite, report.GeneratedAt.Format("2006-01-02 15:04:05"))

	verdict := "COMPLIANT"
	if !report.Compliant {
		verdict = "NON-COMPLIANT"
	}
	fmt.Fprintf(f, "**Verdict: %s** — %d/%d passed (%.1f%%)\n\n",
		verdict, report.Passed, report.TotalTests, report.SuccessRate)

	if len(report.Specifications) > 0 {
		fmt.Fprintln(f, "## Timing limits")
		fmt.Fprintln(f)
		fmt.Fprintln(f, "| Characteristic | Min | Nominal | Max | Unit |")
		fmt.Fprintln(f, "|----------------|-----|---------|-----|------|")
		names := make([]string, 0, len(report.Specifications))
		for name := range report.Specifications {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s := report.Specifications[name]
			fmt.Fprintf(f, "| %s | %g | %g | %g | %s |\n",
				name, s.Min, s.Nominal, s.Max, s.Unit)
		}
		fmt.Fprintln(f)
	}

	fmt.Fprintln(f, "## Results")
	fmt.Fprintln(f)
	fmt.Fprintln(f, "| Check | Result | Expected | Actual |")
	fmt.Fprintln(f, "|-------|--------|----------|--------|")
	for _, r := range report.Results {
		fmt.Fprintf(f, "| %s | %s | %s | %s |\n",
			r.Name, r.Outcome(), r.Expected, r.Actual)
	}

	hasFailures := false
	for _, r := range report.Results {
		if r.Pass {
			continue
		}
		if !hasFailures {
			fmt.Fprintf(f, "\n## Failures\n\n")
			hasFailures = true
		}
		fmt.Fprintf(f, "### %s\n", r.Name)
		fmt.Fprintf(f, "Expected %s, got %s.\n", r.Expected, r.Actual)
		if r.Details != "" {
			fmt.Fprintf(f, "%s\n", r.Details)
		}
		fmt.Fprintln(f)
	}

	return nil
}
