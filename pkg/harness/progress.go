package harness

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/edgewire-io/adinconf/pkg/cli"
	"github.com/edgewire-io/adinconf/pkg/conformance"
	"github.com/edgewire-io/adinconf/pkg/plan"
)

// ProgressReporter receives lifecycle callbacks during a conformance run.
type ProgressReporter interface {
	SuiteStart(p *plan.Plan, checks int)
	CheckStart(name string, index, total int)
	CheckEnd(result *conformance.TestResult, index, total int)
	SuiteEnd(report *conformance.Report, duration time.Duration)
}

// ConsoleProgress is an append-only terminal progress reporter. It never
// uses ANSI cursor rewriting, so output is safe for pipes, CI, and
// scrollback buffers.
type ConsoleProgress struct {
	W       io.Writer
	Verbose bool

	dotWidth int
}

// NewConsoleProgress creates a ConsoleProgress writing to stdout.
func NewConsoleProgress(verbose bool) *ConsoleProgress {
	return &ConsoleProgress{
		W:       os.Stdout,
		Verbose: verbose,
	}
}

func (p *ConsoleProgress) SuiteStart(pl *plan.Plan, checks int) {
	maxName := 0
	for _, c := range pl.Characteristics {
		if n := len(c.Name) + len("_consistency"); n > maxName {
			maxName = n
		}
	}
	for _, s := range pl.Scenarios {
		if len(s.Name) > maxName {
			maxName = len(s.Name)
		}
	}
	p.dotWidth = maxName + 6

	fmt.Fprintf(p.W, "\nadinconf: %s — %d checks (%d characteristics, %d scenarios)\n\n",
		pl.Suite, checks, len(pl.Characteristics), len(pl.Scenarios))
}

func (p *ConsoleProgress) CheckStart(name string, index, total int) {
	if p.Verbose {
		fmt.Fprintf(p.W, "  [%d/%d]  %s...\n", index+1, total, name)
	}
}

func (p *ConsoleProgress) CheckEnd(result *conformance.TestResult, index, total int) {
	tag := fmt.Sprintf("[%d/%d]", index+1, total)
	padded := cli.DotPad(result.Name, p.dotWidth)

	if result.Pass {
		fmt.Fprintf(p.W, "  %-7s %s %s\n", tag, padded, cli.Green("PASS"))
	} else {
		fmt.Fprintf(p.W, "  %-7s %s %s\n", tag, padded, cli.Red("FAIL"))
	}

	if p.Verbose || !result.Pass {
		if result.Expected != "" {
			fmt.Fprintf(p.W, "          expected: %s\n", cli.Dim(result.Expected))
			fmt.Fprintf(p.W, "          actual:   %s\n", cli.Dim(result.Actual))
		}
		if p.Verbose && result.Details != "" {
			fmt.Fprintf(p.W, "          %s\n", cli.Dim(result.Details))
		}
	}
}

func (p *ConsoleProgress) SuiteEnd(report *conformance.Report, duration time.Duration) {
	fmt.Fprintf(p.W, "\n---\n")
	fmt.Fprintf(p.W, "adinconf: %d checks", report.TotalTests)

	if report.TotalTests == 0 {
		fmt.Fprintf(p.W, " — %s  (%s)\n\n", cli.Yellow("nothing was tested"), formatDuration(duration))
		return
	}

	if report.Passed > 0 {
		fmt.Fprintf(p.W, ": %s", cli.Green(fmt.Sprintf("%d passed", report.Passed)))
	}
	if report.Failed > 0 {
		fmt.Fprintf(p.W, ", %s", cli.Red(fmt.Sprintf("%d failed", report.Failed)))
	}
	fmt.Fprintf(p.W, "  (%s)\n", formatDuration(duration))

	verdict := cli.Green("COMPLIANT")
	if !report.Compliant {
		verdict = cli.Red("NON-COMPLIANT")
	}
	fmt.Fprintf(p.W, "datasheet compliance: %s\n\n", verdict)

	if report.Failed > 0 {
		fmt.Fprintf(p.W, "  FAILED:\n")
		for _, r := range report.Results {
			if r.Pass {
				continue
			}
			fmt.Fprintf(p.W, "    %s: expected %s, got %s\n", r.Name, r.Expected, r.Actual)
		}
		fmt.Fprintln(p.W)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if s == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
