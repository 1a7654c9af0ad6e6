// Package harness drives a conformance run: it walks a plan, collects
// timing samples, exercises switching scenarios against an exchange, and
// assembles the final compliance report.
//
// The harness distinguishes infrastructure faults from compliance
// failures. A failed check is recorded in the report and the run
// continues; a fault (bad plan entry, unreachable sampler, exchange
// error) aborts the run with an error.
package harness

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edgewire-io/adinconf/pkg/conformance"
	"github.com/edgewire-io/adinconf/pkg/exchange"
	"github.com/edgewire-io/adinconf/pkg/plan"
	"github.com/edgewire-io/adinconf/pkg/sampler"
	"github.com/edgewire-io/adinconf/pkg/util"
)

// Options selects which parts of the plan a run covers and how samples
// are collected.
type Options struct {
	// TimingOnly / SwitchingOnly restrict the run to one phase. Both
	// false means run everything.
	TimingOnly    bool
	SwitchingOnly bool

	// Parallel is the number of characteristics sampled concurrently.
	// Values below 2 mean sequential sampling. Report order is the plan
	// order regardless.
	Parallel int
}

// Runner executes a plan against a sampler and an exchange.
type Runner struct {
	Plan     *plan.Plan
	Sampler  sampler.Sampler
	Exchange exchange.Exchanger
	Progress ProgressReporter
}

// timingChecks counts report entries the timing phase will produce,
// including consistency sub-checks.
func timingChecks(p *plan.Plan) int {
	n := 0
	for _, c := range p.Characteristics {
		n++
		if c.Consistency {
			n++
		}
	}
	return n
}

func (o Options) runTiming() bool    { return !o.SwitchingOnly }
func (o Options) runSwitching() bool { return !o.TimingOnly }

// Run executes the selected plan phases and returns the finalized
// report. A non-nil error means the run was aborted before completion;
// check failures alone never produce an error.
func (r *Runner) Run(ctx context.Context, opts Options) (*conformance.Report, error) {
	if r.Plan == nil {
		return nil, util.NewInputError("harness", "plan", "no plan loaded")
	}
	if opts.runTiming() && len(r.Plan.Characteristics) > 0 && r.Sampler == nil {
		return nil, util.NewInputError("harness", "sampler", "plan has characteristics but no sampler is configured")
	}
	if opts.runSwitching() && len(r.Plan.Scenarios) > 0 && r.Exchange == nil {
		return nil, util.NewInputError("harness", "exchange", "plan has scenarios but no exchange is configured")
	}

	progress := r.Progress
	if progress == nil {
		progress = nopProgress{}
	}

	total := 0
	if opts.runTiming() {
		total += timingChecks(r.Plan)
	}
	if opts.runSwitching() {
		total += len(r.Plan.Scenarios)
	}

	started := time.Now()
	progress.SuiteStart(r.Plan, total)

	builder := conformance.NewBuilder(r.Plan.Suite)
	for i := range r.Plan.Characteristics {
		spec, err := r.Plan.Characteristics[i].Spec()
		if err != nil {
			return nil, err
		}
		builder.AddSpec(spec)
	}

	index := 0
	if opts.runTiming() {
		n, err := r.runTiming(ctx, opts, builder, progress, index, total)
		if err != nil {
			return nil, err
		}
		index += n
	}
	if opts.runSwitching() {
		if err := r.runSwitching(ctx, builder, progress, index, total); err != nil {
			return nil, err
		}
	}

	report := builder.Finalize()
	progress.SuiteEnd(report, time.Since(started))
	return report, nil
}

// timingOutcome holds everything one characteristic contributes to the
// report, in the order it is recorded.
type timingOutcome struct {
	results []conformance.TestResult
}

func (r *Runner) runTiming(ctx context.Context, opts Options, builder *conformance.Builder, progress ProgressReporter, index, total int) (int, error) {
	chars := r.Plan.Characteristics
	outcomes := make([]timingOutcome, len(chars))

	if opts.Parallel > 1 && len(chars) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Parallel)
		for i := range chars {
			i := i
			g.Go(func() error {
				out, err := r.measure(gctx, &chars[i])
				if err != nil {
					return err
				}
				outcomes[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return 0, err
		}
	} else {
		for i := range chars {
			progress.CheckStart(chars[i].Name, index+recordedIn(outcomes[:i]), total)
			out, err := r.measure(ctx, &chars[i])
			if err != nil {
				return 0, err
			}
			outcomes[i] = out
		}
	}

	recorded := 0
	for i := range outcomes {
		for j := range outcomes[i].results {
			res := outcomes[i].results[j]
			if err := builder.Record(res); err != nil {
				return 0, err
			}
			progress.CheckEnd(&res, index+recorded, total)
			recorded++
		}
	}
	return recorded, nil
}

// measure samples one characteristic and evaluates it, plus the
// consistency check when the plan opts it in.
func (r *Runner) measure(ctx context.Context, c *plan.Characteristic) (timingOutcome, error) {
	spec, err := c.Spec()
	if err != nil {
		return timingOutcome{}, err
	}

	count := c.SampleCount()
	util.WithCharacteristic(c.Name).Debugf("collecting %d samples", count)

	samples, err := r.Sampler.Sample(ctx, c.Name, count)
	if err != nil {
		return timingOutcome{}, fmt.Errorf("sampling %s: %w", c.Name, err)
	}

	result, err := conformance.EvaluateTiming(spec, samples)
	if err != nil {
		return timingOutcome{}, err
	}
	out := timingOutcome{results: []conformance.TestResult{result}}

	if c.Consistency {
		cres, err := conformance.EvaluateConsistency(spec, samples)
		if err != nil {
			return timingOutcome{}, err
		}
		out.results = append(out.results, cres)
	}
	return out, nil
}

func (r *Runner) runSwitching(ctx context.Context, builder *conformance.Builder, progress ProgressReporter, index, total int) error {
	for i := range r.Plan.Scenarios {
		s := &r.Plan.Scenarios[i]
		spec, err := s.Spec()
		if err != nil {
			return err
		}

		progress.CheckStart(s.Name, index, total)
		util.WithScenario(s.Name).Debugf("injecting on %s, watching %s", spec.Ingress, spec.Egress)

		result, err := conformance.EvaluateScenario(ctx, spec, r.Exchange.Exchange)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		if err := builder.Record(result); err != nil {
			return err
		}
		progress.CheckEnd(&result, index, total)
		index++
	}
	return nil
}

func recordedIn(outcomes []timingOutcome) int {
	n := 0
	for i := range outcomes {
		n += len(outcomes[i].results)
	}
	return n
}

// nopProgress is used when the caller supplies no reporter.
type nopProgress struct{}

func (nopProgress) SuiteStart(*plan.Plan, int)                  {}
func (nopProgress) CheckStart(string, int, int)                 {}
func (nopProgress) CheckEnd(*conformance.TestResult, int, int)  {}
func (nopProgress) SuiteEnd(*conformance.Report, time.Duration) {}
