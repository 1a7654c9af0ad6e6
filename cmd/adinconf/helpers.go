package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgewire-io/adinconf/pkg/conformance"
	"github.com/edgewire-io/adinconf/pkg/exchange"
	"github.com/edgewire-io/adinconf/pkg/harness"
	"github.com/edgewire-io/adinconf/pkg/plan"
	"github.com/edgewire-io/adinconf/pkg/sampler"
	"github.com/edgewire-io/adinconf/pkg/settings"
	"github.com/edgewire-io/adinconf/pkg/sink"
	"github.com/edgewire-io/adinconf/pkg/util"
)

const defaultPlanPath = "plans/adin2111.yaml"

// errNonCompliant signals a completed run whose verdict failed. main maps
// it to exit code 1; every other error is an infra or usage fault (exit 2).
var errNonCompliant = errors.New("datasheet compliance failed")

// runFlags is the flag set shared by run, timing, and switching.
type runFlags struct {
	planPath   string
	benchPath  string
	simulate   bool
	seed       int64
	parallel   int
	jsonOut    string
	junitPath  string
	mdPath     string
	transcript string
	redisAddr  string
}

// execute runs the selected plan phases and handles every output sink
// and the exit code convention: 0 compliant, 1 compliance failure,
// 2 usage or infrastructure error.
func (f *runFlags) execute(opts harness.Options) error {
	f.applySettings()

	p, err := plan.Load(f.planPath)
	if err != nil {
		return err
	}

	r := &harness.Runner{
		Plan:     p,
		Progress: harness.NewConsoleProgress(verboseFlag),
	}

	if opts.SwitchingOnly || len(p.Characteristics) == 0 {
		// no sampler needed
	} else if f.simulate {
		seed := f.seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		r.Sampler = sampler.NewSimSampler(seed, nominals(p))
	} else {
		bench, err := f.bench()
		if err != nil {
			return err
		}
		if bench.DUT.Addr == "" || bench.DUT.User == "" {
			return util.NewInputError("bench", f.benchPath, "dut.addr and dut.user are required for timing measurement")
		}
		ssh := sampler.NewSSHSampler(bench.DUT.Addr, bench.DUT.User, bench.DUT.Password, commands(p))
		defer ssh.Close()
		r.Sampler = ssh
	}

	if opts.TimingOnly || len(p.Scenarios) == 0 {
		// no exchange needed
	} else if f.simulate {
		r.Exchange = exchange.NewSimSwitch()
	} else {
		bench, err := f.bench()
		if err != nil {
			return err
		}
		if len(bench.Segments) == 0 {
			return util.NewInputError("bench", f.benchPath, "segments are required for switching scenarios")
		}
		r.Exchange = exchange.NewUDPExchange(bench.Segments)
	}

	report, err := r.Run(context.Background(), opts)
	if err != nil {
		return err
	}

	if err := f.persist(report); err != nil {
		return err
	}

	if !report.Compliant {
		return errNonCompliant
	}
	return nil
}

// applySettings fills unset flags from persistent settings. Explicit
// flags always win.
func (f *runFlags) applySettings() {
	s, err := settings.Load()
	if err != nil {
		return
	}
	if f.planPath == defaultPlanPath && s.DefaultPlan != "" {
		f.planPath = s.DefaultPlan
	}
	if f.benchPath == "" {
		f.benchPath = s.DefaultBench
	}
	if f.redisAddr == "" {
		f.redisAddr = s.RedisAddr
	}
}

// bench loads the bench config once, erroring when the flag is unset.
func (f *runFlags) bench() (*benchConfig, error) {
	if f.benchPath == "" {
		return nil, errors.New("a bench config is required unless --simulate is set (see --bench)")
	}
	return loadBench(f.benchPath)
}

func (f *runFlags) persist(report *conformance.Report) error {
	if f.jsonOut != "" {
		if err := sink.WriteJSON(report, f.jsonOut); err != nil {
			return err
		}
		util.Infof("report written to %s", f.jsonOut)
	}
	if f.junitPath != "" {
		if err := sink.WriteJUnit(report, f.junitPath); err != nil {
			return err
		}
	}
	if f.mdPath != "" {
		if err := sink.WriteMarkdown(report, f.mdPath); err != nil {
			return err
		}
	}
	if f.transcript != "" {
		tr, err := sink.OpenTranscript(f.transcript)
		if err != nil {
			return err
		}
		defer tr.Close()
		for i := range report.Results {
			if err := tr.Record(&report.Results[i]); err != nil {
				return err
			}
		}
		if err := tr.Summary(report); err != nil {
			return err
		}
	}
	if f.redisAddr != "" {
		store := sink.NewRedisStore(f.redisAddr)
		defer store.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		key, err := store.Store(ctx, report)
		if err != nil {
			return fmt.Errorf("publishing to redis %s: %w", f.redisAddr, err)
		}
		util.Infof("report published to redis as %s", key)
	}
	return nil
}

// nominals maps characteristic names to nominal values for the
// simulated sampler. Explicit-bound entries use the band midpoint.
func nominals(p *plan.Plan) map[string]float64 {
	m := make(map[string]float64, len(p.Characteristics))
	for i := range p.Characteristics {
		c := &p.Characteristics[i]
		switch {
		case c.Nominal > 0:
			m[c.Name] = c.Nominal
		case c.Min != nil && c.Max != nil:
			m[c.Name] = (*c.Min + *c.Max) / 2
		}
	}
	return m
}

// commands maps characteristic names to their DUT measurement commands.
func commands(p *plan.Plan) map[string]string {
	m := make(map[string]string, len(p.Characteristics))
	for i := range p.Characteristics {
		if cmd := p.Characteristics[i].Command; cmd != "" {
			m[p.Characteristics[i].Name] = cmd
		}
	}
	return m
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.planPath, "plan", defaultPlanPath, "plan YAML file")
	cmd.Flags().StringVar(&f.benchPath, "bench", "", "bench config YAML (DUT host, segment endpoints)")
	cmd.Flags().BoolVar(&f.simulate, "simulate", false, "run against a simulated DUT")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "simulation RNG seed (0 = time-based)")
	cmd.Flags().IntVar(&f.parallel, "parallel", 1, "characteristics sampled concurrently")
	cmd.Flags().StringVar(&f.jsonOut, "json-out", "", "JSON report output path")
	cmd.Flags().StringVar(&f.junitPath, "junit", "", "JUnit XML output path")
	cmd.Flags().StringVar(&f.mdPath, "markdown", "", "markdown report output path")
	cmd.Flags().StringVar(&f.transcript, "transcript", "", "append-only transcript file")
	cmd.Flags().StringVar(&f.redisAddr, "redis", "", "publish report to this Redis address")
}
