// Package plan loads and validates conformance test plans. A plan is a YAML
// file holding the datasheet-derived timing table and the ordered switching
// scenario list; both are static configuration, defined once and never
// mutated during a run.
package plan

import (
	"fmt"
	"time"

	"github.com/edgewire-io/adinconf/pkg/conformance"
)

// Default knobs applied to plan entries that omit them.
const (
	DefaultSampleCount     = 10
	DefaultScenarioTimeout = 2 * time.Second
)

// Plan is a parsed conformance test plan.
type Plan struct {
	Suite           string           `yaml:"suite"`
	Description     string           `yaml:"description,omitempty"`
	Characteristics []Characteristic `yaml:"characteristics"`
	Scenarios       []Scenario       `yaml:"scenarios"`
}

// Characteristic is one timing table entry. Either nominal+tolerance or
// min+max must be given; min+max wins when both appear.
type Characteristic struct {
	Name      string   `yaml:"name"`
	Unit      string   `yaml:"unit"`
	Nominal   float64  `yaml:"nominal,omitempty"`
	Tolerance float64  `yaml:"tolerance,omitempty"`
	Min       *float64 `yaml:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"`

	// Samples is how many durations the sampler collects (default 10).
	Samples int `yaml:"samples,omitempty"`

	// Consistency opts this characteristic in to the jitter check.
	Consistency         bool    `yaml:"consistency,omitempty"`
	ConsistencyFraction float64 `yaml:"consistency_fraction,omitempty"`

	// Command is the per-characteristic measurement command the SSH
	// sampler runs on the DUT host. Unused by the simulated sampler.
	Command string `yaml:"command,omitempty"`
}

// Scenario is one switching test case entry.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Ingress     string        `yaml:"ingress"`
	Egress      string        `yaml:"egress"`
	Frame       FrameDesc     `yaml:"frame"`
	Expect      bool          `yaml:"expect"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	After       []string      `yaml:"after,omitempty"`
}

// FrameDesc describes the injected frame. Dst accepts "broadcast" as an
// alias for ff:ff:ff:ff:ff:ff.
type FrameDesc struct {
	Src   string `yaml:"src"`
	Dst   string `yaml:"dst"`
	Token string `yaml:"token"`
}

// Spec converts a plan characteristic to an engine TimingSpec.
func (c *Characteristic) Spec() (*conformance.TimingSpec, error) {
	unit, err := conformance.ParseUnit(c.Unit)
	if err != nil {
		return nil, err
	}
	spec := &conformance.TimingSpec{
		Name:                c.Name,
		Unit:                unit,
		Nominal:             c.Nominal,
		Tolerance:           c.Tolerance,
		Lower:               c.Min,
		Upper:               c.Max,
		Consistency:         c.Consistency,
		ConsistencyFraction: c.ConsistencyFraction,
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// SampleCount returns the sample count with the default applied.
func (c *Characteristic) SampleCount() int {
	if c.Samples > 0 {
		return c.Samples
	}
	return DefaultSampleCount
}

// Spec converts a plan scenario to an engine ScenarioSpec.
func (s *Scenario) Spec() (*conformance.ScenarioSpec, error) {
	dst := s.Frame.Dst
	if dst == "broadcast" {
		dst = conformance.BroadcastMAC
	}
	spec := &conformance.ScenarioSpec{
		Name:        s.Name,
		Description: s.Description,
		Ingress:     s.Ingress,
		Egress:      s.Egress,
		Frame: conformance.Frame{
			Src:   s.Frame.Src,
			Dst:   dst,
			Token: s.Frame.Token,
		},
		Expect:  s.Expect,
		Timeout: s.Timeout,
		After:   s.After,
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// Characteristic returns the named timing table entry.
func (p *Plan) Characteristic(name string) (*Characteristic, error) {
	for i := range p.Characteristics {
		if p.Characteristics[i].Name == name {
			return &p.Characteristics[i], nil
		}
	}
	return nil, fmt.Errorf("characteristic %q not found in plan %s", name, p.Suite)
}

// Scenario returns the named scenario entry.
func (p *Plan) Scenario(name string) (*Scenario, error) {
	for i := range p.Scenarios {
		if p.Scenarios[i].Name == name {
			return &p.Scenarios[i], nil
		}
	}
	return nil, fmt.Errorf("scenario %q not found in plan %s", name, p.Suite)
}

// Segments returns the distinct segment identifiers the plan's scenarios
// touch, in first-seen order.
func (p *Plan) Segments() []string {
	seen := make(map[string]bool)
	var segments []string
	for _, s := range p.Scenarios {
		for _, seg := range []string{s.Ingress, s.Egress} {
			if seg != "" && !seen[seg] {
				seen[seg] = true
				segments = append(segments, seg)
			}
		}
	}
	return segments
}
