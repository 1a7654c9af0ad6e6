package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/edgewire-io/adinconf/pkg/util"
)

// Load reads a YAML plan file and returns a validated Plan.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	return p, nil
}

// Parse parses and validates plan YAML. Any defect in the plan is a
// configuration fault: the harness refuses to run rather than reporting
// misconfiguration as device non-compliance.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	applyDefaults(&p)
	if err := validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// applyDefaults fills in omitted per-entry knobs.
func applyDefaults(p *Plan) {
	for i := range p.Characteristics {
		if p.Characteristics[i].Samples == 0 {
			p.Characteristics[i].Samples = DefaultSampleCount
		}
	}
	for i := range p.Scenarios {
		if p.Scenarios[i].Timeout == 0 {
			p.Scenarios[i].Timeout = DefaultScenarioTimeout
		}
	}
}

func validate(p *Plan) error {
	var v util.ValidationBuilder

	v.Add(p.Suite != "", "suite name is required")
	v.Add(len(p.Characteristics)+len(p.Scenarios) > 0, "plan defines no characteristics or scenarios")

	// Characteristic entries convert cleanly and carry unique names.
	charNames := make(map[string]bool, len(p.Characteristics))
	for i := range p.Characteristics {
		c := &p.Characteristics[i]
		if charNames[c.Name] {
			v.AddErrorf("duplicate characteristic name %q", c.Name)
			continue
		}
		charNames[c.Name] = true
		if _, err := c.Spec(); err != nil {
			v.AddError(err.Error())
		}
	}

	// Scenario entries convert cleanly, carry unique names, and reference
	// only earlier scenarios in `after`. List order is authoritative: a
	// scenario that relies on MAC state seeded by another must literally
	// run later, so forward or unknown references are plan defects.
	scenarioIndex := make(map[string]int, len(p.Scenarios))
	for i := range p.Scenarios {
		s := &p.Scenarios[i]
		if _, dup := scenarioIndex[s.Name]; dup {
			v.AddErrorf("duplicate scenario name %q", s.Name)
			continue
		}
		scenarioIndex[s.Name] = i
		if _, err := s.Spec(); err != nil {
			v.AddError(err.Error())
		}
	}
	for i := range p.Scenarios {
		s := &p.Scenarios[i]
		for _, dep := range s.After {
			depIdx, ok := scenarioIndex[dep]
			switch {
			case dep == s.Name:
				v.AddErrorf("scenario %q lists itself in after", s.Name)
			case !ok:
				v.AddErrorf("scenario %q is after unknown scenario %q", s.Name, dep)
			case depIdx > i:
				v.AddErrorf("scenario %q must come after %q but is listed before it", s.Name, dep)
			}
		}
	}

	return v.Build()
}
