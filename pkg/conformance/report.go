package conformance

import (
	"fmt"
	"time"

	"github.com/edgewire-io/adinconf/pkg/util"
)

// SpecLimits is the tolerance-band summary of one characteristic, carried
// in the report so a consumer can reconstruct the measurement context
// without re-running the suite.
type SpecLimits struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Nominal float64 `json:"nominal,omitempty"`
	Unit    string  `json:"unit"`
}

// Report is the aggregate compliance verdict. Built once by a Builder and
// immutable afterwards. An empty report (TotalTests == 0) means nothing was
// tested, not "everything passed".
type Report struct {
	Suite          string                `json:"test_suite"`
	GeneratedAt    time.Time             `json:"timestamp"`
	TotalTests     int                   `json:"total_tests"`
	Passed         int                   `json:"passed"`
	Failed         int                   `json:"failed"`
	SuccessRate    float64               `json:"success_rate"`
	Compliant      bool                  `json:"datasheet_compliance"`
	Specifications map[string]SpecLimits `json:"specifications"`
	Results        []TestResult          `json:"test_results"`
}

// Builder accumulates TestResults in insertion order and produces the
// final Report. It is not safe for concurrent use: callers that evaluate
// characteristics in parallel must restore order and record sequentially.
type Builder struct {
	suite     string
	specs     map[string]SpecLimits
	results   []TestResult
	finalized bool
}

// NewBuilder creates a report builder for the named suite.
func NewBuilder(suite string) *Builder {
	return &Builder{
		suite: suite,
		specs: make(map[string]SpecLimits),
	}
}

// AddSpec registers a characteristic's tolerance band for the report's
// specifications section.
func (b *Builder) AddSpec(spec *TimingSpec) {
	lower, upper := spec.Bounds()
	b.specs[spec.Name] = SpecLimits{
		Min:     lower,
		Max:     upper,
		Nominal: spec.Nominal,
		Unit:    spec.Unit.Suffix(),
	}
}

// Record appends one result, preserving insertion order. Recording after
// Finalize is a harness fault.
func (b *Builder) Record(result TestResult) error {
	if b.finalized {
		return fmt.Errorf("recording %s: %w", result.Name, util.ErrFinalized)
	}
	b.results = append(b.results, result)
	return nil
}

// Len returns the number of recorded results.
func (b *Builder) Len() int {
	return len(b.results)
}

// Finalize computes the aggregate report. Counts are always recomputed from
// the recorded results rather than accumulated incrementally, so repeated
// calls over the same results yield identical counts and verdict. After the
// first call the builder accepts no further results.
func (b *Builder) Finalize() *Report {
	b.finalized = true

	passed := 0
	for _, r := range b.results {
		if r.Pass {
			passed++
		}
	}
	failed := len(b.results) - passed

	rate := 0.0
	if len(b.results) > 0 {
		rate = float64(passed) / float64(len(b.results)) * 100
	}

	results := make([]TestResult, len(b.results))
	copy(results, b.results)

	return &Report{
		Suite:          b.suite,
		GeneratedAt:    time.Now(),
		TotalTests:     len(b.results),
		Passed:         passed,
		Failed:         failed,
		SuccessRate:    rate,
		Compliant:      failed == 0,
		Specifications: b.specs,
		Results:        results,
	}
}
