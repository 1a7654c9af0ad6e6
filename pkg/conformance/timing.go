package conformance

import (
	"fmt"
	"math"
	"time"

	"github.com/edgewire-io/adinconf/pkg/util"
)

// Stats are the summary statistics of a sample set.
type Stats struct {
	Mean   float64
	Min    float64
	Max    float64
	StdDev float64 // population standard deviation
}

// ComputeStats computes summary statistics over a non-empty sample set.
func ComputeStats(samples []float64) (Stats, error) {
	if len(samples) == 0 {
		return Stats{}, util.NewInputError("timing", "", "empty sample set")
	}

	var sum float64
	min, max := samples[0], samples[0]
	for _, v := range samples {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := sum / float64(len(samples))

	var variance float64
	for _, v := range samples {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(samples))

	return Stats{
		Mean:   mean,
		Min:    min,
		Max:    max,
		StdDev: math.Sqrt(variance),
	}, nil
}

// EvaluateTiming classifies a characteristic's sample set against its
// tolerance band. Only the mean gates compliance; min and max are carried
// in the result for diagnostics, since individual samples may carry
// system-induced jitter while the characteristic is defined by its typical
// value. An empty sample set or malformed spec is a harness fault and
// returns an error instead of a failed result.
func EvaluateTiming(spec *TimingSpec, samples []float64) (TestResult, error) {
	if err := spec.Validate(); err != nil {
		return TestResult{}, err
	}
	stats, err := ComputeStats(samples)
	if err != nil {
		return TestResult{}, util.NewInputError("timing", spec.Name, "empty sample set")
	}

	lower, upper := spec.Bounds()
	pass := lower <= stats.Mean && stats.Mean <= upper

	return TestResult{
		Name:     spec.Name,
		Pass:     pass,
		Expected: fmt.Sprintf("%g-%g%s", lower, upper, spec.Unit.Suffix()),
		Actual:   spec.Unit.FormatValue(stats.Mean),
		Details: fmt.Sprintf("mean %s, range %s-%s, σ=%s over %d samples, unit %s",
			spec.Unit.FormatValue(stats.Mean),
			spec.Unit.FormatValue(stats.Min),
			spec.Unit.FormatValue(stats.Max),
			spec.Unit.FormatValue(stats.StdDev),
			len(samples), spec.Unit.Suffix()),
		Timestamp: time.Now(),
	}, nil
}

// EvaluateConsistency classifies the jitter of a sample set for specs that
// opt in: the population standard deviation must stay strictly below the
// consistency fraction of the mean. It is reported as a distinct named
// result rather than folded into the tolerance check, since the two carry
// independent expectations.
func EvaluateConsistency(spec *TimingSpec, samples []float64) (TestResult, error) {
	if err := spec.Validate(); err != nil {
		return TestResult{}, err
	}
	if !spec.Consistency {
		return TestResult{}, util.NewInputError("timing", spec.Name, "spec does not opt in to consistency checking")
	}
	stats, err := ComputeStats(samples)
	if err != nil {
		return TestResult{}, util.NewInputError("timing", spec.Name, "empty sample set")
	}

	limit := stats.Mean * spec.consistencyFraction()
	pass := stats.StdDev < limit

	return TestResult{
		Name:     spec.Name + "_consistency",
		Pass:     pass,
		Expected: fmt.Sprintf("σ<%s", spec.Unit.FormatValue(limit)),
		Actual:   fmt.Sprintf("σ=%s", spec.Unit.FormatValue(stats.StdDev)),
		Details: fmt.Sprintf("jitter analysis over %d samples, unit %s",
			len(samples), spec.Unit.Suffix()),
		Timestamp: time.Now(),
	}, nil
}
