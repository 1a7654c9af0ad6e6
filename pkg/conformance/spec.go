// Package conformance implements the datasheet conformance engine: the
// timing tolerance checker, the switching semantics verifier, and the
// compliance report builder they both feed.
//
// The engine does no I/O. Duration samples and frame
// observations are obtained by collaborators (pkg/sampler, pkg/exchange)
// and handed in; the engine only classifies them and builds the report.
package conformance

import (
	"fmt"

	"github.com/edgewire-io/adinconf/pkg/util"
)

// Unit is the measurement unit of a timing characteristic.
type Unit string

const (
	UnitMillisecond Unit = "ms"
	UnitMicrosecond Unit = "us"
	UnitMegahertz   Unit = "mhz"
)

// ParseUnit converts a plan-file unit string to a Unit.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "ms", "millisecond", "milliseconds":
		return UnitMillisecond, nil
	case "us", "µs", "microsecond", "microseconds":
		return UnitMicrosecond, nil
	case "mhz", "MHz", "megahertz":
		return UnitMegahertz, nil
	}
	return "", util.NewSpecError(s, "unknown unit (expected ms, us, or mhz)")
}

// Suffix returns the display suffix for values in this unit.
func (u Unit) Suffix() string {
	switch u {
	case UnitMillisecond:
		return "ms"
	case UnitMicrosecond:
		return "µs"
	case UnitMegahertz:
		return "MHz"
	}
	return string(u)
}

// FormatValue renders a measured value with two decimals and the unit
// suffix, e.g. "60.00ms".
func (u Unit) FormatValue(v float64) string {
	return fmt.Sprintf("%.2f%s", v, u.Suffix())
}

// DefaultConsistencyFraction bounds acceptable jitter relative to the mean
// for specs that opt in to the consistency check.
const DefaultConsistencyFraction = 0.05

// TimingSpec is one named datasheet timing characteristic. Specs come in two
// forms: nominal±tolerance (Nominal and Tolerance set) or explicit bounds
// (Lower and Upper set, e.g. SPI clock 1–50MHz). Both forms yield an
// inclusive [lower, upper] tolerance band.
type TimingSpec struct {
	Name      string
	Unit      Unit
	Nominal   float64
	Tolerance float64 // fraction, e.g. 0.05 for ±5%

	// Explicit bound form. When both are set, they take precedence over
	// the nominal±tolerance derivation.
	Lower *float64
	Upper *float64

	// Consistency opts in to the jitter check: stddev must stay below
	// ConsistencyFraction of the mean. Zero fraction means the default.
	Consistency         bool
	ConsistencyFraction float64
}

// Validate checks that the spec is well formed. A malformed spec is a
// configuration fault, never a compliance failure.
func (s *TimingSpec) Validate() error {
	if s.Name == "" {
		return util.NewSpecError("(unnamed)", "name is required")
	}
	switch s.Unit {
	case UnitMillisecond, UnitMicrosecond, UnitMegahertz:
	default:
		return util.NewSpecError(s.Name, fmt.Sprintf("unknown unit %q", s.Unit))
	}

	if s.explicit() {
		if *s.Lower > *s.Upper {
			return util.NewSpecError(s.Name, fmt.Sprintf("lower bound %g above upper bound %g", *s.Lower, *s.Upper))
		}
		if s.Nominal != 0 && (s.Nominal < *s.Lower || s.Nominal > *s.Upper) {
			return util.NewSpecError(s.Name, fmt.Sprintf("nominal %g outside explicit bounds [%g, %g]", s.Nominal, *s.Lower, *s.Upper))
		}
		return nil
	}
	if (s.Lower == nil) != (s.Upper == nil) {
		return util.NewSpecError(s.Name, "explicit bounds require both lower and upper")
	}

	if s.Nominal <= 0 {
		return util.NewSpecError(s.Name, "nominal must be positive")
	}
	if s.Tolerance <= 0 || s.Tolerance >= 1 {
		return util.NewSpecError(s.Name, fmt.Sprintf("tolerance fraction %g outside (0, 1)", s.Tolerance))
	}
	return nil
}

// Bounds returns the inclusive tolerance band. Call Validate first; Bounds
// assumes a well-formed spec.
func (s *TimingSpec) Bounds() (lower, upper float64) {
	if s.explicit() {
		return *s.Lower, *s.Upper
	}
	return s.Nominal * (1 - s.Tolerance), s.Nominal * (1 + s.Tolerance)
}

// consistencyFraction returns the opted-in jitter fraction, defaulted.
func (s *TimingSpec) consistencyFraction() float64 {
	if s.ConsistencyFraction > 0 {
		return s.ConsistencyFraction
	}
	return DefaultConsistencyFraction
}

func (s *TimingSpec) explicit() bool {
	return s.Lower != nil && s.Upper != nil
}
