// Package testutil provides shared fixtures for harness tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// PlanYAML is a small but complete plan covering both phases: two
// characteristics (one with explicit bounds, one with a consistency
// check) and a learn-then-unicast scenario chain.
const PlanYAML = `suite: Fixture Conformance
characteristics:
  - name: reset_time
    unit: ms
    nominal: 50
    tolerance: 0.05
    samples: 5
    consistency: true
  - name: spi_clock
    unit: mhz
    nominal: 25
    min: 1
    max: 50
scenarios:
  - name: broadcast-flood
    ingress: p0
    egress: p1
    frame:
      src: "02:00:00:00:00:aa"
      dst: broadcast
      token: FIX-BCAST
    expect: true
  - name: unicast-to-learned
    ingress: p1
    egress: p0
    frame:
      src: "02:00:00:00:00:bb"
      dst: "02:00:00:00:00:aa"
      token: FIX-UNI
    expect: true
    after: [broadcast-flood]
`

// WritePlan writes the fixture plan to a temp file and returns its path.
func WritePlan(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(PlanYAML), 0o644); err != nil {
		t.Fatalf("writing plan fixture: %v", err)
	}
	return path
}

// Nominals are the fixture plan's characteristic centers, for seeding
// simulated samplers.
func Nominals() map[string]float64 {
	return map[string]float64{
		"reset_time": 50,
		"spi_clock":  25,
	}
}
