package conformance

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/edgewire-io/adinconf/pkg/util"
)

func floodScenario() *ScenarioSpec {
	return &ScenarioSpec{
		Name:    "broadcast-flood",
		Ingress: "p0",
		Egress:  "p1",
		Frame: Frame{
			Src:   "02:00:00:00:00:01",
			Dst:   BroadcastMAC,
			Token: "BCAST-TEST-1",
		},
		Expect:  true,
		Timeout: 2 * time.Second,
	}
}

func staticExchange(observed bool) ExchangeFunc {
	return func(ctx context.Context, ingress, egress string, frame Frame, timeout time.Duration) (bool, error) {
		return observed, nil
	}
}

func TestEvaluateScenario_BroadcastObserved(t *testing.T) {
	result, err := EvaluateScenario(context.Background(), floodScenario(), staticExchange(true))
	if err != nil {
		t.Fatalf("EvaluateScenario error: %v", err)
	}
	if !result.Pass {
		t.Error("observed broadcast matching expectation should pass")
	}
	if result.Expected != "frame observed on p1" {
		t.Errorf("Expected = %q", result.Expected)
	}
}

func TestEvaluateScenario_BroadcastMissed(t *testing.T) {
	result, err := EvaluateScenario(context.Background(), floodScenario(), staticExchange(false))
	if err != nil {
		t.Fatalf("EvaluateScenario error: %v", err)
	}
	if result.Pass {
		t.Error("missed broadcast should fail, not error")
	}
	if result.Actual != "no frame on p1" {
		t.Errorf("Actual = %q", result.Actual)
	}
}

func TestEvaluateScenario_ExpectedAbsence(t *testing.T) {
	// Learned unicast must NOT appear on the segment the MAC was not
	// learned on. Absence is the passing observation here.
	sc := floodScenario()
	sc.Name = "unicast-isolated"
	sc.Frame.Dst = "02:00:00:00:00:09"
	sc.Expect = false

	result, err := EvaluateScenario(context.Background(), sc, staticExchange(false))
	if err != nil {
		t.Fatal(err)
	}
	if !result.Pass {
		t.Error("expected absence, observed absence: should pass")
	}

	result, err = EvaluateScenario(context.Background(), sc, staticExchange(true))
	if err != nil {
		t.Fatal(err)
	}
	if result.Pass {
		t.Error("expected absence, observed frame: should fail")
	}
}

func TestEvaluateScenario_OrderIndependent(t *testing.T) {
	// A learned-unicast scenario evaluated before its learn step is legal:
	// the outcome rests entirely on the supplied observation, never on
	// verifier-internal state.
	sc := floodScenario()
	sc.Name = "unicast-before-learn"
	sc.Frame.Dst = "02:00:00:00:00:01"
	sc.After = []string{"learn-source"}

	result, err := EvaluateScenario(context.Background(), sc, staticExchange(false))
	if err != nil {
		t.Fatalf("out-of-order scenario must not error: %v", err)
	}
	if result.Pass {
		t.Error("device had not learned the MAC, frame absent, expectation true: fail")
	}
}

func TestEvaluateScenario_ExchangeError(t *testing.T) {
	boom := errors.New("socket closed")
	fn := func(ctx context.Context, ingress, egress string, frame Frame, timeout time.Duration) (bool, error) {
		return false, boom
	}
	_, err := EvaluateScenario(context.Background(), floodScenario(), fn)
	if err == nil {
		t.Fatal("exchange fault must abort, not become a failed result")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error should wrap the exchange fault, got %v", err)
	}
}

func TestEvaluateScenario_NilExchange(t *testing.T) {
	_, err := EvaluateScenario(context.Background(), floodScenario(), nil)
	if err == nil || !errors.Is(err, util.ErrInvalidInput) {
		t.Errorf("nil exchange should be a usage error, got %v", err)
	}
}

func TestEvaluateScenario_PassesScenarioArguments(t *testing.T) {
	var gotIngress, gotEgress, gotToken string
	var gotTimeout time.Duration
	fn := func(ctx context.Context, ingress, egress string, frame Frame, timeout time.Duration) (bool, error) {
		gotIngress, gotEgress, gotToken, gotTimeout = ingress, egress, frame.Token, timeout
		return true, nil
	}
	sc := floodScenario()
	if _, err := EvaluateScenario(context.Background(), sc, fn); err != nil {
		t.Fatal(err)
	}
	if gotIngress != "p0" || gotEgress != "p1" {
		t.Errorf("exchange saw %s->%s, want p0->p1", gotIngress, gotEgress)
	}
	if gotToken != "BCAST-TEST-1" {
		t.Errorf("exchange saw token %q", gotToken)
	}
	if gotTimeout != 2*time.Second {
		t.Errorf("exchange saw timeout %v", gotTimeout)
	}
}

// ============================================================================
// Scenario Validation Tests
// ============================================================================

func TestScenarioSpec_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ScenarioSpec)
	}{
		{"missing name", func(s *ScenarioSpec) { s.Name = "" }},
		{"missing ingress", func(s *ScenarioSpec) { s.Ingress = "" }},
		{"missing egress", func(s *ScenarioSpec) { s.Egress = "" }},
		{"same segment", func(s *ScenarioSpec) { s.Egress = s.Ingress }},
		{"missing token", func(s *ScenarioSpec) { s.Frame.Token = "" }},
		{"missing timeout", func(s *ScenarioSpec) { s.Timeout = 0 }},
		{"missing src", func(s *ScenarioSpec) { s.Frame.Src = "" }},
		{"bad src", func(s *ScenarioSpec) { s.Frame.Src = "not-a-mac" }},
		{"bad dst", func(s *ScenarioSpec) { s.Frame.Dst = "zz:zz" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := floodScenario()
			tt.mutate(sc)
			err := sc.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !errors.Is(err, util.ErrInvalidSpec) {
				t.Errorf("error should unwrap to ErrInvalidSpec, got %v", err)
			}
		})
	}
}

func TestScenarioSpec_ValidateOK(t *testing.T) {
	if err := floodScenario().Validate(); err != nil {
		t.Errorf("valid scenario rejected: %v", err)
	}
}

func TestScenarioSpec_IsBroadcast(t *testing.T) {
	sc := floodScenario()
	if !sc.IsBroadcast() {
		t.Error("ff:ff:ff:ff:ff:ff should be broadcast")
	}
	sc.Frame.Dst = "FF:FF:FF:FF:FF:FF"
	if !sc.IsBroadcast() {
		t.Error("broadcast match should be case-insensitive")
	}
	sc.Frame.Dst = "02:00:00:00:00:01"
	if sc.IsBroadcast() {
		t.Error("unicast dst reported as broadcast")
	}
}

func TestEvaluateScenario_DetailsCarryContext(t *testing.T) {
	result, err := EvaluateScenario(context.Background(), floodScenario(), staticExchange(true))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"p0", "p1", "BCAST-TEST-1", "2s"} {
		if !strings.Contains(result.Details, want) {
			t.Errorf("Details %q missing %q", result.Details, want)
		}
	}
}
