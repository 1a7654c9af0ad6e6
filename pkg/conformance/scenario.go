package conformance

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/edgewire-io/adinconf/pkg/util"
)

// BroadcastMAC is the Ethernet broadcast destination.
const BroadcastMAC = "ff:ff:ff:ff:ff:ff"

// Frame describes the test frame a scenario injects. The payload token
// distinguishes the frame from background traffic on a shared segment:
// a capture matches only when the token is present, never on mere frame
// presence.
type Frame struct {
	Src   string // source MAC, aa:bb:cc:dd:ee:ff form
	Dst   string // destination MAC; BroadcastMAC for flood scenarios
	Token string // distinguishing payload token
}

// ScenarioSpec is one scripted switching test case. The three canonical
// kinds (broadcast flood, learned unicast, unknown unicast) are all
// expressed through the same fields; the verifier never branches on kind.
// Scenarios are order-dependent only through the device's own MAC learning:
// After names scenarios that must have executed first, because they seed
// the state this scenario's expectation relies on. Whoever authors the
// sequence owns choosing Expect correctly; the verifier is a classifier,
// not a switch simulator.
type ScenarioSpec struct {
	Name        string
	Description string
	Ingress     string // segment the frame is injected on
	Egress      string // segment observed for the frame
	Frame       Frame
	Expect      bool          // should a matching frame appear on Egress
	Timeout     time.Duration // mandatory capture window
	After       []string      // names of scenarios that must run earlier
}

// ExchangeFunc is the collaborator operation: inject the frame on the
// ingress segment and report whether a matching frame was observed on the
// egress segment within the timeout. Absence within the timeout is the
// observation false, not an error; errors are reserved for harness faults
// (socket failures, unreachable segments).
type ExchangeFunc func(ctx context.Context, ingress, egress string, frame Frame, timeout time.Duration) (bool, error)

// Validate checks that all required scenario fields are present. A
// malformed scenario is a configuration fault, never a compliance failure.
func (s *ScenarioSpec) Validate() error {
	var v util.ValidationBuilder
	name := s.Name
	if name == "" {
		name = "(unnamed)"
		v.AddError("name is required")
	}
	v.Add(s.Ingress != "", "ingress segment is required")
	v.Add(s.Egress != "", "egress segment is required")
	if s.Ingress != "" && s.Ingress == s.Egress {
		v.AddErrorf("ingress and egress are both %q; the capture segment must differ from the injection segment", s.Ingress)
	}
	v.Add(s.Frame.Token != "", "frame payload token is required")
	v.Add(s.Timeout > 0, "timeout is required")

	if s.Frame.Src != "" {
		if _, err := net.ParseMAC(s.Frame.Src); err != nil {
			v.AddErrorf("invalid source MAC %q", s.Frame.Src)
		}
	} else {
		v.AddError("frame source MAC is required")
	}
	if s.Frame.Dst != "" {
		if _, err := net.ParseMAC(s.Frame.Dst); err != nil {
			v.AddErrorf("invalid destination MAC %q", s.Frame.Dst)
		}
	} else {
		v.AddError("frame destination MAC is required")
	}

	if err := v.Build(); err != nil {
		return util.NewSpecError(name, err.Error())
	}
	return nil
}

// IsBroadcast reports whether the scenario's frame targets the broadcast
// address.
func (s *ScenarioSpec) IsBroadcast() bool {
	return strings.EqualFold(s.Frame.Dst, BroadcastMAC)
}

// EvaluateScenario drives one scripted exchange and classifies the observed
// boolean against the scenario's declared expectation. The device under
// test owns all MAC learning state; this function carries none of it
// between calls, so a scenario sequenced before its learn step is still
// evaluated; its outcome rests entirely on what the exchange observed.
func EvaluateScenario(ctx context.Context, spec *ScenarioSpec, exchange ExchangeFunc) (TestResult, error) {
	if err := spec.Validate(); err != nil {
		return TestResult{}, err
	}
	if exchange == nil {
		return TestResult{}, util.NewInputError("switching", spec.Name, "exchange collaborator is required")
	}

	observed, err := exchange(ctx, spec.Ingress, spec.Egress, spec.Frame, spec.Timeout)
	if err != nil {
		return TestResult{}, fmt.Errorf("scenario %s: exchange %s->%s: %w", spec.Name, spec.Ingress, spec.Egress, err)
	}

	return TestResult{
		Name:     spec.Name,
		Pass:     observed == spec.Expect,
		Expected: describeObservation(spec.Expect, spec.Egress),
		Actual:   describeObservation(observed, spec.Egress),
		Details: fmt.Sprintf("%s -> %s, dst %s, token %q, timeout %s",
			spec.Ingress, spec.Egress, spec.Frame.Dst, spec.Frame.Token, spec.Timeout),
		Timestamp: time.Now(),
	}, nil
}

func describeObservation(seen bool, segment string) string {
	if seen {
		return fmt.Sprintf("frame observed on %s", segment)
	}
	return fmt.Sprintf("no frame on %s", segment)
}
