package exchange

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/edgewire-io/adinconf/pkg/conformance"
	"github.com/edgewire-io/adinconf/pkg/util"
)

// SimSwitch emulates a well-behaved two-segment learning switch so the
// harness can run with no device attached. It stands in for the DUT, not
// for the engine: the verifier still only sees the single observed boolean
// per exchange, exactly as with real hardware.
//
// Forwarding model: broadcast floods to every other segment; a destination
// previously seen as a source forwards only to the segment it was last seen
// on; anything else floods. Every injected frame teaches the switch its
// source segment first.
type SimSwitch struct {
	mu     sync.Mutex
	macs   map[string]string // MAC (lowercased) -> segment last seen as source
	broken bool
}

// NewSimSwitch creates a simulated device with an empty MAC table.
func NewSimSwitch() *SimSwitch {
	return &SimSwitch{macs: make(map[string]string)}
}

// SetBroken makes the simulated device drop everything, for exercising the
// harness's failure paths.
func (s *SimSwitch) SetBroken(broken bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken = broken
}

// Exchange implements Exchanger.
func (s *SimSwitch) Exchange(ctx context.Context, ingress, egress string, frame conformance.Frame, timeout time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if frame.Src == "" || frame.Dst == "" {
		return false, util.NewInputError("exchange", ingress, "frame MACs are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.broken {
		return false, nil
	}

	// Learn the source before forwarding, as the silicon does.
	s.macs[strings.ToLower(frame.Src)] = ingress

	if egress == ingress {
		// Never hairpin back out the ingress segment.
		return false, nil
	}

	dst := strings.ToLower(frame.Dst)
	if dst == conformance.BroadcastMAC {
		return true, nil
	}
	if seg, learned := s.macs[dst]; learned {
		return seg == egress, nil
	}
	// Unknown unicast floods.
	return true, nil
}
