package exchange

import (
	"context"
	"time"

	"github.com/edgewire-io/adinconf/pkg/conformance"
)

// Exchanger performs one scripted frame exchange: inject on the ingress
// segment, watch the egress segment, report whether a matching frame showed
// up within the timeout. Absence is the observation false, not an error.
type Exchanger interface {
	Exchange(ctx context.Context, ingress, egress string, frame conformance.Frame, timeout time.Duration) (bool, error)
}

// Func adapts a plain function to the Exchanger interface.
type Func func(ctx context.Context, ingress, egress string, frame conformance.Frame, timeout time.Duration) (bool, error)

// Exchange implements Exchanger.
func (f Func) Exchange(ctx context.Context, ingress, egress string, frame conformance.Frame, timeout time.Duration) (bool, error) {
	return f(ctx, ingress, egress, frame, timeout)
}
