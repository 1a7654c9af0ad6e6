// Package sampler provides the sample-acquisition collaborators for the
// timing checker. The engine never measures anything itself; a Sampler
// obtains duration samples (from the device under test, or simulated) and
// the engine only classifies them.
package sampler

import "context"

// Sampler obtains count duration samples for a named characteristic. The
// returned values are in the unit declared by the characteristic's timing
// spec. Acquisition may block (register polling, measurement commands), so
// it takes a context.
type Sampler interface {
	Sample(ctx context.Context, characteristic string, count int) ([]float64, error)
}

// Func adapts a plain function to the Sampler interface.
type Func func(ctx context.Context, characteristic string, count int) ([]float64, error)

// Sample implements Sampler.
func (f Func) Sample(ctx context.Context, characteristic string, count int) ([]float64, error) {
	return f(ctx, characteristic, count)
}
