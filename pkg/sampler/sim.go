package sampler

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/edgewire-io/adinconf/pkg/util"
)

// SimSampler generates jittered samples around each characteristic's
// nominal value, without sleeping, so the harness can run end to end with
// no hardware attached.
type SimSampler struct {
	rng *rand.Rand

	// nominals maps characteristic name to the center value, in the
	// characteristic's declared unit.
	nominals map[string]float64

	// Jitter is the uniform spread around nominal as a fraction of it
	// (default 0.02, i.e. ±2%).
	Jitter float64
}

// NewSimSampler creates a simulated sampler seeded for reproducible runs.
func NewSimSampler(seed int64, nominals map[string]float64) *SimSampler {
	return &SimSampler{
		rng:      rand.New(rand.NewSource(seed)),
		nominals: nominals,
		Jitter:   0.02,
	}
}

// Sample implements Sampler.
func (s *SimSampler) Sample(ctx context.Context, characteristic string, count int) ([]float64, error) {
	if count <= 0 {
		return nil, util.NewInputError("sampler", characteristic, fmt.Sprintf("sample count %d must be positive", count))
	}
	nominal, ok := s.nominals[characteristic]
	if !ok {
		return nil, util.NewInputError("sampler", characteristic, "no nominal value registered")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	samples := make([]float64, count)
	for i := range samples {
		// Uniform in [nominal*(1-jitter), nominal*(1+jitter)].
		samples[i] = nominal * (1 + s.Jitter*(2*s.rng.Float64()-1))
	}

	util.WithCharacteristic(characteristic).Debugf("simulated %d samples around %g", count, nominal)
	return samples, nil
}
