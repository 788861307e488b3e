package feedsim

import (
	"math/rand"

	"github.com/coltfox/superdarn-realtime-tracking/internal/domain"
)

// Generator produces synthetic radar packets. The sequence is fully
// determined by the seed, so a consumer holding the same seed can replay it
// to predict every packet a Handler emits.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator for the given seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Next returns the next synthetic packet. Most packets come from listed
// sites with clean 0/1 scatter flags; a small fraction carry an unlisted
// site code or an out-of-range flag, as the live feed occasionally does.
func (g *Generator) Next() domain.RadarPacket {
	site := domain.KnownSites[g.rng.Intn(len(domain.KnownSites))]
	if g.rng.Intn(40) == 0 {
		site = "tst"
	}

	echoes := g.rng.Intn(76)
	velocity := make([]float64, echoes)
	flags := make([]int, echoes)
	for i := range velocity {
		velocity[i] = g.rng.NormFloat64() * 250
		flags[i] = g.rng.Intn(2)
		if g.rng.Intn(50) == 0 {
			flags[i] = 2
		}
	}

	return domain.RadarPacket{
		SiteName:      site,
		Beam:          g.rng.Intn(16),
		Velocity:      velocity,
		GroundScatter: flags,
	}
}
