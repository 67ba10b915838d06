package engine

import (
	"fmt"
	"math/rand"
)

// Request generation pools. Base pools are what the impoverished skill
// already understands; edge pools force it into carrier territory it needs
// patches for.
var (
	weightPool = []string{"0.2", "0.5", "1", "1.5", "2", "2.5", "3", "4", "5", "10", "15", "25"}

	baseUnits = []string{"kg", "kilogram", "kgs"}
	edgeUnits = []string{"lb", "lbs", "pound", "oz", "ounces"}

	baseDests = []string{"US", "EU", "APAC", "iran", "north korea"}
	edgeDests = []string{"usa", "united states", "uk", "britain", "europe", "asia", "japan", "jp", "aus", "canada"}

	baseItems = []string{"books", "clothes", "toys", "electronics", "laptop"}
	edgeItems = []string{"battery", "lithium battery", "perfume", "alcohol", "paint", "knife", "weapon", "fireworks"}

	baseParcels = []string{"box", "letter", "envelope"}
	edgeParcels = []string{"tube", "crate", "pallet"}
)

// RequestGenerator produces the simulated request stream from an explicitly
// seeded source, so a fixed seed replays the identical stream.
type RequestGenerator struct {
	rng *rand.Rand
}

// NewRequestGenerator creates a generator for the given seed.
func NewRequestGenerator(seed int64) *RequestGenerator {
	return &RequestGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Next returns the next request. Each slot draws from its base pool 70% of
// the time and its edge pool otherwise.
func (g *RequestGenerator) Next() string {
	weight := weightPool[g.rng.Intn(len(weightPool))]
	unit := g.pick(baseUnits, edgeUnits)
	dest := g.pick(baseDests, edgeDests)
	item := g.pick(baseItems, edgeItems)
	parcel := g.pick(baseParcels, edgeParcels)

	switch g.rng.Intn(4) {
	case 0:
		return fmt.Sprintf("Ship %s %s %s in a %s to %s", weight, unit, item, parcel, dest)
	case 1:
		return fmt.Sprintf("Quote for %s%s %s %s -> %s", weight, unit, item, parcel, dest)
	case 2:
		return fmt.Sprintf("Need shipping %s %s %s via %s to %s", weight, unit, item, parcel, dest)
	default:
		return fmt.Sprintf("Send %s %s%s %s %s", item, weight, unit, parcel, dest)
	}
}

func (g *RequestGenerator) pick(base, edge []string) string {
	if g.rng.Float64() < 0.7 {
		return base[g.rng.Intn(len(base))]
	}
	return edge[g.rng.Intn(len(edge))]
}
