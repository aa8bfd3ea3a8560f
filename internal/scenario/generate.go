// Node generation using layered simplex noise. Each system node samples
// relief, biomass, and development layers at its map position; terrain class
// and infrastructure are derived from the combination.
package scenario

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// nodeSeed fixes the identity and map position of each system; only terrain,
// infrastructure, and combat width vary with the scenario seed.
type nodeSeed struct {
	id        string
	label     string
	angle     float64 // position on the reach's spiral arm, radians
	radius    float64
	contested bool
}

var nodeSeeds = []nodeSeed{
	{id: "veyra", label: "Veyra", angle: 0.0, radius: 1.0},
	{id: "halcyon", label: "Halcyon Gate", angle: 1.1, radius: 1.6},
	{id: "kerrav", label: "Kerrav Prime", angle: 2.3, radius: 2.4, contested: true},
	{id: "dreslin", label: "Dreslin Belt", angle: 3.4, radius: 1.9},
	{id: "othmar", label: "Othmar's Hold", angle: 4.5, radius: 2.8},
	{id: "syx", label: "Syx Anchorage", angle: 5.5, radius: 1.3},
}

// generateNodes builds the system node list for a seed.
func generateNodes(seed int64) []SystemNode {
	reliefNoise := opensimplex.NewNormalized(seed)
	biomassNoise := opensimplex.NewNormalized(seed + 1)
	devNoise := opensimplex.NewNormalized(seed + 2)

	nodes := make([]SystemNode, 0, len(nodeSeeds))
	for _, ns := range nodeSeeds {
		x := math.Cos(ns.angle) * ns.radius
		y := math.Sin(ns.angle) * ns.radius

		relief := octaveNoise(reliefNoise, x, y)
		biomass := octaveNoise(biomassNoise, x, y)
		dev := octaveNoise(devNoise, x, y)

		terrain := classifyTerrain(relief, biomass)

		// Infrastructure 0–30, biased upward for developed systems.
		infra := int(math.Round(dev * 30))

		nodes = append(nodes, SystemNode{
			ID:                    ns.id,
			Label:                 ns.label,
			TerrainID:             terrain,
			Infrastructure:        infra,
			CombatWidthMultiplier: terrainWidth[terrain],
			Contested:             ns.contested,
		})
	}
	return nodes
}

// octaveNoise samples three octaves for natural-looking variation.
func octaveNoise(n opensimplex.Noise, x, y float64) float64 {
	v := n.Eval2(x*0.5, y*0.5)*0.55 +
		n.Eval2(x*1.3, y*1.3)*0.30 +
		n.Eval2(x*2.9, y*2.9)*0.15
	return clampUnit(v)
}

// terrainWidth maps terrain class to the combat width multiplier the battle
// resolver applies on top of infrastructure.
var terrainWidth = map[string]float64{
	"plains":        1.0,
	"urban_sprawl":  0.8,
	"canyon_maze":   0.6,
	"ashland":       0.9,
	"fungal_forest": 0.7,
	"ice_shelf":     0.85,
}

// classifyTerrain derives the dominant ground-war terrain of a system's
// contested world from relief and biomass.
func classifyTerrain(relief, biomass float64) string {
	switch {
	case relief > 0.72:
		return "canyon_maze"
	case relief > 0.55 && biomass < 0.35:
		return "ashland"
	case biomass > 0.65:
		return "fungal_forest"
	case biomass < 0.20:
		return "ice_shelf"
	case relief < 0.30 && biomass > 0.40:
		return "urban_sprawl"
	default:
		return "plains"
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
