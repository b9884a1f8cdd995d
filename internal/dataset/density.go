package dataset

import "math"

// Opacity bucket thresholds. Confirmed, recovered, and active densities share
// one scale; the deaths density runs on a tighter one because its values are
// an order of magnitude smaller.
var (
	caseloadThresholds = [4]float64{10, 100, 200, 300}
	deathsThresholds   = [4]float64{5, 10, 50, 100}
)

// JoinPopulation attaches population figures to the set and derives densities
// and map opacities. Countries missing from the population data keep zero
// values and render with a transparent fill.
func (s Set) JoinPopulation(population map[string]int) {
	for code, entry := range s {
		pop, ok := population[code]
		if !ok || pop <= 0 {
			continue
		}
		entry.Population = pop

		// Confirmed cases relative to population.
		entry.ConfirmedDensity = round2(float64(entry.Confirmed) * 100 / float64(pop))

		// Deaths and recoveries relative to confirmed cases.
		if entry.Confirmed > 0 {
			entry.DeathsDensity = round2(float64(entry.Deaths) * 1000 / float64(entry.Confirmed))
			entry.RecoveredDensity = math.Round(float64(entry.Recovered) * 1000 / float64(entry.Confirmed))
		}

		if entry.Active > 0 {
			entry.ActiveDensity = round2(float64(entry.Active) * 100 / float64(pop))
		}

		entry.ConfirmedOpacity = opacity(entry.ConfirmedDensity, caseloadThresholds)
		entry.RecoveredOpacity = opacity(entry.RecoveredDensity, caseloadThresholds)
		entry.DeathsOpacity = opacity(entry.DeathsDensity, deathsThresholds)
		entry.ActiveOpacity = opacity(entry.ActiveDensity, caseloadThresholds)

		s[code] = entry
	}
}

// opacity buckets a density into the fixed map fill scale.
func opacity(density float64, thresholds [4]float64) float64 {
	switch {
	case density <= 0:
		return 0
	case density < thresholds[0]:
		return 0.2
	case density < thresholds[1]:
		return 0.4
	case density < thresholds[2]:
		return 0.6
	case density < thresholds[3]:
		return 0.8
	default:
		return 1
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
