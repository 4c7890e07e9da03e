package rating

import "fmt"

// ComputeFinalRating is the weighted mean of the competency scores,
// Σ(score×weightage)/Σ(weightage), clamped to the template scale. A zero
// weightage sum is an error, never a silent divide-by-zero.
func ComputeFinalRating(scores []CompetencyScore, scaleMin, scaleMax float64) (float64, error) {
	var weightedSum, totalWeight float64
	for _, score := range scores {
		weightedSum += score.Score * score.Weightage
		totalWeight += score.Weightage
	}
	if totalWeight == 0 {
		return 0, fmt.Errorf("%w: %d scores", ErrNoWeightedCompetencies, len(scores))
	}

	final := weightedSum / totalWeight
	if final < scaleMin {
		final = scaleMin
	}
	if final > scaleMax {
		final = scaleMax
	}
	return final, nil
}
