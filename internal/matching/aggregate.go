package matching

import "alfredoptarigan/talent-matcher/internal/models"

// Aggregate folds field results into the summary statistics. Skipped
// fields take no part; an empty input yields zeros.
func Aggregate(results []models.FieldResult) models.Summary {
	var (
		summary              models.Summary
		weightedSum, weights float64
		sumAll, sumNonZero   float64
		count, nonZero       int
		haveMax              bool
	)

	for _, r := range results {
		if r.Skipped {
			continue
		}
		count++
		sumAll += r.Score

		if r.Score != 0 {
			nonZero++
			sumNonZero += r.Score
		}
		if r.Weightage > 0 {
			weightedSum += r.Score * float64(r.Weightage)
			weights += float64(r.Weightage)
		}
		if !haveMax || r.Score > summary.MaxScore {
			summary.MaxScore = r.Score
			summary.MaxScoreField = r.Field
			haveMax = true
		}
	}

	if weights > 0 {
		summary.OverallScoreWeighted = round2(weightedSum / weights)
	}
	if count > 0 {
		summary.OverallScoreAverageAll = round2(sumAll / float64(count))
	}
	if nonZero > 0 {
		summary.OverallScoreAverageNonZero = round2(sumNonZero / float64(nonZero))
	}
	summary.MaxScore = round2(summary.MaxScore)
	return summary
}
