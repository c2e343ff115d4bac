package services

import (
	"github.com/google/uuid"

	"github.com/veldran/cinerec/pkg/models"
)

// DiversityEnhancer greedily reselects a combined ranked list so the final
// top-N is not dominated by a single genre or director.
type DiversityEnhancer struct {
	// AutoAdmitScore admits an item regardless of diversity.
	AutoAdmitScore float64
	// MinDiversityScore admits an item that brings enough novelty.
	MinDiversityScore float64
	// EarlyAdmitRatio fills the first ratio*N slots by rank alone before
	// diversity pressure applies.
	EarlyAdmitRatio float64
}

func NewDiversityEnhancer(autoAdmit, minDiversity, earlyRatio float64) *DiversityEnhancer {
	return &DiversityEnhancer{
		AutoAdmitScore:    autoAdmit,
		MinDiversityScore: minDiversity,
		EarlyAdmitRatio:   earlyRatio,
	}
}

// Enhance walks the list in score order, admitting items that are either
// high-scoring, novel, or within the early-admit floor, then backfills the
// remaining slots by raw score. Lists no longer than maxResults pass
// through unchanged.
func (d *DiversityEnhancer) Enhance(results []models.RecommendationResult, maxResults int) []models.RecommendationResult {
	if len(results) <= maxResults {
		return results
	}

	selected := make([]models.RecommendationResult, 0, maxResults)
	admitted := make(map[uuid.UUID]struct{}, maxResults)
	usedGenres := make(map[string]struct{})
	usedDirectors := make(map[string]struct{})

	earlyFloor := d.EarlyAdmitRatio * float64(maxResults)

	for _, result := range results {
		if len(selected) >= maxResults {
			break
		}

		diversityScore := d.diversityScore(result.Movie, usedGenres, usedDirectors, len(selected))

		if result.Score >= d.AutoAdmitScore ||
			diversityScore > d.MinDiversityScore ||
			float64(len(selected)) < earlyFloor {
			selected = append(selected, result)
			admitted[result.MovieID] = struct{}{}

			for _, genre := range result.Movie.Genres {
				usedGenres[genre] = struct{}{}
			}
			usedDirectors[result.Movie.Director] = struct{}{}
		}
	}

	// Backfill from the top of the ranking, ignoring diversity.
	for _, result := range results {
		if len(selected) >= maxResults {
			break
		}
		if _, ok := admitted[result.MovieID]; ok {
			continue
		}
		selected = append(selected, result)
		admitted[result.MovieID] = struct{}{}
	}

	return selected
}

// diversityScore rewards unused genres and directors, weighted more heavily
// the later the slot.
func (d *DiversityEnhancer) diversityScore(
	movie *models.Movie,
	usedGenres, usedDirectors map[string]struct{},
	admittedCount int,
) float64 {
	var score float64

	newGenres := 0
	for _, genre := range movie.Genres {
		if _, used := usedGenres[genre]; !used {
			newGenres++
		}
	}
	genreCount := len(movie.Genres)
	if genreCount < 1 {
		genreCount = 1
	}
	score += float64(newGenres) / float64(genreCount) * 0.5

	if _, used := usedDirectors[movie.Director]; !used {
		score += 0.3
	}

	return score * (1 + 0.1*float64(admittedCount))
}
