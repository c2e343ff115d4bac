package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldran/cinerec/pkg/models"
)

func rankedResult(title string, score float64, genres []string, director string) models.RecommendationResult {
	movie := &models.Movie{
		ID:       uuid.New(),
		Title:    title,
		Genres:   genres,
		Director: director,
	}
	return models.RecommendationResult{
		MovieID: movie.ID,
		Movie:   movie,
		Score:   score,
	}
}

func selectedTitles(results []models.RecommendationResult) []string {
	titles := make([]string, len(results))
	for i, r := range results {
		titles[i] = r.Movie.Title
	}
	return titles
}

func TestDiversityEnhancerPassThrough(t *testing.T) {
	enhancer := NewDiversityEnhancer(0.7, 0.5, 0.6)
	results := []models.RecommendationResult{
		rankedResult("A", 0.9, []string{"drama"}, "d1"),
		rankedResult("B", 0.8, []string{"drama"}, "d1"),
	}

	enhanced := enhancer.Enhance(results, 5)
	assert.Equal(t, results, enhanced)
}

func TestDiversityEnhancerGreedySelection(t *testing.T) {
	enhancer := NewDiversityEnhancer(0.7, 0.5, 0.6)

	ranked := []models.RecommendationResult{
		rankedResult("i1", 0.95, []string{"g1"}, "d1"),
		rankedResult("i2", 0.90, []string{"g1"}, "d1"),
		rankedResult("i3", 0.85, []string{"g1"}, "d2"),
		rankedResult("i4", 0.65, []string{"g1"}, "d1"),
		rankedResult("i5", 0.60, []string{"g2"}, "d1"),
		rankedResult("i6", 0.55, []string{"g1"}, "d3"),
		rankedResult("i7", 0.50, []string{"g3"}, "d1"),
		rankedResult("i8", 0.45, []string{"g1"}, "d1"),
		rankedResult("i9", 0.40, []string{"g2"}, "d2"),
		rankedResult("i10", 0.35, []string{"g4"}, "d3"),
	}

	enhanced := enhancer.Enhance(ranked, 5)
	require.Len(t, enhanced, 5)

	// The top three clear the auto-admit score; afterwards only items
	// bringing an unseen genre beat the diversity bar. i4 and i6 repeat
	// what is already on the list and get skipped.
	assert.Equal(t, []string{"i1", "i2", "i3", "i5", "i7"}, selectedTitles(enhanced))
}

func TestDiversityEnhancerBackfills(t *testing.T) {
	// A strict configuration admits nothing past the early floor, so the
	// remaining slots are filled back in rank order.
	enhancer := NewDiversityEnhancer(0.99, 0.99, 0.4)

	ranked := []models.RecommendationResult{
		rankedResult("i1", 0.9, []string{"g1"}, "d1"),
		rankedResult("i2", 0.8, []string{"g1"}, "d1"),
		rankedResult("i3", 0.7, []string{"g1"}, "d1"),
		rankedResult("i4", 0.6, []string{"g1"}, "d1"),
		rankedResult("i5", 0.5, []string{"g1"}, "d1"),
	}

	enhanced := enhancer.Enhance(ranked, 4)
	require.Len(t, enhanced, 4)
	assert.Equal(t, []string{"i1", "i2", "i3", "i4"}, selectedTitles(enhanced))
}
