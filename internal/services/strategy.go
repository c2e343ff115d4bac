package services

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/pkg/models"
)

// RecommendationStrategy produces scored candidates from a user profile.
// Implementations must be deterministic for a fixed input and must not
// mutate the profile or the candidate slice.
type RecommendationStrategy interface {
	// Name identifies the strategy in logs and result metadata.
	Name() string

	// Weight is the strategy's base contribution before dynamic adjustment.
	Weight() float64

	// Recommend scores the candidates and returns at most maxResults of
	// them in descending score order. An empty result is a valid outcome.
	Recommend(ctx context.Context, profile *models.UserProfile, candidates []models.Movie, maxResults int) ([]models.RecommendationResult, error)
}

type baseStrategy struct {
	name   string
	weight float64
	logger *logrus.Logger
}

func (s *baseStrategy) Name() string    { return s.name }
func (s *baseStrategy) Weight() float64 { return s.weight }

// sortByScore orders results by descending score. The sort is stable so
// candidate order breaks ties, keeping output deterministic.
func sortByScore(results []models.RecommendationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

func truncateResults(results []models.RecommendationResult, maxResults int) []models.RecommendationResult {
	if maxResults > 0 && len(results) > maxResults {
		return results[:maxResults]
	}
	return results
}

// topPreferences returns the up-to-n highest weighted labels of a preference
// vector, heaviest first, label order breaking weight ties.
func topPreferences(prefs models.PreferenceVector, n int) []string {
	type entry struct {
		label  string
		weight float64
	}
	entries := make([]entry, 0, len(prefs))
	for label, weight := range prefs {
		entries = append(entries, entry{label, weight})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].weight != entries[j].weight {
			return entries[i].weight > entries[j].weight
		}
		return entries[i].label < entries[j].label
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.label
	}
	return labels
}

func containsLabel(labels []string, target string) bool {
	for _, l := range labels {
		if l == target {
			return true
		}
	}
	return false
}
