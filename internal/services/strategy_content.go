package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/pkg/models"
)

// Attribute weights for the content score. They sum to 1.0.
const (
	contentGenreWeight    = 0.40
	contentDirectorWeight = 0.20
	contentActorWeight    = 0.20
	contentKeywordWeight  = 0.15
	contentRatingWeight   = 0.05

	contentMinScore = 0.1

	// Affinity above this level is strong enough to name in a reason.
	reasonAffinityThreshold = 0.5
)

// ContentBasedStrategy scores candidates by weighted overlap between the
// user's accumulated preference vectors and the movie's attributes, plus a
// small quality term from the catalog rating.
type ContentBasedStrategy struct {
	baseStrategy
}

func NewContentBasedStrategy(weight float64, logger *logrus.Logger) *ContentBasedStrategy {
	return &ContentBasedStrategy{
		baseStrategy: baseStrategy{
			name:   models.RecommendationTypeContentBased,
			weight: weight,
			logger: logger,
		},
	}
}

func (s *ContentBasedStrategy) Recommend(
	ctx context.Context, profile *models.UserProfile,
	candidates []models.Movie, maxResults int,
) ([]models.RecommendationResult, error) {
	s.logger.WithFields(logrus.Fields{
		"strategy":    s.name,
		"candidates":  len(candidates),
		"max_results": maxResults,
	}).Debug("Scoring candidates by content similarity")

	results := make([]models.RecommendationResult, 0, len(candidates))
	for i := range candidates {
		movie := &candidates[i]
		score := s.contentScore(movie, profile)
		if score <= contentMinScore {
			continue
		}

		reasons := contentReasons(movie, profile)
		results = append(results, models.RecommendationResult{
			MovieID:            movie.ID,
			Movie:              movie,
			Score:              score,
			Reasons:            reasons,
			RecommendationType: models.RecommendationTypeContentBased,
			Confidence:         DeriveConfidence(score, len(reasons)),
		})
	}

	sortByScore(results)
	return truncateResults(results, maxResults), nil
}

func (s *ContentBasedStrategy) contentScore(movie *models.Movie, profile *models.UserProfile) float64 {
	return genreScore(movie, profile)*contentGenreWeight +
		profile.Preferences.Directors[movie.Director]*contentDirectorWeight +
		actorScore(movie, profile)*contentActorWeight +
		keywordScore(movie, profile)*contentKeywordWeight +
		ratingScore(movie)*contentRatingWeight
}

func genreScore(movie *models.Movie, profile *models.UserProfile) float64 {
	if len(movie.Genres) == 0 {
		return 0
	}
	var sum float64
	for _, genre := range movie.Genres {
		sum += profile.Preferences.Genres[genre]
	}
	return sum / float64(len(movie.Genres))
}

// actorScore takes the maximum affinity across the cast. One favorite actor
// is a strong signal even when the rest of the cast is unknown.
func actorScore(movie *models.Movie, profile *models.UserProfile) float64 {
	var best float64
	for _, actor := range movie.Actors {
		if a := profile.Preferences.Actors[actor]; a > best {
			best = a
		}
	}
	return best
}

func keywordScore(movie *models.Movie, profile *models.UserProfile) float64 {
	if len(movie.Keywords) == 0 {
		return 0
	}
	var sum float64
	for _, keyword := range movie.Keywords {
		sum += profile.Preferences.Keywords[keyword]
	}
	return sum / float64(len(movie.Keywords))
}

func ratingScore(movie *models.Movie) float64 {
	score := movie.Rating / 10
	if score > 1 {
		return 1
	}
	return score
}

// contentReasons names the attributes whose affinity exceeds the reason
// threshold. A generic fallback keeps the list non-empty.
func contentReasons(movie *models.Movie, profile *models.UserProfile) []string {
	var reasons []string

	var matchingGenres []string
	for _, genre := range movie.Genres {
		if profile.Preferences.Genres[genre] > reasonAffinityThreshold {
			matchingGenres = append(matchingGenres, genre)
		}
	}
	if len(matchingGenres) > 0 {
		reasons = append(reasons, fmt.Sprintf("matches preferred genres: %s", strings.Join(matchingGenres, ", ")))
	}

	if profile.Preferences.Directors[movie.Director] > reasonAffinityThreshold {
		reasons = append(reasons, fmt.Sprintf("from a favorite director: %s", movie.Director))
	}

	var matchingActors []string
	for _, actor := range movie.Actors {
		if profile.Preferences.Actors[actor] > reasonAffinityThreshold {
			matchingActors = append(matchingActors, actor)
		}
	}
	if len(matchingActors) > 0 {
		if len(matchingActors) > 2 {
			matchingActors = matchingActors[:2]
		}
		reasons = append(reasons, fmt.Sprintf("features actors you like: %s", strings.Join(matchingActors, ", ")))
	}

	if movie.Rating >= 8.0 {
		reasons = append(reasons, fmt.Sprintf("highly rated (%.1f/10)", movie.Rating))
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "matches your taste profile")
	}
	return reasons
}
