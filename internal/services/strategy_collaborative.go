package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/pkg/models"
)

const (
	// Peer discovery caps keep the neighborhood computation bounded.
	peerCandidateLimit   = 100
	peerNeighborhoodSize = 20
	peerReviewLimit      = 50

	peerSimilarityThreshold = 0.3
	collaborativeMinScore   = 0.3
	// Single-peer signal is noise; at least two neighbors must agree.
	collaborativeMinNeighbors = 2
)

// Blend weights for peer similarity. Genre taste dominates, then emotional
// alignment, then director taste, then rating harshness.
const (
	simGenreWeight     = 0.4
	simSentimentWeight = 0.3
	simDirectorWeight  = 0.2
	simRatingWeight    = 0.1
)

// CollaborativeStrategy recommends movies that users with similar taste
// rated positively. Any retrieval failure degrades to an empty result set;
// the collaborative signal is best effort.
type CollaborativeStrategy struct {
	baseStrategy
	profiles ProfileRepository
}

func NewCollaborativeStrategy(weight float64, profiles ProfileRepository, logger *logrus.Logger) *CollaborativeStrategy {
	return &CollaborativeStrategy{
		baseStrategy: baseStrategy{
			name:   models.RecommendationTypeCollaborative,
			weight: weight,
			logger: logger,
		},
		profiles: profiles,
	}
}

type peer struct {
	profile    models.UserProfile
	similarity float64
}

func (s *CollaborativeStrategy) Recommend(
	ctx context.Context, profile *models.UserProfile,
	candidates []models.Movie, maxResults int,
) ([]models.RecommendationResult, error) {
	neighbors, err := s.findNeighbors(ctx, profile)
	if err != nil {
		s.logger.WithError(err).Warn("Peer lookup failed, skipping collaborative scoring")
		return nil, nil
	}
	if len(neighbors) == 0 {
		s.logger.WithField("user_id", profile.UserID).Debug("No similar users found")
		return nil, nil
	}

	scores := make(map[uuid.UUID]float64)
	contributors := make(map[uuid.UUID]map[uuid.UUID]struct{})

	for _, n := range neighbors {
		reviews, err := s.profiles.PositiveReviews(ctx, n.profile.UserID, peerReviewLimit)
		if err != nil {
			s.logger.WithError(err).Warn("Peer review lookup failed, skipping collaborative scoring")
			return nil, nil
		}
		for _, review := range reviews {
			scores[review.MovieID] += (float64(review.Rating) / 5) * n.similarity
			if contributors[review.MovieID] == nil {
				contributors[review.MovieID] = make(map[uuid.UUID]struct{})
			}
			contributors[review.MovieID][n.profile.UserID] = struct{}{}
		}
	}

	results := make([]models.RecommendationResult, 0, len(candidates))
	for i := range candidates {
		movie := &candidates[i]
		score := scores[movie.ID]
		neighborCount := len(contributors[movie.ID])
		if score <= collaborativeMinScore || neighborCount < collaborativeMinNeighbors {
			continue
		}

		reasons := collaborativeReasons(neighborCount, score)
		results = append(results, models.RecommendationResult{
			MovieID:            movie.ID,
			Movie:              movie,
			Score:              score,
			Reasons:            reasons,
			RecommendationType: models.RecommendationTypeCollaborative,
			Confidence:         DeriveConfidence(score, len(reasons)),
		})
	}

	sortByScore(results)
	return truncateResults(results, maxResults), nil
}

// findNeighbors loads up to 100 peer profiles and keeps the 20 most similar
// ones above the similarity threshold.
func (s *CollaborativeStrategy) findNeighbors(ctx context.Context, target *models.UserProfile) ([]peer, error) {
	profiles, err := s.profiles.ListPeerProfiles(ctx, target.UserID, peerCandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list peer profiles: %w", err)
	}

	neighbors := make([]peer, 0, len(profiles))
	for _, p := range profiles {
		if p.UserID == target.UserID {
			continue
		}
		if sim := blendedSimilarity(target, &p); sim > peerSimilarityThreshold {
			neighbors = append(neighbors, peer{profile: p, similarity: sim})
		}
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].similarity > neighbors[j].similarity
	})
	if len(neighbors) > peerNeighborhoodSize {
		neighbors = neighbors[:peerNeighborhoodSize]
	}
	return neighbors, nil
}

// blendedSimilarity combines genre taste, sentiment history, director taste
// and rating harshness into one peer similarity value.
func blendedSimilarity(a, b *models.UserProfile) float64 {
	genreSim := CosineSimilarity(a.Preferences.Genres, b.Preferences.Genres)
	sentimentSim := CosineSimilarity(a.SentimentHistory.Vector(), b.SentimentHistory.Vector())
	directorSim := CosineSimilarity(a.Preferences.Directors, b.Preferences.Directors)

	ratingDiff := math.Abs(avgRating(a) - avgRating(b))
	ratingSim := 1 - ratingDiff/5
	if ratingSim < 0 {
		ratingSim = 0
	}

	return genreSim*simGenreWeight +
		sentimentSim*simSentimentWeight +
		directorSim*simDirectorWeight +
		ratingSim*simRatingWeight
}

func avgRating(p *models.UserProfile) float64 {
	if p.AverageRating == nil {
		return 0
	}
	return *p.AverageRating
}

func collaborativeReasons(neighborCount int, score float64) []string {
	var reasons []string

	switch {
	case neighborCount >= 5:
		reasons = append(reasons, fmt.Sprintf("%d similar users rated this highly", neighborCount))
	case neighborCount >= 3:
		reasons = append(reasons, "recommended by several similar users")
	default:
		reasons = append(reasons, "rated well by users with similar taste")
	}

	switch {
	case score >= 0.8:
		reasons = append(reasons, "exceptionally strong peer ratings")
	case score >= 0.6:
		reasons = append(reasons, "strong peer ratings")
	}

	return reasons
}
