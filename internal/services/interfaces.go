package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/veldran/cinerec/pkg/models"
)

// ErrProfileNotFound is the engine's only hard failure. Every other
// collaborator error degrades to a smaller result set.
var ErrProfileNotFound = errors.New("user profile not found")

// ProfileRepository owns user profiles and review-derived state. The engine
// reads profiles and peer reviews; writes happen on the review and feedback
// paths only.
type ProfileRepository interface {
	GetUserProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)

	// ListPeerProfiles returns up to limit profiles of other users, the
	// candidate pool for the collaborative neighborhood.
	ListPeerProfiles(ctx context.Context, excludeUserID uuid.UUID, limit int) ([]models.UserProfile, error)

	// PositiveReviews returns a user's reviews with rating >= 3 on the
	// 5-point review scale.
	PositiveReviews(ctx context.Context, userID uuid.UUID, limit int) ([]models.Review, error)

	CreateReview(ctx context.Context, review *models.Review) error
	MergeReviewAnalysis(ctx context.Context, result *models.ReviewAnalysisResult) error
	RecordFeedback(ctx context.Context, feedback *models.RecommendationFeedback) error
	SaveRecommendations(ctx context.Context, userID uuid.UUID, response *models.RecommendationResponse) error
	GetSavedRecommendations(ctx context.Context, userID uuid.UUID) (*models.RecommendationResponse, error)
}

// CatalogRepository reads the movie catalog.
type CatalogRepository interface {
	// CandidateMovies returns candidates for recommendation scoring,
	// already excluding movies the user reviewed when excludeWatched is
	// set.
	CandidateMovies(ctx context.Context, userID uuid.UUID, preferredGenres []string, excludeWatched bool, limit int) ([]models.Movie, error)

	GetMovie(ctx context.Context, movieID uuid.UUID) (*models.Movie, error)
	SearchMovies(ctx context.Context, query string, limit int) ([]models.Movie, error)
	TrendingMovies(ctx context.Context, limit int) ([]models.Movie, error)
	SeedSampleMovies(ctx context.Context) (int, error)
}

// ToneAnalyzer supplies a movie's tone descriptor. Implementations must not
// fail: when the generation backend is unavailable they fall back to the
// deterministic genre rules.
type ToneAnalyzer interface {
	DescribeTone(ctx context.Context, movie *models.Movie) models.ToneDescriptor
}

// RationaleGenerator produces a short human-readable rationale for one
// recommended movie. A returned error means the caller keeps its templated
// reasons.
type RationaleGenerator interface {
	Rationale(ctx context.Context, profile *models.UserProfile, result *models.RecommendationResult) (string, error)
}

// ReviewAnalyzer extracts sentiment and mentioned preferences from review
// text.
type ReviewAnalyzer interface {
	AnalyzeReview(ctx context.Context, review *models.Review) (*models.ReviewAnalysisResult, error)
}
