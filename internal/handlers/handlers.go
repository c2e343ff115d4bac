package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/internal/services"
	"github.com/veldran/cinerec/pkg/models"
)

// RecommendationProvider is the handler-facing surface of the
// recommendation service.
type RecommendationProvider interface {
	GetRecommendations(ctx context.Context, userID uuid.UUID, config models.RecommendationConfig) (*models.RecommendationResponse, error)
	SavedRecommendations(ctx context.Context, userID uuid.UUID) (*models.RecommendationResponse, error)
	SubmitFeedback(ctx context.Context, feedback *models.RecommendationFeedback) error
	Trending(ctx context.Context, limit int) ([]models.RecommendationResult, error)
}

// MovieCatalogProvider is the handler-facing surface of the catalog.
type MovieCatalogProvider interface {
	GetMovie(ctx context.Context, movieID uuid.UUID) (*models.Movie, error)
	SearchMovies(ctx context.Context, query string, limit int) ([]models.Movie, error)
	SeedSampleMovies(ctx context.Context) (int, error)
}

// ReviewSubmitter runs the review ingestion pipeline.
type ReviewSubmitter interface {
	SubmitReview(ctx context.Context, review *models.Review) (*models.ReviewAnalysisResult, error)
}

type Handlers struct {
	Health         *HealthHandler
	Recommendation *RecommendationHandler
	Movie          *MovieHandler
	Review         *ReviewHandler
}

func New(logger *logrus.Logger, services *services.Services) *Handlers {
	validate := validator.New()

	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Recommendation: NewRecommendationHandler(services.Recommendations, validate, logger),
		Movie:          NewMovieHandler(services.Catalog, services.Recommendations, logger),
		Review:         NewReviewHandler(services.Reviews, validate, logger),
	}
}
