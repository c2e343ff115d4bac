package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/internal/config"
	"github.com/veldran/cinerec/internal/database"
	"github.com/veldran/cinerec/internal/generation"
	"github.com/veldran/cinerec/internal/messaging"
)

// Services wires the engine and its collaborators together.
type Services struct {
	Auth            *AuthService
	Health          *HealthService
	RateLimiter     *RateLimiter
	Catalog         *MovieCatalogService
	Profiles        *UserProfileService
	Reviews         *ReviewService
	Recommendations *RecommendationService
	Metrics         *EngineMetrics
}

func New(cfg *config.Config, db *database.Database, bus *messaging.EventBus, logger *logrus.Logger) (*Services, error) {
	metrics := NewEngineMetrics()

	catalog := NewMovieCatalogService(db.PG, logger)
	profiles := NewUserProfileService(db.PG, db.Neo4j, logger)

	genClient, err := generation.NewClient(cfg.Generation, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build generation client: %w", err)
	}

	toneAnalyzer := NewGenerationToneAnalyzer(genClient, db.Redis.Warm, cfg.Engine.Caching.ToneTTL, logger)
	reviewAnalyzer := NewGenerationReviewAnalyzer(genClient, logger)
	rationales := NewGenerationRationaleGenerator(genClient, logger)

	strategies := []RecommendationStrategy{
		NewContentBasedStrategy(cfg.Engine.ContentWeight, logger),
		NewCollaborativeStrategy(cfg.Engine.CollaborativeWeight, profiles, logger),
		NewSentimentBasedStrategy(cfg.Engine.SentimentWeight, toneAnalyzer, logger),
	}

	diversity := NewDiversityEnhancer(
		cfg.Engine.Diversity.AutoAdmitScore,
		cfg.Engine.Diversity.MinDiversityScore,
		cfg.Engine.Diversity.EarlyAdmitRatio,
	)

	engine := NewHybridEngine(strategies, diversity, metrics, logger)

	recommendations := NewRecommendationService(
		engine, profiles, catalog, rationales, bus,
		db.Redis.Warm, cfg.Engine.Caching.RecommendationsTTL, metrics, logger,
	)

	reviews := NewReviewService(profiles, reviewAnalyzer, bus, logger)

	return &Services{
		Auth:            NewAuthService(cfg, logger),
		Health:          NewHealthService(db, logger),
		RateLimiter:     NewRateLimiter(db.Redis.Hot),
		Catalog:         catalog,
		Profiles:        profiles,
		Reviews:         reviews,
		Recommendations: recommendations,
		Metrics:         metrics,
	}, nil
}
