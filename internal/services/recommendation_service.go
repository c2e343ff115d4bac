package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/internal/messaging"
	"github.com/veldran/cinerec/pkg/models"
)

const (
	candidatePoolSize  = 100
	rationaleTopK      = 10
	trendingConfidence = 0.8
)

// RecommendationService drives one full recommendation cycle: cached list
// lookup, profile and candidate loading, hybrid scoring, rationale
// enrichment, persistence and cache fill.
type RecommendationService struct {
	engine     *HybridEngine
	profiles   ProfileRepository
	catalog    CatalogRepository
	rationales RationaleGenerator
	bus        *messaging.EventBus
	cache      *redis.Client
	cacheTTL   time.Duration
	metrics    *EngineMetrics
	logger     *logrus.Logger
}

func NewRecommendationService(
	engine *HybridEngine,
	profiles ProfileRepository,
	catalog CatalogRepository,
	rationales RationaleGenerator,
	bus *messaging.EventBus,
	cache *redis.Client,
	cacheTTL time.Duration,
	metrics *EngineMetrics,
	logger *logrus.Logger,
) *RecommendationService {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &RecommendationService{
		engine:     engine,
		profiles:   profiles,
		catalog:    catalog,
		rationales: rationales,
		bus:        bus,
		cache:      cache,
		cacheTTL:   cacheTTL,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *RecommendationService) GetRecommendations(
	ctx context.Context, userID uuid.UUID, config models.RecommendationConfig,
) (*models.RecommendationResponse, error) {
	start := time.Now()
	config = config.Normalize()

	if cached := s.cachedResponse(ctx, userID, config); cached != nil {
		s.metrics.ObserveRequest("cache_hit", time.Since(start))
		return cached, nil
	}

	profile, err := s.profiles.GetUserProfile(ctx, userID)
	if err != nil {
		s.metrics.ObserveRequest("error", time.Since(start))
		return nil, err
	}

	preferredGenres := topPreferences(profile.Preferences.Genres, 3)
	candidates, err := s.catalog.CandidateMovies(ctx, userID, preferredGenres, config.ExcludeWatched, candidatePoolSize)
	if err != nil {
		s.metrics.ObserveRequest("error", time.Since(start))
		return nil, fmt.Errorf("failed to load candidate movies: %w", err)
	}

	results, err := s.engine.GenerateRecommendations(ctx, profile, candidates, config)
	if err != nil {
		s.metrics.ObserveRequest("error", time.Since(start))
		return nil, err
	}

	s.enrichRationales(ctx, profile, results)

	response := &models.RecommendationResponse{
		UserID:          userID,
		Recommendations: results,
		Config:          config,
		GeneratedAt:     time.Now(),
	}

	if err := s.profiles.SaveRecommendations(ctx, userID, response); err != nil {
		s.logger.WithError(err).Warn("Failed to persist recommendation list")
	}
	s.storeCachedResponse(ctx, userID, config, response)

	s.metrics.ObserveRequest("generated", time.Since(start))
	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"results":  len(results),
		"duration": time.Since(start),
	}).Info("Recommendations generated")

	return response, nil
}

// enrichRationales replaces the templated reasons of the top results with a
// generated rationale sentence. Failures keep the templates.
func (s *RecommendationService) enrichRationales(ctx context.Context, profile *models.UserProfile, results []models.RecommendationResult) {
	if s.rationales == nil {
		return
	}
	for i := range results {
		if i >= rationaleTopK {
			break
		}
		rationale, err := s.rationales.Rationale(ctx, profile, &results[i])
		if err != nil {
			continue
		}
		results[i].Reasons = append([]string{rationale}, results[i].Reasons...)
	}
}

func (s *RecommendationService) SavedRecommendations(ctx context.Context, userID uuid.UUID) (*models.RecommendationResponse, error) {
	return s.profiles.GetSavedRecommendations(ctx, userID)
}

// SubmitFeedback persists a feedback event, publishes it and invalidates
// the user's cached recommendation lists.
func (s *RecommendationService) SubmitFeedback(ctx context.Context, feedback *models.RecommendationFeedback) error {
	if err := s.profiles.RecordFeedback(ctx, feedback); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.FeedbackEvents.WithLabelValues(feedback.Feedback).Inc()
	}

	if s.bus != nil {
		if err := s.bus.PublishFeedback(ctx, feedback); err != nil {
			s.logger.WithError(err).Warn("Failed to publish feedback event")
		}
	}

	s.invalidateCache(ctx, feedback.UserID)
	return nil
}

// Trending returns the catalog's top-rated movies as a non-personalized
// recommendation list.
func (s *RecommendationService) Trending(ctx context.Context, limit int) ([]models.RecommendationResult, error) {
	movies, err := s.catalog.TrendingMovies(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load trending movies: %w", err)
	}

	results := make([]models.RecommendationResult, 0, len(movies))
	for i := range movies {
		movie := &movies[i]
		results = append(results, models.RecommendationResult{
			MovieID:            movie.ID,
			Movie:              movie,
			Score:              clamp01(movie.Rating / 10),
			Reasons:            []string{fmt.Sprintf("trending with a %.1f/10 rating", movie.Rating)},
			RecommendationType: models.RecommendationTypeTrending,
			Confidence:         trendingConfidence,
		})
	}
	return results, nil
}

func (s *RecommendationService) cacheKey(userID uuid.UUID, config models.RecommendationConfig) string {
	return fmt.Sprintf("recommendations:%s:%d:%.2f:%.2f:%t:%.2f",
		userID, config.MaxRecommendations, config.ContentWeight,
		config.CollaborativeWeight, config.DiversityBoost, config.MinConfidence)
}

func (s *RecommendationService) cachedResponse(ctx context.Context, userID uuid.UUID, config models.RecommendationConfig) *models.RecommendationResponse {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, s.cacheKey(userID, config)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.WithError(err).Warn("Recommendation cache read failed")
		}
		if s.metrics != nil {
			s.metrics.CacheHits.WithLabelValues("miss").Inc()
		}
		return nil
	}

	var response models.RecommendationResponse
	if err := json.Unmarshal([]byte(data), &response); err != nil {
		return nil
	}
	response.CacheHit = true
	if s.metrics != nil {
		s.metrics.CacheHits.WithLabelValues("hit").Inc()
	}
	return &response
}

func (s *RecommendationService) storeCachedResponse(ctx context.Context, userID uuid.UUID, config models.RecommendationConfig, response *models.RecommendationResponse) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(userID, config), data, s.cacheTTL).Err(); err != nil {
		s.logger.WithError(err).Warn("Failed to cache recommendations")
	}
}

func (s *RecommendationService) invalidateCache(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}

	pattern := fmt.Sprintf("recommendations:%s:*", userID)
	iter := s.cache.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.cache.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate cached recommendations")
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.WithError(err).Warn("Recommendation cache scan failed")
	}
}
