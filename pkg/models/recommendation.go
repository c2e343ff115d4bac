package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RecommendationTypeContentBased  = "content_based"
	RecommendationTypeCollaborative = "collaborative"
	RecommendationTypeHybrid        = "hybrid"
	RecommendationTypeTrending      = "trending"
)

type RecommendationResult struct {
	MovieID            uuid.UUID `json:"movie_id"`
	Movie              *Movie    `json:"movie"`
	Score              float64   `json:"score"`
	Reasons            []string  `json:"reasons"`
	RecommendationType string    `json:"recommendation_type"`
	Confidence         float64   `json:"confidence"`
}

// RecommendationConfig is the caller-facing configuration accepted per
// request. Zero values are replaced with defaults by Normalize.
type RecommendationConfig struct {
	MaxRecommendations  int     `json:"max_recommendations" validate:"min=0,max=100"`
	ContentWeight       float64 `json:"content_weight" validate:"min=0,max=1"`
	CollaborativeWeight float64 `json:"collaborative_weight" validate:"min=0,max=1"`
	DiversityBoost      bool    `json:"diversity_boost"`
	MinConfidence       float64 `json:"min_confidence" validate:"min=0,max=1"`
	ExcludeWatched      bool    `json:"exclude_watched"`
}

func DefaultRecommendationConfig() RecommendationConfig {
	return RecommendationConfig{
		MaxRecommendations:  10,
		ContentWeight:       0.7,
		CollaborativeWeight: 0.3,
		DiversityBoost:      true,
		MinConfidence:       0.3,
		ExcludeWatched:      true,
	}
}

// Normalize fills unset fields with defaults.
func (c RecommendationConfig) Normalize() RecommendationConfig {
	def := DefaultRecommendationConfig()
	if c.MaxRecommendations <= 0 {
		c.MaxRecommendations = def.MaxRecommendations
	}
	if c.ContentWeight <= 0 {
		c.ContentWeight = def.ContentWeight
	}
	if c.CollaborativeWeight <= 0 {
		c.CollaborativeWeight = def.CollaborativeWeight
	}
	if c.MinConfidence <= 0 {
		c.MinConfidence = def.MinConfidence
	}
	return c
}

type RecommendationResponse struct {
	UserID          uuid.UUID              `json:"user_id"`
	Recommendations []RecommendationResult `json:"recommendations"`
	Config          RecommendationConfig   `json:"config"`
	GeneratedAt     time.Time              `json:"generated_at"`
	CacheHit        bool                   `json:"cache_hit"`
}

const (
	FeedbackLike          = "like"
	FeedbackDislike       = "dislike"
	FeedbackNotInterested = "not_interested"
	FeedbackWatched       = "watched"
	FeedbackBookmark      = "bookmark"
)

type RecommendationFeedback struct {
	UserID           uuid.UUID  `json:"user_id" validate:"required"`
	MovieID          uuid.UUID  `json:"movie_id" validate:"required"`
	Feedback         string     `json:"feedback" validate:"required,oneof=like dislike not_interested watched bookmark"`
	RecommendationID *uuid.UUID `json:"recommendation_id,omitempty"`
	Reason           *string    `json:"reason,omitempty"`
	Timestamp        time.Time  `json:"timestamp"`
}
