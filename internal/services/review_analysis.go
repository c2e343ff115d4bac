package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/veldran/cinerec/internal/generation"
	"github.com/veldran/cinerec/internal/messaging"
	"github.com/veldran/cinerec/pkg/models"
)

// GenerationReviewAnalyzer extracts sentiment and mentioned preferences
// from free-text reviews via the generation service.
type GenerationReviewAnalyzer struct {
	client *generation.Client
	logger *logrus.Logger
}

func NewGenerationReviewAnalyzer(client *generation.Client, logger *logrus.Logger) *GenerationReviewAnalyzer {
	return &GenerationReviewAnalyzer{client: client, logger: logger}
}

type reviewAnalysisPayload struct {
	Sentiment string   `json:"sentiment"`
	Score     float64  `json:"score"`
	Emotions  []string `json:"emotions"`
	Genres    []string `json:"genres"`
	Themes    []string `json:"themes"`
	Actors    []string `json:"actors"`
	Directors []string `json:"directors"`
	Keywords  []string `json:"keywords"`
}

func (a *GenerationReviewAnalyzer) AnalyzeReview(ctx context.Context, review *models.Review) (*models.ReviewAnalysisResult, error) {
	prompt := fmt.Sprintf(
		"Analyze this movie review. Return JSON with sentiment (positive, neutral "+
			"or negative), score (-1 to 1), emotions, and the genres, themes, actors, "+
			"directors and keywords the reviewer mentions favorably.\n"+
			"Rating: %d/5\nReview: %s",
		review.Rating, review.ReviewText,
	)

	var payload reviewAnalysisPayload
	if err := a.client.GenerateJSON(ctx, prompt, generation.SchemaReviewAnalysis, &payload); err != nil {
		return nil, fmt.Errorf("review analysis failed: %w", err)
	}

	if payload.Score < -1 {
		payload.Score = -1
	}
	if payload.Score > 1 {
		payload.Score = 1
	}

	return &models.ReviewAnalysisResult{
		ReviewID: review.ID,
		UserID:   review.UserID,
		MovieID:  review.MovieID,
		Sentiment: models.SentimentAnalysis{
			Sentiment: payload.Sentiment,
			Score:     payload.Score,
			Emotions:  normalizeLabels(payload.Emotions),
		},
		Preferences: models.PreferenceAnalysis{
			Genres:    normalizeLabels(payload.Genres),
			Themes:    normalizeLabels(payload.Themes),
			Actors:    normalizeLabels(payload.Actors),
			Directors: normalizeLabels(payload.Directors),
			Keywords:  normalizeLabels(payload.Keywords),
		},
		Confidence: clamp01(0.5 + payload.Score*payload.Score/2),
		AnalyzedAt: time.Now(),
	}, nil
}

// normalizeLabels canonicalizes preference keys so "Sci-Fi" and "sci-fi"
// accumulate into one entry. NFKC folds width and compatibility variants
// before lowercasing.
func normalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		normalized := NormalizeLabel(label)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(label)))
}

// ReviewService runs the review ingestion pipeline: persist the review,
// analyze it, fold the analysis into the user's profile and publish the
// result. Analysis failures degrade to a neutral result so a review is
// never lost to a generation outage.
type ReviewService struct {
	profiles ProfileRepository
	analyzer ReviewAnalyzer
	bus      *messaging.EventBus
	logger   *logrus.Logger
}

func NewReviewService(profiles ProfileRepository, analyzer ReviewAnalyzer, bus *messaging.EventBus, logger *logrus.Logger) *ReviewService {
	return &ReviewService{
		profiles: profiles,
		analyzer: analyzer,
		bus:      bus,
		logger:   logger,
	}
}

func (s *ReviewService) SubmitReview(ctx context.Context, review *models.Review) (*models.ReviewAnalysisResult, error) {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}

	if err := s.profiles.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to persist review: %w", err)
	}

	result, err := s.analyzer.AnalyzeReview(ctx, review)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"review_id": review.ID,
			"error":     err,
		}).Warn("Review analysis unavailable, recording neutral sentiment")
		result = neutralAnalysis(review)
	}

	if err := s.profiles.MergeReviewAnalysis(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to merge review analysis: %w", err)
	}

	if s.bus != nil {
		if err := s.bus.PublishReviewAnalyzed(ctx, result); err != nil {
			s.logger.WithError(err).Warn("Failed to publish review-analyzed event")
		}
	}

	return result, nil
}

func neutralAnalysis(review *models.Review) *models.ReviewAnalysisResult {
	return &models.ReviewAnalysisResult{
		ReviewID: review.ID,
		UserID:   review.UserID,
		MovieID:  review.MovieID,
		Sentiment: models.SentimentAnalysis{
			Sentiment: models.SentimentNeutral,
			Score:     0,
		},
		Confidence: 0.3,
		AnalyzedAt: time.Now(),
	}
}
