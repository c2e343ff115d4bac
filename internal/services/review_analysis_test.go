package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/veldran/cinerec/pkg/models"
)

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "sci-fi", NormalizeLabel("  Sci-Fi "))
	assert.Equal(t, "drama", NormalizeLabel("DRAMA"))
	// NFKC folds full-width characters before lowercasing.
	assert.Equal(t, "scifi", NormalizeLabel("ＳｃｉＦｉ"))
	assert.Equal(t, "", NormalizeLabel("   "))
}

func TestNormalizeLabels(t *testing.T) {
	labels := normalizeLabels([]string{"Sci-Fi", "sci-fi", "", "Drama", "  drama  "})
	assert.Equal(t, []string{"sci-fi", "drama"}, labels)
}

type stubReviewAnalyzer struct {
	result *models.ReviewAnalysisResult
	err    error
}

func (s *stubReviewAnalyzer) AnalyzeReview(_ context.Context, _ *models.Review) (*models.ReviewAnalysisResult, error) {
	return s.result, s.err
}

func TestSubmitReviewAssignsIdentity(t *testing.T) {
	review := &models.Review{
		UserID:     uuid.New(),
		MovieID:    uuid.New(),
		Rating:     4,
		ReviewText: "Beautifully animated, the whole family loved it.",
	}

	analysis := &models.ReviewAnalysisResult{
		UserID:  review.UserID,
		MovieID: review.MovieID,
		Sentiment: models.SentimentAnalysis{
			Sentiment: models.SentimentPositive,
			Score:     0.8,
		},
		Confidence: 0.8,
	}

	repo := &mockProfileRepository{}
	repo.On("CreateReview", mock.Anything, review).Return(nil)
	repo.On("MergeReviewAnalysis", mock.Anything, analysis).Return(nil)

	service := NewReviewService(repo, &stubReviewAnalyzer{result: analysis}, nil, testLogger())
	result, err := service.SubmitReview(context.Background(), review)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, review.ID)
	assert.False(t, review.CreatedAt.IsZero())
	assert.Equal(t, analysis, result)
	repo.AssertExpectations(t)
}

func TestSubmitReviewDegradesToNeutral(t *testing.T) {
	review := &models.Review{
		UserID:     uuid.New(),
		MovieID:    uuid.New(),
		Rating:     3,
		ReviewText: "It was fine.",
	}

	repo := &mockProfileRepository{}
	repo.On("CreateReview", mock.Anything, review).Return(nil)
	repo.On("MergeReviewAnalysis", mock.Anything, mock.MatchedBy(func(result *models.ReviewAnalysisResult) bool {
		return result.Sentiment.Sentiment == models.SentimentNeutral && result.Confidence == 0.3
	})).Return(nil)

	analyzer := &stubReviewAnalyzer{err: errors.New("generation timeout")}
	service := NewReviewService(repo, analyzer, nil, testLogger())

	result, err := service.SubmitReview(context.Background(), review)

	require.NoError(t, err)
	assert.Equal(t, models.SentimentNeutral, result.Sentiment.Sentiment)
	assert.Equal(t, 0.3, result.Confidence)
	repo.AssertExpectations(t)
}

func TestSubmitReviewPersistFailureStops(t *testing.T) {
	review := &models.Review{UserID: uuid.New(), MovieID: uuid.New(), Rating: 5}

	repo := &mockProfileRepository{}
	repo.On("CreateReview", mock.Anything, review).Return(errors.New("database down"))

	service := NewReviewService(repo, &stubReviewAnalyzer{}, nil, testLogger())
	_, err := service.SubmitReview(context.Background(), review)

	require.Error(t, err)
	repo.AssertNotCalled(t, "MergeReviewAnalysis", mock.Anything, mock.Anything)
}
