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

type mockProfileRepository struct {
	mock.Mock
}

func (m *mockProfileRepository) GetUserProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *mockProfileRepository) ListPeerProfiles(ctx context.Context, excludeUserID uuid.UUID, limit int) ([]models.UserProfile, error) {
	args := m.Called(ctx, excludeUserID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserProfile), args.Error(1)
}

func (m *mockProfileRepository) PositiveReviews(ctx context.Context, userID uuid.UUID, limit int) ([]models.Review, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *mockProfileRepository) CreateReview(ctx context.Context, review *models.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockProfileRepository) MergeReviewAnalysis(ctx context.Context, result *models.ReviewAnalysisResult) error {
	return m.Called(ctx, result).Error(0)
}

func (m *mockProfileRepository) RecordFeedback(ctx context.Context, feedback *models.RecommendationFeedback) error {
	return m.Called(ctx, feedback).Error(0)
}

func (m *mockProfileRepository) SaveRecommendations(ctx context.Context, userID uuid.UUID, response *models.RecommendationResponse) error {
	return m.Called(ctx, userID, response).Error(0)
}

func (m *mockProfileRepository) GetSavedRecommendations(ctx context.Context, userID uuid.UUID) (*models.RecommendationResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecommendationResponse), args.Error(1)
}

// twinProfile builds a profile maximally similar to the target: identical
// genre and director vectors, same sentiment history, same average rating.
// Blended similarity against the target is 1.0.
func twinProfile(target *models.UserProfile) models.UserProfile {
	return models.UserProfile{
		UserID: uuid.New(),
		Preferences: models.Preferences{
			Genres:    target.Preferences.Genres,
			Directors: target.Preferences.Directors,
		},
		SentimentHistory: target.SentimentHistory,
		AverageRating:    target.AverageRating,
	}
}

func collaborativeFixtureProfile() *models.UserProfile {
	avg := 4.0
	return &models.UserProfile{
		UserID: uuid.New(),
		Preferences: models.Preferences{
			Genres:    models.PreferenceVector{"drama": 2, "thriller": 1},
			Directors: models.PreferenceVector{"Paul Renner": 1},
		},
		SentimentHistory: models.SentimentHistory{Positive: 3, Neutral: 1},
		AverageRating:    &avg,
	}
}

func TestCollaborativeRequiresTwoNeighbors(t *testing.T) {
	target := collaborativeFixtureProfile()
	movie := models.Movie{ID: uuid.New(), Title: "The Last Witness"}

	peer := twinProfile(target)
	repo := &mockProfileRepository{}
	repo.On("ListPeerProfiles", mock.Anything, target.UserID, peerCandidateLimit).
		Return([]models.UserProfile{peer}, nil)
	// One peer, rating 5: accumulated score 1.0 exceeds the floor but a
	// single neighbor is not enough.
	repo.On("PositiveReviews", mock.Anything, peer.UserID, peerReviewLimit).
		Return([]models.Review{{UserID: peer.UserID, MovieID: movie.ID, Rating: 5}}, nil)

	strategy := NewCollaborativeStrategy(0.3, repo, testLogger())
	results, err := strategy.Recommend(context.Background(), target, []models.Movie{movie}, 10)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCollaborativeTwoNeighborsQualify(t *testing.T) {
	target := collaborativeFixtureProfile()
	movie := models.Movie{ID: uuid.New(), Title: "The Last Witness"}

	peer1 := twinProfile(target)
	peer2 := twinProfile(target)
	repo := &mockProfileRepository{}
	repo.On("ListPeerProfiles", mock.Anything, target.UserID, peerCandidateLimit).
		Return([]models.UserProfile{peer1, peer2}, nil)
	repo.On("PositiveReviews", mock.Anything, peer1.UserID, peerReviewLimit).
		Return([]models.Review{{UserID: peer1.UserID, MovieID: movie.ID, Rating: 3}}, nil)
	repo.On("PositiveReviews", mock.Anything, peer2.UserID, peerReviewLimit).
		Return([]models.Review{{UserID: peer2.UserID, MovieID: movie.ID, Rating: 3}}, nil)

	strategy := NewCollaborativeStrategy(0.3, repo, testLogger())
	results, err := strategy.Recommend(context.Background(), target, []models.Movie{movie}, 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	// Each twin contributes (3/5) * 1.0.
	assert.InDelta(t, 1.2, results[0].Score, 1e-9)
	assert.Equal(t, models.RecommendationTypeCollaborative, results[0].RecommendationType)
	assert.NotEmpty(t, results[0].Reasons)
}

func TestCollaborativeIgnoresDissimilarPeers(t *testing.T) {
	target := collaborativeFixtureProfile()
	movie := models.Movie{ID: uuid.New()}

	// Disjoint taste, opposite sentiment, distant average rating: the
	// blended similarity stays under the neighborhood threshold.
	stranger := models.UserProfile{
		UserID: uuid.New(),
		Preferences: models.Preferences{
			Genres:    models.PreferenceVector{"comedy": 5},
			Directors: models.PreferenceVector{"Sofia Aranda": 2},
		},
		SentimentHistory: models.SentimentHistory{Negative: 4},
	}

	repo := &mockProfileRepository{}
	repo.On("ListPeerProfiles", mock.Anything, target.UserID, peerCandidateLimit).
		Return([]models.UserProfile{stranger}, nil)

	strategy := NewCollaborativeStrategy(0.3, repo, testLogger())
	results, err := strategy.Recommend(context.Background(), target, []models.Movie{movie}, 10)

	require.NoError(t, err)
	assert.Empty(t, results)
	repo.AssertNotCalled(t, "PositiveReviews", mock.Anything, mock.Anything, mock.Anything)
}

func TestCollaborativeDegradesOnRepositoryError(t *testing.T) {
	target := collaborativeFixtureProfile()

	repo := &mockProfileRepository{}
	repo.On("ListPeerProfiles", mock.Anything, target.UserID, peerCandidateLimit).
		Return(nil, errors.New("connection refused"))

	strategy := NewCollaborativeStrategy(0.3, repo, testLogger())
	results, err := strategy.Recommend(context.Background(), target, []models.Movie{{ID: uuid.New()}}, 10)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBlendedSimilarityIdenticalProfiles(t *testing.T) {
	target := collaborativeFixtureProfile()
	twin := twinProfile(target)
	assert.InDelta(t, 1.0, blendedSimilarity(target, &twin), 1e-9)
}

func TestBlendedSimilarityMissingAverageRating(t *testing.T) {
	a := collaborativeFixtureProfile()
	b := twinProfile(a)
	b.AverageRating = nil

	// A missing average counts as 0, so the rating term drops to
	// max(0, 1 - 4/5) = 0.2 of its 0.1 weight.
	sim := blendedSimilarity(a, &b)
	assert.InDelta(t, 0.4+0.3+0.2+0.1*0.2, sim, 1e-9)
}
