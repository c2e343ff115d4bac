package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldran/cinerec/pkg/models"
)

func profileRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"user_id", "genres", "themes", "actors", "directors", "keywords",
		"positive_count", "neutral_count", "negative_count", "review_count",
		"average_rating", "updated_at",
	})
}

func TestGetUserProfileNotFound(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	userID := uuid.New()
	mockDB.ExpectQuery("SELECT").
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	profiles := NewUserProfileService(mockDB, nil, testLogger())
	profile, err := profiles.GetUserProfile(context.Background(), userID)

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestGetUserProfileDecodesPreferences(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	userID := uuid.New()
	avg := 4.2
	mockDB.ExpectQuery("SELECT").
		WithArgs(userID).
		WillReturnRows(profileRows().AddRow(
			userID, []byte(`{"animation":2,"drama":1}`), []byte(`{}`),
			[]byte(`{"aya tanaka":1}`), []byte(`{}`), []byte(`{}`),
			3, 1, 0, 4, &avg, time.Now(),
		))

	profiles := NewUserProfileService(mockDB, nil, testLogger())
	profile, err := profiles.GetUserProfile(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, models.PreferenceVector{"animation": 2, "drama": 1}, profile.Preferences.Genres)
	assert.Equal(t, models.PreferenceVector{"aya tanaka": 1}, profile.Preferences.Actors)
	assert.Equal(t, 4, profile.ReviewCount)
	require.NotNil(t, profile.AverageRating)
	assert.Equal(t, 4.2, *profile.AverageRating)
}

func TestGetUserProfileBackfillsAverageRating(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	userID := uuid.New()
	mockDB.ExpectQuery("FROM user_profiles").
		WithArgs(userID).
		WillReturnRows(profileRows().AddRow(
			userID, []byte(`{}`), []byte(`{}`), []byte(`{}`), []byte(`{}`), []byte(`{}`),
			2, 0, 0, 2, nil, time.Now(),
		))
	avg := 4.5
	mockDB.ExpectQuery("AVG").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow(&avg))
	mockDB.ExpectExec("UPDATE user_profiles").
		WithArgs(userID, avg).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	profiles := NewUserProfileService(mockDB, nil, testLogger())
	profile, err := profiles.GetUserProfile(context.Background(), userID)

	require.NoError(t, err)
	require.NotNil(t, profile.AverageRating)
	assert.Equal(t, 4.5, *profile.AverageRating)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestMergeMentions(t *testing.T) {
	t.Run("each mention adds one", func(t *testing.T) {
		prefs := models.PreferenceVector{"animation": 2}
		merged := mergeMentions(prefs, []string{"Animation", "drama"})
		assert.Equal(t, models.PreferenceVector{"animation": 3, "drama": 1}, merged)
	})

	t.Run("nil vector is created on demand", func(t *testing.T) {
		merged := mergeMentions(nil, []string{"thriller"})
		assert.Equal(t, models.PreferenceVector{"thriller": 1}, merged)
	})

	t.Run("no mentions leaves vector untouched", func(t *testing.T) {
		assert.Nil(t, mergeMentions(nil, nil))
	})
}

func TestMergeReviewAnalysisCreatesProfile(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	userID := uuid.New()
	mockDB.ExpectQuery("SELECT").
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)
	mockDB.ExpectExec("INSERT INTO user_profiles").
		WithArgs(userID, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), 1, 0, 0, 1, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	profiles := NewUserProfileService(mockDB, nil, testLogger())
	err = profiles.MergeReviewAnalysis(context.Background(), &models.ReviewAnalysisResult{
		UserID: userID,
		Sentiment: models.SentimentAnalysis{
			Sentiment: models.SentimentPositive,
			Score:     0.7,
		},
		Preferences: models.PreferenceAnalysis{
			Genres: []string{"animation"},
		},
	})

	require.NoError(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestGetSavedRecommendationsMissing(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	userID := uuid.New()
	mockDB.ExpectQuery("saved_recommendations").
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	profiles := NewUserProfileService(mockDB, nil, testLogger())
	response, err := profiles.GetSavedRecommendations(context.Background(), userID)

	require.NoError(t, err)
	assert.Nil(t, response)
}
