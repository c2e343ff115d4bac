package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldran/cinerec/internal/services"
	"github.com/veldran/cinerec/pkg/models"
)

type stubRecommendationProvider struct {
	response   *models.RecommendationResponse
	err        error
	lastConfig models.RecommendationConfig
	feedback   *models.RecommendationFeedback
}

func (s *stubRecommendationProvider) GetRecommendations(
	_ context.Context, _ uuid.UUID, config models.RecommendationConfig,
) (*models.RecommendationResponse, error) {
	s.lastConfig = config
	return s.response, s.err
}

func (s *stubRecommendationProvider) SavedRecommendations(_ context.Context, _ uuid.UUID) (*models.RecommendationResponse, error) {
	return s.response, s.err
}

func (s *stubRecommendationProvider) SubmitFeedback(_ context.Context, feedback *models.RecommendationFeedback) error {
	s.feedback = feedback
	return s.err
}

func (s *stubRecommendationProvider) Trending(_ context.Context, _ int) ([]models.RecommendationResult, error) {
	return nil, s.err
}

func newTestRouter(provider RecommendationProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	handler := NewRecommendationHandler(provider, validator.New(), logger)

	router := gin.New()
	router.GET("/recommendations/:userId", handler.Get)
	router.GET("/recommendations/:userId/saved", handler.GetSaved)
	router.POST("/feedback", handler.SubmitFeedback)
	return router
}

func TestGetRecommendations(t *testing.T) {
	userID := uuid.New()
	provider := &stubRecommendationProvider{
		response: &models.RecommendationResponse{
			UserID: userID,
			Recommendations: []models.RecommendationResult{
				{MovieID: uuid.New(), Score: 0.9, RecommendationType: models.RecommendationTypeHybrid},
			},
		},
	}
	router := newTestRouter(provider)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/recommendations/"+userID.String(), nil)
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var response models.RecommendationResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, userID, response.UserID)
	assert.Len(t, response.Recommendations, 1)
}

func TestGetRecommendationsParsesQuery(t *testing.T) {
	provider := &stubRecommendationProvider{response: &models.RecommendationResponse{}}
	router := newTestRouter(provider)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet,
		"/recommendations/"+uuid.NewString()+"?count=5&content_weight=0.9&diversity=false&min_confidence=0.6&exclude_watched=false", nil)
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 5, provider.lastConfig.MaxRecommendations)
	assert.Equal(t, 0.9, provider.lastConfig.ContentWeight)
	assert.False(t, provider.lastConfig.DiversityBoost)
	assert.Equal(t, 0.6, provider.lastConfig.MinConfidence)
	assert.False(t, provider.lastConfig.ExcludeWatched)
}

func TestGetRecommendationsProfileNotFound(t *testing.T) {
	provider := &stubRecommendationProvider{err: services.ErrProfileNotFound}
	router := newTestRouter(provider)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/recommendations/"+uuid.NewString(), nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "PROFILE_NOT_FOUND")
}

func TestGetRecommendationsInvalidUserID(t *testing.T) {
	router := newTestRouter(&stubRecommendationProvider{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/recommendations/not-a-uuid", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INVALID_USER_ID")
}

func TestGetSavedRecommendationsMissing(t *testing.T) {
	router := newTestRouter(&stubRecommendationProvider{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/recommendations/"+uuid.NewString()+"/saved", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "NO_SAVED_RECOMMENDATIONS")
}

func TestSubmitFeedback(t *testing.T) {
	t.Run("valid feedback is accepted", func(t *testing.T) {
		provider := &stubRecommendationProvider{}
		router := newTestRouter(provider)

		body, _ := json.Marshal(models.RecommendationFeedback{
			UserID:   uuid.New(),
			MovieID:  uuid.New(),
			Feedback: models.FeedbackLike,
		})
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/feedback", bytes.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusAccepted, recorder.Code)
		require.NotNil(t, provider.feedback)
		assert.Equal(t, models.FeedbackLike, provider.feedback.Feedback)
	})

	t.Run("unknown feedback value is rejected", func(t *testing.T) {
		provider := &stubRecommendationProvider{}
		router := newTestRouter(provider)

		body, _ := json.Marshal(models.RecommendationFeedback{
			UserID:   uuid.New(),
			MovieID:  uuid.New(),
			Feedback: "meh",
		})
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/feedback", bytes.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "VALIDATION_FAILED")
		assert.Nil(t, provider.feedback)
	})
}
