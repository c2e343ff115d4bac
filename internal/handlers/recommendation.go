package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/internal/services"
	"github.com/veldran/cinerec/pkg/models"
)

type RecommendationHandler struct {
	recommendations RecommendationProvider
	validate        *validator.Validate
	logger          *logrus.Logger
}

func NewRecommendationHandler(
	recommendations RecommendationProvider,
	validate *validator.Validate,
	logger *logrus.Logger,
) *RecommendationHandler {
	return &RecommendationHandler{
		recommendations: recommendations,
		validate:        validate,
		logger:          logger,
	}
}

// Get handles GET /api/v1/recommendations/:userId.
func (h *RecommendationHandler) Get(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	config := parseConfig(c)

	response, err := h.recommendations.GetRecommendations(c.Request.Context(), userID, config)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "PROFILE_NOT_FOUND",
					"message": "No profile exists for this user; submit a review first",
				},
			})
			return
		}

		h.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err,
		}).Error("Failed to generate recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "RECOMMENDATION_GENERATION_FAILED",
				"message": "Failed to generate recommendations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetSaved handles GET /api/v1/recommendations/:userId/saved.
func (h *RecommendationHandler) GetSaved(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	response, err := h.recommendations.SavedRecommendations(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load saved recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "SAVED_RECOMMENDATIONS_FAILED",
				"message": "Failed to load saved recommendations",
			},
		})
		return
	}
	if response == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":    "NO_SAVED_RECOMMENDATIONS",
				"message": "No saved recommendations for this user",
			},
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// SubmitFeedback handles POST /api/v1/feedback.
func (h *RecommendationHandler) SubmitFeedback(c *gin.Context) {
	var feedback models.RecommendationFeedback
	if err := c.ShouldBindJSON(&feedback); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": err.Error(),
			},
		})
		return
	}

	if err := h.validate.Struct(&feedback); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	if err := h.recommendations.SubmitFeedback(c.Request.Context(), &feedback); err != nil {
		h.logger.WithError(err).Error("Failed to record feedback")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "FEEDBACK_FAILED",
				"message": "Failed to record feedback",
			},
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user ID format",
			},
		})
		return uuid.Nil, false
	}
	return userID, true
}

// parseConfig reads the per-request engine configuration from query
// parameters, leaving zero values for Normalize to fill with defaults.
func parseConfig(c *gin.Context) models.RecommendationConfig {
	config := models.DefaultRecommendationConfig()

	if countStr := c.Query("count"); countStr != "" {
		if count, err := strconv.Atoi(countStr); err == nil && count > 0 && count <= 100 {
			config.MaxRecommendations = count
		}
	}
	if weightStr := c.Query("content_weight"); weightStr != "" {
		if weight, err := strconv.ParseFloat(weightStr, 64); err == nil && weight > 0 && weight <= 1 {
			config.ContentWeight = weight
		}
	}
	if weightStr := c.Query("collaborative_weight"); weightStr != "" {
		if weight, err := strconv.ParseFloat(weightStr, 64); err == nil && weight > 0 && weight <= 1 {
			config.CollaborativeWeight = weight
		}
	}
	if diversityStr := c.Query("diversity"); diversityStr != "" {
		config.DiversityBoost = diversityStr == "true"
	}
	if confStr := c.Query("min_confidence"); confStr != "" {
		if conf, err := strconv.ParseFloat(confStr, 64); err == nil && conf >= 0 && conf <= 1 {
			config.MinConfidence = conf
		}
	}
	if excludeStr := c.Query("exclude_watched"); excludeStr != "" {
		config.ExcludeWatched = excludeStr != "false"
	}

	return config
}
