package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/pkg/models"
)

type ReviewHandler struct {
	reviews  ReviewSubmitter
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewReviewHandler(reviews ReviewSubmitter, validate *validator.Validate, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews:  reviews,
		validate: validate,
		logger:   logger,
	}
}

// Create handles POST /api/v1/reviews. The review is persisted, analyzed
// and folded into the reviewer's preference profile.
func (h *ReviewHandler) Create(c *gin.Context) {
	var review models.Review
	if err := c.ShouldBindJSON(&review); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": err.Error(),
			},
		})
		return
	}

	if err := h.validate.Struct(&review); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.reviews.SubmitReview(c.Request.Context(), &review)
	if err != nil {
		h.logger.WithError(err).Error("Failed to submit review")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "REVIEW_SUBMISSION_FAILED",
				"message": "Failed to submit review",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"review_id": review.ID,
		"analysis":  result,
	})
}
