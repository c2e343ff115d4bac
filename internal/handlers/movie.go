package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/pkg/models"
)

type MovieHandler struct {
	catalog         MovieCatalogProvider
	recommendations RecommendationProvider
	logger          *logrus.Logger
}

func NewMovieHandler(
	catalog MovieCatalogProvider,
	recommendations RecommendationProvider,
	logger *logrus.Logger,
) *MovieHandler {
	return &MovieHandler{
		catalog:         catalog,
		recommendations: recommendations,
		logger:          logger,
	}
}

// Trending handles GET /api/v1/movies/trending.
func (h *MovieHandler) Trending(c *gin.Context) {
	limit := 10
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	results, err := h.recommendations.Trending(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load trending movies")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "TRENDING_FAILED",
				"message": "Failed to load trending movies",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": results, "count": len(results)})
}

// Search handles GET /api/v1/movies/search?q=.
func (h *MovieHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "MISSING_QUERY",
				"message": "Query parameter q is required",
			},
		})
		return
	}

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	movies, err := h.catalog.SearchMovies(c.Request.Context(), query, limit)
	if err != nil {
		h.logger.WithError(err).Error("Movie search failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "SEARCH_FAILED",
				"message": "Movie search failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.MovieSearchResponse{
		Query:  query,
		Movies: movies,
		Count:  len(movies),
	})
}

// Get handles GET /api/v1/movies/:movieId.
func (h *MovieHandler) Get(c *gin.Context) {
	movieID, err := uuid.Parse(c.Param("movieId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_MOVIE_ID",
				"message": "Invalid movie ID format",
			},
		})
		return
	}

	movie, err := h.catalog.GetMovie(c.Request.Context(), movieID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":    "MOVIE_NOT_FOUND",
				"message": "Movie not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, movie)
}

// Seed handles POST /api/v1/movies/seed.
func (h *MovieHandler) Seed(c *gin.Context) {
	inserted, err := h.catalog.SeedSampleMovies(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Catalog seeding failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "SEED_FAILED",
				"message": "Catalog seeding failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"inserted": inserted})
}
