package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/internal/generation"
	"github.com/veldran/cinerec/pkg/models"
)

// GenerationRationaleGenerator turns a recommendation's templated reasons
// into one short natural-language rationale. Errors leave the templated
// reasons in place.
type GenerationRationaleGenerator struct {
	client *generation.Client
	logger *logrus.Logger
}

func NewGenerationRationaleGenerator(client *generation.Client, logger *logrus.Logger) *GenerationRationaleGenerator {
	return &GenerationRationaleGenerator{client: client, logger: logger}
}

type rationalePayload struct {
	Rationale string `json:"rationale"`
}

func (g *GenerationRationaleGenerator) Rationale(
	ctx context.Context, profile *models.UserProfile, result *models.RecommendationResult,
) (string, error) {
	topGenres := topPreferences(profile.Preferences.Genres, 3)

	prompt := fmt.Sprintf(
		"Write one short, friendly sentence explaining why this movie suits this "+
			"viewer. Return JSON with a rationale field.\n"+
			"Movie: %s (%s)\nViewer's favorite genres: %s\nSignals: %s",
		result.Movie.Title, strings.Join(result.Movie.Genres, ", "),
		strings.Join(topGenres, ", "), strings.Join(result.Reasons, "; "),
	)

	var payload rationalePayload
	if err := g.client.GenerateJSON(ctx, prompt, generation.SchemaRationale, &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.Rationale) == "" {
		return "", generation.ErrUnavailable
	}
	return payload.Rationale, nil
}
