package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/veldran/cinerec/internal/config"
	"github.com/veldran/cinerec/internal/generation"
	"github.com/veldran/cinerec/pkg/models"
)

func TestGenerationToneAnalyzerFallsBack(t *testing.T) {
	// No generation URL configured and no cache: every call lands on the
	// genre fallback without error.
	client, err := generation.NewClient(config.GenerationConfig{}, testLogger())
	if err != nil {
		t.Fatalf("generation.NewClient: %v", err)
	}
	analyzer := NewGenerationToneAnalyzer(client, nil, 0, testLogger())

	movie := models.Movie{ID: uuid.New(), Title: "Chalk Circus", Genres: []string{"animation", "comedy"}}
	descriptor := analyzer.DescribeTone(context.Background(), &movie)

	assert.Equal(t, EmotionPositive, descriptor.DominantEmotion)
	assert.Equal(t, 0.7, descriptor.Intensity)
	assert.Equal(t, []string{"uplifting", "entertaining"}, descriptor.Tones)
}

func TestStaticToneAnalyzer(t *testing.T) {
	analyzer := StaticToneAnalyzer{}
	movie := models.Movie{ID: uuid.New(), Genres: []string{"horror"}}

	descriptor := analyzer.DescribeTone(context.Background(), &movie)
	assert.Equal(t, EmotionNegative, descriptor.DominantEmotion)
}
