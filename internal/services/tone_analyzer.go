package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/internal/generation"
	"github.com/veldran/cinerec/pkg/models"
)

// GenerationToneAnalyzer asks the generation service for a movie's tone
// descriptor and caches the answer in warm Redis. Descriptors are stable
// per movie so a long TTL is fine. Never fails: the genre fallback covers
// every error path.
type GenerationToneAnalyzer struct {
	client *generation.Client
	cache  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewGenerationToneAnalyzer(client *generation.Client, cache *redis.Client, ttl time.Duration, logger *logrus.Logger) *GenerationToneAnalyzer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &GenerationToneAnalyzer{
		client: client,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func (a *GenerationToneAnalyzer) DescribeTone(ctx context.Context, movie *models.Movie) models.ToneDescriptor {
	cacheKey := fmt.Sprintf("tone:%s", movie.ID)

	if a.cache != nil {
		if cached, err := a.cache.Get(ctx, cacheKey).Result(); err == nil {
			var descriptor models.ToneDescriptor
			if err := json.Unmarshal([]byte(cached), &descriptor); err == nil {
				return descriptor
			}
		}
	}

	descriptor, err := a.generate(ctx, movie)
	if err != nil {
		a.logger.WithFields(logrus.Fields{
			"movie_id": movie.ID,
			"error":    err,
		}).Debug("Tone generation unavailable, using genre fallback")
		return FallbackToneDescriptor(movie)
	}

	if a.cache != nil {
		if data, err := json.Marshal(descriptor); err == nil {
			if err := a.cache.Set(ctx, cacheKey, data, a.ttl).Err(); err != nil {
				a.logger.WithError(err).Warn("Failed to cache tone descriptor")
			}
		}
	}

	return descriptor
}

func (a *GenerationToneAnalyzer) generate(ctx context.Context, movie *models.Movie) (models.ToneDescriptor, error) {
	prompt := fmt.Sprintf(
		"Describe the emotional tone of this movie as JSON with dominant_emotion "+
			"(positive, negative or balanced), intensity (0 to 1) and tones (short labels).\n"+
			"Title: %s\nGenres: %s\nDirector: %s\nPlot: %s",
		movie.Title, strings.Join(movie.Genres, ", "), movie.Director, movie.Plot,
	)

	var descriptor models.ToneDescriptor
	if err := a.client.GenerateJSON(ctx, prompt, generation.SchemaToneDescriptor, &descriptor); err != nil {
		return models.ToneDescriptor{}, err
	}

	descriptor.Intensity = clamp01(descriptor.Intensity)
	if descriptor.DominantEmotion == "" {
		descriptor.DominantEmotion = EmotionBalanced
	}
	return descriptor, nil
}

// StaticToneAnalyzer serves the deterministic genre fallback only. Used
// when no generation backend is configured and in tests.
type StaticToneAnalyzer struct{}

func (StaticToneAnalyzer) DescribeTone(_ context.Context, movie *models.Movie) models.ToneDescriptor {
	return FallbackToneDescriptor(movie)
}
