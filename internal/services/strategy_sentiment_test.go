package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldran/cinerec/pkg/models"
)

func TestDeriveEmotionalProfile(t *testing.T) {
	t.Run("empty history defaults to balanced", func(t *testing.T) {
		profile := DeriveEmotionalProfile(models.SentimentHistory{})
		assert.Equal(t, EmotionBalanced, profile.DominantEmotion)
		assert.Equal(t, 0.5, profile.Intensity)
		assert.Equal(t, []string{"uplifting", "engaging"}, profile.PreferredTones)
		assert.Empty(t, profile.AvoidedTones)
	})

	t.Run("positive majority dominates", func(t *testing.T) {
		profile := DeriveEmotionalProfile(models.SentimentHistory{Positive: 6, Neutral: 2, Negative: 2})
		assert.Equal(t, EmotionPositive, profile.DominantEmotion)
		assert.InDelta(t, 0.6, profile.Intensity, 1e-12)
		assert.Contains(t, profile.PreferredTones, "uplifting")
		assert.Contains(t, profile.AvoidedTones, "depressing")
	})

	t.Run("high intensity widens preferred tones", func(t *testing.T) {
		profile := DeriveEmotionalProfile(models.SentimentHistory{Positive: 8, Neutral: 1, Negative: 1})
		assert.Contains(t, profile.PreferredTones, "exhilarating")
		assert.Contains(t, profile.PreferredTones, "joyful")
	})

	t.Run("negative needs only a 0.4 share", func(t *testing.T) {
		profile := DeriveEmotionalProfile(models.SentimentHistory{Positive: 2, Neutral: 3, Negative: 5})
		assert.Equal(t, EmotionNegative, profile.DominantEmotion)
		assert.Contains(t, profile.PreferredTones, "dramatic")
		assert.Contains(t, profile.AvoidedTones, "overly-cheerful")
	})

	t.Run("no majority stays balanced", func(t *testing.T) {
		profile := DeriveEmotionalProfile(models.SentimentHistory{Positive: 4, Neutral: 4, Negative: 2})
		assert.Equal(t, EmotionBalanced, profile.DominantEmotion)
		assert.InDelta(t, 0.4, profile.Intensity, 1e-12)
		assert.Equal(t, []string{"engaging", "well-rounded", "nuanced"}, profile.PreferredTones)
	})
}

func TestDescriptorMatchScore(t *testing.T) {
	profile := EmotionalProfile{
		DominantEmotion: EmotionPositive,
		Intensity:       0.8,
		PreferredTones:  []string{"uplifting", "inspiring"},
		AvoidedTones:    []string{"bleak"},
	}

	t.Run("preferred overlap, intensity and emotion add up", func(t *testing.T) {
		descriptor := models.ToneDescriptor{
			DominantEmotion: EmotionPositive,
			Intensity:       0.8,
			Tones:           []string{"uplifting"},
		}
		// 0.5*0.6 + 1.0*0.3 + 0.2
		assert.InDelta(t, 0.8, descriptorMatchScore(&profile, &descriptor), 1e-9)
	})

	t.Run("avoided tones penalize", func(t *testing.T) {
		descriptor := models.ToneDescriptor{
			DominantEmotion: EmotionNegative,
			Intensity:       0.8,
			Tones:           []string{"bleak"},
		}
		// -0.4 + 0.3, clamped at zero
		assert.Equal(t, 0.0, descriptorMatchScore(&profile, &descriptor))
	})

	t.Run("result stays within unit range", func(t *testing.T) {
		descriptor := models.ToneDescriptor{
			DominantEmotion: EmotionPositive,
			Intensity:       0.8,
			Tones:           []string{"uplifting", "inspiring"},
		}
		score := descriptorMatchScore(&profile, &descriptor)
		assert.LessOrEqual(t, score, 1.0)
		assert.GreaterOrEqual(t, score, 0.0)
	})
}

func TestFallbackToneDescriptor(t *testing.T) {
	t.Run("light genres read positive", func(t *testing.T) {
		movie := models.Movie{Genres: []string{"Animation", "fantasy"}}
		descriptor := FallbackToneDescriptor(&movie)
		assert.Equal(t, EmotionPositive, descriptor.DominantEmotion)
		assert.Equal(t, 0.7, descriptor.Intensity)
	})

	t.Run("heavy genres read negative", func(t *testing.T) {
		movie := models.Movie{Genres: []string{"Thriller"}}
		descriptor := FallbackToneDescriptor(&movie)
		assert.Equal(t, EmotionNegative, descriptor.DominantEmotion)
		assert.Equal(t, []string{"dramatic", "intense"}, descriptor.Tones)
	})

	t.Run("positive wins a mixed bill", func(t *testing.T) {
		movie := models.Movie{Genres: []string{"drama", "romance"}}
		descriptor := FallbackToneDescriptor(&movie)
		assert.Equal(t, EmotionPositive, descriptor.DominantEmotion)
	})

	t.Run("unknown genres read balanced", func(t *testing.T) {
		movie := models.Movie{Genres: []string{"documentary"}}
		descriptor := FallbackToneDescriptor(&movie)
		assert.Equal(t, EmotionBalanced, descriptor.DominantEmotion)
		assert.Equal(t, 0.5, descriptor.Intensity)
	})
}

func TestSentimentBasedRecommend(t *testing.T) {
	strategy := NewSentimentBasedStrategy(0.2, &StaticToneAnalyzer{}, testLogger())
	profile := &models.UserProfile{
		UserID:           uuid.New(),
		SentimentHistory: models.SentimentHistory{Positive: 4},
	}

	animation := models.Movie{ID: uuid.New(), Title: "Spirited Skies", Genres: []string{"animation", "family"}}
	horror := models.Movie{ID: uuid.New(), Title: "Static", Genres: []string{"horror"}}

	results, err := strategy.Recommend(context.Background(), profile, []models.Movie{horror, animation}, 10)
	require.NoError(t, err)

	// The horror tone scores 0.24 against a fully positive history and
	// falls under the floor.
	require.Len(t, results, 1)
	assert.Equal(t, animation.ID, results[0].MovieID)
	assert.Equal(t, models.RecommendationTypeContentBased, results[0].RecommendationType)
	assert.Contains(t, results[0].Reasons, "suits your upbeat viewing mood")
	assert.Contains(t, results[0].Reasons, "emotionally impactful viewing")
}
