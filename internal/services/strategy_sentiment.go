package services

import (
	"context"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/pkg/models"
)

const (
	EmotionPositive = "positive"
	EmotionNegative = "negative"
	EmotionBalanced = "balanced"

	sentimentMinScore = 0.3
)

// Descriptor-match weights: preferred-tone overlap is the strongest signal,
// avoided tones penalize, intensity proximity and exact emotion match add.
const (
	tonePreferredWeight = 0.6
	toneAvoidedWeight   = 0.4
	toneIntensityWeight = 0.3
	toneEmotionWeight   = 0.2
)

// EmotionalProfile is derived fresh from the user's sentiment history on
// every call; it has no identity beyond the call.
type EmotionalProfile struct {
	DominantEmotion string
	Intensity       float64
	PreferredTones  []string
	AvoidedTones    []string
}

// SentimentBasedStrategy matches movies against the user's emotional
// profile. Its output is labeled content_based: the sentiment signal acts
// as a refinement layer rather than a first-class visible type.
type SentimentBasedStrategy struct {
	baseStrategy
	tones ToneAnalyzer
}

func NewSentimentBasedStrategy(weight float64, tones ToneAnalyzer, logger *logrus.Logger) *SentimentBasedStrategy {
	return &SentimentBasedStrategy{
		baseStrategy: baseStrategy{
			name:   "sentiment_based",
			weight: weight,
			logger: logger,
		},
		tones: tones,
	}
}

func (s *SentimentBasedStrategy) Recommend(
	ctx context.Context, profile *models.UserProfile,
	candidates []models.Movie, maxResults int,
) ([]models.RecommendationResult, error) {
	emotional := DeriveEmotionalProfile(profile.SentimentHistory)

	results := make([]models.RecommendationResult, 0, len(candidates))
	for i := range candidates {
		movie := &candidates[i]
		descriptor := s.tones.DescribeTone(ctx, movie)
		score := descriptorMatchScore(&emotional, &descriptor)
		if score <= sentimentMinScore {
			continue
		}

		reasons := sentimentReasons(&emotional)
		results = append(results, models.RecommendationResult{
			MovieID:            movie.ID,
			Movie:              movie,
			Score:              score,
			Reasons:            reasons,
			RecommendationType: models.RecommendationTypeContentBased,
			Confidence:         DeriveConfidence(score, len(reasons)),
		})
	}

	sortByScore(results)
	return truncateResults(results, maxResults), nil
}

// DeriveEmotionalProfile reduces sentiment counts to a dominant emotion, an
// intensity and fixed tone preference lists.
func DeriveEmotionalProfile(history models.SentimentHistory) EmotionalProfile {
	total := history.Total()
	if total == 0 {
		return EmotionalProfile{
			DominantEmotion: EmotionBalanced,
			Intensity:       0.5,
			PreferredTones:  []string{"uplifting", "engaging"},
			AvoidedTones:    []string{},
		}
	}

	positive := float64(history.Positive) / float64(total)
	neutral := float64(history.Neutral) / float64(total)
	negative := float64(history.Negative) / float64(total)

	dominant := EmotionBalanced
	if positive > 0.5 {
		dominant = EmotionPositive
	} else if negative > 0.4 {
		dominant = EmotionNegative
	}

	intensity := math.Max(positive, math.Max(neutral, negative))

	return EmotionalProfile{
		DominantEmotion: dominant,
		Intensity:       intensity,
		PreferredTones:  preferredTones(dominant, intensity),
		AvoidedTones:    avoidedTones(dominant),
	}
}

func preferredTones(emotion string, intensity float64) []string {
	switch emotion {
	case EmotionPositive:
		tones := []string{"uplifting", "inspiring", "heartwarming"}
		if intensity > 0.7 {
			tones = append(tones, "exhilarating", "joyful")
		}
		return tones
	case EmotionNegative:
		tones := []string{"dramatic", "intense", "thought-provoking"}
		if intensity > 0.6 {
			tones = append(tones, "dark", "melancholic")
		}
		return tones
	default:
		return []string{"engaging", "well-rounded", "nuanced"}
	}
}

func avoidedTones(emotion string) []string {
	switch emotion {
	case EmotionPositive:
		return []string{"depressing", "bleak", "nihilistic"}
	case EmotionNegative:
		return []string{"overly-cheerful", "simplistic"}
	default:
		return []string{"extreme"}
	}
}

// descriptorMatchScore compares the user's emotional profile against a
// movie's tone descriptor, clamped to [0, 1].
func descriptorMatchScore(profile *EmotionalProfile, descriptor *models.ToneDescriptor) float64 {
	var score float64

	preferredMatches := countOverlap(profile.PreferredTones, descriptor.Tones)
	if len(profile.PreferredTones) > 0 {
		score += float64(preferredMatches) / float64(len(profile.PreferredTones)) * tonePreferredWeight
	}

	avoidedMatches := countOverlap(profile.AvoidedTones, descriptor.Tones)
	avoidedLen := len(profile.AvoidedTones)
	if avoidedLen < 1 {
		avoidedLen = 1
	}
	score -= float64(avoidedMatches) / float64(avoidedLen) * toneAvoidedWeight

	intensityDiff := math.Abs(profile.Intensity - descriptor.Intensity)
	score += (1 - intensityDiff) * toneIntensityWeight

	if profile.DominantEmotion == descriptor.DominantEmotion {
		score += toneEmotionWeight
	}

	return clamp01(score)
}

func countOverlap(wanted, present []string) int {
	count := 0
	for _, tone := range wanted {
		if containsLabel(present, tone) {
			count++
		}
	}
	return count
}

func sentimentReasons(profile *EmotionalProfile) []string {
	var reasons []string

	switch profile.DominantEmotion {
	case EmotionPositive:
		reasons = append(reasons, "suits your upbeat viewing mood")
	case EmotionNegative:
		reasons = append(reasons, "for viewers drawn to weightier themes")
	default:
		reasons = append(reasons, "offers a balanced emotional experience")
	}

	if profile.Intensity > 0.7 {
		reasons = append(reasons, "emotionally impactful viewing")
	} else if profile.Intensity < 0.3 {
		reasons = append(reasons, "gentle, easygoing viewing")
	}

	return reasons
}

var (
	fallbackPositiveGenres = []string{"comedy", "romance", "family", "animation"}
	fallbackNegativeGenres = []string{"horror", "thriller", "drama"}
)

// FallbackToneDescriptor assigns a tone by genre rules when the generation
// backend cannot supply one. Positive genres win when both sets match.
func FallbackToneDescriptor(movie *models.Movie) models.ToneDescriptor {
	var hasPositive, hasNegative bool
	for _, genre := range movie.Genres {
		g := strings.ToLower(genre)
		if containsLabel(fallbackPositiveGenres, g) {
			hasPositive = true
		}
		if containsLabel(fallbackNegativeGenres, g) {
			hasNegative = true
		}
	}

	switch {
	case hasPositive:
		return models.ToneDescriptor{
			DominantEmotion: EmotionPositive,
			Intensity:       0.7,
			Tones:           []string{"uplifting", "entertaining"},
		}
	case hasNegative:
		return models.ToneDescriptor{
			DominantEmotion: EmotionNegative,
			Intensity:       0.8,
			Tones:           []string{"dramatic", "intense"},
		}
	default:
		return models.ToneDescriptor{
			DominantEmotion: EmotionBalanced,
			Intensity:       0.5,
			Tones:           []string{"engaging"},
		}
	}
}
