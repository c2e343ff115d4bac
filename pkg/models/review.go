package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id" validate:"required"`
	MovieID    uuid.UUID `json:"movie_id" db:"movie_id" validate:"required"`
	Rating     int       `json:"rating" db:"rating" validate:"required,min=1,max=5"`
	ReviewText string    `json:"review_text" db:"review_text"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

type SentimentAnalysis struct {
	Sentiment string   `json:"sentiment"`
	Score     float64  `json:"score"` // -1 to 1
	Emotions  []string `json:"emotions"`
}

// PreferenceAnalysis lists the labels a review mentioned favorably; each
// mention increments the matching preference-vector entry by one.
type PreferenceAnalysis struct {
	Genres    []string `json:"genres"`
	Themes    []string `json:"themes"`
	Actors    []string `json:"actors"`
	Directors []string `json:"directors"`
	Keywords  []string `json:"keywords"`
}

type ReviewAnalysisResult struct {
	ReviewID    uuid.UUID          `json:"review_id"`
	UserID      uuid.UUID          `json:"user_id"`
	MovieID     uuid.UUID          `json:"movie_id"`
	Sentiment   SentimentAnalysis  `json:"sentiment"`
	Preferences PreferenceAnalysis `json:"preferences"`
	Confidence  float64            `json:"confidence"`
	AnalyzedAt  time.Time          `json:"analyzed_at"`
}
