package models

import (
	"time"

	"github.com/google/uuid"
)

// PreferenceVector maps a label (genre, actor, ...) to a non-negative
// affinity weight accumulated from analyzed reviews.
type PreferenceVector map[string]float64

type Preferences struct {
	Genres    PreferenceVector `json:"genres"`
	Themes    PreferenceVector `json:"themes"`
	Actors    PreferenceVector `json:"actors"`
	Directors PreferenceVector `json:"directors"`
	Keywords  PreferenceVector `json:"keywords"`
}

type SentimentHistory struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

func (s SentimentHistory) Total() int {
	return s.Positive + s.Neutral + s.Negative
}

// Vector projects the counts onto a fixed 3-dimensional vector so two
// histories can be compared by cosine similarity.
func (s SentimentHistory) Vector() map[string]float64 {
	return map[string]float64{
		"positive": float64(s.Positive),
		"neutral":  float64(s.Neutral),
		"negative": float64(s.Negative),
	}
}

// UserProfile is owned by the preference persistence layer. The engine only
// reads it; a profile is immutable within one recommendation call.
type UserProfile struct {
	UserID           uuid.UUID        `json:"user_id" db:"user_id"`
	Preferences      Preferences      `json:"preferences"`
	SentimentHistory SentimentHistory `json:"sentiment_history"`
	ReviewCount      int              `json:"review_count" db:"review_count"`
	AverageRating    *float64         `json:"average_rating,omitempty" db:"average_rating"`
	LastUpdated      time.Time        `json:"last_updated" db:"updated_at"`
}
