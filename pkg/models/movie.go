package models

import (
	"github.com/google/uuid"
)

type Movie struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Title    string    `json:"title" db:"title" validate:"required,min=1,max=255"`
	Genres   []string  `json:"genres" db:"genres"`
	Director string    `json:"director" db:"director"`
	Actors   []string  `json:"actors" db:"actors"`
	Year     int       `json:"year" db:"year"`
	Rating   float64   `json:"rating" db:"rating" validate:"min=0,max=10"`
	Plot     string    `json:"plot" db:"plot"`
	Keywords []string  `json:"keywords" db:"keywords"`
}

// ToneDescriptor summarizes a movie's emotional character. Normally produced
// by the language-generation service; falls back to genre rules when that
// output is unavailable or unparsable.
type ToneDescriptor struct {
	DominantEmotion string   `json:"dominant_emotion"`
	Intensity       float64  `json:"intensity"`
	Tones           []string `json:"tones"`
}

type MovieSearchResponse struct {
	Query  string  `json:"query"`
	Movies []Movie `json:"movies"`
	Count  int     `json:"count"`
}
