package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/pkg/models"
)

// DatabaseQuerier abstracts the pgx pool so stores can be tested with
// pgxmock.
type DatabaseQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

const movieColumns = "id, title, genres, director, actors, year, rating, plot, keywords"

// MovieCatalogService reads the movie catalog from Postgres.
type MovieCatalogService struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewMovieCatalogService(db DatabaseQuerier, logger *logrus.Logger) *MovieCatalogService {
	return &MovieCatalogService{db: db, logger: logger}
}

// CandidateMovies returns the scoring pool: movies in the user's preferred
// genres rated at least 6.0, plus a generally well-rated (>= 7.0) pool,
// excluding movies the user already reviewed when excludeWatched is set.
func (s *MovieCatalogService) CandidateMovies(
	ctx context.Context, userID uuid.UUID,
	preferredGenres []string, excludeWatched bool, limit int,
) ([]models.Movie, error) {
	if limit <= 0 {
		limit = 50
	}
	if preferredGenres == nil {
		preferredGenres = []string{}
	}

	query := `
		SELECT ` + movieColumns + `
		FROM movies
		WHERE ((genres && $2 AND rating >= 6.0) OR rating >= 7.0)`
	if excludeWatched {
		query += `
		AND id NOT IN (SELECT movie_id FROM reviews WHERE user_id = $1)`
	} else {
		query += `
		AND $1::uuid IS NOT NULL`
	}
	query += `
		ORDER BY rating DESC, title ASC
		LIMIT $3`

	rows, err := s.db.Query(ctx, query, userID, preferredGenres, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate movies: %w", err)
	}
	defer rows.Close()

	movies, err := scanMovies(rows)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"genres":     preferredGenres,
		"candidates": len(movies),
	}).Debug("Loaded candidate movies")
	return movies, nil
}

func (s *MovieCatalogService) GetMovie(ctx context.Context, movieID uuid.UUID) (*models.Movie, error) {
	row := s.db.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, movieID)

	movie, err := scanMovie(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("movie %s not found", movieID)
		}
		return nil, fmt.Errorf("failed to load movie: %w", err)
	}
	return movie, nil
}

// SearchMovies matches titles by case-insensitive prefix.
func (s *MovieCatalogService) SearchMovies(ctx context.Context, query string, limit int) ([]models.Movie, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+movieColumns+`
		FROM movies
		WHERE title ILIKE $1 || '%'
		ORDER BY rating DESC, title ASC
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search movies: %w", err)
	}
	defer rows.Close()

	return scanMovies(rows)
}

func (s *MovieCatalogService) TrendingMovies(ctx context.Context, limit int) ([]models.Movie, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+movieColumns+`
		FROM movies
		ORDER BY rating DESC, year DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trending movies: %w", err)
	}
	defer rows.Close()

	return scanMovies(rows)
}

// SeedSampleMovies inserts a small starter catalog. Reseeding is a no-op
// for titles that already exist.
func (s *MovieCatalogService) SeedSampleMovies(ctx context.Context) (int, error) {
	inserted := 0
	for _, movie := range sampleMovies {
		tag, err := s.db.Exec(ctx, `
			INSERT INTO movies (id, title, genres, director, actors, year, rating, plot, keywords)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (title) DO NOTHING`,
			movie.ID, movie.Title, movie.Genres, movie.Director, movie.Actors,
			movie.Year, movie.Rating, movie.Plot, movie.Keywords)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed movie %q: %w", movie.Title, err)
		}
		inserted += int(tag.RowsAffected())
	}

	s.logger.WithField("inserted", inserted).Info("Sample movie catalog seeded")
	return inserted, nil
}

func scanMovies(rows pgx.Rows) ([]models.Movie, error) {
	var movies []models.Movie
	for rows.Next() {
		var movie models.Movie
		if err := rows.Scan(
			&movie.ID, &movie.Title, &movie.Genres, &movie.Director,
			&movie.Actors, &movie.Year, &movie.Rating, &movie.Plot, &movie.Keywords,
		); err != nil {
			return nil, fmt.Errorf("failed to scan movie row: %w", err)
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("movie row iteration failed: %w", err)
	}
	return movies, nil
}

func scanMovie(row pgx.Row) (*models.Movie, error) {
	var movie models.Movie
	if err := row.Scan(
		&movie.ID, &movie.Title, &movie.Genres, &movie.Director,
		&movie.Actors, &movie.Year, &movie.Rating, &movie.Plot, &movie.Keywords,
	); err != nil {
		return nil, err
	}
	return &movie, nil
}

var sampleMovies = []models.Movie{
	{
		ID: uuid.MustParse("0b6fefa0-1a01-4f3e-9f5a-9b1d7a1c1001"), Title: "Spirited Skies",
		Genres: []string{"animation", "family", "fantasy"}, Director: "Mina Okabe",
		Actors: []string{"Aya Tanaka", "Kenji Mori"}, Year: 2019, Rating: 8.6,
		Plot:     "A young courier discovers a hidden city above the clouds.",
		Keywords: []string{"adventure", "coming-of-age", "flight"},
	},
	{
		ID: uuid.MustParse("0b6fefa0-1a01-4f3e-9f5a-9b1d7a1c1002"), Title: "The Last Witness",
		Genres: []string{"thriller", "drama"}, Director: "Paul Renner",
		Actors: []string{"Clara Voss", "Daniel Okafor"}, Year: 2021, Rating: 7.9,
		Plot:     "A court stenographer realizes she transcribed a confession nobody else heard.",
		Keywords: []string{"courtroom", "conspiracy", "memory"},
	},
	{
		ID: uuid.MustParse("0b6fefa0-1a01-4f3e-9f5a-9b1d7a1c1003"), Title: "Midnight Diner Run",
		Genres: []string{"comedy", "romance"}, Director: "Sofia Aranda",
		Actors: []string{"Leo Park", "Emma Castillo"}, Year: 2020, Rating: 7.2,
		Plot:     "Two night-shift cooks compete for the same food-cart license and fall for each other.",
		Keywords: []string{"food", "rivalry", "late-night"},
	},
	{
		ID: uuid.MustParse("0b6fefa0-1a01-4f3e-9f5a-9b1d7a1c1004"), Title: "Glacier Line",
		Genres: []string{"drama", "adventure"}, Director: "Henrik Dahl",
		Actors: []string{"Ingrid Solheim", "Tomas Berg"}, Year: 2018, Rating: 8.1,
		Plot:     "A railway engineer races to evacuate a mountain town before the ice shelf collapses.",
		Keywords: []string{"survival", "mountains", "engineering"},
	},
	{
		ID: uuid.MustParse("0b6fefa0-1a01-4f3e-9f5a-9b1d7a1c1005"), Title: "Paper Lanterns",
		Genres: []string{"romance", "drama"}, Director: "Mina Okabe",
		Actors: []string{"Aya Tanaka", "Ryo Hasegawa"}, Year: 2016, Rating: 7.8,
		Plot:     "An estranged couple reunites every year to release a lantern for their lost son.",
		Keywords: []string{"grief", "tradition", "reconciliation"},
	},
	{
		ID: uuid.MustParse("0b6fefa0-1a01-4f3e-9f5a-9b1d7a1c1006"), Title: "Static",
		Genres: []string{"horror", "mystery"}, Director: "Gwen Ashby",
		Actors: []string{"Marcus Bell", "Nadia Osei"}, Year: 2022, Rating: 6.8,
		Plot:     "A late-night radio host's call-in listeners all describe the same dream.",
		Keywords: []string{"radio", "nightmare", "small-town"},
	},
	{
		ID: uuid.MustParse("0b6fefa0-1a01-4f3e-9f5a-9b1d7a1c1007"), Title: "Orbital Decay",
		Genres: []string{"sci-fi", "thriller"}, Director: "Paul Renner",
		Actors: []string{"Daniel Okafor", "Yuki Sato"}, Year: 2023, Rating: 8.3,
		Plot:     "A salvage crew finds the station they were sent to scrap still has a crew aboard.",
		Keywords: []string{"space", "salvage", "isolation"},
	},
	{
		ID: uuid.MustParse("0b6fefa0-1a01-4f3e-9f5a-9b1d7a1c1008"), Title: "The Allotment",
		Genres: []string{"comedy", "family"}, Director: "Brigid Mulcahy",
		Actors: []string{"Emma Castillo", "Frank Doyle"}, Year: 2017, Rating: 7.0,
		Plot:     "A retired customs officer wages a gentle war over a community garden plot.",
		Keywords: []string{"gardening", "neighbors", "retirement"},
	},
	{
		ID: uuid.MustParse("0b6fefa0-1a01-4f3e-9f5a-9b1d7a1c1009"), Title: "Sonder",
		Genres: []string{"drama"}, Director: "Henrik Dahl",
		Actors: []string{"Ingrid Solheim", "Clara Voss"}, Year: 2020, Rating: 8.8,
		Plot:     "Six strangers on a delayed ferry narrate the same hour from different lives.",
		Keywords: []string{"ensemble", "perspective", "ferry"},
	},
	{
		ID: uuid.MustParse("0b6fefa0-1a01-4f3e-9f5a-9b1d7a1c1010"), Title: "Chalk Circus",
		Genres: []string{"animation", "comedy"}, Director: "Sofia Aranda",
		Actors: []string{"Leo Park", "Aya Tanaka"}, Year: 2024, Rating: 7.5,
		Plot:     "Sidewalk chalk drawings come alive at night and audition for a street performer.",
		Keywords: []string{"street-art", "imagination", "performance"},
	},
}
