package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/pkg/models"
)

// UserProfileService owns user profiles, reviews, feedback and saved
// recommendation lists in Postgres. When a Neo4j driver is present it is
// used to prefilter the collaborative peer pool via SIMILAR_TO edges; the
// service degrades to a plain Postgres scan without it.
type UserProfileService struct {
	db     DatabaseQuerier
	graph  neo4j.DriverWithContext
	logger *logrus.Logger
}

func NewUserProfileService(db DatabaseQuerier, graph neo4j.DriverWithContext, logger *logrus.Logger) *UserProfileService {
	return &UserProfileService{db: db, graph: graph, logger: logger}
}

const profileColumns = `user_id, genres, themes, actors, directors, keywords,
	positive_count, neutral_count, negative_count, review_count, average_rating, updated_at`

func (s *UserProfileService) GetUserProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	row := s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`, userID)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}

	// The review path does not maintain average_rating; backfill it from
	// the review mean the first time it is needed.
	if profile.AverageRating == nil && profile.ReviewCount > 0 {
		if avg, err := s.backfillAverageRating(ctx, userID); err == nil {
			profile.AverageRating = avg
		} else {
			s.logger.WithError(err).Warn("Failed to backfill average rating")
		}
	}

	return profile, nil
}

func (s *UserProfileService) backfillAverageRating(ctx context.Context, userID uuid.UUID) (*float64, error) {
	var avg *float64
	row := s.db.QueryRow(ctx, `SELECT AVG(rating)::float8 FROM reviews WHERE user_id = $1`, userID)
	if err := row.Scan(&avg); err != nil {
		return nil, fmt.Errorf("failed to compute average rating: %w", err)
	}
	if avg == nil {
		return nil, nil
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE user_profiles SET average_rating = $2 WHERE user_id = $1`, userID, *avg); err != nil {
		return nil, fmt.Errorf("failed to store average rating: %w", err)
	}
	return avg, nil
}

// ListPeerProfiles returns up to limit other users' profiles as the
// collaborative candidate pool.
func (s *UserProfileService) ListPeerProfiles(ctx context.Context, excludeUserID uuid.UUID, limit int) ([]models.UserProfile, error) {
	if limit <= 0 {
		limit = 100
	}

	if s.graph != nil {
		if profiles, err := s.listPeersViaGraph(ctx, excludeUserID, limit); err == nil {
			return profiles, nil
		} else {
			s.logger.WithError(err).Warn("Graph peer lookup failed, falling back to Postgres scan")
		}
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+profileColumns+`
		FROM user_profiles
		WHERE user_id != $1
		ORDER BY updated_at DESC
		LIMIT $2`, excludeUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list peer profiles: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// listPeersViaGraph narrows the candidate pool to users connected through
// SIMILAR_TO edges before loading their profiles from Postgres.
func (s *UserProfileService) listPeersViaGraph(ctx context.Context, userID uuid.UUID, limit int) ([]models.UserProfile, error) {
	session := s.graph.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (u:User {id: $userId})-[s:SIMILAR_TO]-(peer:User)
			RETURN peer.id AS id
			ORDER BY s.weight DESC
			LIMIT $limit`,
			map[string]interface{}{"userId": userID.String(), "limit": limit})
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("similar-user graph query failed: %w", err)
	}

	peerIDs := make([]uuid.UUID, 0, limit)
	for _, record := range records.([]*neo4j.Record) {
		raw, ok := record.Get("id")
		if !ok {
			continue
		}
		id, err := uuid.Parse(fmt.Sprint(raw))
		if err != nil {
			continue
		}
		peerIDs = append(peerIDs, id)
	}
	if len(peerIDs) == 0 {
		return nil, fmt.Errorf("no graph peers for user %s", userID)
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+profileColumns+`
		FROM user_profiles
		WHERE user_id = ANY($1)
		LIMIT $2`, peerIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph peer profiles: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

func (s *UserProfileService) PositiveReviews(ctx context.Context, userID uuid.UUID, limit int) ([]models.Review, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, movie_id, rating, review_text, created_at
		FROM reviews
		WHERE user_id = $1 AND rating >= 3
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load positive reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(&review.ID, &review.UserID, &review.MovieID,
			&review.Rating, &review.ReviewText, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("review row iteration failed: %w", err)
	}
	return reviews, nil
}

func (s *UserProfileService) CreateReview(ctx context.Context, review *models.Review) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO reviews (id, user_id, movie_id, rating, review_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		review.ID, review.UserID, review.MovieID, review.Rating, review.ReviewText, review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// MergeReviewAnalysis folds one analyzed review into the profile: every
// mentioned label increments its preference entry by one, the sentiment
// bucket and review count increment, and average_rating resets so the next
// read recomputes it.
func (s *UserProfileService) MergeReviewAnalysis(ctx context.Context, result *models.ReviewAnalysisResult) error {
	profile, err := s.GetUserProfile(ctx, result.UserID)
	if errors.Is(err, ErrProfileNotFound) {
		profile = &models.UserProfile{UserID: result.UserID}
	} else if err != nil {
		return err
	}

	profile.Preferences.Genres = mergeMentions(profile.Preferences.Genres, result.Preferences.Genres)
	profile.Preferences.Themes = mergeMentions(profile.Preferences.Themes, result.Preferences.Themes)
	profile.Preferences.Actors = mergeMentions(profile.Preferences.Actors, result.Preferences.Actors)
	profile.Preferences.Directors = mergeMentions(profile.Preferences.Directors, result.Preferences.Directors)
	profile.Preferences.Keywords = mergeMentions(profile.Preferences.Keywords, result.Preferences.Keywords)

	switch result.Sentiment.Sentiment {
	case models.SentimentPositive:
		profile.SentimentHistory.Positive++
	case models.SentimentNegative:
		profile.SentimentHistory.Negative++
	default:
		profile.SentimentHistory.Neutral++
	}
	profile.ReviewCount++
	profile.LastUpdated = time.Now()

	return s.upsertProfile(ctx, profile)
}

func mergeMentions(prefs models.PreferenceVector, mentions []string) models.PreferenceVector {
	if len(mentions) == 0 {
		return prefs
	}
	if prefs == nil {
		prefs = make(models.PreferenceVector, len(mentions))
	}
	for _, label := range mentions {
		prefs[NormalizeLabel(label)]++
	}
	return prefs
}

func (s *UserProfileService) upsertProfile(ctx context.Context, profile *models.UserProfile) error {
	genres, themes, actors, directors, keywords, err := marshalPreferences(&profile.Preferences)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO user_profiles (user_id, genres, themes, actors, directors, keywords,
			positive_count, neutral_count, negative_count, review_count, average_rating, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULL, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			genres = EXCLUDED.genres,
			themes = EXCLUDED.themes,
			actors = EXCLUDED.actors,
			directors = EXCLUDED.directors,
			keywords = EXCLUDED.keywords,
			positive_count = EXCLUDED.positive_count,
			neutral_count = EXCLUDED.neutral_count,
			negative_count = EXCLUDED.negative_count,
			review_count = EXCLUDED.review_count,
			average_rating = NULL,
			updated_at = EXCLUDED.updated_at`,
		profile.UserID, genres, themes, actors, directors, keywords,
		profile.SentimentHistory.Positive, profile.SentimentHistory.Neutral,
		profile.SentimentHistory.Negative, profile.ReviewCount, profile.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to upsert user profile: %w", err)
	}
	return nil
}

func (s *UserProfileService) RecordFeedback(ctx context.Context, feedback *models.RecommendationFeedback) error {
	if feedback.Timestamp.IsZero() {
		feedback.Timestamp = time.Now()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO recommendation_feedback (user_id, movie_id, feedback, recommendation_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		feedback.UserID, feedback.MovieID, feedback.Feedback,
		feedback.RecommendationID, feedback.Reason, feedback.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}
	return nil
}

func (s *UserProfileService) SaveRecommendations(ctx context.Context, userID uuid.UUID, response *models.RecommendationResponse) error {
	payload, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO saved_recommendations (user_id, payload, generated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			generated_at = EXCLUDED.generated_at`,
		userID, payload, response.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to save recommendations: %w", err)
	}
	return nil
}

func (s *UserProfileService) GetSavedRecommendations(ctx context.Context, userID uuid.UUID) (*models.RecommendationResponse, error) {
	var payload []byte
	row := s.db.QueryRow(ctx, `SELECT payload FROM saved_recommendations WHERE user_id = $1`, userID)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load saved recommendations: %w", err)
	}

	var response models.RecommendationResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, fmt.Errorf("failed to decode saved recommendations: %w", err)
	}
	return &response, nil
}

func marshalPreferences(prefs *models.Preferences) (genres, themes, actors, directors, keywords []byte, err error) {
	marshal := func(v models.PreferenceVector) ([]byte, error) {
		if v == nil {
			v = models.PreferenceVector{}
		}
		return json.Marshal(v)
	}

	if genres, err = marshal(prefs.Genres); err != nil {
		return
	}
	if themes, err = marshal(prefs.Themes); err != nil {
		return
	}
	if actors, err = marshal(prefs.Actors); err != nil {
		return
	}
	if directors, err = marshal(prefs.Directors); err != nil {
		return
	}
	keywords, err = marshal(prefs.Keywords)
	return
}

func scanProfiles(rows pgx.Rows) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	for rows.Next() {
		profile, err := scanProfileRow(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profile row iteration failed: %w", err)
	}
	return profiles, nil
}

func scanProfile(row pgx.Row) (*models.UserProfile, error) {
	return scanProfileRow(row)
}

func scanProfileRow(row pgx.Row) (*models.UserProfile, error) {
	var (
		profile                                    models.UserProfile
		genres, themes, actors, directors, keyword []byte
	)
	if err := row.Scan(
		&profile.UserID, &genres, &themes, &actors, &directors, &keyword,
		&profile.SentimentHistory.Positive, &profile.SentimentHistory.Neutral,
		&profile.SentimentHistory.Negative, &profile.ReviewCount,
		&profile.AverageRating, &profile.LastUpdated,
	); err != nil {
		return nil, err
	}

	unmarshal := func(data []byte, into *models.PreferenceVector) error {
		if len(data) == 0 {
			*into = models.PreferenceVector{}
			return nil
		}
		return json.Unmarshal(data, into)
	}

	if err := unmarshal(genres, &profile.Preferences.Genres); err != nil {
		return nil, fmt.Errorf("failed to decode genre preferences: %w", err)
	}
	if err := unmarshal(themes, &profile.Preferences.Themes); err != nil {
		return nil, fmt.Errorf("failed to decode theme preferences: %w", err)
	}
	if err := unmarshal(actors, &profile.Preferences.Actors); err != nil {
		return nil, fmt.Errorf("failed to decode actor preferences: %w", err)
	}
	if err := unmarshal(directors, &profile.Preferences.Directors); err != nil {
		return nil, fmt.Errorf("failed to decode director preferences: %w", err)
	}
	if err := unmarshal(keyword, &profile.Preferences.Keywords); err != nil {
		return nil, fmt.Errorf("failed to decode keyword preferences: %w", err)
	}

	return &profile, nil
}
