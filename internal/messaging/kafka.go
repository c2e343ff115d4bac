package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/internal/config"
	"github.com/veldran/cinerec/pkg/models"
)

// ReviewAnalyzedEvent is published after a review's sentiment and
// preference extraction completes and the profile merge has been applied.
type ReviewAnalyzedEvent struct {
	Result    *models.ReviewAnalysisResult `json:"result"`
	Timestamp time.Time                    `json:"timestamp"`
}

// FeedbackEvent mirrors a persisted recommendation feedback record for
// downstream consumers.
type FeedbackEvent struct {
	Feedback  *models.RecommendationFeedback `json:"feedback"`
	Timestamp time.Time                      `json:"timestamp"`
}

// EventBus publishes engine events. Publishing is best effort from the
// caller's perspective; callers log failures and continue.
type EventBus struct {
	reviewWriter   *kafka.Writer
	feedbackWriter *kafka.Writer
	logger         *logrus.Logger
}

func NewEventBus(cfg *config.Config, logger *logrus.Logger) (*EventBus, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{}, // Key by user so one user's events stay ordered
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		}
	}

	return &EventBus{
		reviewWriter:   newWriter(cfg.Kafka.Topics.ReviewAnalyzed),
		feedbackWriter: newWriter(cfg.Kafka.Topics.RecommendationFeedback),
		logger:         logger,
	}, nil
}

func (b *EventBus) PublishReviewAnalyzed(ctx context.Context, result *models.ReviewAnalysisResult) error {
	event := ReviewAnalyzedEvent{Result: result, Timestamp: time.Now()}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal review-analyzed event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(result.UserID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "review_id", Value: []byte(result.ReviewID.String())},
			{Key: "sentiment", Value: []byte(result.Sentiment.Sentiment)},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}

	if err := b.writeMessage(ctx, b.reviewWriter, message); err != nil {
		return fmt.Errorf("failed to publish review-analyzed event: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"review_id": result.ReviewID,
		"user_id":   result.UserID,
	}).Info("Review-analyzed event published")
	return nil
}

func (b *EventBus) PublishFeedback(ctx context.Context, feedback *models.RecommendationFeedback) error {
	event := FeedbackEvent{Feedback: feedback, Timestamp: time.Now()}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(feedback.UserID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "movie_id", Value: []byte(feedback.MovieID.String())},
			{Key: "feedback", Value: []byte(feedback.Feedback)},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}

	if err := b.writeMessage(ctx, b.feedbackWriter, message); err != nil {
		return fmt.Errorf("failed to publish feedback event: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"user_id":  feedback.UserID,
		"movie_id": feedback.MovieID,
		"feedback": feedback.Feedback,
	}).Info("Feedback event published")
	return nil
}

func (b *EventBus) writeMessage(ctx context.Context, writer *kafka.Writer, message kafka.Message) error {
	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return writer.WriteMessages(writeCtx, message)
}

func (b *EventBus) Close() error {
	var errors []error

	if err := b.reviewWriter.Close(); err != nil {
		errors = append(errors, fmt.Errorf("failed to close review writer: %w", err))
	}
	if err := b.feedbackWriter.Close(); err != nil {
		errors = append(errors, fmt.Errorf("failed to close feedback writer: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("errors closing event bus: %v", errors)
	}
	return nil
}
