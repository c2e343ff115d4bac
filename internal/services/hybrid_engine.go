package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/pkg/models"
)

const (
	hybridBonus = 0.1

	// Strategies slower than this lose part of their dynamic weight.
	slowStrategyThreshold = 5 * time.Second

	emptyResultWeightFactor = 0.1
	slowStrategyFactor      = 0.8
)

// strategyRun is per-call bookkeeping used to compute dynamic weights; it is
// discarded after combination.
type strategyRun struct {
	name      string
	weight    float64
	results   []models.RecommendationResult
	execution time.Duration
}

// HybridEngine fans out over the registered strategies, combines their
// output with dynamic weighting, then applies confidence filtering and
// diversity selection. It holds no mutable state across calls.
type HybridEngine struct {
	strategies []RecommendationStrategy
	diversity  *DiversityEnhancer
	metrics    *EngineMetrics
	logger     *logrus.Logger
}

func NewHybridEngine(strategies []RecommendationStrategy, diversity *DiversityEnhancer, metrics *EngineMetrics, logger *logrus.Logger) *HybridEngine {
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.Name()
	}
	logger.WithFields(logrus.Fields{
		"strategies": names,
	}).Info("Hybrid recommendation engine initialized")

	return &HybridEngine{
		strategies: strategies,
		diversity:  diversity,
		metrics:    metrics,
		logger:     logger,
	}
}

func (e *HybridEngine) GenerateRecommendations(
	ctx context.Context, profile *models.UserProfile,
	candidates []models.Movie, config models.RecommendationConfig,
) ([]models.RecommendationResult, error) {
	config = config.Normalize()

	e.logger.WithFields(logrus.Fields{
		"user_id":    profile.UserID,
		"candidates": len(candidates),
		"max":        config.MaxRecommendations,
	}).Info("Generating hybrid recommendations")

	if len(candidates) == 0 {
		return []models.RecommendationResult{}, nil
	}

	// Fetch a generous pool per strategy so combination and diversity have
	// room to work with.
	runs := e.executeStrategies(ctx, profile, candidates, config.MaxRecommendations*2)

	combined := e.combineResults(runs, config)

	filtered := make([]models.RecommendationResult, 0, len(combined))
	for _, result := range combined {
		if result.Confidence >= config.MinConfidence {
			filtered = append(filtered, result)
		}
	}

	if config.DiversityBoost {
		return e.diversity.Enhance(filtered, config.MaxRecommendations), nil
	}
	return truncateResults(filtered, config.MaxRecommendations), nil
}

// executeStrategies runs every strategy concurrently and joins on all of
// them. A strategy that errors or panics contributes an empty bundle with
// zero latency so the combiner can discount it.
func (e *HybridEngine) executeStrategies(
	ctx context.Context, profile *models.UserProfile,
	candidates []models.Movie, maxResults int,
) []strategyRun {
	runs := make([]strategyRun, len(e.strategies))

	var wg sync.WaitGroup
	for i, strategy := range e.strategies {
		wg.Add(1)
		go func(i int, strategy RecommendationStrategy) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					e.logger.WithFields(logrus.Fields{
						"strategy": strategy.Name(),
						"panic":    r,
					}).Error("Strategy panicked")
					runs[i] = strategyRun{name: strategy.Name(), weight: strategy.Weight()}
				}
			}()

			start := time.Now()
			results, err := strategy.Recommend(ctx, profile, candidates, maxResults)
			elapsed := time.Since(start)

			if err != nil {
				e.logger.WithFields(logrus.Fields{
					"strategy": strategy.Name(),
					"error":    err,
				}).Warn("Strategy failed, continuing without it")
				runs[i] = strategyRun{name: strategy.Name(), weight: strategy.Weight()}
				return
			}

			runs[i] = strategyRun{
				name:      strategy.Name(),
				weight:    strategy.Weight(),
				results:   results,
				execution: elapsed,
			}
			if e.metrics != nil {
				e.metrics.StrategyResults.WithLabelValues(strategy.Name()).Add(float64(len(results)))
			}

			e.logger.WithFields(logrus.Fields{
				"strategy": strategy.Name(),
				"results":  len(results),
				"duration": elapsed,
			}).Debug("Strategy completed")
		}(i, strategy)
	}
	wg.Wait()

	return runs
}

type combinedScore struct {
	movie          *models.Movie
	totalScore     float64
	weightSum      float64
	reasons        []string
	reasonSeen     map[string]struct{}
	strategiesUsed int
	confidenceSum  float64
}

// combineResults merges the per-strategy bundles into one hybrid list. The
// accumulation is commutative over strategies; iteration uses an explicit
// insertion-order index so the output is deterministic.
func (e *HybridEngine) combineResults(runs []strategyRun, config models.RecommendationConfig) []models.RecommendationResult {
	scores := make(map[uuid.UUID]*combinedScore)
	order := make([]uuid.UUID, 0)

	for _, run := range runs {
		dynamicWeight := dynamicWeight(run, config)

		for _, result := range run.results {
			combined, ok := scores[result.MovieID]
			if !ok {
				combined = &combinedScore{
					movie:      result.Movie,
					reasonSeen: make(map[string]struct{}),
				}
				scores[result.MovieID] = combined
				order = append(order, result.MovieID)
			}

			combined.totalScore += result.Score * dynamicWeight
			combined.weightSum += dynamicWeight
			combined.confidenceSum += result.Confidence
			combined.strategiesUsed++

			for _, reason := range result.Reasons {
				if _, seen := combined.reasonSeen[reason]; !seen {
					combined.reasonSeen[reason] = struct{}{}
					combined.reasons = append(combined.reasons, reason)
				}
			}
		}
	}

	final := make([]models.RecommendationResult, 0, len(order))
	for _, movieID := range order {
		combined := scores[movieID]

		var normalized float64
		if combined.weightSum > 0 {
			normalized = combined.totalScore / combined.weightSum
		}
		averageConfidence := combined.confidenceSum / float64(combined.strategiesUsed)

		var bonus float64
		if combined.strategiesUsed > 1 {
			bonus = hybridBonus
		}

		score := normalized + bonus
		if score > 1 {
			score = 1
		}
		confidence := averageConfidence + bonus
		if confidence > 1 {
			confidence = 1
		}

		final = append(final, models.RecommendationResult{
			MovieID:            movieID,
			Movie:              combined.movie,
			Score:              clamp01(score),
			Reasons:            combined.reasons,
			RecommendationType: models.RecommendationTypeHybrid,
			Confidence:         clamp01(confidence),
		})
	}

	sortByScore(final)
	return final
}

// dynamicWeight adjusts a strategy's base weight by result quality, latency
// and the caller's configured multipliers.
func dynamicWeight(run strategyRun, config models.RecommendationConfig) float64 {
	weight := run.weight

	if len(run.results) == 0 {
		weight *= emptyResultWeightFactor
	} else {
		var confidenceSum float64
		for _, r := range run.results {
			confidenceSum += r.Confidence
		}
		weight *= 0.5 + confidenceSum/float64(len(run.results))
	}

	if run.execution > slowStrategyThreshold {
		weight *= slowStrategyFactor
	}

	switch run.name {
	case models.RecommendationTypeContentBased:
		if config.ContentWeight > 0 {
			weight *= config.ContentWeight
		}
	case models.RecommendationTypeCollaborative:
		if config.CollaborativeWeight > 0 {
			weight *= config.CollaborativeWeight
		}
	}

	return weight
}
