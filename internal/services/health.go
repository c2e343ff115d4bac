package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/internal/database"
)

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthService reports dependency health. Postgres is the only critical
// dependency; Redis and Neo4j degrade the engine rather than break it.
type HealthService struct {
	db     *database.Database
	logger *logrus.Logger
}

func NewHealthService(db *database.Database, logger *logrus.Logger) *HealthService {
	return &HealthService{db: db, logger: logger}
}

func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  make(map[string]string),
	}

	if err := s.db.PG.Ping(checkCtx); err != nil {
		status.Services["postgres"] = "unhealthy"
		status.Status = "unhealthy"
		s.logger.WithError(err).Error("PostgreSQL health check failed")
	} else {
		status.Services["postgres"] = "healthy"
	}

	if err := s.db.Redis.Hot.Ping(checkCtx).Err(); err != nil {
		status.Services["redis_hot"] = "unhealthy"
		if status.Status == "healthy" {
			status.Status = "degraded"
		}
	} else {
		status.Services["redis_hot"] = "healthy"
	}

	if err := s.db.Redis.Warm.Ping(checkCtx).Err(); err != nil {
		status.Services["redis_warm"] = "unhealthy"
		if status.Status == "healthy" {
			status.Status = "degraded"
		}
	} else {
		status.Services["redis_warm"] = "healthy"
	}

	if s.db.Neo4j != nil {
		if err := s.db.Neo4j.VerifyConnectivity(checkCtx); err != nil {
			status.Services["neo4j"] = "unhealthy"
			if status.Status == "healthy" {
				status.Status = "degraded"
			}
		} else {
			status.Services["neo4j"] = "healthy"
		}
	}

	return status
}
