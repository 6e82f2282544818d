package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scholarsync/scholarsync-api/internal/models"
)

// AnalyticsRepository describes the persistence layer required by AnalyticsService.
type AnalyticsRepository interface {
	CourseSummaries(ctx context.Context) ([]models.CourseSummary, error)
	SemesterDistribution(ctx context.Context) ([]models.SemesterDistribution, error)
	AttendanceSummaries(ctx context.Context) ([]models.AttendanceSummary, error)
}

// AnalyticsService provides read-optimised access to aggregate datasets with
// cache integration. The boolean result indicates a cache hit.
type AnalyticsService struct {
	repo    AnalyticsRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo AnalyticsRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, cache: cache, metrics: metrics, logger: logger}
}

// Courses returns per-course student counts and average marks.
func (s *AnalyticsService) Courses(ctx context.Context) ([]models.CourseSummary, bool, error) {
	const cacheKey = "analytics:courses"
	var cached []models.CourseSummary
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get course cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	summaries, err := s.repo.CourseSummaries(ctx)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_courses", time.Since(start))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summaries, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache courses", zap.Error(err))
		}
	}
	return summaries, false, nil
}

// Semesters returns the student distribution across semesters.
func (s *AnalyticsService) Semesters(ctx context.Context) ([]models.SemesterDistribution, bool, error) {
	const cacheKey = "analytics:semesters"
	var cached []models.SemesterDistribution
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get semester cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	distribution, err := s.repo.SemesterDistribution(ctx)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_semesters", time.Since(start))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, distribution, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache semesters", zap.Error(err))
		}
	}
	return distribution, false, nil
}

// Attendance returns per-course average attendance.
func (s *AnalyticsService) Attendance(ctx context.Context) ([]models.AttendanceSummary, bool, error) {
	const cacheKey = "analytics:attendance"
	var cached []models.AttendanceSummary
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get attendance cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	summaries, err := s.repo.AttendanceSummaries(ctx)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_attendance", time.Since(start))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summaries, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache attendance", zap.Error(err))
		}
	}
	return summaries, false, nil
}

// SystemMetrics returns a system instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{GeneratedAt: time.Now().UTC()}
	}
	return s.metrics.Snapshot()
}
