package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scholarsync/scholarsync-api/internal/models"
	appErrors "github.com/scholarsync/scholarsync-api/pkg/errors"
)

type mockAnalyticsRepo struct {
	courseCalls int
}

func (m *mockAnalyticsRepo) CourseSummaries(ctx context.Context) ([]models.CourseSummary, error) {
	m.courseCalls++
	return []models.CourseSummary{{Course: "BSc CS", StudentCount: 12, AverageMark: 81.5}}, nil
}

func (m *mockAnalyticsRepo) SemesterDistribution(ctx context.Context) ([]models.SemesterDistribution, error) {
	return []models.SemesterDistribution{{Semester: 4, StudentCount: 7}}, nil
}

func (m *mockAnalyticsRepo) AttendanceSummaries(ctx context.Context) ([]models.AttendanceSummary, error) {
	return []models.AttendanceSummary{{Course: "BSc CS", AverageAttendance: 84.2}}, nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.entries = make(map[string][]byte)
	return nil
}

func TestAnalyticsServiceCoursesWithoutCache(t *testing.T) {
	repo := &mockAnalyticsRepo{}
	svc := NewAnalyticsService(repo, nil, nil, zap.NewNop())

	summaries, hit, err := svc.Courses(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, summaries, 1)
	assert.Equal(t, "BSc CS", summaries[0].Course)
}

func TestAnalyticsServiceCoursesCached(t *testing.T) {
	repo := &mockAnalyticsRepo{}
	cacheRepo := newMemoryCacheRepo()
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(repo, cacheSvc, nil, zap.NewNop())

	_, hit, err := svc.Courses(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)

	summaries, hit, err := svc.Courses(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, repo.courseCalls)
}

func TestAnalyticsServiceCacheInvalidation(t *testing.T) {
	repo := &mockAnalyticsRepo{}
	cacheRepo := newMemoryCacheRepo()
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(repo, cacheSvc, nil, zap.NewNop())

	_, _, err := svc.Courses(context.Background())
	require.NoError(t, err)

	// Student writes clear the analytics keys.
	require.NoError(t, cacheSvc.Invalidate(context.Background(), "analytics:*"))

	_, hit, err := svc.Courses(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, repo.courseCalls)
}

func TestAnalyticsServiceSemestersAndAttendance(t *testing.T) {
	svc := NewAnalyticsService(&mockAnalyticsRepo{}, nil, nil, zap.NewNop())

	distribution, _, err := svc.Semesters(context.Background())
	require.NoError(t, err)
	require.Len(t, distribution, 1)
	assert.Equal(t, 4, distribution[0].Semester)

	attendance, _, err := svc.Attendance(context.Background())
	require.NoError(t, err)
	require.Len(t, attendance, 1)
	assert.InDelta(t, 84.2, attendance[0].AverageAttendance, 0.001)
}

func TestAnalyticsServiceSystemMetricsSnapshot(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest("GET", "/students", 200, 5*time.Millisecond)
	metrics.RecordCacheOperation(true, time.Millisecond)
	metrics.RecordCacheOperation(false, time.Millisecond)

	svc := NewAnalyticsService(&mockAnalyticsRepo{}, nil, metrics, zap.NewNop())
	snapshot := svc.SystemMetrics()

	assert.Equal(t, uint64(1), snapshot.RequestsTotal)
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 0.001)
	assert.False(t, snapshot.GeneratedAt.IsZero())
}
