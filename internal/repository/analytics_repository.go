package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/scholarsync/scholarsync-api/internal/models"
)

// AnalyticsRepository computes read-only aggregates over student records.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository constructs an analytics repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// CourseSummaries returns per-course student counts and average marks. The
// marks JSONB map is expanded server-side so averages cover every subject.
func (r *AnalyticsRepository) CourseSummaries(ctx context.Context) ([]models.CourseSummary, error) {
	const query = `SELECT s.course,
        COUNT(DISTINCT s.id) AS student_count,
        COALESCE(AVG(m.value::int), 0) AS average_mark
        FROM students s
        LEFT JOIN LATERAL jsonb_each_text(s.marks) AS m(subject, value) ON TRUE
        GROUP BY s.course
        ORDER BY s.course`
	var summaries []models.CourseSummary
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("course summaries: %w", err)
	}
	return summaries, nil
}

// SemesterDistribution returns student counts per semester.
func (r *AnalyticsRepository) SemesterDistribution(ctx context.Context) ([]models.SemesterDistribution, error) {
	const query = `SELECT semester, COUNT(*) AS student_count FROM students GROUP BY semester ORDER BY semester`
	var distribution []models.SemesterDistribution
	if err := r.db.SelectContext(ctx, &distribution, query); err != nil {
		return nil, fmt.Errorf("semester distribution: %w", err)
	}
	return distribution, nil
}

// AttendanceSummaries returns per-course average attendance.
func (r *AnalyticsRepository) AttendanceSummaries(ctx context.Context) ([]models.AttendanceSummary, error) {
	const query = `SELECT course, COUNT(*) AS student_count, COALESCE(AVG(attendance), 0) AS average_attendance FROM students GROUP BY course ORDER BY course`
	var summaries []models.AttendanceSummary
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("attendance summaries: %w", err)
	}
	return summaries, nil
}
