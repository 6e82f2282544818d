package models

import "time"

// CourseSummary aggregates marks per course.
type CourseSummary struct {
	Course       string  `db:"course" json:"course"`
	StudentCount int     `db:"student_count" json:"student_count"`
	AverageMark  float64 `db:"average_mark" json:"average_mark"`
}

// SemesterDistribution counts students per semester.
type SemesterDistribution struct {
	Semester     int `db:"semester" json:"semester"`
	StudentCount int `db:"student_count" json:"student_count"`
}

// AttendanceSummary aggregates attendance per course.
type AttendanceSummary struct {
	Course            string  `db:"course" json:"course"`
	StudentCount      int     `db:"student_count" json:"student_count"`
	AverageAttendance float64 `db:"average_attendance" json:"average_attendance"`
}

// SystemMetrics is a lightweight instrumentation snapshot for API consumption.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
