package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Progress labels describe a student's academic standing.
const (
	ProgressExcellent = "Excellent"
	ProgressGood      = "Good"
	ProgressAverage   = "Average"
	ProgressPoor      = "Poor"
)

// ValidProgressLabels is the closed set accepted on writes.
var ValidProgressLabels = []string{ProgressExcellent, ProgressGood, ProgressAverage, ProgressPoor}

// MarksMap stores subject to mark pairs as a JSONB column.
type MarksMap map[string]int

// Value implements driver.Valuer.
func (m MarksMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *MarksMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = MarksMap{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported marks type %T", src)
	}
}

// Student represents an academic record keyed by roll number.
type Student struct {
	ID         string         `db:"id" json:"id"`
	RollNumber string         `db:"roll_number" json:"roll_number"`
	FullName   string         `db:"full_name" json:"full_name"`
	Email      string         `db:"email" json:"email"`
	Course     string         `db:"course" json:"course"`
	Semester   int            `db:"semester" json:"semester"`
	Subjects   pq.StringArray `db:"subjects" json:"subjects"`
	Marks      MarksMap       `db:"marks" json:"marks"`
	Attendance float64        `db:"attendance" json:"attendance"`
	Progress   string         `db:"progress" json:"progress"`
	PhotoPath  *string        `db:"photo_path" json:"photo_path,omitempty"`
	CreatedBy  string         `db:"created_by" json:"created_by"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// AttendanceDisplay formats the numeric attendance back into its percent form.
func (s *Student) AttendanceDisplay() string {
	return fmt.Sprintf("%g%%", s.Attendance)
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Course    string
	Semester  int
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
