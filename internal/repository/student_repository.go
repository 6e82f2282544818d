package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholarsync/scholarsync-api/internal/models"
)

const studentColumns = "id, roll_number, full_name, email, course, semester, subjects, marks, attendance, progress, photo_path, created_by, created_at, updated_at"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByRollNumber fetches a student record by its roll number key.
func (r *StudentRepository) FindByRollNumber(ctx context.Context, rollNumber string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE roll_number = $1 LIMIT 1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, rollNumber); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByRollNumber checks if a record with the given roll number exists.
func (r *StudentRepository) ExistsByRollNumber(ctx context.Context, rollNumber string) (bool, error) {
	const query = "SELECT 1 FROM students WHERE roll_number = $1 LIMIT 1"
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, rollNumber); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check roll number: %w", err)
	}
	return true, nil
}

// List returns students matching the provided filters. Search is a
// case-insensitive prefix match on name and course.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Search != "" {
		prefix := strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(course) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, prefix)
	}
	if filter.Course != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(course) = $%d", len(args)+1))
		args = append(args, strings.ToLower(filter.Course))
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":   "full_name",
		"roll_number": "roll_number",
		"course":      "course",
		"created_at":  "created_at",
	}
	if sortBy == "" {
		sortBy = "created_at"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", studentColumns, base, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, roll_number, full_name, email, course, semester, subjects, marks, attendance, progress, photo_path, created_by, created_at, updated_at)
        VALUES (:id, :roll_number, :full_name, :email, :course, :semester, :subjects, :marks, :attendance, :progress, :photo_path, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of an existing record. Callers merge
// partial input into the stored record before invoking it.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET full_name = :full_name, email = :email, course = :course, semester = :semester, subjects = :subjects, marks = :marks, attendance = :attendance, progress = :progress, photo_path = :photo_path, updated_at = :updated_at WHERE roll_number = :roll_number`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// UpdatePhotoPath sets only the stored photo reference.
func (r *StudentRepository) UpdatePhotoPath(ctx context.Context, rollNumber, photoPath string) error {
	const query = `UPDATE students SET photo_path = $2, updated_at = $3 WHERE roll_number = $1`
	if _, err := r.db.ExecContext(ctx, query, rollNumber, photoPath, time.Now().UTC()); err != nil {
		return fmt.Errorf("update photo path: %w", err)
	}
	return nil
}

// Delete removes a student record by roll number. Irreversible.
func (r *StudentRepository) Delete(ctx context.Context, rollNumber string) error {
	const query = `DELETE FROM students WHERE roll_number = $1`
	if _, err := r.db.ExecContext(ctx, query, rollNumber); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
