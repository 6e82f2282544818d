package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarsync/scholarsync-api/internal/models"
)

func studentRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "roll_number", "full_name", "email", "course", "semester", "subjects", "marks", "attendance", "progress", "photo_path", "created_by", "created_at", "updated_at"}).
		AddRow("s1", "2021A042", "Asha Verma", "asha@example.com", "BSc CS", 4, "{Math,Python}", []byte(`{"Math":85,"Python":90}`), 85.0, "Good", nil, "u1", now, now)
}

func TestStudentFindByRollNumber(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, roll_number, full_name, email, course, semester, subjects, marks, attendance, progress, photo_path, created_by, created_at, updated_at FROM students WHERE roll_number = $1 LIMIT 1")).
		WithArgs("2021A042").
		WillReturnRows(studentRows(time.Now()))

	student, err := repo.FindByRollNumber(context.Background(), "2021A042")
	require.NoError(t, err)
	assert.Equal(t, "2021A042", student.RollNumber)
	assert.Equal(t, models.MarksMap{"Math": 85, "Python": 90}, student.Marks)
	assert.Equal(t, []string{"Math", "Python"}, []string(student.Subjects))
	assert.Equal(t, 85.0, student.Attendance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentFindByRollNumberMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT id, roll_number").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByRollNumber(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStudentListPrefixSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, roll_number, full_name, email, course, semester, subjects, marks, attendance, progress, photo_path, created_by, created_at, updated_at FROM students WHERE 1=1 AND (LOWER(full_name) LIKE $1 OR LOWER(course) LIKE $1) ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("ash%").
		WillReturnRows(studentRows(time.Now()))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE 1=1 AND (LOWER(full_name) LIKE $1 OR LOWER(course) LIKE $1)")).
		WithArgs("ash%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Search: "Ash"})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE 1=1 AND LOWER(course) = $1 AND semester = $2 ORDER BY full_name ASC LIMIT 10 OFFSET 10")).
		WithArgs("bsc cs", 4).
		WillReturnRows(studentRows(time.Now()))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE 1=1 AND LOWER(course) = $1 AND semester = $2")).
		WithArgs("bsc cs", 4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	students, total, err := repo.List(context.Background(), models.StudentFilter{
		Course:    "BSc CS",
		Semester:  4,
		Page:      2,
		PageSize:  10,
		SortBy:    "full_name",
		SortOrder: "asc",
	})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{
		RollNumber: "2021A042",
		FullName:   "Asha Verma",
		Email:      "asha@example.com",
		Course:     "BSc CS",
		Semester:   4,
		Subjects:   []string{"Math"},
		Marks:      models.MarksMap{"Math": 85},
		Attendance: 85,
		Progress:   models.ProgressGood,
		CreatedBy:  "u1",
	}
	err := repo.Create(context.Background(), student)
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.False(t, student.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET").WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &models.Student{RollNumber: "2021A042", FullName: "Asha Verma"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentUpdatePhotoPath(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET photo_path = $2, updated_at = $3 WHERE roll_number = $1")).
		WithArgs("2021A042", "photos/2021A042.png", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePhotoPath(context.Background(), "2021A042", "photos/2021A042.png")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE roll_number = $1")).
		WithArgs("2021A042").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "2021A042")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
