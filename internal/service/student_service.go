package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/scholarsync/scholarsync-api/internal/models"
	appErrors "github.com/scholarsync/scholarsync-api/pkg/errors"
)

type studentRepository interface {
	FindByRollNumber(ctx context.Context, rollNumber string) (*models.Student, error)
	ExistsByRollNumber(ctx context.Context, rollNumber string) (bool, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, rollNumber string) error
}

type credentialStore interface {
	DeleteByIdentifier(ctx context.Context, identifier string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateStudentRequest holds payload for creating student records. Subjects
// and marks arrive as the free-text forms the record sheet uses:
// "Math, Python" and "Math:85, Python:90".
type CreateStudentRequest struct {
	RollNumber string `json:"roll_number" validate:"required"`
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Course     string `json:"course" validate:"required"`
	Semester   int    `json:"semester" validate:"required,min=1,max=8"`
	Subjects   string `json:"subjects"`
	Marks      string `json:"marks"`
	Attendance string `json:"attendance"`
	Progress   string `json:"progress" validate:"omitempty,oneof=Excellent Good Average Poor"`
}

// UpdateStudentRequest holds a partial update; only supplied fields overwrite
// the stored record.
type UpdateStudentRequest struct {
	FullName   *string `json:"full_name,omitempty"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Course     *string `json:"course,omitempty"`
	Semester   *int    `json:"semester,omitempty" validate:"omitempty,min=1,max=8"`
	Subjects   *string `json:"subjects,omitempty"`
	Marks      *string `json:"marks,omitempty"`
	Attendance *string `json:"attendance,omitempty"`
	Progress   *string `json:"progress,omitempty" validate:"omitempty,oneof=Excellent Good Average Poor"`
}

// StudentService handles record CRUD and search use-cases.
type StudentService struct {
	repo        studentRepository
	credentials credentialStore
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, credentials credentialStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, credentials: credentials, cache: cache, validator: validate, logger: logger}
}

// ParseMarks converts "Subject:Score" comma text into a marks map. Segments
// without a colon are dropped, as are segments missing a subject or a score
// ("Math:" is malformed noise, not an error); a non-integer or out-of-range
// score aborts the whole parse.
func ParseMarks(raw string) (models.MarksMap, error) {
	marks := models.MarksMap{}
	if strings.TrimSpace(raw) == "" {
		return marks, nil
	}
	for _, segment := range strings.Split(raw, ",") {
		segment = strings.TrimSpace(segment)
		if !strings.Contains(segment, ":") {
			continue
		}
		parts := strings.SplitN(segment, ":", 2)
		subject := strings.TrimSpace(parts[0])
		score := strings.TrimSpace(parts[1])
		if subject == "" || score == "" {
			continue
		}
		value, err := strconv.Atoi(score)
		if err != nil {
			return nil, fmt.Errorf("invalid mark for %q: %q is not an integer", subject, score)
		}
		if value < 0 || value > 100 {
			return nil, fmt.Errorf("mark for %q out of range: %d", subject, value)
		}
		marks[subject] = value
	}
	return marks, nil
}

// ParseSubjects splits a comma-separated subject list, trimming blanks.
func ParseSubjects(raw string) []string {
	parts := strings.Split(raw, ",")
	subjects := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			subjects = append(subjects, trimmed)
		}
	}
	return subjects
}

// ParseAttendance accepts "85%" or "85" and returns the numeric percentage.
func ParseAttendance(raw string) (float64, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if trimmed == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid attendance %q", raw)
	}
	if value < 0 || value > 100 {
		return 0, fmt.Errorf("attendance out of range: %g", value)
	}
	return value, nil
}

// mergeMarkSubjects appends any marked subject missing from the subject list,
// keeping the stored record consistent.
func mergeMarkSubjects(subjects []string, marks models.MarksMap) []string {
	seen := make(map[string]struct{}, len(subjects))
	for _, subject := range subjects {
		seen[subject] = struct{}{}
	}
	for subject := range marks {
		if _, ok := seen[subject]; !ok {
			subjects = append(subjects, subject)
		}
	}
	return subjects
}

// Create registers a new student record.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest, createdBy string) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	marks, err := ParseMarks(req.Marks)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	attendance, err := ParseAttendance(req.Attendance)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	subjects := mergeMarkSubjects(ParseSubjects(req.Subjects), marks)

	exists, err := s.repo.ExistsByRollNumber(ctx, req.RollNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check roll number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "roll number already registered")
	}

	student := &models.Student{
		RollNumber: req.RollNumber,
		FullName:   req.FullName,
		Email:      req.Email,
		Course:     req.Course,
		Semester:   req.Semester,
		Subjects:   subjects,
		Marks:      marks,
		Attendance: attendance,
		Progress:   req.Progress,
		CreatedBy:  createdBy,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.invalidateAnalytics(ctx)
	return student, nil
}

// Get returns a student record by roll number.
func (s *StudentService) Get(ctx context.Context, rollNumber string) (*models.Student, error) {
	student, err := s.repo.FindByRollNumber(ctx, rollNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// List returns students and pagination metadata. Search is a prefix match on
// name and course.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Update merges the supplied fields into the stored record. Fields that are
// absent keep their previous values, including the photo reference.
func (s *StudentService) Update(ctx context.Context, rollNumber string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.repo.FindByRollNumber(ctx, rollNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.Course != nil {
		student.Course = *req.Course
	}
	if req.Semester != nil {
		student.Semester = *req.Semester
	}
	if req.Subjects != nil {
		student.Subjects = ParseSubjects(*req.Subjects)
	}
	if req.Marks != nil {
		marks, err := ParseMarks(*req.Marks)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		student.Marks = marks
	}
	if req.Attendance != nil {
		attendance, err := ParseAttendance(*req.Attendance)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		student.Attendance = attendance
	}
	if req.Progress != nil {
		student.Progress = *req.Progress
	}
	student.Subjects = mergeMarkSubjects(student.Subjects, student.Marks)

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	s.invalidateAnalytics(ctx)
	return student, nil
}

// Delete removes the record and its credential entry. Irreversible; the
// interactive confirmation happens client-side.
func (s *StudentService) Delete(ctx context.Context, rollNumber string, actor *models.JWTClaims) error {
	student, err := s.repo.FindByRollNumber(ctx, rollNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if err := s.repo.Delete(ctx, rollNumber); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}

	if s.credentials != nil {
		if err := s.credentials.DeleteByIdentifier(ctx, rollNumber); err != nil {
			s.logger.Warn("failed to delete credential record", zap.String("roll_number", rollNumber), zap.Error(err))
		}
		audit := &models.AuditLog{
			Action:     models.AuditActionStudentDelete,
			Resource:   "students",
			ResourceID: &student.ID,
		}
		if actor != nil {
			audit.UserID = &actor.UserID
		}
		if err := s.credentials.CreateAuditLog(ctx, audit); err != nil {
			s.logger.Warn("failed to record delete audit log", zap.Error(err))
		}
	}

	s.invalidateAnalytics(ctx)
	return nil
}

func (s *StudentService) invalidateAnalytics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "analytics:*"); err != nil {
		s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
	}
}
