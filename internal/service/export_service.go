package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scholarsync/scholarsync-api/internal/models"
	appErrors "github.com/scholarsync/scholarsync-api/pkg/errors"
	"github.com/scholarsync/scholarsync-api/pkg/export"
)

// Export formats accepted by the transcript and roster endpoints.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type exportStudentRepository interface {
	FindByRollNumber(ctx context.Context, rollNumber string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

// ExportDocument is a rendered export ready for download.
type ExportDocument struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders student transcripts and rosters as CSV or PDF.
type ExportService struct {
	repo   exportStudentRepository
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(repo exportStudentRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:   repo,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// Transcript renders a per-subject mark sheet for a single student.
func (s *ExportService) Transcript(ctx context.Context, rollNumber, format string) (*ExportDocument, error) {
	student, err := s.repo.FindByRollNumber(ctx, rollNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	data := export.Dataset{
		Headers: []string{"Subject", "Mark"},
		Rows:    make([]map[string]string, 0, len(student.Subjects)),
	}
	for _, subject := range student.Subjects {
		row := map[string]string{"Subject": subject, "Mark": "-"}
		if mark, ok := student.Marks[subject]; ok {
			row["Mark"] = strconv.Itoa(mark)
		}
		data.Rows = append(data.Rows, row)
	}
	// Marks recorded outside the subject list still show up on the sheet.
	extra := make([]string, 0)
	for subject := range student.Marks {
		if !containsFold(student.Subjects, subject) {
			extra = append(extra, subject)
		}
	}
	sort.Strings(extra)
	for _, subject := range extra {
		data.Rows = append(data.Rows, map[string]string{
			"Subject": subject,
			"Mark":    strconv.Itoa(student.Marks[subject]),
		})
	}

	title := fmt.Sprintf("Transcript %s (%s)", student.FullName, student.RollNumber)
	return s.render(data, format, fmt.Sprintf("transcript-%s", student.RollNumber), title)
}

// Roster renders the full filtered student listing.
func (s *ExportService) Roster(ctx context.Context, filter models.StudentFilter, format string) (*ExportDocument, error) {
	filter.Page = 1
	filter.PageSize = 100
	students, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	data := export.Dataset{
		Headers: []string{"Roll Number", "Name", "Email", "Course", "Semester", "Attendance", "Progress"},
		Rows:    make([]map[string]string, 0, len(students)),
	}
	for i := range students {
		st := &students[i]
		data.Rows = append(data.Rows, map[string]string{
			"Roll Number": st.RollNumber,
			"Name":        st.FullName,
			"Email":       st.Email,
			"Course":      st.Course,
			"Semester":    strconv.Itoa(st.Semester),
			"Attendance":  st.AttendanceDisplay(),
			"Progress":    st.Progress,
		})
	}

	stamp := time.Now().UTC().Format("20060102")
	return s.render(data, format, fmt.Sprintf("roster-%s", stamp), "Student Roster")
}

func (s *ExportService) render(data export.Dataset, format, basename, title string) (*ExportDocument, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportDocument{Content: content, ContentType: "text/csv", Filename: basename + ".csv"}, nil
	case FormatPDF:
		content, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportDocument{Content: content, ContentType: "application/pdf", Filename: basename + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func containsFold(list []string, target string) bool {
	for _, item := range list {
		if strings.EqualFold(item, target) {
			return true
		}
	}
	return false
}
