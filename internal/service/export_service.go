package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/campus-hub/academic-core-api/internal/models"
	appErrors "github.com/campus-hub/academic-core-api/pkg/errors"
	"github.com/campus-hub/academic-core-api/pkg/export"
)

type rosterProvider interface {
	Roster(ctx context.Context, sectionID string) (*models.SectionDetail, []models.SectionRosterRow, error)
}

// ExportFormat selects the roster output encoding.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportResult carries rendered bytes with their content type and a
// suggested file name.
type ExportResult struct {
	ContentType string
	FileName    string
	Body        []byte
}

// ExportService renders section rosters as downloadable documents.
type ExportService struct {
	sections rosterProvider
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService wires the export dependencies.
func NewExportService(sections rosterProvider, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{sections: sections, csv: csv, pdf: pdf, logger: logger}
}

var rosterHeaders = []string{"Student ID", "Name", "Email", "Confirmed", "Credits Taken"}

// SectionRoster renders the enrolled-student roster of a section in the
// requested format.
func (s *ExportService) SectionRoster(ctx context.Context, sectionID string, format ExportFormat) (*ExportResult, error) {
	detail, rows, err := s.sections.Roster(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{Headers: rosterHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		confirmed := "no"
		if row.IsConfirmed {
			confirmed = "yes"
		}
		data.Rows = append(data.Rows, map[string]string{
			"Student ID":    row.StudentCode,
			"Name":          row.StudentName,
			"Email":         row.Email,
			"Confirmed":     confirmed,
			"Credits Taken": strconv.Itoa(row.TotalCreditsTaken),
		})
	}

	title := fmt.Sprintf("%s %s roster", detail.CourseCode, detail.Title)
	switch format {
	case ExportCSV:
		body, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster csv")
		}
		return &ExportResult{
			ContentType: "text/csv",
			FileName:    fmt.Sprintf("roster-%s.csv", sectionID),
			Body:        body,
		}, nil
	case ExportPDF:
		body, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster pdf")
		}
		return &ExportResult{
			ContentType: "application/pdf",
			FileName:    fmt.Sprintf("roster-%s.pdf", sectionID),
			Body:        body,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
