package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-hub/academic-core-api/internal/models"
	appErrors "github.com/campus-hub/academic-core-api/pkg/errors"
	"github.com/campus-hub/academic-core-api/pkg/export"
)

type rosterProviderStub struct {
	detail *models.SectionDetail
	rows   []models.SectionRosterRow
	err    error
}

func (s rosterProviderStub) Roster(ctx context.Context, sectionID string) (*models.SectionDetail, []models.SectionRosterRow, error) {
	return s.detail, s.rows, s.err
}

func newExportFixture() *ExportService {
	provider := rosterProviderStub{
		detail: &models.SectionDetail{
			OfferedCourseSection: models.OfferedCourseSection{ID: "sec-1", Title: "Section A"},
			CourseCode:           "CSE-201",
		},
		rows: []models.SectionRosterRow{
			{StudentCode: "CSE-001", StudentName: "Ada Lovelace", Email: "ada@example.edu", IsConfirmed: true, TotalCreditsTaken: 9},
			{StudentCode: "CSE-002", StudentName: "Alan Turing", Email: "alan@example.edu", TotalCreditsTaken: 6},
		},
	}
	return NewExportService(provider, export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop())
}

func TestExportServiceSectionRosterCSV(t *testing.T) {
	svc := newExportFixture()

	result, err := svc.SectionRoster(context.Background(), "sec-1", ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "roster-sec-1.csv", result.FileName)

	lines := strings.Split(strings.TrimSpace(string(result.Body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student ID,Name,Email,Confirmed,Credits Taken", lines[0])
	assert.Equal(t, "CSE-001,Ada Lovelace,ada@example.edu,yes,9", lines[1])
	assert.Equal(t, "CSE-002,Alan Turing,alan@example.edu,no,6", lines[2])
}

func TestExportServiceSectionRosterPDF(t *testing.T) {
	svc := newExportFixture()

	result, err := svc.SectionRoster(context.Background(), "sec-1", ExportPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "roster-sec-1.pdf", result.FileName)
	assert.NotEmpty(t, result.Body)
}

func TestExportServiceSectionRosterUnknownFormat(t *testing.T) {
	svc := newExportFixture()

	_, err := svc.SectionRoster(context.Background(), "sec-1", ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
