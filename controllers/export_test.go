package controllers

import (
	"testing"
	"time"

	"github.com/regport/api-go/models"
)

func TestExportRows(t *testing.T) {
	validated := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	notes := "sum mismatch in sheet B"
	originalID := "11111111-2222-3333-4444-555555555555"

	reports := []models.Report{
		{
			ID:              "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
			EntityID:        12,
			SubmittedByName: "Jan Kowalski",
			ReportType:      models.TypeQuarterly,
			Period:          "Q1 2025",
			Status:          models.StatusRuleError,
			SubmittedAt:     time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC),
			ValidatedAt:     &validated,
			ValidationNotes: &notes,
			File:            models.FileRef{Name: "q1.xlsx"},
		},
		{
			ID:                "ffffffff-0000-1111-2222-333333333333",
			EntityID:          12,
			SubmittedByName:   "Jan Kowalski",
			ReportType:        models.TypeQuarterly,
			Period:            "Q1 2025",
			Status:            models.StatusDraft,
			IsCorrection:      true,
			CorrectedReportID: &originalID,
			SubmittedAt:       time.Date(2025, 4, 5, 8, 0, 0, 0, time.UTC),
			File:              models.FileRef{Name: "q1-fix.xlsx"},
		},
	}

	rows := ExportRows(reports)

	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Report ID" || rows[0][4] != "Status" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	first := rows[1]
	if first[4] != "RULE_ERROR" || first[9] != "2025-04-02T10:00:00Z" || first[10] != notes {
		t.Errorf("unexpected first row: %v", first)
	}
	if first[5] != "false" || first[6] != "" {
		t.Errorf("original report should have no correction link: %v", first)
	}

	second := rows[2]
	if second[5] != "true" || second[6] != originalID {
		t.Errorf("correction row should carry the link: %v", second)
	}
	if second[9] != "" || second[10] != "" {
		t.Errorf("draft correction has no validation fields: %v", second)
	}

	for i, row := range rows {
		if len(row) != len(rows[0]) {
			t.Errorf("row %d has %d cells, header has %d", i, len(row), len(rows[0]))
		}
	}
}
