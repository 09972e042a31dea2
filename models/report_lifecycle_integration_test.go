package models_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/regport/api-go/config"
	"github.com/regport/api-go/models"
	"gorm.io/gorm"
)

func integrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires postgres)")
	}
	db, err := config.ConnectDatabase()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.AutoMigrate(&models.Entity{}, &models.Report{}, &models.StatusHistoryEntry{}, &models.Comment{}, &models.CalendarEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createDraft(t *testing.T, db *gorm.DB, entityID, submitterID uint, period string) *models.Report {
	t.Helper()
	report := models.Report{
		ID:              uuid.New().String(),
		EntityID:        entityID,
		SubmittedByID:   submitterID,
		SubmittedByName: "Test Submitter",
		ReportType:      models.TypeQuarterly,
		Period:          period,
		Status:          models.StatusDraft,
		SubmittedAt:     time.Now().UTC(),
		File:            models.FileRef{Key: "k", Name: "r.xlsx", Size: 10, MimeType: "text/csv"},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&report).Error; err != nil {
			return err
		}
		entry := models.StatusHistoryEntry{
			ReportID:      report.ID,
			Status:        models.StatusDraft,
			ChangedByID:   &submitterID,
			ChangedByName: &report.SubmittedByName,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	return &report
}

func mustTransition(t *testing.T, db *gorm.DB, r *models.Report, in models.TransitionInput) {
	t.Helper()
	if err := models.TransitionReport(db, r, in); err != nil {
		t.Fatalf("transition %s: %v", in.To, err)
	}
}

// Full lifecycle: draft, submit, validate with RULE_ERROR, file a correction.
// The original stays untouched, the correction starts its own chain in DRAFT.
func TestReportLifecycleWithCorrection(t *testing.T) {
	db := integrationDB(t)

	submitterID := uint(100)
	r1 := createDraft(t, db, 7, submitterID, "Q1 2025")

	name := "Test Submitter"
	mustTransition(t, db, r1, models.TransitionInput{
		To: models.StatusSubmitted, ChangedByID: &submitterID, ChangedByName: &name,
	})
	mustTransition(t, db, r1, models.TransitionInput{To: models.StatusInProgress})

	note := "sum mismatch"
	mustTransition(t, db, r1, models.TransitionInput{
		To:              models.StatusRuleError,
		Note:            &note,
		ValidationNotes: &note,
	})

	var stored models.Report
	if err := db.First(&stored, "id = ?", r1.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != models.StatusRuleError {
		t.Errorf("status = %s, want RULE_ERROR", stored.Status)
	}
	if stored.ValidatedAt == nil {
		t.Error("validatedAt not set on terminal status")
	}
	if stored.IsArchived {
		t.Error("validation must not archive the report")
	}

	// correction, as a sibling record
	correction := models.Report{
		ID:                uuid.New().String(),
		EntityID:          stored.EntityID,
		SubmittedByID:     submitterID,
		SubmittedByName:   name,
		ReportType:        stored.ReportType,
		Period:            stored.Period,
		Status:            models.StatusDraft,
		IsCorrection:      true,
		CorrectedReportID: &stored.ID,
		SubmittedAt:       time.Now().UTC(),
	}
	if err := db.Create(&correction).Error; err != nil {
		t.Fatalf("create correction: %v", err)
	}

	var original models.Report
	if err := db.First(&original, "id = ?", r1.ID).Error; err != nil {
		t.Fatalf("reload original: %v", err)
	}
	if original.Status != models.StatusRuleError {
		t.Error("filing a correction must not mutate the original")
	}

	var corrections []models.Report
	if err := db.Where("corrected_report_id = ?", r1.ID).Find(&corrections).Error; err != nil {
		t.Fatalf("load corrections: %v", err)
	}
	if len(corrections) != 1 || corrections[0].ID != correction.ID {
		t.Errorf("corrections of r1 = %v", corrections)
	}
	if corrections[0].EntityID != original.EntityID ||
		corrections[0].Period != original.Period ||
		corrections[0].ReportType != original.ReportType {
		t.Error("correction must copy entity, type and period from the original")
	}

	// history is a valid walk through the machine
	var history []models.StatusHistoryEntry
	if err := db.Where("report_id = ?", r1.ID).Order("created_at ASC, id ASC").Find(&history).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("history length = %d, want 4", len(history))
	}
	if history[0].Status != models.StatusDraft {
		t.Errorf("history starts with %s, want DRAFT", history[0].Status)
	}
	for i := 1; i < len(history); i++ {
		if !models.CanTransition(history[i-1].Status, history[i].Status) {
			t.Errorf("illegal edge in history: %s -> %s", history[i-1].Status, history[i].Status)
		}
	}
}

func TestTerminalToTerminalRejected(t *testing.T) {
	db := integrationDB(t)

	submitterID := uint(100)
	r := createDraft(t, db, 7, submitterID, "Q2 2025")
	mustTransition(t, db, r, models.TransitionInput{To: models.StatusSubmitted, ChangedByID: &submitterID})
	mustTransition(t, db, r, models.TransitionInput{To: models.StatusInProgress})
	mustTransition(t, db, r, models.TransitionInput{To: models.StatusRuleError})

	err := models.TransitionReport(db, r, models.TransitionInput{To: models.StatusSuccess})
	if models.KindOf(err) != models.KindInvalidTransition {
		t.Errorf("terminal to terminal: want InvalidTransition, got %v", err)
	}
}

// Two actors race from the same IN_PROGRESS snapshot: the loser must get
// Conflict, not silently overwrite the winner.
func TestConcurrentTransitionConflict(t *testing.T) {
	db := integrationDB(t)

	submitterID := uint(100)
	r := createDraft(t, db, 7, submitterID, "Q3 2025")
	mustTransition(t, db, r, models.TransitionInput{To: models.StatusSubmitted, ChangedByID: &submitterID})
	mustTransition(t, db, r, models.TransitionInput{To: models.StatusInProgress})

	stale := *r
	mustTransition(t, db, r, models.TransitionInput{To: models.StatusSuccess})

	err := models.TransitionReport(db, &stale, models.TransitionInput{To: models.StatusRuleError})
	if models.KindOf(err) != models.KindConflict {
		t.Errorf("stale transition: want Conflict, got %v", err)
	}

	var stored models.Report
	if err := db.First(&stored, "id = ?", r.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != models.StatusSuccess {
		t.Errorf("winner overwritten: status = %s", stored.Status)
	}

	// the losing attempt must not have appended history either
	var count int64
	if err := db.Model(&models.StatusHistoryEntry{}).
		Where("report_id = ? AND status = ?", r.ID, models.StatusRuleError).
		Count(&count).Error; err != nil {
		t.Fatalf("count history: %v", err)
	}
	if count != 0 {
		t.Error("conflicting transition left a history entry behind")
	}
}

func TestCompletionRateReflectsLiveCounts(t *testing.T) {
	db := integrationDB(t)

	suffix := uuid.New().String()[:8]
	e1 := models.Entity{Name: "Bank A " + suffix, Code: "BA-" + suffix, Status: models.EntityActive}
	e2 := models.Entity{Name: "Bank B " + suffix, Code: "BB-" + suffix, Status: models.EntityActive}
	if err := db.Create(&e1).Error; err != nil {
		t.Fatalf("create entity: %v", err)
	}
	if err := db.Create(&e2).Error; err != nil {
		t.Fatalf("create entity: %v", err)
	}

	period := "P-" + suffix
	submitterID := uint(200)
	r := createDraft(t, db, e1.ID, submitterID, period)

	before, err := models.NonDraftReportCount(db, period, models.TypeQuarterly)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if before != 0 {
		t.Errorf("draft counted as submission: %d", before)
	}

	mustTransition(t, db, r, models.TransitionInput{To: models.StatusSubmitted, ChangedByID: &submitterID})

	after, err := models.NonDraftReportCount(db, period, models.TypeQuarterly)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if after != 1 {
		t.Errorf("non-draft count = %d, want 1", after)
	}

	activeBefore, err := models.ActiveEntityCount(db)
	if err != nil {
		t.Fatalf("active count: %v", err)
	}

	if err := db.Model(&e2).Update("status", models.EntitySuspended).Error; err != nil {
		t.Fatalf("suspend: %v", err)
	}

	activeAfter, err := models.ActiveEntityCount(db)
	if err != nil {
		t.Fatalf("active count: %v", err)
	}
	if activeAfter != activeBefore-1 {
		t.Errorf("suspension must shrink the denominator: %d -> %d", activeBefore, activeAfter)
	}
}
