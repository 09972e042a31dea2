package controllers

import (
	"testing"
	"time"

	"github.com/regport/api-go/models"
	"github.com/regport/api-go/utils"
)

func TestNewChainNode(t *testing.T) {
	report := &models.Report{
		ID:            "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
		EntityID:      7,
		SubmittedByID: 101,
		Status:        models.StatusRuleError,
		SubmittedAt:   time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC),
	}

	staff := &utils.Caller{UserID: 1, Role: models.RoleUKNFEmployee}
	node := NewChainNode(staff, report)
	if node.Status != models.StatusRuleError || node.SubmittedAt == nil || node.IsArchived == nil {
		t.Errorf("visible ancestor should carry full metadata, got %+v", node)
	}

	// same entity, different submitter: the link survives, the metadata does not
	colleague := &utils.Caller{UserID: 100, Role: models.RoleEntityUser, EntityIDs: []uint{7}}
	node = NewChainNode(colleague, report)
	if node.ID != report.ID {
		t.Errorf("link id must survive, got %+v", node)
	}
	if node.Status != "" || node.SubmittedAt != nil || node.IsArchived != nil {
		t.Errorf("invisible ancestor must reduce to a bare id, got %+v", node)
	}
}
