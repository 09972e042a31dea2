package utils

import (
	"github.com/regport/api-go/models"
	"gorm.io/gorm"
)

// Row-level visibility rules, in one place instead of scattered per-handler
// where clauses:
//
//   - authority roles see every entity's reports
//   - entity admins see their entities' reports, whoever submitted them
//   - entity users see only their own submissions within their entities
//
// VisibleToCaller is the pure predicate, VisibilityScope the equivalent query
// refinement. Both must agree; the tests hold them to the same table.

func VisibleToCaller(caller *Caller, r *models.Report) bool {
	if caller == nil {
		return false
	}
	switch {
	case caller.Role.Authority():
		return true
	case caller.Role == models.RoleEntityAdmin:
		return caller.MemberOf(r.EntityID)
	case caller.Role == models.RoleEntityUser:
		return caller.MemberOf(r.EntityID) && r.SubmittedByID == caller.UserID
	}
	return false
}

// FilterVisibleReports drops reports the caller may not see. Relationship
// expansions (corrections of a visible report, the report it corrects) go
// through the same predicate as direct reads: being allowed to see one link
// of a chain grants nothing about its siblings.
func FilterVisibleReports(caller *Caller, reports []models.Report) []models.Report {
	visible := make([]models.Report, 0, len(reports))
	for i := range reports {
		if VisibleToCaller(caller, &reports[i]) {
			visible = append(visible, reports[i])
		}
	}
	return visible
}

// VisibilityScope returns the gorm refinement applied to every report query.
// A non-authority caller with no entity memberships gets Forbidden instead of
// a scope: an empty result set would be indistinguishable from "nothing
// submitted yet".
func VisibilityScope(caller *Caller) (func(*gorm.DB) *gorm.DB, error) {
	if caller == nil {
		return nil, models.ErrForbidden()
	}
	if caller.Role.Authority() {
		return func(db *gorm.DB) *gorm.DB { return db }, nil
	}
	if len(caller.EntityIDs) == 0 {
		return nil, models.ErrForbidden()
	}
	switch caller.Role {
	case models.RoleEntityAdmin:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("entity_id IN ?", caller.EntityIDs)
		}, nil
	case models.RoleEntityUser:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("entity_id IN ? AND submitted_by_id = ?", caller.EntityIDs, caller.UserID)
		}, nil
	}
	return nil, models.ErrForbidden()
}
