package utils

import (
	"testing"

	"github.com/regport/api-go/models"
)

func entityReport(entityID, submittedBy uint) *models.Report {
	return &models.Report{ID: "r-1", EntityID: entityID, SubmittedByID: submittedBy}
}

func TestVisibleToCaller(t *testing.T) {
	report := entityReport(7, 100)

	cases := []struct {
		name   string
		caller *Caller
		want   bool
	}{
		{"nil caller", nil, false},
		{
			"authority admin sees everything",
			&Caller{UserID: 1, Role: models.RoleUKNFAdmin},
			true,
		},
		{
			"authority staff sees everything",
			&Caller{UserID: 2, Role: models.RoleUKNFEmployee},
			true,
		},
		{
			"system account sees everything",
			&Caller{UserID: 3, Role: models.RoleUKNFSystem},
			true,
		},
		{
			"entity admin of owning entity",
			&Caller{UserID: 4, Role: models.RoleEntityAdmin, EntityIDs: []uint{7}},
			true,
		},
		{
			"entity admin of another entity",
			&Caller{UserID: 4, Role: models.RoleEntityAdmin, EntityIDs: []uint{8}},
			false,
		},
		{
			"entity user who submitted it",
			&Caller{UserID: 100, Role: models.RoleEntityUser, EntityIDs: []uint{7}},
			true,
		},
		{
			"entity user, same entity, different submitter",
			&Caller{UserID: 101, Role: models.RoleEntityUser, EntityIDs: []uint{7}},
			false,
		},
		{
			"entity user who submitted it but lost membership",
			&Caller{UserID: 100, Role: models.RoleEntityUser, EntityIDs: nil},
			false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := VisibleToCaller(tc.caller, report); got != tc.want {
				t.Errorf("VisibleToCaller = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilterVisibleReports(t *testing.T) {
	own := models.Report{ID: "own", EntityID: 7, SubmittedByID: 100}
	colleague := models.Report{ID: "colleague", EntityID: 7, SubmittedByID: 101}
	foreign := models.Report{ID: "foreign", EntityID: 8, SubmittedByID: 200}
	all := []models.Report{own, colleague, foreign}

	user := &Caller{UserID: 100, Role: models.RoleEntityUser, EntityIDs: []uint{7}}
	got := FilterVisibleReports(user, all)
	if len(got) != 1 || got[0].ID != "own" {
		t.Errorf("entity user should keep only their own submission, got %v", got)
	}

	admin := &Caller{UserID: 1, Role: models.RoleEntityAdmin, EntityIDs: []uint{7}}
	got = FilterVisibleReports(admin, all)
	if len(got) != 2 || got[0].ID != "own" || got[1].ID != "colleague" {
		t.Errorf("entity admin should keep both entity 7 reports, got %v", got)
	}

	staff := &Caller{UserID: 2, Role: models.RoleUKNFEmployee}
	if got = FilterVisibleReports(staff, all); len(got) != 3 {
		t.Errorf("authority staff should keep everything, got %v", got)
	}
}

func TestVisibilityScopeZeroMemberships(t *testing.T) {
	for _, role := range []models.Role{models.RoleEntityAdmin, models.RoleEntityUser} {
		_, err := VisibilityScope(&Caller{UserID: 9, Role: role})
		if models.KindOf(err) != models.KindForbidden {
			t.Errorf("role %s with no entities: want Forbidden, got %v", role, err)
		}
	}
}

func TestVisibilityScopeAuthorityUnrestricted(t *testing.T) {
	for _, role := range []models.Role{models.RoleUKNFAdmin, models.RoleUKNFEmployee, models.RoleUKNFSystem} {
		scope, err := VisibilityScope(&Caller{UserID: 9, Role: role})
		if err != nil {
			t.Fatalf("role %s: unexpected error %v", role, err)
		}
		if scope == nil {
			t.Fatalf("role %s: nil scope", role)
		}
	}
}

func TestVisibilityScopeNilCaller(t *testing.T) {
	_, err := VisibilityScope(nil)
	if models.KindOf(err) != models.KindForbidden {
		t.Errorf("nil caller: want Forbidden, got %v", err)
	}
}
