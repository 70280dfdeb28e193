package roster_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/roster"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/testutil"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func fixedClock() time.Time {
	return time.Date(2026, time.September, 10, 12, 0, 0, 0, time.UTC)
}

type rosterBody struct {
	GroupName    string `json:"group_name"`
	AcademicYear string `json:"academic_year"`
	GeneratedOn  string `json:"generated_on"`
	Members      []struct {
		StudentID string `json:"student_id"`
		FullName  string `json:"full_name"`
	} `json:"members"`
}

func TestShow_PresidentGetsOwnCohort(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := roster.NewHandler(db, zap.NewNop())
	h.Now = fixedClock
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	major := "Web Development"
	president := fx.CreatePresident(ctx, "BSIT", "3rd Year", "A", &major)
	fx.CreateStudent(ctx, "BSIT", "3rd Year", "A", &major)
	fx.CreateStudent(ctx, "BSIT", "3rd Year", "B", &major)

	// Query parameters must not let a president escape their cohort.
	req := testutil.NewAuthenticatedRequest(http.MethodGet,
		"/roster?program=BSCS&section=B", testutil.UserForProfile(president))
	rec := httptest.NewRecorder()
	h.Show(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got rosterBody
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.GroupName != "BSIT - 3rd Year A (Web Development)" {
		t.Errorf("group_name = %q", got.GroupName)
	}
	if got.AcademicYear != "2026-2027" {
		t.Errorf("academic_year = %q", got.AcademicYear)
	}
	if got.GeneratedOn != "September 10, 2026" {
		t.Errorf("generated_on = %q", got.GeneratedOn)
	}
	if len(got.Members) != 2 {
		t.Errorf("members = %d, want president and cohort student", len(got.Members))
	}
}

func TestShow_AdminNamesCohort(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := roster.NewHandler(db, zap.NewNop())
	h.Now = fixedClock
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudent(ctx, "BSED", "1st Year", "A", nil)
	fx.CreateStudent(ctx, "BSED", "1st Year", "B", nil)

	req := testutil.NewAuthenticatedRequest(http.MethodGet,
		"/roster?program=bsed&year_level=1st+Year&section=a", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.Show(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got rosterBody
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.GroupName != "BSED - 1st Year A" {
		t.Errorf("group_name = %q", got.GroupName)
	}
	if len(got.Members) != 1 {
		t.Errorf("members = %d, want 1", len(got.Members))
	}
}

func TestShow_AdminMissingCohortParams(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := roster.NewHandler(db, zap.NewNop())

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/roster", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.Show(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestGroups_EnumeratesDistinctCohorts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := roster.NewHandler(db, zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	major := "Web Development"
	fx.CreateStudent(ctx, "BSIT", "3rd Year", "A", &major)
	fx.CreateStudent(ctx, "BSIT", "3rd Year", "A", &major)
	fx.CreateStudent(ctx, "BSED", "1st Year", "B", nil)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/roster/groups", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.Groups(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Groups []struct {
			GroupName string `json:"group_name"`
			Members   int64  `json:"members"`
		} `json:"groups"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(got.Groups))
	}
	if got.Groups[0].GroupName != "BSED - 1st Year B" || got.Groups[0].Members != 1 {
		t.Errorf("first group = %+v", got.Groups[0])
	}
	if got.Groups[1].GroupName != "BSIT - 3rd Year A (Web Development)" || got.Groups[1].Members != 2 {
		t.Errorf("second group = %+v", got.Groups[1])
	}
}

func TestShow_StudentForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := roster.NewHandler(db, zap.NewNop())

	actor := testutil.StudentUser("BSIT", "3rd Year", "A", strPtr("Web Development"))

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/roster", actor)
	rec := httptest.NewRecorder()
	h.Show(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("show status = %d", rec.Code)
	}

	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/roster/groups", actor)
	rec = httptest.NewRecorder()
	h.Groups(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("groups status = %d", rec.Code)
	}
}
