package archives_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/archives"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func newHandler(t *testing.T, db *mongo.Database) *archives.Handler {
	t.Helper()
	h := archives.NewHandler(db, zap.NewNop(), nil)
	h.Now = func() time.Time {
		return time.Date(2026, time.October, 5, 9, 0, 0, 0, time.UTC)
	}
	return h
}

func postCreate(t *testing.T, h *archives.Handler, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/archives", bytes.NewReader(raw))
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestCreate_SnapshotsCohort(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	major := "Web Development"
	fx.CreatePresident(ctx, "BSIT", "3rd Year", "A", &major)
	student := fx.CreateStudent(ctx, "BSIT", "3rd Year", "A", &major)
	fx.CreateStudent(ctx, "BSIT", "3rd Year", "B", &major)

	rec := postCreate(t, h, map[string]string{
		"program": "BSIT", "year_level": "3rd Year", "section": "A",
		"major": "Web Development", "semester": "1st Semester",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got struct {
		GroupName    string `json:"group_name"`
		AcademicYear string `json:"academic_year"`
		MemberCount  int    `json:"member_count"`
		Members      []struct {
			StudentID string `json:"student_id"`
			Course    string `json:"course"`
		} `json:"members"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.GroupName != "BSIT - 3rd Year A (Web Development)" {
		t.Errorf("group_name = %q", got.GroupName)
	}
	if got.AcademicYear != "2026-2027" {
		t.Errorf("academic_year = %q", got.AcademicYear)
	}
	if got.MemberCount != 2 || len(got.Members) != 2 {
		t.Fatalf("member_count = %d, members = %d, want 2", got.MemberCount, len(got.Members))
	}

	found := false
	for _, m := range got.Members {
		if m.StudentID == student.StudentID {
			found = true
			if m.Course != "BSIT - 3rd Year A (Web Development)" {
				t.Errorf("course = %q", m.Course)
			}
		}
	}
	if !found {
		t.Error("cohort student missing from snapshot")
	}
}

func TestCreate_ScopedToSemester(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	kept := fx.CreateStudent(ctx, "BSED", "1st Year", "A", nil)
	other := fx.CreateStudent(ctx, "BSED", "1st Year", "A", nil)
	if _, err := db.Collection("profiles").UpdateByID(ctx, other.ID,
		bson.M{"$set": bson.M{"semester": "2nd Semester"}}); err != nil {
		t.Fatalf("update semester: %v", err)
	}

	rec := postCreate(t, h, map[string]string{
		"program": "BSED", "year_level": "1st Year", "section": "A",
		"semester": "1st Semester",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got struct {
		Members []struct {
			StudentID string `json:"student_id"`
		} `json:"members"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Members) != 1 || got.Members[0].StudentID != kept.StudentID {
		t.Errorf("snapshot includes members outside the requested semester: %+v", got.Members)
	}
}

func TestCreate_ExplicitAcademicYear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudent(ctx, "BSED", "1st Year", "A", nil)

	rec := postCreate(t, h, map[string]string{
		"program": "BSED", "year_level": "1st Year", "section": "A",
		"semester": "1st Semester", "academic_year": "2025-2026",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got struct {
		AcademicYear string `json:"academic_year"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.AcademicYear != "2025-2026" {
		t.Errorf("academic_year = %q, want the requested prior year", got.AcademicYear)
	}
}

func TestCreate_EmptyCohort(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	rec := postCreate(t, h, map[string]string{
		"program": "BSIT", "year_level": "3rd Year", "section": "Z",
		"major": "Web Development", "semester": "1st Semester",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for empty cohort", rec.Code)
	}
}

func TestCreate_DuplicateTerm(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := h.Archives.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	fx.CreateStudent(ctx, "BSED", "1st Year", "A", nil)

	body := map[string]string{
		"program": "BSED", "year_level": "1st Year", "section": "A",
		"semester": "1st Semester",
	}
	if rec := postCreate(t, h, body); rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", rec.Code)
	}
	if rec := postCreate(t, h, body); rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate create status = %d, want 400", rec.Code)
	}

	// A different academic year is a different snapshot, so a prior
	// term can still be archived.
	body["academic_year"] = "2025-2026"
	if rec := postCreate(t, h, body); rec.Code != http.StatusCreated {
		t.Errorf("prior-year create status = %d", rec.Code)
	}
}

func TestCreate_SnapshotSurvivesProfileDeletion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fx.CreateStudent(ctx, "BSCS", "4th Year", "C", strPtr("Data Science"))

	rec := postCreate(t, h, map[string]string{
		"program": "BSCS", "year_level": "4th Year", "section": "C",
		"major": "Data Science", "semester": "1st Semester",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if _, err := h.Profiles.Delete(ctx, student.ID); err != nil {
		t.Fatalf("delete profile: %v", err)
	}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/archives/"+created.ID, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", created.ID)
	show := httptest.NewRecorder()
	h.Show(show, req)

	if show.Code != http.StatusOK {
		t.Fatalf("show status = %d", show.Code)
	}
	var got struct {
		Members []struct {
			StudentID string `json:"student_id"`
		} `json:"members"`
	}
	if err := json.Unmarshal(show.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Members) != 1 || got.Members[0].StudentID != student.StudentID {
		t.Error("snapshot changed after the live profile was deleted")
	}
}

func TestListAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudent(ctx, "BSED", "1st Year", "A", nil)
	fx.CreateStudent(ctx, "BLIS", "2nd Year", "B", nil)

	for _, body := range []map[string]string{
		{"program": "BSED", "year_level": "1st Year", "section": "A", "semester": "1st Semester"},
		{"program": "BLIS", "year_level": "2nd Year", "section": "B", "semester": "1st Semester"},
	} {
		if rec := postCreate(t, h, body); rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d", rec.Code)
		}
	}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/archives", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.List(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed struct {
		Archives []struct {
			ID string `json:"id"`
		} `json:"archives"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if listed.Total != 2 {
		t.Fatalf("total = %d, want 2", listed.Total)
	}

	target := listed.Archives[0].ID
	del := testutil.NewAuthenticatedRequest(http.MethodDelete, "/archives/"+target, testutil.AdminUser())
	del = testutil.WithChiURLParam(del, "id", target)
	rec = httptest.NewRecorder()
	h.Delete(rec, del)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.List(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/archives", testutil.AdminUser()))
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if listed.Total != 1 {
		t.Errorf("total after delete = %d, want 1", listed.Total)
	}
}

func TestDelete_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/archives/ffffffffffffffffffffffff", testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", "ffffffffffffffffffffffff")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}
