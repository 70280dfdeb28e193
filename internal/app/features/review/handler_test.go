package review_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/review"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *review.Handler {
	return review.NewHandler(db, zap.NewNop(), nil, nil, "SBO Portal", "https://portal.test")
}

func postDecision(t *testing.T, h *review.Handler, actor testutil.TestUser, targetID, action string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/review/"+targetID+"/"+action, bytes.NewReader(raw))
	req = testutil.WithChiURLParam(req, "id", targetID)
	req = testutil.WithUser(req, actor)
	rec := httptest.NewRecorder()
	if action == "approve" {
		h.Approve(rec, req)
	} else {
		h.Disapprove(rec, req)
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return got
}

func TestApprove_LocksProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	major := "Web Development"
	student := fx.CreateStudent(ctx, "BSIT", "3rd Year", "A", &major)

	rec := postDecision(t, h, testutil.AdminUser(), student.ID.Hex(), "approve",
		map[string]any{"kind": "picture", "version": 0})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	got := decodeBody(t, rec)
	if got["picture_status"] != models.StatusApproved {
		t.Errorf("picture_status = %v", got["picture_status"])
	}
	if got["is_locked"] != true {
		t.Error("profile not locked after approval")
	}
	if got["version"].(float64) != 1 {
		t.Errorf("version = %v, want 1", got["version"])
	}
}

func TestDisapprove_SetsReasonAndUnlocks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fx.CreateStudent(ctx, "BSCS", "4th Year", "B", nil)
	if err := testutil.LockProfile(ctx, db, student.ID); err != nil {
		t.Fatalf("lock profile: %v", err)
	}

	rec := postDecision(t, h, testutil.AdminUser(), student.ID.Hex(), "disapprove",
		map[string]any{"kind": "signature", "version": 0, "reason": "  background is not transparent  "})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	got := decodeBody(t, rec)
	if got["signature_status"] != models.StatusDisapproved {
		t.Errorf("signature_status = %v", got["signature_status"])
	}
	if got["signature_disapproval_reason"] != "background is not transparent" {
		t.Errorf("reason = %v", got["signature_disapproval_reason"])
	}
	if got["is_locked"] != false {
		t.Error("profile still locked after disapproval")
	}
}

func TestDisapprove_RequiresReason(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fx.CreateStudent(ctx, "BSIT", "3rd Year", "A", strPtr("Web Development"))

	rec := postDecision(t, h, testutil.AdminUser(), student.ID.Hex(), "disapprove",
		map[string]any{"kind": "picture", "version": 0, "reason": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for blank reason", rec.Code)
	}
}

func TestDecide_UnknownKind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fx.CreateStudent(ctx, "BSIT", "3rd Year", "A", strPtr("Web Development"))

	rec := postDecision(t, h, testutil.AdminUser(), student.ID.Hex(), "approve",
		map[string]any{"kind": "diploma", "version": 0})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestDecide_SelfReviewForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	major := "Web Development"
	president := fx.CreatePresident(ctx, "BSIT", "3rd Year", "A", &major)

	rec := postDecision(t, h, testutil.UserForProfile(president), president.ID.Hex(), "approve",
		map[string]any{"kind": "picture", "version": 0})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for self-review", rec.Code)
	}
}

func TestDecide_CrossCohortForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	major := "Web Development"
	student := fx.CreateStudent(ctx, "BSIT", "3rd Year", "B", &major)

	actor := testutil.PresidentUser("BSIT", "3rd Year", "A", &major)
	rec := postDecision(t, h, actor, student.ID.Hex(), "approve",
		map[string]any{"kind": "picture", "version": 0})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 across sections", rec.Code)
	}
}

func TestDecide_VersionConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fx.CreateStudent(ctx, "BSCS", "4th Year", "C", strPtr("Data Science"))
	admin := testutil.AdminUser()

	first := postDecision(t, h, admin, student.ID.Hex(), "approve",
		map[string]any{"kind": "picture", "version": 0})
	if first.Code != http.StatusOK {
		t.Fatalf("first decision status = %d", first.Code)
	}

	stale := postDecision(t, h, admin, student.ID.Hex(), "disapprove",
		map[string]any{"kind": "picture", "version": 0, "reason": "blurry"})
	if stale.Code != http.StatusConflict {
		t.Errorf("stale decision status = %d, want 409", stale.Code)
	}

	// The first decision stands.
	fresh := decodeBody(t, first)
	if fresh["picture_status"] != models.StatusApproved {
		t.Errorf("picture_status = %v", fresh["picture_status"])
	}
}

func TestList_PresidentSeesOnlyCohort(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	major := "Web Development"
	president := fx.CreatePresident(ctx, "BSIT", "3rd Year", "A", &major)
	inCohort := fx.CreateStudent(ctx, "BSIT", "3rd Year", "A", &major)
	fx.CreateStudent(ctx, "BSIT", "3rd Year", "B", &major)
	fx.CreateStudent(ctx, "BSIT", "3rd Year", "A", strPtr("Network Administration"))
	fx.CreateStudent(ctx, "BSED", "1st Year", "A", nil)

	req := testutil.WithUser(httptest.NewRequest(http.MethodGet, "/review", nil), testutil.UserForProfile(president))
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Profiles []struct {
			ID string `json:"id"`
		} `json:"profiles"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Total != 1 || len(got.Profiles) != 1 {
		t.Fatalf("total = %d, profiles = %d, want exactly the cohort student", got.Total, len(got.Profiles))
	}
	if got.Profiles[0].ID != inCohort.ID.Hex() {
		t.Errorf("listed profile = %s, want %s", got.Profiles[0].ID, inCohort.ID.Hex())
	}
}

func TestList_AdminSeesEveryone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudent(ctx, "BSIT", "3rd Year", "A", strPtr("Web Development"))
	fx.CreateStudent(ctx, "BSED", "1st Year", "A", nil)
	fx.CreatePresident(ctx, "BSCS", "4th Year", "B", strPtr("Data Science"))

	req := testutil.WithUser(httptest.NewRequest(http.MethodGet, "/review", nil), testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Total != 3 {
		t.Errorf("total = %d, want 3", got.Total)
	}
}

func TestList_StudentForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	actor := testutil.StudentUser("BSIT", "3rd Year", "A", strPtr("Web Development"))
	req := testutil.WithUser(httptest.NewRequest(http.MethodGet, "/review", nil), actor)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func strPtr(s string) *string { return &s }
