package register

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/testutil"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

type fakeBlobStore struct {
	blobs   map[string][]byte
	deleted []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string][]byte{}}
}

func (f *fakeBlobStore) Put(_ context.Context, path string, r io.Reader, _ *storage.PutOptions) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.blobs[path] = data
	return nil
}

func (f *fakeBlobStore) Delete(_ context.Context, path string) error {
	delete(f.blobs, path)
	f.deleted = append(f.deleted, path)
	return nil
}

func transparentPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(1, 1, color.NRGBA{A: 0})
	for x := 0; x < 4; x++ {
		img.SetNRGBA(x, 0, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func opaquePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func validFields() map[string]string {
	return map[string]string{
		"student_id": "2021-12345",
		"email":      "juan@test.edu",
		"password":   "secure123",
		"first_name": "Juan",
		"last_name":  "Dela Cruz",
		"program":    "BSIT",
		"year_level": "3rd Year",
		"section":    "A",
		"semester":   "1st Semester",
		"major":      "Web Development",
	}
}

func postRegister(t *testing.T, h *Handler, fields map[string]string, picture, signature []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if picture != nil {
		part, err := mw.CreateFormFile("picture", "picture.png")
		if err != nil {
			t.Fatalf("create picture part: %v", err)
		}
		if _, err := part.Write(picture); err != nil {
			t.Fatalf("write picture: %v", err)
		}
	}
	if signature != nil {
		part, err := mw.CreateFormFile("signature", "signature.png")
		if err != nil {
			t.Fatalf("create signature part: %v", err)
		}
		if _, err := part.Write(signature); err != nil {
			t.Fatalf("write signature: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/register", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	return rec
}

func TestRegister_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	blobs := newFakeBlobStore()
	h := NewHandler(db, zap.NewNop(), nil, blobs, "http://localhost:8080/files")

	rec := postRegister(t, h, validFields(), transparentPNG(t), transparentPNG(t))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["student_id"] != "2021-12345" {
		t.Errorf("student_id = %v", got["student_id"])
	}
	if got["role"] != "student" {
		t.Errorf("role = %v, want student", got["role"])
	}
	if got["picture_status"] != "pending" || got["signature_status"] != "pending" {
		t.Errorf("statuses = %v/%v", got["picture_status"], got["signature_status"])
	}
	if got["picture_url"] == nil || got["signature_url"] == nil {
		t.Error("artifact URLs missing from response")
	}
	if len(blobs.blobs) != 2 {
		t.Errorf("stored blobs = %d, want 2", len(blobs.blobs))
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response leaked password data")
	}
}

func TestRegister_OpaqueSignatureRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	blobs := newFakeBlobStore()
	h := NewHandler(db, zap.NewNop(), nil, blobs, "http://localhost:8080/files")

	rec := postRegister(t, h, validFields(), transparentPNG(t), opaquePNG(t))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(blobs.blobs) != 0 {
		t.Errorf("stored blobs = %d, want none before validation passes", len(blobs.blobs))
	}
}

func TestRegister_MissingArtifacts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, zap.NewNop(), nil, newFakeBlobStore(), "http://localhost:8080/files")

	if rec := postRegister(t, h, validFields(), nil, transparentPNG(t)); rec.Code != http.StatusBadRequest {
		t.Errorf("missing picture: status = %d", rec.Code)
	}
	if rec := postRegister(t, h, validFields(), transparentPNG(t), nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing signature: status = %d", rec.Code)
	}
}

func TestRegister_DuplicateStudentID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	blobs := newFakeBlobStore()
	h := NewHandler(db, zap.NewNop(), nil, blobs, "http://localhost:8080/files")

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := h.Profiles.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	if rec := postRegister(t, h, validFields(), transparentPNG(t), transparentPNG(t)); rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}
	stored := len(blobs.blobs)

	fields := validFields()
	fields["email"] = "other@test.edu"
	rec := postRegister(t, h, fields, transparentPNG(t), transparentPNG(t))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "student ID") {
		t.Errorf("body = %s", rec.Body.String())
	}
	// The blobs written for the rejected registration are cleaned up.
	if len(blobs.blobs) != stored {
		t.Errorf("stored blobs = %d, want %d", len(blobs.blobs), stored)
	}
}

func TestRegister_ValidationFailures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, zap.NewNop(), nil, newFakeBlobStore(), "http://localhost:8080/files")

	cases := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"missing student ID", func(f map[string]string) { f["student_id"] = "" }},
		{"missing last name", func(f map[string]string) { f["last_name"] = "" }},
		{"short password", func(f map[string]string) { f["password"] = "abc" }},
		{"common password", func(f map[string]string) { f["password"] = "password" }},
		{"missing required major", func(f map[string]string) { f["major"] = "" }},
		{"forbidden major", func(f map[string]string) { f["year_level"] = "1st Year" }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fields := validFields()
			c.mutate(fields)
			rec := postRegister(t, h, fields, transparentPNG(t), transparentPNG(t))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRegister_StripsHTMLFromNames(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, zap.NewNop(), nil, newFakeBlobStore(), "http://localhost:8080/files")

	fields := validFields()
	fields["student_id"] = "2021-54321"
	fields["email"] = "clean@test.edu"
	fields["first_name"] = "<script>alert('x')</script>Juan"
	rec := postRegister(t, h, fields, transparentPNG(t), transparentPNG(t))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "script") {
		t.Error("script tag survived sanitization")
	}
}
