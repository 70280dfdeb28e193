package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/auth"
	"go.uber.org/zap"
)

func TestRequireSignedIn_NoUser_Returns401(t *testing.T) {
	handler := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/protected", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_WithUser_Passes(t *testing.T) {
	handler := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/protected", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "abc", Role: "student"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	handler := auth.RequireRole("admin", "president")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		user *auth.SessionUser
		want int
	}{
		{"no user", nil, http.StatusUnauthorized},
		{"student", &auth.SessionUser{ID: "a", Role: "student"}, http.StatusForbidden},
		{"president", &auth.SessionUser{ID: "b", Role: "president"}, http.StatusOK},
		{"admin", &auth.SessionUser{ID: "c", Role: "admin"}, http.StatusOK},
		{"role case-insensitive", &auth.SessionUser{ID: "d", Role: "Admin"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/review", nil)
			if tt.user != nil {
				req = auth.WithTestUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSessionRoundTrip(t *testing.T) {
	logger := zap.NewNop()
	if err := auth.InitSessionStore("test-session-key-must-be-32-chars-long", "", false, logger); err != nil {
		t.Fatalf("InitSessionStore: %v", err)
	}

	major := "Web Development"
	user := &auth.SessionUser{
		ID:        "64f000000000000000000001",
		Name:      "Dela Cruz, Juan",
		StudentID: "2021-00001",
		Role:      "president",
		Program:   "BSIT",
		YearLevel: "3rd Year",
		Section:   "A",
		Major:     &major,
	}

	// Sign in and capture the cookie.
	signinReq := httptest.NewRequest("POST", "/login", nil)
	signinRec := httptest.NewRecorder()
	if err := auth.SignIn(signinRec, signinReq, user); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := signinRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("SignIn set no cookies")
	}

	// Replay the cookie through LoadSessionUser.
	var got *auth.SessionUser
	handler := auth.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/profile", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("no user loaded from session")
	}
	if got.ID != user.ID || got.Role != user.Role || got.StudentID != user.StudentID {
		t.Errorf("loaded user = %+v, want %+v", got, user)
	}
	if got.Program != "BSIT" || got.YearLevel != "3rd Year" || got.Section != "A" {
		t.Errorf("cohort fields lost: %+v", got)
	}
	if got.Major == nil || *got.Major != major {
		t.Errorf("major = %v, want %q", got.Major, major)
	}
}
