package testutil

import (
	"net/http"
	"net/http/httptest"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/auth"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID        string
	Name      string
	StudentID string
	Role      string
	Program   string
	YearLevel string
	Section   string
	Major     *string
}

// AdminUser returns a TestUser with admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:        primitive.NewObjectID().Hex(),
		Name:      "Admin, Test",
		StudentID: "ADMIN-001",
		Role:      "admin",
	}
}

// PresidentUser returns a TestUser with president role in the given cohort.
func PresidentUser(program, yearLevel, section string, major *string) TestUser {
	return TestUser{
		ID:        primitive.NewObjectID().Hex(),
		Name:      "President, Test",
		StudentID: "2021-99999",
		Role:      "president",
		Program:   program,
		YearLevel: yearLevel,
		Section:   section,
		Major:     major,
	}
}

// StudentUser returns a TestUser with student role in the given cohort.
func StudentUser(program, yearLevel, section string, major *string) TestUser {
	return TestUser{
		ID:        primitive.NewObjectID().Hex(),
		Name:      "Student, Test",
		StudentID: "2021-11111",
		Role:      "student",
		Program:   program,
		YearLevel: yearLevel,
		Section:   section,
		Major:     major,
	}
}

// UserForProfile builds a TestUser matching an existing profile, so a
// handler sees the same identity the fixture stored.
func UserForProfile(p models.Profile) TestUser {
	return TestUser{
		ID:        p.ID.Hex(),
		Name:      p.FullName(),
		StudentID: p.StudentID,
		Role:      p.Role,
		Program:   p.Program,
		YearLevel: p.YearLevel,
		Section:   p.Section,
		Major:     p.Major,
	}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		ID:        user.ID,
		Name:      user.Name,
		StudentID: user.StudentID,
		Role:      user.Role,
		Program:   user.Program,
		YearLevel: user.YearLevel,
		Section:   user.Section,
		Major:     user.Major,
	}
	return auth.WithTestUser(r, sessionUser)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	body := r.Body.String()
	if !contains(body, expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 || findSubstring(s, substr))
}

func findSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
