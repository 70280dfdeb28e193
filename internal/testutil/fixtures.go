package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateProfile inserts a test profile in the given cohort with both
// artifacts pending. Returns the stored profile.
func (f *Fixtures) CreateProfile(ctx context.Context, role, program, yearLevel, section string, major *string) models.Profile {
	f.t.Helper()

	now := time.Now().UTC()
	id := primitive.NewObjectID()
	p := models.Profile{
		ID:              id,
		StudentID:       "2021-" + id.Hex()[18:],
		Email:           id.Hex() + "@test.edu",
		FirstName:       "Test",
		LastName:        "Member",
		LastNameCI:      text.Fold("Member"),
		Program:         program,
		YearLevel:       yearLevel,
		Section:         section,
		Semester:        "1st Semester",
		Major:           major,
		Role:            role,
		PictureStatus:   models.StatusPending,
		SignatureStatus: models.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := f.db.Collection("profiles").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}

// LockProfile marks a profile locked, as an approval would.
func LockProfile(ctx context.Context, db *mongo.Database, id primitive.ObjectID) error {
	_, err := db.Collection("profiles").UpdateByID(ctx, id,
		bson.M{"$set": bson.M{"is_locked": true}})
	return err
}

// CreateStudent inserts a student profile in the given cohort.
func (f *Fixtures) CreateStudent(ctx context.Context, program, yearLevel, section string, major *string) models.Profile {
	f.t.Helper()
	return f.CreateProfile(ctx, models.RoleStudent, program, yearLevel, section, major)
}

// CreatePresident inserts a president profile in the given cohort.
func (f *Fixtures) CreatePresident(ctx context.Context, program, yearLevel, section string, major *string) models.Profile {
	f.t.Helper()
	return f.CreateProfile(ctx, models.RolePresident, program, yearLevel, section, major)
}

// CreateAdmin inserts an admin profile. Admins carry no cohort.
func (f *Fixtures) CreateAdmin(ctx context.Context) models.Profile {
	f.t.Helper()
	return f.CreateProfile(ctx, models.RoleAdmin, "", "", "", nil)
}
