// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/policy/reviewpolicy"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID,
// and a found flag. If no user is present in context or the user ID is
// malformed, it returns "visitor", "", NilObjectID, false. This ensures
// callers can trust that ok=true means a valid, authenticated user with
// a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// ActorCtx builds the review-policy actor from the session user. The
// cohort fields come straight from the session snapshot taken at login.
func ActorCtx(r *http.Request) (reviewpolicy.Actor, bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return reviewpolicy.Actor{}, false
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return reviewpolicy.Actor{}, false
	}
	return reviewpolicy.Actor{
		ID:        id,
		Role:      strings.ToLower(user.Role),
		Program:   user.Program,
		YearLevel: user.YearLevel,
		Section:   user.Section,
		Major:     user.Major,
	}, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// IsPresident reports whether the current request's user is a president.
func IsPresident(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "president"
}

// IsStudent reports whether the current request's user is a student.
func IsStudent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "student"
}

// CanReviewMembers reports whether the user holds a reviewing role.
func CanReviewMembers(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == "admin" || role == "president")
}
