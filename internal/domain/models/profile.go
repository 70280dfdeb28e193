package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a profile can hold. A president is still a member of their own
// cohort; admin is staff and has no cohort of its own.
const (
	RoleStudent   = "student"
	RolePresident = "president"
	RoleAdmin     = "admin"
)

// Review states for an uploaded artifact (picture or signature).
const (
	StatusPending     = "pending"
	StatusApproved    = "approved"
	StatusDisapproved = "disapproved"
)

// Programs offered by the college. BSIT and BSCS split into majors in
// the third and fourth year; the rest never carry a major.
const (
	ProgramBSIT  = "BSIT"
	ProgramBSCS  = "BSCS"
	ProgramBSIS  = "BSIS"
	ProgramBLIS  = "BLIS"
	ProgramBSEMC = "BSEMC"
)

// Profile is a student-body member record. One document per member in
// the "profiles" collection.
type Profile struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	StudentID string             `bson:"student_id"`
	Email     string             `bson:"email"`

	FirstName  string `bson:"first_name"`
	MiddleName string `bson:"middle_name,omitempty"`
	LastName   string `bson:"last_name"`
	SuffixName string `bson:"suffix_name,omitempty"`
	LastNameCI string `bson:"last_name_ci"` // folded for case-insensitive sort

	Program   string  `bson:"program"`
	YearLevel string  `bson:"year_level"`
	Section   string  `bson:"section"`
	Semester  string  `bson:"semester"`
	Major     *string `bson:"major,omitempty"`

	Role         string `bson:"role"`
	PasswordHash string `bson:"password_hash"`

	PictureURL   *string `bson:"picture_url,omitempty"`
	SignatureURL *string `bson:"signature_url,omitempty"`

	PictureStatus              string  `bson:"picture_status"`
	SignatureStatus            string  `bson:"signature_status"`
	PictureDisapprovalReason   *string `bson:"picture_disapproval_reason,omitempty"`
	SignatureDisapprovalReason *string `bson:"signature_disapproval_reason,omitempty"`

	// IsLocked is shared by both artifacts: any approval locks the
	// profile, any disapproval unlocks it. Last reviewer action wins.
	IsLocked bool `bson:"is_locked"`

	// Version increments on every reviewer write so concurrent reviews
	// of the same profile cannot silently overwrite each other.
	Version int64 `bson:"version"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RolePresident, RoleAdmin:
		return true
	}
	return false
}

// IsValidStatus reports whether s is a known artifact review state.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusDisapproved:
		return true
	}
	return false
}

// ErrMajorInvalid is returned when the major field does not agree with
// the program and year level.
var ErrMajorInvalid = errors.New("major is required for 3rd/4th year BSIT and BSCS students and must be absent otherwise")

// MajorRequired reports whether a profile with the given program and
// year level must carry a major.
func MajorRequired(program, yearLevel string) bool {
	if program != ProgramBSIT && program != ProgramBSCS {
		return false
	}
	return yearLevel == "3rd Year" || yearLevel == "4th Year"
}

// ValidateMajor enforces the major rule: major must be present exactly
// when the program/year combination requires one. An empty string does
// not count as a major.
func ValidateMajor(program, yearLevel string, major *string) error {
	has := major != nil && *major != ""
	if MajorRequired(program, yearLevel) != has {
		return ErrMajorInvalid
	}
	return nil
}

// FullName renders the roster form of the name: "Last, First Middle Suffix".
func (p *Profile) FullName() string {
	name := p.LastName + ", " + p.FirstName
	if p.MiddleName != "" {
		name += " " + p.MiddleName
	}
	if p.SuffixName != "" {
		name += " " + p.SuffixName
	}
	return name
}

// CohortLabel renders the group name for a cohort, in the same form
// CourseLine uses for a single member.
func CohortLabel(program, yearLevel, section string, major *string) string {
	line := program + " - " + yearLevel + " " + section
	if major != nil && *major != "" {
		line += " (" + *major + ")"
	}
	return line
}

// CourseLine renders the course description shown on rosters, e.g.
// "BSIT - 3rd Year A" or "BSIT - 3rd Year A (Web Development)".
func (p *Profile) CourseLine() string {
	line := p.Program + " - " + p.YearLevel + " " + p.Section
	if p.Major != nil && *p.Major != "" {
		line += " (" + *p.Major + ")"
	}
	return line
}
