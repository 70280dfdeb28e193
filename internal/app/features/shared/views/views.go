// internal/app/features/shared/views/views.go
package views

import (
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
)

// Profile is the JSON shape of a member profile returned by the API.
// The password hash and internal sort key never leave the server.
type Profile struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Email     string `json:"email"`

	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name"`
	SuffixName string `json:"suffix_name,omitempty"`
	FullName   string `json:"full_name"`

	Program   string  `json:"program"`
	YearLevel string  `json:"year_level"`
	Section   string  `json:"section"`
	Semester  string  `json:"semester"`
	Major     *string `json:"major"`
	Course    string  `json:"course"`

	Role string `json:"role"`

	PictureURL   *string `json:"picture_url"`
	SignatureURL *string `json:"signature_url"`

	PictureStatus              string  `json:"picture_status"`
	SignatureStatus            string  `json:"signature_status"`
	PictureDisapprovalReason   *string `json:"picture_disapproval_reason"`
	SignatureDisapprovalReason *string `json:"signature_disapproval_reason"`

	IsLocked bool  `json:"is_locked"`
	Version  int64 `json:"version"`
}

// NewProfile builds the API view of a profile.
func NewProfile(p models.Profile) Profile {
	return Profile{
		ID:         p.ID.Hex(),
		StudentID:  p.StudentID,
		Email:      p.Email,
		FirstName:  p.FirstName,
		MiddleName: p.MiddleName,
		LastName:   p.LastName,
		SuffixName: p.SuffixName,
		FullName:   p.FullName(),
		Program:    p.Program,
		YearLevel:  p.YearLevel,
		Section:    p.Section,
		Semester:   p.Semester,
		Major:      p.Major,
		Course:     p.CourseLine(),
		Role:       p.Role,

		PictureURL:   p.PictureURL,
		SignatureURL: p.SignatureURL,

		PictureStatus:              p.PictureStatus,
		SignatureStatus:            p.SignatureStatus,
		PictureDisapprovalReason:   p.PictureDisapprovalReason,
		SignatureDisapprovalReason: p.SignatureDisapprovalReason,

		IsLocked: p.IsLocked,
		Version:  p.Version,
	}
}

// NewProfiles maps a slice of profiles to their API views.
func NewProfiles(ps []models.Profile) []Profile {
	out := make([]Profile, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewProfile(p))
	}
	return out
}

// ProfileList is a paged listing response.
type ProfileList struct {
	Profiles []Profile `json:"profiles"`
	Total    int64     `json:"total"`
	Limit    int64     `json:"limit"`
	Offset   int64     `json:"offset"`
}

// ArchiveSummary is one row in the archive listing; members are only
// loaded for the detail view.
type ArchiveSummary struct {
	ID             string `json:"id"`
	GroupName      string `json:"group_name"`
	AcademicYear   string `json:"academic_year"`
	Semester       string `json:"semester"`
	MemberCount    int    `json:"member_count"`
	GenerationDate string `json:"generation_date"`
}

// NewArchiveSummary builds the listing row for an archived group.
func NewArchiveSummary(g models.ArchivedGroup) ArchiveSummary {
	return ArchiveSummary{
		ID:             g.ID.Hex(),
		GroupName:      g.GroupName,
		AcademicYear:   g.AcademicYear,
		Semester:       g.Semester,
		MemberCount:    len(g.Members),
		GenerationDate: g.GenerationDate,
	}
}

// Archive is the full snapshot view, member rows included.
type Archive struct {
	ArchiveSummary
	Members []RosterMember `json:"members"`
}

// NewArchive builds the detail view of an archived group.
func NewArchive(g models.ArchivedGroup) Archive {
	members := make([]RosterMember, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, RosterMember{
			StudentID:    m.StudentID,
			FullName:     m.FullName,
			Course:       m.Course,
			Email:        m.Email,
			PictureURL:   m.PictureURL,
			SignatureURL: m.SignatureURL,
		})
	}
	return Archive{
		ArchiveSummary: NewArchiveSummary(g),
		Members:        members,
	}
}

// ArchiveList is a paged archive listing response.
type ArchiveList struct {
	Archives []ArchiveSummary `json:"archives"`
	Total    int64            `json:"total"`
	Limit    int64            `json:"limit"`
	Offset   int64            `json:"offset"`
}

// Roster is a printable cohort roster.
type Roster struct {
	GroupName    string         `json:"group_name"`
	AcademicYear string         `json:"academic_year"`
	Semester     string         `json:"semester,omitempty"`
	GeneratedOn  string         `json:"generated_on"`
	Members      []RosterMember `json:"members"`
}

// CohortGroup is one distinct cohort available for roster printing or
// archival.
type CohortGroup struct {
	GroupName string  `json:"group_name"`
	Program   string  `json:"program"`
	YearLevel string  `json:"year_level"`
	Section   string  `json:"section"`
	Major     *string `json:"major,omitempty"`
	Semester  string  `json:"semester,omitempty"`
	Members   int64   `json:"members"`
}

// CohortGroupList wraps the distinct-cohort listing.
type CohortGroupList struct {
	Groups []CohortGroup `json:"groups"`
}

// RosterMember is one row on a printable roster.
type RosterMember struct {
	StudentID    string  `json:"student_id"`
	FullName     string  `json:"full_name"`
	Course       string  `json:"course"`
	Email        string  `json:"email"`
	PictureURL   *string `json:"picture_url"`
	SignatureURL *string `json:"signature_url"`
}

// NewRosterMember builds the roster row for a profile.
func NewRosterMember(p models.Profile) RosterMember {
	return RosterMember{
		StudentID:    p.StudentID,
		FullName:     p.FullName(),
		Course:       p.CourseLine(),
		Email:        p.Email,
		PictureURL:   p.PictureURL,
		SignatureURL: p.SignatureURL,
	}
}
