// internal/app/features/roster/handler.go
package roster

import (
	"context"
	"net/http"
	"time"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/shared/views"
	profilestore "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/store/profiles"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/auth"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/authz"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/normalize"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/respond"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/term"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/timeouts"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Profiles *profilestore.Store

	// Now is the clock used for the academic-year label.
	Now func() time.Time
}

// NewHandler constructs a roster Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Profiles: profilestore.New(db),
		Now:      time.Now,
	}
}

// Show handles GET /roster. An admin names any cohort through query
// parameters; a president always gets their own cohort regardless of
// what the query says.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var program, yearLevel, section string
	var major *string
	switch {
	case authz.IsPresident(r):
		program, yearLevel, section, major = u.Program, u.YearLevel, u.Section, u.Major
	case authz.IsAdmin(r):
		q := r.URL.Query()
		program = normalize.Program(q.Get("program"))
		yearLevel = normalize.YearLevel(q.Get("year_level"))
		section = normalize.Section(q.Get("section"))
		if m := normalize.MajorFilter(q.Get("major")); m != "" {
			major = &m
		}
	default:
		respond.Error(w, http.StatusForbidden, "you are not allowed to perform this action")
		return
	}
	if program == "" || yearLevel == "" || section == "" {
		respond.Error(w, http.StatusBadRequest, "program, year_level, and section are required")
		return
	}

	semester := normalize.Semester(r.URL.Query().Get("semester"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	members, err := h.Profiles.ListCohort(ctx, program, yearLevel, section, semester, major)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	rows := make([]views.RosterMember, 0, len(members))
	for _, m := range members {
		rows = append(rows, views.NewRosterMember(m))
	}

	now := h.Now()
	respond.JSON(w, http.StatusOK, views.Roster{
		GroupName:    models.CohortLabel(program, yearLevel, section, major),
		AcademicYear: term.AcademicYear(now),
		Semester:     semester,
		GeneratedOn:  now.Format("January 2, 2006"),
		Members:      rows,
	})
}

// Groups handles GET /roster/groups. It enumerates the distinct cohorts
// present in the member collection so an admin can pick one to print or
// archive.
func (h *Handler) Groups(w http.ResponseWriter, r *http.Request) {
	if !authz.CanReviewMembers(r) {
		respond.Error(w, http.StatusForbidden, "you are not allowed to perform this action")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	groups, err := h.Profiles.ListCohortGroups(ctx)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	out := make([]views.CohortGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, views.CohortGroup{
			GroupName: models.CohortLabel(g.Program, g.YearLevel, g.Section, g.Major),
			Program:   g.Program,
			YearLevel: g.YearLevel,
			Section:   g.Section,
			Major:     g.Major,
			Semester:  g.Semester,
			Members:   g.Members,
		})
	}
	respond.JSON(w, http.StatusOK, views.CohortGroupList{Groups: out})
}
