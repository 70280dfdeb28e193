// internal/app/features/archives/handler.go
package archives

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/shared/views"
	archivestore "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/store/archives"
	profilestore "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/store/profiles"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/activitylog"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/authz"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/normalize"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/respond"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/term"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/timeouts"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves cohort archival: freezing a group's roster at the end
// of a term and browsing the frozen snapshots later.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Profiles    *profilestore.Store
	Archives    *archivestore.Store
	ActivityLog *activitylog.Logger

	// Now is the clock used for the academic-year label.
	Now func() time.Time
}

// NewHandler constructs an archives Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, activityLog *activitylog.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		Profiles:    profilestore.New(db),
		Archives:    archivestore.New(db),
		ActivityLog: activityLog,
		Now:         time.Now,
	}
}

type createRequest struct {
	Program      string `json:"program"`
	YearLevel    string `json:"year_level"`
	Section      string `json:"section"`
	Major        string `json:"major"`
	Semester     string `json:"semester"`
	AcademicYear string `json:"academic_year"`
}

// Create handles POST /archives. The named cohort's current roster is
// snapshotted member by member; later profile edits or deletions never
// reach the snapshot. An explicit academic_year lets an admin archive a
// prior term; when absent the current term is used.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	program := normalize.Program(req.Program)
	yearLevel := normalize.YearLevel(req.YearLevel)
	section := normalize.Section(req.Section)
	semester := normalize.Semester(req.Semester)
	if program == "" || yearLevel == "" || section == "" || semester == "" {
		respond.Error(w, http.StatusBadRequest, "program, year_level, section, and semester are required")
		return
	}
	var major *string
	if m := normalize.QueryParam(req.Major); m != "" {
		major = &m
	}
	academicYear := normalize.QueryParam(req.AcademicYear)
	if academicYear == "" {
		academicYear = term.AcademicYear(h.Now())
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	members, err := h.Profiles.ListCohort(ctx, program, yearLevel, section, semester, major)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	snapshot := make([]models.ArchivedMember, 0, len(members))
	for _, m := range members {
		snapshot = append(snapshot, models.ArchivedMember{
			StudentID:    m.StudentID,
			FullName:     m.FullName(),
			Course:       m.CourseLine(),
			Email:        m.Email,
			PictureURL:   m.PictureURL,
			SignatureURL: m.SignatureURL,
		})
	}

	created, err := h.Archives.Create(ctx, models.ArchivedGroup{
		GroupName:    models.CohortLabel(program, yearLevel, section, major),
		AcademicYear: academicYear,
		Semester:     semester,
		Members:      snapshot,
	})
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.ActivityLog.ArchiveCreated(ctx, r, actorID, created.ID, created.GroupName)
	}

	respond.JSON(w, http.StatusCreated, views.NewArchive(created))
}

// List handles GET /archives.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q := r.URL.Query()
	filter := archivestore.ListFilter{
		GroupName:    q.Get("group_name"),
		AcademicYear: q.Get("academic_year"),
		Semester:     q.Get("semester"),
		Limit:        parseInt64(q.Get("limit"), 50),
		Offset:       parseInt64(q.Get("offset"), 0),
	}

	groups, err := h.Archives.List(ctx, filter)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	total, err := h.Archives.Count(ctx, filter)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	summaries := make([]views.ArchiveSummary, 0, len(groups))
	for _, g := range groups {
		summaries = append(summaries, views.NewArchiveSummary(g))
	}
	respond.JSON(w, http.StatusOK, views.ArchiveList{
		Archives: summaries,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

// Show handles GET /archives/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid archive id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Archives.GetByID(ctx, id)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, views.NewArchive(g))
}

// Delete handles DELETE /archives/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid archive id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Archives.GetByID(ctx, id)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	if err := h.Archives.Delete(ctx, id); err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.ActivityLog.ArchiveDeleted(ctx, r, actorID, id, g.GroupName)
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func parseInt64(s string, def int64) int64 {
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return def
	}
	return n
}
