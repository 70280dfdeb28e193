// internal/app/features/students/handler.go
package students

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/shared/views"
	profilestore "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/store/profiles"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/activitylog"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/artifacts"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/authz"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/htmlsanitize"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/normalize"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/respond"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/timeouts"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin member-management surface. Everything here
// is behind the admin role; members manage themselves under /profile.
type Handler struct {
	DB           *mongo.Database
	Log          *zap.Logger
	Profiles     *profilestore.Store
	ActivityLog  *activitylog.Logger
	Storage      artifacts.BlobStore
	FilesBaseURL string
}

// NewHandler constructs a students Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, activityLog *activitylog.Logger, store artifacts.BlobStore, filesBaseURL string) *Handler {
	return &Handler{
		DB:           db,
		Log:          logger,
		Profiles:     profilestore.New(db),
		ActivityLog:  activityLog,
		Storage:      store,
		FilesBaseURL: filesBaseURL,
	}
}

// List handles GET /students with cohort filters, search, sort, and
// paging. A major filter of "None" selects members without a major.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q := r.URL.Query()
	filter := profilestore.ListFilter{
		Program:   q.Get("program"),
		YearLevel: q.Get("year_level"),
		Section:   q.Get("section"),
		Semester:  q.Get("semester"),
		Role:      q.Get("role"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sort"),
		SortDesc:  q.Get("desc") == "true",
		Limit:     parseInt64(q.Get("limit"), 50),
		Offset:    parseInt64(q.Get("offset"), 0),
	}
	if major := normalize.MajorFilter(q.Get("major")); major != "" {
		if strings.EqualFold(major, "none") {
			filter.MajorNone = true
		} else {
			filter.Major = &major
		}
	}

	profiles, err := h.Profiles.List(ctx, filter)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	total, err := h.Profiles.Count(ctx, filter)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	respond.JSON(w, http.StatusOK, views.ProfileList{
		Profiles: views.NewProfiles(profiles),
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

// Show handles GET /students/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid member id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, views.NewProfile(*p))
}

type updateRequest struct {
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
	SuffixName string `json:"suffix_name"`
	Email      string `json:"email"`
	Program    string `json:"program"`
	YearLevel  string `json:"year_level"`
	Section    string `json:"section"`
	Semester   string `json:"semester"`
	Major      string `json:"major"`
	Role       string `json:"role"`
}

// Update handles PUT /students/{id}. Unlike self-edit, an admin edit
// ignores the lock and may change the member's role.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid member id")
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	target, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	var major *string
	if m := htmlsanitize.Strict(req.Major); m != "" {
		major = &m
	}
	upd := profilestore.ProfileUpdate{
		FirstName:  htmlsanitize.Strict(req.FirstName),
		MiddleName: htmlsanitize.Strict(req.MiddleName),
		LastName:   htmlsanitize.Strict(req.LastName),
		SuffixName: htmlsanitize.Strict(req.SuffixName),
		Email:      req.Email,
		Program:    req.Program,
		YearLevel:  req.YearLevel,
		Section:    req.Section,
		Semester:   req.Semester,
		Major:      major,
	}
	if upd.FirstName == "" || upd.LastName == "" || upd.Email == "" {
		respond.Error(w, http.StatusBadRequest, "first name, last name, and email are required")
		return
	}

	if err := h.Profiles.Update(ctx, id, upd); err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	if role := normalize.Role(req.Role); role != "" && role != target.Role {
		if err := h.Profiles.SetRole(ctx, id, role); err != nil {
			respond.DomainError(w, h.Log, err)
			return
		}
	}

	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.ActivityLog.MemberUpdated(ctx, r, actorID, id, changedFields(*target, req))
	}

	updated, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, views.NewProfile(*updated))
}

// Delete handles DELETE /students/{id}. Stored artifacts are removed
// best effort after the row is gone.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid member id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	target, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	deleted, err := h.Profiles.Delete(ctx, id)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	if deleted == 0 {
		respond.Error(w, http.StatusNotFound, "not found")
		return
	}

	for _, url := range []*string{target.PictureURL, target.SignatureURL} {
		if url == nil {
			continue
		}
		if path := artifacts.PathFromURL(h.FilesBaseURL, *url); path != "" {
			if derr := artifacts.Delete(ctx, h.Storage, path); derr != nil {
				h.Log.Warn("member delete: blob cleanup failed",
					zap.String("path", path), zap.Error(derr))
			}
		}
	}

	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.ActivityLog.MemberDeleted(ctx, r, actorID, id, target.StudentID)
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// changedFields summarizes which fields an admin edit touched, for the
// activity trail.
func changedFields(before models.Profile, req updateRequest) string {
	var changed []string
	note := func(name, old, new string) {
		if old != new {
			changed = append(changed, name)
		}
	}
	note("first_name", before.FirstName, htmlsanitize.Strict(req.FirstName))
	note("middle_name", before.MiddleName, htmlsanitize.Strict(req.MiddleName))
	note("last_name", before.LastName, htmlsanitize.Strict(req.LastName))
	note("suffix_name", before.SuffixName, htmlsanitize.Strict(req.SuffixName))
	note("email", before.Email, normalize.Email(req.Email))
	note("program", before.Program, normalize.Program(req.Program))
	note("year_level", before.YearLevel, normalize.YearLevel(req.YearLevel))
	note("section", before.Section, normalize.Section(req.Section))
	note("semester", before.Semester, normalize.Semester(req.Semester))
	if role := normalize.Role(req.Role); role != "" {
		note("role", before.Role, role)
	}
	oldMajor := ""
	if before.Major != nil {
		oldMajor = *before.Major
	}
	note("major", oldMajor, htmlsanitize.Strict(req.Major))
	return strings.Join(changed, ",")
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
