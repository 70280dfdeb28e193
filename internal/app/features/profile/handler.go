// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/shared/views"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/policy/reviewpolicy"
	profilestore "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/store/profiles"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/activitylog"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/artifacts"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/auth"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/htmlsanitize"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/respond"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/timeouts"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB           *mongo.Database
	Log          *zap.Logger
	Profiles     *profilestore.Store
	ActivityLog  *activitylog.Logger
	Storage      artifacts.BlobStore
	FilesBaseURL string
}

// NewHandler constructs a profile Handler.
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

var errUnauthorized = errors.New("unauthorized")

// currentProfile loads the signed-in user's profile.
func (h *Handler) currentProfile(ctx context.Context, r *http.Request) (*models.Profile, error) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return nil, errUnauthorized
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return nil, errUnauthorized
	}
	p, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Show handles GET /profile.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.currentProfile(ctx, r)
	if err != nil {
		h.respondErr(w, err)
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
}

// Update handles PUT /profile.
//
// A locked profile (any artifact approved) cannot be self-edited; the
// member must go through an officer.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.currentProfile(ctx, r)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if err := reviewpolicy.CanSelfEdit(*p); err != nil {
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

	if err := h.Profiles.Update(ctx, p.ID, upd); err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	updated, err := h.Profiles.GetByID(ctx, p.ID)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, views.NewProfile(*updated))
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	if err == errUnauthorized {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	respond.DomainError(w, h.Log, err)
}
