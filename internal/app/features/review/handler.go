// internal/app/features/review/handler.go
package review

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/shared/views"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/policy/reviewpolicy"
	profilestore "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/store/profiles"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/activitylog"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/authz"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/htmlsanitize"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/mailer"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/respond"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/timeouts"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/approval"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Profiles    *profilestore.Store
	ActivityLog *activitylog.Logger
	Mailer      *mailer.Mailer

	SiteName   string
	PortalLink string
}

// NewHandler constructs a review Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, activityLog *activitylog.Logger, m *mailer.Mailer, siteName, portalLink string) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		Profiles:    profilestore.New(db),
		ActivityLog: activityLog,
		Mailer:      m,
		SiteName:    siteName,
		PortalLink:  portalLink,
	}
}

// List handles GET /review. Admins see every profile; presidents see
// the students of their exact cohort, excluding themselves.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor, ok := authz.ActorCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	scope, err := reviewpolicy.ScopeForList(actor)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	q := r.URL.Query()
	filter := profilestore.ListFilter{
		Search: q.Get("search"),
		SortBy: q.Get("sort"),
		Limit:  parseInt64(q.Get("limit"), 50),
		Offset: parseInt64(q.Get("offset"), 0),
	}
	if c := scope.Cohort; c != nil {
		filter.Program = c.Program
		filter.YearLevel = c.YearLevel
		filter.Section = c.Section
		filter.Role = models.RoleStudent
		filter.ExcludeID = c.ExcludeID
		if c.Major != nil {
			filter.Major = c.Major
		} else {
			filter.MajorNone = true
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

type decisionRequest struct {
	Kind    string `json:"kind"`
	Version int64  `json:"version"`
	Reason  string `json:"reason"`
}

// Approve handles POST /review/{id}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// Disapprove handles POST /review/{id}/disapprove.
func (h *Handler) Disapprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

// decide applies one review decision to one artifact. The update is
// conditioned on the version the reviewer saw, so two reviewers racing
// on the same member cannot silently overwrite each other.
func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approved bool) {
	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid member id")
		return
	}
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor, ok := authz.ActorCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	target, err := h.Profiles.GetByID(ctx, targetID)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	if err := reviewpolicy.CanReview(actor, *target); err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	kind := approval.Kind(req.Kind)
	var ch approval.Change
	if approved {
		ch, err = approval.Approve(kind)
	} else {
		ch, err = approval.Disapprove(kind, htmlsanitize.Strict(req.Reason))
	}
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	if err := h.Profiles.ApplyReview(ctx, targetID, req.Version, ch); err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	if approved {
		h.ActivityLog.Approved(ctx, r, actor.ID, targetID, actor.Role, kind)
	} else {
		h.ActivityLog.Disapproved(ctx, r, actor.ID, targetID, actor.Role, kind, *ch.Reason)
	}
	h.notify(*target, kind, approved, ch.Reason)

	updated, err := h.Profiles.GetByID(ctx, targetID)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, views.NewProfile(*updated))
}

// notify emails the member about the decision. Delivery is best effort
// and never fails the request.
func (h *Handler) notify(target models.Profile, kind approval.Kind, approved bool, reason *string) {
	if !h.Mailer.Enabled() || target.Email == "" {
		return
	}

	artifact := "profile picture"
	if kind == approval.KindSignature {
		artifact = "signature"
	}
	data := mailer.DecisionEmailData{
		SiteName:     h.SiteName,
		StudentName:  target.FullName(),
		ArtifactName: artifact,
		Approved:     approved,
		PortalLink:   h.PortalLink,
	}
	if reason != nil {
		data.Reason = *reason
	}

	email := mailer.BuildDecisionEmail(data)
	email.To = target.Email
	if err := h.Mailer.Send(email); err != nil {
		h.Log.Warn("decision email failed",
			zap.String("to", target.Email), zap.Error(err))
	}
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
