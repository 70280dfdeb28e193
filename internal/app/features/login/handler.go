// internal/app/features/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/shared/views"
	profilestore "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/store/profiles"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/activitylog"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/auth"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/authutil"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/normalize"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/respond"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Profiles    *profilestore.Store
	ActivityLog *activitylog.Logger
}

// NewHandler constructs a login Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, activityLog *activitylog.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		Profiles:    profilestore.New(db),
		ActivityLog: activityLog,
	}
}

type loginRequest struct {
	StudentID string `json:"student_id"`
	Password  string `json:"password"`
}

// Login handles POST /login.
//
// Students sign in with their student ID and password. Wrong ID and
// wrong password get the same client-facing message.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	studentID := normalize.StudentID(req.StudentID)
	if studentID == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "student ID and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByStudentID(ctx, studentID)
	if err == mongo.ErrNoDocuments {
		h.ActivityLog.LoginFailedNotFound(ctx, r, studentID)
		respond.Error(w, http.StatusUnauthorized, "invalid student ID or password")
		return
	}
	if err != nil {
		h.Log.Error("login: lookup profile", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !authutil.CheckPassword(req.Password, p.PasswordHash) {
		h.ActivityLog.LoginFailedWrongPassword(ctx, r, p.ID, p.StudentID)
		respond.Error(w, http.StatusUnauthorized, "invalid student ID or password")
		return
	}

	u := &auth.SessionUser{
		ID:        p.ID.Hex(),
		Name:      p.FullName(),
		StudentID: p.StudentID,
		Role:      p.Role,
		Program:   p.Program,
		YearLevel: p.YearLevel,
		Section:   p.Section,
		Major:     p.Major,
	}
	if err := auth.SignIn(w, r, u); err != nil {
		h.Log.Error("login: write session", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.ActivityLog.LoginSuccess(ctx, r, p.ID, p.StudentID)

	respond.JSON(w, http.StatusOK, views.NewProfile(*p))
}
