// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/activitylog"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/auth"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/respond"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Log         *zap.Logger
	ActivityLog *activitylog.Logger
}

// NewHandler constructs a logout Handler.
func NewHandler(logger *zap.Logger, activityLog *activitylog.Logger) *Handler {
	return &Handler{
		Log:         logger,
		ActivityLog: activityLog,
	}
}

// Logout handles POST /logout. Clearing an absent session is fine.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if u, ok := auth.CurrentUser(r); ok {
		h.ActivityLog.Logout(ctx, r, u.ID)
	}

	if err := auth.SignOut(w, r); err != nil {
		h.Log.Warn("logout: clear session", zap.Error(err))
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
