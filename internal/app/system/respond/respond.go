// internal/app/system/respond/respond.go
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/policy/reviewpolicy"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/store/archives"
	profilestore "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/store/profiles"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/imagecheck"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/approval"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// DomainError maps a domain error to its HTTP status and writes it.
// Unknown errors become 500 with a generic message; the caller logs
// the underlying error separately.
func DomainError(w http.ResponseWriter, log *zap.Logger, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	Error(w, status, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return http.StatusNotFound, "not found"
	case errors.Is(err, reviewpolicy.ErrForbidden):
		return http.StatusForbidden, "you are not allowed to perform this action"
	case errors.Is(err, reviewpolicy.ErrLocked):
		return http.StatusForbidden, "profile is locked"
	case errors.Is(err, profilestore.ErrVersionConflict):
		return http.StatusConflict, "profile was changed by another reviewer, reload and try again"
	case errors.Is(err, profilestore.ErrDuplicateStudentID):
		return http.StatusBadRequest, "student ID is already registered"
	case errors.Is(err, profilestore.ErrDuplicateEmail):
		return http.StatusBadRequest, "email is already registered"
	case errors.Is(err, archives.ErrDuplicateArchive):
		return http.StatusBadRequest, "an archive already exists for this group and term"
	case errors.Is(err, archives.ErrEmptyArchive):
		return http.StatusBadRequest, "there are no members to archive"
	case errors.Is(err, approval.ErrReasonRequired):
		return http.StatusBadRequest, "a disapproval reason is required"
	case errors.Is(err, approval.ErrUnknownKind):
		return http.StatusBadRequest, `artifact kind must be "picture" or "signature"`
	case errors.Is(err, profilestore.ErrBadRole):
		return http.StatusBadRequest, "unknown role"
	case errors.Is(err, models.ErrMajorInvalid):
		return http.StatusBadRequest, "major does not match the program and year level"
	case errors.Is(err, imagecheck.ErrTooLarge):
		return http.StatusBadRequest, "file exceeds the 5 MB limit"
	case errors.Is(err, imagecheck.ErrNotPNG):
		return http.StatusBadRequest, "file must be a PNG image"
	case errors.Is(err, imagecheck.ErrNotTransparent):
		return http.StatusBadRequest, "signature must have a transparent background"
	case errors.Is(err, imagecheck.ErrInvalidImage):
		return http.StatusBadRequest, "file is not a valid image"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
