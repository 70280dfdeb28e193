// internal/app/features/students/uploads.go
package students

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/shared/views"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/artifacts"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/authz"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/imagecheck"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/respond"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/timeouts"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/approval"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UploadPicture handles POST /students/{id}/picture.
func (h *Handler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, approval.KindPicture)
}

// UploadSignature handles POST /students/{id}/signature.
func (h *Handler) UploadSignature(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, approval.KindSignature)
}

// upload stores an artifact on a member's behalf. An admin upload goes
// straight to approved; the usual validation still applies. The lock is
// untouched, so the member's edit rights stay as the last review left
// them.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request, kind approval.Kind) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid member id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	target, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	data, filename, err := readUpload(r)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	if kind == approval.KindPicture {
		err = imagecheck.CheckPicture(data)
	} else {
		err = imagecheck.CheckSignature(data)
	}
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	info, err := artifacts.Upload(ctx, h.Storage, kind, target.StudentID, filename, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	url := artifacts.PublicURL(h.FilesBaseURL, info.Path)

	if err := h.Profiles.SetArtifact(ctx, id, kind, url, models.StatusApproved); err != nil {
		if derr := artifacts.Delete(ctx, h.Storage, info.Path); derr != nil {
			h.Log.Warn("admin upload: orphaned blob cleanup failed",
				zap.String("path", info.Path), zap.Error(derr))
		}
		respond.DomainError(w, h.Log, err)
		return
	}

	old := target.PictureURL
	if kind == approval.KindSignature {
		old = target.SignatureURL
	}
	if old != nil {
		if oldPath := artifacts.PathFromURL(h.FilesBaseURL, *old); oldPath != "" {
			if derr := artifacts.Delete(ctx, h.Storage, oldPath); derr != nil {
				h.Log.Warn("admin upload: old blob cleanup failed",
					zap.String("path", oldPath), zap.Error(derr))
			}
		}
	}

	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.ActivityLog.Uploaded(ctx, r, actorID, id, kind)
	}

	updated, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, views.NewProfile(*updated))
}

func readUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(imagecheck.MaxUploadBytes + 1024); err != nil {
		return nil, "", imagecheck.ErrTooLarge
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", imagecheck.ErrInvalidImage
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, imagecheck.MaxUploadBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > imagecheck.MaxUploadBytes {
		return nil, "", imagecheck.ErrTooLarge
	}
	return data, header.Filename, nil
}
