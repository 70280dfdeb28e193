// internal/app/features/profile/uploads.go
package profile

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/shared/views"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/policy/reviewpolicy"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/artifacts"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/imagecheck"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/respond"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/timeouts"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/approval"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	"go.uber.org/zap"
)

// UploadPicture handles POST /profile/picture.
func (h *Handler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, approval.KindPicture)
}

// UploadSignature handles POST /profile/signature.
func (h *Handler) UploadSignature(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, approval.KindSignature)
}

// upload validates and stores a replacement artifact. A locked member
// cannot re-upload; a disapproval clears the lock first. The blob is
// written before the profile row so a failed row update never leaves
// the profile pointing at a missing file. A re-upload always resets
// the artifact to pending and clears any disapproval reason.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request, kind approval.Kind) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
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

	info, err := artifacts.Upload(ctx, h.Storage, kind, p.StudentID, filename, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	url := artifacts.PublicURL(h.FilesBaseURL, info.Path)

	if err := h.Profiles.SetArtifact(ctx, p.ID, kind, url, models.StatusPending); err != nil {
		if derr := artifacts.Delete(ctx, h.Storage, info.Path); derr != nil {
			h.Log.Warn("upload: orphaned blob cleanup failed",
				zap.String("path", info.Path), zap.Error(derr))
		}
		respond.DomainError(w, h.Log, err)
		return
	}

	// Remove the replaced blob. The row already points at the new one,
	// so a failure here only leaks storage.
	old := p.PictureURL
	if kind == approval.KindSignature {
		old = p.SignatureURL
	}
	if old != nil {
		if oldPath := artifacts.PathFromURL(h.FilesBaseURL, *old); oldPath != "" {
			if derr := artifacts.Delete(ctx, h.Storage, oldPath); derr != nil {
				h.Log.Warn("upload: old blob cleanup failed",
					zap.String("path", oldPath), zap.Error(derr))
			}
		}
	}

	h.ActivityLog.Uploaded(ctx, r, p.ID, p.ID, kind)

	updated, err := h.Profiles.GetByID(ctx, p.ID)
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, views.NewProfile(*updated))
}

// readUpload pulls the "file" part out of a multipart form, refusing
// anything over the upload cap.
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
