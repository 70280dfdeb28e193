// internal/app/features/register/handler.go
package register

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/shared/views"
	profilestore "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/store/profiles"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/activitylog"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/artifacts"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/authutil"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/htmlsanitize"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/imagecheck"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/normalize"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/respond"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/timeouts"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/approval"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
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

// NewHandler constructs a register Handler.
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

// Register handles POST /register (multipart form).
//
// Creates a student profile. Both a profile picture and a transparent
// signature are required up front and start out pending review. The
// student ID and email must be unused; the major must agree with the
// program and year level. Blobs are written before the profile row and
// removed again if the row insert fails.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(2*imagecheck.MaxUploadBytes + 4096); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	studentID := normalize.StudentID(r.FormValue("student_id"))
	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	firstName := htmlsanitize.Strict(r.FormValue("first_name"))
	middleName := htmlsanitize.Strict(r.FormValue("middle_name"))
	lastName := htmlsanitize.Strict(r.FormValue("last_name"))
	suffixName := htmlsanitize.Strict(r.FormValue("suffix_name"))
	program := r.FormValue("program")
	yearLevel := r.FormValue("year_level")
	section := r.FormValue("section")
	semester := r.FormValue("semester")

	if studentID == "" || email == "" || firstName == "" || lastName == "" {
		respond.Error(w, http.StatusBadRequest, "student ID, email, first name, and last name are required")
		return
	}
	if program == "" || yearLevel == "" || section == "" || semester == "" {
		respond.Error(w, http.StatusBadRequest, "program, year level, section, and semester are required")
		return
	}
	if err := authutil.ValidatePassword(password); err != nil {
		respond.Error(w, http.StatusBadRequest, authutil.PasswordRules())
		return
	}

	picture, pictureName, err := formImage(r, "picture")
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	signature, signatureName, err := formImage(r, "signature")
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	if err := imagecheck.CheckPicture(picture); err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	if err := imagecheck.CheckSignature(signature); err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.Log.Error("register: hash password", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var major *string
	if m := htmlsanitize.Strict(r.FormValue("major")); m != "" {
		major = &m
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	pictureInfo, err := artifacts.Upload(ctx, h.Storage, approval.KindPicture, studentID, pictureName, bytes.NewReader(picture), int64(len(picture)))
	if err != nil {
		respond.DomainError(w, h.Log, err)
		return
	}
	signatureInfo, err := artifacts.Upload(ctx, h.Storage, approval.KindSignature, studentID, signatureName, bytes.NewReader(signature), int64(len(signature)))
	if err != nil {
		h.cleanupBlob(ctx, pictureInfo.Path)
		respond.DomainError(w, h.Log, err)
		return
	}
	pictureURL := artifacts.PublicURL(h.FilesBaseURL, pictureInfo.Path)
	signatureURL := artifacts.PublicURL(h.FilesBaseURL, signatureInfo.Path)

	p := models.Profile{
		StudentID:    studentID,
		Email:        email,
		FirstName:    firstName,
		MiddleName:   middleName,
		LastName:     lastName,
		SuffixName:   suffixName,
		Program:      program,
		YearLevel:    yearLevel,
		Section:      section,
		Semester:     semester,
		Major:        major,
		Role:         models.RoleStudent,
		PasswordHash: hash,
		PictureURL:   &pictureURL,
		SignatureURL: &signatureURL,
	}

	created, err := h.Profiles.Create(ctx, p)
	if err != nil {
		h.cleanupBlob(ctx, pictureInfo.Path)
		h.cleanupBlob(ctx, signatureInfo.Path)
		respond.DomainError(w, h.Log, err)
		return
	}

	h.ActivityLog.Registered(ctx, r, created.ID, created.StudentID)

	respond.JSON(w, http.StatusCreated, views.NewProfile(created))
}

func (h *Handler) cleanupBlob(ctx context.Context, path string) {
	if err := artifacts.Delete(ctx, h.Storage, path); err != nil {
		h.Log.Warn("register: orphaned blob cleanup failed",
			zap.String("path", path), zap.Error(err))
	}
}

// formImage reads one file part, refusing anything over the upload cap.
func formImage(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
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
