// internal/app/system/activitylog/logger.go
package activitylog

import (
	"context"
	"net/http"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/store/activity"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/approval"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds activity logging configuration.
type Config struct {
	// Auth controls logging for authentication events (register, login, logout).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Review controls logging for uploads and approval decisions.
	Review string
	// Admin controls logging for member edits, deletions, and archives.
	Admin string
}

// Logger provides convenience methods for recording activity events.
// It logs to both MongoDB (via activity.Store) and structured logs (via zap).
type Logger struct {
	store  *activity.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new activity Logger.
func New(store *activity.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event activity.Event) {
	fields := []zap.Field{
		zap.Bool("activity", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.TargetID != nil {
		fields = append(fields, zap.String("target_id", event.TargetID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("activity event", fields...)
	} else {
		l.zapLog.Warn("activity event", fields...)
	}
}

// Log records an activity event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event activity.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case activity.CategoryAuth:
		setting = l.config.Auth
	case activity.CategoryReview:
		setting = l.config.Review
	case activity.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store activity event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// Registered logs a successful registration.
func (l *Logger) Registered(ctx context.Context, r *http.Request, profileID primitive.ObjectID, studentID string) {
	l.Log(ctx, activity.Event{
		Category:  activity.CategoryAuth,
		EventType: activity.EventRegistered,
		TargetID:  &profileID,
		IP:        getClientIP(r),
		Success:   true,
		Details: map[string]string{
			"student_id": studentID,
		},
	})
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, profileID primitive.ObjectID, studentID string) {
	l.Log(ctx, activity.Event{
		Category:  activity.CategoryAuth,
		EventType: activity.EventLoginSuccess,
		TargetID:  &profileID,
		IP:        getClientIP(r),
		Success:   true,
		Details: map[string]string{
			"student_id": studentID,
		},
	})
}

// LoginFailedNotFound logs a failed login for an unknown student number.
func (l *Logger) LoginFailedNotFound(ctx context.Context, r *http.Request, attemptedStudentID string) {
	l.Log(ctx, activity.Event{
		Category:      activity.CategoryAuth,
		EventType:     activity.EventLoginFailedNotFound,
		IP:            getClientIP(r),
		Success:       false,
		FailureReason: "student not found",
		Details: map[string]string{
			"attempted_student_id": attemptedStudentID,
		},
	})
}

// LoginFailedWrongPassword logs a failed login due to wrong password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, profileID primitive.ObjectID, studentID string) {
	l.Log(ctx, activity.Event{
		Category:      activity.CategoryAuth,
		EventType:     activity.EventLoginFailedWrongPassword,
		TargetID:      &profileID,
		IP:            getClientIP(r),
		Success:       false,
		FailureReason: "wrong password",
		Details: map[string]string{
			"student_id": studentID,
		},
	})
}

// Logout logs a logout. Accepts the string ID carried in the session.
func (l *Logger) Logout(ctx context.Context, r *http.Request, profileIDStr string) {
	var profileID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(profileIDStr); err == nil {
		profileID = &oid
	}

	l.Log(ctx, activity.Event{
		Category:  activity.CategoryAuth,
		EventType: activity.EventLogout,
		TargetID:  profileID,
		IP:        getClientIP(r),
		Success:   true,
	})
}

// --- Review Events ---

func uploadEventType(kind approval.Kind) string {
	if kind == approval.KindSignature {
		return activity.EventSignatureUploaded
	}
	return activity.EventPictureUploaded
}

func decisionEventType(kind approval.Kind, approved bool) string {
	switch {
	case kind == approval.KindSignature && approved:
		return activity.EventSignatureApproved
	case kind == approval.KindSignature:
		return activity.EventSignatureDisapproved
	case approved:
		return activity.EventPictureApproved
	default:
		return activity.EventPictureDisapproved
	}
}

// Uploaded logs an artifact upload by the profile owner or an admin.
func (l *Logger) Uploaded(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID, kind approval.Kind) {
	l.Log(ctx, activity.Event{
		Category:  activity.CategoryReview,
		EventType: uploadEventType(kind),
		TargetID:  &targetID,
		ActorID:   &actorID,
		IP:        getClientIP(r),
		Success:   true,
	})
}

// Approved logs an approval decision.
func (l *Logger) Approved(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID, actorRole string, kind approval.Kind) {
	l.Log(ctx, activity.Event{
		Category:  activity.CategoryReview,
		EventType: decisionEventType(kind, true),
		TargetID:  &targetID,
		ActorID:   &actorID,
		IP:        getClientIP(r),
		Success:   true,
		Details: map[string]string{
			"actor_role": actorRole,
		},
	})
}

// Disapproved logs a disapproval decision with its reason.
func (l *Logger) Disapproved(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID, actorRole string, kind approval.Kind, reason string) {
	l.Log(ctx, activity.Event{
		Category:  activity.CategoryReview,
		EventType: decisionEventType(kind, false),
		TargetID:  &targetID,
		ActorID:   &actorID,
		IP:        getClientIP(r),
		Success:   true,
		Details: map[string]string{
			"actor_role": actorRole,
			"reason":     reason,
		},
	})
}

// --- Admin Events ---

// MemberUpdated logs when an admin edits a member profile.
func (l *Logger) MemberUpdated(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID, fieldsChanged string) {
	l.Log(ctx, activity.Event{
		Category:  activity.CategoryAdmin,
		EventType: activity.EventMemberUpdated,
		TargetID:  &targetID,
		ActorID:   &actorID,
		IP:        getClientIP(r),
		Success:   true,
		Details: map[string]string{
			"fields_changed": fieldsChanged,
		},
	})
}

// MemberDeleted logs when an admin deletes a member profile.
func (l *Logger) MemberDeleted(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID, studentID string) {
	l.Log(ctx, activity.Event{
		Category:  activity.CategoryAdmin,
		EventType: activity.EventMemberDeleted,
		TargetID:  &targetID,
		ActorID:   &actorID,
		IP:        getClientIP(r),
		Success:   true,
		Details: map[string]string{
			"student_id": studentID,
		},
	})
}

// ArchiveCreated logs when a cohort snapshot is archived.
func (l *Logger) ArchiveCreated(ctx context.Context, r *http.Request, actorID, archiveID primitive.ObjectID, groupName string) {
	l.Log(ctx, activity.Event{
		Category:  activity.CategoryAdmin,
		EventType: activity.EventArchiveCreated,
		ActorID:   &actorID,
		IP:        getClientIP(r),
		Success:   true,
		Details: map[string]string{
			"archive_id": archiveID.Hex(),
			"group_name": groupName,
		},
	})
}

// ArchiveDeleted logs when an archived snapshot is removed.
func (l *Logger) ArchiveDeleted(ctx context.Context, r *http.Request, actorID, archiveID primitive.ObjectID, groupName string) {
	l.Log(ctx, activity.Event{
		Category:  activity.CategoryAdmin,
		EventType: activity.EventArchiveDeleted,
		ActorID:   &actorID,
		IP:        getClientIP(r),
		Success:   true,
		Details: map[string]string{
			"archive_id": archiveID.Hex(),
			"group_name": groupName,
		},
	})
}
