// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"

	archivesfeature "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/archives"
	healthfeature "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/health"
	loginfeature "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/login"
	logoutfeature "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/logout"
	profilefeature "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/profile"
	registerfeature "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/register"
	reviewfeature "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/review"
	rosterfeature "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/roster"
	studentsfeature "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/features/students"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/store/activity"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/activitylog"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/artifacts"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/auth"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/mailer"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the portal.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. It initializes the session
// store, builds the shared services (activity logging, artifact
// storage, mail), and mounts one subrouter per feature.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	blobStore, err := artifacts.NewLocalStore(appCfg.StorageLocalPath)
	if err != nil {
		logger.Error("artifact storage init failed", zap.Error(err))
		return nil, err
	}

	activityLog := activitylog.New(
		activity.New(deps.MongoDatabase),
		logger,
		activitylog.Config{
			Auth:   appCfg.ActivityLogAuth,
			Review: appCfg.ActivityLogReview,
			Admin:  appCfg.ActivityLogAdmin,
		},
	)

	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
	}, logger)

	// Artifact URLs are absolute so they survive being copied into
	// archives and email.
	filesBaseURL := strings.TrimRight(appCfg.BaseURL, "/") + appCfg.StorageLocalURL

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged
	// in, making the current user available via auth.CurrentUser(r).
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Stored artifacts, served from local disk
	r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))

	// Authentication
	registerHandler := registerfeature.NewHandler(deps.MongoDatabase, logger, activityLog, blobStore, filesBaseURL)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, logger, activityLog)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(logger, activityLog)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Member self-service: own profile and artifact uploads
	profileHandler := profilefeature.NewHandler(deps.MongoDatabase, logger, activityLog, blobStore, filesBaseURL)
	r.Mount("/profile", profilefeature.Routes(profileHandler))

	// Artifact review for admins and cohort presidents
	reviewHandler := reviewfeature.NewHandler(deps.MongoDatabase, logger, activityLog, mail, appCfg.SiteName, appCfg.BaseURL)
	r.Mount("/review", reviewfeature.Routes(reviewHandler))

	// Admin member management
	studentsHandler := studentsfeature.NewHandler(deps.MongoDatabase, logger, activityLog, blobStore, filesBaseURL)
	r.Mount("/students", studentsfeature.Routes(studentsHandler))

	// Printable cohort rosters
	rosterHandler := rosterfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/roster", rosterfeature.Routes(rosterHandler))

	// Cohort archival
	archivesHandler := archivesfeature.NewHandler(deps.MongoDatabase, logger, activityLog)
	r.Mount("/archives", archivesfeature.Routes(archivesHandler))

	return r, nil
}
