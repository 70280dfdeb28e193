// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging level, environment). AppConfig is everything specific to the
// membership portal: database, sessions, artifact storage, mail, and
// activity logging.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionDomain string // Cookie domain (blank means current host)

	// Artifact storage configuration. Uploaded pictures and signatures
	// land under StorageLocalPath and are served at StorageLocalURL.
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving stored files (e.g., "/files")

	// BaseURL is the externally visible origin, used to build artifact
	// URLs and portal links in notification email.
	BaseURL string

	// SiteName appears in notification email.
	SiteName string

	// Email/SMTP configuration. A blank host disables outgoing mail.
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string

	// Activity logging settings, per category.
	// Values: "all" (db+log), "db", "log", or "off".
	ActivityLogAuth   string
	ActivityLogReview string
	ActivityLogAdmin  string

	// AdminEmail names a profile to promote to admin on startup, so a
	// fresh deployment has at least one reviewer with full access.
	AdminEmail string
}
