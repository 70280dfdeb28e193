// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	profilestore "github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/store/profiles"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/timeouts"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("handler timeouts configured from environment", zap.Int("overrides", n))
	}

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureAdmin promotes the profile with the given email to admin. A
// missing profile is only logged: the member may simply not have
// registered yet.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	profiles := profilestore.New(deps.MongoDatabase)

	p, err := profiles.GetByEmail(ctx, email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			logger.Warn("admin profile not found; register it and restart to promote",
				zap.String("email", email))
			return nil
		}
		return err
	}
	if p.Role == models.RoleAdmin {
		return nil
	}

	if err := profiles.SetRole(ctx, p.ID, models.RoleAdmin); err != nil {
		return err
	}
	logger.Info("promoted profile to admin",
		zap.String("email", email),
		zap.String("student_id", p.StudentID))
	return nil
}
