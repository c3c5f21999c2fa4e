package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/types"
	"github.com/glimpse-social/glimpse-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "glimpse", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.Moment{},
		&types.MomentEmbedding{},
		&types.UserEmbedding{},
		&types.InterestProfile{},
		&types.MomentSummary{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	// Cascades: derived rows must not outlive the content they describe.
	constraints := []struct {
		table  string
		name   string
		column string
		ref    string
	}{
		{"moment", "fk_moment_user_id", "user_id", `"user"("id")`},
		{"moment_embedding", "fk_moment_embedding_moment_id", "moment_id", `"moment"("id")`},
		{"user_embedding", "fk_user_embedding_user_id", "user_id", `"user"("id")`},
		{"interest_profile", "fk_interest_profile_user_id", "user_id", `"user"("id")`},
		{"moment_summary", "fk_moment_summary_moment_id", "moment_id", `"moment"("id")`},
	}
	for _, c := range constraints {
		stmt := fmt.Sprintf(`
			ALTER TABLE "%s"
			DROP CONSTRAINT IF EXISTS "%s";
		`, c.table, c.name)
		if err := s.db.Exec(stmt).Error; err != nil {
			s.log.Error("Dropping stale constraint failed", "constraint", c.name, "error", err)
			return err
		}
		stmt = fmt.Sprintf(`
			ALTER TABLE "%s"
			ADD CONSTRAINT "%s"
			FOREIGN KEY ("%s")
			REFERENCES %s
			ON DELETE CASCADE;
		`, c.table, c.name, c.column, c.ref)
		if err := s.db.Exec(stmt).Error; err != nil {
			s.log.Error("Adding cascade constraint failed", "constraint", c.name, "error", err)
			return err
		}
	}
	return nil
}
