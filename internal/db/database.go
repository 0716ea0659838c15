package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
	"github.com/ECE496-Team-DASH/DashRAG/internal/types"
	"github.com/ECE496-Team-DASH/DashRAG/internal/utils"
)

type DatabaseService struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

// NewDatabaseService opens the relational store. DB_DRIVER selects postgres
// (default) or sqlite for local development.
func NewDatabaseService(log *logger.Logger) (*DatabaseService, error) {
	serviceLog := log.With("service", "DatabaseService")
	driver := strings.ToLower(utils.GetEnv("DB_DRIVER", "postgres", log))

	var (
		gormDB *gorm.DB
		err    error
	)
	switch driver {
	case "sqlite":
		path := utils.GetEnv("SQLITE_PATH", "./dashrag.db", log)
		serviceLog.Info("Connecting to sqlite...", "path", path)
		gormDB, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	default:
		driver = "postgres"
		host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		port := utils.GetEnv("POSTGRES_PORT", "5432", log)
		user := utils.GetEnv("POSTGRES_USER", "postgres", log)
		password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		name := utils.GetEnv("POSTGRES_NAME", "dashrag", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		serviceLog.Info("Connecting to Postgres...", "host", host, "db", name)
		gormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
	}
	if err != nil {
		serviceLog.Error("Failed to connect to database", "driver", driver, "error", err)
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	return &DatabaseService{db: gormDB, driver: driver, log: serviceLog}, nil
}

func (s *DatabaseService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.Session{},
		&types.Document{},
		&types.Message{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if s.driver != "postgres" {
		return nil
	}
	s.log.Info("Configuring foreign key relationships...")
	for _, stmt := range []string{
		`ALTER TABLE "document" DROP CONSTRAINT IF EXISTS "fk_document_session_id";
		 ALTER TABLE "document" ADD CONSTRAINT "fk_document_session_id"
		 FOREIGN KEY ("session_id") REFERENCES "session"("id") ON DELETE CASCADE`,
		`ALTER TABLE "message" DROP CONSTRAINT IF EXISTS "fk_message_session_id";
		 ALTER TABLE "message" ADD CONSTRAINT "fk_message_session_id"
		 FOREIGN KEY ("session_id") REFERENCES "session"("id") ON DELETE CASCADE`,
	} {
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add foreign key constraint: %w", err)
		}
	}
	return nil
}

func (s *DatabaseService) DB() *gorm.DB {
	return s.db
}
