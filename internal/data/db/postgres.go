package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/sahanw/arogya-backend/internal/domain/assessment"
	"github.com/sahanw/arogya-backend/internal/domain/participant"
	"github.com/sahanw/arogya-backend/internal/platform/env"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewService opens the configured database. DB_DRIVER=sqlite gives a local
// file-backed store for offline batch runs; anything else means Postgres.
func NewService(logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DBService")

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	driver := strings.ToLower(env.GetEnv("DB_DRIVER", "postgres", logg))
	if driver == "sqlite" {
		path := env.GetEnv("SQLITE_PATH", "arogya.db", logg)
		conn, err := gorm.Open(sqlite.Open(path), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite at %s: %w", path, err)
		}
		return &Service{db: conn, log: serviceLog}, nil
	}

	host := env.GetEnv("POSTGRES_HOST", "localhost", logg)
	port := env.GetEnv("POSTGRES_PORT", "5432", logg)
	user := env.GetEnv("POSTGRES_USER", "postgres", logg)
	password := env.GetEnv("POSTGRES_PASSWORD", "", logg)
	name := env.GetEnv("POSTGRES_NAME", "arogya", logg)

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, name,
	)

	conn, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := conn.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &Service{db: conn, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

// Migrate keeps the schema in step with the domain records.
func (s *Service) Migrate() error {
	return s.db.AutoMigrate(
		&participant.Participant{},
		&assessment.Record{},
		&assessment.PlanRecord{},
	)
}
