package db

import (
  "fmt"

  "gorm.io/driver/postgres"
  "gorm.io/gorm"

  "github.com/jayp5545/skillbridge-ai/internal/logger"
  "github.com/jayp5545/skillbridge-ai/internal/types"
  "github.com/jayp5545/skillbridge-ai/internal/utils"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  log.Info("Loading environment variables...")
  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "skillbridge", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  log.Info("Connecting to Postgres...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    log.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
  }

  if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    log.Error("Failed to enable uuid-ossp extension", "error", err)
    return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
  }

  return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.User{},
    &types.Course{},
    &types.Activity{},
    &types.TaskCard{},
    &types.QuizQuestion{},
    &types.Certificate{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }

  s.log.Info("Configuring foreign key relationships for postgres tables...")
  constraints := []struct {
    name string
    sql  string
  }{
    {
      name: "fk_course_user_id",
      sql: `ALTER TABLE "course"
            ADD CONSTRAINT "fk_course_user_id"
            FOREIGN KEY ("user_id") REFERENCES "user"("id")
            ON DELETE CASCADE`,
    },
    {
      name: "fk_activity_course_id",
      sql: `ALTER TABLE "activity"
            ADD CONSTRAINT "fk_activity_course_id"
            FOREIGN KEY ("course_id") REFERENCES "course"("id")
            ON DELETE CASCADE`,
    },
    {
      name: "fk_task_card_activity_id",
      sql: `ALTER TABLE "task_card"
            ADD CONSTRAINT "fk_task_card_activity_id"
            FOREIGN KEY ("activity_id") REFERENCES "activity"("id")
            ON DELETE CASCADE`,
    },
    {
      name: "fk_quiz_question_activity_id",
      sql: `ALTER TABLE "quiz_question"
            ADD CONSTRAINT "fk_quiz_question_activity_id"
            FOREIGN KEY ("activity_id") REFERENCES "activity"("id")
            ON DELETE CASCADE`,
    },
  }
  for _, c := range constraints {
    if s.db.Exec(c.sql).Error != nil {
      // Constraint probably exists already; re-running migration is fine.
      s.log.Debug("Skipping existing constraint", "constraint", c.name)
    }
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
