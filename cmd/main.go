package main

import (
  "fmt"
  "os"
  "strings"
  "time"

  "github.com/joho/godotenv"

  "github.com/jayp5545/skillbridge-ai/internal/clients/redis"
  "github.com/jayp5545/skillbridge-ai/internal/db"
  "github.com/jayp5545/skillbridge-ai/internal/handlers"
  "github.com/jayp5545/skillbridge-ai/internal/logger"
  "github.com/jayp5545/skillbridge-ai/internal/middleware"
  "github.com/jayp5545/skillbridge-ai/internal/repos"
  "github.com/jayp5545/skillbridge-ai/internal/server"
  "github.com/jayp5545/skillbridge-ai/internal/services"
  "github.com/jayp5545/skillbridge-ai/internal/utils"
)

func main() {
  _ = godotenv.Load()

  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  allowOrigins := strings.Split(utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000", log), ",")
  port := utils.GetEnv("PORT", "8080", log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  courseRepo := repos.NewCourseRepo(thePG, log)
  activityRepo := repos.NewActivityRepo(thePG, log)
  taskCardRepo := repos.NewTaskCardRepo(thePG, log)
  quizQuestionRepo := repos.NewQuizQuestionRepo(thePG, log)
  certificateRepo := repos.NewCertificateRepo(thePG, log)

  // Redis lock (optional: without it generation dedup is in-process only)
  locker, err := redis.NewLocker(log)
  if err != nil {
    log.Warn("Redis locker init failed, generation locks are process-local", "error", err)
    locker = nil
  } else {
    defer locker.Close()
  }

  // Services
  log.Info("Setting up Services from main...")
  openaiClient, err := services.NewOpenAIClient(log)
  if err != nil {
    log.Error("Could not init OpenAIClient", "error", err)
    os.Exit(1)
  }
  generator := services.NewContentGenerator(log, openaiClient)
  notifier := services.NewNotificationScheduler(log, services.NewLogSink(log))
  defer notifier.Stop()

  authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
  userService := services.NewUserService(thePG, log, userRepo)
  courseService := services.NewCourseService(thePG, log, userRepo, courseRepo, activityRepo, certificateRepo)
  courseGenService := services.NewCourseGenerationService(thePG, log, userRepo, courseRepo, activityRepo, generator, notifier)
  contentService := services.NewContentService(thePG, log, courseRepo, activityRepo, taskCardRepo, quizQuestionRepo, generator, locker)
  progressionService := services.NewProgressionService(thePG, log, userRepo, courseRepo, activityRepo, taskCardRepo, quizQuestionRepo, certificateRepo, notifier)

  // Handlers
  log.Info("Setting up Handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  userHandler := handlers.NewUserHandler(userService, progressionService)
  courseHandler := handlers.NewCourseHandler(courseService, courseGenService)
  activityHandler := handlers.NewActivityHandler(contentService, progressionService)
  certificateHandler := handlers.NewCertificateHandler(courseService)
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:        authHandler,
    AuthMiddleware:     authMiddleware,
    UserHandler:        userHandler,
    CourseHandler:      courseHandler,
    ActivityHandler:    activityHandler,
    CertificateHandler: certificateHandler,
    AllowOrigins:       allowOrigins,
  })

  log.Info("Starting server", "port", port)
  if err := router.Run(":" + port); err != nil {
    log.Error("Server stopped", "error", err)
    os.Exit(1)
  }
}
