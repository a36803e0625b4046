package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/jayp5545/skillbridge-ai/internal/handlers"
  "github.com/jayp5545/skillbridge-ai/internal/middleware"
)

type RouterConfig struct {
  AuthHandler        *handlers.AuthHandler
  AuthMiddleware     *middleware.AuthMiddleware
  UserHandler        *handlers.UserHandler
  CourseHandler      *handlers.CourseHandler
  ActivityHandler    *handlers.ActivityHandler
  CertificateHandler *handlers.CertificateHandler
  AllowOrigins       []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins:     cfg.AllowOrigins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  api := router.Group("/api")
  {
    api.POST("/register", cfg.AuthHandler.Register)
    api.POST("/login", cfg.AuthHandler.Login)
  }

// ===============
// || Protected ||
// ===============
  protected := router.Group("/api")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // User
  protected.GET("/user", cfg.UserHandler.GetMe)
  protected.GET("/leaderboard", cfg.UserHandler.Leaderboard)
  // Courses
  protected.POST("/courses", cfg.CourseHandler.Generate)
  protected.GET("/courses", cfg.CourseHandler.List)
  protected.GET("/courses/resume", cfg.CourseHandler.Resume)
  protected.GET("/courses/:courseID", cfg.CourseHandler.Get)
  // Activities
  protected.GET("/activities/:activityID/cards", cfg.ActivityHandler.GetTaskCards)
  protected.POST("/activities/:activityID/cards/complete", cfg.ActivityHandler.CompleteTaskCard)
  protected.POST("/activities/:activityID/task/complete", cfg.ActivityHandler.CompleteTask)
  protected.GET("/activities/:activityID/quiz", cfg.ActivityHandler.GetQuizQuestions)
  protected.POST("/activities/:activityID/quiz/answer", cfg.ActivityHandler.AnswerQuizQuestion)
  protected.POST("/activities/:activityID/quiz/complete", cfg.ActivityHandler.CompleteQuiz)
  protected.POST("/activities/:activityID/complete", cfg.ActivityHandler.CompleteActivity)
  // Certificates
  protected.GET("/certificates", cfg.CertificateHandler.List)

  return router
}
