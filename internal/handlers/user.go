package handlers

import (
  "net/http"
  "strconv"
  "time"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/jayp5545/skillbridge-ai/internal/requestdata"
  "github.com/jayp5545/skillbridge-ai/internal/services"
)

type UserHandler struct {
  userService        services.UserService
  progressionService services.ProgressionService
}

func NewUserHandler(userService services.UserService, progressionService services.ProgressionService) *UserHandler {
  return &UserHandler{userService: userService, progressionService: progressionService}
}

// currentUserID pulls the authenticated user out of the request context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return uuid.Nil, false
  }
  return rd.UserID, true
}

func (uh *UserHandler) GetMe(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  // Opening the app is the moment a stale streak becomes visible, so expire
  // it before reading the profile.
  if err := uh.progressionService.ResetStaleStreak(c.Request.Context(), userID, time.Now()); err != nil {
    RespondAppError(c, err)
    return
  }
  user, err := uh.userService.GetMe(c.Request.Context(), userID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, user)
}

func (uh *UserHandler) Leaderboard(c *gin.Context) {
  limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
  entries, err := uh.userService.Leaderboard(c.Request.Context(), limit)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"leaderboard": entries})
}
