package handlers

import (
  "net/http"
  "time"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/jayp5545/skillbridge-ai/internal/services"
)

type ActivityHandler struct {
  contentService     services.ContentService
  progressionService services.ProgressionService
}

func NewActivityHandler(contentService services.ContentService, progressionService services.ProgressionService) *ActivityHandler {
  return &ActivityHandler{contentService: contentService, progressionService: progressionService}
}

func activityID(c *gin.Context) (uuid.UUID, bool) {
  id, err := uuid.Parse(c.Param("activityID"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
    return uuid.Nil, false
  }
  return id, true
}

// GetTaskCards returns the activity's cards, generating them on first open.
func (ah *ActivityHandler) GetTaskCards(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  id, ok := activityID(c)
  if !ok {
    return
  }
  cards, err := ah.contentService.EnsureTaskCards(c.Request.Context(), userID, id)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"task_cards": cards})
}

func (ah *ActivityHandler) GetQuizQuestions(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  id, ok := activityID(c)
  if !ok {
    return
  }
  questions, err := ah.contentService.EnsureQuizQuestions(c.Request.Context(), userID, id)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"quiz_questions": questions})
}

func (ah *ActivityHandler) CompleteTaskCard(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  id, ok := activityID(c)
  if !ok {
    return
  }
  var req struct {
    CardIndex int `json:"card_index"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if err := ah.progressionService.CompleteTaskCard(c.Request.Context(), userID, id, req.CardIndex); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": true})
}

func (ah *ActivityHandler) CompleteTask(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  id, ok := activityID(c)
  if !ok {
    return
  }
  if err := ah.progressionService.CompleteTask(c.Request.Context(), userID, id); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": true})
}

func (ah *ActivityHandler) AnswerQuizQuestion(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  id, ok := activityID(c)
  if !ok {
    return
  }
  var req struct {
    QuestionIndex  int `json:"question_index"`
    SelectedOption int `json:"selected_option"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  result, err := ah.progressionService.AnswerQuizQuestion(c.Request.Context(), userID, id, req.QuestionIndex, req.SelectedOption)
  if err != nil {
    // A repeated answer still returns the original feedback.
    if result != nil {
      RespondOK(c, gin.H{"result": result, "already_applied": true})
      return
    }
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"result": result})
}

func (ah *ActivityHandler) CompleteQuiz(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  id, ok := activityID(c)
  if !ok {
    return
  }
  if err := ah.progressionService.CompleteQuiz(c.Request.Context(), userID, id); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": true})
}

// CompleteActivity folds closing the activity and maintaining the learner's
// streak into one call: completing an activity is what counts as a day of
// learning.
func (ah *ActivityHandler) CompleteActivity(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  id, ok := activityID(c)
  if !ok {
    return
  }
  if err := ah.progressionService.CompleteActivity(c.Request.Context(), userID, id); err != nil {
    RespondAppError(c, err)
    return
  }
  if err := ah.progressionService.TouchStreak(c.Request.Context(), userID, time.Now()); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": true})
}
