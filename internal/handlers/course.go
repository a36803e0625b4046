package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/jayp5545/skillbridge-ai/internal/services"
)

type CourseHandler struct {
  courseService     services.CourseService
  generationService services.CourseGenerationService
}

func NewCourseHandler(courseService services.CourseService, generationService services.CourseGenerationService) *CourseHandler {
  return &CourseHandler{courseService: courseService, generationService: generationService}
}

func (ch *CourseHandler) Generate(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  var req services.GenerateCourseInput
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  course, activities, err := ch.generationService.Generate(c.Request.Context(), userID, req)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"course": course, "activities": activities})
}

func (ch *CourseHandler) List(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  courses, err := ch.courseService.ListUserCourses(c.Request.Context(), userID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"courses": courses})
}

func (ch *CourseHandler) Get(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  courseID, err := uuid.Parse(c.Param("courseID"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
    return
  }
  timeline, err := ch.courseService.GetCourse(c.Request.Context(), userID, courseID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, timeline)
}

func (ch *CourseHandler) Resume(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  point, err := ch.courseService.Resume(c.Request.Context(), userID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, point)
}
