package handlers

import (
  "github.com/gin-gonic/gin"

  "github.com/jayp5545/skillbridge-ai/internal/services"
)

type CertificateHandler struct {
  courseService services.CourseService
}

func NewCertificateHandler(courseService services.CourseService) *CertificateHandler {
  return &CertificateHandler{courseService: courseService}
}

func (ch *CertificateHandler) List(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  certs, err := ch.courseService.ListCertificates(c.Request.Context(), userID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"certificates": certs})
}
