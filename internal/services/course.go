package services

import (
  "context"
  "errors"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/jayp5545/skillbridge-ai/internal/apperr"
  "github.com/jayp5545/skillbridge-ai/internal/logger"
  "github.com/jayp5545/skillbridge-ai/internal/repos"
  "github.com/jayp5545/skillbridge-ai/internal/types"
)

// CourseTimeline is a course together with its ordered activities.
type CourseTimeline struct {
  Course     *types.Course     `json:"course"`
  Activities []*types.Activity `json:"activities"`
}

// ResumePoint tells the client where the learner left off.
type ResumePoint struct {
  Course   *types.Course   `json:"course"`
  Activity *types.Activity `json:"activity,omitempty"`
}

type CourseService interface {
  ListUserCourses(ctx context.Context, userID uuid.UUID) ([]*types.Course, error)
  GetCourse(ctx context.Context, userID, courseID uuid.UUID) (*CourseTimeline, error)
  Resume(ctx context.Context, userID uuid.UUID) (*ResumePoint, error)
  ListCertificates(ctx context.Context, userID uuid.UUID) ([]*types.Certificate, error)
}

type courseService struct {
  db           *gorm.DB
  log          *logger.Logger
  userRepo     repos.UserRepo
  courseRepo   repos.CourseRepo
  activityRepo repos.ActivityRepo
  certRepo     repos.CertificateRepo
}

func NewCourseService(
  db *gorm.DB,
  baseLog *logger.Logger,
  userRepo repos.UserRepo,
  courseRepo repos.CourseRepo,
  activityRepo repos.ActivityRepo,
  certRepo repos.CertificateRepo,
) CourseService {
  return &courseService{
    db:           db,
    log:          baseLog.With("service", "CourseService"),
    userRepo:     userRepo,
    courseRepo:   courseRepo,
    activityRepo: activityRepo,
    certRepo:     certRepo,
  }
}

func (cs *courseService) ListUserCourses(ctx context.Context, userID uuid.UUID) ([]*types.Course, error) {
  return cs.courseRepo.GetByUserID(ctx, nil, userID)
}

func (cs *courseService) GetCourse(ctx context.Context, userID, courseID uuid.UUID) (*CourseTimeline, error) {
  course, err := cs.courseRepo.GetByID(ctx, nil, courseID)
  if err != nil {
    return nil, err
  }
  if course.UserID != userID {
    return nil, apperr.ErrNotFound
  }
  activities, err := cs.activityRepo.GetByCourseID(ctx, nil, courseID)
  if err != nil {
    return nil, err
  }
  return &CourseTimeline{Course: course, Activities: activities}, nil
}

// Resume follows the weak refs (user.current_course_id, then
// course.current_activity_id). Either may be stale or missing; a broken
// pointer degrades to the nearest valid level instead of failing.
func (cs *courseService) Resume(ctx context.Context, userID uuid.UUID) (*ResumePoint, error) {
  user, err := cs.userRepo.GetByID(ctx, nil, userID)
  if err != nil {
    return nil, err
  }
  if user.CurrentCourseID == nil {
    return nil, apperr.ErrNotFound
  }
  course, err := cs.courseRepo.GetByID(ctx, nil, *user.CurrentCourseID)
  if err != nil {
    return nil, err
  }
  if course.UserID != userID {
    return nil, apperr.ErrNotFound
  }

  point := &ResumePoint{Course: course}
  if course.CurrentActivityID != nil {
    activity, err := cs.activityRepo.GetByID(ctx, nil, *course.CurrentActivityID)
    switch {
    case err == nil:
      point.Activity = activity
    case errors.Is(err, apperr.ErrNotFound):
      cs.log.Warn("Stale current_activity_id on course", "course_id", course.ID)
    default:
      return nil, err
    }
  }
  return point, nil
}

func (cs *courseService) ListCertificates(ctx context.Context, userID uuid.UUID) ([]*types.Certificate, error) {
  return cs.certRepo.GetByUserID(ctx, nil, userID)
}
