package services

import (
  "context"
  "encoding/json"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/jayp5545/skillbridge-ai/internal/apperr"
  "github.com/jayp5545/skillbridge-ai/internal/logger"
  "github.com/jayp5545/skillbridge-ai/internal/repos"
  "github.com/jayp5545/skillbridge-ai/internal/types"
)

// GenerateCourseInput carries the learner's request for a new course.
type GenerateCourseInput struct {
  Prompt    string `json:"prompt" binding:"required"`
  Frequency string `json:"frequency" binding:"required"`
  Approach  string `json:"approach" binding:"required"`
  Time      string `json:"time" binding:"required"`
}

// CourseGenerationService turns a free-text learning goal into a persisted
// course with its activity timeline. Task cards and quiz questions are not
// generated here; they are filled in lazily on first open (see
// ContentService).
type CourseGenerationService interface {
  Generate(ctx context.Context, userID uuid.UUID, in GenerateCourseInput) (*types.Course, []*types.Activity, error)
}

type courseGenerationService struct {
  db  *gorm.DB
  log *logger.Logger

  userRepo     repos.UserRepo
  courseRepo   repos.CourseRepo
  activityRepo repos.ActivityRepo

  generator ContentGenerator
  notifier  NotificationScheduler
}

func NewCourseGenerationService(
  db *gorm.DB,
  baseLog *logger.Logger,
  userRepo repos.UserRepo,
  courseRepo repos.CourseRepo,
  activityRepo repos.ActivityRepo,
  generator ContentGenerator,
  notifier NotificationScheduler,
) CourseGenerationService {
  return &courseGenerationService{
    db:           db,
    log:          baseLog.With("service", "CourseGenerationService"),
    userRepo:     userRepo,
    courseRepo:   courseRepo,
    activityRepo: activityRepo,
    generator:    generator,
    notifier:     notifier,
  }
}

func (cs *courseGenerationService) Generate(ctx context.Context, userID uuid.UUID, in GenerateCourseInput) (*types.Course, []*types.Activity, error) {
  if err := validateGenerateInput(in); err != nil {
    return nil, nil, err
  }
  user, err := cs.userRepo.GetByID(ctx, nil, userID)
  if err != nil {
    return nil, nil, err
  }

  // A crash between course insert and activity insert leaves a course with
  // no activities. Sweep those before starting a new generation so they
  // never surface in course lists.
  cs.cleanupDangling(ctx, userID)

  generated, err := cs.generator.GenerateCourseTimeline(ctx, CourseTimelineInput{
    UserPrompt:  in.Prompt,
    Frequency:   in.Frequency,
    Time:        in.Time,
    CurrentDate: time.Now().Format(time.RFC3339),
  })
  if err != nil {
    return nil, nil, err
  }

  metadata, _ := json.Marshal(map[string]string{
    "prompt":    in.Prompt,
    "frequency": in.Frequency,
    "approach":  in.Approach,
    "time":      in.Time,
  })

  course := &types.Course{
    UserID:      userID,
    Title:       generated.Title,
    Description: generated.Description,
    Frequency:   in.Frequency,
    Approach:    in.Approach,
    TimeDuration: in.Time,
    Status:      types.StatusInProgress,
    Metadata:    datatypes.JSON(metadata),
  }
  if _, err := cs.courseRepo.Create(ctx, nil, []*types.Course{course}); err != nil {
    return nil, nil, err
  }

  activities := make([]*types.Activity, 0, len(generated.Activities))
  for _, ga := range generated.Activities {
    a := &types.Activity{
      CourseID:        course.ID,
      Index:           ga.Index,
      TaskTitle:       ga.TaskTitle,
      TaskDescription: ga.TaskDescription,
      QuizTitle:       ga.QuizTitle,
      StartTime:       ga.StartTime,
      EndTime:         ga.EndTime,
      Status:          types.StatusPending,
      TaskStatus:      types.StatusPending,
      QuizStatus:      types.StatusPending,
    }
    // The first activity is open from the start; its quiz stays locked
    // until the task is done.
    if ga.Index == 0 {
      a.Status = types.StatusInProgress
      a.TaskStatus = types.StatusInProgress
    }
    activities = append(activities, a)
  }
  if _, err := cs.activityRepo.Create(ctx, nil, activities); err != nil {
    // The course row is now dangling; the next Generate call sweeps it.
    return nil, nil, err
  }

  first := activities[0]
  if err := cs.courseRepo.UpdateFields(ctx, nil, course.ID, map[string]any{
    "current_activity_id": first.ID,
    "updated_at":          time.Now(),
  }); err != nil {
    return nil, nil, err
  }
  course.CurrentActivityID = &first.ID

  // Weak ref only: progression never reads it for decisions.
  if err := cs.userRepo.UpdateFields(ctx, nil, userID, map[string]any{
    "current_course_id": course.ID,
    "updated_at":        time.Now(),
  }); err != nil {
    return nil, nil, err
  }

  cs.scheduleNotifications(ctx, user, course, activities)
  cs.log.Info("Course generated", "course_id", course.ID, "user_id", userID, "activities", len(activities))
  return course, activities, nil
}

func validateGenerateInput(in GenerateCourseInput) error {
  switch in.Frequency {
  case types.FrequencyDaily, types.FrequencyWeekly:
  default:
    return fmt.Errorf("%w: frequency must be %q or %q", apperr.ErrPreconditionFailed, types.FrequencyDaily, types.FrequencyWeekly)
  }
  switch in.Approach {
  case types.ApproachTheoretical, types.ApproachPractical:
  default:
    return fmt.Errorf("%w: approach must be %q or %q", apperr.ErrPreconditionFailed, types.ApproachTheoretical, types.ApproachPractical)
  }
  if in.Prompt == "" {
    return fmt.Errorf("%w: prompt is empty", apperr.ErrPreconditionFailed)
  }
  return nil
}

func (cs *courseGenerationService) cleanupDangling(ctx context.Context, userID uuid.UUID) {
  dangling, err := cs.courseRepo.ListDangling(ctx, nil, userID)
  if err != nil {
    cs.log.Warn("Failed to list dangling courses", "user_id", userID, "error", err)
    return
  }
  if len(dangling) == 0 {
    return
  }
  ids := make([]uuid.UUID, 0, len(dangling))
  for _, c := range dangling {
    ids = append(ids, c.ID)
  }
  if err := cs.courseRepo.FullDelete(ctx, nil, ids); err != nil {
    cs.log.Warn("Failed to delete dangling courses", "user_id", userID, "error", err)
    return
  }
  cs.log.Info("Swept dangling courses", "user_id", userID, "count", len(ids))
}

func (cs *courseGenerationService) scheduleNotifications(ctx context.Context, user *types.User, course *types.Course, activities []*types.Activity) {
  if cs.notifier == nil {
    return
  }
  cs.notifier.Notify(ctx, Notification{
    ID:    "course-welcome-" + course.ID.String(),
    Title: "Your course is ready!",
    Body:  fmt.Sprintf("%s, your course %q is ready. Your first activity is waiting.", user.Username, course.Title),
    Data:  map[string]string{"course_id": course.ID.String()},
  })
  for _, a := range activities {
    if a.StartTime == nil {
      continue
    }
    cs.notifier.ScheduleAt(ctx, a.StartTime.Add(-10*time.Minute), Notification{
      ID:    "activity-reminder-" + a.ID.String(),
      Title: "Upcoming activity",
      Body:  fmt.Sprintf("%q starts in 10 minutes.", a.TaskTitle),
      Data: map[string]string{
        "course_id":   course.ID.String(),
        "activity_id": a.ID.String(),
      },
    })
  }
}
