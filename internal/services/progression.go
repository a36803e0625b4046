package services

import (
  "context"
  "errors"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/jayp5545/skillbridge-ai/internal/apperr"
  "github.com/jayp5545/skillbridge-ai/internal/logger"
  "github.com/jayp5545/skillbridge-ai/internal/repos"
  "github.com/jayp5545/skillbridge-ai/internal/types"
)

const (
  activityPoints    = 10
  courseBonusPoints = 30
)

// ProgressionService is the only component that transitions activity, task and
// quiz statuses, updates counters, awards points, maintains streaks, and
// issues certificates. Handlers call it and never write progression fields
// themselves.
//
// The store offers per-row atomic writes only, so every multi-entity effect is
// an ordered sequence of guarded single-row transitions (Activity, then
// Course, then User, then Certificate). Point awards are gated on the one
// transition that can apply only once; everything downstream of it is written
// idempotently so a crashed or retried call converges.
type ProgressionService interface {
  CompleteTaskCard(ctx context.Context, userID, activityID uuid.UUID, cardIndex int) error
  CompleteTask(ctx context.Context, userID, activityID uuid.UUID) error
  AnswerQuizQuestion(ctx context.Context, userID, activityID uuid.UUID, questionIndex, selectedOption int) (*AnswerResult, error)
  CompleteQuiz(ctx context.Context, userID, activityID uuid.UUID) error
  CompleteActivity(ctx context.Context, userID, activityID uuid.UUID) error

  TouchStreak(ctx context.Context, userID uuid.UUID, now time.Time) error
  ResetStaleStreak(ctx context.Context, userID uuid.UUID, now time.Time) error
}

// AnswerResult reports the outcome of a quiz answer so the caller can show
// correctness feedback without re-reading the question.
type AnswerResult struct {
  Correct     bool   `json:"correct"`
  AnswerIndex int    `json:"answer_index"`
  Explanation string `json:"explanation,omitempty"`
}

type progressionService struct {
  db  *gorm.DB
  log *logger.Logger

  userRepo     repos.UserRepo
  courseRepo   repos.CourseRepo
  activityRepo repos.ActivityRepo
  cardRepo     repos.TaskCardRepo
  questionRepo repos.QuizQuestionRepo
  certRepo     repos.CertificateRepo

  notifier NotificationScheduler
}

func NewProgressionService(
  db *gorm.DB,
  baseLog *logger.Logger,
  userRepo repos.UserRepo,
  courseRepo repos.CourseRepo,
  activityRepo repos.ActivityRepo,
  cardRepo repos.TaskCardRepo,
  questionRepo repos.QuizQuestionRepo,
  certRepo repos.CertificateRepo,
  notifier NotificationScheduler,
) ProgressionService {
  return &progressionService{
    db:           db,
    log:          baseLog.With("service", "ProgressionService"),
    userRepo:     userRepo,
    courseRepo:   courseRepo,
    activityRepo: activityRepo,
    cardRepo:     cardRepo,
    questionRepo: questionRepo,
    certRepo:     certRepo,
    notifier:     notifier,
  }
}

// loadOwnedActivity resolves the activity and its course and hides entities
// that belong to another user behind ErrNotFound.
func (ps *progressionService) loadOwnedActivity(ctx context.Context, userID, activityID uuid.UUID) (*types.Activity, *types.Course, error) {
  activity, err := ps.activityRepo.GetByID(ctx, nil, activityID)
  if err != nil {
    return nil, nil, err
  }
  course, err := ps.courseRepo.GetByID(ctx, nil, activity.CourseID)
  if err != nil {
    return nil, nil, err
  }
  if course.UserID != userID {
    return nil, nil, apperr.ErrNotFound
  }
  return activity, course, nil
}

func (ps *progressionService) CompleteTaskCard(ctx context.Context, userID, activityID uuid.UUID, cardIndex int) error {
  activity, _, err := ps.loadOwnedActivity(ctx, userID, activityID)
  if err != nil {
    return err
  }
  if activity.TaskStatus != types.StatusInProgress {
    return fmt.Errorf("%w: task is %s", apperr.ErrPreconditionFailed, activity.TaskStatus)
  }

  switch {
  case cardIndex >= 0 && cardIndex < activity.CompletedCards:
    // Re-completing a card the learner is already past.
    return apperr.ErrDuplicateEffect
  case cardIndex != activity.CompletedCards:
    return fmt.Errorf("%w: card index %d, next unvisited is %d", apperr.ErrOutOfRange, cardIndex, activity.CompletedCards)
  }

  card, err := ps.cardRepo.GetByActivityAndIndex(ctx, nil, activityID, cardIndex)
  if err != nil {
    if errors.Is(err, apperr.ErrNotFound) {
      return fmt.Errorf("%w: no card at index %d", apperr.ErrOutOfRange, cardIndex)
    }
    return err
  }

  if _, err := ps.cardRepo.MarkVisited(ctx, nil, card.ID); err != nil {
    return err
  }
  applied, err := ps.activityRepo.AdvanceCard(ctx, nil, activityID, activity.CompletedCards, card.ID)
  if err != nil {
    return err
  }
  if !applied {
    // A concurrent call advanced first.
    return apperr.ErrDuplicateEffect
  }
  return nil
}

func (ps *progressionService) CompleteTask(ctx context.Context, userID, activityID uuid.UUID) error {
  activity, _, err := ps.loadOwnedActivity(ctx, userID, activityID)
  if err != nil {
    return err
  }

  total, err := ps.cardRepo.CountByActivityID(ctx, nil, activityID)
  if err != nil {
    return err
  }
  if total == 0 || activity.CompletedCards < total {
    return fmt.Errorf("%w: %d of %d cards visited", apperr.ErrPreconditionFailed, activity.CompletedCards, total)
  }

  applied, err := ps.activityRepo.MarkTaskCompleted(ctx, nil, activityID)
  if err != nil {
    return err
  }
  // The quiz unlock is guarded on its own, so re-driving it after a crash
  // between the two writes is safe.
  if _, err := ps.activityRepo.UnlockQuiz(ctx, nil, activityID); err != nil {
    return err
  }
  if !applied {
    return apperr.ErrDuplicateEffect
  }

  ps.congratulate(ctx, "task", activity.TaskTitle, activity)
  return nil
}

func (ps *progressionService) AnswerQuizQuestion(ctx context.Context, userID, activityID uuid.UUID, questionIndex, selectedOption int) (*AnswerResult, error) {
  activity, _, err := ps.loadOwnedActivity(ctx, userID, activityID)
  if err != nil {
    return nil, err
  }
  if activity.QuizStatus != types.StatusInProgress {
    return nil, fmt.Errorf("%w: quiz is %s", apperr.ErrPreconditionFailed, activity.QuizStatus)
  }

  question, err := ps.questionRepo.GetByActivityAndIndex(ctx, nil, activityID, questionIndex)
  if err != nil {
    if errors.Is(err, apperr.ErrNotFound) {
      return nil, fmt.Errorf("%w: no question at index %d", apperr.ErrOutOfRange, questionIndex)
    }
    return nil, err
  }

  result := &AnswerResult{
    Correct:     selectedOption == question.AnswerIndex,
    AnswerIndex: question.AnswerIndex,
    Explanation: question.Explanation,
  }

  applied, err := ps.questionRepo.RecordAnswer(ctx, nil, question.ID, selectedOption)
  if err != nil {
    return nil, err
  }
  // The counters are derived from the question rows, so the sync runs on
  // repeats too: a retry after a crash between the guard and the counter
  // write converges instead of leaving the quiz permanently short.
  if err := ps.activityRepo.SyncQuizCounters(ctx, nil, activityID, question.ID); err != nil {
    return nil, err
  }
  if !applied {
    return result, apperr.ErrDuplicateEffect
  }
  return result, nil
}

func (ps *progressionService) CompleteQuiz(ctx context.Context, userID, activityID uuid.UUID) error {
  activity, _, err := ps.loadOwnedActivity(ctx, userID, activityID)
  if err != nil {
    return err
  }

  if activity.TotalScore == 0 || activity.CompletedQuestions < activity.TotalScore {
    return fmt.Errorf("%w: %d of %d questions answered", apperr.ErrPreconditionFailed, activity.CompletedQuestions, activity.TotalScore)
  }

  applied, err := ps.activityRepo.MarkQuizCompleted(ctx, nil, activityID)
  if err != nil {
    return err
  }
  if !applied {
    return apperr.ErrDuplicateEffect
  }

  ps.congratulate(ctx, "quiz", activity.QuizTitle, activity)
  return nil
}

func (ps *progressionService) CompleteActivity(ctx context.Context, userID, activityID uuid.UUID) error {
  activity, course, err := ps.loadOwnedActivity(ctx, userID, activityID)
  if err != nil {
    return err
  }

  applied, err := ps.activityRepo.MarkCompleted(ctx, nil, activityID)
  if err != nil {
    return err
  }
  if !applied {
    // Either the preconditions do not hold, or a previous call already
    // completed this activity. In the latter case we still re-drive the
    // downstream effects so a crash between steps heals on retry.
    fresh, err := ps.activityRepo.GetByID(ctx, nil, activityID)
    if err != nil {
      return err
    }
    if fresh.Status != types.StatusCompleted {
      return fmt.Errorf("%w: task %s, quiz %s", apperr.ErrPreconditionFailed, fresh.TaskStatus, fresh.QuizStatus)
    }
  }

  // Course: recompute the counter from completed activities (idempotent).
  if err := ps.courseRepo.SyncCompletedActivities(ctx, nil, course.ID); err != nil {
    return err
  }

  // User: the per-activity award rides on the transition that applied above,
  // so it cannot be handed out twice.
  if applied {
    if err := ps.userRepo.AddPoints(ctx, nil, userID, activityPoints); err != nil {
      return err
    }
  }

  next, err := ps.activityRepo.GetByCourseAndIndex(ctx, nil, course.ID, activity.Index+1)
  switch {
  case err == nil:
    if _, err := ps.activityRepo.Unlock(ctx, nil, next.ID); err != nil {
      return err
    }
    if err := ps.courseRepo.UpdateFields(ctx, nil, course.ID, map[string]any{
      "current_activity_id": next.ID,
      "updated_at":          time.Now(),
    }); err != nil {
      return err
    }
  case errors.Is(err, apperr.ErrNotFound):
    // Last activity: complete the course, pay the bonus once, issue the
    // certificate at most once.
    courseApplied, err := ps.courseRepo.MarkCompleted(ctx, nil, course.ID)
    if err != nil {
      return err
    }
    if courseApplied {
      if err := ps.userRepo.AddPoints(ctx, nil, userID, courseBonusPoints); err != nil {
        return err
      }
    }
    user, err := ps.userRepo.GetByID(ctx, nil, userID)
    if err != nil {
      return err
    }
    created, err := ps.certRepo.CreateIfAbsent(ctx, nil, &types.Certificate{
      CourseID: course.ID,
      UserID:   userID,
      Username: user.Username,
      Title:    course.Title,
      IssuedAt: time.Now(),
    })
    if err != nil {
      return err
    }
    if created {
      ps.log.Info("Certificate issued", "course_id", course.ID, "user_id", userID)
    }
  default:
    return err
  }

  if applied {
    ps.congratulate(ctx, "activity", activity.TaskTitle, activity)
    return nil
  }
  return apperr.ErrDuplicateEffect
}

func (ps *progressionService) congratulate(ctx context.Context, kind, name string, activity *types.Activity) {
  if ps.notifier == nil {
    return
  }
  ps.notifier.Notify(ctx, Notification{
    ID:    fmt.Sprintf("completion-%s-%s", kind, activity.ID),
    Title: "Congratulations!",
    Body:  fmt.Sprintf("You've successfully completed the %s: %q!", kind, name),
    Data: map[string]string{
      "course_id":   activity.CourseID.String(),
      "activity_id": activity.ID.String(),
    },
  })
}

// --- streak accounting ---

// streakAfter is the single streak authority: pure in (storedDate, now).
// Same calendar day keeps the streak; exactly one day later extends it; any
// larger gap, or no prior date, restarts at 1. changed=false means the stored
// state is already right for today.
func streakAfter(current int, storedDate *time.Time, now time.Time) (streak int, changed bool) {
  today := startOfDay(now)
  if storedDate == nil {
    return 1, true
  }
  stored := startOfDay(*storedDate)
  switch {
  case stored.Equal(today):
    return current, false
  case stored.Equal(today.AddDate(0, 0, -1)):
    return current + 1, true
  default:
    return 1, true
  }
}

func startOfDay(t time.Time) time.Time {
  return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (ps *progressionService) TouchStreak(ctx context.Context, userID uuid.UUID, now time.Time) error {
  user, err := ps.userRepo.GetByID(ctx, nil, userID)
  if err != nil {
    return err
  }

  streak, changed := streakAfter(user.LearningStreak, user.StreakDate, now)
  if !changed {
    return nil
  }
  // Guarded on streak_date < today: if two touches race, only one applies.
  _, err = ps.userRepo.SetStreakGuarded(ctx, nil, userID, streak, startOfDay(now))
  return err
}

func (ps *progressionService) ResetStaleStreak(ctx context.Context, userID uuid.UUID, now time.Time) error {
  // The stale streak_date is deliberately left in place: the next TouchStreak
  // sees the gap and restarts the streak at 1 instead of treating the reset
  // itself as today's activity.
  cutoff := startOfDay(now).AddDate(0, 0, -1)
  _, err := ps.userRepo.ResetStreakBefore(ctx, nil, userID, cutoff)
  return err
}
