package services

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "time"

  "github.com/google/uuid"
  "golang.org/x/sync/singleflight"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/jayp5545/skillbridge-ai/internal/apperr"
  "github.com/jayp5545/skillbridge-ai/internal/clients/redis"
  "github.com/jayp5545/skillbridge-ai/internal/logger"
  "github.com/jayp5545/skillbridge-ai/internal/repos"
  "github.com/jayp5545/skillbridge-ai/internal/types"
)

const generationLeaseTTL = 2 * time.Minute

func optionsJSON(options []string) (datatypes.JSON, error) {
  raw, err := json.Marshal(options)
  if err != nil {
    return nil, fmt.Errorf("%w: marshal options: %v", apperr.ErrGenerationInvalid, err)
  }
  return datatypes.JSON(raw), nil
}

// ContentService serves task cards and quiz questions for an activity,
// generating and persisting them on first access. Repeat calls read straight
// from the store. Concurrent first accesses collapse to one generation:
// singleflight dedupes within the process, a redis lease dedupes across
// processes, and a re-read after acquiring the lease catches content another
// process persisted while we waited.
type ContentService interface {
  EnsureTaskCards(ctx context.Context, userID, activityID uuid.UUID) ([]*types.TaskCard, error)
  EnsureQuizQuestions(ctx context.Context, userID, activityID uuid.UUID) ([]*types.QuizQuestion, error)
}

type contentService struct {
  db  *gorm.DB
  log *logger.Logger

  courseRepo   repos.CourseRepo
  activityRepo repos.ActivityRepo
  cardRepo     repos.TaskCardRepo
  questionRepo repos.QuizQuestionRepo

  generator ContentGenerator
  locker    redis.Locker

  group singleflight.Group
}

func NewContentService(
  db *gorm.DB,
  baseLog *logger.Logger,
  courseRepo repos.CourseRepo,
  activityRepo repos.ActivityRepo,
  cardRepo repos.TaskCardRepo,
  questionRepo repos.QuizQuestionRepo,
  generator ContentGenerator,
  locker redis.Locker,
) ContentService {
  return &contentService{
    db:           db,
    log:          baseLog.With("service", "ContentService"),
    courseRepo:   courseRepo,
    activityRepo: activityRepo,
    cardRepo:     cardRepo,
    questionRepo: questionRepo,
    generator:    generator,
    locker:       locker,
  }
}

func (cs *contentService) loadOwnedActivity(ctx context.Context, userID, activityID uuid.UUID) (*types.Activity, *types.Course, error) {
  activity, err := cs.activityRepo.GetByID(ctx, nil, activityID)
  if err != nil {
    return nil, nil, err
  }
  course, err := cs.courseRepo.GetByID(ctx, nil, activity.CourseID)
  if err != nil {
    return nil, nil, err
  }
  if course.UserID != userID {
    return nil, nil, apperr.ErrNotFound
  }
  return activity, course, nil
}

// seedQuizCounters sets total_score once, with the first question as the
// cursor. Guarded by total_score still being zero, so it is re-driven on
// every path that hands out stored questions: a crash between persisting the
// questions and seeding the counters heals on the next fetch.
func (cs *contentService) seedQuizCounters(ctx context.Context, activityID uuid.UUID, questions []*types.QuizQuestion) error {
  if len(questions) == 0 {
    return nil
  }
  _, err := cs.activityRepo.InitQuizCounters(ctx, nil, activityID, len(questions), questions[0].ID)
  return err
}

// acquireLease takes the cross-process generation lease when a locker is
// configured. Without redis we fall back to in-process dedup only.
func (cs *contentService) acquireLease(ctx context.Context, key string) (func(), error) {
  if cs.locker == nil {
    return func() {}, nil
  }
  return cs.locker.Acquire(ctx, key, generationLeaseTTL)
}

func (cs *contentService) EnsureTaskCards(ctx context.Context, userID, activityID uuid.UUID) ([]*types.TaskCard, error) {
  activity, course, err := cs.loadOwnedActivity(ctx, userID, activityID)
  if err != nil {
    return nil, err
  }

  cards, err := cs.cardRepo.GetByActivityID(ctx, nil, activityID)
  if err != nil {
    return nil, err
  }
  if len(cards) > 0 {
    return cards, nil
  }

  v, err, _ := cs.group.Do("cards:"+activityID.String(), func() (any, error) {
    release, err := cs.acquireLease(ctx, "generation:cards:"+activityID.String())
    if err != nil {
      return nil, fmt.Errorf("%w: generation lease: %v", apperr.ErrStoreUnavailable, err)
    }
    defer release()

    // Another process may have generated while we waited on the lease.
    existing, err := cs.cardRepo.GetByActivityID(ctx, nil, activityID)
    if err != nil {
      return nil, err
    }
    if len(existing) > 0 {
      return existing, nil
    }

    generated, err := cs.generator.GenerateTaskCards(ctx, TaskCardsInput{
      TaskTitle:       activity.TaskTitle,
      TaskDescription: activity.TaskDescription,
      Approach:        course.Approach,
    })
    if err != nil {
      return nil, err
    }

    rows := make([]*types.TaskCard, 0, len(generated))
    for _, g := range generated {
      rows = append(rows, &types.TaskCard{
        ActivityID:  activityID,
        Index:       g.Index,
        CardTitle:   g.CardTitle,
        CardContent: g.CardContent,
        Status:      types.StatusPending,
      })
    }
    // One batch insert, so a failure persists nothing and the next call
    // regenerates from scratch.
    created, err := cs.cardRepo.Create(ctx, nil, rows)
    if err != nil {
      if errors.Is(err, apperr.ErrStoreUnavailable) {
        // A duplicate-key failure here means we lost a race despite the
        // lease; the winner's rows are authoritative.
        if winner, readErr := cs.cardRepo.GetByActivityID(ctx, nil, activityID); readErr == nil && len(winner) > 0 {
          return winner, nil
        }
      }
      return nil, err
    }
    cs.log.Info("Task cards generated", "activity_id", activityID, "count", len(created))
    return created, nil
  })
  if err != nil {
    return nil, err
  }
  return v.([]*types.TaskCard), nil
}

func (cs *contentService) EnsureQuizQuestions(ctx context.Context, userID, activityID uuid.UUID) ([]*types.QuizQuestion, error) {
  activity, course, err := cs.loadOwnedActivity(ctx, userID, activityID)
  if err != nil {
    return nil, err
  }

  questions, err := cs.questionRepo.GetByActivityID(ctx, nil, activityID)
  if err != nil {
    return nil, err
  }
  if len(questions) > 0 {
    if err := cs.seedQuizCounters(ctx, activityID, questions); err != nil {
      return nil, err
    }
    return questions, nil
  }

  v, err, _ := cs.group.Do("quiz:"+activityID.String(), func() (any, error) {
    release, err := cs.acquireLease(ctx, "generation:quiz:"+activityID.String())
    if err != nil {
      return nil, fmt.Errorf("%w: generation lease: %v", apperr.ErrStoreUnavailable, err)
    }
    defer release()

    existing, err := cs.questionRepo.GetByActivityID(ctx, nil, activityID)
    if err != nil {
      return nil, err
    }
    if len(existing) > 0 {
      if err := cs.seedQuizCounters(ctx, activityID, existing); err != nil {
        return nil, err
      }
      return existing, nil
    }

    // Quiz questions are grounded in the learner's actual task cards.
    cards, err := cs.cardRepo.GetByActivityID(ctx, nil, activityID)
    if err != nil {
      return nil, err
    }
    learningCards := make([]QuizQuestionCard, 0, len(cards))
    for _, c := range cards {
      learningCards = append(learningCards, QuizQuestionCard{
        CardTitle:   c.CardTitle,
        CardContent: c.CardContent,
      })
    }

    generated, err := cs.generator.GenerateQuizQuestions(ctx, QuizQuestionsInput{
      QuizTitle:       activity.QuizTitle,
      SkillTitle:      course.Title,
      TaskTitle:       activity.TaskTitle,
      TaskDescription: activity.TaskDescription,
      LearningCards:   learningCards,
    })
    if err != nil {
      return nil, err
    }

    rows := make([]*types.QuizQuestion, 0, len(generated))
    for _, g := range generated {
      options, err := optionsJSON(g.Options)
      if err != nil {
        return nil, err
      }
      rows = append(rows, &types.QuizQuestion{
        ActivityID:  activityID,
        Index:       g.Index,
        Question:    g.Question,
        Options:     options,
        AnswerIndex: g.AnswerIndex,
        Explanation: g.Explanation,
        Status:      types.QuestionStatusPending,
      })
    }
    created, err := cs.questionRepo.Create(ctx, nil, rows)
    if err != nil {
      if errors.Is(err, apperr.ErrStoreUnavailable) {
        if winner, readErr := cs.questionRepo.GetByActivityID(ctx, nil, activityID); readErr == nil && len(winner) > 0 {
          if seedErr := cs.seedQuizCounters(ctx, activityID, winner); seedErr != nil {
            return nil, seedErr
          }
          return winner, nil
        }
      }
      return nil, err
    }

    if err := cs.seedQuizCounters(ctx, activityID, created); err != nil {
      return nil, err
    }
    cs.log.Info("Quiz questions generated", "activity_id", activityID, "count", len(created))
    return created, nil
  })
  if err != nil {
    return nil, err
  }
  return v.([]*types.QuizQuestion), nil
}
