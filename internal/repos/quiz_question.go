package repos

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/jayp5545/skillbridge-ai/internal/logger"
  "github.com/jayp5545/skillbridge-ai/internal/types"
)

type QuizQuestionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, questions []*types.QuizQuestion) ([]*types.QuizQuestion, error)
  GetByActivityID(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]*types.QuizQuestion, error)
  GetByActivityAndIndex(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, index int) (*types.QuizQuestion, error)
  CountByActivityID(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (int, error)
  // RecordAnswer is the per-question idempotency guard: it only applies while
  // the question is still pending, so a re-submitted index reports false and
  // the caller skips the counter updates.
  RecordAnswer(ctx context.Context, tx *gorm.DB, questionID uuid.UUID, selectedOption int) (bool, error)
}

type quizQuestionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewQuizQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuizQuestionRepo {
  repoLog := baseLog.With("repo", "QuizQuestionRepo")
  return &quizQuestionRepo{db: db, log: repoLog}
}

func (r *quizQuestionRepo) Create(ctx context.Context, tx *gorm.DB, questions []*types.QuizQuestion) ([]*types.QuizQuestion, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(questions) == 0 {
    return []*types.QuizQuestion{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&questions).Error; err != nil {
    return nil, translate(err)
  }
  return questions, nil
}

func (r *quizQuestionRepo) GetByActivityID(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]*types.QuizQuestion, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.QuizQuestion
  if err := transaction.WithContext(ctx).
    Where("activity_id = ?", activityID).
    Order(`"index" ASC`).
    Find(&results).Error; err != nil {
    return nil, translate(err)
  }
  return results, nil
}

func (r *quizQuestionRepo) GetByActivityAndIndex(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, index int) (*types.QuizQuestion, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var question types.QuizQuestion
  if err := transaction.WithContext(ctx).
    Where(`activity_id = ? AND "index" = ?`, activityID, index).
    First(&question).Error; err != nil {
    return nil, translate(err)
  }
  return &question, nil
}

func (r *quizQuestionRepo) CountByActivityID(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (int, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.QuizQuestion{}).
    Where("activity_id = ?", activityID).
    Count(&count).Error; err != nil {
    return 0, translate(err)
  }
  return int(count), nil
}

func (r *quizQuestionRepo) RecordAnswer(ctx context.Context, tx *gorm.DB, questionID uuid.UUID, selectedOption int) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.QuizQuestion{}).
    Where("id = ? AND status = ?", questionID, types.QuestionStatusPending).
    Updates(map[string]any{
      "status":          types.QuestionStatusAnswered,
      "selected_option": selectedOption,
      "updated_at":      time.Now(),
    })
  if res.Error != nil {
    return false, translate(res.Error)
  }
  return res.RowsAffected > 0, nil
}
