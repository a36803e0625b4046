package repos

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/jayp5545/skillbridge-ai/internal/logger"
  "github.com/jayp5545/skillbridge-ai/internal/types"
)

// ActivityRepo exposes the activity rows plus the guarded single-row
// transitions the progression engine is built on. Every transition method
// encodes its precondition in the WHERE clause and reports through the bool
// whether this call applied it, which is what makes retried calls converge
// without double-applying effects.
type ActivityRepo interface {
  Create(ctx context.Context, tx *gorm.DB, activities []*types.Activity) ([]*types.Activity, error)
  GetByID(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (*types.Activity, error)
  GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Activity, error)
  GetByCourseAndIndex(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, index int) (*types.Activity, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, fields map[string]any) error

  // AdvanceCard moves completed_cards from exactly fromCompleted to
  // fromCompleted+1 and repoints current_card_id.
  AdvanceCard(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, fromCompleted int, cardID uuid.UUID) (bool, error)
  // SyncQuizCounters recomputes completed_questions and quiz_score from the
  // answered question rows and repoints current_question_id. Derived, not
  // incremented, so a retry after a partial write converges instead of
  // drifting.
  SyncQuizCounters(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, questionID uuid.UUID) error
  // InitQuizCounters seeds the quiz bookkeeping once per activity, guarded by
  // total_score still being zero.
  InitQuizCounters(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, total int, firstQuestionID uuid.UUID) (bool, error)

  MarkTaskCompleted(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (bool, error)
  UnlockQuiz(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (bool, error)
  MarkQuizCompleted(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (bool, error)
  // MarkCompleted applies the aggregate transition only while both sub-states
  // are completed and the aggregate is not.
  MarkCompleted(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (bool, error)
  // Unlock opens a pending activity (status and task_status to in_progress).
  Unlock(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (bool, error)
}

type activityRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
  repoLog := baseLog.With("repo", "ActivityRepo")
  return &activityRepo{db: db, log: repoLog}
}

func (r *activityRepo) Create(ctx context.Context, tx *gorm.DB, activities []*types.Activity) ([]*types.Activity, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(activities) == 0 {
    return []*types.Activity{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&activities).Error; err != nil {
    return nil, translate(err)
  }
  return activities, nil
}

func (r *activityRepo) GetByID(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (*types.Activity, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var activity types.Activity
  if err := transaction.WithContext(ctx).
    Where("id = ?", activityID).
    First(&activity).Error; err != nil {
    return nil, translate(err)
  }
  return &activity, nil
}

func (r *activityRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Activity, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Activity
  if err := transaction.WithContext(ctx).
    Where("course_id = ?", courseID).
    Order(`"index" ASC`).
    Find(&results).Error; err != nil {
    return nil, translate(err)
  }
  return results, nil
}

func (r *activityRepo) GetByCourseAndIndex(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, index int) (*types.Activity, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var activity types.Activity
  if err := transaction.WithContext(ctx).
    Where(`course_id = ? AND "index" = ?`, courseID, index).
    First(&activity).Error; err != nil {
    return nil, translate(err)
  }
  return &activity, nil
}

func (r *activityRepo) UpdateFields(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, fields map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(fields) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Model(&types.Activity{}).
    Where("id = ?", activityID).
    Updates(fields).Error; err != nil {
    return translate(err)
  }
  return nil
}

func (r *activityRepo) AdvanceCard(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, fromCompleted int, cardID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.Activity{}).
    Where("id = ? AND completed_cards = ?", activityID, fromCompleted).
    Updates(map[string]any{
      "completed_cards": fromCompleted + 1,
      "current_card_id": cardID,
      "updated_at":      time.Now(),
    })
  if res.Error != nil {
    return false, translate(res.Error)
  }
  return res.RowsAffected > 0, nil
}

func (r *activityRepo) SyncQuizCounters(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, questionID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).
    Model(&types.Activity{}).
    Where("id = ?", activityID).
    Updates(map[string]any{
      "completed_questions": gorm.Expr(
        `(SELECT COUNT(*) FROM "quiz_question" WHERE "quiz_question"."activity_id" = ? AND "quiz_question"."status" = ?)`,
        activityID, types.QuestionStatusAnswered,
      ),
      "quiz_score": gorm.Expr(
        `(SELECT COUNT(*) FROM "quiz_question" WHERE "quiz_question"."activity_id" = ? AND "quiz_question"."status" = ? AND "quiz_question"."selected_option" = "quiz_question"."answer_index")`,
        activityID, types.QuestionStatusAnswered,
      ),
      "current_question_id": questionID,
      "updated_at":          time.Now(),
    }).Error; err != nil {
    return translate(err)
  }
  return nil
}

func (r *activityRepo) InitQuizCounters(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, total int, firstQuestionID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.Activity{}).
    Where("id = ? AND total_score = 0", activityID).
    Updates(map[string]any{
      "total_score":         total,
      "quiz_score":          0,
      "completed_questions": 0,
      "current_question_id": firstQuestionID,
      "updated_at":          time.Now(),
    })
  if res.Error != nil {
    return false, translate(res.Error)
  }
  return res.RowsAffected > 0, nil
}

func (r *activityRepo) MarkTaskCompleted(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.Activity{}).
    Where("id = ? AND task_status <> ?", activityID, types.StatusCompleted).
    Updates(map[string]any{
      "task_status": types.StatusCompleted,
      "updated_at":  time.Now(),
    })
  if res.Error != nil {
    return false, translate(res.Error)
  }
  return res.RowsAffected > 0, nil
}

func (r *activityRepo) UnlockQuiz(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.Activity{}).
    Where("id = ? AND quiz_status = ?", activityID, types.StatusPending).
    Updates(map[string]any{
      "quiz_status": types.StatusInProgress,
      "updated_at":  time.Now(),
    })
  if res.Error != nil {
    return false, translate(res.Error)
  }
  return res.RowsAffected > 0, nil
}

func (r *activityRepo) MarkQuizCompleted(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.Activity{}).
    Where("id = ? AND quiz_status <> ?", activityID, types.StatusCompleted).
    Updates(map[string]any{
      "quiz_status": types.StatusCompleted,
      "updated_at":  time.Now(),
    })
  if res.Error != nil {
    return false, translate(res.Error)
  }
  return res.RowsAffected > 0, nil
}

func (r *activityRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.Activity{}).
    Where("id = ? AND status <> ? AND task_status = ? AND quiz_status = ?",
      activityID, types.StatusCompleted, types.StatusCompleted, types.StatusCompleted).
    Updates(map[string]any{
      "status":     types.StatusCompleted,
      "updated_at": time.Now(),
    })
  if res.Error != nil {
    return false, translate(res.Error)
  }
  return res.RowsAffected > 0, nil
}

func (r *activityRepo) Unlock(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.Activity{}).
    Where("id = ? AND status = ?", activityID, types.StatusPending).
    Updates(map[string]any{
      "status":      types.StatusInProgress,
      "task_status": types.StatusInProgress,
      "updated_at":  time.Now(),
    })
  if res.Error != nil {
    return false, translate(res.Error)
  }
  return res.RowsAffected > 0, nil
}
