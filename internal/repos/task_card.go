package repos

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/jayp5545/skillbridge-ai/internal/logger"
  "github.com/jayp5545/skillbridge-ai/internal/types"
)

type TaskCardRepo interface {
  // Create persists a generated card set in a single batch insert so an
  // abandoned generation never leaves a partial set behind.
  Create(ctx context.Context, tx *gorm.DB, cards []*types.TaskCard) ([]*types.TaskCard, error)
  GetByActivityID(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]*types.TaskCard, error)
  GetByActivityAndIndex(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, index int) (*types.TaskCard, error)
  CountByActivityID(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (int, error)
  // MarkVisited flips the card's status once; repeats report false.
  MarkVisited(ctx context.Context, tx *gorm.DB, cardID uuid.UUID) (bool, error)
}

type taskCardRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTaskCardRepo(db *gorm.DB, baseLog *logger.Logger) TaskCardRepo {
  repoLog := baseLog.With("repo", "TaskCardRepo")
  return &taskCardRepo{db: db, log: repoLog}
}

func (r *taskCardRepo) Create(ctx context.Context, tx *gorm.DB, cards []*types.TaskCard) ([]*types.TaskCard, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(cards) == 0 {
    return []*types.TaskCard{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&cards).Error; err != nil {
    return nil, translate(err)
  }
  return cards, nil
}

func (r *taskCardRepo) GetByActivityID(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]*types.TaskCard, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.TaskCard
  if err := transaction.WithContext(ctx).
    Where("activity_id = ?", activityID).
    Order(`"index" ASC`).
    Find(&results).Error; err != nil {
    return nil, translate(err)
  }
  return results, nil
}

func (r *taskCardRepo) GetByActivityAndIndex(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, index int) (*types.TaskCard, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var card types.TaskCard
  if err := transaction.WithContext(ctx).
    Where(`activity_id = ? AND "index" = ?`, activityID, index).
    First(&card).Error; err != nil {
    return nil, translate(err)
  }
  return &card, nil
}

func (r *taskCardRepo) CountByActivityID(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (int, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.TaskCard{}).
    Where("activity_id = ?", activityID).
    Count(&count).Error; err != nil {
    return 0, translate(err)
  }
  return int(count), nil
}

func (r *taskCardRepo) MarkVisited(ctx context.Context, tx *gorm.DB, cardID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.TaskCard{}).
    Where("id = ? AND status = ?", cardID, types.StatusPending).
    Updates(map[string]any{
      "status":     types.StatusCompleted,
      "updated_at": time.Now(),
    })
  if res.Error != nil {
    return false, translate(res.Error)
  }
  return res.RowsAffected > 0, nil
}
