package repos

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/jayp5545/skillbridge-ai/internal/logger"
  "github.com/jayp5545/skillbridge-ai/internal/types"
)

type UserRepo interface {
  Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error)
  GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error)
  GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fields map[string]any) error
  // AddPoints applies an engine-controlled, monotonically non-decreasing
  // increment to the user's points.
  AddPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta int) error
  // SetStreakGuarded writes (streak, date) only while the stored streak_date
  // is still older than date, so repeated same-day calls apply at most once.
  SetStreakGuarded(ctx context.Context, tx *gorm.DB, userID uuid.UUID, streak int, date time.Time) (bool, error)
  // ResetStreakBefore zeroes the streak when the stored streak_date is older
  // than cutoff. The stale date is kept so a later streak touch restarts at 1.
  ResetStreakBefore(ctx context.Context, tx *gorm.DB, userID uuid.UUID, cutoff time.Time) (bool, error)
  ListTopByPoints(ctx context.Context, tx *gorm.DB, limit int) ([]*types.User, error)
}

type userRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
  repoLog := baseLog.With("repo", "UserRepo")
  return &userRepo{db: db, log: repoLog}
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(users) == 0 {
    return []*types.User{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&users).Error; err != nil {
    return nil, translate(err)
  }
  return users, nil
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var user types.User
  if err := transaction.WithContext(ctx).
    Where("id = ?", userID).
    First(&user).Error; err != nil {
    return nil, translate(err)
  }
  return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var user types.User
  if err := transaction.WithContext(ctx).
    Where("email = ?", email).
    First(&user).Error; err != nil {
    return nil, translate(err)
  }
  return &user, nil
}

func (r *userRepo) UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fields map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(fields) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Model(&types.User{}).
    Where("id = ?", userID).
    Updates(fields).Error; err != nil {
    return translate(err)
  }
  return nil
}

func (r *userRepo) AddPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta int) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if delta <= 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Model(&types.User{}).
    Where("id = ?", userID).
    Updates(map[string]any{
      "points":     gorm.Expr("points + ?", delta),
      "updated_at": time.Now(),
    }).Error; err != nil {
    return translate(err)
  }
  return nil
}

func (r *userRepo) SetStreakGuarded(ctx context.Context, tx *gorm.DB, userID uuid.UUID, streak int, date time.Time) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.User{}).
    Where("id = ? AND (streak_date IS NULL OR streak_date < ?)", userID, date).
    Updates(map[string]any{
      "learning_streak": streak,
      "streak_date":     date,
      "updated_at":      time.Now(),
    })
  if res.Error != nil {
    return false, translate(res.Error)
  }
  return res.RowsAffected > 0, nil
}

func (r *userRepo) ResetStreakBefore(ctx context.Context, tx *gorm.DB, userID uuid.UUID, cutoff time.Time) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.User{}).
    Where("id = ? AND learning_streak <> 0 AND streak_date IS NOT NULL AND streak_date < ?", userID, cutoff).
    Updates(map[string]any{
      "learning_streak": 0,
      "updated_at":      time.Now(),
    })
  if res.Error != nil {
    return false, translate(res.Error)
  }
  return res.RowsAffected > 0, nil
}

func (r *userRepo) ListTopByPoints(ctx context.Context, tx *gorm.DB, limit int) ([]*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if limit <= 0 {
    limit = 10
  }

  var results []*types.User
  if err := transaction.WithContext(ctx).
    Order("points DESC, username ASC").
    Limit(limit).
    Find(&results).Error; err != nil {
    return nil, translate(err)
  }
  return results, nil
}
