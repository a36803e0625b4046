package repos

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/jayp5545/skillbridge-ai/internal/logger"
  "github.com/jayp5545/skillbridge-ai/internal/types"
)

type CourseRepo interface {
  Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error)
  GetByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Course, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, fields map[string]any) error
  // SyncCompletedActivities recomputes the counter from the activities that
  // actually completed, so a retried completion converges instead of
  // double-counting.
  SyncCompletedActivities(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
  // MarkCompleted transitions the course to completed at most once; the
  // returned bool reports whether this call applied the transition.
  MarkCompleted(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (bool, error)
  // ListDangling returns the user's in-progress courses that have no
  // activities, i.e. the residue of a generation run that failed between the
  // course write and the activity writes.
  ListDangling(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Course, error)
  FullDelete(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error
}

type courseRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
  repoLog := baseLog.With("repo", "CourseRepo")
  return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(courses) == 0 {
    return []*types.Course{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&courses).Error; err != nil {
    return nil, translate(err)
  }
  return courses, nil
}

func (r *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var course types.Course
  if err := transaction.WithContext(ctx).
    Where("id = ?", courseID).
    First(&course).Error; err != nil {
    return nil, translate(err)
  }
  return &course, nil
}

func (r *courseRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Course, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Course
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, translate(err)
  }
  return results, nil
}

func (r *courseRepo) UpdateFields(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, fields map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(fields) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Model(&types.Course{}).
    Where("id = ?", courseID).
    Updates(fields).Error; err != nil {
    return translate(err)
  }
  return nil
}

func (r *courseRepo) SyncCompletedActivities(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).
    Model(&types.Course{}).
    Where("id = ?", courseID).
    Updates(map[string]any{
      "completed_activities": gorm.Expr(
        `(SELECT COUNT(*) FROM "activity" WHERE "activity"."course_id" = ? AND "activity"."status" = ?)`,
        courseID, types.StatusCompleted,
      ),
      "updated_at": time.Now(),
    }).Error; err != nil {
    return translate(err)
  }
  return nil
}

func (r *courseRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.Course{}).
    Where("id = ? AND status <> ?", courseID, types.StatusCompleted).
    Updates(map[string]any{
      "status":     types.StatusCompleted,
      "updated_at": time.Now(),
    })
  if res.Error != nil {
    return false, translate(res.Error)
  }
  return res.RowsAffected > 0, nil
}

func (r *courseRepo) ListDangling(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Course, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Course
  if err := transaction.WithContext(ctx).
    Where(`user_id = ? AND status = ? AND NOT EXISTS (
      SELECT 1 FROM "activity" WHERE "activity"."course_id" = "course"."id"
    )`, userID, types.StatusInProgress).
    Find(&results).Error; err != nil {
    return nil, translate(err)
  }
  return results, nil
}

func (r *courseRepo) FullDelete(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(courseIDs) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", courseIDs).
    Delete(&types.Course{}).Error; err != nil {
    return translate(err)
  }
  return nil
}
