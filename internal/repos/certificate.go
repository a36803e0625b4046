package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"

  "github.com/jayp5545/skillbridge-ai/internal/logger"
  "github.com/jayp5545/skillbridge-ai/internal/types"
)

type CertificateRepo interface {
  // CreateIfAbsent issues at most one certificate per (course, user). The
  // existence check plus the conflict-ignoring insert keep concurrent or
  // retried completion triggers from producing duplicates.
  CreateIfAbsent(ctx context.Context, tx *gorm.DB, cert *types.Certificate) (bool, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Certificate, error)
  GetByCourseAndUser(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID) (*types.Certificate, error)
}

type certificateRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCertificateRepo(db *gorm.DB, baseLog *logger.Logger) CertificateRepo {
  repoLog := baseLog.With("repo", "CertificateRepo")
  return &certificateRepo{db: db, log: repoLog}
}

func (r *certificateRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, cert *types.Certificate) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Certificate{}).
    Where("course_id = ? AND user_id = ?", cert.CourseID, cert.UserID).
    Count(&count).Error; err != nil {
    return false, translate(err)
  }
  if count > 0 {
    return false, nil
  }

  res := transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns:   []clause.Column{{Name: "course_id"}, {Name: "user_id"}},
      DoNothing: true,
    }).
    Create(cert)
  if res.Error != nil {
    return false, translate(res.Error)
  }
  return res.RowsAffected > 0, nil
}

func (r *certificateRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Certificate, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Certificate
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("issued_at DESC").
    Find(&results).Error; err != nil {
    return nil, translate(err)
  }
  return results, nil
}

func (r *certificateRepo) GetByCourseAndUser(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID) (*types.Certificate, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var cert types.Certificate
  if err := transaction.WithContext(ctx).
    Where("course_id = ? AND user_id = ?", courseID, userID).
    First(&cert).Error; err != nil {
    return nil, translate(err)
  }
  return &cert, nil
}
