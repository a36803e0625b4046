package types

import (
  "time"

  "github.com/google/uuid"
)

// Certificate is issued exactly once per completed course. The unique index on
// (course_id, user_id) backs the issuance guard in the progression engine.
type Certificate struct {
  ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  CourseID uuid.UUID `gorm:"type:uuid;not null;index:idx_certificate_course_user,unique" json:"course_id"`
  UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_certificate_course_user,unique" json:"user_id"`
  Username string    `gorm:"column:username;not null" json:"username"`
  Title    string    `gorm:"column:title;not null" json:"title"`
  IssuedAt time.Time `gorm:"column:issued_at;not null;default:now()" json:"issued_at"`
}

func (Certificate) TableName() string { return "certificate" }
