package types

import (
  "time"

  "github.com/google/uuid"
)

type User struct {
  ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Email           string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Password        string     `gorm:"not null;column:password" json:"-"`
  Username        string     `gorm:"not null;column:username" json:"username"`
  Points          int        `gorm:"not null;default:0;column:points" json:"points"`
  LearningStreak  int        `gorm:"not null;default:0;column:learning_streak" json:"learning_streak"`
  StreakDate      *time.Time `gorm:"column:streak_date" json:"streak_date,omitempty"`
  CurrentCourseID *uuid.UUID `gorm:"type:uuid;column:current_course_id" json:"current_course_id,omitempty"`
  CreatedAt       time.Time  `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt       time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
  return "user"
}
