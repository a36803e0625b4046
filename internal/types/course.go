package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

type Course struct {
  ID                  uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID              uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
  User                *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  Title               string         `gorm:"column:title;not null" json:"title"`
  Description         string         `gorm:"column:description" json:"description"`
  Frequency           string         `gorm:"column:frequency;not null" json:"frequency"`
  Approach            string         `gorm:"column:approach;not null" json:"approach"`
  TimeDuration        string         `gorm:"column:time_duration" json:"time_duration"`
  Status              string         `gorm:"column:status;not null;default:in_progress" json:"status"`
  CompletedActivities int            `gorm:"column:completed_activities;not null;default:0" json:"completed_activities"`
  CurrentActivityID   *uuid.UUID     `gorm:"type:uuid;column:current_activity_id" json:"current_activity_id,omitempty"`
  Metadata            datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
  CreatedAt           time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt           time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Course) TableName() string { return "course" }
