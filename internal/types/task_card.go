package types

import (
  "time"

  "github.com/google/uuid"
)

// TaskCard is generated once per activity and immutable afterwards, except for
// the status flag marking whether the learner has visited it.
type TaskCard struct {
  ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  ActivityID  uuid.UUID `gorm:"type:uuid;not null;index:idx_task_card_activity_index,unique" json:"activity_id"`
  Activity    *Activity `gorm:"constraint:OnDelete:CASCADE;foreignKey:ActivityID;references:ID" json:"activity,omitempty"`
  Index       int       `gorm:"column:index;not null;index:idx_task_card_activity_index,unique" json:"index"`
  CardTitle   string    `gorm:"column:card_title;not null" json:"card_title"`
  CardContent string    `gorm:"column:card_content;not null" json:"card_content"`
  Status      string    `gorm:"column:status;not null;default:pending" json:"status"`
  CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (TaskCard) TableName() string { return "task_card" }
