package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// QuizQuestion carries its own answered state (status + selected_option) so
// that re-answering the same index can be detected instead of drifting the
// activity counters.
type QuizQuestion struct {
  ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  ActivityID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_quiz_question_activity_index,unique" json:"activity_id"`
  Activity       *Activity      `gorm:"constraint:OnDelete:CASCADE;foreignKey:ActivityID;references:ID" json:"activity,omitempty"`
  Index          int            `gorm:"column:index;not null;index:idx_quiz_question_activity_index,unique" json:"index"`
  Question       string         `gorm:"column:question;not null" json:"question"`
  Options        datatypes.JSON `gorm:"column:options;type:jsonb;not null" json:"options"`
  AnswerIndex    int            `gorm:"column:answer_index;not null" json:"answer_index"`
  Explanation    string         `gorm:"column:explanation" json:"explanation"`
  Status         string         `gorm:"column:status;not null;default:pending" json:"status"`
  SelectedOption *int           `gorm:"column:selected_option" json:"selected_option,omitempty"`
  CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (QuizQuestion) TableName() string { return "quiz_question" }
