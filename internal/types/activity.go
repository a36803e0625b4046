package types

import (
  "time"

  "github.com/google/uuid"
)

// Activity is one step of a course timeline. Its aggregate status is completed
// iff both task_status and quiz_status are completed; only the progression
// engine transitions any of the three.
type Activity struct {
  ID                 uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  CourseID           uuid.UUID  `gorm:"type:uuid;not null;index:idx_activity_course_index,unique" json:"course_id"`
  Course             *Course    `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
  Index              int        `gorm:"column:index;not null;index:idx_activity_course_index,unique" json:"index"`
  TaskTitle          string     `gorm:"column:task_title;not null" json:"task_title"`
  TaskDescription    string     `gorm:"column:task_description" json:"task_description"`
  QuizTitle          string     `gorm:"column:quiz_title" json:"quiz_title"`
  StartTime          *time.Time `gorm:"column:start_time" json:"start_time,omitempty"`
  EndTime            *time.Time `gorm:"column:end_time" json:"end_time,omitempty"`
  Status             string     `gorm:"column:status;not null;default:pending" json:"status"`
  TaskStatus         string     `gorm:"column:task_status;not null;default:pending" json:"task_status"`
  QuizStatus         string     `gorm:"column:quiz_status;not null;default:pending" json:"quiz_status"`
  CompletedCards     int        `gorm:"column:completed_cards;not null;default:0" json:"completed_cards"`
  CompletedQuestions int        `gorm:"column:completed_questions;not null;default:0" json:"completed_questions"`
  QuizScore          int        `gorm:"column:quiz_score;not null;default:0" json:"quiz_score"`
  TotalScore         int        `gorm:"column:total_score;not null;default:0" json:"total_score"`
  CurrentCardID      *uuid.UUID `gorm:"type:uuid;column:current_card_id" json:"current_card_id,omitempty"`
  CurrentQuestionID  *uuid.UUID `gorm:"type:uuid;column:current_question_id" json:"current_question_id,omitempty"`
  CreatedAt          time.Time  `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt          time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Activity) TableName() string { return "activity" }
