package types

// Shared status domain for courses, activities and their sub-states.
const (
  StatusPending    = "pending"
  StatusInProgress = "in_progress"
  StatusCompleted  = "completed"
)

// Quiz question answered-state markers.
const (
  QuestionStatusPending  = "pending"
  QuestionStatusAnswered = "answered"
)

const (
  FrequencyDaily  = "daily"
  FrequencyWeekly = "weekly"
)

const (
  ApproachTheoretical = "theoretical"
  ApproachPractical   = "practical"
)
