package services

import (
  "context"
  "encoding/json"
  "fmt"
  "time"

  "github.com/jayp5545/skillbridge-ai/internal/apperr"
  "github.com/jayp5545/skillbridge-ai/internal/logger"
)

// ContentGenerator is the validated boundary to the external generator. The
// model is trusted to aim for the documented shapes, but nothing it returns is
// persisted until it has been parsed and checked here; anything malformed
// surfaces as ErrGenerationInvalid.
type ContentGenerator interface {
  GenerateCourseTimeline(ctx context.Context, in CourseTimelineInput) (*GeneratedCourse, error)
  GenerateTaskCards(ctx context.Context, in TaskCardsInput) ([]GeneratedTaskCard, error)
  GenerateQuizQuestions(ctx context.Context, in QuizQuestionsInput) ([]GeneratedQuizQuestion, error)
}

type CourseTimelineInput struct {
  UserPrompt  string `json:"user_prompt"`
  Frequency   string `json:"frequency"`
  Time        string `json:"time"`
  CurrentDate string `json:"current_date"`
}

type GeneratedActivity struct {
  Index           int
  TaskTitle       string
  TaskDescription string
  QuizTitle       string
  StartTime       *time.Time
  EndTime         *time.Time
}

type GeneratedCourse struct {
  Title       string
  Description string
  Activities  []GeneratedActivity
}

type TaskCardsInput struct {
  TaskTitle       string `json:"task_title"`
  TaskDescription string `json:"task_description"`
  Approach        string `json:"approach"`
}

type GeneratedTaskCard struct {
  Index       int    `json:"index"`
  CardTitle   string `json:"card_title"`
  CardContent string `json:"card_content"`
}

type QuizQuestionsInput struct {
  QuizTitle       string              `json:"quiz_title"`
  SkillTitle      string              `json:"skill_title"`
  TaskTitle       string              `json:"task_title"`
  TaskDescription string              `json:"task_description"`
  LearningCards   []QuizQuestionCard  `json:"learning_cards"`
}

type QuizQuestionCard struct {
  CardTitle   string `json:"card_title"`
  CardContent string `json:"card_content"`
}

type GeneratedQuizQuestion struct {
  Index       int      `json:"index"`
  Question    string   `json:"question"`
  Options     []string `json:"options"`
  AnswerIndex int      `json:"answer_index"`
  Explanation string   `json:"explanation"`
}

type contentGenerator struct {
  log *logger.Logger
  ai  OpenAIClient
}

func NewContentGenerator(baseLog *logger.Logger, ai OpenAIClient) ContentGenerator {
  return &contentGenerator{
    log: baseLog.With("service", "ContentGenerator"),
    ai:  ai,
  }
}

type timelineResponse struct {
  Valid  bool   `json:"valid"`
  Reason string `json:"reason"`
  Course *struct {
    Title       string `json:"title"`
    Description string `json:"description"`
    Activities  []struct {
      Index           int    `json:"index"`
      TaskTitle       string `json:"task_title"`
      TaskDescription string `json:"task_description"`
      QuizTitle       string `json:"quiz_title"`
      StartTime       string `json:"start_time"`
      EndTime         string `json:"end_time"`
    } `json:"activities"`
  } `json:"course"`
}

func (g *contentGenerator) GenerateCourseTimeline(ctx context.Context, in CourseTimelineInput) (*GeneratedCourse, error) {
  raw, err := g.ai.GenerateContent(ctx, courseTimelinePrompt, in)
  if err != nil {
    return nil, err
  }

  var resp timelineResponse
  if err := json.Unmarshal(raw, &resp); err != nil {
    return nil, fmt.Errorf("%w: timeline response is not valid JSON: %v", apperr.ErrGenerationInvalid, err)
  }

  if !resp.Valid {
    reason := resp.Reason
    if reason == "" {
      reason = "the requested skill could not be turned into a learning path"
    }
    return nil, fmt.Errorf("%w: %s", apperr.ErrGenerationInvalid, reason)
  }
  if resp.Course == nil || resp.Course.Title == "" {
    return nil, fmt.Errorf("%w: timeline response missing course", apperr.ErrGenerationInvalid)
  }
  if len(resp.Course.Activities) == 0 {
    return nil, fmt.Errorf("%w: timeline response has zero activities", apperr.ErrGenerationInvalid)
  }

  out := &GeneratedCourse{
    Title:       resp.Course.Title,
    Description: resp.Course.Description,
  }
  for i, a := range resp.Course.Activities {
    if a.Index != i {
      return nil, fmt.Errorf("%w: activity indices are not contiguous from 0", apperr.ErrGenerationInvalid)
    }
    if a.TaskTitle == "" {
      return nil, fmt.Errorf("%w: activity %d missing task_title", apperr.ErrGenerationInvalid, i)
    }
    start, err := parseGeneratedTime(a.StartTime)
    if err != nil {
      return nil, fmt.Errorf("%w: activity %d start_time: %v", apperr.ErrGenerationInvalid, i, err)
    }
    end, err := parseGeneratedTime(a.EndTime)
    if err != nil {
      return nil, fmt.Errorf("%w: activity %d end_time: %v", apperr.ErrGenerationInvalid, i, err)
    }
    out.Activities = append(out.Activities, GeneratedActivity{
      Index:           a.Index,
      TaskTitle:       a.TaskTitle,
      TaskDescription: a.TaskDescription,
      QuizTitle:       a.QuizTitle,
      StartTime:       start,
      EndTime:         end,
    })
  }
  return out, nil
}

func (g *contentGenerator) GenerateTaskCards(ctx context.Context, in TaskCardsInput) ([]GeneratedTaskCard, error) {
  raw, err := g.ai.GenerateContent(ctx, taskCardsPrompt, in)
  if err != nil {
    return nil, err
  }

  var cards []GeneratedTaskCard
  if err := json.Unmarshal(raw, &cards); err != nil {
    return nil, fmt.Errorf("%w: task cards response is not valid JSON: %v", apperr.ErrGenerationInvalid, err)
  }
  if len(cards) == 0 {
    return nil, fmt.Errorf("%w: task cards response is empty", apperr.ErrGenerationInvalid)
  }
  for i, c := range cards {
    if c.Index != i {
      return nil, fmt.Errorf("%w: card indices are not contiguous from 0", apperr.ErrGenerationInvalid)
    }
    if c.CardTitle == "" || c.CardContent == "" {
      return nil, fmt.Errorf("%w: card %d missing title or content", apperr.ErrGenerationInvalid, i)
    }
  }
  return cards, nil
}

func (g *contentGenerator) GenerateQuizQuestions(ctx context.Context, in QuizQuestionsInput) ([]GeneratedQuizQuestion, error) {
  raw, err := g.ai.GenerateContent(ctx, quizQuestionsPrompt, in)
  if err != nil {
    return nil, err
  }

  var questions []GeneratedQuizQuestion
  if err := json.Unmarshal(raw, &questions); err != nil {
    return nil, fmt.Errorf("%w: quiz response is not valid JSON: %v", apperr.ErrGenerationInvalid, err)
  }
  if len(questions) == 0 {
    return nil, fmt.Errorf("%w: quiz response is empty", apperr.ErrGenerationInvalid)
  }
  for i, q := range questions {
    if q.Index != i {
      return nil, fmt.Errorf("%w: question indices are not contiguous from 0", apperr.ErrGenerationInvalid)
    }
    if q.Question == "" {
      return nil, fmt.Errorf("%w: question %d is empty", apperr.ErrGenerationInvalid, i)
    }
    if len(q.Options) != 4 {
      return nil, fmt.Errorf("%w: question %d has %d options, want 4", apperr.ErrGenerationInvalid, i, len(q.Options))
    }
    if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
      return nil, fmt.Errorf("%w: question %d answer_index %d out of range", apperr.ErrGenerationInvalid, i, q.AnswerIndex)
    }
  }
  return questions, nil
}

func parseGeneratedTime(s string) (*time.Time, error) {
  if s == "" {
    return nil, nil
  }
  for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z07:00", "2006-01-02"} {
    if t, err := time.Parse(layout, s); err == nil {
      return &t, nil
    }
  }
  return nil, fmt.Errorf("unparseable timestamp %q", s)
}
