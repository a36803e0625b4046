package services

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/jayp5545/skillbridge-ai/internal/logger"
  "github.com/jayp5545/skillbridge-ai/internal/repos"
  "github.com/jayp5545/skillbridge-ai/internal/types"
)

const defaultLeaderboardLimit = 20

// LeaderboardEntry is the public slice of a user shown on the leaderboard.
type LeaderboardEntry struct {
  Rank           int       `json:"rank"`
  UserID         uuid.UUID `json:"user_id"`
  Username       string    `json:"username"`
  Points         int       `json:"points"`
  LearningStreak int       `json:"learning_streak"`
}

type UserService interface {
  GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error)
  Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

type userService struct {
  db       *gorm.DB
  log      *logger.Logger
  userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo) UserService {
  return &userService{
    db:       db,
    log:      baseLog.With("service", "UserService"),
    userRepo: userRepo,
  }
}

func (us *userService) GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error) {
  return us.userRepo.GetByID(ctx, nil, userID)
}

func (us *userService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
  if limit <= 0 || limit > 100 {
    limit = defaultLeaderboardLimit
  }
  users, err := us.userRepo.ListTopByPoints(ctx, nil, limit)
  if err != nil {
    return nil, err
  }
  entries := make([]LeaderboardEntry, 0, len(users))
  for i, u := range users {
    entries = append(entries, LeaderboardEntry{
      Rank:           i + 1,
      UserID:         u.ID,
      Username:       u.Username,
      Points:         u.Points,
      LearningStreak: u.LearningStreak,
    })
  }
  return entries, nil
}
