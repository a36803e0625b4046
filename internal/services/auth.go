package services

import (
  "context"
  "fmt"
  "strings"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"
  "gorm.io/gorm"

  "github.com/jayp5545/skillbridge-ai/internal/apperr"
  "github.com/jayp5545/skillbridge-ai/internal/logger"
  "github.com/jayp5545/skillbridge-ai/internal/repos"
  "github.com/jayp5545/skillbridge-ai/internal/requestdata"
  "github.com/jayp5545/skillbridge-ai/internal/types"
)

type JWTClaims struct {
  jwt.RegisteredClaims
}

type AuthService interface {
  RegisterUser(ctx context.Context, user *types.User) (string, error)
  LoginUser(ctx context.Context, email, password string) (string, error)
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  GetAccessTTL() time.Duration
}

type authService struct {
  db           *gorm.DB
  log          *logger.Logger
  userRepo     repos.UserRepo
  jwtSecretKey string
  accessTTL    time.Duration
}

func NewAuthService(
  db *gorm.DB,
  baseLog *logger.Logger,
  userRepo repos.UserRepo,
  jwtSecretKey string,
  accessTTL time.Duration,
) AuthService {
  return &authService{
    db:           db,
    log:          baseLog.With("service", "AuthService"),
    userRepo:     userRepo,
    jwtSecretKey: jwtSecretKey,
    accessTTL:    accessTTL,
  }
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) (string, error) {
  user.Email = strings.ToLower(strings.TrimSpace(user.Email))
  user.Username = strings.TrimSpace(user.Username)
  if user.Email == "" || user.Username == "" {
    return "", fmt.Errorf("%w: email and username are required", apperr.ErrPreconditionFailed)
  }
  if len(user.Password) < 8 {
    return "", fmt.Errorf("%w: password must be at least 8 characters", apperr.ErrPreconditionFailed)
  }

  if _, err := as.userRepo.GetByEmail(ctx, nil, user.Email); err == nil {
    return "", fmt.Errorf("%w: email already registered", apperr.ErrPreconditionFailed)
  }

  hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
  if err != nil {
    return "", fmt.Errorf("Failed to hash password: %w", err)
  }
  user.Password = string(hashed)
  user.ID = uuid.New()

  if _, err := as.userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
    return "", err
  }
  return as.generateAccessToken(user)
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, error) {
  email = strings.ToLower(strings.TrimSpace(email))
  user, err := as.userRepo.GetByEmail(ctx, nil, email)
  if err != nil {
    return "", fmt.Errorf("%w: invalid email or password", apperr.ErrNotFound)
  }
  if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
    return "", fmt.Errorf("%w: invalid email or password", apperr.ErrNotFound)
  }
  return as.generateAccessToken(user)
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, fmt.Errorf("Failed to parse token: %w", err)
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, fmt.Errorf("Invalid or expired JWT token")
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, fmt.Errorf("Invalid user id in token: %w", err)
  }
  rd := &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      userID,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}
