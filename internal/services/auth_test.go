package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jayp5545/skillbridge-ai/internal/apperr"
	"github.com/jayp5545/skillbridge-ai/internal/logger"
	"github.com/jayp5545/skillbridge-ai/internal/requestdata"
	"github.com/jayp5545/skillbridge-ai/internal/types"
)

func newAuthFixture(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	store := newFakeStore()
	users := &fakeUserRepo{s: store}
	return NewAuthService(nil, log, users, "test-secret", time.Hour), users
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	user := &types.User{Email: "Learner@Example.com ", Username: "learner", Password: "hunter2hunter2"}
	token, err := svc.RegisterUser(ctx, user)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if token == "" {
		t.Fatalf("register should return a token")
	}
	if user.Password == "hunter2hunter2" {
		t.Fatalf("password should be stored hashed")
	}

	// Email is normalized, so the original spelling still logs in.
	loginToken, err := svc.LoginUser(ctx, "learner@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	tokenCtx, err := svc.SetContextFromToken(ctx, loginToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	rd := requestdata.GetRequestData(tokenCtx)
	if rd == nil || rd.UserID != user.ID {
		t.Fatalf("token should resolve to the registered user")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	first := &types.User{Email: "a@example.com", Username: "a", Password: "longenough"}
	if _, err := svc.RegisterUser(ctx, first); err != nil {
		t.Fatalf("first register: %v", err)
	}
	second := &types.User{Email: "a@example.com", Username: "b", Password: "longenough"}
	if _, err := svc.RegisterUser(ctx, second); !errors.Is(err, apperr.ErrPreconditionFailed) {
		t.Fatalf("duplicate email: got %v, want ErrPreconditionFailed", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	user := &types.User{Email: "a@example.com", Username: "a", Password: "short"}
	if _, err := svc.RegisterUser(context.Background(), user); !errors.Is(err, apperr.ErrPreconditionFailed) {
		t.Fatalf("short password: got %v, want ErrPreconditionFailed", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()
	user := &types.User{Email: "a@example.com", Username: "a", Password: "longenough"}
	if _, err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.LoginUser(ctx, "a@example.com", "wrongwrong"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("wrong password: got %v, want ErrNotFound", err)
	}
}

func TestSetContextFromTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)
	if _, err := svc.SetContextFromToken(context.Background(), "not-a-jwt"); err == nil {
		t.Fatalf("garbage token should not parse")
	}
}
