package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/jayp5545/skillbridge-ai/internal/logger"
	"github.com/jayp5545/skillbridge-ai/internal/types"
)

type contentFixture struct {
	store  *fakeStore
	cards  *fakeTaskCardRepo
	quests *fakeQuizQuestionRepo
	acts   *fakeActivityRepo
	gen    *fakeGenerator
	svc    ContentService

	userID     uuid.UUID
	activityID uuid.UUID
}

func newContentFixture(t *testing.T, gen *fakeGenerator) *contentFixture {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	store := newFakeStore()
	users := &fakeUserRepo{s: store}
	courses := &fakeCourseRepo{s: store}
	f := &contentFixture{
		store:  store,
		cards:  &fakeTaskCardRepo{s: store},
		quests: &fakeQuizQuestionRepo{s: store},
		acts:   &fakeActivityRepo{s: store},
		gen:    gen,
	}
	f.svc = NewContentService(nil, log, courses, f.acts, f.cards, f.quests, gen, nil)

	ctx := context.Background()
	user := &types.User{Email: "learner@example.com", Username: "learner"}
	if _, err := users.Create(ctx, nil, []*types.User{user}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	f.userID = user.ID

	course := &types.Course{UserID: user.ID, Title: "Chess Openings", Approach: types.ApproachTheoretical, Status: types.StatusInProgress}
	if _, err := courses.Create(ctx, nil, []*types.Course{course}); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	activity := &types.Activity{
		CourseID:   course.ID,
		Index:      0,
		TaskTitle:  "The Italian Game",
		QuizTitle:  "Italian Game quiz",
		Status:     types.StatusInProgress,
		TaskStatus: types.StatusInProgress,
		QuizStatus: types.StatusPending,
	}
	if _, err := f.acts.Create(ctx, nil, []*types.Activity{activity}); err != nil {
		t.Fatalf("seed activity: %v", err)
	}
	f.activityID = activity.ID
	return f
}

func someCards(n int) []GeneratedTaskCard {
	cards := make([]GeneratedTaskCard, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, GeneratedTaskCard{Index: i, CardTitle: "Move", CardContent: "e4 e5"})
	}
	return cards
}

func someQuestions(n int) []GeneratedQuizQuestion {
	questions := make([]GeneratedQuizQuestion, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, GeneratedQuizQuestion{
			Index:       i,
			Question:    "Best reply?",
			Options:     []string{"a", "b", "c", "d"},
			AnswerIndex: 2,
		})
	}
	return questions
}

func TestEnsureTaskCardsGeneratesOnce(t *testing.T) {
	f := newContentFixture(t, &fakeGenerator{cards: someCards(8)})
	ctx := context.Background()

	first, err := f.svc.EnsureTaskCards(ctx, f.userID, f.activityID)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if len(first) != 8 {
		t.Fatalf("cards = %d, want 8", len(first))
	}

	second, err := f.svc.EnsureTaskCards(ctx, f.userID, f.activityID)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if len(second) != 8 {
		t.Fatalf("cards on refetch = %d, want 8", len(second))
	}
	if f.gen.cardCalls != 1 {
		t.Fatalf("generator calls = %d, want 1", f.gen.cardCalls)
	}
}

func TestEnsureTaskCardsConcurrentCallsCollapse(t *testing.T) {
	f := newContentFixture(t, &fakeGenerator{cards: someCards(8)})
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.EnsureTaskCards(ctx, f.userID, f.activityID)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
	}
	stored, _ := f.cards.GetByActivityID(ctx, nil, f.activityID)
	if len(stored) != 8 {
		t.Fatalf("persisted cards = %d, want exactly one batch of 8", len(stored))
	}
}

func TestEnsureQuizQuestionsSeedsCounters(t *testing.T) {
	f := newContentFixture(t, &fakeGenerator{cards: someCards(3), questions: someQuestions(10)})
	ctx := context.Background()

	if _, err := f.svc.EnsureTaskCards(ctx, f.userID, f.activityID); err != nil {
		t.Fatalf("cards: %v", err)
	}
	questions, err := f.svc.EnsureQuizQuestions(ctx, f.userID, f.activityID)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(questions) != 10 {
		t.Fatalf("questions = %d, want 10", len(questions))
	}

	activity, err := f.acts.GetByID(ctx, nil, f.activityID)
	if err != nil {
		t.Fatalf("reload activity: %v", err)
	}
	if activity.TotalScore != 10 {
		t.Fatalf("total_score = %d, want 10", activity.TotalScore)
	}
	if activity.QuizScore != 0 || activity.CompletedQuestions != 0 {
		t.Fatalf("quiz counters should start at zero, got (%d, %d)", activity.QuizScore, activity.CompletedQuestions)
	}
	if activity.CurrentQuestionID == nil || *activity.CurrentQuestionID != questions[0].ID {
		t.Fatalf("current_question_id should point at the first question")
	}

	// Refetch reads from the store.
	if _, err := f.svc.EnsureQuizQuestions(ctx, f.userID, f.activityID); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if f.gen.questionCalls != 1 {
		t.Fatalf("generator calls = %d, want 1", f.gen.questionCalls)
	}
}

func TestEnsureQuizQuestionsReseedsMissingCounters(t *testing.T) {
	f := newContentFixture(t, &fakeGenerator{})
	ctx := context.Background()

	// Questions persisted but counters never seeded, as left by a crash
	// between the two writes.
	stored := []*types.QuizQuestion{
		{ActivityID: f.activityID, Index: 0, Question: "q0", AnswerIndex: 0, Status: types.QuestionStatusPending},
		{ActivityID: f.activityID, Index: 1, Question: "q1", AnswerIndex: 1, Status: types.QuestionStatusPending},
	}
	if _, err := f.quests.Create(ctx, nil, stored); err != nil {
		t.Fatalf("seed questions: %v", err)
	}

	questions, err := f.svc.EnsureQuizQuestions(ctx, f.userID, f.activityID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(questions))
	}
	if f.gen.questionCalls != 0 {
		t.Fatalf("stored questions should not regenerate, calls = %d", f.gen.questionCalls)
	}

	activity, err := f.acts.GetByID(ctx, nil, f.activityID)
	if err != nil {
		t.Fatalf("reload activity: %v", err)
	}
	if activity.TotalScore != 2 {
		t.Fatalf("total_score = %d, want 2 after reseed", activity.TotalScore)
	}
	if activity.CurrentQuestionID == nil || *activity.CurrentQuestionID != questions[0].ID {
		t.Fatalf("current_question_id should point at the first question")
	}
}

func TestEnsureContentHidesForeignActivities(t *testing.T) {
	f := newContentFixture(t, &fakeGenerator{cards: someCards(1)})
	if _, err := f.svc.EnsureTaskCards(context.Background(), uuid.New(), f.activityID); err == nil {
		t.Fatalf("foreign user should not fetch cards")
	}
	if f.gen.cardCalls != 0 {
		t.Fatalf("generator should not run for foreign users")
	}
}
