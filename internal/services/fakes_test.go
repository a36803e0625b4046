package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jayp5545/skillbridge-ai/internal/apperr"
	"github.com/jayp5545/skillbridge-ai/internal/types"
)

// fakeStore backs the in-memory repo fakes. The fakes mirror the guard
// semantics of the real repos (precondition in the WHERE clause, applied
// bool from rows affected) so the service tests exercise the same
// convergence behavior the database gives us.
type fakeStore struct {
	mu sync.Mutex

	users        map[uuid.UUID]*types.User
	courses      map[uuid.UUID]*types.Course
	activities   map[uuid.UUID]*types.Activity
	cards        map[uuid.UUID]*types.TaskCard
	questions    map[uuid.UUID]*types.QuizQuestion
	certificates map[uuid.UUID]*types.Certificate
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        map[uuid.UUID]*types.User{},
		courses:      map[uuid.UUID]*types.Course{},
		activities:   map[uuid.UUID]*types.Activity{},
		cards:        map[uuid.UUID]*types.TaskCard{},
		questions:    map[uuid.UUID]*types.QuizQuestion{},
		certificates: map[uuid.UUID]*types.Certificate{},
	}
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// --- user ---

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, users []*types.User) ([]*types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range users {
		ensureID(&u.ID)
		cp := *u
		r.s.users[u.ID] = &cp
	}
	return users, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, _ *gorm.DB, email string) (*types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *fakeUserRepo) UpdateFields(_ context.Context, _ *gorm.DB, userID uuid.UUID, fields map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return apperr.ErrNotFound
	}
	if v, ok := fields["current_course_id"]; ok {
		id := v.(uuid.UUID)
		u.CurrentCourseID = &id
	}
	return nil
}

func (r *fakeUserRepo) AddPoints(_ context.Context, _ *gorm.DB, userID uuid.UUID, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return apperr.ErrNotFound
	}
	if delta > 0 {
		u.Points += delta
	}
	return nil
}

func (r *fakeUserRepo) SetStreakGuarded(_ context.Context, _ *gorm.DB, userID uuid.UUID, streak int, date time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return false, apperr.ErrNotFound
	}
	if u.StreakDate != nil && !u.StreakDate.Before(date) {
		return false, nil
	}
	u.LearningStreak = streak
	d := date
	u.StreakDate = &d
	return true, nil
}

func (r *fakeUserRepo) ResetStreakBefore(_ context.Context, _ *gorm.DB, userID uuid.UUID, cutoff time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return false, apperr.ErrNotFound
	}
	if u.LearningStreak == 0 || u.StreakDate == nil || !u.StreakDate.Before(cutoff) {
		return false, nil
	}
	u.LearningStreak = 0
	return true, nil
}

func (r *fakeUserRepo) ListTopByPoints(_ context.Context, _ *gorm.DB, limit int) ([]*types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*types.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- course ---

type fakeCourseRepo struct{ s *fakeStore }

func (r *fakeCourseRepo) Create(_ context.Context, _ *gorm.DB, courses []*types.Course) ([]*types.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range courses {
		ensureID(&c.ID)
		if c.Status == "" {
			c.Status = types.StatusInProgress
		}
		cp := *c
		r.s.courses[c.ID] = &cp
	}
	return courses, nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, _ *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[courseID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCourseRepo) GetByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]*types.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Course
	for _, c := range r.s.courses {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) UpdateFields(_ context.Context, _ *gorm.DB, courseID uuid.UUID, fields map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[courseID]
	if !ok {
		return apperr.ErrNotFound
	}
	if v, ok := fields["current_activity_id"]; ok {
		id := v.(uuid.UUID)
		c.CurrentActivityID = &id
	}
	return nil
}

func (r *fakeCourseRepo) SyncCompletedActivities(_ context.Context, _ *gorm.DB, courseID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[courseID]
	if !ok {
		return apperr.ErrNotFound
	}
	count := 0
	for _, a := range r.s.activities {
		if a.CourseID == courseID && a.Status == types.StatusCompleted {
			count++
		}
	}
	c.CompletedActivities = count
	return nil
}

func (r *fakeCourseRepo) MarkCompleted(_ context.Context, _ *gorm.DB, courseID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[courseID]
	if !ok {
		return false, apperr.ErrNotFound
	}
	if c.Status == types.StatusCompleted {
		return false, nil
	}
	c.Status = types.StatusCompleted
	return true, nil
}

func (r *fakeCourseRepo) ListDangling(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]*types.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Course
	for _, c := range r.s.courses {
		if c.UserID != userID || c.Status != types.StatusInProgress {
			continue
		}
		hasActivities := false
		for _, a := range r.s.activities {
			if a.CourseID == c.ID {
				hasActivities = true
				break
			}
		}
		if !hasActivities {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) FullDelete(_ context.Context, _ *gorm.DB, courseIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range courseIDs {
		delete(r.s.courses, id)
	}
	return nil
}

// --- activity ---

type fakeActivityRepo struct{ s *fakeStore }

func (r *fakeActivityRepo) Create(_ context.Context, _ *gorm.DB, activities []*types.Activity) ([]*types.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range activities {
		ensureID(&a.ID)
		cp := *a
		r.s.activities[a.ID] = &cp
	}
	return activities, nil
}

func (r *fakeActivityRepo) GetByID(_ context.Context, _ *gorm.DB, activityID uuid.UUID) (*types.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[activityID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeActivityRepo) GetByCourseID(_ context.Context, _ *gorm.DB, courseID uuid.UUID) ([]*types.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Activity
	for _, a := range r.s.activities {
		if a.CourseID == courseID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (r *fakeActivityRepo) GetByCourseAndIndex(_ context.Context, _ *gorm.DB, courseID uuid.UUID, index int) (*types.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.activities {
		if a.CourseID == courseID && a.Index == index {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *fakeActivityRepo) UpdateFields(_ context.Context, _ *gorm.DB, activityID uuid.UUID, fields map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.activities[activityID]; !ok {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *fakeActivityRepo) AdvanceCard(_ context.Context, _ *gorm.DB, activityID uuid.UUID, fromCompleted int, cardID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[activityID]
	if !ok {
		return false, apperr.ErrNotFound
	}
	if a.CompletedCards != fromCompleted {
		return false, nil
	}
	a.CompletedCards = fromCompleted + 1
	id := cardID
	a.CurrentCardID = &id
	return true, nil
}

func (r *fakeActivityRepo) SyncQuizCounters(_ context.Context, _ *gorm.DB, activityID uuid.UUID, questionID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[activityID]
	if !ok {
		return apperr.ErrNotFound
	}
	answered, correct := 0, 0
	for _, q := range r.s.questions {
		if q.ActivityID != activityID || q.Status != types.QuestionStatusAnswered {
			continue
		}
		answered++
		if q.SelectedOption != nil && *q.SelectedOption == q.AnswerIndex {
			correct++
		}
	}
	a.CompletedQuestions = answered
	a.QuizScore = correct
	id := questionID
	a.CurrentQuestionID = &id
	return nil
}

func (r *fakeActivityRepo) InitQuizCounters(_ context.Context, _ *gorm.DB, activityID uuid.UUID, total int, firstQuestionID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[activityID]
	if !ok {
		return false, apperr.ErrNotFound
	}
	if a.TotalScore != 0 {
		return false, nil
	}
	a.TotalScore = total
	a.QuizScore = 0
	a.CompletedQuestions = 0
	id := firstQuestionID
	a.CurrentQuestionID = &id
	return true, nil
}

func (r *fakeActivityRepo) MarkTaskCompleted(_ context.Context, _ *gorm.DB, activityID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[activityID]
	if !ok {
		return false, apperr.ErrNotFound
	}
	if a.TaskStatus == types.StatusCompleted {
		return false, nil
	}
	a.TaskStatus = types.StatusCompleted
	return true, nil
}

func (r *fakeActivityRepo) UnlockQuiz(_ context.Context, _ *gorm.DB, activityID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[activityID]
	if !ok {
		return false, apperr.ErrNotFound
	}
	if a.QuizStatus != types.StatusPending {
		return false, nil
	}
	a.QuizStatus = types.StatusInProgress
	return true, nil
}

func (r *fakeActivityRepo) MarkQuizCompleted(_ context.Context, _ *gorm.DB, activityID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[activityID]
	if !ok {
		return false, apperr.ErrNotFound
	}
	if a.QuizStatus == types.StatusCompleted {
		return false, nil
	}
	a.QuizStatus = types.StatusCompleted
	return true, nil
}

func (r *fakeActivityRepo) MarkCompleted(_ context.Context, _ *gorm.DB, activityID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[activityID]
	if !ok {
		return false, apperr.ErrNotFound
	}
	if a.Status == types.StatusCompleted || a.TaskStatus != types.StatusCompleted || a.QuizStatus != types.StatusCompleted {
		return false, nil
	}
	a.Status = types.StatusCompleted
	return true, nil
}

func (r *fakeActivityRepo) Unlock(_ context.Context, _ *gorm.DB, activityID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[activityID]
	if !ok {
		return false, apperr.ErrNotFound
	}
	if a.Status != types.StatusPending {
		return false, nil
	}
	a.Status = types.StatusInProgress
	a.TaskStatus = types.StatusInProgress
	return true, nil
}

// --- task card ---

type fakeTaskCardRepo struct{ s *fakeStore }

func (r *fakeTaskCardRepo) Create(_ context.Context, _ *gorm.DB, cards []*types.TaskCard) ([]*types.TaskCard, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range cards {
		for _, existing := range r.s.cards {
			if existing.ActivityID == c.ActivityID && existing.Index == c.Index {
				return nil, apperr.ErrStoreUnavailable
			}
		}
	}
	for _, c := range cards {
		ensureID(&c.ID)
		cp := *c
		r.s.cards[c.ID] = &cp
	}
	return cards, nil
}

func (r *fakeTaskCardRepo) GetByActivityID(_ context.Context, _ *gorm.DB, activityID uuid.UUID) ([]*types.TaskCard, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.TaskCard
	for _, c := range r.s.cards {
		if c.ActivityID == activityID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (r *fakeTaskCardRepo) GetByActivityAndIndex(_ context.Context, _ *gorm.DB, activityID uuid.UUID, index int) (*types.TaskCard, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.cards {
		if c.ActivityID == activityID && c.Index == index {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *fakeTaskCardRepo) CountByActivityID(_ context.Context, _ *gorm.DB, activityID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, c := range r.s.cards {
		if c.ActivityID == activityID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTaskCardRepo) MarkVisited(_ context.Context, _ *gorm.DB, cardID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cards[cardID]
	if !ok {
		return false, apperr.ErrNotFound
	}
	if c.Status != types.StatusPending {
		return false, nil
	}
	c.Status = types.StatusCompleted
	return true, nil
}

// --- quiz question ---

type fakeQuizQuestionRepo struct{ s *fakeStore }

func (r *fakeQuizQuestionRepo) Create(_ context.Context, _ *gorm.DB, questions []*types.QuizQuestion) ([]*types.QuizQuestion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range questions {
		for _, existing := range r.s.questions {
			if existing.ActivityID == q.ActivityID && existing.Index == q.Index {
				return nil, apperr.ErrStoreUnavailable
			}
		}
	}
	for _, q := range questions {
		ensureID(&q.ID)
		cp := *q
		r.s.questions[q.ID] = &cp
	}
	return questions, nil
}

func (r *fakeQuizQuestionRepo) GetByActivityID(_ context.Context, _ *gorm.DB, activityID uuid.UUID) ([]*types.QuizQuestion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.QuizQuestion
	for _, q := range r.s.questions {
		if q.ActivityID == activityID {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (r *fakeQuizQuestionRepo) GetByActivityAndIndex(_ context.Context, _ *gorm.DB, activityID uuid.UUID, index int) (*types.QuizQuestion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range r.s.questions {
		if q.ActivityID == activityID && q.Index == index {
			cp := *q
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *fakeQuizQuestionRepo) CountByActivityID(_ context.Context, _ *gorm.DB, activityID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, q := range r.s.questions {
		if q.ActivityID == activityID {
			count++
		}
	}
	return count, nil
}

func (r *fakeQuizQuestionRepo) RecordAnswer(_ context.Context, _ *gorm.DB, questionID uuid.UUID, selectedOption int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.questions[questionID]
	if !ok {
		return false, apperr.ErrNotFound
	}
	if q.Status != types.QuestionStatusPending {
		return false, nil
	}
	q.Status = types.QuestionStatusAnswered
	sel := selectedOption
	q.SelectedOption = &sel
	return true, nil
}

// --- certificate ---

type fakeCertificateRepo struct{ s *fakeStore }

func (r *fakeCertificateRepo) CreateIfAbsent(_ context.Context, _ *gorm.DB, cert *types.Certificate) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.certificates {
		if existing.CourseID == cert.CourseID && existing.UserID == cert.UserID {
			return false, nil
		}
	}
	ensureID(&cert.ID)
	cp := *cert
	r.s.certificates[cert.ID] = &cp
	return true, nil
}

func (r *fakeCertificateRepo) GetByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]*types.Certificate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Certificate
	for _, c := range r.s.certificates {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCertificateRepo) GetByCourseAndUser(_ context.Context, _ *gorm.DB, courseID, userID uuid.UUID) (*types.Certificate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.certificates {
		if c.CourseID == courseID && c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

// --- generator / notifier ---

type fakeGenerator struct {
	mu             sync.Mutex
	timeline       *GeneratedCourse
	timelineErr    error
	cards          []GeneratedTaskCard
	questions      []GeneratedQuizQuestion
	cardCalls      int
	questionCalls  int
	timelineCalls  int
}

func (g *fakeGenerator) GenerateCourseTimeline(_ context.Context, _ CourseTimelineInput) (*GeneratedCourse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timelineCalls++
	if g.timelineErr != nil {
		return nil, g.timelineErr
	}
	return g.timeline, nil
}

func (g *fakeGenerator) GenerateTaskCards(_ context.Context, _ TaskCardsInput) ([]GeneratedTaskCard, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cardCalls++
	return g.cards, nil
}

func (g *fakeGenerator) GenerateQuizQuestions(_ context.Context, _ QuizQuestionsInput) ([]GeneratedQuizQuestion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.questionCalls++
	return g.questions, nil
}

type capturedNotification struct {
	n  Notification
	at *time.Time
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []capturedNotification
}

func (f *fakeNotifier) Notify(_ context.Context, n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, capturedNotification{n: n})
}

func (f *fakeNotifier) ScheduleAt(_ context.Context, at time.Time, n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := at
	f.sent = append(f.sent, capturedNotification{n: n, at: &t})
}

func (f *fakeNotifier) Stop() {}
