package services

import (
  "context"
  "time"

  "github.com/go-co-op/gocron"

  "github.com/jayp5545/skillbridge-ai/internal/logger"
)

// Notification is a local, fire-and-forget message. Delivery is not part of
// the engine's correctness; failures are logged and dropped.
type Notification struct {
  ID    string            `json:"id"`
  Title string            `json:"title"`
  Body  string            `json:"body"`
  Data  map[string]string `json:"data,omitempty"`
}

// NotificationSink delivers a notification to wherever the platform wants it
// (push gateway, websocket, log).
type NotificationSink interface {
  Deliver(ctx context.Context, n Notification) error
}

type NotificationScheduler interface {
  // Notify delivers immediately.
  Notify(ctx context.Context, n Notification)
  // ScheduleAt delivers once at the given time; past times are dropped.
  ScheduleAt(ctx context.Context, at time.Time, n Notification)
  Stop()
}

type logSink struct {
  log *logger.Logger
}

// NewLogSink is the default sink: it just records deliveries.
func NewLogSink(baseLog *logger.Logger) NotificationSink {
  return &logSink{log: baseLog.With("service", "NotificationLogSink")}
}

func (s *logSink) Deliver(_ context.Context, n Notification) error {
  s.log.Info("Notification delivered", "id", n.ID, "title", n.Title, "body", n.Body)
  return nil
}

type notificationScheduler struct {
  log   *logger.Logger
  sched *gocron.Scheduler
  sink  NotificationSink
}

func NewNotificationScheduler(baseLog *logger.Logger, sink NotificationSink) NotificationScheduler {
  s := gocron.NewScheduler(time.UTC)
  s.StartAsync()
  return &notificationScheduler{
    log:   baseLog.With("service", "NotificationScheduler"),
    sched: s,
    sink:  sink,
  }
}

func (s *notificationScheduler) Notify(ctx context.Context, n Notification) {
  if s == nil || s.sink == nil {
    return
  }
  if err := s.sink.Deliver(ctx, n); err != nil {
    s.log.Warn("Notification delivery failed", "id", n.ID, "error", err)
  }
}

func (s *notificationScheduler) ScheduleAt(_ context.Context, at time.Time, n Notification) {
  if s == nil || s.sched == nil {
    return
  }
  if !at.After(time.Now()) {
    s.log.Debug("Dropping notification scheduled in the past", "id", n.ID, "at", at)
    return
  }
  _, err := s.sched.Every(1).Day().StartAt(at).LimitRunsTo(1).Tag(n.ID).Do(func() {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := s.sink.Deliver(ctx, n); err != nil {
      s.log.Warn("Notification delivery failed", "id", n.ID, "error", err)
    }
  })
  if err != nil {
    s.log.Warn("Failed to schedule notification", "id", n.ID, "at", at, "error", err)
  }
}

func (s *notificationScheduler) Stop() {
  if s == nil || s.sched == nil {
    return
  }
  s.sched.Stop()
}
