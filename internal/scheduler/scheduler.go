package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/example/wordbot/internal/config"
	"github.com/example/wordbot/internal/metrics"
	"github.com/example/wordbot/pkg/models"
)

const reminderTag = "daily-reminder"

// Notifier delivers the daily reminder to one learner
type Notifier interface {
	SendReminder(ctx context.Context, user models.User) error
}

// UserLister enumerates the learners to remind
type UserLister interface {
	GetAll(ctx context.Context) ([]models.User, error)
}

// NextDelay returns how long to wait from now until hour:minute next occurs in
// loc. When now is exactly at that time the delay is a full day.
func NextDelay(now time.Time, hour, minute int, loc *time.Location) time.Duration {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next.Sub(local)
}

// Scheduler manages the daily reminder
type Scheduler struct {
	scheduler *gocron.Scheduler
	users     UserLister
	notifier  Notifier
	hour      int
	minute    int
	loc       *time.Location
	logger    logrus.FieldLogger
	now       func() time.Time
}

// New creates a new scheduler instance
func New(cfg config.ReminderConfig, users UserLister, notifier Notifier, logger logrus.FieldLogger) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid reminder timezone: %w", err)
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		users:     users,
		notifier:  notifier,
		hour:      cfg.Hour,
		minute:    cfg.Minute,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Start arms the first reminder and runs the scheduler in the background.
// The context is handed to every fire.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.arm(ctx); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// NextRun reports when the reminder fires next
func (s *Scheduler) NextRun() time.Time {
	_, next := s.scheduler.NextRun()
	return next
}

// arm registers a one-shot job at the next reminder time. Every fire re-arms
// so the delay is recomputed in local time each day.
func (s *Scheduler) arm(ctx context.Context) error {
	at, delay := s.nextRun()

	_, err := s.scheduler.Every(1).Day().StartAt(at).LimitRunsTo(1).Tag(reminderTag).Do(s.run, ctx)
	if err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"at":    at.In(s.loc).Format(time.RFC3339),
		"delay": delay.String(),
	}).Info("next reminder scheduled")
	return nil
}

// nextRun computes the next fire time from a single reading of the clock
func (s *Scheduler) nextRun() (time.Time, time.Duration) {
	now := s.now()
	delay := NextDelay(now, s.hour, s.minute, s.loc)
	return now.Add(delay), delay
}

// run is the body of the reminder job: fire, drop the spent job and arm the
// next one so only a single reminder job is ever registered.
func (s *Scheduler) run(ctx context.Context) {
	s.Fire(ctx)
	if err := s.scheduler.RemoveByTag(reminderTag); err != nil {
		s.logger.WithError(err).Warn("failed to remove fired reminder job")
	}
	if err := s.arm(ctx); err != nil {
		s.logger.WithError(err).Error("failed to re-arm reminder")
	}
}

// Fire sends one reminder to every learner. A failed delivery is logged and
// does not stop the others.
func (s *Scheduler) Fire(ctx context.Context) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list learners for reminder")
		return
	}

	var delivered int
	for _, user := range users {
		if ctx.Err() != nil {
			return
		}
		if err := s.notifier.SendReminder(ctx, user); err != nil {
			metrics.RecordReminder(false)
			s.logger.WithError(err).WithField("learner", user.ExternalID).Warn("failed to send reminder")
			continue
		}
		metrics.RecordReminder(true)
		delivered++
	}

	s.logger.WithFields(logrus.Fields{
		"learners":  len(users),
		"delivered": delivered,
	}).Info("reminders sent")
}
