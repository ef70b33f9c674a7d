package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"line-reservation-bot/internal/config"
	"line-reservation-bot/internal/line"
	"line-reservation-bot/internal/model"
)

// Store is the persistence surface the reminder job needs.
type Store interface {
	DueForReminder(ctx context.Context, storeID string, date time.Time) ([]model.Reservation, error)
	LogDelivery(ctx context.Context, userID string, reservationID *uint, kind, status, errorMsg string) error
}

// Pusher delivers messages to a user outside a reply window.
type Pusher interface {
	Push(ctx context.Context, userID string, messages []line.Message) error
}

// Scheduler pushes a reminder to every sender holding a pending
// reservation for the next day. Runs on a cron schedule, by default
// once every evening.
type Scheduler struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	schedule  string
	storeID   string
	store     Store
	pusher    Pusher
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.RWMutex
	now       func() time.Time
}

// NewScheduler creates a reminder scheduler.
func NewScheduler(cfg *config.ReminderConfig, storeID string, store Store, pusher Pusher) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		schedule: cfg.Schedule,
		storeID:  storeID,
		store:    store,
		pusher:   pusher,
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("reminder scheduler is already running")
	}

	// A previous Stop cancelled the context; recreate it so restart works.
	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.sendReminders)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Reminder scheduler started with schedule: %s", s.schedule)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	s.isRunning = false
	s.mu.Unlock()

	// Wait for running jobs outside the lock so IsRunning and
	// GetNextRun stay responsive while shutdown drains.
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		logrus.Info("Reminder scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Reminder scheduler stop timeout, forcing shutdown")
	}

	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Wait waits for any in-flight reminder run to finish.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// RunOnce triggers one reminder run immediately (for manual testing).
func (s *Scheduler) RunOnce() {
	s.sendReminders()
}

func (s *Scheduler) sendReminders() {
	s.wg.Add(1)
	defer s.wg.Done()

	tomorrow := s.now().AddDate(0, 0, 1)
	logrus.Infof("Sending reservation reminders for %s", tomorrow.Format("2006-01-02"))

	ctx, cancel := context.WithTimeout(s.ctx, time.Minute)
	defer cancel()

	reservations, err := s.store.DueForReminder(ctx, s.storeID, tomorrow)
	if err != nil {
		logrus.Errorf("Failed to find reservations due for reminder: %v", err)
		return
	}

	for _, r := range reservations {
		select {
		case <-s.ctx.Done():
			logrus.Warn("Reminder run cancelled")
			return
		default:
		}
		s.remind(r)
	}

	logrus.Infof("Reminder run completed: %d reservations", len(reservations))
}

func (s *Scheduler) remind(r model.Reservation) {
	displayTime := r.Time
	if len(displayTime) >= 5 {
		displayTime = displayTime[:5]
	}
	messages := []line.Message{line.TextMessage(fmt.Sprintf(
		"🔔 明日のご予約のお知らせ\n\n📅 日付: %s\n⏰ 時間: %s\n👥 人数: %d名\n予約番号: #%d\n\nご来店をお待ちしております。",
		r.Date, displayTime, r.People, r.ID))}

	ctx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()

	logCtx, logCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer logCancel()

	if err := s.pusher.Push(ctx, r.UserID, messages); err != nil {
		logrus.Errorf("Failed to push reminder for reservation #%d: %v", r.ID, err)
		if logErr := s.store.LogDelivery(logCtx, r.UserID, &r.ID, "reminder", "failure", err.Error()); logErr != nil {
			logrus.Errorf("Failed to log reminder outcome: %v", logErr)
		}
		return
	}
	if logErr := s.store.LogDelivery(logCtx, r.UserID, &r.ID, "reminder", "success", ""); logErr != nil {
		logrus.Errorf("Failed to log reminder outcome: %v", logErr)
	}
}
