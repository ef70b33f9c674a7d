package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"line-reservation-bot/internal/config"
	"line-reservation-bot/internal/line"
	"line-reservation-bot/internal/model"
)

type fakeStore struct {
	reservations []model.Reservation
	askedDate    string
}

func (s *fakeStore) DueForReminder(ctx context.Context, storeID string, date time.Time) ([]model.Reservation, error) {
	s.askedDate = date.Format("2006-01-02")
	return s.reservations, nil
}

func (s *fakeStore) LogDelivery(ctx context.Context, userID string, reservationID *uint, kind, status, errorMsg string) error {
	return nil
}

type fakePusher struct {
	mu     sync.Mutex
	pushes map[string][]line.Message
}

func (p *fakePusher) Push(ctx context.Context, userID string, messages []line.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pushes == nil {
		p.pushes = make(map[string][]line.Message)
	}
	p.pushes[userID] = messages
	return nil
}

func testScheduler(store Store, pusher Pusher) *Scheduler {
	cfg := &config.ReminderConfig{Enabled: true, Schedule: "0 0 18 * * *"}
	s := NewScheduler(cfg, "restaurant-001", store, pusher)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC) }
	return s
}

func TestRunOncePushesNextDayReminders(t *testing.T) {
	store := &fakeStore{reservations: []model.Reservation{
		{ID: 7, UserID: "user-a", Date: "2025-06-02", Time: "19:00:00", People: 4, Status: model.StatusPending},
	}}
	pusher := &fakePusher{}
	s := testScheduler(store, pusher)

	s.RunOnce()
	s.Wait()

	assert.Equal(t, "2025-06-02", store.askedDate, "reminders target tomorrow's reservations")
	require.Contains(t, pusher.pushes, "user-a")
	text := pusher.pushes["user-a"][0].Text
	assert.Contains(t, text, "明日のご予約")
	assert.Contains(t, text, "19:00")
	assert.Contains(t, text, "#7")
}

// blockingStore stalls DueForReminder until released, holding a
// reminder run open so shutdown has something to wait on.
type blockingStore struct {
	started chan struct{}
	release chan struct{}
}

func (s *blockingStore) DueForReminder(ctx context.Context, storeID string, date time.Time) ([]model.Reservation, error) {
	close(s.started)
	<-s.release
	return nil, nil
}

func (s *blockingStore) LogDelivery(ctx context.Context, userID string, reservationID *uint, kind, status, errorMsg string) error {
	return nil
}

func TestStatusQueriesRespondDuringStop(t *testing.T) {
	store := &blockingStore{started: make(chan struct{}), release: make(chan struct{})}
	cfg := &config.ReminderConfig{Enabled: true, Schedule: "* * * * * *"}
	s := NewScheduler(cfg, "restaurant-001", store, &fakePusher{})

	require.NoError(t, s.Start())

	select {
	case <-store.started:
	case <-time.After(5 * time.Second):
		t.Fatal("reminder run never started")
	}

	stopDone := make(chan struct{})
	go func() {
		s.Stop()
		close(stopDone)
	}()

	// Wait until Stop has cancelled the run context so it is really
	// waiting on the in-flight run before querying.
	select {
	case <-s.ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Stop never cancelled the scheduler context")
	}

	// Stop is now waiting on the in-flight run. Status queries must not
	// block behind it.
	queried := make(chan struct{})
	go func() {
		assert.False(t, s.IsRunning())
		assert.True(t, s.GetNextRun().IsZero())
		close(queried)
	}()

	select {
	case <-queried:
	case <-time.After(2 * time.Second):
		t.Fatal("status queries blocked while the scheduler was stopping")
	}

	close(store.release)
	select {
	case <-stopDone:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the run finished")
	}
	s.Wait()
}

func TestSchedulerRestart(t *testing.T) {
	s := testScheduler(&fakeStore{}, &fakePusher{})

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.False(t, s.GetNextRun().IsZero())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.NoError(t, s.ctx.Err(), "context must be active again after restart")
	s.Stop()
}
