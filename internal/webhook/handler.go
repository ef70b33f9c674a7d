package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"line-reservation-bot/internal/config"
	"line-reservation-bot/internal/intent"
	"line-reservation-bot/internal/line"
	"line-reservation-bot/internal/metrics"
	"line-reservation-bot/internal/model"
	"line-reservation-bot/internal/ratelimit"
	"line-reservation-bot/internal/sanitize"
	"line-reservation-bot/internal/signature"
	"line-reservation-bot/internal/validate"
)

// storeTimeout bounds each persistence call so a slow database never
// stalls event processing indefinitely. Persistence calls are not
// retried; a failure is answered with a generic apology reply.
const storeTimeout = 3 * time.Second

// replyTimeout bounds one full reply delivery including its retries.
const replyTimeout = 20 * time.Second

// ReservationStore is the persistence surface the orchestrator needs.
// Implemented by the gorm repository; faked in tests.
type ReservationStore interface {
	HasPendingOnDate(ctx context.Context, userID, date, storeID string) (bool, error)
	Create(ctx context.Context, reservation *model.Reservation) error
	ListUpcoming(ctx context.Context, userID, storeID string, from time.Time, limit int) ([]model.Reservation, error)
	LogDelivery(ctx context.Context, userID string, reservationID *uint, kind, status, errorMsg string) error
}

// Replier delivers reply messages back to the platform.
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages []line.Message) error
}

// Handler is the webhook orchestrator. It verifies the batch
// signature, acknowledges the platform synchronously, then fans events
// out to the pipeline stages in background goroutines. Per-event
// failures are converted into user-facing replies and never abort
// sibling events.
type Handler struct {
	verifier *signature.Verifier
	limiter  *ratelimit.Limiter
	rules    validate.Rules
	store    ReservationStore
	replier  Replier
	metrics  *metrics.Metrics

	storeID   string
	phone     string
	openHour  int
	closeHour int

	now func() time.Time
	wg  sync.WaitGroup
}

// NewHandler creates the orchestrator with all collaborators injected.
func NewHandler(cfg *config.Config, verifier *signature.Verifier, limiter *ratelimit.Limiter, store ReservationStore, replier Replier, m *metrics.Metrics) *Handler {
	return &Handler{
		verifier: verifier,
		limiter:  limiter,
		rules: validate.Rules{
			MinPeople:   1,
			MaxPeople:   20,
			OpenHour:    cfg.Store.OpenHour,
			CloseHour:   cfg.Store.CloseHour,
			HorizonDays: cfg.Store.HorizonDays,
		},
		store:     store,
		replier:   replier,
		metrics:   m,
		storeID:   cfg.Store.ID,
		phone:     cfg.Store.Phone,
		openHour:  cfg.Store.OpenHour,
		closeHour: cfg.Store.CloseHour,
		now:       time.Now,
	}
}

// Handle is the gin handler for POST /webhook. The 200 acknowledgment
// is written before any network call downstream: LINE redelivers the
// batch on timeout or non-2xx, so the ack must never wait on the
// database or the reply endpoint.
func (h *Handler) Handle(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusOK, "OK")
		return
	}

	if err := h.verifier.Verify(body, c.GetHeader("X-Line-Signature")); err != nil {
		logrus.Errorf("Webhook signature verification failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Events) == 0 {
		// LINE sends empty verification requests; always answer 200.
		c.String(http.StatusOK, "OK")
		return
	}

	c.String(http.StatusOK, "OK")

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.ProcessEvents(context.Background(), payload.Events)
	}()
}

// Drain waits for all in-flight background event processing to finish.
// Called on shutdown.
func (h *Handler) Drain() {
	h.wg.Wait()
}

// ProcessEvents runs the pipeline for each event of a batch. Events
// are independent and processed concurrently; an error in one never
// blocks or cancels another.
func (h *Handler) ProcessEvents(ctx context.Context, events []Event) {
	var wg sync.WaitGroup
	for _, event := range events {
		wg.Add(1)
		go func(ev Event) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					// Fail silent: replying here could loop with the
					// platform's automatic redelivery.
					logrus.Errorf("Unexpected failure processing event from %s: %v", ev.Source.UserID, r)
				}
			}()
			h.processEvent(ctx, ev)
		}(event)
	}
	wg.Wait()
}

func (h *Handler) processEvent(ctx context.Context, ev Event) {
	if ev.Type != "message" || ev.Message.Type != "text" {
		return
	}

	h.metrics.EventsReceived.Inc()
	start := h.now()
	defer func() {
		h.metrics.ProcessingTime.Observe(time.Since(start).Seconds())
	}()

	userID := ev.Source.UserID
	if userID == "" {
		userID = "unknown"
	}
	text := sanitize.Clean(ev.Message.Text)

	if !h.limiter.Allow(userID) {
		h.metrics.RateLimited.Inc()
		h.reply(ctx, ev.ReplyToken, userID, nil, rateLimitedReply())
		return
	}

	result := intent.Parse(text, h.now())
	switch result.Kind {
	case intent.KindMenu:
		h.reply(ctx, ev.ReplyToken, userID, nil, menuReply())
	case intent.KindFormatHelp:
		h.reply(ctx, ev.ReplyToken, userID, nil, formatHelpReply())
	case intent.KindStatus:
		h.handleStatus(ctx, ev, userID)
	case intent.KindThanks:
		h.reply(ctx, ev.ReplyToken, userID, nil, thanksReply(h.openHour, h.closeHour, h.phone))
	case intent.KindCancellation:
		h.reply(ctx, ev.ReplyToken, userID, nil, cancellationReply(h.phone))
	case intent.KindReservation:
		h.handleReservation(ctx, ev, userID, text, result.Request)
	default:
		h.reply(ctx, ev.ReplyToken, userID, nil, greetingReply())
	}
}

func (h *Handler) handleStatus(ctx context.Context, ev Event, userID string) {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	reservations, err := h.store.ListUpcoming(storeCtx, userID, h.storeID, h.now(), 5)
	if err != nil {
		logrus.Errorf("Failed to list reservations for %s: %v", userID, err)
		h.reply(ctx, ev.ReplyToken, userID, nil, statusErrorReply())
		return
	}
	h.reply(ctx, ev.ReplyToken, userID, nil, statusReply(reservations))
}

func (h *Handler) handleReservation(ctx context.Context, ev Event, userID, text string, req intent.Request) {
	now := h.now()

	violations := h.rules.Check(validate.Candidate{
		People: req.People,
		Date:   req.Date,
		Time:   req.Time,
	}, now)
	if len(violations) > 0 {
		h.metrics.ValidationFailures.Inc()
		h.reply(ctx, ev.ReplyToken, userID, nil, validationReply(violations))
		return
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	duplicate, err := h.store.HasPendingOnDate(storeCtx, userID, req.Date, h.storeID)
	if err != nil {
		logrus.Errorf("Duplicate guard failed for %s on %s: %v", userID, req.Date, err)
		h.reply(ctx, ev.ReplyToken, userID, nil, persistenceErrorReply(err, h.phone))
		return
	}
	if duplicate {
		h.metrics.DuplicateConflicts.Inc()
		h.reply(ctx, ev.ReplyToken, userID, nil, conflictReply())
		return
	}

	message := text
	if runes := []rune(message); len(runes) > 200 {
		message = string(runes[:200])
	}

	reservation := &model.Reservation{
		StoreID: h.storeID,
		UserID:  userID,
		Message: message,
		People:  req.People,
		Date:    req.Date,
		Time:    req.Time,
		Status:  model.StatusPending,
	}
	if err := h.store.Create(storeCtx, reservation); err != nil {
		logrus.Errorf("Failed to persist reservation for %s: %v", userID, err)
		h.reply(ctx, ev.ReplyToken, userID, nil, persistenceErrorReply(err, h.phone))
		return
	}

	h.metrics.ReservationsCreated.Inc()
	logrus.Infof("Reservation #%d created: store=%s user=%s date=%s time=%s people=%d",
		reservation.ID, h.storeID, userID, reservation.Date, reservation.Time, reservation.People)

	h.reply(ctx, ev.ReplyToken, userID, &reservation.ID, successReply(reservation))
}

// reply delivers messages for one event and records the outcome. A
// delivery that exhausts its retries is logged only; the reply token
// is already spent, so there is nothing left to tell the sender.
func (h *Handler) reply(ctx context.Context, replyToken, userID string, reservationID *uint, messages []line.Message) {
	replyCtx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	err := h.replier.Reply(replyCtx, replyToken, messages)

	logCtx, logCancel := context.WithTimeout(context.Background(), storeTimeout)
	defer logCancel()

	if err != nil {
		h.metrics.ReplyFailures.Inc()
		logrus.Errorf("Failed to deliver reply to %s: %v", userID, err)
		if logErr := h.store.LogDelivery(logCtx, userID, reservationID, "reply", "failure", err.Error()); logErr != nil {
			logrus.Errorf("Failed to log delivery outcome: %v", logErr)
		}
		return
	}

	h.metrics.ReplySuccesses.Inc()
	if logErr := h.store.LogDelivery(logCtx, userID, reservationID, "reply", "success", ""); logErr != nil {
		logrus.Errorf("Failed to log delivery outcome: %v", logErr)
	}
}
