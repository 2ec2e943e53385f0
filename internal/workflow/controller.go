package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
	"github.com/nattawatt/canteen-cancellation/internal/metrics"
)

const defaultEffectorTimeout = 10 * time.Second

// Deps carries everything a controller needs. Publisher, Timeline, Quota,
// QuotaRecorder and Metrics are optional; the rest is required.
type Deps struct {
	Orders domain.OrderGateway
	Shops  domain.ShopGateway
	Cache  domain.ScheduleCache

	Quota         domain.QuotaGateway
	QuotaRecorder QuotaRecorder
	Publisher     domain.SchedulePublisher
	Timeline      domain.TimelineRepository
	Metrics       *metrics.WorkflowMetrics

	Logger *log.Entry
	// EffectorTimeout bounds every remote effector call. A timeout surfaces
	// as a retryable effector error, never as success.
	EffectorTimeout time.Duration
	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// QuotaRecorder appends to the operator's rolling cancellation count after a
// successful commit. Best effort.
type QuotaRecorder interface {
	RecordCancellation(ctx context.Context, operatorID string, at time.Time) error
}

// Controller runs one operator's cancellation session over a single
// sub-order. It owns the draft, sequences the effectors and guarantees the
// cancellation is committed at most once per session.
type Controller struct {
	mu sync.Mutex

	id         string
	entry      EntryPoint
	operatorID string
	order      domain.Order
	sub        domain.ShopSubOrder
	quota      int

	draft            Draft
	state            State
	lastErr          error
	submitting       bool
	availabilityDone bool
	schedule         domain.ShopSchedule

	deps        Deps
	logger      *log.Entry
	lastTouched time.Time
}

// NewController loads the target order and opens a session. A sub-order that
// is no longer pending/preparing yields a read-only controller rather than
// an error: the console still renders the "cannot be cancelled" view.
func NewController(ctx context.Context, id string, deps Deps, orderID, shopID, operatorID string) (*Controller, error) {
	if deps.Logger == nil {
		deps.Logger = log.New().WithField("component", "cancelflow")
	}
	if deps.EffectorTimeout <= 0 {
		deps.EffectorTimeout = defaultEffectorTimeout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	order, err := deps.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	sub, err := order.SubOrder(shopID)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		id:          id,
		operatorID:  operatorID,
		order:       order,
		sub:         *sub,
		draft:       NewDraft(),
		deps:        deps,
		logger:      deps.Logger.WithField("session_id", id).WithField("order_id", orderID).WithField("shop_id", shopID),
		lastTouched: deps.Now(),
	}

	entry, ok := EntryPointFor(sub.Status)
	if !ok {
		c.state = StateReadOnly
		c.lastErr = domain.ErrSubOrderNotCancellable
		c.logger.WithField("status", sub.Status).Info("cancellation opened on non-cancellable sub-order")
		return c, nil
	}
	c.entry = entry
	c.state = StateSelectReason

	if deps.Quota != nil {
		count, err := deps.Quota.GetCancellationCount(ctx, operatorID)
		if err != nil {
			// Display-only; the flow works without it.
			c.logger.WithError(err).Warn("cancellation count unavailable")
		} else {
			c.quota = count
		}
	}

	c.appendTimeline(domain.TimelineCancellationStarted, string(entry))
	if deps.Metrics != nil {
		deps.Metrics.RecordSessionStarted()
	}
	return c, nil
}

// Apply feeds one operator event into the session. Input while a commit is
// in flight is rejected with ErrSubmitInFlight and otherwise ignored.
func (c *Controller) Apply(ctx context.Context, event Event) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return domain.ErrSubmitInFlight
	}
	c.lastTouched = c.deps.Now()

	if _, ok := event.(Confirm); ok {
		return c.commitLocked(ctx)
	}
	defer c.mu.Unlock()

	before := c.draft.clone()
	next, err := Next(c.entry, c.state, event, &c.draft, c.deps.Now())
	if err != nil {
		c.lastErr = err
		return err
	}
	c.state = next
	c.lastErr = nil

	// An applied closure only covers the draft that produced it. If the
	// operator moves to another reason or edits the closure inputs after a
	// failed cancel, the next commit must run the new branch's mutation.
	if c.availabilityDone && availabilityInputsChanged(before, c.draft) {
		c.availabilityDone = false
		c.schedule = domain.ShopSchedule{}
	}
	return nil
}

// availabilityInputsChanged reports whether the draft fields feeding the
// availability mutation moved between two snapshots.
func availabilityInputsChanged(a, b Draft) bool {
	return a.SelectedReasonID != b.SelectedReasonID ||
		a.ReopenTime != b.ReopenTime ||
		a.ClosureChoice != b.ClosureChoice ||
		!a.ClosureUntilDate.Equal(b.ClosureUntilDate)
}

// commitLocked performs the branch's side effects in order: the availability
// mutation (at most once per draft), then the cancellation (at most once per
// session). Called with the mutex held; releases it around remote calls so
// reads stay responsive while the submit guard rejects further input.
func (c *Controller) commitLocked(ctx context.Context) error {
	if c.state.Terminal() {
		err := domain.ErrSessionFinished
		if c.state == StateReadOnly {
			err = domain.ErrSubOrderNotCancellable
		}
		c.mu.Unlock()
		return err
	}
	if err := ValidateCommit(c.entry, c.state, &c.draft, c.deps.Now()); err != nil {
		c.lastErr = err
		c.mu.Unlock()
		return err
	}

	c.submitting = true
	step := c.state
	draft := c.draft.clone()
	c.mu.Unlock()

	start := c.deps.Now()
	err := c.runCommit(ctx, step, draft)

	c.mu.Lock()
	c.submitting = false
	if c.deps.Metrics != nil {
		c.deps.Metrics.RecordCommitDuration(c.deps.Now().Sub(start))
	}
	if err != nil {
		c.lastErr = err
		if domain.IsPrecondition(err) {
			// The sub-order raced away from under us; the whole flow turns
			// read-only and the console shows a generic "could not cancel".
			c.state = StateReadOnly
		}
		if c.deps.Metrics != nil {
			c.deps.Metrics.RecordCommitFailure(string(step))
		}
		c.mu.Unlock()
		return err
	}

	c.lastErr = nil
	c.state = StateSuccess
	if c.deps.Metrics != nil {
		c.deps.Metrics.RecordSessionCompleted()
	}
	c.mu.Unlock()
	return nil
}

func (c *Controller) runCommit(ctx context.Context, step State, draft Draft) error {
	if err := c.applyAvailability(ctx, step, draft); err != nil {
		return err
	}

	reason := CommitText(c.entry, draft.SelectedReasonID, draft.CustomReasonText)

	callCtx, cancel := context.WithTimeout(ctx, c.deps.EffectorTimeout)
	defer cancel()
	sub, err := c.deps.Orders.CancelSubOrder(callCtx, c.order.ID, c.sub.ShopID, reason)
	if err != nil {
		if domain.IsPrecondition(err) {
			c.logger.WithError(err).Warn("sub-order status changed before commit")
			return err
		}
		c.logger.WithError(err).Warn("cancel sub-order failed")
		return fmt.Errorf("%w: %v", domain.ErrCancelFailed, err)
	}

	c.mu.Lock()
	c.sub = sub
	c.mu.Unlock()

	if step == StateOutOfStock {
		c.appendTimeline(domain.TimelineOutOfStockFlagged, strings.Join(draft.SelectedItems(), ","))
	}
	c.appendTimeline(domain.TimelineSubOrderCancelled, reason)

	if c.deps.QuotaRecorder != nil {
		if err := c.deps.QuotaRecorder.RecordCancellation(ctx, c.operatorID, c.deps.Now()); err != nil {
			c.logger.WithError(err).Warn("record cancellation quota failed")
		}
	}
	if c.deps.Publisher != nil {
		if err := c.deps.Publisher.PublishSubOrderCancelled(c.order.ID, c.sub.ShopID, reason, c.deps.Now()); err != nil {
			c.logger.WithError(err).Warn("publish sub-order cancelled failed")
		}
	}

	c.logger.WithField("reason", reason).Info("sub-order cancelled")
	return nil
}

// applyAvailability runs the branch's shop-schedule mutation, once. A retry
// after a failed cancel call must not close the shop a second time.
func (c *Controller) applyAvailability(ctx context.Context, step State, draft Draft) error {
	c.mu.Lock()
	done := c.availabilityDone
	c.mu.Unlock()
	if done {
		return nil
	}

	var (
		op       string
		schedule domain.ShopSchedule
		err      error
	)

	callCtx, cancel := context.WithTimeout(ctx, c.deps.EffectorTimeout)
	defer cancel()

	switch step {
	case StateShopBusy:
		op = "temporary_close"
		schedule, err = c.deps.Shops.TemporaryClose(callCtx, c.sub.ShopID, draft.ReopenTime)
	case StateShopAboutToClose:
		op = "close_today"
		schedule, err = c.deps.Shops.CloseToday(callCtx, c.sub.ShopID)
	case StateShopClosed:
		if draft.ClosureChoice == ClosureMultipleDays {
			op = "close_for_days"
			days := ClosureDays(c.deps.Now(), draft.ClosureUntilDate)
			schedule, err = c.deps.Shops.CloseForDays(callCtx, c.sub.ShopID, days)
		} else {
			op = "close_today"
			schedule, err = c.deps.Shops.CloseToday(callCtx, c.sub.ShopID)
		}
	default:
		// out_of_stock and direct cancel have no availability side effect.
		return nil
	}

	if err != nil {
		c.logger.WithError(err).WithField("op", op).Warn("availability mutation failed")
		return fmt.Errorf("%w: %v", domain.ErrAvailabilityFailed, err)
	}

	c.mu.Lock()
	c.availabilityDone = true
	c.schedule = schedule
	c.mu.Unlock()

	// Required side effect: the operator's own dashboard must flip its
	// open/closed badge immediately, so the shared cache gets the schedule
	// before anything else happens.
	c.deps.Cache.Put(schedule)
	if c.deps.Publisher != nil {
		if err := c.deps.Publisher.PublishScheduleChanged(schedule); err != nil {
			c.logger.WithError(err).Warn("publish schedule change failed")
		}
	}
	c.appendTimeline(domain.TimelineShopScheduleChanged, op)
	if c.deps.Metrics != nil {
		c.deps.Metrics.RecordAvailabilityCall(op)
	}
	return nil
}

func (c *Controller) appendTimeline(eventType, detail string) {
	if c.deps.Timeline == nil {
		return
	}
	event := domain.TimelineEvent{
		OrderID:  c.order.ID,
		ShopID:   c.sub.ShopID,
		Type:     eventType,
		Detail:   detail,
		Occurred: c.deps.Now(),
	}
	if err := c.deps.Timeline.Append(context.Background(), event); err != nil {
		c.logger.WithError(err).WithField("event", eventType).Warn("append timeline event failed")
	}
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// Entry returns the entry point; empty on a read-only session.
func (c *Controller) Entry() EntryPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entry
}

// State returns the current step.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft returns a copy of the working draft.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.clone()
}

// Err returns the error slot surfaced inline on the current step.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// CanAdvance reports whether the forward action is currently enabled.
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CanAdvance(c.entry, c.state, &c.draft, c.deps.Now())
}

// Order returns the order snapshot read at entry.
func (c *Controller) Order() domain.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order
}

// SubOrder returns the target sub-order; after success it reflects the
// cancelled state reported by the order service.
func (c *Controller) SubOrder() domain.ShopSubOrder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sub
}

// QuotaCount returns the operator's rolling cancellation count at entry.
func (c *Controller) QuotaCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quota
}

// Tip returns the conversation tip for the selected reason.
func (c *Controller) Tip() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft.SelectedReasonID == "" {
		return ""
	}
	return TipFor(c.draft.SelectedReasonID)
}

// Schedule returns the schedule produced by the availability step, if any.
func (c *Controller) Schedule() (domain.ShopSchedule, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schedule, c.availabilityDone
}

func (c *Controller) idleSince(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastTouched)
}

func (c *Controller) finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateSuccess
}
