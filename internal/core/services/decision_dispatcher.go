package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pravaha-app/expense_backend/internal/core/domain"
	portssvc "github.com/pravaha-app/expense_backend/internal/core/ports/services"
)

// DecisionDispatcher delivers ExpenseDecided events to observers asynchronously
// to the decision itself. The decision is durable before an event is enqueued;
// delivery failures are retried once and then logged. Intent is at-least-once,
// so observers must tolerate duplicates.
type DecisionDispatcher struct {
	notifiers []portssvc.DecisionNotifierSvc
	events    chan domain.ExpenseDecidedEvent
	logger    *slog.Logger
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// deliveryTimeout bounds a single notifier call.
const deliveryTimeout = 10 * time.Second

// NewDecisionDispatcher creates a dispatcher with a buffered queue and starts
// its worker goroutine.
func NewDecisionDispatcher(logger *slog.Logger, notifiers ...portssvc.DecisionNotifierSvc) *DecisionDispatcher {
	d := &DecisionDispatcher{
		notifiers: notifiers,
		events:    make(chan domain.ExpenseDecidedEvent, 128),
		logger:    logger,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Dispatch enqueues an event for delivery. It never blocks the caller: when the
// queue is full the event is delivered inline on a best-effort goroutine.
func (d *DecisionDispatcher) Dispatch(event domain.ExpenseDecidedEvent) {
	select {
	case d.events <- event:
	default:
		d.logger.Warn("Decision event queue full, delivering out of band",
			slog.String("expense_id", event.ExpenseID))
		go d.deliver(event)
	}
}

// Close drains the queue and stops the worker.
func (d *DecisionDispatcher) Close() {
	d.stopOnce.Do(func() {
		close(d.events)
	})
	d.wg.Wait()
}

func (d *DecisionDispatcher) run() {
	defer d.wg.Done()
	for event := range d.events {
		d.deliver(event)
	}
}

func (d *DecisionDispatcher) deliver(event domain.ExpenseDecidedEvent) {
	for _, n := range d.notifiers {
		if err := d.notifyOnce(n, event); err != nil {
			// One retry, then give up and log. The decision itself is already
			// durable; a lost notification is recoverable operationally.
			if err := d.notifyOnce(n, event); err != nil {
				d.logger.Error("Failed to deliver decision event",
					slog.String("expense_id", event.ExpenseID),
					slog.String("decision", string(event.Decision)),
					slog.String("error", err.Error()))
			}
		}
	}
}

func (d *DecisionDispatcher) notifyOnce(n portssvc.DecisionNotifierSvc, event domain.ExpenseDecidedEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()
	return n.NotifyDecided(ctx, event)
}
