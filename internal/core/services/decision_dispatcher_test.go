package services_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pravaha-app/expense_backend/internal/core/domain"
	"github.com/pravaha-app/expense_backend/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingNotifier fails the first failures calls, then records deliveries.
type countingNotifier struct {
	mu        sync.Mutex
	failures  int
	delivered []domain.ExpenseDecidedEvent
}

func (n *countingNotifier) NotifyDecided(ctx context.Context, event domain.ExpenseDecidedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failures > 0 {
		n.failures--
		return assert.AnError
	}
	n.delivered = append(n.delivered, event)
	return nil
}

func (n *countingNotifier) events() []domain.ExpenseDecidedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.ExpenseDecidedEvent(nil), n.delivered...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvent() domain.ExpenseDecidedEvent {
	return domain.ExpenseDecidedEvent{
		ExpenseID:  uuid.NewString(),
		Decision:   domain.StatusApproved,
		ApproverID: uuid.NewString(),
		OwnerID:    uuid.NewString(),
		Timestamp:  time.Now(),
	}
}

func TestDecisionDispatcher_DeliversInOrder(t *testing.T) {
	notifier := &countingNotifier{}
	dispatcher := services.NewDecisionDispatcher(discardLogger(), notifier)

	first := testEvent()
	second := testEvent()
	dispatcher.Dispatch(first)
	dispatcher.Dispatch(second)
	dispatcher.Close()

	events := notifier.events()
	require.Len(t, events, 2)
	assert.Equal(t, first.ExpenseID, events[0].ExpenseID)
	assert.Equal(t, second.ExpenseID, events[1].ExpenseID)
}

func TestDecisionDispatcher_RetriesOnceOnFailure(t *testing.T) {
	notifier := &countingNotifier{failures: 1}
	dispatcher := services.NewDecisionDispatcher(discardLogger(), notifier)

	event := testEvent()
	dispatcher.Dispatch(event)
	dispatcher.Close()

	events := notifier.events()
	require.Len(t, events, 1)
	assert.Equal(t, event.ExpenseID, events[0].ExpenseID)
}

func TestDecisionDispatcher_GivesUpAfterRetry(t *testing.T) {
	notifier := &countingNotifier{failures: 2}
	dispatcher := services.NewDecisionDispatcher(discardLogger(), notifier)

	dispatcher.Dispatch(testEvent())
	dispatcher.Close()

	assert.Empty(t, notifier.events())
}

func TestDecisionDispatcher_FansOutToAllNotifiers(t *testing.T) {
	first := &countingNotifier{}
	second := &countingNotifier{}
	dispatcher := services.NewDecisionDispatcher(discardLogger(), first, second)

	dispatcher.Dispatch(testEvent())
	dispatcher.Close()

	assert.Len(t, first.events(), 1)
	assert.Len(t, second.events(), 1)
}

func TestDecisionDispatcher_CloseIsIdempotent(t *testing.T) {
	dispatcher := services.NewDecisionDispatcher(discardLogger(), &countingNotifier{})
	dispatcher.Close()
	dispatcher.Close()
}
