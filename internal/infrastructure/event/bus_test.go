package event

import (
	"context"
	"errors"
	"testing"

	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	fail     error
	panics   bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, event)
	return h.fail
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func newTestEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, uuid.New(), "LedgerEntry")
	return &e
}

func TestInMemoryEventBus_PublishToSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	created := &recordingHandler{types: []string{"ledger.entry.created"}}
	allocated := &recordingHandler{types: []string{"ledger.stock.allocated"}}
	bus.Subscribe(created)
	bus.Subscribe(allocated)

	err := bus.Publish(context.Background(), newTestEvent("ledger.entry.created"))
	require.NoError(t, err)

	assert.Len(t, created.received, 1)
	assert.Empty(t, allocated.received)
}

func TestInMemoryEventBus_WildcardHandlerReceivesAll(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	audit := &recordingHandler{}
	bus.Subscribe(audit)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("ledger.entry.created"),
		newTestEvent("ledger.stock.allocated"),
	))

	assert.Len(t, audit.received, 2)
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &recordingHandler{types: []string{"ledger.entry.created"}, fail: errors.New("boom")}
	healthy := &recordingHandler{types: []string{"ledger.entry.created"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("ledger.entry.created"))
	assert.NoError(t, err)
	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEventBus_PanickingHandlerIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	exploding := &recordingHandler{types: []string{"ledger.entry.created"}, panics: true}
	healthy := &recordingHandler{types: []string{"ledger.entry.created"}}
	bus.Subscribe(exploding)
	bus.Subscribe(healthy)

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("ledger.entry.created"))
	})
	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := &recordingHandler{types: []string{"ledger.entry.created"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("ledger.entry.created")))
	assert.Empty(t, handler.received)
}
