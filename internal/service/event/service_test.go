package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository/memory"
)

type failingEmitter struct{ calls int }

func (f *failingEmitter) Emit(context.Context, string, interface{}) error {
	f.calls++
	return errors.New("outbox unavailable")
}

func TestEmitWritesPendingOutboxEvent(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Outbox(), zerolog.Nop())

	require.NoError(t, svc.Emit(context.Background(), model.EventLocationCreated, map[string]string{"slug": "downtown"}))

	events := store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventLocationCreated, events[0].EventType)
	assert.Equal(t, model.OutboxStatusPending, events[0].Status)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, "downtown", payload["slug"])
}

func TestEmitRejectsUnencodablePayload(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Outbox(), zerolog.Nop())

	err := svc.Emit(context.Background(), model.EventServiceCreated, make(chan int))
	assert.Error(t, err)
	assert.Empty(t, store.Events())
}

func TestEmitBestEffortSwallowsErrors(t *testing.T) {
	e := &failingEmitter{}
	assert.NotPanics(t, func() {
		EmitBestEffort(context.Background(), e, zerolog.Nop(), model.EventStaffCreated, nil)
	})
	assert.Equal(t, 1, e.calls)
}
