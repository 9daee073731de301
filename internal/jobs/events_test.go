package jobs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/crm-backend/internal/observability"
	"github.com/yungbote/crm-backend/internal/realtime"
	"github.com/yungbote/crm-backend/internal/realtime/bus"
)

func publish(t *testing.T, b bus.Bus, typ string, id uuid.UUID) realtime.Event {
	t.Helper()
	evt, err := realtime.NewEvent(typ, map[string]any{"id": id, "email": "ada@example.com"})
	require.NoError(t, err)
	require.NoError(t, b.Publish(context.Background(), evt))
	return evt
}

func TestEventLogWritesSelectedEvents(t *testing.T) {
	b := bus.NewMemory()
	out, read := fileSink(t)
	metrics := observability.New()
	types := DefaultConfig().Events.Types

	require.NoError(t, NewEventLog(b, out, metrics, types).Start(context.Background()))

	customerID, orderID, productID := uuid.New(), uuid.New(), uuid.New()
	customer := publish(t, b, realtime.EventCustomerCreated, customerID)
	publish(t, b, realtime.EventProductCreated, uuid.New())
	publish(t, b, realtime.EventOrderCreated, orderID)
	publish(t, b, realtime.EventProductRestocked, productID)

	entries := read()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"CRM event received.", "CRM event received.", "CRM event received."}, messages(entries))

	assert.Equal(t, realtime.EventCustomerCreated, entries[0]["type"])
	assert.Equal(t, customer.ID.String(), entries[0]["event_id"])
	assert.Equal(t, customerID.String(), entries[0]["entity_id"])
	assert.NotContains(t, entries[0], "email")
	assert.Equal(t, realtime.EventOrderCreated, entries[1]["type"])
	assert.Equal(t, orderID.String(), entries[1]["entity_id"])
	assert.Equal(t, realtime.EventProductRestocked, entries[2]["type"])
	assert.Equal(t, productID.String(), entries[2]["entity_id"])
}

func TestEventLogNoopBusWritesNothing(t *testing.T) {
	out, read := fileSink(t)
	b := bus.Noop{}

	require.NoError(t, NewEventLog(b, out, nil, DefaultConfig().Events.Types).Start(context.Background()))
	publish(t, b, realtime.EventOrderCreated, uuid.New())

	assert.Empty(t, read())
}

func TestLoadConfigEvents(t *testing.T) {
	path := writeConfig(t, `
events:
  log_path: /var/log/crm/events.log
  types: [order.created]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Events.IsEnabled())
	assert.Equal(t, "/var/log/crm/events.log", cfg.Events.LogPath)
	assert.Equal(t, []string{realtime.EventOrderCreated}, cfg.Events.Types)

	_, err = LoadConfig(writeConfig(t, `
events:
  types: [order.deleted]
`))
	require.ErrorContains(t, err, `unknown event type "order.deleted"`)
}
