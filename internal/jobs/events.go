package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yungbote/crm-backend/internal/observability"
	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/realtime"
	"github.com/yungbote/crm-backend/internal/realtime/bus"
)

// EventLog appends committed domain events from the bus to a file log.
// Only the configured types are written; the rest are ignored.
type EventLog struct {
	bus     bus.Bus
	out     *logger.Logger
	metrics *observability.Metrics
	types   map[string]bool
}

func NewEventLog(b bus.Bus, out *logger.Logger, metrics *observability.Metrics, types []string) *EventLog {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return &EventLog{bus: b, out: out, metrics: metrics, types: set}
}

// Start subscribes and returns once delivery is running. Delivery stops
// when ctx is done.
func (e *EventLog) Start(ctx context.Context) error {
	if err := e.bus.Subscribe(ctx, e.record); err != nil {
		return fmt.Errorf("subscribe event log: %w", err)
	}
	return nil
}

func (e *EventLog) record(evt realtime.Event) {
	if !e.types[evt.Type] {
		return
	}
	// The payload carries customer details; only its id is logged.
	var ref struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(evt.Data, &ref)
	e.out.Info("CRM event received.",
		"event_id", evt.ID.String(),
		"type", evt.Type,
		"entity_id", ref.ID,
		"occurred_at", evt.OccurredAt.UTC().Format(time.RFC3339),
	)
	e.metrics.IncEvent(evt.Type, "logged")
}
