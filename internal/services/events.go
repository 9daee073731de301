package services

import (
	"context"

	"github.com/yungbote/crm-backend/internal/observability"
	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/realtime"
	"github.com/yungbote/crm-backend/internal/realtime/bus"
)

// eventPublisher emits domain events after commit. Failures are logged and
// never affect the mutation result.
type eventPublisher struct {
	bus     bus.Bus
	log     *logger.Logger
	metrics *observability.Metrics
}

func newEventPublisher(b bus.Bus, log *logger.Logger, m *observability.Metrics) eventPublisher {
	if b == nil {
		b = bus.Noop{}
	}
	return eventPublisher{bus: b, log: log, metrics: m}
}

func (p eventPublisher) publish(ctx context.Context, typ string, data any) {
	evt, err := realtime.NewEvent(typ, data)
	if err != nil {
		p.log.Warn("build event failed", "type", typ, "error", err)
		p.metrics.IncEvent(typ, "error")
		return
	}
	if err := p.bus.Publish(ctx, evt); err != nil {
		p.log.Warn("publish event failed", "type", typ, "event_id", evt.ID, "error", err)
		p.metrics.IncEvent(typ, "error")
		return
	}
	p.metrics.IncEvent(typ, "ok")
}
