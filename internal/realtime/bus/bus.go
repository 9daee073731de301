package bus

import (
	"context"
	"fmt"

	"github.com/yungbote/crm-backend/internal/config"
	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, evt realtime.Event) error
	// Subscribe delivers events to onEvent until ctx is done.
	Subscribe(ctx context.Context, onEvent func(evt realtime.Event)) error
	Close() error
}

// New builds the bus selected by cfg.EventBus.
func New(cfg config.Config, log *logger.Logger) (Bus, error) {
	switch cfg.EventBus {
	case config.BusRedis:
		return NewRedisBus(log, cfg.RedisAddr, cfg.RedisChannel)
	case config.BusRabbitMQ:
		return NewRabbitMQBus(log, cfg.RabbitMQURL, cfg.RabbitMQQueue, 4)
	case config.BusNone, "":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unsupported event bus %q", cfg.EventBus)
	}
}

type Noop struct{}

func (Noop) Publish(context.Context, realtime.Event) error { return nil }

func (Noop) Subscribe(ctx context.Context, _ func(realtime.Event)) error { return nil }

func (Noop) Close() error { return nil }
