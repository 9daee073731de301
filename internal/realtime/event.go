package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventCustomerCreated  = "customer.created"
	EventProductCreated   = "product.created"
	EventOrderCreated     = "order.created"
	EventProductRestocked = "product.restocked"
)

// Event is a committed domain change broadcast to other processes.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

func NewEvent(typ string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Event{
		ID:         uuid.New(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}, nil
}
