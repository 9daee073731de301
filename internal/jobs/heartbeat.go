package jobs

import (
	"context"

	"github.com/yungbote/crm-backend/internal/platform/logger"
)

// Heartbeat records that the API answers its health check.
type Heartbeat struct {
	client *Client
	out    *logger.Logger
}

func NewHeartbeat(client *Client, out *logger.Logger) *Heartbeat {
	return &Heartbeat{client: client, out: out}
}

func (j *Heartbeat) Type() string { return JobHeartbeat }

func (j *Heartbeat) Run(ctx context.Context) error {
	body, err := j.client.Healthcheck(ctx)
	status := "responsive"
	switch {
	case err != nil:
		status = "error: " + err.Error()
	case body != "ok":
		status = "unexpected response"
	}
	j.out.Info("CRM is alive.", "api_status", status)
	return err
}
