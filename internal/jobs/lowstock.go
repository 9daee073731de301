package jobs

import (
	"context"

	"github.com/yungbote/crm-backend/internal/platform/logger"
)

// LowStock triggers the restock of every product under the stock threshold.
type LowStock struct {
	client *Client
	out    *logger.Logger
}

func NewLowStock(client *Client, out *logger.Logger) *LowStock {
	return &LowStock{client: client, out: out}
}

func (j *LowStock) Type() string { return JobLowStock }

func (j *LowStock) Run(ctx context.Context) error {
	j.out.Info("Starting low stock update job.")
	res, err := j.client.RestockLowStock(ctx)
	if err != nil {
		j.out.Error("Low stock update request failed.", "error", err)
		return err
	}
	j.out.Info("Restock response.", "success", res.Success, "message", res.Message)

	if !res.Success {
		j.out.Error("Low stock update failed.")
		for _, fe := range res.Errors {
			j.out.Error("Restock error.", "field", fe.Field, "message", fe.Message, "code", fe.Code)
		}
	} else if len(res.UpdatedProducts) == 0 {
		j.out.Info("No products found with low stock.")
	}
	for _, p := range res.UpdatedProducts {
		j.out.Info("Updated product.", "product_id", p.ID, "name", p.Name, "new_stock", p.Stock)
	}

	j.out.Info("Low stock update job finished.", "updated", len(res.UpdatedProducts))
	return nil
}
