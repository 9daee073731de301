package jobs

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yungbote/crm-backend/internal/platform/logger"
)

// Report logs the weekly totals.
type Report struct {
	client *Client
	out    *logger.Logger
}

func NewReport(client *Client, out *logger.Logger) *Report {
	return &Report{client: client, out: out}
}

func (j *Report) Type() string { return JobReport }

func (j *Report) Run(ctx context.Context) error {
	s, err := j.client.Summary(ctx)
	if err != nil {
		j.out.Error("CRM report generation failed.", "error", err)
		return err
	}
	revenue := decimal.Zero
	if s.TotalRevenue != "" {
		if revenue, err = decimal.NewFromString(s.TotalRevenue); err != nil {
			j.out.Error("CRM report generation failed.", "error", err)
			return fmt.Errorf("parse total_revenue %q: %w", s.TotalRevenue, err)
		}
	}
	j.out.Info(fmt.Sprintf("Report: %d customers, %d orders, %s revenue.", s.TotalCustomers, s.TotalOrders, revenue.StringFixed(2)),
		"total_customers", s.TotalCustomers,
		"total_orders", s.TotalOrders,
		"total_revenue", revenue.StringFixed(2),
	)
	return nil
}
