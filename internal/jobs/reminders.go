package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/platform/sendgrid"
)

// OrderReminders logs a reminder for every order placed within the lookback
// window. With a mailer set, each reminder is also emailed to the customer.
type OrderReminders struct {
	client   *Client
	out      *logger.Logger
	mailer   sendgrid.Client
	lookback time.Duration
	now      func() time.Time
}

func NewOrderReminders(client *Client, out *logger.Logger, lookback time.Duration) *OrderReminders {
	if lookback <= 0 {
		lookback = 7 * 24 * time.Hour
	}
	return &OrderReminders{client: client, out: out, lookback: lookback, now: time.Now}
}

// WithMailer enables email delivery. A nil mailer keeps the job log-only.
func (j *OrderReminders) WithMailer(m sendgrid.Client) *OrderReminders {
	j.mailer = m
	return j
}

func (j *OrderReminders) Type() string { return JobOrderReminders }

func (j *OrderReminders) Run(ctx context.Context) error {
	since := j.now().UTC().Add(-j.lookback)
	j.out.Info("Starting order reminder run.", "order_date_from", since.Format(time.RFC3339))

	orders, err := j.client.OrdersSince(ctx, since)
	if err != nil {
		j.out.Error("Failed to send order reminders.", "error", err)
		return err
	}
	if len(orders) == 0 {
		j.out.Info("No pending orders found in the lookback window.")
	}

	sent := 0
	for _, o := range orders {
		if o.Customer == nil || o.Customer.Email == "" {
			j.out.Warn("Skipping order with missing customer email.", "order_id", o.ID)
			continue
		}
		j.out.Info("Reminder for order.",
			"order_id", o.ID,
			"customer_name", o.Customer.Name,
			"customer_email", o.Customer.Email,
			"order_date", o.OrderDate.Format(time.RFC3339),
		)
		if j.mailer != nil {
			if err := j.email(ctx, o); err != nil {
				j.out.Error("Reminder email failed.", "order_id", o.ID, "error", err)
				continue
			}
		}
		sent++
	}

	j.out.Info("Order reminders processed!", "reminders", sent)
	return nil
}

func (j *OrderReminders) email(ctx context.Context, o OrderView) error {
	res, err := j.mailer.Send(ctx, sendgrid.Message{
		To:      sendgrid.Address{Email: o.Customer.Email, Name: o.Customer.Name},
		Subject: "Your recent order",
		Text: fmt.Sprintf("Hi %s,\n\nThis is a reminder about your order %s placed on %s (total %s).\n",
			o.Customer.Name, o.ID, o.OrderDate.UTC().Format("2006-01-02"), o.TotalAmount),
		Categories: []string{"order_reminder"},
	})
	if err != nil {
		return err
	}
	j.out.Info("Reminder email sent.", "order_id", o.ID, "message_id", res.MessageID)
	return nil
}
