package jobs

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/crm-backend/internal/platform/httpx"
)

func TestClientRetriesRetryableStatus(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, `{"error":{"message":"busy"}}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"total_customers":4,"total_products":5,"total_orders":2,"total_revenue":"1234.50"}`)
	}))

	s, err := c.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, int64(2), s.TotalOrders)
	assert.Equal(t, "1234.50", s.TotalRevenue)
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusBadRequest, `{"error":{"message":"bad"}}`)
	}))

	_, err := c.Summary(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var se *httpx.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Status)
}

func TestClientGivesUpAfterRetries(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.RestockLowStock(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "one attempt plus two retries")
}

func TestClientOrdersSinceSendsFilter(t *testing.T) {
	since := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "2024-05-01T08:00:00Z", r.URL.Query().Get("order_date_from"))
		writeJSON(w, http.StatusOK, `{"orders":[{"id":"o1","customer":{"name":"Ann","email":"ann@example.com"},"order_date":"2024-05-02T10:00:00Z"}]}`)
	}))

	orders, err := c.OrdersSince(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ann@example.com", orders[0].Customer.Email)
}
