package http

import (
	"bytes"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/crm-backend/internal/data/aggregates"
	"github.com/yungbote/crm-backend/internal/data/repos"
	"github.com/yungbote/crm-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/crm-backend/internal/http/handlers"
	"github.com/yungbote/crm-backend/internal/observability"
	"github.com/yungbote/crm-backend/internal/realtime/bus"
	"github.com/yungbote/crm-backend/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.New(db, log)
	tx := aggregates.NewGormTxRunner(db)
	events := bus.NewMemory()
	m := observability.New()

	return NewRouter(RouterConfig{
		Log:             log,
		Metrics:         m,
		CustomerHandler: httpH.NewCustomerHandler(log, services.NewCustomerService(log, tx, set.Customer, events, m)),
		ProductHandler:  httpH.NewProductHandler(log, services.NewProductService(log, tx, set.Product, events, m)),
		OrderHandler:    httpH.NewOrderHandler(log, services.NewOrderService(log, tx, set.Customer, set.Product, set.Order, events, m)),
		ReportHandler:   httpH.NewReportHandler(services.NewReportService(log, tx, set.Customer, set.Product, set.Order)),
		HealthHandler:   httpH.NewHealthHandler(log, nil),
	})
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]any
	if ct := rec.Header().Get("Content-Type"); len(ct) >= 16 && ct[:16] == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: decode: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, out
}

func errorCode(body map[string]any) string {
	env, _ := body["error"].(map[string]any)
	code, _ := env["code"].(string)
	return code
}

func TestHealthcheck(t *testing.T) {
	r := newTestRouter(t)
	rec, _ := do(t, r, nethttp.MethodGet, "/healthcheck", nil)
	if rec.Code != nethttp.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthcheck: %d %q", rec.Code, rec.Body.String())
	}
}

func TestCRMFlow(t *testing.T) {
	r := newTestRouter(t)

	rec, body := do(t, r, nethttp.MethodPost, "/api/customers", map[string]any{
		"name": "Alice", "email": "alice@example.com", "phone": "+12345678901",
	})
	if rec.Code != nethttp.StatusOK || body["success"] != true {
		t.Fatalf("create customer: %d %v", rec.Code, body)
	}
	customer := body["customer"].(map[string]any)
	customerGID, _ := customer["global_id"].(string)
	if customerGID == "" {
		t.Fatalf("customer view missing global_id: %v", customer)
	}

	rec, body = do(t, r, nethttp.MethodPost, "/api/customers", map[string]any{
		"name": "Alice", "email": "alice@example.com",
	})
	if rec.Code != nethttp.StatusOK || body["success"] != false {
		t.Fatalf("duplicate customer should be a 200 with success=false: %d %v", rec.Code, body)
	}

	rec, body = do(t, r, nethttp.MethodPost, "/api/products", map[string]any{
		"name": "Mouse", "price": "25.00", "stock": 3,
	})
	if rec.Code != nethttp.StatusOK || body["success"] != true {
		t.Fatalf("create product: %d %v", rec.Code, body)
	}
	product := body["product"].(map[string]any)
	if product["price"] != "25.00" || product["low_stock"] != true {
		t.Fatalf("unexpected product view: %v", product)
	}
	productGID := product["global_id"].(string)

	rec, body = do(t, r, nethttp.MethodPost, "/api/orders", map[string]any{
		"customer_id": customerGID,
		"product_ids": []string{productGID, productGID},
	})
	if rec.Code != nethttp.StatusOK || body["success"] != true {
		t.Fatalf("create order: %d %v", rec.Code, body)
	}
	order := body["order"].(map[string]any)
	if order["total_amount"] != "25.00" || len(order["products"].([]any)) != 1 {
		t.Fatalf("unexpected order view: %v", order)
	}

	rec, body = do(t, r, nethttp.MethodGet, "/api/orders/"+order["id"].(string), nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("get order: %d %v", rec.Code, body)
	}
	if got := body["order"].(map[string]any)["customer"].(map[string]any)["email"]; got != "alice@example.com" {
		t.Fatalf("get order: unexpected customer email %v", got)
	}

	rec, body = do(t, r, nethttp.MethodPost, "/api/products/low-stock/restock", nil)
	if rec.Code != nethttp.StatusOK || body["message"] != "Successfully updated 1 low-stock products." {
		t.Fatalf("restock: %d %v", rec.Code, body)
	}
	updated := body["updated_products"].([]any)
	if len(updated) != 1 || updated[0].(map[string]any)["stock"] != float64(13) {
		t.Fatalf("restock: unexpected products %v", updated)
	}

	rec, body = do(t, r, nethttp.MethodGet, "/api/reports/summary", nil)
	if rec.Code != nethttp.StatusOK || body["total_orders"] != float64(1) || body["total_revenue"] != "25.00" {
		t.Fatalf("summary: %d %v", rec.Code, body)
	}

	rec, body = do(t, r, nethttp.MethodGet, "/api/orders?customer_name=ali&product_id="+url.QueryEscape(productGID), nil)
	if rec.Code != nethttp.StatusOK || len(body["orders"].([]any)) != 1 {
		t.Fatalf("list orders: %d %v", rec.Code, body)
	}
}

func TestBulkCreateCustomers(t *testing.T) {
	r := newTestRouter(t)
	rec, body := do(t, r, nethttp.MethodPost, "/api/customers/bulk", map[string]any{
		"input": []map[string]any{
			{"name": "Ann", "email": "ann@example.com"},
			{"name": "Ann Dup", "email": "ann@example.com"},
		},
	})
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("bulk: %d %v", rec.Code, body)
	}
	if body["success_count"] != float64(1) || len(body["errors"].([]any)) != 1 {
		t.Fatalf("bulk: unexpected body %v", body)
	}
	fe := body["errors"].([]any)[0].(map[string]any)
	if fe["field"] != "input[1].email" || fe["code"] != "DUPLICATE_EMAIL" {
		t.Fatalf("bulk: unexpected error %v", fe)
	}
}

func TestTransportErrors(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"malformed json", nethttp.MethodPost, "/api/customers", "{", nethttp.StatusBadRequest, "invalid_request"},
		{"malformed customer id", nethttp.MethodPost, "/api/orders", map[string]any{"customer_id": "nope", "product_ids": []string{uuid.NewString()}}, nethttp.StatusBadRequest, "INVALID_ID_FORMAT"},
		{"malformed order id", nethttp.MethodGet, "/api/orders/nope", nil, nethttp.StatusBadRequest, "INVALID_ID_FORMAT"},
		{"missing order", nethttp.MethodGet, "/api/orders/" + uuid.NewString(), nil, nethttp.StatusNotFound, "not_found"},
		{"bad phone pattern", nethttp.MethodGet, "/api/customers?phone_pattern=(", nil, nethttp.StatusBadRequest, "INVALID_FORMAT"},
		{"bad stock filter", nethttp.MethodGet, "/api/products?stock_min=abc", nil, nethttp.StatusBadRequest, "invalid_request"},
		{"bad date filter", nethttp.MethodGet, "/api/orders?order_date_from=yesterday", nil, nethttp.StatusBadRequest, "invalid_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := do(t, r, tc.method, tc.path, tc.body)
			if rec.Code != tc.status || errorCode(body) != tc.code {
				t.Fatalf("got %d %q, want %d %q (%s)", rec.Code, errorCode(body), tc.status, tc.code, rec.Body.String())
			}
		})
	}
}
