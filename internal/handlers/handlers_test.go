package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"restaurant_pos/internal/dbtest"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type stubSessions map[string]models.CallerContext

func (s stubSessions) Open(context.Context, string, string) (*services.Session, error) {
	return nil, &services.AuthorizationError{Message: "invalid staff id or PIN"}
}

func (s stubSessions) Resolve(_ context.Context, token string) (*models.CallerContext, error) {
	caller, ok := s[token]
	if !ok {
		return nil, services.ErrSessionNotFound
	}
	return &caller, nil
}

func (s stubSessions) Close(context.Context, string) error { return nil }

type testServer struct {
	*dbtest.Fixture
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	f := dbtest.Seed(t)
	deps := services.Deps{Store: f.Store, Log: log}
	orders := services.NewOrderService(deps)
	payments := services.NewPaymentService(deps)
	sessions := stubSessions{"waiter": f.Waiter(), "manager": f.Manager()}

	router := gin.New()
	RegisterRoutes(router, Handlers{
		Sessions: NewSessionHandler(sessions, log),
		POS:      NewPOSHandler(services.NewPosService(f.Store, orders), payments, log),
		Orders:   NewOrderHandler(orders, payments, log),
		Tables:   NewTableHandler(services.NewTableService(f.Store, log), log),
	}, sessions, log)
	return &testServer{Fixture: f, router: router}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func (s *testServer) openOrder(t *testing.T, table *models.Table) models.Order {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/orders", "waiter", gin.H{
		"branch_id": s.Branch.ID,
		"table_id":  table.ID,
		"items": []gin.H{
			{"menu_item_id": s.Menu["Bruschetta"].ID, "quantity": 2},
			{"menu_item_id": s.Menu["Lasagna"].ID},
		},
		"discount_type":  "percent",
		"discount_value": "10",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create order = %d %s", w.Code, w.Body.String())
	}
	var order models.Order
	decode(t, w, &order)
	return order
}

func TestCreateOrderAndPay(t *testing.T) {
	s := newTestServer(t)
	order := s.openOrder(t, s.Tables[0])

	if order.Total.StringFixed(2) != "34.62" || len(order.Items) != 2 || order.Items[1].Quantity != 1 {
		t.Fatalf("order = total %s, %d lines", order.Total, len(order.Items))
	}

	w := s.do(t, http.MethodPost, "/api/orders", "waiter", gin.H{
		"branch_id": s.Branch.ID,
		"table_id":  s.Tables[0].ID,
		"items":     []gin.H{{"menu_item_id": s.Menu["Espresso"].ID}},
	})
	if w.Code != http.StatusConflict {
		t.Errorf("second order on occupied table = %d, want 409", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/pos/payment", "waiter", gin.H{"order_id": order.ID, "payment_method": "card"})
	if w.Code != http.StatusOK {
		t.Fatalf("payment = %d %s", w.Code, w.Body.String())
	}
	var result services.PaymentResult
	decode(t, w, &result)
	if result.Receipt == nil || result.Receipt.Total.StringFixed(2) != "34.62" || result.Order.Status != models.OrderCompleted {
		t.Errorf("payment result = %s", w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/orders/"+order.ID+"/receipt", "waiter", nil)
	if w.Code != http.StatusOK {
		t.Errorf("receipt = %d", w.Code)
	}
}

func TestErrorStatuses(t *testing.T) {
	s := newTestServer(t)
	order := s.openOrder(t, s.Tables[0])

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"missing token", http.MethodGet, "/api/orders", "", nil, http.StatusUnauthorized},
		{"unknown token", http.MethodGet, "/api/orders", "stale", nil, http.StatusUnauthorized},
		{"malformed body", http.MethodPost, "/api/orders", "waiter", gin.H{"table_id": s.Tables[1].ID}, http.StatusBadRequest},
		{"no items", http.MethodPost, "/api/orders", "waiter", gin.H{"branch_id": s.Branch.ID, "table_id": s.Tables[1].ID, "items": []gin.H{}}, http.StatusBadRequest},
		{"unknown order", http.MethodGet, "/api/orders/ghost", "waiter", nil, http.StatusNotFound},
		{"no receipt yet", http.MethodGet, "/api/orders/" + order.ID + "/receipt", "waiter", nil, http.StatusNotFound},
		{"waiter deletes order", http.MethodDelete, "/api/orders/" + order.ID, "waiter", nil, http.StatusForbidden},
		{"waiter resizes table", http.MethodPut, "/api/tables/" + s.Tables[1].ID, "waiter", gin.H{"capacity": 8}, http.StatusForbidden},
		{"free seated table", http.MethodPut, "/api/tables/" + s.Tables[0].ID, "manager", gin.H{"status": "available"}, http.StatusConflict},
		{"bad pin", http.MethodPost, "/api/pos/sessions", "", gin.H{"staff_id": "x", "pin": "0000"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.token, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestUpdateOrder_Revision(t *testing.T) {
	s := newTestServer(t)
	order := s.openOrder(t, s.Tables[0])

	w := s.do(t, http.MethodPut, "/api/orders/"+order.ID, "waiter", gin.H{
		"items": []gin.H{{"menu_item_id": s.Menu["Lasagna"].ID, "quantity": 1}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d %s", w.Code, w.Body.String())
	}
	var revised models.Order
	decode(t, w, &revised)
	if revised.Total.StringFixed(2) != "16.82" || !revised.Modified {
		t.Errorf("revised total = %s modified=%v", revised.Total, revised.Modified)
	}
}

func TestGetPosData(t *testing.T) {
	s := newTestServer(t)
	s.openOrder(t, s.Tables[2])

	w := s.do(t, http.MethodGet, "/api/pos/data?branch_id="+s.Branch.ID, "waiter", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("pos data = %d %s", w.Code, w.Body.String())
	}
	var data services.PosData
	decode(t, w, &data)
	if len(data.Tables) != 4 || len(data.MenuItems) != 4 || len(data.ActiveOrders) != 1 {
		t.Errorf("pos data = %d tables, %d items, %d active", len(data.Tables), len(data.MenuItems), len(data.ActiveOrders))
	}

	w = s.do(t, http.MethodGet, "/api/pos/data?branch_id="+s.OtherBranch.ID, "waiter", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("other branch = %d, want 403", w.Code)
	}
}
