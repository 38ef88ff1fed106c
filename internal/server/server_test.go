package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/antojitos/comanda/internal/model"
	"github.com/antojitos/comanda/internal/notify"
	"github.com/antojitos/comanda/internal/service"
	"github.com/antojitos/comanda/internal/store"
)

// fakeSender records outgoing notifications and can be flipped into a
// failing mode.
type fakeSender struct {
	mu       sync.Mutex
	messages []string
	fail     bool
}

func (f *fakeSender) Send(ctx context.Context, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("%w: twilio unreachable", notify.ErrSendFailed)
	}
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeSender) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

type testEnv struct {
	srv    *Server
	store  *store.Store
	tokens *service.TokenService
	sender *fakeSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(store.Config{})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	tokens := service.NewTokenService("test-session-secret", "test-order-secret", 10*time.Second)
	auth := service.NewAuthService(st, tokens, time.Hour, 24*time.Hour)
	sender := &fakeSender{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := DefaultConfig()
	cfg.RateLimit = 0 // keep responses deterministic under the test load
	cfg.TokenRateLimit = 0

	return &testEnv{
		srv:    New(cfg, st, tokens, auth, sender, logger),
		store:  st,
		tokens: tokens,
		sender: sender,
	}
}

func (e *testEnv) seedAdmin(t *testing.T, name, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	admin := &model.Administrator{
		AdminCode:    uuid.NewString(),
		AccountName:  name,
		PasswordHash: string(hash),
	}
	if err := e.store.CreateAdministrator(context.Background(), admin); err != nil {
		t.Fatalf("seed administrator: %v", err)
	}
	return admin.AdminCode
}

func (e *testEnv) do(t *testing.T, method, path string, headers map[string]string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func (e *testEnv) login(t *testing.T, name, password string) string {
	t.Helper()
	rr := e.do(t, "POST", "/administrators/login", nil, map[string]string{
		"account_name":     name,
		"account_password": password,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rr, &resp)
	if resp.Token == "" {
		t.Fatal("login returned empty token")
	}
	return resp.Token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "GET", "/healthz", nil, nil)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestLoginAndProtectedRoute(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "gestor", "secret-password")

	// Gated route refuses without a token.
	rr := env.do(t, "GET", "/administrators/", nil, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rr.Code)
	}

	token := env.login(t, "gestor", "secret-password")

	rr = env.do(t, "GET", "/administrators/", bearer(token), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("with token: status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var admins []model.Administrator
	decodeBody(t, rr, &admins)
	if len(admins) != 1 || admins[0].AccountName != "gestor" {
		t.Errorf("admins = %+v", admins)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "gestor", "secret-password")

	rr := env.do(t, "POST", "/administrators/login", nil, map[string]string{
		"account_name":     "gestor",
		"account_password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", rr.Code)
	}

	// Unknown account must be indistinguishable from a wrong password.
	rr = env.do(t, "POST", "/administrators/login", nil, map[string]string{
		"account_name":     "nobody",
		"account_password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("unknown account: status = %d, want 401", rr.Code)
	}

	rr = env.do(t, "POST", "/administrators/login", nil, map[string]string{"account_name": "gestor"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing password: status = %d, want 400", rr.Code)
	}
}

func TestLoginLockoutOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "gestor", "secret-password")

	body := map[string]string{"account_name": "gestor", "account_password": "wrong"}
	for i := 0; i < 4; i++ {
		if rr := env.do(t, "POST", "/administrators/login", nil, body); rr.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, rr.Code)
		}
	}

	// The fifth failure opens the lockout window.
	rr := env.do(t, "POST", "/administrators/login", nil, body)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("fifth attempt: status = %d, want 403, body = %s", rr.Code, rr.Body.String())
	}

	// While locked, even the correct password is refused.
	rr = env.do(t, "POST", "/administrators/login", nil, map[string]string{
		"account_name":     "gestor",
		"account_password": "secret-password",
	})
	if rr.Code != http.StatusForbidden {
		t.Errorf("correct password while locked: status = %d, want 403", rr.Code)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "gestor", "secret-password")
	token := env.login(t, "gestor", "secret-password")

	rr := env.do(t, "POST", "/administrators/logout", bearer(token), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("logout: status = %d, body = %s", rr.Code, rr.Body.String())
	}

	// The revoked token no longer opens the admin gate.
	rr = env.do(t, "GET", "/administrators/", bearer(token), nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("revoked token: status = %d, want 401", rr.Code)
	}

	rr = env.do(t, "POST", "/administrators/logout", nil, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("logout without token: status = %d, want 401", rr.Code)
	}
}

func TestOrderSubmissionFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "gestor", "secret-password")

	rr := env.do(t, "POST", "/orders/generateToken", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("generateToken: status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var tokResp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rr, &tokResp)

	orderBody := map[string]interface{}{
		"client_name":    "María López",
		"client_email":   "maria@example.com",
		"client_phone":   "+34600111222",
		"delivery_date":  "2025-06-14",
		"delivery_time":  "13:30:00",
		"payment_method": "efectivo",
		"cart_items": []map[string]interface{}{
			{"name": "Empanada", "product_size": "mediana", "quantity": 2, "price": 3.5},
		},
	}

	// No order token at all.
	rr = env.do(t, "POST", "/orders/add", nil, orderBody)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no order token: status = %d, want 401", rr.Code)
	}

	// A session token must not pass the order gate.
	session := env.login(t, "gestor", "secret-password")
	rr = env.do(t, "POST", "/orders/add", map[string]string{"X-Order-Key": session}, orderBody)
	if rr.Code != http.StatusForbidden {
		t.Errorf("session token on order gate: status = %d, want 403", rr.Code)
	}

	rr = env.do(t, "POST", "/orders/add", map[string]string{"X-Order-Key": tokResp.Token}, orderBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("add order: status = %d, body = %s", rr.Code, rr.Body.String())
	}

	sent := env.sender.sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(sent))
	}

	// The order is visible on the admin listing with the same message.
	rr = env.do(t, "GET", "/orders/incomplete", bearer(session), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list orders: status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var orders []model.Order
	decodeBody(t, rr, &orders)
	if len(orders) != 1 {
		t.Fatalf("orders = %+v", orders)
	}
	if orders[0].OrderMsg != sent[0] {
		t.Error("persisted order message differs from the dispatched notification")
	}

	// Completing the order moves it between the state listings.
	rr = env.do(t, "PUT", fmt.Sprintf("/orders/edit/%d", orders[0].OrderID), bearer(session), map[string]bool{"order_state": true})
	if rr.Code != http.StatusOK {
		t.Fatalf("edit order: status = %d, body = %s", rr.Code, rr.Body.String())
	}
	rr = env.do(t, "GET", "/orders/completed", bearer(session), nil)
	decodeBody(t, rr, &orders)
	if len(orders) != 1 {
		t.Errorf("completed orders = %+v", orders)
	}
}

func TestOrderSavedWhenNotificationFails(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "gestor", "secret-password")
	env.sender.fail = true

	rr := env.do(t, "POST", "/orders/generateToken", nil, nil)
	var tokResp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rr, &tokResp)

	rr = env.do(t, "POST", "/orders/add", map[string]string{"X-Order-Key": tokResp.Token}, map[string]interface{}{
		"client_name":  "Ana",
		"client_phone": "+34600111333",
		"cart_items": []map[string]interface{}{
			{"name": "Tamal", "product_size": "grande", "quantity": 1, "price": 4.0},
		},
	})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500, body = %s", rr.Code, rr.Body.String())
	}
	var errResp model.ErrorResponse
	decodeBody(t, rr, &errResp)
	if errResp.Error.Message != "Order saved but WhatsApp message failed" {
		t.Errorf("message = %q", errResp.Error.Message)
	}

	// The order itself survived the failed dispatch.
	session := env.login(t, "gestor", "secret-password")
	rr = env.do(t, "GET", "/orders/all", bearer(session), nil)
	var orders []model.Order
	decodeBody(t, rr, &orders)
	if len(orders) != 1 {
		t.Errorf("orders = %+v, want the saved order", orders)
	}
}

func TestProductEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "gestor", "secret-password")
	session := env.login(t, "gestor", "secret-password")

	// Mutations are admin-gated.
	rr := env.do(t, "POST", "/products/add", nil, map[string]interface{}{"name": "Empanada", "product_type": "salado"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("ungated add: status = %d, want 401", rr.Code)
	}

	rr = env.do(t, "POST", "/products/add", bearer(session), map[string]interface{}{
		"name":          "Empanada",
		"product_type":  "salado",
		"price":         3.5,
		"product_sizes": "chica,mediana,grande",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add product: status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var addResp struct {
		Product model.Product `json:"product"`
	}
	decodeBody(t, rr, &addResp)
	if addResp.Product.ProductID == 0 {
		t.Fatal("add response carries no product ID")
	}

	// Public listing works without a token.
	rr = env.do(t, "GET", "/products/salado", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list products: status = %d", rr.Code)
	}
	var products []model.Product
	decodeBody(t, rr, &products)
	if len(products) != 1 {
		t.Errorf("products = %+v", products)
	}

	rr = env.do(t, "GET", fmt.Sprintf("/products/sizes/%d", addResp.Product.ProductID), nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("sizes: status = %d", rr.Code)
	}
	var sizes map[string]string
	decodeBody(t, rr, &sizes)
	if sizes["product_sizes"] != "chica,mediana,grande" {
		t.Errorf("sizes = %v", sizes)
	}
}

func TestHighlightLimitOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "gestor", "secret-password")
	session := env.login(t, "gestor", "secret-password")

	var ids []int64
	for i := 0; i < 6; i++ {
		rr := env.do(t, "POST", "/products/add", bearer(session), map[string]interface{}{
			"name":         fmt.Sprintf("Producto %d", i),
			"product_type": "salado",
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("add product %d: status = %d", i, rr.Code)
		}
		var resp struct {
			Product model.Product `json:"product"`
		}
		decodeBody(t, rr, &resp)
		ids = append(ids, resp.Product.ProductID)
	}

	for _, id := range ids[:5] {
		rr := env.do(t, "PUT", fmt.Sprintf("/products/highlight/%d", id), bearer(session), map[string]bool{"highlight": true})
		if rr.Code != http.StatusOK {
			t.Fatalf("highlight %d: status = %d, body = %s", id, rr.Code, rr.Body.String())
		}
	}

	// The sixth highlight breaches the cap.
	rr := env.do(t, "PUT", fmt.Sprintf("/products/highlight/%d", ids[5]), bearer(session), map[string]bool{"highlight": true})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("sixth highlight: status = %d, want 400", rr.Code)
	}

	// Un-highlighting is always allowed, then the freed slot can be reused.
	rr = env.do(t, "PUT", fmt.Sprintf("/products/highlight/%d", ids[0]), bearer(session), map[string]bool{"highlight": false})
	if rr.Code != http.StatusOK {
		t.Fatalf("unhighlight: status = %d", rr.Code)
	}
	rr = env.do(t, "PUT", fmt.Sprintf("/products/highlight/%d", ids[5]), bearer(session), map[string]bool{"highlight": true})
	if rr.Code != http.StatusOK {
		t.Errorf("highlight after freeing a slot: status = %d", rr.Code)
	}

	rr = env.do(t, "GET", "/products/initialProducts", nil, nil)
	var highlighted []model.Product
	decodeBody(t, rr, &highlighted)
	if len(highlighted) != 5 {
		t.Errorf("highlighted = %d products, want 5", len(highlighted))
	}
}

func TestScheduleBatchPartialFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "gestor", "secret-password")
	session := env.login(t, "gestor", "secret-password")

	rr := env.do(t, "POST", "/schedules/", bearer(session), map[string]interface{}{
		"schedules": []map[string]interface{}{
			{"day": "monday", "enabled": true, "start_time": "09:00", "end_time": "18:00"},
			{"day": "", "enabled": true},
		},
	})
	if rr.Code != http.StatusMultiStatus {
		t.Fatalf("status = %d, want 207, body = %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Success []model.Schedule `json:"success"`
		Errors  []struct {
			Day   string `json:"day"`
			Error string `json:"error"`
		} `json:"errors"`
	}
	decodeBody(t, rr, &resp)
	if len(resp.Success) != 1 || len(resp.Errors) != 1 {
		t.Errorf("success = %+v, errors = %+v", resp.Success, resp.Errors)
	}

	// The stored day is publicly readable.
	rr = env.do(t, "GET", "/schedules/monday", nil, nil)
	if rr.Code != http.StatusOK {
		t.Errorf("get schedule: status = %d", rr.Code)
	}
	rr = env.do(t, "GET", "/schedules/tuesday", nil, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing day: status = %d, want 404", rr.Code)
	}
}

func TestOrderTokenRateLimit(t *testing.T) {
	env := newTestEnv(t)
	cfg := DefaultConfig()
	cfg.RateLimit = 0
	cfg.TokenRateLimit = 2
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := service.NewAuthService(env.store, env.tokens, time.Hour, 24*time.Hour)
	srv := New(cfg, env.store, env.tokens, auth, env.sender, logger)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/orders/generateToken", nil)
		req.RemoteAddr = "10.0.0.7:1234"
		rr := httptest.NewRecorder()
		srv.Router().ServeHTTP(rr, req)
		last = rr.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third token request: status = %d, want 429", last)
	}
}
