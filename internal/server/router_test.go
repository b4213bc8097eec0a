package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/auth"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/database"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/middleware"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/notify"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testPassword  = "password123"
	testKeySecret = "rzp_test_secret"
)

type recorder struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *recorder) Send(_ context.Context, n notify.Notification) error {
	r.Enqueue(n)
	return nil
}

func (r *recorder) Enqueue(n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recorder) count(kind notify.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

type fakeGateway struct{}

func (fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*services.GatewayOrder, error) {
	return &services.GatewayOrder{ID: "order_test", Amount: amount, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

type testApp struct {
	db       *gorm.DB
	router   *gin.Engine
	notifier *recorder
}

func newTestApp(t *testing.T, echoOTP bool) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	log, _ := test.NewNullLogger()
	notifier := &recorder{}
	issuer := auth.NewSessionIssuer("router-test-secret", time.Hour)
	users := services.NewUserService(db)
	otp := services.NewOTPService(services.NewGormOTPStore(db), users, notifier, 10*time.Minute, log)

	svc := Services{
		Users: users,
		Auth: services.NewAuthService(users, otp, issuer, notifier, services.AuthOptions{
			FrontendURL: "http://frontend.test",
			PublicURL:   "http://api.test",
			ResetTTL:    time.Hour,
		}, log),
		OTP:       otp,
		Orders:    services.NewOrderService(db, users, notifier, log),
		Inventory: services.NewInventoryService(db, notifier, "admin@pizza.test", log),
		Payments:  services.NewPaymentService(db, fakeGateway{}, "rzp_test_key", testKeySecret, "INR", log),
		Menu:      services.NewMenuService(db),
		Clients:   services.NewClientService(db),
	}
	router := NewRouter(db, issuer, auth.NewOAuthService(db, issuer), svc, Options{
		CORSOrigins: []string{"http://frontend.test"},
		EchoOTP:     echoOTP,
		Logger:      log,
	})
	return &testApp{db: db, router: router, notifier: notifier}
}

func (a *testApp) createUser(t *testing.T, email string, role models.AccountType) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	user := &models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: hash,
		AccountType:  role,
		IsVerified:   true,
	}
	require.NoError(t, a.db.Create(user).Error)
	return user
}

func (a *testApp) do(t *testing.T, method, path, token string, body any, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()
	w, body := a.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return body["token"].(string)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, false)

	w, body := app.do(t, http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
}

func TestSignupWithOTP(t *testing.T) {
	app := newTestApp(t, true)

	w, body := app.do(t, http.MethodPost, "/api/auth/sendotp", "", gin.H{"email": "new@x.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	code, ok := body["otp"].(string)
	require.True(t, ok, "otp should be echoed when enabled")
	assert.Equal(t, 1, app.notifier.count(notify.KindOTP))

	form := gin.H{
		"firstName":       "New",
		"lastName":        "Customer",
		"email":           "new@x.com",
		"password":        "longenough",
		"confirmPassword": "longenough",
		"otp":             code,
	}
	w, body = app.do(t, http.MethodPost, "/api/auth/signup", "", form)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "new@x.com", user["email"])
	assert.Equal(t, true, user["isVerified"])
	assert.NotContains(t, w.Body.String(), "passwordHash")

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	w, body = app.do(t, http.MethodPost, "/api/auth/signup", "", form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestSendOTPDoesNotEchoByDefault(t *testing.T) {
	app := newTestApp(t, false)

	w, body := app.do(t, http.MethodPost, "/api/auth/sendotp", "", gin.H{"email": "quiet@x.com"})

	require.Equal(t, http.StatusOK, w.Code)
	_, echoed := body["otp"]
	assert.False(t, echoed)
}

func TestSendOTPRejectsRegisteredEmail(t *testing.T) {
	app := newTestApp(t, true)
	app.createUser(t, "taken@x.com", models.AccountTypeUser)

	w, body := app.do(t, http.MethodPost, "/api/auth/sendotp", "", gin.H{"email": "taken@x.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrValidationFailed, body["code"])
}

func TestLogin(t *testing.T) {
	app := newTestApp(t, false)
	app.createUser(t, "login@x.com", models.AccountTypeUser)

	tests := []struct {
		name     string
		email    string
		password string
		want     int
	}{
		{"valid credentials", "login@x.com", testPassword, http.StatusOK},
		{"wrong password", "login@x.com", "wrong-password", http.StatusUnauthorized},
		{"unknown email", "nobody@x.com", testPassword, http.StatusUnauthorized},
		{"missing password", "login@x.com", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": tt.email, "password": tt.password})
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestProfileWithCookieSession(t *testing.T) {
	app := newTestApp(t, false)
	app.createUser(t, "cookie@x.com", models.AccountTypeUser)
	token := app.login(t, "cookie@x.com")

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "cookie@x.com")

	w, _ = app.do(t, http.MethodGet, "/api/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateOrder(t *testing.T) {
	app := newTestApp(t, false)
	app.createUser(t, "hungry@x.com", models.AccountTypeUser)
	token := app.login(t, "hungry@x.com")

	order := gin.H{
		"items": []gin.H{
			{"name": "Margherita", "price": 12.99, "quantity": 1},
			{"name": "Coke", "price": 2.5, "quantity": 2},
		},
		"totalAmount":     17.99,
		"deliveryAddress": gin.H{"street": "1 Main St", "city": "Springfield", "state": "IL", "zipCode": "62701"},
	}

	w, body := app.do(t, http.MethodPost, "/api/orders/create", token, order, "Idempotency-Key", "checkout-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := body["order"].(map[string]any)
	assert.Equal(t, "processing", created["status"])
	assert.InDelta(t, 17.99, created["totalAmount"].(float64), 0.0001)
	assert.Len(t, created["items"], 2)

	w, body = app.do(t, http.MethodPost, "/api/orders/create", token, order, "Idempotency-Key", "checkout-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created["id"], body["order"].(map[string]any)["id"])

	w, body = app.do(t, http.MethodGet, "/api/orders/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["orders"], 1)

	delete(order, "deliveryAddress")
	w, _ = app.do(t, http.MethodPost, "/api/orders/create", token, order)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t, false)
	app.createUser(t, "owner@x.com", models.AccountTypeUser)
	app.createUser(t, "other@x.com", models.AccountTypeUser)
	app.createUser(t, "admin@x.com", models.AccountTypeAdmin)
	owner := app.login(t, "owner@x.com")
	other := app.login(t, "other@x.com")
	admin := app.login(t, "admin@x.com")

	w, body := app.do(t, http.MethodPost, "/api/orders/create", owner, gin.H{
		"items":           []gin.H{{"name": "Pepperoni", "price": 14.5, "quantity": 1}},
		"totalAmount":     14.5,
		"deliveryAddress": gin.H{"street": "2 Side St", "city": "Shelbyville"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	path := fmt.Sprintf("/api/orders/%v", body["order"].(map[string]any)["id"])

	w, _ = app.do(t, http.MethodGet, path, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = app.do(t, http.MethodGet, path, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = app.do(t, http.MethodPatch, path+"/status", owner, gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = app.do(t, http.MethodPatch, path+"/status", admin, gin.H{"status": "confirmed", "version": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "confirmed", body["order"].(map[string]any)["status"])

	w, body = app.do(t, http.MethodPatch, path+"/status", admin, gin.H{"status": "preparing", "version": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.ErrStaleVersion, body["code"])

	w, _ = app.do(t, http.MethodPost, path+"/cancel", other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = app.do(t, http.MethodPost, path+"/cancel", owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", body["order"].(map[string]any)["status"])

	w, body = app.do(t, http.MethodPost, path+"/cancel", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrInvalidTransition, body["code"])

	w, body = app.do(t, http.MethodGet, "/api/admin/orders?status=cancelled", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["orders"], 1)

	w, _ = app.do(t, http.MethodGet, "/api/admin/orders?status=lost", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = app.do(t, http.MethodGet, "/api/orders/999", owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInventoryOverHTTP(t *testing.T) {
	app := newTestApp(t, false)
	app.createUser(t, "admin@x.com", models.AccountTypeAdmin)
	app.createUser(t, "cook@x.com", models.AccountTypeUser)
	admin := app.login(t, "admin@x.com")
	cook := app.login(t, "cook@x.com")

	w, _ := app.do(t, http.MethodGet, "/api/admin/inventory", cook, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	item := gin.H{"name": "Mozzarella", "category": "cheese", "quantity": 10, "unit": "kg", "threshold": 5, "price": 4.5}
	w, body := app.do(t, http.MethodPost, "/api/admin/inventory", admin, item)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	path := fmt.Sprintf("/api/admin/inventory/%v", body["item"].(map[string]any)["id"])

	w, _ = app.do(t, http.MethodPost, "/api/admin/inventory", admin, item)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = app.do(t, http.MethodPut, path, admin, gin.H{"quantity": 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, app.notifier.count(notify.KindLowStock))

	w, body = app.do(t, http.MethodGet, "/api/admin/inventory/low-stock", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])

	w, _ = app.do(t, http.MethodPatch, path+"/threshold", admin, gin.H{"threshold": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = app.do(t, http.MethodPatch, path+"/threshold", admin, gin.H{"threshold": 4})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = app.do(t, http.MethodGet, "/api/admin/inventory/low-stock", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["count"])

	w, body = app.do(t, http.MethodGet, "/api/admin/inventory/category/cheese", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["items"], 1)

	w, _ = app.do(t, http.MethodGet, "/api/admin/inventory/category/dessert", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = app.do(t, http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = app.do(t, http.MethodGet, path, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentOverHTTP(t *testing.T) {
	app := newTestApp(t, false)

	w, _ := app.do(t, http.MethodPost, "/api/payment/create-order", "", gin.H{"amount": 0.5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := app.do(t, http.MethodPost, "/api/payment/create-order", "", gin.H{"amount": 499.99})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "rzp_test_key", body["key_id"])
	assert.EqualValues(t, 49999, body["order"].(map[string]any)["amount"])

	signature := services.SignPayment(testKeySecret, "order_test", "pay_1")
	callback := gin.H{"razorpay_order_id": "order_test", "razorpay_payment_id": "pay_1", "razorpay_signature": signature}

	w, body = app.do(t, http.MethodPost, "/api/payment/verify-payment", "", callback)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])

	w, body = app.do(t, http.MethodPost, "/api/payment/verify-payment", "", callback)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Payment already verified", body["message"])

	callback["razorpay_payment_id"] = "pay_2"
	w, body = app.do(t, http.MethodPost, "/api/payment/verify-payment", "", callback)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrPaymentSignature, body["code"])
}

func TestMenuOverHTTP(t *testing.T) {
	app := newTestApp(t, false)
	app.createUser(t, "admin@x.com", models.AccountTypeAdmin)
	app.createUser(t, "guest@x.com", models.AccountTypeUser)
	admin := app.login(t, "admin@x.com")
	guest := app.login(t, "guest@x.com")

	pizza := gin.H{"name": "Diavola", "price": 13.5, "category": "pizza", "ingredients": []string{"salami", "chili"}}

	w, _ := app.do(t, http.MethodPost, "/api/menu", "", pizza)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = app.do(t, http.MethodPost, "/api/menu", guest, pizza)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := app.do(t, http.MethodPost, "/api/menu", admin, pizza)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := body["item"].(map[string]any)
	assert.Equal(t, true, created["isAvailable"])
	path := fmt.Sprintf("/api/menu/%v", created["id"])

	w, body = app.do(t, http.MethodGet, "/api/menu", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["items"], 1)

	w, body = app.do(t, http.MethodGet, "/api/menu/category/pizza", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["items"], 1)

	pizza["isAvailable"] = false
	w, _ = app.do(t, http.MethodPut, path, admin, pizza)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, body = app.do(t, http.MethodGet, "/api/menu?available=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["items"])

	w, _ = app.do(t, http.MethodGet, "/api/menu/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = app.do(t, http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = app.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddressBookOverHTTP(t *testing.T) {
	app := newTestApp(t, false)
	app.createUser(t, "home@x.com", models.AccountTypeUser)
	token := app.login(t, "home@x.com")

	w, body := app.do(t, http.MethodPost, "/api/users/addresses", token, gin.H{
		"label": "Home", "street": "3 Elm St", "city": "Capital City", "isDefault": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	path := fmt.Sprintf("/api/users/addresses/%v", body["address"].(map[string]any)["id"])

	w, body = app.do(t, http.MethodGet, "/api/users/addresses", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["addresses"], 1)

	w, _ = app.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = app.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = app.do(t, http.MethodPost, "/api/users/payment-methods", token, gin.H{
		"cardType": "visa", "lastFour": "4242", "expiryMonth": 12, "expiryYear": 2030,
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestProfileEmailChangeStartsVerification(t *testing.T) {
	app := newTestApp(t, false)
	app.createUser(t, "old@x.com", models.AccountTypeUser)
	app.createUser(t, "busy@x.com", models.AccountTypeUser)
	token := app.login(t, "old@x.com")

	w, _ := app.do(t, http.MethodPut, "/api/users/profile", token, gin.H{"email": "busy@x.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body := app.do(t, http.MethodPut, "/api/users/profile", token, gin.H{"email": "fresh@x.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, false, body["user"].(map[string]any)["isVerified"])
	assert.Equal(t, 1, app.notifier.count(notify.KindEmailVerification))
}

func TestClientsRequireAdmin(t *testing.T) {
	app := newTestApp(t, false)
	app.createUser(t, "admin@x.com", models.AccountTypeAdmin)
	app.createUser(t, "user@x.com", models.AccountTypeUser)
	admin := app.login(t, "admin@x.com")
	user := app.login(t, "user@x.com")

	w, _ := app.do(t, http.MethodPost, "/api/clients", user, gin.H{"name": "kitchen"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := app.do(t, http.MethodPost, "/api/clients", admin, gin.H{"name": "kitchen"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	clientID := body["client_id"].(string)
	assert.NotEmpty(t, body["client_secret"])

	w, body = app.do(t, http.MethodGet, "/api/clients", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["clients"], 1)
	assert.NotContains(t, w.Body.String(), "client_secret")

	w, _ = app.do(t, http.MethodDelete, "/api/clients/"+clientID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
