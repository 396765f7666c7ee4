package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookstore/internal/middleware"
	"bookstore/internal/usecase"
	auth "bookstore/internal/usecase/auth_usecase"
	"bookstore/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// ハンドラをそのまま叩く。userID>0ならAuthJWTの代わりにcontextへ入れる
func serve(method, target, body string, userID int64, h echo.HandlerFunc, param ...string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	if userID > 0 {
		c.Set(middleware.CtxUserIDKey, userID)
	}
	if len(param) == 2 {
		c.SetParamNames(param[0])
		c.SetParamValues(param[1])
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func errorOf(rec *httptest.ResponseRecorder) string {
	var r ErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r.Error
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"http error", usecase.NewHTTPError(http.StatusConflict, "price changed"), http.StatusConflict, "price changed"},
		{"wrapped http error", errors.Join(errors.New("ctx"), usecase.NewHTTPError(http.StatusNotFound, "purchase not found")), http.StatusNotFound, "purchase not found"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(http.MethodGet, "/", "", 0, func(c echo.Context) error {
				return writeError(c, tt.err)
			})
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantMsg, errorOf(rec))
		})
	}
}

func TestWebhookHandler_NoSignature(t *testing.T) {
	h := NewWebhookHandler(usecase.NewWebhookUsecase(nil, nil, 5, nil))

	rec := serve(http.MethodPost, "/webhooks/stripe", `{"id":"evt_1"}`, 0, h.stripe)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no signature", errorOf(rec))
}

func TestCheckoutHandler(t *testing.T) {
	h := NewCheckoutHandler(usecase.NewCheckoutUsecase(nil, nil, "https://shop.example", nil))

	tests := []struct {
		name     string
		userID   int64
		body     string
		wantCode int
		wantMsg  string
	}{
		{"no user", 0, `{"items":[]}`, http.StatusUnauthorized, "unauthorized"},
		{"broken json", 1, `{"items":`, http.StatusBadRequest, "invalid body"},
		{"empty cart", 1, `{"items":[],"payment_method":"stripe"}`, http.StatusBadRequest, "cart is empty"},
		{"zero quantity", 1, `{"items":[{"book_format_id":1,"price":"9.99","quantity":0}],"payment_method":"stripe"}`, http.StatusBadRequest, "invalid quantity"},
		{"unknown method", 1, `{"items":[{"book_format_id":1,"price":"9.99","quantity":1}],"payment_method":"cash"}`, http.StatusBadRequest, "invalid payment method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(http.MethodPost, "/checkout", tt.body, tt.userID, h.checkout)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantMsg, errorOf(rec))
		})
	}
}

func TestLibraryHandler_Download_BadID(t *testing.T) {
	h := NewLibraryHandler(nil)

	rec := serve(http.MethodGet, "/download/abc", "", 1, h.download, "purchaseId", "abc")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "purchase not found", errorOf(rec))

	rec = serve(http.MethodGet, "/download/1", "", 0, h.download, "purchaseId", "1")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBookHandler_InvalidFormat(t *testing.T) {
	h := NewBookHandler(usecase.NewCatalogUsecase(nil, nil))

	rec := serve(http.MethodGet, "/books?format=scroll", "", 0, h.list)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid format", errorOf(rec))
}

func TestAdminOrderHandler_BadQuery(t *testing.T) {
	h := NewAdminOrderHandler(nil)

	tests := []struct {
		target  string
		h       echo.HandlerFunc
		wantMsg string
	}{
		{"/admin/orders?page=x", h.list, "invalid page"},
		{"/admin/orders?limit=x", h.list, "invalid limit"},
		{"/admin/orders?user_id=x", h.list, "invalid user_id"},
		{"/admin/orders?from=2024-01-01", h.list, "invalid from"},
		{"/admin/orders?to=yesterday", h.list, "invalid to"},
		{"/admin/audit-logs?actor_user_id=x", h.auditLogs, "invalid actor_user_id"},
		{"/admin/audit-logs?offset=x", h.auditLogs, "invalid offset"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(http.MethodGet, tt.target, "", 1, tt.h)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMsg, errorOf(rec))
		})
	}
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	uc := auth.NewRegisterUserUsecase(nil, validator.NewAuthValidator(), nil, auth.SystemClock{})
	h := NewAuthHandler(uc, nil, nil, nil)

	tests := []struct {
		body    string
		wantMsg string
	}{
		{`{"name":"","email":"a@example.com","password":"secret1","confirm_password":"secret1"}`, "name required"},
		{`{"name":"A","email":"a@example.com","password":"abc","confirm_password":"abc"}`, "password must be at least 6 characters"},
		{`{"name":"A","email":"a@example.com","password":"secret1","confirm_password":"secret2"}`, "passwords do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.wantMsg, func(t *testing.T) {
			rec := serve(http.MethodPost, "/auth/register", tt.body, 0, h.Register)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMsg, errorOf(rec))
		})
	}
}
