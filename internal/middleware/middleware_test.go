package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookstore/internal/config"
	"bookstore/internal/domain/model"
	"bookstore/internal/infra/token"
	"bookstore/internal/middleware"
	"bookstore/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// レスポンス確認用
// =====================

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID       int64  `json:"user_id"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
}

// =====================
// UserRepository モック
// =====================

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) IncrementTokenVersion(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepo) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

// =====================
// helper
// =====================

func mustMakeJWT(t *testing.T, secret string, sub int64, role string, tv int, signingMethod jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"tv":   tv,
		"iat":  1,
		"exp":  9999999999,
	}

	s, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func runRequest(t *testing.T, e *echo.Echo, method string, path string, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
}

// =====================
// AuthJWT
// =====================

func TestAuthJWT_Unauthorized(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"bad scheme", "Token abc.def.ghi"},
		{"bad signature", "Bearer " + mustMakeJWT(t, "wrong-secret", 1, "CUSTOMER", 0, jwt.SigningMethodHS256)},
		{"wrong alg", "Bearer " + mustMakeJWT(t, cfg.JWTSecret, 1, "CUSTOMER", 0, jwt.SigningMethodHS512)},
		{"no role", "Bearer " + mustMakeJWT(t, cfg.JWTSecret, 1, "", 0, jwt.SigningMethodHS256)},
		{"unknown role", "Bearer " + mustMakeJWT(t, cfg.JWTSecret, 1, "GUEST", 0, jwt.SigningMethodHS256)},
		{"no sub", "Bearer " + mustMakeJWT(t, cfg.JWTSecret, 0, "CUSTOMER", 0, jwt.SigningMethodHS256)},
		{"empty bearer", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/protected", okHandler, middleware.AuthJWT(cfg))

			rec := runRequest(t, e, http.MethodGet, "/protected", tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
		})
	}
}

// 正常：ctxに値が入る
func TestAuthJWT_Success_SetsContext(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}

	raw := mustMakeJWT(t, cfg.JWTSecret, 123, "CUSTOMER", 7, jwt.SigningMethodHS256)

	e.GET("/protected", func(c echo.Context) error {
		userID, _ := c.Get(middleware.CtxUserIDKey).(int64)
		role, _ := c.Get(middleware.CtxUserRoleKey).(string)
		tv, _ := c.Get(middleware.CtxTokenVersionKey).(int)

		return c.JSON(http.StatusOK, mwOKResponse{
			UserID:       userID,
			Role:         role,
			TokenVersion: tv,
		})
	}, middleware.AuthJWT(cfg))

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	_ = json.NewDecoder(rec.Body).Decode(&body)
	assert.Equal(t, int64(123), body.UserID)
	assert.Equal(t, "CUSTOMER", body.Role)
	assert.Equal(t, 7, body.TokenVersion)
}

// ログインで発行したトークンがそのまま通る
func TestAuthJWT_AcceptsIssuedToken(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}

	raw, _, err := token.NewJWTIssuer(cfg.JWTSecret, time.Minute).Issue(9, model.RoleAdmin, 2, time.Now())
	assert.NoError(t, err)

	e.GET("/protected", func(c echo.Context) error {
		assert.Equal(t, int64(9), c.Get(middleware.CtxUserIDKey))
		assert.Equal(t, "ADMIN", c.Get(middleware.CtxUserRoleKey))
		assert.Equal(t, 2, c.Get(middleware.CtxTokenVersionKey))
		return okHandler(c)
	}, middleware.AuthJWT(cfg))

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthJWT_Expired(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}

	raw, _, err := token.NewJWTIssuer(cfg.JWTSecret, time.Minute).Issue(9, model.RoleCustomer, 0, time.Now().Add(-time.Hour))
	assert.NoError(t, err)

	e.GET("/protected", okHandler, middleware.AuthJWT(cfg))

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =====================
// TokenVersionGuard
// =====================

// AuthJWT無しでGuardだけ => 401
func TestTokenVersionGuard_MissingContext(t *testing.T) {
	e := echo.New()
	userRepo := new(MockUserRepo)

	e.GET("/protected", okHandler, middleware.TokenVersionGuard(userRepo))

	rec := runRequest(t, e, http.MethodGet, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
}

func TestTokenVersionGuard(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}

	tests := []struct {
		name     string
		tokenTV  int
		user     *model.User
		wantCode int
	}{
		{"match", 5, &model.User{ID: 1, TokenVersion: 5, IsActive: true}, http.StatusOK},
		// ログアウト後の古いトークン
		{"mismatch", 0, &model.User{ID: 1, TokenVersion: 1, IsActive: true}, http.StatusUnauthorized},
		{"deleted user", 0, nil, http.StatusUnauthorized},
		{"inactive", 0, &model.User{ID: 1, TokenVersion: 0, IsActive: false}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			userRepo := new(MockUserRepo)
			userRepo.On("FindByID", mock.Anything, int64(1)).Return(tt.user, nil).Once()

			raw := mustMakeJWT(t, cfg.JWTSecret, 1, "CUSTOMER", tt.tokenTV, jwt.SigningMethodHS256)
			e.GET("/protected", okHandler, middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo))

			rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
			assert.Equal(t, tt.wantCode, rec.Code)
			userRepo.AssertExpectations(t)
		})
	}
}

// =====================
// AdminRoleGuard
// =====================

func TestAdminRoleGuard(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}

	tests := []struct {
		role     string
		wantCode int
	}{
		{"ADMIN", http.StatusOK},
		{"CUSTOMER", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			e := echo.New()
			e.GET("/admin", okHandler, middleware.AuthJWT(cfg), middleware.AdminRoleGuard())

			raw := mustMakeJWT(t, cfg.JWTSecret, 1, tt.role, 0, jwt.SigningMethodHS256)
			rec := runRequest(t, e, http.MethodGet, "/admin", "Bearer "+raw)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestAdminRoleGuard_NoRole(t *testing.T) {
	e := echo.New()
	e.GET("/admin", okHandler, middleware.AdminRoleGuard())

	rec := runRequest(t, e, http.MethodGet, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
