package handler

import (
	"net/http"

	"bookstore/internal/config"
	"bookstore/internal/middleware"
	"bookstore/internal/repository"
	auth "bookstore/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	registerUC *auth.RegisterUserUsecase // 会員登録usecase
	loginUC    *auth.LoginUsecase        // ログインusecase
	logoutUC   *auth.LogoutUsecase
	meUC       *auth.MeUsecase
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	logoutUC *auth.LogoutUsecase,
	meUC *auth.MeUsecase,
) *AuthHandler {
	return &AuthHandler{
		registerUC: registerUC,
		loginUC:    loginUC,
		logoutUC:   logoutUC,
		meUC:       meUC,
	}
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)

	// ここから下はログイン必須
	g.POST("/logout", h.Logout, middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo))
	g.GET("/me", h.Me, middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo))
}

// RegisterはPOST /auth/registerのハンドラ
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// LoginはPOST /auth/login のハンドラ。
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeAuthError(c, err)
	}

	//JSONレスポンス（user + token）
	return c.JSON(http.StatusOK, out)
}

// token_versionを上げるので、今持っているトークンは全部使えなくなる
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.logoutUC.Execute(c.Request().Context(), userID); err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "logged out"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.meUC.Execute(c.Request().Context(), userID)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// auth usecaseのエラーをHTTPに変換する
func writeAuthError(c echo.Context, err error) error {
	switch err {
	case auth.ErrNameRequired, auth.ErrInvalidEmailFormat, auth.ErrPasswordTooShort, auth.ErrPasswordMismatch:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case auth.ErrEmailAlreadyExists:
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case auth.ErrInvalidCredentials, auth.ErrUserNotFound:
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
	case auth.ErrUserInactive:
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	default:
		return writeError(c, err)
	}
}
