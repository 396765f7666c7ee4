package server

import (
	"net/http"

	"bookstore/internal/config"
	"bookstore/internal/handler"
	"bookstore/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Book       *handler.BookHandler
	AdminBook  *handler.AdminBookHandler
	Checkout   *handler.CheckoutHandler
	Webhook    *handler.WebhookHandler
	Library    *handler.LibraryHandler
	Order      *handler.OrderHandler
	AdminOrder *handler.AdminOrderHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	//公開
	h.Book.RegisterRoutes(e)
	h.Webhook.RegisterRoutes(e)

	//ログイン必須（中で AuthJWT + TokenVersionGuard）
	h.Auth.RegisterRoutes(e, cfg, userRepo)
	h.Checkout.RegisterRoutes(e, cfg, userRepo)
	h.Library.RegisterRoutes(e, cfg, userRepo)
	h.Order.RegisterRoutes(e, cfg, userRepo)

	//ADMIN限定
	h.AdminBook.RegisterRoutes(e, cfg, userRepo)
	h.AdminOrder.RegisterRoutes(e, cfg, userRepo)
}
