package handler

import (
	"io"
	"net/http"

	"bookstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

// Stripeが送ってくるイベントの上限
const maxWebhookBodyBytes = int64(65536)

type WebhookHandler struct {
	uc *usecase.WebhookUsecase
}

func NewWebhookHandler(uc *usecase.WebhookUsecase) *WebhookHandler {
	return &WebhookHandler{uc: uc}
}

// 署名で検証するのでJWTは付けない
func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/webhooks/stripe", h.stripe)
}

func (h *WebhookHandler) stripe(c echo.Context) error {
	// 署名検証は生のbodyに対して行う（Bindしない）
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBodyBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid payload"})
	}

	out, err := h.uc.HandleStripe(c.Request().Context(), payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
