package handler

import (
	"net/http"

	"bookstore/internal/config"
	"bookstore/internal/domain/cart"
	"bookstore/internal/middleware"
	"bookstore/internal/repository"
	"bookstore/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

// カートの1行。クライアントが保持している値をそのまま送る
type CheckoutItemRequest struct {
	BookFormatID int64           `json:"book_format_id"`
	BookTitle    string          `json:"book_title"`
	FormatType   string          `json:"format_type"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
}

type ShippingInfoRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type CheckoutRequest struct {
	Items         []CheckoutItemRequest `json:"items"`
	PaymentMethod string                `json:"payment_method"`
	ShippingInfo  *ShippingInfoRequest  `json:"shipping_info"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.POST("/checkout", h.checkout, middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo))
}

func (h *CheckoutHandler) checkout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	in := usecase.CheckoutInput{
		Items:         make([]cart.Item, 0, len(req.Items)),
		PaymentMethod: req.PaymentMethod,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, cart.Item{
			BookFormatID: it.BookFormatID,
			BookTitle:    it.BookTitle,
			FormatType:   it.FormatType,
			Price:        it.Price,
			Quantity:     it.Quantity,
		})
	}
	if s := req.ShippingInfo; s != nil {
		in.Shipping = &usecase.ShippingInfo{
			Name:    s.Name,
			Address: s.Address,
			City:    s.City,
			State:   s.State,
			Zip:     s.Zip,
			Country: s.Country,
		}
	}

	out, err := h.uc.Checkout(c.Request().Context(), userID, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
