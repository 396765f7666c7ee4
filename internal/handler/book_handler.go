package handler

import (
	"net/http"

	"bookstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /books の公開API
type BookHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewBookHandler(uc *usecase.CatalogUsecase) *BookHandler {
	return &BookHandler{uc: uc}
}

// 公開書籍のルートを登録
func (h *BookHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/books", h.list)
	e.GET("/books/featured", h.featured)
	e.GET("/books/:slug", h.detail)
}

// ?q=タイトルor著者 &format=EBOOK など
func (h *BookHandler) list(c echo.Context) error {
	out, err := h.uc.ListBooks(c.Request().Context(), usecase.ListBooksInput{
		Q:      c.QueryParam("q"),
		Format: c.QueryParam("format"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookHandler) featured(c echo.Context) error {
	out, err := h.uc.FeaturedBooks(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookHandler) detail(c echo.Context) error {
	b, err := h.uc.GetBookBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}
