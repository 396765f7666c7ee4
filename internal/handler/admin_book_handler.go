package handler

import (
	"net/http"

	"bookstore/internal/config"
	"bookstore/internal/middleware"
	"bookstore/internal/repository"
	"bookstore/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 書籍の作成・更新の入力
type BookRequest struct {
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	CoverImage  string          `json:"cover_image"`
	ISBN        string          `json:"isbn"`
	Featured    bool            `json:"featured"`
	Formats     []FormatRequest `json:"formats"`
}

// 形式の入力。priceは "12.99" でも 12.99 でもよい
type FormatRequest struct {
	Type            string          `json:"type"`
	Price           decimal.Decimal `json:"price"`
	Pages           *int            `json:"pages"`
	DurationMinutes *int            `json:"duration_minutes"`
	Narrator        string          `json:"narrator"`
	SampleURL       string          `json:"sample_url"`
	FileURL         string          `json:"file_url"`
}

func (r FormatRequest) toInput() usecase.AdminFormatInput {
	return usecase.AdminFormatInput{
		Type:            r.Type,
		Price:           r.Price,
		Pages:           r.Pages,
		DurationMinutes: r.DurationMinutes,
		Narrator:        r.Narrator,
		SampleURL:       r.SampleURL,
		FileURL:         r.FileURL,
	}
}

func (r BookRequest) toInput() usecase.AdminBookInput {
	in := usecase.AdminBookInput{
		Title:       r.Title,
		Author:      r.Author,
		Slug:        r.Slug,
		Description: r.Description,
		CoverImage:  r.CoverImage,
		ISBN:        r.ISBN,
		Featured:    r.Featured,
	}
	for _, f := range r.Formats {
		in.Formats = append(in.Formats, f.toInput())
	}
	return in
}

// /admin/books
type AdminBookHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewAdminBookHandler(uc *usecase.CatalogUsecase) *AdminBookHandler {
	return &AdminBookHandler{uc: uc}
}

// adminを登録
func (h *AdminBookHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group("/admin")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/books", h.createBook)
	admin.PUT("/books/:id", h.updateBook)
	admin.DELETE("/books/:id", h.deleteBook)
	admin.PUT("/books/:id/formats", h.upsertFormat)
}

func (h *AdminBookHandler) createBook(c echo.Context) error {
	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	b, err := h.uc.AdminCreateBook(c.Request().Context(), adminID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, b)
}

func (h *AdminBookHandler) updateBook(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	b, err := h.uc.AdminUpdateBook(c.Request().Context(), adminID, id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, b)
}

func (h *AdminBookHandler) deleteBook(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.AdminDeleteBook(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// 同じtypeがあれば更新、無ければ追加
func (h *AdminBookHandler) upsertFormat(c echo.Context) error {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req FormatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	f, err := h.uc.AdminUpsertFormat(c.Request().Context(), adminID, bookID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, f)
}
