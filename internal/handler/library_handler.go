package handler

import (
	"net/http"

	"bookstore/internal/config"
	"bookstore/internal/middleware"
	"bookstore/internal/repository"
	"bookstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 購入済みデジタル書籍とダウンロード
type LibraryHandler struct {
	uc *usecase.LibraryUsecase
}

func NewLibraryHandler(uc *usecase.LibraryUsecase) *LibraryHandler {
	return &LibraryHandler{uc: uc}
}

func (h *LibraryHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	authMW := []echo.MiddlewareFunc{middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo)}
	e.GET("/library", h.library, authMW...)
	e.GET("/download/:purchaseId", h.download, authMW...)
}

func (h *LibraryHandler) library(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Library(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 回数を1つ消費してからファイルへ302
func (h *LibraryHandler) download(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	purchaseID, ok := parseIDParam(c, "purchaseId")
	if !ok {
		// 数字でないIDは存在しない購入と同じ扱い
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "purchase not found"})
	}

	fileURL, err := h.uc.Download(c.Request().Context(), userID, purchaseID)
	if err != nil {
		return writeError(c, err)
	}

	return c.Redirect(http.StatusFound, fileURL)
}
