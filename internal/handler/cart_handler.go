package handler

import (
	"context"
	"net/http"
	"strconv"

	"app/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// handlerが使うusecaseの操作
type CartService interface {
	GetCartItems(ctx context.Context, cartID string) ([]model.CartItemView, error)
	CreateCart(ctx context.Context, cartID string) error
	DeleteCart(ctx context.Context, cartID string) error
	AddItem(ctx context.Context, cartID string, itemKey int64) error
	RemoveItem(ctx context.Context, cartID string, itemKey int64) error
}

// /cartのHTTP
type CartHandler struct {
	uc CartService
}

// DI
func NewCartHandler(uc CartService) *CartHandler {
	return &CartHandler{uc: uc}
}

// /cart/{cart_id}, /cart/{cart_id}/item/{item_key} を登録
// 旧パス /api/ShoppingCart/{cart_id}/Item/{item_key} も同じ処理
func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/cart")
	g.GET("/:cart_id", h.getCart)
	g.PUT("/:cart_id", h.createCart)
	g.DELETE("/:cart_id", h.deleteCart)
	g.PUT("/:cart_id/item/:item_key", h.addItem)
	g.DELETE("/:cart_id/item/:item_key", h.removeItem)

	legacy := e.Group("/api/ShoppingCart")
	legacy.GET("/:cart_id", h.getCart)
	legacy.PUT("/:cart_id", h.createCart)
	legacy.DELETE("/:cart_id", h.deleteCart)
	legacy.PUT("/:cart_id/Item/:item_key", h.addItem)
	legacy.DELETE("/:cart_id/Item/:item_key", h.removeItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	items, err := h.uc.GetCartItems(c.Request().Context(), c.Param("cart_id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, items)
}

func (h *CartHandler) createCart(c echo.Context) error {
	if err := h.uc.CreateCart(c.Request().Context(), c.Param("cart_id")); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *CartHandler) deleteCart(c echo.Context) error {
	if err := h.uc.DeleteCart(c.Request().Context(), c.Param("cart_id")); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *CartHandler) addItem(c echo.Context) error {
	itemKey, err := strconv.ParseInt(c.Param("item_key"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid item_key"})
	}

	if err := h.uc.AddItem(c.Request().Context(), c.Param("cart_id"), itemKey); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	itemKey, err := strconv.ParseInt(c.Param("item_key"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid item_key"})
	}

	if err := h.uc.RemoveItem(c.Request().Context(), c.Param("cart_id"), itemKey); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusOK)
}
