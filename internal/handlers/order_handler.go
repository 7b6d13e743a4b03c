package handlers

import (
	"net/http"

	"tabletrack/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type OrderHandler struct {
	orderService services.OrderService
	statsService services.StatsService
	log          *zap.Logger
}

func NewOrderHandler(orderService services.OrderService, statsService services.StatsService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, statsService: statsService, log: log}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) OpenOrder(c *gin.Context) {
	var req services.OpenOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	if req.OpenedByUserID == "" {
		req.OpenedByUserID = currentUserID(c)
	}
	req.IdempotencyKey = c.GetHeader(HeaderIdempotencyKey)

	order, err := h.orderService.OpenOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOpenOrderCount(c *gin.Context) {
	count, err := h.orderService.GetOpenOrderCount(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, count)
}

func (h *OrderHandler) GetOrderStats(c *gin.Context) {
	rows, err := h.statsService.GetOrderStats(c.Request.Context(), c.DefaultQuery("range", "daily"), c.Query("date"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrderItemStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	item, err := h.orderService.UpdateOrderItemStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *OrderHandler) GetTableDetails(c *gin.Context) {
	number, ok := tableNumberParam(c)
	if !ok {
		return
	}

	details, err := h.orderService.GetTableWithOrders(c.Request.Context(), number)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, details)
}
