package handlers

import (
	"net/http"
	"strconv"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	orderService   services.OrderService
	paymentService services.PaymentService
	log            logrus.FieldLogger
}

func NewOrderHandler(orderService services.OrderService, paymentService services.PaymentService, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{orderService: orderService, paymentService: paymentService, log: log}
}

type orderItemRequest struct {
	MenuItemID string            `json:"menu_item_id"`
	Quantity   *int              `json:"quantity"`
	Status     models.LineStatus `json:"status"`
}

type createOrderRequest struct {
	BranchID      string              `json:"branch_id" binding:"required"`
	TableID       string              `json:"table_id" binding:"required"`
	Items         []orderItemRequest  `json:"items"`
	CustomerName  string              `json:"customer_name"`
	DiscountType  models.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal     `json:"discount_value"`
}

type updateOrderRequest struct {
	Items         []orderItemRequest   `json:"items"`
	DiscountType  *models.DiscountType `json:"discount_type"`
	DiscountValue *decimal.Decimal     `json:"discount_value"`
	Status        *models.OrderStatus  `json:"status"`
	CustomerName  *string              `json:"customer_name"`
	Paid          bool                 `json:"paid"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
}

// toItemInputs keeps the nil/empty distinction of the request. A missing
// quantity means one.
func toItemInputs(items []orderItemRequest) []services.OrderItemInput {
	if items == nil {
		return nil
	}
	out := make([]services.OrderItemInput, 0, len(items))
	for _, item := range items {
		qty := 1
		if item.Quantity != nil {
			qty = *item.Quantity
		}
		out = append(out, services.OrderItemInput{MenuItemID: item.MenuItemID, Quantity: qty, Status: item.Status})
	}
	return out
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.orderService.ListOrders(c.Request.Context(), callerFrom(c), services.ListOrdersQuery{
		BranchID: c.Query("branch_id"),
		TableID:  c.Query("table_id"),
		Status:   models.OrderStatus(c.Query("status")),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) GetActiveOrders(c *gin.Context) {
	orders, err := h.orderService.GetActiveOrders(c.Request.Context(), callerFrom(c), c.Query("branch_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetReceipt(c *gin.Context) {
	receipt, err := h.paymentService.GetReceiptForOrder(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), callerFrom(c), services.CreateOrderRequest{
		BranchID:      req.BranchID,
		TableID:       req.TableID,
		Items:         toItemInputs(req.Items),
		CustomerName:  req.CustomerName,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), callerFrom(c), c.Param("id"), services.UpdateOrderRequest{
		Items:         toItemInputs(req.Items),
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		Status:        req.Status,
		CustomerName:  req.CustomerName,
		Paid:          req.Paid,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateLineStatus(c *gin.Context) {
	lineID, err := strconv.ParseUint(c.Param("line_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line ID"})
		return
	}

	var req struct {
		Status models.LineStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orderService.UpdateLineStatus(c.Request.Context(), callerFrom(c), c.Param("id"), uint(lineID), req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.orderService.DeleteOrder(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}
