package handlers

import (
	"net/http"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type POSHandler struct {
	posService     services.PosService
	paymentService services.PaymentService
	log            logrus.FieldLogger
}

func NewPOSHandler(posService services.PosService, paymentService services.PaymentService, log logrus.FieldLogger) *POSHandler {
	return &POSHandler{posService: posService, paymentService: paymentService, log: log}
}

func (h *POSHandler) GetPosData(c *gin.Context) {
	data, err := h.posService.GetPosData(c.Request.Context(), callerFrom(c), c.Query("branch_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *POSHandler) ProcessPayment(c *gin.Context) {
	var req struct {
		OrderID       string               `json:"order_id" binding:"required"`
		PaymentMethod models.PaymentMethod `json:"payment_method"`
		Email         string               `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.paymentService.ProcessPayment(c.Request.Context(), callerFrom(c), services.PaymentRequest{
		OrderID: req.OrderID,
		Method:  req.PaymentMethod,
		Email:   req.Email,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
