package handlers

import (
	"net/http"

	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Sessions *SessionHandler
	POS      *POSHandler
	Orders   *OrderHandler
	Tables   *TableHandler
}

// RegisterRoutes mounts the POS API. Everything except login and the
// health check requires a session.
func RegisterRoutes(router *gin.Engine, h Handlers, sessions services.SessionService, log logrus.FieldLogger) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.POST("/pos/sessions", h.Sessions.CreateSession)

	authed := api.Group("", RequireSession(sessions, log))
	{
		authed.DELETE("/pos/sessions/current", h.Sessions.DeleteSession)
		authed.GET("/pos/data", h.POS.GetPosData)
		authed.POST("/pos/payment", h.POS.ProcessPayment)

		authed.GET("/orders", h.Orders.ListOrders)
		authed.GET("/orders/active", h.Orders.GetActiveOrders)
		authed.GET("/orders/:id", h.Orders.GetOrder)
		authed.GET("/orders/:id/receipt", h.Orders.GetReceipt)
		authed.POST("/orders", h.Orders.CreateOrder)
		authed.PUT("/orders/:id", h.Orders.UpdateOrder)
		authed.PATCH("/orders/:id/lines/:line_id", h.Orders.UpdateLineStatus)
		authed.DELETE("/orders/:id", h.Orders.DeleteOrder)

		authed.GET("/tables", h.Tables.ListTables)
		authed.POST("/tables", h.Tables.CreateTable)
		authed.GET("/tables/:id", h.Tables.GetTable)
		authed.PUT("/tables/:id", h.Tables.UpdateTable)
		authed.DELETE("/tables/:id", h.Tables.DeleteTable)
	}
}
