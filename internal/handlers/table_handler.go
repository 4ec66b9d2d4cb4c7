package handlers

import (
	"net/http"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type TableHandler struct {
	tableService services.TableService
	log          logrus.FieldLogger
}

func NewTableHandler(tableService services.TableService, log logrus.FieldLogger) *TableHandler {
	return &TableHandler{tableService: tableService, log: log}
}

func (h *TableHandler) ListTables(c *gin.Context) {
	tables, err := h.tableService.ListTables(c.Request.Context(), callerFrom(c), services.TableQuery{
		BranchID: c.Query("branch_id"),
		Section:  c.Query("section"),
		Status:   models.TableStatus(c.Query("status")),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

func (h *TableHandler) GetTable(c *gin.Context) {
	table, err := h.tableService.GetTable(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *TableHandler) CreateTable(c *gin.Context) {
	var req struct {
		BranchID string             `json:"branch_id" binding:"required"`
		Number   int                `json:"number"`
		Capacity int                `json:"capacity"`
		Section  string             `json:"section"`
		Status   models.TableStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	table, err := h.tableService.CreateTable(c.Request.Context(), callerFrom(c), services.CreateTableRequest{
		BranchID: req.BranchID,
		Number:   req.Number,
		Capacity: req.Capacity,
		Section:  req.Section,
		Status:   req.Status,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (h *TableHandler) UpdateTable(c *gin.Context) {
	var req struct {
		Number   *int                `json:"number"`
		Capacity *int                `json:"capacity"`
		Section  *string             `json:"section"`
		Status   *models.TableStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	table, err := h.tableService.UpdateTable(c.Request.Context(), callerFrom(c), c.Param("id"), services.UpdateTableRequest{
		Number:   req.Number,
		Capacity: req.Capacity,
		Section:  req.Section,
		Status:   req.Status,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *TableHandler) DeleteTable(c *gin.Context) {
	if err := h.tableService.DeleteTable(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Table deleted successfully"})
}
