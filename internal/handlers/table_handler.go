package handlers

import (
	"net/http"
	"strconv"

	"tabletrack/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TableHandler struct {
	tableService services.TableService
	log          *zap.Logger
}

func NewTableHandler(tableService services.TableService, log *zap.Logger) *TableHandler {
	return &TableHandler{tableService: tableService, log: log}
}

func (h *TableHandler) ListTables(c *gin.Context) {
	tables, err := h.tableService.ListTables(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (h *TableHandler) GetTable(c *gin.Context) {
	number, ok := tableNumberParam(c)
	if !ok {
		return
	}

	table, err := h.tableService.GetTable(c.Request.Context(), number)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *TableHandler) CreateTable(c *gin.Context) {
	table, err := h.tableService.CreateNextTable(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (h *TableHandler) RemoveLastTable(c *gin.Context) {
	removed, err := h.tableService.RemoveLastTable(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, removed)
}

func (h *TableHandler) ToggleStatus(c *gin.Context) {
	number, ok := tableNumberParam(c)
	if !ok {
		return
	}

	table, err := h.tableService.ToggleStatus(c.Request.Context(), number)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func tableNumberParam(c *gin.Context) (int, bool) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		badRequest(c, "table number must be a positive integer")
		return 0, false
	}
	return number, true
}
