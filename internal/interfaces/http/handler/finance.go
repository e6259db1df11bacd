package handler

import (
	financeapp "github.com/buildcrm/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinanceHandler handles financial summary and cost tracking endpoints
type FinanceHandler struct {
	BaseHandler
	summaryService *financeapp.SummaryService
	costService    *financeapp.CostService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(summaryService *financeapp.SummaryService, costService *financeapp.CostService) *FinanceHandler {
	return &FinanceHandler{
		summaryService: summaryService,
		costService:    costService,
	}
}

// GetSummary returns the lead's financial rollup
func (h *FinanceHandler) GetSummary(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}
	leadID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	summary, err := h.summaryService.GetFinancialSummary(c.Request.Context(), companyID, leadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// CreateMaterialOrder records a material order with its estimated cost
func (h *FinanceHandler) CreateMaterialOrder(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req financeapp.CreateMaterialOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.costService.CreateMaterialOrder(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// RecordActualCostRequest carries the invoiced cost of a material order
type RecordActualCostRequest struct {
	LeadID      uuid.UUID       `json:"lead_id" binding:"required"`
	TotalActual decimal.Decimal `json:"total_actual" binding:"required"`
}

// RecordActualCost records the supplier-invoiced cost, superseding the estimate
func (h *FinanceHandler) RecordActualCost(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid material order ID")
		return
	}

	var req RecordActualCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.costService.RecordMaterialActualCost(c.Request.Context(), companyID, req.LeadID, orderID, req.TotalActual)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// CreateWorkOrder records a labor work order against a lead
func (h *FinanceHandler) CreateWorkOrder(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req financeapp.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.costService.CreateWorkOrder(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// ListMaterialOrders returns a lead's material orders
func (h *FinanceHandler) ListMaterialOrders(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}
	leadID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	orders, err := h.costService.ListMaterialOrders(c.Request.Context(), companyID, leadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// ListWorkOrders returns a lead's work orders
func (h *FinanceHandler) ListWorkOrders(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}
	leadID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	orders, err := h.costService.ListWorkOrders(c.Request.Context(), companyID, leadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// RegisterRoutes registers finance routes
func (h *FinanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads/:id/financial-summary", h.GetSummary)
	rg.GET("/leads/:id/material-orders", h.ListMaterialOrders)
	rg.GET("/leads/:id/work-orders", h.ListWorkOrders)

	rg.POST("/material-orders", h.CreateMaterialOrder)
	rg.POST("/material-orders/:id/actual-cost", h.RecordActualCost)
	rg.POST("/work-orders", h.CreateWorkOrder)
}
