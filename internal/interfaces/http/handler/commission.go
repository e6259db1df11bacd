package handler

import (
	"context"

	commissionapp "github.com/buildcrm/backend/internal/application/commission"
	"github.com/buildcrm/backend/internal/domain/commission"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/buildcrm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionHandler handles commission plan, assignment and ledger endpoints
type CommissionHandler struct {
	BaseHandler
	planService   *commissionapp.PlanService
	ledgerService *commissionapp.LedgerService
}

// NewCommissionHandler creates a new CommissionHandler
func NewCommissionHandler(planService *commissionapp.PlanService, ledgerService *commissionapp.LedgerService) *CommissionHandler {
	return &CommissionHandler{
		planService:   planService,
		ledgerService: ledgerService,
	}
}

// CreatePlan creates a commission plan
func (h *CommissionHandler) CreatePlan(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req commissionapp.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, plan)
}

// GetPlan returns a plan by ID
func (h *CommissionHandler) GetPlan(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// ListPlans returns the company's plans with pagination
func (h *CommissionHandler) ListPlans(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if c.Query("active") == "true" {
		plans, err := h.planService.ListActivePlans(c.Request.Context(), companyID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, plans)
		return
	}

	filter := shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
		Search:   listReq.Search,
	}

	plans, err := h.planService.ListPlans(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plans)
}

// DeactivatePlan retires a plan from new assignments. Existing ledger rows
// keep their formula snapshot.
func (h *CommissionHandler) DeactivatePlan(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	plan, err := h.planService.DeactivatePlan(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// AssignPlan links a user to a plan for a lead
func (h *CommissionHandler) AssignPlan(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req commissionapp.AssignPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	assignment, err := h.planService.AssignPlan(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, assignment)
}

// RecordHoursRequest carries hours worked for an hourly plan assignment
type RecordHoursRequest struct {
	LeadID uuid.UUID       `json:"lead_id" binding:"required"`
	UserID uuid.UUID       `json:"user_id" binding:"required"`
	Hours  decimal.Decimal `json:"hours" binding:"required"`
}

// RecordHours records hours worked on a plan assignment
func (h *CommissionHandler) RecordHours(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req RecordHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	assignment, err := h.planService.RecordHoursWorked(c.Request.Context(), companyID, req.LeadID, req.UserID, req.Hours)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, assignment)
}

// ListByLead returns the commission ledger rows for a lead
func (h *CommissionHandler) ListByLead(c *gin.Context) {
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

	commissions, err := h.ledgerService.ListCommissionsByLead(c.Request.Context(), companyID, leadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, commissions)
}

// ListByUser returns a user's commission rows across leads
func (h *CommissionHandler) ListByUser(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}
	userID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
	}

	commissions, err := h.ledgerService.ListCommissionsByUser(c.Request.Context(), companyID, userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, commissions)
}

// GetCommission returns a single ledger row
func (h *CommissionHandler) GetCommission(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid commission ID")
		return
	}

	lc, err := h.ledgerService.GetCommission(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lc)
}

// Reconcile recomputes the lead's commission ledger from the current
// financial documents
func (h *CommissionHandler) Reconcile(c *gin.Context) {
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

	if err := h.ledgerService.ReconcileLead(c.Request.Context(), companyID, leadID, commissionapp.ReconcileOptions{}); err != nil {
		h.HandleError(c, err)
		return
	}

	commissions, err := h.ledgerService.ListCommissionsByLead(c.Request.Context(), companyID, leadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, commissions)
}

// MarkCompleted records job completion, satisfying COMPLETED payout gates
func (h *CommissionHandler) MarkCompleted(c *gin.Context) {
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

	if err := h.ledgerService.MarkLeadCompleted(c.Request.Context(), companyID, leadID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"lead_id": leadID, "status": "completed"})
}

// Approve approves an eligible commission for payout
func (h *CommissionHandler) Approve(c *gin.Context) {
	h.mutate(c, h.ledgerService.ApproveCommission)
}

// Pay records an explicit payout against an approved commission
func (h *CommissionHandler) Pay(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid commission ID")
		return
	}

	var req commissionapp.PayCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lc, err := h.ledgerService.PayCommission(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lc)
}

// CancelCommissionRequest carries the reason a commission row was cancelled
type CancelCommissionRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// Cancel cancels a commission row with no recorded payouts
func (h *CommissionHandler) Cancel(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid commission ID")
		return
	}

	var req CancelCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lc, err := h.ledgerService.CancelCommission(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lc)
}

func (h *CommissionHandler) mutate(c *gin.Context, fn func(context.Context, uuid.UUID) (*commission.LeadCommission, error)) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid commission ID")
		return
	}

	lc, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lc)
}

// RegisterRoutes registers commission routes
func (h *CommissionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	plans := rg.Group("/commission-plans")
	{
		plans.POST("", h.CreatePlan)
		plans.GET("", h.ListPlans)
		plans.GET("/:id", h.GetPlan)
		plans.POST("/:id/deactivate", h.DeactivatePlan)
	}

	assignments := rg.Group("/plan-assignments")
	{
		assignments.POST("", h.AssignPlan)
		assignments.POST("/hours", h.RecordHours)
	}

	commissions := rg.Group("/commissions")
	{
		commissions.GET("/:id", h.GetCommission)
		commissions.POST("/:id/approve", h.Approve)
		commissions.POST("/:id/pay", h.Pay)
		commissions.POST("/:id/cancel", h.Cancel)
	}

	rg.GET("/leads/:id/commissions", h.ListByLead)
	rg.POST("/leads/:id/commissions/reconcile", h.Reconcile)
	rg.POST("/leads/:id/complete", h.MarkCompleted)
	rg.GET("/users/:id/commissions", h.ListByUser)
}
