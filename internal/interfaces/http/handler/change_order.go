package handler

import (
	"context"

	billingapp "github.com/buildcrm/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChangeOrderHandler handles change order API endpoints
type ChangeOrderHandler struct {
	BaseHandler
	changeOrderService *billingapp.ChangeOrderService
}

// NewChangeOrderHandler creates a new ChangeOrderHandler
func NewChangeOrderHandler(changeOrderService *billingapp.ChangeOrderService) *ChangeOrderHandler {
	return &ChangeOrderHandler{changeOrderService: changeOrderService}
}

// SignRequest carries the signer name for a signature endpoint
type SignRequest struct {
	SignedBy string `json:"signed_by" binding:"required,max=200"`
}

// DeclineRequest carries the reason a change order was declined
type DeclineRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// Create creates a draft change order against a signed contract
func (h *ChangeOrderHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req billingapp.CreateChangeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	co, err := h.changeOrderService.CreateChangeOrder(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, co)
}

// Get returns a change order by ID
func (h *ChangeOrderHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid change order ID")
		return
	}

	co, err := h.changeOrderService.GetChangeOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, co)
}

// ListByLead returns all change orders for a lead
func (h *ChangeOrderHandler) ListByLead(c *gin.Context) {
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

	orders, err := h.changeOrderService.ListChangeOrdersByLead(c.Request.Context(), companyID, leadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// UpdateLineItems replaces the line items of a draft change order
func (h *ChangeOrderHandler) UpdateLineItems(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid change order ID")
		return
	}

	var req UpdateLineItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	co, err := h.changeOrderService.UpdateChangeOrderLineItems(c.Request.Context(), id, req.LineItems)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, co)
}

// Send transitions a draft change order to sent
func (h *ChangeOrderHandler) Send(c *gin.Context) {
	h.transition(c, h.changeOrderService.SendChangeOrder)
}

// Revert moves a sent change order back to draft
func (h *ChangeOrderHandler) Revert(c *gin.Context) {
	h.transition(c, h.changeOrderService.RevertChangeOrderToDraft)
}

// SignByCustomer records the customer signature
func (h *ChangeOrderHandler) SignByCustomer(c *gin.Context) {
	h.sign(c, h.changeOrderService.SignChangeOrderByCustomer)
}

// SignByCompany records the company countersignature
func (h *ChangeOrderHandler) SignByCompany(c *gin.Context) {
	h.sign(c, h.changeOrderService.SignChangeOrderByCompany)
}

// Approve approves a customer-signed change order, feeding its amount
// into revenue
func (h *ChangeOrderHandler) Approve(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid change order ID")
		return
	}

	co, err := h.changeOrderService.ApproveChangeOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, co)
}

// Decline declines a change order with a reason
func (h *ChangeOrderHandler) Decline(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid change order ID")
		return
	}

	var req DeclineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	co, err := h.changeOrderService.DeclineChangeOrder(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, co)
}

func (h *ChangeOrderHandler) transition(c *gin.Context, fn func(context.Context, uuid.UUID) (*billingapp.ChangeOrderResponse, error)) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid change order ID")
		return
	}

	co, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, co)
}

func (h *ChangeOrderHandler) sign(c *gin.Context, fn func(context.Context, uuid.UUID, string) (*billingapp.ChangeOrderResponse, error)) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid change order ID")
		return
	}

	var req SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	co, err := fn(c.Request.Context(), id, req.SignedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, co)
}

// RegisterRoutes registers change order routes
func (h *ChangeOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/change-orders")
	{
		orders.POST("", h.Create)
		orders.GET("/:id", h.Get)
		orders.PUT("/:id/line-items", h.UpdateLineItems)
		orders.POST("/:id/send", h.Send)
		orders.POST("/:id/revert", h.Revert)
		orders.POST("/:id/sign-customer", h.SignByCustomer)
		orders.POST("/:id/sign-company", h.SignByCompany)
		orders.POST("/:id/approve", h.Approve)
		orders.POST("/:id/decline", h.Decline)
	}
	rg.GET("/leads/:id/change-orders", h.ListByLead)
}
