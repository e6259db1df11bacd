package handler

import (
	billingapp "github.com/buildcrm/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// ContractHandler handles contract API endpoints
type ContractHandler struct {
	BaseHandler
	contractService *billingapp.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *billingapp.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// Create creates a draft contract for a lead
func (h *ContractHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req billingapp.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contract, err := h.contractService.CreateContract(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contract)
}

// Get returns a contract by ID
func (h *ContractHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	contract, err := h.contractService.GetContract(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// GetByLead returns the lead's contract
func (h *ContractHandler) GetByLead(c *gin.Context) {
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

	contract, err := h.contractService.GetContractByLead(c.Request.Context(), companyID, leadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// UpdateLineItemsRequest carries replacement line items for a draft document
type UpdateLineItemsRequest struct {
	LineItems []billingapp.LineItemRequest `json:"line_items" binding:"required,min=1,dive"`
}

// UpdateLineItems replaces the line items of a draft contract
func (h *ContractHandler) UpdateLineItems(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	var req UpdateLineItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contract, err := h.contractService.UpdateContractLineItems(c.Request.Context(), id, req.LineItems)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// Sign marks a contract as signed
func (h *ContractHandler) Sign(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	contract, err := h.contractService.SignContract(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// Cancel cancels a contract
func (h *ContractHandler) Cancel(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	contract, err := h.contractService.CancelContract(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// RegisterRoutes registers contract routes
func (h *ContractHandler) RegisterRoutes(rg *gin.RouterGroup) {
	contracts := rg.Group("/contracts")
	{
		contracts.POST("", h.Create)
		contracts.GET("/:id", h.Get)
		contracts.PUT("/:id/line-items", h.UpdateLineItems)
		contracts.POST("/:id/sign", h.Sign)
		contracts.POST("/:id/cancel", h.Cancel)
	}
	rg.GET("/leads/:id/contract", h.GetByLead)
}
