package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stokline/skuflow_api/internal/models"
	"github.com/stokline/skuflow_api/internal/service"
	"github.com/stokline/skuflow_api/internal/utils"
)

// SKUHandler exposes the SKU lifecycle operations over HTTP.
type SKUHandler struct {
	skuService *service.SKUService
}

// NewSKUHandler constructs a SKUHandler.
func NewSKUHandler(skuService *service.SKUService) *SKUHandler {
	return &SKUHandler{skuService: skuService}
}

// CreateSKURequest is the payload for POST /v1/skus.
type CreateSKURequest struct {
	ProductID        string   `json:"productId" binding:"required"`
	ProductName      string   `json:"productName" binding:"required"`
	Supplier         string   `json:"supplier" binding:"required"`
	ApprovedBy       string   `json:"approvedBy" binding:"required"`
	WarehousesToList []string `json:"warehousesToList"`
}

// ReorderRequest is the payload for POST /v1/skus/:id/reorder.
type ReorderRequest struct {
	NewPosition int    `json:"newPosition" binding:"required"`
	PerformedBy string `json:"performedBy" binding:"required"`
}

// CancelRequest is the payload for POST /v1/skus/:id/cancel.
type CancelRequest struct {
	PerformedBy string `json:"performedBy" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
}

// ProgressRequest is the payload for POST /v1/skus/:id/progress.
type ProgressRequest struct {
	WarehouseID   string `json:"warehouseId" binding:"required"`
	WarehouseName string `json:"warehouseName" binding:"required"`
}

// AssignPositionRequest is the payload for POST /v1/skus/:id/position.
type AssignPositionRequest struct {
	Position   string `json:"position" binding:"required"`
	AssignedBy string `json:"assignedBy" binding:"required"`
}

// MoveBackwardRequest is the payload for POST /v1/skus/:id/move-backward.
type MoveBackwardRequest struct {
	PerformedBy string `json:"performedBy" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
}

// CreateSKU registers a newly approved product unit in the capacity queue.
func (h *SKUHandler) CreateSKU(c *gin.Context) {
	var req CreateSKURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "productId, productName, supplier and approvedBy are required")
		return
	}

	sku := h.skuService.CreateSKU(req.ProductID, req.ProductName, req.Supplier, req.ApprovedBy, req.WarehousesToList)
	utils.Success(c, 201, "SKU created", gin.H{"sku": sku})
}

// GetSKUs lists SKUs, optionally filtered by state (?state=waiting_for_capacity).
func (h *SKUHandler) GetSKUs(c *gin.Context) {
	state := models.SKUState(c.Query("state"))
	if state != "" && !state.IsValid() {
		utils.Error(c, 400, "INVALID_STATE_FILTER", "Unknown SKU state: "+string(state))
		return
	}

	skus := h.skuService.GetSKUs(state)
	utils.Success(c, 200, "SKUs retrieved successfully", gin.H{"skus": skus})
}

// GetSKUByID returns a single SKU.
func (h *SKUHandler) GetSKUByID(c *gin.Context) {
	sku := h.skuService.GetSKUByID(c.Param("id"))
	if sku == nil {
		utils.Error(c, 404, "SKU_NOT_FOUND", "SKU not found")
		return
	}
	utils.Success(c, 200, "SKU retrieved successfully", gin.H{"sku": sku})
}

// ReorderQueue moves a waiting SKU to a new queue position.
func (h *SKUHandler) ReorderQueue(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "newPosition and performedBy are required")
		return
	}

	id := c.Param("id")
	if !h.skuService.ReorderQueue(id, req.NewPosition, req.PerformedBy) {
		h.rejected(c, id, "SKU cannot be reordered: not waiting, locked, or position out of range")
		return
	}
	utils.Success(c, 200, "Queue reordered", gin.H{"sku": h.skuService.GetSKUByID(id)})
}

// CancelSKU cancels a waiting SKU.
func (h *SKUHandler) CancelSKU(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "performedBy and reason are required")
		return
	}

	id := c.Param("id")
	if !h.skuService.CancelSKU(id, req.PerformedBy, req.Reason) {
		h.rejected(c, id, "SKU can only be cancelled while waiting for capacity")
		return
	}
	utils.Success(c, 200, "SKU cancelled", gin.H{"sku": h.skuService.GetSKUByID(id)})
}

// ProgressToWarehouseAssignment moves a waiting SKU to warehouse assignment.
// Normally driven by the capacity monitor; exposed for manual intervention.
func (h *SKUHandler) ProgressToWarehouseAssignment(c *gin.Context) {
	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "warehouseId and warehouseName are required")
		return
	}

	id := c.Param("id")
	if !h.skuService.ProgressToWarehouseAssignment(id, req.WarehouseID, req.WarehouseName) {
		h.rejected(c, id, "SKU can only progress from the capacity queue")
		return
	}
	utils.Success(c, 200, "SKU progressed to warehouse assignment", gin.H{"sku": h.skuService.GetSKUByID(id)})
}

// AssignWarehousePosition attaches a storage position to an SKU.
func (h *SKUHandler) AssignWarehousePosition(c *gin.Context) {
	var req AssignPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "position and assignedBy are required")
		return
	}

	id := c.Param("id")
	if !h.skuService.AssignWarehousePosition(id, req.Position, req.AssignedBy) {
		h.rejected(c, id, "SKU is not awaiting warehouse position assignment")
		return
	}
	utils.Success(c, 200, "Warehouse position assigned", gin.H{"sku": h.skuService.GetSKUByID(id)})
}

// MoveBackward steps an SKU one stage back for correction.
func (h *SKUHandler) MoveBackward(c *gin.Context) {
	var req MoveBackwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "performedBy and reason are required")
		return
	}

	id := c.Param("id")
	if !h.skuService.MoveBackward(id, req.PerformedBy, req.Reason) {
		h.rejected(c, id, "SKU cannot move backward from its current state")
		return
	}
	utils.Success(c, 200, "SKU moved backward", gin.H{"sku": h.skuService.GetSKUByID(id)})
}

// GetAuditLogs returns the audit trail, optionally for one SKU (?skuId=...).
func (h *SKUHandler) GetAuditLogs(c *gin.Context) {
	logs := h.skuService.GetAuditLogs(c.Query("skuId"))
	utils.Success(c, 200, "Audit logs retrieved successfully", gin.H{"auditLogs": logs})
}

// rejected maps a false service result onto the envelope: 404 when the id is
// unknown, 409 when the SKU exists but the precondition failed.
func (h *SKUHandler) rejected(c *gin.Context, skuID, message string) {
	if h.skuService.GetSKUByID(skuID) == nil {
		utils.Error(c, 404, "SKU_NOT_FOUND", "SKU not found")
		return
	}
	utils.Error(c, 409, "INVALID_STATE", message)
}
