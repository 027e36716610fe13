package models

import "time"

// SKUState is the lifecycle stage of an SKU in the fulfillment pipeline.
type SKUState string

const (
	// StateWaitingForCapacity: queued until a warehouse reports free capacity.
	StateWaitingForCapacity SKUState = "waiting_for_capacity"
	// StateAssignWarehousePosition: capacity found, awaiting a storage position.
	StateAssignWarehousePosition SKUState = "assign_warehouse_position"
	// StateWaitingForOrder: position assigned, ready for order placement.
	StateWaitingForOrder SKUState = "waiting_for_order"
	// StateActive: order placed. Set by the external ordering system only.
	StateActive SKUState = "active"
	// StateCancelled: terminal state, removed from the pipeline.
	StateCancelled SKUState = "cancelled"
)

// IsValid reports whether s is one of the known lifecycle states.
func (s SKUState) IsValid() bool {
	switch s {
	case StateWaitingForCapacity, StateAssignWarehousePosition, StateWaitingForOrder, StateActive, StateCancelled:
		return true
	}
	return false
}

// WarehouseAssignment holds the warehouse an SKU was routed to. Position,
// AssignedAt and AssignedBy are filled when a storage position is assigned
// and cleared again if the SKU is moved back.
type WarehouseAssignment struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Position   *string    `json:"position,omitempty"`
	AssignedAt *time.Time `json:"assignedAt,omitempty"`
	AssignedBy *string    `json:"assignedBy,omitempty"`
}

// SKU is one approved product unit progressing through the pipeline.
// QueuePosition is set only while the SKU is waiting for capacity;
// Warehouse only from the assignment stage onward. The service transition
// methods are the only writers, which keeps the two in step with State.
type SKU struct {
	ID                  string               `json:"id"`
	ProductID           string               `json:"productId"`
	ProductName         string               `json:"productName"`
	Supplier            string               `json:"supplier"`
	State               SKUState             `json:"state"`
	QueuePosition       *int                 `json:"queuePosition,omitempty"`
	ApprovedAt          time.Time            `json:"approvedAt"`
	ApprovedBy          string               `json:"approvedBy"`
	WarehousesToList    []string             `json:"warehousesToList,omitempty"`
	Warehouse           *WarehouseAssignment `json:"warehouse,omitempty"`
	LastModified        time.Time            `json:"lastModified"`
	LockedForReordering bool                 `json:"lockedForReordering"`
}
