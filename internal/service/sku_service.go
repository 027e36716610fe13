package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/stokline/skuflow_api/internal/models"
	"github.com/stokline/skuflow_api/internal/notify"
	"github.com/stokline/skuflow_api/internal/repository"
)

// Audit action labels, one per mutating operation.
const (
	ActionSKUCreated       = "SKU Created"
	ActionQueueReordered   = "Queue Reordered"
	ActionSKUCancelled     = "SKU Cancelled"
	ActionProgressed       = "Progressed to Warehouse Assignment"
	ActionPositionAssigned = "Warehouse Position Assigned"
	ActionMovedBackward    = "Moved Backward"
)

// systemUser is the acting user recorded for monitor-driven transitions.
const systemUser = "system"

const persistTimeout = 5 * time.Second

// SKUService owns the SKU collection and the audit trail, and is the single
// entry point for every lifecycle operation. A mutex serializes mutations so
// the capacity monitor's timer cannot interleave with user-initiated calls.
//
// Every successful mutation follows the same committed unit: apply the
// transition, append one audit entry, overwrite both persisted snapshots,
// then notify listeners. A violated precondition returns false and performs
// none of those steps.
type SKUService struct {
	mu        sync.Mutex
	skus      []*models.SKU
	auditLogs []*models.AuditLog
	store     repository.SnapshotStore
	notifier  *notify.Notifier
}

// NewSKUService constructs the service and loads both snapshots from the
// store. Absent snapshots are treated as empty collections.
func NewSKUService(store repository.SnapshotStore) (*SKUService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	skus, err := store.LoadSKUs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load SKU snapshot: %w", err)
	}
	logs, err := store.LoadAuditLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit log snapshot: %w", err)
	}

	log.Info().Int("skus", len(skus)).Int("audit_logs", len(logs)).Msg("SKU service restored from snapshot")

	return &SKUService{
		skus:      skus,
		auditLogs: logs,
		store:     store,
		notifier:  notify.NewNotifier(),
	}, nil
}

// Subscribe registers a change listener invoked after every committed
// mutation. The returned function unsubscribes; calling it twice is a no-op.
func (s *SKUService) Subscribe(listener func()) func() {
	return s.notifier.Subscribe(listener)
}

// CreateSKU registers a newly approved product unit at the tail of the
// capacity queue. It cannot fail.
func (s *SKUService) CreateSKU(productID, productName, supplier, approvedBy string, warehousesToList []string) *models.SKU {
	s.mu.Lock()

	now := time.Now()
	pos := s.waitingCount() + 1
	sku := &models.SKU{
		ID:               "SKU-" + uuid.NewString(),
		ProductID:        productID,
		ProductName:      productName,
		Supplier:         supplier,
		State:            models.StateWaitingForCapacity,
		QueuePosition:    &pos,
		ApprovedAt:       now,
		ApprovedBy:       approvedBy,
		WarehousesToList: warehousesToList,
		LastModified:     now,
	}
	s.skus = append(s.skus, sku)

	details := fmt.Sprintf("Product %s approved and added to capacity queue", productName)
	if len(warehousesToList) > 0 {
		details += " for warehouses: " + strings.Join(warehousesToList, ", ")
	}
	s.appendAudit(approvedBy, ActionSKUCreated, sku.ID, nil, statePtr(models.StateWaitingForCapacity), details)
	s.persist()

	created := cloneSKU(sku)
	s.mu.Unlock()

	s.notifier.Notify()
	return created
}

// GetSKUs returns all SKUs, or only those in the given state. The returned
// records are copies; mutating them does not touch the collection.
func (s *SKUService) GetSKUs(state models.SKUState) []*models.SKU {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*models.SKU, 0, len(s.skus))
	for _, sku := range s.skus {
		if state == "" || sku.State == state {
			result = append(result, cloneSKU(sku))
		}
	}
	return result
}

// GetSKUByID returns a copy of the SKU with the given id, or nil.
func (s *SKUService) GetSKUByID(id string) *models.SKU {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sku := s.findSKU(id); sku != nil {
		return cloneSKU(sku)
	}
	return nil
}

// CancelSKU cancels a waiting SKU and compacts the queue behind it. Legal
// only from the waiting state; any other source returns false untouched.
func (s *SKUService) CancelSKU(skuID, performedBy, reason string) bool {
	s.mu.Lock()

	sku := s.findSKU(skuID)
	if sku == nil || sku.State != models.StateWaitingForCapacity {
		s.mu.Unlock()
		return false
	}

	from := sku.State
	sku.State = models.StateCancelled
	sku.QueuePosition = nil
	sku.LastModified = time.Now()
	s.compactQueue()

	s.appendAudit(performedBy, ActionSKUCancelled, skuID, &from, statePtr(models.StateCancelled), reason)
	s.persist()
	s.mu.Unlock()

	s.notifier.Notify()
	return true
}

// ProgressToWarehouseAssignment moves a waiting SKU out of the queue to the
// position-assignment stage. Called by the capacity monitor when the given
// warehouse reports free capacity.
func (s *SKUService) ProgressToWarehouseAssignment(skuID, warehouseID, warehouseName string) bool {
	s.mu.Lock()

	sku := s.findSKU(skuID)
	if sku == nil || sku.State != models.StateWaitingForCapacity {
		s.mu.Unlock()
		return false
	}

	from := sku.State
	sku.State = models.StateAssignWarehousePosition
	sku.Warehouse = &models.WarehouseAssignment{ID: warehouseID, Name: warehouseName}
	sku.QueuePosition = nil
	sku.LockedForReordering = true
	sku.LastModified = time.Now()
	s.compactQueue()

	details := fmt.Sprintf("Capacity available at %s", warehouseName)
	s.appendAudit(systemUser, ActionProgressed, skuID, &from, statePtr(models.StateAssignWarehousePosition), details)
	s.persist()
	s.mu.Unlock()

	s.notifier.Notify()
	return true
}

// AssignWarehousePosition attaches a storage position to an SKU awaiting
// assignment, moving it to the waiting-for-order stage. An empty position
// is a precondition failure.
func (s *SKUService) AssignWarehousePosition(skuID, position, assignedBy string) bool {
	if position == "" {
		return false
	}

	s.mu.Lock()

	sku := s.findSKU(skuID)
	if sku == nil || sku.State != models.StateAssignWarehousePosition || sku.Warehouse == nil {
		s.mu.Unlock()
		return false
	}

	now := time.Now()
	from := sku.State
	sku.State = models.StateWaitingForOrder
	sku.Warehouse.Position = &position
	sku.Warehouse.AssignedAt = &now
	sku.Warehouse.AssignedBy = &assignedBy
	sku.LastModified = now

	details := fmt.Sprintf("Position %s assigned in %s", position, sku.Warehouse.Name)
	s.appendAudit(assignedBy, ActionPositionAssigned, skuID, &from, statePtr(models.StateWaitingForOrder), details)
	s.persist()
	s.mu.Unlock()

	s.notifier.Notify()
	return true
}

// MoveBackward steps an SKU one stage back for correction. From waiting for
// order it returns to position assignment, clearing the assigned position
// but keeping the warehouse. From position assignment it re-enters the
// capacity queue at the tail, dropping the warehouse entirely.
func (s *SKUService) MoveBackward(skuID, performedBy, reason string) bool {
	s.mu.Lock()

	sku := s.findSKU(skuID)
	if sku == nil {
		s.mu.Unlock()
		return false
	}

	from := sku.State
	var to models.SKUState
	var details string

	switch sku.State {
	case models.StateAssignWarehousePosition:
		to = models.StateWaitingForCapacity
		sku.Warehouse = nil
		sku.LockedForReordering = false
		pos := s.waitingCount() + 1
		sku.QueuePosition = &pos
		details = "Moved back to capacity queue"
	case models.StateWaitingForOrder:
		to = models.StateAssignWarehousePosition
		if sku.Warehouse != nil {
			sku.Warehouse.Position = nil
			sku.Warehouse.AssignedAt = nil
			sku.Warehouse.AssignedBy = nil
		}
		details = "Moved back to warehouse assignment"
	default:
		s.mu.Unlock()
		return false
	}

	sku.State = to
	sku.LastModified = time.Now()

	s.appendAudit(performedBy, ActionMovedBackward, skuID, &from, &to, fmt.Sprintf("%s. Reason: %s", details, reason))
	s.persist()
	s.mu.Unlock()

	s.notifier.Notify()
	return true
}

// GetAuditLogs returns all audit entries, or only those for the given SKU.
// No ordering is guaranteed; callers sort by timestamp as needed.
func (s *SKUService) GetAuditLogs(skuID string) []*models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*models.AuditLog, 0, len(s.auditLogs))
	for _, entry := range s.auditLogs {
		if skuID == "" || entry.SKUID == skuID {
			result = append(result, cloneAuditLog(entry))
		}
	}
	return result
}

// findSKU returns the live record for id. Callers hold the mutex.
func (s *SKUService) findSKU(id string) *models.SKU {
	for _, sku := range s.skus {
		if sku.ID == id {
			return sku
		}
	}
	return nil
}

// appendAudit records one entry for a committed mutation. Callers hold the mutex.
func (s *SKUService) appendAudit(user, action, skuID string, from, to *models.SKUState, details string) {
	entry := &models.AuditLog{
		ID:        "LOG-" + uuid.NewString(),
		Timestamp: time.Now(),
		User:      user,
		Action:    action,
		SKUID:     skuID,
		FromState: from,
		ToState:   to,
	}
	if details != "" {
		entry.Details = &details
	}
	s.auditLogs = append(s.auditLogs, entry)
}

// persist overwrites both snapshots. The in-memory collections stay
// authoritative: a failed write is logged and retried implicitly by the
// next mutation, which rewrites the full snapshot anyway.
func (s *SKUService) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.store.SaveSKUs(ctx, s.skus); err != nil {
		log.Error().Err(err).Msg("Failed to persist SKU snapshot")
	}
	if err := s.store.SaveAuditLogs(ctx, s.auditLogs); err != nil {
		log.Error().Err(err).Msg("Failed to persist audit log snapshot")
	}
}

func statePtr(s models.SKUState) *models.SKUState {
	return &s
}

func cloneSKU(sku *models.SKU) *models.SKU {
	c := *sku
	if sku.QueuePosition != nil {
		pos := *sku.QueuePosition
		c.QueuePosition = &pos
	}
	if sku.WarehousesToList != nil {
		c.WarehousesToList = append([]string(nil), sku.WarehousesToList...)
	}
	if sku.Warehouse != nil {
		w := *sku.Warehouse
		if sku.Warehouse.Position != nil {
			v := *sku.Warehouse.Position
			w.Position = &v
		}
		if sku.Warehouse.AssignedAt != nil {
			v := *sku.Warehouse.AssignedAt
			w.AssignedAt = &v
		}
		if sku.Warehouse.AssignedBy != nil {
			v := *sku.Warehouse.AssignedBy
			w.AssignedBy = &v
		}
		c.Warehouse = &w
	}
	return &c
}

func cloneAuditLog(entry *models.AuditLog) *models.AuditLog {
	c := *entry
	if entry.FromState != nil {
		v := *entry.FromState
		c.FromState = &v
	}
	if entry.ToState != nil {
		v := *entry.ToState
		c.ToState = &v
	}
	if entry.Details != nil {
		v := *entry.Details
		c.Details = &v
	}
	return &c
}
