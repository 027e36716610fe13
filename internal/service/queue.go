package service

import (
	"fmt"
	"sort"

	"github.com/stokline/skuflow_api/internal/models"
)

// ReorderQueue moves a waiting SKU to newPosition, shifting every SKU whose
// position lies between the old and new slot by one step toward the vacated
// slot. Positions stay a dense permutation of 1..N. Returns false for an
// unknown id, a non-waiting or reorder-locked SKU, or a target outside 1..N.
// A target equal to the current position is accepted without side effects.
func (s *SKUService) ReorderQueue(skuID string, newPosition int, performedBy string) bool {
	s.mu.Lock()

	sku := s.findSKU(skuID)
	if sku == nil || sku.State != models.StateWaitingForCapacity || sku.LockedForReordering || sku.QueuePosition == nil {
		s.mu.Unlock()
		return false
	}

	oldPosition := *sku.QueuePosition
	if newPosition == oldPosition {
		s.mu.Unlock()
		return true
	}
	if newPosition < 1 || newPosition > s.waitingCount() {
		s.mu.Unlock()
		return false
	}

	for _, other := range s.skus {
		if other.State != models.StateWaitingForCapacity || other.QueuePosition == nil {
			continue
		}
		p := *other.QueuePosition
		switch {
		case other.ID == skuID:
			*other.QueuePosition = newPosition
		case oldPosition < newPosition && p > oldPosition && p <= newPosition:
			*other.QueuePosition = p - 1
		case oldPosition > newPosition && p < oldPosition && p >= newPosition:
			*other.QueuePosition = p + 1
		}
	}

	details := fmt.Sprintf("SKU moved from position %d to %d", oldPosition, newPosition)
	s.appendAudit(performedBy, ActionQueueReordered, skuID, nil, nil, details)
	s.persist()
	s.mu.Unlock()

	s.notifier.Notify()
	return true
}

// waitingCount returns the size of the capacity queue. Callers hold the mutex.
func (s *SKUService) waitingCount() int {
	n := 0
	for _, sku := range s.skus {
		if sku.State == models.StateWaitingForCapacity {
			n++
		}
	}
	return n
}

// compactQueue renumbers the waiting SKUs into a gap-free 1..N sequence by
// ascending current position, preserving relative order. Invoked by every
// operation that removes an SKU from the waiting set. Callers hold the mutex.
func (s *SKUService) compactQueue() {
	waiting := make([]*models.SKU, 0, len(s.skus))
	for _, sku := range s.skus {
		if sku.State == models.StateWaitingForCapacity {
			waiting = append(waiting, sku)
		}
	}
	sort.SliceStable(waiting, func(i, j int) bool {
		return position(waiting[i]) < position(waiting[j])
	})
	for i, sku := range waiting {
		pos := i + 1
		sku.QueuePosition = &pos
	}
}

func position(sku *models.SKU) int {
	if sku.QueuePosition == nil {
		return 0
	}
	return *sku.QueuePosition
}
