package worker

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stokline/skuflow_api/internal/config"
	"github.com/stokline/skuflow_api/internal/models"
	"github.com/stokline/skuflow_api/internal/service"
)

// CapacityWorker periodically simulates warehouse capacity checks and pulls
// the front of the queue into warehouse assignment. Each tick, every
// configured warehouse reports free capacity with its own probability; when
// it does, the lowest-position waiting SKU listing that warehouse is
// progressed. The worker only talks to the service through its public
// operations, so its timer serializes behind user actions.
type CapacityWorker struct {
	skuSvc     *service.SKUService
	warehouses []config.WarehouseConfig
	interval   time.Duration
	rng        *rand.Rand
}

// NewCapacityWorker constructs a CapacityWorker.
func NewCapacityWorker(skuSvc *service.SKUService, cfg *config.MonitorConfig) *CapacityWorker {
	return &CapacityWorker{
		skuSvc:     skuSvc,
		warehouses: cfg.Warehouses,
		interval:   cfg.CheckInterval,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins the periodic capacity check loop until context is canceled.
func (w *CapacityWorker) Start(ctx context.Context) {
	log.Info().
		Dur("interval", w.interval).
		Int("warehouses", len(w.warehouses)).
		Msg("Starting capacity monitor worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run()
		case <-ctx.Done():
			log.Info().Msg("Capacity monitor worker stopped")
			return
		}
	}
}

func (w *CapacityWorker) run() {
	for _, warehouse := range w.warehouses {
		if w.rng.Float64() >= warehouse.Probability {
			continue
		}
		w.checkWarehouse(warehouse)
	}
}

// checkWarehouse progresses the next eligible SKU for a warehouse that just
// reported free capacity. No-op when nothing in the queue lists it.
func (w *CapacityWorker) checkWarehouse(warehouse config.WarehouseConfig) {
	waiting := w.skuSvc.GetSKUs(models.StateWaitingForCapacity)
	next := NextForWarehouse(waiting, warehouse.ID)
	if next == nil {
		return
	}

	if !w.skuSvc.ProgressToWarehouseAssignment(next.ID, warehouse.ID, warehouse.Name) {
		// The SKU left the queue between the read and the call; the next
		// tick will pick up whoever is at the front now.
		log.Warn().
			Str("sku_id", next.ID).
			Str("warehouse_id", warehouse.ID).
			Msg("SKU no longer eligible for capacity progression")
		return
	}

	log.Info().
		Str("sku_id", next.ID).
		Str("product_name", next.ProductName).
		Str("warehouse_id", warehouse.ID).
		Str("warehouse_name", warehouse.Name).
		Msg("Capacity available, SKU progressed to warehouse assignment")
}

// NextForWarehouse returns the lowest-position SKU whose warehouse listing
// contains warehouseID, or nil if none qualifies.
func NextForWarehouse(waiting []*models.SKU, warehouseID string) *models.SKU {
	var next *models.SKU
	for _, sku := range waiting {
		if sku.QueuePosition == nil || !listsWarehouse(sku, warehouseID) {
			continue
		}
		if next == nil || *sku.QueuePosition < *next.QueuePosition {
			next = sku
		}
	}
	return next
}

func listsWarehouse(sku *models.SKU, warehouseID string) bool {
	for _, id := range sku.WarehousesToList {
		if id == warehouseID {
			return true
		}
	}
	return false
}
