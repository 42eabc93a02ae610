package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spincity/backoffice/internal/metrics"
	"github.com/spincity/backoffice/internal/models"
)

// Reconcile recomputes every inventory item's status from the current sale
// set: an item referenced by a sale must be Sold, a Sold item referenced by
// nothing reverts to Available. Unreferenced items in other states (In
// Repair, Decommissioned) are left alone. The pass is idempotent and safe to
// run at any time.
func (s *SalesService) Reconcile(ctx context.Context) error {
	sales, err := s.sales.List(ctx)
	if err != nil {
		return err
	}
	sold := make(map[string]bool, len(sales))
	for _, sale := range sales {
		sold[sale.ItemID] = true
	}

	items, err := s.inventory.List(ctx)
	if err != nil {
		return err
	}

	corrected := 0
	for _, item := range items {
		want := item.Status
		switch {
		case sold[item.ID] && item.Status != models.StatusSold:
			want = models.StatusSold
		case !sold[item.ID] && item.Status == models.StatusSold:
			want = models.StatusAvailable
		}
		if want == item.Status {
			continue
		}
		from := item.Status
		item.Status = want
		if err := s.inventory.Update(ctx, item); err != nil {
			return err
		}
		corrected++
		metrics.InventoryDrift.Inc()
		s.log.Info("corrected inventory status drift",
			zap.String("item", item.ID),
			zap.String("from", string(from)),
			zap.String("to", string(want)))
	}
	if corrected > 0 {
		s.log.Info("reconciliation pass complete", zap.Int("corrected", corrected))
	}
	return nil
}

// StartReconciler runs Reconcile on an interval until the context is
// cancelled.
func (s *SalesService) StartReconciler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Reconcile(ctx); err != nil {
					s.log.Error("reconciliation pass failed", zap.Error(err))
				}
			}
		}
	}()
}
