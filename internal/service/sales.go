// Package service implements the business policies on top of the store: the
// sale/inventory consistency rules and whole-dataset backup and restore.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spincity/backoffice/internal/models"
	"github.com/spincity/backoffice/internal/store"
)

// SalesService wraps the Sale collection and keeps the derived status field
// on inventory items consistent with the sales that reference them. These
// rules are the only place inventory status is mutated as a side effect of
// another entity; direct edits elsewhere are allowed and not overridden.
//
// The sale write and the inventory write are two independent store
// operations with no transaction around them. The sale record is the source
// of truth; Reconcile re-derives statuses should a crash land between the
// two writes.
type SalesService struct {
	sales     store.Collection[models.Sale]
	inventory store.Collection[models.InventoryItem]
	log       *zap.Logger
}

func NewSalesService(sales store.Collection[models.Sale], inventory store.Collection[models.InventoryItem], log *zap.Logger) *SalesService {
	return &SalesService{sales: sales, inventory: inventory, log: log}
}

func (s *SalesService) List(ctx context.Context) ([]models.Sale, error) {
	return s.sales.List(ctx)
}

// Create persists the sale first, then marks the referenced item Sold. A
// missing item does not roll the sale back; the orphaned reference is
// tolerated.
func (s *SalesService) Create(ctx context.Context, sale models.Sale) (models.Sale, error) {
	created, err := s.sales.Create(ctx, sale)
	if err != nil {
		return models.Sale{}, err
	}
	s.setStatus(ctx, created.ItemID, models.StatusSold)
	return created, nil
}

// Update replaces the sale. When the update retargets the sale from item A
// to item B, A reverts to Available and B becomes Sold; an unchanged itemId
// mutates no inventory.
func (s *SalesService) Update(ctx context.Context, sale models.Sale) error {
	prev, found := s.find(ctx, sale.ID)
	if err := s.sales.Update(ctx, sale); err != nil {
		return err
	}
	if !found {
		// Unknown id: the store treated the update as a no-op.
		return nil
	}
	if prev.ItemID != sale.ItemID {
		s.setStatus(ctx, prev.ItemID, models.StatusAvailable)
		s.setStatus(ctx, sale.ItemID, models.StatusSold)
	}
	return nil
}

// Delete removes the sale and reverts its former item to Available. The
// revert is unconditional: detaching a sale is a one-way promotion to
// Available, never back to a pre-sale state.
func (s *SalesService) Delete(ctx context.Context, id string) error {
	prev, found := s.find(ctx, id)
	if err := s.sales.Delete(ctx, id); err != nil {
		return err
	}
	if found {
		s.setStatus(ctx, prev.ItemID, models.StatusAvailable)
	}
	return nil
}

// Replace overwrites the sale collection wholesale. It exists for backup
// restore, which carries the matching inventory statuses in the same
// snapshot, so no side effects are applied here.
func (s *SalesService) Replace(ctx context.Context, sales []models.Sale) error {
	return s.sales.Replace(ctx, sales)
}

func (s *SalesService) find(ctx context.Context, id string) (models.Sale, bool) {
	sales, err := s.sales.List(ctx)
	if err != nil {
		s.log.Error("failed to list sales", zap.Error(err))
		return models.Sale{}, false
	}
	for _, sale := range sales {
		if sale.ID == id {
			return sale, true
		}
	}
	return models.Sale{}, false
}

// setStatus updates one item's status. A dangling item reference is logged
// and tolerated; an item already in the target status is left untouched.
func (s *SalesService) setStatus(ctx context.Context, itemID string, status models.InventoryStatus) {
	items, err := s.inventory.List(ctx)
	if err != nil {
		s.log.Error("failed to list inventory", zap.Error(err))
		return
	}
	for _, item := range items {
		if item.ID != itemID {
			continue
		}
		if item.Status == status {
			return
		}
		item.Status = status
		if err := s.inventory.Update(ctx, item); err != nil {
			s.log.Error("failed to update inventory status",
				zap.String("item", itemID), zap.String("status", string(status)), zap.Error(err))
		}
		return
	}
	s.log.Warn("sale references missing inventory item", zap.String("item", itemID))
}
