package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spincity/backoffice/internal/db"
	"github.com/spincity/backoffice/internal/models"
	"github.com/spincity/backoffice/internal/service"
	"github.com/spincity/backoffice/internal/store"
)

func newSalesFixture(t *testing.T) (*service.SalesService, *store.Store) {
	t.Helper()
	conn, err := db.InitSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	st := store.NewLocal(conn, zap.NewNop())
	return service.NewSalesService(st.Sales, st.Inventory, zap.NewNop()), st
}

func itemStatus(t *testing.T, st *store.Store, id string) models.InventoryStatus {
	t.Helper()
	items, err := st.Inventory.List(context.Background())
	require.NoError(t, err)
	for _, item := range items {
		if item.ID == id {
			return item.Status
		}
	}
	t.Fatalf("inventory item %q not found", id)
	return ""
}

func TestCreateSale_MarksItemSold(t *testing.T) {
	svc, st := newSalesFixture(t)
	ctx := context.Background()

	item, err := st.Inventory.Create(ctx, models.InventoryItem{MakeModel: "LG WM4000", Status: models.StatusAvailable})
	require.NoError(t, err)

	sale, err := svc.Create(ctx, models.Sale{ItemID: item.ID, BuyerName: "Yaw Darko", SalePrice: 350})
	require.NoError(t, err)
	assert.NotEmpty(t, sale.ID)

	assert.Equal(t, models.StatusSold, itemStatus(t, st, item.ID))
}

func TestCreateSale_MissingItemIsTolerated(t *testing.T) {
	svc, _ := newSalesFixture(t)
	ctx := context.Background()

	sale, err := svc.Create(ctx, models.Sale{ItemID: "no-such-item", BuyerName: "Yaw Darko"})
	require.NoError(t, err)

	// The sale persists even though its item reference dangles.
	sales, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, sale.ID, sales[0].ID)
}

func TestUpdateSale_RetargetSwapsStatuses(t *testing.T) {
	svc, st := newSalesFixture(t)
	ctx := context.Background()

	itemA, err := st.Inventory.Create(ctx, models.InventoryItem{MakeModel: "Washer A", Status: models.StatusAvailable})
	require.NoError(t, err)
	itemB, err := st.Inventory.Create(ctx, models.InventoryItem{MakeModel: "Washer B", Status: models.StatusAvailable})
	require.NoError(t, err)

	sale, err := svc.Create(ctx, models.Sale{ItemID: itemA.ID})
	require.NoError(t, err)
	require.Equal(t, models.StatusSold, itemStatus(t, st, itemA.ID))

	sale.ItemID = itemB.ID
	require.NoError(t, svc.Update(ctx, sale))

	assert.Equal(t, models.StatusAvailable, itemStatus(t, st, itemA.ID))
	assert.Equal(t, models.StatusSold, itemStatus(t, st, itemB.ID))
}

func TestUpdateSale_SameItemLeavesInventoryAlone(t *testing.T) {
	svc, st := newSalesFixture(t)
	ctx := context.Background()

	item, err := st.Inventory.Create(ctx, models.InventoryItem{MakeModel: "Dryer", Status: models.StatusAvailable})
	require.NoError(t, err)
	sale, err := svc.Create(ctx, models.Sale{ItemID: item.ID, SalePrice: 200})
	require.NoError(t, err)

	sale.SalePrice = 250
	require.NoError(t, svc.Update(ctx, sale))

	assert.Equal(t, models.StatusSold, itemStatus(t, st, item.ID))
	sales, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 250.0, sales[0].SalePrice)
}

func TestDeleteSale_RevertsItemToAvailable(t *testing.T) {
	svc, st := newSalesFixture(t)
	ctx := context.Background()

	item, err := st.Inventory.Create(ctx, models.InventoryItem{MakeModel: "Stove", Status: models.StatusAvailable})
	require.NoError(t, err)
	sale, err := svc.Create(ctx, models.Sale{ItemID: item.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, sale.ID))

	assert.Equal(t, models.StatusAvailable, itemStatus(t, st, item.ID))
	sales, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

// The revert on delete is unconditional, so an item that was edited into
// another state while its sale existed still comes back as Available.
func TestDeleteSale_RevertIsUnconditional(t *testing.T) {
	svc, st := newSalesFixture(t)
	ctx := context.Background()

	item, err := st.Inventory.Create(ctx, models.InventoryItem{MakeModel: "Fridge", Status: models.StatusAvailable})
	require.NoError(t, err)
	sale, err := svc.Create(ctx, models.Sale{ItemID: item.ID})
	require.NoError(t, err)

	item.Status = models.StatusInRepair
	require.NoError(t, st.Inventory.Update(ctx, item))

	require.NoError(t, svc.Delete(ctx, sale.ID))
	assert.Equal(t, models.StatusAvailable, itemStatus(t, st, item.ID))
}

func TestSaleLifecycleScenario(t *testing.T) {
	svc, st := newSalesFixture(t)
	ctx := context.Background()

	i1, err := st.Inventory.Create(ctx, models.InventoryItem{MakeModel: "Item One", Status: models.StatusAvailable})
	require.NoError(t, err)
	i2, err := st.Inventory.Create(ctx, models.InventoryItem{MakeModel: "Item Two", Status: models.StatusAvailable})
	require.NoError(t, err)

	s1, err := svc.Create(ctx, models.Sale{ItemID: i1.ID})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSold, itemStatus(t, st, i1.ID))
	assert.Equal(t, models.StatusAvailable, itemStatus(t, st, i2.ID))

	s1.ItemID = i2.ID
	require.NoError(t, svc.Update(ctx, s1))
	assert.Equal(t, models.StatusAvailable, itemStatus(t, st, i1.ID))
	assert.Equal(t, models.StatusSold, itemStatus(t, st, i2.ID))

	require.NoError(t, svc.Delete(ctx, s1.ID))
	assert.Equal(t, models.StatusAvailable, itemStatus(t, st, i1.ID))
	assert.Equal(t, models.StatusAvailable, itemStatus(t, st, i2.ID))
}

func TestReconcile_CorrectsDriftBothWays(t *testing.T) {
	svc, st := newSalesFixture(t)
	ctx := context.Background()

	// Sold but referenced by nothing: should revert.
	orphanSold, err := st.Inventory.Create(ctx, models.InventoryItem{MakeModel: "Orphan", Status: models.StatusSold})
	require.NoError(t, err)
	// Referenced by a sale but still Available: should become Sold.
	missed, err := st.Inventory.Create(ctx, models.InventoryItem{MakeModel: "Missed", Status: models.StatusAvailable})
	require.NoError(t, err)
	// Non-Sold states without a referencing sale are left alone.
	inRepair, err := st.Inventory.Create(ctx, models.InventoryItem{MakeModel: "Broken", Status: models.StatusInRepair})
	require.NoError(t, err)

	_, err = st.Sales.Create(ctx, models.Sale{ItemID: missed.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Reconcile(ctx))

	assert.Equal(t, models.StatusAvailable, itemStatus(t, st, orphanSold.ID))
	assert.Equal(t, models.StatusSold, itemStatus(t, st, missed.ID))
	assert.Equal(t, models.StatusInRepair, itemStatus(t, st, inRepair.ID))
}

func TestReconcile_IsIdempotent(t *testing.T) {
	svc, st := newSalesFixture(t)
	ctx := context.Background()

	item, err := st.Inventory.Create(ctx, models.InventoryItem{MakeModel: "Stable", Status: models.StatusAvailable})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.Sale{ItemID: item.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Reconcile(ctx))
	require.NoError(t, svc.Reconcile(ctx))
	assert.Equal(t, models.StatusSold, itemStatus(t, st, item.ID))
}
