package reporting

import (
	"context"
	"testing"

	"sitestock-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type reportFixture struct {
	orgID  uuid.UUID
	userID uuid.UUID
	whID   uuid.UUID
}

func setupReportingTest(t *testing.T) (*Service, *gorm.DB, reportFixture) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Item{}, &domain.Warehouse{}, &domain.Stock{}, &domain.StockMovement{},
	))
	f := reportFixture{orgID: uuid.New(), userID: uuid.New()}
	wh := &domain.Warehouse{OrgID: f.orgID, Name: "Depot", Kind: domain.WarehouseFixedDepot, Active: true}
	require.NoError(t, db.Create(wh).Error)
	f.whID = wh.WarehouseID
	return &Service{DB: db}, db, f
}

func seedItem(t *testing.T, db *gorm.DB, f reportFixture, sku string, minStock, balance int64, price *decimal.Decimal) uuid.UUID {
	t.Helper()
	item := &domain.Item{
		OrgID: f.orgID, SKU: sku, Name: "Item " + sku, Unit: domain.UnitBag,
		MinStock: decimal.NewFromInt(minStock), ReferencePrice: price, Active: true,
	}
	require.NoError(t, db.Create(item).Error)
	if balance != 0 {
		require.NoError(t, db.Create(&domain.Stock{
			OrgID: f.orgID, ItemID: item.ItemID, WarehouseID: f.whID,
			Quantity: decimal.NewFromInt(balance),
		}).Error)
	}
	return item.ItemID
}

func TestListLowStock(t *testing.T) {
	s, db, f := setupReportingTest(t)
	ctx := context.Background()

	seedItem(t, db, f, "CEM-50", 10, 8, nil)  // deficit 2
	seedItem(t, db, f, "RBR-12", 20, 5, nil)  // deficit 15
	seedItem(t, db, f, "SND-1", 10, 10, nil)  // at threshold, deficit 0
	seedItem(t, db, f, "GRV-1", 10, 30, nil)  // well stocked
	seedItem(t, db, f, "MSC-1", 0, 0, nil)    // zero threshold, never reported
	seedItem(t, db, f, "TIL-9", 20, 5, nil)   // deficit 15, ties with RBR-12

	entries, err := s.ListLowStock(ctx, f.orgID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	// Worst deficit first, SKU ascending on ties.
	assert.Equal(t, "RBR-12", entries[0].SKU)
	assert.Equal(t, "TIL-9", entries[1].SKU)
	assert.Equal(t, "CEM-50", entries[2].SKU)
	assert.Equal(t, "SND-1", entries[3].SKU)
	assert.True(t, entries[0].Deficit.Equal(decimal.NewFromInt(15)))
	assert.True(t, entries[3].Deficit.IsZero())
}

// Lowering the threshold clears the item from the report without any movement.
func TestListLowStock_ThresholdChange(t *testing.T) {
	s, db, f := setupReportingTest(t)
	ctx := context.Background()

	itemID := seedItem(t, db, f, "CEM-50", 10, 8, nil)

	entries, err := s.ListLowStock(ctx, f.orgID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, itemID, entries[0].ItemID)

	require.NoError(t, db.Model(&domain.Item{}).
		Where("item_id = ?", itemID).
		Update("min_stock", decimal.NewFromInt(5)).Error)

	entries, err = s.ListLowStock(ctx, f.orgID, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListLowStock_SkipsDeactivatedItems(t *testing.T) {
	s, db, f := setupReportingTest(t)
	itemID := seedItem(t, db, f, "OLD-1", 10, 0, nil)
	require.NoError(t, db.Model(&domain.Item{}).Where("item_id = ?", itemID).Update("active", false).Error)

	entries, err := s.ListLowStock(context.Background(), f.orgID, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListLowStock_PerWarehouse(t *testing.T) {
	s, db, f := setupReportingTest(t)
	ctx := context.Background()

	other := &domain.Warehouse{OrgID: f.orgID, Name: "Site", Kind: domain.WarehouseProjectSite, Active: true}
	require.NoError(t, db.Create(other).Error)

	// 8 at the depot plus 20 at the site: fine overall, low at the depot.
	itemID := seedItem(t, db, f, "CEM-50", 10, 8, nil)
	require.NoError(t, db.Create(&domain.Stock{
		OrgID: f.orgID, ItemID: itemID, WarehouseID: other.WarehouseID,
		Quantity: decimal.NewFromInt(20),
	}).Error)

	global, err := s.ListLowStock(ctx, f.orgID, nil)
	require.NoError(t, err)
	assert.Empty(t, global)

	atDepot, err := s.ListLowStock(ctx, f.orgID, &f.whID)
	require.NoError(t, err)
	require.Len(t, atDepot, 1)
	assert.True(t, atDepot[0].Balance.Equal(decimal.NewFromInt(8)))
}

// Valuation: unpriced items appear with a null value and never fail the report.
func TestEstimateValue(t *testing.T) {
	s, db, f := setupReportingTest(t)

	price := decimal.NewFromFloat(12.5)
	seedItem(t, db, f, "CEM-50", 0, 40, &price) // value 500
	seedItem(t, db, f, "RBR-12", 0, 10, nil)    // unpriced
	seedItem(t, db, f, "EMP-1", 0, 0, &price)   // zero balance, skipped

	report, err := s.EstimateValue(context.Background(), f.orgID, nil)
	require.NoError(t, err)
	require.Len(t, report.Entries, 2)
	assert.Equal(t, 1, report.UnpricedItems)
	assert.True(t, report.TotalValue.Equal(decimal.NewFromInt(500)))

	assert.Equal(t, "CEM-50", report.Entries[0].SKU)
	require.NotNil(t, report.Entries[0].Value)
	assert.True(t, report.Entries[0].Value.Equal(decimal.NewFromInt(500)))

	assert.Equal(t, "RBR-12", report.Entries[1].SKU)
	assert.Nil(t, report.Entries[1].Value)
	assert.Nil(t, report.Entries[1].ReferencePrice)
}

func TestGetUsageByProject(t *testing.T) {
	s, db, f := setupReportingTest(t)
	ctx := context.Background()
	projectID := uuid.New()

	cement := seedItem(t, db, f, "CEM-50", 0, 0, nil)
	rebar := seedItem(t, db, f, "RBR-12", 0, 0, nil)

	egress := func(itemID uuid.UUID, qty int64, project *uuid.UUID) {
		require.NoError(t, db.Create(&domain.StockMovement{
			OrgID: f.orgID, ItemID: itemID, Kind: domain.MovementEgress,
			Quantity: decimal.NewFromInt(qty), OriginWarehouseID: &f.whID,
			ProjectID: project, CreatedBy: f.userID,
		}).Error)
	}
	egress(cement, 20, &projectID)
	egress(cement, 15, &projectID)
	egress(rebar, 50, &projectID)
	egress(cement, 99, nil) // not linked to the project
	otherProject := uuid.New()
	egress(rebar, 7, &otherProject)

	// Ingress rows never count as usage.
	require.NoError(t, db.Create(&domain.StockMovement{
		OrgID: f.orgID, ItemID: cement, Kind: domain.MovementIngress,
		Quantity: decimal.NewFromInt(500), DestinationWarehouseID: &f.whID,
		ProjectID: &projectID, CreatedBy: f.userID,
	}).Error)

	usage, err := s.GetUsageByProject(ctx, f.orgID, projectID)
	require.NoError(t, err)
	require.Len(t, usage, 2)

	// Most consumed first.
	assert.Equal(t, "RBR-12", usage[0].SKU)
	assert.True(t, usage[0].TotalQuantity.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 1, usage[0].MovementCount)

	assert.Equal(t, "CEM-50", usage[1].SKU)
	assert.True(t, usage[1].TotalQuantity.Equal(decimal.NewFromInt(35)))
	assert.Equal(t, 2, usage[1].MovementCount)
	assert.False(t, usage[1].LastUsedAt.IsZero())
}

func TestGetUsageByProject_Empty(t *testing.T) {
	s, _, f := setupReportingTest(t)
	usage, err := s.GetUsageByProject(context.Background(), f.orgID, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, usage)
}
