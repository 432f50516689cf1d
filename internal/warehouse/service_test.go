package warehouse

import (
	"context"
	"testing"

	"sitestock-backend/internal/domain"
	"sitestock-backend/internal/pkg/apperror"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupWarehouseTest(t *testing.T) (*Service, *gorm.DB, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Warehouse{}, &domain.Stock{}))
	return &Service{DB: db}, db, uuid.New()
}

func TestCreate(t *testing.T) {
	s, _, orgID := setupWarehouseTest(t)

	wh, err := s.Create(context.Background(), CreateInput{
		OrgID: orgID, Name: " Central Depot ", Kind: domain.WarehouseFixedDepot, Address: "12 Yard Rd",
	})
	require.NoError(t, err)
	assert.Equal(t, "Central Depot", wh.Name)
	assert.Equal(t, domain.WarehouseFixedDepot, wh.Kind)
	assert.True(t, wh.Active)
}

func TestCreate_DefaultsToFixedDepot(t *testing.T) {
	s, _, orgID := setupWarehouseTest(t)
	wh, err := s.Create(context.Background(), CreateInput{OrgID: orgID, Name: "Depot"})
	require.NoError(t, err)
	assert.Equal(t, domain.WarehouseFixedDepot, wh.Kind)
}

func TestCreate_Validation(t *testing.T) {
	s, _, orgID := setupWarehouseTest(t)
	ctx := context.Background()

	_, err := s.Create(ctx, CreateInput{OrgID: orgID, Name: "  "})
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "name", e.Field)

	_, err = s.Create(ctx, CreateInput{OrgID: orgID, Name: "Depot", Kind: "floating-barge"})
	e, ok = apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidState, e.Code)
}

func TestUpdate(t *testing.T) {
	s, _, orgID := setupWarehouseTest(t)
	ctx := context.Background()

	wh, err := s.Create(ctx, CreateInput{OrgID: orgID, Name: "Depot"})
	require.NoError(t, err)

	name := "Main Depot"
	kind := domain.WarehouseProjectSite
	updated, err := s.Update(ctx, orgID, wh.WarehouseID, UpdateInput{Name: &name, Kind: &kind})
	require.NoError(t, err)
	assert.Equal(t, "Main Depot", updated.Name)
	assert.Equal(t, domain.WarehouseProjectSite, updated.Kind)

	bad := "floating-barge"
	_, err = s.Update(ctx, orgID, wh.WarehouseID, UpdateInput{Kind: &bad})
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidState, e.Code)

	_, err = s.Update(ctx, uuid.New(), wh.WarehouseID, UpdateInput{Name: &name})
	e, ok = apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotFound, e.Code)
}

// A warehouse holding stock cannot be deactivated until the stock is moved out.
func TestDeactivate_BlockedByStock(t *testing.T) {
	s, db, orgID := setupWarehouseTest(t)
	ctx := context.Background()

	wh, err := s.Create(ctx, CreateInput{OrgID: orgID, Name: "Depot"})
	require.NoError(t, err)

	stock := &domain.Stock{
		OrgID: orgID, ItemID: uuid.New(), WarehouseID: wh.WarehouseID,
		Quantity: decimal.NewFromInt(5),
	}
	require.NoError(t, db.Create(stock).Error)

	_, err = s.Deactivate(ctx, orgID, wh.WarehouseID)
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeHasActiveStock, e.Code)

	// Zero-balance rows do not block.
	require.NoError(t, db.Model(stock).Update("quantity", decimal.Zero).Error)
	deactivated, err := s.Deactivate(ctx, orgID, wh.WarehouseID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)
}

func TestList(t *testing.T) {
	s, _, orgID := setupWarehouseTest(t)
	ctx := context.Background()

	_, err := s.Create(ctx, CreateInput{OrgID: orgID, Name: "Beta Yard"})
	require.NoError(t, err)
	wh, err := s.Create(ctx, CreateInput{OrgID: orgID, Name: "Alpha Depot"})
	require.NoError(t, err)
	_, err = s.Deactivate(ctx, orgID, wh.WarehouseID)
	require.NoError(t, err)

	all, err := s.List(ctx, orgID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha Depot", all[0].Name)

	active, err := s.List(ctx, orgID, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Beta Yard", active[0].Name)
}

func TestGet_ScopedToOrg(t *testing.T) {
	s, _, orgID := setupWarehouseTest(t)
	ctx := context.Background()

	wh, err := s.Create(ctx, CreateInput{OrgID: orgID, Name: "Depot"})
	require.NoError(t, err)

	got, err := s.Get(ctx, orgID, wh.WarehouseID)
	require.NoError(t, err)
	assert.Equal(t, wh.WarehouseID, got.WarehouseID)

	_, err = s.Get(ctx, uuid.New(), wh.WarehouseID)
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotFound, e.Code)
}
