package reservation

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

type reservationFixture struct {
	orgID     uuid.UUID
	userID    uuid.UUID
	itemID    uuid.UUID
	projectID uuid.UUID
}

func setupReservationTest(t *testing.T, stocked int64) (*Service, *gorm.DB, reservationFixture) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Item{}, &domain.Warehouse{}, &domain.Stock{}, &domain.Reservation{},
	))

	f := reservationFixture{
		orgID:     uuid.New(),
		userID:    uuid.New(),
		projectID: uuid.New(),
	}
	item := &domain.Item{OrgID: f.orgID, SKU: "RBR-12", Name: "Rebar 12mm", Unit: domain.UnitPiece, Active: true}
	require.NoError(t, db.Create(item).Error)
	f.itemID = item.ItemID

	if stocked > 0 {
		wh := &domain.Warehouse{OrgID: f.orgID, Name: "Depot", Kind: domain.WarehouseFixedDepot, Active: true}
		require.NoError(t, db.Create(wh).Error)
		require.NoError(t, db.Create(&domain.Stock{
			OrgID: f.orgID, ItemID: f.itemID, WarehouseID: wh.WarehouseID,
			Quantity: decimal.NewFromInt(stocked),
		}).Error)
	}
	return &Service{DB: db}, db, f
}

func (f reservationFixture) reserveInput(qty int64) ReserveInput {
	return ReserveInput{
		OrgID: f.orgID, ItemID: f.itemID, ProjectID: f.projectID,
		Quantity: decimal.NewFromInt(qty), CreatedBy: f.userID,
	}
}

func TestReserve_CreatesActiveHold(t *testing.T) {
	s, _, f := setupReservationTest(t, 100)

	res, err := s.Reserve(context.Background(), f.reserveInput(60))
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationActive, res.Status)
	assert.True(t, res.Quantity.Equal(decimal.NewFromInt(60)))
	assert.NotEqual(t, uuid.Nil, res.ReservationID)
}

// Active holds can never sum past the item's total balance.
func TestReserve_BoundedByBalance(t *testing.T) {
	s, _, f := setupReservationTest(t, 100)
	ctx := context.Background()

	_, err := s.Reserve(ctx, f.reserveInput(60))
	require.NoError(t, err)

	_, err = s.Reserve(ctx, f.reserveInput(50))
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientAvailable, e.Code)

	// The remainder is still reservable.
	_, err = s.Reserve(ctx, f.reserveInput(40))
	require.NoError(t, err)
}

// Releasing a hold frees its quantity for new reservations.
func TestRelease_FreesQuantity(t *testing.T) {
	s, _, f := setupReservationTest(t, 50)
	ctx := context.Background()

	res, err := s.Reserve(ctx, f.reserveInput(50))
	require.NoError(t, err)

	_, err = s.Reserve(ctx, f.reserveInput(10))
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientAvailable, e.Code)

	released, err := s.Release(ctx, f.orgID, res.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationReleased, released.Status)

	_, err = s.Reserve(ctx, f.reserveInput(10))
	require.NoError(t, err)
}

// Confirm is all-or-nothing for the full reserved quantity; any remainder
// needs a fresh reservation.
func TestConfirm_MarksConsumed(t *testing.T) {
	s, db, f := setupReservationTest(t, 100)
	ctx := context.Background()

	res, err := s.Reserve(ctx, f.reserveInput(60))
	require.NoError(t, err)

	confirmed, err := s.Confirm(ctx, f.orgID, res.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationConsumed, confirmed.Status)

	// The hold no longer counts against availability.
	var stored domain.Reservation
	require.NoError(t, db.First(&stored, "reservation_id = ?", res.ReservationID).Error)
	assert.Equal(t, domain.ReservationConsumed, stored.Status)
	_, err = s.Reserve(ctx, f.reserveInput(80))
	require.NoError(t, err)
}

// Terminal states are final: a released or consumed hold rejects any further
// transition.
func TestTransition_TerminalStatesAreFinal(t *testing.T) {
	s, _, f := setupReservationTest(t, 100)
	ctx := context.Background()

	released, err := s.Reserve(ctx, f.reserveInput(10))
	require.NoError(t, err)
	_, err = s.Release(ctx, f.orgID, released.ReservationID)
	require.NoError(t, err)

	consumed, err := s.Reserve(ctx, f.reserveInput(10))
	require.NoError(t, err)
	_, err = s.Confirm(ctx, f.orgID, consumed.ReservationID)
	require.NoError(t, err)

	for _, id := range []uuid.UUID{released.ReservationID, consumed.ReservationID} {
		_, err = s.Confirm(ctx, f.orgID, id)
		e, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInvalidState, e.Code)

		_, err = s.Release(ctx, f.orgID, id)
		e, ok = apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInvalidState, e.Code)
	}
}

func TestReserve_Validation(t *testing.T) {
	s, _, f := setupReservationTest(t, 100)
	ctx := context.Background()

	_, err := s.Reserve(ctx, ReserveInput{
		OrgID: f.orgID, ItemID: f.itemID, ProjectID: f.projectID,
		Quantity: decimal.Zero, CreatedBy: f.userID,
	})
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidQuantity, e.Code)

	_, err = s.Reserve(ctx, ReserveInput{
		OrgID: f.orgID, ItemID: f.itemID,
		Quantity: decimal.NewFromInt(5), CreatedBy: f.userID,
	})
	e, ok = apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "project_id", e.Field)

	_, err = s.Reserve(ctx, ReserveInput{
		OrgID: f.orgID, ItemID: uuid.New(), ProjectID: f.projectID,
		Quantity: decimal.NewFromInt(5), CreatedBy: f.userID,
	})
	e, ok = apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotFound, e.Code)
}

func TestReserve_DeactivatedItem(t *testing.T) {
	s, db, f := setupReservationTest(t, 100)
	require.NoError(t, db.Model(&domain.Item{}).Where("item_id = ?", f.itemID).Update("active", false).Error)

	_, err := s.Reserve(context.Background(), f.reserveInput(10))
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidState, e.Code)
}

func TestListByItemAndProject(t *testing.T) {
	s, _, f := setupReservationTest(t, 100)
	ctx := context.Background()

	first, err := s.Reserve(ctx, f.reserveInput(20))
	require.NoError(t, err)
	_, err = s.Reserve(ctx, f.reserveInput(30))
	require.NoError(t, err)
	_, err = s.Release(ctx, f.orgID, first.ReservationID)
	require.NoError(t, err)

	all, err := s.ListByItem(ctx, f.orgID, f.itemID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := s.ListByItem(ctx, f.orgID, f.itemID, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, domain.ReservationActive, active[0].Status)

	byProject, err := s.ListByProject(ctx, f.orgID, f.projectID)
	require.NoError(t, err)
	assert.Len(t, byProject, 2)

	byOther, err := s.ListByProject(ctx, f.orgID, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, byOther)
}

func TestGet_ScopedToOrg(t *testing.T) {
	s, _, f := setupReservationTest(t, 100)
	ctx := context.Background()

	res, err := s.Reserve(ctx, f.reserveInput(5))
	require.NoError(t, err)

	got, err := s.Get(ctx, f.orgID, res.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, res.ReservationID, got.ReservationID)

	_, err = s.Get(ctx, uuid.New(), res.ReservationID)
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotFound, e.Code)
}
