package reservation

import (
	"context"

	"sitestock-backend/internal/domain"
	"sitestock-backend/internal/ledger"
	"sitestock-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service manages soft holds against future consumption. Reservations never
// touch the movement log or the balance table; they only reduce the item's
// available quantity. Confirmation is bookkeeping: the caller records the
// fulfilling egress/transfer separately, so stock is never double-counted.
type Service struct {
	DB *gorm.DB
}

// ReserveInput claims quantity of an item for a project.
type ReserveInput struct {
	OrgID     uuid.UUID
	ItemID    uuid.UUID
	ProjectID uuid.UUID
	Quantity  decimal.Decimal
	CreatedBy uuid.UUID
}

// Reserve creates an active hold. The availability check runs inside the same
// transaction with the item's balance rows locked, so the sum of active
// reservations can never exceed the item's total balance.
func (s *Service) Reserve(ctx context.Context, in ReserveInput) (*domain.Reservation, error) {
	if !in.Quantity.IsPositive() {
		return nil, apperror.InvalidQuantity("reservation", "quantity")
	}
	if in.ProjectID == uuid.Nil {
		return nil, apperror.MissingField("reservation", "project_id", "Project is required")
	}
	var res *domain.Reservation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item domain.Item
		if err := tx.Where("org_id = ? AND item_id = ?", in.OrgID, in.ItemID).First(&item).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("item", in.ItemID.String())
			}
			return err
		}
		if !item.Active {
			return apperror.InvalidState("item", in.ItemID.String(), "Item is deactivated")
		}
		// Lock the item's balance rows so a concurrent egress cannot slip between
		// the availability check and the insert.
		var stocks []domain.Stock
		if err := ledger.ForUpdate(tx).
			Where("org_id = ? AND item_id = ?", in.OrgID, in.ItemID).
			Order("warehouse_id").
			Find(&stocks).Error; err != nil {
			return err
		}
		total := decimal.Zero
		for _, st := range stocks {
			total = total.Add(st.Quantity)
		}
		reserved, err := ledger.ActiveReserved(tx, in.OrgID, in.ItemID)
		if err != nil {
			return err
		}
		if in.Quantity.GreaterThan(total.Sub(reserved)) {
			return apperror.InsufficientAvailable(in.ItemID.String())
		}
		res = &domain.Reservation{
			OrgID:     in.OrgID,
			ItemID:    in.ItemID,
			ProjectID: in.ProjectID,
			Quantity:  in.Quantity,
			Status:    domain.ReservationActive,
			CreatedBy: in.CreatedBy,
		}
		return tx.Create(res).Error
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Release cancels an active hold. Terminal states are final.
func (s *Service) Release(ctx context.Context, orgID, reservationID uuid.UUID) (*domain.Reservation, error) {
	return s.transition(ctx, orgID, reservationID, domain.ReservationReleased)
}

// Confirm marks an active hold consumed. The caller is expected to have
// already recorded the fulfilling movement; confirming is all-or-nothing for
// the full reserved quantity — partial fulfillment needs a fresh reservation
// for the remainder.
func (s *Service) Confirm(ctx context.Context, orgID, reservationID uuid.UUID) (*domain.Reservation, error) {
	return s.transition(ctx, orgID, reservationID, domain.ReservationConsumed)
}

func (s *Service) transition(ctx context.Context, orgID, reservationID uuid.UUID, next string) (*domain.Reservation, error) {
	var res domain.Reservation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ledger.ForUpdate(tx).
			Where("org_id = ? AND reservation_id = ?", orgID, reservationID).
			First(&res).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("reservation", reservationID.String())
			}
			return err
		}
		if res.Terminal() {
			return apperror.InvalidState("reservation", reservationID.String(),
				"Reservation is already "+res.Status)
		}
		res.Status = next
		return tx.Save(&res).Error
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Get returns one org reservation.
func (s *Service) Get(ctx context.Context, orgID, reservationID uuid.UUID) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := s.DB.WithContext(ctx).Where("org_id = ? AND reservation_id = ?", orgID, reservationID).First(&res).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("reservation", reservationID.String())
		}
		return nil, err
	}
	return &res, nil
}

// ListByItem lists reservations of an item, newest first; activeOnly narrows
// to live holds.
func (s *Service) ListByItem(ctx context.Context, orgID, itemID uuid.UUID, activeOnly bool) ([]domain.Reservation, error) {
	q := s.DB.WithContext(ctx).Where("org_id = ? AND item_id = ?", orgID, itemID)
	if activeOnly {
		q = q.Where("status = ?", domain.ReservationActive)
	}
	var out []domain.Reservation
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByProject lists a project's reservations, newest first.
func (s *Service) ListByProject(ctx context.Context, orgID, projectID uuid.UUID) ([]domain.Reservation, error) {
	var out []domain.Reservation
	if err := s.DB.WithContext(ctx).
		Where("org_id = ? AND project_id = ?", orgID, projectID).
		Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
