package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	customerDomain "github.com/lidosuite/service-reservation/internal/domain/customer"
	reservationDomain "github.com/lidosuite/service-reservation/internal/domain/reservation"
	resourceDomain "github.com/lidosuite/service-reservation/internal/domain/resource"
	"github.com/lidosuite/service-reservation/internal/domain/transaction"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// RoomChangeResult reports what a room-change cascade actually touched.
type RoomChangeResult struct {
	CustomerUpdated     bool  `json:"customer_updated"`
	ReservationsUpdated int64 `json:"reservations_updated"`
}

// RoomChangeService applies hotel room moves to the beach side: the guest
// profile and every reservation from today onward get the new room number,
// in one transaction. Past days keep the room that was correct at the time.
type RoomChangeService struct {
	customerRepo    customerDomain.Repository
	reservationRepo reservationDomain.Repository
	tx              transaction.Manager
	logger          *zap.Logger
}

// NewRoomChangeService creates a new RoomChangeService.
func NewRoomChangeService(
	customerRepo customerDomain.Repository,
	reservationRepo reservationDomain.Repository,
	tx transaction.Manager,
	logger *zap.Logger,
) *RoomChangeService {
	return &RoomChangeService{
		customerRepo:    customerRepo,
		reservationRepo: reservationRepo,
		tx:              tx,
		logger:          logger,
	}
}

// PropagateRoomChange matches the guest by name and previous room and
// cascades the new room number. A guest with no beach profile is not an
// error; the hotel moves plenty of guests who never reserved a lounger,
// and the result simply reports zero updates.
func (s *RoomChangeService) PropagateRoomChange(ctx context.Context, guestName, oldRoom, newRoom string) (RoomChangeResult, error) {
	var result RoomChangeResult
	if guestName == "" || newRoom == "" {
		return result, domain.NewValidationError("guest name and new room number are required")
	}

	cust, err := s.customerRepo.FindByNameAndRoom(ctx, guestName, oldRoom)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			s.logger.Info("room change for guest without beach profile, ignoring",
				zap.String("guest", guestName),
				zap.String("old_room", oldRoom),
			)
			return result, nil
		}
		return result, err
	}

	today := resourceDomain.DateOnly(time.Now().UTC())
	err = s.tx.RunSerializable(ctx, func(txCtx context.Context) error {
		updated, err := s.customerRepo.UpdateRoom(txCtx, cust.ID, newRoom)
		if err != nil {
			return err
		}
		result.CustomerUpdated = updated

		count, err := s.reservationRepo.UpdateRoomFromDate(txCtx, cust.ID, today, newRoom)
		if err != nil {
			return err
		}
		result.ReservationsUpdated = count
		return nil
	})
	if err != nil {
		return RoomChangeResult{}, err
	}

	s.logger.Info("room change cascaded",
		zap.String("guest", guestName),
		zap.String("old_room", oldRoom),
		zap.String("new_room", newRoom),
		zap.Int64("reservations_updated", result.ReservationsUpdated),
	)
	return result, nil
}
