package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	reservationDomain "github.com/lidosuite/service-reservation/internal/domain/reservation"
	"github.com/lidosuite/service-reservation/internal/domain/transaction"
	waitlistDomain "github.com/lidosuite/service-reservation/internal/domain/waitlist"
	"github.com/lidosuite/service-reservation/internal/pkg/kafka"
)

// CreateWaitlistEntryRequest registers unmet demand for a date.
type CreateWaitlistEntryRequest struct {
	CustomerID    *uuid.UUID `json:"customer_id"`
	ExternalName  string     `json:"external_name"`
	ExternalPhone string     `json:"external_phone"`
	RequestedDate time.Time  `json:"requested_date" binding:"required"`
	NumPeople     int        `json:"num_people" binding:"required,min=1"`
	Preferences   string     `json:"preferences"`
}

// WaitlistEntryDTO is the read model for one waitlist entry.
type WaitlistEntryDTO struct {
	ID                     uuid.UUID  `json:"id"`
	CustomerID             *uuid.UUID `json:"customer_id,omitempty"`
	ExternalName           string     `json:"external_name,omitempty"`
	ExternalPhone          string     `json:"external_phone,omitempty"`
	RequestedDate          time.Time  `json:"requested_date"`
	NumPeople              int        `json:"num_people"`
	Preferences            string     `json:"preferences,omitempty"`
	Status                 string     `json:"status"`
	ConvertedReservationID *uuid.UUID `json:"converted_reservation_id,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// WaitlistService manages the queue of parties waiting for furniture.
type WaitlistService struct {
	repo            waitlistDomain.Repository
	reservationRepo reservationDomain.Repository
	tx              transaction.Manager
	producer        *kafka.Producer
	logger          *zap.Logger
}

// NewWaitlistService creates a new WaitlistService.
func NewWaitlistService(
	repo waitlistDomain.Repository,
	reservationRepo reservationDomain.Repository,
	tx transaction.Manager,
	producer *kafka.Producer,
	logger *zap.Logger,
) *WaitlistService {
	return &WaitlistService{
		repo:            repo,
		reservationRepo: reservationRepo,
		tx:              tx,
		producer:        producer,
		logger:          logger,
	}
}

// CreateEntry puts a party on the waitlist for a date.
func (s *WaitlistService) CreateEntry(ctx context.Context, req CreateWaitlistEntryRequest) (*WaitlistEntryDTO, error) {
	entry, err := waitlistDomain.NewEntry(req.CustomerID, req.ExternalName, req.ExternalPhone, req.RequestedDate, req.NumPeople, req.Preferences)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}
	dto := toWaitlistDTO(entry)
	return &dto, nil
}

// GetEntry returns one waitlist entry.
func (s *WaitlistService) GetEntry(ctx context.Context, entryID uuid.UUID) (*WaitlistEntryDTO, error) {
	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	dto := toWaitlistDTO(entry)
	return &dto, nil
}

// ListByDate returns entries requesting the given date.
func (s *WaitlistService) ListByDate(ctx context.Context, date time.Time) ([]WaitlistEntryDTO, error) {
	entries, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	out := make([]WaitlistEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = toWaitlistDTO(e)
	}
	return out, nil
}

// MarkContacted records that staff reached out about freed furniture.
func (s *WaitlistService) MarkContacted(ctx context.Context, entryID uuid.UUID) (*WaitlistEntryDTO, error) {
	return s.mutate(ctx, entryID, func(e *waitlistDomain.Entry) error { return e.MarkContacted() })
}

// Decline records that the party passed on the offer.
func (s *WaitlistService) Decline(ctx context.Context, entryID uuid.UUID) (*WaitlistEntryDTO, error) {
	return s.mutate(ctx, entryID, func(e *waitlistDomain.Entry) error { return e.Decline() })
}

// MarkNoAnswer records a contact attempt nobody picked up.
func (s *WaitlistService) MarkNoAnswer(ctx context.Context, entryID uuid.UUID) (*WaitlistEntryDTO, error) {
	return s.mutate(ctx, entryID, func(e *waitlistDomain.Entry) error { return e.MarkNoAnswer() })
}

// Convert links a waitlist entry to the reservation staff created for it.
// Conversion is single-use: a second call fails with AlreadyConverted, and
// the conditional update underneath makes concurrent conversions lose
// cleanly.
func (s *WaitlistService) Convert(ctx context.Context, entryID, reservationID uuid.UUID) (*WaitlistEntryDTO, error) {
	var entry *waitlistDomain.Entry
	err := s.tx.RunSerializable(ctx, func(txCtx context.Context) error {
		e, err := s.repo.FindByID(txCtx, entryID)
		if err != nil {
			return err
		}
		// The single-use gate comes before the reservation lookup, so a
		// repeat attempt always reports AlreadyConverted regardless of
		// which reservation it names.
		if err := e.Convert(reservationID); err != nil {
			return err
		}
		if _, err := s.reservationRepo.FindByID(txCtx, reservationID); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, e); err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishConverted(ctx, entry, reservationID)
	dto := toWaitlistDTO(entry)
	return &dto, nil
}

// ExpireStale expires every waiting entry whose requested date has passed.
// Idempotent: a second run finds nothing left to expire. Returns how many
// entries changed.
func (s *WaitlistService) ExpireStale(ctx context.Context, asOf time.Time) (int, error) {
	entries, err := s.repo.ListWaitingBefore(ctx, asOf)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, e := range entries {
		if !e.ExpireIfStale(asOf) {
			continue
		}
		if err := s.repo.Update(ctx, e); err != nil {
			return expired, err
		}
		expired++
	}
	if expired > 0 {
		s.logger.Info("expired stale waitlist entries", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *WaitlistService) mutate(ctx context.Context, entryID uuid.UUID, fn func(*waitlistDomain.Entry) error) (*WaitlistEntryDTO, error) {
	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := fn(entry); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	dto := toWaitlistDTO(entry)
	return &dto, nil
}

func (s *WaitlistService) publishConverted(ctx context.Context, entry *waitlistDomain.Entry, reservationID uuid.UUID) {
	if s.producer == nil {
		return
	}
	evt := WaitlistConvertedEvent{
		EntryID:       entry.ID(),
		ReservationID: reservationID,
		OccurredAt:    time.Now().UTC(),
	}
	cloudEvent, err := kafka.NewCloudEvent("service-reservation", EventWaitlistConverted, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event", zap.Error(err))
		return
	}
	if err := s.producer.PublishEvent(ctx, TopicWaitlistEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", TopicWaitlistEvents),
			zap.Error(err),
		)
	}
}

func toWaitlistDTO(e *waitlistDomain.Entry) WaitlistEntryDTO {
	return WaitlistEntryDTO{
		ID:                     e.ID(),
		CustomerID:             e.CustomerID(),
		ExternalName:           e.ExternalName(),
		ExternalPhone:          e.ExternalPhone(),
		RequestedDate:          e.RequestedDate(),
		NumPeople:              e.NumPeople(),
		Preferences:            e.Preferences(),
		Status:                 string(e.Status()),
		ConvertedReservationID: e.ConvertedReservationID(),
		CreatedAt:              e.CreatedAt(),
		UpdatedAt:              e.UpdatedAt(),
	}
}
