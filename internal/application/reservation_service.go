package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	customerDomain "github.com/lidosuite/service-reservation/internal/domain/customer"
	reservationDomain "github.com/lidosuite/service-reservation/internal/domain/reservation"
	resourceDomain "github.com/lidosuite/service-reservation/internal/domain/resource"
	stateDomain "github.com/lidosuite/service-reservation/internal/domain/state"
	"github.com/lidosuite/service-reservation/internal/domain/transaction"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
	"github.com/lidosuite/service-reservation/internal/pkg/kafka"
)

// CreateReservationRequest holds the data needed to create a single-day
// reservation.
type CreateReservationRequest struct {
	CustomerID  uuid.UUID   `json:"customer_id" binding:"required"`
	Date        time.Time   `json:"date" binding:"required"`
	ResourceIDs []uuid.UUID `json:"resource_ids" binding:"required,min=1"`
	NumPeople   int         `json:"num_people" binding:"required,min=1"`
	TimeSlot    string      `json:"time_slot"`
	Notes       string      `json:"notes"`
	PackageID   *uuid.UUID  `json:"package_id"`
}

// CreateLinkedReservationRequest creates one reservation per date, linked
// into a group that shares ticket, customer, and pricing metadata.
type CreateLinkedReservationRequest struct {
	CustomerID  uuid.UUID   `json:"customer_id" binding:"required"`
	Dates       []time.Time `json:"dates" binding:"required,min=1"`
	ResourceIDs []uuid.UUID `json:"resource_ids" binding:"required,min=1"`
	NumPeople   int         `json:"num_people" binding:"required,min=1"`
	TimeSlot    string      `json:"time_slot"`
	Notes       string      `json:"notes"`
	PackageID   *uuid.UUID  `json:"package_id"`
}

// ReservationDTO is the read model returned to handlers.
type ReservationDTO struct {
	ID              uuid.UUID   `json:"id"`
	TicketNumber    string      `json:"ticket_number"`
	CustomerID      uuid.UUID   `json:"customer_id"`
	Date            time.Time   `json:"date"`
	StartDate       time.Time   `json:"start_date"`
	EndDate         time.Time   `json:"end_date"`
	NumPeople       int         `json:"num_people"`
	States          []string    `json:"states"`
	TimeSlot        string      `json:"time_slot"`
	RoomNumber      string      `json:"room_number"`
	Notes           string      `json:"notes,omitempty"`
	ParentID        *uuid.UUID  `json:"parent_id,omitempty"`
	PriceCents      int64       `json:"price_cents"`
	FinalPriceCents int64       `json:"final_price_cents"`
	Paid            bool        `json:"paid"`
	FurnitureLocked bool        `json:"furniture_locked"`
	ResourceIDs     []uuid.UUID `json:"resource_ids"`
	DailyOverride   []string    `json:"daily_override,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// dateLocks serializes ticket issuance per calendar day so two concurrent
// creates for the same date cannot draw the same sequence number. Entries
// are reference-counted and pruned once the last holder unlocks, so the
// map stays bounded by the number of dates in flight.
type dateLocks struct {
	mu    sync.Mutex
	locks map[string]*dateLock
}

type dateLock struct {
	mu      sync.Mutex
	holders int
}

func newDateLocks() *dateLocks {
	return &dateLocks{locks: make(map[string]*dateLock)}
}

func (d *dateLocks) lock(key string) func() {
	d.mu.Lock()
	l, ok := d.locks[key]
	if !ok {
		l = &dateLock{}
		d.locks[key] = l
	}
	l.holders++
	d.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		d.mu.Lock()
		l.holders--
		if l.holders == 0 {
			delete(d.locks, key)
		}
		d.mu.Unlock()
	}
}

// ReservationService orchestrates the reservation lifecycle: creation,
// state changes, moves, and cancellation. Every mutation that touches
// availability runs inside a serializable transaction together with a fresh
// availability check.
type ReservationService struct {
	repo         reservationDomain.Repository
	resourceRepo resourceDomain.Repository
	customerRepo customerDomain.Repository
	stateRepo    stateDomain.Repository
	availability *AvailabilityService
	pricing      reservationDomain.PricingService
	policy       *stateDomain.TransitionPolicy
	tx           transaction.Manager
	producer     *kafka.Producer
	logger       *zap.Logger
	ticketLocks  *dateLocks
}

// NewReservationService creates a new ReservationService.
func NewReservationService(
	repo reservationDomain.Repository,
	resourceRepo resourceDomain.Repository,
	customerRepo customerDomain.Repository,
	stateRepo stateDomain.Repository,
	availability *AvailabilityService,
	pricing reservationDomain.PricingService,
	tx transaction.Manager,
	producer *kafka.Producer,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		repo:         repo,
		resourceRepo: resourceRepo,
		customerRepo: customerRepo,
		stateRepo:    stateRepo,
		availability: availability,
		pricing:      pricing,
		policy:       stateDomain.DefaultTransitionPolicy(),
		tx:           tx,
		producer:     producer,
		logger:       logger,
		ticketLocks:  newDateLocks(),
	}
}

// CreateReservation books furniture for one customer on one day. The
// availability re-check, ticket issuance, reservation row, and furniture
// assignments commit in a single serializable transaction; on a
// serialization failure the whole attempt is retried once before giving up
// with ResourceUnavailable.
func (s *ReservationService) CreateReservation(ctx context.Context, req CreateReservationRequest) (*ReservationDTO, error) {
	date := resourceDomain.DateOnly(req.Date)

	cust, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	resources, err := s.loadBookableResources(ctx, req.ResourceIDs, req.NumPeople)
	if err != nil {
		return nil, err
	}
	quote, err := s.pricing.ComputePrice(ctx, req.CustomerID, resources, date, req.NumPeople, req.PackageID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute price: %w", err)
	}
	registry, err := s.stateRepo.Registry(ctx)
	if err != nil {
		return nil, err
	}

	unlock := s.ticketLocks.lock(reservationDomain.TicketDatePrefix(date))
	defer unlock()

	var res *reservationDomain.Reservation
	attempt := func(ctx context.Context) error {
		return s.tx.RunSerializable(ctx, func(txCtx context.Context) error {
			avail, err := s.availability.CheckAvailability(txCtx, req.ResourceIDs, []time.Time{date}, nil)
			if err != nil {
				return err
			}
			if !avail.AllAvailable {
				return domain.NewUnavailableError(avail.ConflictPairs())
			}

			r, err := reservationDomain.NewReservation(req.CustomerID, date, req.NumPeople, reservationDomain.TimeSlot(req.TimeSlot), registry.DefaultCode(), cust.RoomNumber, req.Notes)
			if err != nil {
				return err
			}
			ticket, err := s.issueTicket(txCtx, date)
			if err != nil {
				return err
			}
			if err := r.AssignTicket(ticket); err != nil {
				return err
			}
			r.SetPricing(quote.PriceCents, quote.PriceCents, false)

			if err := s.repo.Save(txCtx, r, req.ResourceIDs); err != nil {
				return err
			}
			res = r
			return nil
		})
	}

	if err := s.runWithRetry(ctx, attempt, req.ResourceIDs, []time.Time{date}); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, TopicReservationEvents, EventReservationCreated, ReservationCreatedEvent{
		ReservationID: res.ID(),
		TicketNumber:  res.TicketNumber(),
		CustomerID:    res.CustomerID(),
		Date:          res.Date(),
		EndDate:       res.EndDate(),
		ResourceIDs:   req.ResourceIDs,
		NumPeople:     res.NumPeople(),
		PriceCents:    res.PriceCents(),
		OccurredAt:    time.Now().UTC(),
	})

	dto := s.toDTO(ctx, res)
	return &dto, nil
}

// CreateLinkedReservation books the same furniture across several days as
// one group: a parent reservation on the first day and one child per
// subsequent day, all sharing the parent's ticket. The group commits
// atomically; one unavailable day fails every day.
func (s *ReservationService) CreateLinkedReservation(ctx context.Context, req CreateLinkedReservationRequest) (*ReservationDTO, error) {
	dates := normalizeDates(req.Dates)
	if len(dates) == 0 {
		return nil, domain.NewValidationError("at least one date is required")
	}
	first, last := dates[0], dates[len(dates)-1]

	cust, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	resources, err := s.loadBookableResources(ctx, req.ResourceIDs, req.NumPeople)
	if err != nil {
		return nil, err
	}
	quote, err := s.pricing.ComputePrice(ctx, req.CustomerID, resources, first, req.NumPeople, req.PackageID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute price: %w", err)
	}
	registry, err := s.stateRepo.Registry(ctx)
	if err != nil {
		return nil, err
	}

	unlock := s.ticketLocks.lock(reservationDomain.TicketDatePrefix(first))
	defer unlock()

	var parent *reservationDomain.Reservation
	attempt := func(ctx context.Context) error {
		return s.tx.RunSerializable(ctx, func(txCtx context.Context) error {
			avail, err := s.availability.CheckAvailability(txCtx, req.ResourceIDs, dates, nil)
			if err != nil {
				return err
			}
			if !avail.AllAvailable {
				return domain.NewUnavailableError(avail.ConflictPairs())
			}

			p, err := reservationDomain.NewReservation(req.CustomerID, first, req.NumPeople, reservationDomain.TimeSlot(req.TimeSlot), registry.DefaultCode(), cust.RoomNumber, req.Notes)
			if err != nil {
				return err
			}
			ticket, err := s.issueTicket(txCtx, first)
			if err != nil {
				return err
			}
			if err := p.AssignTicket(ticket); err != nil {
				return err
			}
			p.SetRange(first, last)
			p.SetPricing(quote.PriceCents, quote.PriceCents, false)
			if err := s.repo.Save(txCtx, p, req.ResourceIDs); err != nil {
				return err
			}

			for _, day := range dates[1:] {
				child, err := reservationDomain.NewReservation(req.CustomerID, day, req.NumPeople, reservationDomain.TimeSlot(req.TimeSlot), registry.DefaultCode(), cust.RoomNumber, req.Notes)
				if err != nil {
					return err
				}
				if err := child.AssignTicket(ticket); err != nil {
					return err
				}
				child.LinkToParent(p.ID())
				child.SetRange(first, last)
				child.SetPricing(quote.PriceCents, quote.PriceCents, false)
				if err := s.repo.Save(txCtx, child, req.ResourceIDs); err != nil {
					return err
				}
			}
			parent = p
			return nil
		})
	}

	if err := s.runWithRetry(ctx, attempt, req.ResourceIDs, dates); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, TopicReservationEvents, EventReservationCreated, ReservationCreatedEvent{
		ReservationID: parent.ID(),
		TicketNumber:  parent.TicketNumber(),
		CustomerID:    parent.CustomerID(),
		Date:          first,
		EndDate:       last,
		ResourceIDs:   req.ResourceIDs,
		NumPeople:     parent.NumPeople(),
		PriceCents:    parent.PriceCents(),
		OccurredAt:    time.Now().UTC(),
	})

	dto := s.toDTO(ctx, parent)
	return &dto, nil
}

// ChangeDate moves a reservation to another day, keeping or replacing its
// furniture. The ticket number is never reissued; it stays bound to the
// printed ticket.
func (s *ReservationService) ChangeDate(ctx context.Context, reservationID uuid.UUID, newDate time.Time, resourceIDs []uuid.UUID) (*ReservationDTO, error) {
	res, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	oldDate := res.Date()
	day := resourceDomain.DateOnly(newDate)

	targetIDs, err := s.targetResources(ctx, res, resourceIDs)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadBookableResources(ctx, targetIDs, res.NumPeople()); err != nil {
		return nil, err
	}

	excl := res.ID()
	err = s.tx.RunSerializable(ctx, func(txCtx context.Context) error {
		avail, err := s.availability.CheckAvailability(txCtx, targetIDs, []time.Time{day}, &excl)
		if err != nil {
			return err
		}
		if !avail.AllAvailable {
			return domain.NewUnavailableError(avail.ConflictPairs())
		}
		if err := res.ChangeDate(day); err != nil {
			return err
		}
		if err := s.repo.ReplaceAssignments(txCtx, res.ID(), oldDate, day, targetIDs); err != nil {
			return err
		}
		return s.repo.Update(txCtx, res)
	})
	if err != nil {
		return nil, err
	}

	s.publishMoved(ctx, res, targetIDs)
	dto := s.toDTO(ctx, res)
	return &dto, nil
}

// ReassignFurniture swaps a reservation's furniture on its current day.
// Locked reservations refuse reassignment until unlocked.
func (s *ReservationService) ReassignFurniture(ctx context.Context, reservationID uuid.UUID, resourceIDs []uuid.UUID) (*ReservationDTO, error) {
	if len(resourceIDs) == 0 {
		return nil, domain.NewValidationError("at least one resource is required")
	}
	res, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.FurnitureLocked() {
		return nil, domain.NewLockedError("reservation " + res.TicketNumber())
	}
	if _, err := s.loadBookableResources(ctx, resourceIDs, res.NumPeople()); err != nil {
		return nil, err
	}

	excl := res.ID()
	day := res.Date()
	err = s.tx.RunSerializable(ctx, func(txCtx context.Context) error {
		avail, err := s.availability.CheckAvailability(txCtx, resourceIDs, []time.Time{day}, &excl)
		if err != nil {
			return err
		}
		if !avail.AllAvailable {
			return domain.NewUnavailableError(avail.ConflictPairs())
		}
		if err := s.repo.ReplaceAssignments(txCtx, res.ID(), day, day, resourceIDs); err != nil {
			return err
		}
		return s.repo.Update(txCtx, res)
	})
	if err != nil {
		return nil, err
	}

	s.publishMoved(ctx, res, resourceIDs)
	dto := s.toDTO(ctx, res)
	return &dto, nil
}

// AddState adds a secondary state to the reservation's set. The code must
// be configured. Incident-creating states are flagged on the published
// event.
func (s *ReservationService) AddState(ctx context.Context, reservationID uuid.UUID, code string) (*ReservationDTO, error) {
	registry, st, err := s.lookupState(ctx, code)
	if err != nil {
		return nil, err
	}
	res, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.AddState(code) {
		if err := s.repo.Update(ctx, res); err != nil {
			return nil, err
		}
		if st.CreatesIncident {
			s.logger.Warn("incident state added",
				zap.String("ticket", res.TicketNumber()),
				zap.String("state", code),
			)
		}
		s.publishStateChanged(ctx, res, registry)
	}
	dto := s.toDTO(ctx, res)
	return &dto, nil
}

// RemoveState removes a state from the set. When the last state is
// removed the reservation falls back to the configured default instead of
// ending up stateless.
func (s *ReservationService) RemoveState(ctx context.Context, reservationID uuid.UUID, code string) (*ReservationDTO, error) {
	registry, err := s.stateRepo.Registry(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	removed, err := res.RemoveState(code, registry.DefaultCode())
	if err != nil {
		return nil, err
	}
	if removed {
		if err := s.repo.Update(ctx, res); err != nil {
			return nil, err
		}
		s.publishStateChanged(ctx, res, registry)
	}
	dto := s.toDTO(ctx, res)
	return &dto, nil
}

// ChangeState replaces the whole state set with one state, subject to the
// transition policy.
func (s *ReservationService) ChangeState(ctx context.Context, reservationID uuid.UUID, code string) (*ReservationDTO, error) {
	registry, _, err := s.lookupState(ctx, code)
	if err != nil {
		return nil, err
	}
	res, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := res.ChangeState(code, s.policy); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	s.publishStateChanged(ctx, res, registry)
	dto := s.toDTO(ctx, res)
	return &dto, nil
}

// CancelGroup cancels a reservation and, when it belongs to a linked
// group, its whole group in one transaction. With onlyFuture set, days
// already past keep their state. Members that cannot transition to
// cancelled anymore (already cancelled or released) are skipped. Returns
// how many members were cancelled.
func (s *ReservationService) CancelGroup(ctx context.Context, reservationID uuid.UUID, onlyFuture bool, note string) (int, error) {
	res, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return 0, err
	}
	rootID := res.ID()
	if res.ParentID() != nil {
		rootID = *res.ParentID()
	}

	today := resourceDomain.DateOnly(time.Now().UTC())
	cancelled := 0
	err = s.tx.RunSerializable(ctx, func(txCtx context.Context) error {
		group, err := s.repo.FindGroup(txCtx, rootID)
		if err != nil {
			return err
		}
		for _, member := range group {
			if onlyFuture && member.Date().Before(today) {
				continue
			}
			if err := member.Cancel(s.policy, note); err != nil {
				if domain.IsKind(err, domain.KindInvalidTransition) {
					continue
				}
				return err
			}
			if err := s.repo.Update(txCtx, member); err != nil {
				return err
			}
			cancelled++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if cancelled > 0 {
		s.publishEvent(ctx, TopicReservationEvents, EventReservationCancelled, ReservationCancelledEvent{
			ParentID:       rootID,
			TicketNumber:   res.TicketNumber(),
			CancelledCount: cancelled,
			OnlyFuture:     onlyFuture,
			OccurredAt:     time.Now().UTC(),
		})
	}
	return cancelled, nil
}

// SetDailyState overrides the state set for one day of a reservation, so a
// multi-day stay can be seated on day one and no-show on day two without
// touching the other days. The override is applied to the group member
// dated on that day, which is what availability reads: a releasing
// override frees the furniture for that day immediately. The override
// record itself is kept against the group root so GetGroup can tell
// overridden legs apart from legs still carrying the group state.
func (s *ReservationService) SetDailyState(ctx context.Context, reservationID uuid.UUID, date time.Time, codes []string) error {
	if len(codes) == 0 {
		return domain.NewValidationError("at least one state code is required")
	}
	registry, err := s.stateRepo.Registry(ctx)
	if err != nil {
		return err
	}
	for _, code := range codes {
		if _, ok := registry.Lookup(code); !ok {
			return domain.NewValidationError("unknown state code: " + code)
		}
	}
	res, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}
	day := resourceDomain.DateOnly(date)
	if day.Before(res.StartDate()) || day.After(res.EndDate()) {
		return domain.NewValidationError("date is outside the reservation's range")
	}
	rootID := res.ID()
	if res.ParentID() != nil {
		rootID = *res.ParentID()
	}

	var member *reservationDomain.Reservation
	err = s.tx.RunSerializable(ctx, func(txCtx context.Context) error {
		group, err := s.repo.FindGroup(txCtx, rootID)
		if err != nil {
			return err
		}
		for _, m := range group {
			if m.Date().Equal(day) {
				member = m
				break
			}
		}
		if member == nil {
			return domain.NewValidationError("no group member is dated on that day")
		}
		if err := member.OverrideStates(codes...); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, member); err != nil {
			return err
		}
		return s.repo.SaveDailyState(txCtx, reservationDomain.DailyState{
			ReservationID: rootID,
			Date:          day,
			States:        stateDomain.ParseSet(strings.Join(codes, ",")),
		})
	})
	if err != nil {
		return err
	}

	s.publishStateChanged(ctx, member, registry)
	return nil
}

// LockFurniture pins the reservation's furniture against reassignment.
func (s *ReservationService) LockFurniture(ctx context.Context, reservationID uuid.UUID, locked bool) (*ReservationDTO, error) {
	res, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if locked {
		res.LockFurniture()
	} else {
		res.UnlockFurniture()
	}
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	dto := s.toDTO(ctx, res)
	return &dto, nil
}

// GetReservation returns one reservation by ID.
func (s *ReservationService) GetReservation(ctx context.Context, reservationID uuid.UUID) (*ReservationDTO, error) {
	res, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	dto := s.toDTO(ctx, res)
	return &dto, nil
}

// GetByTicket returns one reservation by its printed ticket number.
func (s *ReservationService) GetByTicket(ctx context.Context, ticket string) (*ReservationDTO, error) {
	if err := reservationDomain.ValidateTicketNumber(ticket); err != nil {
		return nil, err
	}
	res, err := s.repo.FindByTicket(ctx, ticket)
	if err != nil {
		return nil, err
	}
	dto := s.toDTO(ctx, res)
	return &dto, nil
}

// GetGroup returns a parent reservation together with its child legs.
// Legs whose state set was explicitly overridden for their day carry the
// override alongside the states.
func (s *ReservationService) GetGroup(ctx context.Context, parentID uuid.UUID) ([]ReservationDTO, error) {
	group, err := s.repo.FindGroup(ctx, parentID)
	if err != nil {
		return nil, err
	}
	overrides, err := s.repo.DailyStatesOf(ctx, parentID)
	if err != nil {
		return nil, err
	}
	overrideByDay := make(map[time.Time]stateDomain.Set, len(overrides))
	for _, o := range overrides {
		overrideByDay[resourceDomain.DateOnly(o.Date)] = o.States
	}

	out := make([]ReservationDTO, len(group))
	for i, r := range group {
		out[i] = s.toDTO(ctx, r)
		if set, ok := overrideByDay[r.Date()]; ok {
			out[i].DailyOverride = set.Codes()
		}
	}
	return out, nil
}

// ListByDate returns every reservation dated on the given day.
func (s *ReservationService) ListByDate(ctx context.Context, date time.Time) ([]ReservationDTO, error) {
	list, err := s.repo.ListByDate(ctx, resourceDomain.DateOnly(date))
	if err != nil {
		return nil, err
	}
	out := make([]ReservationDTO, len(list))
	for i, r := range list {
		out[i] = s.toDTO(ctx, r)
	}
	return out, nil
}

// PagedReservations is one page of a customer's reservation history.
type PagedReservations struct {
	Items []ReservationDTO `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// ListByCustomer returns a page of a customer's reservations, newest
// first.
func (s *ReservationService) ListByCustomer(ctx context.Context, customerID uuid.UUID, page, limit int) (*PagedReservations, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	list, total, err := s.repo.FindByCustomer(ctx, customerID, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]ReservationDTO, len(list))
	for i, r := range list {
		items[i] = s.toDTO(ctx, r)
	}
	return &PagedReservations{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// --- helpers ---

// loadBookableResources fetches the furniture and enforces capacity: a
// party larger than the combined capacity is rejected, a party smaller is
// allowed with a warning, and multi-item selections must be contiguous.
func (s *ReservationService) loadBookableResources(ctx context.Context, resourceIDs []uuid.UUID, numPeople int) ([]*resourceDomain.Resource, error) {
	if len(resourceIDs) == 0 {
		return nil, domain.NewValidationError("at least one resource is required")
	}
	resources, err := s.resourceRepo.FindByIDs(ctx, resourceIDs)
	if err != nil {
		return nil, err
	}

	capacity := 0
	for _, r := range resources {
		capacity += r.Capacity
	}
	if capacity < numPeople {
		return nil, domain.NewCapacityError(capacity, numPeople)
	}
	if capacity > numPeople {
		s.logger.Warn("furniture capacity exceeds party size",
			zap.Int("capacity", capacity),
			zap.Int("num_people", numPeople),
		)
	}
	if err := s.availability.ValidateContiguous(resources); err != nil {
		return nil, err
	}
	return resources, nil
}

func (s *ReservationService) issueTicket(ctx context.Context, date time.Time) (string, error) {
	issued, err := s.repo.CountTicketsIssued(ctx, date)
	if err != nil {
		return "", err
	}
	return reservationDomain.FormatTicketNumber(date, issued+1)
}

// targetResources resolves the furniture a move should land on: the given
// IDs, or the reservation's current assignment when none are given. An
// explicit change of furniture on a locked reservation is refused.
func (s *ReservationService) targetResources(ctx context.Context, res *reservationDomain.Reservation, resourceIDs []uuid.UUID) ([]uuid.UUID, error) {
	current, err := s.repo.AssignmentsOf(ctx, res.ID())
	if err != nil {
		return nil, err
	}
	currentIDs := make([]uuid.UUID, len(current))
	for i, a := range current {
		currentIDs[i] = a.ResourceID
	}
	if len(resourceIDs) == 0 {
		return currentIDs, nil
	}
	if res.FurnitureLocked() && !sameIDSet(currentIDs, resourceIDs) {
		return nil, domain.NewLockedError("reservation " + res.TicketNumber())
	}
	return resourceIDs, nil
}

// runWithRetry runs attempt up to twice. Domain errors are final;
// infrastructure errors (serialization failures under concurrent load) get
// one more try, then surface as ResourceUnavailable with whatever conflicts
// a fresh check finds.
func (s *ReservationService) runWithRetry(ctx context.Context, attempt func(context.Context) error, resourceIDs []uuid.UUID, dates []time.Time) error {
	err := attempt(ctx)
	if err == nil {
		return nil
	}
	if _, ok := domain.AsError(err); ok {
		return err
	}

	s.logger.Warn("reservation transaction failed, retrying once", zap.Error(err))
	err = attempt(ctx)
	if err == nil {
		return nil
	}
	if _, ok := domain.AsError(err); ok {
		return err
	}

	if avail, checkErr := s.availability.CheckAvailability(ctx, resourceIDs, dates, nil); checkErr == nil && !avail.AllAvailable {
		return domain.NewUnavailableError(avail.ConflictPairs())
	}
	return domain.NewUnavailableError(nil)
}

func (s *ReservationService) lookupState(ctx context.Context, code string) (*stateDomain.Registry, stateDomain.State, error) {
	registry, err := s.stateRepo.Registry(ctx)
	if err != nil {
		return nil, stateDomain.State{}, err
	}
	st, ok := registry.Lookup(code)
	if !ok {
		return nil, stateDomain.State{}, domain.NewValidationError("unknown state code: " + code)
	}
	return registry, st, nil
}

func (s *ReservationService) publishStateChanged(ctx context.Context, res *reservationDomain.Reservation, registry *stateDomain.Registry) {
	s.publishEvent(ctx, TopicReservationEvents, EventReservationStateChanged, ReservationStateChangedEvent{
		ReservationID: res.ID(),
		TicketNumber:  res.TicketNumber(),
		States:        res.States().Codes(),
		Incident:      len(registry.IncidentCodes(res.States())) > 0,
		OccurredAt:    time.Now().UTC(),
	})
}

func (s *ReservationService) publishMoved(ctx context.Context, res *reservationDomain.Reservation, resourceIDs []uuid.UUID) {
	s.publishEvent(ctx, TopicReservationEvents, EventReservationMoved, ReservationMovedEvent{
		ReservationID: res.ID(),
		TicketNumber:  res.TicketNumber(),
		Date:          res.Date(),
		ResourceIDs:   resourceIDs,
		OccurredAt:    time.Now().UTC(),
	})
}

func (s *ReservationService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	if s.producer == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent("service-reservation", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func (s *ReservationService) toDTO(ctx context.Context, res *reservationDomain.Reservation) ReservationDTO {
	var resourceIDs []uuid.UUID
	if assignments, err := s.repo.AssignmentsOf(ctx, res.ID()); err == nil {
		seen := make(map[uuid.UUID]bool)
		for _, a := range assignments {
			if !seen[a.ResourceID] {
				seen[a.ResourceID] = true
				resourceIDs = append(resourceIDs, a.ResourceID)
			}
		}
	}
	return ReservationDTO{
		ID:              res.ID(),
		TicketNumber:    res.TicketNumber(),
		CustomerID:      res.CustomerID(),
		Date:            res.Date(),
		StartDate:       res.StartDate(),
		EndDate:         res.EndDate(),
		NumPeople:       res.NumPeople(),
		States:          res.States().Codes(),
		TimeSlot:        string(res.TimeSlot()),
		RoomNumber:      res.RoomNumber(),
		Notes:           res.Notes(),
		ParentID:        res.ParentID(),
		PriceCents:      res.PriceCents(),
		FinalPriceCents: res.FinalPriceCents(),
		Paid:            res.Paid(),
		FurnitureLocked: res.FurnitureLocked(),
		ResourceIDs:     resourceIDs,
		CreatedAt:       res.CreatedAt(),
		UpdatedAt:       res.UpdatedAt(),
	}
}

func normalizeDates(dates []time.Time) []time.Time {
	seen := make(map[time.Time]bool, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := resourceDomain.DateOnly(d)
		if !seen[day] {
			seen[day] = true
			out = append(out, day)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func sameIDSet(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[uuid.UUID]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if !set[id] {
			return false
		}
	}
	return true
}
