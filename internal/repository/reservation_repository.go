package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	reservationDomain "github.com/lidosuite/service-reservation/internal/domain/reservation"
	resourceDomain "github.com/lidosuite/service-reservation/internal/domain/resource"
	stateDomain "github.com/lidosuite/service-reservation/internal/domain/state"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// ReservationModel is the GORM model for the reservations table.
// CurrentStates mirrors the state-link rows as a comma-joined string for the
// legacy reporting exports; the link table is authoritative.
type ReservationModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Date            time.Time  `gorm:"column:reservation_date;type:date;not null;index"`
	StartDate       time.Time  `gorm:"type:date;not null"`
	EndDate         time.Time  `gorm:"type:date;not null"`
	NumPeople       int        `gorm:"not null"`
	CurrentStates   string     `gorm:"not null;size:400"`
	TicketNumber    string     `gorm:"size:8;index"`
	ParentID        *uuid.UUID `gorm:"type:uuid;index"`
	TimeSlot        string     `gorm:"not null;size:20;default:'full_day'"`
	RoomNumber      string     `gorm:"size:20"`
	Notes           string     `gorm:"size:1000"`
	PriceCents      int64      `gorm:"not null;default:0"`
	FinalPriceCents int64      `gorm:"not null;default:0"`
	Paid            bool       `gorm:"not null;default:false"`
	FurnitureLocked bool       `gorm:"not null;default:false"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ReservationModel) TableName() string {
	return "reservations"
}

// StateLinkModel is the GORM model for the reservation-state join table.
type StateLinkModel struct {
	ReservationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	StateCode     string    `gorm:"primaryKey;size:40"`
	Position      int       `gorm:"not null;default:0"`
}

// TableName returns the table name for the GORM model.
func (StateLinkModel) TableName() string {
	return "reservation_state_links"
}

// AssignmentModel is the GORM model for the furniture_assignments table.
// The unique index covers (resource, date, reservation); exclusivity across
// holding reservations is the availability engine's job.
type AssignmentModel struct {
	ResourceID     uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex:idx_assignment_triplet"`
	AssignmentDate time.Time `gorm:"type:date;primaryKey;uniqueIndex:idx_assignment_triplet"`
	ReservationID  uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex:idx_assignment_triplet;index"`
}

// TableName returns the table name for the GORM model.
func (AssignmentModel) TableName() string {
	return "furniture_assignments"
}

// DailyStateModel is the GORM model for per-day state overrides.
type DailyStateModel struct {
	ReservationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Date          time.Time `gorm:"type:date;primaryKey"`
	States        string    `gorm:"not null;size:400"`
}

// TableName returns the table name for the GORM model.
func (DailyStateModel) TableName() string {
	return "reservation_daily_states"
}

// GormReservationRepository is the GORM-based implementation of
// reservation.Repository.
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository.
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByID retrieves one reservation.
func (r *GormReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservationDomain.Reservation, error) {
	var model ReservationModel
	if err := dbFrom(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Reservation", id.String())
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	return toDomainReservation(&model), nil
}

// FindByTicket retrieves a reservation by its printed ticket number.
func (r *GormReservationRepository) FindByTicket(ctx context.Context, ticket string) (*reservationDomain.Reservation, error) {
	var model ReservationModel
	if err := dbFrom(ctx, r.db).Where("ticket_number = ?", ticket).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Reservation", ticket)
		}
		return nil, fmt.Errorf("failed to find reservation by ticket: %w", err)
	}
	return toDomainReservation(&model), nil
}

// FindGroup retrieves a multi-day group ordered by date, parent included.
func (r *GormReservationRepository) FindGroup(ctx context.Context, parentID uuid.UUID) ([]*reservationDomain.Reservation, error) {
	var models []ReservationModel
	if err := dbFrom(ctx, r.db).
		Where("id = ? OR parent_id = ?", parentID, parentID).
		Order("reservation_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find reservation group: %w", err)
	}
	if len(models) == 0 {
		return nil, domain.NewNotFoundError("Reservation", parentID.String())
	}
	group := make([]*reservationDomain.Reservation, len(models))
	for i, m := range models {
		group[i] = toDomainReservation(&m)
	}
	return group, nil
}

// FindByCustomer retrieves a customer's reservations, newest first.
func (r *GormReservationRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*reservationDomain.Reservation, int64, error) {
	db := dbFrom(ctx, r.db)

	var total int64
	if err := db.Model(&ReservationModel{}).Where("customer_id = ?", customerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customer reservations: %w", err)
	}

	var models []ReservationModel
	offset := (page - 1) * limit
	if err := db.
		Where("customer_id = ?", customerID).
		Order("reservation_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find customer reservations: %w", err)
	}

	reservations := make([]*reservationDomain.Reservation, len(models))
	for i, m := range models {
		reservations[i] = toDomainReservation(&m)
	}
	return reservations, total, nil
}

// ListByDate retrieves every reservation for one calendar day.
func (r *GormReservationRepository) ListByDate(ctx context.Context, date time.Time) ([]*reservationDomain.Reservation, error) {
	var models []ReservationModel
	if err := dbFrom(ctx, r.db).
		Where("reservation_date = ?", resourceDomain.DateOnly(date)).
		Order("ticket_number ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations by date: %w", err)
	}
	reservations := make([]*reservationDomain.Reservation, len(models))
	for i, m := range models {
		reservations[i] = toDomainReservation(&m)
	}
	return reservations, nil
}

// Save inserts a reservation together with its furniture assignments and
// state links. Callers run this inside the serializable transaction that
// also re-checked availability; a reservation row must never exist without
// its assignments.
func (r *GormReservationRepository) Save(ctx context.Context, res *reservationDomain.Reservation, resourceIDs []uuid.UUID) error {
	db := dbFrom(ctx, r.db)

	model := toReservationModel(res)
	if err := db.Create(model).Error; err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	for _, rid := range resourceIDs {
		assignment := AssignmentModel{
			ResourceID:     rid,
			AssignmentDate: resourceDomain.DateOnly(res.Date()),
			ReservationID:  res.ID(),
		}
		if err := db.Create(&assignment).Error; err != nil {
			return fmt.Errorf("failed to save assignment: %w", err)
		}
	}
	if err := r.writeStateLinks(db, res.ID(), res.States()); err != nil {
		return err
	}
	return nil
}

// Update persists changes to an existing reservation, rewriting its state
// links to match the current set.
func (r *GormReservationRepository) Update(ctx context.Context, res *reservationDomain.Reservation) error {
	db := dbFrom(ctx, r.db)
	model := toReservationModel(res)

	result := db.Model(&ReservationModel{}).Where("id = ?", model.ID).Updates(map[string]interface{}{
		"reservation_date":  model.Date,
		"start_date":        model.StartDate,
		"end_date":          model.EndDate,
		"num_people":        model.NumPeople,
		"current_states":    model.CurrentStates,
		"ticket_number":     model.TicketNumber,
		"parent_id":         model.ParentID,
		"time_slot":         model.TimeSlot,
		"room_number":       model.RoomNumber,
		"notes":             model.Notes,
		"price_cents":       model.PriceCents,
		"final_price_cents": model.FinalPriceCents,
		"paid":              model.Paid,
		"furniture_locked":  model.FurnitureLocked,
		"updated_at":        model.UpdatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Reservation", model.ID.String())
	}

	if err := db.Where("reservation_id = ?", model.ID).Delete(&StateLinkModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear state links: %w", err)
	}
	return r.writeStateLinks(db, res.ID(), res.States())
}

func (r *GormReservationRepository) writeStateLinks(db *gorm.DB, reservationID uuid.UUID, states stateDomain.Set) error {
	for pos, code := range states.Codes() {
		link := StateLinkModel{ReservationID: reservationID, StateCode: code, Position: pos}
		if err := db.Create(&link).Error; err != nil {
			return fmt.Errorf("failed to save state link: %w", err)
		}
	}
	return nil
}

// CountTicketsIssued returns how many distinct tickets were already issued
// for the given day. Counting by the date prefix keeps the sequence stable
// even though linked stays carry the ticket of their first day on every row.
func (r *GormReservationRepository) CountTicketsIssued(ctx context.Context, date time.Time) (int, error) {
	var count int64
	prefix := reservationDomain.TicketDatePrefix(resourceDomain.DateOnly(date))
	if err := dbFrom(ctx, r.db).Model(&ReservationModel{}).
		Distinct("ticket_number").
		Where("ticket_number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count issued tickets: %w", err)
	}
	return int(count), nil
}

type holderRow struct {
	ResourceID     uuid.UUID
	AssignmentDate time.Time
	ReservationID  uuid.UUID
	CustomerID     uuid.UUID
	CustomerName   string
	CurrentStates  string
}

// HoldersFor returns every assignment touching the given resources and
// dates, joined with the reservation's states and customer name.
func (r *GormReservationRepository) HoldersFor(ctx context.Context, resourceIDs []uuid.UUID, dates []time.Time) ([]reservationDomain.Holder, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	days := make([]time.Time, len(dates))
	for i, d := range dates {
		days[i] = resourceDomain.DateOnly(d)
	}

	query := dbFrom(ctx, r.db).
		Table("furniture_assignments AS a").
		Select("a.resource_id, a.assignment_date, a.reservation_id, r.customer_id, c.full_name AS customer_name, r.current_states").
		Joins("JOIN reservations r ON r.id = a.reservation_id").
		Joins("LEFT JOIN customers c ON c.id = r.customer_id").
		Where("a.assignment_date IN ?", days)
	if len(resourceIDs) > 0 {
		query = query.Where("a.resource_id IN ?", resourceIDs)
	}

	var rows []holderRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query assignment holders: %w", err)
	}

	holders := make([]reservationDomain.Holder, len(rows))
	for i, row := range rows {
		holders[i] = reservationDomain.Holder{
			ResourceID:    row.ResourceID,
			Date:          resourceDomain.DateOnly(row.AssignmentDate),
			ReservationID: row.ReservationID,
			CustomerID:    row.CustomerID,
			CustomerName:  row.CustomerName,
			States:        stateDomain.ParseSet(row.CurrentStates),
		}
	}
	return holders, nil
}

// AssignmentsOf returns the assignments of one reservation.
func (r *GormReservationRepository) AssignmentsOf(ctx context.Context, reservationID uuid.UUID) ([]reservationDomain.Assignment, error) {
	var models []AssignmentModel
	if err := dbFrom(ctx, r.db).
		Where("reservation_id = ?", reservationID).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	assignments := make([]reservationDomain.Assignment, len(models))
	for i, m := range models {
		assignments[i] = reservationDomain.Assignment{
			ReservationID: m.ReservationID,
			ResourceID:    m.ResourceID,
			Date:          resourceDomain.DateOnly(m.AssignmentDate),
		}
	}
	return assignments, nil
}

// ReplaceAssignments swaps a reservation's assignments on one date.
func (r *GormReservationRepository) ReplaceAssignments(ctx context.Context, reservationID uuid.UUID, oldDate, newDate time.Time, resourceIDs []uuid.UUID) error {
	db := dbFrom(ctx, r.db)
	if err := db.
		Where("reservation_id = ? AND assignment_date = ?", reservationID, resourceDomain.DateOnly(oldDate)).
		Delete(&AssignmentModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete old assignments: %w", err)
	}
	for _, rid := range resourceIDs {
		assignment := AssignmentModel{
			ResourceID:     rid,
			AssignmentDate: resourceDomain.DateOnly(newDate),
			ReservationID:  reservationID,
		}
		if err := db.Create(&assignment).Error; err != nil {
			return fmt.Errorf("failed to insert new assignment: %w", err)
		}
	}
	return nil
}

// UpdateRoomFromDate rewrites room metadata on every reservation of the
// customer dated on or after from. Past reservations keep the room the
// guest actually occupied.
func (r *GormReservationRepository) UpdateRoomFromDate(ctx context.Context, customerID uuid.UUID, from time.Time, newRoom string) (int64, error) {
	result := dbFrom(ctx, r.db).Model(&ReservationModel{}).
		Where("customer_id = ? AND reservation_date >= ?", customerID, resourceDomain.DateOnly(from)).
		Updates(map[string]interface{}{"room_number": newRoom, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cascade room change: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// SaveDailyState upserts a per-day state override, keyed by group root.
func (r *GormReservationRepository) SaveDailyState(ctx context.Context, ds reservationDomain.DailyState) error {
	model := DailyStateModel{
		ReservationID: ds.ReservationID,
		Date:          resourceDomain.DateOnly(ds.Date),
		States:        ds.States.String(),
	}
	if err := dbFrom(ctx, r.db).Save(&model).Error; err != nil {
		return fmt.Errorf("failed to save daily state: %w", err)
	}
	return nil
}

// DailyStatesOf returns the per-day overrides of one group by its root.
func (r *GormReservationRepository) DailyStatesOf(ctx context.Context, reservationID uuid.UUID) ([]reservationDomain.DailyState, error) {
	var models []DailyStateModel
	if err := dbFrom(ctx, r.db).
		Where("reservation_id = ?", reservationID).
		Order("date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list daily states: %w", err)
	}
	states := make([]reservationDomain.DailyState, len(models))
	for i, m := range models {
		states[i] = reservationDomain.DailyState{
			ReservationID: m.ReservationID,
			Date:          resourceDomain.DateOnly(m.Date),
			States:        stateDomain.ParseSet(m.States),
		}
	}
	return states, nil
}

// --- Conversion helpers ---

func toReservationModel(res *reservationDomain.Reservation) *ReservationModel {
	return &ReservationModel{
		ID:              res.ID(),
		CustomerID:      res.CustomerID(),
		Date:            res.Date(),
		StartDate:       res.StartDate(),
		EndDate:         res.EndDate(),
		NumPeople:       res.NumPeople(),
		CurrentStates:   res.States().String(),
		TicketNumber:    res.TicketNumber(),
		ParentID:        res.ParentID(),
		TimeSlot:        string(res.TimeSlot()),
		RoomNumber:      res.RoomNumber(),
		Notes:           res.Notes(),
		PriceCents:      res.PriceCents(),
		FinalPriceCents: res.FinalPriceCents(),
		Paid:            res.Paid(),
		FurnitureLocked: res.FurnitureLocked(),
		CreatedAt:       res.CreatedAt(),
		UpdatedAt:       res.UpdatedAt(),
	}
}

func toDomainReservation(m *ReservationModel) *reservationDomain.Reservation {
	return reservationDomain.Reconstruct(
		m.ID, m.CustomerID,
		resourceDomain.DateOnly(m.Date),
		resourceDomain.DateOnly(m.StartDate),
		resourceDomain.DateOnly(m.EndDate),
		m.NumPeople,
		stateDomain.ParseSet(m.CurrentStates),
		m.TicketNumber,
		m.ParentID,
		reservationDomain.TimeSlot(m.TimeSlot),
		m.RoomNumber,
		m.Notes,
		m.PriceCents,
		m.FinalPriceCents,
		m.Paid,
		m.FurnitureLocked,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
