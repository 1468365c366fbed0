package events

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/lidosuite/service-reservation/internal/application"
	"github.com/lidosuite/service-reservation/internal/pkg/kafka"
)

// TopicRoomEvents is the property-management system's room feed.
const TopicRoomEvents = "hotel.room-events"

// RoomChangedType is the event type announcing a guest moved rooms.
const RoomChangedType = "hotel.room_changed"

// RoomChangedEvent is the payload the property-management system publishes
// when a guest moves rooms.
type RoomChangedEvent struct {
	GuestName  string    `json:"guest_name"`
	OldRoom    string    `json:"old_room"`
	NewRoom    string    `json:"new_room"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RoomEventConsumer listens to the hotel's room feed and cascades room
// changes into guest profiles and future reservations.
type RoomEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.RoomChangeService
	logger   *zap.Logger
}

// NewRoomEventConsumer creates a new RoomEventConsumer.
func NewRoomEventConsumer(
	brokers []string,
	groupID string,
	service *application.RoomChangeService,
	logger *zap.Logger,
) *RoomEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicRoomEvents, logger)
	return &RoomEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming room events. This blocks until the context is
// cancelled.
func (c *RoomEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *RoomEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *RoomEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from room topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case RoomChangedType:
		return c.handleRoomChanged(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled room event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *RoomEventConsumer) handleRoomChanged(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt RoomChangedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse RoomChangedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	result, err := c.service.PropagateRoomChange(ctx, evt.GuestName, evt.OldRoom, evt.NewRoom)
	if err != nil {
		c.logger.Error("failed to cascade room change",
			zap.String("guest", evt.GuestName),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("room change processed",
		zap.String("guest", evt.GuestName),
		zap.String("new_room", evt.NewRoom),
		zap.Bool("customer_updated", result.CustomerUpdated),
		zap.Int64("reservations_updated", result.ReservationsUpdated),
	)
	return nil
}
