package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/hanok-stay/service-booking/internal/contracts"
	"github.com/hanok-stay/service-booking/pkg/domain"
	"github.com/hanok-stay/service-booking/pkg/kafka"
)

// PaymentApplier applies a payment outcome to a booking.
// *application.BookingService satisfies it.
type PaymentApplier interface {
	ApplyPaymentEvent(ctx context.Context, eventType string, evt contracts.PaymentEvent) error
}

// PaymentEventConsumer listens to payment events and moves bookings along.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  PaymentApplier
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service PaymentApplier,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, contracts.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case contracts.PaymentCaptured, contracts.PaymentPartiallyCaptured, contracts.PaymentRefunded:
		return c.handlePayment(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePayment(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt contracts.PaymentEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentEvent data",
			zap.String("type", cloudEvent.Type),
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing payment event",
		zap.String("type", cloudEvent.Type),
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
	)

	if err := c.service.ApplyPaymentEvent(ctx, cloudEvent.Type, evt); err != nil {
		// Domain rejections will not change on redelivery.
		if domain.CodeOf(err) != "" && domain.CodeOf(err) != domain.CodeBusy {
			c.logger.Warn("payment event rejected by booking",
				zap.String("booking_id", evt.BookingID.String()),
				zap.String("type", cloudEvent.Type),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to apply payment event",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}
