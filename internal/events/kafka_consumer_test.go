package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hanok-stay/service-booking/internal/contracts"
	"github.com/hanok-stay/service-booking/pkg/domain"
	"github.com/hanok-stay/service-booking/pkg/kafka"
)

type appliedCall struct {
	eventType string
	evt       contracts.PaymentEvent
}

type fakeApplier struct {
	calls []appliedCall
	err   error
}

func (f *fakeApplier) ApplyPaymentEvent(_ context.Context, eventType string, evt contracts.PaymentEvent) error {
	f.calls = append(f.calls, appliedCall{eventType: eventType, evt: evt})
	return f.err
}

func newTestConsumer(applier PaymentApplier) *PaymentEventConsumer {
	return &PaymentEventConsumer{service: applier, logger: zap.NewNop()}
}

func paymentMessage(t *testing.T, eventType string, evt contracts.PaymentEvent) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("service-payment", eventType, evt)
	require.NoError(t, err)
	raw, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Value: raw}
}

func TestHandleMessage_AppliesPaymentEvents(t *testing.T) {
	applier := &fakeApplier{}
	c := newTestConsumer(applier)
	bookingID := uuid.New()

	for _, typ := range []string{contracts.PaymentPartiallyCaptured, contracts.PaymentCaptured, contracts.PaymentRefunded} {
		msg := paymentMessage(t, typ, contracts.PaymentEvent{PaymentID: uuid.New(), BookingID: bookingID, Amount: 50000})
		require.NoError(t, c.handleMessage(context.Background(), msg))
	}

	require.Len(t, applier.calls, 3)
	assert.Equal(t, contracts.PaymentPartiallyCaptured, applier.calls[0].eventType)
	assert.Equal(t, bookingID, applier.calls[2].evt.BookingID)
	assert.Equal(t, int64(50000), applier.calls[1].evt.Amount)
}

func TestHandleMessage_SkipsWhatCannotSucceed(t *testing.T) {
	tests := []struct {
		name    string
		msg     func(t *testing.T) kafkago.Message
		err     error
		applied int
	}{
		{
			name:    "malformed envelope",
			msg:     func(*testing.T) kafkago.Message { return kafkago.Message{Value: []byte("{not json")} },
			applied: 0,
		},
		{
			name: "unhandled type",
			msg: func(t *testing.T) kafkago.Message {
				return paymentMessage(t, "payment.escrow_held", contracts.PaymentEvent{BookingID: uuid.New()})
			},
			applied: 0,
		},
		{
			name: "illegal transition",
			msg: func(t *testing.T) kafkago.Message {
				return paymentMessage(t, contracts.PaymentCaptured, contracts.PaymentEvent{BookingID: uuid.New()})
			},
			err:     domain.NewInvalidStateError("completed", "paid"),
			applied: 1,
		},
		{
			name: "unknown booking",
			msg: func(t *testing.T) kafkago.Message {
				return paymentMessage(t, contracts.PaymentRefunded, contracts.PaymentEvent{BookingID: uuid.New()})
			},
			err:     domain.NewNotFoundError("booking", "x"),
			applied: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applier := &fakeApplier{err: tt.err}
			c := newTestConsumer(applier)
			assert.NoError(t, c.handleMessage(context.Background(), tt.msg(t)))
			assert.Len(t, applier.calls, tt.applied)
		})
	}
}

func TestHandleMessage_RetriesTransientFailures(t *testing.T) {
	msg := paymentMessage(t, contracts.PaymentCaptured, contracts.PaymentEvent{BookingID: uuid.New()})

	c := newTestConsumer(&fakeApplier{err: errors.New("connection reset")})
	assert.Error(t, c.handleMessage(context.Background(), msg))

	c = newTestConsumer(&fakeApplier{err: domain.NewBusyError("room is busy")})
	assert.Error(t, c.handleMessage(context.Background(), msg))
}
