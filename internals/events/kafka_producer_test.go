package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akademiku_backend/internals/features/finance/payments/model"
)

func paidEvent() model.PaymentPaidEvent {
	return model.PaymentPaidEvent{
		PaymentRecordID: uuid.New(),
		StudentID:       uuid.New(),
		Level:           2,
		Term:            1,
		TotalAmount:     decimal.NewFromInt(320),
		Provider:        model.ProviderStripe,
		OrderReference:  "pi_1",
		PaidAt:          time.Now().UTC(),
	}
}

func TestPublishPaymentPaid(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	ev := paidEvent()

	sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "payments.test" {
			return errors.New("topic salah: " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != ev.StudentID.String() {
			return errors.New("key harus student_id")
		}
		raw, _ := msg.Value.Encode()
		var got model.PaymentPaidEvent
		if err := sonic.Unmarshal(raw, &got); err != nil {
			return err
		}
		if got.PaymentRecordID != ev.PaymentRecordID || !got.TotalAmount.Equal(ev.TotalAmount) {
			return errors.New("payload tidak cocok")
		}
		return nil
	})

	p := NewProducerWith(sp, "payments.test")
	require.NoError(t, p.PublishPaymentPaid(context.Background(), ev))
	require.NoError(t, p.Close())
}

func TestPublishPaymentPaidFailure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducerWith(sp, "")
	assert.Equal(t, DefaultPaymentPaidTopic, p.topic)

	err := p.PublishPaymentPaid(context.Background(), paidEvent())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestPublishPaymentPaidCanceledContext(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewProducerWith(sp, "").PublishPaymentPaid(ctx, paidEvent())
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, sp.Close())
}

func TestNewProducerNoBrokers(t *testing.T) {
	_, err := NewProducer(nil, "", 1, 0)
	assert.Error(t, err)
}
