package events

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
	"github.com/bytedance/sonic"

	"akademiku_backend/internals/features/finance/payments/model"
)

const DefaultPaymentPaidTopic = "payment.paid"

type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer mencoba konek beberapa kali (broker biasanya naik belakangan di compose).
func NewProducer(brokers []string, topic string, attempts int, wait time.Duration) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: broker kosong")
	}
	if attempts <= 0 {
		attempts = 1
	}

	config := sarama.NewConfig()
	config.ClientID = "akademiku-payments"
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	config.Producer.Retry.Max = 5

	var (
		producer sarama.SyncProducer
		err      error
	)
	for i := 1; i <= attempts; i++ {
		producer, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			log.Printf("✅ Kafka producer siap (topic=%s)", topicOrDefault(topic))
			return NewProducerWith(producer, topic), nil
		}
		log.Printf("Waiting for Kafka... (%d/%d) Error: %v", i, attempts, err)
		if i < attempts {
			time.Sleep(wait)
		}
	}
	return nil, fmt.Errorf("kafka producer: %w", err)
}

func NewProducerWith(p sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: p, topic: topicOrDefault(topic)}
}

// PublishPaymentPaid: key = student_id supaya event satu student tetap berurutan.
func (p *Producer) PublishPaymentPaid(ctx context.Context, ev model.PaymentPaidEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := sonic.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal payment.paid: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.StudentID.String()),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(DefaultPaymentPaidTopic)},
			{Key: []byte("provider"), Value: []byte(ev.Provider)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send payment.paid: %w", err)
	}

	log.Printf("📤 Published payment.paid record=%s partition=%d offset=%d", ev.PaymentRecordID, partition, offset)
	return nil
}

func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

func topicOrDefault(t string) string {
	if t == "" {
		return DefaultPaymentPaidTopic
	}
	return t
}
