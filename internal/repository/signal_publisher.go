package repository

import (
	"context"
	"fmt"

	"SigPull/internal/domain/models"
	drepo "SigPull/internal/domain/repository"
	pkgkafka "SigPull/pkg/kafka"
)

// KafkaSignalPublisher fans parsed signals out on the signals topic,
// keyed by channel so per-channel ordering survives partitioning.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) drepo.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, s *models.ParsedSignal) error {
	if s == nil {
		return fmt.Errorf("nil signal")
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(s.ChannelName), s); err != nil {
		return fmt.Errorf("publish signal %s/%s: %w", s.ChannelName, s.Instrument, err)
	}
	return nil
}

func (p *KafkaSignalPublisher) Close() error {
	return p.producer.Close()
}
