package queue

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"campaignpulse/internal/domain"
)

type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafka(brokers []string, topic string) (*Kafka, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return NewKafkaWithProducer(producer, topic), nil
}

func NewKafkaWithProducer(producer sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{
		producer: producer,
		topic:    topic,
	}
}

func (k *Kafka) Publish(ctx context.Context, c domain.Comment) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(c.ID),
		Value: sarama.ByteEncoder(data),
	})

	return err
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}

type KafkaConsumer struct {
	group   sarama.ConsumerGroup
	topic   string
	logger  *zap.Logger
	handler func(ctx context.Context, c domain.Comment) error
}

func NewKafkaConsumer(brokers []string, groupID, topic string, logger *zap.Logger) (*KafkaConsumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, err
	}

	return &KafkaConsumer{
		group:  group,
		topic:  topic,
		logger: logger,
	}, nil
}

func (c *KafkaConsumer) Consume(ctx context.Context, handler func(ctx context.Context, c domain.Comment) error) error {
	c.handler = handler

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.group.Consume(ctx, []string{c.topic}, c); err != nil {
				return err
			}
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.group.Close()
}

func (c *KafkaConsumer) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (c *KafkaConsumer) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (c *KafkaConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		comment, err := decodeComment(msg.Value)
		if err != nil {
			// Undecodable payloads would be redelivered forever; skip them.
			c.logger.Warn("dropping malformed comment", zap.Int64("offset", msg.Offset), zap.Error(err))
			session.MarkMessage(msg, "")
			continue
		}

		if err := c.handler(session.Context(), comment); err != nil {
			continue
		}

		session.MarkMessage(msg, "")
	}
	return nil
}

func decodeComment(data []byte) (domain.Comment, error) {
	var c domain.Comment
	err := json.Unmarshal(data, &c)
	return c, err
}
