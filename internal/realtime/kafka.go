package realtime

import (
	"CommentWall/internal/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"strconv"
	"time"
)

// KafkaPublisher writes insert events to a topic shared by every server instance.
type KafkaPublisher struct {
	w   *kafka.Writer
	log *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
		log: log.Named("kafka"),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, c models.Comment) error {
	msg, err := encodeEvent(c)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Failed to write insert event", zap.Int64("id", c.ID), zap.Error(err))
		return fmt.Errorf("failed to write to kafka: %w", err)
	}
	p.log.Debug("Insert event written", zap.Int64("id", c.ID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// KafkaConsumer reads insert events from the topic into the local hub. Each consumer is
// the only member of its own group, so it is assigned every partition and every
// instance sees every event, starting from the newest offset.
type KafkaConsumer struct {
	r   *kafka.Reader
	log *zap.Logger
}

func NewKafkaConsumer(brokers []string, topic string, log *zap.Logger) (*KafkaConsumer, error) {
	cfg := readerConfig(brokers, topic)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid kafka reader config: %w", err)
	}
	log = log.Named("kafka")
	log.Debug("Joining consumer group", zap.String("group", cfg.GroupID))
	return &KafkaConsumer{r: kafka.NewReader(cfg), log: log}, nil
}

func readerConfig(brokers []string, topic string) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     "comments-hub-" + uuid.NewString(),
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
		MaxWait:     500 * time.Millisecond,
	}
}

func (c *KafkaConsumer) Run(ctx context.Context, pub Publisher) {
	c.log.Info("Consuming insert events", zap.String("topic", c.r.Config().Topic))
	for {
		msg, err := c.r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			c.log.Error("Failed to read insert event", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		comment, err := decodeEvent(msg)
		if err != nil {
			c.log.Error("Failed to decode insert event", zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}
		if err := pub.Publish(ctx, comment); err != nil {
			c.log.Error("Failed to publish insert", zap.Int64("id", comment.ID), zap.Error(err))
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.r.Close()
}

func encodeEvent(c models.Comment) (kafka.Message, error) {
	value, err := json.Marshal(c)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal comment: %w", err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(c.ID, 10)),
		Value: value,
	}, nil
}

func decodeEvent(msg kafka.Message) (models.Comment, error) {
	var c models.Comment
	if err := json.Unmarshal(msg.Value, &c); err != nil {
		return c, fmt.Errorf("invalid insert event: %w", err)
	}
	if c.ID == 0 {
		return c, fmt.Errorf("insert event without id")
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}
