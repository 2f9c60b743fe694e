package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/mauriciocucco/margaritas-warehouse-service/internal/service"
	"github.com/mauriciocucco/margaritas-warehouse-service/platform/observability"
)

// KafkaStatusNotifier реализует service.StatusNotifier используя Kafka.
// Публикует события смены статуса заказов для manager-сервиса.
type KafkaStatusNotifier struct {
	logger *zap.Logger
	writer *kafka.Writer
	topic  string
}

// NewKafkaStatusNotifier создаёт новый Kafka publisher для статусов заказов
func NewKafkaStatusNotifier(logger *zap.Logger, brokers []string, topic string) *KafkaStatusNotifier {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaStatusNotifier{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// Close закрывает Kafka writer
func (p *KafkaStatusNotifier) Close() error {
	return p.writer.Close()
}

// NotifyOrderStatus публикует событие смены статуса для пачки заказов
func (p *KafkaStatusNotifier) NotifyOrderStatus(ctx context.Context, orders []service.OrderRef, status service.OrderStatus) error {
	orderIDs := make([]int, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}

	payload := map[string]interface{}{
		"event_id":      uuid.New().String(),
		"event_type":    "order.status.changed",
		"event_version": 1,
		"occurred_at":   time.Now().UTC().Format(time.RFC3339),
		"orders":        orderIDs,
		"status":        int(status),
	}

	valueBytes, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to marshal order status event",
			zap.Error(err),
			zap.Int("status", int(status)),
		)
		return err
	}

	message := kafka.Message{
		Key:   []byte(fmt.Sprintf("status-%d", status)),
		Value: valueBytes,
	}

	// Переносим trace context в заголовки, чтобы manager-сервис продолжил trace
	otel.GetTextMapPropagator().Inject(ctx, observability.NewKafkaHeaderCarrier(&message.Headers))

	err = p.writer.WriteMessages(ctx, message)
	if err != nil {
		p.logger.Error("failed to publish order status event",
			zap.Error(err),
			zap.String("topic", p.topic),
			zap.Ints("orders", orderIDs),
			zap.Int("status", int(status)),
		)
		return err
	}

	p.logger.Info("order status event published",
		zap.String("topic", p.topic),
		zap.Ints("orders", orderIDs),
		zap.Int("status", int(status)),
	)

	return nil
}
