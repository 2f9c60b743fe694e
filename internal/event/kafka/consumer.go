package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/mauriciocucco/margaritas-warehouse-service/platform/observability"
)

// HandlerFunc обрабатывает одно сообщение из Kafka.
// Ошибка *ParseError означает битое сообщение: consumer отправляет его в DLQ
// без retry. Любая другая ошибка ретраится с экспоненциальным backoff.
type HandlerFunc func(ctx context.Context, m kafka.Message) error

// Consumer читает сообщения из нескольких топиков одной consumer group
// и диспатчит их по таблице topic -> handler.
// Семантика at-least-once: FetchMessage + CommitMessages после обработки.
type Consumer struct {
	logger       *zap.Logger
	reader       *kafka.Reader
	handlers     map[string]HandlerFunc
	dlqPublisher *DLQPublisher
	maxAttempts  int
	backoffBase  time.Duration
}

// NewConsumer создаёт consumer для списка топиков
func NewConsumer(
	logger *zap.Logger,
	brokers []string,
	groupID string,
	topics []string,
	dlqPublisher *DLQPublisher,
	maxAttempts int,
	backoffBase time.Duration,
) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
	})

	return &Consumer{
		logger:       logger,
		reader:       reader,
		handlers:     make(map[string]HandlerFunc),
		dlqPublisher: dlqPublisher,
		maxAttempts:  maxAttempts,
		backoffBase:  backoffBase,
	}
}

// Register привязывает handler к топику. Вызывается на старте приложения,
// до Start; после запуска таблица не меняется.
func (c *Consumer) Register(topic string, handler HandlerFunc) {
	c.handlers[topic] = handler
}

// Start запускает consumer и начинает обработку сообщений
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("starting kafka consumer",
		zap.Strings("topics", c.reader.Config().GroupTopics),
		zap.String("group_id", c.reader.Config().GroupID),
		zap.Int("max_retry_attempts", c.maxAttempts),
		zap.Duration("retry_backoff_base", c.backoffBase),
	)

	for {
		// FetchMessage вместо ReadMessage для ручного контроля commit
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer context cancelled, stopping")
				return nil
			}
			c.logger.Error("failed to fetch message from kafka",
				zap.Error(err),
			)
			continue
		}

		shouldCommit := c.processMessage(ctx, m)

		// Коммитим offset только после успешной обработки либо после
		// успешной публикации в DLQ
		if shouldCommit {
			if err := c.reader.CommitMessages(ctx, m); err != nil {
				c.logger.Error("failed to commit message offset",
					zap.Error(err),
					zap.String("topic", m.Topic),
					zap.Int("partition", m.Partition),
					zap.Int64("offset", m.Offset),
				)
				continue
			}

			c.logger.Debug("message offset committed",
				zap.String("topic", m.Topic),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
		}
	}
}

// processMessage обрабатывает одно сообщение.
// Возвращает true, если нужно закоммитить offset.
func (c *Consumer) processMessage(ctx context.Context, m kafka.Message) bool {
	// Восстанавливаем trace context из заголовков сообщения
	msgCtx := otel.GetTextMapPropagator().Extract(ctx, observability.NewKafkaHeaderCarrier(&m.Headers))

	handler, ok := c.handlers[m.Topic]
	if !ok {
		// Топик без handler'а — ошибка конфигурации consumer group,
		// сообщение уходит в DLQ чтобы не блокировать партицию
		c.logger.Error("no handler registered for topic",
			zap.String("topic", m.Topic),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
		return c.sendToDLQ(m, fmt.Errorf("no handler registered for topic %s", m.Topic), "")
	}

	// Логи сообщения коррелируем с восстановленным трейсом
	log := observability.L(msgCtx, c.logger)

	log.Info("received message",
		zap.String("topic", m.Topic),
		zap.Int("partition", m.Partition),
		zap.Int64("offset", m.Offset),
	)

	success, lastErr := c.handleWithRetry(msgCtx, m, handler)
	if !success {
		log.Error("failed to handle message, sending to DLQ",
			zap.Error(lastErr),
			zap.String("topic", m.Topic),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
		return c.sendToDLQ(m, lastErr, "")
	}

	log.Info("message processed successfully",
		zap.String("topic", m.Topic),
		zap.Int("partition", m.Partition),
		zap.Int64("offset", m.Offset),
	)

	return true
}

// handleWithRetry вызывает handler с retry логикой.
// ParseError не ретраится — битое сообщение не станет валидным.
func (c *Consumer) handleWithRetry(ctx context.Context, m kafka.Message, handler HandlerFunc) (bool, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		// Backoff экспоненциальный: base, 2*base, 4*base...
		if attempt > 1 {
			backoff := c.backoffBase * time.Duration(1<<uint(attempt-2))
			c.logger.Info("retrying message",
				zap.String("topic", m.Topic),
				zap.Int64("offset", m.Offset),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.maxAttempts),
				zap.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := handler(ctx, m)
		if err == nil {
			if attempt > 1 {
				c.logger.Info("message processed successfully after retry",
					zap.String("topic", m.Topic),
					zap.Int64("offset", m.Offset),
					zap.Int("attempt", attempt),
				)
			}
			return true, nil
		}

		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			c.logger.Error("failed to parse message, skipping retries",
				zap.Error(err),
				zap.String("topic", m.Topic),
				zap.Int64("offset", m.Offset),
			)
			return false, err
		}

		lastErr = err
		c.logger.Warn("failed to handle message",
			zap.Error(err),
			zap.String("topic", m.Topic),
			zap.Int64("offset", m.Offset),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxAttempts),
		)
	}

	c.logger.Error("exhausted all retry attempts",
		zap.Error(lastErr),
		zap.String("topic", m.Topic),
		zap.Int64("offset", m.Offset),
		zap.Int("max_attempts", c.maxAttempts),
	)

	return false, fmt.Errorf("exhausted all retry attempts: %w", lastErr)
}

// sendToDLQ публикует сообщение в DLQ.
// Возвращает true, если offset можно коммитить (публикация удалась);
// при неудаче offset не коммитится и сообщение будет передоставлено.
func (c *Consumer) sendToDLQ(m kafka.Message, cause error, eventID string) bool {
	// Используем Background: отмена основного контекста не должна
	// мешать зафиксировать poison pill в DLQ
	if dlqErr := c.dlqPublisher.Publish(context.Background(), m, cause, eventID); dlqErr != nil {
		c.logger.Error("failed to publish to DLQ, not committing",
			zap.Error(dlqErr),
		)
		return false
	}
	return true
}

// Close закрывает Kafka reader
func (c *Consumer) Close() error {
	c.logger.Info("closing kafka consumer")
	return c.reader.Close()
}
