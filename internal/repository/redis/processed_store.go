package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProcessedEventsStore реализует service.ProcessedEventsStore поверх Redis.
// Каждое обработанное событие — отдельный ключ с TTL, Redis сам вычищает
// записи по истечении окна дедупликации.
type ProcessedEventsStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewProcessedEventsStore создаёт новый Redis processed events store
func NewProcessedEventsStore(client *redis.Client, logger *zap.Logger) *ProcessedEventsStore {
	return &ProcessedEventsStore{
		client: client,
		logger: logger,
	}
}

func processedEventKey(eventID string) string {
	return fmt.Sprintf("processed_event:%s", eventID)
}

// MarkProcessed помечает событие как обработанное с заданным TTL
func (s *ProcessedEventsStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) error {
	key := processedEventKey(eventID)

	err := s.client.Set(ctx, key, "1", ttl).Err()
	if err != nil {
		s.logger.Error("failed to mark event as processed in redis",
			zap.Error(err),
			zap.String("event_id", eventID),
		)
		return fmt.Errorf("failed to mark event as processed: %w", err)
	}

	s.logger.Debug("event marked as processed",
		zap.String("event_id", eventID),
		zap.Duration("ttl", ttl),
	)

	return nil
}

// IsProcessed проверяет, было ли событие уже обработано
func (s *ProcessedEventsStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	key := processedEventKey(eventID)

	count, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		s.logger.Error("failed to check processed event in redis",
			zap.Error(err),
			zap.String("event_id", eventID),
		)
		return false, fmt.Errorf("failed to check processed event: %w", err)
	}

	return count > 0, nil
}
