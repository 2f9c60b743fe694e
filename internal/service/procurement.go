package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ProcurementConfig задаёт границы procurement loop для одного ингредиента
type ProcurementConfig struct {
	// BackoffDelay — фиксированная пауза после пустого ответа поставщика
	BackoffDelay time.Duration
	// MaxAttempts — максимальное количество обращений к поставщику на один ингредиент
	MaxAttempts int
	// MaxElapsed — максимальное суммарное время закупки одного ингредиента
	MaxElapsed time.Duration
}

// procureShortfall закупает один ингредиент у поставщика, пока суммарно
// купленное не покроет недостачу.
//
// Политика персистентности: каждая успешная покупка сразу применяется к
// остаткам и журналу (ApplyDelta + RecordPurchase на каждый положительный
// ответ). Так купленное не теряется при падении посреди цикла, а шаг
// списания после закупки не может опустить остаток ниже нуля.
//
// Политика ошибок поставщика: transport/5xx ошибка фатальна для ингредиента —
// цикл прерывается и ошибка уходит вызывающему (сообщение будет NACK-нуто).
// Пустой ответ (продано 0) — retryable сигнал: пауза BackoffDelay и повтор.
//
// Цикл ограничен MaxAttempts обращениями и MaxElapsed временем; исчерпание
// бюджета возвращает ErrProcurementTimeout вместо бесконечного удержания
// сообщения.
func (s *Service) procureShortfall(ctx context.Context, shortfall Shortfall) error {
	deadline := s.now().Add(s.procurement.MaxElapsed)
	totalPurchased := 0
	attempts := 0

	s.logger.Info("procuring ingredient",
		zap.String("ingredient", shortfall.Ingredient),
		zap.Int("needed", shortfall.Needed),
	)

	for totalPurchased < shortfall.Needed {
		if attempts >= s.procurement.MaxAttempts || s.now().After(deadline) {
			s.logger.Error("procurement budget exhausted",
				zap.String("ingredient", shortfall.Ingredient),
				zap.Int("attempts", attempts),
				zap.Int("purchased", totalPurchased),
				zap.Int("needed", shortfall.Needed),
			)
			return fmt.Errorf("%w: %s purchased %d of %d",
				ErrProcurementTimeout, shortfall.Ingredient, totalPurchased, shortfall.Needed)
		}
		attempts++

		sold, err := s.supplier.BuyIngredient(ctx, shortfall.Ingredient)
		if err != nil {
			// Ошибка поставщика фатальна для всего сообщения
			s.logger.Error("supplier call failed",
				zap.Error(err),
				zap.String("ingredient", shortfall.Ingredient),
				zap.Int("attempt", attempts),
			)
			return fmt.Errorf("buy %s: %w", shortfall.Ingredient, err)
		}

		if sold > 0 {
			if err := s.creditPurchase(ctx, shortfall.Ingredient, sold); err != nil {
				return err
			}
			totalPurchased += sold

			s.logger.Info("ingredient purchased",
				zap.String("ingredient", shortfall.Ingredient),
				zap.Int("sold", sold),
				zap.Int("purchased_total", totalPurchased),
				zap.Int("needed", shortfall.Needed),
			)
			continue
		}

		// Поставщик пуст: ждём и пробуем снова
		s.logger.Info("ingredient not available at the market, waiting",
			zap.String("ingredient", shortfall.Ingredient),
			zap.Duration("backoff", s.procurement.BackoffDelay),
		)
		if err := s.sleeper.Sleep(ctx, s.procurement.BackoffDelay); err != nil {
			return err
		}
	}

	return nil
}

// creditPurchase применяет одну успешную покупку: приход остатка плюс запись
// в журнал закупок
func (s *Service) creditPurchase(ctx context.Context, ingredient string, quantity int) error {
	if err := s.inventory.ApplyDelta(ctx, ingredient, quantity); err != nil {
		return fmt.Errorf("credit %d of %s: %w", quantity, ingredient, err)
	}

	if err := s.ledger.RecordPurchase(ctx, ingredient, quantity, s.now().UTC()); err != nil {
		return fmt.Errorf("record purchase of %s: %w", ingredient, err)
	}

	return nil
}
