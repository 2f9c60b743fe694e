package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mauriciocucco/margaritas-warehouse-service/internal/repository"
)

// Service содержит бизнес-логику обеспечения заказов ингредиентами:
// сверку запроса с остатками, цикл закупки у поставщика, списание остатков,
// журнал закупок и уведомления manager-сервиса о смене статусов.
type Service struct {
	logger         *zap.Logger
	inventory      repository.InventoryRepository
	ledger         repository.PurchaseLedger
	supplier       SupplierClient
	notifier       StatusNotifier
	store          ProcessedEventsStore
	sleeper        Sleeper
	now            func() time.Time
	procurement    ProcurementConfig
	idempotencyTTL time.Duration
}

// NewService создаёт новый экземпляр Service
func NewService(
	logger *zap.Logger,
	inventory repository.InventoryRepository,
	ledger repository.PurchaseLedger,
	supplier SupplierClient,
	notifier StatusNotifier,
	store ProcessedEventsStore,
	procurement ProcurementConfig,
	idempotencyTTL time.Duration,
) *Service {
	return &Service{
		logger:         logger,
		inventory:      inventory,
		ledger:         ledger,
		supplier:       supplier,
		notifier:       notifier,
		store:          store,
		sleeper:        &DefaultSleeper{},
		now:            time.Now,
		procurement:    procurement,
		idempotencyTTL: idempotencyTTL,
	}
}

// NewServiceWithClock создаёт Service с кастомными sleeper и clock (для тестов)
func NewServiceWithClock(
	logger *zap.Logger,
	inventory repository.InventoryRepository,
	ledger repository.PurchaseLedger,
	supplier SupplierClient,
	notifier StatusNotifier,
	store ProcessedEventsStore,
	procurement ProcurementConfig,
	idempotencyTTL time.Duration,
	sleeper Sleeper,
	now func() time.Time,
) *Service {
	svc := NewService(logger, inventory, ledger, supplier, notifier, store, procurement, idempotencyTTL)
	svc.sleeper = sleeper
	svc.now = now
	return svc
}

// HandleRequestIngredients обрабатывает запрос на обеспечение пачки заказов
// ингредиентами: считает недостачи, при необходимости закупает недостающее
// у поставщика, списывает запрошенные количества и уведомляет manager-сервис.
//
// Любая возвращённая ошибка означает, что сообщение нельзя подтверждать
// (NACK на стороне consumer). Успех — подтвердить целиком; частичного
// подтверждения по ингредиентам нет.
func (s *Service) HandleRequestIngredients(ctx context.Context, req IngredientsRequest) error {
	if req.EventID == "" {
		s.logger.Error("event_id is required for idempotency")
		return ErrEventIDRequired
	}

	s.logger.Info("handling ingredients request",
		zap.String("event_id", req.EventID),
		zap.Int("ingredients", len(req.Ingredients)),
		zap.Int("orders", len(req.Orders)),
	)

	// Повторная доставка уже обработанного сообщения не должна мутировать
	// остатки и журнал второй раз
	processed, err := s.store.IsProcessed(ctx, req.EventID)
	if err != nil {
		s.logger.Error("failed to check if event is processed",
			zap.Error(err),
			zap.String("event_id", req.EventID),
		)
		return err
	}
	if processed {
		s.logger.Info("event already processed, skipping",
			zap.String("event_id", req.EventID),
		)
		return nil
	}

	// Каждое решение строится на свежем чтении остатков: между сообщениями
	// по одному ингредиенту состояние в памяти не живёт
	shortfalls, err := s.missingIngredients(ctx, req.Ingredients)
	if err != nil {
		return err
	}

	if len(shortfalls) > 0 {
		s.logger.Info("missing ingredients detected",
			zap.Int("shortfalls", len(shortfalls)),
		)

		// Пока идёт закупка, заказы пачки приостановлены
		s.notifyStatus(ctx, req.Orders, StatusPaused)

		for _, shortfall := range shortfalls {
			if err := s.procureShortfall(ctx, shortfall); err != nil {
				return err
			}
		}
	}

	// Закупка закрыла все недостачи — остатков гарантированно хватает
	if err := s.consumeIngredients(ctx, req.Ingredients); err != nil {
		return err
	}

	s.notifyStatus(ctx, req.Orders, StatusInProgress)

	// Помечаем только после успешного завершения: упавшая обработка должна
	// быть повторена при redelivery
	if err := s.store.MarkProcessed(ctx, req.EventID, s.idempotencyTTL); err != nil {
		s.logger.Error("failed to mark event as processed",
			zap.Error(err),
			zap.String("event_id", req.EventID),
		)
		return err
	}

	s.logger.Info("ingredients request fulfilled",
		zap.String("event_id", req.EventID),
		zap.Int("orders", len(req.Orders)),
	)

	return nil
}

// ReduceIngredients списывает ингредиенты отправленного заказа без шага
// закупки. Ошибка означает, что списание не удалось (consumer логирует
// success=false, сообщение не передоставляется).
func (s *Service) ReduceIngredients(ctx context.Context, ingredients map[string]int) error {
	s.logger.Info("reducing ingredients", zap.Int("ingredients", len(ingredients)))

	if err := s.consumeIngredients(ctx, ingredients); err != nil {
		s.logger.Error("failed to reduce ingredients", zap.Error(err))
		return err
	}

	s.logger.Info("ingredients reduced successfully")
	return nil
}

// consumeIngredients применяет отрицательную дельту на каждое запрошенное
// количество > 0. Атомарность дельты в хранилище гарантирует, что остаток
// не уйдёт в минус даже при конкурентных сообщениях по одному ингредиенту.
func (s *Service) consumeIngredients(ctx context.Context, ingredients map[string]int) error {
	for _, name := range sortedIngredients(ingredients) {
		quantity := ingredients[name]
		if quantity <= 0 {
			continue
		}

		if err := s.inventory.ApplyDelta(ctx, name, -quantity); err != nil {
			return fmt.Errorf("consume %d of %s: %w", quantity, name, err)
		}
	}

	return nil
}

// notifyStatus отправляет смену статуса для всех заказов пачки.
// Уведомление advisory: ошибка логируется и не влияет на исход обработки.
func (s *Service) notifyStatus(ctx context.Context, orders []OrderRef, status OrderStatus) {
	if len(orders) == 0 {
		return
	}

	if err := s.notifier.NotifyOrderStatus(ctx, orders, status); err != nil {
		s.logger.Warn("failed to notify order status, continuing",
			zap.Error(err),
			zap.Int("orders", len(orders)),
			zap.Int("status", int(status)),
		)
	}
}

// Inventory возвращает все остатки, отсортированные по имени ингредиента
func (s *Service) Inventory(ctx context.Context) ([]repository.InventoryItem, error) {
	return s.inventory.List(ctx)
}

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
)

// PurchaseHistory возвращает страницу истории закупок.
// Page и Limit нормализуются: page >= 1, 1 <= limit <= 50.
func (s *Service) PurchaseHistory(ctx context.Context, filter repository.HistoryFilter) (repository.PurchaseHistoryPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultHistoryLimit
	}
	if filter.Limit > maxHistoryLimit {
		filter.Limit = maxHistoryLimit
	}

	return s.ledger.History(ctx, filter)
}
