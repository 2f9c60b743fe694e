package service

import (
	"context"
)

// OrderStatus представляет статус заказа в терминах manager-сервиса.
// Полный жизненный цикл заказа живёт в manager-сервисе; склад знает только
// те статусы, которые сам выставляет.
type OrderStatus int

const (
	// StatusInProgress — заказ в работе, все ингредиенты обеспечены
	StatusInProgress OrderStatus = 2
	// StatusPaused — заказ приостановлен до закупки недостающих ингредиентов
	StatusPaused OrderStatus = 3
)

// OrderRef представляет ссылку на заказ из входящего сообщения
type OrderRef struct {
	ID int
}

// IngredientsRequest представляет входящий запрос на обеспечение ингредиентов
// для пачки заказов (из Kafka)
type IngredientsRequest struct {
	// EventID — ключ идемпотентности сообщения. Если producer его не задал,
	// consumer выводит детерминированный ключ из идентичности сообщения.
	EventID     string
	Ingredients map[string]int
	Orders      []OrderRef
}

// Shortfall представляет недостачу одного ингредиента: сколько ещё нужно
// закупить сверх текущего остатка
type Shortfall struct {
	Ingredient string
	Needed     int
}

// SupplierClient определяет интерфейс для разовой закупки у внешнего поставщика.
// Один вызов — одно обращение к поставщику; сколько продать, решает поставщик.
// 0 означает "сейчас нет в наличии", это не ошибка. Retry политика целиком
// на стороне procurement loop, клиент сам не повторяет вызовы.
type SupplierClient interface {
	// BuyIngredient возвращает фактически проданное количество (>= 0)
	BuyIngredient(ctx context.Context, ingredient string) (int, error)
}

// StatusNotifier определяет интерфейс для уведомления manager-сервиса о смене
// статуса заказов. Уведомление advisory: его ошибки не влияют на исход
// обработки сообщения.
type StatusNotifier interface {
	// NotifyOrderStatus отправляет одно событие со сменой статуса для всех заказов пачки
	NotifyOrderStatus(ctx context.Context, orders []OrderRef, status OrderStatus) error
}
