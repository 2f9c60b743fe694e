package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound возвращается, когда ингредиент не найден в хранилище
var ErrNotFound = errors.New("ingredient not found")

// ErrInsufficientStock возвращается, когда отрицательная дельта опустила бы остаток ниже нуля
var ErrInsufficientStock = errors.New("insufficient stock")

// InventoryItem представляет текущий остаток одного ингредиента на складе
type InventoryItem struct {
	Name      string
	Quantity  int
	UpdatedAt time.Time
}

// PurchaseRecord представляет одну запись в журнале закупок (append-only)
type PurchaseRecord struct {
	ID         int64
	Ingredient string
	Quantity   int
	Date       time.Time
}

// HistoryFilter задаёт фильтр и пагинацию для выборки истории закупок
type HistoryFilter struct {
	// Ingredient — если не пустой, выбираются только записи по этому ингредиенту
	Ingredient string
	// Page — номер страницы, начиная с 1
	Page int
	// Limit — размер страницы
	Limit int
}

// PurchaseHistoryPage представляет одну страницу истории закупок
type PurchaseHistoryPage struct {
	Data       []PurchaseRecord
	Page       int
	Limit      int
	TotalPages int
	TotalItems int64
}

// InventoryRepository определяет интерфейс для работы с хранилищем остатков.
// Service слой зависит от этого интерфейса, а не от конкретной реализации.
//
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=InventoryRepository --dir=. --output=./mocks --outpkg=mocks
type InventoryRepository interface {
	// GetQuantity возвращает текущий остаток ингредиента.
	// Возвращает ErrNotFound, если записи по ингредиенту нет.
	GetQuantity(ctx context.Context, ingredient string) (int, error)

	// ApplyDelta атомарно прибавляет delta (положительную или отрицательную)
	// к остатку ингредиента. Дельта применяется одной операцией на уровне
	// хранилища, не через read-modify-write в памяти приложения.
	// delta == 0 — no-op. Отрицательная delta, опускающая остаток ниже нуля,
	// возвращает ErrInsufficientStock и не меняет остаток.
	ApplyDelta(ctx context.Context, ingredient string, delta int) error

	// List возвращает все остатки, отсортированные по имени ингредиента
	List(ctx context.Context) ([]InventoryItem, error)
}

// PurchaseLedger определяет интерфейс журнала закупок.
// Журнал append-only: записи никогда не обновляются и не удаляются.
//
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=PurchaseLedger --dir=. --output=./mocks --outpkg=mocks
type PurchaseLedger interface {
	// RecordPurchase добавляет одну запись о закупке (quantity > 0)
	RecordPurchase(ctx context.Context, ingredient string, quantity int, at time.Time) error

	// History возвращает страницу истории закупок: новые записи первыми,
	// опциональный фильтр по ингредиенту
	History(ctx context.Context, filter HistoryFilter) (PurchaseHistoryPage, error)
}
