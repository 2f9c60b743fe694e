package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mauriciocucco/margaritas-warehouse-service/internal/repository"
)

// Repository реализует InventoryRepository и PurchaseLedger используя in-memory хранилище.
// Используется для разработки и тестирования. В production заменяется
// на MongoDB (остатки) и PostgreSQL (журнал закупок).
type Repository struct {
	mu        sync.RWMutex
	stock     map[string]int
	purchases []repository.PurchaseRecord
	nextID    int64
}

// NewRepository создаёт новый in-memory репозиторий.
// initialStock задаёт начальные остатки (может быть nil).
func NewRepository(initialStock map[string]int) *Repository {
	stock := make(map[string]int)
	for k, v := range initialStock {
		stock[k] = v
	}

	return &Repository{
		stock:     stock,
		purchases: make([]repository.PurchaseRecord, 0),
		nextID:    1,
	}
}

// GetQuantity получает остаток ингредиента из памяти.
// Возвращает ErrNotFound, если записи по ингредиенту нет.
func (r *Repository) GetQuantity(ctx context.Context, ingredient string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	quantity, exists := r.stock[ingredient]
	if !exists {
		return 0, repository.ErrNotFound
	}

	return quantity, nil
}

// ApplyDelta атомарно прибавляет delta к остатку ингредиента.
// Защищён мьютексом — проверка и изменение выполняются под одним lock.
func (r *Repository) ApplyDelta(ctx context.Context, ingredient string, delta int) error {
	if delta == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.stock[ingredient]
	if current+delta < 0 {
		return repository.ErrInsufficientStock
	}

	r.stock[ingredient] = current + delta
	return nil
}

// List возвращает все остатки, отсортированные по имени ингредиента
func (r *Repository) List(ctx context.Context) ([]repository.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]repository.InventoryItem, 0, len(r.stock))
	for name, quantity := range r.stock {
		items = append(items, repository.InventoryItem{Name: name, Quantity: quantity})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})

	return items, nil
}

// RecordPurchase добавляет одну запись о закупке
func (r *Repository) RecordPurchase(ctx context.Context, ingredient string, quantity int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.purchases = append(r.purchases, repository.PurchaseRecord{
		ID:         r.nextID,
		Ingredient: ingredient,
		Quantity:   quantity,
		Date:       at,
	})
	r.nextID++

	return nil
}

// History возвращает страницу истории закупок: новые записи первыми,
// опциональный фильтр по ингредиенту
func (r *Repository) History(ctx context.Context, filter repository.HistoryFilter) (repository.PurchaseHistoryPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]repository.PurchaseRecord, 0)
	for _, rec := range r.purchases {
		if filter.Ingredient != "" && rec.Ingredient != filter.Ingredient {
			continue
		}
		matched = append(matched, rec)
	}

	// Новые записи первыми
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})

	total := int64(len(matched))
	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))

	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return repository.PurchaseHistoryPage{
		Data:       matched[start:end],
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		TotalItems: total,
	}, nil
}

// Purchases возвращает копию всех записей журнала (для тестов)
func (r *Repository) Purchases() []repository.PurchaseRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]repository.PurchaseRecord, len(r.purchases))
	copy(out, r.purchases)
	return out
}
