package postgres

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mauriciocucco/margaritas-warehouse-service/internal/repository"
)

// Repository реализует PurchaseLedger используя PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый PostgreSQL репозиторий
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
	}
}

// RecordPurchase добавляет одну запись о закупке.
// Журнал append-only: только INSERT, записи никогда не меняются.
func (r *Repository) RecordPurchase(ctx context.Context, ingredient string, quantity int, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO purchase_history (ingredient, quantity, date)
		 VALUES ($1, $2, $3)`,
		ingredient, quantity, at)
	return err
}

// History возвращает страницу истории закупок: новые записи первыми,
// опциональный фильтр по ингредиенту. Пагинация считается от полного
// количества подходящих записей.
func (r *Repository) History(ctx context.Context, filter repository.HistoryFilter) (repository.PurchaseHistoryPage, error) {
	page := repository.PurchaseHistoryPage{
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	offset := (filter.Page - 1) * filter.Limit

	var total int64
	var err error
	if filter.Ingredient != "" {
		err = r.pool.QueryRow(ctx,
			`SELECT count(*) FROM purchase_history WHERE ingredient = $1`,
			filter.Ingredient).Scan(&total)
	} else {
		err = r.pool.QueryRow(ctx,
			`SELECT count(*) FROM purchase_history`).Scan(&total)
	}
	if err != nil {
		return repository.PurchaseHistoryPage{}, err
	}

	var rows pgx.Rows
	if filter.Ingredient != "" {
		rows, err = r.pool.Query(ctx,
			`SELECT id, ingredient, quantity, date
			 FROM purchase_history
			 WHERE ingredient = $1
			 ORDER BY date DESC
			 LIMIT $2 OFFSET $3`,
			filter.Ingredient, filter.Limit, offset)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT id, ingredient, quantity, date
			 FROM purchase_history
			 ORDER BY date DESC
			 LIMIT $1 OFFSET $2`,
			filter.Limit, offset)
	}
	if err != nil {
		return repository.PurchaseHistoryPage{}, err
	}
	defer rows.Close()

	page.Data = make([]repository.PurchaseRecord, 0)
	for rows.Next() {
		var rec repository.PurchaseRecord
		if err := rows.Scan(&rec.ID, &rec.Ingredient, &rec.Quantity, &rec.Date); err != nil {
			return repository.PurchaseHistoryPage{}, err
		}
		page.Data = append(page.Data, rec)
	}

	if err := rows.Err(); err != nil {
		return repository.PurchaseHistoryPage{}, err
	}

	page.TotalItems = total
	page.TotalPages = int(math.Ceil(float64(total) / float64(filter.Limit)))

	return page, nil
}
