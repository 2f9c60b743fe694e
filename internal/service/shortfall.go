package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mauriciocucco/margaritas-warehouse-service/internal/repository"
)

// missingIngredients сравнивает запрошенные количества с текущими остатками
// и возвращает недостачи: needed = requested - onHand, только если needed > 0.
// Отсутствующая запись в хранилище трактуется как остаток 0.
// Ингредиенты обходятся в отсортированном порядке, чтобы поведение было
// детерминированным при любом порядке ключей входящей map.
// Функция без side effects: остатки только читаются.
func (s *Service) missingIngredients(ctx context.Context, ingredients map[string]int) ([]Shortfall, error) {
	names := sortedIngredients(ingredients)

	shortfalls := make([]Shortfall, 0)
	for _, name := range names {
		requested := ingredients[name]
		if requested <= 0 {
			// Нулевые и отрицательные количества — no-op
			continue
		}

		onHand, err := s.inventory.GetQuantity(ctx, name)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				onHand = 0
			} else {
				return nil, fmt.Errorf("read inventory for %s: %w", name, err)
			}
		}

		if needed := requested - onHand; needed > 0 {
			shortfalls = append(shortfalls, Shortfall{
				Ingredient: name,
				Needed:     needed,
			})
		}
	}

	return shortfalls, nil
}

// sortedIngredients возвращает ключи map в отсортированном порядке
func sortedIngredients(ingredients map[string]int) []string {
	names := make([]string, 0, len(ingredients))
	for name := range ingredients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
