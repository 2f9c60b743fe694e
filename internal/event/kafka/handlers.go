package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mauriciocucco/margaritas-warehouse-service/internal/service"
	"github.com/mauriciocucco/margaritas-warehouse-service/platform/observability"
)

// NewRequestIngredientsHandler возвращает handler для событий запроса
// ингредиентов. Ошибки сервиса возвращаются как есть: consumer ретраит
// и при исчерпании попыток отправляет сообщение в DLQ.
func NewRequestIngredientsHandler(logger *zap.Logger, svc *service.Service) HandlerFunc {
	return func(ctx context.Context, m kafka.Message) error {
		req, err := parseIngredientsRequest(m)
		if err != nil {
			return err
		}

		return svc.HandleRequestIngredients(ctx, req)
	}
}

// NewReduceIngredientsHandler возвращает handler для событий списания
// ингредиентов отправленного заказа. Ошибка списания логируется как
// success=false, но offset всё равно коммитится: передоставка такого
// сообщения списала бы ингредиенты повторно.
func NewReduceIngredientsHandler(logger *zap.Logger, svc *service.Service) HandlerFunc {
	return func(ctx context.Context, m kafka.Message) error {
		ingredients, err := parseIngredientsMap(m.Value, "ingredients")
		if err != nil {
			return err
		}

		if reduceErr := svc.ReduceIngredients(ctx, ingredients); reduceErr != nil {
			observability.L(ctx, logger).Error("failed to reduce ingredients, committing anyway",
				zap.Error(reduceErr),
				zap.String("topic", m.Topic),
				zap.Int64("offset", m.Offset),
				zap.Bool("success", false),
			)
			return nil
		}

		return nil
	}
}

// parseIngredientsRequest преобразует сообщение в IngredientsRequest
func parseIngredientsRequest(m kafka.Message) (service.IngredientsRequest, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		return service.IngredientsRequest{}, &ParseError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}

	req := service.IngredientsRequest{}

	if v, ok := payload["event_id"].(string); ok {
		req.EventID = v
	} else {
		// Producer без event_id — дедуплицируем по координатам сообщения,
		// они детерминированы при передоставке
		req.EventID = fmt.Sprintf("%s-%d-%d", m.Topic, m.Partition, m.Offset)
	}

	rawIngredients, ok := payload["ingredients"].(map[string]interface{})
	if !ok {
		return service.IngredientsRequest{}, &ParseError{Field: "ingredients", Message: "ingredients object is required"}
	}

	req.Ingredients = make(map[string]int, len(rawIngredients))
	for name, rawQty := range rawIngredients {
		qty, ok := rawQty.(float64)
		if !ok {
			return service.IngredientsRequest{}, &ParseError{
				Field:   "ingredients",
				Message: fmt.Sprintf("quantity for %s must be a number", name),
			}
		}
		req.Ingredients[name] = int(qty)
	}

	if rawOrders, ok := payload["orders"].([]interface{}); ok {
		req.Orders = make([]service.OrderRef, 0, len(rawOrders))
		for _, rawOrder := range rawOrders {
			order, ok := rawOrder.(map[string]interface{})
			if !ok {
				return service.IngredientsRequest{}, &ParseError{Field: "orders", Message: "orders must be an array of objects"}
			}
			id, ok := order["id"].(float64)
			if !ok {
				return service.IngredientsRequest{}, &ParseError{Field: "orders", Message: "order id must be a number"}
			}
			req.Orders = append(req.Orders, service.OrderRef{ID: int(id)})
		}
	}

	return req, nil
}

// parseIngredientsMap извлекает map ингредиент -> количество из сообщения
func parseIngredientsMap(value []byte, field string) (map[string]int, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(value, &payload); err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}

	rawIngredients, ok := payload[field].(map[string]interface{})
	if !ok {
		return nil, &ParseError{Field: field, Message: field + " object is required"}
	}

	ingredients := make(map[string]int, len(rawIngredients))
	for name, rawQty := range rawIngredients {
		qty, ok := rawQty.(float64)
		if !ok {
			return nil, &ParseError{
				Field:   field,
				Message: fmt.Sprintf("quantity for %s must be a number", name),
			}
		}
		ingredients[name] = int(qty)
	}

	return ingredients, nil
}
