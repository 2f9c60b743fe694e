package kafka

import (
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauriciocucco/margaritas-warehouse-service/internal/service"
)

func TestParseIngredientsRequest(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		m := kafka.Message{
			Topic: "warehouse.ingredients.requested",
			Value: []byte(`{
				"event_id": "evt-1",
				"ingredients": {"tomato": 4, "onion": 2},
				"orders": [{"id": 10}, {"id": 11}]
			}`),
		}

		req, err := parseIngredientsRequest(m)
		require.NoError(t, err)

		assert.Equal(t, "evt-1", req.EventID)
		assert.Equal(t, map[string]int{"tomato": 4, "onion": 2}, req.Ingredients)
		assert.Equal(t, []service.OrderRef{{ID: 10}, {ID: 11}}, req.Orders)
	})

	t.Run("missing event_id falls back to message coordinates", func(t *testing.T) {
		m := kafka.Message{
			Topic:     "warehouse.ingredients.requested",
			Partition: 2,
			Offset:    42,
			Value:     []byte(`{"ingredients": {"salt": 1}}`),
		}

		req, err := parseIngredientsRequest(m)
		require.NoError(t, err)
		assert.Equal(t, "warehouse.ingredients.requested-2-42", req.EventID)
	})

	t.Run("invalid JSON is a parse error", func(t *testing.T) {
		m := kafka.Message{Value: []byte(`{not json`)}

		_, err := parseIngredientsRequest(m)
		require.Error(t, err)

		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr))
	})

	t.Run("missing ingredients is a parse error", func(t *testing.T) {
		m := kafka.Message{Value: []byte(`{"event_id": "evt-1"}`)}

		_, err := parseIngredientsRequest(m)
		require.Error(t, err)

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, "ingredients", parseErr.Field)
	})

	t.Run("non-numeric quantity is a parse error", func(t *testing.T) {
		m := kafka.Message{Value: []byte(`{"event_id": "evt-1", "ingredients": {"salt": "many"}}`)}

		_, err := parseIngredientsRequest(m)
		require.Error(t, err)

		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr))
	})

	t.Run("orders with non-numeric id is a parse error", func(t *testing.T) {
		m := kafka.Message{Value: []byte(`{"event_id": "evt-1", "ingredients": {"salt": 1}, "orders": [{"id": "ten"}]}`)}

		_, err := parseIngredientsRequest(m)
		require.Error(t, err)

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, "orders", parseErr.Field)
	})
}

func TestParseIngredientsMap(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		ingredients, err := parseIngredientsMap([]byte(`{"ingredients": {"tomato": 3}}`), "ingredients")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"tomato": 3}, ingredients)
	})

	t.Run("missing field is a parse error", func(t *testing.T) {
		_, err := parseIngredientsMap([]byte(`{}`), "ingredients")
		require.Error(t, err)

		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr))
	})
}
