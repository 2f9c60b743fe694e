//go:build integration

package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/mauriciocucco/margaritas-warehouse-service/internal/repository"
)

func TestRepository_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Поднимаем MongoDB контейнер через testcontainers
	mongoC, err := mongodb.RunContainer(ctx,
		tc.WithImage("mongo:6"),
	)
	require.NoError(t, err)
	defer func() { require.NoError(t, mongoC.Terminate(ctx)) }()

	mongoURI, err := mongoC.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(ctx) }()

	// Ждём готовности MongoDB (ping с retry)
	var pingErr error
	for i := 0; i < 20; i++ {
		pingErr = client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
		if pingErr == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	require.NoError(t, pingErr, "MongoDB did not become ready in time")

	repo := NewRepository(client, "warehouse_test")

	t.Run("GetQuantity_NotFound", func(t *testing.T) {
		_, err := repo.GetQuantity(ctx, "missing")
		require.Error(t, err)
		require.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("ApplyDelta_PositiveCreatesDocument", func(t *testing.T) {
		require.NoError(t, repo.ApplyDelta(ctx, "tomato", 10))

		quantity, err := repo.GetQuantity(ctx, "tomato")
		require.NoError(t, err)
		require.Equal(t, 10, quantity)
	})

	t.Run("ApplyDelta_NegativeWithinStock", func(t *testing.T) {
		require.NoError(t, repo.ApplyDelta(ctx, "tomato", -4))

		quantity, err := repo.GetQuantity(ctx, "tomato")
		require.NoError(t, err)
		require.Equal(t, 6, quantity)
	})

	t.Run("ApplyDelta_NeverGoesNegative", func(t *testing.T) {
		err := repo.ApplyDelta(ctx, "tomato", -7)
		require.Error(t, err)
		require.True(t, errors.Is(err, repository.ErrInsufficientStock))

		// Остаток не изменился
		quantity, err := repo.GetQuantity(ctx, "tomato")
		require.NoError(t, err)
		require.Equal(t, 6, quantity)
	})

	t.Run("ApplyDelta_NegativeOnMissingDocument", func(t *testing.T) {
		err := repo.ApplyDelta(ctx, "ghost", -1)
		require.Error(t, err)
		require.True(t, errors.Is(err, repository.ErrInsufficientStock))
	})

	t.Run("ApplyDelta_ZeroIsNoOp", func(t *testing.T) {
		require.NoError(t, repo.ApplyDelta(ctx, "noop", 0))

		_, err := repo.GetQuantity(ctx, "noop")
		require.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("List_SortedByName", func(t *testing.T) {
		require.NoError(t, repo.ApplyDelta(ctx, "basil", 2))

		items, err := repo.List(ctx)
		require.NoError(t, err)

		require.Len(t, items, 2)
		require.Equal(t, "basil", items[0].Name)
		require.Equal(t, "tomato", items[1].Name)
	})
}
