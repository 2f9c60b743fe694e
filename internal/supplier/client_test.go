package supplier

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_BuyIngredient_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/buy", r.URL.Path)
		assert.Equal(t, "tomato", r.URL.Query().Get("ingredient"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quantitySold": 5}`))
	}))
	defer srv.Close()

	client := NewClient(zap.NewNop(), srv.URL)

	sold, err := client.BuyIngredient(context.Background(), "tomato")
	require.NoError(t, err)
	assert.Equal(t, 5, sold)
}

func TestClient_BuyIngredient_ZeroSoldIsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quantitySold": 0}`))
	}))
	defer srv.Close()

	client := NewClient(zap.NewNop(), srv.URL)

	sold, err := client.BuyIngredient(context.Background(), "lemon")
	require.NoError(t, err)
	assert.Equal(t, 0, sold)
}

func TestClient_BuyIngredient_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "market closed", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(zap.NewNop(), srv.URL)

	_, err := client.BuyIngredient(context.Background(), "lemon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Contains(t, err.Error(), "503")
}

func TestClient_BuyIngredient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // закрываем сразу, чтобы получить сетевую ошибку

	client := NewClient(zap.NewNop(), srv.URL)

	_, err := client.BuyIngredient(context.Background(), "lemon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestClient_BuyIngredient_QueryEscaping(t *testing.T) {
	var gotIngredient string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIngredient = r.URL.Query().Get("ingredient")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quantitySold": 1}`))
	}))
	defer srv.Close()

	client := NewClient(zap.NewNop(), srv.URL)

	_, err := client.BuyIngredient(context.Background(), "olive oil")
	require.NoError(t, err)
	assert.Equal(t, "olive oil", gotIngredient)
}
