package supplier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUnavailable возвращается, когда поставщик ответил не-200 статусом
// или запрос не дошёл. Вызывающий код трактует это как failure, а не
// как нулевую продажу.
var ErrUnavailable = errors.New("supplier unavailable")

// Client реализует обращения к рынку фермеров (farmers market API).
// Нулевое quantitySold — валидный ответ ("сейчас нет в наличии"),
// ошибкой считается только транспортный сбой или не-200 статус.
type Client struct {
	logger  *zap.Logger
	baseURL string
	client  *http.Client
}

// NewClient создаёт клиента для farmers market API
func NewClient(logger *zap.Logger, baseURL string) *Client {
	return &Client{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// buyResponse - ответ рынка на попытку закупки
type buyResponse struct {
	QuantitySold int `json:"quantitySold"`
}

// BuyIngredient делает одну попытку закупки ингредиента.
// Возвращает количество, которое рынок согласился продать (возможно 0).
func (c *Client) BuyIngredient(ctx context.Context, ingredient string) (int, error) {
	reqURL := fmt.Sprintf("%s/buy?ingredient=%s", c.baseURL, url.QueryEscape(ingredient))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// При не-200 читаем тело ответа для диагностики и не декодируем JSON
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result buyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	if result.QuantitySold < 0 {
		return 0, fmt.Errorf("supplier returned negative quantity %d for %s", result.QuantitySold, ingredient)
	}

	c.logger.Debug("supplier responded",
		zap.String("ingredient", ingredient),
		zap.Int("quantity_sold", result.QuantitySold),
	)

	return result.QuantitySold, nil
}
