package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mauriciocucco/margaritas-warehouse-service/internal/repository"
	"github.com/mauriciocucco/margaritas-warehouse-service/internal/service"
)

// Handler содержит HTTP-обработчики read API склада.
// Зависит от service слоя, но не знает о деталях хранилищ.
type Handler struct {
	logger           *zap.Logger
	warehouseService *service.Service
}

// NewHandler создаёт новый HTTP handler
func NewHandler(logger *zap.Logger, warehouseService *service.Service) *Handler {
	return &Handler{
		logger:           logger,
		warehouseService: warehouseService,
	}
}

// InventoryItemResponse представляет остаток ингредиента в HTTP ответе
type InventoryItemResponse struct {
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PurchaseRecordResponse представляет запись журнала закупок в HTTP ответе
type PurchaseRecordResponse struct {
	ID         int64     `json:"id"`
	Ingredient string    `json:"ingredient"`
	Quantity   int       `json:"quantity"`
	Date       time.Time `json:"date"`
}

// PurchaseHistoryResponse представляет страницу истории закупок
type PurchaseHistoryResponse struct {
	Data       []PurchaseRecordResponse `json:"data"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
	TotalPages int                      `json:"totalPages"`
	TotalItems int64                    `json:"totalItems"`
}

// GetInventory обрабатывает GET /inventory - все остатки склада
func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.warehouseService.Inventory(ctx)
	if err != nil {
		h.logger.Error("failed to get inventory", zap.Error(err))
		http.Error(w, "failed to get inventory", http.StatusInternalServerError)
		return
	}

	resp := make([]InventoryItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, InventoryItemResponse{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UpdatedAt: item.UpdatedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp, h.logger)
}

// GetPurchaseHistory обрабатывает GET /purchases?ingredient=&page=&limit=
func (h *Handler) GetPurchaseHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := repository.HistoryFilter{
		Ingredient: r.URL.Query().Get("ingredient"),
	}
	// Невалидные page/limit не ошибка: service нормализует их к дефолтам
	if v := r.URL.Query().Get("page"); v != "" {
		filter.Page, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}

	page, err := h.warehouseService.PurchaseHistory(ctx, filter)
	if err != nil {
		h.logger.Error("failed to get purchase history", zap.Error(err))
		http.Error(w, "failed to get purchase history", http.StatusInternalServerError)
		return
	}

	data := make([]PurchaseRecordResponse, 0, len(page.Data))
	for _, record := range page.Data {
		data = append(data, PurchaseRecordResponse{
			ID:         record.ID,
			Ingredient: record.Ingredient,
			Quantity:   record.Quantity,
			Date:       record.Date,
		})
	}

	resp := PurchaseHistoryResponse{
		Data:       data,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
		TotalItems: page.TotalItems,
	}

	writeJSON(w, http.StatusOK, resp, h.logger)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
