package httpapi

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mauriciocucco/margaritas-warehouse-service/internal/api/http/middleware"
	platformhealth "github.com/mauriciocucco/margaritas-warehouse-service/platform/health/http"
	platformobservability "github.com/mauriciocucco/margaritas-warehouse-service/platform/observability"
)

// NewRouter создаёт и настраивает HTTP роутер склада.
// readiness - функция проверки готовности сервиса (коннекты к БД);
// при false health endpoint вернёт 503 Service Unavailable.
// gatewayHeader/gatewayKey - общий секрет API gateway: data-маршруты
// отвечают 401 без него, health остаётся открытым.
func NewRouter(handler *Handler, readiness func() bool, logger *zap.Logger, gatewayHeader, gatewayKey string) chi.Router {
	router := chi.NewRouter()

	// Observability: trace context + span на каждый запрос, logger с trace_id в контексте
	if logger != nil {
		router.Use(platformobservability.HTTPMiddleware("warehouse", logger))
	}

	router.Group(func(r chi.Router) {
		r.Use(middleware.WithGatewayKey(gatewayHeader, gatewayKey))
		r.Get("/inventory", handler.GetInventory)
		r.Get("/purchases", handler.GetPurchaseHistory)
	})

	// Health без middleware (не требует секрета gateway)
	router.Get("/health", platformhealth.Handler(readiness))

	return router
}
