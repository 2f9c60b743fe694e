package http

import (
	"encoding/json"
	"net/http"
)

// Handler собирает HTTP handler для health check.
// Отдаёт 200 OK и {"status":"ok"}, пока readiness (если задана) возвращает true,
// иначе 503 Service Unavailable.
func Handler(readiness func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if readiness != nil && !readiness() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
