package middleware

import (
	"crypto/subtle"
	"net/http"
)

// WithGatewayKey — HTTP middleware: проверяет, что запрос пришёл через
// API gateway по общему секрету в заголовке. При несовпадении возвращает 401.
func WithGatewayKey(header, key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(header)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				http.Error(w, "request must come through the api gateway", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
