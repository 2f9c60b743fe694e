package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// hook — одна именованная операция остановки с ограничением по времени.
type hook struct {
	name string
	fn   func(context.Context) error
}

// Manager координирует graceful shutdown сервиса: ждёт SIGINT/SIGTERM
// и гасит зарегистрированные ресурсы в порядке, обратном регистрации,
// чтобы зависимые компоненты закрывались раньше своих зависимостей.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	hooks []hook
}

// New создаёт Manager; timeout применяется к каждому hook по отдельности.
func New(timeout time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// Add регистрирует операцию остановки. Порядок регистрации важен:
// hooks выполняются в обратном порядке.
func (m *Manager) Add(name string, fn func(context.Context) error) {
	m.mu.Lock()
	m.hooks = append(m.hooks, hook{name: name, fn: fn})
	m.mu.Unlock()
}

// Wait блокируется до SIGINT/SIGTERM, затем прогоняет все hooks.
// Ошибки отдельных hooks логируются, но не прерывают остальные.
func (m *Manager) Wait() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	m.logger.Info("Received shutdown signal, starting graceful shutdown")

	m.mu.Lock()
	hooks := make([]hook, len(m.hooks))
	copy(hooks, m.hooks)
	m.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		m.runHook(hooks[i])
	}

	m.logger.Info("Graceful shutdown completed")
}

func (m *Manager) runHook(h hook) {
	m.logger.Info("Executing shutdown function", zap.String("name", h.name))

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	start := time.Now()
	err := h.fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		m.logger.Error("Shutdown function failed",
			zap.String("name", h.name),
			zap.Error(err),
			zap.Duration("duration", elapsed))
		return
	}

	m.logger.Info("Shutdown function completed",
		zap.String("name", h.name),
		zap.Duration("duration", elapsed))
}

// ShutdownHTTPServer оборачивает http.Server.Shutdown в hook.
func ShutdownHTTPServer(srv interface {
	Shutdown(context.Context) error
}) func(context.Context) error {
	return srv.Shutdown
}

// DisconnectMongo оборачивает Disconnect клиента MongoDB в hook.
func DisconnectMongo(client interface {
	Disconnect(context.Context) error
}) func(context.Context) error {
	return client.Disconnect
}

// ClosePool оборачивает закрытие connection pool (pgxpool) в hook.
func ClosePool(pool interface {
	Close()
}) func(context.Context) error {
	return func(ctx context.Context) error {
		pool.Close()
		return nil
	}
}

// Close оборачивает io.Closer-подобные ресурсы в hook:
// kafka reader/writer, redis клиент и прочее с Close() error.
func Close(c interface {
	Close() error
}) func(context.Context) error {
	return func(ctx context.Context) error {
		return c.Close()
	}
}
