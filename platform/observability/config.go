package observability

// Config настройки OpenTelemetry: трейсы, метрики и propagator.
type Config struct {
	// Enabled включает экспорт телеметрии в OTLP collector
	Enabled bool
	// OTLPEndpoint адрес OTLP gRPC endpoint, например "127.0.0.1:4317" или "otel-collector:4317"
	OTLPEndpoint string
	// SamplingRatio доля семплируемых трасс в диапазоне 0..1, где 1.0 — все
	SamplingRatio float64
	// ServiceName имя сервиса в ресурсных атрибутах (warehouse)
	ServiceName string
	// DeploymentEnvironment среда развёртывания (local, docker)
	DeploymentEnvironment string
	// ServiceVersion версия сборки, опционально
	ServiceVersion string
}
