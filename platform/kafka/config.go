package kafka

// Config содержит конфигурацию подключения к Kafka
type Config struct {
	// Brokers — список брокеров Kafka, через который подключается сервис.
	// Значение зависит от среды выполнения:
	//   - локальная разработка (go run): localhost:19092
	//   - запуск в Docker: kafka:9092
	// Можно указать несколько брокеров через запятую: "broker1:9092,broker2:9092"
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
}

// DefaultConfig возвращает конфигурацию с дефолтными значениями для локальной разработки.
// Сервис должен получать актуальные значения через переменную окружения KAFKA_BROKERS.
func DefaultConfig() Config {
	return Config{
		Brokers: []string{"localhost:19092"},
	}
}
