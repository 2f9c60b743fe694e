package kafka

import "github.com/caarlos0/env/v10"

// LoadEnv перезаписывает поля Config значениями из переменных окружения
// по env-тегам структуры. Поля без переменной остаются как есть.
func LoadEnv(cfg *Config) error {
	return env.Parse(cfg)
}
