package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config хранит настройки сервера из переменных окружения.
type Config struct {
	// PostgresConn строка подключения к PostgreSQL.
	PostgresConn string `env:"POSTGRES_CONN,required,notEmpty"`
	// ServerAddress адрес HTTP сервера.
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0:8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	// RunMigrations применять миграции при старте.
	RunMigrations   bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load разбирает переменные окружения в Config.
func Load() (Config, error) {
	return env.ParseAs[Config]()
}
