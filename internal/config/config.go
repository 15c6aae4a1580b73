package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort       string        `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	EmailRegexp    string        `env:"EMAIL_REGEXP" envDefault:"^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\\.[A-Za-z]{2,}$"`
	PasswordRegexp string        `env:"PASSWORD_REGEXP" envDefault:"^[A-Za-z][A-Za-z0-9]{7,}$"`
	JWTSecret      string        `env:"JWT_SECRET,required"`
	JWTExpiration  time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
	MigrationsDir  string        `env:"MIGRATIONS_DIR" envDefault:"migrations"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
