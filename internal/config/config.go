package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config определяет структуру конфигурации всего приложения целиком
type Config struct {
	HTTPServer `yaml:"http_server"`
	Postgres   `yaml:"postgres"`
	Redis      `yaml:"redis"`
	Cache      `yaml:"cache"`
	Catalog    `yaml:"catalog"`
	Kafka      `yaml:"kafka"`
	JWT        `yaml:"jwt"`
	Logger     `yaml:"logger"`
}

// HTTPServer содержит конфигурацию для HTTP-сервера
type HTTPServer struct {
	Port        string        `yaml:"port" validate:"required"`
	Timeout     time.Duration `yaml:"timeout"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// Postgres содержит конфигурацию для подключения к базе данных
type Postgres struct {
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Host     string `yaml:"host" validate:"required"`
	Port     string `yaml:"port" validate:"required"`
	DBName   string `yaml:"db_name" validate:"required"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int32  `yaml:"max_conns" validate:"gte=0"`
}

// Redis содержит конфигурацию внешнего key/value хранилища
// если Enabled=false, используется in-memory хранилище
type Redis struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr" validate:"required_if=Enabled true"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
}

// Cache задаёт политику read-through кэша каталога
type Cache struct {
	TTL       time.Duration `yaml:"ttl" validate:"gt=0"`
	OpTimeout time.Duration `yaml:"op_timeout" validate:"gt=0"`
	KeyPrefix string        `yaml:"key_prefix" validate:"required"`
}

// Catalog содержит список поддерживаемых локалей
type Catalog struct {
	Locales       []string `yaml:"locales" validate:"required,min=1,dive,required"`
	DefaultLocale string   `yaml:"default_locale" validate:"required"`
}

// Kafka содержит конфигурацию для подключения к кафке
type Kafka struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers" validate:"required_if=Enabled true"`
	Topic   string   `yaml:"topic" validate:"required_if=Enabled true"`
	GroupID string   `yaml:"group_id" validate:"required_if=Enabled true"`
}

// JWT содержит секрет и время жизни токенов
type JWT struct {
	Secret     string        `yaml:"secret" validate:"required"`
	AccessTTL  time.Duration `yaml:"access_ttl" validate:"gt=0"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" validate:"gt=0"`
}

// Logger содержит конфигурацию для логгера
type Logger struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

var ErrUnsupportedDefaultLocale = errors.New("default_locale is not in locales")

// Default возвращает конфигурацию со значениями по умолчанию
// значения из yaml-файла накладываются поверх неё
func Default() Config {
	return Config{
		HTTPServer: HTTPServer{
			Port:        ":8080",
			Timeout:     10 * time.Second,
			IdleTimeout: 60 * time.Second,
		},
		Postgres: Postgres{
			SSLMode:  "disable",
			MaxConns: 10,
		},
		Cache: Cache{
			TTL:       3600 * time.Second,
			OpTimeout: 200 * time.Millisecond,
			KeyPrefix: "products_grouped_by_category",
		},
		Catalog: Catalog{
			Locales:       []string{"fr", "en", "zh"},
			DefaultLocale: "en",
		},
		JWT: JWT{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Logger: Logger{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// MustLoad загружает конфигурацию из файла по указанному пути
// в случае ошибки программа завершается с фатальной ошибкой
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %s", err)
	}
	return cfg
}

// Load читает yaml-файл, применяет переопределения из окружения и валидирует результат
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, errors.New("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// .env не обязателен, секреты могут прийти из окружения напрямую
	_ = godotenv.Load()

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Path возвращает путь к конфигу из CONFIG_PATH или путь по умолчанию
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.yaml"
}

var validate = validator.New()

// Validate проверяет корректность конфигурации на основе тегов validate
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !slices.Contains(c.Catalog.Locales, c.Catalog.DefaultLocale) {
		return fmt.Errorf("invalid config: %w", ErrUnsupportedDefaultLocale)
	}
	return nil
}

// секреты не должны лежать в yaml, поэтому их можно передать через окружение
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("POSTGRES_PASSWORD"); ok {
		c.Postgres.Password = v
	}
	if v, ok := os.LookupEnv("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := os.LookupEnv("JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
}
