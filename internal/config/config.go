// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
// всех сервисов Accountable: API, identity, планировщика, отправщика и клиентской оболочки.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	GRPC                    `yaml:"grpc"`
	JWTToken                `yaml:"jwttoken"`
	Admin                   `yaml:"admin"`
	Backend                 `yaml:"backend"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	Resend                  `yaml:"resend"`
	Scheduler               `yaml:"scheduler"`
	Shell                   `yaml:"shell"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	// AdminRateLimit — допустимое число запросов к admin RPC в секунду с одного адреса.
	AdminRateLimit float64 `yaml:"admin_rate_limit" env-default:"1"`
	AdminRateBurst int     `yaml:"admin_rate_burst" env-default:"5"`
}

// GRPC структура для настройки identity-сервиса
type GRPC struct {
	IdentityAddress string        `yaml:"identity_address" env:"GRPC_IDENTITY_ADDRESS" env-default:"localhost:50051"`
	ListenAddress   string        `yaml:"listen_address" env:"GRPC_LISTEN_ADDRESS" env-default:":50051"`
	DialTimeout     time.Duration `yaml:"dial_timeout" env-default:"5s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Admin хранит секреты оператора для входа в админ-панель по паре логин/пароль.
// Пустые значения отключают этот путь авторизации.
type Admin struct {
	AdminUser     string `yaml:"admin_user" env:"ADMIN_USER"`
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD"`
}

// Backend описывает публичные реквизиты API, которые отдаются клиенту при автонастройке.
type Backend struct {
	PublicURL string `yaml:"public_url" env:"BACKEND_PUBLIC_URL"`
	AnonKey   string `yaml:"anon_key" env:"BACKEND_ANON_KEY"`
}

// RabbitMQ структура для подключения к брокеру
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"rabbitmq_url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"rabbitmq_max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
}

// SMTP структура для настройки почтового транспорта
type SMTP struct {
	SMTPHost string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// Resend включает отправку писем через API Resend. При пустом ключе используется SMTP.
type Resend struct {
	ResendAPIKey string `yaml:"resend_api_key" env:"RESEND_API_KEY"`
	ResendFrom   string `yaml:"resend_from" env:"RESEND_FROM" env-default:"Accountable <noreply@accountable.app>"`
}

// Scheduler структура для настройки напоминаний о задачах
type Scheduler struct {
	Interval       time.Duration `yaml:"interval" env-default:"1m"`
	ReminderWindow time.Duration `yaml:"reminder_window" env-default:"1h"`
	MissedGrace    time.Duration `yaml:"missed_grace" env-default:"30m"`
}

// Shell структура для настройки клиентской оболочки
type Shell struct {
	// APIURL — встроенный адрес API. Если пуст, используется сохранённый локально {url,key}.
	APIURL       string        `yaml:"api_url" env:"SHELL_API_URL"`
	APIKey       string        `yaml:"api_key" env:"SHELL_API_KEY"`
	StorePath    string        `yaml:"store_path" env:"SHELL_STORE_PATH" env-default:"./accountable.db"`
	PollInterval time.Duration `yaml:"poll_interval" env-default:"30s"`
	// LocalAdminUser/LocalAdminPassword — секреты для входа администратора без обращения к API.
	LocalAdminUser     string `yaml:"local_admin_user" env:"SHELL_ADMIN_USER"`
	LocalAdminPassword string `yaml:"local_admin_password" env:"SHELL_ADMIN_PASSWORD"`
}

// MustLoad функция для загрузки конфига из файла по пути CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг по пути и накладывает поверх переменные окружения.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// AdminSecretsConfigured сообщает, задана ли пара секретов администратора.
func (a Admin) AdminSecretsConfigured() bool {
	return a.AdminUser != "" && a.AdminPassword != ""
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  User: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"GRPC:\n"+
			"  IdentityAddress: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"Admin:\n"+
			"  User: %s\n"+
			"  Password: %s\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.AddressRedis,
		c.User,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.IdentityAddress,
		mask(c.JWTSecretKey),
		c.TokenTTL,
		c.AdminUser,
		mask(c.AdminPassword),
	)
}
