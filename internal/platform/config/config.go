package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
)

// Config agrupa toda a configuração do storefront lida do ambiente
type Config struct {
	Server    Server
	Database  Database
	Telemetry Telemetry
	PayPal    PayPal
	Store     Store
}

// Server configura o listener HTTP e o armazenamento de imagens
type Server struct {
	Port     string `env:"PORT" envDefault:"4000"`
	ImageDir string `env:"IMAGE_DIR" envDefault:"public/images"`
	// origem liberada no CORS; "*" libera todas
	AllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`
}

// Database configura a conexão com o PostgreSQL
type Database struct {
	Host     string `env:"DATABASE_HOST" envDefault:"localhost"`
	Port     int    `env:"DATABASE_PORT" envDefault:"5432"`
	User     string `env:"DATABASE_USER" envDefault:"root"`
	Password string `env:"DATABASE_PASSWORD" envDefault:"pass"`
	Name     string `env:"DATABASE_NAME" envDefault:"storefront_db"`
	MaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`
}

// URL retorna a DSN no formato URL usada pelo pgxpool
func (d Database) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// KeywordDSN retorna a DSN no formato chave=valor usada pelo lib/pq
func (d Database) KeywordDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name,
	)
}

// Telemetry configura os exporters OpenTelemetry
type Telemetry struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"true"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"storefront"`
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
}

// PayPal configura o cliente da API REST de pedidos do PayPal
type PayPal struct {
	ClientID  string `env:"PAYPAL_CLIENT_ID"`
	Secret    string `env:"PAYPAL_SECRET"`
	BaseURL   string `env:"PAYPAL_BASE_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ReturnURL string `env:"PAYPAL_RETURN_URL" envDefault:"http://localhost:4200/cart"`
	CancelURL string `env:"PAYPAL_CANCEL_URL" envDefault:"http://localhost:4200/cart"`
}

// Store contém os dados da loja usados no checkout e nos recibos
type Store struct {
	Name     string `env:"STORE_NAME" envDefault:"Pokedeck Store"`
	Locale   string `env:"STORE_LOCALE" envDefault:"es-MX"`
	Currency string `env:"CURRENCY" envDefault:"MXN"`
}

// Parse lê variáveis de ambiente para target
func Parse(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load lê a configuração completa do ambiente
func Load() (Config, error) {
	var cfg Config
	if err := Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
