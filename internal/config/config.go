package config

import (
	"log"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const Version = "2.0.0"

type Config struct {
	App       AppConfig
	Log       LogConfig
	Evolution EvolutionConfig
	Redis     RedisConfig
	GCS       GCSConfig
	Webhook   WebhookConfig
	Instance  InstanceDefaults
}

type AppConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Port    string `env:"PORT" envDefault:"3000"`
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`
	// Chave compartilhada exigida nas rotas da API. Sem default de propósito:
	// o valor precisa vir do ambiente.
	APIKey string `env:"API_KEY,required"`
}

type EvolutionConfig struct {
	BaseURL string `env:"EVO_API_URL,required"`
	APIKey  string `env:"EVO_API_KEY,required"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	Enabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
}

type GCSConfig struct {
	Enabled bool   `env:"GCS_ENABLED" envDefault:"false"`
	Bucket  string `env:"GCS_BUCKET" envDefault:"whatsapp-media"`
	BaseURL string `env:"GCS_URL" envDefault:"https://storage.googleapis.com"`
}

type WebhookConfig struct {
	Workers   int `env:"WEBHOOK_WORKERS" envDefault:"4"`
	QueueSize int `env:"WEBHOOK_QUEUE_SIZE" envDefault:"10000"`
}

// InstanceDefaults são os settings aplicados a toda instância nova.
// A combinação definitiva ainda está em revisão com o dono do sistema,
// por isso cada flag é ajustável por ambiente (ver DESIGN.md).
type InstanceDefaults struct {
	SyncFullHistory bool   `env:"DEFAULT_SYNC_FULL_HISTORY" envDefault:"true"`
	ReadMessages    bool   `env:"DEFAULT_READ_MESSAGES" envDefault:"false"`
	ReadStatus      bool   `env:"DEFAULT_READ_STATUS" envDefault:"false"`
	AlwaysOnline    bool   `env:"DEFAULT_ALWAYS_ONLINE" envDefault:"true"`
	RejectCall      bool   `env:"DEFAULT_REJECT_CALL" envDefault:"false"`
	MsgCall         string `env:"DEFAULT_MSG_CALL" envDefault:""`
	GroupsIgnore    bool   `env:"DEFAULT_GROUPS_IGNORE" envDefault:"false"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"debug"`
}

// Load carrega as configurações da aplicação.
func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config: não foi possível carregar variáveis: %v", err)
	}
	cfg.Evolution.BaseURL = strings.TrimRight(cfg.Evolution.BaseURL, "/")
	cfg.App.BaseURL = strings.TrimRight(cfg.App.BaseURL, "/")
	return cfg
}
