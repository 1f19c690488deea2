package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Store
	StoreDriver string `envconfig:"STORE_DRIVER" default:"mysql"`
	DBDSN       string `envconfig:"DB_DSN" default:"user:password@tcp(127.0.0.1:3306)/community?charset=utf8mb4&parseTime=True"`
	MongoURI    string `envconfig:"MONGO_URI" default:"mongodb://127.0.0.1:27017"`
	MongoDB     string `envconfig:"MONGO_DB" default:"community_chat"`

	// Redis
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Identity
	IdentityMode string `envconfig:"IDENTITY_MODE" default:"placeholder"`
	JWTSecret    string `envconfig:"JWT_SECRET" default:"secret-key"`
	JWTTTLMin    int    `envconfig:"JWT_TTL_MIN" default:"30"`

	// Kafka
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"chat-events"`

	// SMTP
	SMTPHost     string `envconfig:"SMTP_HOST" default:"smtp.example.com"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"NoReply <no-reply@example.com>"`

	// HTTP 级别的限流，和消息滑动窗口无关
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"20"`

	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m"`
	OutboxInterval time.Duration `envconfig:"OUTBOX_INTERVAL" default:"1s"`
	OwnerCacheTTL  time.Duration `envconfig:"OWNER_CACHE_TTL" default:"5m"`
}

// Load 先尝试读取 .env（不存在时忽略），再按环境变量覆盖
func Load(envFiles ...string) (App, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	_ = godotenv.Load(envFiles...)

	var c App
	err := envconfig.Process("", &c)
	return c, err
}

func (c App) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMin) * time.Minute
}
