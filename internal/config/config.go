package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Drivers de almacenamiento soportados en DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	DBDriver        string
	SQLitePath      string
	DatabaseURL     string
	MongoURI        string
	MongoDB         string
	RedisAddr       string
	UseKafka        bool
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaGroupID    string
	ClickHouseAddr  string
	ClickHouseDB    string
	CacheTTL        time.Duration
	OutboxPeriod    time.Duration
	OutboxLimit     int
	HTTPPort        string
	LogLevel        string
	DefaultPageSize int
	MaxPageSize     int
}

// LoadConfig lee las variables de entorno. Si existe un .env (o los ficheros
// indicados) se carga antes; las variables ya definidas tienen prioridad.
func LoadConfig(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)

	return &Config{
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		SQLitePath:      getEnv("SQLITE_PATH", "./listingsearch.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "listingsearch"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		UseKafka:        getEnvBool("USE_KAFKA", false),
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "listing-events"),
		KafkaGroupID:    getEnv("KAFKA_GROUP_ID", "listingsearch-cache"),
		ClickHouseAddr:  getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDB:    getEnv("CLICKHOUSE_DB", "listingsearch"),
		CacheTTL:        getEnvDuration("CACHE_TTL", 5*time.Minute),
		OutboxPeriod:    getEnvDuration("OUTBOX_PERIOD", time.Second),
		OutboxLimit:     getEnvInt("OUTBOX_LIMIT", 10),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DefaultPageSize: getEnvInt("DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:     getEnvInt("MAX_PAGE_SIZE", 100),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

// getEnvDuration acepta "5m", "1s"... o un entero en segundos.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
