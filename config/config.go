package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server ServerConfig
	Logger LoggerConfig
	Store  StoreConfig
	MySQL  MySQLConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Remote RemoteConfig
	Writes WritesConfig
}

type ServerConfig struct {
	AppEnv   string
	HTTPAddr string
	GRPCAddr string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

// StoreConfig picks the backing store and where the collection is loaded from.
type StoreConfig struct {
	Driver     string // memory, mysql or mongo
	ItemSource string // store or remote
	Latency    time.Duration
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type RemoteConfig struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type WritesConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
			GRPCAddr: getEnv("GRPC_ADDR", ":50051"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Store: StoreConfig{
			Driver:     getEnv("STORE_DRIVER", "memory"),
			ItemSource: getEnv("ITEM_SOURCE", "store"),
			Latency:    getEnvDuration("MEMORY_STORE_LATENCY", 0),
		},
		MySQL: MySQLConfig{
			DSN:             getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/ticket_inventory?parseTime=true"),
			MaxOpenConns:    getEnvInt("MYSQL_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getEnvInt("MYSQL_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvInt("MYSQL_CONN_MAX_LIFETIME", 300),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "ticket_inventory"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 20),
		},
		Remote: RemoteConfig{
			BaseURL:  getEnv("TICKET_API_BASE_URL", ""),
			Token:    getEnv("TICKET_API_TOKEN", ""),
			Timeout:  getEnvDuration("TICKET_API_TIMEOUT", 10*time.Second),
			CacheTTL: getEnvDuration("TICKET_API_CACHE_TTL", 10*time.Minute),
		},
		Writes: WritesConfig{
			Workers:   getEnvInt("WRITE_WORKERS", 4),
			QueueSize: getEnvInt("WRITE_QUEUE_SIZE", 256),
			Timeout:   getEnvDuration("WRITE_TIMEOUT", 5*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("750ms") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
