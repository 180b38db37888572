package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	StorageDriver string
	DatabaseURL   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	JWTSecret []byte

	ShipperURL    string
	ShipperAPIKey string

	SMSURL    string
	SMSAPIKey string
}

// Load reads .env when it exists and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: could not load .env: %v", err)
	}
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "marketplace"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		StorageDriver: strings.ToLower(EnvDefault("STORAGE_DRIVER", StorageMemory)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvIntDefault("REDIS_DB", 0),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),

		ShipperURL:    EnvDefault("SHIPPER_API_URL", "https://api.shipper.tn"),
		ShipperAPIKey: os.Getenv("SHIPPER_API_KEY"),

		SMSURL:    EnvDefault("SMS_API_URL", "https://api.tunisiesms.tn"),
		SMSAPIKey: os.Getenv("SMS_API_KEY"),
	}
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres, StorageSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("missing required env DATABASE_URL for storage driver %q", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if len(c.JWTSecret) == 0 {
		return errors.New("missing required env JWT_SECRET")
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.ServerPort)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
