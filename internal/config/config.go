package config

import (
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// DataConfig locates the flat-file stores. The inventory and sales paths
// default to living under Dir but are independently overridable.
type DataConfig struct {
	Dir           string
	InventoryFile string
	SalesFile     string
	LockTimeout   time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerWindow int
	Window            time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// InventoryLockFile is the marker path for the inventory critical section.
func (d DataConfig) InventoryLockFile() string {
	return filepath.Join(d.Dir, "locks", "inventory.lock")
}

// SalesLockFile is the marker path for the sales critical section.
func (d DataConfig) SalesLockFile() string {
	return filepath.Join(d.Dir, "locks", "sales.lock")
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("LOCK_TIMEOUT_SECONDS", 10)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 60)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	dataDir := viper.GetString("DATA_DIR")
	inventoryFile := viper.GetString("INVENTORY_CSV")
	if inventoryFile == "" {
		inventoryFile = filepath.Join(dataDir, "data.csv")
	}
	salesFile := viper.GetString("SALES_CSV")
	if salesFile == "" {
		salesFile = filepath.Join(dataDir, "sales.csv")
	}

	var origins []string
	if raw := viper.GetString("CORS_ALLOWED_ORIGINS"); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			origins = append(origins, strings.TrimSpace(o))
		}
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Data: DataConfig{
			Dir:           dataDir,
			InventoryFile: inventoryFile,
			SalesFile:     salesFile,
			LockTimeout:   time.Duration(viper.GetInt("LOCK_TIMEOUT_SECONDS")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           viper.GetBool("RATE_LIMIT_ENABLED"),
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:            time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: origins,
		},
	}
}
