// backend-go/internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Engine   EngineConfig
	Cache    CacheConfig
	Reports  ReportsConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type EngineConfig struct {
	DefaultHorizonDays  int
	DefaultLeadTimeDays int
	ServiceLevel        float64
	ScanWorkers         int
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
}

type ReportsConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 60)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "stockcast")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("ENGINE_DEFAULT_HORIZON_DAYS", 30)
		viper.SetDefault("ENGINE_DEFAULT_LEAD_TIME_DAYS", 7)
		viper.SetDefault("ENGINE_SERVICE_LEVEL", 0.95)
		viper.SetDefault("ENGINE_SCAN_WORKERS", 4)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 300)
		viper.SetDefault("REPORTS_ENABLED", false)
		viper.SetDefault("REPORTS_ENDPOINT", "")
		viper.SetDefault("REPORTS_ACCESS_KEY", "")
		viper.SetDefault("REPORTS_SECRET_KEY", "")
		viper.SetDefault("REPORTS_BUCKET", "stockcast-reports")
		viper.SetDefault("REPORTS_REGION", "")
		viper.SetDefault("REPORTS_USE_SSL", true)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Engine: EngineConfig{
				DefaultHorizonDays:  viper.GetInt("ENGINE_DEFAULT_HORIZON_DAYS"),
				DefaultLeadTimeDays: viper.GetInt("ENGINE_DEFAULT_LEAD_TIME_DAYS"),
				ServiceLevel:        viper.GetFloat64("ENGINE_SERVICE_LEVEL"),
				ScanWorkers:         viper.GetInt("ENGINE_SCAN_WORKERS"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				ForecastTTLSeconds: viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
			},
			Reports: ReportsConfig{
				Enabled:   viper.GetBool("REPORTS_ENABLED"),
				Endpoint:  viper.GetString("REPORTS_ENDPOINT"),
				AccessKey: viper.GetString("REPORTS_ACCESS_KEY"),
				SecretKey: viper.GetString("REPORTS_SECRET_KEY"),
				Bucket:    viper.GetString("REPORTS_BUCKET"),
				Region:    viper.GetString("REPORTS_REGION"),
				UseSSL:    viper.GetBool("REPORTS_USE_SSL"),
			},
		}
	})

	return instance
}
