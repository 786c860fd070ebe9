package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config содержит конфигурацию сервера
type Config struct {
	Port               int
	MaxPrincipal       float64
	MaxContribution    float64
	MaxTermYears       int
	MaxProjectionYears int
	MaxRate            float64
	MaxTiers           int
	MaxSchedulePeriods int
	OTELEndpoint       string
	OTELServiceName    string
	LogLevel           string

	// HTTP: допустимые CORS-источники и лимит запросов на клиента в минуту (0 отключает)
	CORSOrigins        []string
	RateLimitPerMinute int

	// Хранилище сохраненных сценариев: memory, redis или sqlite
	StoreBackend string
	RedisAddr    string
	RedisTTL     time.Duration
	SQLitePath   string

	RateStructuresFile string
	RateStructures     []RateStructure
}

// TierConfig ступень процентной сетки в сыром виде, как ее задает пользователь
type TierConfig struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Rate      float64 `yaml:"rate" json:"rate"`
}

// RateStructure именованная сетка ставок (банк, счет, продукт)
type RateStructure struct {
	Name  string       `yaml:"name" json:"name"`
	Tiers []TierConfig `yaml:"tiers" json:"tiers"`
}

type rateStructuresFile struct {
	RateStructures []RateStructure `yaml:"rate_structures"`
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	// Загружаем .env файл, если он существует (игнорируем ошибку)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnvInt("PORT", 8000),
		MaxPrincipal:       getEnvFloat("MAX_PRINCIPAL", 1e9),
		MaxContribution:    getEnvFloat("MAX_CONTRIBUTION", 1e8),
		MaxTermYears:       getEnvInt("MAX_TERM_YEARS", 50),
		MaxProjectionYears: getEnvInt("MAX_PROJECTION_YEARS", 60),
		MaxRate:            getEnvFloat("MAX_RATE", 200),
		MaxTiers:           getEnvInt("MAX_TIERS", 20),
		MaxSchedulePeriods: getEnvInt("MAX_SCHEDULE_PERIODS", 360),
		OTELEndpoint:       getEnvString("OTEL_ENDPOINT", ""),
		OTELServiceName:    getEnvString("OTEL_SERVICE_NAME", "fincalc-server"),
		LogLevel:           getEnvString("LOG_LEVEL", "INFO"),
		CORSOrigins:        getEnvList("CORS_ORIGINS", []string{"*"}),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		StoreBackend:       getEnvString("STORE_BACKEND", "memory"),
		RedisAddr:          getEnvString("REDIS_ADDR", "localhost:6379"),
		RedisTTL:           getEnvDuration("REDIS_TTL", 24*time.Hour),
		SQLitePath:         getEnvString("SQLITE_PATH", "fincalc.db"),
		RateStructuresFile: getEnvString("RATE_STRUCTURES_FILE", ""),
	}

	if cfg.RateStructuresFile != "" {
		structures, err := LoadRateStructures(cfg.RateStructuresFile)
		if err != nil {
			return nil, err
		}
		cfg.RateStructures = structures
	}

	return cfg, nil
}

// LoadRateStructures читает именованные сетки ставок из YAML-файла
func LoadRateStructures(path string) ([]RateStructure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rate structures: %w", err)
	}

	var f rateStructuresFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rate structures: %w", err)
	}

	seen := make(map[string]struct{}, len(f.RateStructures))
	for _, rs := range f.RateStructures {
		if rs.Name == "" {
			return nil, fmt.Errorf("parse rate structures: structure without name")
		}
		if _, dup := seen[rs.Name]; dup {
			return nil, fmt.Errorf("parse rate structures: duplicate name %q", rs.Name)
		}
		seen[rs.Name] = struct{}{}
	}

	return f.RateStructures, nil
}

// RateStructureByName ищет сетку по имени
func (c *Config) RateStructureByName(name string) (RateStructure, bool) {
	for _, rs := range c.RateStructures {
		if rs.Name == name {
			return rs, true
		}
	}
	return RateStructure{}, false
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
