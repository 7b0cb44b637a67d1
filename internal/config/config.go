package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"govready/internal/engine"
)

// Store backends
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// CacheConfig holds redis TTLs
type CacheConfig struct {
	CatalogTTL time.Duration `yaml:"catalog_ttl"`
	ScoreTTL   time.Duration `yaml:"score_ttl"`
}

// Config is the server configuration. Infrastructure comes from the
// environment; scoring rules and cache TTLs may also come from a YAML file.
type Config struct {
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	Port          string
	JWTSecret     string
	AdminUsername string
	AdminPassword string

	// LogMode is "production" or "development"
	LogMode string
	// Store selects the persistence backend: "mongo" or "memory"
	Store string
	// CatalogFile seeds the memory store from a YAML catalog
	CatalogFile string

	Scoring engine.ScoringRules
	Cache   CacheConfig
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() *Config {
	return &Config{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "govready",
		RedisAddr:     "localhost:6379",
		Port:          "8080",
		JWTSecret:     "change-me-in-production",
		AdminUsername: "admin",
		AdminPassword: "admin",
		LogMode:       "development",
		Store:         StoreMongo,
		Scoring:       engine.DefaultScoringRules(),
		Cache: CacheConfig{
			CatalogTTL: 10 * time.Minute,
			ScoreTTL:   30 * time.Second,
		},
	}
}

// Load reads the YAML file named by GOVREADY_CONFIG (if any), then applies
// environment overrides and validates the result.
func Load() (*Config, error) {
	cfg, err := LoadConfig(getEnv("GOVREADY_CONFIG", "govready.yaml"))
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig merges a YAML file over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	type yamlConfig struct {
		MongoDatabase string `yaml:"mongo_database"`
		LogMode       string `yaml:"log_mode"`
		Store         string `yaml:"store"`
		CatalogFile   string `yaml:"catalog_file"`
		Scoring       struct {
			ProductionReadyThreshold *int `yaml:"production_ready_threshold"`
			BlockerScaleCutoff       *int `yaml:"blocker_scale_cutoff"`
		} `yaml:"scoring"`
		Cache struct {
			CatalogTTL string `yaml:"catalog_ttl"`
			ScoreTTL   string `yaml:"score_ttl"`
		} `yaml:"cache"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.MongoDatabase != "" {
		cfg.MongoDatabase = yamlCfg.MongoDatabase
	}
	if yamlCfg.LogMode != "" {
		cfg.LogMode = yamlCfg.LogMode
	}
	if yamlCfg.Store != "" {
		cfg.Store = yamlCfg.Store
	}
	if yamlCfg.CatalogFile != "" {
		cfg.CatalogFile = yamlCfg.CatalogFile
	}
	// pointers so an explicit 0 threshold is honoured
	if v := yamlCfg.Scoring.ProductionReadyThreshold; v != nil {
		cfg.Scoring.ProductionReadyThreshold = *v
	}
	if v := yamlCfg.Scoring.BlockerScaleCutoff; v != nil {
		cfg.Scoring.BlockerScaleCutoff = *v
	}
	if yamlCfg.Cache.CatalogTTL != "" {
		ttl, err := time.ParseDuration(yamlCfg.Cache.CatalogTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid catalog_ttl format %q: %w", yamlCfg.Cache.CatalogTTL, err)
		}
		cfg.Cache.CatalogTTL = ttl
	}
	if yamlCfg.Cache.ScoreTTL != "" {
		ttl, err := time.ParseDuration(yamlCfg.Cache.ScoreTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid score_ttl format %q: %w", yamlCfg.Cache.ScoreTTL, err)
		}
		cfg.Cache.ScoreTTL = ttl
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.MongoDatabase = getEnv("MONGO_DATABASE", c.MongoDatabase)
	c.RedisAddr = strings.TrimPrefix(getEnv("REDIS_URI", c.RedisAddr), "redis://")
	c.Port = getEnv("PORT", c.Port)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.AdminUsername = getEnv("ADMIN_USERNAME", c.AdminUsername)
	c.AdminPassword = getEnv("ADMIN_PASSWORD", c.AdminPassword)
	c.LogMode = getEnv("LOG_MODE", c.LogMode)
	c.Store = strings.ToLower(getEnv("STORE", c.Store))
	c.CatalogFile = getEnv("CATALOG_FILE", c.CatalogFile)

	var err error
	if c.Scoring.ProductionReadyThreshold, err = getEnvInt("PRODUCTION_READY_THRESHOLD", c.Scoring.ProductionReadyThreshold); err != nil {
		return err
	}
	if c.Scoring.BlockerScaleCutoff, err = getEnvInt("BLOCKER_SCALE_CUTOFF", c.Scoring.BlockerScaleCutoff); err != nil {
		return err
	}
	return nil
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.Store != StoreMongo && c.Store != StoreMemory {
		return fmt.Errorf("invalid store %q: want %s or %s", c.Store, StoreMongo, StoreMemory)
	}
	if c.Store == StoreMemory && c.CatalogFile == "" {
		return fmt.Errorf("store %s requires CATALOG_FILE", StoreMemory)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.Cache.CatalogTTL < 0 || c.Cache.ScoreTTL < 0 {
		return fmt.Errorf("cache TTLs must not be negative")
	}
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring rules: %w", err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return n, nil
}
