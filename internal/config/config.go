// Package config charge la configuration depuis .env, l'environnement et un fichier YAML optionnel
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"materialroi/internal/analytics/domain"
)

// Sources de données supportées
const (
	SourceSample   = "sample"
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Backends de cache supportés
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config est la configuration complète de l'application
type Config struct {
	Port      string
	LogLevel  string
	LogPretty bool

	Source string
	CSV    CSVConfig
	DB     DBConfig

	Cache CacheConfig

	// SampleEnd est le dernier mois du jeu de démonstration (mois courant si vide)
	SampleEnd string

	Settings domain.Settings
}

// CSVConfig désigne les trois fichiers d'entrée
type CSVConfig struct {
	MaterialPath string
	SalesPath    string
	PricePath    string
}

// DBConfig décrit la connexion PostgreSQL
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN retourne la chaîne de connexion lib/pq
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// CacheConfig décrit le cache des rapports
type CacheConfig struct {
	Backend   string
	TTL       time.Duration
	Shards    int
	RedisAddr string
	RedisDB   int
	Prefix    string
}

// settingsFile est la forme YAML des seuils d'analyse; les champs absents gardent leur défaut
type settingsFile struct {
	Analysis *domain.Settings `yaml:"analysis"`
}

// Load lit .env (s'il existe), puis l'environnement, puis le fichier de seuils ANALYSIS_CONFIG
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvBool("LOG_PRETTY", false),
		Source:    strings.ToLower(getEnv("DATA_SOURCE", SourceSample)),
		CSV: CSVConfig{
			MaterialPath: getEnv("MATERIAL_CSV", "data/materials.csv"),
			SalesPath:    getEnv("SALES_CSV", "data/sales.csv"),
			PricePath:    getEnv("PRICE_CSV", "data/material_prices.csv"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "roiuser"),
			Password: getEnv("DB_PASSWORD", "roipass"),
			Name:     getEnv("DB_NAME", "materialroi"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Cache: CacheConfig{
			Backend:   strings.ToLower(getEnv("CACHE_BACKEND", CacheMemory)),
			TTL:       getEnvDuration("CACHE_TTL", 5*time.Minute),
			Shards:    getEnvInt("CACHE_SHARDS", 16),
			RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
			RedisDB:   getEnvInt("REDIS_DB", 0),
			Prefix:    getEnv("CACHE_PREFIX", "materialroi"),
		},
		SampleEnd: getEnv("SAMPLE_END_MONTH", ""),
		Settings:  domain.DefaultSettings(),
	}

	if path := getEnv("ANALYSIS_CONFIG", ""); path != "" {
		settings, err := LoadSettings(path, cfg.Settings)
		if err != nil {
			return nil, err
		}
		cfg.Settings = settings
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadSettings applique le fichier YAML sur base
func LoadSettings(path string, base domain.Settings) (domain.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read analysis config: %w", err)
	}
	return ParseSettings(data, base)
}

// ParseSettings décode un document YAML `analysis:` par-dessus base
func ParseSettings(data []byte, base domain.Settings) (domain.Settings, error) {
	settings := base
	file := settingsFile{Analysis: &settings}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return base, fmt.Errorf("parse analysis config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return base, fmt.Errorf("invalid analysis config: %w", err)
	}
	return settings, nil
}

// Validate vérifie les valeurs énumérées
func (c *Config) Validate() error {
	switch c.Source {
	case SourceSample, SourceCSV, SourcePostgres:
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q", c.Source)
	}
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	return c.Settings.Validate()
}

// getEnv récupère une variable d'environnement avec fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
