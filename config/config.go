package config

import (
	"fmt"
	"log"
	"os"
	"time"

	pkgconfig "homeplan/pkg/config"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DB     pkgconfig.DBConfig     `yaml:"db"`
	MQ     pkgconfig.MQConfig     `yaml:"mq"`
	Redis  pkgconfig.RedisConfig  `yaml:"redis"`
	JWT    pkgconfig.JWTConfig    `yaml:"jwt"`
	Server pkgconfig.ServerConfig `yaml:"server"`
	Plans  pkgconfig.PlansConfig  `yaml:"plans"`
	Outbox pkgconfig.OutboxConfig `yaml:"outbox"`
	// DedupTTL bounds how long a plan request id is remembered.
	DedupTTL time.Duration `yaml:"dedup_ttl"`
}

// Load reads configuration or exits. CONFIG_DIR selects a layered directory
// (base.yaml + $CONFIG_ENV.yaml); otherwise ./config.yaml is used.
func Load() *Config {
	var (
		cfg *Config
		err error
	)
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		cfg, err = LoadDir(dir, pkgconfig.GetConfigEnv())
	} else {
		cfg, err = LoadFile("config.yaml")
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// LoadFile decodes a single YAML file and applies environment overrides.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cfg := defaults()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	overrideFromEnv(cfg)
	return cfg, nil
}

// LoadDir reads a layered configuration directory.
func LoadDir(dir, env string) (*Config, error) {
	cfg := defaults()
	if err := pkgconfig.LoadLayered(dir, env, cfg); err != nil {
		return nil, err
	}
	overrideFromEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		DB: pkgconfig.DBConfig{
			Host:        "localhost",
			Port:        5432,
			SSLMode:     "disable",
			MaxConns:    10,
			SlowQueryMS: 100,
		},
		Server: pkgconfig.ServerConfig{Port: ":8080"},
		Outbox: pkgconfig.OutboxConfig{
			Interval:   time.Second,
			BatchSize:  100,
			MaxRetries: 5,
		},
		DedupTTL: 24 * time.Hour,
	}
}

func overrideFromEnv(cfg *Config) {
	pkgconfig.OverrideDBFromEnv(&cfg.DB)
	pkgconfig.OverrideMQFromEnv(&cfg.MQ)
	pkgconfig.OverrideRedisFromEnv(&cfg.Redis)
	pkgconfig.OverrideJWTFromEnv(&cfg.JWT)
	pkgconfig.OverrideServerFromEnv(&cfg.Server)
	pkgconfig.OverridePlansFromEnv(&cfg.Plans)
}
