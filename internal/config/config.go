package config

import (
	"github.com/joho/godotenv"
	"github.com/wb-go/wbf/config"
	"time"
)

const (
	DriverLocal    = "local"
	DriverPostgres = "postgres"
	DriverKafka    = "kafka"
)

type Config struct {
	Addr     string
	GinMode  string
	LogLevel string

	MasterDSN string
	SlaveDSNs []string

	CommentsLimit int

	ImagesDir       string
	ImagesPublicURL string
	ImagesMaxBytes  int64

	RealtimeDriver string
	KafkaBrokers   []string
	KafkaTopic     string

	ShutdownTimeout time.Duration
}

// Load reads an optional .env and then the yaml config files; missing keys fall back to defaults.
func Load(paths ...string) *Config {
	_ = godotenv.Load()

	cfg := config.New()
	_ = cfg.LoadConfigFiles(paths...)

	c := &Config{
		Addr:            cfg.GetString("addr"),
		GinMode:         cfg.GetString("gin_mode"),
		LogLevel:        cfg.GetString("log_level"),
		MasterDSN:       cfg.GetString("master_dsn"),
		SlaveDSNs:       cfg.GetStringSlice("slaveDSNs"),
		CommentsLimit:   cfg.GetInt("comments.limit"),
		ImagesDir:       cfg.GetString("images.dir"),
		ImagesPublicURL: cfg.GetString("images.public_url"),
		ImagesMaxBytes:  int64(cfg.GetInt("images.max_bytes")),
		RealtimeDriver:  cfg.GetString("realtime.driver"),
		KafkaBrokers:    cfg.GetStringSlice("kafka.brokers"),
		KafkaTopic:      cfg.GetString("kafka.topic"),
		ShutdownTimeout: cfg.GetDuration("shutdown_timeout"),
	}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.CommentsLimit <= 0 {
		c.CommentsLimit = 100
	}
	if c.ImagesDir == "" {
		c.ImagesDir = "./data/profileImg"
	}
	if c.ImagesPublicURL == "" {
		c.ImagesPublicURL = "http://localhost" + c.Addr + "/images"
	}
	if c.ImagesMaxBytes <= 0 {
		c.ImagesMaxBytes = 5 * 1024 * 1024
	}
	if c.RealtimeDriver == "" {
		c.RealtimeDriver = DriverLocal
	}
	if c.KafkaTopic == "" {
		c.KafkaTopic = "comments.inserted"
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}
