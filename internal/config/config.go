package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/yaml.v3"
)

type RoomConfig struct {
	CodeLength    int `yaml:"code_length" json:"codeLength"`
	CodeAttempts  int `yaml:"code_attempts" json:"codeAttempts"`
	MaxChatLength int `yaml:"max_chat_length" json:"maxChatLength"`
}

type LifecycleConfig struct {
	GraceInterval time.Duration `yaml:"grace_interval" json:"graceInterval"`
	SweepInterval time.Duration `yaml:"sweep_interval" json:"sweepInterval"`
	MaxAge        time.Duration `yaml:"max_age" json:"maxAge"`
}

type WSConfig struct {
	MaxMessageSize int64         `yaml:"max_message_size"`
	RateBurst      int           `yaml:"rate_burst"`
	RateInterval   time.Duration `yaml:"rate_interval"`
	SendBuffer     int           `yaml:"send_buffer"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type Config struct {
	HTTPAddr       string          `yaml:"http_addr"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	RedisURL       string          `yaml:"redis_url"`
	MessagesFile   string          `yaml:"messages_file"`
	Room           RoomConfig      `yaml:"room"`
	Lifecycle      LifecycleConfig `yaml:"lifecycle"`
	WS             WSConfig        `yaml:"ws"`
	Log            LogConfig       `yaml:"log"`
}

func Default() Config {
	return Config{
		HTTPAddr:       ":8080",
		AllowedOrigins: []string{"*"},
		Room: RoomConfig{
			CodeLength:    6,
			CodeAttempts:  10,
			MaxChatLength: 500,
		},
		Lifecycle: LifecycleConfig{
			GraceInterval: 5 * time.Minute,
			SweepInterval: 30 * time.Minute,
			MaxAge:        2 * time.Hour,
		},
		WS: WSConfig{
			MaxMessageSize: 4096,
			RateBurst:      20,
			RateInterval:   time.Second,
			SendBuffer:     64,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func getenvString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func getenvList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// Load builds the configuration from defaults, the optional YAML file named by
// CONFIG_FILE, and finally environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.HTTPAddr = getenvString("HTTP_ADDR", cfg.HTTPAddr)
	cfg.AllowedOrigins = getenvList("ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.RedisURL = getenvString("REDIS_URL", cfg.RedisURL)
	cfg.MessagesFile = getenvString("MESSAGES_FILE", cfg.MessagesFile)

	cfg.Room.CodeLength = getenvInt("ROOM_CODE_LENGTH", cfg.Room.CodeLength)
	cfg.Room.CodeAttempts = getenvInt("ROOM_CODE_ATTEMPTS", cfg.Room.CodeAttempts)
	cfg.Room.MaxChatLength = getenvInt("CHAT_MAX_LENGTH", cfg.Room.MaxChatLength)

	cfg.Lifecycle.GraceInterval = getenvDuration("GRACE_INTERVAL", cfg.Lifecycle.GraceInterval)
	cfg.Lifecycle.SweepInterval = getenvDuration("SWEEP_INTERVAL", cfg.Lifecycle.SweepInterval)
	cfg.Lifecycle.MaxAge = getenvDuration("MAX_ROOM_AGE", cfg.Lifecycle.MaxAge)

	cfg.WS.MaxMessageSize = int64(getenvInt("WS_MAX_MESSAGE_SIZE", int(cfg.WS.MaxMessageSize)))
	cfg.WS.RateBurst = getenvInt("WS_RATE_BURST", cfg.WS.RateBurst)
	cfg.WS.RateInterval = getenvDuration("WS_RATE_INTERVAL", cfg.WS.RateInterval)
	cfg.WS.SendBuffer = getenvInt("WS_SEND_BUFFER", cfg.WS.SendBuffer)

	cfg.Log.Level = getenvString("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenvString("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.File = getenvString("LOG_FILE", cfg.Log.File)

	return cfg.sanitize(), nil
}

// sanitize replaces non-positive values with defaults.
func (c Config) sanitize() Config {
	d := Default()
	if c.HTTPAddr == "" {
		c.HTTPAddr = d.HTTPAddr
	}
	if c.Room.CodeLength <= 0 {
		c.Room.CodeLength = d.Room.CodeLength
	}
	if c.Room.CodeAttempts <= 0 {
		c.Room.CodeAttempts = d.Room.CodeAttempts
	}
	if c.Room.MaxChatLength <= 0 {
		c.Room.MaxChatLength = d.Room.MaxChatLength
	}
	if c.Lifecycle.GraceInterval <= 0 {
		c.Lifecycle.GraceInterval = d.Lifecycle.GraceInterval
	}
	if c.Lifecycle.SweepInterval <= 0 {
		c.Lifecycle.SweepInterval = d.Lifecycle.SweepInterval
	}
	if c.Lifecycle.MaxAge <= 0 {
		c.Lifecycle.MaxAge = d.Lifecycle.MaxAge
	}
	if c.WS.MaxMessageSize <= 0 {
		c.WS.MaxMessageSize = d.WS.MaxMessageSize
	}
	if c.WS.RateBurst <= 0 {
		c.WS.RateBurst = d.WS.RateBurst
	}
	if c.WS.RateInterval <= 0 {
		c.WS.RateInterval = d.WS.RateInterval
	}
	if c.WS.SendBuffer <= 0 {
		c.WS.SendBuffer = d.WS.SendBuffer
	}
	return c
}

// AllowAllOrigins reports whether "*" is among the allowed origins.
func (c Config) AllowAllOrigins() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}
