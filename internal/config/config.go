package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for faydagen
type Config struct {
	Telegram Telegram `mapstructure:"telegram"`
	OCR      OCR      `mapstructure:"ocr"`
	Assets   Assets   `mapstructure:"assets"`
	Session  Session  `mapstructure:"session"`
	Metrics  Metrics  `mapstructure:"metrics"`
}

// Telegram holds bot transport settings
type Telegram struct {
	BotToken  string  `mapstructure:"bot_token"`
	AllowList []int64 `mapstructure:"allow_list"`
}

// OCR holds OCR.Space client settings
type OCR struct {
	APIKey         string  `mapstructure:"api_key"`
	Endpoint       string  `mapstructure:"endpoint"`
	Language       string  `mapstructure:"language"`
	Engine         int     `mapstructure:"engine"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RequestsPerMin float64 `mapstructure:"requests_per_min"`
}

// Assets holds paths to the card template and font files
type Assets struct {
	TemplatePath string `mapstructure:"template_path"`
	FontPath     string `mapstructure:"font_path"`
}

// Session holds session-store settings
type Session struct {
	TempDir         string `mapstructure:"temp_dir"`
	TTLMinutes      int    `mapstructure:"ttl_minutes"`
	SweepSpec       string `mapstructure:"sweep_spec"`
	UseSampleOnMiss bool   `mapstructure:"use_sample_on_miss"`
}

// Metrics holds the metrics listener settings
type Metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// Load loads configuration from file, env, and defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath == "" {
		configPath = filepath.Join(defaultDataDir(), "faydagen.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Environment variables (FAYDAGEN_TELEGRAM_BOT_TOKEN, FAYDAGEN_OCR_API_KEY, etc.)
	v.SetEnvPrefix("FAYDAGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ocr.endpoint", "https://api.ocr.space/parse/image")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.engine", 2)
	v.SetDefault("ocr.timeout_seconds", 60)
	v.SetDefault("ocr.requests_per_min", 30)

	v.SetDefault("assets.template_path", "assets/template.png")
	v.SetDefault("assets.font_path", "assets/font.ttf")

	v.SetDefault("session.temp_dir", filepath.Join(os.TempDir(), "faydagen"))
	v.SetDefault("session.ttl_minutes", 30)
	v.SetDefault("session.sweep_spec", "@every 5m")
	v.SetDefault("session.use_sample_on_miss", false)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", "127.0.0.1:9180")
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "faydagen")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}

	return filepath.Join(home, ".local", "share", "faydagen")
}

// loadEnvOverrides loads specific env vars that Viper doesn't handle well when
// nested keys are absent from the config file
func loadEnvOverrides(cfg *Config) {
	getEnv := func(key, fallback string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		return fallback
	}

	cfg.Telegram.BotToken = getEnv("FAYDAGEN_TELEGRAM_BOT_TOKEN", cfg.Telegram.BotToken)
	cfg.OCR.APIKey = getEnv("FAYDAGEN_OCR_API_KEY", cfg.OCR.APIKey)
	cfg.OCR.Endpoint = getEnv("FAYDAGEN_OCR_ENDPOINT", cfg.OCR.Endpoint)
	cfg.Assets.TemplatePath = getEnv("FAYDAGEN_ASSETS_TEMPLATE_PATH", cfg.Assets.TemplatePath)
	cfg.Assets.FontPath = getEnv("FAYDAGEN_ASSETS_FONT_PATH", cfg.Assets.FontPath)
	cfg.Session.TempDir = getEnv("FAYDAGEN_SESSION_TEMP_DIR", cfg.Session.TempDir)

	if ttl := os.Getenv("FAYDAGEN_SESSION_TTL_MINUTES"); ttl != "" {
		if n, err := strconv.Atoi(ttl); err == nil {
			cfg.Session.TTLMinutes = n
		}
	}

	if allow := os.Getenv("FAYDAGEN_TELEGRAM_ALLOW_LIST"); allow != "" {
		var ids []int64
		for _, part := range strings.Split(allow, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			cfg.Telegram.AllowList = ids
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required (set FAYDAGEN_TELEGRAM_BOT_TOKEN)")
	}
	if cfg.OCR.APIKey == "" {
		return fmt.Errorf("ocr.api_key is required (set FAYDAGEN_OCR_API_KEY)")
	}
	if cfg.OCR.Engine < 1 || cfg.OCR.Engine > 3 {
		return fmt.Errorf("ocr.engine must be 1, 2 or 3, got %d", cfg.OCR.Engine)
	}
	if cfg.Session.TTLMinutes <= 0 {
		return fmt.Errorf("session.ttl_minutes must be positive, got %d", cfg.Session.TTLMinutes)
	}
	return nil
}
