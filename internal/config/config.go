package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Simulator Simulator `mapstructure:"simulator"`
	Override  Override  `mapstructure:"override"`
	Logger    Logger    `mapstructure:"logger"`
	Server    Server    `mapstructure:"server"`
	Client    Client    `mapstructure:"client"`
}

// Simulator holds the parameters of the simulated EUR/USD random walk.
type Simulator struct {
	InitialRate  float64       `mapstructure:"initial_rate"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
	MaxDelta     float64       `mapstructure:"max_delta"`
	Seed         int64         `mapstructure:"seed"`
}

// Override holds the override acceptance policy.
type Override struct {
	TolerancePercent float64 `mapstructure:"tolerance_percent"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Client holds the configuration for the API client used by fxctl.
type Client struct {
	BaseURL        string        `mapstructure:"base_url"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("simulator.initial_rate", 1.1)
	v.SetDefault("simulator.tick_interval", 3*time.Second)
	v.SetDefault("simulator.max_delta", 0.05)
	v.SetDefault("simulator.seed", 0)

	v.SetDefault("override.tolerance_percent", 2.0)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("server.port", 8080)

	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.rate_limit", 10)      // requests per second
	v.SetDefault("client.rate_limit_burst", 5) // burst size
	v.SetDefault("client.timeout", 5*time.Second)
}

// Default returns the configuration built from defaults only.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return cfg
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; defaults and environment apply.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")

	// Allow environment variables to override config file
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	SetDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}
