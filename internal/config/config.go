// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the entire application configuration. It is populated by viper
// in cmd/root.go and handed to components explicitly; nothing below this layer
// performs ambient configuration lookups.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Payment PaymentConfig `mapstructure:"payment" yaml:"payment"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Proxy   ProxyConfig   `mapstructure:"proxy" yaml:"proxy"`
	Signup  SignupConfig  `mapstructure:"signup" yaml:"signup"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LoggerConfig controls the global zap logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"` // "console" or "json"
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"` // days
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig maps log levels to terminal colors for the console encoder.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// PaymentConfig describes the micropayment gate: what we charge, where the
// money goes, and which facilitator settles/verifies proofs.
type PaymentConfig struct {
	// PayTo is the recipient wallet address. The service refuses to do any
	// paid work while this is empty.
	PayTo          string        `mapstructure:"pay_to" yaml:"pay_to"`
	PriceUSD       float64       `mapstructure:"price_usd" yaml:"price_usd"`
	Network        string        `mapstructure:"network" yaml:"network"`
	FacilitatorURL string        `mapstructure:"facilitator_url" yaml:"facilitator_url"`
	VerifyTimeout  time.Duration `mapstructure:"verify_timeout" yaml:"verify_timeout"`
}

// BrowserConfig describes the remote antidetect browser service.
type BrowserConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// InternalKey is the privileged service credential. When set, sessions are
	// created via the internal endpoint and need no per-call funding.
	InternalKey     string        `mapstructure:"internal_key" yaml:"internal_key"`
	CommandTimeout  time.Duration `mapstructure:"command_timeout" yaml:"command_timeout"`
	SessionDuration time.Duration `mapstructure:"session_duration" yaml:"session_duration"`
}

// ProxyConfig describes the residential/mobile proxy pool the allocator draws
// from. Each run gets exactly one endpoint.
type ProxyConfig struct {
	DefaultCountry string          `mapstructure:"default_country" yaml:"default_country"`
	Endpoints      []ProxyEndpoint `mapstructure:"endpoints" yaml:"endpoints"`
}

// ProxyEndpoint is a single allocatable proxy.
type ProxyEndpoint struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	Country  string `mapstructure:"country" yaml:"country"`
}

// SignupConfig carries the target signup flow parameters.
type SignupConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// NewDefaultConfig returns a Config with sane development defaults. Viper
// overlays file and environment values on top of this.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Logger: LoggerConfig{
			Level:       "info",
			Format:      "console",
			ServiceName: "accountforge",
			MaxSize:     100,
			MaxBackups:  3,
			MaxAge:      28,
			Colors: ColorConfig{
				Debug:  "cyan",
				Info:   "green",
				Warn:   "yellow",
				Error:  "red",
				DPanic: "magenta",
				Panic:  "magenta",
				Fatal:  "magenta",
			},
		},
		Payment: PaymentConfig{
			PriceUSD:      0.50,
			Network:       "base",
			VerifyTimeout: 15 * time.Second,
		},
		Browser: BrowserConfig{
			CommandTimeout:  30 * time.Second,
			SessionDuration: 10 * time.Minute,
		},
		Proxy: ProxyConfig{
			DefaultCountry: "US",
		},
	}
}

// Validate checks the invariants the serve command depends on. The payment
// recipient is deliberately not checked here: its absence is a per-request
// 500, surfaced by the handler before any paid work (see internal/api).
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Browser.BaseURL == "" {
		errs = append(errs, errors.New("browser.base_url must not be empty"))
	}
	if c.Signup.URL == "" {
		errs = append(errs, errors.New("signup.url must not be empty"))
	}
	if c.Payment.PriceUSD <= 0 {
		errs = append(errs, fmt.Errorf("payment.price_usd must be positive, got %v", c.Payment.PriceUSD))
	}
	return errors.Join(errs...)
}
