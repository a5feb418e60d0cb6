// Package config loads server settings from defaults, an optional YAML file,
// a .env file and the process environment, in that order of precedence.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Addr           string        `yaml:"addr"`
	Debug          bool          `yaml:"debug"`
	SecureCookie   bool          `yaml:"secure_cookie"`
	EnvFile        string        `yaml:"env_file"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`

	Gemini   Gemini   `yaml:"gemini"`
	PayPal   PayPal   `yaml:"paypal"`
	Checkout Checkout `yaml:"checkout"`
}

type Gemini struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

type PayPal struct {
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
	ReadyTimeout time.Duration `yaml:"ready_timeout"`
}

// Checkout is the fixed order every reading is sold as.
type Checkout struct {
	Price       string `yaml:"price"`
	Currency    string `yaml:"currency"`
	Description string `yaml:"description"`
}

// LoadDefaults sets development defaults. PayPal points at the sandbox.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.EnvFile = ".env"
	c.SessionTTL = time.Hour
	c.SweepInterval = 5 * time.Minute
	c.Gemini = Gemini{Model: "gemini-2.5-flash", Temperature: 0.7}
	c.PayPal = PayPal{
		BaseURL:      "https://api-m.sandbox.paypal.com",
		Timeout:      30 * time.Second,
		PollInterval: 500 * time.Millisecond,
		ReadyTimeout: 10 * time.Second,
	}
	c.Checkout = Checkout{
		Price:       "5.00",
		Currency:    "USD",
		Description: "DestinyMatch Zi Wei Dou Shu Report",
	}
}

// Load builds a Config. path may be empty, in which case no YAML file is read.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(cfg.EnvFile); err != nil {
		return nil, err
	}
	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// loadDotEnv never overrides variables that are already set.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	setBool(&c.Debug, "DEBUG")
	setBool(&c.SecureCookie, "SECURE_COOKIE")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}

	// API_KEY is the legacy name; GEMINI_API_KEY wins when both are set.
	setString(&c.Gemini.APIKey, "API_KEY")
	setString(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.Gemini.Model, "GEMINI_MODEL")

	setString(&c.PayPal.ClientID, "PAYPAL_CLIENT_ID")
	setString(&c.PayPal.ClientSecret, "PAYPAL_CLIENT_SECRET")
	setString(&c.PayPal.BaseURL, "PAYPAL_BASE_URL")

	setString(&c.Checkout.Price, "CHECKOUT_PRICE")
	setString(&c.Checkout.Currency, "CHECKOUT_CURRENCY")
}

func (c *Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "addr is empty")
	}
	if price, err := strconv.ParseFloat(c.Checkout.Price, 64); err != nil || price <= 0 {
		problems = append(problems, fmt.Sprintf("checkout price %q is not a positive amount", c.Checkout.Price))
	}
	if len(c.Checkout.Currency) != 3 {
		problems = append(problems, fmt.Sprintf("checkout currency %q is not an ISO 4217 code", c.Checkout.Currency))
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		problems = append(problems, "gemini temperature must be within 0..2")
	}
	if c.SweepInterval <= 0 {
		problems = append(problems, "sweep_interval must be positive")
	}
	if c.PayPal.PollInterval <= 0 || c.PayPal.ReadyTimeout <= 0 {
		problems = append(problems, "paypal poll_interval and ready_timeout must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// AnalysisConfigured reports whether a generative AI key is present.
func (c *Config) AnalysisConfigured() bool {
	return strings.TrimSpace(c.Gemini.APIKey) != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setBool ignores unset and unparsable values.
func setBool(dst *bool, key string) {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
