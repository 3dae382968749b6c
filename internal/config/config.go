package config

import (
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/riposte/riposte/internal/settings"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Store       StoreConfig       `yaml:"store"`
	Redis       RedisConfig       `yaml:"redis"`
	LLM         LLMConfig         `yaml:"llm"`
	Mail        MailConfig        `yaml:"mail"`
	Calendar    CalendarConfig    `yaml:"calendar"`
	Agent       AgentConfig       `yaml:"agent"`
	Suppression []SuppressionRule `yaml:"suppression"`
}

// ServerConfig holds HTTP and SMTP listener settings
type ServerConfig struct {
	HTTPPort       int       `yaml:"http_port"`
	SMTPPort       int       `yaml:"smtp_port"`
	SMTPHost       string    `yaml:"smtp_host"`
	TLS            TLSConfig `yaml:"tls"`
	AllowedDomains []string  `yaml:"allowed_domains"`
	// ReplyDomain is the domain tracking aliases live on
	// (tracking-<token>@<reply_domain>). Empty disables outbound stamping.
	ReplyDomain string `yaml:"reply_domain"`
}

// TLSConfig holds TLS settings
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// StoreConfig selects and configures the event store backend
type StoreConfig struct {
	Backend      string `yaml:"backend"` // "sqlite", "weaviate", or "memory"
	Path         string `yaml:"path"`
	WeaviateHost string `yaml:"weaviate_host"` // host:port, no scheme
}

// RedisConfig holds dedup filter settings; an empty addr selects the
// in-memory filter
type RedisConfig struct {
	Addr               string `yaml:"addr"`
	Password           string `yaml:"password"`
	DB                 int    `yaml:"db"`
	DedupWindowSeconds int    `yaml:"dedup_window_seconds"`
}

// DedupWindow returns the configured dedup window
func (r *RedisConfig) DedupWindow() time.Duration {
	return time.Duration(r.DedupWindowSeconds) * time.Second
}

// LLMConfig holds LLM provider settings for classification and enhancement
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "openai" or "none"
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// MailConfig holds outbound email settings
type MailConfig struct {
	Provider    string `yaml:"provider"` // "resend", "smtp", or empty for none
	ResendKey   string `yaml:"resend_key"`
	FromAddress string `yaml:"from_address"`
	FromName    string `yaml:"from_name"`
	// SMTP settings (if provider is "smtp")
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// CalendarConfig holds the scheduling service settings
type CalendarConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the calendar client timeout
func (c *CalendarConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AgentConfig holds the reply agent identity and voice
type AgentConfig struct {
	// UserID keys settings lookups for this deployment
	UserID   string                 `yaml:"user_id"`
	Settings settings.AgentSettings `yaml:"settings"`
	// Templates overrides reply templates per intent name
	Templates map[string]string `yaml:"templates"`
}

// SuppressionRule defines mail that must never be answered
type SuppressionRule struct {
	Name    string `yaml:"name"`
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Subject string `yaml:"subject"`
}

// CompiledMatch holds compiled regex patterns for matching
type CompiledMatch struct {
	From    *regexp.Regexp
	To      *regexp.Regexp
	Subject *regexp.Regexp
}

// Compile compiles the rule patterns into regex
func (r *SuppressionRule) Compile() (*CompiledMatch, error) {
	cm := &CompiledMatch{}
	var err error

	if r.From != "" {
		cm.From, err = regexp.Compile(r.From)
		if err != nil {
			return nil, err
		}
	}

	if r.To != "" {
		cm.To, err = regexp.Compile(r.To)
		if err != nil {
			return nil, err
		}
	}

	if r.Subject != "" {
		cm.Subject, err = regexp.Compile(r.Subject)
		if err != nil {
			return nil, err
		}
	}

	return cm, nil
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	cfg.setDefaults()

	return &cfg, nil
}

// expandEnvVars expands ${VAR} patterns in the string
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "${" + key + "}"
	})
}

// setDefaults sets default values for missing configuration
func (c *Config) setDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.SMTPPort == 0 {
		c.Server.SMTPPort = 2525
	}
	if c.Server.SMTPHost == "" {
		c.Server.SMTPHost = "0.0.0.0"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "sqlite"
	}
	if c.Store.Path == "" {
		c.Store.Path = "./riposte.db"
	}
	if c.Redis.DedupWindowSeconds == 0 {
		c.Redis.DedupWindowSeconds = 30
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-5.2"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.Calendar.TimeoutSeconds == 0 {
		c.Calendar.TimeoutSeconds = 10
	}
	if c.Agent.UserID == "" {
		c.Agent.UserID = "default"
	}
}
