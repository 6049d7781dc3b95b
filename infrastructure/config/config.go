package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store backends
const (
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`

	// AWS configuration
	AWSRegion       string `yaml:"aws_region"`
	TableName       string `yaml:"table_name"`
	AuthorIndexName string `yaml:"author_index_name"`
	StoreBackend    string `yaml:"store_backend"`
	EventBusName    string `yaml:"event_bus_name"`
	EventSource     string `yaml:"event_source"`

	// Lambda configuration
	FunctionOperation string `yaml:"function_operation"`

	// Relay configuration
	Relay RelayConfig `yaml:"relay"`

	// Presentation
	APIBaseURL string `yaml:"api_base_url"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Feature flags
	EnableMetrics bool     `yaml:"enable_metrics"`
	EnableTracing bool     `yaml:"enable_tracing"`
	EnableCORS    bool     `yaml:"enable_cors"`
	CORSOrigins   []string `yaml:"cors_origins"`
}

// RelayConfig holds the upstream function URLs of the relay proxy.
// URLs left empty are looked up in SSM under SSMPrefix when it is set.
type RelayConfig struct {
	Upstreams     map[string]string `yaml:"upstreams"`
	SSMPrefix     string            `yaml:"ssm_prefix"`
	SSMRegion     string            `yaml:"ssm_region"`
	SigningRegion string            `yaml:"signing_region"`
	// Breaker settings, per upstream
	BreakerMaxRequests uint32 `yaml:"breaker_max_requests"`
	BreakerTimeoutSec  int    `yaml:"breaker_timeout_sec"`
	BreakerMinRequests uint32 `yaml:"breaker_min_requests"`
}

// Operations are the per-function entry points, named as in the public paths
var Operations = []string{"getBook", "getBooks", "createBook", "updateBook", "deleteBook"}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		ServerAddress:   ":8080",
		Environment:     "development",
		AWSRegion:       "us-east-1",
		TableName:       "books",
		AuthorIndexName: "author",
		StoreBackend:    StoreDynamoDB,
		EventSource:     "books.backend",
		APIBaseURL:      "http://localhost:8080",
		LogLevel:        "info",
		EnableCORS:      true,
		CORSOrigins:     []string{"*"},
		Relay: RelayConfig{
			Upstreams:          make(map[string]string),
			SSMRegion:          "us-east-1",
			BreakerMaxRequests: 5,
			BreakerTimeoutSec:  60,
			BreakerMinRequests: 5,
		},
	}
}

// LoadConfig loads configuration from environment variables, on top of
// the YAML file named by CONFIG_FILE when set, on top of Defaults.
func LoadConfig() (*Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.TableName = getEnv("TABLE_NAME", cfg.TableName)
	cfg.AuthorIndexName = getEnv("AUTHOR_INDEX_NAME", cfg.AuthorIndexName)
	cfg.StoreBackend = getEnv("STORE_BACKEND", cfg.StoreBackend)
	cfg.EventBusName = getEnv("EVENT_BUS_NAME", cfg.EventBusName)
	cfg.EventSource = getEnv("EVENT_SOURCE", cfg.EventSource)
	cfg.FunctionOperation = getEnv("FUNCTION_OPERATION", or(cfg.FunctionOperation, handlerOperation()))
	cfg.APIBaseURL = getEnv("API_BASE_URL", cfg.APIBaseURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.EnableMetrics)
	cfg.EnableTracing = getEnvBool("ENABLE_TRACING", cfg.EnableTracing)
	cfg.EnableCORS = getEnvBool("ENABLE_CORS", cfg.EnableCORS)
	cfg.CORSOrigins = getEnvList("CORS_ALLOWED_ORIGINS", cfg.CORSOrigins)

	if cfg.Relay.Upstreams == nil {
		cfg.Relay.Upstreams = make(map[string]string)
	}
	for _, op := range Operations {
		key := "RELAY_" + strings.ToUpper(op) + "_URL"
		if url := getEnv(key, cfg.Relay.Upstreams[op]); url != "" {
			cfg.Relay.Upstreams[op] = url
		}
	}
	cfg.Relay.SSMPrefix = getEnv("RELAY_SSM_PREFIX", cfg.Relay.SSMPrefix)
	cfg.Relay.SSMRegion = getEnv("RELAY_SSM_REGION", cfg.Relay.SSMRegion)
	cfg.Relay.SigningRegion = getEnv("RELAY_SIGNING_REGION", cfg.Relay.SigningRegion)
	cfg.Relay.BreakerMaxRequests = uint32(getEnvInt("RELAY_BREAKER_MAX_REQUESTS", int(cfg.Relay.BreakerMaxRequests)))
	cfg.Relay.BreakerTimeoutSec = getEnvInt("RELAY_BREAKER_TIMEOUT_SEC", cfg.Relay.BreakerTimeoutSec)
	cfg.Relay.BreakerMinRequests = uint32(getEnvInt("RELAY_BREAKER_MIN_REQUESTS", int(cfg.Relay.BreakerMinRequests)))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreDynamoDB:
		if c.TableName == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
		if c.AuthorIndexName == "" {
			return fmt.Errorf("AUTHOR_INDEX_NAME is required")
		}
	case StoreMemory:
		if c.IsProduction() {
			return fmt.Errorf("STORE_BACKEND=memory is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.FunctionOperation != "" && !IsOperation(c.FunctionOperation) {
		return fmt.Errorf("unknown FUNCTION_OPERATION %q", c.FunctionOperation)
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsOperation reports whether name is one of the book operations
func IsOperation(name string) bool {
	for _, op := range Operations {
		if op == name {
			return true
		}
	}
	return false
}

// handlerOperation derives the operation from the Lambda _HANDLER setting,
// accepting both "getBookHandler" and "books.getBookHandler" forms.
func handlerOperation() string {
	handler := os.Getenv("_HANDLER")
	if i := strings.LastIndex(handler, "."); i >= 0 {
		handler = handler[i+1:]
	}
	op := strings.TrimSuffix(handler, "Handler")
	if IsOperation(op) {
		return op
	}
	return ""
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList reads a comma separated list
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
