package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"campusqa/infrastructure/persistence"

	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
)

// Config holds all application configuration.
// Values are layered: defaults, then the YAML file, then environment
// variables, then command-line flags that were set explicitly.
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Storage configuration
	StorageBackend string `yaml:"storage_backend"`
	StateKey       string `yaml:"state_key"`
	DataDir        string `yaml:"data_dir"`

	// Redis configuration
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisPrefix   string        `yaml:"redis_prefix"`
	RedisTimeout  time.Duration `yaml:"redis_timeout"`

	// AWS configuration
	AWSRegion     string `yaml:"aws_region"`
	DynamoDBTable string `yaml:"dynamodb_table"`

	// Circuit breaker around remote storage
	BreakerEnabled          bool          `yaml:"breaker_enabled"`
	BreakerTimeout          time.Duration `yaml:"breaker_timeout"`
	BreakerFailureThreshold float64       `yaml:"breaker_failure_threshold"`
	BreakerMinRequests      uint32        `yaml:"breaker_min_requests"`

	// Display
	TimeZone   string `yaml:"time_zone"`
	TimeLayout string `yaml:"time_layout"`

	// Feature flags
	EnableMetrics bool     `yaml:"enable_metrics"`
	EnableCORS    bool     `yaml:"enable_cors"`
	CORSOrigins   []string `yaml:"cors_origins"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		ServerAddress:           ":8080",
		Environment:             "development",
		LogLevel:                "info",
		StorageBackend:          BackendFile,
		StateKey:                persistence.DefaultStateKey,
		DataDir:                 "data",
		RedisAddr:               "localhost:6379",
		RedisPrefix:             "campusqa:",
		RedisTimeout:            3 * time.Second,
		AWSRegion:               "us-west-2",
		DynamoDBTable:           "campusqa",
		BreakerEnabled:          true,
		BreakerTimeout:          15 * time.Second,
		BreakerFailureThreshold: 0.6,
		BreakerMinRequests:      3,
		TimeZone:                "Local",
		TimeLayout:              "1/2/2006, 3:04:05 PM",
		EnableMetrics:           true,
		EnableCORS:              false,
		CORSOrigins:             []string{"http://localhost:3000"},
	}
}

// LoadConfig loads configuration from the process arguments and environment
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds the configuration from args, the optional config file and the environment
func Load(args []string) (*Config, error) {
	cfg := Default()

	fs := pflag.NewFlagSet("campusqa", pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to a YAML config file")
	addr := fs.String("addr", cfg.ServerAddress, "HTTP listen address")
	env := fs.String("env", cfg.Environment, "environment (development, production)")
	logLevel := fs.String("log-level", cfg.LogLevel, "log level")
	backend := fs.String("storage", cfg.StorageBackend, "storage backend (file, memory, redis, dynamodb)")
	dataDir := fs.String("data-dir", cfg.DataDir, "directory for the file backend")
	redisAddr := fs.String("redis-addr", cfg.RedisAddr, "Redis address")
	table := fs.String("dynamodb-table", cfg.DynamoDBTable, "DynamoDB table name")
	stateKey := fs.String("state-key", cfg.StateKey, "key the forum state is stored under")
	timeZone := fs.String("time-zone", cfg.TimeZone, "IANA time zone for displayed timestamps")
	metrics := fs.Bool("metrics", cfg.EnableMetrics, "serve Prometheus metrics on /metrics")
	corsEnabled := fs.Bool("cors", cfg.EnableCORS, "enable CORS")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	path := *configFile
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if fs.Changed("addr") {
		cfg.ServerAddress = *addr
	}
	if fs.Changed("env") {
		cfg.Environment = *env
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if fs.Changed("storage") {
		cfg.StorageBackend = *backend
	}
	if fs.Changed("data-dir") {
		cfg.DataDir = *dataDir
	}
	if fs.Changed("redis-addr") {
		cfg.RedisAddr = *redisAddr
	}
	if fs.Changed("dynamodb-table") {
		cfg.DynamoDBTable = *table
	}
	if fs.Changed("state-key") {
		cfg.StateKey = *stateKey
	}
	if fs.Changed("time-zone") {
		cfg.TimeZone = *timeZone
	}
	if fs.Changed("metrics") {
		cfg.EnableMetrics = *metrics
	}
	if fs.Changed("cors") {
		cfg.EnableCORS = *corsEnabled
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.StorageBackend = getEnv("STORAGE_BACKEND", c.StorageBackend)
	c.StateKey = getEnv("STATE_KEY", c.StateKey)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.RedisPrefix = getEnv("REDIS_PREFIX", c.RedisPrefix)
	c.RedisTimeout = getEnvDuration("REDIS_TIMEOUT", c.RedisTimeout)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.DynamoDBTable))

	c.BreakerEnabled = getEnvBool("BREAKER_ENABLED", c.BreakerEnabled)
	c.BreakerTimeout = getEnvDuration("BREAKER_TIMEOUT", c.BreakerTimeout)
	c.BreakerMinRequests = uint32(getEnvInt("BREAKER_MIN_REQUESTS", int(c.BreakerMinRequests)))
	if value := os.Getenv("BREAKER_FAILURE_THRESHOLD"); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			c.BreakerFailureThreshold = f
		}
	}

	c.TimeZone = getEnv("TIME_ZONE", c.TimeZone)
	c.TimeLayout = getEnv("TIME_LAYOUT", c.TimeLayout)

	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	if value := os.Getenv("CORS_ORIGINS"); value != "" {
		c.CORSOrigins = splitList(value)
	}
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("SERVER_ADDRESS is required")
	}
	if c.StateKey == "" {
		return fmt.Errorf("STATE_KEY is required")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err)
	}

	switch c.StorageBackend {
	case BackendMemory:
	case BackendFile:
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required for the file backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case BackendDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb backend")
		}
		if c.AWSRegion == "" {
			return fmt.Errorf("AWS_REGION is required for the dynamodb backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.BreakerFailureThreshold <= 0 || c.BreakerFailureThreshold > 1 {
		return fmt.Errorf("BREAKER_FAILURE_THRESHOLD must be in (0, 1]")
	}

	return nil
}

// Location resolves the display time zone
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsRemoteStorage reports whether the backend lives across the network
func (c *Config) IsRemoteStorage() bool {
	return c.StorageBackend == BackendRedis || c.StorageBackend == BackendDynamoDB
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
