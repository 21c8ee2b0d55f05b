// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/speedsqueak/lib/bus"
)

// EnvironmentVariable names the config file for Load.
const EnvironmentVariable = "SPEEDSQUEAK_CONFIG"

// Environment is the deployment type.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Object store and warehouse kinds.
const (
	ObjectStoreAzure      = "azure"
	ObjectStoreFilesystem = "filesystem"
	WarehouseSnowflake    = "snowflake"
	WarehouseSQLite       = "sqlite"
)

// Config is the configuration for every speedsqueak binary.
type Config struct {
	Environment Environment `yaml:"environment"`

	// Location labels every warehouse row with where the camera is.
	Location string `yaml:"location"`

	// LogLevel is debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`

	Paths       PathsConfig       `yaml:"paths"`
	Bus         BusConfig         `yaml:"bus"`
	ObjectStore ObjectStoreConfig `yaml:"object_store"`
	Warehouse   WarehouseConfig   `yaml:"warehouse"`
	Heartbeat   HeartbeatConfig   `yaml:"heartbeat"`

	// Per-environment sections, decoded over the base values.
	Development *yaml.Node `yaml:"development,omitempty"`
	Staging     *yaml.Node `yaml:"staging,omitempty"`
	Production  *yaml.Node `yaml:"production,omitempty"`
}

type PathsConfig struct {
	// Database is the event store file.
	Database string `yaml:"database"`

	// ImageDir is where relative camera file references resolve.
	ImageDir string `yaml:"image_dir"`

	// LogFile, if set, receives a copy of every log record.
	LogFile string `yaml:"log_file"`

	// StatusSocket is the uploader's CBOR status socket.
	StatusSocket string `yaml:"status_socket"`
}

type BusConfig struct {
	// Transport is zmq, redis, kafka, or memory.
	Transport string      `yaml:"transport"`
	ZMQ       ZMQConfig   `yaml:"zmq"`
	Redis     RedisConfig `yaml:"redis"`
	Kafka     KafkaConfig `yaml:"kafka"`
}

type ZMQConfig struct {
	// Endpoints the uploader subscribes to.
	Endpoints []string `yaml:"endpoints"`

	// Bind is where publishers (heartbeat, ctl emit) bind.
	Bind string `yaml:"bind"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

type ObjectStoreConfig struct {
	// Kind is azure or filesystem.
	Kind       string           `yaml:"kind"`
	Azure      AzureConfig      `yaml:"azure"`
	Filesystem FilesystemConfig `yaml:"filesystem"`
}

type AzureConfig struct {
	ConnectionString string `yaml:"connection_string"`
	Container        string `yaml:"container"`
}

type FilesystemConfig struct {
	Root string `yaml:"root"`
}

type WarehouseConfig struct {
	// Kind is snowflake or sqlite.
	Kind      string          `yaml:"kind"`
	Snowflake SnowflakeConfig `yaml:"snowflake"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
}

type SnowflakeConfig struct {
	Account   string `yaml:"account"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Database  string `yaml:"database"`
	Schema    string `yaml:"schema"`
	Warehouse string `yaml:"warehouse"`
	Table     string `yaml:"table"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type HeartbeatConfig struct {
	Interval time.Duration `yaml:"interval"`
	Message  string        `yaml:"message"`
}

// Default returns the base values a config file is decoded over.
func Default() *Config {
	return &Config{
		Environment: Development,
		Location:    "speedsqueak3",
		LogLevel:    "info",
		Paths: PathsConfig{
			Database:     "events.db",
			ImageDir:     "/usr/local/src/speedsqueak/camera",
			StatusSocket: "/run/speedsqueak/uploader.sock",
		},
		Bus: BusConfig{
			Transport: bus.TransportZMQ,
			ZMQ: ZMQConfig{
				Endpoints: append([]string(nil), bus.DefaultZMQEndpoints...),
				Bind:      "tcp://*:11207",
			},
			Redis: RedisConfig{Address: "localhost:6379"},
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				GroupID: "speedsqueak-uploader",
			},
		},
		ObjectStore: ObjectStoreConfig{
			Kind: ObjectStoreAzure,
			Azure: AzureConfig{
				ConnectionString: "${AZURE_CONNECTION_STRING}",
				Container:        "images",
			},
		},
		Warehouse: WarehouseConfig{
			Kind: WarehouseSnowflake,
			Snowflake: SnowflakeConfig{
				Account:   "${SNOWFLAKE_ACCOUNT}",
				User:      "${SNOWFLAKE_USER}",
				Password:  "${SNOWFLAKE_PASSWORD}",
				Database:  "speedsqueak",
				Schema:    "public",
				Warehouse: "COMPUTE_WH",
				Table:     "events",
			},
			SQLite: SQLiteConfig{Path: "warehouse.db"},
		},
		Heartbeat: HeartbeatConfig{
			Interval: 60 * time.Second,
			Message:  "Welcome to Costco, I love you.",
		},
	}
}

// Load loads the file named by SPEEDSQUEAK_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your speedsqueak.yaml, or use --config", EnvironmentVariable)
	}
	return LoadFile(path)
}

// LoadFile loads and validates the file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes data over Default, applies the section for the
// configured environment, expands variables, and validates.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ParseFlag resolves the --config flag value: the flag wins, then
// SPEEDSQUEAK_CONFIG.
func ParseFlag(flagPath string) (*Config, error) {
	if flagPath != "" {
		return LoadFile(flagPath)
	}
	return Load()
}

func (c *Config) applyEnvironmentOverrides() error {
	var section *yaml.Node
	switch c.Environment {
	case Development:
		section = c.Development
	case Staging:
		section = c.Staging
	case Production:
		section = c.Production
	}
	if section == nil {
		return nil
	}

	// Decoding a mapping into a populated struct only sets the keys
	// present in the mapping.
	environment := c.Environment
	if err := section.Decode(c); err != nil {
		return fmt.Errorf("config: %s section: %w", environment, err)
	}
	c.Environment = environment
	return nil
}

var variablePattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVariables expands ${VAR} and ${VAR:-default} from the process
// environment in path, address, and credential fields.
func (c *Config) expandVariables() {
	for _, field := range []*string{
		&c.Location,
		&c.Paths.Database,
		&c.Paths.ImageDir,
		&c.Paths.LogFile,
		&c.Paths.StatusSocket,
		&c.Bus.Redis.Address,
		&c.Bus.Redis.Password,
		&c.ObjectStore.Azure.ConnectionString,
		&c.ObjectStore.Filesystem.Root,
		&c.Warehouse.Snowflake.Account,
		&c.Warehouse.Snowflake.User,
		&c.Warehouse.Snowflake.Password,
		&c.Warehouse.SQLite.Path,
	} {
		*field = expand(*field)
	}
	for index := range c.Bus.ZMQ.Endpoints {
		c.Bus.ZMQ.Endpoints[index] = expand(c.Bus.ZMQ.Endpoints[index])
	}
	for index := range c.Bus.Kafka.Brokers {
		c.Bus.Kafka.Brokers[index] = expand(c.Bus.Kafka.Brokers[index])
	}
}

func expand(value string) string {
	return variablePattern.ReplaceAllStringFunc(value, func(match string) string {
		parts := variablePattern.FindStringSubmatch(match)
		if environmentValue := os.Getenv(parts[1]); environmentValue != "" {
			return environmentValue
		}
		return parts[2]
	})
}

// Validate reports every problem at once. Credentials are not checked
// here; the sink constructors reject missing ones.
func (c *Config) Validate() error {
	var errs []error

	switch c.Environment {
	case Development, Staging, Production:
	default:
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}
	if c.Location == "" {
		errs = append(errs, errors.New("location is required"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Paths.Database == "" {
		errs = append(errs, errors.New("paths.database is required"))
	}

	switch c.Bus.Transport {
	case bus.TransportZMQ, bus.TransportRedis, bus.TransportKafka, bus.TransportMemory:
	default:
		errs = append(errs, fmt.Errorf("bus.transport must be one of zmq, redis, kafka, memory: got %q", c.Bus.Transport))
	}

	switch c.ObjectStore.Kind {
	case ObjectStoreAzure:
	case ObjectStoreFilesystem:
		if c.ObjectStore.Filesystem.Root == "" {
			errs = append(errs, errors.New("object_store.filesystem.root is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("object_store.kind must be azure or filesystem: got %q", c.ObjectStore.Kind))
	}

	switch c.Warehouse.Kind {
	case WarehouseSnowflake:
	case WarehouseSQLite:
		if c.Warehouse.SQLite.Path == "" {
			errs = append(errs, errors.New("warehouse.sqlite.path is required"))
		} else if c.Paths.Database != "" && filepath.Clean(c.Warehouse.SQLite.Path) == filepath.Clean(c.Paths.Database) {
			// The warehouse insert runs inside the event store's write
			// transaction and would block on its own lock.
			errs = append(errs, fmt.Errorf("warehouse.sqlite.path must differ from paths.database: both are %q", c.Paths.Database))
		}
	default:
		errs = append(errs, fmt.Errorf("warehouse.kind must be snowflake or sqlite: got %q", c.Warehouse.Kind))
	}

	if c.Heartbeat.Interval <= 0 {
		errs = append(errs, fmt.Errorf("heartbeat.interval must be positive: got %s", c.Heartbeat.Interval))
	}

	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// BusOptions converts the bus section for bus.Open and
// bus.OpenPublisher.
func (c *Config) BusOptions(logger *slog.Logger) bus.Options {
	return bus.Options{
		Transport: c.Bus.Transport,
		ZMQ:       bus.ZMQOptions{Endpoints: c.Bus.ZMQ.Endpoints},
		Redis: bus.RedisOptions{
			Address:  c.Bus.Redis.Address,
			Password: c.Bus.Redis.Password,
			DB:       c.Bus.Redis.DB,
		},
		Kafka: bus.KafkaOptions{
			Brokers: c.Bus.Kafka.Brokers,
			GroupID: c.Bus.Kafka.GroupID,
		},
		Logger: logger,
	}
}
