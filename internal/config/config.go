package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Shelves    ShelvesConfig    `yaml:"shelves"`
	Simulation SimulationConfig `yaml:"simulation"`
	Database   DatabaseConfig   `yaml:"database"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	HTTP       HTTPConfig       `yaml:"http"`
	Log        LogConfig        `yaml:"log"`
}

type ShelvesConfig struct {
	Hot             int  `yaml:"hot"`
	Cold            int  `yaml:"cold"`
	Frozen          int  `yaml:"frozen"`
	Overflow        int  `yaml:"overflow"`
	CheckInvariants bool `yaml:"check_invariants"`
}

type SimulationConfig struct {
	OrdersFile          string        `yaml:"orders_file"`
	IngestRate          float64       `yaml:"ingest_rate"`
	Chefs               int           `yaml:"chefs"`
	Couriers            int           `yaml:"couriers"`
	PickupMin           time.Duration `yaml:"pickup_min"`
	PickupMax           time.Duration `yaml:"pickup_max"`
	CookTime            time.Duration `yaml:"cook_time"`
	CleanupInitialDelay time.Duration `yaml:"cleanup_initial_delay"`
	CleanupInterval     time.Duration `yaml:"cleanup_interval"`
	Seed                int64         `yaml:"seed"`
}

type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used for any field the file leaves out
func Default() Config {
	return Config{
		Shelves: ShelvesConfig{Hot: 10, Cold: 10, Frozen: 10, Overflow: 15},
		Simulation: SimulationConfig{
			OrdersFile:          "orders.json",
			IngestRate:          2,
			Chefs:               4,
			Couriers:            8,
			PickupMin:           2 * time.Second,
			PickupMax:           6 * time.Second,
			CleanupInitialDelay: 30 * time.Second,
			CleanupInterval:     10 * time.Second,
		},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "kitchen", Database: "ckitchens"},
		RabbitMQ: RabbitMQConfig{Host: "localhost", Port: 5672, User: "guest", Password: "guest"},
		HTTP:     HTTPConfig{Port: 3000},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := Parse(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse decodes YAML into cfg, keeping values the document does not set
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	var errs []error

	for name, v := range map[string]int{
		"shelves.hot":      c.Shelves.Hot,
		"shelves.cold":     c.Shelves.Cold,
		"shelves.frozen":   c.Shelves.Frozen,
		"shelves.overflow": c.Shelves.Overflow,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}

	s := c.Simulation
	if s.IngestRate <= 0 {
		errs = append(errs, errors.New("simulation.ingest_rate must be positive"))
	}
	if s.Chefs < 1 {
		errs = append(errs, errors.New("simulation.chefs must be at least 1"))
	}
	if s.Couriers < 1 {
		errs = append(errs, errors.New("simulation.couriers must be at least 1"))
	}
	if s.PickupMin < 0 || s.PickupMax < s.PickupMin {
		errs = append(errs, errors.New("simulation.pickup_max must not be below pickup_min"))
	}
	if s.CookTime < 0 || s.CleanupInitialDelay < 0 {
		errs = append(errs, errors.New("simulation durations must not be negative"))
	}
	if s.CleanupInterval <= 0 {
		errs = append(errs, errors.New("simulation.cleanup_interval must be positive"))
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		errs = append(errs, errors.New("http.port out of range"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// IngestInterval is the pause between two intake orders
func (s SimulationConfig) IngestInterval() time.Duration {
	return time.Duration(float64(time.Second) / s.IngestRate)
}

// DSN is the pgx connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Database)
}

// URL is the AMQP connection url
func (r RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", r.User, r.Password, r.Host, r.Port)
}
