package jobs

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/crm-backend/internal/realtime"
)

const (
	JobHeartbeat      = "heartbeat"
	JobLowStock       = "low_stock"
	JobReport         = "report"
	JobOrderReminders = "order_reminders"
)

// ConfigEnv names the variable that overrides DefaultConfigPath.
const ConfigEnv = "JOBS_CONFIG"

const DefaultConfigPath = "configs/jobs.yaml"

type Config struct {
	BaseURL   string               `yaml:"base_url"`
	Timeout   time.Duration        `yaml:"timeout"`
	Retries   int                  `yaml:"retries"`
	RetryBase time.Duration        `yaml:"retry_base"`
	RetryMax  time.Duration        `yaml:"retry_max"`
	Jobs      map[string]JobConfig `yaml:"jobs"`
	Events    EventsConfig         `yaml:"events"`
}

// EventsConfig controls the bus subscriber that writes domain events to a log.
type EventsConfig struct {
	LogPath string   `yaml:"log_path"`
	Enabled *bool    `yaml:"enabled"`
	Types   []string `yaml:"types"`
}

func (e EventsConfig) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

type JobConfig struct {
	Schedule string `yaml:"schedule"`
	LogPath  string `yaml:"log_path"`
	Enabled  *bool  `yaml:"enabled"`
	// Lookback bounds the order window for reminders.
	Lookback time.Duration `yaml:"lookback"`
}

func (j JobConfig) IsEnabled() bool {
	return j.Enabled == nil || *j.Enabled
}

// DefaultConfig is used for anything the YAML file leaves out.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://localhost:8080",
		Timeout:   10 * time.Second,
		Retries:   3,
		RetryBase: 500 * time.Millisecond,
		RetryMax:  10 * time.Second,
		Jobs: map[string]JobConfig{
			JobHeartbeat:      {Schedule: "@every 5m", LogPath: "/tmp/crm_heartbeat_log.txt"},
			JobLowStock:       {Schedule: "@every 12h", LogPath: "/tmp/low_stock_updates_log.txt"},
			JobReport:         {Schedule: "0 0 6 * * 1", LogPath: "/tmp/crm_report_log.txt"},
			JobOrderReminders: {Schedule: "0 0 8 * * *", LogPath: "/tmp/order_reminders_log.txt", Lookback: 7 * 24 * time.Hour},
		},
		Events: EventsConfig{
			LogPath: "/tmp/crm_events_log.txt",
			Types:   []string{realtime.EventCustomerCreated, realtime.EventOrderCreated, realtime.EventProductRestocked},
		},
	}
}

// ConfigPath resolves the config file location from JOBS_CONFIG.
func ConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(ConfigEnv)); p != "" {
		return p
	}
	return DefaultConfigPath
}

// LoadConfig reads path over DefaultConfig. A missing file at the default
// location yields the defaults; a missing explicit file is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read jobs config %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parse jobs config %s: %w", path, err)
	}
	cfg.merge(file)
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("jobs config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) merge(o Config) {
	if o.BaseURL != "" {
		c.BaseURL = strings.TrimRight(o.BaseURL, "/")
	}
	if o.Timeout > 0 {
		c.Timeout = o.Timeout
	}
	if o.Retries != 0 {
		c.Retries = o.Retries
	}
	if o.RetryBase > 0 {
		c.RetryBase = o.RetryBase
	}
	if o.RetryMax > 0 {
		c.RetryMax = o.RetryMax
	}
	for name, jc := range o.Jobs {
		cur := c.Jobs[name]
		if jc.Schedule != "" {
			cur.Schedule = jc.Schedule
		}
		if jc.LogPath != "" {
			cur.LogPath = jc.LogPath
		}
		if jc.Enabled != nil {
			cur.Enabled = jc.Enabled
		}
		if jc.Lookback > 0 {
			cur.Lookback = jc.Lookback
		}
		c.Jobs[name] = cur
	}
	if o.Events.LogPath != "" {
		c.Events.LogPath = o.Events.LogPath
	}
	if o.Events.Enabled != nil {
		c.Events.Enabled = o.Events.Enabled
	}
	if len(o.Events.Types) > 0 {
		c.Events.Types = o.Events.Types
	}
}

func (c Config) validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative: %d", c.Retries))
	}
	for name, jc := range c.Jobs {
		switch name {
		case JobHeartbeat, JobLowStock, JobReport, JobOrderReminders:
		default:
			errs = append(errs, fmt.Errorf("unknown job %q", name))
			continue
		}
		if jc.Schedule == "" || jc.LogPath == "" {
			errs = append(errs, fmt.Errorf("job %s needs schedule and log_path", name))
		}
	}
	if c.Events.IsEnabled() {
		if c.Events.LogPath == "" {
			errs = append(errs, errors.New("events needs log_path"))
		}
		for _, t := range c.Events.Types {
			switch t {
			case realtime.EventCustomerCreated, realtime.EventProductCreated, realtime.EventOrderCreated, realtime.EventProductRestocked:
			default:
				errs = append(errs, fmt.Errorf("unknown event type %q", t))
			}
		}
	}
	return errors.Join(errs...)
}
