package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ghalamif/QCFlow/internal/domain"
	"github.com/ghalamif/QCFlow/internal/ports"
)

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"

	TransportLog  = "log"
	TransportNATS = "nats"
	TransportSMTP = "smtp"
)

type Config struct {
	Metric     string           `yaml:"metric"`
	Site       string           `yaml:"site"`
	HistType   string           `yaml:"hist_type"`
	Quantiles  []float64        `yaml:"quantiles"` // percentages
	SortByDate bool             `yaml:"sort_by_date"`
	Rewrite    bool             `yaml:"rewrite"`
	Cumulative CumulativeConfig `yaml:"cumulative"`
	Store      StoreConfig      `yaml:"store"`
	Alarm      AlarmConfig      `yaml:"alarm"`
	Notify     NotifyConfig     `yaml:"notify"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

type CumulativeConfig struct {
	SourceMetric string `yaml:"source_metric"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver"`
	Dir        string `yaml:"dir"`
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
	AlarmTable string `yaml:"alarm_table"`
}

type AlarmConfig struct {
	Enabled            bool `yaml:"enabled"`
	domain.AlarmConfig `yaml:",inline"`
	Dir                string `yaml:"dir"`
}

type NotifyConfig struct {
	Transport string `yaml:"transport"`
	NATSURL   string `yaml:"nats_url"`
	Subject   string `yaml:"subject"`
	SMTPAddr  string `yaml:"smtp_addr"`
}

type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HistType == "" {
		c.HistType = ports.HistInstant
	}
	if len(c.Quantiles) == 0 {
		c.Quantiles = []float64{25, 50, 75}
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverFile
	}
	if c.Store.Dir == "" {
		c.Store.Dir = "./data/series"
	}
	if c.Store.Table == "" {
		c.Store.Table = "monitoring_points"
	}
	if c.Store.AlarmTable == "" {
		c.Store.AlarmTable = "monitoring_alarms"
	}
	if c.Alarm.Dir == "" {
		c.Alarm.Dir = "./data/alarms"
	}
	if c.Alarm.ReferenceValue == nil {
		c.Alarm.ReferenceValue = domain.Float(0)
	}
	if c.Notify.Transport == "" {
		c.Notify.Transport = TransportLog
	}
	if c.Notify.Subject == "" {
		c.Notify.Subject = "qcflow.alarms"
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = "qcflow"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	if c.Metric == "" {
		return fmt.Errorf("metric is required")
	}
	switch c.HistType {
	case ports.HistInstant:
	case ports.HistCumulative:
		if c.Cumulative.SourceMetric == "" {
			return fmt.Errorf("cumulative.source_metric is required for hist_type cumulative")
		}
		if c.Cumulative.SourceMetric == c.Metric {
			return fmt.Errorf("cumulative.source_metric must differ from metric")
		}
	default:
		return fmt.Errorf("hist_type %q must be %s or %s", c.HistType, ports.HistInstant, ports.HistCumulative)
	}
	for i, q := range c.Quantiles {
		if q < 0 || q > 100 {
			return fmt.Errorf("quantile %v outside [0,100]", q)
		}
		if i > 0 && q < c.Quantiles[i-1] {
			return fmt.Errorf("quantiles must be ascending, got %v after %v", q, c.Quantiles[i-1])
		}
	}
	switch c.Store.Driver {
	case DriverFile, DriverMemory:
	case DriverPostgres:
		if c.Store.ConnString == "" {
			return fmt.Errorf("store.conn_string is required for driver postgres")
		}
	default:
		return fmt.Errorf("store.driver %q is not supported", c.Store.Driver)
	}
	switch c.Notify.Transport {
	case TransportLog:
	case TransportNATS:
		if c.Notify.NATSURL == "" {
			return fmt.Errorf("notify.nats_url is required for transport nats")
		}
	case TransportSMTP:
		if c.Notify.SMTPAddr == "" {
			return fmt.Errorf("notify.smtp_addr is required for transport smtp")
		}
	default:
		return fmt.Errorf("notify.transport %q is not supported", c.Notify.Transport)
	}
	return nil
}

// AlarmProblems reports missing alarm fields. They do not make the
// configuration invalid: the pipeline skips evaluation instead.
func (c *Config) AlarmProblems() error {
	if !c.Alarm.Enabled {
		return nil
	}
	return c.Alarm.Validate()
}

// ToPolicy converts the run options, turning quantile percentages into fractions.
func (c *Config) ToPolicy() ports.Policy {
	levels := make([]float64, len(c.Quantiles))
	for i, q := range c.Quantiles {
		levels[i] = q / 100
	}
	return ports.Policy{
		HistType:       c.HistType,
		QuantileLevels: levels,
		SortByDate:     c.SortByDate,
		Rewrite:        c.Rewrite,
		AlarmEnabled:   c.Alarm.Enabled,
	}
}
