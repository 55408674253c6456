package qcflow

import (
	"github.com/ghalamif/QCFlow/internal/app/config"
	"github.com/ghalamif/QCFlow/internal/ports"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// Policy controls quantile levels and how the persisted series is treated.
	Policy = ports.Policy
	// CumulativeConfig names the instant series a cumulative run aggregates.
	CumulativeConfig = config.CumulativeConfig
	// StoreConfig selects and configures the series store.
	StoreConfig = config.StoreConfig
	// AlarmSettings holds the alarm thresholds plus the archive directory.
	AlarmSettings = config.AlarmConfig
	// NotifyConfig selects the alarm transport.
	NotifyConfig = config.NotifyConfig
	// MetricsConfig configures the Pushgateway push.
	MetricsConfig = config.MetricsConfig
	// LogConfig configures the zap logger.
	LogConfig = config.LogConfig
)

const (
	DriverFile     = config.DriverFile
	DriverMemory   = config.DriverMemory
	DriverPostgres = config.DriverPostgres

	TransportLog  = config.TransportLog
	TransportNATS = config.TransportNATS
	TransportSMTP = config.TransportSMTP

	HistInstant    = ports.HistInstant
	HistCumulative = ports.HistCumulative
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// ParseConfig decodes, defaults and validates an in-memory YAML document.
func ParseConfig(raw []byte) (*Config, error) {
	return config.Parse(raw)
}
