package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoData marks a period or window without any usable samples.
	ErrNoData = errors.New("qcflow: no valid data")
	// ErrInsufficientData marks a point with fewer samples than an evaluation needs.
	ErrInsufficientData = errors.New("qcflow: insufficient data")

	ErrInvalidHistogram = errors.New("qcflow: invalid histogram")
	ErrInvalidLevel     = errors.New("qcflow: quantile level outside [0,1]")
)

// ConfigError lists the alarm fields that were not configured.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "qcflow: alarm config incomplete, missing " + strings.Join(e.Missing, ", ")
}

// ParseError is a persisted line that could not be decoded.
type ParseError struct {
	Key     string
	Line    int
	Content string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("qcflow: %s line %d %q: %v", e.Key, e.Line, e.Content, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NotifyError wraps a transport failure.
type NotifyError struct {
	Transport string
	Err       error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("qcflow: notify via %s: %v", e.Transport, e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }
