package config

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/numkit/smooth"
	"github.com/san-kum/numkit/timeseries"
)

const (
	DefaultWindow        = 10
	DefaultMode          = "valid"
	DefaultThreshold     = 0.0
	DefaultMaxIterations = 100
	DefaultAlpha         = 0.3
	DefaultStep          = 1.0
)

// Config collects the analysis parameters shared by the CLI commands.
type Config struct {
	Window        int     `yaml:"window"`
	Mode          string  `yaml:"mode"`
	MaxLag        int     `yaml:"max_lag"`
	Threshold     float64 `yaml:"threshold"`
	MaxIterations int     `yaml:"max_iterations"`
	Alpha         float64 `yaml:"alpha"`
	Column        string  `yaml:"column"`
	TimeColumn    string  `yaml:"time_column"`
	Step          float64 `yaml:"step"`
}

func DefaultConfig() *Config {
	return &Config{
		Window:        DefaultWindow,
		Mode:          DefaultMode,
		MaxLag:        0, // auto: half the series length
		Threshold:     DefaultThreshold,
		MaxIterations: DefaultMaxIterations,
		Alpha:         DefaultAlpha,
		Step:          DefaultStep,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first parameter outside its valid range.
func (c *Config) Validate() error {
	if c.Window < 1 {
		return &timeseries.InvalidParameterError{Name: "window", Value: c.Window, Reason: "must be at least 1"}
	}
	if _, err := smooth.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.MaxLag < 0 {
		return &timeseries.InvalidParameterError{Name: "max_lag", Value: c.MaxLag, Reason: "must be non-negative (0 means auto)"}
	}
	if math.IsNaN(c.Threshold) {
		return &timeseries.InvalidParameterError{Name: "threshold", Value: c.Threshold, Reason: "must not be NaN"}
	}
	if c.MaxIterations < 1 {
		return &timeseries.InvalidParameterError{Name: "max_iterations", Value: c.MaxIterations, Reason: "must be at least 1"}
	}
	if !(c.Alpha > 0 && c.Alpha <= 1) {
		return &timeseries.InvalidParameterError{Name: "alpha", Value: c.Alpha, Reason: "must be in (0, 1]"}
	}
	if !(c.Step > 0) || math.IsInf(c.Step, 0) {
		return &timeseries.InvalidParameterError{Name: "step", Value: c.Step, Reason: "must be positive and finite"}
	}
	return nil
}
