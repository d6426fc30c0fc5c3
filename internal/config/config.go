// Package config loads the run configuration: which dimensions,
// comparisons and charts exist, where data lives, and the date window.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ZanzyTHEbar/procurement-lens/internal/analysis"
	"github.com/ZanzyTHEbar/procurement-lens/internal/encoding"
	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
	"github.com/ZanzyTHEbar/procurement-lens/internal/lens"
)

//go:embed default.yaml
var defaultYAML []byte

// Environment overrides
const (
	EnvSource    = "PROCHARTS_SOURCE"
	EnvOutput    = "PROCHARTS_OUTPUT"
	EnvStartDate = "PROCHARTS_START_DATE"
	EnvEndDate   = "PROCHARTS_END_DATE"
	EnvCurrency  = "PROCHARTS_CURRENCY"
	EnvSQLite    = "PROCHARTS_SQLITE"
	EnvAddr      = "PROCHARTS_ADDR"
	EnvJWTSecret = "PROCHARTS_JWT_SECRET"
)

// ServerConfig holds the artifact API settings
type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	RatePerMinute int           `yaml:"rate_per_minute"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`

	// JWTSecret turns on bearer auth for /api when set
	JWTSecret      string   `yaml:"jwt_secret,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// Config is the complete run configuration. Treat it as read-only once
// Validate has passed.
type Config struct {
	Source    string           `yaml:"source"`
	Output    string           `yaml:"output"`
	SQLite    string           `yaml:"sqlite,omitempty"`
	Currency  string           `yaml:"currency"`
	StartDate string           `yaml:"start_date"`
	EndDate   string           `yaml:"end_date"`
	Columns   analysis.Columns `yaml:"columns"`
	Server    ServerConfig     `yaml:"server"`

	Dimensions  []string               `yaml:"dimensions"`
	Comparisons []lens.Comparison      `yaml:"comparisons"`
	Charts      []lens.ChartDefinition `yaml:"charts"`
}

// Default returns the embedded configuration
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultYAML, cfg); err != nil {
		return nil, errors.NewConfigurationError("embedded configuration is invalid", err)
	}
	return cfg, nil
}

// Load returns the embedded defaults overlaid with the YAML file at path.
// Lists in the file replace the default lists; an empty path yields the
// defaults alone.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigurationError("cannot read configuration "+path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigurationError("cannot parse configuration "+path, err)
	}
	return cfg, nil
}

// LoadEnv loads .env files into the process environment. Missing files
// are ignored; a malformed one is an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.NewConfigurationError("cannot load "+f, err)
		}
	}
	return nil
}

// ApplyEnv overrides values from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for key, dst := range map[string]*string{
		EnvSource:    &c.Source,
		EnvOutput:    &c.Output,
		EnvStartDate: &c.StartDate,
		EnvEndDate:   &c.EndDate,
		EnvCurrency:  &c.Currency,
		EnvSQLite:    &c.SQLite,
		EnvAddr:      &c.Server.Addr,
		EnvJWTSecret: &c.Server.JWTSecret,
	} {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
}

// DateRange parses the configured window. Either bound may be empty.
// The end date covers its whole day.
func (c *Config) DateRange() (analysis.DateRange, error) {
	var start, end time.Time
	var err error
	if c.StartDate != "" {
		if start, err = analysis.ParseDay(c.StartDate); err != nil {
			return analysis.DateRange{}, errors.NewConfigurationError("start_date must be YYYY-MM-DD", err)
		}
	}
	if c.EndDate != "" {
		if end, err = analysis.ParseDay(c.EndDate); err != nil {
			return analysis.DateRange{}, errors.NewConfigurationError("end_date must be YYYY-MM-DD", err)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return analysis.DateRange{}, errors.NewConfigurationError(
			fmt.Sprintf("end_date %s is before start_date %s", c.EndDate, c.StartDate), nil)
	}
	return analysis.DayWindow(start, end), nil
}

// Spec returns the lens description consumed by the pipeline
func (c *Config) Spec() lens.Spec {
	return lens.Spec{
		Dimensions:  append([]string(nil), c.Dimensions...),
		Comparisons: append([]lens.Comparison(nil), c.Comparisons...),
		Charts:      append([]lens.ChartDefinition(nil), c.Charts...),
	}
}

// Validate reports the first inconsistency found
func (c *Config) Validate() error {
	if _, err := c.DateRange(); err != nil {
		return err
	}
	if c.Output == "" {
		return errors.NewConfigurationError("output directory is not set", nil)
	}
	if len(c.Dimensions) == 0 {
		return errors.NewConfigurationError("no dimensions configured", nil)
	}

	dims := make(map[string]bool, len(c.Dimensions))
	for _, d := range c.Dimensions {
		if !encoding.ValidID(d) || dims[d] {
			return errors.NewConfigurationError(fmt.Sprintf("dimension %q is invalid or duplicated", d), nil)
		}
		dims[d] = true
	}

	cmps := make(map[string]bool, len(c.Comparisons))
	for _, cmp := range c.Comparisons {
		if !encoding.ValidID(cmp.ID) || cmps[cmp.ID] {
			return errors.NewConfigurationError(fmt.Sprintf("comparison %q is invalid or duplicated", cmp.ID), nil)
		}
		cmps[cmp.ID] = true
		if cmp.Compare != "" && len(cmp.Slices) == 0 {
			return errors.NewConfigurationError(fmt.Sprintf("comparison %q groups by %s but lists no slices", cmp.ID, cmp.Compare), nil)
		}
		slices := make(map[string]bool, len(cmp.Slices))
		for _, sl := range cmp.Slices {
			if sl.ID == "" || slices[sl.ID] {
				return errors.NewConfigurationError(fmt.Sprintf("comparison %q has an empty or duplicated slice id %q", cmp.ID, sl.ID), nil)
			}
			slices[sl.ID] = true
			if cmp.Compare != "" && sl.Field == nil {
				return errors.NewConfigurationError(fmt.Sprintf("slice %q of comparison %q has no field to match %s", sl.ID, cmp.ID, cmp.Compare), nil)
			}
		}
	}

	charts := make(map[string]bool, len(c.Charts))
	for _, ch := range c.Charts {
		if ch.ID == "" || charts[ch.ID] {
			return errors.NewConfigurationError(fmt.Sprintf("chart %q is empty or duplicated", ch.ID), nil)
		}
		charts[ch.ID] = true
		if !dims[ch.Dimension] {
			return errors.NewConfigurationError(fmt.Sprintf("chart %q uses undeclared dimension %q", ch.ID, ch.Dimension), nil)
		}
		if ch.Function != "" && !ch.Function.Valid() {
			return errors.NewConfigurationError(fmt.Sprintf("chart %q uses unknown function %q", ch.ID, ch.Function), nil)
		}
		for axis := range ch.Domain {
			switch axis {
			case analysis.AxisX, analysis.AxisY, analysis.AxisR:
			default:
				return errors.NewConfigurationError(fmt.Sprintf("chart %q merges unknown axis %q", ch.ID, axis), nil)
			}
		}
	}
	return nil
}
