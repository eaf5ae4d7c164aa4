// Package config holds the runtime configuration shared by the library and the zcswap CLI.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/meenmo/zcswap/averaging"
	"github.com/meenmo/zcswap/calendar"
	"github.com/meenmo/zcswap/daycount"
)

// Config is the top-level configuration, decoded from TOML.
type Config struct {
	LogLevel  string          `toml:"log_level"`
	LogFormat string          `toml:"log_format"`
	Valuation ValuationConfig `toml:"valuation"`
	Batch     BatchConfig     `toml:"batch"`
	Defaults  DefaultsConfig  `toml:"defaults"`
}

// ValuationConfig controls how fixings and settlement-date flows are treated.
type ValuationConfig struct {
	// ForecastTodaysFixing forecasts a fixing dated today even when it has been published.
	ForecastTodaysFixing bool `toml:"forecast_todays_fixing"`
	// IncludeSettlementDateFlows values flows paid on the curve reference date.
	IncludeSettlementDateFlows bool `toml:"include_settlement_date_flows"`
}

// BatchConfig bounds concurrent pricing of independent trades.
type BatchConfig struct {
	Workers int `toml:"workers"`
}

// DefaultsConfig supplies contract terms that a trade may omit.
type DefaultsConfig struct {
	Calendar              string `toml:"calendar"`
	DayCount              string `toml:"day_count"`
	BusinessDayConvention string `toml:"business_day_convention"`
	Averaging             string `toml:"averaging"`
	PaymentDelay          int    `toml:"payment_delay"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Batch:     BatchConfig{Workers: 4},
		Defaults: DefaultsConfig{
			Calendar:              string(calendar.TARGET),
			DayCount:              string(daycount.Act365F),
			BusinessDayConvention: string(calendar.Following),
			Averaging:             averaging.Compound.String(),
			PaymentDelay:          0,
		},
	}
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var validLogFormats = map[string]bool{"text": true, "json": true}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	if !validLogFormats[strings.ToLower(c.LogFormat)] {
		errs = append(errs, fmt.Sprintf("unknown log_format %q (valid: text, json)", c.LogFormat))
	}
	if c.Batch.Workers < 1 {
		errs = append(errs, fmt.Sprintf("batch: workers must be positive, got %d", c.Batch.Workers))
	}
	if _, err := calendar.Lookup(c.Defaults.Calendar); err != nil {
		errs = append(errs, "defaults: "+err.Error())
	}
	if _, err := daycount.Parse(c.Defaults.DayCount); err != nil {
		errs = append(errs, "defaults: "+err.Error())
	}
	if _, err := calendar.ParseConvention(c.Defaults.BusinessDayConvention); err != nil {
		errs = append(errs, "defaults: "+err.Error())
	}
	if _, err := averaging.ParseConvention(c.Defaults.Averaging); err != nil {
		errs = append(errs, "defaults: "+err.Error())
	}
	if c.Defaults.PaymentDelay < 0 {
		errs = append(errs, fmt.Sprintf("defaults: payment_delay must be non-negative, got %d", c.Defaults.PaymentDelay))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

var (
	mu  sync.RWMutex
	cfg = Defaults()
)

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	mu.Lock()
	cfg = c
	mu.Unlock()
}

// GetConfig returns the active configuration. Defaults to Defaults().
func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}
