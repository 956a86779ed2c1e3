// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"

	"github.com/buyerboard/finance-engine/pkg/advisor"
	"github.com/buyerboard/finance-engine/pkg/constants"
	"github.com/buyerboard/finance-engine/pkg/normalize"
	"github.com/buyerboard/finance-engine/pkg/rollup"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for the finance engine. The
// commission table and daily caps come from the configuration provider and
// are treated as read-only lookup tables per invocation; they are converted
// once and passed explicitly to the stages that need them.
type Configuration struct {
	CommissionRules []CommissionRule  `yaml:"commissionRules,omitempty"`
	DailyCaps       []advisor.CapRule `yaml:"dailyCaps,omitempty"`
	Projection      ProjectionConfig  `yaml:"projection,omitempty"`
	Logging         LoggingConfig     `yaml:"logging,omitempty"`
	Output          OutputConfig      `yaml:"output,omitempty"`
	Server          ServerConfig      `yaml:"server,omitempty"`
}

// CommissionRule maps one media buyer to a commission rate in [0,1].
type CommissionRule struct {
	MediaBuyer string  `mapstructure:"mediaBuyer" yaml:"mediaBuyer"`
	Rate       float64 `mapstructure:"rate" yaml:"rate"`
}

// ProjectionConfig holds cash-flow projection knobs.
type ProjectionConfig struct {
	HorizonDays     int     `mapstructure:"horizonDays" yaml:"horizonDays,omitempty"`
	DailyMediaSpend float64 `mapstructure:"dailyMediaSpend" yaml:"dailyMediaSpend,omitempty"` // 0 means derive from trailing spend
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv
}

// ServerConfig holds the HTTP API options.
type ServerConfig struct {
	Address            string `mapstructure:"address" yaml:"address,omitempty"`
	MaxUploadSizeBytes int64  `mapstructure:"maxUploadSizeBytes" yaml:"maxUploadSizeBytes,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// CommissionTable converts the configured rules into the engine's lookup
// table.
func (c *Configuration) CommissionTable() rollup.CommissionTable {
	rates := make(map[string]float64, len(c.CommissionRules))
	for _, rule := range c.CommissionRules {
		rates[rule.MediaBuyer] = rule.Rate
	}
	return rollup.NewCommissionTable(rates)
}

// CapsTable converts the configured cap rules into the advisor's lookup
// table.
func (c *Configuration) CapsTable() advisor.CapsTable {
	return advisor.NewCapsTable(c.DailyCaps)
}

// HorizonDays returns the configured projection horizon, falling back to the
// default.
func (c *Configuration) HorizonDays() int {
	if c.Projection.HorizonDays > 0 {
		return c.Projection.HorizonDays
	}
	return constants.DefaultProjectionHorizonDays
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	seen := make(map[string]bool)
	for _, rule := range c.CommissionRules {
		key := normalize.Key(rule.MediaBuyer)
		if key == "" {
			warnings = append(warnings, "commission rule with blank media buyer will never match")
			continue
		}
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("duplicate commission rule for %s; the last one wins", rule.MediaBuyer))
		}
		seen[key] = true
		if rule.Rate < 0 || rule.Rate > 1 {
			warnings = append(warnings, fmt.Sprintf("commission rate %.2f for %s is outside [0,1]", rule.Rate, rule.MediaBuyer))
		}
	}

	for _, cap := range c.DailyCaps {
		if normalize.Key(cap.Network) == "" {
			warnings = append(warnings, "daily cap with blank network will never match")
		}
	}

	if c.Projection.HorizonDays < 0 {
		warnings = append(warnings, "negative projection horizon ignored; using default")
	}

	return warnings
}
