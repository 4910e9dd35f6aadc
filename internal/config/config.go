// Package config loads campaign definitions from YAML.
//
// A campaign file names the jobs to run, how many may run at once, an
// optional oracle rate limit, and the shorted pairs of the simulated board
// that verify jobs are checked against:
//
//	workers: 4
//	oracle_rate: 0
//	log_level: info
//	shorts: [[3, 7]]
//	jobs:
//	  - name: board-a
//	    strategy: verify
//	    pins: 64
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gitrdm/pinplan/pkg/pinplan"
)

// Campaign is the on-disk campaign definition.
type Campaign struct {
	Workers    int      `yaml:"workers" validate:"gte=0"`
	OracleRate int      `yaml:"oracle_rate" validate:"gte=0"`
	// LogLevel sets the CLI logger level unless --verbose is given.
	LogLevel   string   `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Shorts     [][2]int `yaml:"shorts" validate:"dive,dive,gte=1"`
	Jobs       []Job    `yaml:"jobs" validate:"required,min=1,max=10000,dive"`
}

// Job is one campaign entry.
type Job struct {
	Name     string `yaml:"name" validate:"required"`
	Strategy string `yaml:"strategy" validate:"required,oneof=verify plan"`
	Pins     int    `yaml:"pins" validate:"gte=0"`
}

var validate = validator.New()

// Default returns a campaign with no jobs and default settings.
func Default() *Campaign {
	return &Campaign{LogLevel: "info"}
}

// Load reads and validates a campaign file.
func Load(path string) (*Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read campaign %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("campaign %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a campaign document. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func Parse(data []byte) (*Campaign, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks field constraints and that every short joins two
// distinct pins.
func (c *Campaign) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	for i, s := range c.Shorts {
		if s[0] == s[1] {
			return fmt.Errorf("validate: shorts[%d] joins pin %d to itself", i, s[0])
		}
	}
	return nil
}

// CampaignConfig converts the file settings for pinplan.NewCampaign.
func (c *Campaign) CampaignConfig() pinplan.CampaignConfig {
	return pinplan.CampaignConfig{Workers: c.Workers, OracleRate: c.OracleRate}
}

// PlanJobs converts the file's jobs for pinplan.Campaign.Run.
func (c *Campaign) PlanJobs() []pinplan.Job {
	out := make([]pinplan.Job, len(c.Jobs))
	for i, j := range c.Jobs {
		out[i] = pinplan.Job{Name: j.Name, Strategy: pinplan.Strategy(j.Strategy), Pins: j.Pins}
	}
	return out
}

// Board builds the simulated board described by Shorts.
func (c *Campaign) Board() (*pinplan.Board, error) {
	pairs := make([]pinplan.Pair, len(c.Shorts))
	for i, s := range c.Shorts {
		pairs[i] = pinplan.NewPair(pinplan.Pin(s[0]), pinplan.Pin(s[1]))
	}
	return pinplan.NewBoard(pairs...)
}
