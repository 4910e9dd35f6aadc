package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/pinplan/pkg/pinplan"
)

const sample = `
workers: 4
oracle_rate: 50
log_level: debug
shorts:
  - [3, 7]
  - [10, 2]
jobs:
  - name: board-a
    strategy: verify
    pins: 64
  - name: harness-b
    strategy: plan
    pins: 50
`

func TestParse_Sample(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, pinplan.CampaignConfig{Workers: 4, OracleRate: 50}, c.CampaignConfig())
	assert.Equal(t, []pinplan.Job{
		{Name: "board-a", Strategy: pinplan.StrategyVerify, Pins: 64},
		{Name: "harness-b", Strategy: pinplan.StrategyPlan, Pins: 50},
	}, c.PlanJobs())

	board, err := c.Board()
	require.NoError(t, err)
	assert.Equal(t, []pinplan.Pair{{P: 2, Q: 10}, {P: 3, Q: 7}}, board.Shorts())
}

func TestParse_DefaultsLogLevel(t *testing.T) {
	c, err := Parse([]byte("jobs:\n  - {name: a, strategy: plan, pins: 4}\n"))
	require.NoError(t, err)
	assert.Equal(t, "info", c.LogLevel)
	assert.Zero(t, c.Workers)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"no jobs":        "workers: 2\n",
		"bad strategy":   "jobs:\n  - {name: a, strategy: guess, pins: 4}\n",
		"negative pins":  "jobs:\n  - {name: a, strategy: plan, pins: -1}\n",
		"missing name":   "jobs:\n  - {strategy: plan, pins: 4}\n",
		"negative rate":  "oracle_rate: -5\njobs:\n  - {name: a, strategy: plan, pins: 4}\n",
		"bad level":      "log_level: loud\njobs:\n  - {name: a, strategy: plan, pins: 4}\n",
		"unknown key":    "wokers: 2\njobs:\n  - {name: a, strategy: plan, pins: 4}\n",
		"self short":     "shorts: [[4, 4]]\njobs:\n  - {name: a, strategy: verify, pins: 4}\n",
		"zero pin short": "shorts: [[0, 4]]\njobs:\n  - {name: a, strategy: verify, pins: 4}\n",
		"not yaml":       "jobs: [\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "campaign.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Jobs, 2)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
