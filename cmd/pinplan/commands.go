package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/gitrdm/pinplan/internal/config"
	"github.com/gitrdm/pinplan/pkg/pinplan"
)

func newVerifyCmd(a *app) *cobra.Command {
	var pins int
	var shorts []string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify isolation of N pins on a simulated board",
		Long: `Verify puts ⌈log2 N⌉ bit-plane bipartitions to a simulated board and stops
at the first one that exposes a short. Shorts are given as --short P:Q.`,
		Example: "  pinplan verify --pins 10000\n  pinplan verify --pins 64 --short 3:7",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parseShorts(shorts)
			if err != nil {
				return err
			}
			board, err := pinplan.NewBoard(pairs...)
			if err != nil {
				return &usageError{err}
			}

			res, err := pinplan.NewVerifier(pinplan.WithLogger(a.logger)).Verify(cmd.Context(), pins, board)
			if err != nil {
				return err
			}
			if err := a.printVerify(res); err != nil {
				return err
			}
			if !res.Isolated {
				return errViolation
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&pins, "pins", "n", 0, "number of pins")
	cmd.Flags().StringArrayVar(&shorts, "short", nil, "shorted pair P:Q (repeatable)")
	_ = cmd.MarkFlagRequired("pins")
	return cmd
}

func newPlanCmd(a *app) *cobra.Command {
	var pins int

	cmd := &cobra.Command{
		Use:     "plan",
		Short:   "Plan greedy test batches covering every pin pair",
		Example: "  pinplan plan --pins 50",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			batches, err := pinplan.NewPlanner(pinplan.WithLogger(a.logger)).Plan(cmd.Context(), pins)
			if err != nil {
				return err
			}
			return a.printPlan(pins, batches)
		},
	}
	cmd.Flags().IntVarP(&pins, "pins", "n", 0, "number of pins")
	_ = cmd.MarkFlagRequired("pins")
	return cmd
}

func newCampaignCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "campaign FILE",
		Short: "Run the verify and plan jobs listed in a YAML campaign file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return &usageError{err}
			}
			if !a.verbose {
				level, err := zapcore.ParseLevel(cfg.LogLevel)
				if err != nil {
					return &usageError{err}
				}
				a.level.SetLevel(level)
			}
			board, err := cfg.Board()
			if err != nil {
				return &usageError{err}
			}

			c := pinplan.NewCampaign(cfg.CampaignConfig(), pinplan.WithLogger(a.logger))
			defer c.Close()

			results, err := c.Run(cmd.Context(), cfg.PlanJobs(), board)
			if err != nil {
				return err
			}
			return a.printCampaign(results)
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := pinplan.GetVersionInfo()
			if a.json {
				return a.writeJSON(info)
			}
			_, err := fmt.Fprintf(a.out, "pinplan %s (%s)\n", info.Version, info.GoVersion)
			return err
		},
	}
}

// parseShorts reads "P:Q" pairs.
func parseShorts(specs []string) ([]pinplan.Pair, error) {
	out := make([]pinplan.Pair, 0, len(specs))
	for _, s := range specs {
		left, right, ok := strings.Cut(s, ":")
		if !ok {
			return nil, &usageError{fmt.Errorf("short %q: want P:Q", s)}
		}
		p, err := strconv.Atoi(strings.TrimSpace(left))
		if err != nil {
			return nil, &usageError{fmt.Errorf("short %q: %w", s, err)}
		}
		q, err := strconv.Atoi(strings.TrimSpace(right))
		if err != nil {
			return nil, &usageError{fmt.Errorf("short %q: %w", s, err)}
		}
		out = append(out, pinplan.Pair{P: pinplan.Pin(p), Q: pinplan.Pin(q)})
	}
	return out, nil
}

type verifyReport struct {
	*pinplan.Result
	Calls int `json:"oracle_calls"`
}

func (a *app) printVerify(res *pinplan.Result) error {
	if a.json {
		return a.writeJSON(verifyReport{Result: res, Calls: len(res.Splits)})
	}
	status := "isolated"
	if !res.Isolated {
		status = "VIOLATION"
	}
	fmt.Fprintf(a.out, "pins=%d splits=%d result=%s\n", res.Pins, len(res.Splits), status)
	if failed, ok := res.FailedSplit(); ok {
		fmt.Fprintf(a.out, "failing split: plane %d (|A|=%d, |B|=%d)\n", failed.Index, len(failed.A), len(failed.B))
	}
	return nil
}

type planReport struct {
	Pins    int             `json:"pins"`
	Pairs   int             `json:"pairs"`
	Batches []pinplan.Batch `json:"batches"`
}

func (a *app) printPlan(pins int, batches []pinplan.Batch) error {
	if a.json {
		return a.writeJSON(planReport{Pins: pins, Pairs: pinplan.PairCount(pins), Batches: batches})
	}
	for _, b := range batches {
		fmt.Fprintf(a.out, "batch %d (%d pins, %d new pairs): %v\n", b.Index, len(b.Pins), b.Covered, b.Pins)
	}
	fmt.Fprintf(a.out, "%d batches cover %d pairs\n", len(batches), pinplan.PairCount(pins))
	return nil
}

type campaignReport struct {
	Job      string `json:"job"`
	RunID    string `json:"run_id"`
	Strategy string `json:"strategy"`
	Pins     int    `json:"pins"`
	Isolated *bool  `json:"isolated,omitempty"`
	Splits   int    `json:"splits,omitempty"`
	Batches  int    `json:"batches,omitempty"`
	Elapsed  string `json:"elapsed"`
}

func (a *app) printCampaign(results []pinplan.JobResult) error {
	reports := make([]campaignReport, len(results))
	for i, r := range results {
		rep := campaignReport{
			Job:      r.Job.Name,
			RunID:    r.RunID,
			Strategy: string(r.Job.Strategy),
			Pins:     r.Job.Pins,
			Batches:  len(r.Batches),
			Elapsed:  r.Elapsed.String(),
		}
		if r.Verify != nil {
			isolated := r.Verify.Isolated
			rep.Isolated = &isolated
			rep.Splits = len(r.Verify.Splits)
		}
		reports[i] = rep
	}
	if a.json {
		return a.writeJSON(reports)
	}
	for _, rep := range reports {
		switch {
		case rep.Isolated != nil:
			fmt.Fprintf(a.out, "%-20s verify pins=%d splits=%d isolated=%t\n", rep.Job, rep.Pins, rep.Splits, *rep.Isolated)
		default:
			fmt.Fprintf(a.out, "%-20s plan   pins=%d batches=%d\n", rep.Job, rep.Pins, rep.Batches)
		}
	}
	return nil
}

func (a *app) writeJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
