// Package main is the pinplan command line: plan pairwise isolation test
// campaigns and verify boards against a simulated fixture.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gitrdm/pinplan/pkg/pinplan"
)

// app carries state shared by the subcommands.
type app struct {
	verbose bool
	json    bool
	logger  *zap.Logger
	level   zap.AtomicLevel
	out     io.Writer
}

func main() {
	cmd := newRootCmd(os.Stdout)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, logger: zap.NewNop(), level: zap.NewAtomicLevelAt(zapcore.InfoLevel)}

	root := &cobra.Command{
		Use:   "pinplan",
		Short: "Plan and verify pairwise pin isolation tests",
		Long: `pinplan plans test campaigns that check every pair of N pins for isolation.

  verify   prove isolation with ⌈log2 N⌉ bipartition checks
  plan     build greedy test batches that split every pair
  campaign run many verify/plan jobs from a YAML file`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.verbose {
				a.level.SetLevel(zapcore.DebugLevel)
			}
			encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
			core := zapcore.NewCore(encoder, zapcore.AddSync(cmd.ErrOrStderr()), a.level)
			a.logger = zap.New(core, zap.AddCaller())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&a.json, "json", false, "print results as JSON")

	root.AddCommand(
		newVerifyCmd(a),
		newPlanCmd(a),
		newCampaignCmd(a),
		newVersionCmd(a),
	)
	return root
}

// usageError marks errors caused by bad command-line input.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// exitCode maps an error to a process exit status: 2 for bad input,
// 3 for isolation violations, 10 for everything else.
func exitCode(err error) int {
	var ue *usageError
	var pe *pinplan.Error
	switch {
	case errors.Is(err, errViolation):
		return 3
	case errors.As(err, &ue):
		return 2
	case errors.As(err, &pe) && (pe.Class == pinplan.InvalidPinCount || pe.Class == pinplan.InvalidJob):
		return 2
	default:
		return 10
	}
}

var errViolation = errors.New("isolation violation found")
