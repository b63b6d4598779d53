package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an accumulator chain loaded from a DOT graph",
	Long: `Run an accumulator chain described by a DOT digraph.

Every node carries an op attribute and, except for fail, an arg. Edges give
the order, and the last node must be the finisher:

  digraph accumulate {
    add5   [op="add", arg="5"];
    gate   [op="le",  arg="3"];
    add100 [op="add", arg="100"];
    result [op="finish", arg="1"];
    add5 -> gate -> add100 -> result;
  }

Ops: add, sub, mul (always pass); gt, ge, lt, le, eq, ne (pass when
"acc <op> arg"); fail (never passes); finish (returns acc * arg).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if cfg.Pipeline == "" {
			return fmt.Errorf("%w: use --pipeline or RAILZ_PIPELINE", errNoPipeline)
		}

		src, err := os.ReadFile(cfg.Pipeline)
		if err != nil {
			return fmt.Errorf("failed to read pipeline: %w", err)
		}
		def, err := parseDefinition(string(src))
		if err != nil {
			return fmt.Errorf("%s: %w", cfg.Pipeline, err)
		}

		e := &env{
			out:     cmd.OutOrStdout(),
			logger:  newLogger(cmd.ErrOrStderr(), cfg),
			verbose: cfg.Verbose,
		}
		fmt.Fprintf(e.out, "%s%s%s (%d stages, initial %d)\n", colorCyan, def.Name, colorReset, len(def.Stages), cfg.Initial)
		_, err = runAccumulator(cmd.Context(), e, def, cfg.Initial)
		return err
	},
}

func init() {
	runCmd.Flags().StringP("pipeline", "p", "", "DOT file describing the chain")
	runCmd.Flags().IntP("initial", "i", 0, "initial accumulator value")

	_ = viper.BindPFlag("pipeline", runCmd.Flags().Lookup("pipeline"))
	_ = viper.BindPFlag("initial", runCmd.Flags().Lookup("initial"))
}
