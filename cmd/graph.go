package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	graphPipeline string

	graphCmd = &cobra.Command{
		Use:   "graph [scenario]",
		Short: "Render a chain as DOT",
		Long: `Render a built-in scenario, or the chain given with --pipeline, as a DOT
digraph. Accumulator chains render with their op and arg attributes, so the
output can be fed back to 'railz run'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := graphDefinition(args)
			if err != nil {
				return err
			}
			dot, err := renderDefinition(def)
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", def.Name, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), dot)
			return nil
		},
	}
)

func init() {
	graphCmd.Flags().StringVarP(&graphPipeline, "pipeline", "p", "", "DOT file describing the chain (default from config)")
}

func graphDefinition(args []string) (*Definition, error) {
	if len(args) > 0 {
		sc, ok := getScenarioByName(args[0])
		if !ok {
			return nil, fmt.Errorf("unknown scenario: %s\n\nRun 'railz list' to see available scenarios", args[0])
		}
		return sc.Graph(), nil
	}

	path := graphPipeline
	if path == "" {
		path = viper.GetString("pipeline")
	}
	if path == "" {
		return nil, fmt.Errorf("%w: name a scenario or use --pipeline", errNoPipeline)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline: %w", err)
	}
	def, err := parseDefinition(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}
