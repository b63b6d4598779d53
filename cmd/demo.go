package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	demoAll bool

	demoCmd = &cobra.Command{
		Use:   "demo [scenario]",
		Short: "Run the built-in scenarios",
		Long: `Run the built-in railz scenarios.

When run without arguments, displays an interactive menu.
When run with a scenario name, runs that specific scenario.

Available scenarios:
  accumulator  Sticky failure with an always-run finisher
  empty        A chain with no steps
  request      Setter-configured request validation
  parse        A parse buffer consumed stage by stage`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) != 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}

			var completions []string
			for _, sc := range getAllScenarios() {
				if strings.HasPrefix(sc.Name(), toComplete) {
					completions = append(completions, sc.Name())
				}
			}
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(viper.GetViper())
			if err != nil {
				return err
			}

			scenario := ""
			if len(args) > 0 {
				scenario = args[0]
			}

			d := &Demo{
				reader: bufio.NewReader(cmd.InOrStdin()),
				env: &env{
					out:     cmd.OutOrStdout(),
					logger:  newLogger(cmd.ErrOrStderr(), cfg),
					verbose: cfg.Verbose,
				},
			}
			return d.run(cmd.Context(), scenario, demoAll)
		},
	}
)

func init() {
	demoCmd.Flags().BoolVar(&demoAll, "all", false, "Run all scenarios sequentially")
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[37m"
	colorWhite  = "\033[97m"
)

// Demo manages the interactive demo experience
type Demo struct {
	reader *bufio.Reader
	env    *env
}

// run runs a scenario by name, all scenarios, or the interactive menu.
func (d *Demo) run(ctx context.Context, scenario string, all bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if all {
		return d.runAll(ctx)
	}

	if scenario == "" {
		return d.runInteractiveMenu(ctx)
	}

	sc, ok := getScenarioByName(scenario)
	if !ok {
		return fmt.Errorf("unknown scenario: %s\n\nRun 'railz list' to see available scenarios", scenario)
	}
	return sc.Run(ctx, d.env)
}

func (d *Demo) runAll(ctx context.Context) error {
	for _, sc := range getAllScenarios() {
		if err := sc.Run(ctx, d.env); err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name(), err)
		}
	}
	return nil
}

func (d *Demo) runInteractiveMenu(ctx context.Context) error {
	out := d.env.out
	scenarios := getAllScenarios()

	for {
		fmt.Fprintln(out, "\n"+colorYellow+"═══ SCENARIOS ═══"+colorReset)
		for i, sc := range scenarios {
			fmt.Fprintf(out, "%s%d.%s %s - %s\n", colorWhite, i+1, colorReset, sc.Name(), sc.Description())
		}
		fmt.Fprintf(out, "%sq.%s Quit\n", colorWhite, colorReset)

		choice, err := d.readInput("\nSelect a scenario: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch choice {
		case "q", "quit", "exit":
			return nil
		case "":
			continue
		}

		n, err := strconv.Atoi(choice)
		if err != nil || n < 1 || n > len(scenarios) {
			fmt.Fprintln(out, colorRed+"Invalid option. Please try again."+colorReset)
			continue
		}
		if err := scenarios[n-1].Run(ctx, d.env); err != nil {
			fmt.Fprintf(out, "%sError: %v%s\n", colorRed, err, colorReset)
		}
	}
}

func (d *Demo) readInput(prompt string) (string, error) {
	fmt.Fprint(d.env.out, prompt)
	input, err := d.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
