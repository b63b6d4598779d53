package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "0.1.0"
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "railz",
		Short: "Fallible step chains with an always-run finisher",
		Long: `railz is a CLI tool for exploring step chains: steps run in order over one
shared context until the first failure, later steps are skipped, and a
finisher always turns the context into a result.

Run the built-in scenarios, load accumulator chains from DOT graphs, and
render chains back to DOT.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/railz/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every stage as it runs")
	rootCmd.PersistentFlags().String("log-format", "text", "log output format (text|json)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Add commands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(graphCmd)
}

func initConfig() {
	setDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home + "/.config/railz")
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("railz")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RAILZ")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available scenarios",
	Long:  "Display a list of all built-in scenarios with descriptions.",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Available scenarios:")
		fmt.Fprintln(out)
		for _, sc := range getAllScenarios() {
			fmt.Fprintf(out, "  %-12s %s\n", sc.Name(), sc.Description())
		}
	},
}
