package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daios-ai/xpr"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "xpr",
	Short: "xpr - embeddable expression language",
	Long: `xpr parses and evaluates small expressions against a root object,
variables (#name) and registered functions.

Commands:
  eval     Evaluate an expression, optionally with YAML bindings
  repl     Interactive session with history and multiline continuation
  ast      Print the parsed tree of an expression
  version  Print the language version`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: nearest xpr.toml, then ~/.xpr.toml)")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the xpr version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(xpr.Version)
	},
}
