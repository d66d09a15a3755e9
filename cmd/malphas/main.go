// Command malphas is the compiler front end's entry point: it reads source
// files from disk, runs them through a driver.Compilation (parse, resolve,
// infer), and reports diagnostics to the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/malphas-lang/malphas-lang/internal/diag"
	"github.com/malphas-lang/malphas-lang/internal/driver"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "malphas",
		Short: "Semantic analysis front end for the malphas language",
		Long:  "Parses, resolves, and type-checks malphas source files, reporting diagnostics to the terminal.",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "malphas.yaml", "path to a driver config file")

	checkCmd := &cobra.Command{
		Use:   "check <files...>",
		Short: "Parse, resolve, and type-check the given source files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheck,
	}

	rootCmd.AddCommand(checkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := driver.LoadConfig(configPath)
	if err != nil {
		return err
	}

	sink := diag.NewTerminalRenderer(os.Stderr)
	comp := driver.New(cfg, sink)

	sources := make([]driver.Source, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		sources = append(sources, driver.Source{Path: path, Text: string(data)})
	}

	comp.Compile(sources)

	if comp.Failed() {
		os.Exit(1)
	}
	if sink.ErrorCount() == 0 && sink.WarningCount() == 0 {
		fmt.Fprintf(os.Stderr, "%s: no issues found in %d file(s)\n", comp.Session, len(sources))
	}
	return nil
}
