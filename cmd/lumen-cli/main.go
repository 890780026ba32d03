// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"lumen/grammar"
	"lumen/internal/config"
	"lumen/internal/driver"
	"lumen/internal/errors"
	"lumen/internal/ir"
	"lumen/internal/passes"
	"lumen/internal/pipeline"
)

var (
	pipelinePath string
	dumpIR       bool
	verbose      bool
	showTime     bool
)

func main() {
	root := &cobra.Command{
		Use:           "lumen-cli",
		Short:         "Lumen compiler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	buildCmd := &cobra.Command{
		Use:   "build <file.lm>",
		Short: "Compile a file and print the optimized IR of every function",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}
	buildCmd.Flags().StringVar(&pipelinePath, "pipeline", "", "YAML pipeline layout (defaults to the built-in layout)")
	buildCmd.Flags().BoolVar(&dumpIR, "dump-ir", false, "dump the IR after every pass")
	buildCmd.Flags().BoolVar(&verbose, "verbose", false, "log pass execution")
	buildCmd.Flags().BoolVar(&showTime, "time", false, "report compilation time")

	passesCmd := &cobra.Command{
		Use:   "passes",
		Short: "Show the pipeline layout and the available passes",
		RunE:  runPasses,
	}
	passesCmd.Flags().StringVar(&pipelinePath, "pipeline", "", "YAML pipeline layout (defaults to the built-in layout)")

	root.AddCommand(buildCmd, passesCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if pipelinePath == "" {
		return config.Default(), nil
	}
	return config.Load(pipelinePath)
}

func runBuild(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	path := args[0]

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var hooks []pipeline.Hook
	if verbose {
		commonlog.Configure(1, nil)
		hooks = append(hooks, pipeline.NewLogHook())
	}
	if dumpIR {
		hooks = append(hooks, pipeline.NewDumpHook(cmd.OutOrStdout()))
	}

	session, err := driver.NewSession(path, string(source),
		driver.WithConfig(cfg), driver.WithHooks(hooks...))
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), grammar.FormatParseError(string(source), err))
		color.Red("Compilation failed after %s", formatDuration(time.Since(startTime)))
		os.Exit(1)
	}

	if session.HasErrors() {
		reporter := errors.NewReporter(path, string(source))
		for _, diag := range session.Diagnostics() {
			fmt.Fprint(cmd.ErrOrStderr(), reporter.FormatError(diag))
		}
		color.Red("Compilation failed after %s", formatDuration(time.Since(startTime)))
		os.Exit(1)
	}

	for _, unit := range session.Units() {
		cell := session.Optimize(unit)
		cell.WithBorrow(func(fn *ir.Function) {
			fmt.Fprintf(cmd.OutOrStdout(), "// %s\n%s\n", unit, ir.Print(fn))
		})
	}

	if showTime {
		color.Green("Successfully processed %s in %s", path, formatDuration(time.Since(startTime)))
	} else {
		color.Green("Successfully processed %s", path)
	}
	return nil
}

func runPasses(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	registry, err := cfg.Registry(passes.Catalog())
	if err != nil {
		return err
	}

	for i, set := range registry.Sets() {
		fmt.Fprintf(cmd.OutOrStdout(), "set %d (%s):\n", i, set.Name)
		for _, p := range set.Passes {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-18s %s\n", p.Name(), p.Description())
		}
	}
	return nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
