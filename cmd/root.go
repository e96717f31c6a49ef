// Package cmd wires the confly command-line surface: a single binary
// selecting its mode by flag (--aggregate, --distribute, --traverse, ...)
// rather than by verb subcommands.
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	confPath     string
	doAggregate  bool
	doDistribute bool
	doTraverse   bool
	doPTable     bool
	doRandom     bool
	doTest       bool
	noTraverse   bool
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "confly",
	Short: "Statistical disclosure control aggregator",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)

		switch {
		case doAggregate:
			return runAggregate()
		case doDistribute:
			return runDistribute()
		case doTraverse:
			return runTraverse()
		case doPTable:
			return runPTable()
		case doRandom:
			return runRandom()
		case doTest:
			return runTest()
		default:
			return cmd.Help()
		}
	},
}

// Execute runs the root command. The process always exits 0; failures are
// diagnostics on stderr, not process-exit signals; a caller scripting
// confly is expected to parse output, not $?.
func Execute() {
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
	}
	os.Exit(0)
}

func init() {
	rootCmd.Flags().StringVar(&confPath, "conf", "config.json", "configuration file path")
	rootCmd.Flags().BoolVar(&doAggregate, "aggregate", false, "run local aggregation")
	rootCmd.Flags().BoolVar(&doDistribute, "distribute", false, "fan aggregation out to configured machines")
	rootCmd.Flags().BoolVar(&doTraverse, "traverse", false, "reduce existing cube files from the output path")
	rootCmd.Flags().BoolVar(&doPTable, "ptable", false, "generate the P-table via the external scripting collaborator")
	rootCmd.Flags().BoolVar(&doRandom, "random", false, "emit a noise-diagnostic file")
	rootCmd.Flags().BoolVar(&doTest, "test", false, "run the built-in smoke test against bundled fixtures")
	rootCmd.Flags().BoolVar(&noTraverse, "no-traverse", false, "skip the traversing pass during aggregation")
	rootCmd.Flags().StringVar(&logLevel, "log", "info", "log level (debug, info, warn, error)")
	rootCmd.Version = "0.1.0"
}
