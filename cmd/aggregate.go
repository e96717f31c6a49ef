package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/statdisc/confly/confly"
)

var (
	workerIndex int
	workerCount int
)

func init() {
	rootCmd.Flags().IntVar(&workerIndex, "worker-index", 0, "this process's index among cooperating workers (internal, set by --distribute)")
	rootCmd.Flags().IntVar(&workerCount, "worker-count", 0, "total number of cooperating workers (internal, set by --distribute)")
	rootCmd.Flags().MarkHidden("worker-index")
	rootCmd.Flags().MarkHidden("worker-count")
}

func runAggregate() error {
	if workerCount > 0 {
		// Distributed sub-invocation: print the hostname marker line the
		// distribution driver waits for before trusting subsequent
		// output.
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		fmt.Println(hostname)
	}

	cfg, err := confly.LoadConfig(confPath)
	if err != nil {
		return err
	}

	reg := confly.DefaultRegistry
	metrics := confly.NewMetrics(reg)

	opts := confly.AggregateOptions{
		NoTraverse:  noTraverse,
		WorkerIndex: workerIndex,
		WorkerCount: workerCount,
	}

	logrus.Infof("aggregating %d cubes from %s into %s", cfg.Size, filepath.Base(confPath), cfg.Path.DirOutput)
	return confly.Aggregate(cfg, cfg.Path.DirOutput, opts, metrics, logrus.StandardLogger())
}
