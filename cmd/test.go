package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/statdisc/confly/confly"
)

// Bundled smoke-test fixture defaults.
const (
	testInputDefault  = "data/hc_9_2_synth.csv.short"
	testOutputDefault = "test.txt"
)

func runTest() error {
	cfg, err := confly.LoadConfig(confPath)
	if err != nil {
		logrus.Warnf("--test: no usable config at %s (%v); checking bundled fixture only", confPath, err)
	}

	inputPath := testInputDefault
	if cfg != nil && cfg.Path.FileInput != "" {
		inputPath = cfg.Path.FileInput
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("--test: fixture %s: %w", inputPath, err)
	}
	defer f.Close()

	schema := confly.Schema{{Name: "rowid", Type: confly.Long}}
	if cfg != nil {
		schema, err = cfg.Schema()
		if err != nil {
			return err
		}
	}

	rng := confly.NewEngine(1)
	micro := confly.NewMicro(schema)
	if err := micro.Ingest(f, ';', rng); err != nil {
		return fmt.Errorf("--test: %w", err)
	}

	out, err := os.Create(testOutputDefault)
	if err != nil {
		return fmt.Errorf("--test: %w", err)
	}
	defer out.Close()

	fmt.Fprintf(out, "confly smoke test: ingested %d records from %s\n", len(micro.Records()), inputPath)
	logrus.Infof("--test: ok, %d records ingested, report written to %s", len(micro.Records()), testOutputDefault)
	return nil
}
