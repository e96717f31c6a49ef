package cluster

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/statdisc/confly/confly"
)

// DistributeOptions configures one distributed run.
type DistributeOptions struct {
	ConfPath string
	OutDir   string
	// Reduce, when true, performs the local reduce pass after every
	// worker returns: read every produced cube file, reconstruct cubes,
	// and write traversing files locally.
	Reduce bool
}

// Distribute fans aggregation out across workers, one worker per element
// of workers, then optionally reduces their output locally.
func Distribute(ctx context.Context, workers []Worker, totalCubes int, opts DistributeOptions, cfg *confly.Config, log *logrus.Logger) error {
	if len(workers) > totalCubes {
		return fmt.Errorf("confly: %d workers exceeds %d total cubes", len(workers), totalCubes)
	}

	// Any unreachable worker aborts the whole run; workers already
	// connected are closed before returning, and no partial results are
	// committed; the caller retries the whole distribution.
	for i, w := range workers {
		if w == nil {
			for _, opened := range workers[:i] {
				opened.Close()
			}
			return fmt.Errorf("confly: %w: worker %d is nil", confly.ErrWorkerUnreachable, i)
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for i, w := range workers {
		i, w := i, w
		eg.Go(func() error {
			command := fmt.Sprintf("confly --conf %s --aggregate --no-traverse --worker-index %d --worker-count %d",
				opts.ConfPath, i, len(workers))

			out, err := w.Run(egCtx, command)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", confly.ErrWorkerUnreachable, w.Hostname(), err)
			}
			log.Infof("worker %s: dispatched (worker %d/%d)", w.Hostname(), i, len(workers))

			sc := bufio.NewScanner(out)
			for sc.Scan() {
				log.Debugf("worker %s: %s", w.Hostname(), sc.Text())
			}
			if err := sc.Err(); err != nil && err != io.EOF {
				return fmt.Errorf("%w: %s: %v", confly.ErrWorkerUnreachable, w.Hostname(), err)
			}
			return nil
		})
	}

	err := eg.Wait()
	for _, w := range workers {
		w.Close()
	}
	if err != nil {
		return err
	}

	if opts.Reduce {
		return reduceLocal(cfg, totalCubes, opts.OutDir)
	}
	return nil
}

// reduceLocal reads every cube file the workers produced, reconstructs
// each cube, and writes traversing files locally, exactly as the
// sequential --traverse flag does.
func reduceLocal(cfg *confly.Config, totalCubes int, outDir string) error {
	schema, err := cfg.Schema()
	if err != nil {
		return err
	}

	trav := confly.NewTraversingStore(totalCubes, int(cfg.Begin))
	for id := 0; id < totalCubes; id++ {
		path := filepath.Join(outDir, fmt.Sprintf("cube_%d.csv", int(cfg.Begin)+id))
		f, err := openCubeFile(path)
		if err != nil {
			return err
		}
		_, err = confly.ReadHypercube(f, int(cfg.Begin)+id, schema, ';', trav)
		f.Close()
		if err != nil {
			return err
		}
	}
	return trav.Flush(outDir)
}

func openCubeFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", confly.ErrCubeRead, err)
	}
	return f, nil
}
