package confly

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ComputePartition derives (local_cubes, first_cube_id) for one worker out
// of workerCount cooperating workers building total cubes starting at
// begin. The last worker also takes the remainder. workerCount <= 1 is
// single-worker mode: the whole run belongs to one process.
func ComputePartition(total int, begin int64, workerIndex, workerCount int) (localCubes int, firstCubeID int64) {
	if workerCount <= 1 {
		return total, begin
	}
	base := total / workerCount
	localCubes = base
	if workerIndex == workerCount-1 {
		localCubes += total % workerCount
	}
	firstCubeID = begin + int64(workerIndex)*int64(base)
	return
}

// AggregateOptions controls one driver invocation: which slice of the
// total cube space this process owns, and whether it should skip the
// traversing pass (set by the distribution driver on every remote
// worker).
type AggregateOptions struct {
	NoTraverse  bool
	WorkerIndex int
	WorkerCount int
}

// Aggregate runs the full local aggregation pipeline: load microdata and
// P-table, partition the cube space, build every local cube in parallel,
// and, unless suppressed, reduce the traversing store.
func Aggregate(cfg *Config, outDir string, opts AggregateOptions, metrics *Metrics, log *logrus.Logger) error {
	schema, err := cfg.Schema()
	if err != nil {
		return err
	}

	inF, err := os.Open(cfg.Path.FileInput)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMicroRead, err)
	}
	defer inF.Close()

	ptabF, err := os.Open(cfg.Path.FilePTable)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPTableRead, err)
	}
	defer ptabF.Close()

	ptab := NewPTable()
	if err := ptab.Load(ptabF); err != nil {
		return err
	}
	noise := cfg.ResponseNoise()

	// Column 0's record-key draw happens once, up front, on a single
	// engine seeded from the master seed, before any per-cube stream is
	// derived, so the two purposes never share mutable state.
	recordKeyEngine := NewEngine(uint32(cfg.PRNG.Seed))
	micro := NewMicro(schema)
	if err := micro.Ingest(inF, ';', recordKeyEngine); err != nil {
		return err
	}

	total := int(cfg.Size)
	localCubes, firstCubeID := ComputePartition(total, cfg.Begin, opts.WorkerIndex, opts.WorkerCount)

	travSize := 0
	if !opts.NoTraverse {
		travSize = total
	}
	trav := NewTraversingStore(travSize, int(cfg.Begin))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}

	var eg errgroup.Group
	records := micro.Records()
	meta := micro.Meta()

	for k := 0; k < localCubes; k++ {
		k := k
		eg.Go(func() error {
			start := time.Now()
			cubeID := int(firstCubeID) + k

			cubeRng := CubeEngine(cfg.PRNG.Seed, int(firstCubeID), k)
			cube := NewHypercube(cubeID, schema, schema.Mask())

			sample := SampleIndices(cubeRng, len(records), cfg.Rate)
			for _, idx := range sample {
				cube.Update(records[idx])
			}

			if err := writeCube(cube, outDir, meta, ptab, noise, cubeRng, trav); err != nil {
				if metrics != nil {
					metrics.CubeWriteErrors.Inc()
				}
				log.Errorf("cube %d: %v", cubeID, err)
				return nil
			}

			if metrics != nil {
				metrics.CubesBuilt.Inc()
				metrics.CubeBuildTime.Observe(time.Since(start).Seconds())
			}
			return nil
		})
	}
	// The closures above report and swallow per-cube failures, so Wait
	// cannot fail; it only blocks for the barrier.
	_ = eg.Wait()

	if !trav.Disabled() {
		if err := trav.Flush(outDir); err != nil {
			return err
		}
	}
	return nil
}

func writeCube(cube *Hypercube, outDir string, meta Metadata, ptab *PTable, noise NoiseParams, rng *Engine, trav *TraversingStore) error {
	path := filepath.Join(outDir, fmt.Sprintf("cube_%d.csv", cube.ID()))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := cube.FinaliseAndEmit(bw, meta, ptab, noise, rng, trav); err != nil {
		return err
	}
	return bw.Flush()
}

// DefaultRegistry is the process-wide Prometheus registry used by the CLI
// layer; tests and embedders should construct their own via NewMetrics.
var DefaultRegistry = prometheus.NewRegistry()
