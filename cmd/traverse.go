package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/statdisc/confly/confly"
)

func runTraverse() error {
	cfg, err := confly.LoadConfig(confPath)
	if err != nil {
		return err
	}
	schema, err := cfg.Schema()
	if err != nil {
		return err
	}

	ids, err := discoverCubeIDs(cfg.Path.DirOutput)
	if err != nil {
		return err
	}

	trav := confly.NewTraversingStore(int(cfg.Size), int(cfg.Begin))
	for _, id := range ids {
		path := filepath.Join(cfg.Path.DirOutput, fmt.Sprintf("cube_%d.csv", id))
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("%w: %v", confly.ErrCubeRead, err)
		}
		_, err = confly.ReadHypercube(f, id, schema, ';', trav)
		f.Close()
		if err != nil {
			return err
		}
	}
	return trav.Flush(cfg.Path.DirOutput)
}

// discoverCubeIDs lists cube_<id>.csv files under dir and returns their
// ids in ascending order.
func discoverCubeIDs(dir string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", confly.ErrCubeRead, err)
	}

	var ids []int
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "cube_") || !strings.HasSuffix(name, ".csv") {
			continue
		}
		idStr := strings.TrimSuffix(strings.TrimPrefix(name, "cube_"), ".csv")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids, nil
}
