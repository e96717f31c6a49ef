package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/statdisc/confly/confly"
)

// ptableScript is the external R collaborator that generates the P-table,
// bundled in the project directory.
const ptableScript = "crt_ptable.r"

func runPTable() error {
	cfg, err := confly.LoadConfig(confPath)
	if err != nil {
		return err
	}

	script := filepath.Join(cfg.Path.DirProject, ptableScript)
	if _, err := os.Stat(script); err != nil {
		return fmt.Errorf("%w: P-table script %s: %v", confly.ErrPTableRead, script, err)
	}

	cmd := exec.Command("Rscript", script, cfg.Path.FileInput, cfg.Path.FilePTable)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	logrus.Infof("generating P-table via %s", script)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %v", confly.ErrPTableRead, err)
	}
	return nil
}
