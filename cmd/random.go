package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/statdisc/confly/confly"
)

func runRandom() error {
	cfg, err := confly.LoadConfig(confPath)
	if err != nil {
		return err
	}
	return confly.RandomDiagnostic(cfg, cfg.Path.DirOutput, logrus.StandardLogger())
}
