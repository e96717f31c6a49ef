package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/statdisc/confly/confly"
	"github.com/statdisc/confly/confly/cluster"
)

var (
	sshUser        string
	knownHostsPath string
	reduceLocally  bool
)

func init() {
	rootCmd.Flags().StringVar(&sshUser, "user", "", "SSH user for --distribute")
	rootCmd.Flags().StringVar(&knownHostsPath, "known-hosts", sshKnownHostsDefault(), "known_hosts file for host key verification")
	rootCmd.Flags().BoolVar(&reduceLocally, "reduce", true, "after --distribute returns, reduce worker cube output into traversing files locally")
}

func sshKnownHostsDefault() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ssh/known_hosts"
	}
	return home + "/.ssh/known_hosts"
}

func runDistribute() error {
	cfg, err := confly.LoadConfig(confPath)
	if err != nil {
		return err
	}
	if len(cfg.Machines) == 0 {
		return fmt.Errorf("confly: --distribute requires a non-empty \"machines\" list in %s", confPath)
	}

	prompt := func(hostname, user string) (string, error) {
		fmt.Printf("password for %s@%s: ", user, hostname)
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	workers := make([]cluster.Worker, len(cfg.Machines))
	for i, host := range cfg.Machines {
		w, err := cluster.DialSSHWorker(host, sshUser, knownHostsPath, prompt)
		if err != nil {
			for _, opened := range workers[:i] {
				if opened != nil {
					opened.Close()
				}
			}
			return fmt.Errorf("%w: %v", confly.ErrWorkerUnreachable, err)
		}
		workers[i] = w
	}

	opts := cluster.DistributeOptions{ConfPath: confPath, OutDir: cfg.Path.DirOutput, Reduce: reduceLocally}
	return cluster.Distribute(context.Background(), workers, int(cfg.Size), opts, cfg, logrus.StandardLogger())
}
