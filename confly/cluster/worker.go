// Package cluster implements the distribution driver: fanning aggregation
// out across a list of worker hostnames and reducing their cube output
// locally.
package cluster

import (
	"context"
	"io"
)

// Worker is the abstract remote-execution contract the distribution
// driver depends on. The aggregation core never sees the transport, only
// this interface; concrete implementations (SSHWorker) own the session.
type Worker interface {
	// Hostname returns the name this worker was dialled as.
	Hostname() string
	// Run executes command on the worker and streams its stdout until
	// EOF. The confly worker process prints its own hostname as its first
	// output line; an implementation may consume that marker line before
	// returning the stream (SSHWorker drops exactly one line).
	Run(ctx context.Context, command string) (io.Reader, error)
	// Close releases the underlying session.
	Close() error
}
