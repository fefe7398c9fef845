// Package device talks to an IOS-XR router over SSH: it runs show commands
// and applies configuration in a single commit.
package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/newtron-network/xrvrf/pkg/util"
)

// ShowVRFCommand prints the VRF section of the running configuration.
const ShowVRFCommand = "show running-config vrf"

// Config holds the SSH connection parameters.
type Config struct {
	Host           string // host or host:port; port defaults to 22
	User           string
	Password       string
	KnownHostsFile string // empty disables host key verification
	Timeout        time.Duration
}

// Client is an SSH connection to one router.
type Client struct {
	host string
	ssh  *ssh.Client
}

// Dial opens an SSH connection to the router.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	hostKey := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHostsFile != "" {
		cb, err := knownhosts.New(cfg.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("loading known hosts %s: %w", cfg.KnownHostsFile, err)
		}
		hostKey = cb
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	clientConfig := &ssh.ClientConfig{
		User: cfg.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(cfg.Password),
		},
		HostKeyCallback: hostKey,
		Timeout:         timeout,
	}

	addr := hostPort(cfg.Host)
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("SSH dial %s: %w", addr, err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("SSH handshake %s: %w", addr, err)
	}

	util.WithDevice(cfg.Host).Debug("connected")
	return &Client{host: cfg.Host, ssh: ssh.NewClient(sshConn, chans, reqs)}, nil
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c.ssh == nil {
		return nil
	}
	return c.ssh.Close()
}

// ExecCommand runs a command on the router and returns the combined output.
// The SSH session is created per-call (stateless).
func (c *Client) ExecCommand(cmd string) (string, error) {
	if c.ssh == nil {
		return "", util.ErrNotConnected
	}
	session, err := c.ssh.NewSession()
	if err != nil {
		return "", fmt.Errorf("SSH session: %w", err)
	}
	defer session.Close()

	output, err := session.CombinedOutput(cmd)
	if err != nil {
		return string(output), fmt.Errorf("SSH exec '%s': %w", cmd, err)
	}
	return string(output), nil
}

// Apply enters configuration mode, sends commands, and commits them.
// The context bounds the whole session.
func (c *Client) Apply(ctx context.Context, commands []string) error {
	if c.ssh == nil {
		return util.ErrNotConnected
	}
	session, err := c.ssh.NewSession()
	if err != nil {
		return fmt.Errorf("SSH session: %w", err)
	}
	defer session.Close()

	var out bytes.Buffer
	session.Stdout = &out
	session.Stderr = &out
	stdin, err := session.StdinPipe()
	if err != nil {
		return fmt.Errorf("SSH stdin: %w", err)
	}
	if err := session.Shell(); err != nil {
		return fmt.Errorf("SSH shell: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		_, werr := io.WriteString(stdin, configScript(commands))
		stdin.Close()
		if werr != nil {
			done <- werr
			return
		}
		done <- session.Wait()
	}()

	select {
	case <-ctx.Done():
		session.Close()
		return ctx.Err()
	case err := <-done:
		if err != nil {
			var exitErr *ssh.ExitMissingError
			if !errors.As(err, &exitErr) {
				return fmt.Errorf("SSH config session: %w", err)
			}
		}
	}

	if err := checkOutput(out.String()); err != nil {
		return err
	}
	util.WithDevice(c.host).Infof("committed %d commands", len(commands))
	return nil
}

func hostPort(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, "22")
}

// configScript wraps commands in a configure/commit/end session.
func configScript(commands []string) string {
	var sb strings.Builder
	sb.WriteString("configure terminal\n")
	for _, cmd := range commands {
		sb.WriteString(cmd)
		sb.WriteByte('\n')
	}
	sb.WriteString("commit\nend\nexit\n")
	return sb.String()
}

// errorMarkers are the prefixes IOS-XR uses for rejected input and failed commits.
var errorMarkers = []string{
	"% Invalid input",
	"% Incomplete command",
	"% Ambiguous command",
	"% Failed to ",
}

// checkOutput scans session output for error markers.
func checkOutput(output string) error {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		for _, m := range errorMarkers {
			if strings.HasPrefix(line, m) {
				return &CommitError{Line: line, Output: output}
			}
		}
	}
	return nil
}

// CommitError is returned when the router rejects a command or the commit.
type CommitError struct {
	Line   string
	Output string
}

func (e *CommitError) Error() string {
	return "device rejected configuration: " + e.Line
}
