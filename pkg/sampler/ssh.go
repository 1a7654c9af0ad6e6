package sampler

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"

	"github.com/edgewire-io/adinconf/pkg/util"
)

// SSHSampler obtains samples by running a per-characteristic measurement
// command on the DUT host over SSH. The command is invoked once per run
// with the requested count appended and must print one duration per line,
// already converted to the characteristic's unit, typically a small shell
// wrapper around register polling or ethtool on the target board.
type SSHSampler struct {
	addr   string // host:port
	config *ssh.ClientConfig

	// commands maps characteristic name to its measurement command.
	commands map[string]string

	mu     sync.Mutex
	client *ssh.Client
}

// NewSSHSampler creates a sampler that dials user@addr with password auth.
// The connection is established lazily on first Sample and reused.
func NewSSHSampler(addr, user, pass string, commands map[string]string) *SSHSampler {
	return &SSHSampler{
		addr: addr,
		config: &ssh.ClientConfig{
			User: user,
			Auth: []ssh.AuthMethod{
				ssh.Password(pass),
			},
			// Lab/test environment; production would verify host keys.
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		},
		commands: commands,
	}
}

// Sample implements Sampler.
func (s *SSHSampler) Sample(ctx context.Context, characteristic string, count int) ([]float64, error) {
	if count <= 0 {
		return nil, util.NewInputError("sampler", characteristic, fmt.Sprintf("sample count %d must be positive", count))
	}
	command, ok := s.commands[characteristic]
	if !ok || command == "" {
		return nil, util.NewInputError("sampler", characteristic, "no measurement command configured")
	}

	client, err := s.connect()
	if err != nil {
		return nil, err
	}

	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("ssh session for %s: %w", characteristic, err)
	}
	defer session.Close()

	// A context cancellation tears the session down so the blocked Run
	// returns instead of waiting on the remote command.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			session.Close()
		case <-done:
		}
	}()

	full := fmt.Sprintf("%s %d", command, count)
	util.WithCharacteristic(characteristic).Debugf("sampling via %q", full)

	out, err := session.Output(full)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("measurement command for %s: %w", characteristic, err)
	}

	samples, err := ParseSamples(out)
	if err != nil {
		return nil, fmt.Errorf("measurement output for %s: %w", characteristic, err)
	}
	if len(samples) != count {
		return nil, fmt.Errorf("measurement for %s returned %d samples, want %d", characteristic, len(samples), count)
	}
	return samples, nil
}

// Close shuts down the SSH connection if one was established.
func (s *SSHSampler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *SSHSampler) connect() (*ssh.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	client, err := ssh.Dial("tcp", s.addr, s.config)
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", s.addr, err)
	}
	s.client = client
	return client, nil
}

// ParseSamples parses measurement command output: one float per line,
// blank lines and #-comments ignored.
func ParseSamples(out []byte) ([]float64, error) {
	var samples []float64
	scanner := bufio.NewScanner(bytes.NewReader(out))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %q is not a number", line, text)
		}
		samples = append(samples, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples in output")
	}
	return samples, nil
}
