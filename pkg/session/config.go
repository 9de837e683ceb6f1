package session

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/netforge/netforge/pkg/inventory"
)

// Options tunes the SSH dialer. The zero value is not usable; construct
// with DefaultOptions.
type Options struct {
	// ConnectTimeout bounds TCP dial plus SSH handshake.
	ConnectTimeout time.Duration

	// CommandTimeout bounds every prompt-awaited read. Exceeding it
	// surfaces as an error on the send call, never a hang.
	CommandTimeout time.Duration

	// SettleDelay is the quiet window after which a read completes even
	// without a recognized prompt. Device firmware with unreliable
	// prompt echoes depends on this.
	SettleDelay time.Duration

	// KnownHostsPath enables host key verification against an OpenSSH
	// known_hosts file when StrictHostKeyChecking is set.
	KnownHostsPath        string
	StrictHostKeyChecking bool
}

// DefaultOptions returns the timeouts used by the CLI.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout: 15 * time.Second,
		CommandTimeout: 30 * time.Second,
		SettleDelay:    500 * time.Millisecond,
	}
}

// clientConfig builds the ssh.ClientConfig for a device. Password
// devices also get keyboard-interactive auth; many network operating
// systems present the password prompt that way.
func (o Options) clientConfig(dev inventory.Device) (*ssh.ClientConfig, error) {
	var methods []ssh.AuthMethod

	if dev.Password != "" {
		password := dev.Password
		methods = append(methods, ssh.Password(password))
		methods = append(methods, ssh.KeyboardInteractive(
			func(user, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			},
		))
	}

	if dev.KeyPath != "" {
		keyBytes, err := os.ReadFile(dev.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("device %q has no usable authentication method", dev.Name)
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey() //nolint:gosec // network gear rarely ships pinned keys
	if o.StrictHostKeyChecking && o.KnownHostsPath != "" {
		cb, err := knownhosts.New(o.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts: %w", err)
		}
		hostKeyCallback = cb
	}

	return &ssh.ClientConfig{
		User:            dev.Username,
		Auth:            methods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         o.ConnectTimeout,
	}, nil
}
