// Package session provides the interactive management-session capability
// used by configuration drivers. It wraps an SSH shell channel with
// prompt-aware reads, bounded timeouts, optional transcript logging, and
// SFTP file retrieval for configuration exports.
package session

import (
	"context"
	"fmt"

	"github.com/netforge/netforge/pkg/inventory"
)

// Session is an open management session to one device. A session belongs
// to exactly one device at a time; its open -> use -> close lifecycle is
// never interleaved with another device's.
type Session interface {
	// SendLine writes one command line and returns the echoed output.
	// The read completes when a prompt is recognized or when the output
	// has been quiet for the settle window; it fails when the command
	// timeout or ctx expires first. No call blocks indefinitely.
	SendLine(ctx context.Context, line string) (string, error)

	// SendBlock writes a full configuration block and returns the
	// combined echoed output, with the same completion rules as
	// SendLine.
	SendBlock(ctx context.Context, lines []string) (string, error)

	// Prompt returns the most recently recognized device prompt.
	Prompt() string

	// Fetch downloads a remote file over SFTP, for drivers whose
	// platform exports configuration to a file.
	Fetch(ctx context.Context, remotePath, localPath string) error

	// Close tears down the session and releases the connection.
	Close() error
}

// Dialer opens sessions. The engine depends on this interface so tests
// and future transports can substitute the SSH implementation.
type Dialer interface {
	Open(ctx context.Context, dev inventory.Device) (Session, error)
}

// ConnectError reports that a management session could not be
// established. It is device-scoped and never fatal to a run.
type ConnectError struct {
	Device string
	Host   string
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to %s (%s): %v", e.Device, e.Host, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
