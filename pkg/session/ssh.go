package session

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/netforge/netforge/pkg/inventory"
)

// promptPattern recognizes the interactive prompts of the supported
// platforms: Huawei VRP user/system views (<r1>, [r1], [~r1]) and
// RouterOS ("[admin@sw1] >").
var promptPattern = regexp.MustCompile(`(?m)[<\[][~*]?[\w@.\-/: ]+[>\]]\s*[>#]?\s*$`)

// SSHDialer opens SSH shell sessions to inventory devices.
type SSHDialer struct {
	opts Options
}

// NewSSHDialer creates a dialer with the given options.
func NewSSHDialer(opts Options) *SSHDialer {
	return &SSHDialer{opts: opts}
}

// Open establishes the SSH connection, starts a shell with a PTY, and
// consumes the login banner up to the first prompt. Every failure is
// wrapped in *ConnectError.
func (d *SSHDialer) Open(ctx context.Context, dev inventory.Device) (Session, error) {
	cfg, err := d.opts.clientConfig(dev)
	if err != nil {
		return nil, &ConnectError{Device: dev.Name, Host: dev.Host, Err: err}
	}

	addr := dev.Address()
	dialer := net.Dialer{Timeout: d.opts.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &ConnectError{Device: dev.Name, Host: dev.Host, Err: err}
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, &ConnectError{Device: dev.Name, Host: dev.Host, Err: err}
	}
	client := ssh.NewClient(sshConn, chans, reqs)

	s := &sshSession{
		device: dev.Name,
		client: client,
		opts:   d.opts,
		data:   make(chan []byte, 16),
	}

	if logFile := dev.SessionLogFile(); logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err == nil {
			// Transcript logging is best-effort; a failure to open the
			// file must not block the session.
			s.transcript, _ = os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		}
	}

	if err := s.startShell(); err != nil {
		_ = s.Close()
		return nil, &ConnectError{Device: dev.Name, Host: dev.Host, Err: err}
	}

	// Drain the banner and capture the initial prompt.
	if out, err := s.readUntilPrompt(ctx); err != nil {
		_ = s.Close()
		return nil, &ConnectError{Device: dev.Name, Host: dev.Host,
			Err: fmt.Errorf("no prompt after login: %w", err)}
	} else {
		s.updatePrompt(out)
	}

	return s, nil
}

type sshSession struct {
	device     string
	client     *ssh.Client
	sess       *ssh.Session
	stdin      io.WriteCloser
	data       chan []byte
	opts       Options
	prompt     string
	transcript *os.File
}

func (s *sshSession) startShell() error {
	sess, err := s.client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	s.sess = sess

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 115200,
		ssh.TTY_OP_OSPEED: 115200,
	}
	if err := sess.RequestPty("vt100", 200, 80, modes); err != nil {
		return fmt.Errorf("failed to request pty: %w", err)
	}

	stdin, err := sess.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdin: %w", err)
	}
	s.stdin = stdin

	stdout, err := sess.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout: %w", err)
	}

	if err := sess.Shell(); err != nil {
		return fmt.Errorf("failed to start shell: %w", err)
	}

	go s.readLoop(stdout)
	return nil
}

// readLoop pumps shell output into the data channel until EOF.
func (s *sshSession) readLoop(r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.data <- chunk
		}
		if err != nil {
			close(s.data)
			return
		}
	}
}

// SendLine implements Session.
func (s *sshSession) SendLine(ctx context.Context, line string) (string, error) {
	if err := s.write(line + "\n"); err != nil {
		return "", err
	}
	out, err := s.readUntilPrompt(ctx)
	s.updatePrompt(out)
	return out, err
}

// SendBlock implements Session. The block is written as one unit and the
// combined echo is awaited, matching devices that reliably re-echo a
// prompt after a pasted configuration block.
func (s *sshSession) SendBlock(ctx context.Context, lines []string) (string, error) {
	if err := s.write(strings.Join(lines, "\n") + "\n"); err != nil {
		return "", err
	}
	out, err := s.readUntilPrompt(ctx)
	s.updatePrompt(out)
	return out, err
}

func (s *sshSession) write(text string) error {
	if s.transcript != nil {
		_, _ = s.transcript.WriteString(text)
	}
	if _, err := io.WriteString(s.stdin, text); err != nil {
		return fmt.Errorf("session write to %s failed: %w", s.device, err)
	}
	return nil
}

// readUntilPrompt accumulates output until a prompt is recognized, the
// output stays quiet for the settle window, the command timeout expires,
// or ctx is cancelled. Accumulated output is always returned so callers
// can report partial transcripts.
func (s *sshSession) readUntilPrompt(ctx context.Context) (string, error) {
	var sb strings.Builder

	deadline := time.NewTimer(s.opts.CommandTimeout)
	defer deadline.Stop()
	quiet := time.NewTimer(s.opts.SettleDelay)
	defer quiet.Stop()

	for {
		select {
		case chunk, ok := <-s.data:
			if !ok {
				return sb.String(), fmt.Errorf("session to %s closed by peer", s.device)
			}
			if s.transcript != nil {
				_, _ = s.transcript.Write(chunk)
			}
			sb.Write(chunk)
			if promptPattern.MatchString(tail(sb.String())) {
				return sb.String(), nil
			}
			if !quiet.Stop() {
				select {
				case <-quiet.C:
				default:
				}
			}
			quiet.Reset(s.opts.SettleDelay)

		case <-quiet.C:
			if sb.Len() > 0 {
				return sb.String(), nil
			}
			quiet.Reset(s.opts.SettleDelay)

		case <-deadline.C:
			return sb.String(), fmt.Errorf("timed out after %s waiting for prompt from %s",
				s.opts.CommandTimeout, s.device)

		case <-ctx.Done():
			return sb.String(), ctx.Err()
		}
	}
}

// tail returns the last portion of the buffer; prompt matching only ever
// needs the final line.
func tail(text string) string {
	const window = 256
	if len(text) <= window {
		return text
	}
	return text[len(text)-window:]
}

func (s *sshSession) updatePrompt(output string) {
	if m := promptPattern.FindAllString(output, -1); len(m) > 0 {
		s.prompt = strings.TrimSpace(m[len(m)-1])
	}
}

// Prompt implements Session.
func (s *sshSession) Prompt() string {
	return s.prompt
}

// Fetch implements Session using an SFTP subsystem on the same
// connection.
func (s *sshSession) Fetch(ctx context.Context, remotePath, localPath string) error {
	client, err := sftp.NewClient(s.client)
	if err != nil {
		return fmt.Errorf("failed to open sftp channel to %s: %w", s.device, err)
	}
	defer client.Close()

	src, err := client.Open(remotePath)
	if err != nil {
		return fmt.Errorf("failed to open remote file %s: %w", remotePath, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to download %s: %w", remotePath, err)
	}
	return nil
}

// Close implements Session.
func (s *sshSession) Close() error {
	if s.transcript != nil {
		_ = s.transcript.Close()
	}
	if s.sess != nil {
		_ = s.sess.Close()
	}
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
