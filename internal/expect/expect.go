// Package expect implements the Prompt Expecter: an interactive
// pseudo-terminal spawned over SSH, matched against ordered regex
// patterns. The accumulate-buffer / per-read-deadline / pattern-match loop
// is grounded on newtlab/boot.go's readUntil closure, generalized here to
// ordered multi-pattern matching against a pty-backed SSH session instead
// of a raw net.Conn serial console.
package expect

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// ErrTimeout is returned by Expect when no pattern matches before the
// deadline.
var ErrTimeout = errors.New("expect: timeout waiting for pattern")

// ErrEndOfStream is returned by Expect when the remote shell exits before
// a pattern matches.
var ErrEndOfStream = errors.New("expect: end of stream")

// Expecter wraps an interactive SSH shell session.
type Expecter struct {
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	stdout  io.Reader

	mu  sync.Mutex
	buf []byte
}

// Dial opens an SSH connection to addr and starts an interactive shell
// over a requested pty, matching "ssh -l user host" with either password
// or public-key auth (pubkeyAuth selects which).
func Dial(addr, user, password string, pubkeyAuth bool, signer ssh.Signer, timeout time.Duration) (*Expecter, error) {
	config := &ssh.ClientConfig{
		User:            user,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	if pubkeyAuth && signer != nil {
		config.Auth = []ssh.AuthMethod{ssh.PublicKeys(signer)}
	} else {
		config.Auth = []ssh.AuthMethod{ssh.Password(password)}
	}

	return DialWithConfig(addr, config)
}

// DialWithConfig opens an SSH connection using a caller-built
// ssh.ClientConfig (e.g. one using ssh.RetryableAuthMethod to implement
// the password re-prompt retry policy) and starts an interactive shell
// over a requested pty.
func DialWithConfig(addr string, config *ssh.ClientConfig) (*Expecter, error) {
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("expect: dial %s@%s: %w", config.User, addr, err)
	}

	return newExpecter(client)
}

func newExpecter(client *ssh.Client) (*Expecter, error) {
	session, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("expect: new session: %w", err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := session.RequestPty("xterm", 200, 500, modes); err != nil {
		session.Close()
		client.Close()
		return nil, fmt.Errorf("expect: request pty: %w", err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		client.Close()
		return nil, fmt.Errorf("expect: stdin pipe: %w", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		client.Close()
		return nil, fmt.Errorf("expect: stdout pipe: %w", err)
	}

	if err := session.Shell(); err != nil {
		session.Close()
		client.Close()
		return nil, fmt.Errorf("expect: start shell: %w", err)
	}

	return &Expecter{
		client:  client,
		session: session,
		stdin:   stdin,
		stdout:  stdout,
	}, nil
}

// SendLine appends s plus a newline to the child's input.
func (e *Expecter) SendLine(s string) error {
	_, err := e.stdin.Write([]byte(s + "\n"))
	return err
}

// Match is the result of a successful Expect call.
type Match struct {
	Index  int
	Before string
	After  string
}

// reader abstracts the blocking read call so tests can inject a fake
// stdout without a real pty.
type reader interface {
	Read(p []byte) (int, error)
}

// Expect blocks until one of patterns matches the accumulated output, or
// timeout elapses. Matching runs against the accumulated byte stream
// converted to a Go string as is: invalid UTF-8 bytes are not replaced in
// the buffer, so Before and After carry them unchanged. Patterns are not
// anchored by this package — callers supply their own anchors. On match,
// the buffer is advanced past the match; Before is the text consumed up
// to the match, After is the matched text itself.
func (e *Expecter) Expect(patterns []*regexp.Regexp, timeout time.Duration) (Match, error) {
	type readResult struct {
		n   int
		err error
	}

	chunks := make(chan readResult, 1)
	tmp := make([]byte, 4096)

	read := func() {
		n, err := e.stdout.Read(tmp)
		chunks <- readResult{n, err}
	}

	deadline := time.Now().Add(timeout)
	go read()

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Match{}, ErrTimeout
		}

		select {
		case res := <-chunks:
			if res.n > 0 {
				e.mu.Lock()
				e.buf = append(e.buf, tmp[:res.n]...)
				text := string(e.buf)
				e.mu.Unlock()

				for i, pat := range patterns {
					loc := pat.FindStringIndex(text)
					if loc != nil {
						before := text[:loc[0]]
						after := text[loc[0]:loc[1]]
						e.mu.Lock()
						e.buf = []byte(text[loc[1]:])
						e.mu.Unlock()
						return Match{Index: i, Before: before, After: after}, nil
					}
				}
			}
			if res.err != nil {
				if res.err == io.EOF {
					return Match{}, ErrEndOfStream
				}
				return Match{}, fmt.Errorf("expect: read: %w", res.err)
			}
			go read()

		case <-time.After(remaining):
			return Match{}, ErrTimeout
		}
	}
}

// Drain consumes any residual output by repeatedly expecting prompt with
// a short timeout until none arrives, clearing banners/MOTDs after login
// — grounded on netcat_cli.py's clear_pexpect_buffer.
func (e *Expecter) Drain(prompt *regexp.Regexp, perAttempt time.Duration) {
	if perAttempt <= 0 || perAttempt > 2*time.Second {
		perAttempt = 2 * time.Second
	}
	for {
		_, err := e.Expect([]*regexp.Regexp{prompt}, perAttempt)
		if err != nil {
			return
		}
	}
}

// Close terminates the child session; idempotent.
func (e *Expecter) Close() error {
	if e.session != nil {
		e.session.Close()
		e.session = nil
	}
	if e.client != nil {
		err := e.client.Close()
		e.client = nil
		return err
	}
	return nil
}
