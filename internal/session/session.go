// Package session implements the CLI Session base contract: open, harden,
// send, close, over the Prompt Expecter, grounded on netcat_cli.py's
// NetCatCliAccess (open_cli / send_command / clear_pexpect_buffer).
package session

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/sebmaj/netcat-go/internal/expect"
	"github.com/sebmaj/netcat-go/internal/netcaterr"
	"github.com/sebmaj/netcat-go/pkg/util"
)

// State is the session's lifecycle state.
type State int

const (
	StateInit State = iota
	StateAuthing
	StateOpen
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateAuthing:
		return "AUTHING"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// LoginTimeout is the default SSH login deadline.
const LoginTimeout = 60 * time.Second

// DefaultCommandTimeout is the default deadline for a single command.
const DefaultCommandTimeout = 90 * time.Second

// Session wraps an Expecter with the device-prompt state machine. Only
// OPEN accepts Send; CLOSED and FAILED are terminal.
type Session struct {
	DeviceName string

	expecter *expect.Expecter
	prompt   *regexp.Regexp
	state    State
}

// Open spawns the interactive shell and authenticates. pubkeyAuth selects
// public-key over password auth (mirroring "ssh -o PubkeyAuthentication=
// {yes|no}"). Password auth accepts exactly one retry after a 5-second
// backoff on re-prompt, implemented via ssh.RetryableAuthMethod; a second
// rejection surfaces as AuthFailure. Host-key confirmation is handled by
// the underlying transport (InsecureIgnoreHostKey), so the interactive
// "first contact" question the original pexpect driver had to answer
// never reaches this layer — see DESIGN.md.
func Open(deviceName, addr, user, password string, pubkeyAuth bool, signer ssh.Signer, prompt *regexp.Regexp) (*Session, error) {
	s := &Session{DeviceName: deviceName, prompt: prompt, state: StateAuthing}

	config := &ssh.ClientConfig{
		User:            user,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         LoginTimeout,
	}

	if pubkeyAuth {
		if signer == nil {
			s.state = StateFailed
			return nil, netcaterr.ConfigurationFault(deviceName, "open", "public-key auth requested but no signer provided")
		}
		config.Auth = []ssh.AuthMethod{ssh.PublicKeys(signer)}
	} else {
		attempt := 0
		callback := func() (string, error) {
			attempt++
			if attempt > 1 {
				time.Sleep(5 * time.Second)
			}
			return password, nil
		}
		config.Auth = []ssh.AuthMethod{ssh.RetryableAuthMethod(ssh.PasswordCallback(callback), 2)}
	}

	exp, err := expect.DialWithConfig(addr, config)
	if err != nil {
		s.state = StateFailed
		return nil, classifyDialError(deviceName, err)
	}

	s.expecter = exp
	s.state = StateOpen

	// Clear login banner/MOTD before the first Send.
	s.expecter.Drain(prompt, 2*time.Second)

	util.WithDevice(deviceName).Debug("CLI session open")
	return s, nil
}

func classifyDialError(deviceName string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return netcaterr.Refused(deviceName, "open", err.Error())
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return netcaterr.Timeout(deviceName, "open", err.Error())
	case strings.Contains(msg, "unable to authenticate") || strings.Contains(msg, "auth"):
		return netcaterr.AuthFailure(deviceName, "open", err.Error())
	default:
		return netcaterr.ProtocolFault(deviceName, "open", err.Error())
	}
}

// Send writes one line and waits for the current prompt (or altExpect
// when provided, e.g. a reboot banner), returning the text between the
// echoed command and the matched prompt.
func (s *Session) Send(command string) (string, error) {
	return s.SendWithTimeout(command, DefaultCommandTimeout, nil)
}

// SendWithTimeout is Send with an explicit timeout and optional
// alternate-prompt override.
func (s *Session) SendWithTimeout(command string, timeout time.Duration, altExpect *regexp.Regexp) (string, error) {
	if s.state != StateOpen {
		return "", netcaterr.ProtocolFault(s.DeviceName, "send", fmt.Sprintf("session not open (state=%s)", s.state))
	}

	if err := s.expecter.SendLine(command); err != nil {
		s.state = StateFailed
		return "", netcaterr.ProtocolFault(s.DeviceName, "send", err.Error())
	}

	waitFor := s.prompt
	if altExpect != nil {
		waitFor = altExpect
	}

	match, err := s.expecter.Expect([]*regexp.Regexp{waitFor}, timeout)
	if err != nil {
		if err == expect.ErrTimeout {
			return "", netcaterr.Timeout(s.DeviceName, "send:"+command, "deadline exceeded waiting for prompt")
		}
		s.state = StateFailed
		return "", netcaterr.ProtocolFault(s.DeviceName, "send:"+command, err.Error())
	}

	return match.Before, nil
}

// SendExpectAny writes one line, then waits for the first of patterns to
// match, returning which one matched along with the surrounding text. Used
// by adapters that branch on which of several prompts comes back (e.g. a
// commit that may ask to synchronize HA peers first).
func (s *Session) SendExpectAny(command string, patterns []*regexp.Regexp, timeout time.Duration) (expect.Match, error) {
	if s.state != StateOpen {
		return expect.Match{}, netcaterr.ProtocolFault(s.DeviceName, "send", fmt.Sprintf("session not open (state=%s)", s.state))
	}

	if err := s.expecter.SendLine(command); err != nil {
		s.state = StateFailed
		return expect.Match{}, netcaterr.ProtocolFault(s.DeviceName, "send", err.Error())
	}

	match, err := s.expecter.Expect(patterns, timeout)
	if err != nil {
		if err == expect.ErrTimeout {
			return expect.Match{}, netcaterr.Timeout(s.DeviceName, "send:"+command, "deadline exceeded waiting for pattern")
		}
		s.state = StateFailed
		return expect.Match{}, netcaterr.ProtocolFault(s.DeviceName, "send:"+command, err.Error())
	}
	return match, nil
}

// Prompt returns the session's configured default prompt pattern.
func (s *Session) Prompt() *regexp.Regexp {
	return s.prompt
}

// Close terminates the child SSH session; idempotent, safe to call from
// every exit path (success, fault, cancellation).
func (s *Session) Close() error {
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	if s.expecter != nil {
		return s.expecter.Close()
	}
	return nil
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	return s.state
}
