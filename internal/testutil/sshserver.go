// Package testutil provides test fixtures: a loopback SSH server
// simulating a device's interactive shell, standing in for the teacher's
// Redis/lab fixtures (internal/testutil in aldrin-isaac-newtron) which
// have no analogue in this domain.
package testutil

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"
)

// FakeDevice is a minimal SSH server that authenticates one user/password
// (or accepts any public key) and then drives a scripted line-oriented
// shell: for each line it receives, it looks up a canned response in
// Responses (falling back to echoing the prompt) and writes it back.
type FakeDevice struct {
	Addr string

	Username       string
	Password       string
	AcceptAnyKey   bool
	Prompt         string
	Responses      map[string]string
	RejectPassword int // number of password attempts to reject before accepting

	listener  net.Listener
	attempts  int
	hostKey   ssh.Signer

	receivedMu sync.Mutex
	received   []string
}

// Received returns every line the fake device was sent, in order,
// trimmed the same way handleSession trims them before matching
// Responses. Safe to call once the session under test has closed.
func (f *FakeDevice) Received() []string {
	f.receivedMu.Lock()
	defer f.receivedMu.Unlock()
	out := make([]string, len(f.received))
	copy(out, f.received)
	return out
}

// NewFakeDevice starts listening on 127.0.0.1:0 and returns the fixture.
// Call Serve to accept one connection.
func NewFakeDevice(username, password, prompt string) (*FakeDevice, error) {
	signer, err := generateHostKey()
	if err != nil {
		return nil, err
	}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	return &FakeDevice{
		Addr:      l.Addr().String(),
		Username:  username,
		Password:  password,
		Prompt:    prompt,
		Responses: make(map[string]string),
		listener:  l,
		hostKey:   signer,
	}, nil
}

// Serve accepts and handles exactly one connection, blocking until the
// session closes. Intended to run in a goroutine.
func (f *FakeDevice) Serve() error {
	conn, err := f.listener.Accept()
	if err != nil {
		return err
	}
	defer conn.Close()

	config := &ssh.ServerConfig{
		PasswordCallback: func(meta ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			f.attempts++
			if f.attempts <= f.RejectPassword {
				return nil, fmt.Errorf("password rejected")
			}
			if meta.User() == f.Username && string(pass) == f.Password {
				return nil, nil
			}
			return nil, fmt.Errorf("invalid credentials")
		},
		PublicKeyCallback: func(meta ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if f.AcceptAnyKey {
				return nil, nil
			}
			return nil, fmt.Errorf("public key rejected")
		},
	}
	config.AddHostKey(f.hostKey)

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		return err
	}
	defer sshConn.Close()
	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			newChannel.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		channel, requests, err := newChannel.Accept()
		if err != nil {
			return err
		}
		go f.handleSession(channel, requests)
	}
	return nil
}

func (f *FakeDevice) handleSession(channel ssh.Channel, requests <-chan *ssh.Request) {
	defer channel.Close()

	shellStarted := make(chan struct{})
	go func() {
		for req := range requests {
			switch req.Type {
			case "pty-req", "shell":
				req.Reply(true, nil)
				if req.Type == "shell" {
					close(shellStarted)
				}
			default:
				req.Reply(false, nil)
			}
		}
	}()

	<-shellStarted

	fmt.Fprintf(channel, "Welcome banner\n%s", f.Prompt)

	scanner := bufio.NewScanner(channel)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		f.receivedMu.Lock()
		f.received = append(f.received, line)
		f.receivedMu.Unlock()
		if resp, ok := f.Responses[line]; ok {
			fmt.Fprintf(channel, "%s\n%s\n%s", line, resp, f.Prompt)
		} else {
			fmt.Fprintf(channel, "%s\n%s", line, f.Prompt)
		}
	}
}

// Close stops accepting new connections.
func (f *FakeDevice) Close() error {
	return f.listener.Close()
}
