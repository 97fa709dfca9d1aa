package expect

import (
	"bytes"
	"io"
	"regexp"
	"testing"
	"time"
)

// nopWriteCloser adapts a bytes.Buffer to io.WriteCloser for tests.
type nopWriteCloser struct {
	*bytes.Buffer
}

func (nopWriteCloser) Close() error { return nil }

func newTestExpecter(stdout io.Reader) (*Expecter, *bytes.Buffer) {
	var sent bytes.Buffer
	return &Expecter{
		stdin:  nopWriteCloser{&sent},
		stdout: stdout,
	}, &sent
}

func TestSendLineWritesNewline(t *testing.T) {
	r, _ := io.Pipe()
	e, sent := newTestExpecter(r)

	if err := e.SendLine("show clock"); err != nil {
		t.Fatalf("SendLine() error: %v", err)
	}
	if sent.String() != "show clock\n" {
		t.Errorf("sent = %q, want %q", sent.String(), "show clock\n")
	}
}

func TestExpectMatchesFirstPattern(t *testing.T) {
	pr, pw := io.Pipe()
	e, _ := newTestExpecter(pr)

	go func() {
		pw.Write([]byte("show clock\nWed Jul 30 12:00:00\nvf1cr1#"))
	}()

	prompt := regexp.MustCompile(`vf1cr1#`)
	match, err := e.Expect([]*regexp.Regexp{prompt}, 2*time.Second)
	if err != nil {
		t.Fatalf("Expect() error: %v", err)
	}
	if match.Index != 0 {
		t.Errorf("match.Index = %d, want 0", match.Index)
	}
	if match.Before != "show clock\nWed Jul 30 12:00:00\n" {
		t.Errorf("match.Before = %q", match.Before)
	}
	if match.After != "vf1cr1#" {
		t.Errorf("match.After = %q", match.After)
	}
}

func TestExpectReturnsOrderedIndex(t *testing.T) {
	pr, pw := io.Pipe()
	e, _ := newTestExpecter(pr)

	go func() {
		pw.Write([]byte("Password: "))
	}()

	prompt := regexp.MustCompile(`vf1cr1#`)
	passwordPrompt := regexp.MustCompile(`(?i)password:`)
	match, err := e.Expect([]*regexp.Regexp{prompt, passwordPrompt}, 2*time.Second)
	if err != nil {
		t.Fatalf("Expect() error: %v", err)
	}
	if match.Index != 1 {
		t.Errorf("match.Index = %d, want 1 (password prompt)", match.Index)
	}
}

func TestExpectTimesOut(t *testing.T) {
	pr, _ := io.Pipe()
	e, _ := newTestExpecter(pr)

	prompt := regexp.MustCompile(`never-matches`)
	_, err := e.Expect([]*regexp.Regexp{prompt}, 100*time.Millisecond)
	if err != ErrTimeout {
		t.Errorf("Expect() error = %v, want ErrTimeout", err)
	}
}

func TestExpectEndOfStream(t *testing.T) {
	pr, pw := io.Pipe()
	e, _ := newTestExpecter(pr)
	pw.Close()

	prompt := regexp.MustCompile(`anything`)
	_, err := e.Expect([]*regexp.Regexp{prompt}, time.Second)
	if err != ErrEndOfStream {
		t.Errorf("Expect() error = %v, want ErrEndOfStream", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	e := &Expecter{}
	if err := e.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}
