package runekit

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// ErrCaptureActive is returned by StartCapture when a capture session is
// already running.
var ErrCaptureActive = errors.New("runekit: console capture already active")

// ErrCaptureInactive is returned by StopCapture when no capture session is
// running.
var ErrCaptureInactive = errors.New("runekit: console capture not active")

// CapturedLine is one line written to stdout or stderr while a
// ConsoleCapture session was active.
type CapturedLine struct {
	Stream string // "stdout" or "stderr"
	Text   string
	At     time.Time
}

// ConsoleCapture redirects the process's stdout and stderr file descriptors
// through pipes for the duration of a capture session, so that writes
// other components make directly to os.Stdout/os.Stderr (logging
// libraries, third-party code, println debugging) can be intercepted and
// replayed above the live render region instead of corrupting it.
//
// Only one capture session may be active at a time.
type ConsoleCapture struct {
	mu     sync.Mutex
	active bool

	savedStdoutFd int
	debugW        *os.File // dup of the real stderr, kept open across the capture for diagnostics

	stdoutWrite *os.File
	stderrWrite *os.File

	wg sync.WaitGroup

	maxBufferSize int
	lines         []CapturedLine

	onLine func(CapturedLine)
}

// NewConsoleCapture creates a capture session keeping up to maxBufferSize
// lines (default 1000 when <= 0) and invoking onLine, if non-nil, as each
// line is captured.
func NewConsoleCapture(maxBufferSize int, onLine func(CapturedLine)) *ConsoleCapture {
	if maxBufferSize <= 0 {
		maxBufferSize = 1000
	}
	return &ConsoleCapture{maxBufferSize: maxBufferSize, onLine: onLine}
}

// StartCapture duplicates the current stdout/stderr descriptors aside,
// replaces fd 1 and fd 2 with pipe write ends, ignores SIGPIPE (a write
// after StopCapture's reader goroutines have exited would otherwise kill
// the process), and starts two goroutines reading captured lines.
func (c *ConsoleCapture) StartCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return ErrCaptureActive
	}

	savedStdoutFd, err := unix.Dup(int(os.Stdout.Fd()))
	if err != nil {
		return err
	}
	savedStderrFd, err := unix.Dup(int(os.Stderr.Fd()))
	if err != nil {
		unix.Close(savedStdoutFd)
		return err
	}
	debugW := os.NewFile(uintptr(savedStderrFd), "runekit-capture-debug")

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		unix.Close(savedStdoutFd)
		debugW.Close()
		return err
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		unix.Close(savedStdoutFd)
		debugW.Close()
		stdoutR.Close()
		stdoutW.Close()
		return err
	}

	if err := unix.Dup2(int(stdoutW.Fd()), int(os.Stdout.Fd())); err != nil {
		unix.Close(savedStdoutFd)
		debugW.Close()
		stdoutR.Close()
		stdoutW.Close()
		stderrR.Close()
		stderrW.Close()
		return err
	}
	if err := unix.Dup2(int(stderrW.Fd()), int(os.Stderr.Fd())); err != nil {
		_ = unix.Dup2(savedStdoutFd, int(os.Stdout.Fd()))
		unix.Close(savedStdoutFd)
		debugW.Close()
		stdoutR.Close()
		stdoutW.Close()
		stderrR.Close()
		stderrW.Close()
		return err
	}

	signal.Ignore(syscall.SIGPIPE)

	c.savedStdoutFd = savedStdoutFd
	c.debugW = debugW
	c.stdoutWrite = stdoutW
	c.stderrWrite = stderrW
	c.active = true

	c.wg.Add(2)
	go c.readLoop("stdout", stdoutR)
	go c.readLoop("stderr", stderrR)

	return nil
}

func (c *ConsoleCapture) readLoop(stream string, r *os.File) {
	defer c.wg.Done()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 4096), 64*1024)
	for sc.Scan() {
		c.appendLine(CapturedLine{Stream: stream, Text: sc.Text(), At: time.Now()})
	}
	r.Close()
}

func (c *ConsoleCapture) appendLine(line CapturedLine) {
	c.mu.Lock()
	c.lines = append(c.lines, line)
	if len(c.lines) > c.maxBufferSize {
		c.lines = c.lines[len(c.lines)-c.maxBufferSize:]
	}
	c.mu.Unlock()

	if c.onLine != nil {
		c.onLine(line)
	}
}

// StopCapture restores the original stdout/stderr descriptors, closes the
// pipe write ends so the reader goroutines observe EOF, waits for them to
// drain, and restores SIGPIPE's default disposition.
func (c *ConsoleCapture) StopCapture() error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return ErrCaptureInactive
	}
	c.active = false
	savedStdoutFd := c.savedStdoutFd
	debugW := c.debugW
	stdoutWrite, stderrWrite := c.stdoutWrite, c.stderrWrite
	c.mu.Unlock()

	_ = unix.Dup2(savedStdoutFd, int(os.Stdout.Fd()))
	_ = unix.Dup2(int(debugW.Fd()), int(os.Stderr.Fd()))
	unix.Close(savedStdoutFd)

	stdoutWrite.Close()
	stderrWrite.Close()

	c.wg.Wait()

	debugW.Close()
	signal.Reset(syscall.SIGPIPE)
	return nil
}

// Active reports whether a capture session is currently running.
func (c *ConsoleCapture) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Lines returns a copy of the captured line buffer.
func (c *ConsoleCapture) Lines() []CapturedLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CapturedLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Debugf writes a diagnostic line to the real stderr the session captured
// away from, bypassing capture entirely. A no-op outside an active
// session.
func (c *ConsoleCapture) Debugf(format string, args ...any) {
	c.mu.Lock()
	w := c.debugW
	c.mu.Unlock()
	if w == nil {
		return
	}
	fmt.Fprintf(w, format, args...)
}
