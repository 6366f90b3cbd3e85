package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// runRecord describes a live daemon. It is written once at startup.
type runRecord struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	DataDir   string    `json:"data_dir"`
	LogFile   string    `json:"log_file,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// errNotRunning is returned when no live daemon owns the run file.
var errNotRunning = errors.New("daemon is not running")

// runFile guards a single daemon per path. The file holds the runRecord of
// the process that claimed it.
type runFile string

func (f runFile) read() (runRecord, error) {
	var rec runRecord
	data, err := os.ReadFile(string(f)) //nolint:gosec // path is configured by the local user
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("parse %s: %w", f, err)
	}
	if rec.PID <= 0 {
		return rec, fmt.Errorf("no pid recorded in %s", f)
	}
	return rec, nil
}

// live returns the record when its process still exists. A record left by a
// dead process is reported as errNotRunning and removed.
func (f runFile) live() (runRecord, error) {
	rec, err := f.read()
	if errors.Is(err, fs.ErrNotExist) {
		return rec, errNotRunning
	}
	if err != nil {
		return rec, err
	}
	if !pidAlive(rec.PID) {
		_ = os.Remove(string(f))
		return rec, errNotRunning
	}
	return rec, nil
}

// claim records rec as the owner of the file. It fails while another live
// process holds it.
func (f runFile) claim(rec runRecord) error {
	if err := os.MkdirAll(filepath.Dir(string(f)), 0o750); err != nil {
		return fmt.Errorf("create run directory: %w", err)
	}
	if prev, err := f.live(); err == nil {
		return fmt.Errorf("daemon already running as pid %d on %s", prev.PID, prev.Addr)
	} else if !errors.Is(err, errNotRunning) {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	out, err := os.OpenFile(string(f), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec // user-configured path
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return errors.New("another daemon is starting")
		}
		return err
	}
	if _, err := out.Write(append(data, '\n')); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// release removes the file if pid still owns it.
func (f runFile) release(pid int) {
	if rec, err := f.read(); err == nil && rec.PID == pid {
		_ = os.Remove(string(f))
	}
}

// stop sends SIGTERM to the owner and waits until it exits or ctx ends.
func (f runFile) stop(ctx context.Context) (runRecord, error) {
	rec, err := f.live()
	if err != nil {
		return rec, err
	}
	proc, err := os.FindProcess(rec.PID)
	if err != nil {
		return rec, fmt.Errorf("find pid %d: %w", rec.PID, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return rec, fmt.Errorf("signal pid %d: %w", rec.PID, err)
	}

	tick := time.NewTicker(150 * time.Millisecond)
	defer tick.Stop()
	for {
		if !pidAlive(rec.PID) {
			f.release(rec.PID)
			return rec, nil
		}
		select {
		case <-ctx.Done():
			return rec, fmt.Errorf("pid %d still running: %w", rec.PID, ctx.Err())
		case <-tick.C:
		}
	}
}

func pidAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// detachedArgs turns the current invocation into the child's: --detach is
// dropped and the hidden --child marker added.
func detachedArgs(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return append(out, "--child")
}
