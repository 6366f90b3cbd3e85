package cmd

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"
	"time"
)

func TestRunFileClaimAndRelease(t *testing.T) {
	rf := runFile(filepath.Join(t.TempDir(), "nested", "goldpland.run"))
	if _, err := rf.live(); !errors.Is(err, errNotRunning) {
		t.Fatalf("live() on a missing file = %v, want errNotRunning", err)
	}

	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := runRecord{PID: os.Getpid(), Addr: "127.0.0.1:8787", DataDir: "/data", StartedAt: started}
	if err := rf.claim(rec); err != nil {
		t.Fatalf("claim: %v", err)
	}

	got, err := rf.live()
	if err != nil {
		t.Fatalf("live: %v", err)
	}
	if got.PID != rec.PID || got.Addr != rec.Addr || !got.StartedAt.Equal(started) {
		t.Fatalf("live() = %+v, want %+v", got, rec)
	}

	if err := rf.claim(rec); err == nil {
		t.Fatal("second claim succeeded while the owner is alive")
	}

	rf.release(rec.PID + 1)
	if _, err := os.Stat(string(rf)); err != nil {
		t.Fatalf("release by another pid removed the file: %v", err)
	}
	rf.release(rec.PID)
	if _, err := os.Stat(string(rf)); !os.IsNotExist(err) {
		t.Fatalf("run file still present after release: %v", err)
	}
}

func TestRunFileReplacesDeadOwner(t *testing.T) {
	rf := runFile(filepath.Join(t.TempDir(), "goldpland.run"))
	dead := `{"pid": ` + strconv.Itoa(math.MaxInt32) + `, "addr": "127.0.0.1:1"}`
	if err := os.WriteFile(string(rf), []byte(dead), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := rf.live(); !errors.Is(err, errNotRunning) {
		t.Fatalf("live() with a dead owner = %v, want errNotRunning", err)
	}
	if err := rf.claim(runRecord{PID: os.Getpid(), Addr: "127.0.0.1:2"}); err != nil {
		t.Fatalf("claim over a dead owner: %v", err)
	}
	got, err := rf.read()
	if err != nil {
		t.Fatal(err)
	}
	if got.Addr != "127.0.0.1:2" {
		t.Fatalf("Addr = %q, want 127.0.0.1:2", got.Addr)
	}
}

func TestRunFileRejectsGarbage(t *testing.T) {
	rf := runFile(filepath.Join(t.TempDir(), "goldpland.run"))
	if err := os.WriteFile(string(rf), []byte("1234\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := rf.read(); err == nil {
		t.Fatal("read() accepted a bare pid")
	}
	if err := os.WriteFile(string(rf), []byte(`{"addr": "x"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := rf.read(); err == nil {
		t.Fatal("read() accepted a record without a pid")
	}
}

func TestRunFileStopWithoutDaemon(t *testing.T) {
	rf := runFile(filepath.Join(t.TempDir(), "goldpland.run"))
	if _, err := rf.stop(context.Background()); !errors.Is(err, errNotRunning) {
		t.Fatalf("stop() = %v, want errNotRunning", err)
	}
}

func TestDetachedArgs(t *testing.T) {
	got := detachedArgs([]string{"daemon", "--detach", "--addr", ":9000", "--detach=true"})
	want := []string{"daemon", "--addr", ":9000", "--child"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("detachedArgs = %v, want %v", got, want)
	}
}
