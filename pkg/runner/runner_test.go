package runner

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner_Success(t *testing.T) {
	requireSh(t)

	name, args := Shell("echo hello; echo oops >&2")
	res, err := NewExecRunner().Run(context.Background(), name, args, Opts{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if strings.TrimSpace(res.Stdout) != "hello" {
		t.Errorf("Stdout = %q", res.Stdout)
	}
	if strings.TrimSpace(res.Stderr) != "oops" {
		t.Errorf("Stderr = %q", res.Stderr)
	}
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	requireSh(t)

	name, args := Shell("exit 3")
	res, err := NewExecRunner().Run(context.Background(), name, args, Opts{})
	if err != nil {
		t.Fatalf("non-zero exit should not be an error: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
}

func TestExecRunner_DirAndEnv(t *testing.T) {
	requireSh(t)

	dir := t.TempDir()
	name, args := Shell(`pwd; echo "$SCAFFOLD_TEST"`)
	res, err := NewExecRunner().Run(context.Background(), name, args, Opts{
		Dir: dir,
		Env: map[string]string{"SCAFFOLD_TEST": "value"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Stdout, "value") {
		t.Errorf("env not passed: %q", res.Stdout)
	}
}

func TestExecRunner_BinaryNotFound(t *testing.T) {
	_, err := NewExecRunner().Run(context.Background(), "scaffold-no-such-binary", nil, Opts{})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestExecRunner_ContextDeadline(t *testing.T) {
	requireSh(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	name, args := Shell("sleep 5")
	_, err := NewExecRunner().Run(ctx, name, args, Opts{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestExecRunner_DeadlineKillsChildren(t *testing.T) {
	requireSh(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	// sh forks sleep and waits for it; the sleep holds stdout open.
	name, args := Shell("sleep 3; true")
	start := time.Now()
	_, err := NewExecRunner().Run(ctx, name, args, Opts{})
	elapsed := time.Since(start)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if elapsed > 200*time.Millisecond+WaitDelay {
		t.Errorf("Run returned after %s, want about 200ms", elapsed)
	}
}

func TestExecRunner_DetachedChild(t *testing.T) {
	requireSh(t)

	name, args := Shell("(sleep 3 &); echo started")
	start := time.Now()
	res, err := NewExecRunner().Run(context.Background(), name, args, Opts{})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if !strings.Contains(res.Stdout, "started") {
		t.Errorf("Stdout = %q", res.Stdout)
	}
	if elapsed > 2*time.Second+WaitDelay/2 {
		t.Errorf("Run returned after %s, want about %s", elapsed, WaitDelay)
	}
}
