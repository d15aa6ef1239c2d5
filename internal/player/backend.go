package player

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"syscall"
)

// CheckFFplay reports whether ffplay is installed and on PATH.
func CheckFFplay() bool {
	_, err := exec.LookPath("ffplay")
	return err == nil
}

// FFplay plays MP3 files through the ffplay binary. Pause and resume
// are process signals, so a paused track holds its position.
type FFplay struct{}

// Play starts ffplay on path and returns a handle for it. The process
// exits on its own at end of stream; Done carries its exit status.
func (FFplay) Play(ctx context.Context, path string) (Handle, error) {
	cmd := exec.CommandContext(ctx, "ffplay",
		"-nodisp", "-autoexit", "-loglevel", "quiet", path)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffplay: %w", err)
	}
	h := &ffplayHandle{cmd: cmd, done: make(chan error, 1)}
	go func() {
		h.done <- cmd.Wait()
	}()
	return h, nil
}

type ffplayHandle struct {
	cmd  *exec.Cmd
	done chan error

	stopOnce sync.Once
}

func (h *ffplayHandle) Pause() error {
	return h.cmd.Process.Signal(syscall.SIGSTOP)
}

func (h *ffplayHandle) Resume() error {
	return h.cmd.Process.Signal(syscall.SIGCONT)
}

// Stop kills the process. A stopped process may be suspended, so it is
// resumed first or the kill would queue behind the stop signal.
func (h *ffplayHandle) Stop() error {
	var err error
	h.stopOnce.Do(func() {
		h.cmd.Process.Signal(syscall.SIGCONT)
		err = h.cmd.Process.Kill()
	})
	return err
}

func (h *ffplayHandle) Done() <-chan error {
	return h.done
}
