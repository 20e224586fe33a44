package compute

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/specialistvlad/gridetl/internal/ctxlog"
)

// CommandRunner executes an external command and waits for it.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec and forwards their output to the
// context logger, one record per line.
type ExecRunner struct {
	// TailLines is how many trailing stderr lines are kept for the error message.
	TailLines int
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	logger := ctxlog.FromContext(ctx).With("cmd", name)

	cmd := exec.CommandContext(ctx, name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}

	tail := &tailBuffer{max: r.TailLines}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		forward(stdout, logger, slog.LevelInfo, nil)
	}()
	go func() {
		defer wg.Done()
		forward(stderr, logger, slog.LevelWarn, tail)
	}()
	// Pipes must be drained before Wait closes them.
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if lines := tail.String(); lines != "" {
			return fmt.Errorf("%s: %w: %s", name, err, lines)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func forward(r io.Reader, logger *slog.Logger, level slog.Level, tail *tailBuffer) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		logger.Log(context.Background(), level, line)
		if tail != nil {
			tail.add(line)
		}
	}
}

type tailBuffer struct {
	max   int
	lines []string
}

func (t *tailBuffer) add(line string) {
	if t.max <= 0 {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *tailBuffer) String() string {
	return strings.Join(t.lines, "\n")
}
