package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// controllable is the part of the model the interactive controller drives.
type controllable interface {
	Start(ctx context.Context) error
	Wait() error
	Stop()
	Pause()
	Resume()
	IsPaused() bool
	Faster() time.Duration
	Slower() time.Duration
}

// runInteractive starts the run in the background and applies one command per input line
// until the run finishes, the user quits, or ctx is cancelled.
func runInteractive(ctx context.Context, m controllable, in io.Reader, out io.Writer) error {
	if err := m.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "commands: p=pause r=resume +=faster -=slower q=stop")

	finished := make(chan error, 1)
	go func() { finished <- m.Wait() }()

	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case err := <-finished:
			return err
		case line, ok := <-lines:
			if !ok {
				// stdin closed: let the run finish on its own
				lines = nil
				continue
			}
			handleCommand(m, strings.TrimSpace(line), out)
		}
	}
}

func handleCommand(m controllable, command string, out io.Writer) {
	switch command {
	case "p":
		m.Pause()
		fmt.Fprintln(out, "paused")
	case "r":
		m.Resume()
		fmt.Fprintln(out, "resumed")
	case "+":
		fmt.Fprintf(out, "delay %s\n", m.Faster())
	case "-":
		fmt.Fprintf(out, "delay %s\n", m.Slower())
	case "q":
		m.Stop()
		fmt.Fprintln(out, "stopping")
	case "":
	default:
		logrus.Warnf("unknown command %q", command)
	}
}
