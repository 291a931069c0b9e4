package watchdog

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// PSLister reads the process table with `ps -eo pid=,args=`
type PSLister struct {
	// the watchdog and the shell that started it are never mistaken for the target
	exclude map[int]bool
}

// NewPSLister creates a lister that ignores the calling process and its parent
func NewPSLister() *PSLister {
	return &PSLister{exclude: map[int]bool{
		os.Getpid():  true,
		os.Getppid(): true,
	}}
}

// CommandLines returns the argument string of every live process
func (l *PSLister) CommandLines(ctx context.Context) ([]string, error) {
	out, err := exec.CommandContext(ctx, "ps", "-eo", "pid=,args=").Output()
	if err != nil {
		return nil, fmt.Errorf("ps: %w", err)
	}
	return parsePS(out, l.exclude), nil
}

// parsePS drops excluded pids and zombies; a dead child stays in the table as
// "[name] <defunct>" until it is reaped.
func parsePS(out []byte, exclude map[int]bool) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		pidText, args, _ := strings.Cut(line, " ")
		if pid, err := strconv.Atoi(pidText); err == nil && exclude[pid] {
			continue
		}
		args = strings.TrimSpace(args)
		if strings.HasSuffix(args, "<defunct>") {
			continue
		}
		lines = append(lines, args)
	}
	return lines
}

// DetachedLauncher starts processes in their own session with output
// appended to a log file, like nohup
type DetachedLauncher struct {
	logFile string
}

// NewDetachedLauncher creates a launcher writing child output to logFile
func NewDetachedLauncher(logFile string) *DetachedLauncher {
	return &DetachedLauncher{logFile: logFile}
}

// Launch starts command and returns without waiting for it
func (l *DetachedLauncher) Launch(command []string) (int, error) {
	if len(command) == 0 {
		return 0, fmt.Errorf("empty command")
	}

	out, err := os.OpenFile(l.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", l.logFile, err)
	}
	defer out.Close()

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.Stdin = nil
	cmd.SysProcAttr = detachedAttr()

	if err := cmd.Start(); err != nil {
		return 0, err
	}

	pid := cmd.Process.Pid
	// Reap the child so a resident watchdog does not keep it as a zombie.
	go func() {
		if err := cmd.Wait(); err != nil {
			logrus.WithField("pid", pid).Warnf("%s exited: %v", command[0], err)
			return
		}
		logrus.WithField("pid", pid).Infof("%s exited", command[0])
	}()
	return pid, nil
}
