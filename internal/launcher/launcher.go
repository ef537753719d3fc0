// Package launcher implements the double-click entry sequence: configure
// the console, move to the executable's directory, check the environment,
// run the work, and hold the window open until the operator has read the
// output.
package launcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrInterpreterNotFound reports a failed interpreter probe. It is the only
// failure the launcher classifies; everything inside the delegated program
// surfaces as console text only.
var ErrInterpreterNotFound = errors.New("interpreter not found")

// Launcher runs the legacy delegate sequence: probe the interpreter, run
// the delegated program with zero extra arguments, print the completion
// banner, and wait for a keypress.
type Launcher struct {
	// Probe is the interpreter presence check. Its output is discarded and
	// any failure to start or a non-zero exit means "not found".
	Probe []string

	// Delegate is run after a successful probe, stdio inherited, exactly as
	// configured: no arguments are appended. Its exit status is not
	// inspected.
	Delegate []string

	// DownloadURL is shown with the interpreter-missing diagnostic.
	DownloadURL string

	// In and Out are the operator's console. The final keypress is read
	// from In on every path so the window never closes unread.
	In  io.Reader
	Out io.Writer

	// Exec runs a child process in the current working directory. When
	// inherit is false the child's output is discarded (the probe); when
	// true the child shares the launcher's console (the delegate).
	// Overridable for tests; nil selects the os/exec implementation.
	Exec func(ctx context.Context, argv []string, inherit bool) error

	in *bufio.Reader
}

// New returns a Launcher wired to the process's console.
func New(probe, delegate []string, downloadURL string) *Launcher {
	return &Launcher{
		Probe:       probe,
		Delegate:    delegate,
		DownloadURL: downloadURL,
		In:          os.Stdin,
		Out:         os.Stdout,
	}
}

// Run executes the full launcher sequence. The only error it returns is
// ErrInterpreterNotFound; a failing delegate is not an error here.
func (l *Launcher) Run(ctx context.Context) error {
	ConfigureConsole()

	if _, err := ChdirToExecutable(); err != nil {
		// Relative paths may now resolve against the caller's directory;
		// keep going, the delegate will complain if its inputs are missing.
		fmt.Fprintf(l.Out, "[WARN] 無法切換到程式所在目錄：%v\n", err)
	}

	if err := l.exec(ctx, l.Probe, false); err != nil {
		fmt.Fprintln(l.Out, "[ERROR] 找不到 Python，請先安裝 Python 3。")
		fmt.Fprintf(l.Out, "下載位址：%s\n", l.DownloadURL)
		l.waitKey()
		return ErrInterpreterNotFound
	}

	// The delegate's own output streams to the shared console; its exit
	// status is deliberately not inspected.
	_ = l.exec(ctx, l.Delegate, true)

	fmt.Fprintln(l.Out)
	fmt.Fprintln(l.Out, "=== 完成 ===")
	l.waitKey()
	return nil
}

func (l *Launcher) exec(ctx context.Context, argv []string, inherit bool) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}
	if l.Exec != nil {
		return l.Exec(ctx, argv, inherit)
	}
	return execCommand(ctx, argv, inherit)
}

// waitKey blocks until the operator presses Enter, so a double-clicked
// console window does not vanish before the messages are read.
func (l *Launcher) waitKey() {
	fmt.Fprint(l.Out, "請按 Enter 鍵繼續...")
	if l.in == nil {
		l.in = bufio.NewReader(l.In)
	}
	_, _ = l.in.ReadString('\n')
	fmt.Fprintln(l.Out)
}

// execCommand is the default Exec: run argv[0] with argv[1:] in the current
// directory. Without inherit the child's output goes to the null device,
// which is all the probe needs.
func execCommand(ctx context.Context, argv []string, inherit bool) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if inherit {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	return cmd.Run()
}

// ChdirToExecutable changes the working directory to the directory holding
// the running executable and returns it. Launchers are started by
// double-click from arbitrary working directories; the report inputs live
// next to the binary.
func ChdirToExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolving executable path: %w", err)
	}
	dir := filepath.Dir(exe)
	if err := os.Chdir(dir); err != nil {
		return "", fmt.Errorf("changing directory to %s: %w", dir, err)
	}
	return dir, nil
}
