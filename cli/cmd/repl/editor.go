package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/packscript/compiler"
	"github.com/ardnew/packscript/log"
)

const defaultEditor = "vi"

// editScriptCommand implements [tea.ExecCommand] for the edit-execute-retry
// loop. It writes a script to a temp file, opens the user's editor, and
// executes the result in the session. On error the user is prompted to
// re-edit; declining exits the program.
type editScriptCommand struct {
	session *compiler.Session
	ctxFunc func() context.Context
	content string
	emitted []string
	ran     bool
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editScriptCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editScriptCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editScriptCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-execute-retry loop. An empty file cancels the edit.
// If the user declines to re-edit after an error, it returns
// [ErrEditDeclined].
func (c *editScriptCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "packscript-repl-*."+compiler.ScriptExt)
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	for {
		if err := os.WriteFile(path, []byte(c.content), 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path)
		if err != nil {
			return err
		}

		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		c.content = string(data)

		emitted, execErr := c.session.Exec(ctx, c.content)
		log.TraceContext(ctx, "editor exec attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", execErr == nil),
		)

		if execErr == nil {
			c.emitted = emitted
			c.ran = true

			return nil
		}

		fmt.Fprintf(c.stderr, "\nerror: %s\n", execErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		if !confirm(c.stdin) {
			return ErrEditDeclined
		}
	}
}

// confirm reads one answer from r. Anything but "n" or "no" is a yes.
func confirm(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}

	switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
	case "n", "no":
		return false
	}

	return true
}

// runEditor launches the user's editor on path and returns the edited file
// content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
