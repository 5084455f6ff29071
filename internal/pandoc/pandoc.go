// Package pandoc drives the Pandoc binary to obtain a JSON AST for
// text-markup inputs (spec.md §4.5), so format extractors never embed
// their own AST parsing. Two modes exist: a one-shot subprocess
// invocation (always available) and a long-lived pandoc-server HTTP
// process (Unix only, see server_unix.go/server_other.go).
package pandoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
)

// AST is Pandoc's JSON document representation, kept opaque here since
// only extractors walk its structure; the client's job is obtaining the
// bytes, not interpreting them.
type AST struct {
	Raw []byte
}

// Client converts markup source into a Pandoc AST. Subprocess is the
// zero-value default; NewServerClient upgrades to server mode when
// available (spec.md §4.5: "on any unsupported OS, server mode is
// unavailable and subprocess mode is used").
type Client interface {
	ToJSON(ctx context.Context, content []byte, fromFormat string) (AST, error)
	Close() error
}

// SubprocessClient invokes `pandoc -f <from> -t json` once per call,
// piping content on stdin and reading the AST from stdout (spec.md
// §4.5's subprocess mode).
type SubprocessClient struct {
	BinaryPath string // defaults to "pandoc" via PATH when empty
}

// NewSubprocessClient returns a one-shot Pandoc client.
func NewSubprocessClient() *SubprocessClient {
	return &SubprocessClient{BinaryPath: "pandoc"}
}

func (c *SubprocessClient) binary() string {
	if c.BinaryPath == "" {
		return "pandoc"
	}
	return c.BinaryPath
}

// ToJSON runs the subprocess, mapping a non-zero exit or stderr output
// to a Parsing error (spec.md §4.5: "exit code / stderr mapped to
// Parsing"). A binary that cannot be found is a MissingDependency error.
func (c *SubprocessClient) ToJSON(ctx context.Context, content []byte, fromFormat string) (AST, error) {
	cmd := exec.CommandContext(ctx, c.binary(), "-f", fromFormat, "-t", "json")
	cmd.Stdin = bytes.NewReader(content)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return AST{}, kerr.MissingDependency("pandoc", "install pandoc or ensure it is on PATH")
		}
		return AST{}, kerr.Parsing(fmt.Sprintf("pandoc: %s", firstLine(stderr.Bytes())), err)
	}
	return AST{Raw: stdout.Bytes()}, nil
}

// Close is a no-op for the subprocess client; there is no persistent
// process to stop.
func (c *SubprocessClient) Close() error { return nil }

func firstLine(b []byte) string {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// Available reports whether a pandoc binary is resolvable on PATH.
func Available() bool {
	_, err := exec.LookPath("pandoc")
	return err == nil
}
