package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/valpere/smarttranslate/internal/apperr"
)

// Python runs the extraction helper scripts (pdf_reader.py, ocr.py). If the
// configured interpreter cannot run a script, "py -3" is tried next.
type Python struct {
	Interpreter string
	ScriptsDir  string
	Timeout     time.Duration
}

// Script returns an Extractor that runs the named script with the file path
// as its only argument and uses its trimmed stdout as the text.
func (p *Python) Script(name string) Extractor {
	return &script{py: p, name: name}
}

type script struct {
	py   *Python
	name string
}

func (s *script) Extract(ctx context.Context, path, _ string) (string, error) {
	if s.py.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.py.Timeout)
		defer cancel()
	}

	interpreter := s.py.Interpreter
	if interpreter == "" {
		interpreter = "python"
	}
	scriptPath, err := filepath.Abs(filepath.Join(s.py.ScriptsDir, s.name))
	if err != nil {
		return "", apperr.Extraction("invalid scripts directory", err)
	}
	if path, err = filepath.Abs(path); err != nil {
		return "", apperr.Extraction("invalid file path", err)
	}

	out, firstErr := s.run(ctx, interpreter, scriptPath, path)
	if firstErr == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return "", apperr.Extraction("extraction timed out", ctx.Err())
	}

	out, err = s.run(ctx, "py", "-3", scriptPath, path)
	if err == nil {
		return out, nil
	}
	return "", apperr.Extraction(fmt.Sprintf("%s failed", s.name), errors.Join(firstErr, err))
}

func (s *script) run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = s.py.ScriptsDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
