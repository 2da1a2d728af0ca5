package worksheet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Save writes the PDF into dir under its sanitized file name and returns the
// path. An existing file is never overwritten; a numeric suffix is added
// instead.
func Save(res *Result, dir string) (string, error) {
	if res == nil || len(res.PDF) == 0 {
		return "", fmt.Errorf("nothing to save")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := Filename(res.Title, res.Author)
	stem := strings.TrimSuffix(name, ".pdf")
	for i := 1; ; i++ {
		if i > 1 {
			name = fmt.Sprintf("%s (%d).pdf", stem, i)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}
		if _, err := f.Write(res.PDF); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", path, err)
		}
		return path, nil
	}
}

// PrintConfig selects the system print command.
type PrintConfig struct {
	// Command is the executable and leading arguments; the PDF path is
	// appended.
	Command []string
}

// DefaultPrintConfig prints with lp.
func DefaultPrintConfig() PrintConfig {
	return PrintConfig{Command: []string{"lp"}}
}

// PrintConfigFromEnv reads SHEETZ_PRINT_CMD, e.g. "lp -d office".
func PrintConfigFromEnv() PrintConfig {
	cfg := DefaultPrintConfig()
	if v := strings.Fields(os.Getenv("SHEETZ_PRINT_CMD")); len(v) > 0 {
		cfg.Command = v
	}
	return cfg
}

// Print sends the PDF at path to the system print spooler.
func Print(ctx context.Context, path string, cfg PrintConfig) error {
	if len(cfg.Command) == 0 {
		return fmt.Errorf("no print command configured")
	}
	args := append(append([]string(nil), cfg.Command[1:]...), path)
	out, err := exec.CommandContext(ctx, cfg.Command[0], args...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("print %s: %w: %s", path, err, msg)
		}
		return fmt.Errorf("print %s: %w", path, err)
	}
	return nil
}
