package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// ErrExists reports an artifact whose destination already exists while
// overwriting is disabled.
var ErrExists = errors.New("generator: file already exists")

// WriteStatus describes what the writer did with an artifact.
type WriteStatus string

const (
	StatusCreated     WriteStatus = "created"
	StatusOverwritten WriteStatus = "overwritten"
	StatusPlanned     WriteStatus = "planned"
)

// WriteResult records the outcome for one artifact.
type WriteResult struct {
	Target string
	Path   string
	Status WriteStatus
}

// WriterOption customises a Writer.
type WriterOption func(*Writer)

// WithOverwrite allows replacing existing files.
func WithOverwrite(enabled bool) WriterOption {
	return func(w *Writer) {
		w.overwrite = enabled
	}
}

// WithDryRun reports what would be written without touching the disk.
func WithDryRun(enabled bool) WriterOption {
	return func(w *Writer) {
		w.dryRun = enabled
	}
}

// WithWriterLogger sets the logger used for debug output.
func WithWriterLogger(logger *log.Logger) WriterOption {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Writer persists artifacts below a root directory.
type Writer struct {
	root      string
	overwrite bool
	dryRun    bool
	logger    *log.Logger
}

// NewWriter constructs a Writer rooted at dir.
func NewWriter(dir string, options ...WriterOption) (*Writer, error) {
	if dir == "" {
		return nil, errors.New("generator: output directory is required")
	}
	w := &Writer{
		root:   filepath.Clean(dir),
		logger: log.New(io.Discard),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	return w, nil
}

// Root returns the output directory.
func (w *Writer) Root() string {
	return w.root
}

// Write validates every destination before writing anything, so a conflict
// leaves the output directory untouched.
func (w *Writer) Write(ctx context.Context, artifacts ...Artifact) ([]WriteResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]WriteResult, len(artifacts))
	claimed := make(map[string]string, len(artifacts))
	var errs []error
	for i, artifact := range artifacts {
		rel, err := cleanPath(artifact.Path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		dest := filepath.Join(w.root, filepath.FromSlash(rel))
		if owner, taken := claimed[dest]; taken {
			errs = append(errs, fmt.Errorf("generator: %s and %s both write %s", owner, artifact.Target, rel))
			continue
		}
		claimed[dest] = artifact.Target

		status := StatusCreated
		info, err := os.Stat(dest)
		switch {
		case err == nil && info.IsDir():
			errs = append(errs, fmt.Errorf("generator: %s is a directory", dest))
			continue
		case err == nil && !w.overwrite:
			errs = append(errs, fmt.Errorf("%w: %s", ErrExists, dest))
			continue
		case err == nil:
			status = StatusOverwritten
		case !errors.Is(err, fs.ErrNotExist):
			errs = append(errs, fmt.Errorf("generator: stat %s: %w", dest, err))
			continue
		}
		if w.dryRun {
			status = StatusPlanned
		}
		results[i] = WriteResult{Target: artifact.Target, Path: dest, Status: status}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if w.dryRun {
		for _, result := range results {
			w.logger.Debug("dry run", "target", result.Target, "path", result.Path)
		}
		return results, nil
	}

	for i, artifact := range artifacts {
		if err := ctx.Err(); err != nil {
			return results[:i], err
		}
		dest := results[i].Path
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return results[:i], fmt.Errorf("generator: create directory for %s: %w", dest, err)
		}
		if err := os.WriteFile(dest, artifact.Content, 0o644); err != nil {
			return results[:i], fmt.Errorf("generator: write %s: %w", dest, err)
		}
		w.logger.Debug("wrote file", "target", artifact.Target, "path", dest, "status", results[i].Status)
	}
	return results, nil
}
