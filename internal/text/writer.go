package text

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bodgit/plumbing"
	"github.com/spf13/afero"
)

// Writer handles writing generated lines as a text batch
type Writer struct {
	w io.Writer
}

// NewWriter creates a new line writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write outputs one batch of lines separated by newlines, with no trailing
// newline. With continued set the batch is prefixed by a newline so it
// follows a previous batch on its own line.
func (w *Writer) Write(lines []string, continued bool) error {
	if len(lines) == 0 {
		return nil
	}

	batch := strings.Join(lines, "\n")
	if continued {
		batch = "\n" + batch
	}

	_, err := io.WriteString(w.w, batch)
	return err
}

// AppendLines writes lines to the file at path. An existing file gets the
// batch appended after a newline; a missing file is created with just the
// batch. When tee is non-nil the same bytes are copied to it. Nothing is
// written for an empty batch.
func AppendLines(fs afero.Fs, path string, lines []string, tee io.Writer) (err error) {
	if len(lines) == 0 {
		return nil
	}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return fmt.Errorf("stat output file: %w", err)
	}

	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}

	var wc io.WriteCloser = f
	if tee != nil {
		wc = plumbing.MultiWriteCloser(f, plumbing.NopWriteCloser(tee))
	}
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", cerr)
		}
	}()

	if err = NewWriter(wc).Write(lines, exists); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}
