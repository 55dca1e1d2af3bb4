package pkg

import (
	"fmt"
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter mirrors every write to all of its writers, e.g. log lines to both
// stdout and the rotated log file. A failing writer never stops the others.
type CombinedWriter struct {
	writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		writers: writers,
	}
}

// Write reports len(p) as written when at least one writer took the whole message.
// Failures of the other writers are still returned, combined.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var (
		err       error
		delivered bool
	)
	for i, w := range cw.writers {
		n, werr := w.Write(p)
		switch {
		case werr != nil:
			err = multierr.Append(err, fmt.Errorf("writer %d: %w", i, werr))
		case n < len(p):
			err = multierr.Append(err, fmt.Errorf("writer %d: %w", i, io.ErrShortWrite))
		default:
			delivered = true
		}
	}

	if !delivered {
		return 0, err
	}
	return len(p), err
}
