package npmclient

import (
	"bytes"
	"io"
	"sync"
)

// prefixWriter prefixes every complete line before writing it to dest.
// Writers for different packages share mu so their lines never interleave.
type prefixWriter struct {
	prefix string
	dest   io.Writer
	mu     *sync.Mutex
	buf    []byte
}

func newPrefixWriter(prefix string, dest io.Writer, mu *sync.Mutex) *prefixWriter {
	return &prefixWriter{prefix: prefix, dest: dest, mu: mu}
}

func (w *prefixWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		idx := bytes.IndexByte(w.buf, '\n')
		if idx < 0 {
			break
		}
		w.writeLine(w.buf[:idx+1])
		w.buf = w.buf[idx+1:]
	}
	return len(p), nil
}

// Flush writes a trailing partial line, terminated with a newline.
func (w *prefixWriter) Flush() {
	if len(w.buf) == 0 {
		return
	}
	w.writeLine(append(w.buf, '\n'))
	w.buf = nil
}

func (w *prefixWriter) writeLine(line []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = io.WriteString(w.dest, w.prefix)
	_, _ = w.dest.Write(line)
}
