package sink

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/signature-reco/signature-reco/reco"
)

// JSONLWriter writes one JSON record per line.
type JSONLWriter struct {
	bw  *bufio.Writer
	enc *json.Encoder
	c   io.Closer
}

// NewJSONLWriter writes records to w. Close flushes, and closes w if it is an
// io.Closer other than standard output.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	bw := bufio.NewWriter(w)
	jw := &JSONLWriter{bw: bw, enc: json.NewEncoder(bw)}
	if c, ok := w.(io.Closer); ok && w != os.Stdout {
		jw.c = c
	}
	return jw
}

// CreateJSONL creates (or truncates) path. "" and "-" mean standard output.
func CreateJSONL(path string) (*JSONLWriter, error) {
	if path == "" || path == "-" {
		return NewJSONLWriter(os.Stdout), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating record file: %w", err)
	}
	return NewJSONLWriter(f), nil
}

// Write implements Writer.
func (w *JSONLWriter) Write(rec *reco.EventRecord) error {
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("encoding record %d: %w", rec.Index, err)
	}
	return nil
}

// Close implements Writer.
func (w *JSONLWriter) Close() error {
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("flushing records: %w", err)
	}
	if w.c != nil {
		return w.c.Close()
	}
	return nil
}
