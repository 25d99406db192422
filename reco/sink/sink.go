// Package sink persists EventRecords: one JSON object per line, or rows in a
// SQLite database with one table per record section.
package sink

import (
	"fmt"
	"sort"

	"github.com/signature-reco/signature-reco/reco"
)

// Writer persists records in the order Write is called.
type Writer interface {
	Write(rec *reco.EventRecord) error
	Close() error
}

// ValidSinks lists the accepted sink kinds.
var ValidSinks = map[string]bool{
	"jsonl":  true,
	"sqlite": true,
}

// SinkKinds returns the valid sink kinds in sorted order.
func SinkKinds() []string {
	kinds := make([]string, 0, len(ValidSinks))
	for k := range ValidSinks {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Open creates a sink of the given kind at path. A jsonl sink with path "" or
// "-" writes to standard output.
func Open(kind, path string) (Writer, error) {
	switch kind {
	case "jsonl":
		return CreateJSONL(path)
	case "sqlite":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown sink %q; valid options: %v", kind, SinkKinds())
	}
}
