// Package source supplies events to the analysis: JSON lines files written by
// upstream tooling, and LCIO truth collections.
package source

import (
	"context"
	"fmt"

	"github.com/signature-reco/signature-reco/reco"
)

// Reader yields events in input order. Next returns io.EOF after the last
// event. A *DecodeError affects one event only; the caller may continue.
type Reader interface {
	Next(ctx context.Context) (*reco.Event, error)
	Close() error
}

// DecodeError reports an event that could not be decoded.
type DecodeError struct {
	Position int // 1-based line or record number
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("event %d: %v", e.Position, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
