// Package pricing defines the contract between instruments and valuation engines:
// an instrument writes Arguments, the engine validates and reads them, computes, and writes
// Results that the instrument then reads back.
package pricing

import "errors"

var (
	// ErrArgumentTypeMismatch is returned when an instrument is handed another instrument's
	// arguments or results.
	ErrArgumentTypeMismatch = errors.New("argument type mismatch")
	// ErrResultsNotReady is returned when results are read before an engine populated them.
	ErrResultsNotReady = errors.New("results not ready")
	// ErrNoEngine is returned when an instrument is valued without an engine.
	ErrNoEngine = errors.New("no pricing engine set")
)

// Arguments is the engine input snapshot.
type Arguments interface {
	Validate() error
}

// Results is the engine output.
type Results interface {
	Reset()
}

// Engine prices one instrument type.
type Engine interface {
	Arguments() Arguments
	Results() Results
	Reset()
	Calculate() error
}

// Observable is implemented by engines that read market data which can change; the
// revision must move whenever that data does.
type Observable interface {
	Revision() uint64
}
