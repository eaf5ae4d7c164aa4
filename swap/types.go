package swap

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidLegStructure is returned when a zero-coupon swap leg does not hold exactly one flow.
	ErrInvalidLegStructure = errors.New("invalid leg structure")
	// ErrInconsistentSign is returned when the two legs are not on opposite sides.
	ErrInconsistentSign = errors.New("inconsistent leg signs")
)

// Type is the side of the fixed leg. Payer pays fixed and receives floating.
type Type int

const (
	Receiver Type = -1
	Payer    Type = 1
)

func (t Type) String() string {
	switch t {
	case Payer:
		return "PAYER"
	case Receiver:
		return "RECEIVER"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType accepts PAYER or RECEIVER in any case.
func ParseType(s string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PAYER", "PAY":
		return Payer, nil
	case "RECEIVER", "RECEIVE", "REC":
		return Receiver, nil
	}
	return 0, fmt.Errorf("unknown swap type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if t != Payer && t != Receiver {
		return nil, fmt.Errorf("invalid swap type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// State tracks how far a swap has progressed through valuation.
type State int

const (
	Constructed State = iota
	ArgumentsBound
	Priced
)

func (s State) String() string {
	switch s {
	case Constructed:
		return "CONSTRUCTED"
	case ArgumentsBound:
		return "ARGUMENTS_BOUND"
	case Priced:
		return "PRICED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	fixedLeg    = 0
	floatingLeg = 1
)
