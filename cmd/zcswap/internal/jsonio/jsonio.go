// Package jsonio holds the JSON plumbing shared by the zcswap subcommands.
package jsonio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ReadInput reads path when set, stdin otherwise.
func ReadInput(stdin io.Reader, path string) ([]byte, error) {
	if p := strings.TrimSpace(path); p != "" {
		return os.ReadFile(p)
	}
	return io.ReadAll(stdin)
}

// IsTerminal reports whether r is an interactive terminal, i.e. nothing was piped in.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	return err == nil && (stat.Mode()&os.ModeCharDevice) != 0
}

// DecodeOneOrMany decodes either a single JSON object or an array of them. The bool reports
// whether the input was an array.
func DecodeOneOrMany[T any](b []byte) ([]T, bool, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}
	if trimmed[0] == '[' {
		var many []T
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return nil, true, err
		}
		return many, true, nil
	}
	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, false, err
	}
	return []T{one}, false, nil
}

// Write encodes v as a single JSON line.
func Write(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// Time converts a civil date to UTC midnight.
func Time(d civil.Date) time.Time { return d.In(time.UTC) }

// Date converts a time to its civil date.
func Date(t time.Time) civil.Date { return civil.DateOf(t) }

// Money rounds an amount to cents.
func Money(v float64) decimal.Decimal { return decimal.NewFromFloat(v).Round(2) }

// Rate reports a decimal rate in percent with places decimals.
func Rate(v float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(places)
}

// Fixings converts a percent-quoted fixing history to decimals.
func Fixings(pct map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(pct))
	for k, v := range pct {
		out[k] = v / 100.0
	}
	return out
}
