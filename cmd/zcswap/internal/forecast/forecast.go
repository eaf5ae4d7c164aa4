// Package forecast projects equity index fixings from interest and dividend curves.
package forecast

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/meenmo/zcswap/calendar"
	"github.com/meenmo/zcswap/cmd/zcswap/internal/jsonio"
	"github.com/meenmo/zcswap/config"
	"github.com/meenmo/zcswap/daycount"
	"github.com/meenmo/zcswap/fixings"
	"github.com/meenmo/zcswap/index"
	"github.com/meenmo/zcswap/termstructure"
)

// ErrForecastFailed is returned by Run when the request could not be served.
var ErrForecastFailed = errors.New("forecast failed")

// Input defines the JSON input schema.
//
// Conventions:
// - fixings are index levels keyed by "YYYY-MM-DD"
// - rates are in percent, flat and continuously compounded
// - a missing dividend_rate means no dividends
type Input struct {
	Index         string             `json:"index"`
	Currency      string             `json:"currency,omitempty"`
	Calendar      string             `json:"calendar,omitempty"`
	DayCount      string             `json:"day_count,omitempty"`
	ValuationDate civil.Date         `json:"valuation_date"`
	Fixings       map[string]float64 `json:"fixings"`
	InterestRate  float64            `json:"interest_rate"`
	DividendRate  *float64           `json:"dividend_rate,omitempty"`
	Dates         []civil.Date       `json:"dates"`
}

// Point is one resolved fixing. Source is "fixing" for a stored value and "forecast" otherwise.
type Point struct {
	Date   civil.Date      `json:"date"`
	Value  decimal.Decimal `json:"value"`
	Source string          `json:"source"`
}

// Output defines the JSON output schema.
type Output struct {
	Index     string  `json:"index"`
	Forecasts []Point `json:"forecasts,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// Run reads a forecast request and writes the resolved fixings.
func Run(cfg config.Config, stdin io.Reader, path string, stdout io.Writer) error {
	inputBytes, err := jsonio.ReadInput(stdin, path)
	if err != nil {
		_ = jsonio.Write(stdout, Output{Error: fmt.Sprintf("failed to read input: %v", err)})
		return err
	}
	reqs, _, err := jsonio.DecodeOneOrMany[Input](inputBytes)
	if err != nil || len(reqs) != 1 {
		if err == nil {
			err = fmt.Errorf("expected a single request, got %d", len(reqs))
		}
		_ = jsonio.Write(stdout, Output{Error: fmt.Sprintf("failed to parse JSON input: %v", err)})
		return err
	}

	out, err := Forecast(cfg, slog.Default(), reqs[0])
	if err != nil {
		_ = jsonio.Write(stdout, Output{Index: reqs[0].Index, Error: err.Error()})
		return fmt.Errorf("%w: %v", ErrForecastFailed, err)
	}
	return jsonio.Write(stdout, out)
}

// Forecast resolves every requested date against the index built from in.
func Forecast(cfg config.Config, logger *slog.Logger, in Input) (Output, error) {
	name := strings.TrimSpace(in.Index)
	if name == "" {
		return Output{}, fmt.Errorf("index is required")
	}
	if !in.ValuationDate.IsValid() {
		return Output{}, fmt.Errorf("valuation_date is required")
	}
	if len(in.Dates) == 0 {
		return Output{}, fmt.Errorf("dates is required")
	}

	calName := in.Calendar
	if strings.TrimSpace(calName) == "" {
		calName = cfg.Defaults.Calendar
	}
	cal, err := calendar.Lookup(calName)
	if err != nil {
		return Output{}, err
	}
	dcName := in.DayCount
	if strings.TrimSpace(dcName) == "" {
		dcName = string(daycount.Act365F)
	}
	dc, err := daycount.Parse(dcName)
	if err != nil {
		return Output{}, err
	}

	today := jsonio.Time(in.ValuationDate)

	store := fixings.NewManager()
	ts, err := fixings.NewTimeSeries(in.Fixings)
	if err != nil {
		return Output{}, err
	}
	if err := store.AddFixings(name, ts, false); err != nil {
		return Output{}, err
	}

	interest := termstructure.NewHandle(termstructure.NewFlatForward(today, in.InterestRate/100.0, dc))
	var dividendCurve termstructure.YieldTermStructure = termstructure.NoDividends(today)
	if in.DividendRate != nil {
		dividendCurve = termstructure.NewFlatForward(today, *in.DividendRate/100.0, dc)
	}
	dividend := termstructure.NewHandle(dividendCurve)

	idx := index.NewEquityIndex(name, in.Currency, cal, store, interest, dividend)
	resolver := index.NewResolver(today)
	resolver.Logger = logger

	out := Output{Index: idx.Name()}
	for _, cd := range in.Dates {
		d := jsonio.Time(cd)
		v, src, err := resolver.ResolveWithSource(idx, d, cfg.Valuation.ForecastTodaysFixing)
		if err != nil {
			return Output{}, fmt.Errorf("%s: %w", cd, err)
		}
		out.Forecasts = append(out.Forecasts, Point{
			Date:   cd,
			Value:  decimal.NewFromFloat(v).Round(4),
			Source: src.String(),
		})
	}
	return out, nil
}
