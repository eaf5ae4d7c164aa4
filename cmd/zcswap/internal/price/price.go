// Package price values zero-coupon swaps read as JSON.
package price

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/zcswap/averaging"
	"github.com/meenmo/zcswap/calendar"
	"github.com/meenmo/zcswap/cmd/zcswap/internal/jsonio"
	"github.com/meenmo/zcswap/config"
	"github.com/meenmo/zcswap/daycount"
	"github.com/meenmo/zcswap/fixings"
	"github.com/meenmo/zcswap/index"
	"github.com/meenmo/zcswap/swap"
	"github.com/meenmo/zcswap/termstructure"
)

// ErrTradesFailed is returned by Run when at least one trade could not be priced.
var ErrTradesFailed = errors.New("one or more trades failed")

// TradeInput defines the JSON input schema for one zero-coupon swap.
//
// Conventions:
// - rates and fixings are in percent (e.g., 2.50 means 2.50%)
// - curves are flat continuously compounded ACT/365F unless discount_factors is given
type TradeInput struct {
	ID            string     `json:"id,omitempty"`
	ValuationDate civil.Date `json:"valuation_date"`

	// Type is PAYER (pay fixed, receive floating) or RECEIVER.
	Type         string     `json:"type"`
	Notional     float64    `json:"notional"`
	StartDate    civil.Date `json:"start_date"`
	MaturityDate civil.Date `json:"maturity_date"`

	// Index is ESTR, EURIBOR3M or EURIBOR6M.
	Index string `json:"index"`

	// Exactly one of FixedRatePct and FixedPayment is set.
	FixedRatePct  *float64 `json:"fixed_rate,omitempty"`
	FixedPayment  *float64 `json:"fixed_payment,omitempty"`
	FixedDayCount string   `json:"fixed_day_count,omitempty"`

	Averaging             string `json:"averaging,omitempty"`
	Calendar              string `json:"calendar,omitempty"`
	BusinessDayConvention string `json:"business_day_convention,omitempty"`
	PaymentDelay          *int   `json:"payment_delay,omitempty"`

	DiscountRatePct float64            `json:"discount_rate"`
	DiscountFactors map[string]float64 `json:"discount_factors,omitempty"`
	ForwardRatePct  *float64           `json:"forward_rate,omitempty"`

	Fixings map[string]float64 `json:"fixings,omitempty"`
}

// SubPeriodOutput reports one averaged sub-period.
type SubPeriodOutput struct {
	FixingDate civil.Date      `json:"fixing_date"`
	StartDate  civil.Date      `json:"start_date"`
	EndDate    civil.Date      `json:"end_date"`
	Fraction   float64         `json:"fraction"`
	Fixing     decimal.Decimal `json:"fixing"`
}

// TradeOutput defines the JSON output schema. Amounts are rounded to cents and rates are in percent.
type TradeOutput struct {
	ID             string            `json:"id,omitempty"`
	RunID          string            `json:"run_id"`
	PaymentDate    *civil.Date       `json:"payment_date,omitempty"`
	FixedPayment   decimal.Decimal   `json:"fixed_payment"`
	FloatingAmount decimal.Decimal   `json:"floating_amount"`
	FloatingRate   decimal.Decimal   `json:"floating_rate"`
	FixedLegNPV    decimal.Decimal   `json:"fixed_leg_npv"`
	FloatingLegNPV decimal.Decimal   `json:"floating_leg_npv"`
	NPV            decimal.Decimal   `json:"npv"`
	FairFixedRate  decimal.Decimal   `json:"fair_fixed_rate"`
	SubPeriods     []SubPeriodOutput `json:"sub_periods,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// Run reads one trade or an array of trades, prices them and writes the result in the same
// shape. Trades are priced concurrently, bounded by the configured worker count.
func Run(ctx context.Context, cfg config.Config, stdin io.Reader, path string, stdout io.Writer) error {
	inputBytes, err := jsonio.ReadInput(stdin, path)
	if err != nil {
		_ = jsonio.Write(stdout, TradeOutput{Error: fmt.Sprintf("failed to read input: %v", err)})
		return err
	}
	trades, isArray, err := jsonio.DecodeOneOrMany[TradeInput](inputBytes)
	if err != nil {
		_ = jsonio.Write(stdout, TradeOutput{Error: fmt.Sprintf("failed to parse JSON input: %v", err)})
		return err
	}

	outputs, err := Batch(ctx, cfg, slog.Default(), trades)
	if err != nil {
		return err
	}

	if isArray {
		err = jsonio.Write(stdout, outputs)
	} else {
		err = jsonio.Write(stdout, outputs[0])
	}
	if err != nil {
		return err
	}
	for _, out := range outputs {
		if out.Error != "" {
			return ErrTradesFailed
		}
	}
	return nil
}

// Batch prices trades concurrently. Per-trade failures are reported in TradeOutput.Error;
// the returned error is only set when ctx is cancelled.
func Batch(ctx context.Context, cfg config.Config, logger *slog.Logger, trades []TradeInput) ([]TradeOutput, error) {
	outputs := make([]TradeOutput, len(trades))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Batch.Workers, 1))
	for i, in := range trades {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			runID := uuid.NewString()
			log := logger.With("run_id", runID, "trade_id", in.ID)
			start := time.Now()

			out, err := Price(cfg, log, in)
			if err != nil {
				log.Warn("trade failed", "error", err)
				out = TradeOutput{ID: in.ID, Error: err.Error()}
			} else {
				log.Info("trade priced", "npv", out.NPV.String(), "elapsed", time.Since(start))
			}
			out.RunID = runID
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// Price values a single trade.
func Price(cfg config.Config, logger *slog.Logger, in TradeInput) (TradeOutput, error) {
	zcs, dc, err := build(cfg, logger, in)
	if err != nil {
		return TradeOutput{}, err
	}

	fixedNPV, err := zcs.FixedLegNPV()
	if err != nil {
		return TradeOutput{}, fmt.Errorf("failed to price trade: %w", err)
	}
	floatingNPV, err := zcs.FloatingLegNPV()
	if err != nil {
		return TradeOutput{}, fmt.Errorf("failed to price trade: %w", err)
	}
	npv, err := zcs.NPV()
	if err != nil {
		return TradeOutput{}, fmt.Errorf("failed to price trade: %w", err)
	}
	fairRate, err := zcs.FairFixedRate(dc)
	if err != nil {
		return TradeOutput{}, fmt.Errorf("failed to compute fair fixed rate: %w", err)
	}

	coupon := zcs.FloatingCoupon()
	periods, err := coupon.SubPeriods()
	if err != nil {
		return TradeOutput{}, fmt.Errorf("failed to resolve fixings: %w", err)
	}
	rate, err := averaging.Average(coupon.AveragingConvention(), periods)
	if err != nil {
		return TradeOutput{}, fmt.Errorf("failed to average fixings: %w", err)
	}
	fixingDates := coupon.FixingDates()

	payDate := jsonio.Date(zcs.PaymentDate())
	out := TradeOutput{
		ID:             in.ID,
		PaymentDate:    &payDate,
		FixedPayment:   jsonio.Money(zcs.FixedPayment()),
		FloatingAmount: jsonio.Money(zcs.BaseNominal() * rate),
		FloatingRate:   jsonio.Rate(rate, 6),
		FixedLegNPV:    jsonio.Money(fixedNPV),
		FloatingLegNPV: jsonio.Money(floatingNPV),
		NPV:            jsonio.Money(npv),
		FairFixedRate:  jsonio.Rate(fairRate, 6),
	}
	for i, p := range periods {
		out.SubPeriods = append(out.SubPeriods, SubPeriodOutput{
			FixingDate: jsonio.Date(fixingDates[i]),
			StartDate:  jsonio.Date(p.Start),
			EndDate:    jsonio.Date(p.End),
			Fraction:   p.Fraction,
			Fixing:     jsonio.Rate(p.Fixing, 6),
		})
	}
	return out, nil
}

// build turns the input into a swap with a discounting engine attached. It also returns the
// day counter used for the fixed rate so the fair rate is quoted on the same basis.
func build(cfg config.Config, logger *slog.Logger, in TradeInput) (*swap.ZeroCouponSwap, daycount.DayCounter, error) {
	if !in.ValuationDate.IsValid() {
		return nil, nil, fmt.Errorf("valuation_date is required")
	}
	if !in.StartDate.IsValid() || !in.MaturityDate.IsValid() {
		return nil, nil, fmt.Errorf("start_date and maturity_date are required")
	}
	if in.Notional <= 0 {
		return nil, nil, fmt.Errorf("notional must be positive")
	}
	if (in.FixedRatePct == nil) == (in.FixedPayment == nil) {
		return nil, nil, fmt.Errorf("exactly one of fixed_rate and fixed_payment is required")
	}

	swapType, err := swap.ParseType(in.Type)
	if err != nil {
		return nil, nil, err
	}
	conv, ok := index.Preset(strings.ToUpper(strings.TrimSpace(in.Index)))
	if !ok {
		return nil, nil, fmt.Errorf("unknown index %q (use ESTR, EURIBOR3M or EURIBOR6M)", in.Index)
	}

	calName := firstNonEmpty(in.Calendar, cfg.Defaults.Calendar)
	cal, err := calendar.Lookup(calName)
	if err != nil {
		return nil, nil, err
	}
	bdc, err := calendar.ParseConvention(firstNonEmpty(in.BusinessDayConvention, cfg.Defaults.BusinessDayConvention))
	if err != nil {
		return nil, nil, err
	}
	avg, err := averaging.ParseConvention(firstNonEmpty(in.Averaging, cfg.Defaults.Averaging))
	if err != nil {
		return nil, nil, err
	}
	dc, err := daycount.Parse(firstNonEmpty(in.FixedDayCount, cfg.Defaults.DayCount))
	if err != nil {
		return nil, nil, err
	}
	delay := cfg.Defaults.PaymentDelay
	if in.PaymentDelay != nil {
		delay = *in.PaymentDelay
	}

	valuationDate := jsonio.Time(in.ValuationDate)

	store := fixings.NewManager()
	if len(in.Fixings) > 0 {
		ts, err := fixings.NewTimeSeries(jsonio.Fixings(in.Fixings))
		if err != nil {
			return nil, nil, err
		}
		if err := store.AddFixings(conv.Name, ts, false); err != nil {
			return nil, nil, err
		}
	}

	discount, err := discountCurve(valuationDate, in)
	if err != nil {
		return nil, nil, err
	}
	forwarding := discount
	if in.ForwardRatePct != nil {
		forwarding = termstructure.NewHandle(
			termstructure.NewFlatForward(valuationDate, *in.ForwardRatePct/100.0, daycount.Act365F))
	}

	idx, err := index.NewRateIndex(conv, store, forwarding)
	if err != nil {
		return nil, nil, err
	}
	resolver := index.NewResolver(valuationDate)
	resolver.Logger = logger

	terms := swap.Terms{
		Type:                 swapType,
		BaseNominal:          in.Notional,
		StartDate:            jsonio.Time(in.StartDate),
		MaturityDate:         jsonio.Time(in.MaturityDate),
		Index:                idx,
		Calendar:             cal,
		Convention:           bdc,
		PaymentDelay:         delay,
		Averaging:            avg,
		Resolver:             resolver,
		ForecastTodaysFixing: cfg.Valuation.ForecastTodaysFixing,
		Logger:               logger,
	}

	var zcs *swap.ZeroCouponSwap
	if in.FixedRatePct != nil {
		zcs, err = swap.NewWithFixedRate(terms, *in.FixedRatePct/100.0, dc)
	} else {
		zcs, err = swap.NewWithFixedPayment(terms, *in.FixedPayment)
	}
	if err != nil {
		return nil, nil, err
	}

	engine := swap.NewDiscountingEngine(discount, cfg.Valuation.IncludeSettlementDateFlows)
	engine.Logger = logger
	zcs.SetPricingEngine(engine)
	return zcs, dc, nil
}

func discountCurve(valuationDate time.Time, in TradeInput) (*termstructure.Handle, error) {
	if len(in.DiscountFactors) == 0 {
		return termstructure.NewHandle(
			termstructure.NewFlatForward(valuationDate, in.DiscountRatePct/100.0, daycount.Act365F)), nil
	}
	dfs := make(map[time.Time]float64, len(in.DiscountFactors))
	for k, v := range in.DiscountFactors {
		d, err := civil.ParseDate(k)
		if err != nil {
			return nil, fmt.Errorf("invalid discount_factors date %q: %v", k, err)
		}
		dfs[jsonio.Time(d)] = v
	}
	curve, err := termstructure.NewDiscountCurve(valuationDate, dfs)
	if err != nil {
		return nil, err
	}
	return termstructure.NewHandle(curve), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
