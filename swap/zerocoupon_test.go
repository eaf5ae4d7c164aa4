package swap_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/zcswap/averaging"
	"github.com/meenmo/zcswap/calendar"
	"github.com/meenmo/zcswap/cashflow"
	"github.com/meenmo/zcswap/daycount"
	"github.com/meenmo/zcswap/fixings"
	"github.com/meenmo/zcswap/index"
	"github.com/meenmo/zcswap/pricing"
	"github.com/meenmo/zcswap/swap"
	"github.com/meenmo/zcswap/termstructure"
	"github.com/meenmo/zcswap/utils"
)

var (
	today    = utils.Date(2024, time.March, 1)
	start    = utils.Date(2024, time.January, 2)
	maturity = utils.Date(2026, time.January, 2)
)

type fixture struct {
	store    *fixings.Manager
	curve    *termstructure.FlatForward
	handle   *termstructure.Handle
	index    *index.RateIndex
	resolver *index.Resolver
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := fixings.NewManager()
	require.NoError(t, store.AddFixing(index.EURIBOR6M, utils.Date(2023, time.December, 28), 0.039, false))
	curve := termstructure.NewFlatForward(today, 0.03, daycount.Act365F)
	handle := termstructure.NewHandle(curve)
	idx, err := index.NewRateIndex(index.Euribor6MConvention, store, handle)
	require.NoError(t, err)
	return fixture{store: store, curve: curve, handle: handle, index: idx, resolver: index.NewResolver(today)}
}

func (f fixture) terms(typ swap.Type) swap.Terms {
	return swap.Terms{
		Type:         typ,
		BaseNominal:  1_000_000,
		StartDate:    start,
		MaturityDate: maturity,
		Index:        f.index,
		Calendar:     calendar.TARGET,
		Convention:   calendar.Following,
		Averaging:    averaging.Compound,
		Resolver:     f.resolver,
	}
}

func (f fixture) priced(t *testing.T, typ swap.Type, fixedRate float64) *swap.ZeroCouponSwap {
	t.Helper()
	s, err := swap.NewWithFixedRate(f.terms(typ), fixedRate, daycount.Thirty360)
	require.NoError(t, err)
	s.SetPricingEngine(swap.NewDiscountingEngine(f.handle, false))
	return s
}

func TestFixedPaymentFromRate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	terms := f.terms(swap.Payer)
	terms.BaseNominal = 100

	// 30/360 over two whole years gives alpha = 2.
	s, err := swap.NewWithFixedRate(terms, 0.05, daycount.Thirty360)
	require.NoError(t, err)
	require.InDelta(t, 10.25, s.FixedPayment(), 1e-12)

	amount, err := s.FixedLeg()[0].Amount()
	require.NoError(t, err)
	require.InDelta(t, 10.25, amount, 1e-12)

	require.InDelta(t, 10.25, swap.FixedPaymentFromRate(100, 0.05, daycount.Thirty360, start, maturity), 1e-12)
}

func TestLegs(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s, err := swap.NewWithFixedPayment(f.terms(swap.Receiver), 50_000)
	require.NoError(t, err)

	require.Equal(t, swap.Receiver, s.Type())
	require.InDelta(t, 1_000_000.0, s.BaseNominal(), 0)
	require.Equal(t, start, s.StartDate())
	require.Equal(t, maturity, s.MaturityDate())
	require.Equal(t, maturity, s.PaymentDate())
	require.Equal(t, index.EURIBOR6M, s.Index().Name())
	require.Equal(t, averaging.Compound, s.Averaging())
	require.Equal(t, swap.Constructed, s.State())

	fixed := s.FixedLeg()
	floating := s.FloatingLeg()
	require.Len(t, fixed, 1)
	require.Len(t, floating, 1)
	require.Equal(t, maturity, fixed[0].Date())
	require.Equal(t, maturity, floating[0].Date())

	coupon, ok := floating[0].(*cashflow.SubPeriodsCoupon)
	require.True(t, ok)
	require.Same(t, s.FloatingCoupon(), coupon)
	require.Len(t, coupon.FixingDates(), 4)

	want, err := coupon.Amount()
	require.NoError(t, err)
	got, err := s.FloatingAmount()
	require.NoError(t, err)
	require.InDelta(t, want, got, 0)
}

func TestPaymentDelay(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	terms := f.terms(swap.Payer)
	terms.PaymentDelay = 2
	s, err := swap.NewWithFixedPayment(terms, 1)
	require.NoError(t, err)
	require.Equal(t, utils.Date(2026, time.January, 6), s.PaymentDate())
	require.Equal(t, utils.Date(2026, time.January, 6), s.FloatingLeg()[0].Date())

	// Without a delay a holiday maturity is only adjusted; the convention defaults from config.
	terms = f.terms(swap.Payer)
	terms.MaturityDate = utils.Date(2025, time.December, 25)
	terms.Convention = ""
	s, err = swap.NewWithFixedPayment(terms, 1)
	require.NoError(t, err)
	require.Equal(t, utils.Date(2025, time.December, 29), s.PaymentDate())
}

func TestConstructionErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	terms := f.terms(swap.Type(0))
	_, err := swap.NewWithFixedPayment(terms, 1)
	require.Error(t, err)

	terms = f.terms(swap.Payer)
	terms.BaseNominal = 0
	_, err = swap.NewWithFixedPayment(terms, 1)
	require.Error(t, err)

	terms = f.terms(swap.Payer)
	terms.MaturityDate = start
	_, err = swap.NewWithFixedPayment(terms, 1)
	require.Error(t, err)

	terms = f.terms(swap.Payer)
	terms.PaymentDelay = -1
	_, err = swap.NewWithFixedPayment(terms, 1)
	require.Error(t, err)

	_, err = swap.NewWithFixedPayment(f.terms(swap.Payer), math.NaN())
	require.Error(t, err)

	_, err = swap.NewWithFixedRate(f.terms(swap.Payer), 0.02, nil)
	require.Error(t, err)

	_, err = swap.NewWithFixedRate(f.terms(swap.Payer), -1, daycount.Act360)
	require.Error(t, err)
}

func TestSetupArguments(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	for _, tt := range []struct {
		typ   swap.Type
		payer [2]float64
	}{
		{swap.Payer, [2]float64{-1, 1}},
		{swap.Receiver, [2]float64{1, -1}},
	} {
		s, err := swap.NewWithFixedPayment(f.terms(tt.typ), 42)
		require.NoError(t, err)

		var args swap.Arguments
		require.NoError(t, s.SetupArguments(&args))
		require.Equal(t, tt.payer, args.Payer)
		require.Equal(t, tt.typ, args.Type)
		require.InDelta(t, 42.0, args.FixedPayment, 0)
		require.Len(t, args.Legs[0], 1)
		require.Len(t, args.Legs[1], 1)
		require.NoError(t, args.Validate())
		require.Equal(t, swap.ArgumentsBound, s.State())
	}
}

type foreignArguments struct{}

func (foreignArguments) Validate() error { return nil }

type foreignResults struct{}

func (foreignResults) Reset() {}

func TestArgumentAndResultTypeMismatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s, err := swap.NewWithFixedPayment(f.terms(swap.Payer), 1)
	require.NoError(t, err)

	require.ErrorIs(t, s.SetupArguments(foreignArguments{}), pricing.ErrArgumentTypeMismatch)
	require.ErrorIs(t, s.FetchResults(foreignResults{}), pricing.ErrArgumentTypeMismatch)
	require.ErrorIs(t, s.FetchResults(&swap.Results{}), pricing.ErrResultsNotReady)
	require.Equal(t, swap.Constructed, s.State())

	require.NoError(t, s.FetchResults(&swap.Results{NPV: 3, Ready: true}))
	require.Equal(t, swap.Priced, s.State())
}

func TestArgumentsValidate(t *testing.T) {
	t.Parallel()

	d := maturity
	one := cashflow.Leg{cashflow.NewSimpleCashFlow(1, d)}
	two := cashflow.Leg{cashflow.NewSimpleCashFlow(1, d), cashflow.NewSimpleCashFlow(2, d)}

	valid := swap.Arguments{Legs: [2]cashflow.Leg{one, one}, Payer: [2]float64{-1, 1}}
	require.NoError(t, valid.Validate())

	sameSign := valid
	sameSign.Payer = [2]float64{1, 1}
	require.ErrorIs(t, sameSign.Validate(), swap.ErrInconsistentSign)

	zeroSign := valid
	zeroSign.Payer = [2]float64{0, 1}
	require.ErrorIs(t, zeroSign.Validate(), swap.ErrInconsistentSign)

	empty := valid
	empty.Legs = [2]cashflow.Leg{one, nil}
	require.ErrorIs(t, empty.Validate(), swap.ErrInvalidLegStructure)

	extra := valid
	extra.Legs = [2]cashflow.Leg{two, one}
	require.ErrorIs(t, extra.Validate(), swap.ErrInvalidLegStructure)

	nilFlow := valid
	nilFlow.Legs = [2]cashflow.Leg{one, {nil}}
	require.ErrorIs(t, nilFlow.Validate(), swap.ErrInvalidLegStructure)

	valid.Reset()
	require.Equal(t, swap.Arguments{}, valid)
}

func TestDiscountingNPV(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := f.priced(t, swap.Payer, 0.035)

	npv, err := s.NPV()
	require.NoError(t, err)
	require.Equal(t, swap.Priced, s.State())

	df := f.curve.Discount(s.PaymentDate())
	floating, err := s.FloatingAmount()
	require.NoError(t, err)

	fixedNPV, err := s.FixedLegNPV()
	require.NoError(t, err)
	floatingNPV, err := s.FloatingLegNPV()
	require.NoError(t, err)

	require.InDelta(t, -s.FixedPayment()*df, fixedNPV, 1e-6)
	require.InDelta(t, floating*df, floatingNPV, 1e-6)
	require.InDelta(t, fixedNPV+floatingNPV, npv, 1e-9)

	vd, err := s.ValuationDate()
	require.NoError(t, err)
	require.Equal(t, today, vd)
}

func TestPayerReceiverSymmetry(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	payer := f.priced(t, swap.Payer, 0.035)
	receiver := f.priced(t, swap.Receiver, 0.035)

	p, err := payer.NPV()
	require.NoError(t, err)
	r, err := receiver.NPV()
	require.NoError(t, err)
	require.InDelta(t, -p, r, 1e-9)
	require.NotZero(t, p)
}

func TestFairFixedPaymentAndRate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	for _, typ := range []swap.Type{swap.Payer, swap.Receiver} {
		s := f.priced(t, typ, 0.035)

		fair, err := s.FairFixedPayment()
		require.NoError(t, err)
		floating, err := s.FloatingAmount()
		require.NoError(t, err)
		require.InDelta(t, floating, fair, 1e-6)

		atPar, err := swap.NewWithFixedPayment(f.terms(typ), fair)
		require.NoError(t, err)
		atPar.SetPricingEngine(swap.NewDiscountingEngine(f.handle, false))
		npv, err := atPar.NPV()
		require.NoError(t, err)
		require.InDelta(t, 0.0, npv, 1e-6)

		rate, err := s.FairFixedRate(daycount.Thirty360)
		require.NoError(t, err)
		atParRate := f.priced(t, typ, rate)
		npv, err = atParRate.NPV()
		require.NoError(t, err)
		require.InDelta(t, 0.0, npv, 1e-6)
	}
}

func TestStaleResultsAreRecomputed(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := f.priced(t, swap.Payer, 0.035)
	require.Equal(t, swap.Constructed, s.State())

	require.NoError(t, s.Calculate())
	require.Equal(t, swap.Priced, s.State())
	before, err := s.NPV()
	require.NoError(t, err)

	f.curve.SetRate(0.04)
	require.Equal(t, swap.ArgumentsBound, s.State())

	after, err := s.NPV()
	require.NoError(t, err)
	require.Equal(t, swap.Priced, s.State())
	require.NotEqual(t, before, after)

	// A new fixing is market data too.
	require.NoError(t, f.store.AddFixing(index.EURIBOR6M, utils.Date(2023, time.December, 28), 0.05, true))
	require.Equal(t, swap.ArgumentsBound, s.State())

	// Relinking the discount handle as well.
	_, err = s.NPV()
	require.NoError(t, err)
	f.handle.LinkTo(termstructure.NewFlatForward(today, 0.02, daycount.Act365F))
	require.Equal(t, swap.ArgumentsBound, s.State())
}

func TestMovingEvaluationDateInvalidates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := f.priced(t, swap.Payer, 0.035)
	_, err := s.NPV()
	require.NoError(t, err)
	require.Equal(t, swap.Priced, s.State())

	// The second sub-period fixes on 2024-06-28; after that date it must come from history.
	f.resolver.SetToday(utils.Date(2024, time.September, 2))
	require.Equal(t, swap.ArgumentsBound, s.State())

	_, err = s.NPV()
	require.ErrorIs(t, err, index.ErrMissingFixing)
	require.NotEqual(t, swap.Priced, s.State())

	require.NoError(t, f.store.AddFixing(index.EURIBOR6M, utils.Date(2024, time.June, 28), 0.037, false))
	_, err = s.NPV()
	require.NoError(t, err)
	require.Equal(t, swap.Priced, s.State())
}

func TestCalculateWithoutEngine(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s, err := swap.NewWithFixedPayment(f.terms(swap.Payer), 1)
	require.NoError(t, err)

	require.ErrorIs(t, s.Calculate(), pricing.ErrNoEngine)
	_, err = s.NPV()
	require.ErrorIs(t, err, pricing.ErrNoEngine)
}

// countingEngine records engine runs and can misbehave on demand.
type countingEngine struct {
	args     pricing.Arguments
	results  swap.Results
	runs     int
	notReady bool
}

func (e *countingEngine) Arguments() pricing.Arguments { return e.args }
func (e *countingEngine) Results() pricing.Results     { return &e.results }
func (e *countingEngine) Reset()                       { e.results.Reset() }
func (e *countingEngine) Calculate() error {
	e.runs++
	e.results.Ready = !e.notReady
	return nil
}

func TestCalculateContract(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s, err := swap.NewWithFixedPayment(f.terms(swap.Payer), 1)
	require.NoError(t, err)

	foreign := &countingEngine{args: foreignArguments{}}
	s.SetPricingEngine(foreign)
	require.ErrorIs(t, s.Calculate(), pricing.ErrArgumentTypeMismatch)
	require.Zero(t, foreign.runs)

	lazy := &countingEngine{args: &swap.Arguments{}, notReady: true}
	s.SetPricingEngine(lazy)
	require.ErrorIs(t, s.Calculate(), pricing.ErrResultsNotReady)
	require.Equal(t, 1, lazy.runs)
	require.NotEqual(t, swap.Priced, s.State())

	good := &countingEngine{args: &swap.Arguments{}}
	s.SetPricingEngine(good)
	require.NoError(t, s.Calculate())
	require.Equal(t, swap.Priced, s.State())
	args := good.args.(*swap.Arguments)
	require.Equal(t, [2]float64{-1, 1}, args.Payer)
}

func TestSettlementDateFlows(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	terms := f.terms(swap.Payer)
	terms.Resolver = index.NewResolver(maturity)
	s, err := swap.NewWithFixedPayment(terms, 100)
	require.NoError(t, err)

	// Curve and resolver anchored on the payment date: the exchange is settling today.
	atPayment := termstructure.NewHandle(termstructure.NewFlatForward(s.PaymentDate(), 0.03, daycount.Act365F))

	s.SetPricingEngine(swap.NewDiscountingEngine(atPayment, false))
	npv, err := s.NPV()
	require.NoError(t, err)
	require.InDelta(t, 0.0, npv, 0)

	// Included, the floating flow needs fixings that are not stored.
	s.SetPricingEngine(swap.NewDiscountingEngine(atPayment, true))
	_, err = s.NPV()
	require.ErrorIs(t, err, index.ErrMissingFixing)
}

func TestEngineMissingCurve(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s, err := swap.NewWithFixedPayment(f.terms(swap.Payer), 100)
	require.NoError(t, err)
	s.SetPricingEngine(swap.NewDiscountingEngine(termstructure.NewHandle(nil), false))

	_, err = s.NPV()
	require.ErrorIs(t, err, termstructure.ErrMissingTermStructure)
}

func TestTypeText(t *testing.T) {
	t.Parallel()

	typ, err := swap.ParseType("pay")
	require.NoError(t, err)
	require.Equal(t, swap.Payer, typ)

	var rec swap.Type
	require.NoError(t, rec.UnmarshalText([]byte("receiver")))
	require.Equal(t, swap.Receiver, rec)

	b, err := swap.Payer.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "PAYER", string(b))

	_, err = swap.ParseType("straddle")
	require.Error(t, err)
	require.Equal(t, "PRICED", swap.Priced.String())
}
