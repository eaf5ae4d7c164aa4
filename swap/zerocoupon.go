package swap

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/meenmo/zcswap/averaging"
	"github.com/meenmo/zcswap/calendar"
	"github.com/meenmo/zcswap/cashflow"
	"github.com/meenmo/zcswap/config"
	"github.com/meenmo/zcswap/daycount"
	"github.com/meenmo/zcswap/index"
	"github.com/meenmo/zcswap/pricing"
)

// Terms holds the contract data shared by both zero-coupon swap constructors.
type Terms struct {
	Type         Type
	BaseNominal  float64
	StartDate    time.Time
	MaturityDate time.Time
	Index        cashflow.RateIndex

	// Calendar and Convention produce the payment date from the maturity date. Calendar
	// defaults to the index fixing calendar and Convention to the configured default.
	Calendar     calendar.Calendar
	Convention   calendar.BusinessDayConvention
	PaymentDelay int

	Averaging            averaging.Convention
	Resolver             *index.Resolver
	ForecastTodaysFixing bool

	Logger *slog.Logger
}

func (t *Terms) validate() error {
	if t.Type != Payer && t.Type != Receiver {
		return fmt.Errorf("invalid swap type %d", int(t.Type))
	}
	if !(t.BaseNominal > 0) {
		return fmt.Errorf("base nominal must be positive, got %g", t.BaseNominal)
	}
	if !t.MaturityDate.After(t.StartDate) {
		return fmt.Errorf("maturity %s not after start %s",
			t.MaturityDate.Format("2006-01-02"), t.StartDate.Format("2006-01-02"))
	}
	if t.Index == nil {
		return errors.New("index is required")
	}
	if t.Resolver == nil {
		return errors.New("resolver is required")
	}
	if t.PaymentDelay < 0 {
		return fmt.Errorf("payment delay must be non-negative, got %d", t.PaymentDelay)
	}
	return nil
}

// ZeroCouponSwap exchanges one fixed payment for one floating payment, both at the payment date.
// The floating amount is the nominal times the index fixings averaged over [start, maturity].
type ZeroCouponSwap struct {
	terms        Terms
	fixedPayment float64
	paymentDate  time.Time
	coupon       *cashflow.SubPeriodsCoupon
	legs         [2]cashflow.Leg
	payer        [2]float64

	engine   pricing.Engine
	state    State
	revision uint64
	results  Results
	logger   *slog.Logger
}

// NewWithFixedPayment builds a swap whose fixed leg pays fixedPayment.
func NewWithFixedPayment(terms Terms, fixedPayment float64) (*ZeroCouponSwap, error) {
	if err := terms.validate(); err != nil {
		return nil, fmt.Errorf("NewWithFixedPayment: %w", err)
	}
	if math.IsNaN(fixedPayment) || math.IsInf(fixedPayment, 0) {
		return nil, fmt.Errorf("NewWithFixedPayment: fixed payment must be finite, got %g", fixedPayment)
	}
	s, err := newSwap(terms, fixedPayment)
	if err != nil {
		return nil, fmt.Errorf("NewWithFixedPayment: %w", err)
	}
	return s, nil
}

// NewWithFixedRate builds a swap whose fixed payment is
// nominal * ((1 + rate)^yearFraction(start, maturity) - 1), frozen at construction.
func NewWithFixedRate(terms Terms, fixedRate float64, dc daycount.DayCounter) (*ZeroCouponSwap, error) {
	if err := terms.validate(); err != nil {
		return nil, fmt.Errorf("NewWithFixedRate: %w", err)
	}
	if dc == nil {
		return nil, errors.New("NewWithFixedRate: day counter is required")
	}
	if fixedRate <= -1 {
		return nil, fmt.Errorf("NewWithFixedRate: fixed rate must exceed -1, got %g", fixedRate)
	}
	s, err := newSwap(terms, FixedPaymentFromRate(terms.BaseNominal, fixedRate, dc, terms.StartDate, terms.MaturityDate))
	if err != nil {
		return nil, fmt.Errorf("NewWithFixedRate: %w", err)
	}
	return s, nil
}

// FixedPaymentFromRate compounds a fixed rate over the accrual fraction of [start, maturity].
func FixedPaymentFromRate(nominal, rate float64, dc daycount.DayCounter, start, maturity time.Time) float64 {
	alpha := dc.YearFraction(start, maturity)
	return nominal * (math.Pow(1+rate, alpha) - 1)
}

func newSwap(terms Terms, fixedPayment float64) (*ZeroCouponSwap, error) {
	if terms.Calendar == nil {
		terms.Calendar = terms.Index.FixingCalendar()
	}
	if terms.Convention == "" {
		conv, err := calendar.ParseConvention(config.GetConfig().Defaults.BusinessDayConvention)
		if err != nil {
			return nil, err
		}
		terms.Convention = conv
	}
	logger := terms.Logger
	if logger == nil {
		logger = slog.Default()
	}

	paymentDate := calendar.Adjust(terms.Calendar, terms.MaturityDate, terms.Convention)
	if terms.PaymentDelay > 0 {
		paymentDate = calendar.AddBusinessDays(terms.Calendar, terms.MaturityDate, terms.PaymentDelay)
	}

	coupon, err := cashflow.NewSubPeriodsCoupon(cashflow.SubPeriodsParams{
		PaymentDate:          paymentDate,
		Nominal:              terms.BaseNominal,
		StartDate:            terms.StartDate,
		EndDate:              terms.MaturityDate,
		Index:                terms.Index,
		Averaging:            terms.Averaging,
		Resolver:             terms.Resolver,
		ForecastTodaysFixing: terms.ForecastTodaysFixing,
	})
	if err != nil {
		return nil, err
	}

	s := &ZeroCouponSwap{
		terms:        terms,
		fixedPayment: fixedPayment,
		paymentDate:  paymentDate,
		coupon:       coupon,
		legs: [2]cashflow.Leg{
			{cashflow.NewSimpleCashFlow(fixedPayment, paymentDate)},
			{coupon},
		},
		logger: logger.With("instrument", "zero_coupon_swap", "index", terms.Index.Name()),
	}
	if terms.Type == Payer {
		s.payer = [2]float64{-1, 1}
	} else {
		s.payer = [2]float64{1, -1}
	}
	return s, nil
}

func (s *ZeroCouponSwap) Type() Type                                 { return s.terms.Type }
func (s *ZeroCouponSwap) BaseNominal() float64                       { return s.terms.BaseNominal }
func (s *ZeroCouponSwap) FixedPayment() float64                      { return s.fixedPayment }
func (s *ZeroCouponSwap) StartDate() time.Time                       { return s.terms.StartDate }
func (s *ZeroCouponSwap) MaturityDate() time.Time                    { return s.terms.MaturityDate }
func (s *ZeroCouponSwap) PaymentDate() time.Time                     { return s.paymentDate }
func (s *ZeroCouponSwap) Index() cashflow.RateIndex                  { return s.terms.Index }
func (s *ZeroCouponSwap) Averaging() averaging.Convention            { return s.terms.Averaging }
func (s *ZeroCouponSwap) FloatingCoupon() *cashflow.SubPeriodsCoupon { return s.coupon }

// FixedLeg returns the single fixed flow.
func (s *ZeroCouponSwap) FixedLeg() cashflow.Leg {
	return append(cashflow.Leg(nil), s.legs[fixedLeg]...)
}

// FloatingLeg returns the single floating flow.
func (s *ZeroCouponSwap) FloatingLeg() cashflow.Leg {
	return append(cashflow.Leg(nil), s.legs[floatingLeg]...)
}

// FloatingAmount resolves the index fixings and returns the floating payment.
func (s *ZeroCouponSwap) FloatingAmount() (float64, error) { return s.coupon.Amount() }

// SetPricingEngine attaches the engine used by Calculate. Any cached valuation is dropped.
func (s *ZeroCouponSwap) SetPricingEngine(e pricing.Engine) {
	s.engine = e
	s.invalidate("engine changed")
}

// SetupArguments fills a *Arguments with the swap's legs and signs.
func (s *ZeroCouponSwap) SetupArguments(a pricing.Arguments) error {
	args, ok := a.(*Arguments)
	if !ok || args == nil {
		return fmt.Errorf("SetupArguments: got %T, want *swap.Arguments: %w", a, pricing.ErrArgumentTypeMismatch)
	}
	*args = Arguments{
		Type:         s.terms.Type,
		BaseNominal:  s.terms.BaseNominal,
		FixedPayment: s.fixedPayment,
		PaymentDate:  s.paymentDate,
		Legs:         [2]cashflow.Leg{s.FixedLeg(), s.FloatingLeg()},
		Payer:        s.payer,
	}
	if s.state != Priced {
		s.state = ArgumentsBound
	}
	return nil
}

// FetchResults copies engine output into the swap and marks it priced.
func (s *ZeroCouponSwap) FetchResults(r pricing.Results) error {
	res, ok := r.(*Results)
	if !ok || res == nil {
		return fmt.Errorf("FetchResults: got %T, want *swap.Results: %w", r, pricing.ErrArgumentTypeMismatch)
	}
	if !res.Ready {
		return fmt.Errorf("FetchResults: %w", pricing.ErrResultsNotReady)
	}
	s.results = *res
	s.revision = s.marketRevision()
	s.state = Priced
	return nil
}

// Calculate runs the attached engine: arguments are bound and validated before the engine sees
// them, and a validation failure leaves any previous results untouched.
func (s *ZeroCouponSwap) Calculate() error {
	if s.engine == nil {
		return fmt.Errorf("Calculate: %w", pricing.ErrNoEngine)
	}
	args := s.engine.Arguments()
	if err := s.SetupArguments(args); err != nil {
		return fmt.Errorf("Calculate: %w", err)
	}
	if err := args.Validate(); err != nil {
		return fmt.Errorf("Calculate: %w", err)
	}
	s.engine.Results().Reset()
	if err := s.engine.Calculate(); err != nil {
		s.invalidate("engine failed")
		return fmt.Errorf("Calculate: %w", err)
	}
	if err := s.FetchResults(s.engine.Results()); err != nil {
		return fmt.Errorf("Calculate: %w", err)
	}
	s.logger.Debug("priced", "npv", s.results.NPV, "revision", s.revision)
	return nil
}

// State reports the valuation state, demoting Priced when market data moved since pricing.
func (s *ZeroCouponSwap) State() State {
	if s.state == Priced && s.marketRevision() != s.revision {
		s.invalidate("market data changed")
	}
	return s.state
}

func (s *ZeroCouponSwap) invalidate(reason string) {
	if s.state == Priced {
		s.logger.Debug("valuation invalidated", "reason", reason)
		s.state = ArgumentsBound
	}
	s.results = Results{}
}

func (s *ZeroCouponSwap) marketRevision() uint64 {
	rev := s.terms.Index.Revision() + s.terms.Resolver.Revision()
	if o, ok := s.engine.(pricing.Observable); ok {
		rev += o.Revision()
	}
	return rev
}

func (s *ZeroCouponSwap) ensurePriced() error {
	if s.State() == Priced {
		return nil
	}
	return s.Calculate()
}

// NPV returns the net present value, pricing first if needed.
func (s *ZeroCouponSwap) NPV() (float64, error) {
	if err := s.ensurePriced(); err != nil {
		return 0, err
	}
	return s.results.NPV, nil
}

// FixedLegNPV returns the signed present value of the fixed leg.
func (s *ZeroCouponSwap) FixedLegNPV() (float64, error) {
	if err := s.ensurePriced(); err != nil {
		return 0, err
	}
	return s.results.FixedLegNPV, nil
}

// FloatingLegNPV returns the signed present value of the floating leg.
func (s *ZeroCouponSwap) FloatingLegNPV() (float64, error) {
	if err := s.ensurePriced(); err != nil {
		return 0, err
	}
	return s.results.FloatingLegNPV, nil
}

// ValuationDate returns the reference date of the curve used for the last valuation.
func (s *ZeroCouponSwap) ValuationDate() (time.Time, error) {
	if err := s.ensurePriced(); err != nil {
		return time.Time{}, err
	}
	return s.results.ValuationDate, nil
}

// FairFixedPayment is the fixed payment that sets the NPV to zero.
func (s *ZeroCouponSwap) FairFixedPayment() (float64, error) {
	if err := s.ensurePriced(); err != nil {
		return 0, err
	}
	df := s.results.EndDiscounts[fixedLeg]
	if df == 0 {
		return 0, errors.New("FairFixedPayment: fixed leg has no discount factor")
	}
	return -s.results.FloatingLegNPV / (s.payer[fixedLeg] * df), nil
}

// FairFixedRate converts FairFixedPayment into a compounded rate over [start, maturity].
func (s *ZeroCouponSwap) FairFixedRate(dc daycount.DayCounter) (float64, error) {
	if dc == nil {
		return 0, errors.New("FairFixedRate: day counter is required")
	}
	fair, err := s.FairFixedPayment()
	if err != nil {
		return 0, err
	}
	alpha := dc.YearFraction(s.terms.StartDate, s.terms.MaturityDate)
	if alpha <= 0 {
		return 0, fmt.Errorf("FairFixedRate: non-positive year fraction %g", alpha)
	}
	growth := fair/s.terms.BaseNominal + 1
	if growth <= 0 {
		return 0, fmt.Errorf("FairFixedRate: fair payment %g implies no real rate", fair)
	}
	return math.Pow(growth, 1/alpha) - 1, nil
}
