package averaging_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/zcswap/averaging"
	"github.com/meenmo/zcswap/utils"
)

func TestAverage(t *testing.T) {
	t.Parallel()

	periods := []averaging.Period{
		{Fraction: 0.5, Fixing: 0.02},
		{Fraction: 0.5, Fixing: 0.03},
	}

	simple, err := averaging.Average(averaging.Simple, periods)
	require.NoError(t, err)
	require.InDelta(t, 0.025, simple, 1e-15)

	compound, err := averaging.Average(averaging.Compound, periods)
	require.NoError(t, err)
	require.InDelta(t, 1.01*1.015-1, compound, 1e-15)
	require.InDelta(t, 0.02515, compound, 1e-12)
}

func TestAverageChronologicalOrder(t *testing.T) {
	t.Parallel()

	d := func(m time.Month, day int) time.Time { return utils.Date(2024, m, day) }
	ordered := []averaging.Period{
		{Start: d(time.January, 2), End: d(time.April, 2), Fraction: 0.25, Fixing: 0.04},
		{Start: d(time.April, 2), End: d(time.July, 2), Fraction: 0.25, Fixing: 0.035},
		{Start: d(time.July, 2), End: d(time.October, 2), Fraction: 0.25, Fixing: 0.03},
	}
	shuffled := []averaging.Period{ordered[2], ordered[0], ordered[1]}

	for _, conv := range []averaging.Convention{averaging.Compound, averaging.Simple} {
		want, err := averaging.Average(conv, ordered)
		require.NoError(t, err)
		got, err := averaging.Average(conv, shuffled)
		require.NoError(t, err)
		require.InDelta(t, want, got, 1e-15, conv.String())
	}

	// The caller's slice is left untouched.
	require.Equal(t, d(time.July, 2), shuffled[0].Start)
}

func TestAverageErrors(t *testing.T) {
	t.Parallel()

	_, err := averaging.Average(averaging.Compound, nil)
	require.ErrorIs(t, err, averaging.ErrEmptyAveragingWindow)
	_, err = averaging.Average(averaging.Simple, []averaging.Period{})
	require.ErrorIs(t, err, averaging.ErrEmptyAveragingWindow)

	_, err = averaging.Average(averaging.Compound, []averaging.Period{{Fraction: 0.5, Fixing: 0.02}, {Fraction: -0.1, Fixing: 0.02}})
	require.ErrorIs(t, err, averaging.ErrInvalidAccrualFraction)

	_, err = averaging.Average(averaging.Simple, []averaging.Period{{Fraction: math.NaN(), Fixing: 0.02}})
	require.ErrorIs(t, err, averaging.ErrInvalidAccrualFraction)

	day := utils.Date(2024, time.January, 2)
	_, err = averaging.Average(averaging.Simple, []averaging.Period{{Start: day, End: day, Fraction: 0, Fixing: 0.02}})
	require.ErrorIs(t, err, averaging.ErrInvalidAccrualPeriod)
	require.NotErrorIs(t, err, averaging.ErrInvalidAccrualFraction, "a zero fraction is not a negative one")

	// A zero fraction on an undated period is allowed.
	got, err := averaging.Average(averaging.Compound, []averaging.Period{{Fraction: 0, Fixing: 0.02}})
	require.NoError(t, err)
	require.InDelta(t, 0.0, got, 0)

	_, err = averaging.Average(averaging.Convention(7), []averaging.Period{{Fraction: 1, Fixing: 0.02}})
	require.Error(t, err)
}

func TestConventionText(t *testing.T) {
	t.Parallel()

	var payload struct {
		Averaging averaging.Convention `json:"averaging"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"averaging":"simple"}`), &payload))
	require.Equal(t, averaging.Simple, payload.Averaging)

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	require.JSONEq(t, `{"averaging":"SIMPLE"}`, string(b))

	require.Error(t, json.Unmarshal([]byte(`{"averaging":"geometric"}`), &payload))
}
