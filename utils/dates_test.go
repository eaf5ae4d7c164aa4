package utils_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/zcswap/utils"
)

func TestAddMonth(t *testing.T) {
	t.Parallel()

	require.Equal(t, utils.Date(2024, time.February, 29), utils.AddMonth(utils.Date(2024, time.January, 31), 1))
	require.Equal(t, utils.Date(2023, time.February, 28), utils.AddMonth(utils.Date(2023, time.January, 31), 1))
	require.Equal(t, utils.Date(2024, time.April, 30), utils.AddMonth(utils.Date(2024, time.May, 31), -1))
	require.Equal(t, utils.Date(2025, time.June, 15), utils.AddMonth(utils.Date(2024, time.June, 15), 12))
}

func TestSortAndAdjacentDates(t *testing.T) {
	t.Parallel()

	d1 := utils.Date(2024, time.January, 1)
	d2 := utils.Date(2024, time.July, 1)
	d3 := utils.Date(2025, time.January, 1)
	dates := []time.Time{d3, d1, d2}
	utils.SortDates(dates)
	if diff := cmp.Diff([]time.Time{d1, d2, d3}, dates); diff != "" {
		t.Fatalf("SortDates mismatch (-want +got):\n%s", diff)
	}

	lo, hi := utils.AdjacentDates(utils.Date(2024, time.March, 1), dates)
	require.Equal(t, d1, lo)
	require.Equal(t, d2, hi)

	lo, hi = utils.AdjacentDates(utils.Date(2023, time.March, 1), dates)
	require.Equal(t, d1, lo)
	require.Equal(t, d2, hi)

	lo, hi = utils.AdjacentDates(utils.Date(2026, time.March, 1), dates)
	require.Equal(t, d2, lo)
	require.Equal(t, d3, hi)

	require.Panics(t, func() { utils.AdjacentDates(d1, dates[:1]) })
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	got := utils.Truncate(time.Date(2024, time.June, 5, 17, 30, 0, 0, time.UTC))
	require.Equal(t, utils.Date(2024, time.June, 5), got)
	require.InDelta(t, 31.0, utils.Days(utils.Date(2024, time.May, 1), utils.Date(2024, time.June, 1)), 1e-12)
}
