package core

import (
	"testing"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSmooth tests the rolling mean and both insufficient-history modes.
func TestSmooth(t *testing.T) {
	week := rawSeries("NSW", march1, 10, 20, 10, 20, 10, 20, 10)

	t.Run("single full window", func(t *testing.T) {
		// 100 / 7 = 14.29
		s, err := Smooth(week, SmoothOptions{Window: 7, Mode: schema.DropSmoothing})
		require.NoError(t, err)
		require.Len(t, s.Rows, 1)
		assert.Equal(t, int64(14), *s.Rows[0].SmoothCases)
		assert.Equal(t, march1.AddDate(0, 0, 6), s.Rows[0].Date)
	})

	t.Run("retain keeps leading rows as nil", func(t *testing.T) {
		s, err := Smooth(week, SmoothOptions{Window: 7, Mode: schema.RetainSmoothing})
		require.NoError(t, err)
		require.Len(t, s.Rows, 7)
		for _, r := range s.Rows[:6] {
			assert.Nil(t, r.SmoothCases)
		}
		assert.Equal(t, int64(14), *s.Rows[6].SmoothCases)
	})

	t.Run("default mode drops", func(t *testing.T) {
		s, err := Smooth(week, SmoothOptions{Window: 3})
		require.NoError(t, err)
		assert.Len(t, s.Rows, 5)
	})

	t.Run("rounds halves up", func(t *testing.T) {
		s, err := Smooth(rawSeries("NSW", march1, 2, 3, 4, 5), SmoothOptions{Window: 2})
		require.NoError(t, err)
		require.Len(t, s.Rows, 3)
		assert.Equal(t, int64(3), *s.Rows[0].SmoothCases)
		assert.Equal(t, int64(4), *s.Rows[1].SmoothCases)
		assert.Equal(t, int64(5), *s.Rows[2].SmoothCases)
	})

	t.Run("window of one is identity", func(t *testing.T) {
		once, err := Smooth(week, SmoothOptions{Window: 1})
		require.NoError(t, err)
		for i, r := range once.Rows {
			assert.Equal(t, week.Rows[i].RawCases, *r.SmoothCases)
		}

		asRaw := once.Clone()
		for i := range asRaw.Rows {
			asRaw.Rows[i].RawCases = *asRaw.Rows[i].SmoothCases
		}
		twice, err := Smooth(asRaw, SmoothOptions{Window: 1})
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	})

	t.Run("cutoff applies after smoothing", func(t *testing.T) {
		s := rawSeries("NSW", march1, 30, 0, 0, 0, 0)
		got, err := Smooth(s, SmoothOptions{Window: 3, Cutoff: march1.AddDate(0, 0, 2)})
		require.NoError(t, err)
		require.Len(t, got.Rows, 3)
		assert.Equal(t, march1.AddDate(0, 0, 2), got.Rows[0].Date)
		assert.Equal(t, int64(10), *got.Rows[0].SmoothCases)
	})

	t.Run("cutoff in retain mode", func(t *testing.T) {
		got, err := Smooth(week, SmoothOptions{Window: 7, Mode: schema.RetainSmoothing, Cutoff: march1.AddDate(0, 0, 4)})
		require.NoError(t, err)
		require.Len(t, got.Rows, 3)
		assert.Nil(t, got.Rows[0].SmoothCases)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		before := week.Clone()
		_, err := Smooth(week, SmoothOptions{Window: 2, Mode: schema.RetainSmoothing})
		require.NoError(t, err)
		assert.Equal(t, before, week)
	})

	t.Run("invalid window", func(t *testing.T) {
		_, err := Smooth(week, SmoothOptions{Window: 0})
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, err := Smooth(week, SmoothOptions{Window: 7, Mode: "centered"})
		assert.Error(t, err)
	})
}
