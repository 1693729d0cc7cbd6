package core

import (
	"math"
	"testing"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProject tests exponential extrapolation from the anchor.
func TestProject(t *testing.T) {
	anchored := smoothedSeries("NSW", march1, 40, 45, 50)
	anchorDate := march1.AddDate(0, 0, 2)

	t.Run("fractional growth per day", func(t *testing.T) {
		pts, err := Project(anchored, 1.02, 10, 5)
		require.NoError(t, err)
		require.Len(t, pts, 10)
		assert.Equal(t, int64(50), pts[0].ProjectedCases)
		assert.Equal(t, int64(51), pts[4].ProjectedCases)
		assert.Equal(t, int64(52), pts[9].ProjectedCases)
		for k, p := range pts {
			assert.Equal(t, anchorDate.AddDate(0, 0, k+1), p.Date)
			assert.Equal(t, 1.02, p.GrowthRateUsed)
		}
	})

	t.Run("final ratio matches the rate", func(t *testing.T) {
		s := smoothedSeries("VIC", march1, 1000)
		pts, err := Project(s, 1.5, 10, 5)
		require.NoError(t, err)
		require.Len(t, pts, 10)
		assert.InEpsilon(t, math.Pow(1.5, 2), float64(pts[9].ProjectedCases)/1000, 0.001)
	})

	t.Run("anchors on latest smoothed row", func(t *testing.T) {
		s := smoothedSeries("NSW", march1, 40, 45, 50)
		s.Rows = append(s.Rows, schema.SeriesRow{Date: march1.AddDate(0, 0, 3), RawCases: 99})
		pts, err := Project(s, 1.0, 2, 5)
		require.NoError(t, err)
		assert.Equal(t, anchorDate.AddDate(0, 0, 1), pts[0].Date)
		assert.Equal(t, int64(50), pts[0].ProjectedCases)
	})

	t.Run("zero horizon is empty", func(t *testing.T) {
		pts, err := Project(anchored, 1.02, 0, 5)
		require.NoError(t, err)
		assert.Empty(t, pts)
	})

	t.Run("negative horizon", func(t *testing.T) {
		_, err := Project(anchored, 1.02, -1, 5)
		assert.ErrorIs(t, err, ErrInvalidHorizon)
	})

	t.Run("invalid rates", func(t *testing.T) {
		for _, rate := range []float64{0, -1.2, math.NaN(), math.Inf(1)} {
			_, err := Project(anchored, rate, 5, 5)
			assert.ErrorIs(t, err, ErrInvalidRate, "rate %v", rate)
		}
	})

	t.Run("invalid lag", func(t *testing.T) {
		_, err := Project(anchored, 1.02, 5, 0)
		assert.ErrorIs(t, err, ErrInvalidLag)
	})

	t.Run("empty series", func(t *testing.T) {
		_, err := Project(rawSeries("NSW", march1, 1, 2), 1.02, 5, 5)
		assert.ErrorIs(t, err, ErrEmptySeries)
	})

	t.Run("overflow is rejected", func(t *testing.T) {
		s := smoothedSeries("NSW", march1, 100, 100, 100, 100, 100, 100)
		pts, err := Project(s, 2, 365, 1)
		assert.ErrorIs(t, err, ErrProjectionOverflow)
		assert.Nil(t, pts)
	})

	t.Run("largest horizon below overflow", func(t *testing.T) {
		s := smoothedSeries("NSW", march1, 100)
		// 100 * 2^56 is about 7.2e18, below the int64 limit.
		pts, err := Project(s, 2, 56, 1)
		require.NoError(t, err)
		for _, p := range pts {
			assert.Positive(t, p.ProjectedCases, "projected cases on %s", p.Date)
		}
		_, err = Project(s, 2, 57, 1)
		assert.ErrorIs(t, err, ErrProjectionOverflow)
	})
}

// TestNewProjectionRequest tests request construction.
func TestNewProjectionRequest(t *testing.T) {
	req, err := NewProjectionRequest(smoothedSeries("NSW", march1, 40, 45, 50), 1.1, 7, 5)
	require.NoError(t, err)
	assert.Equal(t, schema.ProjectionRequest{
		GrowthRate:  1.1,
		HorizonDays: 7,
		LagDays:     5,
		AnchorDate:  march1.AddDate(0, 0, 2),
		AnchorValue: 50,
	}, req)
}
