package core

import (
	"testing"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests filtering, ordering and missing-value handling.
func TestLoad(t *testing.T) {
	recs := []schema.RawRecord{
		{Location: "NSW", Date: march1.AddDate(0, 0, 2), Confirmed: schema.Int64Ptr(30)},
		{Location: "VIC", Date: march1, Confirmed: schema.Int64Ptr(999)},
		{Location: "nsw", Date: march1, Confirmed: schema.Int64Ptr(10)},
		{Location: "NSW", Date: march1.AddDate(0, 0, 1), Confirmed: nil},
	}

	t.Run("filters and sorts", func(t *testing.T) {
		s, err := Load(recs, " nsw")
		require.NoError(t, err)
		assert.Equal(t, "NSW", s.Location)
		require.Len(t, s.Rows, 3)
		for i := 1; i < len(s.Rows); i++ {
			assert.True(t, s.Rows[i].Date.After(s.Rows[i-1].Date))
		}
		assert.Equal(t, []int64{10, 0, 30}, []int64{s.Rows[0].RawCases, s.Rows[1].RawCases, s.Rows[2].RawCases})
	})

	t.Run("leaves smoothing and reff unset", func(t *testing.T) {
		s, err := Load(recs, "NSW")
		require.NoError(t, err)
		for _, r := range s.Rows {
			assert.Nil(t, r.SmoothCases)
			assert.Nil(t, r.Reff)
		}
	})

	t.Run("unknown location", func(t *testing.T) {
		_, err := Load(recs, "QLD")
		assert.ErrorIs(t, err, ErrUnknownLocation)
	})

	t.Run("duplicate date", func(t *testing.T) {
		dup := append([]schema.RawRecord{}, recs...)
		dup = append(dup, schema.RawRecord{Location: "NSW", Date: march1, Confirmed: schema.Int64Ptr(11)})
		_, err := Load(dup, "NSW")
		assert.ErrorIs(t, err, ErrDuplicateDate)
	})
}

// TestLocations tests the per-location summary.
func TestLocations(t *testing.T) {
	recs := append(records("VIC", march1, 1, 2, 3), records("NSW", march1.AddDate(0, 0, 1), 4, 5)...)
	recs = append(recs, schema.RawRecord{Location: "", Date: march1})

	got := Locations(recs)
	require.Len(t, got, 2)
	assert.Equal(t, "NSW", got[0].Location)
	assert.Equal(t, 2, got[0].Rows)
	assert.Equal(t, march1.AddDate(0, 0, 1), got[0].FirstDate)
	assert.Equal(t, march1.AddDate(0, 0, 2), got[0].LastDate)
	assert.Equal(t, "VIC", got[1].Location)
	assert.Equal(t, 3, got[1].Rows)
	assert.Empty(t, Locations(nil))
}
