package source

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("columns by name", func(t *testing.T) {
		in := "confirmed,state,state_abbrev,date,tests\n" +
			"12,New South Wales,nsw,2022-03-12,100\n" +
			"NA,Victoria,VIC,2022-03-12,5\n" +
			",Victoria,VIC,2022-03-13,5\n" +
			"12.0,Victoria,VIC,2022-03-14,5\n"
		recs, err := Decode(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, recs, 4)

		assert.Equal(t, "NSW", recs[0].Location)
		assert.Equal(t, time.Date(2022, 3, 12, 0, 0, 0, 0, time.UTC), recs[0].Date)
		require.NotNil(t, recs[0].Confirmed)
		assert.Equal(t, int64(12), *recs[0].Confirmed)
		assert.Nil(t, recs[1].Confirmed)
		assert.Nil(t, recs[2].Confirmed)
		assert.Equal(t, int64(12), *recs[3].Confirmed)
	})

	t.Run("byte order mark and case", func(t *testing.T) {
		in := "\ufeffDate,State_Abbrev,Confirmed\n2022-01-01,QLD,3\n"
		recs, err := Decode(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "QLD", recs[0].Location)
	})

	t.Run("header only", func(t *testing.T) {
		recs, err := Decode(strings.NewReader("date,state_abbrev,confirmed\n"))
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	errCases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"missing column", "date,state_abbrev\n2022-01-01,NSW\n"},
		{"negative", "date,state_abbrev,confirmed\n2022-01-01,NSW,-4\n"},
		{"fraction", "date,state_abbrev,confirmed\n2022-01-01,NSW,4.5\n"},
		{"text", "date,state_abbrev,confirmed\n2022-01-01,NSW,many\n"},
		{"bad date", "date,state_abbrev,confirmed\n01/01/2022,NSW,4\n"},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}

	t.Run("missing column sentinel", func(t *testing.T) {
		_, err := Decode(strings.NewReader("date,confirmed\n"))
		assert.ErrorIs(t, err, ErrMissingColumn)
	})
}

func FuzzDecode(f *testing.F) {
	f.Add("date,state_abbrev,confirmed\n2022-01-01,NSW,4\n")
	f.Add("date,state_abbrev,confirmed\n2022-01-01,NSW,NA\n")
	f.Add("confirmed,date\n1,2\n")
	f.Add("")

	f.Fuzz(func(t *testing.T, in string) {
		recs, err := Decode(strings.NewReader(in))
		if err != nil {
			return
		}
		for _, r := range recs {
			if r.Confirmed != nil && *r.Confirmed < 0 {
				t.Fatalf("negative count decoded from %q", in)
			}
		}
	})
}
