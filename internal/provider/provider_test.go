package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInt(t *testing.T) {
	tests := []struct {
		cell string
		want Value
		ok   bool
	}{
		{"42", Int(42), true},
		{" +7 ", Int(7), true},
		{"-3", Int(-3), true},
		{"18,064", Int(18064), true},
		{"", Absent(), true},
		{"—", Absent(), true},
		{"4.5", Absent(), false},
		{"DNP", Absent(), false},
	}
	for _, tt := range tests {
		got, ok := ExtractInt(tt.cell)
		assert.Equal(t, tt.ok, ok, tt.cell)
		assert.True(t, tt.want.Equal(got), "%q: got %v", tt.cell, got)
	}
}

func TestExtractFloat(t *testing.T) {
	tests := []struct {
		cell string
		want Value
		ok   bool
	}{
		{".456", Float(0.456), true},
		{"+3.2", Float(3.2), true},
		{"-0.5", Float(-0.5), true},
		{"1,234.5", Float(1234.5), true},
		{"–", Absent(), true},
		{"n/a", Absent(), false},
	}
	for _, tt := range tests {
		got, ok := ExtractFloat(tt.cell)
		assert.Equal(t, tt.ok, ok, tt.cell)
		assert.True(t, tt.want.Equal(got), "%q: got %v", tt.cell, got)
	}
}

func TestExtractString(t *testing.T) {
	assert.Equal(t, String("Nikola Jokić"), ExtractString("  Nikola Jokić "))
	assert.True(t, ExtractString("   ").IsAbsent())
}

func TestValueJSON(t *testing.T) {
	r := Record{
		"PLAYER": String("Jamal Murray"),
		"ID":     Identifier("murraja01"),
		"PTS":    Int(31),
		"FG_PCT": Float(0.5),
		"DATE":   Date(time.Date(2024, 3, 10, 19, 30, 0, 0, time.UTC)),
		"MP":     Absent(),
	}
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"PLAYER":"Jamal Murray","ID":"murraja01","PTS":31,"FG_PCT":0.5,"DATE":"2024-03-10","MP":null}`, string(b))
	assert.Equal(t, "<absent>", Absent().String())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Int(3).Equal(Int(3)))
	assert.False(t, Int(3).Equal(Float(3)))
	assert.False(t, String("x").Equal(Identifier("x")))
	assert.True(t, Date(time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC)).Equal(Date(time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC))))
}

func TestTableJSONKeepsColumnOrder(t *testing.T) {
	tbl := Table{Category: "roster", Columns: []string{"PLAYER", "POS", "AGE"}}
	tbl.Append(Record{"PLAYER": String("Aaron Gordon"), "AGE": Int(28)})

	b, err := json.Marshal(tbl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"roster","columns":["PLAYER","POS","AGE"],"rows":[["Aaron Gordon",null,28]]}`, string(b))
}

func TestTableHelpers(t *testing.T) {
	tbl := Table{Columns: []string{"TEAM", "W"}}
	tbl.Append(Record{"TEAM": String("BOS"), "W": Int(64)})
	tbl.Append(Record{"TEAM": String("NYK"), "W": Int(50), "EXTRA": Int(1)})

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 1, tbl.Find("TEAM", "NYK"))
	assert.Equal(t, -1, tbl.Find("TEAM", "LAL"))
	_, extra := tbl.Records[1]["EXTRA"]
	assert.False(t, extra)

	cp := tbl.Clone()
	cp.Records[0]["W"] = Int(0)
	cp.Append(Record{"TEAM": String("MIL")})
	assert.Equal(t, Int(64), tbl.Records[0]["W"])
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []Value{Int(64), Int(50)}, tbl.Column("W"))
}

func TestSeasons(t *testing.T) {
	assert.Equal(t, "2018-19", SeasonLabel(2019))
	assert.Equal(t, "1999-00", SeasonLabel(2000))
	assert.Equal(t, 2024, SeasonEndYear(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2025, SeasonEndYear(time.Date(2024, 10, 22, 0, 0, 0, 0, time.UTC)))
}

func TestFetchError(t *testing.T) {
	var err error = &FetchError{URL: "https://example.test/x.html", StatusCode: 404}
	assert.True(t, errors.Is(err, ErrFetch))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "fetch failed: https://example.test/x.html returned 404", err.Error())

	cause := fmt.Errorf("dial tcp: connection refused")
	err = fmt.Errorf("roster: %w", &FetchError{URL: "u", Err: cause})
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}
