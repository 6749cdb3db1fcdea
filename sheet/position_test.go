package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition_IsValid(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want bool
	}{
		{"origin", Position{Row: 0, Col: 0}, true},
		{"last valid", Position{Row: MaxRows - 1, Col: MaxCols - 1}, true},
		{"row too far", Position{Row: MaxRows, Col: 0}, false},
		{"col too far", Position{Row: 0, Col: MaxCols}, false},
		{"negative row", Position{Row: -1, Col: 0}, false},
		{"negative col", Position{Row: 0, Col: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pos.IsValid())
		})
	}
}

func TestPosition_Less(t *testing.T) {
	assert.True(t, (Position{Row: 0, Col: 5}).Less(Position{Row: 1, Col: 0}))
	assert.True(t, (Position{Row: 2, Col: 0}).Less(Position{Row: 2, Col: 1}))
	assert.False(t, (Position{Row: 2, Col: 1}).Less(Position{Row: 2, Col: 1}))
	assert.False(t, (Position{Row: 3, Col: 0}).Less(Position{Row: 2, Col: 9}))
}

func TestPosition_String(t *testing.T) {
	tests := []struct {
		pos  Position
		want string
	}{
		{Position{Row: 0, Col: 0}, "A1"},
		{Position{Row: 0, Col: 25}, "Z1"},
		{Position{Row: 0, Col: 26}, "AA1"},
		{Position{Row: 99, Col: 27}, "AB100"},
		{Position{Row: 0, Col: 701}, "ZZ1"},
		{Position{Row: 0, Col: 702}, "AAA1"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pos.String())
		})
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		want    Position
		wantErr bool
	}{
		{"simple", "A1", Position{Row: 0, Col: 0}, false},
		{"double letter column", "AA1", Position{Row: 0, Col: 26}, false},
		{"larger row", "B12", Position{Row: 11, Col: 1}, false},
		{"lowercase rejected", "a1", Position{}, true},
		{"missing row", "A", Position{}, true},
		{"missing column", "1", Position{}, true},
		{"row zero rejected", "A0", Position{}, true},
		{"out of range row", "A99999999", Position{}, true},
		{"trailing garbage", "A1x", Position{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePosition(tt.label)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPosition)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPosition_StringParsePosition_RoundTrip(t *testing.T) {
	positions := []Position{
		{Row: 0, Col: 0},
		{Row: 5, Col: 5},
		{Row: 100, Col: 26},
		{Row: MaxRows - 1, Col: MaxCols - 1},
	}
	for _, p := range positions {
		t.Run(p.String(), func(t *testing.T) {
			parsed, err := ParsePosition(p.String())
			assert.NoError(t, err)
			assert.Equal(t, p, parsed)
		})
	}
}
