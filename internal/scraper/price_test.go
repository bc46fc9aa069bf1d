package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "indian digit grouping", input: "1,23,456", want: 123456},
		{name: "rupee glyph", input: "₹999", want: 999},
		{name: "rupee with grouping", input: "₹1,999", want: 1999},
		{name: "decimal", input: "1,234.50", want: 1234.5},
		{name: "surrounding whitespace", input: "  749  ", want: 749},
		{name: "rs prefix", input: "Rs. 2,499", want: 2499},
		{name: "dollar", input: "$19.99", want: 19.99},
		{name: "not available", input: "N/A", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "words only", input: "Currently unavailable", wantErr: true},
		{name: "trailing residue", input: "999 onwards", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedPrice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
