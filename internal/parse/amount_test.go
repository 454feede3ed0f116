package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalizeAmount is scenario S7 from spec.md §8.
func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{name: "plain number", raw: "500", want: 500},
		{name: "rs prefix", raw: "Rs.500", want: 500},
		{name: "rs with space", raw: "Rs. 1500.50", want: 1500.50},
		{name: "inr prefix", raw: "INR 2000", want: 2000},
		{name: "rupee symbol", raw: "₹99.99", want: 99.99},
		{name: "indian grouping", raw: "Rs.1,50,000.00", want: 150000},
		{name: "negative becomes absolute", raw: "-500", want: 500},
		{name: "empty rejected", raw: "", wantErr: true},
		{name: "zero rejected", raw: "0", wantErr: true},
		{name: "non numeric rejected", raw: "Rs.abc", wantErr: true},
		{name: "whitespace only rejected", raw: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAmount(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}
