package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		amount  string
		want    uint64
		wantErr bool
	}{
		{"1", 100000000, false},
		{"0.00003", 3000, false},
		{"127.5", 12750000000, false},
		{"0", 0, false},
		{"0.000000010", 1, false},
		{"0.000000001", 0, true},
		{"-1", 0, true},
		{"1.2.3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got, err := ToBaseUnits(tt.amount, 8)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFromBaseUnits(t *testing.T) {
	tests := []struct {
		amount uint64
		want   string
	}{
		{12700000000, "127"},
		{3000, "0.00003"},
		{0, "0"},
		{12750000001, "127.50000001"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, FromBaseUnits(tt.amount, 8))
		})
	}
}
