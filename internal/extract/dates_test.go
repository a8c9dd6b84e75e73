package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2024-03-15", "2024-03-15"},
		{"2024/03/15", "2024-03-15"},
		{"20-03-2024", "2024-03-20"},
		{"20/03/2024", "2024-03-20"},
		{"20.03.2024", "2024-03-20"},
		{"20-03-24", "2024-03-20"},
		{"5 March 2024", "2024-03-05"},
		{"5 Mar 2024", "2024-03-05"},
		{"March 5, 2024", "2024-03-05"},
		{"Mar 5, 2024", "2024-03-05"},
		{"March 5 2024", "2024-03-05"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NormalizeDate(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDateIdempotent(t *testing.T) {
	first, err := NormalizeDate("20/03/2024")
	require.NoError(t, err)

	second, err := NormalizeDate(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizeDateErrors(t *testing.T) {
	for _, raw := range []string{"", "not a date", "9999-99-99", "32/13/2024"} {
		_, err := NormalizeDate(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}
