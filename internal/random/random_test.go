package random

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestLetters(t *testing.T) {
	tests := []struct {
		name   string
		length uint
	}{
		{
			name:   "zero length",
			length: 0,
		},
		{
			name:   "32 length",
			length: 32,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Letters(tt.length)
			require.NoError(t, err)
			require.Len(t, got, int(tt.length))
			for _, r := range got {
				require.Contains(t, string(allowedLetters), string(r))
			}
		})
	}
}

func TestNewSeededRand_isDeterministic(t *testing.T) {
	a := NewSeededRand(1, 2)
	b := NewSeededRand(1, 2)
	for range 10 {
		require.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

func TestNewRand(t *testing.T) {
	r, err := NewRand()
	require.NoError(t, err)
	require.Less(t, r.IntN(10), 10)
}
