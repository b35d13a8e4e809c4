package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"chain prefixed", "bchtest:abc123", "0xabc123"},
		{"bare", "abc123", "0xabc123"},
		{"already normalized", "0xabc123", "0xabc123"},
		{"prefixed and normalized", "eth:0xabc123", "0xabc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizeAddress(tt.raw))
		})
	}
}

func TestNormalizeAddressIdempotent(t *testing.T) {
	for _, raw := range []string{"bchtest:abc123", "abc123", "0xabc123"} {
		once := NormalizeAddress(raw)
		require.Equal(t, once, NormalizeAddress(once))
	}
}
