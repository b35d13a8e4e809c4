package utils

import "strings"

// NormalizeAddress converts a chain-prefixed or bare deposit address into
// its transaction form: everything after the first colon, 0x-prefixed.
//
//	NormalizeAddress("bchtest:abc123") == "0xabc123"
//	NormalizeAddress("abc123")         == "0xabc123"
//	NormalizeAddress("0xabc123")       == "0xabc123"
//
// The function is idempotent, so addresses arriving again over the push
// channel can be normalized a second time without changing.
// The 0x prefix is applied regardless of chain; that mirrors the upstream
// checkout, which only deals with account-model chains.
func NormalizeAddress(raw string) string {
	addr := raw
	if i := strings.Index(addr, ":"); i >= 0 {
		addr = addr[i+1:]
	}
	if !strings.HasPrefix(addr, "0x") {
		addr = "0x" + addr
	}
	return addr
}
