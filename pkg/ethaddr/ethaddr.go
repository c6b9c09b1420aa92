package ethaddr

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Normalize canonicalizes a wallet address to its EIP-55 checksummed form.
// Two textual variants of the same address compare equal after Normalize.
// Anything that is not a 0x-prefixed 40-hex-digit string is rejected.
func Normalize(addr string) (string, error) {
	if !common.IsHexAddress(addr) {
		return "", fmt.Errorf("not a valid address: %q", addr)
	}
	return common.HexToAddress(addr).Hex(), nil
}

// IsValid reports whether addr is a syntactically plausible wallet address.
func IsValid(addr string) bool {
	return common.IsHexAddress(addr)
}

// MustNormalize is Normalize for inputs already known to be valid, such as
// constants in tests. It panics on invalid input.
func MustNormalize(addr string) string {
	s, err := Normalize(addr)
	if err != nil {
		panic(err)
	}
	return s
}
