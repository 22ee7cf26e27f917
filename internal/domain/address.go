package domain

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// PUBLIC_KEY_LENGTH is the byte length of a decoded Solana public key
const PUBLIC_KEY_LENGTH = 32

// ValidateAddress checks that addr is a base58 encoded 32 byte public key
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidAddress, addr, err)
	}
	if len(decoded) != PUBLIC_KEY_LENGTH {
		return fmt.Errorf("%w: %s decodes to %d bytes", ErrInvalidAddress, addr, len(decoded))
	}
	return nil
}

// IsValidAddress reports whether addr is a valid public key
func IsValidAddress(addr string) bool {
	return ValidateAddress(addr) == nil
}

// ShortenAddress renders an address as "abcd...wxyz"
func ShortenAddress(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}
