package validation

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ValidateAddress validates a base-58 wallet or token-account address.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}

	if _, err := solana.PublicKeyFromBase58(addr); err != nil {
		return fmt.Errorf("invalid base58 address: %w", err)
	}

	return nil
}

// ValidateSignature validates a base-58 transaction signature.
func ValidateSignature(sig string) error {
	if sig == "" {
		return fmt.Errorf("signature cannot be empty")
	}

	if _, err := solana.SignatureFromBase58(sig); err != nil {
		return fmt.Errorf("invalid base58 signature: %w", err)
	}

	return nil
}

// MustPublicKey parses a previously validated address. Panics on bad input,
// so it is only used after ValidateAddress.
func MustPublicKey(addr string) solana.PublicKey {
	return solana.MustPublicKeyFromBase58(addr)
}
