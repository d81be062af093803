package models

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/pythocooks/onlyagents-backend/internal/chain"
)

// ChainService fetches settled state from a ledger node. Pure I/O boundary.
type ChainService interface {
	// FetchTransaction returns the normalized transaction for a signature.
	// chain.ErrTxNotFound when the signature is unknown, chain.ErrUnavailable
	// on transport trouble.
	FetchTransaction(ctx context.Context, signature string) (*chain.Transaction, error)

	// FetchTokenAccount returns the token account state at an address.
	FetchTokenAccount(ctx context.Context, address solana.PublicKey) (*chain.TokenAccount, error)
}
