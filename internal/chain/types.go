package chain

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrTxNotFound      = errors.New("transaction not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrUnavailable     = errors.New("ledger node unavailable")
)

// TransferKind tags a decoded instruction.
type TransferKind int

const (
	// KindOther is any instruction that is not an SPL token transfer.
	KindOther TransferKind = iota
	// KindTransfer is a plain token transfer. It carries only an amount;
	// the destination's mint and owner must be resolved from account state.
	KindTransfer
	// KindTransferChecked names the mint and decimals on the instruction
	// itself, so only the destination's owner needs resolving.
	KindTransferChecked
)

// Instruction is the normalized shape the verifier scans.
// This is our domain model, independent of the RPC response format.
type Instruction struct {
	Kind        TransferKind
	Source      solana.PublicKey
	Destination solana.PublicKey
	// Mint is set only for KindTransferChecked.
	Mint solana.PublicKey
	// RawAmount is in the token's base units.
	RawAmount uint64
	// Decimals is set only for KindTransferChecked.
	Decimals uint8
}

// Transaction is a settled transaction with its instruction sequence
// flattened in execution order: each outer instruction followed by the inner
// instructions its program calls produced, in the order reported.
type Transaction struct {
	Signature string
	Slot      uint64
	// FeePayer is the transaction's first signer.
	FeePayer solana.PublicKey
	// Failed reports an on-chain execution error.
	Failed       bool
	Instructions []Instruction
}

// TokenAccount is the decoded state of an SPL token account.
type TokenAccount struct {
	Address solana.PublicKey
	Mint    solana.PublicKey
	Owner   solana.PublicKey
	Amount  uint64
}
