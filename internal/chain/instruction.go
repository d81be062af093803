package chain

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// decodeInstruction normalizes one compiled instruction against the resolved
// account key list. Anything that is not a well-formed SPL token transfer
// comes back as KindOther.
func decodeInstruction(keys []solana.PublicKey, in solana.CompiledInstruction) Instruction {
	other := Instruction{Kind: KindOther}

	if int(in.ProgramIDIndex) >= len(keys) {
		return other
	}
	if !keys[in.ProgramIDIndex].Equals(solana.TokenProgramID) {
		return other
	}

	metas := make(solana.AccountMetaSlice, 0, len(in.Accounts))
	for _, idx := range in.Accounts {
		if int(idx) >= len(keys) {
			return other
		}
		metas = append(metas, &solana.AccountMeta{PublicKey: keys[idx]})
	}

	decoded, err := token.DecodeInstruction(metas, in.Data)
	if err != nil {
		return other
	}

	switch impl := decoded.Impl.(type) {
	case *token.Transfer:
		if impl.Amount == nil || len(metas) < 2 {
			return other
		}
		return Instruction{
			Kind:        KindTransfer,
			Source:      impl.GetSourceAccount().PublicKey,
			Destination: impl.GetDestinationAccount().PublicKey,
			RawAmount:   *impl.Amount,
		}
	case *token.TransferChecked:
		if impl.Amount == nil || impl.Decimals == nil || len(metas) < 3 {
			return other
		}
		return Instruction{
			Kind:        KindTransferChecked,
			Source:      impl.GetSourceAccount().PublicKey,
			Destination: impl.GetDestinationAccount().PublicKey,
			Mint:        impl.GetMintAccount().PublicKey,
			RawAmount:   *impl.Amount,
			Decimals:    *impl.Decimals,
		}
	default:
		return other
	}
}

// flattenInstructions orders the full instruction sequence: each outer
// instruction, then the inner instructions its program calls produced.
func flattenInstructions(keys []solana.PublicKey, outer []solana.CompiledInstruction, inner []rpc.InnerInstruction) []Instruction {
	nested := make(map[uint16][]solana.CompiledInstruction, len(inner))
	for _, group := range inner {
		nested[group.Index] = group.Instructions
	}

	out := make([]Instruction, 0, len(outer))
	for i, in := range outer {
		out = append(out, decodeInstruction(keys, in))
		for _, n := range nested[uint16(i)] {
			out = append(out, decodeInstruction(keys, n))
		}
	}
	return out
}
