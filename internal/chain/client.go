package chain

import (
	"context"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/pythocooks/onlyagents-backend/pkg/logger"
)

// Client talks to a Solana RPC node. No retries here: retry policy belongs
// to callers, which is why not-found and transient failures are kept apart.
type Client struct {
	logger     *logger.Logger
	rpc        *rpc.Client
	commitment rpc.CommitmentType
}

// NewClient creates a Client against the given RPC endpoint.
func NewClient(rpcURL string, commitment string, logger *logger.Logger) *Client {
	return &Client{
		logger:     logger,
		rpc:        rpc.New(rpcURL),
		commitment: rpc.CommitmentType(commitment),
	}
}

// FetchTransaction fetches a settled transaction by signature and normalizes
// it into the domain shape.
func (c *Client) FetchTransaction(ctx context.Context, signature string) (*Transaction, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		// A signature that does not parse cannot exist on chain.
		return nil, fmt.Errorf("%w: %s", ErrTxNotFound, err)
	}

	maxVersion := uint64(0)
	res, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     c.commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, ErrTxNotFound
		}
		return nil, fmt.Errorf("%w: get transaction: %s", ErrUnavailable, err)
	}
	if res == nil || res.Transaction == nil {
		return nil, ErrTxNotFound
	}

	tx, err := res.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("%w: decode transaction: %s", ErrUnavailable, err)
	}

	msg := &tx.Message
	keys := make([]solana.PublicKey, 0, len(msg.AccountKeys))
	keys = append(keys, msg.AccountKeys...)

	var inner []rpc.InnerInstruction
	failed := false
	if res.Meta != nil {
		// Lookup-table addresses extend the static key list, writable first.
		keys = append(keys, res.Meta.LoadedAddresses.Writable...)
		keys = append(keys, res.Meta.LoadedAddresses.ReadOnly...)
		inner = res.Meta.InnerInstructions
		failed = res.Meta.Err != nil
	}

	out := &Transaction{
		Signature:    signature,
		Slot:         res.Slot,
		Failed:       failed,
		Instructions: flattenInstructions(keys, msg.Instructions, inner),
	}
	if len(msg.AccountKeys) > 0 {
		out.FeePayer = msg.AccountKeys[0]
	}

	c.logger.Debug("Fetched transaction ", "signature ", signature, " slot ", out.Slot, " failed ", out.Failed)
	return out, nil
}

// FetchTokenAccount fetches and decodes SPL token account state.
func (c *Client) FetchTokenAccount(ctx context.Context, address solana.PublicKey) (*TokenAccount, error) {
	res, err := c.rpc.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: c.commitment,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: get account info: %s", ErrUnavailable, err)
	}
	if res == nil || res.Value == nil {
		return nil, ErrAccountNotFound
	}

	var acct token.Account
	if err := bin.NewBinDecoder(res.Value.Data.GetBinary()).Decode(&acct); err != nil {
		return nil, fmt.Errorf("decode token account %s: %w", address, err)
	}

	return &TokenAccount{
		Address: address,
		Mint:    acct.Mint,
		Owner:   acct.Owner,
		Amount:  acct.Amount,
	}, nil
}
