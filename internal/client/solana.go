package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/common"
	"github.com/AlexZinkM/friend-vault/internal/model"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/memo"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Solana keys are the full 64-byte ed25519 private key.
const privateKeyLength = 64

// SolanaLedger moves and reads funds of custodial vault accounts over Solana RPC.
// Balance reads go through a circuit breaker; transfers never do, so a tripped
// breaker cannot turn an in-flight payment into an ambiguous failure.
type SolanaLedger struct {
	rpcClient *rpc.Client
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewSolanaLedger creates a ledger client for rpcURL.
func NewSolanaLedger(rpcURL string, logger *zap.Logger) *SolanaLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := gobreaker.Settings{
		Name:        "solana-rpc",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &SolanaLedger{
		rpcClient: rpc.New(rpcURL),
		breaker:   gobreaker.NewCircuitBreaker(settings),
		logger:    logger,
	}
}

// NewAccount generates a fresh keypair. The caller owns (and must zero) the private key.
func (c *SolanaLedger) NewAccount() (string, []byte, error) {
	wallet := solana.NewWallet()
	// PublicKey is derived from the private key, so read it before clearing.
	address := wallet.PublicKey().String()
	key := make([]byte, len(wallet.PrivateKey))
	copy(key, wallet.PrivateKey)
	clear(wallet.PrivateKey)
	return address, key, nil
}

// ValidateAddress checks that address is a well-formed base58 public key.
func (c *SolanaLedger) ValidateAddress(address string) error {
	if _, err := solana.PublicKeyFromBase58(strings.TrimSpace(address)); err != nil {
		return fmt.Errorf("invalid Solana address: %w", err)
	}
	return nil
}

// Balance returns the live balance of address for assetRef: SOL for the native
// asset, otherwise the SPL token whose mint is assetRef. A missing token
// account is a zero balance.
func (c *SolanaLedger) Balance(ctx context.Context, address, assetRef string) (decimal.Decimal, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid Solana address: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		if model.IsNativeAsset(assetRef) {
			return c.nativeBalance(ctx, owner)
		}
		return c.tokenBalance(ctx, owner, assetRef)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return decimal.Zero, fmt.Errorf("solana rpc is currently unavailable: %w", err)
		}
		return decimal.Zero, err
	}
	return result.(decimal.Decimal), nil
}

func (c *SolanaLedger) nativeBalance(ctx context.Context, owner solana.PublicKey) (decimal.Decimal, error) {
	balance, err := c.rpcClient.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get SOL balance: %w", err)
	}
	return common.LamportsToSOL(balance.Value), nil
}

func (c *SolanaLedger) tokenBalance(ctx context.Context, owner solana.PublicKey, mintAddress string) (decimal.Decimal, error) {
	mint, err := solana.PublicKeyFromBase58(strings.TrimSpace(mintAddress))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid token mint: %w", err)
	}
	ataAddress, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to find associated token account address: %w", err)
	}

	balance, err := c.rpcClient.GetTokenAccountBalance(ctx, ataAddress, rpc.CommitmentConfirmed)
	if err != nil {
		if isATANotFoundError(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get token account balance: %w", err)
	}
	if balance.Value == nil {
		return decimal.Zero, nil
	}

	amount, err := strconv.ParseUint(balance.Value.Amount, 10, 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse token balance amount: %w", err)
	}
	return common.FromBaseUnits(amount, int32(balance.Value.Decimals)), nil
}

// Transfer signs and submits order, returning the transaction signature.
// The memo is attached as a Memo program instruction.
func (c *SolanaLedger) Transfer(ctx context.Context, order model.TransferOrder) (string, error) {
	from, err := solana.PublicKeyFromBase58(order.From)
	if err != nil {
		return "", fmt.Errorf("invalid from address: %w", err)
	}
	to, err := solana.PublicKeyFromBase58(order.To)
	if err != nil {
		return "", fmt.Errorf("invalid to address: %w", err)
	}
	if len(order.PrivateKey) != privateKeyLength {
		return "", fmt.Errorf("invalid private key length: expected %d bytes", privateKeyLength)
	}
	wallet := solana.PrivateKey(order.PrivateKey)
	if !wallet.PublicKey().Equals(from) {
		return "", fmt.Errorf("private key does not match vault address")
	}

	var instructions []solana.Instruction
	if model.IsNativeAsset(order.AssetRef) {
		lamports, err := common.SOLToLamports(order.Amount)
		if err != nil {
			return "", err
		}
		instructions = append(instructions, system.NewTransferInstruction(lamports, from, to).Build())
	} else {
		tokenInstructions, err := c.tokenTransferInstructions(ctx, from, to, order)
		if err != nil {
			return "", err
		}
		instructions = append(instructions, tokenInstructions...)
	}
	if order.Memo != "" {
		instructions = append(instructions, memo.NewMemoInstruction([]byte(order.Memo), from).Build())
	}

	recent, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, recent.Value.Blockhash, solana.TransactionPayer(from))
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if wallet.PublicKey().Equals(key) {
			return &wallet
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.rpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	c.logger.Info("transfer submitted",
		zap.String("from", order.From),
		zap.String("to", order.To),
		zap.String("asset", model.NormalizeAssetRef(order.AssetRef)),
		zap.String("amount", order.Amount),
		zap.String("signature", sig.String()))
	return sig.String(), nil
}

// ObserveTransfer fetches a confirmed transaction and derives the net amount of
// assetRef it credited to recipient from the pre and post balances.
func (c *SolanaLedger) ObserveTransfer(ctx context.Context, txHash, recipient, assetRef string) (model.ObservedTransfer, error) {
	sig, err := solana.SignatureFromBase58(strings.TrimSpace(txHash))
	if err != nil {
		return model.ObservedTransfer{}, fmt.Errorf("invalid transaction signature: %w", err)
	}
	owner, err := solana.PublicKeyFromBase58(strings.TrimSpace(recipient))
	if err != nil {
		return model.ObservedTransfer{}, fmt.Errorf("invalid Solana address: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		maxVersion := uint64(0)
		tx, err := c.rpcClient.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
			Encoding:                       solana.EncodingBase64,
			Commitment:                     rpc.CommitmentConfirmed,
			MaxSupportedTransactionVersion: &maxVersion,
		})
		// an unknown signature is an answer, not an RPC failure
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get transaction: %w", err)
		}
		return tx, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return model.ObservedTransfer{}, fmt.Errorf("solana rpc is currently unavailable: %w", err)
		}
		return model.ObservedTransfer{}, err
	}
	tx, _ := result.(*rpc.GetTransactionResult)
	if tx == nil {
		return model.ObservedTransfer{}, model.ErrTransferNotFound
	}
	return parseObservedTransfer(tx, sig, owner, assetRef)
}

// parseObservedTransfer computes per-account deltas of one asset. SOL deltas
// include the fee, so the fee payer shows up as the largest debit.
func parseObservedTransfer(tx *rpc.GetTransactionResult, sig solana.Signature, owner solana.PublicKey, assetRef string) (model.ObservedTransfer, error) {
	out := model.ObservedTransfer{
		TransactionHash: sig.String(),
		Recipient:       owner.String(),
		AssetRef:        model.NormalizeAssetRef(assetRef),
		Amount:          "0",
	}
	if tx.Meta == nil {
		return model.ObservedTransfer{}, fmt.Errorf("transaction %s has no status metadata", sig)
	}
	out.Succeeded = tx.Meta.Err == nil
	if tx.BlockTime != nil {
		out.BlockTime = tx.BlockTime.Time().UTC()
	}

	deltas := make(map[string]int64)
	var decimals int32
	if model.IsNativeAsset(assetRef) {
		if tx.Transaction == nil {
			return model.ObservedTransfer{}, fmt.Errorf("transaction %s has no body", sig)
		}
		decoded, err := tx.Transaction.GetTransaction()
		if err != nil {
			return model.ObservedTransfer{}, fmt.Errorf("failed to decode transaction: %w", err)
		}
		keys := append(solana.PublicKeySlice{}, decoded.Message.AccountKeys...)
		keys = append(keys, tx.Meta.LoadedAddresses.Writable...)
		keys = append(keys, tx.Meta.LoadedAddresses.ReadOnly...)
		for i, key := range keys {
			if i >= len(tx.Meta.PreBalances) || i >= len(tx.Meta.PostBalances) {
				break
			}
			deltas[key.String()] += int64(tx.Meta.PostBalances[i]) - int64(tx.Meta.PreBalances[i])
		}
		decimals = common.SOLDecimals
	} else {
		mint, err := solana.PublicKeyFromBase58(strings.TrimSpace(assetRef))
		if err != nil {
			return model.ObservedTransfer{}, fmt.Errorf("invalid token mint: %w", err)
		}
		collect := func(balances []rpc.TokenBalance, sign int64) {
			for _, b := range balances {
				if !b.Mint.Equals(mint) || b.Owner == nil || b.UiTokenAmount == nil {
					continue
				}
				amt, _ := strconv.ParseUint(b.UiTokenAmount.Amount, 10, 64)
				deltas[b.Owner.String()] += sign * int64(amt)
				decimals = int32(b.UiTokenAmount.Decimals)
			}
		}
		collect(tx.Meta.PreTokenBalances, -1)
		collect(tx.Meta.PostTokenBalances, 1)
	}

	if credit := deltas[out.Recipient]; credit > 0 {
		out.Amount = common.FormatAmount(common.FromBaseUnits(uint64(credit), decimals))
	}
	var largest int64
	for account, delta := range deltas {
		if account != out.Recipient && delta < largest {
			largest = delta
			out.Sender = account
		}
	}
	return out, nil
}

// tokenTransferInstructions builds a TransferChecked between associated token
// accounts, creating the recipient's account first when it does not exist.
func (c *SolanaLedger) tokenTransferInstructions(ctx context.Context, from, to solana.PublicKey, order model.TransferOrder) ([]solana.Instruction, error) {
	mint, err := solana.PublicKeyFromBase58(strings.TrimSpace(order.AssetRef))
	if err != nil {
		return nil, fmt.Errorf("invalid token mint: %w", err)
	}

	sourceTokenAccount, _, err := solana.FindAssociatedTokenAddress(from, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to find source token account address: %w", err)
	}
	source, err := c.rpcClient.GetTokenAccountBalance(ctx, sourceTokenAccount, rpc.CommitmentConfirmed)
	if err != nil {
		if isATANotFoundError(err) {
			return nil, c.ataNotFoundError(ctx, from, mint)
		}
		return nil, fmt.Errorf("failed to check source token account: %w", err)
	}
	if source.Value == nil {
		return nil, c.ataNotFoundError(ctx, from, mint)
	}
	decimals := source.Value.Decimals

	amount, err := common.ToBaseUnits(order.Amount, int32(decimals))
	if err != nil {
		return nil, err
	}

	destTokenAccount, _, err := solana.FindAssociatedTokenAddress(to, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to find destination token account: %w", err)
	}
	destAccountInfo, err := c.rpcClient.GetAccountInfo(ctx, destTokenAccount)
	if err != nil && !isATANotFoundError(err) {
		return nil, fmt.Errorf("failed to get destination account info: %w", err)
	}

	var instructions []solana.Instruction
	if err != nil || destAccountInfo == nil || destAccountInfo.Value == nil {
		instructions = append(instructions,
			associatedtokenaccount.NewCreateInstruction(from, to, mint).Build())
	}
	instructions = append(instructions, token.NewTransferCheckedInstruction(
		amount,
		decimals,
		sourceTokenAccount,
		mint,
		destTokenAccount,
		from,
		[]solana.PublicKey{},
	).Build())
	return instructions, nil
}

// getTokenAccountRentExempt gets the minimum balance required for rent exemption of a token account
func (c *SolanaLedger) getTokenAccountRentExempt(ctx context.Context) (decimal.Decimal, error) {
	// Token account size is 165 bytes
	const tokenAccountSize = 165

	rentExempt, err := c.rpcClient.GetMinimumBalanceForRentExemption(ctx, tokenAccountSize, rpc.CommitmentFinalized)
	if err != nil {
		return decimal.Zero, err
	}
	return common.LamportsToSOL(rentExempt), nil
}

func (c *SolanaLedger) ataNotFoundError(ctx context.Context, owner, mint solana.PublicKey) error {
	rentExempt, err := c.getTokenAccountRentExempt(ctx)
	if err != nil {
		return fmt.Errorf("token account for mint %s not found for address %s", mint, owner)
	}
	return fmt.Errorf("token account for mint %s not found for address %s. Deposit any amount of the token to create it (requires rent exempt: %s SOL from the sender)",
		mint, owner, common.FormatAmount(rentExempt))
}

// isATANotFoundError checks if error indicates that token account doesn't exist
func isATANotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, rpc.ErrNotFound) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "could not find account") ||
		strings.Contains(errStr, "not found")
}
