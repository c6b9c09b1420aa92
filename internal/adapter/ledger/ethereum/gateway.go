package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"credloom-coordinator/config"
	"credloom-coordinator/internal/core/ports"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// chainReader is the subset of ethclient.Client the gateway uses, split out
// so tests can substitute a fake node.
type chainReader interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingCallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Gateway implements ports.LedgerGateway against an Ethereum JSON-RPC node.
// All writes use one process-wide signing identity; nonce acquisition is the
// critical section and is serialized by nonceMu. Unserialized concurrent
// submissions would race to read the same counter and fail with a nonce
// conflict.
type Gateway struct {
	client     chainReader
	chainID    *big.Int
	signerKey  *ecdsa.PrivateKey
	signerAddr common.Address

	poolAddr     common.Address
	escrowAddr   common.Address
	registryAddr common.Address

	poolABI     abi.ABI
	escrowABI   abi.ABI
	registryABI abi.ABI

	acceptGas  uint64
	defaultGas uint64

	nonceMu   sync.Mutex
	nextNonce uint64
	nonceInit bool

	log zerolog.Logger
}

// NewGateway loads the process signing identity over an established client.
// The private key never leaves the process.
func NewGateway(client *ethclient.Client, cfg config.LedgerConfig, log zerolog.Logger) (*Gateway, error) {
	g, err := newGateway(client, cfg, log)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("signer", g.signerAddr.Hex()).
		Msg("Ledger gateway initialized")

	return g, nil
}

func newGateway(client chainReader, cfg config.LedgerConfig, log zerolog.Logger) (*Gateway, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.SignerKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parsing signer key: %w", err)
	}

	poolABI, err := abi.JSON(strings.NewReader(liquidityPoolABI))
	if err != nil {
		return nil, fmt.Errorf("parsing liquidity pool abi: %w", err)
	}
	escrowABI, err := abi.JSON(strings.NewReader(loanEscrowABI))
	if err != nil {
		return nil, fmt.Errorf("parsing loan escrow abi: %w", err)
	}
	registryABI, err := abi.JSON(strings.NewReader(reputationRegistryABI))
	if err != nil {
		return nil, fmt.Errorf("parsing reputation registry abi: %w", err)
	}

	return &Gateway{
		client:       client,
		chainID:      big.NewInt(cfg.ChainID),
		signerKey:    key,
		signerAddr:   crypto.PubkeyToAddress(key.PublicKey),
		poolAddr:     common.HexToAddress(cfg.LiquidityPool),
		escrowAddr:   common.HexToAddress(cfg.LoanEscrow),
		registryAddr: common.HexToAddress(cfg.ReputationRegistry),
		poolABI:      poolABI,
		escrowABI:    escrowABI,
		registryABI:  registryABI,
		acceptGas:    cfg.AcceptGasLimit,
		defaultGas:   cfg.DefaultGasLimit,
		log:          log,
	}, nil
}

// ReadOfferPrincipal returns the live minor-unit principal of an offer.
func (g *Gateway) ReadOfferPrincipal(ctx context.Context, offerID int64) (*big.Int, error) {
	data, err := g.poolABI.Pack("offerPrincipal", big.NewInt(offerID))
	if err != nil {
		return nil, fmt.Errorf("pack offerPrincipal: %w", err)
	}

	out, err := g.client.CallContract(ctx, ethereum.CallMsg{To: &g.poolAddr, Data: data}, nil)
	if err != nil {
		if isRevert(err) {
			return nil, fmt.Errorf("offer %d: %w", offerID, ports.ErrOfferNotOnLedger)
		}
		return nil, fmt.Errorf("offerPrincipal call: %w: %v", ports.ErrChainUnavailable, err)
	}

	vals, err := g.poolABI.Unpack("offerPrincipal", out)
	if err != nil || len(vals) != 1 {
		return nil, fmt.Errorf("unpack offerPrincipal: %w", err)
	}
	principal, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("offerPrincipal: unexpected return type %T", vals[0])
	}
	return principal, nil
}

// SubmitOffer registers a lender offer on the ledger and returns the pooled
// transaction hash plus the ledger-assigned offer id.
func (g *Gateway) SubmitOffer(ctx context.Context, sub ports.OfferSubmission) (*ports.OfferResult, error) {
	data, err := g.poolABI.Pack("createOffer",
		common.HexToAddress(sub.Lender), sub.AmountWei,
		big.NewInt(int64(sub.DurationDays)), big.NewInt(int64(sub.MinScore)),
	)
	if err != nil {
		return nil, fmt.Errorf("pack createOffer: %w", err)
	}

	assigned, txHash, err := g.submit(ctx, g.poolAddr, g.poolABI, "createOffer", data, g.acceptGas)
	if err != nil {
		return nil, err
	}

	g.log.Info().
		Str("tx_hash", txHash).
		Int64("offer_id", assigned.Int64()).
		Str("lender", sub.Lender).
		Msg("offer registration broadcast")

	return &ports.OfferResult{TxHash: txHash, OfferID: assigned.Int64()}, nil
}

// SubmitAcceptance invokes the ledger's offer-acceptance entry point. It
// simulates the call first to learn the ledger-assigned loan id, then signs
// and broadcasts, returning once the transaction is accepted into the pool.
func (g *Gateway) SubmitAcceptance(ctx context.Context, sub ports.AcceptanceSubmission) (*ports.AcceptanceResult, error) {
	insurer := common.Address{}
	if sub.Insured {
		insurer = common.HexToAddress(sub.Insurer)
	}

	data, err := g.poolABI.Pack("acceptOffer",
		big.NewInt(sub.OfferID), common.HexToAddress(sub.Borrower),
		sub.InterestWei, sub.Insured, insurer,
	)
	if err != nil {
		return nil, fmt.Errorf("pack acceptOffer: %w", err)
	}

	loanID, txHash, err := g.submit(ctx, g.poolAddr, g.poolABI, "acceptOffer", data, g.acceptGas)
	if err != nil {
		return nil, err
	}

	g.log.Info().
		Str("tx_hash", txHash).
		Str("loan_id", loanID.String()).
		Int64("offer_id", sub.OfferID).
		Str("borrower", sub.Borrower).
		Msg("acceptance broadcast")

	return &ports.AcceptanceResult{TxHash: txHash, LoanID: loanID.String()}, nil
}

// SubmitDefault marks a loan defaulted on the escrow contract.
func (g *Gateway) SubmitDefault(ctx context.Context, loanID string) (string, error) {
	id, ok := new(big.Int).SetString(loanID, 10)
	if !ok {
		return "", fmt.Errorf("loan id %q is not a ledger id", loanID)
	}

	data, err := g.escrowABI.Pack("markDefault", id)
	if err != nil {
		return "", fmt.Errorf("pack markDefault: %w", err)
	}

	txHash, err := g.broadcast(ctx, g.escrowAddr, data, g.defaultGas)
	if err != nil {
		return "", err
	}

	g.log.Info().Str("tx_hash", txHash).Str("loan_id", loanID).Msg("default broadcast")
	return txHash, nil
}

// IsBorrowerFlagged performs the reputation registry lookup.
func (g *Gateway) IsBorrowerFlagged(ctx context.Context, wallet string) (bool, error) {
	data, err := g.registryABI.Pack("isBorrowerFlagged", common.HexToAddress(wallet))
	if err != nil {
		return false, fmt.Errorf("pack isBorrowerFlagged: %w", err)
	}

	out, err := g.client.CallContract(ctx, ethereum.CallMsg{To: &g.registryAddr, Data: data}, nil)
	if err != nil {
		return false, fmt.Errorf("isBorrowerFlagged call: %w: %v", ports.ErrChainUnavailable, err)
	}

	vals, err := g.registryABI.Unpack("isBorrowerFlagged", out)
	if err != nil || len(vals) != 1 {
		return false, fmt.Errorf("unpack isBorrowerFlagged: %w", err)
	}
	flagged, ok := vals[0].(bool)
	if !ok {
		return false, fmt.Errorf("isBorrowerFlagged: unexpected return type %T", vals[0])
	}
	return flagged, nil
}

// Balance returns the wei balance of a wallet.
func (g *Gateway) Balance(ctx context.Context, wallet string) (*big.Int, error) {
	bal, err := g.client.BalanceAt(ctx, common.HexToAddress(wallet), nil)
	if err != nil {
		return nil, fmt.Errorf("balance query: %w: %v", ports.ErrChainUnavailable, err)
	}
	return bal, nil
}

// submit simulates the write call and broadcasts it as one critical section.
// The simulation runs against pending block state so a second submission in
// the same block interval observes the first one's queued transaction and
// learns a distinct ledger-assigned id, not a repeat of the same one.
func (g *Gateway) submit(ctx context.Context, to common.Address, contractABI abi.ABI, method string, data []byte, gasLimit uint64) (*big.Int, string, error) {
	g.nonceMu.Lock()
	defer g.nonceMu.Unlock()

	id, err := g.simulate(ctx, to, contractABI, method, data)
	if err != nil {
		return nil, "", err
	}

	txHash, err := g.broadcastLocked(ctx, to, data, gasLimit)
	if err != nil {
		return nil, "", err
	}
	return id, txHash, nil
}

// simulate runs the write call as a pending-state eth_call from the signer to
// obtain its return value (the ledger-assigned id) before broadcasting.
// Callers must hold nonceMu.
func (g *Gateway) simulate(ctx context.Context, to common.Address, contractABI abi.ABI, method string, data []byte) (*big.Int, error) {
	out, err := g.client.PendingCallContract(ctx, ethereum.CallMsg{From: g.signerAddr, To: &to, Data: data})
	if err != nil {
		if isRevert(err) {
			return nil, fmt.Errorf("%s simulation reverted: %w", method, ports.ErrOfferNotOnLedger)
		}
		return nil, fmt.Errorf("%s simulation: %w: %v", method, ports.ErrChainUnavailable, err)
	}

	vals, err := contractABI.Unpack(method, out)
	if err != nil || len(vals) != 1 {
		return nil, fmt.Errorf("unpack %s result: %w", method, err)
	}
	id, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected return type %T", method, vals[0])
	}
	return id, nil
}

// broadcast signs and submits a transaction under the nonce mutex.
func (g *Gateway) broadcast(ctx context.Context, to common.Address, data []byte, gasLimit uint64) (string, error) {
	g.nonceMu.Lock()
	defer g.nonceMu.Unlock()
	return g.broadcastLocked(ctx, to, data, gasLimit)
}

// broadcastLocked signs and submits a transaction. On a nonce conflict the
// locally tracked counter is discarded so the next attempt resyncs from the
// node. Callers must hold nonceMu.
func (g *Gateway) broadcastLocked(ctx context.Context, to common.Address, data []byte, gasLimit uint64) (string, error) {
	if !g.nonceInit {
		nonce, err := g.client.PendingNonceAt(ctx, g.signerAddr)
		if err != nil {
			return "", fmt.Errorf("fetch nonce: %w: %v", ports.ErrChainUnavailable, err)
		}
		g.nextNonce = nonce
		g.nonceInit = true
	}

	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("suggest gas price: %w: %v", ports.ErrChainUnavailable, err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    g.nextNonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &to,
		Value:    big.NewInt(0),
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(g.chainID), g.signerKey)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w: %v", ports.ErrSigningFailed, err)
	}

	if err := g.client.SendTransaction(ctx, signed); err != nil {
		if isNonceConflict(err) {
			g.nonceInit = false
			return "", fmt.Errorf("send transaction: %w: %v", ports.ErrNonceConflict, err)
		}
		return "", fmt.Errorf("send transaction: %w: %v", ports.ErrChainUnavailable, err)
	}

	g.nextNonce++
	return signed.Hash().Hex(), nil
}

func isRevert(err error) bool {
	return err != nil && strings.Contains(err.Error(), "execution reverted")
}

func isNonceConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nonce too low") ||
		strings.Contains(msg, "already known") ||
		strings.Contains(msg, "replacement transaction underpriced")
}
