package ethereum

import (
	"context"
	"fmt"

	"credloom-coordinator/config"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// NewClient dials the configured JSON-RPC endpoint and verifies connectivity.
func NewClient(ctx context.Context, cfg config.LedgerConfig, log zerolog.Logger) (*ethclient.Client, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dialing ledger rpc: %w", err)
	}

	if _, err := client.BlockNumber(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging ledger rpc: %w", err)
	}

	log.Info().
		Str("rpc", cfg.RPCURL).
		Int64("chain_id", cfg.ChainID).
		Msg("Ledger RPC connection established")

	return client, nil
}
