package ethereum

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"
)

// HealthCheck implements ports.HealthChecker for the ledger RPC node.
type HealthCheck struct {
	client *ethclient.Client
}

// NewHealthCheck creates a ledger health checker.
func NewHealthCheck(client *ethclient.Client) *HealthCheck {
	return &HealthCheck{client: client}
}

// Ping checks node connectivity.
func (h *HealthCheck) Ping(ctx context.Context) error {
	_, err := h.client.BlockNumber(ctx)
	return err
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "ledger"
}
