package status

import (
	"context"
	"fmt"
	"time"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/vultisig/cota/internal/ckb"
	"github.com/vultisig/cota/internal/metrics"
)

const defaultInterval = 3 * time.Second

// TxStatusGetter reports the node's view of a transaction.
type TxStatusGetter interface {
	GetTransactionStatus(ctx context.Context, hash ecommon.Hash) (ckb.TxStatus, error)
}

type Status struct {
	caller   TxStatusGetter
	interval time.Duration
	metrics  *metrics.TxStatusMetrics
}

func NewStatus(caller TxStatusGetter, interval time.Duration) *Status {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Status{
		caller:   caller,
		interval: interval,
		metrics:  metrics.NewTxStatusMetrics(),
	}
}

// WaitCommitted polls until the transaction is committed or rejected, or
// ctx ends.
func (s *Status) WaitCommitted(ctx context.Context, txHash ecommon.Hash) (ckb.TxStatus, error) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			s.metrics.RecordPoll()
			status, err := s.caller.GetTransactionStatus(ctx, txHash)
			if err != nil {
				return "", err
			}
			switch status {
			case ckb.TxStatusCommitted:
				s.metrics.RecordFinal(string(status))
				return status, nil
			case ckb.TxStatusRejected:
				s.metrics.RecordFinal(string(status))
				return status, fmt.Errorf("transaction %s rejected", txHash.Hex())
			}
		}
	}
}
