package cota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vultisig/cota/internal/ckb"
	"github.com/vultisig/cota/internal/metrics"
)

type Stage string

const (
	StageBuildTx Stage = "build_tx"
	StageCellDep Stage = "cell_dep"
	StageSign    Stage = "sign"
	StagePrint   Stage = "print"
	StageSendTx  Stage = "send_tx"
	StageWait    Stage = "wait"
)

// StageError tags a failure with the pipeline stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type TxSender interface {
	SendTransaction(ctx context.Context, tx *ckb.Transaction) (ecommon.Hash, error)
}

type CommitWaiter interface {
	WaitCommitted(ctx context.Context, txHash ecommon.Hash) (ckb.TxStatus, error)
}

// CellDepResolver returns the secp256k1 dependency appended to every
// built transaction.
type CellDepResolver func(ctx context.Context) (ckb.CellDep, error)

func FixedCellDep(dep ckb.CellDep) CellDepResolver {
	return func(context.Context) (ckb.CellDep, error) {
		return dep, nil
	}
}

// BuildFunc produces the unsigned transaction of one run.
type BuildFunc func(ctx context.Context) (*ckb.Transaction, error)

type Result struct {
	TxHash ecommon.Hash
	Tx     *ckb.Transaction
	Status ckb.TxStatus
	DryRun bool
}

// Runner drives one transaction through build, dependency patching,
// signing, printing and submission.
type Runner struct {
	logger  logrus.FieldLogger
	signer  *ckb.SignerService
	sender  TxSender
	dep     CellDepResolver
	out     io.Writer
	waiter  CommitWaiter
	dryRun  bool
	metrics *metrics.RunnerMetrics
}

type RunnerOption func(*Runner)

// WithWaiter makes Run block until the transaction is committed.
func WithWaiter(w CommitWaiter) RunnerOption {
	return func(r *Runner) {
		r.waiter = w
	}
}

// WithDryRun stops the pipeline after printing the signed transaction.
func WithDryRun(dryRun bool) RunnerOption {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

func NewRunner(
	logger logrus.FieldLogger,
	signer *ckb.SignerService,
	sender TxSender,
	dep CellDepResolver,
	out io.Writer,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		logger:  logger.WithField("pkg", "cota.Runner"),
		signer:  signer,
		sender:  sender,
		dep:     dep,
		out:     out,
		metrics: metrics.NewRunnerMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Signer() *ckb.SignerService {
	return r.signer
}

func (r *Runner) Run(ctx context.Context, action Action, build BuildFunc) (*Result, error) {
	logger := r.logger.WithFields(logrus.Fields{
		"run_id": uuid.NewString(),
		"action": action.String(),
	})

	res, err := r.run(ctx, logger, action, build)
	switch {
	case err != nil:
		r.metrics.RecordRun(action.String(), "error")
	case res.DryRun:
		r.metrics.RecordRun(action.String(), "dry_run")
	default:
		r.metrics.RecordRun(action.String(), "success")
	}
	return res, err
}

func (r *Runner) run(ctx context.Context, logger logrus.FieldLogger, action Action, build BuildFunc) (*Result, error) {
	var rawTx *ckb.Transaction
	err := r.stage(action, StageBuildTx, func() error {
		var err error
		rawTx, err = build(ctx)
		if err == nil && rawTx == nil {
			err = errors.New("builder returned no transaction")
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(action, StageCellDep, func() error {
		dep, err := r.dep(ctx)
		if err != nil {
			return err
		}
		rawTx.CellDeps = append(rawTx.CellDeps, dep)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var signedTx *ckb.Transaction
	err = r.stage(action, StageSign, func() error {
		var err error
		signedTx, err = r.signer.SignTransaction(rawTx)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(action, StagePrint, func() error {
		b, err := json.Marshal(signedTx)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction: %w", err)
		}
		_, err = fmt.Fprintln(r.out, string(b))
		return err
	})
	if err != nil {
		return nil, err
	}

	res := &Result{TxHash: signedTx.Hash(), Tx: signedTx}
	if r.dryRun {
		res.DryRun = true
		logger.WithField("tx_hash", res.TxHash.Hex()).Info("dry run, transaction not sent")
		return res, nil
	}

	err = r.stage(action, StageSendTx, func() error {
		hash, err := r.sender.SendTransaction(ctx, signedTx)
		if err != nil {
			return err
		}
		if hash != res.TxHash {
			logger.Warnf("node returned hash %s, computed %s", hash.Hex(), res.TxHash.Hex())
		}
		res.TxHash = hash
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger = logger.WithField("tx_hash", res.TxHash.Hex())
	logger.Infof("%s cota nft tx has been sent with tx hash %s", action, res.TxHash.Hex())

	if r.waiter == nil {
		return res, nil
	}
	err = r.stage(action, StageWait, func() error {
		status, err := r.waiter.WaitCommitted(ctx, res.TxHash)
		res.Status = status
		return err
	})
	if err != nil {
		return res, err
	}
	logger.WithField("status", res.Status).Info("transaction committed")
	return res, nil
}

func (r *Runner) stage(action Action, stage Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	r.metrics.RecordStage(action.String(), string(stage), time.Since(start))
	if err != nil {
		return &StageError{Stage: stage, Err: err}
	}
	return nil
}
